package compile

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/Idorobots/org-cli/ast"
	"github.com/Idorobots/org-cli/orgerrors"
	"github.com/Idorobots/org-cli/orgvalue"
)

// applyBinary implements every binary operator's semantics from spec.md §4.4.
func applyBinary(op ast.BinaryOp, a, b orgvalue.Value, regex *regexp.Regexp) (orgvalue.Value, error) {
	switch op {
	case ast.OpAdd:
		return applyAdd(a, b)
	case ast.OpSub:
		return applySub(a, b)
	case ast.OpMul:
		return applyMul(a, b)
	case ast.OpDiv:
		return applyDiv(a, b)
	case ast.OpMod:
		return applyIntOp(a, b, "mod", func(x, y int64) int64 {
			m := x % y
			if (m < 0) != (y < 0) && m != 0 {
				m += y
			}
			return m
		})
	case ast.OpRem:
		return applyIntOp(a, b, "rem", func(x, y int64) int64 { return x % y })
	case ast.OpQuot:
		return applyIntOp(a, b, "quot", func(x, y int64) int64 { return x / y })
	case ast.OpPow:
		return applyPow(a, b)
	case ast.OpEq:
		return orgvalue.Bool(orgvalue.Equal(a, b)), nil
	case ast.OpNeq:
		return orgvalue.Bool(!orgvalue.Equal(a, b)), nil
	case ast.OpGt, ast.OpLt, ast.OpGe, ast.OpLe:
		return applyOrdering(op, a, b)
	case ast.OpAnd:
		return orgvalue.Bool(orgvalue.Truthy(a) && orgvalue.Truthy(b)), nil
	case ast.OpOr:
		if orgvalue.Truthy(a) {
			return a, nil
		}
		return b, nil
	case ast.OpIn:
		return applyIn(a, b)
	case ast.OpMatches:
		return applyMatches(a, b, regex)
	}
	return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch, "unknown binary operator")
}

func numericPair(a, b orgvalue.Value) (float64, float64, bool) {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	return af, bf, aok && bok
}

func asFloat(v orgvalue.Value) (float64, bool) {
	switch t := v.(type) {
	case orgvalue.Int:
		return float64(t), true
	case orgvalue.Float:
		return float64(t), true
	}
	return 0, false
}

func bothInt(a, b orgvalue.Value) (int64, int64, bool) {
	ai, aok := a.(orgvalue.Int)
	bi, bok := b.(orgvalue.Int)
	if aok && bok {
		return int64(ai), int64(bi), true
	}
	return 0, 0, false
}

func applyAdd(a, b orgvalue.Value) (orgvalue.Value, error) {
	if as, ok := a.(orgvalue.Str); ok {
		if bs, ok := b.(orgvalue.Str); ok {
			return orgvalue.Str(string(as) + string(bs)), nil
		}
	}
	if al, ok := a.(*orgvalue.List); ok {
		if bl, ok := b.(*orgvalue.List); ok {
			items := append(append([]orgvalue.Value{}, al.Items...), bl.Items...)
			return orgvalue.NewList(items...), nil
		}
		return orgvalue.NewList(append(append([]orgvalue.Value{}, al.Items...), b)...), nil
	}
	if at, ok := a.(*orgvalue.Tuple); ok {
		if bt, ok := b.(*orgvalue.Tuple); ok {
			items := append(append([]orgvalue.Value{}, at.Items...), bt.Items...)
			return orgvalue.NewTuple(items...), nil
		}
		return orgvalue.NewTuple(append(append([]orgvalue.Value{}, at.Items...), b)...), nil
	}
	if as, ok := a.(*orgvalue.Set); ok {
		out := orgvalue.NewSet()
		for _, v := range as.Items() {
			if err := out.Add(v); err != nil {
				return nil, err
			}
		}
		if bs, ok := b.(*orgvalue.Set); ok {
			for _, v := range bs.Items() {
				if err := out.Add(v); err != nil {
					return nil, err
				}
			}
		} else if err := out.Add(b); err != nil {
			return nil, err
		}
		return out, nil
	}
	if af, bf, ok := numericPair(a, b); ok {
		if _, aInt := a.(orgvalue.Int); aInt {
			if _, bInt := b.(orgvalue.Int); bInt {
				return orgvalue.Int(int64(af) + int64(bf)), nil
			}
		}
		return orgvalue.Float(af + bf), nil
	}
	return nil, typeMismatch("+", a, b)
}

func applySub(a, b orgvalue.Value) (orgvalue.Value, error) {
	switch at := a.(type) {
	case *orgvalue.List:
		return orgvalue.NewList(removeAll(at.Items, b)...), nil
	case *orgvalue.Tuple:
		return orgvalue.NewTuple(removeAll(at.Items, b)...), nil
	case *orgvalue.Set:
		out := orgvalue.NewSet()
		for _, v := range at.Items() {
			if containerOrValueContains(b, v) {
				continue
			}
			if err := out.Add(v); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	if af, bf, ok := numericPair(a, b); ok {
		if ai, bi, ok := bothInt(a, b); ok {
			return orgvalue.Int(ai - bi), nil
		}
		return orgvalue.Float(af - bf), nil
	}
	return nil, typeMismatch("-", a, b)
}

// removeAll drops every occurrence of elem (or, if elem is itself a
// container, every element elem contains) from items, per spec.md §4.4's
// "Container - elem" / "Container - Container" rule.
func removeAll(items []orgvalue.Value, elem orgvalue.Value) []orgvalue.Value {
	out := make([]orgvalue.Value, 0, len(items))
	for _, v := range items {
		if containerOrValueContains(elem, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func containerOrValueContains(needleOrContainer orgvalue.Value, v orgvalue.Value) bool {
	switch c := needleOrContainer.(type) {
	case *orgvalue.List:
		for _, it := range c.Items {
			if orgvalue.Equal(it, v) {
				return true
			}
		}
		return false
	case *orgvalue.Tuple:
		for _, it := range c.Items {
			if orgvalue.Equal(it, v) {
				return true
			}
		}
		return false
	case *orgvalue.Set:
		ok, _ := c.Has(v)
		return ok
	default:
		return orgvalue.Equal(needleOrContainer, v)
	}
}

func applyMul(a, b orgvalue.Value) (orgvalue.Value, error) {
	if s, ok := a.(orgvalue.Str); ok {
		if n, ok := b.(orgvalue.Int); ok {
			return orgvalue.Str(strings.Repeat(string(s), int(n))), nil
		}
	}
	if n, ok := a.(orgvalue.Int); ok {
		if s, ok := b.(orgvalue.Str); ok {
			return orgvalue.Str(strings.Repeat(string(s), int(n))), nil
		}
	}
	if af, bf, ok := numericPair(a, b); ok {
		if ai, bi, ok := bothInt(a, b); ok {
			return orgvalue.Int(ai * bi), nil
		}
		return orgvalue.Float(af * bf), nil
	}
	return nil, typeMismatch("*", a, b)
}

func applyDiv(a, b orgvalue.Value) (orgvalue.Value, error) {
	af, bf, ok := numericPair(a, b)
	if !ok {
		return nil, typeMismatch("/", a, b)
	}
	if bf == 0 {
		return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch, "division by zero")
	}
	return orgvalue.Float(af / bf), nil
}

func applyIntOp(a, b orgvalue.Value, name string, fn func(x, y int64) int64) (orgvalue.Value, error) {
	ai, bi, ok := bothInt(a, b)
	if !ok {
		return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch,
			fmt.Sprintf("%s requires integer operands, got %s and %s", name, a.Kind(), b.Kind()))
	}
	if bi == 0 {
		return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch, name+" by zero")
	}
	return orgvalue.Int(fn(ai, bi)), nil
}

func applyPow(a, b orgvalue.Value) (orgvalue.Value, error) {
	af, bf, ok := numericPair(a, b)
	if !ok {
		return nil, typeMismatch("**", a, b)
	}
	result := math.Pow(af, bf)
	if _, bi, ok := bothInt(a, b); ok && bi >= 0 {
		return orgvalue.Int(int64(result)), nil
	}
	return orgvalue.Float(result), nil
}

func applyOrdering(op ast.BinaryOp, a, b orgvalue.Value) (orgvalue.Value, error) {
	aNone, bNone := orgvalue.IsNone(a), orgvalue.IsNone(b)
	if aNone || bNone {
		switch op {
		case ast.OpGe, ast.OpLe:
			return orgvalue.Bool(aNone && bNone), nil
		default:
			return orgvalue.Bool(false), nil
		}
	}
	cmp, err := orgvalue.Compare(a, b)
	if err != nil {
		return nil, err
	}
	switch op {
	case ast.OpGt:
		return orgvalue.Bool(cmp > 0), nil
	case ast.OpLt:
		return orgvalue.Bool(cmp < 0), nil
	case ast.OpGe:
		return orgvalue.Bool(cmp >= 0), nil
	case ast.OpLe:
		return orgvalue.Bool(cmp <= 0), nil
	}
	return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch, "unknown ordering operator")
}

func applyIn(a, b orgvalue.Value) (orgvalue.Value, error) {
	switch c := b.(type) {
	case *orgvalue.List:
		for _, v := range c.Items {
			if orgvalue.Equal(v, a) {
				return orgvalue.Bool(true), nil
			}
		}
		return orgvalue.Bool(false), nil
	case *orgvalue.Tuple:
		for _, v := range c.Items {
			if orgvalue.Equal(v, a) {
				return orgvalue.Bool(true), nil
			}
		}
		return orgvalue.Bool(false), nil
	case *orgvalue.Set:
		ok, err := c.Has(a)
		return orgvalue.Bool(ok), err
	case *orgvalue.Dict:
		s, ok := a.(orgvalue.Str)
		if !ok {
			return orgvalue.Bool(false), nil
		}
		return orgvalue.Bool(c.Has(string(s))), nil
	case orgvalue.Str:
		s, ok := a.(orgvalue.Str)
		if !ok {
			return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch,
				"`in` against a string requires a string left operand")
		}
		return orgvalue.Bool(strings.Contains(string(c), string(s))), nil
	default:
		return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch,
			fmt.Sprintf("right operand of `in` must be a collection or string, got %s", b.Kind()))
	}
}

func applyMatches(a, b orgvalue.Value, precompiled *regexp.Regexp) (orgvalue.Value, error) {
	as, ok := a.(orgvalue.Str)
	if !ok {
		return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch,
			fmt.Sprintf("`matches` requires string operands, got %s", a.Kind()))
	}
	re := precompiled
	if re == nil {
		bs, ok := b.(orgvalue.Str)
		if !ok {
			return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch,
				fmt.Sprintf("`matches` requires string operands, got %s", b.Kind()))
		}
		compiled, err := regexp.Compile(string(bs))
		if err != nil {
			return nil, orgerrors.NewRuntimeError(orgerrors.ErrInvalidRegex, err.Error())
		}
		re = compiled
	}
	return orgvalue.Bool(re.MatchString(string(as))), nil
}

func typeMismatch(op string, a, b orgvalue.Value) error {
	return orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch,
		fmt.Sprintf("operator %q not defined for %s and %s", op, a.Kind(), b.Kind()))
}

func applyUnaryMinus(v orgvalue.Value) (orgvalue.Value, error) {
	switch t := v.(type) {
	case orgvalue.Int:
		return orgvalue.Int(-int64(t)), nil
	case orgvalue.Float:
		return orgvalue.Float(-float64(t)), nil
	default:
		return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch,
			fmt.Sprintf("unary minus not defined for %s", v.Kind()))
	}
}
