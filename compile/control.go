package compile

import (
	"regexp"

	"github.com/Idorobots/org-cli/ast"
	"github.com/Idorobots/org-cli/orgerrors"
	"github.com/Idorobots/org-cli/orgvalue"
)

func (c *compiler) compileBinary(n *ast.Binary) (Stage, error) {
	left, err := c.compile(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.compile(n.Right)
	if err != nil {
		return nil, err
	}

	// Constant folding of regex patterns (spec.md §4.3): a literal string
	// right operand of `matches` is compiled once, not per evaluation.
	var precompiled *regexp.Regexp
	if n.Op == ast.OpMatches {
		if lit, ok := n.Right.(*ast.Str); ok {
			re, err := regexp.Compile(lit.Value)
			if err != nil {
				return nil, orgerrors.NewCompileErrorWrap(orgerrors.ErrInvalidRegex,
					"invalid regex literal in `matches`", err).WithPos(n.Pos())
			}
			precompiled = re
		}
	}

	op := n.Op
	pos := n.Pos()
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		var out orgvalue.Stream
		for _, item := range in {
			ls, err := left(orgvalue.Stream{item}, ctx)
			if err != nil {
				return nil, err
			}
			rs, err := right(orgvalue.Stream{item}, ctx)
			if err != nil {
				return nil, err
			}
			for _, a := range ls {
				for _, b := range rs {
					v, err := applyBinary(op, a, b, precompiled)
					if err != nil {
						return nil, withPos(err, pos)
					}
					out = append(out, v)
				}
			}
		}
		return out, nil
	}, nil
}

func (c *compiler) compileUnaryMinus(n *ast.UnaryMinus) (Stage, error) {
	// Constant-fold `-N` for literal numbers (spec.md §4.3).
	switch lit := n.Inner.(type) {
	case *ast.Int:
		return constStage(orgvalue.Int(-lit.Value)), nil
	case *ast.Float:
		return constStage(orgvalue.Float(-lit.Value)), nil
	}
	inner, err := c.compile(n.Inner)
	if err != nil {
		return nil, err
	}
	pos := n.Pos()
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		innerOut, err := inner(in, ctx)
		if err != nil {
			return nil, err
		}
		out := make(orgvalue.Stream, len(innerOut))
		for i, v := range innerOut {
			r, err := applyUnaryMinus(v)
			if err != nil {
				return nil, withPos(err, pos)
			}
			out[i] = r
		}
		return out, nil
	}, nil
}

// compileTuple implements spec.md §4.3's cartesian-product semantics for
// `,`: for each input item, every combination of one output per child,
// taken left to right, produces one Tuple.
func (c *compiler) compileTuple(n *ast.Tuple) (Stage, error) {
	children := make([]Stage, len(n.Children))
	for i, ch := range n.Children {
		st, err := c.compile(ch)
		if err != nil {
			return nil, err
		}
		children[i] = st
	}
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		var out orgvalue.Stream
		for _, item := range in {
			combos := [][]orgvalue.Value{{}}
			for _, child := range children {
				outs, err := child(orgvalue.Stream{item}, ctx)
				if err != nil {
					return nil, err
				}
				var next [][]orgvalue.Value
				for _, combo := range combos {
					for _, v := range outs {
						next = append(next, append(append([]orgvalue.Value{}, combo...), v))
					}
				}
				combos = next
			}
			for _, combo := range combos {
				out = append(out, orgvalue.NewTuple(combo...))
			}
		}
		return out, nil
	}, nil
}

// compileFold implements the `[ subquery ]` law (spec.md §4.3, §8): for
// each input item, run inner on the singleton stream [item] and collect
// all outputs into a List.
func (c *compiler) compileFold(n *ast.Fold) (Stage, error) {
	if n.Inner == nil {
		return constStage(orgvalue.NewList()), nil
	}
	inner, err := c.compile(n.Inner)
	if err != nil {
		return nil, err
	}
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		out := make(orgvalue.Stream, len(in))
		for i, item := range in {
			innerOut, err := inner(orgvalue.Stream{item}, ctx)
			if err != nil {
				return nil, err
			}
			out[i] = orgvalue.NewList([]orgvalue.Value(innerOut)...)
		}
		return out, nil
	}, nil
}

func (c *compiler) compilePipe(n *ast.Pipe) (Stage, error) {
	left, err := c.compile(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.compile(n.Right)
	if err != nil {
		return nil, err
	}
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		mid, err := left(in, ctx)
		if err != nil {
			return nil, err
		}
		return right(mid, ctx)
	}, nil
}

// compileSequence implements spec.md §4.4: left runs for side effects per
// item, its output is discarded, then right runs on the same item.
func (c *compiler) compileSequence(n *ast.Sequence) (Stage, error) {
	left, err := c.compile(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.compile(n.Right)
	if err != nil {
		return nil, err
	}
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		var out orgvalue.Stream
		for _, item := range in {
			if _, err := left(orgvalue.Stream{item}, ctx); err != nil {
				return nil, err
			}
			rOut, err := right(orgvalue.Stream{item}, ctx)
			if err != nil {
				return nil, err
			}
			out = append(out, rOut...)
		}
		return out, nil
	}, nil
}

// compileAsBinding and compileLetBinding share the same binding
// discipline (spec.md §4.3, §9): both push one new scope per produced
// value and re-evaluate their body under it.
func (c *compiler) compileAsBinding(n *ast.AsBinding) (Stage, error) {
	return c.compileBinding(n.Value, n.Name, n.Body)
}

func (c *compiler) compileLetBinding(n *ast.LetBinding) (Stage, error) {
	return c.compileBinding(n.Value, n.Name, n.Body)
}

func (c *compiler) compileBinding(valueNode ast.Node, name string, bodyNode ast.Node) (Stage, error) {
	valueStage, err := c.compile(valueNode)
	if err != nil {
		return nil, err
	}
	bodyStage, err := c.compile(bodyNode)
	if err != nil {
		return nil, err
	}
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		var out orgvalue.Stream
		for _, item := range in {
			values, err := valueStage(orgvalue.Stream{item}, ctx)
			if err != nil {
				return nil, err
			}
			for _, v := range values {
				childCtx := ctx.Push(name, v)
				bodyOut, err := bodyStage(orgvalue.Stream{item}, childCtx)
				if err != nil {
					return nil, err
				}
				out = append(out, bodyOut...)
			}
		}
		return out, nil
	}, nil
}

func (c *compiler) compileIfThenElse(n *ast.IfThenElse) (Stage, error) {
	condStage, err := c.compile(n.Cond)
	if err != nil {
		return nil, err
	}
	thenStage, err := c.compile(n.Then)
	if err != nil {
		return nil, err
	}
	var elseStage Stage
	if n.Else != nil {
		elseStage, err = c.compile(n.Else)
		if err != nil {
			return nil, err
		}
	}
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		var out orgvalue.Stream
		for _, item := range in {
			condOut, err := condStage(orgvalue.Stream{item}, ctx)
			if err != nil {
				return nil, err
			}
			truthy := false
			for _, v := range condOut {
				if orgvalue.Truthy(v) {
					truthy = true
					break
				}
			}
			var branch Stage
			if truthy {
				branch = thenStage
			} else {
				branch = elseStage
			}
			if branch == nil {
				out = append(out, orgvalue.None{})
				continue
			}
			branchOut, err := branch(orgvalue.Stream{item}, ctx)
			if err != nil {
				return nil, err
			}
			out = append(out, branchOut...)
		}
		return out, nil
	}, nil
}
