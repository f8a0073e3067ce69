package compile

import (
	"fmt"

	"github.com/Idorobots/org-cli/ast"
	"github.com/Idorobots/org-cli/builtins"
	"github.com/Idorobots/org-cli/orgerrors"
	"github.com/Idorobots/org-cli/orgvalue"
	"github.com/Idorobots/org-cli/token"
)

// Stage is an alias for orgvalue.Stage, kept local so call sites in this
// package read naturally as "compile.Stage".
type Stage = orgvalue.Stage

// Compile lowers an AST node into a Stage, resolving function names
// against reg and pre-computing regex constants for literal `matches`
// patterns (spec.md §4.3). Compile performs no evaluation.
func Compile(node ast.Node, reg *builtins.Registry) (Stage, error) {
	c := &compiler{reg: reg}
	return c.compile(node)
}

type compiler struct {
	reg *builtins.Registry
}

func (c *compiler) compile(node ast.Node) (Stage, error) {
	switch n := node.(type) {
	case *ast.Int:
		v := orgvalue.Int(n.Value)
		return constStage(v), nil
	case *ast.Float:
		v := orgvalue.Float(n.Value)
		return constStage(v), nil
	case *ast.Str:
		v := orgvalue.Str(n.Value)
		return constStage(v), nil
	case *ast.Bool:
		v := orgvalue.Bool(n.Value)
		return constStage(v), nil
	case *ast.NoneLit:
		return constStage(orgvalue.None{}), nil
	case *ast.Identity:
		return identityStage, nil
	case *ast.Variable:
		return c.compileVariable(n)
	case *ast.FieldAccess:
		return c.compileFieldAccess(n)
	case *ast.BracketAccess:
		return c.compileBracketAccess(n)
	case *ast.Iterate:
		return c.compileIterate(n)
	case *ast.Index:
		return c.compileIndex(n)
	case *ast.Slice:
		return c.compileSlice(n)
	case *ast.FunctionCall:
		return c.compileFunctionCall(n)
	case *ast.NullaryFunctionRef:
		return c.compileNullaryRef(n)
	case *ast.Binary:
		return c.compileBinary(n)
	case *ast.UnaryMinus:
		return c.compileUnaryMinus(n)
	case *ast.Tuple:
		return c.compileTuple(n)
	case *ast.Fold:
		return c.compileFold(n)
	case *ast.Pipe:
		return c.compilePipe(n)
	case *ast.Sequence:
		return c.compileSequence(n)
	case *ast.AsBinding:
		return c.compileAsBinding(n)
	case *ast.LetBinding:
		return c.compileLetBinding(n)
	case *ast.IfThenElse:
		return c.compileIfThenElse(n)
	case *ast.AssignField:
		return c.compileAssignField(n)
	case *ast.AssignBracket:
		return c.compileAssignBracket(n)
	default:
		return nil, orgerrors.NewCompileError(orgerrors.ErrUnexpectedToken,
			fmt.Sprintf("unsupported AST node %T", node))
	}
}

func constStage(v orgvalue.Value) Stage {
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		out := make(orgvalue.Stream, len(in))
		for i := range in {
			out[i] = v
		}
		return out, nil
	}
}

func identityStage(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
	return in, nil
}

func (c *compiler) compileVariable(n *ast.Variable) (Stage, error) {
	name := n.Name
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		v, ok := ctx.Lookup(name)
		if !ok {
			return nil, orgerrors.NewRuntimeError(orgerrors.ErrUndefinedVariable,
				fmt.Sprintf("undefined variable $%s", name)).WithPos(n.Pos())
		}
		out := make(orgvalue.Stream, len(in))
		for i := range in {
			out[i] = v
		}
		return out, nil
	}, nil
}

func (c *compiler) compileFieldAccess(n *ast.FieldAccess) (Stage, error) {
	inner, err := c.compile(n.Inner)
	if err != nil {
		return nil, err
	}
	name := n.Name
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		innerOut, err := inner(in, ctx)
		if err != nil {
			return nil, err
		}
		out := make(orgvalue.Stream, len(innerOut))
		for i, v := range innerOut {
			out[i] = fieldAccess(v, name)
		}
		return out, nil
	}, nil
}

func (c *compiler) compileBracketAccess(n *ast.BracketAccess) (Stage, error) {
	inner, err := c.compile(n.Inner)
	if err != nil {
		return nil, err
	}
	keyStage, err := c.compile(n.Key)
	if err != nil {
		return nil, err
	}
	return c.bracketGetStage(n, inner, keyStage)
}

func (c *compiler) compileIndex(n *ast.Index) (Stage, error) {
	inner, err := c.compile(n.Inner)
	if err != nil {
		return nil, err
	}
	keyStage, err := c.compile(n.Idx)
	if err != nil {
		return nil, err
	}
	return c.bracketGetStage(n, inner, keyStage)
}

// bracketGetStage implements spec.md §4.2's single bracket-get stage: for
// each input item, the base and the key are each (re-)evaluated against
// that single item, then dispatched on the key's runtime type.
func (c *compiler) bracketGetStage(node ast.Node, inner, keyStage Stage) (Stage, error) {
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		var out orgvalue.Stream
		for _, item := range in {
			bases, err := inner(orgvalue.Stream{item}, ctx)
			if err != nil {
				return nil, err
			}
			keys, err := keyStage(orgvalue.Stream{item}, ctx)
			if err != nil {
				return nil, err
			}
			for _, base := range bases {
				for _, key := range keys {
					v, err := bracketGet(base, key)
					if err != nil {
						return nil, withPos(err, node.Pos())
					}
					out = append(out, v)
				}
			}
		}
		return out, nil
	}, nil
}

func (c *compiler) compileIterate(n *ast.Iterate) (Stage, error) {
	inner, err := c.compile(n.Inner)
	if err != nil {
		return nil, err
	}
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		innerOut, err := inner(in, ctx)
		if err != nil {
			return nil, err
		}
		var out orgvalue.Stream
		for _, v := range innerOut {
			elems, err := iterate(v)
			if err != nil {
				return nil, withPos(err, n.Pos())
			}
			out = append(out, elems...)
		}
		return out, nil
	}, nil
}

func (c *compiler) compileSlice(n *ast.Slice) (Stage, error) {
	inner, err := c.compile(n.Inner)
	if err != nil {
		return nil, err
	}
	var startStage, endStage Stage
	if n.Start != nil {
		startStage, err = c.compile(n.Start)
		if err != nil {
			return nil, err
		}
	}
	if n.End != nil {
		endStage, err = c.compile(n.End)
		if err != nil {
			return nil, err
		}
	}
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		var out orgvalue.Stream
		for _, item := range in {
			bases, err := inner(orgvalue.Stream{item}, ctx)
			if err != nil {
				return nil, err
			}
			start, err := boundValue(startStage, item, ctx)
			if err != nil {
				return nil, err
			}
			end, err := boundValue(endStage, item, ctx)
			if err != nil {
				return nil, err
			}
			for _, base := range bases {
				v, err := sliceGet(base, start, end)
				if err != nil {
					return nil, withPos(err, n.Pos())
				}
				out = append(out, v)
			}
		}
		return out, nil
	}, nil
}

func boundValue(stage Stage, item orgvalue.Value, ctx *orgvalue.Context) (*int, error) {
	if stage == nil {
		return nil, nil
	}
	out, err := stage(orgvalue.Stream{item}, ctx)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	n, ok := out[0].(orgvalue.Int)
	if !ok {
		return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch,
			fmt.Sprintf("slice bound must be an integer, got %s", out[0].Kind()))
	}
	val := int(n)
	return &val, nil
}

func withPos(err error, pos token.Position) error {
	if e, ok := err.(*orgerrors.Error); ok && e.Pos == nil {
		return e.WithPos(pos)
	}
	return err
}
