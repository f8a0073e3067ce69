package compile

import (
	"fmt"

	"github.com/Idorobots/org-cli/ast"
	"github.com/Idorobots/org-cli/orgerrors"
	"github.com/Idorobots/org-cli/orgvalue"
)

// compileAssignField and compileAssignBracket implement spec.md §4.4's
// in-place dict mutation: the target must evaluate to a Dict, the new
// key (if any) is appended to the end of the insertion order, an
// existing key keeps its original position, and the mutated dict is
// emitted (the one observable mutation in the language, per spec.md §9).
func (c *compiler) compileAssignField(n *ast.AssignField) (Stage, error) {
	target, err := c.compile(n.Target)
	if err != nil {
		return nil, err
	}
	value, err := c.compile(n.Value)
	if err != nil {
		return nil, err
	}
	name := n.Name
	pos := n.Pos()
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		var out orgvalue.Stream
		for _, item := range in {
			targets, err := target(orgvalue.Stream{item}, ctx)
			if err != nil {
				return nil, err
			}
			values, err := value(orgvalue.Stream{item}, ctx)
			if err != nil {
				return nil, err
			}
			var v orgvalue.Value = orgvalue.None{}
			if len(values) > 0 {
				v = values[0]
			}
			for _, t := range targets {
				d, ok := t.(*orgvalue.Dict)
				if !ok {
					return nil, orgerrors.NewRuntimeError(orgerrors.ErrNotAssignable,
						fmt.Sprintf("cannot assign field %q on %s", name, t.Kind())).WithPos(pos)
				}
				d.Set(name, v)
				out = append(out, d)
			}
		}
		return out, nil
	}, nil
}

func (c *compiler) compileAssignBracket(n *ast.AssignBracket) (Stage, error) {
	target, err := c.compile(n.Target)
	if err != nil {
		return nil, err
	}
	keyStage, err := c.compile(n.Key)
	if err != nil {
		return nil, err
	}
	value, err := c.compile(n.Value)
	if err != nil {
		return nil, err
	}
	pos := n.Pos()
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		var out orgvalue.Stream
		for _, item := range in {
			targets, err := target(orgvalue.Stream{item}, ctx)
			if err != nil {
				return nil, err
			}
			keys, err := keyStage(orgvalue.Stream{item}, ctx)
			if err != nil {
				return nil, err
			}
			values, err := value(orgvalue.Stream{item}, ctx)
			if err != nil {
				return nil, err
			}
			var v orgvalue.Value = orgvalue.None{}
			if len(values) > 0 {
				v = values[0]
			}
			var key string
			if len(keys) > 0 {
				ks, ok := keys[0].(orgvalue.Str)
				if !ok {
					return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch,
						fmt.Sprintf("bracket assignment key must be a string, got %s", keys[0].Kind())).WithPos(pos)
				}
				key = string(ks)
			}
			for _, t := range targets {
				d, ok := t.(*orgvalue.Dict)
				if !ok {
					return nil, orgerrors.NewRuntimeError(orgerrors.ErrNotAssignable,
						fmt.Sprintf("cannot assign bracket key on %s", t.Kind())).WithPos(pos)
				}
				d.Set(key, v)
				out = append(out, d)
			}
		}
		return out, nil
	}, nil
}
