// Package compile lowers an AST into a composition of executable Stage
// functions (spec.md §4.3) and implements the operator semantics that
// drive them (spec.md §4.4) — the compiler and evaluator are fused here
// the way a compile-to-closures interpreter naturally combines them.
package compile

import (
	"fmt"

	"github.com/Idorobots/org-cli/orgerrors"
	"github.com/Idorobots/org-cli/orgvalue"
)

// fieldAccess implements spec.md §4.4's field-access contract: missing is
// always None, never an error.
func fieldAccess(v orgvalue.Value, name string) orgvalue.Value {
	switch t := v.(type) {
	case *orgvalue.OrgNode:
		return t.Field(name)
	case *orgvalue.OrgRootNode:
		return t.Field(name)
	case *orgvalue.Dict:
		return t.Get(name)
	default:
		return orgvalue.None{}
	}
}

// bracketGet implements the single "bracket-get" stage spec.md §4.2
// describes: the distinction between Index and field-style BracketAccess
// is deferred to the runtime type of the key.
func bracketGet(inner orgvalue.Value, key orgvalue.Value) (orgvalue.Value, error) {
	switch k := key.(type) {
	case orgvalue.Str:
		return fieldAccess(inner, string(k)), nil
	case orgvalue.Int:
		return indexGet(inner, int(k))
	default:
		return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch,
			fmt.Sprintf("invalid bracket key of kind %s", key.Kind()))
	}
}

// indexGet implements integer indexing: out-of-range is None, negative
// indices are unsupported (also treated as out of range per spec.md §4.4).
func indexGet(v orgvalue.Value, idx int) (orgvalue.Value, error) {
	if idx < 0 {
		return orgvalue.None{}, nil
	}
	switch t := v.(type) {
	case *orgvalue.List:
		if idx >= len(t.Items) {
			return orgvalue.None{}, nil
		}
		return t.Items[idx], nil
	case *orgvalue.Tuple:
		if idx >= len(t.Items) {
			return orgvalue.None{}, nil
		}
		return t.Items[idx], nil
	case *orgvalue.OrgRootNode:
		if idx >= len(t.Nodes) {
			return orgvalue.None{}, nil
		}
		return t.Nodes[idx], nil
	case orgvalue.Str:
		runes := []rune(string(t))
		if idx >= len(runes) {
			return orgvalue.None{}, nil
		}
		return orgvalue.Str(string(runes[idx])), nil
	default:
		return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch,
			fmt.Sprintf("cannot index into %s", v.Kind()))
	}
}

// sliceGet implements spec.md §4.4's total slicing: bounds clamp to
// [0, len], end < start yields an empty container, the result preserves
// container kind.
func sliceGet(v orgvalue.Value, start, end *int) (orgvalue.Value, error) {
	switch t := v.(type) {
	case *orgvalue.List:
		s, e := clampBounds(start, end, len(t.Items))
		return orgvalue.NewList(cloneSlice(t.Items[s:e])...), nil
	case *orgvalue.Tuple:
		s, e := clampBounds(start, end, len(t.Items))
		return orgvalue.NewTuple(cloneSlice(t.Items[s:e])...), nil
	case orgvalue.Str:
		runes := []rune(string(t))
		s, e := clampBounds(start, end, len(runes))
		return orgvalue.Str(string(runes[s:e])), nil
	case *orgvalue.OrgRootNode:
		s, e := clampBounds(start, end, len(t.Nodes))
		nodes := make([]*orgvalue.OrgNode, e-s)
		copy(nodes, t.Nodes[s:e])
		return &orgvalue.OrgRootNode{Filename: t.Filename, Nodes: nodes}, nil
	default:
		return nil, orgerrors.NewRuntimeError(orgerrors.ErrTypeMismatch,
			fmt.Sprintf("cannot slice %s", v.Kind()))
	}
}

func cloneSlice(items []orgvalue.Value) []orgvalue.Value {
	out := make([]orgvalue.Value, len(items))
	copy(out, items)
	return out
}

func clampBounds(start, end *int, length int) (int, int) {
	s, e := 0, length
	if start != nil {
		s = clamp(*start, 0, length)
	}
	if end != nil {
		e = clamp(*end, 0, length)
	}
	if e < s {
		e = s
	}
	return s, e
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// iterate implements spec.md §4.4's `[]` semantics.
func iterate(v orgvalue.Value) ([]orgvalue.Value, error) {
	switch t := v.(type) {
	case *orgvalue.List:
		return t.Items, nil
	case *orgvalue.Tuple:
		return t.Items, nil
	case *orgvalue.Set:
		return t.Items(), nil
	case *orgvalue.Dict:
		return t.Values(), nil
	case *orgvalue.OrgRootNode:
		items := make([]orgvalue.Value, len(t.Nodes))
		for i, n := range t.Nodes {
			items[i] = n
		}
		return items, nil
	case *orgvalue.OrgNode:
		items := make([]orgvalue.Value, len(t.Children))
		for i, c := range t.Children {
			items[i] = c
		}
		return items, nil
	default:
		return nil, orgerrors.NewRuntimeError(orgerrors.ErrNotIterable,
			fmt.Sprintf("cannot iterate over %s", v.Kind()))
	}
}
