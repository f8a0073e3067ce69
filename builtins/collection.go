package builtins

import (
	"fmt"
	"sort"

	"github.com/Idorobots/org-cli/orgerrors"
	"github.com/Idorobots/org-cli/orgvalue"
)

// runArg evaluates a single-argument builtin's compiled Stage against the
// singleton stream [item] and returns its output stream.
func runArg(ctx *orgvalue.Context, arg orgvalue.Stage, item orgvalue.Value) (orgvalue.Stream, error) {
	return arg(orgvalue.Stream{item}, ctx)
}

// anyTruthy reports whether any value in out is truthy, per the
// select/not "condition stream" contract in spec.md §7.
func anyTruthy(out orgvalue.Stream) bool {
	for _, v := range out {
		if orgvalue.Truthy(v) {
			return true
		}
	}
	return false
}

// ---- reverse ----

type reverseBuiltin struct{}

func (reverseBuiltin) Name() string { return "reverse" }
func (reverseBuiltin) Arity() int   { return 0 }

func (reverseBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	if len(in) == 1 {
		switch c := in[0].(type) {
		case *orgvalue.List:
			return orgvalue.Stream{orgvalue.NewList(reversed(c.Items)...)}, nil
		case *orgvalue.Tuple:
			return orgvalue.Stream{orgvalue.NewTuple(reversed(c.Items)...)}, nil
		case *orgvalue.Set:
			rev := orgvalue.NewSet()
			for _, v := range reversed(c.Items()) {
				if err := rev.Add(v); err != nil {
					return nil, err
				}
			}
			return orgvalue.Stream{rev}, nil
		}
	}
	return reversed(in), nil
}

func reversed(items []orgvalue.Value) []orgvalue.Value {
	out := make([]orgvalue.Value, len(items))
	for i, v := range items {
		out[len(items)-1-i] = v
	}
	return out
}

// ---- unique ----

type uniqueBuiltin struct{}

func (uniqueBuiltin) Name() string { return "unique" }
func (uniqueBuiltin) Arity() int   { return 0 }

func (uniqueBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	seen := make(map[orgvalue.ScalarKey]bool)
	out := make(orgvalue.Stream, 0, len(in))
	for _, v := range in {
		key, err := orgvalue.HashKey(v)
		if err != nil {
			return nil, err
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out, nil
}

// ---- length ----

type lengthBuiltin struct{}

func (lengthBuiltin) Name() string { return "length" }
func (lengthBuiltin) Arity() int   { return 0 }

func (lengthBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	out := make(orgvalue.Stream, len(in))
	for i, v := range in {
		out[i] = lengthOf(v)
	}
	return out, nil
}

func lengthOf(v orgvalue.Value) orgvalue.Value {
	switch t := v.(type) {
	case *orgvalue.List:
		return orgvalue.Int(len(t.Items))
	case *orgvalue.Tuple:
		return orgvalue.Int(len(t.Items))
	case *orgvalue.Set:
		return orgvalue.Int(t.Len())
	case *orgvalue.Dict:
		return orgvalue.Int(len(t.Keys()))
	case orgvalue.Str:
		return orgvalue.Int(len([]rune(string(t))))
	case *orgvalue.OrgRootNode:
		return orgvalue.Int(t.Len())
	default:
		return orgvalue.None{}
	}
}

// ---- sum ----

type sumBuiltin struct{}

func (sumBuiltin) Name() string { return "sum" }
func (sumBuiltin) Arity() int   { return 0 }

func (sumBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	items, err := singleCollection("sum", in)
	if err != nil {
		return nil, err
	}
	isFloat := false
	var sumI int64
	var sumF float64
	for _, v := range items {
		switch n := v.(type) {
		case orgvalue.Int:
			sumI += int64(n)
			sumF += float64(n)
		case orgvalue.Float:
			isFloat = true
			sumF += float64(n)
		default:
			return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse,
				fmt.Sprintf("sum: non-numeric element of kind %s", v.Kind()))
		}
	}
	if isFloat {
		return orgvalue.Stream{orgvalue.Float(sumF)}, nil
	}
	return orgvalue.Stream{orgvalue.Int(sumI)}, nil
}

func singleCollection(name string, in orgvalue.Stream) ([]orgvalue.Value, error) {
	if len(in) != 1 {
		return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse,
			fmt.Sprintf("%s: expected a single collection input, got %d values", name, len(in)))
	}
	switch c := in[0].(type) {
	case *orgvalue.List:
		return c.Items, nil
	case *orgvalue.Tuple:
		return c.Items, nil
	case *orgvalue.Set:
		return c.Items(), nil
	default:
		return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse,
			fmt.Sprintf("%s: expected a collection, got %s", name, in[0].Kind()))
	}
}

// ---- max / min ----

type maxBuiltin struct{}

func (maxBuiltin) Name() string { return "max" }
func (maxBuiltin) Arity() int   { return 0 }
func (maxBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	return extremum("max", in, 1)
}

type minBuiltin struct{}

func (minBuiltin) Name() string { return "min" }
func (minBuiltin) Arity() int   { return 0 }
func (minBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	return extremum("min", in, -1)
}

// extremum implements both max (want=1) and min (want=-1): the element
// whose Compare sign against the running best equals want wins.
func extremum(name string, in orgvalue.Stream, want int) (orgvalue.Stream, error) {
	items, err := singleCollection(name, in)
	if err != nil {
		return nil, err
	}
	var best orgvalue.Value
	for _, v := range items {
		if orgvalue.IsNone(v) {
			continue
		}
		if best == nil {
			best = v
			continue
		}
		cmp, err := orgvalue.Compare(v, best)
		if err != nil {
			return nil, err
		}
		if cmp == want {
			best = v
		}
	}
	if best == nil {
		return orgvalue.Stream{orgvalue.None{}}, nil
	}
	return orgvalue.Stream{best}, nil
}

// ---- select ----

type selectBuiltin struct{}

func (selectBuiltin) Name() string { return "select" }
func (selectBuiltin) Arity() int   { return 1 }

func (selectBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	if err := arityError("select", args, 1); err != nil {
		return nil, err
	}
	var out orgvalue.Stream
	for _, item := range in {
		cond, err := runArg(ctx, args[0], item)
		if err != nil {
			return nil, err
		}
		if anyTruthy(cond) {
			out = append(out, item)
		}
	}
	return out, nil
}

// ---- not ----

type notBuiltin struct{}

func (notBuiltin) Name() string { return "not" }
func (notBuiltin) Arity() int   { return 1 }

func (notBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	if err := arityError("not", args, 1); err != nil {
		return nil, err
	}
	out := make(orgvalue.Stream, len(in))
	for i, item := range in {
		cond, err := runArg(ctx, args[0], item)
		if err != nil {
			return nil, err
		}
		out[i] = orgvalue.Bool(!anyTruthy(cond))
	}
	return out, nil
}

// ---- sort_by ----

type sortByBuiltin struct{}

func (sortByBuiltin) Name() string { return "sort_by" }
func (sortByBuiltin) Arity() int   { return 1 }

func (sortByBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	if err := arityError("sort_by", args, 1); err != nil {
		return nil, err
	}
	type keyed struct {
		idx int
		key orgvalue.Value
		val orgvalue.Value
	}
	// A stream holding a single list sorts that list's elements and emits
	// the sorted list; any other stream is sorted item by item.
	items, wrap := in, false
	if len(in) == 1 {
		if l, ok := in[0].(*orgvalue.List); ok {
			items, wrap = orgvalue.Stream(l.Items), true
		}
	}
	entries := make([]keyed, len(items))
	for i, item := range items {
		out, err := runArg(ctx, args[0], item)
		if err != nil {
			return nil, err
		}
		var key orgvalue.Value = orgvalue.None{}
		if len(out) > 0 {
			key = out[0]
		}
		entries[i] = keyed{idx: i, key: key, val: item}
	}
	var sortErr error
	sort.SliceStable(entries, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		a, b := entries[i].key, entries[j].key
		aNone, bNone := orgvalue.IsNone(a), orgvalue.IsNone(b)
		if aNone && bNone {
			return false
		}
		if aNone {
			return false // None sorts after everything, descending order keeps it last
		}
		if bNone {
			return true
		}
		cmp, err := orgvalue.Compare(a, b)
		if err != nil {
			sortErr = err
			return false
		}
		return cmp > 0 // descending
	})
	if sortErr != nil {
		return nil, sortErr
	}
	out := make(orgvalue.Stream, len(entries))
	for i, e := range entries {
		out[i] = e.val
	}
	if wrap {
		return orgvalue.Stream{orgvalue.NewList([]orgvalue.Value(out)...)}, nil
	}
	return out, nil
}

// ---- join ----

type joinBuiltin struct{}

func (joinBuiltin) Name() string { return "join" }
func (joinBuiltin) Arity() int   { return 1 }

func (joinBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	if err := arityError("join", args, 1); err != nil {
		return nil, err
	}
	out := make(orgvalue.Stream, len(in))
	for i, item := range in {
		items, err := collectionElements(item)
		if err != nil {
			return nil, err
		}
		sepOut, err := runArg(ctx, args[0], item)
		if err != nil {
			return nil, err
		}
		sep := ""
		if len(sepOut) > 0 {
			sep = StrCoerce(sepOut[0])
		}
		s := ""
		for j, e := range items {
			if j > 0 {
				s += sep
			}
			s += StrCoerce(e)
		}
		out[i] = orgvalue.Str(s)
	}
	return out, nil
}

func collectionElements(v orgvalue.Value) ([]orgvalue.Value, error) {
	switch c := v.(type) {
	case *orgvalue.List:
		return c.Items, nil
	case *orgvalue.Tuple:
		return c.Items, nil
	case *orgvalue.Set:
		return c.Items(), nil
	case *orgvalue.Dict:
		return c.Values(), nil
	default:
		return nil, orgerrors.NewRuntimeError(orgerrors.ErrBuiltinMisuse,
			fmt.Sprintf("expected a collection, got %s", v.Kind()))
	}
}

// ---- map ----

type mapBuiltin struct{}

func (mapBuiltin) Name() string { return "map" }
func (mapBuiltin) Arity() int   { return 1 }

func (mapBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	if err := arityError("map", args, 1); err != nil {
		return nil, err
	}
	out := make(orgvalue.Stream, len(in))
	for i, item := range in {
		items, err := collectionElements(item)
		if err != nil {
			return nil, err
		}
		var mapped []orgvalue.Value
		for _, e := range items {
			res, err := runArg(ctx, args[0], e)
			if err != nil {
				return nil, err
			}
			mapped = append(mapped, res...)
		}
		out[i] = orgvalue.NewList(mapped...)
	}
	return out, nil
}

// ---- type ----

type typeBuiltin struct{}

func (typeBuiltin) Name() string { return "type" }
func (typeBuiltin) Arity() int   { return 0 }

func (typeBuiltin) Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error) {
	out := make(orgvalue.Stream, len(in))
	for i, v := range in {
		out[i] = orgvalue.Str(v.Kind().String())
	}
	return out, nil
}
