package orgvalue

import (
	"fmt"

	"github.com/Idorobots/org-cli/orgerrors"
)

// ScalarKey is a hashable representation of a scalar value, used as a map
// key for Set membership and Dict-key validation.
type ScalarKey struct {
	kind Kind
	repr string
}

// HashKey computes the ScalarKey for v, or an error if v is not hashable.
// Only scalars (None, Bool, Int, Float, Str) are hashable, per spec.md §3's
// invariant that non-hashable values used as set elements are runtime errors.
func HashKey(v Value) (ScalarKey, error) {
	switch t := v.(type) {
	case None:
		return ScalarKey{kind: KindNone}, nil
	case Bool:
		return ScalarKey{kind: KindBool, repr: fmt.Sprintf("%t", bool(t))}, nil
	case Int:
		return ScalarKey{kind: KindInt, repr: fmt.Sprintf("%d", int64(t))}, nil
	case Float:
		return ScalarKey{kind: KindFloat, repr: fmt.Sprintf("%g", float64(t))}, nil
	case Str:
		return ScalarKey{kind: KindStr, repr: string(t)}, nil
	default:
		return ScalarKey{}, orgerrors.NewRuntimeError(orgerrors.ErrNotHashable,
			fmt.Sprintf("value of kind %s is not hashable", v.Kind()))
	}
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		// Allow cross-numeric equality (1 == 1.0).
		if isNumeric(a) && isNumeric(b) {
			return numericValue(a) == numericValue(b)
		}
		return false
	}
	switch av := a.(type) {
	case None:
		return true
	case Bool:
		return av == b.(Bool)
	case Int:
		return av == b.(Int)
	case Float:
		return av == b.(Float)
	case Str:
		return av == b.(Str)
	case *List:
		bv := b.(*List)
		return equalSlice(av.Items, bv.Items)
	case *Tuple:
		bv := b.(*Tuple)
		return equalSlice(av.Items, bv.Items)
	case *Set:
		bv := b.(*Set)
		if av.Len() != bv.Len() {
			return false
		}
		for _, item := range av.Items() {
			ok, err := bv.Has(item)
			if err != nil || !ok {
				return false
			}
		}
		return true
	case *Dict:
		bv := b.(*Dict)
		if len(av.Keys()) != len(bv.Keys()) {
			return false
		}
		for _, k := range av.Keys() {
			if !bv.Has(k) || !Equal(av.Get(k), bv.Get(k)) {
				return false
			}
		}
		return true
	case *OrgNode:
		bv := b.(*OrgNode)
		return av == bv || sameHeading(av, bv)
	case *OrgRootNode:
		bv := b.(*OrgRootNode)
		return av == bv || av.Filename == bv.Filename
	case *OrgDate:
		bv := b.(*OrgDate)
		return av.Start.Equal(bv.Start)
	case *OrgDateClock:
		bv := b.(*OrgDateClock)
		return av.Start.Equal(bv.Start) && av.End.Equal(bv.End)
	case *OrgDateRepeatedTask:
		bv := b.(*OrgDateRepeatedTask)
		return av.Timestamp.Equal(bv.Timestamp) && av.Before == bv.Before && av.After == bv.After
	default:
		return false
	}
}

func sameHeading(a, b *OrgNode) bool {
	return a.Heading == b.Heading && a.Level == b.Level && a.Body == b.Body
}

func equalSlice(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func isNumeric(v Value) bool {
	switch v.(type) {
	case Int, Float:
		return true
	}
	return false
}

func numericValue(v Value) float64 {
	switch t := v.(type) {
	case Int:
		return float64(t)
	case Float:
		return float64(t)
	}
	return 0
}
