package orgvalue

import (
	"fmt"
	"time"

	"github.com/Idorobots/org-cli/orgerrors"
)

// Category is a comparable-value grouping: cross-category ordering is a
// runtime error, per spec.md §4.5's `sort_by`/`max`/`min` rules.
type Category int

const (
	CategoryNone Category = iota
	CategoryNumber
	CategoryString
	CategoryDate
)

// CategoryOf classifies v for ordering purposes.
func CategoryOf(v Value) Category {
	switch v.(type) {
	case Int, Float:
		return CategoryNumber
	case Str:
		return CategoryString
	case *OrgDate, *OrgDateClock, *OrgDateRepeatedTask:
		return CategoryDate
	default:
		return CategoryNone
	}
}

func dateStart(v Value) time.Time {
	switch t := v.(type) {
	case *OrgDate:
		return t.Start
	case *OrgDateClock:
		return t.Start
	case *OrgDateRepeatedTask:
		return t.Timestamp
	}
	return time.Time{}
}

// Compare orders two values of the same Category: negative if a < b, zero
// if equal, positive if a > b. It errors if a and b are not in the same
// comparable category.
func Compare(a, b Value) (int, error) {
	ca, cb := CategoryOf(a), CategoryOf(b)
	if ca == CategoryNone || cb == CategoryNone || ca != cb {
		return 0, orgerrors.NewRuntimeError(orgerrors.ErrIncomparable,
			fmt.Sprintf("cannot compare %s and %s", a.Kind(), b.Kind()))
	}
	switch ca {
	case CategoryNumber:
		x, y := numericValue(a), numericValue(b)
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		default:
			return 0, nil
		}
	case CategoryString:
		x, y := string(a.(Str)), string(b.(Str))
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		default:
			return 0, nil
		}
	case CategoryDate:
		x, y := dateStart(a), dateStart(b)
		switch {
		case x.Before(y):
			return -1, nil
		case x.After(y):
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, nil
}

// IsNone reports whether v is the None value.
func IsNone(v Value) bool {
	_, ok := v.(None)
	return ok
}

// Truthy implements spec.md §4.4's truthiness rule: None and false are
// falsy, everything else (including empty containers) is truthy.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case None:
		return false
	case Bool:
		return bool(t)
	default:
		return true
	}
}
