// Package orgvalue defines the runtime value model the evaluator
// manipulates: scalars, containers, and Org-domain values (spec.md §3).
package orgvalue

import "fmt"

// Kind names a runtime value's variant, used for type dispatch, error
// messages, and the `type` builtin.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindList
	KindTuple
	KindSet
	KindDict
	KindOrgNode
	KindOrgRootNode
	KindOrgDate
	KindOrgDateClock
	KindOrgDateRepeatedTask
)

var kindNames = [...]string{
	KindNone:                "none",
	KindBool:                "bool",
	KindInt:                 "int",
	KindFloat:               "float",
	KindStr:                 "string",
	KindList:                "list",
	KindTuple:               "tuple",
	KindSet:                 "set",
	KindDict:                "dict",
	KindOrgNode:             "org_node",
	KindOrgRootNode:         "org_root",
	KindOrgDate:             "org_date",
	KindOrgDateClock:        "org_clock",
	KindOrgDateRepeatedTask: "org_repeated_task",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is implemented by every runtime value variant.
type Value interface {
	Kind() Kind
	fmt.Stringer
}

// None is the singleton absent value.
type None struct{}

func (None) Kind() Kind      { return KindNone }
func (None) String() string  { return "none" }

// Bool is a boolean scalar.
type Bool bool

func (Bool) Kind() Kind        { return KindBool }
func (b Bool) String() string  { return fmt.Sprintf("%t", bool(b)) }

// Int is an integer scalar.
type Int int64

func (Int) Kind() Kind       { return KindInt }
func (i Int) String() string { return fmt.Sprintf("%d", int64(i)) }

// Float is a floating-point scalar.
type Float float64

func (Float) Kind() Kind       { return KindFloat }
func (f Float) String() string { return fmt.Sprintf("%g", float64(f)) }

// Str is a string scalar.
type Str string

func (Str) Kind() Kind       { return KindStr }
func (s Str) String() string { return string(s) }

// List is an ordered container allowing duplicates.
type List struct {
	Items []Value
}

func NewList(items ...Value) *List {
	if items == nil {
		items = []Value{}
	}
	return &List{Items: items}
}

func (*List) Kind() Kind { return KindList }
func (l *List) String() string {
	return joinElems(l.Items)
}

// Tuple is an ordered, fixed-arity container produced by the `,` operator.
type Tuple struct {
	Items []Value
}

func NewTuple(items ...Value) *Tuple {
	return &Tuple{Items: items}
}

func (*Tuple) Kind() Kind      { return KindTuple }
func (t *Tuple) String() string { return joinElems(t.Items) }

// Set is an unordered container of unique, hashable elements. Iteration
// order follows first-insertion order, matching Dict's contract, so that
// `unique`/`reverse` on a Set are deterministic.
type Set struct {
	order []Value
	index map[ScalarKey]int
}

func NewSet() *Set {
	return &Set{index: make(map[ScalarKey]int)}
}

// Add inserts v if not already present. Returns an error if v is not hashable.
func (s *Set) Add(v Value) error {
	key, err := HashKey(v)
	if err != nil {
		return err
	}
	if _, ok := s.index[key]; ok {
		return nil
	}
	s.index[key] = len(s.order)
	s.order = append(s.order, v)
	return nil
}

// Has reports whether v is present in the set.
func (s *Set) Has(v Value) (bool, error) {
	key, err := HashKey(v)
	if err != nil {
		return false, err
	}
	_, ok := s.index[key]
	return ok, nil
}

func (s *Set) Items() []Value { return s.order }
func (s *Set) Len() int       { return len(s.order) }

func (*Set) Kind() Kind { return KindSet }
func (s *Set) String() string {
	return joinElems(s.order)
}

// Dict maps string keys to Values, preserving insertion order for
// iteration. New keys are appended; re-assigning an existing key keeps
// its original position, per spec.md §4.4's assignment rule.
type Dict struct {
	keys []string
	m    map[string]Value
}

func NewDict() *Dict {
	return &Dict{m: make(map[string]Value)}
}

// Get returns the value bound to key, or None if absent.
func (d *Dict) Get(key string) Value {
	if v, ok := d.m[key]; ok {
		return v
	}
	return None{}
}

// Has reports whether key is bound.
func (d *Dict) Has(key string) bool {
	_, ok := d.m[key]
	return ok
}

// Set binds key to value, appending key to the insertion order if new.
func (d *Dict) Set(key string, value Value) {
	if _, ok := d.m[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.m[key] = value
}

// Keys returns keys in insertion order.
func (d *Dict) Keys() []string { return d.keys }

// Values returns values in key insertion order.
func (d *Dict) Values() []Value {
	vs := make([]Value, len(d.keys))
	for i, k := range d.keys {
		vs[i] = d.m[k]
	}
	return vs
}

func (*Dict) Kind() Kind { return KindDict }
func (d *Dict) String() string {
	return joinElems(d.Values())
}

func joinElems(items []Value) string {
	s := "["
	for i, it := range items {
		if i > 0 {
			s += ", "
		}
		s += it.String()
	}
	return s + "]"
}
