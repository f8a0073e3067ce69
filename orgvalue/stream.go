package orgvalue

// Stream is an ordered, finite sequence of Values flowing between pipeline
// stages (spec.md §3). Every compiled Stage consumes one Stream and
// produces another; the implementation is eager, matching the teacher's
// preference for fully materialized intermediate results over lazy
// iterators (see DESIGN.md).
type Stream []Value

// Of builds a Stream from a fixed list of values.
func Of(values ...Value) Stream { return Stream(values) }
