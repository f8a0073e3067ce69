package orgvalue

// Stage is the uniform signature of every compiled AST node (spec.md §3):
// it consumes a Stream under a Context and produces a Stream, or an error.
// A Stage is immutable and reentrant: the same Stage may run concurrently
// against different streams and contexts (spec.md §5).
type Stage func(in Stream, ctx *Context) (Stream, error)
