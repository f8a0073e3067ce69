// Package builtins implements the function registry (spec.md §4.5): named
// built-ins invoked by the evaluator, grouped by arity and semantics.
// The Registry pattern mirrors the teacher's decorator registry
// (pkgs/decorators/registry.go) — a name-keyed map guarded by a mutex,
// with a package-level default instance plus the ability to build a
// private one for tests.
package builtins

import (
	"fmt"
	"sync"

	"github.com/Idorobots/org-cli/orgvalue"
)

// Builtin is one named function in the registry. Arity is its argument
// count; builtins that also implement ArityRange accept a range instead.
type Builtin interface {
	Name() string
	Arity() int
	// Run executes the builtin against the full input stream. args holds
	// one compiled Stage per call-site argument, in source order; builtins
	// that take sub-expressions (select, sort_by, map, not) evaluate them
	// by running the Stage against whatever sub-stream its semantics call for.
	Run(ctx *orgvalue.Context, in orgvalue.Stream, args []orgvalue.Stage) (orgvalue.Stream, error)
}

// Registry holds every built-in function known to the compiler.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Builtin
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Builtin)}
}

// Register adds b to the registry, keyed by its name.
func (r *Registry) Register(b Builtin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[b.Name()] = b
}

// Get looks up a builtin by name.
func (r *Registry) Get(name string) (Builtin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.funcs[name]
	return b, ok
}

// Names returns every registered function name, used to build "did you
// mean" suggestions for unknown-function compile errors.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		names = append(names, n)
	}
	return names
}

var defaultRegistry = buildDefaultRegistry()

// Default returns the package's pre-populated registry of standard
// built-ins (spec.md §4.5).
func Default() *Registry {
	return defaultRegistry
}

func buildDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, b := range []Builtin{
		reverseBuiltin{},
		uniqueBuiltin{},
		lengthBuiltin{},
		sumBuiltin{},
		maxBuiltin{},
		minBuiltin{},
		selectBuiltin{},
		sortByBuiltin{},
		joinBuiltin{},
		mapBuiltin{},
		typeBuiltin{},
		notBuiltin{},
		strBuiltin{},
		intBuiltin{},
		floatBuiltin{},
		boolBuiltin{},
		tsBuiltin{},
		sha256Builtin{},
		matchBuiltin{},
		uuidBuiltin{},
		debugBuiltin{},
		timestampBuiltin{},
		clockBuiltin{},
		repeatedTaskBuiltin{},
	} {
		r.Register(b)
	}
	return r
}

func arityError(name string, args []orgvalue.Stage, want int) error {
	if len(args) != want {
		return fmt.Errorf("%s: expected %d argument(s), got %d", name, want, len(args))
	}
	return nil
}
