// Package orgql ties the lexer, parser, compiler and evaluator together
// behind the three external entry points spec.md §6 names: Parse,
// Compile, and Execute.
package orgql

import (
	"github.com/Idorobots/org-cli/ast"
	"github.com/Idorobots/org-cli/builtins"
	"github.com/Idorobots/org-cli/compile"
	"github.com/Idorobots/org-cli/orgvalue"
	"github.com/Idorobots/org-cli/parser"
)

// Stage is a compiled query: a pure function from an input stream and a
// variable context to an output stream.
type Stage = orgvalue.Stage

// Parse turns source text into an AST. It returns a lex or parse error
// (package orgerrors) on malformed input.
func Parse(source string) (ast.Node, error) {
	return parser.Parse(source)
}

// Compile lowers an AST into a Stage against reg, resolving function
// names and folding constant regex/number literals. It returns a compile
// error (package orgerrors) for unknown functions or arity mismatches.
func Compile(node ast.Node, reg *builtins.Registry) (Stage, error) {
	return compile.Compile(node, reg)
}

// Execute runs a compiled Stage over an initial stream under ctx. It
// returns a runtime error (package orgerrors) for type mismatches,
// non-iterable access, or other operator misuse.
func Execute(stage Stage, initial orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
	return stage(initial, ctx)
}

// Run parses, compiles against reg, and executes source in one call —
// the common path for one-shot query evaluation.
func Run(source string, reg *builtins.Registry, initial orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
	node, err := Parse(source)
	if err != nil {
		return nil, err
	}
	stage, err := Compile(node, reg)
	if err != nil {
		return nil, err
	}
	return Execute(stage, initial, ctx)
}
