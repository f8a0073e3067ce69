package compile

import (
	"fmt"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Idorobots/org-cli/ast"
	"github.com/Idorobots/org-cli/builtins"
	"github.com/Idorobots/org-cli/orgerrors"
	"github.com/Idorobots/org-cli/orgvalue"
)

func (c *compiler) compileFunctionCall(n *ast.FunctionCall) (Stage, error) {
	b, ok := c.reg.Get(n.Name)
	if !ok {
		return nil, orgerrors.NewUnknownFunctionError(n.Name, suggest(n.Name, c.reg)).WithPos(n.Pos())
	}
	if err := checkArity(b, n.Name, len(n.Args)); err != nil {
		return nil, err
	}
	argStages := make([]orgvalue.Stage, len(n.Args))
	for i, a := range n.Args {
		st, err := c.compile(a)
		if err != nil {
			return nil, err
		}
		argStages[i] = st
	}
	return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
		out, err := b.Run(ctx, in, argStages)
		if err != nil {
			return nil, withPos(err, n.Pos())
		}
		return out, nil
	}, nil
}

// compileNullaryRef implements spec.md §4.3's desugaring: a bare
// identifier that names a zero-arity builtin calls it; otherwise it
// compiles to a constant-string stage.
func (c *compiler) compileNullaryRef(n *ast.NullaryFunctionRef) (Stage, error) {
	if b, ok := c.reg.Get(n.Name); ok {
		if err := checkArity(b, n.Name, 0); err == nil {
			return func(in orgvalue.Stream, ctx *orgvalue.Context) (orgvalue.Stream, error) {
				out, err := b.Run(ctx, in, nil)
				if err != nil {
					return nil, withPos(err, n.Pos())
				}
				return out, nil
			}, nil
		}
	}
	return constStage(orgvalue.Str(n.Name)), nil
}

func checkArity(b builtins.Builtin, name string, got int) error {
	if r, ok := b.(builtins.ArityRange); ok {
		if got < r.Min() || got > r.Max() {
			return orgerrors.NewCompileError(orgerrors.ErrArityMismatch,
				fmt.Sprintf("function %q expects %d to %d argument(s), got %d", name, r.Min(), r.Max(), got))
		}
		return nil
	}
	if got != b.Arity() {
		return orgerrors.NewArityMismatchError(name, b.Arity(), got)
	}
	return nil
}

func suggest(name string, reg *builtins.Registry) string {
	ranks := fuzzy.RankFind(name, reg.Names())
	if len(ranks) == 0 {
		return ""
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	if best.Distance <= 3 {
		return best.Target
	}
	return ""
}
