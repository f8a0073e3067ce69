package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Idorobots/org-cli/ast"
	"github.com/Idorobots/org-cli/builtins"
	"github.com/Idorobots/org-cli/orgvalue"
	"github.com/Idorobots/org-cli/token"
)

var pos token.Position

func run(t *testing.T, node ast.Node, in orgvalue.Stream, ctx *orgvalue.Context) orgvalue.Stream {
	t.Helper()
	stage, err := Compile(node, builtins.Default())
	require.NoError(t, err)
	if ctx == nil {
		ctx = orgvalue.NewContext(nil)
	}
	out, err := stage(in, ctx)
	require.NoError(t, err)
	return out
}

func TestCompileIdentityRoundTrip(t *testing.T) {
	out := run(t, ast.NewIdentity(pos), orgvalue.Stream{orgvalue.Int(5)}, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.Int(5)}, out)
}

func TestCompileFieldAccessIsForgiving(t *testing.T) {
	node := ast.NewFieldAccess(pos, ast.NewIdentity(pos), "missing")
	d := orgvalue.NewDict()
	d.Set("present", orgvalue.Int(1))
	out := run(t, node, orgvalue.Stream{d}, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.None{}}, out)
}

func TestCompileSliceIsTotal(t *testing.T) {
	node := ast.NewSlice(pos, ast.NewIdentity(pos),
		ast.NewInt(pos, -10), ast.NewInt(pos, 1000))
	list := orgvalue.NewList(orgvalue.Int(1), orgvalue.Int(2), orgvalue.Int(3))
	out := run(t, node, orgvalue.Stream{list}, nil)
	require.Len(t, out, 1)
	got := out[0].(*orgvalue.List)
	assert.Equal(t, []orgvalue.Value{orgvalue.Int(1), orgvalue.Int(2), orgvalue.Int(3)}, got.Items)
}

func TestCompileTupleCartesianProduct(t *testing.T) {
	// (.[], .[]) over [1,2] produces every left/right pairing, left-to-right.
	iter := ast.NewIterate(pos, ast.NewIdentity(pos))
	node := ast.NewTuple(pos, []ast.Node{iter, iter})
	list := orgvalue.NewList(orgvalue.Int(1), orgvalue.Int(2))
	out := run(t, node, orgvalue.Stream{list}, nil)
	require.Len(t, out, 4)
	var pairs [][2]int64
	for _, v := range out {
		tup := v.(*orgvalue.Tuple)
		pairs = append(pairs, [2]int64{int64(tup.Items[0].(orgvalue.Int)), int64(tup.Items[1].(orgvalue.Int))})
	}
	assert.Equal(t, [][2]int64{{1, 1}, {1, 2}, {2, 1}, {2, 2}}, pairs)
}

func TestCompileFoldLaw(t *testing.T) {
	// [ .[] | . * 2 ] on a singleton input collects every output of the
	// subquery into a single List (spec.md §8's fold law).
	mul2 := ast.NewBinary(pos, ast.OpMul, ast.NewIdentity(pos), ast.NewInt(pos, 2))
	pipe := ast.NewPipe(pos, ast.NewIterate(pos, ast.NewIdentity(pos)), mul2)
	fold := ast.NewFold(pos, pipe)
	list := orgvalue.NewList(orgvalue.Int(10), orgvalue.Int(20), orgvalue.Int(30))
	out := run(t, fold, orgvalue.Stream{list}, nil)
	require.Len(t, out, 1)
	got := out[0].(*orgvalue.List)
	assert.Equal(t, []orgvalue.Value{orgvalue.Int(20), orgvalue.Int(40), orgvalue.Int(60)}, got.Items)
}

func TestCompileEmptyFoldIsEmptyList(t *testing.T) {
	fold := ast.NewFold(pos, nil)
	out := run(t, fold, orgvalue.Stream{orgvalue.Int(1)}, nil)
	require.Len(t, out, 1)
	got := out[0].(*orgvalue.List)
	assert.Empty(t, got.Items)
}

func TestCompileAssignBracketMutatesInPlace(t *testing.T) {
	// .p["k"] = "v"; .p.k
	base := ast.NewFieldAccess(pos, ast.NewIdentity(pos), "p")
	assign := ast.NewAssignBracket(pos, base, ast.NewStr(pos, "k"), ast.NewStr(pos, "v"))
	readBack := ast.NewFieldAccess(pos, ast.NewFieldAccess(pos, ast.NewIdentity(pos), "p"), "k")
	seq := ast.NewSequence(pos, assign, readBack)

	p := orgvalue.NewDict()
	root := orgvalue.NewDict()
	root.Set("p", p)
	out := run(t, seq, orgvalue.Stream{root}, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.Str("v")}, out)
}

func TestCompileAssignOnNonDictErrors(t *testing.T) {
	assign := ast.NewAssignField(pos, ast.NewIdentity(pos), "x", ast.NewInt(pos, 1))
	stage, err := Compile(assign, builtins.Default())
	require.NoError(t, err)
	_, err = stage(orgvalue.Stream{orgvalue.Int(5)}, orgvalue.NewContext(nil))
	require.Error(t, err)
}

func TestCompileAsBindingPushesScope(t *testing.T) {
	// . as $x | $x + $x
	body := ast.NewBinary(pos, ast.OpAdd, ast.NewVariable(pos, "x"), ast.NewVariable(pos, "x"))
	node := ast.NewAsBinding(pos, ast.NewIdentity(pos), "x", body)
	out := run(t, node, orgvalue.Stream{orgvalue.Int(21)}, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.Int(42)}, out)
}

func TestCompileIfThenElse(t *testing.T) {
	cond := ast.NewBinary(pos, ast.OpEq, ast.NewIdentity(pos), ast.NewInt(pos, 2))
	node := ast.NewIfThenElse(pos, cond, ast.NewStr(pos, "yes"), ast.NewStr(pos, "no"))
	out := run(t, node, orgvalue.Stream{orgvalue.Int(2)}, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.Str("yes")}, out)
	out = run(t, node, orgvalue.Stream{orgvalue.Int(3)}, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.Str("no")}, out)
}

func TestCompileUnaryMinusConstantFolds(t *testing.T) {
	node := ast.NewUnaryMinus(pos, ast.NewInt(pos, 7))
	out := run(t, node, orgvalue.Stream{orgvalue.None{}}, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.Int(-7)}, out)
}

func TestCompileModRemQuot(t *testing.T) {
	mod := ast.NewBinary(pos, ast.OpMod, ast.NewUnaryMinus(pos, ast.NewInt(pos, 7)), ast.NewInt(pos, 3))
	rem := ast.NewBinary(pos, ast.OpRem, ast.NewUnaryMinus(pos, ast.NewInt(pos, 7)), ast.NewInt(pos, 3))
	quot := ast.NewBinary(pos, ast.OpQuot, ast.NewUnaryMinus(pos, ast.NewInt(pos, 7)), ast.NewInt(pos, 3))
	tuple := ast.NewTuple(pos, []ast.Node{mod, rem, quot})
	out := run(t, tuple, orgvalue.Stream{orgvalue.Int(7)}, nil)
	require.Len(t, out, 1)
	tup := out[0].(*orgvalue.Tuple)
	assert.Equal(t, []orgvalue.Value{orgvalue.Int(2), orgvalue.Int(-1), orgvalue.Int(-2)}, tup.Items)
}

func TestCompileUnknownFunctionSuggestsClosestName(t *testing.T) {
	call := ast.NewFunctionCall(pos, "selct", nil)
	_, err := Compile(call, builtins.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select")
}

func TestCompileArityMismatch(t *testing.T) {
	call := ast.NewFunctionCall(pos, "select", nil)
	_, err := Compile(call, builtins.Default())
	require.Error(t, err)
}
