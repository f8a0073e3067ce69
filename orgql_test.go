package orgql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Idorobots/org-cli/builtins"
	"github.com/Idorobots/org-cli/orgvalue"
)

func eval(t *testing.T, src string, in orgvalue.Stream, vars map[string]orgvalue.Value) orgvalue.Stream {
	t.Helper()
	out, err := Run(src, builtins.Default(), in, orgvalue.NewContext(vars))
	require.NoError(t, err)
	return out
}

func TestScenarioUniqueOverIteratedList(t *testing.T) {
	in := orgvalue.Stream{orgvalue.NewList(
		orgvalue.Int(1), orgvalue.Int(1), orgvalue.Int(2), orgvalue.Int(3), orgvalue.Int(2))}
	out := eval(t, ".[] | unique", in, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.Int(1), orgvalue.Int(2), orgvalue.Int(3)}, out)
}

func TestScenarioSelectThenField(t *testing.T) {
	mk := func(todo, h string) *orgvalue.Dict {
		d := orgvalue.NewDict()
		d.Set("todo", orgvalue.Str(todo))
		d.Set("h", orgvalue.Str(h))
		return d
	}
	in := orgvalue.Stream{orgvalue.NewList(mk("DONE", "a"), mk("TODO", "b"), mk("DONE", "c"))}
	out := eval(t, `.[] | select(.todo == "DONE") | .h`, in, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.Str("a"), orgvalue.Str("c")}, out)
}

func TestScenarioVariableBoundSlice(t *testing.T) {
	in := orgvalue.Stream{orgvalue.NewList(
		orgvalue.Int(1), orgvalue.Int(2), orgvalue.Int(3), orgvalue.Int(4), orgvalue.Int(5))}
	vars := map[string]orgvalue.Value{"offset": orgvalue.Int(1), "limit": orgvalue.Int(3)}
	out := eval(t, ".[ $offset : $offset + $limit ]", in, vars)
	require.Len(t, out, 1)
	list := out[0].(*orgvalue.List)
	assert.Equal(t, []orgvalue.Value{orgvalue.Int(2), orgvalue.Int(3), orgvalue.Int(4)}, list.Items)
}

func TestScenarioSha256(t *testing.T) {
	out := eval(t, "sha256", orgvalue.Stream{orgvalue.Str("abc")}, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.Str("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")}, out)
}

func TestScenarioModRemQuotTuple(t *testing.T) {
	out := eval(t, "-7 mod 3, -7 rem 3, -7 quot 3", orgvalue.Stream{orgvalue.Int(7)}, nil)
	require.Len(t, out, 1)
	tup := out[0].(*orgvalue.Tuple)
	assert.Equal(t, []orgvalue.Value{orgvalue.Int(2), orgvalue.Int(-1), orgvalue.Int(-2)}, tup.Items)
}

func TestScenarioSortByDescending(t *testing.T) {
	in := orgvalue.Stream{orgvalue.NewList(
		orgvalue.Int(3), orgvalue.Int(1), orgvalue.Int(4), orgvalue.Int(1), orgvalue.Int(5), orgvalue.Int(9), orgvalue.Int(2))}
	out := eval(t, "sort_by(.)", in, nil)
	require.Len(t, out, 1)
	list := out[0].(*orgvalue.List)
	assert.Equal(t, []orgvalue.Value{
		orgvalue.Int(9), orgvalue.Int(5), orgvalue.Int(4), orgvalue.Int(3),
		orgvalue.Int(2), orgvalue.Int(1), orgvalue.Int(1),
	}, list.Items)
}

func TestScenarioBracketAssignThenSequence(t *testing.T) {
	p := orgvalue.NewDict()
	root := orgvalue.NewDict()
	root.Set("p", p)
	out := eval(t, `.p["k"] = "v"; .p.k`, orgvalue.Stream{root}, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.Str("v")}, out)
}

func TestScenarioFoldOverIteratedDoubling(t *testing.T) {
	in := orgvalue.Stream{orgvalue.NewList(orgvalue.Int(10), orgvalue.Int(20), orgvalue.Int(30))}
	out := eval(t, "[ .[] | . * 2 ]", in, nil)
	require.Len(t, out, 1)
	list := out[0].(*orgvalue.List)
	assert.Equal(t, []orgvalue.Value{orgvalue.Int(20), orgvalue.Int(40), orgvalue.Int(60)}, list.Items)
}

func TestScenarioIfThenElse(t *testing.T) {
	out := eval(t, `if . == 2 then "yes" else "no"`, orgvalue.Stream{orgvalue.Int(2)}, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.Str("yes")}, out)
}

func TestScenarioMatchesAndIn(t *testing.T) {
	d := orgvalue.NewDict()
	d.Set("heading", orgvalue.Str("Fix bug"))
	d.Set("tags", orgvalue.NewList(orgvalue.Str("debug")))
	out := eval(t, `select(.heading matches "^Fix" and "debug" in .tags) | .heading`, orgvalue.Stream{d}, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.Str("Fix bug")}, out)
}

func TestInvariantRoundTripIdentity(t *testing.T) {
	for _, v := range []orgvalue.Value{orgvalue.Int(1), orgvalue.Str("x"), orgvalue.None{}, orgvalue.Bool(true)} {
		out := eval(t, ".", orgvalue.Stream{v}, nil)
		assert.Equal(t, orgvalue.Stream{v}, out)
	}
}

func TestInvariantMissingFieldAndOutOfRangeIndexAreNone(t *testing.T) {
	d := orgvalue.NewDict()
	out := eval(t, ".nope", orgvalue.Stream{d}, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.None{}}, out)

	list := orgvalue.NewList(orgvalue.Int(1))
	out = eval(t, ".[99]", orgvalue.Stream{list}, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.None{}}, out)
}

func TestInvariantSliceIsAlwaysTotal(t *testing.T) {
	list := orgvalue.NewList(orgvalue.Int(1), orgvalue.Int(2), orgvalue.Int(3))
	out := eval(t, ".[-100:100]", orgvalue.Stream{list}, nil)
	require.Len(t, out, 1)
	got := out[0].(*orgvalue.List)
	assert.Len(t, got.Items, 3)
}

func TestInvariantPipelineAssociativity(t *testing.T) {
	in := orgvalue.Stream{orgvalue.NewList(orgvalue.Int(1), orgvalue.Int(2), orgvalue.Int(3))}
	left := eval(t, "(.[] | . + 1) | . * 2", in, nil)
	right := eval(t, ".[] | (. + 1 | . * 2)", in, nil)
	assert.Equal(t, left, right)
}

func TestInvariantTruthinessOfOr(t *testing.T) {
	out := eval(t, "1 or 2", orgvalue.Stream{orgvalue.None{}}, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.Int(1)}, out)

	out = eval(t, "none or 2", orgvalue.Stream{orgvalue.None{}}, nil)
	assert.Equal(t, orgvalue.Stream{orgvalue.Int(2)}, out)
}

func TestInvariantComparisonWithNone(t *testing.T) {
	out := eval(t, "1 > none, 1 < none, none > 1, none < 1, none <= none", orgvalue.Stream{orgvalue.None{}}, nil)
	require.Len(t, out, 1)
	tup := out[0].(*orgvalue.Tuple)
	assert.Equal(t, []orgvalue.Value{
		orgvalue.Bool(false), orgvalue.Bool(false), orgvalue.Bool(false), orgvalue.Bool(false), orgvalue.Bool(true),
	}, tup.Items)
}
