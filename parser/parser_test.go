package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Idorobots/org-cli/ast"
	"github.com/Idorobots/org-cli/token"
)

var zeroPos token.Position

// astEqual compares two nodes structurally, ignoring source positions
// (test fixtures build expected trees without caring about columns).
func astEqual(a, b ast.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *ast.Int:
		bv, ok := b.(*ast.Int)
		return ok && av.Value == bv.Value
	case *ast.Float:
		bv, ok := b.(*ast.Float)
		return ok && av.Value == bv.Value
	case *ast.Str:
		bv, ok := b.(*ast.Str)
		return ok && av.Value == bv.Value
	case *ast.Bool:
		bv, ok := b.(*ast.Bool)
		return ok && av.Value == bv.Value
	case *ast.NoneLit:
		_, ok := b.(*ast.NoneLit)
		return ok
	case *ast.Identity:
		_, ok := b.(*ast.Identity)
		return ok
	case *ast.Variable:
		bv, ok := b.(*ast.Variable)
		return ok && av.Name == bv.Name
	case *ast.FieldAccess:
		bv, ok := b.(*ast.FieldAccess)
		return ok && av.Name == bv.Name && astEqual(av.Inner, bv.Inner)
	case *ast.BracketAccess:
		bv, ok := b.(*ast.BracketAccess)
		return ok && astEqual(av.Inner, bv.Inner) && astEqual(av.Key, bv.Key)
	case *ast.Iterate:
		bv, ok := b.(*ast.Iterate)
		return ok && astEqual(av.Inner, bv.Inner)
	case *ast.Index:
		bv, ok := b.(*ast.Index)
		return ok && astEqual(av.Inner, bv.Inner) && astEqual(av.Idx, bv.Idx)
	case *ast.Slice:
		bv, ok := b.(*ast.Slice)
		return ok && astEqual(av.Inner, bv.Inner) && astEqual(av.Start, bv.Start) && astEqual(av.End, bv.End)
	case *ast.FunctionCall:
		bv, ok := b.(*ast.FunctionCall)
		if !ok || av.Name != bv.Name || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !astEqual(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case *ast.NullaryFunctionRef:
		bv, ok := b.(*ast.NullaryFunctionRef)
		return ok && av.Name == bv.Name
	case *ast.Binary:
		bv, ok := b.(*ast.Binary)
		return ok && av.Op == bv.Op && astEqual(av.Left, bv.Left) && astEqual(av.Right, bv.Right)
	case *ast.UnaryMinus:
		bv, ok := b.(*ast.UnaryMinus)
		return ok && astEqual(av.Inner, bv.Inner)
	case *ast.Tuple:
		bv, ok := b.(*ast.Tuple)
		if !ok || len(av.Children) != len(bv.Children) {
			return false
		}
		for i := range av.Children {
			if !astEqual(av.Children[i], bv.Children[i]) {
				return false
			}
		}
		return true
	case *ast.Fold:
		bv, ok := b.(*ast.Fold)
		return ok && astEqual(av.Inner, bv.Inner)
	case *ast.Pipe:
		bv, ok := b.(*ast.Pipe)
		return ok && astEqual(av.Left, bv.Left) && astEqual(av.Right, bv.Right)
	case *ast.Sequence:
		bv, ok := b.(*ast.Sequence)
		return ok && astEqual(av.Left, bv.Left) && astEqual(av.Right, bv.Right)
	case *ast.AsBinding:
		bv, ok := b.(*ast.AsBinding)
		return ok && av.Name == bv.Name && astEqual(av.Value, bv.Value) && astEqual(av.Body, bv.Body)
	case *ast.LetBinding:
		bv, ok := b.(*ast.LetBinding)
		return ok && av.Name == bv.Name && astEqual(av.Value, bv.Value) && astEqual(av.Body, bv.Body)
	case *ast.IfThenElse:
		bv, ok := b.(*ast.IfThenElse)
		return ok && astEqual(av.Cond, bv.Cond) && astEqual(av.Then, bv.Then) && astEqual(av.Else, bv.Else)
	case *ast.AssignField:
		bv, ok := b.(*ast.AssignField)
		return ok && av.Name == bv.Name && astEqual(av.Target, bv.Target) && astEqual(av.Value, bv.Value)
	case *ast.AssignBracket:
		bv, ok := b.(*ast.AssignBracket)
		return ok && astEqual(av.Target, bv.Target) && astEqual(av.Key, bv.Key) && astEqual(av.Value, bv.Value)
	default:
		return false
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ast.Node
	}{
		{
			name:  "multiplicative binds tighter than additive",
			input: "1 + 2 * 3",
			want: ast.NewBinary(zeroPos, ast.OpAdd,
				ast.NewInt(zeroPos, 1),
				ast.NewBinary(zeroPos, ast.OpMul, ast.NewInt(zeroPos, 2), ast.NewInt(zeroPos, 3))),
		},
		{
			name:  "pow right-assoc",
			input: "2 ** 3 ** 2",
			want: ast.NewBinary(zeroPos, ast.OpPow,
				ast.NewInt(zeroPos, 2),
				ast.NewBinary(zeroPos, ast.OpPow, ast.NewInt(zeroPos, 3), ast.NewInt(zeroPos, 2))),
		},
		{
			name:  "unary minus binds looser than pow",
			input: "-2 ** 2",
			want: ast.NewUnaryMinus(zeroPos,
				ast.NewBinary(zeroPos, ast.OpPow, ast.NewInt(zeroPos, 2), ast.NewInt(zeroPos, 2))),
		},
		{
			name:  "pipe right-assoc",
			input: "a | b | c",
			want: ast.NewPipe(zeroPos,
				ast.NewNullaryFunctionRef(zeroPos, "a"),
				ast.NewPipe(zeroPos,
					ast.NewNullaryFunctionRef(zeroPos, "b"),
					ast.NewNullaryFunctionRef(zeroPos, "c"))),
		},
		{
			name:  "tuple flattens to n-ary",
			input: "1, 2, 3",
			want: ast.NewTuple(zeroPos, []ast.Node{
				ast.NewInt(zeroPos, 1), ast.NewInt(zeroPos, 2), ast.NewInt(zeroPos, 3),
			}),
		},
		{
			name:  "and binds tighter than or",
			input: "a or b and c",
			want: ast.NewBinary(zeroPos, ast.OpOr,
				ast.NewNullaryFunctionRef(zeroPos, "a"),
				ast.NewBinary(zeroPos, ast.OpAnd,
					ast.NewNullaryFunctionRef(zeroPos, "b"),
					ast.NewNullaryFunctionRef(zeroPos, "c"))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.True(t, astEqual(got, tt.want), "got %#v want %#v", got, tt.want)
		})
	}
}

func TestParseFieldAndBracketChains(t *testing.T) {
	got, err := Parse(".a.b[0][1:2]")
	require.NoError(t, err)

	slice, ok := got.(*ast.Slice)
	require.True(t, ok, "expected *ast.Slice, got %T", got)
	idx, ok := slice.Inner.(*ast.Index)
	require.True(t, ok, "expected *ast.Index, got %T", slice.Inner)
	fb, ok := idx.Inner.(*ast.FieldAccess)
	require.True(t, ok, "expected *ast.FieldAccess, got %T", idx.Inner)
	assert.Equal(t, "b", fb.Name)
	fa, ok := fb.Inner.(*ast.FieldAccess)
	require.True(t, ok)
	assert.Equal(t, "a", fa.Name)
	_, ok = fa.Inner.(*ast.Identity)
	require.True(t, ok)
}

func TestParseIterate(t *testing.T) {
	got, err := Parse(".[]")
	require.NoError(t, err)
	it, ok := got.(*ast.Iterate)
	require.True(t, ok)
	_, ok = it.Inner.(*ast.Identity)
	require.True(t, ok)
}

func TestParseFunctionCall(t *testing.T) {
	got, err := Parse(`select(.todo == "DONE")`)
	require.NoError(t, err)
	call, ok := got.(*ast.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "select", call.Name)
	require.Len(t, call.Args, 1)
}

func TestParseAsBindingCapturesTailOfPipe(t *testing.T) {
	got, err := Parse(". as $x | $x + 1 | $x * 2")
	require.NoError(t, err)
	as, ok := got.(*ast.AsBinding)
	require.True(t, ok)
	assert.Equal(t, "x", as.Name)
	// Body should be the entire remainder of the pipe, not just the first stage.
	_, ok = as.Body.(*ast.Pipe)
	require.True(t, ok, "expected body to be a Pipe capturing the tail")
}

func TestParseLetBinding(t *testing.T) {
	got, err := Parse("let 1 + 1 as $two in $two * $two")
	require.NoError(t, err)
	let, ok := got.(*ast.LetBinding)
	require.True(t, ok)
	assert.Equal(t, "two", let.Name)
}

func TestParseIfElifElseDesugars(t *testing.T) {
	got, err := Parse(`if . == 1 then "one" elif . == 2 then "two" else "other"`)
	require.NoError(t, err)
	outer, ok := got.(*ast.IfThenElse)
	require.True(t, ok)
	inner, ok := outer.Else.(*ast.IfThenElse)
	require.True(t, ok, "elif should desugar into a nested IfThenElse in the else branch")
	elseLit, ok := inner.Else.(*ast.Str)
	require.True(t, ok)
	assert.Equal(t, "other", elseLit.Value)
}

func TestParseAssignmentTargets(t *testing.T) {
	t.Run("field target", func(t *testing.T) {
		got, err := Parse(".p.k = 1")
		require.NoError(t, err)
		_, ok := got.(*ast.AssignField)
		require.True(t, ok)
	})
	t.Run("bracket target", func(t *testing.T) {
		got, err := Parse(`.p["k"] = 1`)
		require.NoError(t, err)
		_, ok := got.(*ast.AssignBracket)
		require.True(t, ok)
	})
	t.Run("invalid target rejected", func(t *testing.T) {
		_, err := Parse("1 = 2")
		require.Error(t, err)
	})
}

func TestParseEmptyListLiteralVsFold(t *testing.T) {
	empty, err := Parse("[]")
	require.NoError(t, err)
	fold, ok := empty.(*ast.Fold)
	require.True(t, ok)
	assert.Nil(t, fold.Inner)

	nonEmpty, err := Parse("[.[] | . * 2]")
	require.NoError(t, err)
	fold2, ok := nonEmpty.(*ast.Fold)
	require.True(t, ok)
	assert.NotNil(t, fold2.Inner)
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"(1 + 2",
		".a[1:",
		"if . then 1",
		"let 1 as $x",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
		})
	}
}
