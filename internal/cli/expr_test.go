package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/scalarir"
)

func intParam(label string) *scalarir.Variable {
	return &scalarir.Variable{Label: label, Type: scalarir.Int32}
}

func floatParam(label string) *scalarir.Variable {
	return &scalarir.Variable{Label: label, Type: scalarir.Float32}
}

func TestParseLambdaBody_SingleParam(t *testing.T) {
	x := intParam("x")

	t.Run("bare parameter", func(t *testing.T) {
		expr, err := ParseLambdaBody("x", x)
		require.NoError(t, err)
		assert.Same(t, x, expr)
	})

	t.Run("product", func(t *testing.T) {
		expr, err := ParseLambdaBody("x * 2", x)
		require.NoError(t, err)
		op, ok := expr.(scalarir.BinaryOp)
		require.True(t, ok)
		assert.Equal(t, scalarir.Times, op.Op)
		assert.Same(t, x, op.Left)
		assert.Equal(t, scalarir.Constant{Value: int64(2), Type: scalarir.Int32}, op.Right)
	})

	t.Run("even predicate", func(t *testing.T) {
		expr, err := ParseLambdaBody("x % 2 == 0", x)
		require.NoError(t, err)
		eq, ok := expr.(scalarir.BinaryOp)
		require.True(t, ok)
		assert.Equal(t, scalarir.Equal, eq.Op)
		mod, ok := eq.Left.(scalarir.BinaryOp)
		require.True(t, ok)
		assert.Equal(t, scalarir.Modulo, mod.Op)
	})
}

func TestParseLambdaBody_Precedence(t *testing.T) {
	x := intParam("x")

	// x + 2 * 3 parses as x + (2 * 3).
	expr, err := ParseLambdaBody("x + 2 * 3", x)
	require.NoError(t, err)
	plus, ok := expr.(scalarir.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, scalarir.Plus, plus.Op)
	assert.Same(t, x, plus.Left)
	times, ok := plus.Right.(scalarir.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, scalarir.Times, times.Op)
}

func TestParseLambdaBody_Parentheses(t *testing.T) {
	x := intParam("x")

	expr, err := ParseLambdaBody("(x + 1) * 2", x)
	require.NoError(t, err)
	times, ok := expr.(scalarir.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, scalarir.Times, times.Op)
	plus, ok := times.Left.(scalarir.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, scalarir.Plus, plus.Op)
}

func TestParseLambdaBody_Cast(t *testing.T) {
	x := floatParam("x")

	expr, err := ParseLambdaBody("int32(x)", x)
	require.NoError(t, err)
	conv, ok := expr.(scalarir.Convert)
	require.True(t, ok)
	assert.Equal(t, scalarir.Int32, conv.Type)
	assert.Same(t, x, conv.Value)
}

func TestParseLambdaBody_TwoParams(t *testing.T) {
	a, b := intParam("a"), intParam("b")

	expr, err := ParseLambdaBody("a + b", a, b)
	require.NoError(t, err)
	plus, ok := expr.(scalarir.BinaryOp)
	require.True(t, ok)
	assert.Same(t, a, plus.Left)
	assert.Same(t, b, plus.Right)
}

func TestParseLambdaBody_Literals(t *testing.T) {
	t.Run("float literal in float pipeline", func(t *testing.T) {
		expr, err := ParseLambdaBody("x * 1.5", floatParam("x"))
		require.NoError(t, err)
		op := expr.(scalarir.BinaryOp)
		assert.Equal(t, scalarir.Constant{Value: 1.5, Type: scalarir.Float32}, op.Right)
	})

	t.Run("fractional literal in int pipeline", func(t *testing.T) {
		_, err := ParseLambdaBody("x * 1.5", intParam("x"))
		require.Error(t, err)
		var exprErr *ExprError
		assert.ErrorAs(t, err, &exprErr)
	})
}

func TestParseLambdaBody_Errors(t *testing.T) {
	x := intParam("x")

	tests := map[string]string{
		"unknown identifier": "y + 1",
		"trailing input":     "x 2",
		"unclosed paren":     "(x + 1",
		"empty":              "",
		"lone operator":      "+",
		"bad character":      "x & 1",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLambdaBody(src, x)
			require.Error(t, err)
			var exprErr *ExprError
			assert.ErrorAs(t, err, &exprErr)
		})
	}
}

func TestParseLambdaBody_NoParams(t *testing.T) {
	_, err := ParseLambdaBody("1 + 1")
	assert.Error(t, err)
}

func TestParseLambdaBody_DuplicateParams(t *testing.T) {
	_, err := ParseLambdaBody("a", intParam("a"), intParam("a"))
	assert.Error(t, err)
}
