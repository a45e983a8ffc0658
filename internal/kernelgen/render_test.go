package kernelgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/scalarir"
)

func newTestRenderer(vars ...*scalarir.Variable) *renderer {
	return &renderer{vars: vars, continueLabel: "fuse_continue"}
}

func TestRenderExpr_Constants(t *testing.T) {
	tests := []struct {
		name string
		expr scalarir.Constant
		want string
	}{
		{"int", scalarir.Constant{Value: 7, Type: scalarir.Int32}, "7"},
		{"int64 value", scalarir.Constant{Value: int64(-3), Type: scalarir.Int32}, "-3"},
		{"byte", scalarir.Constant{Value: byte(255), Type: scalarir.Byte}, "255"},
		{"float32", scalarir.Constant{Value: 1.5, Type: scalarir.Float32}, "1.5f"},
		// Whole-valued floats still need to read as floating literals.
		{"whole float32", scalarir.Constant{Value: float64(2), Type: scalarir.Float32}, "2.0f"},
		{"int value in float32", scalarir.Constant{Value: 0, Type: scalarir.Float32}, "0.0f"},
		{"float64", scalarir.Constant{Value: 2.25, Type: scalarir.Float64}, "2.25"},
		{"whole float64", scalarir.Constant{Value: float64(4), Type: scalarir.Float64}, "4.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestRenderer().renderExpr(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderExpr_ConstantValueTypeMismatch(t *testing.T) {
	_, err := newTestRenderer().renderExpr(scalarir.Constant{Value: "seven", Type: scalarir.Int32})
	require.Error(t, err)
	assert.True(t, IsUnsupportedExpression(err))

	_, err = newTestRenderer().renderExpr(scalarir.Constant{Value: "pi", Type: scalarir.Float32})
	require.Error(t, err)
	assert.True(t, IsUnsupportedExpression(err))
}

func TestRenderExpr_ConstantUnknownType(t *testing.T) {
	_, err := newTestRenderer().renderExpr(scalarir.Constant{Value: 1, Type: scalarir.ElemType(42)})
	require.Error(t, err)
	assert.True(t, IsUnsupportedType(err))
}

func TestRenderExpr_VariableAndAssign(t *testing.T) {
	final := &scalarir.Variable{Label: "final", Type: scalarir.Int32}
	x := &scalarir.Variable{Label: "x", Type: scalarir.Int32}
	r := newTestRenderer(final, x)

	got, err := r.renderExpr(x)
	require.NoError(t, err)
	assert.Equal(t, "x1", got)

	got, err = r.renderExpr(scalarir.Assign{
		Target: final,
		Value:  scalarir.BinaryOp{Op: scalarir.Times, Left: x, Right: scalarir.Constant{Value: 2, Type: scalarir.Int32}},
	})
	require.NoError(t, err)
	assert.Equal(t, "final0 = (x1 * 2)", got)
}

func TestRenderExpr_NestedBinaryOps(t *testing.T) {
	x := &scalarir.Variable{Label: "x", Type: scalarir.Int32}
	r := newTestRenderer(x)

	// (x % 2) == 0
	expr := scalarir.BinaryOp{
		Op:    scalarir.Equal,
		Left:  scalarir.BinaryOp{Op: scalarir.Modulo, Left: x, Right: scalarir.Constant{Value: 2, Type: scalarir.Int32}},
		Right: scalarir.Constant{Value: 0, Type: scalarir.Int32},
	}
	got, err := r.renderExpr(expr)
	require.NoError(t, err)
	assert.Equal(t, "((x0 % 2) == 0)", got)
}

func TestRenderExpr_Conditional(t *testing.T) {
	flag := &scalarir.Variable{Label: "flag", Type: scalarir.Int32}
	x := &scalarir.Variable{Label: "x", Type: scalarir.Int32}
	r := newTestRenderer(flag, x)

	pred := scalarir.BinaryOp{Op: scalarir.Equal, Left: x, Right: scalarir.Constant{Value: 0, Type: scalarir.Int32}}

	t.Run("flag branch", func(t *testing.T) {
		cond := scalarir.Conditional{
			Test: pred,
			Then: scalarir.Assign{Target: flag, Value: scalarir.Constant{Value: 0, Type: scalarir.Int32}},
			Else: scalarir.Block{Exprs: []scalarir.Expr{
				scalarir.Assign{Target: flag, Value: scalarir.Constant{Value: 1, Type: scalarir.Int32}},
				scalarir.ContinueJump{},
			}},
		}
		got, err := r.renderExpr(cond)
		require.NoError(t, err)
		assert.Equal(t, "if ((x1 == 0)) { flag0 = 0; } else { flag0 = 1;\ngoto fuse_continue; }", got)
	})

	t.Run("plain skip", func(t *testing.T) {
		cond := scalarir.Conditional{Test: pred, Then: scalarir.Empty{}, Else: scalarir.ContinueJump{}}
		got, err := r.renderExpr(cond)
		require.NoError(t, err)
		assert.Equal(t, "if ((x1 == 0)) { } else { goto fuse_continue; }", got)
	})
}

func TestRenderExpr_Convert(t *testing.T) {
	x := &scalarir.Variable{Label: "x", Type: scalarir.Float32}
	r := newTestRenderer(x)

	got, err := r.renderExpr(scalarir.Convert{Value: x, Type: scalarir.Int32})
	require.NoError(t, err)
	assert.Equal(t, "((int)x0)", got)
}

func TestRenderExpr_Empty(t *testing.T) {
	got, err := newTestRenderer().renderExpr(scalarir.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestRenderExpr_UndeclaredVariable(t *testing.T) {
	stray := &scalarir.Variable{Label: "x", Type: scalarir.Int32}
	_, err := newTestRenderer().renderExpr(stray)
	require.Error(t, err)
	assert.True(t, IsInternal(err))
}

func TestRenderStatements(t *testing.T) {
	final := &scalarir.Variable{Label: "final", Type: scalarir.Int32}
	x := &scalarir.Variable{Label: "x", Type: scalarir.Int32}
	r := newTestRenderer(final, x)

	t.Run("empty", func(t *testing.T) {
		got, err := r.renderStatements(nil)
		require.NoError(t, err)
		assert.Equal(t, "", got)
	})

	t.Run("two statements", func(t *testing.T) {
		got, err := r.renderStatements([]scalarir.Expr{
			scalarir.Assign{Target: final, Value: x},
			scalarir.Assign{Target: x, Value: scalarir.Constant{Value: 1, Type: scalarir.Int32}},
		})
		require.NoError(t, err)
		assert.Equal(t, "final0 = x1;\nx1 = 1;", got)
	})
}

func TestRenderDecls(t *testing.T) {
	final := &scalarir.Variable{Label: "final", Type: scalarir.Float32}
	x := &scalarir.Variable{Label: "x", Type: scalarir.Byte}
	r := newTestRenderer(final, x)

	got, err := r.renderDecls()
	require.NoError(t, err)
	assert.Equal(t, "float final0;\nbyte x1;", got)
}

func TestRenderDecls_UnknownTypeFailsBeforeOutput(t *testing.T) {
	bad := &scalarir.Variable{Label: "x", Type: scalarir.ElemType(42)}
	r := newTestRenderer(bad)

	_, err := r.renderDecls()
	require.Error(t, err)
	assert.True(t, IsUnsupportedType(err))
}
