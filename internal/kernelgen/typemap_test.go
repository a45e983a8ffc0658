package kernelgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/scalarir"
)

func TestTypeToken(t *testing.T) {
	tests := []struct {
		elem  scalarir.ElemType
		token string
	}{
		{scalarir.Int32, "int"},
		{scalarir.Float32, "float"},
		// Both float widths share the single-precision token.
		{scalarir.Float64, "float"},
		{scalarir.Byte, "byte"},
	}
	for _, tt := range tests {
		token, err := TypeToken(tt.elem)
		require.NoError(t, err, "token for %s", tt.elem)
		assert.Equal(t, tt.token, token)
	}
}

func TestTypeToken_RejectsUnknownTypes(t *testing.T) {
	_, err := TypeToken(scalarir.ElemType(42))
	require.Error(t, err)
	assert.True(t, IsUnsupportedType(err))
}
