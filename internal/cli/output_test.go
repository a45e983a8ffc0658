package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))

	wrapped := fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner"))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestExitError_Unwrap(t *testing.T) {
	inner := errors.New("root cause")
	err := &ExitError{Code: ExitFailure, Message: "failed", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "failed: root cause", err.Error())
	assert.Equal(t, "no cause", (&ExitError{Code: 1, Message: "no cause"}).Error())
}

func TestOutputFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.JSON(map[string]string{"kind": "map"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_TextSuppressedInJSONMode(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	f.Text("pipeline: %s", "demo")
	assert.Empty(t, buf.String())

	f.Format = "text"
	f.Text("pipeline: %s", "demo")
	assert.Equal(t, "pipeline: demo\n", buf.String())
}

func TestOutputFormatter_Error(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		f := &OutputFormatter{Format: "json", Writer: &buf}

		require.NoError(t, f.Error(ErrCodeCompile, "fusion failed", nil))

		var resp CLIResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeCompile, resp.Error.Code)
		assert.Equal(t, "fusion failed", resp.Error.Message)
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		f := &OutputFormatter{Format: "text", Writer: &buf}

		require.NoError(t, f.Error(ErrCodeCompile, "fusion failed", nil))
		assert.Equal(t, "Error [COMPILE_FAILED]: fusion failed\n", buf.String())
	})
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &errOut}

	f.VerboseLog("quiet")
	assert.Empty(t, errOut.String())

	f.Verbose = true
	f.VerboseLog("loud %d", 1)
	// Diagnostics land on ErrWriter so JSON on Writer stays parseable.
	assert.Empty(t, out.String())
	assert.Equal(t, "loud 1\n", errOut.String())
}
