package tui

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/workon/internal/errors"
)

func TestValidateFormat(t *testing.T) {
	require.NoError(t, ValidateFormat(""))
	require.NoError(t, ValidateFormat(FormatText))
	require.NoError(t, ValidateFormat(FormatJSON))
	require.ErrorIs(t, ValidateFormat("yaml"), errors.ErrInvalidOutputFormat)
}

func TestNewOutput(t *testing.T) {
	var buf bytes.Buffer
	assert.IsType(t, &JSONOutput{}, NewOutput(&buf, FormatJSON))
	assert.IsType(t, &TextOutput{}, NewOutput(&buf, FormatText))
	assert.IsType(t, &TextOutput{}, NewOutput(&buf, ""))
}

func TestTextOutput(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	out := NewTextOutput(&buf)
	out.Info("Activate environment:")
	out.Command("conda activate estcp-alpha")
	out.Success("done")

	assert.Equal(t, "Activate environment:\n> conda activate estcp-alpha\ndone\n", buf.String())
}

func TestTextOutput_Precondition(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	err := errors.NewPreconditionError(errors.ErrWrongDirectory, "Change directory to ../alpha.", "cd ../alpha")
	NewTextOutput(&buf).Error(errors.Wrap(err, "work-on"))

	assert.Equal(t, "Change directory to ../alpha.\n> cd ../alpha\n", buf.String())
}

func TestTextOutput_ErrorWithAction(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	NewTextOutput(&buf).Error(errors.Wrap(errors.ErrWorkDirNotFound, "gamma"))

	msg, action := errors.Actionable(errors.ErrWorkDirNotFound)
	assert.Contains(t, buf.String(), msg)
	assert.Contains(t, buf.String(), "gamma")
	if action != "" {
		assert.Contains(t, buf.String(), action)
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	out := NewJSONOutput(&buf)
	out.Warning("careful")
	out.Command("git checkout master")
	out.Error(errors.NewPreconditionError(errors.ErrWrongBranch, "Switch to master.", "git checkout master"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var msg map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &msg))
	assert.Equal(t, map[string]string{"type": "warning", "message": "careful"}, msg)

	var errOut map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &errOut))
	assert.Equal(t, "error", errOut["type"])
	assert.Equal(t, "Switch to master.", errOut["message"])
	assert.Equal(t, "git checkout master", errOut["command"])
	assert.Equal(t, errors.ErrWrongBranch.Error(), errOut["details"])
}

func TestOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONOutput(&buf).JSON([]string{"alpha", "project"}))
	assert.Equal(t, "[\n  \"alpha\",\n  \"project\"\n]\n", buf.String())
}
