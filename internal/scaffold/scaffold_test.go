package scaffold

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/workon/internal/errors"
)

func TestList_AllTemplatesLoaded(t *testing.T) {
	assert.Equal(t, []TemplateID{
		PrepareCommitMsgHook,
		PosixLauncher,
		WindowsLauncher,
		DevEnv,
		RunEnv,
		GitIgnore,
	}, List())
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render("nope/missing", nil)
	require.ErrorIs(t, err, errors.ErrTemplateNotFound)

	_, err = Source("nope/missing")
	require.ErrorIs(t, err, errors.ErrTemplateNotFound)
}

func TestRender_MissingKeyFails(t *testing.T) {
	_, err := Render(DevEnv, map[string]string{})
	require.Error(t, err)
}

func TestRender_DevEnvKeepsJinja(t *testing.T) {
	out, err := Render(DevEnv, NewWorkDirData("alpha", "estcp-alpha"))
	require.NoError(t, err)

	assert.Contains(t, out, "name: estcp-alpha")
	assert.Contains(t, out, `"{{ root }}/environment.run.yml"`)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc), "rendered devenv must be valid YAML")
	assert.Equal(t, "estcp-alpha", doc["name"])
	assert.Contains(t, doc, "environment")
}

func TestRender_RunEnv(t *testing.T) {
	out, err := Render(RunEnv, NewWorkDirData("alpha", "estcp-alpha"))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []any{"python"}, doc["dependencies"])
}

func TestRender_GitIgnore(t *testing.T) {
	out, err := Render(GitIgnore, NewWorkDirData("alpha", "estcp-alpha"))
	require.NoError(t, err)
	assert.Equal(t, "wbin/\nscripts/bin/\n.envfn\n.workon.lock\n", out)
}

func TestRender_Hook(t *testing.T) {
	out, err := Render(PrepareCommitMsgHook, HookData{Executable: "/usr/local/bin/workon"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "#!/bin/sh\n"))
	assert.Contains(t, out, `exec "/usr/local/bin/workon" project git prepare-commit-msg "$1"`)
}

func TestLaunchers(t *testing.T) {
	t.Run("two commands", func(t *testing.T) {
		posix, windows, err := Launchers([]string{"foo", "bar"})
		require.NoError(t, err)

		assert.Equal(t, "#!/bin/sh\nset -e\nfoo \"$@\"\nbar\nexit 0\n", posix)
		assert.Equal(t, "@echo off\r\nfoo %* && bar\r\n", windows)
	})

	t.Run("single command", func(t *testing.T) {
		posix, windows, err := Launchers([]string{"python /w/scripts/run.py"})
		require.NoError(t, err)

		assert.Equal(t, "#!/bin/sh\nset -e\npython /w/scripts/run.py \"$@\"\nexit 0\n", posix)
		assert.Equal(t, "@echo off\r\npython /w/scripts/run.py %*\r\n", windows)
	})

	t.Run("blank lines dropped before choosing first", func(t *testing.T) {
		posix, windows, err := Launchers([]string{"", "  ", "foo\r", "", "bar", "baz"})
		require.NoError(t, err)

		assert.Equal(t, "#!/bin/sh\nset -e\nfoo \"$@\"\nbar\nbaz\nexit 0\n", posix)
		assert.Equal(t, "@echo off\r\nfoo %* && bar && baz\r\n", windows)
	})

	t.Run("no commands", func(t *testing.T) {
		_, _, err := Launchers([]string{"", " "})
		require.ErrorIs(t, err, errors.ErrEmptyValue)
	})
}

func TestToCRLF(t *testing.T) {
	assert.Equal(t, "a\r\nb\r\n", ToCRLF("a\nb\r\n"))
}
