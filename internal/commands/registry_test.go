package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisha-shell/aisha/internal/session"
)

func TestReorderArgsForFlags_BoolFlagNoValueConsumed(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Bool("all", false, "")

	got := ReorderArgsForFlags(fs, []string{"file.txt", "-all"})
	assert.Equal(t, []string{"-all", "file.txt"}, got)
}

func TestReorderArgsForFlags_ValueFlagConsumesNext(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("name", "", "")

	got := ReorderArgsForFlags(fs, []string{"pos1", "-name", "bob", "pos2"})
	assert.Equal(t, []string{"-name", "bob", "pos1", "pos2"}, got)
}

func TestReorderArgsForFlags_DoubleDashStopsParsing(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Bool("all", false, "")

	got := ReorderArgsForFlags(fs, []string{"-all", "--", "-notaflag"})
	assert.Equal(t, []string{"-all", "-notaflag"}, got)
}

func TestHasHelpFlag(t *testing.T) {
	assert.True(t, HasHelpFlag([]string{"-h"}))
	assert.True(t, HasHelpFlag([]string{"--help"}))
	assert.True(t, HasHelpFlag([]string{"-v", "--help"}))
	assert.False(t, HasHelpFlag([]string{"positional", "-h"}))
	assert.False(t, HasHelpFlag(nil))
}

func TestRegisterAndGet(t *testing.T) {
	Register(&Command{Name: "registry-test-cmd", Description: "d"})
	defer delete(Registry, "registry-test-cmd")

	cmd, ok := Get("registry-test-cmd")
	require.True(t, ok)
	assert.Equal(t, "d", cmd.Description)

	_, ok = Get("does-not-exist")
	assert.False(t, ok)
}

func TestHelp_UnknownCommandErrors(t *testing.T) {
	s := session.New()
	env := &ExecutionEnv{Stdout: &bytes.Buffer{}}
	err := help(context.Background(), s, env, []string{"nope-not-real"})
	assert.Error(t, err)
}

func TestHelp_KnownCommandPrintsUsage(t *testing.T) {
	s := session.New()
	var out bytes.Buffer
	env := &ExecutionEnv{Stdout: &out}
	require.NoError(t, help(context.Background(), s, env, []string{"cd"}))
	assert.Contains(t, out.String(), "cd")
}

func TestHistoryBuiltin_EmptyHistory(t *testing.T) {
	s := session.New()
	var out bytes.Buffer
	env := &ExecutionEnv{Stdout: &out}
	require.NoError(t, history(context.Background(), s, env, nil))
	assert.Contains(t, out.String(), "No history")
}

func TestHistoryBuiltin_ListsEntries(t *testing.T) {
	s := session.New()
	s.History.Add("ls -la")
	var out bytes.Buffer
	env := &ExecutionEnv{Stdout: &out}
	require.NoError(t, history(context.Background(), s, env, nil))
	assert.Contains(t, out.String(), "ls -la")
}
