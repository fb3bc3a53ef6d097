package shell_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisha-shell/aisha/internal/commands"
	"github.com/aisha-shell/aisha/internal/session"
	"github.com/aisha-shell/aisha/internal/shell"
)

// registerMockCommands installs a handful of in-process builtins for
// exercising the pipeline executor without spawning real processes, the way
// the pack's pipeline_exec_test.go stubs out commands.
func registerMockCommands() func() {
	commands.Register(&commands.Command{
		Name: "mock-echo",
		Run: func(ctx context.Context, s *session.Session, env *commands.ExecutionEnv, args []string) error {
			fmt.Fprintln(env.Stdout, strings.Join(args, " "))
			return nil
		},
	})
	commands.Register(&commands.Command{
		Name: "mock-upper",
		Run: func(ctx context.Context, s *session.Session, env *commands.ExecutionEnv, args []string) error {
			buf, err := io.ReadAll(env.Stdin)
			if err != nil {
				return err
			}
			fmt.Fprint(env.Stdout, strings.ToUpper(string(buf)))
			return nil
		},
	})
	commands.Register(&commands.Command{
		Name: "mock-fail",
		Run: func(ctx context.Context, s *session.Session, env *commands.ExecutionEnv, args []string) error {
			return fmt.Errorf("mock-fail: boom")
		},
	})

	return func() {
		delete(commands.Registry, "mock-echo")
		delete(commands.Registry, "mock-upper")
		delete(commands.Registry, "mock-fail")
	}
}

func TestPipelineExecute_BuiltinToBuiltin(t *testing.T) {
	cleanup := registerMockCommands()
	defer cleanup()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	s := session.New()
	chain, err := shell.ParseCommandChain(fmt.Sprintf("mock-echo hello world | mock-upper > %s", out), nil)
	require.NoError(t, err)

	require.NoError(t, chain.Execute(context.Background(), s))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD\n", string(data))
	assert.Equal(t, 0, s.LastStatus)
}

func TestPipelineExecute_FailingCommandSetsLastStatus(t *testing.T) {
	cleanup := registerMockCommands()
	defer cleanup()

	s := session.New()
	chain, err := shell.ParseCommandChain("mock-fail", nil)
	require.NoError(t, err)

	err = chain.Execute(context.Background(), s)
	require.Error(t, err)
	assert.NotEqual(t, 0, s.LastStatus)
}

func TestCommandChain_AndOperator_ShortCircuits(t *testing.T) {
	cleanup := registerMockCommands()
	defer cleanup()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	s := session.New()
	chain, err := shell.ParseCommandChain(fmt.Sprintf("mock-fail && mock-echo should-not-run > %s", out), nil)
	require.NoError(t, err)

	_ = chain.Execute(context.Background(), s)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "second command must not run after && short-circuit")
}

func TestCommandChain_OrOperator_RunsOnFailure(t *testing.T) {
	cleanup := registerMockCommands()
	defer cleanup()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	s := session.New()
	chain, err := shell.ParseCommandChain(fmt.Sprintf("mock-fail || mock-echo fallback > %s", out), nil)
	require.NoError(t, err)

	require.NoError(t, chain.Execute(context.Background(), s))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "fallback\n", string(data))
}

func TestCommandChain_SemicolonAlwaysRuns(t *testing.T) {
	cleanup := registerMockCommands()
	defer cleanup()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	s := session.New()
	chain, err := shell.ParseCommandChain(fmt.Sprintf("mock-fail ; mock-echo after-semicolon > %s", out), nil)
	require.NoError(t, err)

	_ = chain.Execute(context.Background(), s)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "after-semicolon\n", string(data))
}

func TestCommandChain_BareAssignment(t *testing.T) {
	s := session.New()
	chain, err := shell.ParseCommandChain("FOO=bar", nil)
	require.NoError(t, err)

	require.NoError(t, chain.Execute(context.Background(), s))
	v, ok := s.Variables.Get("FOO")
	require.True(t, ok)
	assert.Equal(t, "bar", v)
}

func TestCommandChain_Background_StdinIsolatedFromTerminal(t *testing.T) {
	cleanup := registerMockCommands()
	defer cleanup()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	commands.Register(&commands.Command{
		Name: "mock-read-stdin",
		Run: func(ctx context.Context, s *session.Session, env *commands.ExecutionEnv, args []string) error {
			buf, err := io.ReadAll(env.Stdin)
			if err != nil {
				return err
			}
			return os.WriteFile(out, buf, 0644)
		},
	})
	defer delete(commands.Registry, "mock-read-stdin")

	s := session.New()
	chain, err := shell.ParseCommandChain("mock-read-stdin &", nil)
	require.NoError(t, err)
	require.NoError(t, chain.Execute(context.Background(), s))

	jobs := s.Jobs.All()
	require.Len(t, jobs, 1)
	<-jobs[0].Done

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Empty(t, data, "backgrounded stage must read from the null device, not the shell's terminal stdin")
}

func TestPipelineExecute_CommandNotFound(t *testing.T) {
	s := session.New()
	chain, err := shell.ParseCommandChain("this-command-does-not-exist-xyz", nil)
	require.NoError(t, err)

	err = chain.Execute(context.Background(), s)
	require.Error(t, err)
	var spawnErr *shell.SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.True(t, spawnErr.CommandNotFound)
	assert.Equal(t, 127, s.LastStatus)
}
