package shell_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisha-shell/aisha/internal/session"
	"github.com/aisha-shell/aisha/internal/shell"
)

func TestCompleter_CompletesBuiltinCommand(t *testing.T) {
	s := session.New()
	c := shell.NewCompleter(s)

	matches, length := c.Do([]rune("ex"), 2)
	assert.Equal(t, 2, length)

	var suggestions []string
	for _, m := range matches {
		suggestions = append(suggestions, "ex"+string(m))
	}
	assert.Contains(t, suggestions, "exit ")
	assert.Contains(t, suggestions, "export ")
}

func TestCompleter_CompletesVariable(t *testing.T) {
	s := session.New()
	require.NoError(t, s.Variables.Set("MYVAR", "1"))
	c := shell.NewCompleter(s)

	line := []rune("echo $MY")
	matches, length := c.Do(line, len(line))
	require.Len(t, matches, 1)
	assert.Equal(t, "MY", string(line[len(line)-length:]))
	assert.Equal(t, "VAR ", string(matches[0]))
}

func TestCompleter_CompletesPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "beta"), 0755))

	s := session.New()
	s.CWD = dir
	c := shell.NewCompleter(s)

	line := []rune("cat al")
	matches, length := c.Do(line, len(line))
	require.Len(t, matches, 1)
	assert.Equal(t, "al", string(line[len(line)-length:]))
	assert.Equal(t, "pha.txt ", string(matches[0]))

	line = []rune("cd be")
	matches, _ = c.Do(line, len(line))
	require.Len(t, matches, 1)
	assert.Equal(t, "ta/", string(matches[0]))
}

func TestCompleter_NonexistentDirReturnsNoMatches(t *testing.T) {
	s := session.New()
	s.CWD = "/no/such/dir/xyz"
	c := shell.NewCompleter(s)

	line := []rune("cat x")
	matches, _ := c.Do(line, len(line))
	assert.Nil(t, matches)
}
