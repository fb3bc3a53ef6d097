package shell

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/aisha-shell/aisha/internal/commands"
	"github.com/aisha-shell/aisha/internal/session"
)

// Completer provides tab completion for commands, variables, and paths.
type Completer struct {
	Session *session.Session
}

// NewCompleter returns a readline.AutoCompleter backed by sess.
func NewCompleter(sess *session.Session) readline.AutoCompleter {
	return &Completer{Session: sess}
}

// Do implements readline.AutoCompleter.
func (c *Completer) Do(line []rune, pos int) (newLine [][]rune, length int) {
	lineStr := string(line[:pos])
	words := strings.Fields(lineStr)

	if len(words) == 0 || (len(words) == 1 && !strings.HasSuffix(lineStr, " ")) {
		prefix := ""
		if len(words) == 1 {
			prefix = words[0]
		}
		return c.completeCommand(prefix)
	}

	lastSpace := strings.LastIndex(lineStr, " ")
	partial := ""
	if lastSpace < len(lineStr)-1 {
		partial = lineStr[lastSpace+1:]
	}

	if strings.HasPrefix(partial, "$") {
		return c.completeVariable(partial)
	}
	return c.completePath(partial)
}

// completeCommand unions builtins and executables on $PATH.
func (c *Completer) completeCommand(prefix string) ([][]rune, int) {
	seen := make(map[string]bool)
	var matches []string

	for name, cmd := range commands.Registry {
		if cmd.Name == name && strings.HasPrefix(name, prefix) && !seen[name] {
			matches = append(matches, name)
			seen[name] = true
		}
	}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if !strings.HasPrefix(name, prefix) || seen[name] {
				continue
			}
			info, err := e.Info()
			if err != nil || info.IsDir() || info.Mode()&0111 == 0 {
				continue
			}
			matches = append(matches, name)
			seen[name] = true
		}
	}

	sort.Strings(matches)
	result := make([][]rune, len(matches))
	for i, m := range matches {
		result[i] = []rune(m[len(prefix):] + " ")
	}
	return result, len(prefix)
}

// completeVariable matches $NAME against the session's variable store.
func (c *Completer) completeVariable(partial string) ([][]rune, int) {
	prefix := strings.TrimPrefix(partial, "$")
	var matches []string
	for _, name := range c.Session.Variables.Names() {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	result := make([][]rune, len(matches))
	for i, m := range matches {
		result[i] = []rune(m[len(prefix):] + " ")
	}
	return result, len(prefix)
}

// completePath matches filesystem entries under the directory implied by
// partial, appending '/' to directories and a trailing space to files.
func (c *Completer) completePath(partial string) ([][]rune, int) {
	var searchDir, searchPrefix string

	switch {
	case partial == "":
		searchDir = c.Session.CWD
	case strings.HasSuffix(partial, "/"):
		searchDir = c.Session.ResolvePath(partial)
	case strings.Contains(partial, "/"):
		searchDir = c.Session.ResolvePath(filepath.Dir(partial))
		searchPrefix = filepath.Base(partial)
	default:
		searchDir = c.Session.CWD
		searchPrefix = partial
	}
	searchDir = filepath.Clean(searchDir)

	entries, err := os.ReadDir(searchDir)
	if err != nil {
		return nil, 0
	}

	var matches []string
	for _, e := range entries {
		name := e.Name()
		if searchPrefix == "" && strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.HasPrefix(name, searchPrefix) {
			continue
		}
		if e.IsDir() {
			matches = append(matches, name+"/")
		} else {
			matches = append(matches, name)
		}
	}

	sort.Strings(matches)
	result := make([][]rune, len(matches))
	for i, m := range matches {
		suffix := m[len(searchPrefix):]
		if !strings.HasSuffix(suffix, "/") {
			suffix += " "
		}
		result[i] = []rune(suffix)
	}
	return result, len(searchPrefix)
}
