// Package session holds the interpreter state that lives for the whole
// shell process: variables, aliases, jobs, and history. None of it is kept
// in package-level globals (spec.md §9) — every component that needs it
// receives a *Session explicitly.
package session

import (
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
)

// Session is the shell interpreter's persistent state.
type Session struct {
	Variables *Variables
	Aliases   map[string]string
	Jobs      *JobTable
	History   *HistoryRing

	CWD         string
	HomeDir     string
	PreviousDir string
	Username    string

	// ShellPID is this process's pid, for $$.
	ShellPID int
	// Args holds $0 (shell name) at index 0 and $1..$9 positional params.
	Args []string

	// LastStatus is $?, the exit status of the most recent foreground
	// pipeline or builtin.
	LastStatus int
	// LastBackgroundPID is $!, the pid of the most recently launched
	// background supervisor.
	LastBackgroundPID int

	// ExitRequested is set by the `exit` builtin to tell the REPL loop to
	// stop after the current command chain finishes.
	ExitRequested bool

	// foregroundPGID is published atomically for the signal dispatcher;
	// -1 means "no foreground job" (spec.md §4.7).
	foregroundPGID atomic.Int32
}

// NoForeground is the sentinel stored when nothing is running in the
// foreground.
const NoForeground = -1

// New creates a Session rooted at the user's home directory with the
// process environment imported as exported variables (spec.md §6).
func New() *Session {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "/"
	}

	vars := NewVariables()
	vars.ImportEnviron()

	s := &Session{
		Variables: vars,
		Aliases:   make(map[string]string),
		Jobs:      NewJobTable(),
		History:   NewHistoryRing(1000),
		CWD:       home,
		HomeDir:   home,
		ShellPID:  os.Getpid(),
		Args:      []string{"aisha"},
	}
	s.foregroundPGID.Store(NoForeground)

	// Default aliases, matching the teacher's habit of shipping a few
	// convenience aliases out of the box.
	s.Aliases["ll"] = "ls -la"
	s.Aliases["la"] = "ls -a"
	s.Aliases["quit"] = "exit"

	return s
}

// ForegroundPGID returns the process group currently designated foreground,
// or NoForeground.
func (s *Session) ForegroundPGID() int {
	return int(s.foregroundPGID.Load())
}

// SetForegroundPGID publishes the foreground process group atomically so
// the signal handler goroutine sees a consistent value without touching any
// other session state (spec.md §4.7, §9).
func (s *Session) SetForegroundPGID(pgid int) {
	s.foregroundPGID.Store(int32(pgid))
}

// ClearForeground marks that no process is currently in the foreground.
func (s *Session) ClearForeground() {
	s.foregroundPGID.Store(NoForeground)
}

// ResolvePath resolves a user-supplied path argument against CWD, HomeDir,
// and PreviousDir, matching spec.md's `cd`/glob path semantics (`-`, `~`,
// `~/...`, relative, absolute).
func (s *Session) ResolvePath(path string) string {
	switch {
	case path == "":
		return s.CWD
	case path == "-":
		if s.PreviousDir == "" {
			return s.CWD
		}
		return s.PreviousDir
	case path == "~":
		return s.HomeDir
	case len(path) >= 2 && path[:2] == "~/":
		return filepath.Join(s.HomeDir, path[2:])
	}

	var absolute string
	if filepath.IsAbs(path) {
		absolute = path
	} else {
		absolute = filepath.Join(s.CWD, path)
	}
	return filepath.Clean(absolute)
}

// DisplayCWD returns the CWD with the home directory collapsed to "~", for
// prompt rendering.
func (s *Session) DisplayCWD() string {
	if s.CWD == s.HomeDir {
		return "~"
	}
	if len(s.CWD) > len(s.HomeDir) && s.CWD[:len(s.HomeDir)] == s.HomeDir && s.CWD[len(s.HomeDir)] == '/' {
		return "~" + s.CWD[len(s.HomeDir):]
	}
	return s.CWD
}

// SpecialVar resolves one of the single-character special variables listed
// in spec.md §6: $?, $$, $!, $#, $0-$9. ok is false for anything else.
func (s *Session) SpecialVar(name string) (string, bool) {
	switch name {
	case "?":
		return strconv.Itoa(s.LastStatus), true
	case "$":
		return strconv.Itoa(s.ShellPID), true
	case "!":
		if s.LastBackgroundPID == 0 {
			return "", true
		}
		return strconv.Itoa(s.LastBackgroundPID), true
	case "#":
		if len(s.Args) == 0 {
			return "0", true
		}
		return strconv.Itoa(len(s.Args) - 1), true
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx, _ := strconv.Atoi(name)
		if idx < len(s.Args) {
			return s.Args[idx], true
		}
		return "", true
	}
	return "", false
}
