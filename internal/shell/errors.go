package shell

import "fmt"

// ExitCoder lets any shell error carry a POSIX exit status (spec.md §7/§8)
// without string-matching error messages.
type ExitCoder interface {
	error
	ExitCode() int
}

// TokenizerError is raised by Tokenize on malformed input: an unterminated
// quote, a word over the length cap, or a line over the token-count cap.
// spec.md §9 calls out that one source variant silently accepts an
// unterminated quote at end of line — this implementation rejects it.
type TokenizerError struct {
	Msg string
}

func (e *TokenizerError) Error() string  { return e.Msg }
func (e *TokenizerError) ExitCode() int  { return 2 }
func newTokenizerError(format string, a ...any) *TokenizerError {
	return &TokenizerError{Msg: fmt.Sprintf(format, a...)}
}

// SyntaxError is raised by the grammar validator when a token stream
// doesn't match the grammar in spec.md §4.2.
type SyntaxError struct {
	Msg string
}

func (e *SyntaxError) Error() string { return "Invalid Syntax!" }
func (e *SyntaxError) ExitCode() int { return 2 }

// RedirectionError wraps a failure to open or create a redirection target,
// either during pre-validation or inside a child.
type RedirectionError struct {
	Path string
	Err  error
}

func (e *RedirectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}
func (e *RedirectionError) ExitCode() int { return 1 }
func (e *RedirectionError) Unwrap() error { return e.Err }

// SpawnError wraps a fork/exec failure. CommandNotFound distinguishes a
// failed PATH lookup (exit 127) from any other spawn failure (exit 1).
type SpawnError struct {
	Command         string
	Err             error
	CommandNotFound bool
}

func (e *SpawnError) Error() string {
	if e.CommandNotFound {
		return fmt.Sprintf("%s: command not found", e.Command)
	}
	return fmt.Sprintf("fork: %v", e.Err)
}
func (e *SpawnError) ExitCode() int {
	if e.CommandNotFound {
		return 127
	}
	return 1
}
func (e *SpawnError) Unwrap() error { return e.Err }

// RuntimeSignalError reports a waited-on child killed by a signal.
type RuntimeSignalError struct {
	Command string
	Signal  int
}

func (e *RuntimeSignalError) Error() string {
	return fmt.Sprintf("%s: terminated by signal %d", e.Command, e.Signal)
}
func (e *RuntimeSignalError) ExitCode() int { return 128 + e.Signal }

// StoppedStatus is the conventional $? value when a foreground command is
// suspended rather than run to completion (spec.md §6).
const StoppedStatus = 148

// CommandError carries a plain nonzero exit status through the &&/||/;
// control-flow plumbing without implying a shell-level diagnostic: the
// child already wrote whatever it wanted to stderr, so the REPL prints
// nothing extra for this error, only records the code in $?.
type CommandError struct{ Code int }

func (e *CommandError) Error() string { return "" }
func (e *CommandError) ExitCode() int { return e.Code }

// IOError reports a failure in the line editor or terminal driver. It never
// terminates the REPL; the next prompt still runs (spec.md §7).
type IOError struct {
	Msg string
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s: %v", e.Msg, e.Err) }
func (e *IOError) ExitCode() int { return 1 }
func (e *IOError) Unwrap() error { return e.Err }

// ExitStatus extracts the POSIX exit status spec.md §6/§7 prescribes for
// err, defaulting to 1 for an unrecognized error and 0 for nil.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	if ec, ok := err.(ExitCoder); ok {
		return ec.ExitCode()
	}
	return 1
}
