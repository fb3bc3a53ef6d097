package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/aisha-shell/aisha/internal/session"
)

func init() {
	Register(&Command{
		Name:        "source",
		Description: "Execute commands from a file in the current shell",
		Usage:       "source <file>\n\nAliased as '.': each line runs as if typed at the prompt, in the\ncurrent session (variable and directory changes persist).",
		Run:         sourceCmd,
	})
	Register(&Command{
		Name:        ".",
		Description: "Alias for source",
		Usage:       ". <file>",
		Run:         sourceCmd,
	})
}

// Executor is implemented by the shell's command-chain runner. It is set by
// the shell package at startup (avoiding an import cycle: shell already
// depends on commands) so `source` can run a file through the full
// tokenizer/grammar/expansion/executor pipeline rather than a simplified
// line splitter.
var Executor func(ctx context.Context, s *session.Session, line string) error

func sourceCmd(ctx context.Context, s *session.Session, env *ExecutionEnv, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: source <file>")
	}
	if Executor == nil {
		return fmt.Errorf("source: not available in this context")
	}

	path := s.ResolvePath(args[0])
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("source: %s: %v", args[0], err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := Executor(ctx, s, line); err != nil {
			if msg := err.Error(); msg != "" {
				fmt.Fprintf(env.Stderr, "%v\n", msg)
			}
		}
	}
	return scanner.Err()
}
