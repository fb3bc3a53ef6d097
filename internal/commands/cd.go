package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/aisha-shell/aisha/internal/session"
)

func init() {
	Register(&Command{
		Name:        "cd",
		Description: "Change the current directory",
		Usage:       "cd [dir]\n\nExamples:\n  cd            # go to $HOME\n  cd -          # go to the previous directory\n  cd ..         # go up one level",
		Run:         cdCmd,
	})
}

func cdCmd(ctx context.Context, s *session.Session, env *ExecutionEnv, args []string) error {
	target := "~"
	if len(args) > 0 {
		target = args[0]
	}

	resolved := s.ResolvePath(target)
	info, err := os.Stat(resolved)
	if err != nil {
		return fmt.Errorf("cd: %s: %v", target, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cd: %s: not a directory", target)
	}

	if target == "-" {
		fmt.Fprintln(env.Stdout, resolved)
	}

	s.PreviousDir = s.CWD
	s.CWD = resolved
	return nil
}
