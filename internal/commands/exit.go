package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aisha-shell/aisha/internal/session"
)

func init() {
	Register(&Command{
		Name:        "exit",
		Description: "Exit the shell",
		Usage:       "exit [code]\n\nExits with the given status, or the status of the last command.",
		Run:         exitCmd,
	})
}

func exitCmd(ctx context.Context, s *session.Session, env *ExecutionEnv, args []string) error {
	code := s.LastStatus
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("exit: %s: numeric argument required", args[0])
		}
		code = n
	}
	s.ExitRequested = true
	s.LastStatus = code
	return nil
}
