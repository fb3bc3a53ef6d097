package shell

import (
	"context"

	"github.com/aisha-shell/aisha/internal/commands"
	"github.com/aisha-shell/aisha/internal/session"
)

func init() {
	commands.Executor = runLine
}

// runLine parses and executes a single line through the full pipeline,
// wired into commands.Executor so the `source`/`.` builtin can reuse it
// without the commands package importing shell (which would cycle back
// through commands.Registry).
func runLine(ctx context.Context, sess *session.Session, line string) error {
	chain, err := ParseCommandChain(line, nil)
	if err != nil {
		return err
	}
	return chain.Execute(ctx, sess)
}
