package shell

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aisha-shell/aisha/internal/session"
)

// InstallSignalForwarding forwards SIGINT and SIGTSTP to whatever process
// group is currently published as foreground, and ignores SIGQUIT, so an
// interactive Ctrl+C/Ctrl+Z always targets the running job rather than the
// shell itself (spec.md §4.7). It returns a function that restores default
// handling and should be deferred by the caller.
func InstallSignalForwarding(sess *session.Session) func() {
	ch := make(chan os.Signal, 8)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTSTP, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-ch:
				if sig == syscall.SIGQUIT {
					continue
				}
				if pgid := sess.ForegroundPGID(); pgid != session.NoForeground {
					syscall.Kill(-pgid, sig.(syscall.Signal))
					if sig == syscall.SIGTSTP {
						sess.Jobs.NotifyStopped(pgid)
					}
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
