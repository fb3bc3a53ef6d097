package shell

import (
	"fmt"
	"io"

	"github.com/aisha-shell/aisha/internal/session"
	"github.com/aisha-shell/aisha/internal/ui"
)

// ReportFinishedJobs prints a status line for every background job that has
// reached JobDone since the last prompt and removes it from the table,
// matching the "notify at the next prompt" convention of job control
// shells (spec.md §4.6).
func ReportFinishedJobs(sess *session.Session, w io.Writer) {
	for _, job := range sess.Jobs.All() {
		if job.Status != session.JobDone || job.Notified {
			continue
		}
		fmt.Fprintf(w, "[%d]+  %s                 %s\n", job.ID, ui.MutedStyle.Render("Done"), job.Command)
		sess.Jobs.Remove(job.ID)
	}
}

