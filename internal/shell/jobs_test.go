package shell_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aisha-shell/aisha/internal/session"
	"github.com/aisha-shell/aisha/internal/shell"
)

func TestReportFinishedJobs_ReportsAndRemovesDoneJobs(t *testing.T) {
	s := session.New()
	j := s.Jobs.Add(100, 100, "sleep 1", session.JobDone)

	var out bytes.Buffer
	shell.ReportFinishedJobs(s, &out)

	assert.Contains(t, out.String(), "sleep 1")
	_, ok := s.Jobs.Get(j.ID)
	assert.False(t, ok)
}

func TestReportFinishedJobs_SkipsRunningJobs(t *testing.T) {
	s := session.New()
	s.Jobs.Add(100, 100, "sleep 1", session.JobRunning)

	var out bytes.Buffer
	shell.ReportFinishedJobs(s, &out)

	assert.Empty(t, out.String())
	assert.Len(t, s.Jobs.All(), 1)
}

func TestReportFinishedJobs_SkipsAlreadyNotified(t *testing.T) {
	s := session.New()
	j := s.Jobs.Add(100, 100, "sleep 1", session.JobDone)
	j.Notified = true

	var out bytes.Buffer
	shell.ReportFinishedJobs(s, &out)

	assert.Empty(t, out.String())
}
