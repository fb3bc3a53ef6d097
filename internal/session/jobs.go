package session

import "sync"

// JobStatus is the lifecycle state of a tracked job.
type JobStatus int

const (
	JobRunning JobStatus = iota
	JobStopped
	JobDone
)

func (s JobStatus) String() string {
	switch s {
	case JobRunning:
		return "Running"
	case JobStopped:
		return "Stopped"
	case JobDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Job is a background or stopped command tracked until it reaches a
// terminal state. PID is the pid of the pipeline's first external stage,
// which leads its process group (the shell's own pid when every stage is a
// builtin); PGID is the process group every stage shares so a signal
// reaches the whole pipeline at once.
type Job struct {
	ID      int
	PID     int
	PGID    int
	Command string
	Status  JobStatus
	// ExitCode is meaningful only once Status is JobDone.
	ExitCode int
	// Notified, when set, makes the prompt-time reaper skip a completed job
	// (neither reported nor removed); the reaper itself removes the jobs it
	// reports and does not set this flag.
	Notified bool
	// Done is closed by the job's supervisor goroutine when every stage of
	// the pipeline has exited, letting `fg` block on a background job
	// without polling.
	Done chan struct{}
	// StopCh receives a value whenever the signal dispatcher forwards
	// SIGTSTP to this job's process group, letting `fg` return control to
	// the prompt instead of blocking on Done (which only fires on exit).
	StopCh chan struct{}
}

// JobTable is an indexed, insertion-ordered registry of jobs, keyed by a
// monotonically increasing job-id that is never reused within a session.
// A slice plus a lookup map replaces the spec's incidental linked-list
// representation (spec.md §9 design note).
type JobTable struct {
	mu      sync.Mutex
	order   []int
	byID    map[int]*Job
	counter int
}

// NewJobTable creates an empty job table.
func NewJobTable() *JobTable {
	return &JobTable{byID: make(map[int]*Job)}
}

// Add registers a new job and assigns it the next job-id.
func (t *JobTable) Add(pid, pgid int, command string, status JobStatus) *Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counter++
	j := &Job{ID: t.counter, PID: pid, PGID: pgid, Command: command, Status: status, Done: make(chan struct{}), StopCh: make(chan struct{}, 1)}
	t.byID[j.ID] = j
	t.order = append(t.order, j.ID)
	return j
}

// NotifyStopped marks the job owning pgid as Stopped and wakes anything
// blocked waiting on it in the foreground (e.g. `fg`).
func (t *JobTable) NotifyStopped(pgid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range t.order {
		j := t.byID[id]
		if j.PGID != pgid {
			continue
		}
		j.Status = JobStopped
		select {
		case j.StopCh <- struct{}{}:
		default:
		}
		return
	}
}

// Get looks up a job by id.
func (t *JobTable) Get(id int) (*Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.byID[id]
	return j, ok
}

// GetByPID finds the job whose recorded PID (see Job) is pid.
func (t *JobTable) GetByPID(pid int) (*Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range t.order {
		if j := t.byID[id]; j.PID == pid {
			return j, true
		}
	}
	return nil, false
}

// Remove deletes a job from the table.
func (t *JobTable) Remove(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(id)
}

func (t *JobTable) removeLocked(id int) {
	delete(t.byID, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Reinsert removes an existing job and re-adds its state under a fresh
// job-id, matching spec.md §4.6: a job that stops again after `fg`
// reappears with a new id rather than reusing the old one.
func (t *JobTable) Reinsert(old *Job) *Job {
	t.mu.Lock()
	t.removeLocked(old.ID)
	t.counter++
	j := &Job{ID: t.counter, PID: old.PID, PGID: old.PGID, Command: old.Command, Status: old.Status, Done: old.Done, StopCh: old.StopCh}
	t.byID[j.ID] = j
	t.order = append(t.order, j.ID)
	t.mu.Unlock()
	return j
}

// All returns every tracked job in insertion order.
func (t *JobTable) All() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Job, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}

// SetStatus updates a job's status in place.
func (t *JobTable) SetStatus(id int, status JobStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if j, ok := t.byID[id]; ok {
		j.Status = status
	}
}
