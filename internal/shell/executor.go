package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/aisha-shell/aisha/internal/commands"
	"github.com/aisha-shell/aisha/internal/session"
	"github.com/aisha-shell/aisha/internal/util"
)

// lowMemoryThreshold aborts a new fork when host memory is this saturated.
// Grounded on the teacher's pre-buffer memory guard (internal/util/memory.go),
// repurposed here to guard spawning a child rather than buffering a file
// upload.
const lowMemoryThreshold = util.AbortThresholdPercent + 15

func checkMemoryGuard() error {
	info, err := util.GetMemoryInfo()
	if err != nil {
		return nil
	}
	if info.UsedPercent >= lowMemoryThreshold {
		return fmt.Errorf("system memory critically low (%.1f%% used); refusing to start new process", info.UsedPercent)
	}
	return nil
}

// Execute runs the command chain, respecting &&, ||, ;, and & (spec.md §3).
func (c *CommandChain) Execute(ctx context.Context, sess *session.Session) error {
	if c == nil || len(c.Commands) == 0 {
		return nil
	}

	var lastErr error
	for i, cp := range c.Commands {
		shouldRun := true
		if i > 0 {
			switch c.Commands[i-1].Operator {
			case ChainAnd:
				shouldRun = lastErr == nil
			case ChainOr:
				shouldRun = lastErr != nil
			default:
				shouldRun = true
			}
		}
		if !shouldRun {
			continue
		}

		if cp.Pipeline.Background {
			lastErr = launchBackground(sess, cp.Pipeline)
			continue
		}

		lastErr = cp.Pipeline.Execute(ctx, sess)
	}

	if !sess.ExitRequested {
		sess.LastStatus = ExitStatus(lastErr)
	}
	return lastErr
}

// Execute runs the pipeline to completion in the foreground.
func (p *Pipeline) Execute(ctx context.Context, sess *session.Session) error {
	if p == nil || len(p.Segments) == 0 {
		return nil
	}
	if isBareAssignment(p.Segments) {
		return applyAssignments(sess, p.Segments[0].Assignments)
	}
	if err := checkMemoryGuard(); err != nil {
		return err
	}

	stages, cleanup, err := buildStages(ctx, sess, p.Segments, false)
	defer cleanup()
	if err != nil {
		return err
	}

	if err := startExternals(stages); err != nil {
		return err
	}

	if pgid := stages.pgid; pgid != 0 {
		sess.SetForegroundPGID(pgid)
		defer sess.ClearForeground()
	}

	errs := runAll(ctx, sess, stages)
	for i := len(errs) - 1; i >= 0; i-- {
		if errs[i] != nil {
			return errs[i]
		}
	}
	return nil
}

// isBareAssignment reports whether a pipeline is a single segment with no
// command and no subshell group, i.e. just "FOO=bar" assignments applied
// directly to sess rather than to a child's environment.
func isBareAssignment(segments []*Segment) bool {
	return len(segments) == 1 && segments[0].CommandName == "" && segments[0].SubshellSource == ""
}

func applyAssignments(sess *session.Session, assigns []Assignment) error {
	for _, a := range assigns {
		value := ExpandVariables(a.Value, sess)
		if err := sess.Variables.Set(a.Name, value); err != nil {
			return err
		}
	}
	return nil
}

// stage is one command in a pipeline, either a builtin or a real process.
type stage struct {
	seg     *Segment
	cmd     *exec.Cmd
	builtin *commands.Command
	env     *commands.ExecutionEnv
	// closeOnFinish is this stage's own stdout pipe writer, closed once the
	// stage's execution completes so the downstream stage sees EOF.
	closeOnFinish io.Closer
}

// stageSet is every stage of a pipeline plus the process group its external
// stages share (0 if the pipeline contains only builtins).
type stageSet struct {
	stages []*stage
	pgid   int
}

// buildStages wires stdin/stdout across segments with in-memory pipes and
// applies each segment's redirections, but does not start anything. cleanup
// closes every redirection file regardless of what else failed. background
// seeds the first stage's stdin from the null device instead of the shell's
// own terminal, so a backgrounded pipeline never races the line editor for
// keystrokes (spec.md §4.5); an explicit '<' redirection still overrides it.
func buildStages(ctx context.Context, sess *session.Session, segments []*Segment, background bool) (*stageSet, func(), error) {
	n := len(segments)
	stages := make([]*stage, n)
	var closers []io.Closer
	cleanup := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	var prevReader io.Reader = os.Stdin
	if background {
		devNull, err := os.Open(os.DevNull)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, devNull)
		prevReader = devNull
	}

	for i, seg := range segments {
		env := &commands.ExecutionEnv{Stdin: prevReader, Stdout: os.Stdout, Stderr: os.Stderr}

		var stageCloseOnFinish io.Closer
		if i < n-1 {
			pr, pw := io.Pipe()
			env.Stdout = pw
			stageCloseOnFinish = pw
			prevReader = pr
		}

		if err := applyRedirects(seg, env, &closers); err != nil {
			return nil, cleanup, err
		}

		st := &stage{seg: seg, env: env, closeOnFinish: stageCloseOnFinish}

		switch {
		case seg.SubshellSource != "":
			cmd, err := newSubshellCmd(ctx, sess, seg, env)
			if err != nil {
				return nil, cleanup, err
			}
			st.cmd = cmd
			st.seg = &Segment{CommandName: "(subshell)", SubshellSource: seg.SubshellSource}

		default:
			expandedArgs := ExpandGlobs(sess, expandWords(seg.Args, sess))
			commandName := ExpandVariables(seg.CommandName, sess)

			if builtin, ok := commands.Get(commandName); ok {
				st.builtin = builtin
				st.seg = &Segment{CommandName: commandName, Args: expandedArgs, Assignments: seg.Assignments}
			} else {
				path, lookErr := exec.LookPath(commandName)
				if lookErr != nil {
					return nil, cleanup, &SpawnError{Command: commandName, CommandNotFound: true}
				}
				cmd := exec.CommandContext(ctx, path, expandedArgs...)
				cmd.Stdin = env.Stdin
				cmd.Stdout = env.Stdout
				cmd.Stderr = env.Stderr
				cmd.Dir = sess.CWD
				cmd.Env = append(os.Environ(), assignmentEnv(seg.Assignments, sess)...)
				cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
				st.cmd = cmd
			}
		}

		stages[i] = st
	}

	return &stageSet{stages: stages}, cleanup, nil
}

// newSubshellCmd builds the *exec.Cmd that runs a (...) group: a real child
// process re-invoking the shell binary with -c <source>, so the group forks
// rather than running in-process (spec.md §4.5) and its own variable
// assignments, exports, and cd calls never reach the parent session.
func newSubshellCmd(ctx context.Context, sess *session.Session, seg *Segment, env *commands.ExecutionEnv) (*exec.Cmd, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, &SpawnError{Command: "(subshell)", Err: err}
	}
	cmd := exec.CommandContext(ctx, self, "-c", seg.SubshellSource)
	cmd.Stdin = env.Stdin
	cmd.Stdout = env.Stdout
	cmd.Stderr = env.Stderr
	cmd.Dir = sess.CWD
	cmd.Env = append(os.Environ(), assignmentEnv(seg.Assignments, sess)...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return cmd, nil
}

func expandWords(words []string, sess *session.Session) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = ExpandVariables(w, sess)
	}
	return out
}

func assignmentEnv(assigns []Assignment, sess *session.Session) []string {
	out := make([]string, 0, len(assigns))
	for _, a := range assigns {
		out = append(out, a.Name+"="+ExpandVariables(a.Value, sess))
	}
	return out
}

func applyRedirects(seg *Segment, env *commands.ExecutionEnv, closers *[]io.Closer) error {
	for _, r := range seg.Redirects {
		switch r.Type {
		case TokenRedirectIn:
			f, err := os.Open(r.Word)
			if err != nil {
				return &RedirectionError{Path: r.Word, Err: err}
			}
			*closers = append(*closers, f)
			env.Stdin = f
		case TokenRedirectOut:
			f, err := os.OpenFile(r.Word, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return &RedirectionError{Path: r.Word, Err: err}
			}
			*closers = append(*closers, f)
			env.Stdout = f
		case TokenRedirectAppend:
			f, err := os.OpenFile(r.Word, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
			if err != nil {
				return &RedirectionError{Path: r.Word, Err: err}
			}
			*closers = append(*closers, f)
			env.Stdout = f
		case TokenHereString:
			env.Stdin = strings.NewReader(r.Word + "\n")
		case TokenHeredoc:
			env.Stdin = strings.NewReader(r.Word)
		}
	}
	return nil
}

// startExternals starts every external stage in order, chaining each one's
// process group to the first so the whole pipeline shares one pgid
// (spec.md §4.7). Builtins are left for runAll to execute in-process.
func startExternals(ss *stageSet) error {
	for _, st := range ss.stages {
		if st.cmd == nil {
			continue
		}
		if ss.pgid != 0 {
			st.cmd.SysProcAttr.Pgid = ss.pgid
		}
		if err := st.cmd.Start(); err != nil {
			return &SpawnError{Command: st.seg.CommandName, Err: err}
		}
		if ss.pgid == 0 {
			ss.pgid = st.cmd.Process.Pid
		}
	}
	return nil
}

// runAll waits on every external stage and runs every builtin stage
// concurrently, closing each stage's own stdout pipe writer as it finishes.
func runAll(ctx context.Context, sess *session.Session, ss *stageSet) []error {
	errs := make([]error, len(ss.stages))
	var wg sync.WaitGroup

	for i, st := range ss.stages {
		wg.Add(1)
		go func(i int, st *stage) {
			defer wg.Done()
			defer func() {
				if st.closeOnFinish != nil {
					st.closeOnFinish.Close()
				}
			}()

			if st.cmd != nil {
				errs[i] = waitExternal(st.seg.CommandName, st.cmd)
				return
			}

			if err := applyAssignments(sess, st.seg.Assignments); err != nil {
				errs[i] = err
				return
			}
			if commands.HasHelpFlag(st.seg.Args) {
				commands.PrintUsage(st.builtin, st.env.Stdout)
				return
			}
			errs[i] = st.builtin.Run(ctx, sess, st.env, st.seg.Args)
		}(i, st)
	}

	wg.Wait()
	return errs
}

func waitExternal(name string, cmd *exec.Cmd) error {
	err := cmd.Wait()
	if err == nil {
		return nil
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return &SpawnError{Command: name, Err: err}
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return &SpawnError{Command: name, Err: err}
	}
	if status.Signaled() {
		return &RuntimeSignalError{Command: name, Signal: int(status.Signal())}
	}
	if status.ExitStatus() != 0 {
		return &CommandError{Code: status.ExitStatus()}
	}
	return nil
}

// launchBackground starts a pipeline without waiting for it, registering a
// Job that a supervisor goroutine updates to JobDone once every stage exits
// (spec.md §4.6's async reaping — modeled as a goroutine-per-job completion
// signal rather than a raw WNOHANG poll loop, since os/exec already wraps
// wait4 internally for each *exec.Cmd).
func launchBackground(sess *session.Session, p *Pipeline) error {
	if isBareAssignment(p.Segments) {
		return applyAssignments(sess, p.Segments[0].Assignments)
	}
	if err := checkMemoryGuard(); err != nil {
		return err
	}

	ctx := context.Background()
	stages, cleanup, err := buildStages(ctx, sess, p.Segments, true)
	if err != nil {
		cleanup()
		return err
	}
	if err := startExternals(stages); err != nil {
		cleanup()
		return err
	}

	commandText := describePipeline(p)
	pid := stages.pgid
	if pid == 0 && len(stages.stages) > 0 {
		pid = os.Getpid()
	}
	job := sess.Jobs.Add(pid, stages.pgid, commandText, session.JobRunning)
	sess.LastBackgroundPID = pid
	fmt.Printf("[%d] %d\n", job.ID, pid)

	go func() {
		defer cleanup()
		defer close(job.Done)
		errs := runAll(ctx, sess, stages)
		var last error
		for _, e := range errs {
			if e != nil {
				last = e
			}
		}
		job.ExitCode = ExitStatus(last)
		sess.Jobs.SetStatus(job.ID, session.JobDone)
	}()

	return nil
}

func describePipeline(p *Pipeline) string {
	parts := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		if seg.SubshellSource != "" {
			parts[i] = "(" + seg.SubshellSource + ")"
			continue
		}
		parts[i] = strings.Join(append([]string{seg.CommandName}, seg.Args...), " ")
	}
	return strings.Join(parts, " | ")
}
