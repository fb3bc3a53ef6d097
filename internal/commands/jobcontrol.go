package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/aisha-shell/aisha/internal/session"
	"github.com/aisha-shell/aisha/internal/ui"
)

func init() {
	Register(&Command{
		Name:        "fg",
		Description: "Resume a job in the foreground",
		Usage:       "fg [%job]\n\nWith no argument, resumes the most recently backgrounded or stopped job.",
		Run:         fgCmd,
	})
	Register(&Command{
		Name:        "bg",
		Description: "Resume a stopped job in the background",
		Usage:       "bg [%job]",
		Run:         bgCmd,
	})
	Register(&Command{
		Name:        "jobs",
		Description: "List background and stopped jobs",
		Usage:       "jobs [-l]\n\n-l, --long  Also show each job's process group ID.",
		Run:         jobsCmd,
	})
	Register(&Command{
		Name:        "kill",
		Description: "Send a signal to a job or process",
		Usage:       "kill [-SIGNAL] %job|pid\nkill -l, --list\n\nSIGNAL may be a name (TERM, KILL, INT, STOP, CONT, TSTP, HUP, QUIT) or a\nnumber; defaults to TERM.",
		Run:         killCmd,
	})
}

var signalsByName = map[string]syscall.Signal{
	"TERM": syscall.SIGTERM,
	"KILL": syscall.SIGKILL,
	"INT":  syscall.SIGINT,
	"STOP": syscall.SIGSTOP,
	"CONT": syscall.SIGCONT,
	"TSTP": syscall.SIGTSTP,
	"HUP":  syscall.SIGHUP,
	"QUIT": syscall.SIGQUIT,
}

// resolveJob finds the job named by args[0] (either "%N" or bare "N"),
// defaulting to the most recently added job when args is empty.
func resolveJob(s *session.Session, args []string) (*session.Job, error) {
	jobs := s.Jobs.All()
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no current job")
	}
	if len(args) == 0 {
		return jobs[len(jobs)-1], nil
	}

	spec := strings.TrimPrefix(args[0], "%")
	id, err := strconv.Atoi(spec)
	if err != nil {
		return nil, fmt.Errorf("%s: no such job", args[0])
	}
	job, ok := s.Jobs.Get(id)
	if !ok {
		return nil, fmt.Errorf("%s: no such job", args[0])
	}
	return job, nil
}

func fgCmd(ctx context.Context, s *session.Session, env *ExecutionEnv, args []string) error {
	job, err := resolveJob(s, args)
	if err != nil {
		return fmt.Errorf("fg: %v", err)
	}

	fmt.Fprintln(env.Stdout, job.Command)

	if job.Status == session.JobStopped {
		if err := syscall.Kill(-job.PGID, syscall.SIGCONT); err != nil {
			return fmt.Errorf("fg: %v", err)
		}
		s.Jobs.SetStatus(job.ID, session.JobRunning)
	}

	s.SetForegroundPGID(job.PGID)
	defer s.ClearForeground()

	select {
	case <-job.Done:
		s.LastStatus = job.ExitCode
		s.Jobs.Remove(job.ID)
	case <-job.StopCh:
		job = s.Jobs.Reinsert(job)
		fmt.Fprintf(env.Stdout, "[%d]+  %s                 %s\n", job.ID, ui.MutedStyle.Render("Stopped"), job.Command)
		s.LastStatus = shellStoppedStatus
	}
	return nil
}

// shellStoppedStatus mirrors shell.StoppedStatus; duplicated here because
// commands cannot import shell (see Executor in source.go).
const shellStoppedStatus = 148

func bgCmd(ctx context.Context, s *session.Session, env *ExecutionEnv, args []string) error {
	job, err := resolveJob(s, args)
	if err != nil {
		return fmt.Errorf("bg: %v", err)
	}
	if job.Status != session.JobStopped {
		return fmt.Errorf("bg: job %d already in background", job.ID)
	}
	if err := syscall.Kill(-job.PGID, syscall.SIGCONT); err != nil {
		return fmt.Errorf("bg: %v", err)
	}
	s.Jobs.SetStatus(job.ID, session.JobRunning)
	fmt.Fprintf(env.Stdout, "[%d]+  %s\n", job.ID, job.Command)
	return nil
}

func jobsCmd(ctx context.Context, s *session.Session, env *ExecutionEnv, args []string) error {
	fs := pflag.NewFlagSet("jobs", pflag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	long := fs.BoolP("long", "l", false, "also show each job's process group ID")
	if err := fs.Parse(ReorderArgsForFlags(fs, args)); err != nil {
		return err
	}

	jobs := s.Jobs.All()
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })

	t := ui.NewTable(env.Stdout)
	for _, job := range jobs {
		if *long {
			t.AddRow(fmt.Sprintf("[%d]", job.ID), strconv.Itoa(job.PGID), job.Status.String(), job.Command)
		} else {
			t.AddRow(fmt.Sprintf("[%d]", job.ID), job.Status.String(), job.Command)
		}
	}
	t.Render()
	return nil
}

// killListFlagSet recognizes only -l/--list. kill's signal-target syntax
// (-9, -TERM, -KILL...) isn't a fixed, registerable set of pflag flags, so
// it's deliberately kept out of this FlagSet and parsed by hand below;
// routing it through pflag.Parse would mean every signal name doubles as an
// "unknown flag" pflag has to tolerate instead of reject.
func killListFlagSet(env *ExecutionEnv) (*pflag.FlagSet, *bool) {
	fs := pflag.NewFlagSet("kill", pflag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	return fs, fs.BoolP("list", "l", false, "list known signal names")
}

func killCmd(ctx context.Context, s *session.Session, env *ExecutionEnv, args []string) error {
	if len(args) == 1 && (args[0] == "-l" || args[0] == "--list") {
		fs, list := killListFlagSet(env)
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *list {
			names := make([]string, 0, len(signalsByName))
			for name := range signalsByName {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Fprintln(env.Stdout, strings.Join(names, " "))
		}
		return nil
	}

	sig := syscall.SIGTERM
	if len(args) > 0 && strings.HasPrefix(args[0], "-") {
		spec := strings.TrimPrefix(args[0], "-")
		if n, err := strconv.Atoi(spec); err == nil {
			sig = syscall.Signal(n)
		} else if named, ok := signalsByName[strings.ToUpper(spec)]; ok {
			sig = named
		} else {
			return fmt.Errorf("kill: unknown signal: %s", spec)
		}
		args = args[1:]
	}

	if len(args) == 0 {
		return fmt.Errorf("usage: kill [-SIGNAL] %%job|pid")
	}

	for _, target := range args {
		if strings.HasPrefix(target, "%") {
			job, err := resolveJob(s, []string{target})
			if err != nil {
				return fmt.Errorf("kill: %v", err)
			}
			if err := syscall.Kill(-job.PGID, sig); err != nil {
				return fmt.Errorf("kill: (%s): %v", target, err)
			}
			continue
		}
		pid, err := strconv.Atoi(target)
		if err != nil {
			return fmt.Errorf("kill: %s: arguments must be process or job IDs", target)
		}
		if err := syscall.Kill(pid, sig); err != nil {
			return fmt.Errorf("kill: (%d): %v", pid, err)
		}
	}
	return nil
}
