package shell

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/aisha-shell/aisha/internal/config"
	"github.com/aisha-shell/aisha/internal/session"
	"github.com/aisha-shell/aisha/internal/ui"
)

// Shell is the interactive REPL: a line editor wrapping github.com/chzyer/readline,
// bound to a Session, driving the tokenizer/grammar/expansion/executor
// pipeline on every line.
type Shell struct {
	Session        *session.Session
	RL             *readline.Instance
	sessionHistory []string
}

// New creates a Shell with a readline instance configured for history
// persistence, tab completion, and raw-mode editing (spec.md §5).
func New(sess *session.Session) (*Shell, error) {
	historyPath, _ := config.HistoryPath()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "aisha> ",
		HistoryFile:       historyPath,
		HistorySearchFold: true,
		AutoComplete:      NewCompleter(sess),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
	})
	if err != nil {
		return nil, &IOError{Msg: "failed to start line editor", Err: err}
	}

	sh := &Shell{Session: sess, RL: rl}
	sess.History.Load(sh.GetHistory())
	return sh, nil
}

func (sh *Shell) buildPrompt() string {
	return ui.RenderPrompt(sh.Session.Username, sh.Session.DisplayCWD(), sh.Session.LastStatus)
}

// Run drives the read-eval-print loop until EOF or `exit`.
func (sh *Shell) Run() {
	defer sh.RL.Close()
	stopSignals := InstallSignalForwarding(sh.Session)
	defer stopSignals()

	ctx := context.Background()

	for {
		ReportFinishedJobs(sh.Session, os.Stdout)
		sh.RL.SetPrompt(sh.buildPrompt())

		line, err := sh.RL.Readline()
		if err != nil {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "!") && len(line) > 1 {
			expanded, err := sh.expandHistory(line)
			if err != nil {
				fmt.Printf("aisha: %v\n", err)
				continue
			}
			line = expanded
			fmt.Println(line)
		}

		line = ExpandAliases(line, sh.Session.Aliases)
		sh.sessionHistory = append(sh.sessionHistory, line)
		sh.Session.History.Add(line)

		chain, err := ParseCommandChain(line, sh.readMoreLine)
		if err != nil {
			fmt.Printf("aisha: %v\n", err)
			sh.Session.LastStatus = ExitStatus(err)
			continue
		}

		if err := chain.Execute(ctx, sh.Session); err != nil {
			if msg := err.Error(); msg != "" {
				fmt.Printf("aisha: %v\n", msg)
			}
		}

		if exitRequested(sh.Session) {
			break
		}
	}
}

// readMoreLine supplies extra physical lines to satisfy a heredoc body,
// prompting with "> " the way the line editors this was distilled from do.
func (sh *Shell) readMoreLine() (string, bool) {
	sh.RL.SetPrompt("> ")
	line, err := sh.RL.Readline()
	if err != nil {
		return "", false
	}
	return line, true
}

// exitRequested reports whether the `exit` builtin asked the REPL to stop,
// signaled via the sentinel session.ExitRequested flag.
func exitRequested(sess *session.Session) bool {
	return sess.ExitRequested
}

// expandHistory handles !!, !-n, !n, and !prefix history references.
func (sh *Shell) expandHistory(line string) (string, error) {
	if line == "!!" {
		if len(sh.sessionHistory) == 0 {
			return "", fmt.Errorf("!!: event not found")
		}
		return sh.sessionHistory[len(sh.sessionHistory)-1], nil
	}

	if strings.HasPrefix(line, "!-") {
		n, err := strconv.Atoi(line[2:])
		if err != nil || n < 1 {
			return "", fmt.Errorf("%s: event not found", line)
		}
		idx := len(sh.sessionHistory) - n
		if idx < 0 {
			return "", fmt.Errorf("%s: event not found", line)
		}
		return sh.sessionHistory[idx], nil
	}

	history := sh.Session.History.Entries()
	if len(history) == 0 {
		return "", fmt.Errorf("no history available")
	}

	rest := line[1:]
	if n, err := strconv.Atoi(rest); err == nil {
		entry, ok := sh.Session.History.At(n)
		if !ok {
			return "", fmt.Errorf("!%d: event not found", n)
		}
		return entry, nil
	}

	for i := len(history) - 1; i >= 0; i-- {
		if strings.HasPrefix(history[i], rest) {
			return history[i], nil
		}
	}
	return "", fmt.Errorf("!%s: event not found", rest)
}

// GetHistory returns the persisted history file contents, falling back to
// the in-session history when the file can't be read.
func (sh *Shell) GetHistory() []string {
	historyPath, err := config.HistoryPath()
	if err != nil {
		return sh.Session.History.Entries()
	}
	data, err := os.ReadFile(historyPath)
	if err != nil {
		return sh.Session.History.Entries()
	}
	var out []string
	for _, l := range strings.Split(string(data), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
