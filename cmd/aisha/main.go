// Command aisha is the interactive Unix command interpreter: tokenizer,
// grammar validator, alias/variable/glob expansion, pipeline executor, job
// control, and line editor wired together into one REPL.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/user"

	"golang.org/x/term"

	"github.com/aisha-shell/aisha/internal/build"
	"github.com/aisha-shell/aisha/internal/config"
	"github.com/aisha-shell/aisha/internal/session"
	"github.com/aisha-shell/aisha/internal/shell"

	// Register builtins.
	_ "github.com/aisha-shell/aisha/internal/commands"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("aisha version %s (%s, built %s)\n", build.Version, build.Commit, build.Date)
		os.Exit(0)
	}

	// -c <script> runs one chain and exits; this is how a (...) subshell
	// group re-invokes the binary as a genuine child process rather than
	// running the group in-process (internal/shell/executor.go).
	if len(os.Args) > 1 && os.Args[1] == "-c" {
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "aisha: -c requires a script argument")
			os.Exit(2)
		}
		runSubshellScript(os.Args[2])
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "aisha: %v\n", err)
		os.Exit(1)
	}

	sess := session.New()
	if u, err := user.Current(); err == nil {
		sess.Username = u.Username
	} else {
		sess.Username = "user"
	}

	rcLines, err := config.ReadRCLines()
	if err != nil {
		fmt.Fprintf(os.Stderr, "aisha: %v\n", err)
	}
	for _, line := range rcLines {
		if line == "" {
			continue
		}
		if err := runStartupLine(sess, line); err != nil {
			if msg := err.Error(); msg != "" {
				fmt.Fprintf(os.Stderr, "aisha: %s\n", msg)
			}
		}
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		runScript(sess, os.Stdin)
		os.Exit(sess.LastStatus)
	}

	sess.Variables.Set("HISTSIZE", fmt.Sprint(cfg.HistorySize))

	sh, err := shell.New(sess)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aisha: %v\n", err)
		os.Exit(1)
	}
	sh.Run()
	os.Exit(sess.LastStatus)
}

// runSubshellScript runs a single command chain non-interactively and exits
// with its status, without reading rc files or starting a line editor — the
// whole point of the -c path is a short-lived child process for one (...)
// group (spec.md §4.5).
func runSubshellScript(script string) {
	sess := session.New()
	if u, err := user.Current(); err == nil {
		sess.Username = u.Username
	} else {
		sess.Username = "user"
	}
	if wd, err := os.Getwd(); err == nil {
		sess.CWD = wd
	}
	if err := runStartupLine(sess, script); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintf(os.Stderr, "aisha: %s\n", msg)
		}
	}
	os.Exit(sess.LastStatus)
}

// runStartupLine and runScript reuse commands.Executor indirectly through
// shell.ParseCommandChain/Execute rather than duplicating the pipeline here.
func runStartupLine(sess *session.Session, line string) error {
	chain, err := shell.ParseCommandChain(line, nil)
	if err != nil {
		return err
	}
	if chain == nil {
		return nil
	}
	return chain.Execute(context.Background(), sess)
}

// runScript feeds a non-interactive stdin (a pipe or redirected file) through
// the same chain executor line by line, supporting `aisha < script.sh`.
func runScript(sess *session.Session, r *os.File) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		line = shell.ExpandAliases(line, sess.Aliases)
		if err := runStartupLine(sess, line); err != nil {
			if msg := err.Error(); msg != "" {
				fmt.Fprintf(os.Stderr, "aisha: %s\n", msg)
			}
		}
		if sess.ExitRequested {
			return
		}
	}
}
