package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/aisha-shell/aisha/internal/session"
	"github.com/aisha-shell/aisha/internal/ui"
)

// ExecutionEnv is the I/O environment a builtin runs with, set up by the
// executor from the owning segment's redirections and pipe wiring.
type ExecutionEnv struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Command is a registered builtin.
type Command struct {
	Run         func(ctx context.Context, s *session.Session, env *ExecutionEnv, args []string) error
	Name        string
	Description string
	Usage       string
}

// Registry is the process-wide table of builtins. It is read-only after
// package init (every entry is registered from an init func), so concurrent
// lookups from pipeline stages need no lock.
var Registry = make(map[string]*Command)

// ReorderArgsForFlags moves recognized flags ahead of positional arguments
// so GNU-style interspersed flags work regardless of where they appear.
func ReorderArgsForFlags(fs *pflag.FlagSet, args []string) []string {
	var flags []string
	var positional []string

	i := 0
	for i < len(args) {
		arg := args[i]
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if strings.HasPrefix(arg, "-") && arg != "-" {
			flags = append(flags, arg)
			name := strings.TrimLeft(arg, "-")
			if idx := strings.Index(name, "="); idx >= 0 {
				i++
				continue
			}
			if f := fs.Lookup(name); f != nil {
				if f.Value.Type() == "bool" {
					i++
					continue
				}
				if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
					i++
					flags = append(flags, args[i])
				}
			}
		} else {
			positional = append(positional, arg)
		}
		i++
	}

	return append(flags, positional...)
}

func init() {
	Register(&Command{
		Name:        "help",
		Description: "Show available commands or help for a specific command",
		Usage:       "help [command]\n\nExamples:\n  help         List all commands\n  help cd      Show detailed help for cd",
		Run:         help,
	})
	Register(&Command{
		Name:        "clear",
		Description: "Clear the screen",
		Usage:       "clear\n\nClears the terminal screen and scrollback buffer.",
		Run:         clear,
	})
	Register(&Command{
		Name:        "history",
		Description: "Show command history",
		Usage:       "history\n\nDisplays a numbered list of previously executed commands.",
		Run:         history,
	})
}

// Register adds cmd to the registry under cmd.Name.
func Register(cmd *Command) {
	Registry[cmd.Name] = cmd
}

// Get looks up a builtin by name.
func Get(name string) (*Command, bool) {
	cmd, ok := Registry[name]
	return cmd, ok
}

// HasHelpFlag reports whether args request -h/--help before the first
// positional argument.
func HasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
		if len(arg) > 0 && arg[0] != '-' {
			break
		}
	}
	return false
}

// PrintUsage writes cmd's description and usage text to w.
func PrintUsage(cmd *Command, w io.Writer) {
	fmt.Fprintf(w, "%s - %s\n", ui.CommandStyle.Render(cmd.Name), cmd.Description)
	if cmd.Usage != "" {
		fmt.Fprintf(w, "\nUsage: %s\n", cmd.Usage)
	}
}

func help(ctx context.Context, s *session.Session, env *ExecutionEnv, args []string) error {
	if len(args) > 0 {
		cmd, ok := Registry[args[0]]
		if !ok {
			return fmt.Errorf("help: unknown command '%s'", args[0])
		}
		PrintUsage(cmd, env.Stdout)
		return nil
	}

	seen := make(map[string]bool)
	var cmds []*Command
	for name, cmd := range Registry {
		if cmd.Name == name && !seen[name] {
			cmds = append(cmds, cmd)
			seen[name] = true
		}
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })

	fmt.Fprintln(env.Stdout, ui.HeaderStyle.Render("Available commands:"))
	fmt.Fprintln(env.Stdout)
	for _, cmd := range cmds {
		name := ui.CommandStyle.Render(fmt.Sprintf("%-12s", cmd.Name))
		desc := ui.MutedStyle.Render(cmd.Description)
		fmt.Fprintf(env.Stdout, "  %s %s\n", name, desc)
	}
	fmt.Fprintln(env.Stdout)
	return nil
}

func clear(ctx context.Context, s *session.Session, env *ExecutionEnv, args []string) error {
	fmt.Fprint(env.Stdout, "\033[H\033[2J\033[3J")
	return nil
}

func history(ctx context.Context, s *session.Session, env *ExecutionEnv, args []string) error {
	entries := s.History.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(env.Stdout, "No history.")
		return nil
	}
	for i, cmd := range entries {
		num := ui.MutedStyle.Render(fmt.Sprintf("%4d", i+1))
		fmt.Fprintf(env.Stdout, "  %s  %s\n", num, cmd)
	}
	return nil
}
