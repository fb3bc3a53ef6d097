package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/aisha-shell/aisha/internal/session"
)

func init() {
	Register(&Command{
		Name:        "export",
		Description: "Mark a variable for export to child processes",
		Usage:       "export [NAME[=value] ...]\nexport -p\n\nWith no arguments, or with -p, lists exported variables in a form\nthat can be fed back in.",
		Run:         exportCmd,
	})
	Register(&Command{
		Name:        "readonly",
		Description: "Mark a variable as readonly",
		Usage:       "readonly NAME[=value]",
		Run:         readonlyCmd,
	})
	Register(&Command{
		Name:        "unset",
		Description: "Remove a variable",
		Usage:       "unset NAME",
		Run:         unsetCmd,
	})
}

func exportCmd(ctx context.Context, s *session.Session, env *ExecutionEnv, args []string) error {
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	printFlag := fs.BoolP("print", "p", false, "list exported variables in a form that can be fed back in")
	if err := fs.Parse(ReorderArgsForFlags(fs, args)); err != nil {
		return err
	}
	args = fs.Args()

	if len(args) == 0 || *printFlag {
		return printExported(s, env)
	}

	for _, arg := range args {
		name, value, hasValue := strings.Cut(arg, "=")
		if !session.ValidName(name) {
			return fmt.Errorf("export: %s: not a valid identifier", name)
		}
		if hasValue {
			if err := s.Variables.Set(name, value); err != nil {
				return fmt.Errorf("export: %v", err)
			}
		}
		s.Variables.Export(name)
	}
	return nil
}

func readonlyCmd(ctx context.Context, s *session.Session, env *ExecutionEnv, args []string) error {
	for _, arg := range args {
		name, value, hasValue := strings.Cut(arg, "=")
		if !session.ValidName(name) {
			return fmt.Errorf("readonly: %s: not a valid identifier", name)
		}
		if hasValue {
			if err := s.Variables.Set(name, value); err != nil {
				return fmt.Errorf("readonly: %v", err)
			}
		}
		v := s.Variables.Lookup(name)
		if v == nil {
			_ = s.Variables.Set(name, "")
			v = s.Variables.Lookup(name)
		}
		v.Flags |= session.FlagReadOnly
	}
	return nil
}

func unsetCmd(ctx context.Context, s *session.Session, env *ExecutionEnv, args []string) error {
	for _, name := range args {
		if v := s.Variables.Lookup(name); v != nil && v.ReadOnly() {
			return fmt.Errorf("unset: %s: readonly variable", name)
		}
		s.Variables.Unset(name)
	}
	return nil
}

func printExported(s *session.Session, env *ExecutionEnv) error {
	names := s.Variables.Names()
	sort.Strings(names)
	for _, name := range names {
		v := s.Variables.Lookup(name)
		if v == nil || !v.Exported() {
			continue
		}
		fmt.Fprintf(env.Stdout, "export %s=%q\n", name, v.Value)
	}
	return nil
}
