package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/aisha-shell/aisha/internal/session"
)

func init() {
	Register(&Command{
		Name:        "test",
		Description: "Evaluate a conditional expression",
		Usage:       "test EXPRESSION\n[ EXPRESSION ]\n\nString: -z, -n, =, !=\nFile:   -e, -f, -d, -r, -w, -x\nNumeric: -eq, -ne, -lt, -le, -gt, -ge",
		Run:         testCmd,
	})
	Register(&Command{
		Name:        "[",
		Description: "Alias for test, requires a trailing ]",
		Usage:       "[ EXPRESSION ]",
		Run:         bracketCmd,
	})
}

func bracketCmd(ctx context.Context, s *session.Session, env *ExecutionEnv, args []string) error {
	if len(args) == 0 || args[len(args)-1] != "]" {
		return &testFailure{code: 2, msg: "[: missing closing ]"}
	}
	return testCmd(ctx, s, env, args[:len(args)-1])
}

// testFailure is a CommandError-alike for the test builtin: exit code 1
// means "expression is false", 2 means a malformed expression. Since
// commands cannot import shell's CommandError, the executor's generic
// nonzero-exit convention is reproduced here via a local ExitCoder.
type testFailure struct {
	code int
	msg  string
}

func (e *testFailure) Error() string {
	if e.code == 2 {
		return e.msg
	}
	return ""
}
func (e *testFailure) ExitCode() int { return e.code }

func testCmd(ctx context.Context, s *session.Session, env *ExecutionEnv, args []string) error {
	ok, err := evalTest(args)
	if err != nil {
		return &testFailure{code: 2, msg: fmt.Sprintf("test: %v", err)}
	}
	if !ok {
		return &testFailure{code: 1}
	}
	return nil
}

func evalTest(args []string) (bool, error) {
	switch len(args) {
	case 0:
		return false, nil
	case 1:
		return args[0] != "", nil
	case 2:
		return evalUnary(args[0], args[1])
	case 3:
		return evalBinary(args[0], args[1], args[2])
	default:
		return false, fmt.Errorf("too many arguments")
	}
}

func evalUnary(op, operand string) (bool, error) {
	switch op {
	case "-z":
		return operand == "", nil
	case "-n":
		return operand != "", nil
	case "-e":
		_, err := os.Stat(operand)
		return err == nil, nil
	case "-f":
		info, err := os.Stat(operand)
		return err == nil && info.Mode().IsRegular(), nil
	case "-d":
		info, err := os.Stat(operand)
		return err == nil && info.IsDir(), nil
	case "-r":
		return accessible(operand, 0o4), nil
	case "-w":
		return accessible(operand, 0o2), nil
	case "-x":
		info, err := os.Stat(operand)
		return err == nil && info.Mode()&0o111 != 0, nil
	default:
		return false, fmt.Errorf("unknown unary operator %q", op)
	}
}

func accessible(path string, mode os.FileMode) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&mode != 0
}

func evalBinary(lhs, op, rhs string) (bool, error) {
	switch op {
	case "=":
		return lhs == rhs, nil
	case "!=":
		return lhs != rhs, nil
	case "-eq", "-ne", "-lt", "-le", "-gt", "-ge":
		l, err := strconv.Atoi(lhs)
		if err != nil {
			return false, fmt.Errorf("%s: integer expression expected", lhs)
		}
		r, err := strconv.Atoi(rhs)
		if err != nil {
			return false, fmt.Errorf("%s: integer expression expected", rhs)
		}
		switch op {
		case "-eq":
			return l == r, nil
		case "-ne":
			return l != r, nil
		case "-lt":
			return l < r, nil
		case "-le":
			return l <= r, nil
		case "-gt":
			return l > r, nil
		case "-ge":
			return l >= r, nil
		}
	}
	return false, fmt.Errorf("unknown binary operator %q", op)
}
