package shell_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisha-shell/aisha/internal/shell"
)

func mustTokenize(t *testing.T, line string) []shell.Token {
	t.Helper()
	tokens, err := shell.Tokenize(line)
	require.NoError(t, err)
	return tokens
}

func TestValidateGrammar_Valid(t *testing.T) {
	cases := []string{
		"echo hello",
		"echo hello | grep h",
		"echo hello > out.txt",
		"cat < in.txt",
		"echo hi >> out.txt",
		"cat <<< word",
	}
	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			assert.NoError(t, shell.ValidateGrammar(mustTokenize(t, c)))
		})
	}
}

func TestValidateGrammar_Invalid(t *testing.T) {
	cases := []string{
		"| echo hi",
		"echo hi |",
		"echo >",
		"< in.txt",
	}
	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			err := shell.ValidateGrammar(mustTokenize(t, c))
			require.Error(t, err)
			var sErr *shell.SyntaxError
			assert.ErrorAs(t, err, &sErr)
		})
	}
}

func TestValidateGrammar_MidPipeSegmentWithCommandWord(t *testing.T) {
	// grammar itself doesn't enforce first/last placement (parseSegment
	// does), but a mid-pipe segment still needs a command word.
	err := shell.ValidateGrammar(mustTokenize(t, "a | b | c"))
	assert.NoError(t, err)
}

func TestValidateChain_RejectsDanglingAndOr(t *testing.T) {
	cases := []string{"echo hi &&", "echo hi ||"}
	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			tokens := mustTokenize(t, c)
			chained := shell.SplitByChain(tokens)
			err := shell.ValidateChain(chained)
			require.Error(t, err)
		})
	}
}

func TestValidateChain_AllowsTrailingSeqOrBackground(t *testing.T) {
	cases := []string{"echo hi ;", "echo hi &"}
	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			tokens := mustTokenize(t, c)
			chained := shell.SplitByChain(tokens)
			assert.NoError(t, shell.ValidateChain(chained))
		})
	}
}

func TestValidateChain_FullLine(t *testing.T) {
	tokens := mustTokenize(t, "echo hi && echo bye || echo fallback ; echo done")
	chained := shell.SplitByChain(tokens)
	require.NoError(t, shell.ValidateChain(chained))
	require.Len(t, chained, 4)
}

func TestValidateChain_RejectsLeadingOperator(t *testing.T) {
	cases := []string{"&& echo hi", "|| echo hi", "; echo hi"}
	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			tokens := mustTokenize(t, c)
			chained := shell.SplitByChain(tokens)
			err := shell.ValidateChain(chained)
			require.Error(t, err)
			var sErr *shell.SyntaxError
			assert.ErrorAs(t, err, &sErr)
		})
	}
}

func TestValidateChain_RejectsDoubledSeparator(t *testing.T) {
	cases := []string{"echo hi ;; echo bye", "echo hi && && echo bye"}
	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			tokens := mustTokenize(t, c)
			chained := shell.SplitByChain(tokens)
			err := shell.ValidateChain(chained)
			require.Error(t, err)
		})
	}
}

func TestValidateGrammar_SubshellIsWord(t *testing.T) {
	err := shell.ValidateGrammar(mustTokenize(t, "(echo hi)"))
	assert.NoError(t, err)
}
