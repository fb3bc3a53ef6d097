package shell_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisha-shell/aisha/internal/shell"
)

func TestParseCommandChain_SimpleCommand(t *testing.T) {
	chain, err := shell.ParseCommandChain("echo hello world", nil)
	require.NoError(t, err)
	require.Len(t, chain.Commands, 1)
	seg := chain.Commands[0].Pipeline.Segments[0]
	assert.Equal(t, "echo", seg.CommandName)
	assert.Equal(t, []string{"hello", "world"}, seg.Args)
}

func TestParseCommandChain_Pipeline(t *testing.T) {
	chain, err := shell.ParseCommandChain("cat file.txt | grep foo | wc -l", nil)
	require.NoError(t, err)
	require.Len(t, chain.Commands, 1)
	require.Len(t, chain.Commands[0].Pipeline.Segments, 3)
	assert.Equal(t, "grep", chain.Commands[0].Pipeline.Segments[1].CommandName)
}

func TestParseCommandChain_Redirections(t *testing.T) {
	chain, err := shell.ParseCommandChain("sort < in.txt > out.txt", nil)
	require.NoError(t, err)
	seg := chain.Commands[0].Pipeline.Segments[0]
	require.Len(t, seg.Redirects, 2)
	assert.Equal(t, shell.TokenRedirectIn, seg.Redirects[0].Type)
	assert.Equal(t, "in.txt", seg.Redirects[0].Word)
	assert.Equal(t, shell.TokenRedirectOut, seg.Redirects[1].Type)
	assert.Equal(t, "out.txt", seg.Redirects[1].Word)
}

func TestParseCommandChain_RedirectOnlyOnEndpoints(t *testing.T) {
	_, err := shell.ParseCommandChain("a > out.txt | b", nil)
	assert.Error(t, err)

	_, err = shell.ParseCommandChain("a | b < in.txt", nil)
	assert.Error(t, err)
}

func TestParseCommandChain_Background(t *testing.T) {
	chain, err := shell.ParseCommandChain("sleep 5 &", nil)
	require.NoError(t, err)
	require.Len(t, chain.Commands, 1)
	assert.True(t, chain.Commands[0].Pipeline.Background)
}

func TestParseCommandChain_ChainOperators(t *testing.T) {
	chain, err := shell.ParseCommandChain("a && b || c ; d", nil)
	require.NoError(t, err)
	require.Len(t, chain.Commands, 4)
	assert.Equal(t, shell.ChainAnd, chain.Commands[0].Operator)
	assert.Equal(t, shell.ChainOr, chain.Commands[1].Operator)
	assert.Equal(t, shell.ChainSeq, chain.Commands[2].Operator)
	assert.Equal(t, shell.ChainNone, chain.Commands[3].Operator)
}

func TestParseCommandChain_LeadingAssignment(t *testing.T) {
	chain, err := shell.ParseCommandChain("FOO=bar echo hi", nil)
	require.NoError(t, err)
	seg := chain.Commands[0].Pipeline.Segments[0]
	require.Len(t, seg.Assignments, 1)
	assert.Equal(t, "FOO", seg.Assignments[0].Name)
	assert.Equal(t, "bar", seg.Assignments[0].Value)
	assert.Equal(t, "echo", seg.CommandName)
}

func TestParseCommandChain_BareAssignmentNoCommand(t *testing.T) {
	chain, err := shell.ParseCommandChain("FOO=bar", nil)
	require.NoError(t, err)
	seg := chain.Commands[0].Pipeline.Segments[0]
	assert.Equal(t, "", seg.CommandName)
	require.Len(t, seg.Assignments, 1)
}

func TestParseCommandChain_Heredoc(t *testing.T) {
	lines := []string{"one", "two", "EOF"}
	i := 0
	more := func() (string, bool) {
		if i >= len(lines) {
			return "", false
		}
		l := lines[i]
		i++
		return l, true
	}

	chain, err := shell.ParseCommandChain("cat <<EOF", more)
	require.NoError(t, err)
	seg := chain.Commands[0].Pipeline.Segments[0]
	require.Len(t, seg.Redirects, 1)
	assert.Equal(t, shell.TokenHeredoc, seg.Redirects[0].Type)
	assert.Equal(t, "one\ntwo\n", seg.Redirects[0].Word)
}

func TestParseCommandChain_EmptyLineReturnsNilChain(t *testing.T) {
	chain, err := shell.ParseCommandChain("   ", nil)
	require.NoError(t, err)
	assert.Nil(t, chain)
}

func TestParseCommandChain_SyntaxError(t *testing.T) {
	_, err := shell.ParseCommandChain("| echo hi", nil)
	require.Error(t, err)
	var sErr *shell.SyntaxError
	assert.ErrorAs(t, err, &sErr)
}

func TestParseCommandChain_LeadingOperatorIsSyntaxError(t *testing.T) {
	_, err := shell.ParseCommandChain("&& echo hi", nil)
	require.Error(t, err)
	var sErr *shell.SyntaxError
	assert.ErrorAs(t, err, &sErr)
}

func TestParseCommandChain_DoubledSeparatorIsSyntaxError(t *testing.T) {
	_, err := shell.ParseCommandChain("echo hi ;; echo bye", nil)
	require.Error(t, err)
}

func TestParseCommandChain_Subshell(t *testing.T) {
	chain, err := shell.ParseCommandChain("(echo hi; echo bye)", nil)
	require.NoError(t, err)
	require.Len(t, chain.Commands, 1)
	seg := chain.Commands[0].Pipeline.Segments[0]
	assert.Equal(t, "", seg.CommandName)
	assert.Equal(t, "echo hi; echo bye", seg.SubshellSource)
}

func TestParseCommandChain_SubshellInPipeline(t *testing.T) {
	chain, err := shell.ParseCommandChain("(echo hi | cat) | wc -l", nil)
	require.NoError(t, err)
	segs := chain.Commands[0].Pipeline.Segments
	require.Len(t, segs, 2)
	assert.Equal(t, "echo hi | cat", segs[0].SubshellSource)
	assert.Equal(t, "wc", segs[1].CommandName)
}

func TestParseCommandChain_SubshellMustBeOnlyWord(t *testing.T) {
	_, err := shell.ParseCommandChain("(echo hi) extra", nil)
	require.Error(t, err)
}

func TestParseCommandChain_SubshellInArgumentPositionIsSyntaxError(t *testing.T) {
	_, err := shell.ParseCommandChain("echo (hi)", nil)
	require.Error(t, err)
}

func TestParseCommandChain_EmptySubshellIsSyntaxError(t *testing.T) {
	_, err := shell.ParseCommandChain("()", nil)
	require.Error(t, err)
}
