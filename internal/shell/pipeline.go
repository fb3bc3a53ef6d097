package shell

import (
	"strings"

	"github.com/aisha-shell/aisha/internal/config"
	"github.com/aisha-shell/aisha/internal/session"
	"github.com/aisha-shell/aisha/internal/util"
)

// maxHeredocBytes bounds how large a heredoc body may grow before the parser
// refuses it, reusing the teacher's file-size-vs-memory budget
// (internal/util/memory.go, config.DefaultMaxMemoryBufferMB) instead of a
// fresh constant.
const maxHeredocBytes = int64(config.DefaultMaxMemoryBufferMB) << 20

// CommandChain is a sequence of pipelines connected by &&, ||, ;, or &.
type CommandChain struct {
	Commands []ChainedPipeline
}

// ChainedPipeline pairs a pipeline with the operator that follows it.
type ChainedPipeline struct {
	Pipeline *Pipeline
	Operator ChainOperator
}

// Pipeline is one or more segments connected by '|'.
type Pipeline struct {
	Segments   []*Segment
	Background bool
}

// Redirect is a single input/output redirection attached to a segment.
type Redirect struct {
	Type TokenType
	// Word is the filename for <, >, >>; the raw string for <<< (before
	// variable expansion); the collected body text for <<.
	Word string
}

// Assignment is one NAME=value word appearing before the command name.
type Assignment struct {
	Name  string
	Value string
}

// Segment is a single command in a pipeline with its redirections and any
// leading variable assignments. CommandName is empty when the segment is a
// bare assignment list with no command (spec.md §4.6) or a subshell group.
type Segment struct {
	Args        []string
	CommandName string
	Redirects   []Redirect
	Assignments []Assignment
	// SubshellSource holds the raw, unexpanded interior of a (...) group;
	// non-empty marks this segment as a subshell rather than a builtin or
	// external command (spec.md §4.5). It is executed by re-invoking the
	// shell binary with -c, so the group runs as a genuine child process
	// whose variable and directory changes never leak back into the
	// parent session.
	SubshellSource string
}

// LineReader supplies additional physical lines to satisfy a heredoc body;
// ok is false once no more input is available.
type LineReader func() (line string, ok bool)

// ParseCommandChain tokenizes, validates, and builds a CommandChain from one
// logical line. more is consulted only if the line contains a '<<'
// redirection; pass nil where heredocs cannot be satisfied (e.g. when
// expanding a history reference).
func ParseCommandChain(line string, more LineReader) (*CommandChain, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	tokens, err := Tokenize(line)
	if err != nil {
		return nil, err
	}

	chained := SplitByChain(tokens)
	if err := ValidateChain(chained); err != nil {
		return nil, err
	}

	chain := &CommandChain{}
	for _, cc := range chained {
		if len(cc.Tokens) == 0 {
			continue
		}
		pipeline, err := parsePipelineFromTokens(cc.Tokens, more)
		if err != nil {
			return nil, err
		}
		if cc.Operator == ChainBackground {
			pipeline.Background = true
		}
		chain.Commands = append(chain.Commands, ChainedPipeline{Pipeline: pipeline, Operator: cc.Operator})
	}
	if len(chain.Commands) == 0 {
		return nil, nil
	}
	return chain, nil
}

func parsePipelineFromTokens(tokens []Token, more LineReader) (*Pipeline, error) {
	segments := SplitByPipe(tokens)
	pipeline := &Pipeline{}
	for i, segTokens := range segments {
		seg, err := parseSegment(segTokens, i == 0, i == len(segments)-1, more)
		if err != nil {
			return nil, err
		}
		pipeline.Segments = append(pipeline.Segments, seg)
	}
	return pipeline, nil
}

func parseSegment(tokens []Token, isFirst, isLast bool, more LineReader) (*Segment, error) {
	seg := &Segment{}
	var words []Token

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.Type {
		case TokenWord, TokenSubshell:
			words = append(words, tok)

		case TokenRedirectIn, TokenHereString:
			if !isFirst {
				return nil, &SyntaxError{Msg: "input redirection only allowed on the first command in a pipeline"}
			}
			word, err := expectWord(tokens, i)
			if err != nil {
				return nil, err
			}
			seg.Redirects = append(seg.Redirects, Redirect{Type: tok.Type, Word: word})
			i++

		case TokenHeredoc:
			if !isFirst {
				return nil, &SyntaxError{Msg: "input redirection only allowed on the first command in a pipeline"}
			}
			delim, err := expectWord(tokens, i)
			if err != nil {
				return nil, err
			}
			body, err := readHeredocBody(delim, more)
			if err != nil {
				return nil, err
			}
			seg.Redirects = append(seg.Redirects, Redirect{Type: TokenHeredoc, Word: body})
			i++

		case TokenRedirectOut, TokenRedirectAppend:
			if !isLast {
				return nil, &SyntaxError{Msg: "output redirection only allowed on the last command in a pipeline"}
			}
			word, err := expectWord(tokens, i)
			if err != nil {
				return nil, err
			}
			seg.Redirects = append(seg.Redirects, Redirect{Type: tok.Type, Word: word})
			i++
		}
	}

	if len(words) == 0 {
		return nil, &SyntaxError{Msg: "expected command"}
	}

	idx := 0
	for idx < len(words) && words[idx].Type == TokenWord && !words[idx].Quoted {
		if name, value, ok := splitAssignment(words[idx].Value); ok {
			seg.Assignments = append(seg.Assignments, Assignment{Name: name, Value: value})
			idx++
			continue
		}
		break
	}

	if idx == len(words) {
		return seg, nil
	}

	if words[idx].Type == TokenSubshell {
		if idx != len(words)-1 {
			return nil, &SyntaxError{Msg: "unexpected token after subshell group"}
		}
		chain, err := ParseCommandChain(words[idx].Value, nil)
		if err != nil {
			return nil, err
		}
		if chain == nil {
			return nil, &SyntaxError{Msg: "expected command inside subshell group"}
		}
		seg.SubshellSource = words[idx].Value
		return seg, nil
	}

	seg.CommandName = words[idx].Value
	for _, w := range words[idx+1:] {
		if w.Type == TokenSubshell {
			return nil, &SyntaxError{Msg: "unexpected subshell group in argument position"}
		}
		seg.Args = append(seg.Args, w.Value)
	}
	return seg, nil
}

func expectWord(tokens []Token, i int) (string, error) {
	if i+1 >= len(tokens) || tokens[i+1].Type != TokenWord {
		return "", &SyntaxError{Msg: "expected word after redirection operator"}
	}
	return tokens[i+1].Value, nil
}

func readHeredocBody(delim string, more LineReader) (string, error) {
	if more == nil {
		return "", newTokenizerError("heredoc requires more input than is available here")
	}
	var b strings.Builder
	for {
		line, ok := more()
		if !ok {
			return "", newTokenizerError("unexpected end of input while looking for heredoc delimiter %q", delim)
		}
		if strings.TrimSpace(line) == delim {
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
		if int64(b.Len()) > maxHeredocBytes {
			return "", newTokenizerError("heredoc body exceeds %s, refusing to buffer it in memory", util.FormatBytes(maxHeredocBytes))
		}
	}
	return b.String(), nil
}

func splitAssignment(word string) (name, value string, ok bool) {
	idx := strings.IndexByte(word, '=')
	if idx <= 0 {
		return "", "", false
	}
	name = word[:idx]
	if !session.ValidName(name) {
		return "", "", false
	}
	return name, word[idx+1:], true
}
