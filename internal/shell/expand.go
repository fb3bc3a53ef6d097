package shell

import (
	"strings"

	"github.com/aisha-shell/aisha/internal/session"
)

// maxAliasRounds bounds alias self-recursion (spec.md §4.3: "at least 16
// rounds" before giving up and using the line as-is).
const maxAliasRounds = 16

// ExpandAliases rewrites the first word of line, and the first word
// following any of ';', '&', '&&', '||', or '|', against the alias table,
// re-running until a round produces no change or maxAliasRounds is hit.
// Quoted first words are never treated as alias candidates.
func ExpandAliases(line string, aliases map[string]string) string {
	if len(aliases) == 0 {
		return line
	}
	for i := 0; i < maxAliasRounds; i++ {
		next, changed := expandAliasesOnce(line, aliases)
		if !changed {
			return line
		}
		line = next
	}
	return line
}

func expandAliasesOnce(line string, aliases map[string]string) (string, bool) {
	tokens, err := Tokenize(line)
	if err != nil {
		return line, false
	}

	changed := false
	atCommandStart := true
	var out []string

	for _, tok := range tokens {
		switch tok.Type {
		case TokenEOF:
			continue
		case TokenSemicolon:
			out = append(out, ";")
			atCommandStart = true
			continue
		case TokenAmpersand:
			out = append(out, "&")
			atCommandStart = true
			continue
		case TokenAnd:
			out = append(out, "&&")
			atCommandStart = true
			continue
		case TokenOr:
			out = append(out, "||")
			atCommandStart = true
			continue
		case TokenPipe:
			out = append(out, "|")
			atCommandStart = true
			continue
		case TokenSubshell:
			out = append(out, "("+tok.Value+")")
			atCommandStart = false
			continue
		}

		word := tok.Value
		if atCommandStart && !tok.Quoted {
			if expansion, ok := aliases[word]; ok {
				out = append(out, expansion)
				changed = true
				atCommandStart = false
				continue
			}
		}
		out = append(out, quoteIfNeeded(word, tok.Quoted))
		atCommandStart = false
	}

	return strings.Join(out, " "), changed
}

func quoteIfNeeded(word string, wasQuoted bool) string {
	if !wasQuoted && word != "" && !strings.ContainsAny(word, " \t'\"") {
		return word
	}
	return "'" + strings.ReplaceAll(word, "'", `'\''`) + "'"
}

// ExpandVariables substitutes $NAME, ${NAME}, ${NAME:-default},
// ${NAME:=default}, ${#NAME}, and the special forms $?, $$, $!, $#, $0-$9,
// in word (spec.md §4.4). word is the raw (already-unquoted-by-tokenizer)
// text of a token; quoting is not recognised here, and the executor passes
// every argument through it, single-quoted ones included.
func ExpandVariables(word string, s *session.Session) string {
	var out strings.Builder
	i := 0
	for i < len(word) {
		if word[i] != '$' || i+1 >= len(word) {
			out.WriteByte(word[i])
			i++
			continue
		}

		if word[i+1] == '{' {
			end := strings.IndexByte(word[i+2:], '}')
			if end < 0 {
				out.WriteByte(word[i])
				i++
				continue
			}
			expr := word[i+2 : i+2+end]
			out.WriteString(expandBraceExpr(expr, s))
			i = i + 2 + end + 1
			continue
		}

		name, rest := scanVarName(word[i+1:])
		if name == "" {
			out.WriteByte(word[i])
			i++
			continue
		}
		out.WriteString(lookupVar(name, s))
		i += 1 + (len(word[i+1:]) - len(rest))
	}
	return out.String()
}

// scanVarName consumes a bare $NAME reference: a single special character
// ('?', '$', '!', '#', a digit) or a run of identifier characters.
func scanVarName(s string) (name, rest string) {
	if s == "" {
		return "", s
	}
	switch s[0] {
	case '?', '$', '!', '#':
		return s[:1], s[1:]
	}
	if s[0] >= '0' && s[0] <= '9' {
		return s[:1], s[1:]
	}
	n := 0
	for n < len(s) && (s[n] == '_' || isAlnum(s[n])) {
		n++
	}
	return s[:n], s[n:]
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func lookupVar(name string, s *session.Session) string {
	if v, ok := s.SpecialVar(name); ok {
		return v
	}
	v, _ := s.Variables.Get(name)
	return v
}

// expandBraceExpr handles the body of ${...}: a bare name, "#NAME" (length),
// "NAME:-default", or "NAME:=default".
func expandBraceExpr(expr string, s *session.Session) string {
	if strings.HasPrefix(expr, "#") {
		name := expr[1:]
		return session.Length(lookupVar(name, s))
	}

	if idx := strings.Index(expr, ":-"); idx >= 0 {
		name, def := expr[:idx], expr[idx+2:]
		if v, ok := s.SpecialVar(name); ok && v != "" {
			return v
		}
		if v, ok := s.Variables.Get(name); ok && v != "" {
			return v
		}
		return ExpandVariables(def, s)
	}

	if idx := strings.Index(expr, ":="); idx >= 0 {
		name, def := expr[:idx], expr[idx+2:]
		if v, ok := s.Variables.Get(name); ok && v != "" {
			return v
		}
		val := ExpandVariables(def, s)
		_ = s.Variables.Set(name, val)
		return val
	}

	return lookupVar(expr, s)
}
