package shell

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aisha-shell/aisha/internal/session"
)

// ExpandGlobs expands glob patterns (*, ?, [...], {...}) in args against the
// real filesystem, rooted at s.CWD for relative patterns. An argument with
// no glob metacharacters, or one that matches nothing, passes through
// unchanged (spec.md §4.5, matching the non-matching-pattern convention of
// the shells it was distilled from).
func ExpandGlobs(s *session.Session, args []string) []string {
	var out []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			out = append(out, arg)
			continue
		}

		matches := globOne(s, arg)
		if len(matches) == 0 {
			out = append(out, arg)
			continue
		}
		out = append(out, matches...)
	}
	return out
}

func globOne(s *session.Session, pattern string) []string {
	abs := filepath.IsAbs(pattern)
	root := s.CWD
	rel := pattern
	if abs {
		root = "/"
		rel = strings.TrimPrefix(pattern, "/")
	}

	fsys := os.DirFS(root)
	matches, err := doublestar.Glob(fsys, rel)
	if err != nil || len(matches) == 0 {
		return nil
	}

	var results []string
	showHidden := strings.HasPrefix(filepath.Base(pattern), ".")
	for _, m := range matches {
		if !showHidden && hasHiddenComponent(m) {
			continue
		}
		if abs {
			results = append(results, "/"+m)
		} else {
			results = append(results, m)
		}
	}
	sort.Strings(results)
	return results
}

func hasHiddenComponent(path string) bool {
	for _, part := range strings.Split(path, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
