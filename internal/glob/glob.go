// Package glob implements the shell's filename-wildcard matcher: `*`, `?`,
// `[...]` and `[!...]` matched against a single directory's entries.
package glob

import (
	"os"
	"sort"
	"strings"
)

// HasWildcards reports whether pattern contains any of the wildcard
// introducer bytes. A pattern with none is passed through unchanged by
// Expand, performing no filesystem access.
func HasWildcards(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// Expand matches pattern against the entries of dir and returns the sorted
// matches. If pattern contains no wildcards it is returned unchanged with
// no I/O. If wildcards are present but nothing matches, pattern is
// returned unchanged (a literal-looking typo is not silently dropped).
// "." and ".." are never matched; dotfiles are skipped unless pattern
// itself begins with ".".
func Expand(dir, pattern string) ([]string, error) {
	if !HasWildcards(pattern) {
		return []string{pattern}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{pattern}, nil
	}

	wantDot := strings.HasPrefix(pattern, ".")
	var matches []string
	for _, e := range entries {
		name := e.Name()
		if name == "." || name == ".." {
			continue
		}
		if strings.HasPrefix(name, ".") && !wantDot {
			continue
		}
		if matchPattern(pattern, name) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return []string{pattern}, nil
	}
	sort.Strings(matches)
	return matches, nil
}

// matchPattern reports whether name matches pattern in full, using
// recursive backtracking over '*' (any run, possibly empty), '?' (exactly
// one byte) and '[...]'/'[!...]' character classes. Neither '*' nor '?'
// match '/'.
func matchPattern(pattern, name string) bool {
	return matchAt(pattern, name)
}

func matchAt(pattern, name string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			// Collapse consecutive stars; try every possible split.
			rest := pattern[1:]
			for len(rest) > 0 && rest[0] == '*' {
				rest = rest[1:]
			}
			if len(rest) == 0 {
				return !strings.Contains(name, "/")
			}
			for i := 0; i <= len(name); i++ {
				if matchAt(rest, name[i:]) {
					return true
				}
				if i == len(name) || name[i] == '/' {
					break
				}
			}
			return false
		case '?':
			if len(name) == 0 || name[0] == '/' {
				return false
			}
			pattern, name = pattern[1:], name[1:]
		case '[':
			end := findClassEnd(pattern)
			if end < 0 {
				// Unterminated class: treat '[' as a literal.
				if len(name) == 0 || name[0] != '[' {
					return false
				}
				pattern, name = pattern[1:], name[1:]
				continue
			}
			if len(name) == 0 {
				return false
			}
			if !matchClass(pattern[1:end], name[0]) {
				return false
			}
			pattern, name = pattern[end+1:], name[1:]
		default:
			if len(name) == 0 || name[0] != pattern[0] {
				return false
			}
			pattern, name = pattern[1:], name[1:]
		}
	}
	return len(name) == 0
}

// findClassEnd returns the index of the ']' closing the class that starts
// at pattern[0]=='[', or -1 if unterminated. A ']' immediately after the
// opening '[' (or after a leading '!') is treated as a literal member.
func findClassEnd(pattern string) int {
	i := 1
	if i < len(pattern) && pattern[i] == '!' {
		i++
	}
	if i < len(pattern) && pattern[i] == ']' {
		i++
	}
	for i < len(pattern) {
		if pattern[i] == ']' {
			return i
		}
		i++
	}
	return -1
}

// matchClass reports whether c is matched by the class body (the text
// between '[' and ']', with any leading '!' still present).
func matchClass(body string, c byte) bool {
	negate := false
	if len(body) > 0 && body[0] == '!' {
		negate = true
		body = body[1:]
	}
	matched := false
	for i := 0; i < len(body); {
		if i+2 < len(body) && body[i+1] == '-' {
			lo, hi := body[i], body[i+2]
			if lo <= c && c <= hi {
				matched = true
			}
			i += 3
			continue
		}
		if body[i] == c {
			matched = true
		}
		i++
	}
	if negate {
		return !matched
	}
	return matched
}
