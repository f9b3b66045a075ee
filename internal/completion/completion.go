// Package completion generates Tab-completion candidates: command names
// when the input has no space, full-line filename replacements otherwise,
// plus a separate variable-name mode, per spec.md §4.4.
package completion

import (
	"os"
	"sort"
	"strings"
)

// NameSource supplies the built-in/bundled-tool names to complete against.
type NameSource func() []string

// Provider generates completion candidates.
type Provider struct {
	names NameSource
}

// New returns a Provider that completes command names from names.
func New(names NameSource) *Provider {
	return &Provider{names: names}
}

// Complete returns every candidate for the current input text, assuming
// the cursor is at the end of text. If text has no space, candidates are
// command names filtered by prefix. Otherwise the final whitespace-
// delimited token is a filename prefix, and each candidate is the full
// input with that token replaced — never just the filename.
func (p *Provider) Complete(text string) []string {
	if text == "" {
		return nil
	}
	if !strings.Contains(text, " ") {
		return p.completeCommands(text)
	}
	idx := strings.LastIndexByte(text, ' ')
	head := text[:idx+1]
	prefix := text[idx+1:]
	files := completeFiles(prefix)
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, head+f)
	}
	return out
}

func (p *Provider) completeCommands(prefix string) []string {
	var out []string
	for _, n := range p.names() {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// completeFiles returns entries of the current directory whose name begins
// with prefix. "." and ".." are omitted; dotfiles are omitted unless
// prefix itself begins with ".".
func completeFiles(prefix string) []string {
	entries, err := os.ReadDir(".")
	if err != nil {
		return nil
	}
	wantDot := strings.HasPrefix(prefix, ".")
	var out []string
	for _, e := range entries {
		name := e.Name()
		if name == "." || name == ".." {
			continue
		}
		if strings.HasPrefix(name, ".") && !wantDot {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// VariableLookup supplies environment-store variable names for the
// variable-completion mode.
type VariableLookup func() []string

// CompleteVariables returns environment-store variable names beginning
// with prefix.
func CompleteVariables(prefix string, names VariableLookup) []string {
	var out []string
	for _, n := range names() {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
