// Package dispatch resolves a command name to a built-in, a bundled tool,
// or leaves it to be resolved as an external program via $PATH. It is pure
// lookup: it never forks or execs anything itself, per spec.md §4.11.
package dispatch

import (
	"errors"
	"io"
	"io/fs"
	"os/exec"
	"sort"
)

// IO bundles the three standard streams a built-in or tool runs against.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Func is the shared signature for built-ins and bundled tools:
// (argv, streams) → exit status.
type Func func(argv []string, io IO) int

// Registry holds the built-in and bundled-tool name tables.
type Registry struct {
	builtins map[string]Func
	tools    map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builtins: make(map[string]Func), tools: make(map[string]Func)}
}

// RegisterBuiltin adds name to the built-in table.
func (r *Registry) RegisterBuiltin(name string, fn Func) {
	r.builtins[name] = fn
}

// RegisterTool adds name to the bundled-tool table.
func (r *Registry) RegisterTool(name string, fn Func) {
	r.tools[name] = fn
}

// Kind identifies which table a resolved name came from.
type Kind int

const (
	NotFound Kind = iota
	Builtin
	Tool
	External
)

// Resolve implements the three-step resolution order: built-in table,
// bundled-tool table, external program via $PATH. For External the
// returned Func is nil — the executor is responsible for exec'ing it — but
// the path found by exec.LookPath is returned as well (a name containing a
// slash is returned as given). A name containing a slash that names an
// existing but non-executable file also resolves as External, so that the
// exec attempt reports "permission denied" rather than "not found".
func (r *Registry) Resolve(name string) (fn Func, kind Kind, path string) {
	if f, ok := r.builtins[name]; ok {
		return f, Builtin, ""
	}
	if f, ok := r.tools[name]; ok {
		return f, Tool, ""
	}
	p, err := exec.LookPath(name)
	if err == nil {
		return nil, External, p
	}
	if errors.Is(err, fs.ErrPermission) {
		return nil, External, name
	}
	return nil, NotFound, ""
}

// Names returns every built-in and bundled-tool name, for completion.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.builtins)+len(r.tools))
	for n := range r.builtins {
		out = append(out, n)
	}
	for n := range r.tools {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// IsBuiltinOrTool reports whether name resolves to a built-in or bundled
// tool (used by the executor's single-command fast path).
func (r *Registry) IsBuiltinOrTool(name string) bool {
	_, ok := r.builtins[name]
	if ok {
		return true
	}
	_, ok = r.tools[name]
	return ok
}
