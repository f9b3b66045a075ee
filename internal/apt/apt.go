// Package apt implements the `apt` package-manager subcommand: a
// self-contained CRUD layer over a local directory tree, modeled on
// original_source/include/apt.h's repo layout. State is confined to a
// *Repo value passed explicitly rather than file-scope statics, per
// spec.md §9's instruction for the package manager's singletons.
package apt

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"ushell/internal/dispatch"
)

// Package is one entry in the repository index.
type Package struct {
	Name        string
	Version     string
	Description string
	Filename    string
	Deps        []string
}

// Repo is the package manager's state: the local repository rooted at
// Home (packages/, repo/available/, repo/cache/, repo/index.txt), watched
// for external changes via fsnotify so a second shell touching the same
// directory is picked up without a restart.
type Repo struct {
	Home string

	mu      sync.Mutex
	index   map[string]Package
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func (r *Repo) packagesDir() string  { return filepath.Join(r.Home, "packages") }
func (r *Repo) availableDir() string { return filepath.Join(r.Home, "repo", "available") }
func (r *Repo) cacheDir() string     { return filepath.Join(r.Home, "repo", "cache") }
func (r *Repo) indexPath() string    { return filepath.Join(r.Home, "repo", "index.txt") }
func (r *Repo) confPath() string     { return filepath.Join(r.Home, "apt.conf") }

// Open creates the repository layout under home if missing, loads the
// index, and starts watching repo/ for external changes.
func Open(home string) (*Repo, error) {
	r := &Repo{Home: home, index: make(map[string]Package), done: make(chan struct{})}
	for _, d := range []string{r.packagesDir(), r.availableDir(), r.cacheDir()} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(r.confPath()); os.IsNotExist(err) {
		os.WriteFile(r.confPath(), []byte("repo_url=\ncache_dir="+r.cacheDir()+"\n"), 0644)
	}
	if _, err := os.Stat(r.indexPath()); os.IsNotExist(err) {
		os.WriteFile(r.indexPath(), nil, 0644)
	}
	if err := r.loadIndex(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err == nil {
		w.Add(filepath.Join(r.Home, "repo"))
		r.watcher = w
		go r.watchLoop()
	}
	return r, nil
}

// Close stops the fsnotify watcher.
func (r *Repo) Close() error {
	if r.watcher != nil {
		close(r.done)
		return r.watcher.Close()
	}
	return nil
}

func (r *Repo) watchLoop() {
	for {
		select {
		case _, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			r.loadIndex()
		case _, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
		case <-r.done:
			return
		}
	}
}

// loadIndex (re)reads repo/index.txt, format one package per line:
// name|version|description|filename|dep1,dep2,...
func (r *Repo) loadIndex() error {
	f, err := os.Open(r.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	idx := make(map[string]Package)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		for len(fields) < 5 {
			fields = append(fields, "")
		}
		var deps []string
		if fields[4] != "" {
			deps = strings.Split(fields[4], ",")
		}
		idx[fields[0]] = Package{
			Name: fields[0], Version: fields[1], Description: fields[2],
			Filename: fields[3], Deps: deps,
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	r.index = idx
	r.mu.Unlock()
	return nil
}

// rebuildIndex scans repo/available/*.meta files (one per package, same
// pipe-delimited format as index.txt) and regenerates index.txt.
func (r *Repo) rebuildIndex() error {
	entries, err := os.ReadDir(r.availableDir())
	if err != nil {
		return err
	}
	var lines []string
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".meta") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.availableDir(), e.Name()))
		if err != nil {
			continue
		}
		lines = append(lines, strings.TrimSpace(string(data)))
	}
	sort.Strings(lines)
	return os.WriteFile(r.indexPath(), []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

// List returns every indexed package, sorted by name.
func (r *Repo) List() []Package {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Package, 0, len(r.index))
	for _, p := range r.index {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Repo) get(name string) (Package, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.index[name]
	return p, ok
}

// resolve performs a depth-first dependency walk as an explicit recursion
// over a (visited, name) pair — no closures capturing resolver state, per
// spec.md §9's "Recursive-closure dependency resolution" note.
func resolve(index map[string]Package, visited map[string]bool, name string, order *[]string) error {
	if visited[name] {
		return nil
	}
	visited[name] = true
	p, ok := index[name]
	if !ok {
		return fmt.Errorf("package %q not found", name)
	}
	for _, dep := range p.Deps {
		if dep == "" {
			continue
		}
		if err := resolve(index, visited, dep, order); err != nil {
			return err
		}
	}
	*order = append(*order, name)
	return nil
}

// Install copies name and its dependency closure from repo/available into
// packages/.
func (r *Repo) Install(name string, io dispatch.IO) int {
	r.mu.Lock()
	idx := make(map[string]Package, len(r.index))
	for k, v := range r.index {
		idx[k] = v
	}
	r.mu.Unlock()

	var order []string
	if err := resolve(idx, make(map[string]bool), name, &order); err != nil {
		fmt.Fprintf(io.Stderr, "apt: %s\n", err)
		return 1
	}
	for _, pname := range order {
		p := idx[pname]
		src := filepath.Join(r.availableDir(), p.Filename)
		dst := filepath.Join(r.packagesDir(), p.Filename)
		data, err := os.ReadFile(src)
		if err != nil {
			fmt.Fprintf(io.Stderr, "apt: install %s: %s\n", pname, err)
			return 1
		}
		if err := os.WriteFile(dst, data, 0644); err != nil {
			fmt.Fprintf(io.Stderr, "apt: install %s: %s\n", pname, err)
			return 1
		}
		fmt.Fprintf(io.Stdout, "installed %s (%s)\n", pname, p.Version)
	}
	return 0
}

// Remove deletes name from packages/.
func (r *Repo) Remove(name string, io dispatch.IO) int {
	p, ok := r.get(name)
	if !ok {
		fmt.Fprintf(io.Stderr, "apt: package %q not found\n", name)
		return 1
	}
	path := filepath.Join(r.packagesDir(), p.Filename)
	if err := os.Remove(path); err != nil {
		fmt.Fprintf(io.Stderr, "apt: remove %s: %s\n", name, err)
		return 1
	}
	fmt.Fprintf(io.Stdout, "removed %s\n", name)
	return 0
}

// Builtin returns the `apt` dispatch.Func dispatching install/remove/
// list/index subcommands.
func (r *Repo) Builtin() dispatch.Func {
	return func(argv []string, io dispatch.IO) int {
		if len(argv) < 2 {
			fmt.Fprintln(io.Stderr, "apt: usage: apt <install|remove|list|index> [name]")
			return 1
		}
		switch argv[1] {
		case "install":
			if len(argv) < 3 {
				fmt.Fprintln(io.Stderr, "apt: usage: apt install NAME")
				return 1
			}
			return r.Install(argv[2], io)
		case "remove":
			if len(argv) < 3 {
				fmt.Fprintln(io.Stderr, "apt: usage: apt remove NAME")
				return 1
			}
			return r.Remove(argv[2], io)
		case "list":
			for _, p := range r.List() {
				fmt.Fprintf(io.Stdout, "%s %s - %s\n", p.Name, p.Version, p.Description)
			}
			return 0
		case "index":
			if err := r.rebuildIndex(); err != nil {
				fmt.Fprintf(io.Stderr, "apt: index: %s\n", err)
				return 1
			}
			r.loadIndex()
			return 0
		default:
			fmt.Fprintf(io.Stderr, "apt: unknown subcommand %q\n", argv[1])
			return 1
		}
	}
}
