// Package builtins implements the shell's in-process commands: cd, pwd,
// echo, export, set, unset, env, history, jobs, fg, bg, exit, plus the
// supplemented help/version entries, per spec.md §6.
package builtins

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"ushell/internal/dispatch"
	"ushell/internal/editor"
	"ushell/internal/environment"
	"ushell/internal/history"
	"ushell/internal/jobs"
)

// Version is the build version string printed by the version builtin.
const Version = "ushell 0.1"

// Resumer resumes a stopped or backgrounded job, implemented by the
// executor (fg/bg share the executor's wait/terminal-ownership logic
// rather than duplicating it here).
type Resumer interface {
	// Resume sends SIGCONT to pgid and, if foreground, waits for the job
	// the way a freshly-launched foreground pipeline would; it returns the
	// resulting shell status. If not foreground, it registers/updates the
	// job as Running in the background and returns 0.
	Resume(j jobs.Job, foreground bool) int
}

// ExitState communicates an `exit` invocation back to the REPL loop,
// since a built-in reports failure through its return code, never by
// aborting the process itself (spec.md §7).
type ExitState struct {
	requested atomic.Bool
	status    atomic.Int32
}

// Request records that `exit` was invoked with the given status.
func (e *ExitState) Request(status int) {
	e.status.Store(int32(status))
	e.requested.Store(true)
}

// Requested reports whether exit was invoked and, if so, the status.
func (e *ExitState) Requested() (int, bool) {
	if !e.requested.Load() {
		return 0, false
	}
	return int(e.status.Load()), true
}

// Deps bundles the shared state built-ins operate on.
type Deps struct {
	Env     *environment.Store
	History *history.Store
	Jobs    *jobs.Table
	Resumer Resumer
	Exit    *ExitState
}

// Register adds every built-in to reg.
func Register(reg *dispatch.Registry, d *Deps) {
	reg.RegisterBuiltin("cd", d.cd)
	reg.RegisterBuiltin("pwd", d.pwd)
	reg.RegisterBuiltin("echo", d.echo)
	reg.RegisterBuiltin("export", d.export)
	reg.RegisterBuiltin("set", d.set)
	reg.RegisterBuiltin("unset", d.unset)
	reg.RegisterBuiltin("env", d.env)
	reg.RegisterBuiltin("history", d.history)
	reg.RegisterBuiltin("jobs", d.jobsCmd)
	reg.RegisterBuiltin("fg", d.fg)
	reg.RegisterBuiltin("bg", d.bg)
	reg.RegisterBuiltin("exit", d.exitCmd)
	reg.RegisterBuiltin("help", d.help)
	reg.RegisterBuiltin("version", d.version)
	reg.RegisterBuiltin("edi", editor.Run)
}

func (d *Deps) cd(argv []string, io dispatch.IO) int {
	target := ""
	if len(argv) > 1 {
		target = argv[1]
	} else {
		home, ok := d.Env.Get("HOME")
		if !ok || home == "" {
			fmt.Fprintln(io.Stderr, "ushell: cd: HOME not set")
			return 1
		}
		target = home
	}
	if err := os.Chdir(target); err != nil {
		fmt.Fprintf(io.Stderr, "ushell: cd: %s\n", err)
		return 1
	}
	return 0
}

func (d *Deps) pwd(argv []string, io dispatch.IO) int {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(io.Stderr, "ushell: pwd: %s\n", err)
		return 1
	}
	fmt.Fprintln(io.Stdout, wd)
	return 0
}

func (d *Deps) echo(argv []string, io dispatch.IO) int {
	fmt.Fprintln(io.Stdout, strings.Join(argv[1:], " "))
	return 0
}

func (d *Deps) export(argv []string, io dispatch.IO) int {
	if len(argv) < 2 {
		for _, kv := range d.Env.Exported() {
			fmt.Fprintln(io.Stdout, "export "+kv)
		}
		return 0
	}
	for _, arg := range argv[1:] {
		name, value, ok := splitAssignment(arg)
		if !ok {
			fmt.Fprintf(io.Stderr, "ushell: export: %s: not a valid NAME=value\n", arg)
			return 1
		}
		if err := d.Env.Export(name, value); err != nil {
			fmt.Fprintf(io.Stderr, "ushell: export: %s\n", err)
			return 1
		}
	}
	return 0
}

func (d *Deps) set(argv []string, io dispatch.IO) int {
	if len(argv) < 2 {
		for _, b := range d.Env.Enumerate() {
			fmt.Fprintf(io.Stdout, "%s=%s\n", b.Name, b.Value)
		}
		return 0
	}
	name, value, ok := splitAssignment(argv[1])
	if !ok {
		fmt.Fprintf(io.Stderr, "ushell: set: %s: not a valid NAME=value\n", argv[1])
		return 1
	}
	d.Env.Set(name, value)
	return 0
}

func (d *Deps) unset(argv []string, io dispatch.IO) int {
	if len(argv) < 2 {
		fmt.Fprintln(io.Stderr, "ushell: unset: usage: unset NAME")
		return 1
	}
	for _, name := range argv[1:] {
		d.Env.Unset(name)
	}
	return 0
}

func (d *Deps) env(argv []string, io dispatch.IO) int {
	for _, kv := range d.Env.Exported() {
		fmt.Fprintln(io.Stdout, kv)
	}
	return 0
}

func (d *Deps) history(argv []string, io dispatch.IO) int {
	if len(argv) > 1 && argv[1] == "-c" {
		d.History.Clear()
		return 0
	}
	entries := d.History.Entries()
	for i, line := range entries {
		fmt.Fprintf(io.Stdout, "%5d  %s\n", i+1, line)
	}
	return 0
}

func (d *Deps) jobsCmd(argv []string, io dispatch.IO) int {
	longFormat, pidOnly, runningOnly, stoppedOnly := false, false, false, false
	for _, a := range argv[1:] {
		switch a {
		case "-l":
			longFormat = true
		case "-p":
			pidOnly = true
		case "-r":
			runningOnly = true
		case "-s":
			stoppedOnly = true
		default:
			fmt.Fprintf(io.Stderr, "ushell: jobs: usage: jobs [-l] [-p] [-r] [-s]\n")
			return 1
		}
	}
	for _, j := range d.Jobs.List() {
		if runningOnly && j.Status != jobs.Running {
			continue
		}
		if stoppedOnly && j.Status != jobs.Stopped {
			continue
		}
		switch {
		case pidOnly:
			fmt.Fprintln(io.Stdout, j.Pgid)
		case longFormat:
			fmt.Fprintf(io.Stdout, "%s  pgid=%d\n", d.Jobs.String(j), j.Pgid)
		default:
			fmt.Fprintln(io.Stdout, d.Jobs.String(j))
		}
	}
	return 0
}

func (d *Deps) selectJob(argv []string) (jobs.Job, error) {
	if len(argv) < 2 {
		j, ok := d.Jobs.MostRecent(false)
		if !ok {
			return jobs.Job{}, fmt.Errorf("no current job")
		}
		return j, nil
	}
	spec := strings.TrimPrefix(argv[1], "%")
	for _, c := range spec {
		if c < '0' || c > '9' {
			return jobs.Job{}, fmt.Errorf("%s: no such job", argv[1])
		}
	}
	n, err := strconv.Atoi(spec)
	if err != nil || n <= 0 {
		return jobs.Job{}, fmt.Errorf("%s: no such job", argv[1])
	}
	j, ok := d.Jobs.Get(n)
	if !ok {
		return jobs.Job{}, fmt.Errorf("%s: no such job", argv[1])
	}
	return j, nil
}

func (d *Deps) fg(argv []string, io dispatch.IO) int {
	j, err := d.selectJob(argv)
	if err != nil {
		fmt.Fprintf(io.Stderr, "ushell: fg: %s\n", err)
		return 1
	}
	return d.Resumer.Resume(j, true)
}

func (d *Deps) bg(argv []string, io dispatch.IO) int {
	var j jobs.Job
	var ok bool
	if len(argv) < 2 {
		j, ok = d.Jobs.MostRecent(true)
	} else {
		var err error
		j, err = d.selectJob(argv)
		ok = err == nil
		if err != nil {
			fmt.Fprintf(io.Stderr, "ushell: bg: %s\n", err)
			return 1
		}
	}
	if !ok {
		fmt.Fprintln(io.Stderr, "ushell: bg: no stopped jobs")
		return 1
	}
	return d.Resumer.Resume(j, false)
}

func (d *Deps) exitCmd(argv []string, io dispatch.IO) int {
	status := 0
	if len(argv) > 1 {
		n, err := strconv.Atoi(argv[1])
		if err != nil {
			fmt.Fprintf(io.Stderr, "ushell: exit: %s: numeric argument required\n", argv[1])
			status = 1
		} else {
			status = n
		}
	}
	d.Exit.Request(status)
	return status
}

func (d *Deps) help(argv []string, io dispatch.IO) int {
	fmt.Fprintln(io.Stdout, "built-ins: cd pwd echo export set unset env history jobs fg bg exit help version edi")
	return 0
}

func (d *Deps) version(argv []string, io dispatch.IO) int {
	fmt.Fprintln(io.Stdout, Version)
	return 0
}

func splitAssignment(s string) (name, value string, ok bool) {
	i := strings.IndexByte(s, '=')
	if i <= 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}
