// Package executor implements the fork/pipe/redirect/setpgid/wait state
// machine that runs a parsed pipeline or conditional, per spec.md §4.10.
//
// Go has no fork(2) equivalent that is safe to use from a multi-threaded
// runtime, so "forking a child" for a built-in or bundled-tool pipeline
// stage is modeled as running that stage's function in a goroutine wired
// to the same pipe file descriptors an external process would use;
// external commands are spawned with os/exec and a real process group,
// exactly as the teacher's ShExecutor does. A pipeline's process group
// leader is therefore the first *external* command in it — a pipeline
// made entirely of built-ins/tools has no OS process group at all, which
// only matters for signal forwarding to a background job of that shape
// (an edge case outside spec.md's worked scenarios).
package executor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"ushell/internal/dispatch"
	"ushell/internal/environment"
	"ushell/internal/jobs"
	"ushell/internal/parser"
	"ushell/internal/signals"
)

// Executor runs parsed pipelines and conditionals against a dispatch
// registry, environment store, job table and signal dispatcher.
type Executor struct {
	Reg     *dispatch.Registry
	Env     *environment.Store
	Jobs    *jobs.Table
	Signals *signals.Dispatcher

	// LastStatus is the most recent pipeline's exit status, updated by
	// RunNode and by conditional execution.
	LastStatus int
}

// New returns an Executor wired to the given collaborators.
func New(reg *dispatch.Registry, env *environment.Store, jt *jobs.Table, sig *signals.Dispatcher) *Executor {
	return &Executor{Reg: reg, Env: env, Jobs: jt, Signals: sig}
}

// RunNode executes a parsed Node (Pipeline or Conditional) and returns the
// shell-level exit status.
func (ex *Executor) RunNode(n parser.Node, raw string, reparse func(line string) (parser.Node, error)) int {
	switch v := n.(type) {
	case *parser.Pipeline:
		status := ex.RunPipeline(v, raw)
		ex.LastStatus = status
		return status
	case *parser.Conditional:
		return ex.runConditional(v, reparse)
	default:
		return 0
	}
}

func (ex *Executor) runConditional(c *parser.Conditional, reparse func(line string) (parser.Node, error)) int {
	condNode, err := reparse(c.Condition)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	condStatus := ex.RunNode(condNode, c.Condition, reparse)
	ex.LastStatus = condStatus

	var blockLine string
	if condStatus == 0 {
		blockLine = c.Then
	} else if c.Else != "" {
		blockLine = c.Else
	} else {
		return condStatus
	}
	blockNode, err := reparse(blockLine)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	status := ex.RunNode(blockNode, blockLine, reparse)
	ex.LastStatus = status
	return status
}

// RunPipeline executes a single pipeline. raw is the original command
// text, used for the job table's display string if backgrounded or
// stopped.
func (ex *Executor) RunPipeline(p *parser.Pipeline, raw string) int {
	if len(p.Commands) == 0 {
		return 0
	}

	// Single-command fast path: no fork, run the built-in/tool inline.
	if len(p.Commands) == 1 && !p.Background {
		c := p.Commands[0]
		if c.Infile == "" && c.Outfile == "" {
			if fn, kind, _ := ex.Reg.Resolve(c.Argv[0]); kind == dispatch.Builtin || kind == dispatch.Tool {
				return fn(c.Argv, dispatch.IO{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr})
			}
		}
	}

	return ex.runGeneral(p, raw)
}

func (ex *Executor) runGeneral(p *parser.Pipeline, raw string) int {
	n := len(p.Commands)

	stdins := make([]*os.File, n)
	stdouts := make([]*os.File, n)
	ownStdin := make([]bool, n)  // true if we opened/created this file and must close our copy
	ownStdout := make([]bool, n)

	stdins[0] = os.Stdin
	stdouts[n-1] = os.Stdout

	if in := p.Commands[0].Infile; in != "" {
		f, err := os.Open(in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ushell: %s: %s\n", in, err)
			return 1
		}
		stdins[0] = f
		ownStdin[0] = true
	}
	if out := p.Commands[n-1].Outfile; out != "" {
		flags := os.O_WRONLY | os.O_CREATE
		if p.Commands[n-1].Append {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		f, err := os.OpenFile(out, flags, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ushell: %s: %s\n", out, err)
			return 1
		}
		stdouts[n-1] = f
		ownStdout[n-1] = true
	}
	for i := 0; i < n-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ushell: pipe: %s\n", err)
			return 1
		}
		stdouts[i] = w
		ownStdout[i] = true
		stdins[i+1] = r
		ownStdin[i+1] = true
	}

	var wg sync.WaitGroup
	statuses := make([]int, n)
	var leaderPid int
	externalPids := make([]int, 0, n)
	stageOfPid := make(map[int]int, n)

	for i, cmd := range p.Commands {
		fn, kind, path := ex.Reg.Resolve(cmd.Argv[0])
		stdin, stdout := stdins[i], stdouts[i]

		switch kind {
		case dispatch.External:
			ecmd := &exec.Cmd{
				Path:   path,
				Args:   cmd.Argv,
				Env:    ex.Env.ChildEnv(),
				Stdin:  stdin,
				Stdout: stdout,
				Stderr: os.Stderr,
				SysProcAttr: &syscall.SysProcAttr{
					Setpgid: true,
					Pgid:    leaderPid,
				},
			}
			if err := ecmd.Start(); err != nil {
				reason := classifyExecErr(err)
				fmt.Fprintf(os.Stderr, "ushell: %s: %s\n", cmd.Argv[0], reason)
				if reason == "permission denied" {
					statuses[i] = 126
				} else {
					statuses[i] = 127
				}
			} else {
				pid := ecmd.Process.Pid
				if leaderPid == 0 {
					leaderPid = pid
				} else {
					// Parent-side redundant setpgid: closes the race
					// where the shell reads the group before the child
					// has set it itself.
					syscall.Setpgid(pid, leaderPid)
				}
				externalPids = append(externalPids, pid)
				stageOfPid[pid] = i
			}
			if ownStdin[i] {
				stdin.Close()
			}
			if ownStdout[i] {
				stdout.Close()
			}

		case dispatch.Builtin, dispatch.Tool:
			wg.Add(1)
			go func(i int, fn dispatch.Func, argv []string, stdin, stdout *os.File, closeIn, closeOut bool) {
				defer wg.Done()
				statuses[i] = fn(argv, dispatch.IO{Stdin: stdin, Stdout: stdout, Stderr: os.Stderr})
				if closeOut {
					stdout.Close()
				}
				if closeIn {
					stdin.Close()
				}
			}(i, fn, cmd.Argv, stdin, stdout, ownStdin[i], ownStdout[i])

		default:
			fmt.Fprintf(os.Stderr, "ushell: %s: command not found\n", cmd.Argv[0])
			statuses[i] = 127
			if ownStdin[i] {
				stdin.Close()
			}
			if ownStdout[i] {
				stdout.Close()
			}
		}
	}

	if p.Background {
		pgid := leaderPid
		id := ex.Jobs.Add(pgid, displayCommand(raw), true)
		fmt.Printf("[%d] %d\n", id, pgid)
		return 0
	}

	if leaderPid != 0 {
		ex.Signals.SetForegroundPgid(leaderPid)
	}

	stopped := false
	for _, pid := range externalPids {
		var ws syscall.WaitStatus
		_, err := syscall.Wait4(pid, &ws, syscall.WUNTRACED, nil)
		if err != nil {
			continue
		}
		if ws.Stopped() {
			stopped = true
			break
		}
		idx := stageOfPid[pid]
		switch {
		case ws.Exited():
			statuses[idx] = ws.ExitStatus()
		case ws.Signaled():
			statuses[idx] = 128 + int(ws.Signal())
		}
	}
	wg.Wait()
	ex.Signals.SetForegroundPgid(0)

	if stopped {
		cmd := displayCommand(raw)
		id := ex.Jobs.AddStopped(leaderPid, cmd, false)
		fmt.Printf("[%d]+ Stopped  %s\n", id, cmd)
		return 0
	}

	return statuses[n-1]
}

// displayCommand strips a pipeline's trailing background operator before
// the command string is stored in the job table, since Table.String
// appends its own " &" marker for Background jobs — keeping the raw "&"
// too would double it up.
func displayCommand(raw string) string {
	s := strings.TrimRight(raw, " \t")
	s = strings.TrimSuffix(s, "&")
	return strings.TrimRight(s, " \t")
}

// classifyExecErr turns an exec.Start error into the "command not found" /
// "permission denied" / raw-message text spec.md §4.10 asks for.
func classifyExecErr(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such file"):
		return "command not found"
	case strings.Contains(msg, "permission denied"):
		return "permission denied"
	default:
		return msg
	}
}
