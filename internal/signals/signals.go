// Package signals implements the shell's signal dispatcher: routing
// SIGINT/SIGTSTP to the foreground process group (or the shell itself when
// none is running), tracking SIGCHLD via an async-safe flag, and ignoring
// SIGTTOU/SIGTTIN so background jobs never stop the shell.
package signals

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Dispatcher owns the foreground process-group pointer (spec's
// "Foreground pointer": 0 means the shell itself is foreground) and the
// child-exited flag. Both are plain atomics so the dispatch goroutine
// behaves like the source's async-signal-safe handler — it does nothing
// beyond a store, a write(2)-equivalent, or a kill(2).
type Dispatcher struct {
	foregroundPgid atomic.Int32
	childExited    atomic.Bool

	sigCh chan os.Signal
	done  chan struct{}
}

// New returns a Dispatcher with no foreground job.
func New() *Dispatcher {
	return &Dispatcher{
		sigCh: make(chan os.Signal, 8),
		done:  make(chan struct{}),
	}
}

// Start installs the handlers and begins the dispatch goroutine. SIGQUIT
// and SIGTERM are deliberately left untouched (default: terminate the
// shell). SIGTTOU/SIGTTIN are ignored outright.
func (d *Dispatcher) Start() {
	signal.Notify(d.sigCh, syscall.SIGINT, syscall.SIGTSTP, syscall.SIGCHLD)
	signal.Ignore(syscall.SIGTTOU, syscall.SIGTTIN)
	go d.loop()
}

// Stop stops receiving the handled signals and ends the dispatch goroutine.
func (d *Dispatcher) Stop() {
	signal.Stop(d.sigCh)
	close(d.done)
}

func (d *Dispatcher) loop() {
	for {
		select {
		case sig := <-d.sigCh:
			switch sig {
			case syscall.SIGCHLD:
				d.childExited.Store(true)
			case syscall.SIGINT:
				if fg := d.foregroundPgid.Load(); fg > 0 {
					syscall.Kill(-int(fg), syscall.SIGINT)
				} else {
					fmt.Fprint(os.Stdout, "\n")
				}
			case syscall.SIGTSTP:
				if fg := d.foregroundPgid.Load(); fg > 0 {
					syscall.Kill(-int(fg), syscall.SIGTSTP)
				}
				// No foreground job: the shell itself ignores Ctrl-Z.
			}
		case <-d.done:
			return
		}
	}
}

// SetForegroundPgid records the process group currently owning the
// controlling terminal. Called only by the executor and the fg built-in.
func (d *Dispatcher) SetForegroundPgid(pgid int) {
	d.foregroundPgid.Store(int32(pgid))
}

// ForegroundPgid returns the current foreground process group, or 0 if the
// shell itself is foreground.
func (d *Dispatcher) ForegroundPgid() int {
	return int(d.foregroundPgid.Load())
}

// ChildExited reports and clears the SIGCHLD flag. The REPL calls this
// between its blocking read and the next iteration, running the job
// table's Update+Cleanup when it is set.
func (d *Dispatcher) ChildExited() bool {
	return d.childExited.Swap(false)
}
