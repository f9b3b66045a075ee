package executor

import (
	"fmt"
	"syscall"

	"ushell/internal/jobs"
)

// Resume implements builtins.Resumer: it sends SIGCONT to the job's
// process group and, for fg, waits on it the same way a freshly launched
// foreground pipeline would; for bg it marks the job Running, reports it
// and returns immediately.
func (ex *Executor) Resume(j jobs.Job, foreground bool) int {
	if j.Pgid != 0 {
		syscall.Kill(-j.Pgid, syscall.SIGCONT)
	}

	if !foreground {
		ex.Jobs.SetStatus(j.ID, jobs.Running)
		fmt.Printf("[%d] %d\n", j.ID, j.Pgid)
		return 0
	}

	fmt.Println(j.Command)
	if j.Pgid != 0 {
		ex.Signals.SetForegroundPgid(j.Pgid)
	}

	status := 0
	stopped := false
	for {
		var ws syscall.WaitStatus
		_, err := syscall.Wait4(-j.Pgid, &ws, syscall.WUNTRACED, nil)
		if err != nil {
			break // ECHILD: no more processes in the group
		}
		if ws.Stopped() {
			stopped = true
			break
		}
		if ws.Exited() {
			status = ws.ExitStatus()
		} else if ws.Signaled() {
			status = 128 + int(ws.Signal())
		}
	}
	ex.Signals.SetForegroundPgid(0)

	if stopped {
		ex.Jobs.SetStatus(j.ID, jobs.Stopped)
		fmt.Printf("[%d]+ Stopped  %s\n", j.ID, j.Command)
		return 0
	}
	ex.Jobs.Remove(j.ID)
	return status
}
