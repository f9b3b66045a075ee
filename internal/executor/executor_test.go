package executor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ushell/internal/dispatch"
	"ushell/internal/environment"
	"ushell/internal/jobs"
	"ushell/internal/parser"
	"ushell/internal/signals"
)

func newTestExecutor() (*Executor, *dispatch.Registry) {
	reg := dispatch.NewRegistry()
	reg.RegisterBuiltin("echo", func(argv []string, io dispatch.IO) int {
		for i, a := range argv[1:] {
			if i > 0 {
				io.Stdout.Write([]byte(" "))
			}
			io.Stdout.Write([]byte(a))
		}
		io.Stdout.Write([]byte("\n"))
		return 0
	})
	env := environment.New(0)
	jt := jobs.New()
	sig := signals.New()
	return New(reg, env, jt, sig), reg
}

func TestFastPathBuiltin(t *testing.T) {
	ex, _ := newTestExecutor()
	status := ex.RunPipeline(&parser.Pipeline{Commands: []parser.Command{{Argv: []string{"echo", "hi"}}}}, "echo hi")
	if status != 0 {
		t.Fatalf("status=%d", status)
	}
}

func TestExternalPipeline(t *testing.T) {
	ex, _ := newTestExecutor()
	p := &parser.Pipeline{Commands: []parser.Command{
		{Argv: []string{"/bin/echo", "a"}},
		{Argv: []string{"/bin/cat"}},
	}}
	status := ex.RunPipeline(p, "/bin/echo a | /bin/cat")
	if status != 0 {
		t.Fatalf("status=%d", status)
	}
}

func TestCommandNotFound(t *testing.T) {
	ex, _ := newTestExecutor()
	p := &parser.Pipeline{Commands: []parser.Command{{Argv: []string{"/no/such/binary"}}}}
	status := ex.RunPipeline(p, "/no/such/binary")
	if status != 127 {
		t.Fatalf("status=%d want 127", status)
	}
}

func TestNotExecutableYieldsStatus126(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(path, []byte("not a program\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ex, _ := newTestExecutor()
	p := &parser.Pipeline{Commands: []parser.Command{{Argv: []string{path}}}}
	status := ex.RunPipeline(p, path)
	if status != 126 {
		t.Fatalf("status=%d want 126", status)
	}
}

func TestDisplayCommandStripsTrailingAmpersand(t *testing.T) {
	cases := map[string]string{
		"sleep 30 &":  "sleep 30",
		"sleep 30&":   "sleep 30",
		"sleep 30 & ": "sleep 30",
		"echo hi":     "echo hi",
	}
	for in, want := range cases {
		if got := displayCommand(in); got != want {
			t.Errorf("displayCommand(%q)=%q want %q", in, got, want)
		}
	}
}

func TestBackgroundJobCommandNotDoubled(t *testing.T) {
	reg := dispatch.NewRegistry()
	env := environment.New(0)
	jt := jobs.New()
	sig := signals.New()
	ex := New(reg, env, jt, sig)

	p := &parser.Pipeline{
		Commands:   []parser.Command{{Argv: []string{"/bin/sleep", "0.2"}}},
		Background: true,
	}
	status := ex.RunPipeline(p, "/bin/sleep 0.2 &")
	if status != 0 {
		t.Fatalf("status=%d", status)
	}

	list := jt.List()
	if len(list) != 1 {
		t.Fatalf("jobs=%v want exactly 1", list)
	}
	if list[0].Command != "/bin/sleep 0.2" {
		t.Fatalf("Command=%q want no trailing &", list[0].Command)
	}
	if got := jt.String(list[0]); strings.Count(got, "&") != 1 {
		t.Fatalf("String()=%q want exactly one '&'", got)
	}
}
