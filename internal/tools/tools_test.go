package tools

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"ushell/internal/dispatch"
)

func newIO() (dispatch.IO, *bytes.Buffer, *bytes.Buffer) {
	var out, errb bytes.Buffer
	return dispatch.IO{Stdin: bytes.NewReader(nil), Stdout: &out, Stderr: &errb}, &out, &errb
}

func TestMytouchThenMystat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	io1, _, errb1 := newIO()
	if status := mytouch([]string{"mytouch", path}, io1); status != 0 {
		t.Fatalf("mytouch failed: %s", errb1.String())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	io2, out2, _ := newIO()
	if status := mystat([]string{"mystat", path}, io2); status != 0 {
		t.Fatalf("mystat failed")
	}
	if out2.Len() == 0 {
		t.Fatalf("expected output")
	}
}

func TestMycpMymv(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	os.WriteFile(src, []byte("hello"), 0644)
	dst := filepath.Join(dir, "dst.txt")
	io1, _, _ := newIO()
	if status := mycp([]string{"mycp", src, dst}, io1); status != 0 {
		t.Fatalf("mycp failed")
	}
	data, _ := os.ReadFile(dst)
	if string(data) != "hello" {
		t.Fatalf("unexpected content: %q", data)
	}
	dst2 := filepath.Join(dir, "moved.txt")
	io2, _, _ := newIO()
	if status := mymv([]string{"mymv", dst, dst2}, io2); status != 0 {
		t.Fatalf("mymv failed")
	}
	if _, err := os.Stat(dst2); err != nil {
		t.Fatalf("expected moved file to exist")
	}
}

func TestMyls(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "b"), nil, 0644)
	os.WriteFile(filepath.Join(dir, "a"), nil, 0644)
	io1, out, _ := newIO()
	if status := myls([]string{"myls", dir}, io1); status != 0 {
		t.Fatalf("myls failed")
	}
	if out.String() != "a\nb\n" {
		t.Fatalf("got %q", out.String())
	}
}
