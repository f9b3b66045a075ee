// Package tools implements the bundled file utilities (myls, mycat,
// mycp, mymv, myrm, mymkdir, myrmdir, mytouch, mystat, myfd) — ordinary
// argv-in/status-out programs linked into the shell binary, indistinguishable
// from a built-in to the user, per SPEC_FULL.md's supplemented features.
package tools

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"ushell/internal/dispatch"
)

// Register adds every bundled tool to reg.
func Register(reg *dispatch.Registry) {
	reg.RegisterTool("myls", myls)
	reg.RegisterTool("mycat", mycat)
	reg.RegisterTool("mycp", mycp)
	reg.RegisterTool("mymv", mymv)
	reg.RegisterTool("myrm", myrm)
	reg.RegisterTool("mymkdir", mymkdir)
	reg.RegisterTool("myrmdir", myrmdir)
	reg.RegisterTool("mytouch", mytouch)
	reg.RegisterTool("mystat", mystat)
	reg.RegisterTool("myfd", myfd)
}

func myls(argv []string, io_ dispatch.IO) int {
	dir := "."
	if len(argv) > 1 {
		dir = argv[1]
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintf(io_.Stderr, "myls: %s\n", err)
		return 1
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintln(io_.Stdout, n)
	}
	return 0
}

func mycat(argv []string, io_ dispatch.IO) int {
	if len(argv) < 2 {
		if _, err := io.Copy(io_.Stdout, io_.Stdin); err != nil {
			fmt.Fprintf(io_.Stderr, "mycat: %s\n", err)
			return 1
		}
		return 0
	}
	status := 0
	for _, path := range argv[1:] {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(io_.Stderr, "mycat: %s: %s\n", path, err)
			status = 1
			continue
		}
		if _, err := io.Copy(io_.Stdout, f); err != nil {
			fmt.Fprintf(io_.Stderr, "mycat: %s: %s\n", path, err)
			status = 1
		}
		f.Close()
	}
	return status
}

func mycp(argv []string, io_ dispatch.IO) int {
	if len(argv) != 3 {
		fmt.Fprintln(io_.Stderr, "mycp: usage: mycp SRC DST")
		return 1
	}
	src, err := os.Open(argv[1])
	if err != nil {
		fmt.Fprintf(io_.Stderr, "mycp: %s\n", err)
		return 1
	}
	defer src.Close()
	dst, err := os.OpenFile(argv[2], os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		fmt.Fprintf(io_.Stderr, "mycp: %s\n", err)
		return 1
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		fmt.Fprintf(io_.Stderr, "mycp: %s\n", err)
		return 1
	}
	return 0
}

func mymv(argv []string, io_ dispatch.IO) int {
	if len(argv) != 3 {
		fmt.Fprintln(io_.Stderr, "mymv: usage: mymv SRC DST")
		return 1
	}
	if err := os.Rename(argv[1], argv[2]); err != nil {
		fmt.Fprintf(io_.Stderr, "mymv: %s\n", err)
		return 1
	}
	return 0
}

func myrm(argv []string, io_ dispatch.IO) int {
	if len(argv) < 2 {
		fmt.Fprintln(io_.Stderr, "myrm: usage: myrm FILE...")
		return 1
	}
	status := 0
	for _, path := range argv[1:] {
		if err := os.Remove(path); err != nil {
			fmt.Fprintf(io_.Stderr, "myrm: %s: %s\n", path, err)
			status = 1
		}
	}
	return status
}

func mymkdir(argv []string, io_ dispatch.IO) int {
	if len(argv) < 2 {
		fmt.Fprintln(io_.Stderr, "mymkdir: usage: mymkdir DIR...")
		return 1
	}
	status := 0
	for _, path := range argv[1:] {
		if err := os.Mkdir(path, 0755); err != nil {
			fmt.Fprintf(io_.Stderr, "mymkdir: %s: %s\n", path, err)
			status = 1
		}
	}
	return status
}

func myrmdir(argv []string, io_ dispatch.IO) int {
	if len(argv) < 2 {
		fmt.Fprintln(io_.Stderr, "myrmdir: usage: myrmdir DIR...")
		return 1
	}
	status := 0
	for _, path := range argv[1:] {
		if err := os.Remove(path); err != nil {
			fmt.Fprintf(io_.Stderr, "myrmdir: %s: %s\n", path, err)
			status = 1
		}
	}
	return status
}

func mytouch(argv []string, io_ dispatch.IO) int {
	if len(argv) < 2 {
		fmt.Fprintln(io_.Stderr, "mytouch: usage: mytouch FILE...")
		return 1
	}
	status := 0
	now := time.Now()
	for _, path := range argv[1:] {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(io_.Stderr, "mytouch: %s: %s\n", path, err)
			status = 1
			continue
		}
		f.Close()
		if err := os.Chtimes(path, now, now); err != nil {
			fmt.Fprintf(io_.Stderr, "mytouch: %s: %s\n", path, err)
			status = 1
		}
	}
	return status
}

func mystat(argv []string, io_ dispatch.IO) int {
	if len(argv) < 2 {
		fmt.Fprintln(io_.Stderr, "mystat: usage: mystat FILE...")
		return 1
	}
	status := 0
	for _, path := range argv[1:] {
		fi, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(io_.Stderr, "mystat: %s: %s\n", path, err)
			status = 1
			continue
		}
		fmt.Fprintf(io_.Stdout, "%s: size=%d mode=%s modified=%s\n",
			path, fi.Size(), fi.Mode(), fi.ModTime().Format(time.RFC3339))
	}
	return status
}

func myfd(argv []string, io_ dispatch.IO) int {
	if len(argv) < 2 {
		fmt.Fprintln(io_.Stderr, "myfd: usage: myfd NAME [DIR]")
		return 1
	}
	name := argv[1]
	root := "."
	if len(argv) > 2 {
		root = argv[2]
	}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.Name() == name {
			fmt.Fprintln(io_.Stdout, path)
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(io_.Stderr, "myfd: %s\n", err)
		return 1
	}
	return 0
}
