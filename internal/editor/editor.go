// Package editor implements the `edi` built-in, a minimalist modal text
// editor in the style of original_source/unified-shell/src/builtins/
// builtin_edi.c: NORMAL/INSERT/COMMAND modes, hjkl motion, :w/:q/:wq
// commands. It reuses internal/term's raw-mode resource rather than a
// second termios wrapper.
package editor

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"ushell/internal/dispatch"
	"ushell/internal/term"
)

type mode int

const (
	normal mode = iota
	insert
	command
)

const ctrlH = 0x08

// Editor holds one `edi` session's buffer and cursor state.
type Editor struct {
	rows     []string
	cx, cy   int
	mode     mode
	filename string
	status   string
	cmdbuf   string
	quit     bool

	in  *os.File
	out *os.File
}

// Run is the `edi` dispatch.Func: opens filename if given (argv[1]),
// edits interactively, and returns 0 on a clean :q/:wq, 1 if stdin is not
// a terminal (edi is interactive-only).
func Run(argv []string, io dispatch.IO) int {
	in, ok := io.Stdin.(*os.File)
	if !ok || !term.IsTerminal(int(in.Fd())) {
		fmt.Fprintln(io.Stderr, "edi: requires an interactive terminal")
		return 1
	}
	out, _ := io.Stdout.(*os.File)
	if out == nil {
		out = os.Stdout
	}

	e := &Editor{in: in, out: out, rows: []string{""}}
	if len(argv) > 1 {
		e.filename = argv[1]
		e.load(argv[1])
	}

	raw, err := term.EnterRaw(int(in.Fd()))
	if err != nil {
		fmt.Fprintf(io.Stderr, "edi: %s\n", err)
		return 1
	}
	defer raw.Restore()

	e.refresh()
	reader := bufio.NewReaderSize(in, 1)
	for !e.quit {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}
		e.handleKey(b, reader)
		e.refresh()
	}
	fmt.Fprint(e.out, "\x1b[2J\x1b[H")
	return 0
}

func (e *Editor) load(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	e.rows = lines
}

func (e *Editor) save(path string) error {
	content := strings.Join(e.rows, "\n") + "\n"
	return os.WriteFile(path, []byte(content), 0644)
}

func (e *Editor) handleKey(b byte, reader *bufio.Reader) {
	switch e.mode {
	case normal:
		e.handleNormal(b)
	case insert:
		e.handleInsert(b)
	case command:
		e.handleCommand(b)
	}
}

func (e *Editor) handleNormal(b byte) {
	switch b {
	case 'q':
		e.quit = true
	case ':':
		e.mode = command
		e.cmdbuf = ""
	case 'i':
		e.mode = insert
	case 'h':
		e.moveCursor(-1, 0)
	case 'l':
		e.moveCursor(1, 0)
	case 'j':
		e.moveCursor(0, 1)
	case 'k':
		e.moveCursor(0, -1)
	case 'x':
		row := []rune(e.rows[e.cy])
		if e.cx < len(row) {
			e.rows[e.cy] = string(append(row[:e.cx], row[e.cx+1:]...))
		}
	}
}

func (e *Editor) handleInsert(b byte) {
	switch b {
	case 0x1B: // Esc
		e.mode = normal
		if e.cx > 0 {
			e.cx--
		}
	case ctrlH, 0x7F: // backspace
		e.backspace()
	case '\r', '\n':
		e.splitLine()
	default:
		if b >= 0x20 && b < 0x7F {
			e.insertChar(rune(b))
		}
	}
}

func (e *Editor) handleCommand(b byte) {
	switch b {
	case 0x1B:
		e.mode = normal
		e.cmdbuf = ""
	case '\r', '\n':
		e.execCommand()
	case ctrlH, 0x7F:
		if len(e.cmdbuf) > 0 {
			e.cmdbuf = e.cmdbuf[:len(e.cmdbuf)-1]
		}
	default:
		if b >= 0x20 && b < 0x7F {
			e.cmdbuf += string(rune(b))
		}
	}
}

func (e *Editor) execCommand() {
	cmd := e.cmdbuf
	e.cmdbuf = ""
	switch {
	case cmd == "q":
		e.quit = true
	case cmd == "q!":
		e.quit = true
	case cmd == "w":
		if e.filename == "" {
			e.status = "no filename"
		} else if err := e.save(e.filename); err != nil {
			e.status = err.Error()
		} else {
			e.status = "written"
		}
	case strings.HasPrefix(cmd, "w "):
		name := strings.TrimPrefix(cmd, "w ")
		if err := e.save(name); err != nil {
			e.status = err.Error()
		} else {
			e.filename = name
			e.status = "written " + name
		}
	case cmd == "wq":
		if e.filename != "" {
			e.save(e.filename)
		}
		e.quit = true
	default:
		e.status = "unknown command: " + cmd
	}
	e.mode = normal
}

func (e *Editor) moveCursor(dx, dy int) {
	e.cy += dy
	if e.cy < 0 {
		e.cy = 0
	}
	if e.cy >= len(e.rows) {
		e.cy = len(e.rows) - 1
	}
	e.cx += dx
	if e.cx < 0 {
		e.cx = 0
	}
	if rowLen := len([]rune(e.rows[e.cy])); e.cx > rowLen {
		e.cx = rowLen
	}
}

func (e *Editor) insertChar(c rune) {
	row := []rune(e.rows[e.cy])
	if e.cx > len(row) {
		e.cx = len(row)
	}
	row = append(row[:e.cx], append([]rune{c}, row[e.cx:]...)...)
	e.rows[e.cy] = string(row)
	e.cx++
}

func (e *Editor) backspace() {
	if e.cx > 0 {
		row := []rune(e.rows[e.cy])
		e.rows[e.cy] = string(append(row[:e.cx-1], row[e.cx:]...))
		e.cx--
		return
	}
	if e.cy > 0 {
		prev := e.rows[e.cy-1]
		e.cx = len([]rune(prev))
		e.rows[e.cy-1] = prev + e.rows[e.cy]
		e.rows = append(e.rows[:e.cy], e.rows[e.cy+1:]...)
		e.cy--
	}
}

func (e *Editor) splitLine() {
	row := []rune(e.rows[e.cy])
	left := string(row[:e.cx])
	right := string(row[e.cx:])
	e.rows[e.cy] = left
	tail := append([]string{right}, e.rows[e.cy+1:]...)
	e.rows = append(e.rows[:e.cy+1], tail...)
	e.cy++
	e.cx = 0
}

func (e *Editor) refresh() {
	var b strings.Builder
	b.WriteString("\x1b[2J\x1b[H")
	for _, row := range e.rows {
		b.WriteString(row)
		b.WriteString("\r\n")
	}
	modestr := "NORMAL"
	switch e.mode {
	case insert:
		modestr = "INSERT"
	case command:
		modestr = ":" + e.cmdbuf
	}
	if e.mode == command {
		fmt.Fprintf(&b, "%s", modestr)
	} else {
		fmt.Fprintf(&b, "-- %s -- %s", modestr, e.status)
	}
	fmt.Fprint(e.out, b.String())
}
