package term

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	ctrlC     = 0x03
	ctrlD     = 0x04
	backspace = 0x7F
	backspace2 = 0x08
	tab       = 0x09
	enterCR   = '\r'
	enterLF   = '\n'
	esc       = 0x1B
)

// Completer returns completion candidates for the given input text,
// assuming the cursor is at the end of it.
type Completer func(text string) []string

// HistoryNav supplies history navigation to the editor: Prev/Next move a
// cursor and return the entry it now points at; Reset is called once per
// new prompt.
type HistoryNav interface {
	Prev() (string, bool)
	Next() (string, bool)
	ResetPosition()
}

// Editor is the raw-mode line editor: a byte buffer and cursor, redrawn
// after every change.
type Editor struct {
	in        *os.File
	out       *os.File
	history   HistoryNav
	completer Completer

	prevRows int // rows from the edit's first row down to where the previous redraw left the cursor, for repositioning
}

// New returns an Editor reading from in and writing redraws to out.
func New(in, out *os.File, history HistoryNav, completer Completer) *Editor {
	return &Editor{in: in, out: out, history: history, completer: completer}
}

// ReadLine prints prompt and reads one line of input. ok is false only on
// EOF (Ctrl-D) with an empty buffer; a Ctrl-C on an empty buffer returns
// ("", true) after emitting "^C", per spec.md §4.3's contract. The
// terminal's original settings are restored on every return path.
func (e *Editor) ReadLine(prompt string) (line string, ok bool) {
	e.history.ResetPosition()

	if !IsTerminal(int(e.in.Fd())) {
		return e.readLineNoTTY(prompt)
	}

	raw, err := EnterRaw(int(e.in.Fd()))
	if err != nil {
		return e.readLineNoTTY(prompt)
	}
	defer raw.Restore()

	var buf []byte
	cursor := 0
	e.prevRows = 0
	e.redraw(prompt, buf, cursor)

	reader := bufio.NewReaderSize(e.in, 1)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			if len(buf) == 0 {
				return "", false
			}
			return string(buf), true
		}
		switch {
		case b == ctrlD:
			if len(buf) == 0 {
				return "", false
			}
			// Non-empty buffer: ignored.
		case b == ctrlC:
			fmt.Fprint(e.out, "^C\r\n")
			return "", true
		case b == enterCR || b == enterLF:
			fmt.Fprint(e.out, "\r\n")
			return string(buf), true
		case b == backspace || b == backspace2:
			if cursor > 0 {
				buf = append(buf[:cursor-1], buf[cursor:]...)
				cursor--
			}
		case b == tab:
			e.handleTab(prompt, &buf, &cursor)
			continue
		case b == esc:
			e.handleEscape(reader, prompt, &buf, &cursor)
			continue
		case b >= 0x20 && b < 0x7F:
			buf = append(buf[:cursor], append([]byte{b}, buf[cursor:]...)...)
			cursor++
		default:
			continue
		}
		e.redraw(prompt, buf, cursor)
	}
}

func (e *Editor) handleTab(prompt string, buf *[]byte, cursor *int) {
	candidates := e.completer(string(*buf))
	switch len(candidates) {
	case 0:
		// no-op
	case 1:
		*buf = []byte(candidates[0])
		*cursor = len(*buf)
	default:
		fmt.Fprint(e.out, "\r\n")
		shown := candidates
		more := 0
		if len(shown) > 20 {
			more = len(shown) - 20
			shown = shown[:20]
		}
		fmt.Fprint(e.out, strings.Join(shown, "  "))
		if more > 0 {
			fmt.Fprintf(e.out, "  ... and %d more", more)
		}
		fmt.Fprint(e.out, "\r\n")
		e.prevRows = 0
	}
	e.redraw(prompt, *buf, *cursor)
}

// handleEscape consumes a CSI sequence following ESC: "[A" up, "[B" down,
// "[C" right, "[D" left. Any other sequence is discarded.
func (e *Editor) handleEscape(r *bufio.Reader, prompt string, buf *[]byte, cursor *int) {
	b1, err := r.ReadByte()
	if err != nil || b1 != '[' {
		return
	}
	b2, err := r.ReadByte()
	if err != nil {
		return
	}
	switch b2 {
	case 'A': // up: history previous
		if line, ok := e.history.Prev(); ok {
			*buf = []byte(line)
			*cursor = len(*buf)
		}
	case 'B': // down: history next
		if line, ok := e.history.Next(); ok {
			*buf = []byte(line)
			*cursor = len(*buf)
		}
	case 'C':
		if *cursor < len(*buf) {
			*cursor++
		}
	case 'D':
		if *cursor > 0 {
			*cursor--
		}
	}
	e.redraw(prompt, *buf, *cursor)
}

// redraw repositions to the start of the edit region, clears to end of
// screen, rewrites prompt+buffer, then positions the cursor by
// integer-dividing prompt_len+cursor by terminal width. It copes with
// lines that wrap the terminal by growing the redraw region across rows.
func (e *Editor) redraw(prompt string, buf []byte, cursor int) {
	width := Width(int(e.out.Fd()))
	if width <= 0 {
		width = 80
	}
	var b strings.Builder
	if e.prevRows > 0 {
		fmt.Fprintf(&b, "\x1b[%dA", e.prevRows)
	}
	b.WriteByte('\r')
	b.WriteString("\x1b[J")
	b.WriteString(prompt)
	b.Write(buf)

	total := len(prompt) + len(buf)
	cursorPos := len(prompt) + cursor
	totalRows := total / width
	cursorRow := cursorPos / width
	cursorCol := cursorPos % width

	if up := totalRows - cursorRow; up > 0 {
		fmt.Fprintf(&b, "\x1b[%dA", up)
	}
	b.WriteByte('\r')
	if cursorCol > 0 {
		fmt.Fprintf(&b, "\x1b[%dC", cursorCol)
	}
	e.prevRows = cursorRow

	io.WriteString(e.out, b.String())
}

// readLineNoTTY degrades to unbuffered line reads with no editing, for
// non-terminal stdin.
func (e *Editor) readLineNoTTY(prompt string) (string, bool) {
	fmt.Fprint(e.out, prompt)
	var line []byte
	one := make([]byte, 1)
	for {
		n, err := e.in.Read(one)
		if n == 1 {
			if one[0] == '\n' {
				break
			}
			line = append(line, one[0])
			continue
		}
		if err != nil {
			if len(line) == 0 {
				return "", false
			}
			break
		}
	}
	return strings.TrimRight(string(line), "\r"), true
}
