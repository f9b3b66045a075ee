package mcp

import (
	"io"
	"strings"
)

// stringWriter is an io.Writer accumulating into a strings.Builder, used to
// capture a tool's output for the call_tool response.
type stringWriter struct {
	b strings.Builder
}

func (w *stringWriter) Write(p []byte) (int, error) {
	return w.b.Write(p)
}

func (w *stringWriter) String() string {
	return w.b.String()
}

// nilReader is an io.Reader that always reports EOF, used as stdin for
// tools invoked over MCP (no terminal to read from).
type nilReader struct{}

func (nilReader) Read(p []byte) (int, error) {
	return 0, io.EOF
}
