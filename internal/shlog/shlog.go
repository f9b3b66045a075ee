// Package shlog wraps log/slog for ushell's internal diagnostics (startup
// warnings such as history-load or apt-init failures, and MCP server
// activity), kept separate from the
// user-facing "ushell: ..." error text that components write directly to
// stderr per spec.md §7.
package shlog

import (
	"io"
	"log/slog"
	"os"
)

// New returns a logger writing JSON lines to path, or a discarding logger
// if path is empty.
func New(path string) (*slog.Logger, func() error, error) {
	if path == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewJSONHandler(f, nil)), f.Close, nil
}
