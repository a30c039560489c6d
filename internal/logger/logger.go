package logger

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultPath is the log file, relative to the working directory (project root when run via go run ./cmd/viewer).
const DefaultPath = "logs/viewer.txt"

// keep bounds how many recent lines stay in memory.
const keep = 256

// Logger writes structured records to stderr and appends them to a file on disk.
// The most recent lines are also kept in memory.
type Logger struct {
	*slog.Logger

	file *os.File
	tail *tail
}

// New returns a Logger writing to path at the given level. If the log file cannot be opened
// records still go to stderr. An empty path logs to stderr only.
func New(path string, level slog.Level) *Logger {
	t := &tail{}
	out := []io.Writer{os.Stderr, t}
	var f *os.File
	if path != "" {
		_ = os.MkdirAll(filepath.Dir(path), 0755)
		var err error
		f, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			out = append(out, f)
		} else {
			f = nil
		}
	}
	return newLogger(io.MultiWriter(out...), level, f, t)
}

func newLogger(w io.Writer, level slog.Level, f *os.File, t *tail) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(h), file: f, tail: t}
}

// Lines returns a copy of the recent lines, oldest first.
func (l *Logger) Lines() []string {
	return l.tail.lines()
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

type tail struct {
	mu  sync.Mutex
	buf []string
}

func (t *tail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		t.buf = append(t.buf, strings.TrimSpace(string(line)))
	}
	if n := len(t.buf) - keep; n > 0 {
		t.buf = append(t.buf[:0], t.buf[n:]...)
	}
	return len(p), nil
}

func (t *tail) lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.buf))
	copy(out, t.buf)
	return out
}
