// Package transcript persists conversations as plain-text files, one file
// per session, appended turn by turn as the conversation progresses.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tailored-agentic-units/roundtable/core/protocol"
)

const separator = "--------------------------------------------------"

// Writer records turns into per-session transcript files named
// chat_log_YYYYMMDD_HHMMSS.txt. Files are opened in append mode on the
// session's first recorded turn and kept open until Close.
type Writer struct {
	dir string
	now func() time.Time

	mu    sync.Mutex
	files map[string]*os.File
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock overrides the clock used for transcript file names.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// NewWriter creates a Writer rooted at cfg.Dir, creating the directory if
// needed.
func NewWriter(cfg *Config, opts ...Option) (*Writer, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("transcript directory not configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}

	w := &Writer{
		dir:   cfg.Dir,
		now:   time.Now,
		files: make(map[string]*os.File),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Record appends one turn to the session's transcript file as
// "ROLE (speaker): content" followed by a separator line.
func (w *Writer) Record(sessionID string, turn protocol.Turn) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.sessionFile(sessionID)
	if err != nil {
		return err
	}

	entry := fmt.Sprintf("%s (%s): %s\n%s\n",
		strings.ToUpper(string(turn.Role)), turn.Speaker, turn.Content, separator)
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("failed to write transcript entry: %w", err)
	}
	return nil
}

// Close closes all open transcript files. The Writer must not be used
// afterwards.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	for id, f := range w.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(w.files, id)
	}
	return firstErr
}

// sessionFile returns the session's open transcript file, creating it on
// first use. Callers must hold w.mu. Sessions started within the same
// second get distinct files via a numeric suffix.
func (w *Writer) sessionFile(sessionID string) (*os.File, error) {
	if f, ok := w.files[sessionID]; ok {
		return f, nil
	}

	stamp := w.now().Format("20060102_150405")
	for attempt := 0; ; attempt++ {
		name := fmt.Sprintf("chat_log_%s.txt", stamp)
		if attempt > 0 {
			name = fmt.Sprintf("chat_log_%s_%d.txt", stamp, attempt+1)
		}

		f, err := os.OpenFile(filepath.Join(w.dir, name), os.O_CREATE|os.O_EXCL|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			w.files[sessionID] = f
			return f, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create transcript file: %w", err)
		}
	}
}
