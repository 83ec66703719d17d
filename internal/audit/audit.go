// Package audit writes the human-readable, append-only dataset audit trail.
// Unlike process logging (slog), this file is a persisted artifact of the
// service with a fixed line format consumed by operators.
package audit

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Log appends timestamped messages to a plain-text file.
type Log struct {
	path string

	mu sync.Mutex
}

// NewLog creates an audit log writing to path. The file is created on the
// first message.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Write appends one "[YYYY-MM-DD HH:MM:SS] message" line.
func (l *Log) Write(format string, args ...any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("audit: open: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, args...))
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("audit: write: %w", err)
	}
	return nil
}
