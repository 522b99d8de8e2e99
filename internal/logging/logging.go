// Package logging builds the shared run logger used by every pipeline
// component. One logger is created per run and passed by reference; no
// component looks a logger up by name.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a leveled logger that writes to both stderr and a log file
// under logDir. The returned closer owns the log file handle.
func New(logDir, filename, prefix string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(logDir, filename), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := log.NewWithOptions(io.MultiWriter(os.Stderr, f), log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          prefix,
		Level:           log.InfoLevel,
	})

	return logger, f, nil
}

// NewDiscard returns a logger that swallows all output. Handy default for
// components whose callers did not wire a logger.
func NewDiscard() *log.Logger {
	return log.New(io.Discard)
}
