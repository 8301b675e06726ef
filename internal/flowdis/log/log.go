// Package log configures the process-wide slog logger used by the CLI.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool
	logOutput   io.Closer
)

// Setup installs the default slog handler once. An empty logFile logs to
// stderr; debug lowers the level and adds source locations.
func Setup(logFile string, debug bool) error {
	var setupErr error
	initOnce.Do(func() {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}

		w := io.Writer(os.Stderr)
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
			if err != nil {
				setupErr = fmt.Errorf("open log file: %w", err)
			} else {
				w = f
				logOutput = f
			}
		}

		handler := slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: debug,
		})

		slog.SetDefault(slog.New(handler))
		initialized.Store(true)
	})
	return setupErr
}

func Initialized() bool {
	return initialized.Load()
}

// Shutdown closes the log file opened by Setup, if any. Later records go to
// stderr.
func Shutdown() error {
	if logOutput == nil {
		return nil
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	err := logOutput.Close()
	logOutput = nil
	return err
}

// RecoverPanic logs a recovered panic with its stack and runs cleanup.
// It must be called directly by a deferred statement.
func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		if Initialized() {
			slog.Error(fmt.Sprintf("Panic in %s", name),
				"panic", r,
				"stack", string(debug.Stack()))
		}
		if cleanup != nil {
			cleanup()
		}
	}
}
