package util

import (
	"bytes"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
)

var (
	loggerMu sync.Mutex
	logger   *slog.Logger
)

// NewLogger returns a text logger writing to out, at debug level when verbose.
func NewLogger(out io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo, // Default level
	}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// InitLogger initializes the global slog logger. Logs go to stderr, stdout is
// kept for command output.
func InitLogger(verbose bool) {
	SetLogger(NewLogger(os.Stderr, verbose))
}

// SetLogger replaces the global logger.
func SetLogger(l *slog.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
	slog.SetDefault(l)
}

// GetLogger returns the configured logger instance
func GetLogger() *slog.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		// Fallback initialization with INFO level
		logger = NewLogger(os.Stderr, false)
	}
	return logger
}

// SetupGlobalLogger redirects the standard log package, used by some
// libraries, to the global logger.
func SetupGlobalLogger() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{logger: GetLogger()})
}

type logWriter struct {
	logger *slog.Logger
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.logger.Info(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}
