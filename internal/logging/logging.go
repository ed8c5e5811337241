package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recycle/internal/config"
)

// Logger is the leveled logging surface used by the recycler
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// StdLogger wraps the standard logger to implement Logger
type StdLogger struct {
	*log.Logger
	debug bool
}

// NewStdLogger wraps logger; Debug lines are dropped unless debug is set
func NewStdLogger(logger *log.Logger, debug bool) *StdLogger {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &StdLogger{Logger: logger, debug: debug}
}

func (l *StdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *StdLogger) Warn(msg string, args ...interface{}) {
	l.logWithLevel("WARN", msg, args...)
}

func (l *StdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *StdLogger) Debug(msg string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.logWithLevel("DEBUG", msg, args...)
}

func (l *StdLogger) logWithLevel(level, msg string, args ...interface{}) {
	// Format key-value pairs
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// New creates the CLI logger.
// The trash operation is silent by default, so without verbose mode or a log file
// everything is discarded. The returned closer releases the log file, if any.
func New(cfg config.LoggingCfg, stderr io.Writer, verbose bool) (*log.Logger, io.Closer) {
	var writers []io.Writer
	if verbose || cfg.Verbose {
		writers = append(writers, stderr)
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		if f, err := openLogFile(cfg.File, cfg.RotationDays); err != nil {
			if len(writers) > 0 {
				fmt.Fprintf(stderr, "recycle: failed to open log file %s: %v\n", cfg.File, err)
			}
		} else {
			writers = append(writers, f)
			closer = f
		}
	}

	switch len(writers) {
	case 0:
		return log.New(io.Discard, "", 0), closer
	case 1:
		return log.New(writers[0], "recycle: ", log.LstdFlags|log.Lmicroseconds), closer
	default:
		return log.New(io.MultiWriter(writers...), "recycle: ", log.LstdFlags|log.Lmicroseconds), closer
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openLogFile(filePath string, rotationDays int) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}

	if rotationDays <= 0 {
		rotationDays = 30 // default
	}
	rotateLogsIfNeeded(filePath, rotationDays)

	return os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// rotateLogsIfNeeded rotates log files older than the specified days
func rotateLogsIfNeeded(logPath string, rotationDays int) {
	info, err := os.Stat(logPath)
	if err != nil {
		// Log file doesn't exist yet, nothing to rotate
		return
	}

	cutoffTime := time.Now().AddDate(0, 0, -rotationDays)
	if info.ModTime().Before(cutoffTime) {
		timestamp := info.ModTime().Format("20060102-150405")
		rotatedPath := logPath + "." + timestamp

		if err := os.Rename(logPath, rotatedPath); err != nil {
			return
		}

		cleanupOldLogs(logPath, rotatedPath, rotationDays)
	}
}

// cleanupOldLogs removes rotated log files older than rotation days, except keep
func cleanupOldLogs(logPath, keep string, rotationDays int) {
	logDir := filepath.Dir(logPath)
	baseName := filepath.Base(logPath)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	cutoffTime := time.Now().AddDate(0, 0, -rotationDays)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, baseName+".") || name == filepath.Base(keep) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoffTime) {
			_ = os.Remove(filepath.Join(logDir, name))
		}
	}
}
