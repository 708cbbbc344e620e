package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/examhelper/internal/config"
)

// New returns a logger that writes JSON lines to w at the given level.
func New(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// Console returns a human-readable logger, used by the server on stderr.
func Console(w io.Writer, level string) (zerolog.Logger, error) {
	return New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}, level)
}

// OpenFile opens path for appending and returns a logger writing to it. The
// TUI owns the terminal, so the play command logs here instead of stderr.
// An empty path resolves to config.DefaultLogPath().
func OpenFile(path, level string) (zerolog.Logger, io.Closer, error) {
	if path == "" {
		p, err := config.DefaultLogPath()
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("resolve log path: %w", err)
		}
		path = p
	} else if err := config.EnsureDir(path); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	logger, err := New(f, level)
	if err != nil {
		f.Close()
		return zerolog.Nop(), nil, err
	}
	return logger, f, nil
}

func parseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level %q: %w", level, err)
	}
	return lvl, nil
}
