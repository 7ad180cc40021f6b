// Package logging sets up the process-wide zerolog logger: console for
// humans, a rotating-by-hand file under the log dir for bug reports.
package logging

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// New builds a logger writing to stderr and, when dir is writable, to
// koescript.log inside it. An unwritable dir degrades to console-only
// rather than failing startup.
func New(dir, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	var writer zerolog.LevelWriter = zerolog.MultiLevelWriter(console)
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err == nil {
			path := filepath.Join(dir, "koescript.log")
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
				writer = zerolog.MultiLevelWriter(console, f)
			}
		}
	}

	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}
