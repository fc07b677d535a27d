// Package logging configures the process-wide slog logger.
//
// Text output goes through tint for colored terminal lines; "json" writes one object per line
// for log shippers. LOG_LEVEL accepts debug, info, warn or error.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// New builds a logger writing to w in the given format.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		AddSource:  level == slog.LevelDebug,
		NoColor:    !isTerminal(w),
	}))
}

// SetupFromConfig installs the default logger: JSON on stdout or tint on stderr.
func SetupFromConfig(level, format string) {
	w := os.Stderr
	if strings.EqualFold(format, "json") {
		w = os.Stdout
	}
	slog.SetDefault(New(w, ParseLevel(level), format))
}

// ParseLevel maps a level name to a slog level. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
