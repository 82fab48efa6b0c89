// Package logging builds the zerolog logger shared by the CLI, the batch
// runner and the MCP server.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "info"

// New returns a logger writing to stderr. Stdout is left alone because the
// MCP server speaks its protocol there.
func New(level string, console bool) (zerolog.Logger, error) {
	return NewWithWriter(os.Stderr, level, console)
}

// NewWithWriter returns a timestamped logger writing to w at the given
// level. When console is true entries are rendered for humans instead of
// as JSON lines.
func NewWithWriter(w io.Writer, level string, console bool) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger(), nil
}

// ParseLevel accepts zerolog level names in any case. An empty string
// selects DefaultLevel.
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = DefaultLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}
