// Package logging sets up the CLI driver's structured logger: a
// log/slog.Handler that colourises level names with hand-rolled ANSI
// escapes when writing to a terminal, generalized from
// original_source/src/log.py's setup_logging/_ColourFormatter. Nothing in
// pkg/ imports this package; it exists only for cmd/stacklang's verbose
// command echoes and build/run summaries.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// levelColour mirrors _ColourFormatter.LEVEL_COLOURS.
var levelColour = map[slog.Level]string{
	slog.LevelDebug: "\x1b[40;1m",
	slog.LevelInfo:  "\x1b[34;1m",
	slog.LevelWarn:  "\x1b[33;1m",
	slog.LevelError: "\x1b[31;1m",
}

const reset = "\x1b[0m"

// Setup builds the root slog.Logger for the CLI, writing to w at the given
// level. Colour is enabled automatically when w is a terminal.
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(newHandler(w, level, supportsColour(w)))
}

// supportsColour mirrors stream_supports_colour: only an *os.File attached
// to a terminal gets escape codes, and NO_COLOR always wins.
func supportsColour(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// handler is a minimal slog.Handler: one line per record, level name
// colourised when colour is enabled, attrs rendered as key=value pairs.
// It does not implement grouping (WithGroup) since the CLI never nests
// attribute groups.
type handler struct {
	w      io.Writer
	level  slog.Level
	colour bool
	attrs  []slog.Attr
}

func newHandler(w io.Writer, level slog.Level, colour bool) *handler {
	return &handler{w: w, level: level, colour: colour}
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	levelName := r.Level.String()
	if h.colour {
		c := levelColour[r.Level]
		if c == "" {
			c = levelColour[slog.LevelDebug]
		}
		levelName = fmt.Sprintf("%s%-8s%s", c, levelName, reset)
	} else {
		levelName = fmt.Sprintf("%-8s", levelName)
	}

	line := fmt.Sprintf("%s %s %s", r.Time.Format(time.TimeOnly), levelName, r.Message)

	for _, a := range h.attrs {
		line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	})

	_, err := fmt.Fprintln(h.w, line)
	return err
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &handler{w: h.w, level: h.level, colour: h.colour, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...)}
}

func (h *handler) WithGroup(_ string) slog.Handler {
	return h
}
