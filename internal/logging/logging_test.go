package logging

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf, slog.LevelInfo)

	log.Debug("should not appear")
	log.Info("should appear", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
	assert.Contains(t, out, "k=v")
}

func TestHandlerRendersAttrsFromWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf, slog.LevelDebug).With("file", "prog.sl")

	log.Info("parsed", "instructions", 12)

	out := buf.String()
	assert.Contains(t, out, "file=prog.sl")
	assert.Contains(t, out, "instructions=12")
}

func TestSupportsColourIsFalseForNonTerminalWriter(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, supportsColour(&buf))
}

func TestSupportsColourHonoursNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, supportsColour(os.Stdout))
}

func TestHandleWithoutColourHasNoEscapeCodes(t *testing.T) {
	var buf bytes.Buffer
	h := newHandler(&buf, slog.LevelDebug, false)
	log := slog.New(h)

	log.Warn("careful")

	assert.False(t, strings.Contains(buf.String(), "\x1b["))
}

func TestHandleWithColourWrapsLevelName(t *testing.T) {
	var buf bytes.Buffer
	h := newHandler(&buf, slog.LevelDebug, true)
	log := slog.New(h)

	log.Error("boom")

	assert.Contains(t, buf.String(), levelColour[slog.LevelError])
	assert.Contains(t, buf.String(), reset)
}
