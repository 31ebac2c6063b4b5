package stacklang

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ansi holds the escape codes diagnostics.go reaches for. Left blank when
// the destination isn't a TTY, the same hand-rolled-escapes-gated-on-a-
// stream-check shape original_source/src/log.py uses rather than a colour
// library.
type ansi struct {
	red, yellow, bold, reset string
}

func ansiFor(w io.Writer) ansi {
	if !supportsColour(w) {
		return ansi{}
	}
	return ansi{
		red:    "\x1b[31m",
		yellow: "\x1b[33m",
		bold:   "\x1b[1m",
		reset:  "\x1b[0m",
	}
}

// supportsColour mirrors stream_supports_colour: only bother with escape
// codes when the destination is an *os.File attached to a terminal.
func supportsColour(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// Diagnose renders err to w: a file:line header, the offending source line
// with a caret under the span, and the full cause chain, newest first. err
// is expected to ultimately be a Reporting (or one of pkg/errors.go's other
// types), but any error renders, falling back to a bare message line when
// no *SourceInfo can be recovered.
func Diagnose(w io.Writer, err error) {
	c := ansiFor(w)

	chain := unwrapChain(err)
	for i, e := range chain {
		info := sourceInfoOf(e)
		prefix := fmt.Sprintf("%s%serror:%s", c.bold, c.red, c.reset)
		if i > 0 {
			prefix = fmt.Sprintf("%s%scaused by:%s", c.bold, c.yellow, c.reset)
		}
		fmt.Fprintf(w, "%s %s\n", prefix, leafMessage(e))

		if info == nil || info.Raw == "" {
			continue
		}
		fmt.Fprintf(w, "  %s--> %s%s\n", c.bold, c.reset, info.String())
		fmt.Fprintf(w, "   %s|\n", c.bold)
		fmt.Fprintf(w, "   | %s%s\n", c.reset, info.Raw)
		fmt.Fprintf(w, "   %s| %s%s%s\n", c.bold, c.red, caret(info), c.reset)
	}
}

// caret draws a run of spaces up to ColS followed by '^' repeated across
// the span width, clamped to at least one column.
func caret(info *SourceInfo) string {
	width := info.ColE - info.ColS
	if width < 1 {
		width = 1
	}
	pad := info.ColS - 1
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + strings.Repeat("^", width)
}

// unwrapChain walks err's Unwrap chain, newest (outermost) first.
func unwrapChain(err error) []error {
	var chain []error
	for err != nil {
		chain = append(chain, err)
		err = errors.Unwrap(err)
	}
	return chain
}

// leafMessage strips the ": <cause>" suffix an error's Error() method
// appends for its wrapped cause, so each line in the rendered chain states
// only what that link itself added.
func leafMessage(err error) string {
	full := err.Error()
	cause := errors.Unwrap(err)
	if cause == nil {
		return full
	}
	if suffix := ": " + cause.Error(); strings.HasSuffix(full, suffix) {
		return strings.TrimSuffix(full, suffix)
	}
	return full
}

// sourceInfoOf recovers the *SourceInfo carried by any of pkg/errors.go's
// error types, or nil if err is some other kind of error entirely.
func sourceInfoOf(err error) *SourceInfo {
	switch e := err.(type) {
	case UnknownToken:
		return e.Info
	case InvalidSyntax:
		return e.Info
	case InvalidType:
		return e.Info
	case NotEnoughTokens:
		return e.Info
	case SymbolRedefined:
		return e.Info
	case FileError:
		return e.Info
	case MissingToken:
		return e.Info
	case AddedToken:
		return e.Info
	case StackNotEmpty:
		return e.Info
	case ProcedureError:
		return e.Info
	case IfException:
		return e.Info
	case ElifException:
		return e.Info
	case ElseException:
		return e.Info
	case WhileException:
		return e.Info
	case Reporting:
		return e.Info
	default:
		return nil
	}
}
