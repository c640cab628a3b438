// Package diagnostics implements Arpha's error/warning reporting surface
// (spec.md's ambient stack): a Sink interface the resolver reports through,
// and a terminal implementation that formats source context with a caret
// and, on a real TTY, color.
//
// Grounded on funvibe/funxy's diagnostic formatting (source-line-plus-caret
// rendering) and its use of mattn/go-isatty to decide whether to emit ANSI
// color codes rather than always coloring or always plain-texting output.
package diagnostics

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/hyp/arpha/internal/token"
)

// Code identifies a diagnostic's class, independent of its message text,
// so tests and tooling can assert on "which error" without string-matching
// prose (spec §4.8's error propagation).
type Code string

const (
	ErrUndefinedSymbol      Code = "E0001"
	ErrNoSuchField          Code = "E0002"
	ErrNoOverloadMatch      Code = "E0003"
	ErrAmbiguousCall        Code = "E0004"
	ErrTypeMismatch         Code = "E0005"
	ErrSpecializationFailed Code = "E0006"
	ErrFixpointNotReached   Code = "E0007"
	ErrCTFEFailed           Code = "E0008"
	ErrMacroExpansionFailed Code = "E0009"
	ErrNoMatchingCase       Code = "E000A"
	WarnUnusedVariable      Code = "W0001"
)

// Severity distinguishes a hard error from a warning.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

func (c Code) Severity() Severity {
	if strings.HasPrefix(string(c), "W") {
		return Warning
	}
	return Error
}

// Diagnostic is one reported problem, anchored at a source Position.
type Diagnostic struct {
	Code    Code
	Pos     token.Position
	Message string
}

// Sink receives diagnostics as the resolver discovers them. Tests typically
// use a CollectingSink; the CLI uses TerminalSink.
type Sink interface {
	Report(d Diagnostic)
	HasErrors() bool
}

// CollectingSink accumulates diagnostics in memory, for tests and for the
// embedding API (pkg/arpha) to hand back to its caller as a slice.
type CollectingSink struct {
	Diagnostics []Diagnostic
}

func (c *CollectingSink) Report(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

func (c *CollectingSink) HasErrors() bool {
	for _, d := range c.Diagnostics {
		if d.Code.Severity() == Error {
			return true
		}
	}
	return false
}

// TerminalSink writes human-readable diagnostics to w, with ANSI color
// when w is a real terminal (spec's ambient stack: CLI-facing error
// reporting).
type TerminalSink struct {
	W        io.Writer
	Color    bool
	Source   map[string][]string // file -> lines, for caret context
	errCount int
}

// NewTerminalSink wraps w, with color output on iff isTTY is true; it does
// not inspect w itself (callers decide isTTY, e.g. with DetectTTY).
func NewTerminalSink(w io.Writer, isTTY bool) *TerminalSink {
	return &TerminalSink{W: w, Color: isTTY}
}

// DetectTTY reports whether fd (e.g. os.Stdout.Fd()) refers to a terminal,
// gating TerminalSink's color output the way funxy's CLI does.
func DetectTTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (t *TerminalSink) Report(d Diagnostic) {
	if d.Code.Severity() == Error {
		t.errCount++
	}
	label := fmt.Sprintf("%s[%s]", d.Code.Severity(), d.Code)
	if t.Color {
		label = colorFor(d.Code.Severity()) + label + reset
	}
	fmt.Fprintf(t.W, "%s: %s: %s\n", d.Pos, label, d.Message)
	if lines, ok := t.Source[d.Pos.File]; ok && d.Pos.Line >= 1 && d.Pos.Line <= len(lines) {
		line := lines[d.Pos.Line-1]
		fmt.Fprintf(t.W, "    %s\n", line)
		fmt.Fprintf(t.W, "    %s^\n", strings.Repeat(" ", max(0, d.Pos.Column)))
	}
}

func (t *TerminalSink) HasErrors() bool { return t.errCount > 0 }

const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	reset       = "\x1b[0m"
)

func colorFor(sev Severity) string {
	if sev == Warning {
		return colorYellow
	}
	return colorRed
}
