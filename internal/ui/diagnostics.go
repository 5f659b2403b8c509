package ui

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/reoring/surveymeta"
)

// DiagnosticOptions configures diagnostics rendering.
type DiagnosticOptions struct {
	// Name labels locations, usually the input file name.
	Name string
	// Source is the input text; when set, offsets are shown as line:column.
	Source  []byte
	NoColor bool
}

// FormatDiagnostics renders every error on its own block:
//
//	survey.json:3:5: unknownproperty at /pages/0
//	   The property 'foo' in class 'page' is unknown.
//	   The list of available properties are: name, elements
func FormatDiagnostics(errs surveymeta.JSONErrors, opts DiagnosticOptions) string {
	var b strings.Builder

	loc := color.New(color.Bold)
	kind := color.New(color.FgRed, color.Bold)
	body := color.New(color.FgRed)
	hint := color.New(color.FgHiBlack)
	if opts.NoColor {
		loc.DisableColor()
		kind.DisableColor()
		body.DisableColor()
		hint.DisableColor()
	}

	for _, e := range errs {
		loc.Fprint(&b, location(e, opts))
		b.WriteString(" ")
		kind.Fprint(&b, e.Type)
		if e.Path != "" {
			fmt.Fprintf(&b, " at %s", e.Path)
		}
		b.WriteString("\n")
		body.Fprintf(&b, "   %s\n", e.Message)
		if e.Description != "" {
			hint.Fprintf(&b, "   %s\n", e.Description)
		}
	}
	return b.String()
}

// WriteDiagnostics writes FormatDiagnostics output followed by a summary line.
func WriteDiagnostics(w io.Writer, errs surveymeta.JSONErrors, opts DiagnosticOptions) {
	fmt.Fprint(w, FormatDiagnostics(errs, opts))
	if len(errs) == 0 {
		return
	}
	summary := color.New(color.FgRed, color.Bold)
	if opts.NoColor {
		summary.DisableColor()
	}
	noun := "errors"
	if len(errs) == 1 {
		noun = "error"
	}
	summary.Fprintf(w, "%d %s\n", len(errs), noun)
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

func location(e *surveymeta.JSONError, opts DiagnosticOptions) string {
	name := opts.Name
	if name == "" {
		name = "<input>"
	}
	if e.At < 0 {
		return name + ":"
	}
	if opts.Source == nil {
		return fmt.Sprintf("%s:@%d:", name, e.At)
	}
	line, col := LineCol(opts.Source, e.At)
	return fmt.Sprintf("%s:%d:%d:", name, line, col)
}

// LineCol converts a byte offset into 1-based line and column numbers.
// Offsets past the end are clamped.
func LineCol(src []byte, offset int) (line, col int) {
	if offset > len(src) {
		offset = len(src)
	}
	if offset < 0 {
		offset = 0
	}
	head := src[:offset]
	line = bytes.Count(head, []byte{'\n'}) + 1
	col = offset - (bytes.LastIndexByte(head, '\n') + 1) + 1
	return line, col
}
