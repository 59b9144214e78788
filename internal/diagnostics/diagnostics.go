// Package diagnostics renders source-anchored error reports shared by the
// lexer, the compiler and the runtime.
package diagnostics

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/funvibe/rabbit/internal/token"
)

// Code identifies a diagnostic category.
type Code string

const (
	ErrL001 Code = "L001" // unexpected character
	ErrL002 Code = "L002" // unterminated string

	ErrC001 Code = "C001" // expect expression
	ErrC002 Code = "C002" // expect ')' after expression
	ErrC003 Code = "C003" // expect end of expression
	ErrC004 Code = "C004" // too many constants
)

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Diagnostic is a single error anchored to a span of Source.
type Diagnostic struct {
	Code    Code
	Span    token.Span
	Where   string // header suffix such as " at end" or " at 'x'"
	Message string
	Source  string
}

// NewError creates a diagnostic for the given span.
func NewError(code Code, source string, span token.Span, where, message string) *Diagnostic {
	return &Diagnostic{
		Code:    code,
		Span:    span,
		Where:   where,
		Message: message,
		Source:  source,
	}
}

func (d *Diagnostic) Error() string {
	line, col := Locate(d.Source, d.Span.Start)
	return fmt.Sprintf("[%d:%d] Error%s: %s", line, col, d.Where, d.Message)
}

// Locate converts a byte offset into a 1-based line and the number of
// bytes preceding offset on that line.
func Locate(source string, offset int) (line, column int) {
	if offset > len(source) {
		offset = len(source)
	}
	if offset < 0 {
		offset = 0
	}
	prefix := source[:offset]
	line = strings.Count(prefix, "\n") + 1
	column = offset - (strings.LastIndexByte(prefix, '\n') + 1)
	return line, column
}

// lineAt returns the full text of the line containing offset, without the
// line terminator.
func lineAt(source string, offset int) string {
	if offset > len(source) {
		offset = len(source)
	}
	start := strings.LastIndexByte(source[:offset], '\n') + 1
	end := strings.IndexByte(source[start:], '\n')
	if end < 0 {
		end = len(source)
	} else {
		end += start
	}
	return strings.TrimSuffix(source[start:end], "\r")
}

// Render formats the diagnostic as a header, an annotated source line and a
// caret run aligned under the span.
func (d *Diagnostic) Render(color bool) string {
	line, col := Locate(d.Source, d.Span.Start)
	text := lineAt(d.Source, d.Span.Start)

	var sb strings.Builder
	if color {
		sb.WriteString(ansiBold + ansiRed + "Error" + ansiReset + ansiBold)
		sb.WriteString(d.Where + ": " + d.Message + ansiReset + "\n")
	} else {
		sb.WriteString("Error" + d.Where + ": " + d.Message + "\n")
	}
	fmt.Fprintf(&sb, "  | [%d:%d] %s\n", line, col, text)

	// "  | [" + line + ":" + col + "] " precedes the source text.
	sb.WriteString(strings.Repeat(" ", len(strconv.Itoa(line))+len(strconv.Itoa(col))+8))
	if col > len(text) {
		col = len(text)
	}
	for _, r := range text[:col] {
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}

	width := d.Span.Len()
	if width < 1 {
		width = 1
	}
	carets := strings.Repeat("^", width)
	if color {
		carets = ansiRed + carets + ansiReset
	}
	sb.WriteString(carets + "\n")
	return sb.String()
}

// Reporter receives diagnostics as soon as they are discovered.
type Reporter interface {
	Report(d *Diagnostic)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(d *Diagnostic)

func (f ReporterFunc) Report(d *Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Reporter = ReporterFunc(func(*Diagnostic) {})

// WriterReporter renders diagnostics to W as they arrive.
type WriterReporter struct {
	W     io.Writer
	Color bool
}

func (r *WriterReporter) Report(d *Diagnostic) {
	fmt.Fprintln(r.W, d.Render(r.Color))
}

// ErrorList is the aggregate failure of a phase. Kind is the sentinel error
// of the phase (for errors.Is) and Diagnostics holds every report in order.
type ErrorList struct {
	Kind        error
	Diagnostics []*Diagnostic
}

func (e *ErrorList) Error() string {
	switch len(e.Diagnostics) {
	case 0:
		return e.Kind.Error()
	case 1:
		return fmt.Sprintf("%s: %s", e.Kind, e.Diagnostics[0].Error())
	}
	return fmt.Sprintf("%s: %s (and %d more)", e.Kind, e.Diagnostics[0].Error(), len(e.Diagnostics)-1)
}

func (e *ErrorList) Unwrap() error {
	return e.Kind
}

// Len returns the number of collected diagnostics.
func (e *ErrorList) Len() int {
	return len(e.Diagnostics)
}
