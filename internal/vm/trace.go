package vm

import (
	"io"
	"strings"
)

// Tracer observes the machine immediately before each dispatch step. It
// receives a copy of the operand stack and cannot alter execution.
type Tracer interface {
	Trace(chunk *Chunk, offset int, stack []Value)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(chunk *Chunk, offset int, stack []Value)

func (f TracerFunc) Trace(chunk *Chunk, offset int, stack []Value) { f(chunk, offset, stack) }

// WriterTracer prints the stack and the disassembled instruction to W.
type WriterTracer struct {
	W io.Writer
}

// NewWriterTracer creates a tracer writing to w.
func NewWriterTracer(w io.Writer) *WriterTracer {
	return &WriterTracer{W: w}
}

func (t *WriterTracer) Trace(chunk *Chunk, offset int, stack []Value) {
	var sb strings.Builder
	sb.WriteString("          ")
	for _, v := range stack {
		sb.WriteString("[ " + v.String() + " ]")
	}
	sb.WriteByte('\n')
	disassembleInstruction(&sb, chunk, offset)
	io.WriteString(t.W, sb.String())
}
