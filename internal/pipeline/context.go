package pipeline

import (
	"io"
	"os"

	"github.com/funvibe/rabbit/internal/diagnostics"
	"github.com/funvibe/rabbit/internal/token"
	"github.com/funvibe/rabbit/internal/vm"
)

// Processor is a single stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx *PipelineContext) *PipelineContext

func (f ProcessorFunc) Process(ctx *PipelineContext) *PipelineContext { return f(ctx) }

// PipelineContext carries one source buffer through lexing, compilation and
// execution.
type PipelineContext struct {
	SourceCode string
	FilePath   string
	RunID      string

	Tokens []token.Token
	Chunk  *vm.Chunk

	// Reporter receives diagnostics as each stage discovers them.
	Reporter diagnostics.Reporter
	// Out receives program output.
	Out io.Writer
	// Tracer, when set, observes every VM dispatch step.
	Tracer vm.Tracer

	Errors []error
	status vm.InterpretResult
}

func NewPipelineContext(sourceCode string) *PipelineContext {
	return &PipelineContext{
		SourceCode: sourceCode,
		Reporter:   diagnostics.Discard,
		Out:        os.Stdout,
		status:     vm.InterpretOk,
	}
}

// Fail records err and the terminal status it maps to. The first failure
// decides the status.
func (ctx *PipelineContext) Fail(status vm.InterpretResult, err error) {
	if len(ctx.Errors) == 0 {
		ctx.status = status
	}
	ctx.Errors = append(ctx.Errors, err)
}

// Failed reports whether any stage has recorded an error.
func (ctx *PipelineContext) Failed() bool {
	return len(ctx.Errors) > 0
}

// Result returns the terminal status of the run.
func (ctx *PipelineContext) Result() vm.InterpretResult {
	return ctx.status
}
