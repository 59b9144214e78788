package backend

import (
	"github.com/funvibe/rabbit/internal/logging"
	"github.com/funvibe/rabbit/internal/pipeline"
	"github.com/funvibe/rabbit/internal/vm"
)

var log = logging.GetLogger("backend")

// CompileProcessor implements pipeline.Processor to turn ctx.Tokens into ctx.Chunk
type CompileProcessor struct{}

func (p *CompileProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	// If previous steps failed, don't compile
	if ctx.Failed() {
		return ctx
	}

	chunk, err := vm.NewCompiler(ctx.SourceCode, ctx.Tokens, ctx.Reporter).Compile()
	if err != nil {
		log.Debugf("run %s: compile failed: %s", ctx.RunID, err)
		ctx.Fail(vm.InterpretCompileError, err)
		return ctx
	}
	chunk.File = ctx.FilePath
	ctx.Chunk = chunk
	log.Debugf("run %s: compiled %d instructions, %d constants", ctx.RunID, chunk.Len(), chunk.ConstantCount())
	return ctx
}

// ExecutionProcessor implements pipeline.Processor to run a Backend
type ExecutionProcessor struct {
	Backend Backend
}

// NewExecutionProcessor creates a new pipeline step for the given backend
func NewExecutionProcessor(b Backend) *ExecutionProcessor {
	return &ExecutionProcessor{Backend: b}
}

func (p *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	// If previous steps failed, don't run execution
	if ctx.Chunk == nil || ctx.Failed() {
		return ctx
	}

	result, err := p.Backend.Run(ctx)
	if err != nil {
		log.Debugf("run %s: %s backend failed: %s", ctx.RunID, p.Backend.Name(), err)
		ctx.Fail(vm.InterpretRuntimeError, err)
		return ctx
	}

	log.Debugf("run %s: %s backend returned %s", ctx.RunID, p.Backend.Name(), result)
	return ctx
}
