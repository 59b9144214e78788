package lexer

import (
	"github.com/funvibe/rabbit/internal/pipeline"
	"github.com/funvibe/rabbit/internal/vm"
)

// LexerProcessor is the pipeline stage that fills ctx.Tokens.
type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() {
		return ctx
	}
	tokens, err := Scan(ctx.SourceCode, ctx.Reporter)
	if err != nil {
		ctx.Fail(vm.InterpretSyntaxError, err)
		return ctx
	}
	ctx.Tokens = tokens
	return ctx
}
