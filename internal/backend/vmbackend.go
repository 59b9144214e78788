package backend

import (
	"fmt"

	"github.com/funvibe/rabbit/internal/pipeline"
	"github.com/funvibe/rabbit/internal/vm"
)

// VMBackend executes chunks on the stack machine
type VMBackend struct{}

// NewVM creates a new VM backend
func NewVM() *VMBackend {
	return &VMBackend{}
}

func (b *VMBackend) Name() string {
	return "vm"
}

// Run hands ctx.Chunk to a fresh VM; the chunk is not touched afterwards.
func (b *VMBackend) Run(ctx *pipeline.PipelineContext) (vm.Value, error) {
	if ctx.Chunk == nil {
		return 0, fmt.Errorf("no chunk to execute")
	}

	machine := vm.New(ctx.Chunk)
	if ctx.Out != nil {
		machine.SetOutput(ctx.Out)
	}
	if ctx.Tracer != nil {
		machine.SetTracer(ctx.Tracer)
	}
	return machine.Run()
}
