// Package backend provides the compile and execution stages of the pipeline.
package backend

import (
	"github.com/funvibe/rabbit/internal/pipeline"
	"github.com/funvibe/rabbit/internal/vm"
)

// Backend is the interface for execution backends
type Backend interface {
	// Run executes ctx.Chunk and returns the value it produced
	Run(ctx *pipeline.PipelineContext) (vm.Value, error)

	// Name returns the backend name for display
	Name() string
}
