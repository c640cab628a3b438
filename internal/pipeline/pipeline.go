// Package pipeline chains Arpha's compilation stages behind a uniform
// Processor interface. pkg/arpha.Resolve (which cmd/arphac calls) runs a
// parse stage and a resolve stage through it; lexing happens inside the
// parser, not as a stage of its own.
package pipeline

import (
	"github.com/hyp/arpha/internal/ast"
	"github.com/hyp/arpha/internal/diagnostics"
)

// PipelineContext threads state between stages: the source text a stage
// consumes, the AST a later stage produces, and the diagnostics every
// stage reports through.
type PipelineContext struct {
	File   string
	Source string

	Tokens []string // source lexemes; no stage in this module sets it
	Root   *ast.Block

	Sink diagnostics.Sink
}

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc func(ctx *PipelineContext) *PipelineContext

func (f ProcessorFunc) Process(ctx *PipelineContext) *PipelineContext { return f(ctx) }

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

// New builds a Pipeline running processors in order.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order, threading ctx through each. Stages
// continue running even after a diagnostic is reported, so a later stage's
// errors (e.g. resolver errors after parse errors) surface in the same
// run rather than requiring a clean recompile per stage.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
