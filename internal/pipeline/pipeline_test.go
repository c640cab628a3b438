package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyp/arpha/internal/diagnostics"
	"github.com/hyp/arpha/internal/pipeline"
)

// TestPipeline_RunsStagesInOrder confirms Pipeline.Run threads the same
// PipelineContext through every stage in the order they were registered in
// New, rather than, say, running them concurrently or in reverse.
func TestPipeline_RunsStagesInOrder(t *testing.T) {
	var order []string

	stage := func(name string) pipeline.ProcessorFunc {
		return func(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
			order = append(order, name)
			ctx.Source += name
			return ctx
		}
	}

	p := pipeline.New(stage("a"), stage("b"), stage("c"))
	out := p.Run(&pipeline.PipelineContext{File: "t.arp"})

	require.NotNil(t, out)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, "abc", out.Source)
}

// TestPipeline_StagesContinueAfterDiagnostic mirrors the doc comment's
// contract: a stage that only appends a diagnostic (rather than returning
// nil or panicking) doesn't stop later stages from running.
func TestPipeline_StagesContinueAfterDiagnostic(t *testing.T) {
	ran := map[string]bool{}

	reportThenContinue := pipeline.ProcessorFunc(func(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
		ran["first"] = true
		ctx.Sink.Report(diagnostics.Diagnostic{Code: diagnostics.ErrUndefinedSymbol, Message: "reported by the first stage"})
		return ctx
	})
	second := pipeline.ProcessorFunc(func(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
		ran["second"] = true
		return ctx
	})

	sink := &diagnostics.CollectingSink{}
	p := pipeline.New(reportThenContinue, second)
	p.Run(&pipeline.PipelineContext{File: "t.arp", Sink: sink})

	assert.Len(t, sink.Diagnostics, 1)
	assert.True(t, ran["first"])
	assert.True(t, ran["second"], "a later stage must still run after an earlier one reports something")
}
