package evaluator

import (
	"github.com/funvibe/sigil/internal/pipeline"
)

type EvaluatorProcessor struct{}

func (ep *EvaluatorProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() || ctx.AstRoot == nil {
		return ctx
	}

	e := New(ctx.Out, ctx.Limits)
	result := e.RunProgram(ctx.AstRoot)
	if f, ok := result.(*Fault); ok {
		ctx.Errors = append(ctx.Errors, f.Diagnostic(ctx.FilePath))
		return ctx
	}

	ctx.Result = result
	return ctx
}
