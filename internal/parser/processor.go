package parser

import (
	"github.com/funvibe/sigil/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() {
		return ctx
	}

	program, err := New(ctx.TokenStream).ParseProgram()
	if err != nil {
		if err.File == "" {
			err.File = ctx.FilePath
		}
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}

	program.File = ctx.FilePath
	ctx.AstRoot = program
	return ctx
}
