package pipeline

import (
	"io"

	"github.com/funvibe/sigil/internal/ast"
	"github.com/funvibe/sigil/internal/config"
	"github.com/funvibe/sigil/internal/diagnostics"
	"github.com/funvibe/sigil/internal/token"
)

// Processor is one stage of the run: lexing, parsing, interpreting.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries a source unit through the stages. Each stage
// fills in its output field and appends to Errors on failure; later
// stages skip their work when an earlier stage already failed.
type PipelineContext struct {
	Source   string
	FilePath string
	Limits   config.Limits

	TokenStream []token.Token
	AstRoot     *ast.Program
	Result      interface{}

	Errors []*diagnostics.Error

	// Out receives program output (print, @assert reports). Defaults
	// to os.Stdout when nil; tests point it at a buffer.
	Out io.Writer
}

func (ctx *PipelineContext) Failed() bool {
	return len(ctx.Errors) > 0
}

// FirstError returns the fault that stopped the run, or nil.
func (ctx *PipelineContext) FirstError() *diagnostics.Error {
	if len(ctx.Errors) == 0 {
		return nil
	}
	return ctx.Errors[0]
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Stages after a failure still run so they
// can decide for themselves whether partial input is usable; the
// standard stages all bail out early on ctx.Failed().
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
