package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/sigil/internal/config"
	"github.com/funvibe/sigil/internal/evaluator"
	"github.com/funvibe/sigil/internal/lexer"
	"github.com/funvibe/sigil/internal/parser"
	"github.com/funvibe/sigil/internal/pipeline"
	"github.com/funvibe/sigil/internal/prettyprinter"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <file%s> | %s -\n", os.Args[0], config.SourceFileExt, os.Args[0])
	fmt.Fprintln(os.Stderr, "  -            read the program from stdin")
	fmt.Fprintf(os.Stderr, "  fmt <file>   print the program in canonical form\n")
}

func useColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

func reportErrors(ctx *pipeline.PipelineContext) {
	red, reset := "", ""
	if useColor() {
		red, reset = "\x1b[31m", "\x1b[0m"
	}
	for _, err := range ctx.Errors {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", red, err.Error(), reset)
	}
}

func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// runFmt lexes and parses a file and prints it back in canonical form.
func runFmt(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", path, err)
		os.Exit(1)
	}

	ctx := &pipeline.PipelineContext{
		Source:   string(source),
		FilePath: path,
		Limits:   config.DefaultLimits(),
	}
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	if ctx.Failed() {
		reportErrors(ctx)
		os.Exit(1)
	}

	fmt.Print(prettyprinter.NewCodePrinter().Print(ctx.AstRoot))
}

func main() {
	if len(os.Args) == 3 && os.Args[1] == "fmt" {
		runFmt(os.Args[2])
		return
	}
	if len(os.Args) != 2 || strings.HasPrefix(os.Args[1], "-h") || os.Args[1] == "--help" {
		usage()
		os.Exit(1)
	}

	arg := os.Args[1]
	var source []byte
	var filePath string
	var err error

	if arg == "-" {
		filePath = "<stdin>"
		source, err = io.ReadAll(os.Stdin)
	} else {
		if !isSourceFile(arg) {
			fmt.Fprintf(os.Stderr, "warning: %s does not look like a source file (expected %s)\n",
				arg, strings.Join(config.SourceFileExtensions, " or "))
		}
		filePath = arg
		source, err = os.ReadFile(arg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", filePath, err)
		os.Exit(1)
	}

	cfg, err := config.LoadNear(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot load %s: %v\n", config.ConfigFileName, err)
		os.Exit(1)
	}

	ctx := &pipeline.PipelineContext{
		Source:   string(source),
		FilePath: filePath,
		Limits:   cfg.Limits,
		Out:      os.Stdout,
	}
	p := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&evaluator.EvaluatorProcessor{},
	)
	ctx = p.Run(ctx)

	if ctx.Failed() {
		reportErrors(ctx)
		os.Exit(1)
	}
}
