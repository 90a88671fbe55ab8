package prettyprinter

import (
	"bytes"
	"strings"

	"github.com/funvibe/sigil/internal/ast"
)

// --- Code Printer (Output looks like source code) ---

// CodePrinter renders a program back to canonical source: one blank
// line between top-level forms, nested forms broken over lines when
// they overflow the width.
type CodePrinter struct {
	buf       bytes.Buffer
	indent    int
	lineWidth int // max line width (0 = unlimited)
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{lineWidth: 100}
}

func NewCodePrinterWithWidth(width int) *CodePrinter {
	return &CodePrinter{lineWidth: width}
}

func (p *CodePrinter) Print(program *ast.Program) string {
	p.buf.Reset()
	for i, node := range program.Nodes {
		if i > 0 {
			p.buf.WriteString("\n\n")
		}
		p.printNode(node)
	}
	p.buf.WriteString("\n")
	return p.buf.String()
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

func (p *CodePrinter) printNode(node ast.Node) {
	form, ok := node.(*ast.Form)
	if !ok {
		p.buf.WriteString(node.String())
		return
	}
	p.printForm(form)
}

func (p *CodePrinter) printForm(form *ast.Form) {
	flat := form.String()
	if p.lineWidth == 0 || p.currentColumn()+len(flat) <= p.lineWidth {
		p.buf.WriteString(flat)
		return
	}

	// head and first argument on the opening line, the rest indented
	p.buf.WriteString("(")
	p.buf.WriteString(form.Head.String())
	p.indent++
	for i, arg := range form.Args {
		if i == 0 && isLeaf(arg) {
			p.buf.WriteString(" ")
			p.buf.WriteString(arg.String())
			continue
		}
		p.buf.WriteString("\n")
		p.writeIndent()
		p.printNode(arg)
	}
	p.indent--
	p.buf.WriteString(")")
}

func (p *CodePrinter) currentColumn() int {
	s := p.buf.String()
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return len(s) - idx - 1
	}
	return len(s)
}

// isLeaf reports whether a node has no nested structure worth its own
// line: literals and identifiers stay on the head's line.
func isLeaf(node ast.Node) bool {
	switch node.(type) {
	case *ast.Form, *ast.ListLiteral:
		return false
	}
	return true
}
