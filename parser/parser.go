package parser

import "strings"

// Program is the result of pass 1: the instruction-bearing lines in
// order, plus the symbol table mapping labels to instruction indices.
type Program struct {
	Lines       []*Line
	SymbolTable *SymbolTable
}

// Parser performs the first pass of two-pass assembly over a source
// text: label collection and line tokenization. Encoding (pass 2) is
// the encoder package's job.
type Parser struct {
	input    string
	filename string
	errors   *ErrorList
}

// NewParser creates a parser over a complete source text
func NewParser(input, filename string) *Parser {
	return &Parser{
		input:    input,
		filename: filename,
		errors:   &ErrorList{},
	}
}

// Parse runs pass 1. Labels are bound to the index of the next
// instruction, so a label on a line of its own names the instruction
// that follows it.
func (p *Parser) Parse() (*Program, error) {
	program := &Program{
		Lines:       make([]*Line, 0),
		SymbolTable: NewSymbolTable(),
	}

	for i, raw := range strings.Split(p.input, "\n") {
		pos := Position{Filename: p.filename, Line: i + 1}

		line, perr := ParseLine(raw, pos)
		if perr != nil {
			p.errors.AddError(perr)
			continue
		}

		if line.Label != "" {
			err := program.SymbolTable.Define(line.Label, len(program.Lines), pos)
			if err != nil {
				p.errors.AddError(NewErrorWithContext(pos, ErrorDuplicateLabel, err.Error(), raw))
			}
		}

		if line.HasInstruction() {
			program.Lines = append(program.Lines, line)
		}
	}

	if p.errors.HasErrors() {
		return nil, p.errors
	}
	return program, nil
}

// Errors returns the error list
func (p *Parser) Errors() *ErrorList {
	return p.errors
}
