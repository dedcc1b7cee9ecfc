// Package loader wires the assembler passes together: source text in,
// a loaded machine out.
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/djc132/Computer-Architecture-Project/encoder"
	"github.com/djc132/Computer-Architecture-Project/parser"
	"github.com/djc132/Computer-Architecture-Project/vm"
)

// LoadString assembles source text and installs it into the machine.
// The load is atomic: on any parse or encoding error the machine's
// previously loaded program is left untouched. Returns the number of
// instructions loaded.
func LoadString(machine *vm.Machine, source, filename string) (int, error) {
	p := parser.NewParser(source, filename)
	program, err := p.Parse()
	if err != nil {
		return 0, err
	}

	instructions, symbols, err := encoder.Assemble(program)
	if err != nil {
		return 0, err
	}

	machine.Load(instructions, symbols)
	return len(instructions), nil
}

// LoadFile assembles an assembly source file and installs it into the
// machine.
func LoadFile(machine *vm.Machine, path string) (int, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied program path
	if err != nil {
		return 0, fmt.Errorf("failed to read program: %w", err)
	}
	return LoadString(machine, string(data), filepath.Base(path))
}
