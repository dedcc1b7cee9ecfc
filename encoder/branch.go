package encoder

import (
	"fmt"

	"github.com/djc132/Computer-Architecture-Project/parser"
	"github.com/djc132/Computer-Architecture-Project/vm"
)

// branchOffset resolves a label to its signed branch displacement in
// instruction units, relative to the instruction after the branch.
func (e *Encoder) branchOffset(label string, index int) (int32, error) {
	target, err := e.symbols.Get(label)
	if err != nil {
		return 0, err
	}
	return int32(target - index - 1), nil
}

// encodeBranchCompare handles beq/bne rs, rt, label
func (e *Encoder) encodeBranchCompare(line *parser.Line, inst *vm.Instruction, index int) error {
	if err := expectOperands(line, 3); err != nil {
		return err
	}
	rs, err := registerAt(line, 0)
	if err != nil {
		return err
	}
	rt, err := registerAt(line, 1)
	if err != nil {
		return err
	}
	label, err := labelAt(line, 2)
	if err != nil {
		return err
	}
	offset, err := e.branchOffset(label, index)
	if err != nil {
		return err
	}

	inst.Rs, inst.Rt = rs, rt
	inst.Imm = offset
	inst.Word = packI(opcodes[inst.Mnemonic], rs, rt, int64(offset))
	return nil
}

// encodeBranchZero handles blez/bgtz rs, label with rt encoded as 0
func (e *Encoder) encodeBranchZero(line *parser.Line, inst *vm.Instruction, index int) error {
	if err := expectOperands(line, 2); err != nil {
		return err
	}
	rs, err := registerAt(line, 0)
	if err != nil {
		return err
	}
	label, err := labelAt(line, 1)
	if err != nil {
		return err
	}
	offset, err := e.branchOffset(label, index)
	if err != nil {
		return err
	}

	inst.Rs = rs
	inst.Imm = offset
	inst.Word = packI(opcodes[inst.Mnemonic], rs, 0, int64(offset))
	return nil
}

// encodeJump handles j/jal with either a label or an absolute byte
// address. The 26-bit field is the target byte address shifted right
// by 2.
func (e *Encoder) encodeJump(line *parser.Line, inst *vm.Instruction) error {
	if err := expectOperands(line, 1); err != nil {
		return err
	}

	var address uint32
	op := line.Operands[0]
	switch op.Kind {
	case parser.OperandLabel:
		target, err := e.symbols.Get(op.Label)
		if err != nil {
			return err
		}
		address = addressOfIndex(target)
	case parser.OperandImmediate:
		address = uint32(op.Value)
	default:
		return fmt.Errorf("operand 1: expected label or address, got %q", op.Text)
	}

	inst.Target = (address >> 2) & 0x03FFFFFF
	inst.Word = packJ(opcodes[inst.Mnemonic], inst.Target)
	return nil
}
