package encoder

import (
	"github.com/djc132/Computer-Architecture-Project/parser"
	"github.com/djc132/Computer-Architecture-Project/vm"
)

// opcodes maps I- and J-type mnemonics to their opcode field values
var opcodes = map[vm.Mnemonic]uint8{
	vm.J:     vm.OpcodeJ,
	vm.JAL:   vm.OpcodeJal,
	vm.BEQ:   vm.OpcodeBeq,
	vm.BNE:   vm.OpcodeBne,
	vm.BLEZ:  vm.OpcodeBlez,
	vm.BGTZ:  vm.OpcodeBgtz,
	vm.ADDI:  vm.OpcodeAddi,
	vm.ADDIU: vm.OpcodeAddiu,
	vm.SLTI:  vm.OpcodeSlti,
	vm.SLTIU: vm.OpcodeSltiu,
	vm.ANDI:  vm.OpcodeAndi,
	vm.ORI:   vm.OpcodeOri,
	vm.XORI:  vm.OpcodeXori,
	vm.LUI:   vm.OpcodeLui,
	vm.LB:    vm.OpcodeLb,
	vm.LH:    vm.OpcodeLh,
	vm.LW:    vm.OpcodeLw,
	vm.LBU:   vm.OpcodeLbu,
	vm.LHU:   vm.OpcodeLhu,
	vm.SB:    vm.OpcodeSb,
	vm.SH:    vm.OpcodeSh,
	vm.SW:    vm.OpcodeSw,
}

// encodeImmArith handles rt, rs, imm. The immediate is masked to 16
// bits; overflow is not rejected.
func (e *Encoder) encodeImmArith(line *parser.Line, inst *vm.Instruction) error {
	if err := expectOperands(line, 3); err != nil {
		return err
	}
	rt, err := registerAt(line, 0)
	if err != nil {
		return err
	}
	rs, err := registerAt(line, 1)
	if err != nil {
		return err
	}
	imm, err := immediateAt(line, 2)
	if err != nil {
		return err
	}

	inst.Rt, inst.Rs = rt, rs
	inst.Imm = vm.SignExtend16(uint16(imm))
	inst.Word = packI(opcodes[inst.Mnemonic], rs, rt, imm)
	return nil
}

// encodeLui handles rt, imm with rs encoded as 0
func (e *Encoder) encodeLui(line *parser.Line, inst *vm.Instruction) error {
	if err := expectOperands(line, 2); err != nil {
		return err
	}
	rt, err := registerAt(line, 0)
	if err != nil {
		return err
	}
	imm, err := immediateAt(line, 1)
	if err != nil {
		return err
	}

	inst.Rt = rt
	inst.Imm = vm.SignExtend16(uint16(imm))
	inst.Word = packI(opcodes[inst.Mnemonic], 0, rt, imm)
	return nil
}

// encodeMemory handles rt, offset(base) loads and stores. The
// structured operand supplies the I-type immediate and rs.
func (e *Encoder) encodeMemory(line *parser.Line, inst *vm.Instruction) error {
	if err := expectOperands(line, 2); err != nil {
		return err
	}
	rt, err := registerAt(line, 0)
	if err != nil {
		return err
	}
	offset, base, err := memAt(line, 1)
	if err != nil {
		return err
	}

	inst.Rt, inst.Rs = rt, base
	inst.Imm = vm.SignExtend16(uint16(offset))
	inst.Word = packI(opcodes[inst.Mnemonic], base, rt, int64(offset))
	return nil
}
