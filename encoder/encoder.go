// Package encoder implements pass 2 of the assembler: converting
// parsed instructions plus the resolved symbol environment into 32-bit
// MIPS machine words in the R, I and J formats.
package encoder

import (
	"fmt"
	"strings"

	"github.com/djc132/Computer-Architecture-Project/parser"
	"github.com/djc132/Computer-Architecture-Project/vm"
)

// mnemonics maps assembly mnemonics to their executable identity
var mnemonics = map[string]vm.Mnemonic{
	"nop": vm.NOP,
	"add": vm.ADD, "addu": vm.ADDU, "sub": vm.SUB, "subu": vm.SUBU,
	"and": vm.AND, "or": vm.OR, "xor": vm.XOR, "nor": vm.NOR,
	"slt": vm.SLT, "sltu": vm.SLTU,
	"sll": vm.SLL, "srl": vm.SRL, "sra": vm.SRA,
	"sllv": vm.SLLV, "srlv": vm.SRLV, "srav": vm.SRAV,
	"mult": vm.MULT, "multu": vm.MULTU, "div": vm.DIV, "divu": vm.DIVU,
	"mfhi": vm.MFHI, "mthi": vm.MTHI, "mflo": vm.MFLO, "mtlo": vm.MTLO,
	"jr": vm.JR, "jalr": vm.JALR, "syscall": vm.SYSCALL,
	"addi": vm.ADDI, "addiu": vm.ADDIU, "slti": vm.SLTI, "sltiu": vm.SLTIU,
	"andi": vm.ANDI, "ori": vm.ORI, "xori": vm.XORI, "lui": vm.LUI,
	"lb": vm.LB, "lh": vm.LH, "lw": vm.LW, "lbu": vm.LBU, "lhu": vm.LHU,
	"sb": vm.SB, "sh": vm.SH, "sw": vm.SW,
	"beq": vm.BEQ, "bne": vm.BNE, "blez": vm.BLEZ, "bgtz": vm.BGTZ,
	"j": vm.J, "jal": vm.JAL,
}

// Encoder converts parsed instructions into machine code against a
// symbol environment produced by pass 1.
type Encoder struct {
	symbols *parser.SymbolTable
}

// NewEncoder creates a new encoder instance
func NewEncoder(symbols *parser.SymbolTable) *Encoder {
	return &Encoder{symbols: symbols}
}

// Assemble encodes every instruction in a parsed program. The returned
// slices are complete or the error is non-nil; a caller that swaps the
// result in only on success gets atomic loads for free.
func Assemble(program *parser.Program) ([]vm.Instruction, map[string]uint32, error) {
	enc := NewEncoder(program.SymbolTable)

	instructions := make([]vm.Instruction, 0, len(program.Lines))
	for index, line := range program.Lines {
		inst, err := enc.EncodeLine(line, index)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", line.Pos, err)
		}
		instructions = append(instructions, inst)
	}

	symbols := make(map[string]uint32, program.SymbolTable.Len())
	for _, sym := range program.SymbolTable.All() {
		symbols[sym.Name] = addressOfIndex(sym.Index)
	}

	return instructions, symbols, nil
}

// addressOfIndex maps an instruction index to its load address
func addressOfIndex(index int) uint32 {
	return vm.TextSegmentBase + 4*uint32(index)
}

// EncodeLine encodes one parsed line at the given instruction index
func (e *Encoder) EncodeLine(line *parser.Line, index int) (vm.Instruction, error) {
	mnemonic, ok := mnemonics[line.Mnemonic]
	if !ok {
		return vm.Instruction{}, fmt.Errorf("unknown instruction: %q", line.Mnemonic)
	}

	inst := vm.Instruction{
		Source:   sourceText(line),
		Mnemonic: mnemonic,
		Address:  addressOfIndex(index),
	}

	var err error
	switch mnemonic {
	case vm.NOP:
		err = e.encodeNop(line, &inst)
	case vm.ADD, vm.ADDU, vm.SUB, vm.SUBU, vm.AND, vm.OR, vm.XOR, vm.NOR, vm.SLT, vm.SLTU:
		err = e.encodeThreeReg(line, &inst)
	case vm.SLL, vm.SRL, vm.SRA:
		err = e.encodeShift(line, &inst)
	case vm.SLLV, vm.SRLV, vm.SRAV:
		err = e.encodeShiftVariable(line, &inst)
	case vm.MULT, vm.MULTU, vm.DIV, vm.DIVU:
		err = e.encodeMulDiv(line, &inst)
	case vm.MFHI, vm.MFLO:
		err = e.encodeMoveFrom(line, &inst)
	case vm.MTHI, vm.MTLO:
		err = e.encodeMoveTo(line, &inst)
	case vm.JR:
		err = e.encodeJumpRegister(line, &inst)
	case vm.JALR:
		err = e.encodeJumpAndLinkRegister(line, &inst)
	case vm.SYSCALL:
		err = e.encodeSyscall(line, &inst)
	case vm.ADDI, vm.ADDIU, vm.SLTI, vm.SLTIU, vm.ANDI, vm.ORI, vm.XORI:
		err = e.encodeImmArith(line, &inst)
	case vm.LUI:
		err = e.encodeLui(line, &inst)
	case vm.LB, vm.LH, vm.LW, vm.LBU, vm.LHU, vm.SB, vm.SH, vm.SW:
		err = e.encodeMemory(line, &inst)
	case vm.BEQ, vm.BNE:
		err = e.encodeBranchCompare(line, &inst, index)
	case vm.BLEZ, vm.BGTZ:
		err = e.encodeBranchZero(line, &inst, index)
	case vm.J, vm.JAL:
		err = e.encodeJump(line, &inst)
	default:
		err = fmt.Errorf("unknown instruction: %q", line.Mnemonic)
	}
	if err != nil {
		return vm.Instruction{}, fmt.Errorf("%s: %w", line.Mnemonic, err)
	}

	return inst, nil
}

// sourceText renders the canonical source form of an instruction, label
// and comment stripped.
func sourceText(line *parser.Line) string {
	if len(line.Operands) == 0 {
		return line.Mnemonic
	}
	texts := make([]string, len(line.Operands))
	for i, op := range line.Operands {
		texts[i] = op.Text
	}
	return line.Mnemonic + " " + strings.Join(texts, ", ")
}

// Field packers. Register indices, shamt and funct are masked to their
// widths; the 16-bit immediate keeps only its low bits, so negative
// immediates encode as their two's-complement low halfword.

func packR(rs, rt, rd, shamt uint8, funct uint8) uint32 {
	return uint32(rs&0x1F)<<21 |
		uint32(rt&0x1F)<<16 |
		uint32(rd&0x1F)<<11 |
		uint32(shamt&0x1F)<<6 |
		uint32(funct&0x3F)
}

func packI(opcode uint8, rs, rt uint8, imm int64) uint32 {
	return uint32(opcode&0x3F)<<26 |
		uint32(rs&0x1F)<<21 |
		uint32(rt&0x1F)<<16 |
		uint32(imm)&0xFFFF
}

func packJ(opcode uint8, target uint32) uint32 {
	return uint32(opcode&0x3F)<<26 | target&0x03FFFFFF
}

// Operand accessors

func expectOperands(line *parser.Line, n int) error {
	if len(line.Operands) != n {
		return fmt.Errorf("expected %d operands, got %d", n, len(line.Operands))
	}
	return nil
}

func registerAt(line *parser.Line, i int) (uint8, error) {
	op := line.Operands[i]
	if op.Kind != parser.OperandRegister {
		return 0, fmt.Errorf("operand %d: expected register, got %q", i+1, op.Text)
	}
	return uint8(op.Reg), nil
}

func immediateAt(line *parser.Line, i int) (int64, error) {
	op := line.Operands[i]
	if op.Kind != parser.OperandImmediate {
		return 0, fmt.Errorf("operand %d: expected immediate, got %q", i+1, op.Text)
	}
	return op.Value, nil
}

func labelAt(line *parser.Line, i int) (string, error) {
	op := line.Operands[i]
	if op.Kind != parser.OperandLabel {
		return "", fmt.Errorf("operand %d: expected label, got %q", i+1, op.Text)
	}
	return op.Label, nil
}

func memAt(line *parser.Line, i int) (int32, uint8, error) {
	op := line.Operands[i]
	if op.Kind != parser.OperandMem {
		return 0, 0, fmt.Errorf("operand %d: expected offset(base), got %q", i+1, op.Text)
	}
	return op.Offset, uint8(op.Base), nil
}
