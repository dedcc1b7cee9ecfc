package encoder

import (
	"fmt"

	"github.com/djc132/Computer-Architecture-Project/parser"
	"github.com/djc132/Computer-Architecture-Project/vm"
)

// functs maps R-type mnemonics to their funct field values
var functs = map[vm.Mnemonic]uint8{
	vm.SLL:     vm.FunctSll,
	vm.SRL:     vm.FunctSrl,
	vm.SRA:     vm.FunctSra,
	vm.SLLV:    vm.FunctSllv,
	vm.SRLV:    vm.FunctSrlv,
	vm.SRAV:    vm.FunctSrav,
	vm.JR:      vm.FunctJr,
	vm.JALR:    vm.FunctJalr,
	vm.SYSCALL: vm.FunctSyscall,
	vm.MFHI:    vm.FunctMfhi,
	vm.MTHI:    vm.FunctMthi,
	vm.MFLO:    vm.FunctMflo,
	vm.MTLO:    vm.FunctMtlo,
	vm.MULT:    vm.FunctMult,
	vm.MULTU:   vm.FunctMultu,
	vm.DIV:     vm.FunctDiv,
	vm.DIVU:    vm.FunctDivu,
	vm.ADD:     vm.FunctAdd,
	vm.ADDU:    vm.FunctAddu,
	vm.SUB:     vm.FunctSub,
	vm.SUBU:    vm.FunctSubu,
	vm.AND:     vm.FunctAnd,
	vm.OR:      vm.FunctOr,
	vm.XOR:     vm.FunctXor,
	vm.NOR:     vm.FunctNor,
	vm.SLT:     vm.FunctSlt,
	vm.SLTU:    vm.FunctSltu,
}

func functOf(m vm.Mnemonic) uint8 {
	funct, ok := functs[m]
	if !ok {
		// unreachable after the dispatch switch routed correctly
		panic(fmt.Sprintf("no funct for mnemonic %s", m))
	}
	return funct
}

// encodeNop emits the all-zero word
func (e *Encoder) encodeNop(line *parser.Line, inst *vm.Instruction) error {
	if err := expectOperands(line, 0); err != nil {
		return err
	}
	inst.Word = 0
	return nil
}

// encodeThreeReg handles rd, rs, rt arithmetic/logic/compare
func (e *Encoder) encodeThreeReg(line *parser.Line, inst *vm.Instruction) error {
	if err := expectOperands(line, 3); err != nil {
		return err
	}
	rd, err := registerAt(line, 0)
	if err != nil {
		return err
	}
	rs, err := registerAt(line, 1)
	if err != nil {
		return err
	}
	rt, err := registerAt(line, 2)
	if err != nil {
		return err
	}

	inst.Rd, inst.Rs, inst.Rt = rd, rs, rt
	inst.Word = packR(rs, rt, rd, 0, functOf(inst.Mnemonic))
	return nil
}

// encodeShift handles rd, rt, shamt with rs encoded as 0. The shift
// amount is masked to its 5-bit field.
func (e *Encoder) encodeShift(line *parser.Line, inst *vm.Instruction) error {
	if err := expectOperands(line, 3); err != nil {
		return err
	}
	rd, err := registerAt(line, 0)
	if err != nil {
		return err
	}
	rt, err := registerAt(line, 1)
	if err != nil {
		return err
	}
	shamt, err := immediateAt(line, 2)
	if err != nil {
		return err
	}

	inst.Rd, inst.Rt = rd, rt
	inst.Shamt = uint8(shamt) & 0x1F
	inst.Word = packR(0, rt, rd, inst.Shamt, functOf(inst.Mnemonic))
	return nil
}

// encodeShiftVariable handles rd, rt, rs variable shifts
func (e *Encoder) encodeShiftVariable(line *parser.Line, inst *vm.Instruction) error {
	if err := expectOperands(line, 3); err != nil {
		return err
	}
	rd, err := registerAt(line, 0)
	if err != nil {
		return err
	}
	rt, err := registerAt(line, 1)
	if err != nil {
		return err
	}
	rs, err := registerAt(line, 2)
	if err != nil {
		return err
	}

	inst.Rd, inst.Rt, inst.Rs = rd, rt, rs
	inst.Word = packR(rs, rt, rd, 0, functOf(inst.Mnemonic))
	return nil
}

// encodeMulDiv handles rs, rt with rd encoded as 0
func (e *Encoder) encodeMulDiv(line *parser.Line, inst *vm.Instruction) error {
	if err := expectOperands(line, 2); err != nil {
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

	inst.Rs, inst.Rt = rs, rt
	inst.Word = packR(rs, rt, 0, 0, functOf(inst.Mnemonic))
	return nil
}

// encodeMoveFrom handles mfhi/mflo rd with unused fields 0
func (e *Encoder) encodeMoveFrom(line *parser.Line, inst *vm.Instruction) error {
	if err := expectOperands(line, 1); err != nil {
		return err
	}
	rd, err := registerAt(line, 0)
	if err != nil {
		return err
	}

	inst.Rd = rd
	inst.Word = packR(0, 0, rd, 0, functOf(inst.Mnemonic))
	return nil
}

// encodeMoveTo handles mthi/mtlo rs
func (e *Encoder) encodeMoveTo(line *parser.Line, inst *vm.Instruction) error {
	if err := expectOperands(line, 1); err != nil {
		return err
	}
	rs, err := registerAt(line, 0)
	if err != nil {
		return err
	}

	inst.Rs = rs
	inst.Word = packR(rs, 0, 0, 0, functOf(inst.Mnemonic))
	return nil
}

// encodeJumpRegister handles jr rs with unused fields 0
func (e *Encoder) encodeJumpRegister(line *parser.Line, inst *vm.Instruction) error {
	if err := expectOperands(line, 1); err != nil {
		return err
	}
	rs, err := registerAt(line, 0)
	if err != nil {
		return err
	}

	inst.Rs = rs
	inst.Word = packR(rs, 0, 0, 0, vm.FunctJr)
	return nil
}

// encodeJumpAndLinkRegister handles "jalr rs" and "jalr rd, rs"; the
// link register defaults to $ra.
func (e *Encoder) encodeJumpAndLinkRegister(line *parser.Line, inst *vm.Instruction) error {
	var rd, rs uint8
	var err error

	switch len(line.Operands) {
	case 1:
		rd = vm.RegRA
		if rs, err = registerAt(line, 0); err != nil {
			return err
		}
	case 2:
		if rd, err = registerAt(line, 0); err != nil {
			return err
		}
		if rs, err = registerAt(line, 1); err != nil {
			return err
		}
	default:
		return fmt.Errorf("expected 1 or 2 operands, got %d", len(line.Operands))
	}

	inst.Rd, inst.Rs = rd, rs
	inst.Word = packR(rs, 0, rd, 0, vm.FunctJalr)
	return nil
}

// encodeSyscall emits the syscall word with the code field zero
func (e *Encoder) encodeSyscall(line *parser.Line, inst *vm.Instruction) error {
	if err := expectOperands(line, 0); err != nil {
		return err
	}
	inst.Word = packR(0, 0, 0, 0, vm.FunctSyscall)
	return nil
}
