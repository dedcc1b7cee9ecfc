package vm_test

import (
	"testing"

	"github.com/djc132/Computer-Architecture-Project/vm"
)

func TestDecodeRType(t *testing.T) {
	// add $t0, $t1, $t2 = 0x012A4020
	f := vm.Decode(0x012A4020)
	if f.Opcode != 0x00 || f.Rs != 9 || f.Rt != 10 || f.Rd != 8 || f.Shamt != 0 || f.Funct != 0x20 {
		t.Errorf("decode(add) = %+v", f)
	}
}

func TestDecodeIType(t *testing.T) {
	// addi $t0, $zero, 1 = 0x20080001
	f := vm.Decode(0x20080001)
	if f.Opcode != 0x08 || f.Rs != 0 || f.Rt != 8 || f.Immediate != 1 {
		t.Errorf("decode(addi) = %+v", f)
	}

	// negative immediate
	f = vm.Decode(0x2009FFFD)
	if f.Immediate != 0xFFFD {
		t.Errorf("immediate = 0x%04X, want 0xFFFD", f.Immediate)
	}
	if f.BranchOffset() != -3 {
		t.Errorf("BranchOffset = %d, want -3", f.BranchOffset())
	}
}

func TestDecodeJType(t *testing.T) {
	// j 0x00400000 = 0x08100000
	f := vm.Decode(0x08100000)
	if f.Opcode != 0x02 || f.Address != 0x00100000 {
		t.Errorf("decode(j) = %+v", f)
	}
}

func TestDecodeAllOnes(t *testing.T) {
	f := vm.Decode(0xFFFFFFFF)
	if f.Opcode != 0x3F || f.Rs != 31 || f.Rt != 31 || f.Rd != 31 || f.Shamt != 31 || f.Funct != 0x3F {
		t.Errorf("field widths not respected: %+v", f)
	}
	if f.Immediate != 0xFFFF || f.Address != 0x03FFFFFF {
		t.Errorf("immediate/address widths not respected: %+v", f)
	}
}

func TestSignExtension(t *testing.T) {
	if got := vm.SignExtend16(0xFFFF); got != -1 {
		t.Errorf("SignExtend16(0xFFFF) = %d, want -1", got)
	}
	if got := vm.SignExtend16(0x7FFF); got != 32767 {
		t.Errorf("SignExtend16(0x7FFF) = %d, want 32767", got)
	}
	if got := vm.SignExtend8(0x80); got != -128 {
		t.Errorf("SignExtend8(0x80) = %d, want -128", got)
	}
	if got := vm.SignExtend8(0x7F); got != 127 {
		t.Errorf("SignExtend8(0x7F) = %d, want 127", got)
	}
}
