package encoder_test

import (
	"strings"
	"testing"

	"github.com/djc132/Computer-Architecture-Project/encoder"
	"github.com/djc132/Computer-Architecture-Project/parser"
	"github.com/djc132/Computer-Architecture-Project/vm"
)

// assemble runs both passes over a source string
func assemble(t *testing.T, source string) ([]vm.Instruction, map[string]uint32) {
	t.Helper()
	program, err := parser.NewParser(source, "test.s").Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	instructions, symbols, err := encoder.Assemble(program)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	return instructions, symbols
}

// encodeOne assembles a single instruction and returns its word
func encodeOne(t *testing.T, text string) uint32 {
	t.Helper()
	instructions, _ := assemble(t, text)
	if len(instructions) != 1 {
		t.Fatalf("expected 1 instruction, got %d", len(instructions))
	}
	return instructions[0].Word
}

// assembleError asserts that assembly fails and returns the error text
func assembleError(t *testing.T, source string) string {
	t.Helper()
	program, err := parser.NewParser(source, "test.s").Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	_, _, err = encoder.Assemble(program)
	if err == nil {
		t.Fatalf("Assemble(%q) should have failed", source)
	}
	return err.Error()
}

func TestEncodeCanonicalWords(t *testing.T) {
	tests := []struct {
		text string
		want uint32
	}{
		{"add $t0, $t1, $t2", 0x012A4020},
		{"addi $t0, $zero, 1", 0x20080001},
		{"j 0x00400000", 0x08100000},
		{"nop", 0x00000000},
		{"syscall", 0x0000000C},
		{"sub $s0, $s1, $s2", 0x02328022},
		{"and $t0, $t1, $t2", 0x012A4024},
		{"or $t0, $t1, $t2", 0x012A4025},
		{"xor $t0, $t1, $t2", 0x012A4026},
		{"nor $t0, $t1, $t2", 0x012A4027},
		{"slt $t0, $t1, $t2", 0x012A402A},
		{"sltu $t0, $t1, $t2", 0x012A402B},
		{"lui $t0, 0xDEAD", 0x3C08DEAD},
		{"ori $t0, $t0, 0xBEEF", 0x3508BEEF},
		{"lw $t2, 0($t0)", 0x8D0A0000},
		{"sw $t1, 0($t0)", 0xAD090000},
	}

	for _, tt := range tests {
		if got := encodeOne(t, tt.text); got != tt.want {
			t.Errorf("encode(%q) = 0x%08X, want 0x%08X", tt.text, got, tt.want)
		}
	}
}

func TestEncodeShift(t *testing.T) {
	// sll rd, rt, shamt encodes rs=0
	word := encodeOne(t, "sll $t0, $t1, 4")
	f := vm.Decode(word)
	if f.Opcode != 0 || f.Rs != 0 || f.Rt != 9 || f.Rd != 8 || f.Shamt != 4 || f.Funct != vm.FunctSll {
		t.Errorf("sll fields = %+v", f)
	}

	// shamt is masked to 5 bits
	word = encodeOne(t, "srl $t0, $t1, 33")
	if f := vm.Decode(word); f.Shamt != 1 {
		t.Errorf("srl shamt = %d, want 1 (masked)", f.Shamt)
	}
}

func TestEncodeVariableShift(t *testing.T) {
	// sllv rd, rt, rs
	word := encodeOne(t, "sllv $t0, $t1, $t2")
	f := vm.Decode(word)
	if f.Rs != 10 || f.Rt != 9 || f.Rd != 8 || f.Funct != vm.FunctSllv {
		t.Errorf("sllv fields = %+v", f)
	}
}

func TestEncodeMulDivZeroRd(t *testing.T) {
	for _, text := range []string{"mult $t0, $t1", "multu $t0, $t1", "div $t0, $t1", "divu $t0, $t1"} {
		word := encodeOne(t, text)
		f := vm.Decode(word)
		if f.Rd != 0 || f.Shamt != 0 {
			t.Errorf("%q: rd=%d shamt=%d, want both 0", text, f.Rd, f.Shamt)
		}
		if f.Rs != 8 || f.Rt != 9 {
			t.Errorf("%q: rs=%d rt=%d, want 8, 9", text, f.Rs, f.Rt)
		}
	}
}

func TestEncodeMoveFromZeroUnusedFields(t *testing.T) {
	word := encodeOne(t, "mfhi $t3")
	f := vm.Decode(word)
	if f.Rs != 0 || f.Rt != 0 || f.Rd != 11 || f.Shamt != 0 || f.Funct != vm.FunctMfhi {
		t.Errorf("mfhi fields = %+v", f)
	}

	word = encodeOne(t, "jr $ra")
	f = vm.Decode(word)
	if f.Rs != 31 || f.Rt != 0 || f.Rd != 0 || f.Funct != vm.FunctJr {
		t.Errorf("jr fields = %+v", f)
	}
}

func TestEncodeNegativeImmediate(t *testing.T) {
	// -3 encodes as its low 16 bits
	word := encodeOne(t, "addi $t1, $zero, -3")
	if word != 0x2009FFFD {
		t.Errorf("addi -3 = 0x%08X, want 0x2009FFFD", word)
	}

	// Oversized immediates are masked, not rejected
	word = encodeOne(t, "addi $t0, $zero, 0x12345")
	if word&0xFFFF != 0x2345 {
		t.Errorf("immediate = 0x%04X, want 0x2345 (masked)", word&0xFFFF)
	}
}

func TestEncodeMemoryOperand(t *testing.T) {
	word := encodeOne(t, "lw $t2, -8($sp)")
	f := vm.Decode(word)
	if f.Opcode != vm.OpcodeLw || f.Rs != 29 || f.Rt != 10 {
		t.Errorf("lw fields = %+v", f)
	}
	if vm.SignExtend16(f.Immediate) != -8 {
		t.Errorf("lw offset = %d, want -8", vm.SignExtend16(f.Immediate))
	}
}

func TestEncodeBranchOffset(t *testing.T) {
	// Branch at index 0, label at index 3: offset = 3 - 0 - 1 = 2
	source := `
        beq $t0, $t0, target
        nop
        nop
target: nop
`
	instructions, _ := assemble(t, source)
	if got := instructions[0].Word & 0xFFFF; got != 2 {
		t.Errorf("branch offset = %d, want 2", got)
	}
}

func TestEncodeBackwardBranch(t *testing.T) {
	// Branch at index 2 back to index 0: offset = 0 - 2 - 1 = -3
	source := `
loop:   nop
        nop
        bne $t0, $zero, loop
`
	instructions, _ := assemble(t, source)
	if got := instructions[2].Word & 0xFFFF; got != 0xFFFD {
		t.Errorf("branch offset = 0x%04X, want 0xFFFD (-3)", got)
	}
}

func TestEncodeJumpToLabel(t *testing.T) {
	source := `
        j fn
        nop
fn:     nop
`
	instructions, symbols := assemble(t, source)

	// fn is instruction 2: address 0x00400008, 26-bit field is addr >> 2
	if symbols["fn"] != 0x00400008 {
		t.Errorf("fn address = 0x%08X, want 0x00400008", symbols["fn"])
	}
	want := uint32(vm.OpcodeJ)<<26 | 0x00400008>>2
	if instructions[0].Word != want {
		t.Errorf("j fn = 0x%08X, want 0x%08X", instructions[0].Word, want)
	}
}

func TestEncodeInstructionAddresses(t *testing.T) {
	instructions, _ := assemble(t, "nop\nnop\nnop")
	for i, inst := range instructions {
		want := uint32(0x00400000 + 4*i)
		if inst.Address != want {
			t.Errorf("instruction %d address = 0x%08X, want 0x%08X", i, inst.Address, want)
		}
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		source  string
		wantMsg string
	}{
		{"frobnicate $t0, $t1", "unknown instruction"},
		{"add $t0, $t1", "expected 3 operands"},
		{"add $t0, $t1, 5", "expected register"},
		{"beq $t0, $t1, nowhere", "undefined label"},
		{"lw $t0, $t1", "expected offset(base)"},
		{"jr 42", "expected register"},
	}

	for _, tt := range tests {
		msg := assembleError(t, tt.source)
		if !strings.Contains(msg, tt.wantMsg) {
			t.Errorf("error for %q = %q, want substring %q", tt.source, msg, tt.wantMsg)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	// The rs and rt fields planted by the encoder must come back out of
	// the decoder
	sources := []string{
		"add $s0, $s1, $s2",
		"sll $t0, $t1, 31",
		"addi $a0, $sp, -4",
		"lw $ra, 20($sp)",
		"lui $gp, 0x1000",
	}

	for _, text := range sources {
		instructions, _ := assemble(t, text)
		in := instructions[0]
		f := vm.Decode(in.Word)
		if f.Rs != in.Rs || f.Rt != in.Rt {
			t.Errorf("%q: decode rs/rt = %d/%d, encoded %d/%d", text, f.Rs, f.Rt, in.Rs, in.Rt)
		}
	}
}
