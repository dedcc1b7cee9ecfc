package vm_test

import (
	"errors"
	"testing"

	"github.com/djc132/Computer-Architecture-Project/vm"
)

// End-to-end programs exercising the full assemble-and-run path.

func TestProgramArithmeticAndSign(t *testing.T) {
	machine := run(t, `
addi $t0, $zero, 5
addi $t1, $zero, -3
add  $t2, $t0, $t1
`)
	if got := reg(machine, 8); got != 5 {
		t.Errorf("$t0 = 0x%08X, want 5", got)
	}
	if got := reg(machine, 9); got != 0xFFFFFFFD {
		t.Errorf("$t1 = 0x%08X, want 0xFFFFFFFD", got)
	}
	if got := reg(machine, 10); got != 2 {
		t.Errorf("$t2 = 0x%08X, want 2", got)
	}
	if machine.CPU.PC != 0x0040000C {
		t.Errorf("PC = 0x%08X, want 0x0040000C", machine.CPU.PC)
	}
}

func TestProgramLuiOriComposition(t *testing.T) {
	machine := run(t, `
lui  $t0, 0xDEAD
ori  $t0, $t0, 0xBEEF
`)
	if got := reg(machine, 8); got != 0xDEADBEEF {
		t.Errorf("$t0 = 0x%08X, want 0xDEADBEEF", got)
	}
}

func TestProgramMemoryRoundTrip(t *testing.T) {
	machine := run(t, `
addi $t0, $zero, 0x100
addi $t1, $zero, 0x42
sw   $t1, 0($t0)
lw   $t2, 0($t0)
`)
	if got := reg(machine, 10); got != 0x42 {
		t.Errorf("$t2 = 0x%08X, want 0x42", got)
	}

	// Big-endian layout: the low byte lands at the highest address
	want := []byte{0x00, 0x00, 0x00, 0x42}
	for i, b := range want {
		if got := machine.Memory.Bytes(0x100+uint32(i), 1)[0]; got != b {
			t.Errorf("memory[0x%X] = 0x%02X, want 0x%02X", 0x100+i, got, b)
		}
	}

	for addr := uint32(0x100); addr <= 0x103; addr++ {
		if !machine.Memory.Touched(addr) {
			t.Errorf("address 0x%X should be in the touched set", addr)
		}
	}
}

func TestProgramLoopWithBranch(t *testing.T) {
	machine := run(t, `
       addi $t0, $zero, 3
       addi $t1, $zero, 0
loop:  addi $t1, $t1, 1
       addi $t0, $t0, -1
       bne  $t0, $zero, loop
`)
	if got := reg(machine, 8); got != 0 {
		t.Errorf("$t0 = %d, want 0", got)
	}
	if got := reg(machine, 9); got != 3 {
		t.Errorf("$t1 = %d, want 3", got)
	}
	// Two setup instructions plus three trips around the three-
	// instruction loop body
	if got := machine.CPU.InstructionCount; got != 11 {
		t.Errorf("instruction count = %d, want 11", got)
	}
}

func TestProgramJumpAndLinkReturn(t *testing.T) {
	machine := run(t, `
       jal  fn
       addi $v0, $zero, 10
       syscall
fn:    addi $v1, $zero, 7
       jr   $ra
`)
	if got := reg(machine, 3); got != 7 {
		t.Errorf("$v1 = %d, want 7", got)
	}
	if got := reg(machine, 2); got != 10 {
		t.Errorf("$v0 = %d, want 10", got)
	}
	if !machine.Halted {
		t.Error("machine should be halted")
	}
	// $ra points at the instruction following the jal
	if got := reg(machine, 31); got != 0x00400004 {
		t.Errorf("$ra = 0x%08X, want 0x00400004", got)
	}
}

func TestJumpStaysInRegion(t *testing.T) {
	machine := load(t, `
        j target
        nop
target: nop
`)
	preJump := machine.CPU.PC
	if _, err := machine.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if machine.CPU.PC>>28 != (preJump+4)>>28 {
		t.Errorf("jump left the 256MB region: PC=0x%08X", machine.CPU.PC)
	}
	if machine.CPU.PC != 0x00400008 {
		t.Errorf("PC = 0x%08X, want 0x00400008", machine.CPU.PC)
	}
}

func TestDeterminism(t *testing.T) {
	source := `
       addi $t0, $zero, 10
       addi $t1, $zero, 0
loop:  addi $t1, $t1, 3
       addi $t0, $t0, -1
       sw   $t1, 0x20($t0)
       bne  $t0, $zero, loop
`
	first := run(t, source)
	second := run(t, source)

	if first.CPU.R != second.CPU.R {
		t.Error("register files differ between identical runs")
	}
	if first.CPU.PC != second.CPU.PC || first.CPU.HI != second.CPU.HI || first.CPU.LO != second.CPU.LO {
		t.Error("special registers differ between identical runs")
	}
	for addr := uint32(0); addr < 0x40; addr += 4 {
		if first.Memory.ReadWord(addr) != second.Memory.ReadWord(addr) {
			t.Errorf("memory differs at 0x%X", addr)
		}
	}
}

func TestResetIdempotence(t *testing.T) {
	machine := run(t, `
addi $t0, $zero, 0x55
sw   $t0, 0x10($zero)
`)

	machine.Reset()
	once := *machine.CPU
	machine.Reset()
	twice := *machine.CPU

	if once != twice {
		t.Error("reset(); reset() differs from reset()")
	}
	if machine.CPU.PC != vm.TextSegmentBase {
		t.Errorf("PC after reset = 0x%08X, want 0x%08X", machine.CPU.PC, uint32(vm.TextSegmentBase))
	}
	if machine.Memory.ReadWord(0x10) != 0 {
		t.Error("memory should be zeroed by reset")
	}
	if !machine.Loaded {
		t.Error("reset must keep the loaded program")
	}
	if len(machine.Memory.TouchedAddresses()) != 4 {
		// the ReadWord above re-touched its word
		t.Error("touched set should be cleared by reset")
	}
}

func TestLoadIsAtomic(t *testing.T) {
	machine := run(t, "addi $t0, $zero, 9")
	if got := len(machine.Program); got != 1 {
		t.Fatalf("program length = %d, want 1", got)
	}

	// A failing load must leave the old program in place
	bad := "addi $t0, $zero, 1\nbogus $t0"
	if _, err := loadStringErr(machine, bad); err == nil {
		t.Fatal("bad program should fail to load")
	}
	if got := len(machine.Program); got != 1 {
		t.Errorf("program length after failed load = %d, want 1", got)
	}
	if machine.Program[0].Word != 0x20080009 {
		t.Error("original program was disturbed by a failed load")
	}
}

func TestTraceCollectsOnlyInDebugMode(t *testing.T) {
	source := `
addi $t0, $zero, 1
addi $t1, $zero, 2
`
	machine := load(t, source)
	if _, err := machine.Run(); !errors.Is(err, vm.ErrPCOutOfBounds) {
		t.Fatalf("run = %v, want ErrPCOutOfBounds", err)
	}
	if machine.Trace.Len() != 0 {
		t.Errorf("trace without debug mode = %d entries, want 0", machine.Trace.Len())
	}

	machine = load(t, source)
	machine.DebugMode = true
	if _, err := machine.Run(); !errors.Is(err, vm.ErrPCOutOfBounds) {
		t.Fatalf("run = %v, want ErrPCOutOfBounds", err)
	}

	entries := machine.Trace.Entries()
	if len(entries) != 2 {
		t.Fatalf("trace = %d entries, want 2", len(entries))
	}

	// The entry carries the pre-execution PC and the post-execution
	// register snapshot
	if entries[0].PC != vm.TextSegmentBase {
		t.Errorf("entry 0 PC = 0x%08X, want 0x%08X", entries[0].PC, uint32(vm.TextSegmentBase))
	}
	if entries[0].Registers[8] != 1 {
		t.Errorf("entry 0 $t0 = %d, want 1", entries[0].Registers[8])
	}
	if entries[1].Registers[9] != 2 {
		t.Errorf("entry 1 $t1 = %d, want 2", entries[1].Registers[9])
	}
	if entries[0].Cycle != 1 || entries[1].Cycle != 2 {
		t.Errorf("cycles = %d, %d, want 1, 2", entries[0].Cycle, entries[1].Cycle)
	}

	// Trace is cleared on reset
	machine.Reset()
	if machine.Trace.Len() != 0 {
		t.Error("trace should be cleared by reset")
	}
}
