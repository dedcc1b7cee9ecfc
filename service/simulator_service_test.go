package service_test

import (
	"errors"
	"testing"

	"github.com/djc132/Computer-Architecture-Project/service"
	"github.com/djc132/Computer-Architecture-Project/vm"
)

func newService(t *testing.T, source string) *service.SimulatorService {
	t.Helper()
	svc := service.NewSimulatorService(vm.NewMachine())
	if source != "" {
		if _, err := svc.Load(source, "test.s"); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}
	return svc
}

func TestServiceLifecycleStates(t *testing.T) {
	svc := newService(t, "")
	if got := svc.State(); got != service.StateUnloaded {
		t.Errorf("state = %q, want unloaded", got)
	}

	svc = newService(t, "addi $v0, $zero, 10\nsyscall")
	if got := svc.State(); got != service.StateReady {
		t.Errorf("state after load = %q, want ready", got)
	}

	if _, err := svc.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := svc.State(); got != service.StateHalted {
		t.Errorf("state after clean halt = %q, want halted", got)
	}

	svc.Reset()
	if got := svc.State(); got != service.StateReady {
		t.Errorf("state after reset = %q, want ready", got)
	}
}

func TestServiceErrorState(t *testing.T) {
	svc := newService(t, "lui $t0, 0x0050\njr $t0")
	if _, err := svc.Run(); !errors.Is(err, vm.ErrPCOutOfBounds) {
		t.Fatalf("Run = %v, want ErrPCOutOfBounds", err)
	}
	if got := svc.State(); got != service.StateError {
		t.Errorf("state = %q, want error", got)
	}
	if svc.LastError() == nil {
		t.Error("LastError should be set")
	}
}

func TestServiceStepInfo(t *testing.T) {
	svc := newService(t, "addi $t0, $zero, 7")

	info, err := svc.Step()
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if info.Instruction.Source != "addi $t0, $zero, 7" {
		t.Errorf("source = %q", info.Instruction.Source)
	}
	if info.Instruction.Index != 0 {
		t.Errorf("index = %d, want 0", info.Instruction.Index)
	}
	if info.NextPC != vm.TextSegmentBase+4 {
		t.Errorf("nextPC = 0x%08X", info.NextPC)
	}
}

func TestServiceRegistersSnapshot(t *testing.T) {
	svc := newService(t, "addi $t0, $zero, 9")
	if _, err := svc.Run(); err != nil && !errors.Is(err, vm.ErrPCOutOfBounds) {
		t.Fatalf("Run failed: %v", err)
	}

	regs := svc.Registers()
	if regs.Registers[8] != 9 {
		t.Errorf("$t0 = %d, want 9", regs.Registers[8])
	}
	if regs.InstructionCount != 1 {
		t.Errorf("instruction count = %d, want 1", regs.InstructionCount)
	}
}

func TestServiceTouchedRangesCollapse(t *testing.T) {
	svc := newService(t, `
addi $t0, $zero, 0x100
addi $t1, $zero, 1
sw   $t1, 0($t0)
sw   $t1, 4($t0)
sb   $t1, 0x20($t0)
`)
	if _, err := svc.Run(); err != nil && !errors.Is(err, vm.ErrPCOutOfBounds) {
		t.Fatalf("Run failed: %v", err)
	}

	ranges := svc.TouchedRanges()
	want := []service.TouchedRange{
		{Start: 0x100, End: 0x107},
		{Start: 0x120, End: 0x120},
	}
	if len(ranges) != len(want) {
		t.Fatalf("ranges = %+v, want %+v", ranges, want)
	}
	for i := range want {
		if ranges[i] != want[i] {
			t.Fatalf("ranges = %+v, want %+v", ranges, want)
		}
	}
}

func TestServicePipelineWindow(t *testing.T) {
	svc := newService(t, `
addi $t0, $zero, 1
addi $t1, $zero, 2
addi $t2, $zero, 3
`)

	// Before any execution every stage is empty
	for _, stage := range svc.Pipeline() {
		if stage.Instruction != nil {
			t.Fatalf("stage %s should be empty before execution", stage.Stage)
		}
	}

	if _, err := svc.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if _, err := svc.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	stages := svc.Pipeline()
	if stages[0].Stage != "IF" || stages[0].Instruction == nil {
		t.Fatalf("IF stage = %+v", stages[0])
	}
	// Newest instruction sits in IF, the previous one in ID
	if stages[0].Instruction.Index != 1 {
		t.Errorf("IF holds index %d, want 1", stages[0].Instruction.Index)
	}
	if stages[1].Instruction == nil || stages[1].Instruction.Index != 0 {
		t.Errorf("ID stage = %+v, want index 0", stages[1])
	}
	if stages[2].Instruction != nil {
		t.Errorf("EX should still be empty, got %+v", stages[2])
	}

	// The window is cleared on reset
	svc.Reset()
	if svc.Pipeline()[0].Instruction != nil {
		t.Error("pipeline window should clear on reset")
	}
}

func TestServiceInstructionsListing(t *testing.T) {
	svc := newService(t, "nop\naddi $t0, $zero, 1")

	instructions := svc.Instructions()
	if len(instructions) != 2 {
		t.Fatalf("count = %d, want 2", len(instructions))
	}
	if instructions[0].Address != vm.TextSegmentBase {
		t.Errorf("address 0 = 0x%08X", instructions[0].Address)
	}
	if instructions[1].Source != "addi $t0, $zero, 1" {
		t.Errorf("source 1 = %q", instructions[1].Source)
	}
}

func TestServiceSymbols(t *testing.T) {
	svc := newService(t, "main: nop\nloop: j loop")

	symbols := svc.Symbols()
	if symbols["main"] != vm.TextSegmentBase {
		t.Errorf("main = 0x%08X", symbols["main"])
	}
	if symbols["loop"] != vm.TextSegmentBase+4 {
		t.Errorf("loop = 0x%08X", symbols["loop"])
	}
}

func TestServiceDebugModeTrace(t *testing.T) {
	svc := newService(t, "addi $t0, $zero, 1")
	svc.SetDebugMode(true)

	if _, err := svc.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	entries := svc.TraceEntries()
	if len(entries) != 1 {
		t.Fatalf("trace entries = %d, want 1", len(entries))
	}
	if entries[0].Source != "addi $t0, $zero, 1" {
		t.Errorf("trace source = %q", entries[0].Source)
	}
}
