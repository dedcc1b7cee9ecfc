// Package service exposes a thread-safe façade over the machine for
// the UI collaborators (TUI, GUI, HTTP API). UIs consume read-only
// snapshots; all mutation goes through Load, Step, Run and Reset.
package service

import (
	"sync"

	"github.com/djc132/Computer-Architecture-Project/loader"
	"github.com/djc132/Computer-Architecture-Project/vm"
)

// pipelineWindowSize is the depth of the historical pipeline view
const pipelineWindowSize = 5

// SimulatorService owns a machine and serializes access to it. The
// machine itself is an exclusive resource; the service's mutex is what
// makes it shareable between a UI thread and an execution driver.
type SimulatorService struct {
	mu      sync.RWMutex
	machine *vm.Machine

	// Most recent committed instructions, newest first, for the
	// pipeline view.
	window []vm.Instruction
}

// NewSimulatorService creates a service around a machine
func NewSimulatorService(machine *vm.Machine) *SimulatorService {
	return &SimulatorService{machine: machine}
}

// Machine returns the underlying machine (for tests and the debugger)
func (s *SimulatorService) Machine() *vm.Machine {
	return s.machine
}

// Load assembles source text and installs it. On error the previously
// loaded program is untouched. Returns the number of instructions
// loaded.
func (s *SimulatorService) Load(source, filename string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := loader.LoadString(s.machine, source, filename)
	if err != nil {
		return 0, err
	}
	s.window = nil
	return count, nil
}

// Step executes a single instruction
func (s *SimulatorService) Step() (*StepInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.machine.Step()
	if err != nil {
		return nil, err
	}
	s.recordWindow(result)

	info := s.stepInfo(result)
	return &info, nil
}

// Run executes until halt, error or the per-run step cap. Returns the
// number of instructions committed.
func (s *SimulatorService) Run() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.machine.RunWith(s.recordWindow)
}

// Reset re-zeroes the machine state, keeping the loaded program
func (s *SimulatorService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.machine.Reset()
	s.window = nil
}

// SetDebugMode toggles trace collection
func (s *SimulatorService) SetDebugMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.machine.DebugMode = enabled
}

// State reports the lifecycle state for UIs
func (s *SimulatorService) State() ExecutionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case !s.machine.Loaded:
		return StateUnloaded
	case s.machine.Halted && s.machine.LastError != nil:
		return StateError
	case s.machine.Halted:
		return StateHalted
	default:
		return StateReady
	}
}

// LastError returns the most recent terminal error, if any
func (s *SimulatorService) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine.LastError
}

// Registers returns a snapshot of the register state
func (s *SimulatorService) Registers() RegisterState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cpu := s.machine.CPU
	return RegisterState{
		Registers:        cpu.R,
		PC:               cpu.PC,
		HI:               cpu.HI,
		LO:               cpu.LO,
		Cycles:           cpu.Cycles,
		InstructionCount: cpu.InstructionCount,
	}
}

// Memory returns a copy of a memory range
func (s *SimulatorService) Memory(address, length uint32) MemoryRegion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return MemoryRegion{
		Address: address,
		Data:    s.machine.Memory.Bytes(address, length),
	}
}

// TouchedRanges returns the touched byte addresses collapsed into
// inclusive ranges, for compact display.
func (s *SimulatorService) TouchedRanges() []TouchedRange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addrs := s.machine.Memory.TouchedAddresses()
	if len(addrs) == 0 {
		return nil
	}

	ranges := []TouchedRange{{Start: addrs[0], End: addrs[0]}}
	for _, addr := range addrs[1:] {
		last := &ranges[len(ranges)-1]
		if addr == last.End+1 {
			last.End = addr
		} else {
			ranges = append(ranges, TouchedRange{Start: addr, End: addr})
		}
	}
	return ranges
}

// Instructions lists the loaded program
func (s *SimulatorService) Instructions() []InstructionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]InstructionInfo, len(s.machine.Program))
	for i := range s.machine.Program {
		out[i] = instructionInfo(i, &s.machine.Program[i])
	}
	return out
}

// Symbols returns the label table as label -> load address
func (s *SimulatorService) Symbols() map[string]uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]uint32, len(s.machine.Symbols))
	for name, addr := range s.machine.Symbols {
		out[name] = addr
	}
	return out
}

// TraceEntries returns the collected trace log
func (s *SimulatorService) TraceEntries() []vm.TraceEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.machine.Trace.Entries()
	out := make([]vm.TraceEntry, len(entries))
	copy(out, entries)
	return out
}

// Pipeline returns the historical pipeline view: the newest committed
// instruction in IF, the one before it in ID, and so on.
func (s *SimulatorService) Pipeline() []PipelineStage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stages := make([]PipelineStage, len(PipelineStageNames))
	for i, name := range PipelineStageNames {
		stages[i] = PipelineStage{Stage: name}
		if i < len(s.window) {
			inst := s.window[i]
			info := instructionInfo(s.machine.InstructionIndex(inst.Address), &inst)
			stages[i].Instruction = &info
		}
	}
	return stages
}

// recordWindow pushes a committed instruction onto the pipeline window
func (s *SimulatorService) recordWindow(result *vm.StepResult) {
	s.window = append([]vm.Instruction{result.Instruction}, s.window...)
	if len(s.window) > pipelineWindowSize {
		s.window = s.window[:pipelineWindowSize]
	}
}

func (s *SimulatorService) stepInfo(result *vm.StepResult) StepInfo {
	return StepInfo{
		Instruction: instructionInfo(s.machine.InstructionIndex(result.Instruction.Address), &result.Instruction),
		Fields:      result.Fields,
		Control:     result.Control,
		NextPC:      result.NextPC,
	}
}

func instructionInfo(index int, inst *vm.Instruction) InstructionInfo {
	return InstructionInfo{
		Index:   index,
		Address: inst.Address,
		Source:  inst.Source,
		Word:    inst.Word,
	}
}
