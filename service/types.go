package service

import "github.com/djc132/Computer-Architecture-Project/vm"

// RegisterState is a snapshot of the architecturally visible registers
type RegisterState struct {
	Registers        [32]uint32 `json:"registers"`
	PC               uint32     `json:"pc"`
	HI               uint32     `json:"hi"`
	LO               uint32     `json:"lo"`
	Cycles           uint64     `json:"cycles"`
	InstructionCount uint64     `json:"instructionCount"`
}

// ExecutionState describes the machine's lifecycle state for UIs
type ExecutionState string

const (
	StateUnloaded ExecutionState = "unloaded"
	StateReady    ExecutionState = "ready"
	StateHalted   ExecutionState = "halted"
	StateError    ExecutionState = "error"
)

// InstructionInfo describes one loaded instruction for listings
type InstructionInfo struct {
	Index   int    `json:"index"`
	Address uint32 `json:"address"`
	Source  string `json:"source"`
	Word    uint32 `json:"word"`
}

// MemoryRegion is a contiguous memory range for display
type MemoryRegion struct {
	Address uint32 `json:"address"`
	Data    []byte `json:"data"`
}

// TouchedRange is a collapsed run of touched byte addresses,
// inclusive on both ends
type TouchedRange struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// StepInfo describes one committed instruction
type StepInfo struct {
	Instruction InstructionInfo   `json:"instruction"`
	Fields      vm.Fields         `json:"fields"`
	Control     vm.ControlSignals `json:"control"`
	NextPC      uint32            `json:"nextPc"`
}

// PipelineStageNames are the classic five stages, newest instruction
// first. The pipeline view is a historical window over committed
// instructions, not a timing model.
var PipelineStageNames = [5]string{"IF", "ID", "EX", "MEM", "WB"}

// PipelineStage pairs a stage name with the instruction occupying it.
// Instruction is nil while the window is still filling.
type PipelineStage struct {
	Stage       string           `json:"stage"`
	Instruction *InstructionInfo `json:"instruction,omitempty"`
}
