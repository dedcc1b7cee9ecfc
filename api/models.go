package api

import (
	"time"

	"github.com/djc132/Computer-Architecture-Project/service"
)

// SessionCreateResponse is returned when a session is created
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoadProgramRequest asks a session to assemble and load source text
type LoadProgramRequest struct {
	Source   string `json:"source"`
	Filename string `json:"filename,omitempty"`
}

// LoadProgramResponse reports the outcome of a load
type LoadProgramResponse struct {
	Success            bool              `json:"success"`
	InstructionsLoaded int               `json:"instructionsLoaded"`
	Error              string            `json:"error,omitempty"`
	Symbols            map[string]uint32 `json:"symbols,omitempty"`
}

// StepResponse reports one committed instruction
type StepResponse struct {
	Success bool              `json:"success"`
	State   string            `json:"state"`
	Step    *service.StepInfo `json:"step,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// RunResponse reports a run invocation
type RunResponse struct {
	Success       bool   `json:"success"`
	State         string `json:"state"`
	StepsExecuted int    `json:"stepsExecuted"`
	Error         string `json:"error,omitempty"`
}

// StatusResponse reports the session's execution state
type StatusResponse struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
	PC        uint32 `json:"pc"`
	Cycles    uint64 `json:"cycles"`
	Error     string `json:"error,omitempty"`
}

// RegistersResponse is the register snapshot
type RegistersResponse struct {
	Registers        [32]uint32 `json:"registers"`
	PC               uint32     `json:"pc"`
	HI               uint32     `json:"hi"`
	LO               uint32     `json:"lo"`
	Cycles           uint64     `json:"cycles"`
	InstructionCount uint64     `json:"instructionCount"`
}

// MemoryResponse is a window of memory contents
type MemoryResponse struct {
	Address uint32 `json:"address"`
	Data    []byte `json:"data"`
}

// TouchedResponse lists the collapsed touched-memory ranges
type TouchedResponse struct {
	Ranges []service.TouchedRange `json:"ranges"`
}

// InstructionsResponse lists the loaded program
type InstructionsResponse struct {
	Instructions []service.InstructionInfo `json:"instructions"`
}

// PipelineResponse is the historical pipeline window
type PipelineResponse struct {
	Stages []service.PipelineStage `json:"stages"`
}

// DebugModeRequest toggles trace collection
type DebugModeRequest struct {
	Enabled bool `json:"enabled"`
}

// VersionResponse reports build information
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// ErrorResponse is the generic error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// Event is a message pushed over the websocket event stream
type Event struct {
	Type      string      `json:"type"` // "loaded", "step", "run", "reset", "halted"
	SessionID string      `json:"sessionId"`
	Payload   interface{} `json:"payload,omitempty"`
}
