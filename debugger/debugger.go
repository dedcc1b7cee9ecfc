// Package debugger provides interactive execution control over the
// simulator: breakpoints, stepping, and the TUI and GUI front ends.
package debugger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/djc132/Computer-Architecture-Project/service"
	"github.com/djc132/Computer-Architecture-Project/vm"
)

// ErrQuit is returned by ExecuteCommand when the user asks to leave
var ErrQuit = errors.New("quit")

// Debugger drives a simulator service interactively
type Debugger struct {
	Service     *service.SimulatorService
	Breakpoints *BreakpointManager
	History     *CommandHistory

	// Last command, repeated on empty input
	LastCommand string

	// Output buffer consumed by the front ends
	Output strings.Builder
}

// NewDebugger creates a debugger over a simulator service
func NewDebugger(svc *service.SimulatorService) *Debugger {
	return &Debugger{
		Service:     svc,
		Breakpoints: NewBreakpointManager(),
		History:     NewCommandHistory(),
	}
}

// ResolveAddress resolves a label or a numeric address
func (d *Debugger) ResolveAddress(s string) (uint32, error) {
	if addr, ok := d.Service.Symbols()[s]; ok {
		return addr, nil
	}

	var parsed uint64
	var err error
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		parsed, err = strconv.ParseUint(s[2:], 16, 32)
	} else {
		parsed, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid address: %q", s)
	}
	return uint32(parsed), nil
}

// StepN executes up to n instructions, stopping early on halt or error
func (d *Debugger) StepN(n int) error {
	for i := 0; i < n; i++ {
		info, err := d.Service.Step()
		if err != nil {
			return err
		}
		d.printStep(info)
	}
	return nil
}

// Continue resumes execution until a breakpoint, halt, error or the
// per-run step cap.
func (d *Debugger) Continue() error {
	limit := d.Service.Machine().RunStepLimit
	if limit <= 0 {
		limit = vm.DefaultRunStepLimit
	}

	for steps := 0; steps < limit; steps++ {
		info, err := d.Service.Step()
		if err != nil {
			return err
		}
		if d.Breakpoints.ShouldBreak(info.NextPC) {
			fmt.Fprintf(&d.Output, "breakpoint hit at 0x%08X\n", info.NextPC)
			return nil
		}
		if d.Service.State() != service.StateReady {
			d.printStep(info)
			return nil
		}
	}
	return vm.ErrStepLimit
}

// ExecuteCommand parses and runs one debugger command line
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

// printStep writes a one-line summary of a committed instruction
func (d *Debugger) printStep(info *service.StepInfo) {
	fmt.Fprintf(&d.Output, "0x%08X: %-28s -> PC=0x%08X\n",
		info.Instruction.Address, info.Instruction.Source, info.NextPC)
}

// TakeOutput returns and clears the buffered output
func (d *Debugger) TakeOutput() string {
	out := d.Output.String()
	d.Output.Reset()
	return out
}
