package debugger

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/djc132/Computer-Architecture-Project/parser"
)

const helpText = `Commands:
  step [n], s [n]      execute n instructions (default 1)
  continue, c          run until breakpoint, halt or step cap
  break <addr>, b      set breakpoint at label or address
  tbreak <addr>        set temporary breakpoint
  delete <id>          delete breakpoint by id
  breakpoints, bp      list breakpoints
  registers, regs      show register file, PC, HI, LO
  memory <addr> [n]    dump n bytes of memory (default 64)
  touched              show touched memory ranges
  pipeline             show the pipeline stage window
  trace on|off         toggle trace collection (debug mode)
  symbols              list labels
  reset                reset processor state, keep program
  help, h              this text
  quit, q              leave the debugger`

// handleCommand dispatches one parsed command
func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "help", "h", "?":
		fmt.Fprintln(&d.Output, helpText)
		return nil

	case "step", "s":
		n := 1
		if len(args) > 0 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil || parsed < 1 {
				return fmt.Errorf("invalid step count: %q", args[0])
			}
			n = parsed
		}
		return d.StepN(n)

	case "continue", "c", "run":
		return d.Continue()

	case "break", "b", "tbreak":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <label|address>", cmd)
		}
		addr, err := d.ResolveAddress(args[0])
		if err != nil {
			return err
		}
		bp := d.Breakpoints.Add(addr, cmd == "tbreak")
		fmt.Fprintf(&d.Output, "breakpoint %d at 0x%08X\n", bp.ID, bp.Address)
		return nil

	case "delete", "d":
		if len(args) != 1 {
			return fmt.Errorf("usage: delete <id>")
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid breakpoint id: %q", args[0])
		}
		return d.Breakpoints.Delete(id)

	case "breakpoints", "bp":
		d.printBreakpoints()
		return nil

	case "registers", "regs", "r":
		d.printRegisters()
		return nil

	case "memory", "mem", "x":
		return d.dumpMemory(args)

	case "touched":
		d.printTouched()
		return nil

	case "pipeline", "pipe":
		d.printPipeline()
		return nil

	case "trace":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return fmt.Errorf("usage: trace on|off")
		}
		d.Service.SetDebugMode(args[0] == "on")
		return nil

	case "symbols", "sym":
		d.printSymbols()
		return nil

	case "reset":
		d.Service.Reset()
		fmt.Fprintln(&d.Output, "processor reset")
		return nil

	case "quit", "q", "exit":
		return ErrQuit

	default:
		return fmt.Errorf("unknown command: %q (try help)", cmd)
	}
}

func (d *Debugger) printBreakpoints() {
	bps := d.Breakpoints.All()
	if len(bps) == 0 {
		fmt.Fprintln(&d.Output, "no breakpoints")
		return
	}
	for _, bp := range bps {
		state := "enabled"
		if !bp.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(&d.Output, "%3d  0x%08X  %s  hits=%d\n", bp.ID, bp.Address, state, bp.HitCount)
	}
}

func (d *Debugger) printRegisters() {
	regs := d.Service.Registers()
	for i := 0; i < 32; i += 4 {
		for j := i; j < i+4; j++ {
			fmt.Fprintf(&d.Output, "%-5s 0x%08X   ", parser.RegisterName(j), regs.Registers[j])
		}
		fmt.Fprintln(&d.Output)
	}
	fmt.Fprintf(&d.Output, "PC    0x%08X   HI    0x%08X   LO    0x%08X\n", regs.PC, regs.HI, regs.LO)
	fmt.Fprintf(&d.Output, "cycles=%d instructions=%d\n", regs.Cycles, regs.InstructionCount)
}

func (d *Debugger) dumpMemory(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: memory <addr> [length]")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	length := uint32(64)
	if len(args) > 1 {
		parsed, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid length: %q", args[1])
		}
		length = uint32(parsed)
	}

	region := d.Service.Memory(addr, length)
	for i := 0; i < len(region.Data); i += 16 {
		end := i + 16
		if end > len(region.Data) {
			end = len(region.Data)
		}
		fmt.Fprintf(&d.Output, "0x%08X:", region.Address+uint32(i))
		for _, b := range region.Data[i:end] {
			fmt.Fprintf(&d.Output, " %02X", b)
		}
		fmt.Fprintln(&d.Output)
	}
	return nil
}

func (d *Debugger) printTouched() {
	ranges := d.Service.TouchedRanges()
	if len(ranges) == 0 {
		fmt.Fprintln(&d.Output, "no memory touched")
		return
	}
	for _, r := range ranges {
		fmt.Fprintf(&d.Output, "0x%08X - 0x%08X (%d bytes)\n", r.Start, r.End, r.End-r.Start+1)
	}
}

func (d *Debugger) printPipeline() {
	for _, stage := range d.Service.Pipeline() {
		if stage.Instruction == nil {
			fmt.Fprintf(&d.Output, "%-4s (empty)\n", stage.Stage)
			continue
		}
		fmt.Fprintf(&d.Output, "%-4s 0x%08X  %s\n",
			stage.Stage, stage.Instruction.Address, stage.Instruction.Source)
	}
}

func (d *Debugger) printSymbols() {
	symbols := d.Service.Symbols()
	if len(symbols) == 0 {
		fmt.Fprintln(&d.Output, "no symbols")
		return
	}

	names := make([]string, 0, len(symbols))
	for name := range symbols {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if symbols[names[i]] != symbols[names[j]] {
			return symbols[names[i]] < symbols[names[j]]
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		fmt.Fprintf(&d.Output, "%-20s 0x%08X\n", name, symbols[name])
	}
}
