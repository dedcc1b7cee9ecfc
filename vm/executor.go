package vm

import (
	"errors"
	"fmt"
)

// Terminal conditions surfaced by Step and Run
var (
	ErrNotLoaded     = errors.New("no program loaded")
	ErrHalted        = errors.New("machine is halted")
	ErrPCOutOfBounds = errors.New("PC out of bounds")
	ErrStepLimit     = errors.New("maximum step limit reached")
)

// StepResult describes one committed instruction for callers that want
// to observe execution (debugger, API, trace views).
type StepResult struct {
	Instruction Instruction
	Fields      Fields
	Control     ControlSignals
	NextPC      uint32
}

// Machine is the complete simulated processor: register state, memory,
// the loaded instruction stream and the execution engine. It is an
// exclusive resource; no operation on it is safe to interleave with
// another.
type Machine struct {
	CPU    *CPU
	Memory *Memory

	Program []Instruction
	Symbols map[string]uint32 // label -> load address, display only

	Loaded       bool
	Halted       bool
	LimitReached bool
	DebugMode    bool
	RunStepLimit int

	Trace      *TraceLog
	Statistics *Statistics

	LastError error
}

// NewMachine creates a machine with zeroed state and no program
func NewMachine() *Machine {
	return &Machine{
		CPU:          NewCPU(),
		Memory:       NewMemory(),
		Symbols:      make(map[string]uint32),
		RunStepLimit: DefaultRunStepLimit,
		Trace:        NewTraceLog(0),
		Statistics:   NewStatistics(),
	}
}

// Load installs an assembled program atomically and resets all
// execution state. The caller assembles first, so a failed assembly
// never disturbs the previously loaded program.
func (m *Machine) Load(program []Instruction, symbols map[string]uint32) {
	m.Program = program
	m.Symbols = symbols
	m.Loaded = true
	m.Reset()
}

// Reset re-zeroes registers, HI/LO, memory, the touched-address set,
// counters and the trace log, and restores PC to the text segment
// base. The loaded program is kept.
func (m *Machine) Reset() {
	m.CPU.Reset()
	m.Memory.Reset()
	m.Trace.Clear()
	m.Statistics.Reset()
	m.Halted = false
	m.LimitReached = false
	m.LastError = nil
}

// InstructionIndex translates a PC value to an instruction index, or
// -1 if the address falls outside the loaded program. jr may set an
// unaligned PC; the low bits are not assumed to be clear.
func (m *Machine) InstructionIndex(pc uint32) int {
	if pc < TextSegmentBase {
		return -1
	}
	idx := int((pc - TextSegmentBase) / 4)
	if idx >= len(m.Program) {
		return -1
	}
	return idx
}

// Step fetches, executes and commits a single instruction.
//
// Ordering per step: capture the pre-execution PC, compute the default
// next PC, perform the effect (which may overwrite the next PC), force
// register 0 to zero, commit the PC, bump the counters, then append a
// trace entry when debug mode is on.
func (m *Machine) Step() (*StepResult, error) {
	if !m.Loaded {
		return nil, ErrNotLoaded
	}
	if m.Halted {
		return nil, ErrHalted
	}
	if m.LimitReached {
		return nil, ErrStepLimit
	}

	pc := m.CPU.PC
	idx := m.InstructionIndex(pc)
	if idx < 0 {
		m.Halted = true
		m.LastError = ErrPCOutOfBounds
		return nil, fmt.Errorf("%w: PC=0x%08X", ErrPCOutOfBounds, pc)
	}

	inst := &m.Program[idx]
	fields := Decode(inst.Word)
	control := ControlSignalsFor(fields)

	nextPC := pc + 4
	if err := m.execute(inst, fields, &nextPC); err != nil {
		m.Halted = true
		m.LastError = err
		return nil, err
	}

	m.CPU.EnforceZeroRegister()
	m.CPU.PC = nextPC
	m.CPU.Cycles++
	m.CPU.InstructionCount++

	m.Statistics.RecordStep(inst, nextPC != pc+4)

	if m.DebugMode {
		m.Trace.Append(TraceEntry{
			Cycle:     m.CPU.Cycles,
			PC:        pc,
			Source:    inst.Source,
			Word:      inst.Word,
			Fields:    fields,
			Control:   control,
			Registers: m.CPU.R,
			HI:        m.CPU.HI,
			LO:        m.CPU.LO,
		})
	}

	return &StepResult{
		Instruction: *inst,
		Fields:      fields,
		Control:     control,
		NextPC:      nextPC,
	}, nil
}

// Run executes until the machine halts or the per-run step limit is
// reached. A clean syscall halt returns a nil error; running off the
// end of the program surfaces ErrPCOutOfBounds with the machine
// halted; hitting the step cap surfaces ErrStepLimit and the machine
// refuses to advance further until Reset.
func (m *Machine) Run() (int, error) {
	return m.RunWith(nil)
}

// RunWith is Run with a per-step observer, for callers that track
// execution as it happens (pipeline views, event streams). A nil
// observer is allowed.
func (m *Machine) RunWith(observe func(*StepResult)) (int, error) {
	if !m.Loaded {
		return 0, ErrNotLoaded
	}
	if m.Halted {
		return 0, ErrHalted
	}

	limit := m.RunStepLimit
	if limit <= 0 {
		limit = DefaultRunStepLimit
	}

	steps := 0
	for {
		if steps >= limit {
			m.LimitReached = true
			m.LastError = ErrStepLimit
			return steps, ErrStepLimit
		}

		result, err := m.Step()
		if err != nil {
			return steps, err
		}
		steps++
		if observe != nil {
			observe(result)
		}

		if m.Halted {
			return steps, nil
		}
	}
}

// execute performs the architectural effect of one instruction. It may
// overwrite nextPC (branches, jumps) and set the halted flag
// (syscall). All register values are manipulated as unsigned 32-bit
// words; signed operations reinterpret the bits as two's complement.
// Arithmetic wraps modulo 2^32; add/addi/sub do not trap on signed
// overflow, a documented deviation from strict MIPS32.
func (m *Machine) execute(in *Instruction, f Fields, nextPC *uint32) error {
	cpu := m.CPU
	rs := cpu.R[in.Rs]
	rt := cpu.R[in.Rt]

	switch in.Mnemonic {
	case NOP:

	// R-type arithmetic and logic
	case ADD, ADDU:
		cpu.R[in.Rd] = rs + rt
	case SUB, SUBU:
		cpu.R[in.Rd] = rs - rt
	case AND:
		cpu.R[in.Rd] = rs & rt
	case OR:
		cpu.R[in.Rd] = rs | rt
	case XOR:
		cpu.R[in.Rd] = rs ^ rt
	case NOR:
		cpu.R[in.Rd] = ^(rs | rt)
	case SLT:
		cpu.R[in.Rd] = boolToWord(int32(rs) < int32(rt))
	case SLTU:
		cpu.R[in.Rd] = boolToWord(rs < rt)

	// Shifts
	case SLL:
		cpu.R[in.Rd] = rt << in.Shamt
	case SRL:
		cpu.R[in.Rd] = rt >> in.Shamt
	case SRA:
		cpu.R[in.Rd] = uint32(int32(rt) >> in.Shamt)
	case SLLV:
		cpu.R[in.Rd] = rt << (rs & 0x1F)
	case SRLV:
		cpu.R[in.Rd] = rt >> (rs & 0x1F)
	case SRAV:
		cpu.R[in.Rd] = uint32(int32(rt) >> (rs & 0x1F))

	// Multiply/divide unit
	case MULT:
		product := int64(int32(rs)) * int64(int32(rt))
		cpu.HI = uint32(uint64(product) >> 32)
		cpu.LO = uint32(uint64(product))
	case MULTU:
		product := uint64(rs) * uint64(rt)
		cpu.HI = uint32(product >> 32)
		cpu.LO = uint32(product)
	case DIV:
		// rt=0 leaves HI/LO unchanged; deterministic in place of the
		// architecturally UNPREDICTABLE result
		if rt != 0 {
			cpu.LO = uint32(int32(rs) / int32(rt))
			cpu.HI = uint32(int32(rs) % int32(rt))
		}
	case DIVU:
		if rt != 0 {
			cpu.LO = rs / rt
			cpu.HI = rs % rt
		}
	case MFHI:
		cpu.R[in.Rd] = cpu.HI
	case MTHI:
		cpu.HI = rs
	case MFLO:
		cpu.R[in.Rd] = cpu.LO
	case MTLO:
		cpu.LO = rs

	// Register jumps
	case JR:
		*nextPC = rs
	case JALR:
		cpu.R[in.Rd] = in.Address + 4
		*nextPC = rs

	case SYSCALL:
		if cpu.R[RegV0] == ExitSyscall {
			m.Halted = true
		}

	// I-type arithmetic and logic
	case ADDI, ADDIU:
		cpu.R[in.Rt] = rs + uint32(in.Imm)
	case SLTI:
		cpu.R[in.Rt] = boolToWord(int32(rs) < in.Imm)
	case SLTIU:
		cpu.R[in.Rt] = boolToWord(rs < uint32(in.Imm))
	case ANDI:
		cpu.R[in.Rt] = rs & in.UImm()
	case ORI:
		cpu.R[in.Rt] = rs | in.UImm()
	case XORI:
		cpu.R[in.Rt] = rs ^ in.UImm()
	case LUI:
		cpu.R[in.Rt] = in.UImm() << 16

	// Loads, sign extension from the natural width
	case LW:
		cpu.R[in.Rt] = m.Memory.ReadWord(rs + uint32(in.Imm))
	case LH:
		cpu.R[in.Rt] = uint32(SignExtend16(m.Memory.ReadHalfword(rs + uint32(in.Imm))))
	case LHU:
		cpu.R[in.Rt] = uint32(m.Memory.ReadHalfword(rs + uint32(in.Imm)))
	case LB:
		cpu.R[in.Rt] = uint32(SignExtend8(m.Memory.ReadByte(rs + uint32(in.Imm))))
	case LBU:
		cpu.R[in.Rt] = uint32(m.Memory.ReadByte(rs + uint32(in.Imm)))

	// Stores
	case SW:
		m.Memory.WriteWord(rs+uint32(in.Imm), rt)
	case SH:
		m.Memory.WriteHalfword(rs+uint32(in.Imm), uint16(rt))
	case SB:
		m.Memory.WriteByte(rs+uint32(in.Imm), byte(rt))

	// Branches: PC-relative, offset in instruction units
	case BEQ:
		if rs == rt {
			*nextPC = branchTarget(in.Address, f)
		}
	case BNE:
		if rs != rt {
			*nextPC = branchTarget(in.Address, f)
		}
	case BLEZ:
		if int32(rs) <= 0 {
			*nextPC = branchTarget(in.Address, f)
		}
	case BGTZ:
		if int32(rs) > 0 {
			*nextPC = branchTarget(in.Address, f)
		}

	// Region-based jumps
	case J:
		*nextPC = jumpTarget(in.Address, in.Target)
	case JAL:
		cpu.R[RegRA] = in.Address + 4
		*nextPC = jumpTarget(in.Address, in.Target)

	default:
		return fmt.Errorf("unimplemented instruction: %s", in.Mnemonic)
	}

	return nil
}

// branchTarget computes (PC of branch + 4) + (offset << 2), using the
// sign-extended offset from the decoded fields.
func branchTarget(address uint32, f Fields) uint32 {
	return uint32(int32(address+4) + f.BranchOffset()<<2)
}

// jumpTarget forms the region-based jump target: the top 4 bits of
// PC+4 joined with the 26-bit field shifted left by 2.
func jumpTarget(address, target uint32) uint32 {
	return (address+4)&0xF0000000 | target<<2
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
