package vm

// CPU represents the architecturally visible MIPS32 processor state
type CPU struct {
	// General purpose registers $0-$31. Entry 0 is wired to zero.
	R [32]uint32

	// Program Counter
	PC uint32

	// Multiply/divide result pair
	HI uint32
	LO uint32

	// Counters. In this single-cycle model one instruction commits per
	// cycle, so these advance in lockstep.
	Cycles           uint64
	InstructionCount uint64
}

// NewCPU creates and initializes a new CPU instance
func NewCPU() *CPU {
	return &CPU{PC: TextSegmentBase}
}

// Reset resets the CPU to initial state
func (c *CPU) Reset() {
	for i := range c.R {
		c.R[i] = 0
	}
	c.PC = TextSegmentBase
	c.HI = 0
	c.LO = 0
	c.Cycles = 0
	c.InstructionCount = 0
}

// GetRegister returns the value of a register. Register 0 always reads
// as zero.
func (c *CPU) GetRegister(reg int) uint32 {
	if reg <= 0 || reg > 31 {
		return 0
	}
	return c.R[reg]
}

// SetRegister sets the value of a register. Writes to register 0 are
// accepted here and squashed at commit time by the execution engine.
func (c *CPU) SetRegister(reg int, value uint32) {
	if reg < 0 || reg > 31 {
		return
	}
	c.R[reg] = value
}

// EnforceZeroRegister forces register 0 back to zero. Called once at
// the end of every step, which is simpler than special-casing each
// write site.
func (c *CPU) EnforceZeroRegister() {
	c.R[RegZero] = 0
}
