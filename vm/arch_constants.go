package vm

// Memory layout
const (
	// TextSegmentBase is the load address of the first instruction
	TextSegmentBase = 0x00400000

	// MemorySize is the capacity of the byte-addressable data region
	MemorySize = 0x10000 // 64KB
)

// Execution limits
const (
	// DefaultRunStepLimit bounds a single Run invocation
	DefaultRunStepLimit = 10000
)

// ExitSyscall is the $v0 value that halts the machine
const ExitSyscall = 10

// Register numbers with architectural roles
const (
	RegZero = 0  // hardwired zero
	RegV0   = 2  // syscall selector
	RegRA   = 31 // link register for jal/jalr
)
