package vm

// Opcode field values (bits 31-26)
const (
	OpcodeRType = 0x00
	OpcodeJ     = 0x02
	OpcodeJal   = 0x03
	OpcodeBeq   = 0x04
	OpcodeBne   = 0x05
	OpcodeBlez  = 0x06
	OpcodeBgtz  = 0x07
	OpcodeAddi  = 0x08
	OpcodeAddiu = 0x09
	OpcodeSlti  = 0x0A
	OpcodeSltiu = 0x0B
	OpcodeAndi  = 0x0C
	OpcodeOri   = 0x0D
	OpcodeXori  = 0x0E
	OpcodeLui   = 0x0F
	OpcodeLb    = 0x20
	OpcodeLh    = 0x21
	OpcodeLw    = 0x23
	OpcodeLbu   = 0x24
	OpcodeLhu   = 0x25
	OpcodeSb    = 0x28
	OpcodeSh    = 0x29
	OpcodeSw    = 0x2B
)

// Funct field values for R-type instructions (bits 5-0)
const (
	FunctSll     = 0x00
	FunctSrl     = 0x02
	FunctSra     = 0x03
	FunctSllv    = 0x04
	FunctSrlv    = 0x06
	FunctSrav    = 0x07
	FunctJr      = 0x08
	FunctJalr    = 0x09
	FunctSyscall = 0x0C
	FunctMfhi    = 0x10
	FunctMthi    = 0x11
	FunctMflo    = 0x12
	FunctMtlo    = 0x13
	FunctMult    = 0x18
	FunctMultu   = 0x19
	FunctDiv     = 0x1A
	FunctDivu    = 0x1B
	FunctAdd     = 0x20
	FunctAddu    = 0x21
	FunctSub     = 0x22
	FunctSubu    = 0x23
	FunctAnd     = 0x24
	FunctOr      = 0x25
	FunctXor     = 0x26
	FunctNor     = 0x27
	FunctSlt     = 0x2A
	FunctSltu    = 0x2B
)
