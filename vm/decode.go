package vm

// Fields holds the bit fields sliced out of a 32-bit instruction word.
// Every field is extracted regardless of format; the consumer knows
// which ones are meaningful.
type Fields struct {
	Opcode    uint8  // bits 31-26
	Rs        uint8  // bits 25-21
	Rt        uint8  // bits 20-16
	Rd        uint8  // bits 15-11
	Shamt     uint8  // bits 10-6
	Funct     uint8  // bits 5-0
	Immediate uint16 // bits 15-0
	Address   uint32 // bits 25-0
}

// Decode slices a 32-bit instruction word into its fields
func Decode(word uint32) Fields {
	return Fields{
		Opcode:    uint8(word >> 26),
		Rs:        uint8(word >> 21 & 0x1F),
		Rt:        uint8(word >> 16 & 0x1F),
		Rd:        uint8(word >> 11 & 0x1F),
		Shamt:     uint8(word >> 6 & 0x1F),
		Funct:     uint8(word & 0x3F),
		Immediate: uint16(word & 0xFFFF),
		Address:   word & 0x03FFFFFF,
	}
}

// SignExtend16 sign-extends a 16-bit value to 32 bits
func SignExtend16(v uint16) int32 {
	return int32(int16(v))
}

// SignExtend8 sign-extends an 8-bit value to 32 bits
func SignExtend8(v uint8) int32 {
	return int32(int8(v))
}

// BranchOffset returns the sign-extended branch displacement in
// instruction units.
func (f Fields) BranchOffset() int32 {
	return SignExtend16(f.Immediate)
}
