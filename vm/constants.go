package vm

import "dis/lexer"

// MemSize is the number of u16 cells in the flat memory array.
const MemSize = 4096

// StackCap is the bounded capacity of the return stack.
const StackCap = 256

// Compare-flag bits set by CMP and consumed by JEQ/JNE/JLT/JGT.
const (
	FlagEQ = 0b001
	FlagLT = 0b010
	FlagGT = 0b100
)

// ErrRegisterID is the I/O error-flag register: RDN/RDC set it to 1
// on a failed parse/empty line, 0 on success.
const ErrRegisterID = "e"

// LengthRegisterID additionally holds the length read by RLN.
const LengthRegisterID = "3"

var registerIDs = lexer.RegisterIDs
