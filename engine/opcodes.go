package engine

import "fmt"

// Opcode represents a bytecode instruction.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Stack manipulation (0x00-0x0F)
	// ========================================================================

	OpNop  Opcode = 0x00 // No operation
	OpPop  Opcode = 0x01 // Pop top of stack
	OpDup  Opcode = 0x02 // Duplicate top of stack
	OpSwap Opcode = 0x03 // Swap top two stack elements

	// ========================================================================
	// Constants (0x10-0x1F)
	// ========================================================================

	OpConst     Opcode = 0x10 // Push constant from pool: OpConst <index:u16>
	OpNumber    Opcode = 0x11 // Push number constant: OpNumber <index:u16>
	OpUndefined Opcode = 0x12 // Push undefined
	OpNull      Opcode = 0x13 // Push null
	OpTrue      Opcode = 0x14 // Push true
	OpFalse     Opcode = 0x15 // Push false

	// ========================================================================
	// Variables (0x20-0x2F)
	// ========================================================================

	OpGetVar Opcode = 0x20 // Push variable: OpGetVar <name_index:u16>
	OpSetVar Opcode = 0x21 // Store TOS to variable (leaves value): OpSetVar <name_index:u16>

	// ========================================================================
	// Objects and properties (0x30-0x3F)
	// ========================================================================

	OpNewObject Opcode = 0x30 // Push a fresh plain object
	OpGetProp   Opcode = 0x31 // Pop object, push property: OpGetProp <name_index:u16>
	OpSetProp   Opcode = 0x32 // Pop value, pop object, set property, push value: OpSetProp <name_index:u16>
	OpMakeFunc  Opcode = 0x33 // Push closure over child chunk: OpMakeFunc <child_index:u16>

	// ========================================================================
	// Arithmetic and comparison (0x40-0x4F)
	// ========================================================================

	OpAdd Opcode = 0x40 // Pop two, push sum (string concat if either is a string)
	OpSub Opcode = 0x41 // Pop two, push difference
	OpEq  Opcode = 0x42 // Pop two, push strict-equality boolean
	OpLt  Opcode = 0x43 // Pop two, push a < b

	// ========================================================================
	// Control flow (0x50-0x5F)
	// ========================================================================

	OpJump      Opcode = 0x50 // Unconditional jump: OpJump <offset:i16>
	OpJumpFalse Opcode = 0x51 // Pop, jump if falsy: OpJumpFalse <offset:i16>

	// ========================================================================
	// Calls (0x60-0x6F)
	// ========================================================================

	OpCall Opcode = 0x60 // Call: stack [fn, this, args...]; OpCall <argc:u8>

	// ========================================================================
	// Completion (0x70-0x7F)
	// ========================================================================

	OpReturn Opcode = 0x70 // Pop and return TOS from the current frame
	OpThrow  Opcode = 0x71 // Pop and throw TOS
)

// opcodeNames maps opcodes to their mnemonic names.
var opcodeNames = map[Opcode]string{
	OpNop:       "NOP",
	OpPop:       "POP",
	OpDup:       "DUP",
	OpSwap:      "SWAP",
	OpConst:     "CONST",
	OpNumber:    "NUMBER",
	OpUndefined: "UNDEFINED",
	OpNull:      "NULL",
	OpTrue:      "TRUE",
	OpFalse:     "FALSE",
	OpGetVar:    "GETVAR",
	OpSetVar:    "SETVAR",
	OpNewObject: "NEWOBJECT",
	OpGetProp:   "GETPROP",
	OpSetProp:   "SETPROP",
	OpMakeFunc:  "MAKEFUNC",
	OpAdd:       "ADD",
	OpSub:       "SUB",
	OpEq:        "EQ",
	OpLt:        "LT",
	OpJump:      "JUMP",
	OpJumpFalse: "JUMPFALSE",
	OpCall:      "CALL",
	OpReturn:    "RETURN",
	OpThrow:     "THROW",
}

// String returns the mnemonic name of the opcode.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(0x%02X)", byte(op))
}

// operandWidths maps opcodes to the number of operand bytes that follow
// them. Opcodes not listed take no operands.
var operandWidths = map[Opcode]int{
	OpConst:     2,
	OpNumber:    2,
	OpGetVar:    2,
	OpSetVar:    2,
	OpGetProp:   2,
	OpSetProp:   2,
	OpMakeFunc:  2,
	OpJump:      2,
	OpJumpFalse: 2,
	OpCall:      1,
}

// OperandWidth returns the number of operand bytes for the opcode.
func (op Opcode) OperandWidth() int {
	return operandWidths[op]
}

// IsValid returns true if the opcode is a known instruction.
func (op Opcode) IsValid() bool {
	_, ok := opcodeNames[op]
	return ok
}
