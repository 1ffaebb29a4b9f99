package engine

import "sort"

// SourceLocation maps a bytecode position to a source location.
type SourceLocation struct {
	BytecodeOffset uint32 // Offset in the code section
	Line           uint32 // Source line number (1-based)
	Column         uint16 // Source column number (1-based)
}

// Chunk represents compiled bytecode for a script or function body.
// It is the fundamental unit of executable code in the engine.
type Chunk struct {
	// Code section
	Code []byte // Bytecode instructions

	// Constant pools referenced by OpConst / OpNumber
	Constants []string
	Numbers   []float64

	// Parameter and local slot names. Locals are declared at frame entry
	// and initialized to undefined.
	ParamNames []string
	LocalNames []string

	// Nested function definitions referenced by OpMakeFunc
	Children []*Chunk

	// Name of the function this chunk compiles, empty for top-level code
	FuncName string

	// Arrow is set for chunks compiled from arrow functions
	Arrow bool

	// Debug information
	SourceMap []SourceLocation // Bytecode offset -> source location
	StartLine uint32           // First source line covered by this chunk

	// Character span of this chunk's code within its source text
	SourceStart  uint32
	SourceLength uint32

	// Origin text, nil when the source was not retained
	Source *Source
}

// NewChunk creates a new empty chunk.
func NewChunk() *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 64),
		Constants: make([]string, 0, 8),
	}
}

// AddConstant adds a string constant to the pool and returns its index.
// If the constant already exists, returns the existing index.
func (c *Chunk) AddConstant(value string) uint16 {
	for i, s := range c.Constants {
		if s == value {
			return uint16(i)
		}
	}
	idx := uint16(len(c.Constants))
	c.Constants = append(c.Constants, value)
	return idx
}

// AddNumber adds a number constant to the pool and returns its index.
func (c *Chunk) AddNumber(value float64) uint16 {
	for i, n := range c.Numbers {
		if n == value {
			return uint16(i)
		}
	}
	idx := uint16(len(c.Numbers))
	c.Numbers = append(c.Numbers, value)
	return idx
}

// Emit appends a single-byte opcode to the code section and returns its
// offset.
func (c *Chunk) Emit(op Opcode) int {
	offset := len(c.Code)
	c.Code = append(c.Code, byte(op))
	return offset
}

// EmitU16 appends an opcode with a big-endian 16-bit operand.
func (c *Chunk) EmitU16(op Opcode, operand uint16) int {
	offset := len(c.Code)
	c.Code = append(c.Code, byte(op), byte(operand>>8), byte(operand))
	return offset
}

// EmitU8 appends an opcode with an 8-bit operand.
func (c *Chunk) EmitU8(op Opcode, operand uint8) int {
	offset := len(c.Code)
	c.Code = append(c.Code, byte(op), operand)
	return offset
}

// EmitJump appends a jump instruction with a placeholder offset and
// returns the offset of the placeholder for later patching.
func (c *Chunk) EmitJump(op Opcode) int {
	c.Code = append(c.Code, byte(op), 0xFF, 0xFF)
	return len(c.Code) - 2
}

// PatchJump patches a jump placeholder to jump to the current position.
func (c *Chunk) PatchJump(placeholderOffset int) {
	jumpFrom := placeholderOffset + 2
	delta := len(c.Code) - jumpFrom
	c.Code[placeholderOffset] = byte(delta >> 8)
	c.Code[placeholderOffset+1] = byte(delta)
}

// CurrentOffset returns the current offset in the code section.
func (c *Chunk) CurrentOffset() int {
	return len(c.Code)
}

// AddChild appends a nested function chunk and returns its index.
func (c *Chunk) AddChild(child *Chunk) uint16 {
	idx := uint16(len(c.Children))
	c.Children = append(c.Children, child)
	return idx
}

// AddSourceLocation adds a debug source location mapping.
func (c *Chunk) AddSourceLocation(bytecodeOffset uint32, line uint32, column uint16) {
	c.SourceMap = append(c.SourceMap, SourceLocation{
		BytecodeOffset: bytecodeOffset,
		Line:           line,
		Column:         column,
	})
}

// Location returns the source location for a bytecode offset, using the
// nearest mapping at or before the offset. Returns line 0, column 0 if no
// mapping exists.
func (c *Chunk) Location(offset uint32) (line uint32, column uint16) {
	for i := len(c.SourceMap) - 1; i >= 0; i-- {
		if c.SourceMap[i].BytecodeOffset <= offset {
			return c.SourceMap[i].Line, c.SourceMap[i].Column
		}
	}
	return 0, 0
}

// InstructionOffsets returns the offsets of all instruction boundaries in
// the code section, in ascending order. Decoding stops at the first
// unknown opcode.
func (c *Chunk) InstructionOffsets() []uint32 {
	offsets := make([]uint32, 0, len(c.Code)/2)
	for pos := 0; pos < len(c.Code); {
		op := Opcode(c.Code[pos])
		if !op.IsValid() {
			break
		}
		offsets = append(offsets, uint32(pos))
		pos += 1 + op.OperandWidth()
	}
	return offsets
}

// ValidOffset returns true if the offset falls on an instruction boundary.
func (c *Chunk) ValidOffset(offset uint32) bool {
	for pos := 0; pos < len(c.Code); {
		op := Opcode(c.Code[pos])
		if !op.IsValid() {
			return false
		}
		if uint32(pos) == offset {
			return true
		}
		if uint32(pos) > offset {
			return false
		}
		pos += 1 + op.OperandWidth()
	}
	return false
}

// LineOffsets returns the entry offsets recorded for the given source
// line. One line may map to several offsets (loop re-entry, multiple
// statements per line).
func (c *Chunk) LineOffsets(line uint32) []uint32 {
	var offsets []uint32
	for _, loc := range c.SourceMap {
		if loc.Line == line {
			offsets = append(offsets, loc.BytecodeOffset)
		}
	}
	return offsets
}

// AllLineOffsets returns every line with recorded offsets, each mapped to
// its entry offsets in ascending order.
func (c *Chunk) AllLineOffsets() map[uint32][]uint32 {
	m := make(map[uint32][]uint32)
	for _, loc := range c.SourceMap {
		m[loc.Line] = append(m[loc.Line], loc.BytecodeOffset)
	}
	for _, offsets := range m {
		sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	}
	return m
}

// LineCount returns the number of distinct source lines this chunk spans.
func (c *Chunk) LineCount() int {
	lines := make(map[uint32]bool)
	for _, loc := range c.SourceMap {
		lines[loc.Line] = true
	}
	return len(lines)
}
