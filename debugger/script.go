package debugger

import "github.com/chazu/scry/engine"

// Script wraps a unit of compiled debuggee code. It owns the script's
// breakpoint registry, keyed by bytecode offset: every handler
// registered at an offset fires, in registration order, when execution
// reaches it. All wrappers to the same underlying script observe the
// same registry.
type Script struct {
	d     *Debugger
	chunk *engine.Chunk
}

// SetBreakpoint registers a handler at the given bytecode offset,
// appending to any handlers already there. Fails with ErrOffsetNotValid
// if the offset is not an instruction boundary.
func (s *Script) SetBreakpoint(offset uint32, h BreakpointHandler) error {
	if !s.chunk.ValidOffset(offset) {
		return ErrOffsetNotValid
	}
	s.d.addBreakpoint(s.chunk, offset, h)
	return nil
}

// ClearBreakpoints removes every handler registered at the given offset.
// Fails with ErrOffsetNotValid if the offset is not an instruction
// boundary.
func (s *Script) ClearBreakpoints(offset uint32) error {
	if !s.chunk.ValidOffset(offset) {
		return ErrOffsetNotValid
	}
	s.d.clearBreakpoints(s.chunk, offset)
	return nil
}

// ClearAllBreakpoints empties the handler lists of every offset. Always
// succeeds.
func (s *Script) ClearAllBreakpoints() {
	s.d.clearAllBreakpoints(s.chunk)
}

// GetBreakpoints returns the handlers currently registered at the given
// offset, in registration order. An invalid offset yields an empty
// result; read-only reflection does not error.
func (s *Script) GetBreakpoints(offset uint32) []BreakpointHandler {
	return s.d.breakpointsAt(s.chunk, offset)
}

// BreakpointOffsets returns every offset with at least one registered
// handler, in ascending order.
func (s *Script) BreakpointOffsets() []uint32 {
	return s.d.breakpointOffsets(s.chunk)
}

// GetAllOffsets returns every instruction-boundary offset of the script,
// in ascending order. These are exactly the offsets SetBreakpoint
// accepts.
func (s *Script) GetAllOffsets() []uint32 {
	return s.chunk.InstructionOffsets()
}

// GetLineOffsets returns the entry offsets recorded for the given source
// line. One line may map to several offsets; the mapping is static,
// derived from the script's debug metadata.
func (s *Script) GetLineOffsets(line uint32) []uint32 {
	return s.chunk.LineOffsets(line)
}

// GetAllLineOffsets returns every source line with recorded offsets,
// mapped to its entry offsets in ascending order.
func (s *Script) GetAllLineOffsets() map[uint32][]uint32 {
	return s.chunk.AllLineOffsets()
}

// GetChildScripts returns the scripts of function definitions nested in
// this script.
func (s *Script) GetChildScripts() []*Script {
	children := make([]*Script, 0, len(s.chunk.Children))
	for _, child := range s.chunk.Children {
		children = append(children, s.d.wrapScript(child))
	}
	return children
}

// DisplayName returns the name of the function the script compiles; the
// second result is false for top-level scripts and anonymous functions.
func (s *Script) DisplayName() (string, bool) {
	if s.chunk.FuncName == "" {
		return "", false
	}
	return s.chunk.FuncName, true
}

// Global returns the global the script is executing in. Nil until the
// script has run under this session; the link is recorded when a frame
// for the script is pushed.
func (s *Script) Global() *Object {
	return s.d.wrapObject(s.d.globalOf(s.chunk))
}

// Source returns the origin of the script's text, nil when the engine
// recorded none.
func (s *Script) Source() *Source {
	return s.d.wrapSource(s.chunk.Source)
}

// SourceStart returns the index of the character at which the script's
// code starts within its source text.
func (s *Script) SourceStart() uint32 {
	return s.chunk.SourceStart
}

// SourceLength returns the number of characters the script's code spans
// within its source text.
func (s *Script) SourceLength() uint32 {
	return s.chunk.SourceLength
}

// URL returns the location the script was loaded from, empty if unknown.
func (s *Script) URL() string {
	if s.chunk.Source == nil {
		return ""
	}
	return s.chunk.Source.URL()
}

// StartLine returns the first source line covered by the script.
func (s *Script) StartLine() uint32 {
	return s.chunk.StartLine
}

// LineCount returns the number of distinct source lines the script
// spans.
func (s *Script) LineCount() int {
	return s.chunk.LineCount()
}
