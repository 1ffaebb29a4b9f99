package debugger

import (
	"testing"

	"github.com/chazu/scry/engine"
)

// ---------------------------------------------------------------------------
// Breakpoint registry tests
// ---------------------------------------------------------------------------

func TestSetBreakpointInvalidOffset(t *testing.T) {
	d, _, _ := newSession()
	script := d.WrapScript(threeLineChunk())

	// Offset 1 is inside the first instruction's operand.
	if err := script.SetBreakpoint(1, BreakpointHandlerFunc(func(f *Frame) ResumptionValue { return nil })); err != ErrOffsetNotValid {
		t.Errorf("expected ErrOffsetNotValid for a mid-instruction offset, got %v", err)
	}
	if err := script.SetBreakpoint(9999, BreakpointHandlerFunc(func(f *Frame) ResumptionValue { return nil })); err != ErrOffsetNotValid {
		t.Errorf("expected ErrOffsetNotValid past the end of code, got %v", err)
	}
}

func TestGetBreakpoints(t *testing.T) {
	d, _, _ := newSession()
	script := d.WrapScript(threeLineChunk())

	h1 := BreakpointHandlerFunc(func(f *Frame) ResumptionValue { return nil })
	h2 := BreakpointHandlerFunc(func(f *Frame) ResumptionValue { return nil })
	script.SetBreakpoint(7, h1)
	script.SetBreakpoint(7, h2)

	handlers := script.GetBreakpoints(7)
	if len(handlers) != 2 {
		t.Fatalf("expected 2 handlers, got %d", len(handlers))
	}

	if got := script.GetBreakpoints(0); len(got) != 0 {
		t.Errorf("expected no handlers at offset 0, got %d", len(got))
	}

	// Read-only reflection does not error on invalid offsets.
	if got := script.GetBreakpoints(9999); len(got) != 0 {
		t.Errorf("expected empty result for an invalid offset, got %d", len(got))
	}
}

func TestClearBreakpoints(t *testing.T) {
	d, _, _ := newSession()
	script := d.WrapScript(threeLineChunk())
	h := BreakpointHandlerFunc(func(f *Frame) ResumptionValue { return nil })

	script.SetBreakpoint(0, h)
	script.SetBreakpoint(7, h)

	if err := script.ClearBreakpoints(7); err != nil {
		t.Fatalf("ClearBreakpoints failed: %v", err)
	}
	if len(script.GetBreakpoints(7)) != 0 {
		t.Error("offset 7 should have no handlers after ClearBreakpoints")
	}
	if len(script.GetBreakpoints(0)) != 1 {
		t.Error("other offsets should be unaffected")
	}

	if err := script.ClearBreakpoints(1); err != ErrOffsetNotValid {
		t.Errorf("expected ErrOffsetNotValid, got %v", err)
	}
}

func TestClearAllBreakpoints(t *testing.T) {
	d, _, _ := newSession()
	script := d.WrapScript(threeLineChunk())
	h := BreakpointHandlerFunc(func(f *Frame) ResumptionValue { return nil })

	script.SetBreakpoint(0, h)
	script.SetBreakpoint(7, h)
	script.SetBreakpoint(18, h)

	script.ClearAllBreakpoints()
	if offsets := script.BreakpointOffsets(); len(offsets) != 0 {
		t.Errorf("expected no breakpoint offsets after clear, got %v", offsets)
	}

	// Clearing an empty registry succeeds.
	script.ClearAllBreakpoints()
}

func TestBreakpointOffsetsSorted(t *testing.T) {
	d, _, _ := newSession()
	script := d.WrapScript(threeLineChunk())
	h := BreakpointHandlerFunc(func(f *Frame) ResumptionValue { return nil })

	script.SetBreakpoint(18, h)
	script.SetBreakpoint(0, h)
	script.SetBreakpoint(7, h)

	offsets := script.BreakpointOffsets()
	want := []uint32{0, 7, 18}
	if len(offsets) != len(want) {
		t.Fatalf("expected %v, got %v", want, offsets)
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Errorf("expected sorted offsets %v, got %v", want, offsets)
			break
		}
	}
}

func TestWrappersShareRegistry(t *testing.T) {
	d, _, _ := newSession()
	chunk := threeLineChunk()
	a := d.WrapScript(chunk)
	b := d.WrapScript(chunk)

	a.SetBreakpoint(7, BreakpointHandlerFunc(func(f *Frame) ResumptionValue { return nil }))
	if len(b.GetBreakpoints(7)) != 1 {
		t.Error("wrappers of the same script should observe the same registry")
	}
}

func TestGetAllOffsets(t *testing.T) {
	d, _, _ := newSession()
	script := d.WrapScript(threeLineChunk())

	want := []uint32{0, 3, 6, 7, 10, 13, 14, 17, 18, 21}
	got := script.GetAllOffsets()
	if len(got) != len(want) {
		t.Fatalf("expected %d offsets, got %v", len(want), got)
	}
	for i, o := range want {
		if got[i] != o {
			t.Fatalf("offset[%d] = %d, want %d", i, got[i], o)
		}
	}

	// Every reported offset is accepted as a breakpoint site.
	h := BreakpointHandlerFunc(func(f *Frame) ResumptionValue { return nil })
	for _, o := range got {
		if err := script.SetBreakpoint(o, h); err != nil {
			t.Errorf("SetBreakpoint(%d) failed: %v", o, err)
		}
	}
}

// ---------------------------------------------------------------------------
// Line table tests
// ---------------------------------------------------------------------------

func TestGetLineOffsets(t *testing.T) {
	d, _, _ := newSession()
	script := d.WrapScript(threeLineChunk())

	if got := script.GetLineOffsets(2); len(got) != 1 || got[0] != 7 {
		t.Errorf("expected line 2 -> [7], got %v", got)
	}
	if got := script.GetLineOffsets(99); len(got) != 0 {
		t.Errorf("expected no offsets for an unknown line, got %v", got)
	}
}

func TestGetLineOffsetsManyToMany(t *testing.T) {
	d, _, _ := newSession()
	chunk := threeLineChunk()
	// A loop back-edge gives one line a second entry offset.
	chunk.AddSourceLocation(18, 2, 20)
	script := d.WrapScript(chunk)

	got := script.GetLineOffsets(2)
	if len(got) != 2 {
		t.Fatalf("expected two offsets for line 2, got %v", got)
	}
}

func TestGetAllLineOffsets(t *testing.T) {
	d, _, _ := newSession()
	script := d.WrapScript(threeLineChunk())

	all := script.GetAllLineOffsets()
	if len(all) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(all))
	}
	if got := all[1]; len(got) != 1 || got[0] != 0 {
		t.Errorf("expected line 1 -> [0], got %v", got)
	}
	if got := all[3]; len(got) != 1 || got[0] != 18 {
		t.Errorf("expected line 3 -> [18], got %v", got)
	}
}

// ---------------------------------------------------------------------------
// Structure and metadata tests
// ---------------------------------------------------------------------------

func TestGetChildScripts(t *testing.T) {
	d, _, _ := newSession()
	parent, child := callChunk()
	script := d.WrapScript(parent)

	children := script.GetChildScripts()
	if len(children) != 1 {
		t.Fatalf("expected 1 child script, got %d", len(children))
	}
	if children[0].chunk != child {
		t.Error("child script should wrap the nested chunk")
	}
}

func TestScriptMetadata(t *testing.T) {
	d, _, _ := newSession()
	script := d.WrapScript(threeLineChunk())

	if script.StartLine() != 1 {
		t.Errorf("expected start line 1, got %d", script.StartLine())
	}
	if script.LineCount() != 3 {
		t.Errorf("expected 3 lines, got %d", script.LineCount())
	}
	if script.URL() != "demo.js" {
		t.Errorf("expected URL demo.js, got %q", script.URL())
	}
	src := script.Source()
	if src == nil {
		t.Fatal("script should have a source")
	}
	if text, ok := src.Text(); !ok || text == "" {
		t.Error("source text should be retained")
	}
}

func TestScriptDisplayName(t *testing.T) {
	d, _, _ := newSession()
	parent, child := callChunk()

	if name, ok := d.WrapScript(child).DisplayName(); !ok || name != "add32" {
		t.Errorf("expected display name add32, got %q (ok=%v)", name, ok)
	}
	if _, ok := d.WrapScript(parent).DisplayName(); ok {
		t.Error("a top-level script should have no display name")
	}
}

func TestScriptGlobal(t *testing.T) {
	d, interp, global := newSession()
	chunk := threeLineChunk()
	script := d.WrapScript(chunk)

	// No frame has run the script yet, so no realm link is recorded.
	if script.Global() != nil {
		t.Error("expected no global before the script runs")
	}

	interp.RunGlobal(chunk, global)
	g := script.Global()
	if g == nil || g.eo != global {
		t.Error("Global should be the global the script last ran in")
	}
}

func TestScriptSourceSpan(t *testing.T) {
	d, _, _ := newSession()
	chunk := threeLineChunk()
	chunk.SourceStart = 11
	chunk.SourceLength = 20
	script := d.WrapScript(chunk)

	if script.SourceStart() != 11 {
		t.Errorf("expected source start 11, got %d", script.SourceStart())
	}
	if script.SourceLength() != 20 {
		t.Errorf("expected source length 20, got %d", script.SourceLength())
	}
}

func TestScriptWithoutSource(t *testing.T) {
	d, _, _ := newSession()
	chunk := engine.NewChunk()
	chunk.Emit(engine.OpUndefined)
	chunk.Emit(engine.OpReturn)
	script := d.WrapScript(chunk)

	if script.Source() != nil {
		t.Error("script without a source should return nil")
	}
	if script.URL() != "" {
		t.Error("script without a source should have no URL")
	}
}
