package debugger

import (
	"sort"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/chazu/scry/engine"
)

var log = commonlog.GetLogger("scry.debugger")

// Debugger is one debugging session over an interpreter. It owns the
// handler bookkeeping for frames and scripts and implements the engine's
// hook surface; constructing a Debugger installs it as the interpreter's
// hooks.
//
// All bookkeeping is guarded by a mutex, but handlers themselves run
// outside it: a handler may freely register or clear handlers, evaluate
// code in the debuggee, and thereby re-enter dispatch.
type Debugger struct {
	interp *engine.Interp

	mu      sync.Mutex
	frames  map[*engine.Frame]*frameHooks
	scripts map[*engine.Chunk]map[uint32][]BreakpointHandler

	// Global each script was last observed executing in, recorded at
	// frame push.
	globals map[*engine.Chunk]*engine.Object
}

// frameHooks holds the at-most-one step and pop registration of a live
// frame. All wrappers to the same frame observe the same cell.
type frameHooks struct {
	onStep StepHandler
	onPop  PopHandler

	// Offset last observed by step tracking, so the step handler fires
	// only when the offset changes.
	lastOffset uint32
	hasLast    bool
}

// New creates a debugging session over the interpreter and installs its
// hooks.
func New(interp *engine.Interp) *Debugger {
	d := &Debugger{
		interp:  interp,
		frames:  make(map[*engine.Frame]*frameHooks),
		scripts: make(map[*engine.Chunk]map[uint32][]BreakpointHandler),
		globals: make(map[*engine.Chunk]*engine.Object),
	}
	interp.SetHooks(d)
	return d
}

// AddDebuggee marks the realm of the given global object as observed and
// returns the global's object wrapper. Frames, scopes, and objects of an
// unobserved realm report the NotDebuggee errors.
func (d *Debugger) AddDebuggee(global *engine.Object) *Object {
	global.SetDebuggee(true)
	return d.wrapObject(global)
}

// RemoveDebuggee stops observing the realm of the given global object.
func (d *Debugger) RemoveDebuggee(global *engine.Object) {
	global.SetDebuggee(false)
}

// TopFrame returns a wrapper for the innermost live frame, nil when the
// debuggee is not executing.
func (d *Debugger) TopFrame() *Frame {
	f := d.interp.TopFrame()
	if f == nil {
		return nil
	}
	return d.wrapFrame(f)
}

// WrapScript returns the Script wrapper for a compiled chunk, so
// breakpoints can be registered before the chunk first runs.
func (d *Debugger) WrapScript(chunk *engine.Chunk) *Script {
	return d.wrapScript(chunk)
}

// WrapObject returns the Object wrapper for an engine object.
func (d *Debugger) WrapObject(obj *engine.Object) *Object {
	return d.wrapObject(obj)
}

// ---------------------------------------------------------------------------
// engine.Hooks implementation
// ---------------------------------------------------------------------------

// OnFramePush implements engine.Hooks. Debuggee frames record which
// global their script is executing in, backing Script.Global.
func (d *Debugger) OnFramePush(f *engine.Frame) {
	log.Debugf("frame %d pushed (%s)", f.ID(), f.Kind())
	if f.IsDebuggee() {
		d.mu.Lock()
		d.globals[f.Chunk()] = f.Scope().Global()
		d.mu.Unlock()
	}
}

// OnInstruction implements engine.Hooks. It dispatches breakpoint
// handlers registered at the frame's current offset, then the frame's
// step handler if the offset changed. The breakpoint list is snapshotted
// before dispatch: registrations mutated by a handler affect subsequent
// events, not the one being delivered. The step registration is re-read
// after the breakpoint handlers run, so a step handler cleared by a
// breakpoint handler never fires.
func (d *Debugger) OnInstruction(f *engine.Frame) *engine.Completion {
	offset := f.Offset()

	d.mu.Lock()
	var handlers []BreakpointHandler
	if sites, ok := d.scripts[f.Chunk()]; ok && len(sites[offset]) > 0 {
		handlers = append(handlers, sites[offset]...)
	}
	stepDue := false
	if hooks := d.frames[f]; hooks != nil {
		if hooks.onStep != nil && (!hooks.hasLast || hooks.lastOffset != offset) {
			stepDue = true
		}
		hooks.lastOffset = offset
		hooks.hasLast = true
	}
	d.mu.Unlock()

	if len(handlers) == 0 && !stepDue {
		return nil
	}

	frame := d.wrapFrame(f)

	for _, h := range handlers {
		log.Debugf("breakpoint hit in frame %d at offset %d", f.ID(), offset)
		if r := h.Hit(frame); r != nil {
			return d.unwrapResumption(r)
		}
	}

	if stepDue {
		d.mu.Lock()
		var h StepHandler
		if hooks := d.frames[f]; hooks != nil {
			h = hooks.onStep
		}
		d.mu.Unlock()
		if h != nil {
			if r := h.Step(frame); r != nil {
				return d.unwrapResumption(r)
			}
		}
	}
	return nil
}

// OnFramePop implements engine.Hooks. The frame's registrations are
// dropped first, so the pop handler fires at most once even if the pop
// handler itself re-enters the debuggee.
func (d *Debugger) OnFramePop(f *engine.Frame, c engine.Completion) *engine.Completion {
	d.mu.Lock()
	hooks := d.frames[f]
	delete(d.frames, f)
	d.mu.Unlock()

	if hooks == nil || hooks.onPop == nil {
		return nil
	}
	log.Debugf("frame %d popped (%s)", f.ID(), c.Kind)
	r := hooks.onPop.Pop(d.wrapFrame(f), d.wrapCompletion(c))

	// The frame is still formally live while the handler runs, so the
	// handler may have re-registered; the frame is gone now either way.
	d.mu.Lock()
	delete(d.frames, f)
	d.mu.Unlock()

	return d.unwrapResumption(r)
}

// ---------------------------------------------------------------------------
// Frame registration plumbing
// ---------------------------------------------------------------------------

// setOnStep installs or clears the step handler of a live frame.
// Installation records the frame's current offset so the handler fires
// on the next offset change, not retroactively.
func (d *Debugger) setOnStep(f *engine.Frame, h StepHandler) {
	if !f.IsLive() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	hooks := d.frames[f]
	if hooks == nil {
		if h == nil {
			return
		}
		hooks = &frameHooks{}
		d.frames[f] = hooks
	}
	hooks.onStep = h
	hooks.lastOffset = f.Offset()
	hooks.hasLast = true
}

// setOnPop installs or clears the pop handler of a live frame.
func (d *Debugger) setOnPop(f *engine.Frame, h PopHandler) {
	if !f.IsLive() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	hooks := d.frames[f]
	if hooks == nil {
		if h == nil {
			return
		}
		hooks = &frameHooks{}
		d.frames[f] = hooks
	}
	hooks.onPop = h
}

func (d *Debugger) onStepOf(f *engine.Frame) StepHandler {
	d.mu.Lock()
	defer d.mu.Unlock()
	if hooks := d.frames[f]; hooks != nil {
		return hooks.onStep
	}
	return nil
}

func (d *Debugger) onPopOf(f *engine.Frame) PopHandler {
	d.mu.Lock()
	defer d.mu.Unlock()
	if hooks := d.frames[f]; hooks != nil {
		return hooks.onPop
	}
	return nil
}

// ---------------------------------------------------------------------------
// Breakpoint table plumbing
// ---------------------------------------------------------------------------

func (d *Debugger) addBreakpoint(chunk *engine.Chunk, offset uint32, h BreakpointHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sites := d.scripts[chunk]
	if sites == nil {
		sites = make(map[uint32][]BreakpointHandler)
		d.scripts[chunk] = sites
	}
	sites[offset] = append(sites[offset], h)
}

func (d *Debugger) clearBreakpoints(chunk *engine.Chunk, offset uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if sites := d.scripts[chunk]; sites != nil {
		delete(sites, offset)
	}
}

func (d *Debugger) clearAllBreakpoints(chunk *engine.Chunk) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.scripts, chunk)
}

func (d *Debugger) breakpointsAt(chunk *engine.Chunk, offset uint32) []BreakpointHandler {
	d.mu.Lock()
	defer d.mu.Unlock()
	sites := d.scripts[chunk]
	if sites == nil {
		return nil
	}
	return append([]BreakpointHandler(nil), sites[offset]...)
}

func (d *Debugger) breakpointOffsets(chunk *engine.Chunk) []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	sites := d.scripts[chunk]
	offsets := make([]uint32, 0, len(sites))
	for offset, handlers := range sites {
		if len(handlers) > 0 {
			offsets = append(offsets, offset)
		}
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	return offsets
}

func (d *Debugger) globalOf(chunk *engine.Chunk) *engine.Object {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.globals[chunk]
}

// ---------------------------------------------------------------------------
// Wrapping
// ---------------------------------------------------------------------------

func (d *Debugger) wrapFrame(f *engine.Frame) *Frame {
	return &Frame{d: d, ef: f}
}

func (d *Debugger) wrapObject(o *engine.Object) *Object {
	if o == nil {
		return nil
	}
	return &Object{d: d, eo: o}
}

func (d *Debugger) wrapScript(c *engine.Chunk) *Script {
	if c == nil {
		return nil
	}
	return &Script{d: d, chunk: c}
}

func (d *Debugger) wrapSource(s *engine.Source) *Source {
	if s == nil {
		return nil
	}
	return &Source{d: d, src: s}
}

func (d *Debugger) wrapEnvironment(s *engine.Scope) *Environment {
	if s == nil {
		return nil
	}
	return &Environment{d: d, scope: s}
}

func (d *Debugger) wrapValue(v engine.Value) Value {
	switch v.Kind {
	case engine.KindUndefined:
		return Undefined()
	case engine.KindNull:
		return Null()
	case engine.KindBoolean:
		return Boolean(v.BoolVal)
	case engine.KindString:
		return String(v.StrVal)
	case engine.KindNumber:
		return Number(v.NumVal)
	default:
		return ObjectValue(d.wrapObject(v.ObjVal))
	}
}

func (d *Debugger) unwrapValue(v Value) engine.Value {
	switch v.kind {
	case KindUndefined:
		return engine.Undefined()
	case KindNull:
		return engine.Null()
	case KindBoolean:
		return engine.Boolean(v.boolVal)
	case KindString:
		return engine.String(v.strVal)
	case KindNumber:
		return engine.Number(v.numVal)
	default:
		if v.objVal == nil {
			return engine.Undefined()
		}
		return engine.ObjectValue(v.objVal.eo)
	}
}

func (d *Debugger) wrapCompletion(c engine.Completion) CompletionValue {
	switch c.Kind {
	case engine.CompleteThrow:
		return ThrowCompletion(d.wrapValue(c.Value))
	case engine.CompleteTerminate:
		return TerminateCompletion()
	default:
		return ReturnCompletion(d.wrapValue(c.Value))
	}
}

func (d *Debugger) unwrapCompletion(c CompletionValue) engine.Completion {
	switch c.kind {
	case CompletionThrow:
		return engine.Throw(d.unwrapValue(c.val))
	case CompletionTerminate:
		return engine.Terminate()
	default:
		return engine.Return(d.unwrapValue(c.val))
	}
}

func (d *Debugger) unwrapResumption(r ResumptionValue) *engine.Completion {
	if r == nil {
		return nil
	}
	c := d.unwrapCompletion(*r)
	return &c
}
