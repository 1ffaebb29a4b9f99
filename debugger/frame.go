package debugger

import "github.com/chazu/scry/engine"

// FrameKind classifies an activation record on the debuggee stack.
type FrameKind int

const (
	FrameCall   FrameKind = iota // Function call
	FrameEval                    // Eval entry point
	FrameGlobal                  // Top-level script code
	FrameModule                  // Module top-level code
)

// String returns a human-readable name for the frame kind.
func (k FrameKind) String() string {
	switch k {
	case FrameCall:
		return "call"
	case FrameEval:
		return "eval"
	case FrameGlobal:
		return "global"
	case FrameModule:
		return "module"
	default:
		return "unknown"
	}
}

// Tier is the implementation tier a frame executes in.
type Tier int

const (
	TierInterpreter Tier = iota
	TierBaseline
	TierIon
)

// String returns a human-readable name for the tier.
func (t Tier) String() string {
	switch t {
	case TierInterpreter:
		return "interpreter"
	case TierBaseline:
		return "baseline"
	case TierIon:
		return "ion"
	default:
		return "unknown"
	}
}

// Frame wraps one activation record on the debuggee's call stack. It is
// valid only while live; accessors that depend on an active script
// degrade to their zero results once the frame is dead or turns out not
// to be a debuggee frame, while the evaluation entry points fail with
// ErrFrameNotDebuggee because they need an environment to run in.
//
// All wrappers to the same underlying frame observe the same step and
// pop registrations.
type Frame struct {
	d  *Debugger
	ef *engine.Frame
}

// IsLive returns true while the frame is on the debuggee's call stack.
func (f *Frame) IsLive() bool {
	return f.ef.IsLive()
}

// Kind returns the frame's classification.
func (f *Frame) Kind() FrameKind {
	switch f.ef.Kind() {
	case engine.FrameEval:
		return FrameEval
	case engine.FrameGlobal:
		return FrameGlobal
	case engine.FrameModule:
		return FrameModule
	default:
		return FrameCall
	}
}

// Tier returns the implementation tier executing the frame.
func (f *Frame) Tier() Tier {
	switch f.ef.Tier() {
	case engine.TierBaseline:
		return TierBaseline
	case engine.TierIon:
		return TierIon
	default:
		return TierInterpreter
	}
}

// inspectable reports whether the frame's script-dependent accessors may
// return data right now. Re-checked on every call, never cached.
func (f *Frame) inspectable() bool {
	return f.ef.IsLive() && f.ef.IsDebuggee()
}

// Older returns the next frame outward on the stack, nil for the
// outermost frame or once the frame is dead.
func (f *Frame) Older() *Frame {
	if !f.ef.IsLive() {
		return nil
	}
	older := f.ef.Older()
	if older == nil {
		return nil
	}
	return f.d.wrapFrame(older)
}

// Environment returns the frame's innermost lexical environment, nil for
// dead or non-debuggee frames.
func (f *Frame) Environment() *Environment {
	if !f.inspectable() {
		return nil
	}
	return f.d.wrapEnvironment(f.ef.Scope())
}

// Script returns the script the frame is executing, nil for dead or
// non-debuggee frames.
func (f *Frame) Script() *Script {
	if !f.inspectable() {
		return nil
	}
	return f.d.wrapScript(f.ef.Chunk())
}

// Offset returns the bytecode offset the frame is currently executing.
// The second result is false for dead or non-debuggee frames.
func (f *Frame) Offset() (uint32, bool) {
	if !f.inspectable() {
		return 0, false
	}
	return f.ef.Offset(), true
}

// Callee returns the function being executed, nil where the relation
// does not apply.
func (f *Frame) Callee() *Object {
	if !f.inspectable() {
		return nil
	}
	return f.d.wrapObject(f.ef.Callee())
}

// Arguments returns the arguments of a call frame, nil for other frame
// kinds and for dead or non-debuggee frames.
func (f *Frame) Arguments() []Value {
	if !f.inspectable() || f.ef.Kind() != engine.FrameCall {
		return nil
	}
	args := f.ef.Args()
	wrapped := make([]Value, len(args))
	for i, a := range args {
		wrapped[i] = f.d.wrapValue(a)
	}
	return wrapped
}

// Depth returns the number of frames older than this one on the stack:
// zero for the outermost frame. Zero once the frame is dead.
func (f *Frame) Depth() uint32 {
	if !f.ef.IsLive() {
		return 0
	}
	var depth uint32
	for older := f.ef.Older(); older != nil; older = older.Older() {
		depth++
	}
	return depth
}

// IsConstructing returns true for a call frame whose function is being
// invoked as a constructor.
func (f *Frame) IsConstructing() bool {
	return f.ef.IsLive() && f.ef.IsConstructing()
}

// This returns the frame's this value, undefined for dead or
// non-debuggee frames.
func (f *Frame) This() Value {
	if !f.inspectable() {
		return Undefined()
	}
	return f.d.wrapValue(f.ef.This())
}

// Eval runs code with the frame's environment as its scope and returns
// the resulting completion. This is an explicit, intentional re-entry
// point: the debuggee runs, and handlers may fire recursively.
func (f *Frame) Eval(code string) (CompletionValue, error) {
	return f.EvalWithBindings(code, nil)
}

// EvalWithBindings is Eval with extra names pre-bound in a scope layered
// above the frame's own, shadowing on conflict.
func (f *Frame) EvalWithBindings(code string, bindings map[string]Value) (CompletionValue, error) {
	if !f.ef.IsLive() || !f.ef.IsDebuggee() {
		return CompletionValue{}, ErrFrameNotDebuggee
	}
	var eb map[string]engine.Value
	if len(bindings) > 0 {
		eb = make(map[string]engine.Value, len(bindings))
		for name, v := range bindings {
			eb[name] = f.d.unwrapValue(v)
		}
	}
	c := f.d.interp.EvalInScopeAs(code, f.ef.Scope(), eb, engine.IntroducedByDebug)
	return f.d.wrapCompletion(c), nil
}

// OnStep returns the frame's current step handler, nil if none.
func (f *Frame) OnStep() StepHandler {
	return f.d.onStepOf(f.ef)
}

// SetOnStep installs the frame's step handler, replacing any previous
// one; nil clears it. Registration takes effect before the next offset
// change; a cleared handler never fires afterwards.
func (f *Frame) SetOnStep(h StepHandler) {
	f.d.setOnStep(f.ef, h)
}

// OnPop returns the frame's current pop handler, nil if none.
func (f *Frame) OnPop() PopHandler {
	return f.d.onPopOf(f.ef)
}

// SetOnPop installs the frame's pop handler, replacing any previous one;
// nil clears it.
func (f *Frame) SetOnPop(h PopHandler) {
	f.d.setOnPop(f.ef, h)
}
