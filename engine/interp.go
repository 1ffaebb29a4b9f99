package engine

import (
	"encoding/binary"
	"fmt"
)

// CompletionKind describes how a call or evaluation completed.
type CompletionKind int

const (
	// CompleteReturn means the code produced a result value.
	CompleteReturn CompletionKind = iota

	// CompleteThrow means the code threw the given value.
	CompleteThrow

	// CompleteTerminate means execution was forcibly terminated.
	CompleteTerminate
)

// String returns a human-readable name for the completion kind.
func (k CompletionKind) String() string {
	switch k {
	case CompleteReturn:
		return "return"
	case CompleteThrow:
		return "throw"
	case CompleteTerminate:
		return "terminate"
	default:
		return "unknown"
	}
}

// Completion is the outcome of running a frame, call, or evaluation.
type Completion struct {
	Kind  CompletionKind
	Value Value // Meaningful for return and throw
}

// Return creates a normal completion carrying v.
func Return(v Value) Completion {
	return Completion{Kind: CompleteReturn, Value: v}
}

// Throw creates a throw completion carrying v.
func Throw(v Value) Completion {
	return Completion{Kind: CompleteThrow, Value: v}
}

// Terminate creates a forced-termination completion.
func Terminate() Completion {
	return Completion{Kind: CompleteTerminate}
}

// throwString is shorthand for throwing an engine error message.
func throwString(format string, args ...any) Completion {
	return Throw(String(fmt.Sprintf(format, args...)))
}

// FrameKind classifies an activation record.
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

// Tier is the implementation tier a frame executes in. The reference
// interpreter only ever produces TierInterpreter frames; the other values
// exist so annotations survive round-trips from tiering engines.
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

// Frame is one activation record on the call stack. A frame is live from
// the moment it is pushed until the moment it is popped; nothing about a
// dead frame may be trusted except its identity.
type Frame struct {
	id     uint64
	kind   FrameKind
	tier   Tier
	chunk  *Chunk
	scope  *Scope
	callee *Object
	this   Value
	args   []Value
	ip     int
	live   bool
	older  *Frame
	stack  []Value

	constructing bool
}

// ID returns the frame's unique identifier for the lifetime of the
// interpreter.
func (f *Frame) ID() uint64 {
	return f.id
}

// Kind returns the frame's classification.
func (f *Frame) Kind() FrameKind {
	return f.kind
}

// Tier returns the implementation tier executing the frame.
func (f *Frame) Tier() Tier {
	return f.tier
}

// Chunk returns the code the frame is executing, nil for host frames.
func (f *Frame) Chunk() *Chunk {
	return f.chunk
}

// Scope returns the innermost scope of the frame, nil for host frames.
func (f *Frame) Scope() *Scope {
	return f.scope
}

// Callee returns the function being executed, nil for non-call frames.
func (f *Frame) Callee() *Object {
	return f.callee
}

// This returns the frame's this value.
func (f *Frame) This() Value {
	return f.this
}

// Args returns the arguments the frame was entered with.
func (f *Frame) Args() []Value {
	return f.args
}

// IsConstructing returns true for a call frame entered through Construct.
func (f *Frame) IsConstructing() bool {
	return f.constructing
}

// Offset returns the bytecode offset the frame is currently executing.
func (f *Frame) Offset() uint32 {
	return uint32(f.ip)
}

// IsLive returns true while the frame is on the call stack.
func (f *Frame) IsLive() bool {
	return f.live
}

// Older returns the next frame outward on the stack, nil for the
// outermost frame.
func (f *Frame) Older() *Frame {
	return f.older
}

// IsDebuggee returns true when the frame runs debuggee code in an
// observed realm.
func (f *Frame) IsDebuggee() bool {
	return f.chunk != nil && f.scope != nil && f.scope.IsDebuggee()
}

// Hooks is the callback surface the interpreter drives. A debugger
// registers one Hooks implementation; the interpreter is suspended while
// a hook runs. A non-nil Completion returned from OnInstruction or
// OnFramePop is adopted verbatim in place of the natural continuation.
type Hooks interface {
	// OnFramePush fires after a frame is pushed, before its first
	// instruction.
	OnFramePush(f *Frame)

	// OnInstruction fires before each instruction of a debuggee frame.
	OnInstruction(f *Frame) *Completion

	// OnFramePop fires as the frame is popped, with its natural
	// completion. The returned completion, if any, is what the caller
	// observes instead.
	OnFramePop(f *Frame, c Completion) *Completion
}

// Interp executes chunks. It is single-threaded: all entry points,
// including re-entrant evaluation from inside a hook, run on the same
// goroutine as the caller.
type Interp struct {
	hooks       Hooks
	top         *Frame
	nextFrameID uint64
}

// NewInterp creates an interpreter with no hooks installed.
func NewInterp() *Interp {
	return &Interp{}
}

// SetHooks installs the hook surface, replacing any previous one.
func (in *Interp) SetHooks(h Hooks) {
	in.hooks = h
}

// TopFrame returns the innermost live frame, nil when nothing is running.
func (in *Interp) TopFrame() *Frame {
	return in.top
}

// RunGlobal executes top-level script code against the given global.
func (in *Interp) RunGlobal(chunk *Chunk, global *Object) Completion {
	return in.runTopLevel(chunk, global, FrameGlobal)
}

// RunModule executes module top-level code against the given global.
func (in *Interp) RunModule(chunk *Chunk, global *Object) Completion {
	return in.runTopLevel(chunk, global, FrameModule)
}

func (in *Interp) runTopLevel(chunk *Chunk, global *Object, kind FrameKind) Completion {
	scope := NewDeclarativeScope(global.GlobalScope())
	for _, name := range chunk.LocalNames {
		scope.Declare(name, Undefined())
	}
	f := in.newFrame(kind, chunk, scope, nil, ObjectValue(global), nil)
	return in.runFrame(f)
}

// CallFunction invokes a callable object with the given this value and
// arguments, unwrapping bound functions first.
func (in *Interp) CallFunction(fn *Object, this Value, args []Value) Completion {
	return in.callFunction(fn, this, args, false)
}

func (in *Interp) callFunction(fn *Object, this Value, args []Value, constructing bool) Completion {
	for fn.IsBound() {
		info := fn.Function()
		args = append(append([]Value(nil), info.BoundArgs...), args...)
		this = info.BoundThis
		fn = info.BoundTarget
	}
	info := fn.Function()
	if info == nil {
		return throwString("TypeError: value is not callable")
	}
	if info.Native != nil {
		return info.Native(in, this, args)
	}

	scope := NewDeclarativeScope(info.Scope)
	scope.SetCallee(fn)
	for i, name := range info.Chunk.ParamNames {
		if i < len(args) {
			scope.Declare(name, args[i])
		} else {
			scope.Declare(name, Undefined())
		}
	}
	for _, name := range info.Chunk.LocalNames {
		scope.Declare(name, Undefined())
	}

	f := in.newFrame(FrameCall, info.Chunk, scope, fn, this, args)
	f.constructing = constructing
	return in.runFrame(f)
}

// Construct invokes a callable object as a constructor: a fresh object
// becomes the this value, and the call result is the constructed object
// unless the body explicitly returned a different object.
func (in *Interp) Construct(fn *Object, args []Value) Completion {
	obj := NewObject("Object")
	if protoVal := fn.Get("prototype"); protoVal.IsObject() {
		obj.SetProto(protoVal.ObjVal)
	}
	c := in.callFunction(fn, ObjectValue(obj), args, true)
	if c.Kind != CompleteReturn {
		return c
	}
	if c.Value.IsObject() {
		return c
	}
	return Return(ObjectValue(obj))
}

// EvalInScope compiles code with the engine's expression compiler and
// runs it on an eval frame above the given scope. Extra bindings, if any,
// are layered in a scope of their own between the eval frame and its
// target, shadowing outer bindings on conflict. Compile errors surface as
// thrown values, never as Go errors.
func (in *Interp) EvalInScope(code string, scope *Scope, bindings map[string]Value) Completion {
	return in.EvalInScopeAs(code, scope, bindings, IntroducedByEval)
}

// EvalInScopeAs is EvalInScope with an explicit introduction type on the
// compiled source, so debugger-driven evaluations are distinguishable
// from the debuggee's own evals.
func (in *Interp) EvalInScopeAs(code string, scope *Scope, bindings map[string]Value, intro IntroductionType) Completion {
	chunk, err := CompileEvalAs(code, intro)
	if err != nil {
		return throwString("SyntaxError: %v", err)
	}
	if in.top != nil && in.top.chunk != nil {
		chunk.Source.SetIntroducer(in.top.chunk, in.top.Offset())
	}

	base := scope
	if len(bindings) > 0 {
		bs := NewDeclarativeScope(base)
		for name, v := range bindings {
			bs.Declare(name, v)
		}
		base = bs
	}
	evalScope := NewDeclarativeScope(base)
	for _, name := range chunk.LocalNames {
		evalScope.Declare(name, Undefined())
	}

	var this Value
	if g := scope.Global(); g != nil {
		this = ObjectValue(g)
	} else {
		this = Undefined()
	}
	f := in.newFrame(FrameEval, chunk, evalScope, nil, this, nil)
	return in.runFrame(f)
}

func (in *Interp) newFrame(kind FrameKind, chunk *Chunk, scope *Scope, callee *Object, this Value, args []Value) *Frame {
	in.nextFrameID++
	return &Frame{
		id:     in.nextFrameID,
		kind:   kind,
		tier:   TierInterpreter,
		chunk:  chunk,
		scope:  scope,
		callee: callee,
		this:   this,
		args:   args,
	}
}

// runFrame executes f to completion. The frame is live for exactly the
// duration of this call.
func (in *Interp) runFrame(f *Frame) Completion {
	f.older = in.top
	f.live = true
	in.top = f

	if in.hooks != nil {
		in.hooks.OnFramePush(f)
	}

	completion := in.execute(f)

	// The pop hook sees the frame while it is still formally on the
	// stack, so the handler can inspect it one last time.
	if in.hooks != nil {
		if r := in.hooks.OnFramePop(f, completion); r != nil {
			completion = *r
		}
	}

	f.live = false
	in.top = f.older
	return completion
}

func (in *Interp) push(f *Frame, v Value) {
	f.stack = append(f.stack, v)
}

func (in *Interp) pop(f *Frame) Value {
	if len(f.stack) == 0 {
		return Undefined()
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v
}

// execute is the instruction loop for one frame.
func (in *Interp) execute(f *Frame) Completion {
	code := f.chunk.Code
	for f.ip < len(code) {
		if in.hooks != nil && f.IsDebuggee() {
			if r := in.hooks.OnInstruction(f); r != nil {
				return *r
			}
		}

		op := Opcode(code[f.ip])
		operandAt := f.ip + 1
		f.ip += 1 + op.OperandWidth()

		switch op {
		case OpNop:
			// Nothing.

		case OpPop:
			in.pop(f)

		case OpDup:
			v := in.pop(f)
			in.push(f, v)
			in.push(f, v)

		case OpSwap:
			b := in.pop(f)
			a := in.pop(f)
			in.push(f, b)
			in.push(f, a)

		case OpConst:
			in.push(f, String(f.chunk.Constants[in.u16(code, operandAt)]))

		case OpNumber:
			in.push(f, Number(f.chunk.Numbers[in.u16(code, operandAt)]))

		case OpUndefined:
			in.push(f, Undefined())

		case OpNull:
			in.push(f, Null())

		case OpTrue:
			in.push(f, Boolean(true))

		case OpFalse:
			in.push(f, Boolean(false))

		case OpGetVar:
			name := f.chunk.Constants[in.u16(code, operandAt)]
			v, ok := in.resolve(f.scope, name)
			if !ok {
				return throwString("ReferenceError: %s is not defined", name)
			}
			in.push(f, v)

		case OpSetVar:
			name := f.chunk.Constants[in.u16(code, operandAt)]
			v := in.pop(f)
			in.assign(f.scope, name, v)
			in.push(f, v)

		case OpNewObject:
			in.push(f, ObjectValue(NewObject("Object")))

		case OpGetProp:
			name := f.chunk.Constants[in.u16(code, operandAt)]
			recv := in.pop(f)
			if !recv.IsObject() {
				return throwString("TypeError: cannot read property %q of %s", name, recv.String())
			}
			c := in.getProperty(recv.ObjVal, recv, name)
			if c.Kind != CompleteReturn {
				return c
			}
			in.push(f, c.Value)

		case OpSetProp:
			name := f.chunk.Constants[in.u16(code, operandAt)]
			v := in.pop(f)
			recv := in.pop(f)
			if !recv.IsObject() {
				return throwString("TypeError: cannot set property %q of %s", name, recv.String())
			}
			recv.ObjVal.Set(name, v)
			in.push(f, v)

		case OpMakeFunc:
			child := f.chunk.Children[in.u16(code, operandAt)]
			var fn *Object
			if child.Arrow {
				fn = NewArrowFunction(child.FuncName, child, f.scope)
			} else {
				fn = NewFunction(child.FuncName, child, f.scope)
			}
			in.push(f, ObjectValue(fn))

		case OpAdd:
			b := in.pop(f)
			a := in.pop(f)
			in.push(f, addValues(a, b))

		case OpSub:
			b := in.pop(f)
			a := in.pop(f)
			in.push(f, Number(a.NumVal-b.NumVal))

		case OpEq:
			b := in.pop(f)
			a := in.pop(f)
			in.push(f, Boolean(a.Equal(b)))

		case OpLt:
			b := in.pop(f)
			a := in.pop(f)
			in.push(f, Boolean(a.NumVal < b.NumVal))

		case OpJump:
			f.ip += int(int16(in.u16(code, operandAt)))

		case OpJumpFalse:
			if !in.pop(f).IsTruthy() {
				f.ip += int(int16(in.u16(code, operandAt)))
			}

		case OpCall:
			argc := int(code[operandAt])
			args := make([]Value, argc)
			for i := argc - 1; i >= 0; i-- {
				args[i] = in.pop(f)
			}
			this := in.pop(f)
			fnVal := in.pop(f)
			if !fnVal.IsCallable() {
				return throwString("TypeError: %s is not a function", fnVal.String())
			}
			c := in.CallFunction(fnVal.ObjVal, this, args)
			if c.Kind != CompleteReturn {
				return c
			}
			in.push(f, c.Value)

		case OpReturn:
			return Return(in.pop(f))

		case OpThrow:
			return Throw(in.pop(f))

		default:
			return throwString("InternalError: unknown opcode 0x%02X at offset %d", byte(op), operandAt-1)
		}
	}
	return Return(Undefined())
}

func (in *Interp) u16(code []byte, at int) uint16 {
	return binary.BigEndian.Uint16(code[at : at+2])
}

// resolve walks the scope chain including proxy-backed scopes: the
// interpreter is the one place where running trap code is legitimate.
func (in *Interp) resolve(scope *Scope, name string) (Value, bool) {
	for s := scope; s != nil; s = s.Parent() {
		if v, ok := s.Get(name); ok {
			return v, true
		}
	}
	return Undefined(), false
}

// assign updates the innermost binding of name, or creates a global
// property when no scope binds it.
func (in *Interp) assign(scope *Scope, name string, v Value) {
	for s := scope; s != nil; s = s.Parent() {
		if s.Has(name) {
			s.Put(name, v)
			return
		}
	}
	if g := scope.Global(); g != nil {
		g.Set(name, v)
	}
}

// getProperty reads a property along the prototype chain, running the
// getter of accessor properties.
func (in *Interp) getProperty(obj *Object, recv Value, name string) Completion {
	for o := obj; o != nil; o = o.Proto() {
		p := o.Prop(name)
		if p == nil {
			continue
		}
		if p.Accessor {
			if p.Getter == nil {
				return Return(Undefined())
			}
			return in.CallFunction(p.Getter, recv, nil)
		}
		return Return(p.Value)
	}
	return Return(Undefined())
}

// addValues implements OpAdd: string concatenation when either operand is
// a string, numeric addition otherwise.
func addValues(a, b Value) Value {
	if a.Kind == KindString || b.Kind == KindString {
		return String(asConcatString(a) + asConcatString(b))
	}
	return Number(a.NumVal + b.NumVal)
}

func asConcatString(v Value) string {
	if v.Kind == KindString {
		return v.StrVal
	}
	return v.String()
}
