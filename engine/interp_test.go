package engine

import (
	"testing"
)

// testHooks is a minimal Hooks implementation for exercising the hook
// contract directly.
type testHooks struct {
	pushed  []*Frame
	popped  []Completion
	onInstr func(f *Frame) *Completion
	onPop   func(f *Frame, c Completion) *Completion
}

func (h *testHooks) OnFramePush(f *Frame) {
	h.pushed = append(h.pushed, f)
}

func (h *testHooks) OnInstruction(f *Frame) *Completion {
	if h.onInstr != nil {
		return h.onInstr(f)
	}
	return nil
}

func (h *testHooks) OnFramePop(f *Frame, c Completion) *Completion {
	h.popped = append(h.popped, c)
	if h.onPop != nil {
		return h.onPop(f, c)
	}
	return nil
}

// sumChunk assembles `10 + 32`.
func sumChunk() *Chunk {
	c := NewChunk()
	c.AddSourceLocation(0, 1, 1)
	c.EmitU16(OpNumber, c.AddNumber(10))
	c.EmitU16(OpNumber, c.AddNumber(32))
	c.Emit(OpAdd)
	c.Emit(OpReturn)
	return c
}

// observedGlobal returns a global whose realm counts as a debuggee, so
// OnInstruction fires.
func observedGlobal() *Object {
	g := NewGlobal()
	g.SetDebuggee(true)
	return g
}

// ---------------------------------------------------------------------------
// Execution tests
// ---------------------------------------------------------------------------

func TestRunGlobal(t *testing.T) {
	interp := NewInterp()
	c := interp.RunGlobal(sumChunk(), NewGlobal())
	if c.Kind != CompleteReturn || c.Value.NumVal != 42 {
		t.Errorf("expected Return 42, got %s %s", c.Kind, c.Value)
	}
}

func TestRunModuleFrameKind(t *testing.T) {
	interp := NewInterp()
	hooks := &testHooks{}
	interp.SetHooks(hooks)

	interp.RunModule(sumChunk(), NewGlobal())
	if len(hooks.pushed) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(hooks.pushed))
	}
	if hooks.pushed[0].Kind() != FrameModule {
		t.Errorf("expected a module frame, got %s", hooks.pushed[0].Kind())
	}
}

func TestConditionalJump(t *testing.T) {
	// false ? 1 : 2
	c := NewChunk()
	c.Emit(OpFalse)
	jump := c.EmitJump(OpJumpFalse)
	c.EmitU16(OpNumber, c.AddNumber(1))
	end := c.EmitJump(OpJump)
	c.PatchJump(jump)
	c.EmitU16(OpNumber, c.AddNumber(2))
	c.PatchJump(end)
	c.Emit(OpReturn)

	interp := NewInterp()
	result := interp.RunGlobal(c, NewGlobal())
	if result.Value.NumVal != 2 {
		t.Errorf("expected the false branch, got %s", result.Value)
	}
}

func TestCallFunctionArguments(t *testing.T) {
	// fn(a, b) { return a - b } with a surplus and a missing argument.
	body := NewChunk()
	body.ParamNames = []string{"a", "b"}
	body.EmitU16(OpGetVar, body.AddConstant("a"))
	body.EmitU16(OpGetVar, body.AddConstant("b"))
	body.Emit(OpSub)
	body.Emit(OpReturn)

	interp := NewInterp()
	global := NewGlobal()
	fn := NewFunction("sub", body, global.GlobalScope())

	c := interp.CallFunction(fn, Undefined(), []Value{Number(10), Number(4), Number(99)})
	if c.Value.NumVal != 6 {
		t.Errorf("expected 6 with a surplus argument, got %s", c.Value)
	}

	// Missing arguments read as undefined, whose numeric payload is zero.
	c = interp.CallFunction(fn, Undefined(), []Value{Number(10)})
	if c.Kind != CompleteReturn || c.Value.NumVal != 10 {
		t.Errorf("expected 10 for a missing argument, got %s", c.Value)
	}
}

func TestCallNonCallableValue(t *testing.T) {
	interp := NewInterp()
	c := interp.CallFunction(NewObject("Object"), Undefined(), nil)
	if c.Kind != CompleteThrow {
		t.Errorf("expected a throw for a non-callable, got %s", c.Kind)
	}
}

func TestThrowPropagatesThroughCalls(t *testing.T) {
	body := NewChunk()
	body.EmitU16(OpConst, body.AddConstant("inner"))
	body.Emit(OpThrow)

	outer := NewChunk()
	ci := outer.AddChild(body)
	outer.EmitU16(OpMakeFunc, ci)
	outer.Emit(OpUndefined)
	outer.EmitU8(OpCall, 0)
	outer.Emit(OpReturn)

	interp := NewInterp()
	c := interp.RunGlobal(outer, NewGlobal())
	if c.Kind != CompleteThrow || c.Value.StrVal != "inner" {
		t.Errorf("expected the inner throw to propagate, got %s %s", c.Kind, c.Value)
	}
}

func TestConstruct(t *testing.T) {
	interp := NewInterp()

	proto := NewObject("Object")
	fn := NewNativeFunction("Point", func(in *Interp, this Value, args []Value) Completion {
		this.ObjVal.Set("x", args[0])
		return Return(Undefined())
	})
	fn.Set("prototype", ObjectValue(proto))

	c := interp.Construct(fn, []Value{Number(3)})
	if c.Kind != CompleteReturn || !c.Value.IsObject() {
		t.Fatalf("expected a constructed object, got %s %s", c.Kind, c.Value)
	}
	obj := c.Value.ObjVal
	if obj.Proto() != proto {
		t.Error("constructed object should link the prototype")
	}
	if obj.Get("x").NumVal != 3 {
		t.Errorf("expected x == 3, got %s", obj.Get("x"))
	}
}

func TestConstructExplicitObjectReturnWins(t *testing.T) {
	interp := NewInterp()
	other := NewObject("Object")
	fn := NewNativeFunction("F", func(in *Interp, this Value, args []Value) Completion {
		return Return(ObjectValue(other))
	})

	c := interp.Construct(fn, nil)
	if c.Value.ObjVal != other {
		t.Error("an explicit object return should replace the fresh object")
	}
}

func TestConstructMarksFrameConstructing(t *testing.T) {
	body := NewChunk()
	body.Emit(OpUndefined)
	body.Emit(OpReturn)

	interp := NewInterp()
	global := observedGlobal()
	fn := NewFunction("F", body, global.GlobalScope())

	var seen []bool
	hooks := &testHooks{onInstr: func(f *Frame) *Completion {
		if f.Offset() == 0 {
			seen = append(seen, f.IsConstructing())
		}
		return nil
	}}
	interp.SetHooks(hooks)

	interp.Construct(fn, nil)
	interp.CallFunction(fn, Undefined(), nil)

	if len(seen) != 2 {
		t.Fatalf("expected 2 frame entries, got %d", len(seen))
	}
	if !seen[0] {
		t.Error("a frame entered through Construct should be constructing")
	}
	if seen[1] {
		t.Error("a frame entered through CallFunction should not be constructing")
	}
}

func TestBoundFunctionCall(t *testing.T) {
	interp := NewInterp()
	add := NewNativeFunction("add", func(in *Interp, this Value, args []Value) Completion {
		sum := this.NumVal
		for _, a := range args {
			sum += a.NumVal
		}
		return Return(Number(sum))
	})
	bound := add.Bind(Number(100), []Value{Number(1)})
	doubleBound := bound.Bind(Number(0), []Value{Number(2)})

	// Binding an already-bound function keeps the innermost this.
	c := interp.CallFunction(doubleBound, Undefined(), []Value{Number(3)})
	if c.Value.NumVal != 106 {
		t.Errorf("expected 100 + 1 + 2 + 3 = 106, got %s", c.Value)
	}
}

func TestAccessorGetterRuns(t *testing.T) {
	interp := NewInterp()
	global := NewGlobal()

	o := NewObject("Object")
	getter := NewNativeFunction("get x", func(in *Interp, this Value, args []Value) Completion {
		return Return(Number(7))
	})
	o.DefineOwn("x", Property{Accessor: true, Getter: getter, Configurable: true})

	c := interp.EvalInScope("o.x", global.GlobalScope(), map[string]Value{"o": ObjectValue(o)})
	if c.Kind != CompleteReturn || c.Value.NumVal != 7 {
		t.Errorf("expected the getter result 7, got %s %s", c.Kind, c.Value)
	}
}

func TestGetPropertyWalksPrototypeChain(t *testing.T) {
	interp := NewInterp()
	global := NewGlobal()

	proto := NewObject("Object")
	proto.Set("shared", Number(5))
	o := NewObject("Object")
	o.SetProto(proto)

	c := interp.EvalInScope("o.shared", global.GlobalScope(), map[string]Value{"o": ObjectValue(o)})
	if c.Value.NumVal != 5 {
		t.Errorf("expected the inherited value, got %s", c.Value)
	}
}

// ---------------------------------------------------------------------------
// Hook contract tests
// ---------------------------------------------------------------------------

func TestHooksFramePushPop(t *testing.T) {
	interp := NewInterp()
	hooks := &testHooks{}
	interp.SetHooks(hooks)

	interp.RunGlobal(sumChunk(), observedGlobal())
	if len(hooks.pushed) != 1 || len(hooks.popped) != 1 {
		t.Fatalf("expected 1 push and 1 pop, got %d and %d", len(hooks.pushed), len(hooks.popped))
	}
	f := hooks.pushed[0]
	if f.Kind() != FrameGlobal || f.Tier() != TierInterpreter {
		t.Errorf("unexpected frame shape: %s %s", f.Kind(), f.Tier())
	}
	if f.IsLive() {
		t.Error("frame should be dead after the run")
	}
	if hooks.popped[0].Value.NumVal != 42 {
		t.Errorf("pop hook should see the natural completion, got %s", hooks.popped[0].Value)
	}
}

func TestOnInstructionSkippedOutsideDebuggee(t *testing.T) {
	interp := NewInterp()
	fired := 0
	hooks := &testHooks{onInstr: func(f *Frame) *Completion {
		fired++
		return nil
	}}
	interp.SetHooks(hooks)

	interp.RunGlobal(sumChunk(), NewGlobal())
	if fired != 0 {
		t.Errorf("OnInstruction fired %d times in an unobserved realm", fired)
	}

	interp.RunGlobal(sumChunk(), observedGlobal())
	if fired != 4 {
		t.Errorf("expected 4 instruction events, got %d", fired)
	}
}

func TestOnInstructionResumption(t *testing.T) {
	interp := NewInterp()
	hooks := &testHooks{onInstr: func(f *Frame) *Completion {
		if f.Offset() == 3 {
			r := Return(Number(7))
			return &r
		}
		return nil
	}}
	interp.SetHooks(hooks)

	c := interp.RunGlobal(sumChunk(), observedGlobal())
	if c.Kind != CompleteReturn || c.Value.NumVal != 7 {
		t.Errorf("expected the forced completion, got %s %s", c.Kind, c.Value)
	}
}

func TestOnFramePopOverride(t *testing.T) {
	interp := NewInterp()
	hooks := &testHooks{onPop: func(f *Frame, c Completion) *Completion {
		if !f.IsLive() {
			t.Error("frame should still be live during the pop hook")
		}
		r := Throw(String("override"))
		return &r
	}}
	interp.SetHooks(hooks)

	c := interp.RunGlobal(sumChunk(), observedGlobal())
	if c.Kind != CompleteThrow || c.Value.StrVal != "override" {
		t.Errorf("expected the overridden completion, got %s %s", c.Kind, c.Value)
	}
}

func TestTopFrameNesting(t *testing.T) {
	interp := NewInterp()
	global := observedGlobal()

	var depths []int
	hooks := &testHooks{}
	hooks.onInstr = func(f *Frame) *Completion {
		depth := 0
		for cur := interp.TopFrame(); cur != nil; cur = cur.Older() {
			depth++
		}
		depths = append(depths, depth)
		return nil
	}
	interp.SetHooks(hooks)

	body := NewChunk()
	body.Emit(OpUndefined)
	body.Emit(OpReturn)
	outer := NewChunk()
	ci := outer.AddChild(body)
	outer.EmitU16(OpMakeFunc, ci)
	outer.Emit(OpUndefined)
	outer.EmitU8(OpCall, 0)
	outer.Emit(OpReturn)

	interp.RunGlobal(outer, global)
	if interp.TopFrame() != nil {
		t.Error("TopFrame should be nil after the run")
	}

	saw2 := false
	for _, d := range depths {
		if d == 2 {
			saw2 = true
		}
	}
	if !saw2 {
		t.Errorf("expected a nested frame during the call, depths %v", depths)
	}
}

func TestFrameIDsUnique(t *testing.T) {
	interp := NewInterp()
	hooks := &testHooks{}
	interp.SetHooks(hooks)
	global := NewGlobal()

	interp.RunGlobal(sumChunk(), global)
	interp.RunGlobal(sumChunk(), global)
	if len(hooks.pushed) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(hooks.pushed))
	}
	if hooks.pushed[0].ID() == hooks.pushed[1].ID() {
		t.Error("frames should have unique identifiers")
	}
}

// ---------------------------------------------------------------------------
// Eval entry point tests
// ---------------------------------------------------------------------------

func TestEvalInScopeBindingsAreScoped(t *testing.T) {
	interp := NewInterp()
	global := NewGlobal()
	scope := NewDeclarativeScope(global.GlobalScope())
	scope.Declare("x", Number(1))

	c := interp.EvalInScope("x", scope, map[string]Value{"x": Number(99)})
	if c.Value.NumVal != 99 {
		t.Errorf("bindings should shadow the target scope, got %s", c.Value)
	}

	// The binding layer is not the target scope: the original binding is
	// untouched and the layer is gone afterwards.
	if v, _ := scope.Get("x"); v.NumVal != 1 {
		t.Errorf("target scope should be untouched, got %s", v)
	}
}

func TestEvalRecordsIntroducer(t *testing.T) {
	interp := NewInterp()
	global := observedGlobal()
	outer := sumChunk()

	var evalFrame *Frame
	hooks := &testHooks{}
	hooks.onInstr = func(f *Frame) *Completion {
		if f.Chunk() == outer && f.Offset() == 3 {
			interp.EvalInScope("1", f.Scope(), nil)
		}
		return nil
	}
	interp.SetHooks(hooks)

	interp.RunGlobal(outer, global)

	for _, f := range hooks.pushed {
		if f.Kind() == FrameEval {
			evalFrame = f
		}
	}
	if evalFrame == nil {
		t.Fatal("expected an eval frame")
	}
	src := evalFrame.Chunk().Source
	if src == nil {
		t.Fatal("eval chunk should carry a source")
	}
	intro, offset := src.Introducer()
	if intro != outer {
		t.Error("eval source should record the introducing chunk")
	}
	if offset != 3 {
		t.Errorf("expected introducing offset 3, got %d", offset)
	}
}
