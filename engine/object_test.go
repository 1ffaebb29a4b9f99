package engine

import "testing"

func TestObjectSetGet(t *testing.T) {
	o := NewObject("Object")
	if !o.Set("x", Number(1)) {
		t.Fatal("Set on a fresh object should succeed")
	}
	if o.Get("x").NumVal != 1 {
		t.Errorf("expected 1, got %s", o.Get("x"))
	}
	if !o.Get("nope").IsUndefined() {
		t.Error("absent property should read as undefined")
	}
}

func TestObjectSetRefusals(t *testing.T) {
	o := NewObject("Object")
	o.DefineOwn("ro", Property{Value: Number(1), Writable: false})
	if o.Set("ro", Number(2)) {
		t.Error("writing a non-writable property should be refused")
	}

	o.DefineOwn("acc", Property{Accessor: true})
	if o.Set("acc", Number(2)) {
		t.Error("plain writes through an accessor should be refused")
	}

	o.PreventExtensions()
	if o.Set("new", Number(1)) {
		t.Error("adding to a non-extensible object should be refused")
	}
}

func TestObjectGetSkipsAccessors(t *testing.T) {
	o := NewObject("Object")
	getter := NewNativeFunction("get x", nil)
	o.DefineOwn("x", Property{Accessor: true, Getter: getter})

	// The plain read path never runs debuggee code.
	if !o.Get("x").IsUndefined() {
		t.Error("accessor properties should read as undefined outside evaluation")
	}
}

func TestObjectDelete(t *testing.T) {
	o := NewObject("Object")
	o.Set("a", Number(1))
	o.Set("b", Number(2))
	o.DefineOwn("stuck", Property{Value: Number(3), Configurable: false})

	if !o.Delete("a") {
		t.Error("deleting a configurable property should succeed")
	}
	if !o.Delete("absent") {
		t.Error("deleting an absent property should succeed")
	}
	if o.Delete("stuck") {
		t.Error("deleting a non-configurable property should be refused")
	}

	names := o.PropNames()
	if len(names) != 2 || names[0] != "b" || names[1] != "stuck" {
		t.Errorf("expected [b stuck] after deletion, got %v", names)
	}
}

func TestSealAndFreeze(t *testing.T) {
	o := NewObject("Object")
	o.Set("x", Number(1))

	if o.IsSealed() || o.IsFrozen() {
		t.Fatal("fresh object should be neither sealed nor frozen")
	}

	o.Seal()
	o.Seal() // idempotent
	if !o.IsSealed() {
		t.Error("object should be sealed")
	}
	if o.IsFrozen() {
		t.Error("sealing should leave data properties writable")
	}
	if !o.Set("x", Number(2)) {
		t.Error("sealed writable property should still accept writes")
	}

	o.Freeze()
	o.Freeze() // idempotent
	if !o.IsFrozen() {
		t.Error("object should be frozen")
	}
	if o.Set("x", Number(3)) {
		t.Error("frozen property should refuse writes")
	}
}

func TestFreezeLeavesAccessorsAlone(t *testing.T) {
	o := NewObject("Object")
	getter := NewNativeFunction("get x", nil)
	o.DefineOwn("x", Property{Accessor: true, Getter: getter, Configurable: true})

	o.Freeze()
	if !o.IsFrozen() {
		t.Error("an object with only accessor properties freezes")
	}
	p := o.Prop("x")
	if !p.Accessor || p.Getter != getter {
		t.Error("freezing should not disturb accessor slots")
	}
}

func TestEmptyObjectSealedState(t *testing.T) {
	o := NewObject("Object")
	o.PreventExtensions()

	// With no properties, non-extensible already means sealed and frozen.
	if !o.IsSealed() || !o.IsFrozen() {
		t.Error("empty non-extensible object should be sealed and frozen")
	}
}

func TestGlobalObject(t *testing.T) {
	g := NewGlobal()
	if !g.IsGlobal() {
		t.Error("NewGlobal should make a global object")
	}
	scope := g.GlobalScope()
	if scope == nil {
		t.Fatal("global should carry its object scope")
	}
	if scope.Kind() != ScopeObject {
		t.Errorf("expected an object scope, got %s", scope.Kind())
	}
	if scope.Global() != g {
		t.Error("the global scope should report its own global")
	}

	if NewObject("Object").IsGlobal() {
		t.Error("plain objects are not globals")
	}
	if NewObject("Object").GlobalScope() != nil {
		t.Error("plain objects have no global scope")
	}
}

func TestBind(t *testing.T) {
	fn := NewNativeFunction("f", nil)
	bound := fn.Bind(Number(1), []Value{Number(2), Number(3)})

	if !bound.IsBound() {
		t.Fatal("Bind should produce a bound function")
	}
	if fn.IsBound() {
		t.Error("the target itself is not bound")
	}
	info := bound.Function()
	if info.BoundTarget != fn {
		t.Error("bound target should be the original function")
	}
	if info.BoundThis.NumVal != 1 || len(info.BoundArgs) != 2 {
		t.Error("bound this and arguments should be captured")
	}
	if bound.FunctionName() != "bound f" {
		t.Errorf("expected name \"bound f\", got %q", bound.FunctionName())
	}
}
