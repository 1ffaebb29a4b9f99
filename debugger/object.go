package debugger

import "github.com/chazu/scry/engine"

// PropertyDescriptor describes a property, with each attribute optional.
// A descriptor is classified as accessor when either Get or Set is
// present, as data when Value or Writable is present, and as generic when
// neither. A descriptor mixing both classes is normalized to accessor
// and its data fields are ignored.
type PropertyDescriptor struct {
	Value        *Value
	Writable     *bool
	Get          *Object
	Set          *Object
	Enumerable   *bool
	Configurable *bool
}

// IsAccessor returns true when the descriptor carries accessor fields.
func (pd *PropertyDescriptor) IsAccessor() bool {
	return pd.Get != nil || pd.Set != nil
}

// IsData returns true when the descriptor carries data fields and no
// accessor fields.
func (pd *PropertyDescriptor) IsData() bool {
	return !pd.IsAccessor() && (pd.Value != nil || pd.Writable != nil)
}

// IsGeneric returns true when the descriptor carries only attribute
// flags.
func (pd *PropertyDescriptor) IsGeneric() bool {
	return !pd.IsAccessor() && !pd.IsData()
}

// Object wraps a debuggee heap object. The wrapper does not own the
// object; the debuggee's heap does. Operations that would run debuggee
// code implicitly (anything touching the properties of a proxy) refuse
// with ErrDebuggeeWouldRun; Call, Construct, and ExecuteInGlobal are the
// explicit evaluation entry points.
type Object struct {
	d  *Debugger
	eo *engine.Object
}

// proxyGuard is the shared gate applied first by every property and
// structure accessor.
func (o *Object) proxyGuard() error {
	if o.eo.IsProxy() {
		return ErrDebuggeeWouldRun
	}
	return nil
}

// Class returns the object's internal class tag ("Object", "Function",
// "Proxy", ...).
func (o *Object) Class() string {
	return o.eo.Class()
}

// Proto returns the object's prototype, nil if none.
func (o *Object) Proto() *Object {
	return o.d.wrapObject(o.eo.Proto())
}

// IsProxy returns true for proxy objects.
func (o *Object) IsProxy() bool {
	return o.eo.IsProxy()
}

// IsGlobal returns true for global objects.
func (o *Object) IsGlobal() bool {
	return o.eo.IsGlobal()
}

// Global returns the global of the object's realm: the object itself for
// globals, the global at the root of a function's defining scope, nil
// where the engine records no realm link.
func (o *Object) Global() *Object {
	if o.eo.IsGlobal() {
		return o.d.wrapObject(o.eo)
	}
	if fn := o.eo.Function(); fn != nil && fn.Scope != nil {
		return o.d.wrapObject(fn.Scope.Global())
	}
	return nil
}

// IsCallable returns true for function objects.
func (o *Object) IsCallable() bool {
	return o.eo.IsCallable()
}

// ---------------------------------------------------------------------------
// Calls
// ---------------------------------------------------------------------------

// Call invokes the object with the given this value and arguments and
// returns the resulting completion. The debuggee runs.
func (o *Object) Call(this Value, args []Value) (CompletionValue, error) {
	if !o.eo.IsCallable() {
		return CompletionValue{}, ErrObjectNotCallable
	}
	c := o.d.interp.CallFunction(o.eo, o.d.unwrapValue(this), o.unwrapArgs(args))
	return o.d.wrapCompletion(c), nil
}

// Construct invokes the object as a constructor. The debuggee runs.
func (o *Object) Construct(args []Value) (CompletionValue, error) {
	if !o.eo.IsCallable() {
		return CompletionValue{}, ErrObjectNotCallable
	}
	c := o.d.interp.Construct(o.eo, o.unwrapArgs(args))
	return o.d.wrapCompletion(c), nil
}

func (o *Object) unwrapArgs(args []Value) []engine.Value {
	ea := make([]engine.Value, len(args))
	for i, a := range args {
		ea[i] = o.d.unwrapValue(a)
	}
	return ea
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

// OwnPropertyNames returns the object's own property names in insertion
// order.
func (o *Object) OwnPropertyNames() ([]string, error) {
	if err := o.proxyGuard(); err != nil {
		return nil, err
	}
	return o.eo.PropNames(), nil
}

// GetOwnPropertyDescriptor returns the descriptor of an own property,
// nil if absent.
func (o *Object) GetOwnPropertyDescriptor(name string) (*PropertyDescriptor, error) {
	if err := o.proxyGuard(); err != nil {
		return nil, err
	}
	p := o.eo.Prop(name)
	if p == nil {
		return nil, nil
	}
	pd := &PropertyDescriptor{
		Enumerable:   boolPtr(p.Enumerable),
		Configurable: boolPtr(p.Configurable),
	}
	if p.Accessor {
		pd.Get = o.d.wrapObject(p.Getter)
		pd.Set = o.d.wrapObject(p.Setter)
	} else {
		v := o.d.wrapValue(p.Value)
		pd.Value = &v
		pd.Writable = boolPtr(p.Writable)
	}
	return pd, nil
}

// DefineProperty creates the named property if absent and modifies it if
// present. Adding to a non-extensible object fails with
// ErrObjectNotExtensible; modifying a non-configurable property in a
// disallowed way fails with ErrPropertyNotConfigurable.
func (o *Object) DefineProperty(name string, desc PropertyDescriptor) error {
	if err := o.proxyGuard(); err != nil {
		return err
	}

	existing := o.eo.Prop(name)
	if existing == nil {
		if !o.eo.IsExtensible() {
			return ErrObjectNotExtensible
		}
		o.eo.DefineOwn(name, o.newProperty(desc))
		return nil
	}

	if !existing.Configurable {
		if err := o.checkNonConfigurable(existing, desc); err != nil {
			return err
		}
	}
	o.eo.DefineOwn(name, o.mergeProperty(*existing, desc))
	return nil
}

// newProperty builds a property slot from a descriptor, with absent
// attributes defaulting to false/undefined.
func (o *Object) newProperty(desc PropertyDescriptor) engine.Property {
	p := engine.Property{}
	if desc.Enumerable != nil {
		p.Enumerable = *desc.Enumerable
	}
	if desc.Configurable != nil {
		p.Configurable = *desc.Configurable
	}
	if desc.IsAccessor() {
		p.Accessor = true
		if desc.Get != nil {
			p.Getter = desc.Get.eo
		}
		if desc.Set != nil {
			p.Setter = desc.Set.eo
		}
		return p
	}
	if desc.Value != nil {
		p.Value = o.d.unwrapValue(*desc.Value)
	} else {
		p.Value = engine.Undefined()
	}
	if desc.Writable != nil {
		p.Writable = *desc.Writable
	}
	return p
}

// checkNonConfigurable rejects the changes a non-configurable property
// does not permit: flipping between data and accessor, re-enabling
// configurability, toggling enumerability, replacing accessors, and
// writing through a non-writable data property. Writable may still go
// from true to false, and a writable value may still change.
func (o *Object) checkNonConfigurable(existing *engine.Property, desc PropertyDescriptor) error {
	if desc.Configurable != nil && *desc.Configurable {
		return ErrPropertyNotConfigurable
	}
	if desc.Enumerable != nil && *desc.Enumerable != existing.Enumerable {
		return ErrPropertyNotConfigurable
	}
	if desc.IsAccessor() {
		if !existing.Accessor {
			return ErrPropertyNotConfigurable
		}
		if desc.Get != nil && desc.Get.eo != existing.Getter {
			return ErrPropertyNotConfigurable
		}
		if desc.Set != nil && desc.Set.eo != existing.Setter {
			return ErrPropertyNotConfigurable
		}
		return nil
	}
	if existing.Accessor {
		if desc.Value != nil || desc.Writable != nil {
			return ErrPropertyNotConfigurable
		}
		return nil
	}
	if desc.Writable != nil && *desc.Writable && !existing.Writable {
		return ErrPropertyNotConfigurable
	}
	if desc.Value != nil && !existing.Writable && !o.d.unwrapValue(*desc.Value).Equal(existing.Value) {
		return ErrPropertyNotConfigurable
	}
	return nil
}

// mergeProperty applies the present descriptor fields over an existing
// slot, switching it between data and accessor form as needed.
func (o *Object) mergeProperty(p engine.Property, desc PropertyDescriptor) engine.Property {
	if desc.Enumerable != nil {
		p.Enumerable = *desc.Enumerable
	}
	if desc.Configurable != nil {
		p.Configurable = *desc.Configurable
	}
	if desc.IsAccessor() {
		if !p.Accessor {
			p.Accessor = true
			p.Value = engine.Undefined()
			p.Writable = false
			p.Getter = nil
			p.Setter = nil
		}
		if desc.Get != nil {
			p.Getter = desc.Get.eo
		}
		if desc.Set != nil {
			p.Setter = desc.Set.eo
		}
		return p
	}
	if desc.Value != nil || desc.Writable != nil {
		if p.Accessor {
			p.Accessor = false
			p.Getter = nil
			p.Setter = nil
			p.Value = engine.Undefined()
		}
		if desc.Value != nil {
			p.Value = o.d.unwrapValue(*desc.Value)
		}
		if desc.Writable != nil {
			p.Writable = *desc.Writable
		}
	}
	return p
}

// DeleteProperty removes the named own property. Deleting an absent
// property succeeds; deleting a non-configurable one fails with
// ErrPropertyNotConfigurable.
func (o *Object) DeleteProperty(name string) error {
	if err := o.proxyGuard(); err != nil {
		return err
	}
	if !o.eo.Delete(name) {
		return ErrPropertyNotConfigurable
	}
	return nil
}

// ---------------------------------------------------------------------------
// Extensibility, sealing, freezing
// ---------------------------------------------------------------------------

// PreventExtensions makes the object non-extensible. Idempotent.
func (o *Object) PreventExtensions() error {
	if err := o.proxyGuard(); err != nil {
		return err
	}
	o.eo.PreventExtensions()
	return nil
}

// Seal makes the object non-extensible with non-configurable properties.
// Idempotent.
func (o *Object) Seal() error {
	if err := o.proxyGuard(); err != nil {
		return err
	}
	o.eo.Seal()
	return nil
}

// Freeze seals the object and makes its data properties non-writable.
// Idempotent.
func (o *Object) Freeze() error {
	if err := o.proxyGuard(); err != nil {
		return err
	}
	o.eo.Freeze()
	return nil
}

// IsExtensible returns true if new own properties may be added.
func (o *Object) IsExtensible() (bool, error) {
	if err := o.proxyGuard(); err != nil {
		return false, err
	}
	return o.eo.IsExtensible(), nil
}

// IsSealed returns true if the object is sealed.
func (o *Object) IsSealed() (bool, error) {
	if err := o.proxyGuard(); err != nil {
		return false, err
	}
	return o.eo.IsSealed(), nil
}

// IsFrozen returns true if the object is frozen.
func (o *Object) IsFrozen() (bool, error) {
	if err := o.proxyGuard(); err != nil {
		return false, err
	}
	return o.eo.IsFrozen(), nil
}

// ---------------------------------------------------------------------------
// Globals
// ---------------------------------------------------------------------------

// AsEnvironment returns the global environment of a global object, and
// ErrObjectNotGlobal for anything else.
func (o *Object) AsEnvironment() (*Environment, error) {
	if !o.eo.IsGlobal() {
		return nil, ErrObjectNotGlobal
	}
	return o.d.wrapEnvironment(o.eo.GlobalScope()), nil
}

// ExecuteInGlobal runs code in the object's global environment. The
// debuggee runs.
func (o *Object) ExecuteInGlobal(code string) (CompletionValue, error) {
	return o.ExecuteInGlobalWithBindings(code, nil)
}

// ExecuteInGlobalWithBindings is ExecuteInGlobal with extra names
// pre-bound above the global scope, shadowing on conflict.
func (o *Object) ExecuteInGlobalWithBindings(code string, bindings map[string]Value) (CompletionValue, error) {
	if !o.eo.IsGlobal() {
		return CompletionValue{}, ErrObjectNotGlobal
	}
	var eb map[string]engine.Value
	if len(bindings) > 0 {
		eb = make(map[string]engine.Value, len(bindings))
		for name, v := range bindings {
			eb[name] = o.d.unwrapValue(v)
		}
	}
	c := o.d.interp.EvalInScopeAs(code, o.eo.GlobalScope(), eb, engine.IntroducedByDebug)
	return o.d.wrapCompletion(c), nil
}

// ---------------------------------------------------------------------------
// Function reflection
// ---------------------------------------------------------------------------
// Reflection questions about the wrong kind of object are not failures;
// these accessors degrade to their zero results instead.

// Name returns the function's name; the second result is false for
// non-function objects.
func (o *Object) Name() (string, bool) {
	fn := o.eo.Function()
	if fn == nil {
		return "", false
	}
	return fn.Name, true
}

// DisplayName returns the function's inferred display name; the second
// result is false when there is none.
func (o *Object) DisplayName() (string, bool) {
	fn := o.eo.Function()
	if fn == nil || fn.DisplayName == "" {
		return "", false
	}
	return fn.DisplayName, true
}

// ParameterNames returns the function's parameter names, nil for
// non-function objects.
func (o *Object) ParameterNames() []string {
	fn := o.eo.Function()
	if fn == nil || fn.Chunk == nil {
		return nil
	}
	names := make([]string, len(fn.Chunk.ParamNames))
	copy(names, fn.Chunk.ParamNames)
	return names
}

// IsArrowFunction returns true for arrow functions.
func (o *Object) IsArrowFunction() bool {
	fn := o.eo.Function()
	return fn != nil && fn.Arrow
}

// IsBoundFunction returns true for bound functions.
func (o *Object) IsBoundFunction() bool {
	return o.eo.IsBound()
}

// BoundTargetFunction returns the target of a bound function, nil
// otherwise.
func (o *Object) BoundTargetFunction() *Object {
	fn := o.eo.Function()
	if fn == nil {
		return nil
	}
	return o.d.wrapObject(fn.BoundTarget)
}

// BoundThis returns the bound this value; the second result is false for
// non-bound objects.
func (o *Object) BoundThis() (Value, bool) {
	if !o.eo.IsBound() {
		return Undefined(), false
	}
	return o.d.wrapValue(o.eo.Function().BoundThis), true
}

// BoundArguments returns the bound leading arguments, nil for non-bound
// objects.
func (o *Object) BoundArguments() []Value {
	if !o.eo.IsBound() {
		return nil
	}
	bound := o.eo.Function().BoundArgs
	args := make([]Value, len(bound))
	for i, a := range bound {
		args[i] = o.d.wrapValue(a)
	}
	return args
}

// Environment returns the environment the function was created in, nil
// for non-function and native objects.
func (o *Object) Environment() *Environment {
	fn := o.eo.Function()
	if fn == nil {
		return nil
	}
	return o.d.wrapEnvironment(fn.Scope)
}

// Script returns the script of an interpreted function, nil otherwise.
func (o *Object) Script() *Script {
	fn := o.eo.Function()
	if fn == nil {
		return nil
	}
	return o.d.wrapScript(fn.Chunk)
}

func boolPtr(b bool) *bool {
	return &b
}
