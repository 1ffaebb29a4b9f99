package engine

// Property holds one property slot of an object. A property is either a
// data property (Value/Writable meaningful) or an accessor property
// (Getter/Setter meaningful); Accessor distinguishes the two.
type Property struct {
	Value        Value
	Getter       *Object
	Setter       *Object
	Writable     bool
	Enumerable   bool
	Configurable bool
	Accessor     bool
}

// FunctionInfo is the payload carried by callable objects.
type FunctionInfo struct {
	Name        string
	DisplayName string
	Chunk       *Chunk
	Scope       *Scope // Defining scope, used as the parent of call scopes
	Arrow       bool

	// Bound-function linkage, set by Bind
	BoundTarget *Object
	BoundThis   Value
	BoundArgs   []Value

	// Native implementation for host functions; Chunk is nil in that case
	Native func(interp *Interp, this Value, args []Value) Completion
}

// Object is a debuggee heap object. The engine's heap owns objects;
// everything else holds plain references.
type Object struct {
	class      string
	props      map[string]*Property
	propOrder  []string
	proto      *Object
	extensible bool
	proxy      bool

	fn *FunctionInfo

	// Globals carry their realm's object scope and the debuggee flag the
	// debugger toggles when it starts observing the realm.
	global      bool
	globalScope *Scope
	debuggee    bool
}

// NewObject creates a plain extensible object of the given class
// ("Object", "Function", "Proxy", ...).
func NewObject(class string) *Object {
	return &Object{
		class:      class,
		props:      make(map[string]*Property),
		extensible: true,
	}
}

// NewFunction creates a callable object over the given chunk and defining
// scope.
func NewFunction(name string, chunk *Chunk, scope *Scope) *Object {
	o := NewObject("Function")
	o.fn = &FunctionInfo{Name: name, Chunk: chunk, Scope: scope}
	return o
}

// NewArrowFunction creates a callable object flagged as an arrow function.
func NewArrowFunction(name string, chunk *Chunk, scope *Scope) *Object {
	o := NewFunction(name, chunk, scope)
	o.fn.Arrow = true
	return o
}

// NewNativeFunction creates a callable object backed by a Go function.
func NewNativeFunction(name string, native func(*Interp, Value, []Value) Completion) *Object {
	o := NewObject("Function")
	o.fn = &FunctionInfo{Name: name, Native: native}
	return o
}

// NewProxy creates a proxy object. Property access on a proxy would run
// debuggee trap code, so the engine and debugger refuse to touch its
// properties outside of explicit evaluation.
func NewProxy() *Object {
	o := NewObject("Proxy")
	o.proxy = true
	return o
}

// NewGlobal creates a global object together with its object scope.
func NewGlobal() *Object {
	o := NewObject("global")
	o.global = true
	o.globalScope = newObjectScope(o, nil)
	return o
}

// Class returns the internal class tag of the object.
func (o *Object) Class() string {
	return o.class
}

// Proto returns the prototype link, nil if none.
func (o *Object) Proto() *Object {
	return o.proto
}

// SetProto sets the prototype link.
func (o *Object) SetProto(p *Object) {
	o.proto = p
}

// IsProxy returns true for proxy objects.
func (o *Object) IsProxy() bool {
	return o.proxy
}

// IsGlobal returns true for global objects.
func (o *Object) IsGlobal() bool {
	return o.global
}

// GlobalScope returns the object scope of a global object, nil otherwise.
func (o *Object) GlobalScope() *Scope {
	return o.globalScope
}

// SetDebuggee marks a global object's realm as observed by a debugger.
func (o *Object) SetDebuggee(d bool) {
	o.debuggee = d
}

// IsDebuggee returns true for a global object whose realm is being
// observed. Scopes and frames derive their debuggee-ness from the global
// at the root of their scope chain.
func (o *Object) IsDebuggee() bool {
	return o.debuggee
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

// Prop returns the named own property, nil if absent.
func (o *Object) Prop(name string) *Property {
	return o.props[name]
}

// PropNames returns the own property names in insertion order.
func (o *Object) PropNames() []string {
	names := make([]string, len(o.propOrder))
	copy(names, o.propOrder)
	return names
}

// Get returns the value of the named property, walking the prototype
// chain. Accessor properties yield undefined here; reading them runs
// debuggee code and must go through an evaluation entry point.
func (o *Object) Get(name string) Value {
	for obj := o; obj != nil; obj = obj.proto {
		if p := obj.props[name]; p != nil {
			if p.Accessor {
				return Undefined()
			}
			return p.Value
		}
	}
	return Undefined()
}

// Set defines or updates a data property with default attributes,
// respecting extensibility and writability. Returns false when the write
// is refused.
func (o *Object) Set(name string, v Value) bool {
	if p := o.props[name]; p != nil {
		if p.Accessor || !p.Writable {
			return false
		}
		p.Value = v
		return true
	}
	if !o.extensible {
		return false
	}
	o.props[name] = &Property{
		Value:        v,
		Writable:     true,
		Enumerable:   true,
		Configurable: true,
	}
	o.propOrder = append(o.propOrder, name)
	return true
}

// DefineOwn installs or replaces an own property slot directly. Callers
// are expected to have checked extensibility and configurability.
func (o *Object) DefineOwn(name string, p Property) {
	if _, exists := o.props[name]; !exists {
		o.propOrder = append(o.propOrder, name)
	}
	cp := p
	o.props[name] = &cp
}

// Delete removes an own property. Returns true if the property is absent
// afterwards, false when it exists but is non-configurable.
func (o *Object) Delete(name string) bool {
	p := o.props[name]
	if p == nil {
		return true
	}
	if !p.Configurable {
		return false
	}
	delete(o.props, name)
	for i, n := range o.propOrder {
		if n == name {
			o.propOrder = append(o.propOrder[:i], o.propOrder[i+1:]...)
			break
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Extensibility, sealing, freezing
// ---------------------------------------------------------------------------

// IsExtensible returns true if new properties may be added.
func (o *Object) IsExtensible() bool {
	return o.extensible
}

// PreventExtensions makes the object non-extensible. Idempotent.
func (o *Object) PreventExtensions() {
	o.extensible = false
}

// Seal makes the object non-extensible and every own property
// non-configurable. Idempotent.
func (o *Object) Seal() {
	o.extensible = false
	for _, p := range o.props {
		p.Configurable = false
	}
}

// Freeze seals the object and additionally makes every data property
// non-writable. Idempotent.
func (o *Object) Freeze() {
	o.Seal()
	for _, p := range o.props {
		if !p.Accessor {
			p.Writable = false
		}
	}
}

// IsSealed returns true if the object is non-extensible and every own
// property is non-configurable.
func (o *Object) IsSealed() bool {
	if o.extensible {
		return false
	}
	for _, p := range o.props {
		if p.Configurable {
			return false
		}
	}
	return true
}

// IsFrozen returns true if the object is sealed and every data property
// is non-writable.
func (o *Object) IsFrozen() bool {
	if !o.IsSealed() {
		return false
	}
	for _, p := range o.props {
		if !p.Accessor && p.Writable {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

// IsCallable returns true for function objects.
func (o *Object) IsCallable() bool {
	return o.fn != nil
}

// Function returns the function payload, nil for non-callable objects.
func (o *Object) Function() *FunctionInfo {
	return o.fn
}

// FunctionName returns the function name, empty for non-callable objects.
func (o *Object) FunctionName() string {
	if o.fn == nil {
		return ""
	}
	return o.fn.Name
}

// Bind creates a bound function over this callable with the given this
// value and leading arguments.
func (o *Object) Bind(this Value, args []Value) *Object {
	bound := NewObject("Function")
	bound.fn = &FunctionInfo{
		Name:        "bound " + o.FunctionName(),
		BoundTarget: o,
		BoundThis:   this,
		BoundArgs:   append([]Value(nil), args...),
	}
	return bound
}

// IsBound returns true for bound function objects.
func (o *Object) IsBound() bool {
	return o.fn != nil && o.fn.BoundTarget != nil
}
