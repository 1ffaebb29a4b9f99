package engine

// ScopeKind classifies a node in the lexical scope chain.
type ScopeKind int

const (
	// ScopeDeclarative is introduced by a function call, eval, block, etc.
	ScopeDeclarative ScopeKind = iota

	// ScopeObject is backed by a heap object, e.g. the global scope.
	ScopeObject

	// ScopeWith is introduced by a with statement.
	ScopeWith
)

// String returns a human-readable name for the scope kind.
func (k ScopeKind) String() string {
	switch k {
	case ScopeDeclarative:
		return "declarative"
	case ScopeObject:
		return "object"
	case ScopeWith:
		return "with"
	default:
		return "unknown"
	}
}

// Scope is one node of a lexical scope chain. Declarative scopes hold
// their bindings directly; object and with scopes read and write the
// properties of a backing object.
type Scope struct {
	kind    ScopeKind
	parent  *Scope
	global  *Object // Realm global at the root of this chain

	// Declarative scopes
	bindings map[string]Value
	order    []string
	callee   *Object // Function whose call introduced this scope, if any

	// Object and with scopes
	object *Object

	// Set when the engine optimized the scope away; its bindings are not
	// script-visible and the debugger must not pretend otherwise.
	optimizedOut bool
}

// NewDeclarativeScope creates a declarative scope under the given parent.
func NewDeclarativeScope(parent *Scope) *Scope {
	s := &Scope{
		kind:     ScopeDeclarative,
		parent:   parent,
		bindings: make(map[string]Value),
	}
	if parent != nil {
		s.global = parent.global
	}
	return s
}

func newObjectScope(backing *Object, parent *Scope) *Scope {
	s := &Scope{
		kind:   ScopeObject,
		parent: parent,
		object: backing,
	}
	if backing != nil && backing.IsGlobal() {
		s.global = backing
	} else if parent != nil {
		s.global = parent.global
	}
	return s
}

// NewWithScope creates a with scope over the given operand object.
func NewWithScope(operand *Object, parent *Scope) *Scope {
	s := newObjectScope(operand, parent)
	s.kind = ScopeWith
	return s
}

// Kind returns the scope's classification.
func (s *Scope) Kind() ScopeKind {
	return s.kind
}

// Parent returns the enclosing scope, nil at the chain root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Global returns the realm global at the root of this chain, nil for
// detached scopes.
func (s *Scope) Global() *Object {
	return s.global
}

// Object returns the backing object of an object or with scope, nil for
// declarative scopes.
func (s *Scope) Object() *Object {
	if s.kind == ScopeDeclarative {
		return nil
	}
	return s.object
}

// Callee returns the function whose call introduced this scope, nil
// otherwise.
func (s *Scope) Callee() *Object {
	return s.callee
}

// SetCallee marks this scope as the variable scope of a call to fn.
func (s *Scope) SetCallee(fn *Object) {
	s.callee = fn
}

// MarkOptimizedOut flags the scope as not script-visible.
func (s *Scope) MarkOptimizedOut() {
	s.optimizedOut = true
}

// IsOptimizedOut returns true when the engine optimized the scope away.
func (s *Scope) IsOptimizedOut() bool {
	return s.optimizedOut
}

// IsProxyBacked returns true when reading the scope's bindings would
// invoke proxy traps.
func (s *Scope) IsProxyBacked() bool {
	return s.object != nil && s.object.IsProxy()
}

// IsDebuggee returns true when the scope belongs to an observed realm
// and was not optimized away.
func (s *Scope) IsDebuggee() bool {
	return !s.optimizedOut && s.global != nil && s.global.IsDebuggee()
}

// Declare creates or overwrites a binding in a declarative scope, or a
// property of the backing object otherwise.
func (s *Scope) Declare(name string, v Value) {
	if s.kind == ScopeDeclarative {
		if _, exists := s.bindings[name]; !exists {
			s.order = append(s.order, name)
		}
		s.bindings[name] = v
		return
	}
	if s.object != nil {
		s.object.Set(name, v)
	}
}

// Has returns true if the scope itself binds the name. Callers must have
// ruled out proxy-backed scopes first.
func (s *Scope) Has(name string) bool {
	if s.kind == ScopeDeclarative {
		_, ok := s.bindings[name]
		return ok
	}
	return s.object != nil && s.object.Prop(name) != nil
}

// Names returns the names bound by the scope itself. Property order is
// preserved for object scopes; declarative scopes report declaration
// order.
func (s *Scope) Names() []string {
	if s.kind == ScopeDeclarative {
		names := make([]string, len(s.order))
		copy(names, s.order)
		return names
	}
	if s.object == nil {
		return nil
	}
	return s.object.PropNames()
}

// Get returns the value bound to name in this scope. The second result
// is false if the scope does not bind the name.
func (s *Scope) Get(name string) (Value, bool) {
	if s.kind == ScopeDeclarative {
		v, ok := s.bindings[name]
		return v, ok
	}
	if s.object == nil {
		return Undefined(), false
	}
	if p := s.object.Prop(name); p != nil {
		if p.Accessor {
			return Undefined(), true
		}
		return p.Value, true
	}
	return Undefined(), false
}

// Put updates an existing binding. Returns false if the scope does not
// bind the name or the binding refused the write.
func (s *Scope) Put(name string, v Value) bool {
	if s.kind == ScopeDeclarative {
		if _, ok := s.bindings[name]; !ok {
			return false
		}
		s.bindings[name] = v
		return true
	}
	if s.object == nil || s.object.Prop(name) == nil {
		return false
	}
	return s.object.Set(name, v)
}

// Lookup walks the chain from this scope outward and returns the
// innermost scope binding the name, nil if no scope does. Proxy-backed
// scopes are skipped; resolving through them would run trap code, which
// only the interpreter's evaluation path is allowed to do.
func (s *Scope) Lookup(name string) *Scope {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.IsProxyBacked() {
			continue
		}
		if cur.Has(name) {
			return cur
		}
	}
	return nil
}
