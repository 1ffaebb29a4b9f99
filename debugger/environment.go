package debugger

import "github.com/chazu/scry/engine"

// EnvironmentKind classifies a lexical environment.
type EnvironmentKind int

const (
	// EnvDeclarative is introduced by a function call, eval, block, etc.
	EnvDeclarative EnvironmentKind = iota

	// EnvObject is introduced by a global or host object.
	EnvObject

	// EnvWith is introduced by a with statement.
	EnvWith
)

// String returns a human-readable name for the environment kind.
func (k EnvironmentKind) String() string {
	switch k {
	case EnvDeclarative:
		return "declarative"
	case EnvObject:
		return "object"
	case EnvWith:
		return "with"
	default:
		return "unknown"
	}
}

// Environment wraps one node of a debuggee scope chain. The wrapper is a
// weak, re-validated reference: every operation re-checks that the scope
// is still a script-visible debuggee scope, and refuses with
// ErrDebuggeeWouldRun whenever satisfying it would have to invoke a
// proxy trap.
type Environment struct {
	d     *Debugger
	scope *engine.Scope
}

// inspectGuard is the shared gate applied first by every accessor.
// withBindings additionally rules out proxy-backed scopes, whose binding
// access would run debuggee code.
func (e *Environment) inspectGuard(withBindings bool) error {
	if !e.scope.IsDebuggee() {
		return ErrEnvironmentNotDebuggee
	}
	if withBindings && e.scope.IsProxyBacked() {
		return ErrDebuggeeWouldRun
	}
	return nil
}

// Kind returns the environment's classification.
func (e *Environment) Kind() EnvironmentKind {
	switch e.scope.Kind() {
	case engine.ScopeObject:
		return EnvObject
	case engine.ScopeWith:
		return EnvWith
	default:
		return EnvDeclarative
	}
}

// IsInspectable returns true if the wrapped environment is a debuggee
// environment. The other methods implicitly apply this gate.
func (e *Environment) IsInspectable() bool {
	return e.scope.IsDebuggee()
}

// IsOptimizedOut returns true when the engine optimized the scope away,
// so its bindings are not script-visible. Fails with
// ErrEnvironmentNotDebuggee when the scope's realm is not observed at
// all; optimized-out is only meaningful within a debuggee realm.
func (e *Environment) IsOptimizedOut() (bool, error) {
	g := e.scope.Global()
	if g == nil || !g.IsDebuggee() {
		return false, ErrEnvironmentNotDebuggee
	}
	return e.scope.IsOptimizedOut(), nil
}

// Parent returns the enclosing environment, nil at the chain root.
func (e *Environment) Parent() *Environment {
	return e.d.wrapEnvironment(e.scope.Parent())
}

// Object returns the object backing an object or with environment, nil
// for declarative environments.
func (e *Environment) Object() *Object {
	return e.d.wrapObject(e.scope.Object())
}

// Callee returns the function whose call produced this variable
// environment, nil where the relation does not apply.
func (e *Environment) Callee() (*Object, error) {
	if err := e.inspectGuard(false); err != nil {
		return nil, err
	}
	return e.d.wrapObject(e.scope.Callee()), nil
}

// Find returns the innermost environment, starting here, that binds the
// given name; nil if no environment in the chain does.
func (e *Environment) Find(name string) (*Environment, error) {
	for s := e.scope; s != nil; s = s.Parent() {
		env := e.d.wrapEnvironment(s)
		if err := env.inspectGuard(true); err != nil {
			return nil, err
		}
		if s.Has(name) {
			return env, nil
		}
	}
	return nil, nil
}

// GetVariable returns the value bound to the given name. Absence of a
// binding is reported as the undefined value, never as an error.
func (e *Environment) GetVariable(name string) (Value, error) {
	if err := e.inspectGuard(true); err != nil {
		return Undefined(), err
	}
	v, ok := e.scope.Get(name)
	if !ok {
		return Undefined(), nil
	}
	return e.d.wrapValue(v), nil
}

// SetVariable assigns to an existing binding. There is no implicit
// creation: a missing binding fails with ErrVariableNotFound.
func (e *Environment) SetVariable(name string, v Value) error {
	if err := e.inspectGuard(true); err != nil {
		return err
	}
	if !e.scope.Has(name) {
		return ErrVariableNotFound
	}
	e.scope.Put(name, e.d.unwrapValue(v))
	return nil
}

// Names returns the names bound by this environment itself.
func (e *Environment) Names() ([]string, error) {
	if err := e.inspectGuard(true); err != nil {
		return nil, err
	}
	return e.scope.Names(), nil
}
