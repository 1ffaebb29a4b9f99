package debugger

// Error is the closed failure taxonomy of the debugger layer. Errors
// carry no payload beyond their kind: callers classify, they do not
// parse. Absence (no such binding, no such relation) is never an Error.
type Error int

const (
	// ErrDebuggeeWouldRun means the operation was refused because
	// satisfying it would cause the debuggee to run, e.g. by invoking a
	// proxy trap. This is a refusal, not a transient condition; callers
	// that want the side effect must use an explicit evaluation entry
	// point instead.
	ErrDebuggeeWouldRun Error = iota + 1

	// ErrEnvironmentNotDebuggee means the wrapped scope is not a
	// script-visible debuggee environment.
	ErrEnvironmentNotDebuggee

	// ErrFrameNotDebuggee means the frame is not a debuggee frame.
	ErrFrameNotDebuggee

	// ErrObjectNotExtensible means a property could not be added because
	// the object is not extensible.
	ErrObjectNotExtensible

	// ErrObjectNotGlobal means the object is not a global object.
	ErrObjectNotGlobal

	// ErrOffsetNotValid means the offset does not correspond to an
	// instruction boundary in the script.
	ErrOffsetNotValid

	// ErrPropertyNotConfigurable means a non-configurable property was
	// modified in a disallowed way.
	ErrPropertyNotConfigurable

	// ErrVariableNotFound means no binding with the given name exists.
	ErrVariableNotFound

	// ErrObjectNotCallable means the object cannot be called or
	// constructed.
	ErrObjectNotCallable
)

// Error implements the error interface.
func (e Error) Error() string {
	switch e {
	case ErrDebuggeeWouldRun:
		return "debuggee would run"
	case ErrEnvironmentNotDebuggee:
		return "environment is not a debuggee environment"
	case ErrFrameNotDebuggee:
		return "frame is not a debuggee frame"
	case ErrObjectNotExtensible:
		return "object is not extensible"
	case ErrObjectNotGlobal:
		return "object is not a global"
	case ErrOffsetNotValid:
		return "offset is not valid"
	case ErrPropertyNotConfigurable:
		return "property is not configurable"
	case ErrVariableNotFound:
		return "no such variable"
	case ErrObjectNotCallable:
		return "object is not callable"
	default:
		return "unknown debugger error"
	}
}
