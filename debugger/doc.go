// Package debugger is the control layer between a debugger front end and
// a running engine. It wraps live engine entities (stack frames, lexical
// environments, heap objects, compiled scripts, and their sources) and
// exposes the protocol by which a suspended debuggee is observed,
// mutated, resumed, redirected, or terminated.
//
// # Wrappers and liveness
//
// Every wrapper (Frame, Environment, Object, Script, Source) is a weak,
// re-validated reference: it is only meaningful relative to the debuggee
// state at the moment of the call, and every accessor re-checks liveness
// and inspectability rather than trusting an earlier check. Frames are
// valid only while live (still on the call stack); accessors on a dead or
// non-debuggee frame degrade to their zero results rather than erroring.
//
// # Control points
//
// The engine delivers control points synchronously, one at a time, while
// it is suspended: breakpoint handlers when a registered bytecode offset
// is reached, step handlers when a frame's offset changes, and pop
// handlers when a frame leaves the stack. Each handler returns a
// ResumptionValue: nil lets the debuggee continue unmodified, while a
// non-nil completion is adopted verbatim. That is the only mechanism by
// which a handler can force a return, a throw, or outright termination.
//
// # Re-entrancy
//
// Accessors never run debuggee code. Operations that would have to, such
// as reading a binding through a proxy-backed scope, refuse with
// ErrDebuggeeWouldRun instead. The explicit evaluation entry points
// (Frame.Eval, Object.Call, Object.Construct, Object.ExecuteInGlobal)
// are the intentional exceptions: they resume the debuggee recursively,
// and nested handler firing during such an evaluation is legal.
//
// # Errors
//
// All failures are values of the closed Error enumeration; absence of a
// binding or relation is reported as an undefined value or a nil wrapper,
// never as an error.
package debugger
