package debugger

// ValueKind represents the type of a debuggee value.
type ValueKind int

const (
	KindUndefined ValueKind = iota
	KindNull
	KindBoolean
	KindString
	KindNumber
	KindObject
)

// Value is a debuggee value as seen by the controller: either a
// self-contained primitive or a non-owning handle to a debuggee object,
// valid only while the referenced object is reachable.
type Value struct {
	kind    ValueKind
	boolVal bool
	strVal  string
	numVal  float64
	objVal  *Object
}

// Undefined returns the undefined value.
func Undefined() Value {
	return Value{kind: KindUndefined}
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Boolean creates a boolean value.
func Boolean(b bool) Value {
	return Value{kind: KindBoolean, boolVal: b}
}

// String creates a string value.
func String(s string) Value {
	return Value{kind: KindString, strVal: s}
}

// Number creates a number value.
func Number(n float64) Value {
	return Value{kind: KindNumber, numVal: n}
}

// ObjectValue creates a value holding the given object handle.
func ObjectValue(o *Object) Value {
	return Value{kind: KindObject, objVal: o}
}

// Kind returns the value's type tag.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsUndefined returns true for the undefined value.
func (v Value) IsUndefined() bool {
	return v.kind == KindUndefined
}

// AsBoolean returns the boolean payload; the second result is false for
// other kinds.
func (v Value) AsBoolean() (bool, bool) {
	return v.boolVal, v.kind == KindBoolean
}

// AsString returns the string payload; the second result is false for
// other kinds.
func (v Value) AsString() (string, bool) {
	return v.strVal, v.kind == KindString
}

// AsNumber returns the number payload; the second result is false for
// other kinds.
func (v Value) AsNumber() (float64, bool) {
	return v.numVal, v.kind == KindNumber
}

// AsObject returns the object handle, nil for primitive values.
func (v Value) AsObject() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.objVal
}

// CompletionKind describes how a call or evaluation completed.
type CompletionKind int

const (
	// CompletionReturn means the call returned a result value.
	CompletionReturn CompletionKind = iota

	// CompletionThrow means the call threw a value as an exception.
	CompletionThrow

	// CompletionTerminate means the call was abruptly, non-recoverably
	// terminated.
	CompletionTerminate
)

// CompletionValue is the outcome of a call or evaluation.
type CompletionValue struct {
	kind CompletionKind
	val  Value
}

// ReturnCompletion creates a normal completion carrying v.
func ReturnCompletion(v Value) CompletionValue {
	return CompletionValue{kind: CompletionReturn, val: v}
}

// ThrowCompletion creates a throw completion carrying v.
func ThrowCompletion(v Value) CompletionValue {
	return CompletionValue{kind: CompletionThrow, val: v}
}

// TerminateCompletion creates a forced-termination completion.
func TerminateCompletion() CompletionValue {
	return CompletionValue{kind: CompletionTerminate}
}

// Kind returns the completion's classification.
func (c CompletionValue) Kind() CompletionKind {
	return c.kind
}

// Value returns the carried value, meaningful for return and throw
// completions.
func (c CompletionValue) Value() Value {
	return c.val
}

// ResumptionValue is the optional completion a handler returns. Nil means
// "let the debuggee continue unmodified"; a non-nil completion is adopted
// by the debuggee verbatim in place of its natural continuation.
type ResumptionValue = *CompletionValue

// Resume wraps a completion as a non-nil resumption value.
func Resume(c CompletionValue) ResumptionValue {
	return &c
}
