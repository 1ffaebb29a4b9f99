package engine

import "strconv"

// ValueKind represents the type of an engine value.
type ValueKind int

const (
	KindUndefined ValueKind = iota
	KindNull
	KindBoolean
	KindString
	KindNumber
	KindObject
)

// Value is the engine representation of a script value. Primitives are
// self-contained; object values reference the heap.
type Value struct {
	Kind    ValueKind
	BoolVal bool
	StrVal  string
	NumVal  float64
	ObjVal  *Object
}

// Undefined returns the undefined value.
func Undefined() Value {
	return Value{Kind: KindUndefined}
}

// Null returns the null value.
func Null() Value {
	return Value{Kind: KindNull}
}

// Boolean creates a boolean value.
func Boolean(b bool) Value {
	return Value{Kind: KindBoolean, BoolVal: b}
}

// String creates a string value.
func String(s string) Value {
	return Value{Kind: KindString, StrVal: s}
}

// Number creates a number value.
func Number(n float64) Value {
	return Value{Kind: KindNumber, NumVal: n}
}

// ObjectValue creates a value referencing the given heap object.
func ObjectValue(o *Object) Value {
	return Value{Kind: KindObject, ObjVal: o}
}

// IsUndefined returns true for the undefined value.
func (v Value) IsUndefined() bool {
	return v.Kind == KindUndefined
}

// IsObject returns true for object values.
func (v Value) IsObject() bool {
	return v.Kind == KindObject
}

// IsCallable returns true if the value is a callable object.
func (v Value) IsCallable() bool {
	return v.Kind == KindObject && v.ObjVal != nil && v.ObjVal.IsCallable()
}

// IsTruthy returns true for values that are considered true in conditionals.
func (v Value) IsTruthy() bool {
	switch v.Kind {
	case KindUndefined, KindNull:
		return false
	case KindBoolean:
		return v.BoolVal
	case KindString:
		return v.StrVal != ""
	case KindNumber:
		return v.NumVal != 0
	default:
		return true
	}
}

// Equal reports strict equality between two values. Objects compare by
// identity.
func (v Value) Equal(w Value) bool {
	if v.Kind != w.Kind {
		return false
	}
	switch v.Kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return v.BoolVal == w.BoolVal
	case KindString:
		return v.StrVal == w.StrVal
	case KindNumber:
		return v.NumVal == w.NumVal
	default:
		return v.ObjVal == w.ObjVal
	}
}

// String returns a display representation of the value.
func (v Value) String() string {
	switch v.Kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		if v.BoolVal {
			return "true"
		}
		return "false"
	case KindString:
		return strconv.Quote(v.StrVal)
	case KindNumber:
		return strconv.FormatFloat(v.NumVal, 'g', -1, 64)
	case KindObject:
		if v.ObjVal == nil {
			return "<object:nil>"
		}
		if v.ObjVal.IsCallable() {
			name := v.ObjVal.FunctionName()
			if name == "" {
				name = "anonymous"
			}
			return "function " + name
		}
		return "[object " + v.ObjVal.Class() + "]"
	default:
		return "<unknown>"
	}
}
