// Package value implements the value model and object heap for the clox
// virtual machine.
//
// A Value is a small tagged union: Nil, Bool, Number, or a reference to a
// heap-allocated Object. Numbers are IEEE-754 doubles, so NaN never equals
// itself. Nil and false are the only falsey values — everything else,
// including 0 and the empty string, is truthy.
//
// Heap objects (strings, functions, native functions, closures, upvalues)
// are polymorphic over a single Obj interface. Every concrete object type
// embeds Header, which holds a Next link and a mark bit. Only the Interner
// sets Next, threading interned strings onto its own chain; functions,
// natives, closures and upvalues are on no chain, and the VM keeps no
// object registry. Nothing reads the mark bit.
package value

import "fmt"

// Kind tags the variant a Value currently holds.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
)

// Value is the tagged union every slot on the VM's stack holds.
//
// Callers must guard AsBool/AsNumber/AsObj with the matching
// IsBool/IsNumber/IsObj check. On a differently-tagged Value these
// accessors return the field's zero value (false, 0, nil) without any
// error; the AsString/AsFunction/AsClosure/AsNative type assertions
// panic instead.
type Value struct {
	kind   Kind
	bool_  bool
	number float64
	obj    Obj
}

// Nil is the singleton nil value.
var Nil = Value{kind: KindNil}

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, bool_: b} }

// Number constructs a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, number: n} }

// FromObj constructs a Value referencing a heap Object.
func FromObj(o Obj) Value { return Value{kind: KindObj, obj: o} }

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObj() bool    { return v.kind == KindObj }

// AsBool returns the boolean payload. Only meaningful when IsBool is true.
func (v Value) AsBool() bool { return v.bool_ }

// AsNumber returns the numeric payload. Only meaningful when IsNumber is true.
func (v Value) AsNumber() float64 { return v.number }

// AsObj returns the heap-object payload. Only meaningful when IsObj is true.
func (v Value) AsObj() Obj { return v.obj }

// IsObjType reports whether v is a heap object of the given kind.
func (v Value) IsObjType(t ObjType) bool {
	return v.kind == KindObj && v.obj != nil && v.obj.Type() == t
}

// IsString reports whether v holds an interned string object.
func (v Value) IsString() bool { return v.IsObjType(ObjTypeString) }

// AsString returns the underlying *ObjString. Only meaningful when IsString
// is true.
func (v Value) AsString() *ObjString { return v.obj.(*ObjString) }

// IsFunction reports whether v holds a compiled function object.
func (v Value) IsFunction() bool { return v.IsObjType(ObjTypeFunction) }

// AsFunction returns the underlying *ObjFunction. Only meaningful when
// IsFunction is true.
func (v Value) AsFunction() *ObjFunction { return v.obj.(*ObjFunction) }

// AsFunctionOk is the non-panicking form used by disassembly, which may be
// pointed at a constant pool slot that isn't a function.
func (v Value) AsFunctionOk() (*ObjFunction, bool) {
	if !v.IsFunction() {
		return nil, false
	}
	return v.obj.(*ObjFunction), true
}

// IsClosure reports whether v holds a closure object.
func (v Value) IsClosure() bool { return v.IsObjType(ObjTypeClosure) }

// AsClosure returns the underlying *ObjClosure. Only meaningful when
// IsClosure is true.
func (v Value) AsClosure() *ObjClosure { return v.obj.(*ObjClosure) }

// IsNative reports whether v holds a native (host-provided) function.
func (v Value) IsNative() bool { return v.IsObjType(ObjTypeNative) }

// AsNative returns the underlying *ObjNative. Only meaningful when
// IsNative is true.
func (v Value) AsNative() *ObjNative { return v.obj.(*ObjNative) }

// IsFalsey implements the language's truthiness rule: nil and false are the
// only falsey values.
func (v Value) IsFalsey() bool {
	return v.IsNil() || (v.IsBool() && !v.AsBool())
}

// Equal implements values_equal: Nil==Nil, Bool==Bool structurally,
// Number==Number by IEEE-754 ==, Obj==Obj by identity except for strings,
// which (owing to interning) coincide with byte equality — identity
// equality among interned strings already implies that, so no special case
// is needed here.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.bool_ == o.bool_
	case KindNumber:
		return v.number == o.number
	case KindObj:
		return v.obj == o.obj
	default:
		return false
	}
}

// String renders v the way print_value does: nil as "nil", booleans as
// "true"/"false", numbers with a %g-equivalent format, strings as their raw
// bytes, functions as "<fn NAME>" or "<script>", natives as "<native_fn NAME>".
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.bool_ {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.number)
	case KindObj:
		return v.obj.String()
	default:
		return "<invalid value>"
	}
}

func formatNumber(n float64) string {
	return fmt.Sprintf("%g", n)
}
