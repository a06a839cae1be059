// Package value implements the configuration tree: a recursive tagged value
// over null, bool, number, string, ordered object and array.
//
// Values are immutable from outside the package. Updates such as With and
// WithIndex return a new Value that shares unchanged children with the
// receiver, so a subtree referenced from two places can never be mutated
// through one of them.
package value

import (
	"math"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Member is one entry of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is a node of a configuration document. The zero Value is null.
type Value struct {
	kind    Kind
	boolean bool
	isInt   bool
	integer int64
	float   float64
	// raw is the literal of a number decoded from a document. It is
	// written back verbatim so unchanged numbers keep their exact text.
	raw     string
	str     string
	members []Member
	elems   []Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Int returns an integral number.
func Int(i int64) Value { return Value{kind: KindNumber, isInt: true, integer: i} }

// Float returns a floating point number.
func Float(f float64) Value { return Value{kind: KindNumber, float: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// EmptyObject returns an object with no members.
func EmptyObject() Value { return Value{kind: KindObject} }

// NewObject returns an object holding members in the given order. A repeated
// key keeps the position of its first occurrence and the value of its last.
func NewObject(members ...Member) Value {
	v := Value{kind: KindObject}
	for _, m := range members {
		if i := v.indexOf(m.Key); i >= 0 {
			v.members[i].Value = m.Value
			continue
		}
		v.members = append(v.members, m)
	}
	return v
}

// NewArray returns an array of the given elements.
func NewArray(elems ...Value) Value {
	v := Value{kind: KindArray}
	if len(elems) > 0 {
		v.elems = make([]Value, len(elems))
		copy(v.elems, elems)
	}
	return v
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsContainer reports whether v is an object or an array.
func (v Value) IsContainer() bool { return v.kind == KindObject || v.kind == KindArray }

// IsLeaf reports whether v is null, a bool, a number or a string.
func (v Value) IsLeaf() bool { return !v.IsContainer() }

// AsBool returns the boolean held by v (false for other kinds).
func (v Value) AsBool() bool { return v.boolean }

// IsInt reports whether v is a number stored as an integer.
func (v Value) IsInt() bool { return v.kind == KindNumber && v.isInt }

// AsInt returns v as an int64. ok is false unless v is an integral number.
func (v Value) AsInt() (i int64, ok bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if v.isInt {
		return v.integer, true
	}
	if v.float == math.Trunc(v.float) && math.Abs(v.float) < 1<<63 {
		return int64(v.float), true
	}
	return 0, false
}

// AsFloat returns the number held by v as a float64.
func (v Value) AsFloat() float64 {
	if v.isInt {
		return float64(v.integer)
	}
	return v.float
}

// AsString returns the string held by v ("" for other kinds).
func (v Value) AsString() string { return v.str }

// Len returns the number of members or elements of a container, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindObject:
		return len(v.members)
	case KindArray:
		return len(v.elems)
	default:
		return 0
	}
}

// Get returns the member named key of an object.
func (v Value) Get(key string) (Value, bool) {
	if i := v.indexOf(key); i >= 0 {
		return v.members[i].Value, true
	}
	return Value{}, false
}

// At returns element i of an array. ok is false when v is not an array or
// i is out of range.
func (v Value) At(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.elems) {
		return Value{}, false
	}
	return v.elems[i], true
}

// Keys returns the member names of an object in document order.
func (v Value) Keys() []string {
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

// Members returns a copy of the members of an object.
func (v Value) Members() []Member {
	out := make([]Member, len(v.members))
	copy(out, v.members)
	return out
}

// Elements returns a copy of the elements of an array.
func (v Value) Elements() []Value {
	out := make([]Value, len(v.elems))
	copy(out, v.elems)
	return out
}

// With returns a copy of the object v with key set to child. An existing key
// keeps its position; a new key is appended. Calling With on a non-object
// treats it as an empty object.
func (v Value) With(key string, child Value) Value {
	out := Value{kind: KindObject}
	i := -1
	if v.kind == KindObject {
		i = v.indexOf(key)
		out.members = make([]Member, len(v.members), len(v.members)+1)
		copy(out.members, v.members)
	}
	if i >= 0 {
		out.members[i].Value = child
	} else {
		out.members = append(out.members, Member{Key: key, Value: child})
	}
	return out
}

// WithIndex returns a copy of the array v with element i replaced by child.
// The array grows with filler values when i is past its end.
func (v Value) WithIndex(i int, child Value, filler Value) Value {
	out := Value{kind: KindArray}
	n := len(v.elems)
	if v.kind != KindArray {
		n = 0
	}
	size := n
	if i >= size {
		size = i + 1
	}
	out.elems = make([]Value, size)
	if v.kind == KindArray {
		copy(out.elems, v.elems)
	}
	for j := n; j < size; j++ {
		out.elems[j] = filler
	}
	out.elems[i] = child
	return out
}

// Text returns the flat string representation of a leaf: "" for null,
// "true"/"false", the document literal or canonical decimal text for
// numbers and the string itself.
// Containers render as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindNumber:
		return formatNumber(v)
	case KindString:
		return v.str
	default:
		b, _ := v.MarshalJSON()
		return string(b)
	}
}

// Equal reports structural equality. Numbers compare by value (3 equals 3.0)
// and object members compare as a mapping, regardless of order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.boolean == o.boolean
	case KindNumber:
		if v.isInt && o.isInt {
			return v.integer == o.integer
		}
		return v.AsFloat() == o.AsFloat()
	case KindString:
		return v.str == o.str
	case KindObject:
		if len(v.members) != len(o.members) {
			return false
		}
		for _, m := range v.members {
			other, ok := o.Get(m.Key)
			if !ok || !m.Value.Equal(other) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) indexOf(key string) int {
	if v.kind != KindObject {
		return -1
	}
	for i, m := range v.members {
		if m.Key == key {
			return i
		}
	}
	return -1
}

// formatNumber renders a decoded number as its literal, integers without a
// fraction and floats in their shortest round-trip form, switching to
// exponent notation only for very large or very small magnitudes.
func formatNumber(v Value) string {
	if v.raw != "" {
		return v.raw
	}
	if v.isInt {
		return strconv.FormatInt(v.integer, 10)
	}
	f := v.float
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if format == 'e' {
		// 1e-07 -> 1e-7
		n := len(s)
		if n >= 4 && s[n-4] == 'e' && s[n-3] == '-' && s[n-2] == '0' {
			s = s[:n-2] + s[n-1:]
		}
	}
	return s
}
