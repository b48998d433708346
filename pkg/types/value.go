package types

import (
	"fmt"
	"strconv"
)

// Value is a tagged value over the supported kinds. The zero Value has
// KindInvalid. Values are immutable and comparable with ==.
type Value struct {
	kind Kind
	i    int64
	u    uint64
	f    float64
	s    string
}

// Int32 returns an int32 Value.
func Int32(v int32) Value { return Value{kind: KindInt32, i: int64(v)} }

// Uint32 returns a uint32 Value.
func Uint32(v uint32) Value { return Value{kind: KindUint32, u: uint64(v)} }

// Int64 returns an int64 Value.
func Int64(v int64) Value { return Value{kind: KindInt64, i: v} }

// Uint64 returns a uint64 Value.
func Uint64(v uint64) Value { return Value{kind: KindUint64, u: v} }

// Float32 returns a float32 Value.
func Float32(v float32) Value { return Value{kind: KindFloat32, f: float64(v)} }

// Float64 returns a float64 Value.
func Float64(v float64) Value { return Value{kind: KindFloat64, f: v} }

// Text returns a text Value.
func Text(v string) Value { return Value{kind: KindText, s: v} }

// Kind returns the kind tag of v.
func (v Value) Kind() Kind { return v.kind }

// Int32 returns the payload of an int32 Value.
func (v Value) Int32() int32 { return int32(v.i) }

// Uint32 returns the payload of a uint32 Value.
func (v Value) Uint32() uint32 { return uint32(v.u) }

// Int64 returns the payload of an int64 or int32 Value.
func (v Value) Int64() int64 { return v.i }

// Uint64 returns the payload of a uint64 or uint32 Value.
func (v Value) Uint64() uint64 { return v.u }

// Float32 returns the payload of a float32 Value.
func (v Value) Float32() float32 { return float32(v.f) }

// Float64 returns the payload of a float64 or float32 Value.
func (v Value) Float64() float64 { return v.f }

// Text returns the payload of a text Value.
func (v Value) Text() string { return v.s }

// Interface returns the payload as the Go type matching the kind, or nil
// for an invalid Value.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt32:
		return v.Int32()
	case KindUint32:
		return v.Uint32()
	case KindInt64:
		return v.i
	case KindUint64:
		return v.u
	case KindFloat32:
		return v.Float32()
	case KindFloat64:
		return v.f
	case KindText:
		return v.s
	}
	return nil
}

// String formats the payload without the kind tag.
func (v Value) String() string {
	switch v.kind {
	case KindInt32, KindInt64:
		return strconv.FormatInt(v.i, 10)
	case KindUint32, KindUint64:
		return strconv.FormatUint(v.u, 10)
	case KindFloat32:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	case KindFloat64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	}
	return "<invalid>"
}

// ParseValue parses s as a Value of kind k.
func ParseValue(k Kind, s string) (Value, error) {
	var (
		v   Value
		err error
	)
	switch k {
	case KindInt32:
		var n int64
		n, err = strconv.ParseInt(s, 10, 32)
		v = Int32(int32(n))
	case KindUint32:
		var n uint64
		n, err = strconv.ParseUint(s, 10, 32)
		v = Uint32(uint32(n))
	case KindInt64:
		var n int64
		n, err = strconv.ParseInt(s, 10, 64)
		v = Int64(n)
	case KindUint64:
		var n uint64
		n, err = strconv.ParseUint(s, 10, 64)
		v = Uint64(n)
	case KindFloat32:
		var f float64
		f, err = strconv.ParseFloat(s, 32)
		v = Float32(float32(f))
	case KindFloat64:
		var f float64
		f, err = strconv.ParseFloat(s, 64)
		v = Float64(f)
	case KindText:
		v = Text(s)
	default:
		return Value{}, &Error{Kind: UnsupportedType, ValueKind: k, Message: fmt.Sprintf("cannot parse value of kind %s", k)}
	}
	if err != nil {
		return Value{}, &Error{Kind: UnsupportedType, ValueKind: k, Message: fmt.Sprintf("parse %s value %q", k, s), Err: err}
	}
	return v, nil
}
