package types

import "fmt"

// Scalar is the set of Go types a Field can point at.
type Scalar interface {
	int32 | uint32 | int64 | uint64 | float32 | float64 | string
}

// cell reads and writes one value through a pointer owned by an entity.
type cell interface {
	kind() Kind
	load() Value
	store(Value)
	addr() any
}

type ref[T Scalar] struct {
	p      *T
	k      Kind
	wrap   func(T) Value
	unwrap func(Value) T
}

func (r ref[T]) kind() Kind { return r.k }
func (r ref[T]) load() Value { return r.wrap(*r.p) }
func (r ref[T]) store(v Value) { *r.p = r.unwrap(v) }
func (r ref[T]) addr() any { return r.p }

func newRef[T Scalar](p *T, k Kind, wrap func(T) Value, unwrap func(Value) T) (cell, error) {
	if p == nil {
		return nil, &Error{Kind: UnsupportedType, ValueKind: k, Message: "nil field reference"}
	}
	return ref[T]{p: p, k: k, wrap: wrap, unwrap: unwrap}, nil
}

// Field is a named, borrowed reference to one value stored in an entity.
// It never copies the value: Value reads through the pointer and Store
// writes through it, so a Field must not outlive the entity it points into.
type Field struct {
	name string
	c    cell
}

// Bind returns a Field named name that reads and writes *ptr. ptr must be
// one of *int32, *uint32, *int64, *uint64, *float32, *float64 or *string;
// anything else fails with UnsupportedType.
func Bind(name string, ptr any) (Field, error) {
	var (
		c   cell
		err error
	)
	switch p := ptr.(type) {
	case *int32:
		c, err = newRef(p, KindInt32, Int32, Value.Int32)
	case *uint32:
		c, err = newRef(p, KindUint32, Uint32, Value.Uint32)
	case *int64:
		c, err = newRef(p, KindInt64, Int64, Value.Int64)
	case *uint64:
		c, err = newRef(p, KindUint64, Uint64, Value.Uint64)
	case *float32:
		c, err = newRef(p, KindFloat32, Float32, Value.Float32)
	case *float64:
		c, err = newRef(p, KindFloat64, Float64, Value.Float64)
	case *string:
		c, err = newRef(p, KindText, Text, Value.Text)
	default:
		return Field{}, &Error{Kind: UnsupportedType, Message: fmt.Sprintf("field %q: unsupported type %T", name, ptr)}
	}
	if err != nil {
		return Field{}, err
	}
	return Field{name: name, c: c}, nil
}

// Ref is the statically typed form of Bind. It panics if p is nil.
func Ref[T Scalar](name string, p *T) Field {
	f, err := Bind(name, p)
	if err != nil {
		panic(err)
	}
	return f
}

// Name returns the column name of the field.
func (f Field) Name() string { return f.name }

// Kind returns the kind of the referenced value, or KindInvalid for the zero
// Field.
func (f Field) Kind() Kind {
	if f.c == nil {
		return KindInvalid
	}
	return f.c.kind()
}

// Bound reports whether f references a value.
func (f Field) Bound() bool { return f.c != nil }

// Value reads the current value through the reference.
func (f Field) Value() Value {
	if f.c == nil {
		return Value{}
	}
	return f.c.load()
}

// Store writes v through the reference. The kind of v must equal the kind
// of the field.
func (f Field) Store(v Value) error {
	if f.c == nil {
		return &Error{Kind: KindMismatch, ValueKind: v.Kind(), Message: fmt.Sprintf("field %q is not bound", f.name)}
	}
	if v.Kind() != f.c.kind() {
		return &Error{
			Kind:      KindMismatch,
			ValueKind: v.Kind(),
			Message:   fmt.Sprintf("field %q: cannot store %s value in %s field", f.name, v.Kind(), f.c.kind()),
		}
	}
	f.c.store(v)
	return nil
}

// Ptr returns the pointer the field references.
func (f Field) Ptr() any {
	if f.c == nil {
		return nil
	}
	return f.c.addr()
}
