package types

import (
	"fmt"
	"strings"
)

// Kind identifies one of the primitive value kinds the engine binding
// supports. The zero Kind is invalid and can never be bound.
type Kind uint8

// Supported value kinds.
const (
	KindInvalid Kind = iota
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindText
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindInt32:   "int32",
	KindUint32:  "uint32",
	KindInt64:   "int64",
	KindUint64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindText:    "text",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the bindable kinds.
func (k Kind) Valid() bool {
	return k > KindInvalid && k <= KindText
}

// IsInteger reports whether k is stored with INTEGER affinity.
func (k Kind) IsInteger() bool {
	switch k {
	case KindInt32, KindUint32, KindInt64, KindUint64:
		return true
	}
	return false
}

// IsFloat reports whether k is stored with REAL affinity.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// ParseKind parses a kind name as produced by Kind.String. Matching is
// case-insensitive; "string" is accepted as an alias for text.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "string" {
		return KindText, nil
	}
	for k := KindInt32; k <= KindText; k++ {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return KindInvalid, &Error{Kind: UnsupportedType, Message: fmt.Sprintf("unknown value kind %q", s)}
}

// Shape is the ordered list of kinds of a fixed-shape result record.
type Shape []Kind

// ParseShape parses a comma-separated list of kind names.
func ParseShape(s string) (Shape, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	shape := make(Shape, 0, len(parts))
	for _, p := range parts {
		k, err := ParseKind(p)
		if err != nil {
			return nil, err
		}
		shape = append(shape, k)
	}
	return shape, nil
}

// Row is one decoded result record; Row[i] has kind Shape[i].
type Row []Value
