package types

import (
	"fmt"
	"strings"
)

// ErrorKind classifies an Error.
type ErrorKind int

// Error kinds.
const (
	ConnectionOpenFailed ErrorKind = iota + 1
	ConnectionCloseFailed
	StatementPrepareFailed
	StatementStepFailed
	BindFailed
	UnsupportedType
	ScalarNotFound
	MappingNotBound
	EngineExecFailed
	DecodeFailed
	KindMismatch
)

var errorKindNames = map[ErrorKind]string{
	ConnectionOpenFailed:   "connection open failed",
	ConnectionCloseFailed:  "connection close failed",
	StatementPrepareFailed: "statement prepare failed",
	StatementStepFailed:    "statement step failed",
	BindFailed:             "bind failed",
	UnsupportedType:        "unsupported type",
	ScalarNotFound:         "scalar not found",
	MappingNotBound:        "mapping not bound",
	EngineExecFailed:       "engine exec failed",
	DecodeFailed:           "decode failed",
	KindMismatch:           "kind mismatch",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// Error is the single error type of the persistence layer. Code carries the
// engine result code when the fault originated at the engine boundary and is
// zero otherwise. ValueKind is set for bind and decode failures.
type Error struct {
	Kind      ErrorKind
	Message   string
	Code      int
	ValueKind Kind
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString(e.Kind.String())
	}
	// A wrapped *Error already renders the same value kind and code.
	inner, _ := e.Err.(*Error)
	if e.ValueKind != KindInvalid && (inner == nil || inner.ValueKind != e.ValueKind) {
		fmt.Fprintf(&b, " [%s]", e.ValueKind)
	}
	if e.Code != 0 && (inner == nil || inner.Code != e.Code) {
		fmt.Fprintf(&b, " (code %d)", e.Code)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same Kind. A target with a non-zero Code
// additionally requires the same primary result code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == 0 || t.Code&0xff == e.PrimaryCode()
}

// PrimaryCode returns the primary engine result code, dropping the extended
// bits.
func (e *Error) PrimaryCode() int { return e.Code & 0xff }

// Sentinels for errors.Is. They carry no code and match any Error of the
// same kind.
var (
	ErrConnectionOpenFailed   = &Error{Kind: ConnectionOpenFailed}
	ErrConnectionCloseFailed  = &Error{Kind: ConnectionCloseFailed}
	ErrStatementPrepareFailed = &Error{Kind: StatementPrepareFailed}
	ErrStatementStepFailed    = &Error{Kind: StatementStepFailed}
	ErrBindFailed             = &Error{Kind: BindFailed}
	ErrUnsupportedType        = &Error{Kind: UnsupportedType}
	ErrScalarNotFound         = &Error{Kind: ScalarNotFound}
	ErrMappingNotBound        = &Error{Kind: MappingNotBound}
	ErrEngineExecFailed       = &Error{Kind: EngineExecFailed}
	ErrDecodeFailed           = &Error{Kind: DecodeFailed}
	ErrKindMismatch           = &Error{Kind: KindMismatch}
)

// Prefix wraps err under a message naming the outer operation. Kind, code
// and value kind are carried over and err stays in the chain as the cause.
// Errors that are not *Error are wrapped as EngineExecFailed.
func Prefix(prefix string, err error) error {
	if err == nil {
		return nil
	}
	e, ok := err.(*Error)
	if !ok {
		return &Error{Kind: EngineExecFailed, Message: prefix + "engine error", Err: err}
	}
	return &Error{
		Kind:      e.Kind,
		Message:   strings.TrimSuffix(prefix, ": "),
		Code:      e.Code,
		ValueKind: e.ValueKind,
		Err:       e,
	}
}
