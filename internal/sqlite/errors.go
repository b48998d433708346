package sqlite

import (
	"errors"
	"strings"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// SQLite primary result codes that identify a rejected parameter.
const (
	codeTooBig = 18 // SQLITE_TOOBIG
	codeRange  = 25 // SQLITE_RANGE
)

// newError converts an engine-boundary failure into a *types.Error,
// extracting the engine result code from err.
func newError(kind types.ErrorKind, msg string, err error) *types.Error {
	return &types.Error{Kind: kind, Message: msg, Code: engineCode(err), Err: err}
}

// isBindError reports whether err is the engine or database/sql rejecting
// the argument list rather than a failure while stepping.
func isBindError(err error) bool {
	switch engineCode(err) & 0xff {
	case codeTooBig, codeRange:
		return true
	}
	// database/sql validates argument count and types before handing them
	// to the driver; these errors carry no engine code.
	msg := err.Error()
	return strings.HasPrefix(msg, "sql: expected ") || strings.HasPrefix(msg, "sql: converting argument")
}

// stepError classifies a failure returned while executing a prepared
// statement.
func stepError(msg string, err error) *types.Error {
	if isBindError(err) {
		return newError(types.BindFailed, msg+": bind", err)
	}
	return newError(types.StatementStepFailed, msg, err)
}

// execFailed turns a statement-level failure inside a persistence operation
// into EngineExecFailed. Mapping, binding and decoding errors, and errors
// already converted by a nested operation, pass through unchanged.
func execFailed(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *types.Error
	if !errors.As(err, &e) {
		return &types.Error{Kind: types.EngineExecFailed, Message: op, Code: engineCode(err), Err: err}
	}
	switch e.Kind {
	case types.EngineExecFailed, types.MappingNotBound, types.BindFailed, types.DecodeFailed, types.UnsupportedType, types.KindMismatch:
		return err
	}
	return &types.Error{Kind: types.EngineExecFailed, Message: op, Code: e.Code, Err: e}
}
