package sqlite

import (
	"database/sql"
	"log/slog"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// State is the lifecycle state of a Statement.
type State int

// Statement states.
const (
	Idle State = iota
	Prepared
)

func (s State) String() string {
	if s == Prepared {
		return "prepared"
	}
	return "idle"
}

// Statement wraps the lifecycle of one compiled statement at a time:
// prepare, bind, step, decode, finalize. Every method that prepares also
// finalizes before it returns, on success and on every failure path, so a
// Statement is Idle between calls. A Statement must not be used from more
// than one goroutine.
type Statement struct {
	conn    *Conn
	stmt    *sql.Stmt
	sqlText string
	logger  *slog.Logger
}

// State reports whether a compiled statement is currently held.
func (s *Statement) State() State {
	if s.stmt != nil {
		return Prepared
	}
	return Idle
}

func (s *Statement) prepare(query string) error {
	if s.conn == nil || !s.conn.IsOpen() {
		return &types.Error{Kind: types.StatementPrepareFailed, Message: "prepare: connection is closed"}
	}
	if s.stmt != nil {
		return &types.Error{Kind: types.StatementPrepareFailed, Message: "prepare: statement already prepared"}
	}

	st, err := s.conn.conn.PrepareContext(ctx(), query)
	if err != nil {
		s.logger.Debug("prepare failed", slog.String("sql", query), slog.Any("error", err))
		return newError(types.StatementPrepareFailed, "prepare", err)
	}
	s.stmt, s.sqlText = st, query
	s.logger.Debug("statement prepared", slog.String("sql", query))
	return nil
}

// finalize releases the compiled statement and returns to Idle. errp holds
// the result of the operation; a finalize failure is reported only when
// the operation itself succeeded.
func (s *Statement) finalize(errp *error) {
	if s.stmt == nil {
		return
	}
	err := s.stmt.Close()
	s.logger.Debug("statement finalized", slog.String("sql", s.sqlText))
	s.stmt, s.sqlText = nil, ""
	if err != nil && *errp == nil {
		*errp = newError(types.StatementStepFailed, "finalize", err)
	}
}

// Execute prepares query, binds params to its placeholders in order, steps
// it to completion and finalizes it.
func (s *Statement) Execute(query string, params ...types.Value) (err error) {
	if err := s.prepare(query); err != nil {
		return err
	}
	defer s.finalize(&err)

	args, err := bindArgs(params)
	if err != nil {
		return err
	}
	if _, err := s.stmt.ExecContext(ctx(), args...); err != nil {
		s.logger.Debug("execute failed", slog.String("sql", query), slog.Any("error", err))
		return stepError("execute", err)
	}
	return nil
}

// Exec runs query once without retaining a compiled handle. query takes no
// parameters and may hold several statements separated by semicolons.
func (s *Statement) Exec(query string) error {
	if s.conn == nil || !s.conn.IsOpen() {
		return &types.Error{Kind: types.StatementStepFailed, Message: "exec: connection is closed"}
	}
	if _, err := s.conn.conn.ExecContext(ctx(), query); err != nil {
		s.logger.Debug("exec failed", slog.String("sql", query), slog.Any("error", err))
		return newError(types.StatementStepFailed, "exec", err)
	}
	s.logger.Debug("exec", slog.String("sql", query))
	return nil
}
