package sqlite

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Begin starts a transaction. mod is one of the types.Tx* modifiers; the
// empty modifier leaves the locking mode to the engine.
func (s *Statement) Begin(mod types.TxModifier) error {
	if !mod.Valid() {
		return &types.Error{Kind: types.StatementPrepareFailed, Message: fmt.Sprintf("begin: unknown transaction modifier %q", string(mod))}
	}
	query := "BEGIN"
	if mod != types.TxDefault {
		query += " " + string(mod)
	}
	return s.Execute(query + " TRANSACTION")
}

// Commit commits the current transaction.
func (s *Statement) Commit() error {
	return s.Execute("COMMIT TRANSACTION")
}

// Rollback rolls back the current transaction.
func (s *Statement) Rollback() error {
	return s.Execute("ROLLBACK TRANSACTION")
}

// Transaction runs fn between Begin and Commit. When fn or Commit fails the
// transaction is rolled back and the first error is returned.
func (s *Statement) Transaction(mod types.TxModifier, fn func() error) error {
	if err := s.Begin(mod); err != nil {
		return err
	}
	if err := fn(); err != nil {
		s.rollbackAfter(err)
		return err
	}
	if err := s.Commit(); err != nil {
		s.rollbackAfter(err)
		return err
	}
	return nil
}

func (s *Statement) rollbackAfter(cause error) {
	if err := s.Rollback(); err != nil {
		s.logger.Debug("rollback failed", slog.Any("cause", cause), slog.Any("error", err))
	}
}
