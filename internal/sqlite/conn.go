// Package sqlite implements the shelf persistence layer over SQLite: the
// connection, the prepared statement lifecycle, the value binding chain and
// the generic persistence operations.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// ctx is the context handed to database/sql. Operations are synchronous and
// never cancelled.
func ctx() context.Context {
	return context.Background()
}

// Conn owns exactly one open handle to a file-backed SQLite store.
// A Conn has no internal locking and must have a single owner at a time;
// wrap it in Locked to share it between goroutines. Statements and queries
// built against a Conn reference it and must not outlive it.
type Conn struct {
	id     string
	path   string
	db     *sql.DB
	conn   *sql.Conn
	logger *slog.Logger
}

// Open opens the store at cfg.Path and applies the configured pragmas.
// On failure everything opened so far is closed and no Conn is returned.
func Open(cfg types.Config) (*Conn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &types.Error{Kind: types.ConnectionOpenFailed, Message: "invalid config", Err: err}
	}

	db, err := sql.Open(driverName, cfg.Path)
	if err != nil {
		return nil, newError(types.ConnectionOpenFailed, "open "+cfg.Path, err)
	}

	c, err := newConn(db, cfg.Path, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	if err := c.conn.PingContext(ctx()); err != nil {
		c.release()
		return nil, newError(types.ConnectionOpenFailed, "open "+cfg.Path, err)
	}

	if err := c.applyPragmas(cfg); err != nil {
		c.release()
		return nil, err
	}

	c.logger.Info("connection opened", slog.String("path", c.path), slog.String("driver", driverType))
	return c, nil
}

// newConn pins the single engine connection of db.
func newConn(db *sql.DB, path string, logger *slog.Logger) (*Conn, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx())
	if err != nil {
		return nil, newError(types.ConnectionOpenFailed, "open "+path, err)
	}

	id := uuid.Must(uuid.NewV7()).String()
	return &Conn{
		id:     id,
		path:   path,
		db:     db,
		conn:   conn,
		logger: logger.With(slog.String("conn_id", id)),
	}, nil
}

// applyPragmas issues the PRAGMA statements requested by cfg. Pragmas do
// not accept bound parameters; their arguments come from the validated
// config, never from entity data.
func (c *Conn) applyPragmas(cfg types.Config) error {
	var pragmas []string
	if cfg.ForeignKeys {
		pragmas = append(pragmas, "PRAGMA foreign_keys = ON")
	}
	if cfg.BusyTimeoutMS > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeoutMS))
	}
	if cfg.JournalMode != "" {
		pragmas = append(pragmas, "PRAGMA journal_mode = "+strings.ToUpper(cfg.JournalMode))
	}
	for _, p := range pragmas {
		if _, err := c.conn.ExecContext(ctx(), p); err != nil {
			return newError(types.ConnectionOpenFailed, "apply "+p, err)
		}
	}
	return nil
}

// release closes the handle ignoring errors; used on failed opens.
func (c *Conn) release() {
	if c.conn != nil {
		c.conn.Close()
	}
	if c.db != nil {
		c.db.Close()
	}
	c.conn, c.db = nil, nil
}

// Close releases the engine handle. Close is idempotent.
func (c *Conn) Close() error {
	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	if dbErr := c.db.Close(); err == nil {
		err = dbErr
	}
	c.conn, c.db = nil, nil

	if err != nil {
		c.logger.Debug("close failed", slog.Any("error", err))
		return newError(types.ConnectionCloseFailed, "close "+c.path, err)
	}
	c.logger.Info("connection closed", slog.String("path", c.path))
	return nil
}

// IsOpen reports whether the connection has not been closed.
func (c *Conn) IsOpen() bool { return c.conn != nil }

// ID returns the identifier attached to this connection's log records.
func (c *Conn) ID() string { return c.id }

// Path returns the database path the connection was opened with.
func (c *Conn) Path() string { return c.path }

// NewStatement returns an idle statement bound to c.
func (c *Conn) NewStatement() *Statement {
	return &Statement{conn: c, logger: c.logger}
}
