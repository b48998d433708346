// Package sqlite provides the public API for the shelf SQLite persistence
// layer. It re-exports the connection, statement and query types while
// keeping the driver and binding details internal.
package sqlite

import (
	"github.com/mesh-intelligence/shelf/internal/sqlite"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

type (
	// Conn owns one open handle to a file-backed store.
	Conn = sqlite.Conn
	// Statement runs one compiled statement at a time.
	Statement = sqlite.Statement
	// Query performs save, exists, fill, update, saveOrUpdate and delete
	// on entities that expose a types.Mapping.
	Query = sqlite.Query
	// Locked serializes access to a Conn shared between goroutines.
	Locked = sqlite.Locked
	// Info describes the compiled-in driver.
	Info = sqlite.Info
)

// Open opens the store described by cfg.
//
// Example:
//
//	conn, err := sqlite.Open(types.Config{Path: "shelf.db", ForeignKeys: true})
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
func Open(cfg types.Config) (*Conn, error) {
	return sqlite.Open(cfg)
}

// NewQuery returns a Query bound to an open connection.
func NewQuery(c *Conn) (*Query, error) {
	return sqlite.NewQuery(c)
}

// NewLocked wraps c for shared use.
func NewLocked(c *Conn) *Locked {
	return sqlite.NewLocked(c)
}

// ExecuteScalar runs a single-column query and returns the first row's
// value as T.
func ExecuteScalar[T types.Scalar](s *Statement, query string, params ...types.Value) (T, error) {
	return sqlite.ExecuteScalar[T](s, query, params...)
}

// CollectRows runs a query and decodes each row into a new R through the
// fields bind returns for it.
func CollectRows[R any](s *Statement, query string, bind func(*R) []types.Field, params ...types.Value) ([]R, error) {
	return sqlite.CollectRows(s, query, bind, params...)
}

// GetInfo reports which SQLite driver the binary was built with.
func GetInfo() Info {
	return sqlite.GetInfo()
}

// ReadRowsJSONL reads one JSON array per line and decodes each into shape.
func ReadRowsJSONL(path string, shape types.Shape) ([]types.Row, error) {
	return sqlite.ReadRowsJSONL(path, shape)
}

// WriteRowsJSONL atomically writes rows as one JSON array per line.
func WriteRowsJSONL(path string, rows []types.Row) error {
	return sqlite.WriteRowsJSONL(path, rows)
}
