package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/pkg/sqlite"
)

// openConn resolves the configuration, creates the database directory and
// opens the store. The caller must close the returned connection.
func openConn(cmd *cobra.Command) (*sqlite.Conn, resolved, error) {
	r, err := resolve()
	if err != nil {
		return nil, r, sysError("%w", err)
	}
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, r, err
	}
	r.cfg.Logger = logger

	if err := os.MkdirAll(filepath.Dir(r.cfg.Path), 0o755); err != nil {
		return nil, r, sysError("create data directory: %w", err)
	}
	conn, err := sqlite.Open(r.cfg)
	if err != nil {
		return nil, r, sysError("open %s: %w", r.cfg.Path, err)
	}
	return conn, r, nil
}

// withConn opens the store, runs fn and closes the store. A close failure
// is reported only when fn succeeded.
func withConn(cmd *cobra.Command, fn func(*sqlite.Conn) error) (err error) {
	conn, _, err := openConn(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = sysError("close: %w", cerr)
		}
	}()
	return fn(conn)
}

// cmdError wraps a failed statement for the CLI.
func cmdError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
