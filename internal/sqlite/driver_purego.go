//go:build !cgo_sqlite

package sqlite

import (
	"errors"

	sqlite "modernc.org/sqlite"
)

const (
	driverName    = "sqlite"
	driverType    = "purego"
	driverPackage = "modernc.org/sqlite"
)

// engineCode extracts the SQLite result code carried by err, or 0.
func engineCode(err error) int {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()
	}
	return 0
}
