//go:build cgo_sqlite

// CGO SQLite driver using mattn/go-sqlite3.
//
// Build with: go build -tags cgo_sqlite
// Requires: CGO_ENABLED=1
package sqlite

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

const (
	driverName    = "sqlite3"
	driverType    = "cgo"
	driverPackage = "github.com/mattn/go-sqlite3"
)

// engineCode extracts the SQLite result code carried by err, or 0. The
// extended code is preferred when the driver reports one.
func engineCode(err error) int {
	var se sqlite3.Error
	if errors.As(err, &se) {
		if se.ExtendedCode != 0 {
			return int(se.ExtendedCode)
		}
		return int(se.Code)
	}
	return 0
}
