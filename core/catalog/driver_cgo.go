//go:build cgo_sqlite

// Build with: go build -tags cgo_sqlite
// Requires: CGO_ENABLED=1
package catalog

import (
	_ "github.com/mattn/go-sqlite3" // CGO SQLite
)

const (
	driverName = "sqlite3"
	driverType = "cgo"
)
