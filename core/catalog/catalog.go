// Package catalog indexes known show files in a SQLite database.
//
// Each registered file gets a stable UUID, the show's summary counts, and
// its fingerprint. Registering the same path again refreshes the summary
// and keeps the ID.
//
// Build modes:
//   - Default: pure Go modernc.org/sqlite
//   - -tags cgo_sqlite: mattn/go-sqlite3
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
	"github.com/FocuswithJustin/FieldChart/core/show"
	"github.com/FocuswithJustin/FieldChart/internal/logging"
	"github.com/google/uuid"
)

// Entry is one catalogued show file.
type Entry struct {
	ID           string    `json:"id"`
	Path         string    `json:"path"`
	Description  string    `json:"description"`
	Marchers     int       `json:"marchers"`
	Sheets       int       `json:"sheets"`
	Fingerprint  string    `json:"fingerprint"`
	RegisteredAt time.Time `json:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Catalog is an open catalog database.
type Catalog struct {
	db *sql.DB
}

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

// Open opens or creates the catalog at path and migrates its schema.
func Open(ctx context.Context, path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ferrors.NewValidation("path", "catalog path is required")
	}
	db, err := sql.Open(driverName, filepath.Clean(path))
	if err != nil {
		return nil, ferrors.NewIO("open", path, err)
	}
	// One connection keeps pragmas and transactions on the same handle.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, ferrors.NewIO("open", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, ferrors.NewIO("configure", path, err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logging.CatalogOperation(ctx, "open", path, "driver", driverType)
	return &Catalog{db: db}, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Register records sh as the content of path. A path that is already
// catalogued keeps its ID and registration time.
func (c *Catalog) Register(ctx context.Context, path string, sh *show.Show) (Entry, error) {
	key, err := canonicalPath(path)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		Path:        key,
		Description: sh.GetDescription(),
		Marchers:    sh.GetNumPoints(),
		Sheets:      sh.GetNumSheets(),
		Fingerprint: sh.Fingerprint(),
		UpdatedAt:   now(),
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("begin register: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var registered int64
	err = tx.QueryRowContext(ctx, `SELECT id, registered_at FROM shows WHERE path = ?`, key).Scan(&e.ID, &registered)
	switch {
	case err == sql.ErrNoRows:
		e.ID = uuid.NewString()
		e.RegisteredAt = e.UpdatedAt
		_, err = tx.ExecContext(ctx,
			`INSERT INTO shows (id, path, description, marchers, sheets, fingerprint, registered_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Path, e.Description, e.Marchers, e.Sheets, e.Fingerprint,
			toMillis(e.RegisteredAt), toMillis(e.UpdatedAt),
		)
	case err == nil:
		e.RegisteredAt = fromMillis(registered)
		_, err = tx.ExecContext(ctx,
			`UPDATE shows SET description = ?, marchers = ?, sheets = ?, fingerprint = ?, updated_at = ?
			 WHERE id = ?`,
			e.Description, e.Marchers, e.Sheets, e.Fingerprint, toMillis(e.UpdatedAt), e.ID,
		)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("register %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("commit register: %w", err)
	}
	e.UpdatedAt = fromMillis(toMillis(e.UpdatedAt))
	e.RegisteredAt = fromMillis(toMillis(e.RegisteredAt))
	logging.CatalogOperation(ctx, "register", e.ID, "path", e.Path)
	return e, nil
}

const selectEntry = `SELECT id, path, description, marchers, sheets, fingerprint, registered_at, updated_at FROM shows`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var registered, updated int64
	if err := row.Scan(&e.ID, &e.Path, &e.Description, &e.Marchers, &e.Sheets, &e.Fingerprint, &registered, &updated); err != nil {
		return Entry{}, err
	}
	e.RegisteredAt = fromMillis(registered)
	e.UpdatedAt = fromMillis(updated)
	return e, nil
}

// Get returns the entry with the given ID.
func (c *Catalog) Get(ctx context.Context, id string) (Entry, error) {
	e, err := scanEntry(c.db.QueryRowContext(ctx, selectEntry+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return Entry{}, ferrors.NewNotFound("catalog entry", id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get %s: %w", id, err)
	}
	return e, nil
}

// FindByPath returns the entry registered for path.
func (c *Catalog) FindByPath(ctx context.Context, path string) (Entry, error) {
	key, err := canonicalPath(path)
	if err != nil {
		return Entry{}, err
	}
	e, err := scanEntry(c.db.QueryRowContext(ctx, selectEntry+` WHERE path = ?`, key))
	if err == sql.ErrNoRows {
		return Entry{}, ferrors.NewNotFound("catalog entry", key)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("find %s: %w", key, err)
	}
	return e, nil
}

// List returns every entry ordered by path.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, selectEntry+` ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Remove deletes the entry with the given ID.
func (c *Catalog) Remove(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM shows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ferrors.NewNotFound("catalog entry", id)
	}
	logging.CatalogOperation(ctx, "remove", id)
	return nil
}

func canonicalPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ferrors.NewValidation("path", "show path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ferrors.NewIO("resolve", path, err)
	}
	return abs, nil
}
