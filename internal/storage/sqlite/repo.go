// Package sqlite implements a SQLite storage backend using database/sql.
// Rows are inserted with a prepared statement inside one transaction per
// table; SQLite has no bulk-load API like Postgres COPY, but a transaction
// keeps performance acceptable for the volumes this tool handles.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/siddharth-krishna/xl2times/internal/storage"
	"github.com/siddharth-krishna/xl2times/internal/records"
)

// Config holds SQLite backend configuration.
type Config struct {
	// DSN is passed directly to database/sql, e.g. "model.db" or
	// "file:model.db?cache=shared".
	DSN string

	// TablePrefix is prepended to every table name.
	TablePrefix string

	// CreateTables issues CREATE TABLE IF NOT EXISTS (all-TEXT columns) and
	// clears existing content before inserting.
	CreateTables bool
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

var _ storage.Repository = (*Repository)(nil)

// New opens the SQLite database and fails fast on an invalid DSN.
func New(ctx context.Context, cfg Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Repository{db: db, cfg: cfg}, nil
}

// quoteIdent quotes an identifier with double quotes, doubling embedded ones.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteTable inserts t into <prefix><name> inside a single transaction.
func (r *Repository) WriteTable(ctx context.Context, t records.Table) error {
	name := quoteIdent(r.cfg.TablePrefix + t.Name)

	if r.cfg.CreateTables {
		cols := make([]string, len(t.Header))
		for i, c := range t.Header {
			cols[i] = quoteIdent(c) + " TEXT"
		}
		create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name, strings.Join(cols, ", "))
		if _, err := r.db.ExecContext(ctx, create); err != nil {
			return fmt.Errorf("sqlite: create %s: %w", t.Name, err)
		}
		if _, err := r.db.ExecContext(ctx, "DELETE FROM "+name); err != nil {
			return fmt.Errorf("sqlite: clear %s: %w", t.Name, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	quoted := make([]string, len(t.Header))
	placeholders := make([]string, len(t.Header))
	for i, c := range t.Header {
		quoted[i] = quoteIdent(c)
		placeholders[i] = "?"
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		name, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("sqlite: prepare %s: %w", t.Name, err)
	}
	defer stmt.Close()

	for _, row := range t.Rows {
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("sqlite: insert into %s: %w", t.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit %s: %w", t.Name, err)
	}
	return nil
}

// DB exposes the underlying handle for callers that want to query the
// loaded tables in place.
func (r *Repository) DB() *sql.DB { return r.db }

// Close closes the database handle.
func (r *Repository) Close() error { return r.db.Close() }
