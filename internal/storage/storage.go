// Package storage contains storage-agnostic contracts and the table
// assembler. Assembly validates parsed rows against the configured headers
// entirely in memory; backends (CSV directory, Postgres, SQLite) only ever
// see tables that have already passed the shape checks, which keeps them thin
// and keeps validation testable without touching the filesystem or a
// database.
package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/siddharth-krishna/xl2times/internal/records"
)

// Repository abstracts a destination for assembled tables. Implementations
// must be safe for sequential use; WriteTable is called once per table.
type Repository interface {
	WriteTable(ctx context.Context, t records.Table) error
	Close() error
}

// MissingHeaderError reports a table name with no configured header.
type MissingHeaderError struct {
	Table string
}

func (e *MissingHeaderError) Error() string {
	return fmt.Sprintf("storage: no header mapping found for table %s", e.Table)
}

// ShapeError reports a row whose width disagrees with its table's header.
type ShapeError struct {
	Table     string
	RowLen    int
	HeaderLen int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("storage: mismatched number of columns for table %s between data (%d) and mapping (%d)",
		e.Table, e.RowLen, e.HeaderLen)
}

// BuildTables assembles one fixed-width table per entry of data. For every
// table name it looks up the configured header (MissingHeaderError if
// absent), verifies that each row's width equals the header's width
// (ShapeError on the first mismatch), and projects rows to the header width.
// The projection truncates trailing values beyond the header; a scalar
// parameter row can carry no key while the header still declares a lone VALUE
// column.
//
// Tables are returned sorted by name so output is reproducible regardless of
// map iteration order.
func BuildTables(data map[string][]records.Row, headers map[string][]string) ([]records.Table, error) {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	tables := make([]records.Table, 0, len(names))
	for _, name := range names {
		header, ok := headers[name]
		if !ok {
			return nil, &MissingHeaderError{Table: name}
		}
		rows := data[name]
		out := make([]records.Row, len(rows))
		for i, row := range rows {
			if len(row) != len(header) {
				return nil, &ShapeError{Table: name, RowLen: len(row), HeaderLen: len(header)}
			}
			out[i] = row[:len(header)].Clone()
		}
		tables = append(tables, records.Table{Name: name, Header: append([]string{}, header...), Rows: out})
	}
	return tables, nil
}

// WriteAll writes tables to repo in the order given.
func WriteAll(ctx context.Context, repo Repository, tables []records.Table) error {
	for _, t := range tables {
		if err := repo.WriteTable(ctx, t); err != nil {
			return fmt.Errorf("storage: write table %s: %w", t.Name, err)
		}
	}
	return nil
}

// Memory is an in-memory Repository used by tests and dry runs.
type Memory struct {
	Tables []records.Table
}

// WriteTable appends t to the collected tables.
func (m *Memory) WriteTable(_ context.Context, t records.Table) error {
	m.Tables = append(m.Tables, t)
	return nil
}

// Close implements Repository; it never fails.
func (m *Memory) Close() error { return nil }
