// Package csvdir implements the default storage backend: one CSV file per
// table, written into a target directory. The file is named <table>.csv and
// holds the header row followed by the data rows.
package csvdir

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/siddharth-krishna/xl2times/internal/storage"
	"github.com/siddharth-krishna/xl2times/internal/records"
)

// Repository writes tables as CSV files under Dir.
type Repository struct {
	dir string
}

var _ storage.Repository = (*Repository)(nil)

// New creates the output directory if needed and returns a Repository.
func New(dir string) (*Repository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csvdir: create %s: %w", dir, err)
	}
	return &Repository{dir: dir}, nil
}

// WriteTable writes t to <dir>/<name>.csv, replacing any existing file.
func (r *Repository) WriteTable(ctx context.Context, t records.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(r.dir, t.Name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csvdir: create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		f.Close()
		return fmt.Errorf("csvdir: write header of %s: %w", path, err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("csvdir: write row of %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("csvdir: flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csvdir: close %s: %w", path, err)
	}
	return nil
}

// Close implements storage.Repository; there is nothing to release.
func (r *Repository) Close() error { return nil }
