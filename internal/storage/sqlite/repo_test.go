package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/siddharth-krishna/xl2times/internal/storage/sqlite"
	"github.com/siddharth-krishna/xl2times/internal/records"
)

func TestWriteTable(t *testing.T) {
	ctx := context.Background()
	repo, err := sqlite.New(ctx, sqlite.Config{
		DSN:          filepath.Join(t.TempDir(), "out.db"),
		CreateTables: true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	table := records.Table{
		Name:   "REG",
		Header: []string{"REG"},
		Rows:   []records.Row{{"REG1"}, {"REG2"}},
	}
	if err := repo.WriteTable(ctx, table); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	// A rerun replaces rather than appends.
	if err := repo.WriteTable(ctx, table); err != nil {
		t.Fatalf("WriteTable rerun: %v", err)
	}
	db := repo.DB()
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "REG"`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows = %d, want 2", n)
	}
}

func TestNewEmptyDSN(t *testing.T) {
	if _, err := sqlite.New(context.Background(), sqlite.Config{}); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}
