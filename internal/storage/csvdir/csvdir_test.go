package csvdir_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/siddharth-krishna/xl2times/internal/storage/csvdir"
	"github.com/siddharth-krishna/xl2times/internal/records"
)

func TestWriteTableRoundTrip(t *testing.T) {
	dir := t.TempDir()
	repo, err := csvdir.New(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	table := records.Table{
		Name:   "ACT_COST",
		Header: []string{"REG", "DATAYEAR", "PRC", "CUR", "VALUE"},
		Rows: []records.Row{
			{"REG1", "2020", "COAL_PLANT", "EUR", "1.5"},
			{"REG2", "2025", "GAS, COMBINED", "EUR", "2"},
		},
	}
	if err := repo.WriteTable(context.Background(), table); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "out", "ACT_COST.csv"))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	got, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := [][]string{
		{"REG", "DATAYEAR", "PRC", "CUR", "VALUE"},
		{"REG1", "2020", "COAL_PLANT", "EUR", "1.5"},
		{"REG2", "2025", "GAS, COMBINED", "EUR", "2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("output = %v, want %v", got, want)
	}
}

func TestWriteTableEmpty(t *testing.T) {
	dir := t.TempDir()
	repo, err := csvdir.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	table := records.Table{Name: "REG", Header: []string{"REG"}}
	if err := repo.WriteTable(context.Background(), table); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "REG.csv"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(b) != "REG\n" {
		t.Fatalf("output = %q, want header only", b)
	}
}
