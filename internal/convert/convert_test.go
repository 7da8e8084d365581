package convert_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/siddharth-krishna/xl2times/internal/config"
	"github.com/siddharth-krishna/xl2times/internal/convert"
	"github.com/siddharth-krishna/xl2times/internal/storage"
	"github.com/siddharth-krishna/xl2times/internal/records"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Headers: map[string][]string{
			"COM_PROJ": {"REGION", "YEAR", "COMMODITY", "VALUE"},
			"PRC_DESC": {"REGION", "PROCESS", "PRC_DESC"},
			"UC_N":     {"UC_N", "UC_DESC"},
		},
		TableOrder: []string{"UC_N", "COM_PROJ", "PRC_DESC"},
	}
}

const baseDD = `PARAMETER
COM_PROJ ' '/
REG1.2020.COAL 12.5
REG2.2030.ELC 4
/;

SET PRC_DESC
/
'REG1'.'PRC1' 'a process'
/;
`

const extraDD = `SET UC_N
/
'UC_GROWTH' 'limits growth'
/;

SET PRC_DESC
/
'REG1'.'PRC1' 'a process'
'REG2'.'PRC2' 'another'
/;
`

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.dd", baseDD)
	writeFile(t, dir, "extra.dd", extraDD)
	writeFile(t, dir, "notes.txt", "ignored")

	repo := &storage.Memory{}
	summary, err := convert.Run(context.Background(), convert.Options{
		InputDir: dir,
		Config:   testConfig(),
		Repo:     repo,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if summary.Files != 2 {
		t.Fatalf("expected 2 files, got %d", summary.Files)
	}
	if len(repo.Tables) != 3 {
		t.Fatalf("expected 3 tables, got %d", len(repo.Tables))
	}

	// TableOrder governs write order.
	wantOrder := []string{"UC_N", "COM_PROJ", "PRC_DESC"}
	for i, name := range wantOrder {
		if repo.Tables[i].Name != name {
			t.Fatalf("table %d: expected %s, got %s", i, name, repo.Tables[i].Name)
		}
	}

	// Set tuples are deduplicated across files.
	prc := repo.Tables[2]
	if len(prc.Rows) != 2 {
		t.Fatalf("expected 2 deduplicated PRC_DESC rows, got %d", len(prc.Rows))
	}

	// Parameter records survive in file order with values attached.
	com := repo.Tables[1]
	want := records.Row{"REG1", "2020", "COAL", "12.5"}
	if len(com.Rows) != 2 {
		t.Fatalf("expected 2 COM_PROJ rows, got %d", len(com.Rows))
	}
	for i, v := range want {
		if com.Rows[0][i] != v {
			t.Fatalf("COM_PROJ row 0 col %d: expected %q, got %q", i, v, com.Rows[0][i])
		}
	}

	if summary.Rows != 5 {
		t.Fatalf("expected 5 rows total, got %d", summary.Rows)
	}
}

func TestRun_RegionFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.dd", baseDD)

	cfg := testConfig()
	cfg.FilterRegions = map[string]struct{}{"REG1": {}}

	repo := &storage.Memory{}
	if _, err := convert.Run(context.Background(), convert.Options{
		InputDir: dir,
		Config:   cfg,
		Repo:     repo,
	}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, tbl := range repo.Tables {
		for _, row := range tbl.Rows {
			if row[0] != "REG1" {
				t.Fatalf("table %s kept row for region %q", tbl.Name, row[0])
			}
		}
	}
}

func TestRun_UnknownTableIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.dd", "SET MYSTERY\n/\n'X' 'desc'\n/;\n")

	repo := &storage.Memory{}
	_, err := convert.Run(context.Background(), convert.Options{
		InputDir: dir,
		Config:   testConfig(),
		Repo:     repo,
	})
	if err == nil {
		t.Fatal("expected error for table without configured header")
	}
}

func TestRun_NoInputFiles(t *testing.T) {
	dir := t.TempDir()
	repo := &storage.Memory{}
	_, err := convert.Run(context.Background(), convert.Options{
		InputDir: dir,
		Config:   testConfig(),
		Repo:     repo,
	})
	if err == nil {
		t.Fatal("expected error for empty input directory")
	}
}
