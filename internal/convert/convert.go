// Package convert runs the end-to-end DD-to-tables pipeline: discover DD
// files under an input directory, parse them concurrently, merge the results
// in path order, shape the merged data into tables using the compiled
// configuration, and write the tables to a storage backend.
package convert

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/siddharth-krishna/xl2times/internal/config"
	"github.com/siddharth-krishna/xl2times/internal/metrics"
	"github.com/siddharth-krishna/xl2times/internal/parser/dd"
	"github.com/siddharth-krishna/xl2times/internal/storage"
	"github.com/siddharth-krishna/xl2times/internal/records"
)

// Options configures a conversion run.
type Options struct {
	// InputDir is searched recursively for *.dd files.
	InputDir string

	// Config is the compiled mapping configuration. Required.
	Config *config.Config

	// Repo receives the output tables. Required.
	Repo storage.Repository

	// Workers bounds concurrent file parsing. Zero means GOMAXPROCS.
	Workers int

	// Job names the run in metrics. Defaults to "dd2csv".
	Job string
}

// Summary reports what a conversion run did.
type Summary struct {
	Files    int // DD files parsed
	Tables   int // tables written
	Rows     int // data rows written across all tables
	Warnings int // non-fatal findings, config warnings included
}

// Run executes the pipeline. Parsing is concurrent but the merge is
// performed in sorted path order, so output is deterministic regardless of
// scheduling.
func Run(ctx context.Context, opt Options) (*Summary, error) {
	if opt.Config == nil {
		return nil, fmt.Errorf("convert: Config is required")
	}
	if opt.Repo == nil {
		return nil, fmt.Errorf("convert: Repo is required")
	}
	job := opt.Job
	if job == "" {
		job = "dd2csv"
	}

	start := time.Now()
	paths, err := discover(opt.InputDir)
	metrics.RecordStep(job, "discover", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("convert: no .dd files found under %s", opt.InputDir)
	}

	start = time.Now()
	merged, err := parseAll(ctx, paths, opt.Workers)
	metrics.RecordStep(job, "parse", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	nParamRows := 0
	for _, rows := range merged.Params {
		nParamRows += len(rows)
	}
	nSetRows := 0
	for _, s := range merged.Sets {
		nSetRows += s.Len()
	}
	metrics.RecordRows(job, "parameter", nParamRows)
	metrics.RecordRows(job, "set", nSetRows)

	start = time.Now()
	tables, err := buildTables(merged, opt.Config)
	metrics.RecordStep(job, "build", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	summary := &Summary{Files: len(paths), Warnings: len(opt.Config.Warnings)}

	start = time.Now()
	err = writeTables(ctx, opt.Repo, tables, summary)
	metrics.RecordStep(job, "write", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	metrics.RecordRows(job, "table", summary.Tables)
	metrics.RecordWarnings(job, "config", len(opt.Config.Warnings))
	metrics.RecordWarnings(job, "dropped_mapping", opt.Config.DroppedMappings)

	return summary, nil
}

// discover returns every *.dd path under root, sorted.
func discover(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ".dd" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("convert: scan %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// parseAll parses the given files with a bounded worker pool and merges the
// results in the order of paths.
func parseAll(ctx context.Context, paths []string, workers int) (*dd.File, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	files := make([]*dd.File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			log.Printf("Processing path: %s", path)
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("convert: open %s: %w", path, err)
			}
			defer f.Close()

			parsed, err := dd.NewParser(dd.Options{NormalizeNFC: true}).Parse(f)
			if err != nil {
				return fmt.Errorf("convert: parse %s: %w", path, err)
			}
			files[i] = parsed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dd.Merge(files...), nil
}

// buildTables turns the merged parameter and set data into output tables,
// validated against the configured headers, and applies the region
// allow-list where a table carries a REGION column.
func buildTables(merged *dd.File, cfg *config.Config) ([]records.Table, error) {
	paramData := make(map[string][]records.Row, len(merged.Params))
	for name, rows := range merged.Params {
		paramData[name] = rows
	}
	setData := make(map[string][]records.Row, len(merged.Sets))
	for name, set := range merged.Sets {
		setData[name] = set.Rows()
	}

	paramTables, err := storage.BuildTables(paramData, cfg.Headers)
	if err != nil {
		return nil, err
	}
	setTables, err := storage.BuildTables(setData, cfg.Headers)
	if err != nil {
		return nil, err
	}

	tables := append(paramTables, setTables...)
	if len(cfg.FilterRegions) > 0 {
		for i := range tables {
			tables[i] = filterRegions(tables[i], cfg.FilterRegions)
		}
	}
	return orderTables(tables, cfg.TableOrder), nil
}

// filterRegions drops rows whose REGION value is outside the allow-list.
// Tables without a REGION column pass through unchanged.
func filterRegions(t records.Table, allow map[string]struct{}) records.Table {
	col := -1
	for i, h := range t.Header {
		if strings.EqualFold(h, "REGION") {
			col = i
			break
		}
	}
	if col < 0 {
		return t
	}
	kept := t.Rows[:0:0]
	for _, row := range t.Rows {
		if _, ok := allow[strings.ToUpper(row[col])]; ok {
			kept = append(kept, row)
		}
	}
	t.Rows = kept
	return t
}

// orderTables sorts tables by their position in order; names absent from
// order come last, alphabetically.
func orderTables(tables []records.Table, order []string) []records.Table {
	rank := make(map[string]int, len(order))
	for i, name := range order {
		rank[name] = i
	}
	sort.SliceStable(tables, func(i, j int) bool {
		ri, iok := rank[tables[i].Name]
		rj, jok := rank[tables[j].Name]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		default:
			return tables[i].Name < tables[j].Name
		}
	})
	return tables
}

func writeTables(ctx context.Context, repo storage.Repository, tables []records.Table, summary *Summary) error {
	for _, t := range tables {
		if err := repo.WriteTable(ctx, t); err != nil {
			return fmt.Errorf("convert: write table %s: %w", t.Name, err)
		}
		summary.Tables++
		summary.Rows += len(t.Rows)
	}
	return nil
}
