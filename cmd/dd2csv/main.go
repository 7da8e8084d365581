package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/siddharth-krishna/xl2times/internal/config"
	"github.com/siddharth-krishna/xl2times/internal/convert"
	"github.com/siddharth-krishna/xl2times/internal/metrics"
	"github.com/siddharth-krishna/xl2times/internal/metrics/datadog"
	"github.com/siddharth-krishna/xl2times/internal/metrics/prompush"
	"github.com/siddharth-krishna/xl2times/internal/storage"
	"github.com/siddharth-krishna/xl2times/internal/storage/csvdir"
	"github.com/siddharth-krishna/xl2times/internal/storage/postgres"
	"github.com/siddharth-krishna/xl2times/internal/storage/sqlite"
)

const usage = `usage: dd2csv [flags] <input_dir> <output_dir>

Parses the *.dd files under input_dir and writes one CSV table per parameter
and set into output_dir (or a database, with -storage).
`

// main parses flags, compiles the mapping configuration, picks a storage
// backend and metrics backend, and runs the conversion.
func main() {
	var (
		regions           string
		mappingFile       string
		timesInfoFile     string
		vedaTagsFile      string
		attrDefaultsFile  string
		storageKind       string
		dsn               string
		tablePrefix       string
		createTables      bool
		check             bool
		workers           int
		metricsBackendFlg string
		pushGatewayURLFlg string
		statsdAddrFlg     string
	)

	flag.StringVar(&regions, "regions", "", "comma-separated region allow-list (empty = keep all)")
	flag.StringVar(&mappingFile, "mapping", "", "times mapping grammar file (default: embedded)")
	flag.StringVar(&timesInfoFile, "times-info", "", "times attribute metadata JSON (default: embedded)")
	flag.StringVar(&vedaTagsFile, "veda-tags", "", "veda tag schema JSON (default: embedded)")
	flag.StringVar(&attrDefaultsFile, "attr-defaults", "", "veda attribute defaults JSON (default: embedded)")
	flag.StringVar(&storageKind, "storage", "csvdir", "output backend: csvdir, postgres, or sqlite")
	flag.StringVar(&dsn, "dsn", "", "DSN for the postgres or sqlite backend")
	flag.StringVar(&tablePrefix, "table-prefix", "", "prefix for database table names")
	flag.BoolVar(&createTables, "create-tables", true, "create (and truncate) database tables before loading")
	flag.BoolVar(&check, "check", false, "compile the configuration, report counts, and exit")
	flag.IntVar(&workers, "workers", 0, "concurrent file parsers (0 = GOMAXPROCS)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend: pushgateway, datadog, or none")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&statsdAddrFlg, "statsd-addr", "", "DogStatsD address for the datadog backend")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.New(config.Options{
		MappingFile:      mappingFile,
		TimesInfoFile:    timesInfoFile,
		VedaTagsFile:     vedaTagsFile,
		AttrDefaultsFile: attrDefaultsFile,
		Regions:          regions,
	})
	if err != nil {
		fatalf("compile configuration: %v", err)
	}
	for _, w := range cfg.Warnings {
		log.Printf("WARNING: %s", w)
	}
	if *verbose || check {
		log.Printf("configuration: %d table rules, %d known tables, %d mapping lines dropped, %d warnings",
			len(cfg.TableMaps), len(cfg.Headers), cfg.DroppedMappings, len(cfg.Warnings))
	}
	if check {
		return
	}

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	inputDir, outputDir := flag.Arg(0), flag.Arg(1)

	ctx := context.Background()
	repo, err := openRepository(ctx, storageKind, outputDir, dsn, tablePrefix, createTables)
	if err != nil {
		fatalf("open storage: %v", err)
	}
	defer repo.Close()

	setupMetrics(metricsBackendFlg, pushGatewayURLFlg, statsdAddrFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	start := time.Now()
	summary, err := convert.Run(ctx, convert.Options{
		InputDir: inputDir,
		Config:   cfg,
		Repo:     repo,
		Workers:  workers,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("done: %d files, %d tables, %d rows, %d warnings in %s",
		summary.Files, summary.Tables, summary.Rows, summary.Warnings,
		time.Since(start).Truncate(time.Millisecond))
}

// openRepository builds the storage backend named by kind. outputDir is only
// used by csvdir; dsn only by the database backends.
func openRepository(ctx context.Context, kind, outputDir, dsn, tablePrefix string, createTables bool) (storage.Repository, error) {
	switch kind {
	case "csvdir":
		return csvdir.New(outputDir)
	case "postgres":
		return postgres.New(ctx, postgres.Config{
			DSN:          dsn,
			TablePrefix:  tablePrefix,
			CreateTables: createTables,
		})
	case "sqlite":
		return sqlite.New(ctx, sqlite.Config{
			DSN:          dsn,
			TablePrefix:  tablePrefix,
			CreateTables: createTables,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}

// setupMetrics installs the requested metrics backend; on failure the nop
// backend stays and the run proceeds without metrics.
func setupMetrics(backendName, gwURL, statsdAddr string, verbose bool) {
	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend("dd2csv", gwURL)
		if err != nil {
			log.Printf("metrics: failed to init pushgateway backend: %v; using nop", err)
			return
		}
		if verbose {
			log.Printf("metrics: backend=pushgateway url=%s", gwURL)
		}
		metrics.SetBackend(b)

	case "datadog":
		if statsdAddr == "" {
			statsdAddr = os.Getenv("DD_AGENT_ADDR")
		}
		if statsdAddr == "" {
			statsdAddr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: statsdAddr, Namespace: "dd2csv."})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		if verbose {
			log.Printf("metrics: backend=datadog addr=%s", statsdAddr)
		}
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled")
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
