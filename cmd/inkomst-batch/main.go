package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/mnystrom/inkomstregister/constants"
	"github.com/mnystrom/inkomstregister/internal/async"
	"github.com/mnystrom/inkomstregister/internal/common"
	"github.com/mnystrom/inkomstregister/internal/entity"
	"github.com/mnystrom/inkomstregister/internal/export"
	"github.com/mnystrom/inkomstregister/internal/extract"
	"github.com/mnystrom/inkomstregister/internal/ingest"
	"github.com/mnystrom/inkomstregister/internal/parse"
	processor "github.com/mnystrom/inkomstregister/internal/pipeline"
	repo "github.com/mnystrom/inkomstregister/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir         = pflag.String("dir", "", "directory with register PDFs to process (required)")
		dsn         = pflag.String("db", "", "database DSN (sqlite path or postgres:// URL, default from config)")
		inmem       = pflag.Bool("inmem", false, "use an in-memory SQLite database")
		xlsxOut     = pflag.String("xlsx", "", "output XLSX file path (optional)")
		csvOut      = pflag.String("csv", "", "output CSV file path (optional)")
		jsonOut     = pflag.String("json", "", "output JSON file path (optional)")
		workers     = pflag.Int("workers", 0, "worker count (default: number of CPUs)")
		fileTimeout = pflag.Duration("file-timeout", 0, "per-file processing timeout")
		skipHidden  = pflag.Bool("skip-hidden", true, "skip hidden files and directories")
		watch       = pflag.Bool("watch", false, "keep watching the directory for new files after the initial batch")
	)
	pflag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *dsn != "" {
		cfg.Database.DSN = *dsn
	}
	if *inmem {
		cfg.Database.DSN = ":memory:"
	}
	if *workers > 0 {
		cfg.Pipeline.Workers = *workers
	}
	if *fileTimeout > 0 {
		cfg.Pipeline.FileTimeout = *fileTimeout
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runID := uuid.New()
	ctx = common.WithRunID(ctx, runID)
	logger = logger.With("run_id", runID)

	db, driver, err := repo.Open(ctx, repo.Config{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		DialTimeout:  cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(db, logger)

	persons := repo.NewPersonRepository(db, driver, logger)
	if err := persons.InitSchema(ctx); err != nil {
		logger.Error("failed to init schema", "error", err)
		os.Exit(1)
	}

	// Discover files
	entries, scanStats, err := ingest.ScanDirectory(ctx, *dir, *skipHidden, logger)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}

	proc := processor.NewProcessor(logger, extract.NewPDFExtractor(logger), parse.NewParser(logger))
	queue := async.NewFileQueue(proc, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
		async.WithFileTimeout(cfg.Pipeline.FileTimeout),
	)

	var jobs []async.Job
	for _, entry := range entries {
		if entry.Status == constants.FileStatusFailed || entry.Status == constants.FileStatusSkipped {
			continue
		}
		jobs = append(jobs, async.Job{
			Path:        entry.Path,
			TraceID:     entry.FileID,
			SubmittedAt: time.Now().UTC(),
		})
	}
	enqueued := len(jobs)

	// Feed the pool from the side: the collector below must already be
	// draining results, or a directory larger than the bounded channels
	// fills them and stalls the run.
	go func() {
		for _, job := range jobs {
			if err := queue.Enqueue(ctx, job); err != nil {
				logger.Warn("enqueue aborted", "path", job.Path, "error", err)
				break
			}
		}
		queue.Shutdown(ctx)
	}()

	// Single collector: the one writer feeding the storage collaborator.
	var records []entity.PersonRecord
	processed := 0
	failed := 0
	rejected := 0
	lowConfidence := 0
	for res := range queue.Results() {
		if res.Err != nil {
			failed++
			continue
		}
		processed++
		rejected += res.Report.Stats.Rejected
		lowConfidence += res.Report.Stats.LowConfidence
		records = append(records, res.Report.Records...)
	}

	logger.Info("extraction complete",
		"files_enqueued", enqueued,
		"files_processed", processed,
		"files_failed", failed,
		"spans_rejected", rejected,
		"low_confidence_splits", lowConfidence,
		"records", len(records),
	)

	if len(records) == 0 {
		logger.Error("no records extracted", "dir", *dir, "error", common.ErrNoRecords)
		printError("No records extracted from %s\n", *dir)
		os.Exit(1)
	}

	writeCtx, cancel := context.WithTimeout(ctx, cfg.Database.WriteTimeout)
	defer cancel()
	if err := persons.ReplaceAll(writeCtx, records); err != nil {
		logger.Error("failed to store records", "error", err)
		os.Exit(1)
	}

	if *watch {
		watchDirectory(ctx, *dir, proc, persons, cfg, logger, &records)
	}

	exporter := export.NewService(logger)
	if *xlsxOut != "" {
		data, err := exporter.PersonsXLSX(records)
		if err == nil {
			err = os.WriteFile(*xlsxOut, data, 0o644)
		}
		if err != nil {
			logger.Error("xlsx export failed", "path", *xlsxOut, "error", err)
			os.Exit(1)
		}
	}
	if *csvOut != "" {
		f, err := os.Create(*csvOut)
		if err == nil {
			err = exporter.PersonsCSV(f, records)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}
		if err != nil {
			logger.Error("csv export failed", "path", *csvOut, "error", err)
			os.Exit(1)
		}
	}
	if *jsonOut != "" {
		data, err := exporter.PersonsJSON(records)
		if err == nil {
			err = os.WriteFile(*jsonOut, data, 0o644)
		}
		if err != nil {
			logger.Error("json export failed", "path", *jsonOut, "error", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files scanned: %d (matched %d, deduplicated %d, failed %d)\n",
		scanStats.Scanned, scanStats.Matched, scanStats.Deduplicated, scanStats.Failed)
	fmt.Printf("- Files processed: %d\n", processed)
	fmt.Printf("- Files failed: %d\n", failed)
	fmt.Printf("- Records extracted: %d\n", len(records))
}

// watchDirectory keeps extracting files dropped into dir until the context
// is cancelled. Each new file's records are merged into the batch and the
// store is rewritten, preserving the full-replace contract.
func watchDirectory(ctx context.Context, dir string, proc *processor.Processor,
	persons repo.PersonRepository, cfg *common.Config, logger *slog.Logger,
	records *[]entity.PersonRecord) {

	evCh, errCh, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:    []string{dir},
		Debounce: 500 * time.Millisecond,
	}, logger)
	if err != nil {
		logger.Error("failed to start watcher", "dir", dir, "error", err)
		return
	}
	logger.Info("watching directory", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				return
			}
			logger.Error("watch error", "error", err)
		case path, ok := <-evCh:
			if !ok {
				return
			}
			fileCtx, cancel := context.WithTimeout(ctx, cfg.Pipeline.FileTimeout)
			report, err := proc.ProcessFile(fileCtx, path)
			cancel()
			if err != nil {
				logger.Error("watched file failed", "path", path, "error", err)
				continue
			}
			if len(report.Records) == 0 {
				continue
			}
			*records = append(*records, report.Records...)

			writeCtx, cancel := context.WithTimeout(ctx, cfg.Database.WriteTimeout)
			err = persons.ReplaceAll(writeCtx, *records)
			cancel()
			if err != nil {
				logger.Error("failed to store records", "path", path, "error", err)
			}
		}
	}
}
