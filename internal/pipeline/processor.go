package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mnystrom/inkomstregister/constants"
	"github.com/mnystrom/inkomstregister/internal/common"
	"github.com/mnystrom/inkomstregister/internal/entity"
	"github.com/mnystrom/inkomstregister/internal/extract"
	"github.com/mnystrom/inkomstregister/internal/parse"
)

// FileReport is the outcome of processing one source file.
type FileReport struct {
	Path    string
	Status  constants.FileStatus
	Pages   int
	Stats   parse.PageStats
	Records []entity.PersonRecord
}

// Processor runs text extraction then the line pipeline for one file at a
// time. It holds no mutable state, so a single instance is shared by all
// workers.
type Processor struct {
	Logger    *slog.Logger
	Extractor extract.TextExtractor
	Parser    *parse.Parser
}

func NewProcessor(logger *slog.Logger, ex extract.TextExtractor, parser *parse.Parser) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if parser == nil {
		parser = parse.NewParser(logger)
	}
	return &Processor{Logger: logger, Extractor: ex, Parser: parser}
}

// ProcessFile extracts every page of the file and parses it into person
// records. Errors are file-scoped: the caller skips the file and moves on.
func (p *Processor) ProcessFile(ctx context.Context, path string) (FileReport, error) {
	report := FileReport{Path: path, Status: constants.FileStatusFailed}
	logger := p.traceLogger(ctx)

	pages, err := p.Extractor.ExtractPages(ctx, path)
	if err != nil {
		logger.Error("processor.extract.failed", "path", path, "error", err)
		return report, fmt.Errorf("extract pages: %w", err)
	}
	report.Pages = len(pages)

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		records, stats := p.Parser.ParsePage(page.Text)
		report.Records = append(report.Records, records...)
		report.Stats.Add(stats)
	}

	if len(report.Records) > 0 {
		report.Status = constants.FileStatusOK
	} else {
		report.Status = constants.FileStatusEmpty
	}

	logger.Info("processor.file.ok",
		"path", path,
		"pages", report.Pages,
		"data_lines", report.Stats.DataLines,
		"records", report.Stats.Records,
		"rejected", report.Stats.Rejected,
		"low_confidence", report.Stats.LowConfidence,
	)
	return report, nil
}

// traceLogger enriches the processor logger with whatever trace IDs the
// caller put on the context.
func (p *Processor) traceLogger(ctx context.Context) *slog.Logger {
	logger := p.Logger
	if id := common.RunIDFromContext(ctx); id != uuid.Nil {
		logger = logger.With("run_id", id)
	}
	if id := common.FileIDFromContext(ctx); id != uuid.Nil {
		logger = logger.With("file_id", id)
	}
	return logger
}
