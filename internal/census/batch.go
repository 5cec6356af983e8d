package census

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"censuskit/internal/logging"
)

// BatchFile pairs raw census bytes with the name they arrived under. The
// extension of Name selects the extraction format.
type BatchFile struct {
	Name string
	Data []byte
}

// FileReport is the outcome of one file in a batch run. Exactly one of
// Report and Error is populated: Error covers extraction failures and slot
// timeouts, everything else lands in the Report as issues.
type FileReport struct {
	RunID      string  `json:"run_id"`
	FileName   string  `json:"file_name"`
	Report     *Report `json:"report,omitempty"`
	Error      string  `json:"error,omitempty"`
	DurationMs int64   `json:"duration_ms"`
}

// BatchOptions configure a batch run. MaxConcurrent and MaxWait feed the
// limiter; non-positive values fall back to its defaults.
type BatchOptions struct {
	MaxConcurrent int
	MaxWait       time.Duration
}

// RunBatch standardizes a set of files concurrently, one limiter slot per
// file. Results come back in input order regardless of completion order,
// and every file gets a fresh run ID that tags all of its log entries. A
// cancelled context stops admitting new files; files already holding a
// slot finish.
func RunBatch(ctx context.Context, std *Standardizer, files []BatchFile, opts BatchOptions) []FileReport {
	limiter := NewLimiter(opts.MaxConcurrent, opts.MaxWait)
	reports := make([]FileReport, len(files))

	var wg sync.WaitGroup
	for i, file := range files {
		runID := uuid.New().String()
		fileCtx := logging.WithRunID(ctx, runID)

		if err := limiter.Acquire(ctx); err != nil {
			reports[i] = FileReport{RunID: runID, FileName: file.Name, Error: err.Error()}
			logging.FromContext(fileCtx).Warn("census batch file rejected",
				"file", file.Name,
				"error", err)
			continue
		}

		wg.Add(1)
		go func(ctx context.Context, i int, file BatchFile, runID string) {
			defer wg.Done()
			defer limiter.Release()
			reports[i] = processFile(ctx, std, file, runID)
		}(fileCtx, i, file, runID)
	}
	wg.Wait()

	return reports
}

// processFile runs extraction and standardization for a single file.
func processFile(ctx context.Context, std *Standardizer, file BatchFile, runID string) FileReport {
	start := time.Now()
	out := FileReport{RunID: runID, FileName: file.Name}
	log := logging.WithFields(ctx, "file", file.Name)

	table, err := Extract(file.Data, filepath.Ext(file.Name))
	if err != nil {
		out.Error = err.Error()
		out.DurationMs = time.Since(start).Milliseconds()
		log.Error("census extraction failed", "error", err)
		return out
	}

	report := std.Run(table)
	out.Report = report
	out.DurationMs = time.Since(start).Milliseconds()

	log.Info("census file standardized",
		"format", table.Format,
		"rows", len(table.Rows),
		"issues", report.IssueCount(),
		"status", report.Status,
		"duration_ms", out.DurationMs)
	return out
}
