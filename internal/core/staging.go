package core

// staging.go records what happened in an import run, for support and replay.
//
// Write order is fixed: the batch summary, then every raw row (accepted or
// rejected) in chunks, then every issue. Product writes have already
// happened by the time this runs, so a failure here is reported but never
// undoes them.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultRawChunkSize bounds raw rows per staging insert.
const DefaultRawChunkSize = 200

// StagingRecorder writes batch summaries, raw rows and issues to an AuditStore.
type StagingRecorder struct {
	store     AuditStore
	chunkSize int
}

// NewStagingRecorder creates a recorder that writes rows in chunks of chunkSize.
func NewStagingRecorder(store AuditStore, chunkSize int) *StagingRecorder {
	if chunkSize <= 0 {
		chunkSize = DefaultRawChunkSize
	}
	return &StagingRecorder{store: store, chunkSize: chunkSize}
}

// Record persists one run. batch.ID must already be set.
//
// A failed batch insert stops the recording, since raw rows and issues
// reference it. Failures writing raw rows or issues are collected and the
// remaining chunks are still attempted.
func (r *StagingRecorder) Record(ctx context.Context, batch ImportBatch, raw []RawRow, issues []RowIssue) error {
	start := time.Now()

	if err := r.store.InsertBatch(ctx, batch); err != nil {
		return fmt.Errorf("insert batch %s: %w", batch.ID, err)
	}

	var errs []error

	for i := 0; i < len(raw); i += r.chunkSize {
		end := min(i+r.chunkSize, len(raw))
		if err := r.store.InsertRawRows(ctx, batch.ID, raw[i:end]); err != nil {
			errs = append(errs, fmt.Errorf("insert raw rows %d-%d: %w", raw[i].SourceRow, raw[end-1].SourceRow, err))
		}
	}

	for i := 0; i < len(issues); i += r.chunkSize {
		end := min(i+r.chunkSize, len(issues))
		if err := r.store.InsertIssues(ctx, batch.ID, issues[i:end]); err != nil {
			errs = append(errs, fmt.Errorf("insert issues: %w", err))
		}
	}

	slog.Debug("staging recorded",
		"batch_id", batch.ID,
		"raw_rows", len(raw),
		"issues", len(issues),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return errors.Join(errs...)
}
