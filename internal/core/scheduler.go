package core

// scheduler.go runs staging retention in the background.
//
// Raw rows are the bulkiest staging table and are only needed while a batch
// is still being investigated. The retention job deletes raw rows of batches
// older than the configured window, in bounded batches. Batch summaries and
// issues are kept.

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrRetentionUnavailable is returned when the audit store cannot purge.
var ErrRetentionUnavailable = errors.New("staging retention not supported by store")

// RetentionConfig holds configuration for the retention scheduler.
// Zero values fall back to defaults.
type RetentionConfig struct {
	RawRowDays    int           // Days to keep raw rows (default: 90)
	BatchSize     int           // Rows deleted per statement (default: 5000)
	CheckInterval time.Duration // How often to run (default: 24h)
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.RawRowDays <= 0 {
		c.RawRowDays = 90
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 5000
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// StartRetentionScheduler purges old raw rows immediately, then every
// CheckInterval, until ctx is cancelled.
func (s *Service) StartRetentionScheduler(ctx context.Context, cfg RetentionConfig) {
	cfg = cfg.withDefaults()
	if s.purger == nil {
		slog.Warn("retention scheduler disabled", "error", ErrRetentionUnavailable)
		return
	}

	slog.Info("retention scheduler started",
		"raw_row_days", cfg.RawRowDays,
		"batch_size", cfg.BatchSize,
		"interval", cfg.CheckInterval.String(),
	)

	s.runRetentionJob(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention scheduler stopped")
			return
		case <-ticker.C:
			s.runRetentionJob(ctx, cfg)
		}
	}
}

func (s *Service) runRetentionJob(ctx context.Context, cfg RetentionConfig) {
	start := time.Now()
	cutoff := s.now().AddDate(0, 0, -cfg.RawRowDays)

	purged, err := s.PurgeStaging(ctx, cutoff, cfg.BatchSize)
	if err != nil {
		slog.Error("retention job failed", "error", err, "rows_purged", purged)
		return
	}
	slog.Info("retention job completed",
		"rows_purged", purged,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// PurgeStaging deletes raw rows of batches processed before olderThan,
// batchSize rows at a time, and returns the total deleted.
func (s *Service) PurgeStaging(ctx context.Context, olderThan time.Time, batchSize int) (int64, error) {
	if s.purger == nil {
		return 0, ErrRetentionUnavailable
	}
	if batchSize <= 0 {
		batchSize = 5000
	}

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := s.purger.PurgeRawRows(ctx, olderThan, batchSize)
		if err != nil {
			return total, err
		}
		total += n
		if n < int64(batchSize) {
			return total, nil
		}
	}
}
