package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrHistoryUnavailable is returned when the audit store cannot be read back.
var ErrHistoryUnavailable = errors.New("batch history not supported by store")

// Page limits for batch listings.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// BatchPage is one page of import batches, newest first.
type BatchPage struct {
	Batches []ImportBatch `json:"batches"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
}

// ListBatches returns a page of recorded batches.
func (s *Service) ListBatches(ctx context.Context, limit, offset int) (*BatchPage, error) {
	if s.history == nil {
		return nil, ErrHistoryUnavailable
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	offset = max(offset, 0)

	batches, total, err := s.history.ListBatches(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return &BatchPage{Batches: batches, Total: total, Limit: limit, Offset: offset}, nil
}

// GetBatch returns one batch summary, or ErrBatchNotFound.
func (s *Service) GetBatch(ctx context.Context, id string) (*ImportBatch, error) {
	if s.history == nil {
		return nil, ErrHistoryUnavailable
	}
	if !ToPgUUID(id).Valid {
		return nil, fmt.Errorf("%w: %q", ErrBatchNotFound, id)
	}

	b, err := s.history.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// BatchIssues returns every issue recorded for a batch, ordered by source row.
func (s *Service) BatchIssues(ctx context.Context, id string) ([]RowIssue, error) {
	if _, err := s.GetBatch(ctx, id); err != nil {
		return nil, err
	}
	issues, err := s.history.ListBatchIssues(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list issues for batch %s: %w", id, err)
	}
	return issues, nil
}
