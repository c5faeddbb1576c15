package core

import (
	"context"
	"time"
)

// RuleSource loads the active mapping rules of one version, ordered by
// priority descending.
type RuleSource interface {
	ActiveMappingRules(ctx context.Context, version string) ([]MappingRule, error)
}

// ProductStore is the slice of the catalog the upsert engine writes through.
type ProductStore interface {
	// ProductsBySKU returns the existing products among skus, keyed by SKU.
	ProductsBySKU(ctx context.Context, skus []string) (map[string]ExistingProduct, error)

	// SlugExists reports whether any product already uses slug.
	SlugExists(ctx context.Context, slug string) (bool, error)

	// InsertProducts inserts all records or none.
	InsertProducts(ctx context.Context, recs []ProductRecord) error

	// InsertProduct inserts a single record.
	InsertProduct(ctx context.Context, rec ProductRecord) error

	// UpdateProduct overwrites the importable fields of product id.
	UpdateProduct(ctx context.Context, id string, rec ProductRecord) error
}

// CatalogStore is everything the import pipeline reads from or writes to
// the live catalog.
type CatalogStore interface {
	RuleSource
	ProductStore

	// CategoryIDsByName maps active curated category names to their ids.
	CategoryIDsByName(ctx context.Context) (map[string]string, error)

	// ExistingSKUs returns the subset of skus already in the catalog.
	ExistingSKUs(ctx context.Context, skus []string) (map[string]struct{}, error)
}

// AuditStore is the append-only staging area for import runs.
type AuditStore interface {
	InsertBatch(ctx context.Context, batch ImportBatch) error
	InsertRawRows(ctx context.Context, batchID string, rows []RawRow) error
	InsertIssues(ctx context.Context, batchID string, issues []RowIssue) error
}

// BatchReader serves the import history views.
type BatchReader interface {
	ListBatches(ctx context.Context, limit, offset int) ([]ImportBatch, int, error)
	GetBatch(ctx context.Context, id string) (*ImportBatch, error)
	ListBatchIssues(ctx context.Context, id string) ([]RowIssue, error)
}

// StagingPurger removes raw staging rows past their retention.
type StagingPurger interface {
	PurgeRawRows(ctx context.Context, olderThan time.Time, limit int) (int64, error)
}

// SourceArchiver stores the original uploaded file and returns its key.
type SourceArchiver interface {
	Archive(ctx context.Context, fileName, hash string, data []byte) (string, error)
}

// Recorder receives pipeline measurements.
type Recorder interface {
	ObserveImport(summary *ImportSummary)
	ObserveIssue(code IssueCode)
	ObserveStageDuration(stage string, d time.Duration)
}
