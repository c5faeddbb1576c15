package core

// upsert.go persists validated rows into the catalog, keyed on SKU.
//
// Rows are processed in fixed-size chunks to bound each database round trip.
// Within a chunk, rows whose SKU already exists are updated one by one and
// the rest are inserted as a batch. If the batch insert fails, the chunk
// falls back to row-by-row inserts so one bad row costs only itself.
//
// Nothing here rolls back. Partial success is reported through issues.

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultChunkSize bounds rows per insert round trip.
const DefaultChunkSize = 50

// UpsertResult is the persistence outcome for one run.
type UpsertResult struct {
	Created int
	Updated int
	Issues  []RowIssue
}

// InsertStrategy inserts one chunk of new products in two phases.
type InsertStrategy interface {
	// AttemptBatch inserts every record or none.
	AttemptBatch(ctx context.Context, recs []ProductRecord) error

	// AttemptRowFallback inserts records one at a time, returning how many
	// succeeded and a DB_INSERT_ERROR issue for each that did not.
	AttemptRowFallback(ctx context.Context, recs []ProductRecord) (int, []RowIssue)
}

// BatchThenRowInserter is the default InsertStrategy over a ProductStore.
type BatchThenRowInserter struct {
	Store ProductStore
}

// AttemptBatch implements InsertStrategy.
func (b BatchThenRowInserter) AttemptBatch(ctx context.Context, recs []ProductRecord) error {
	return b.Store.InsertProducts(ctx, recs)
}

// AttemptRowFallback implements InsertStrategy.
func (b BatchThenRowInserter) AttemptRowFallback(ctx context.Context, recs []ProductRecord) (int, []RowIssue) {
	var (
		created int
		issues  []RowIssue
	)
	for _, rec := range recs {
		if err := b.Store.InsertProduct(ctx, rec); err != nil {
			issues = append(issues, insertIssue(rec.SourceRow, err))
			continue
		}
		created++
	}
	return created, issues
}

// UpsertEngine writes validated rows to the catalog.
type UpsertEngine struct {
	store     ProductStore
	inserter  InsertStrategy
	chunkSize int
	now       func() time.Time
	logger    *slog.Logger
}

// UpsertOption configures an UpsertEngine.
type UpsertOption func(*UpsertEngine)

// WithInsertStrategy replaces the default batch-then-row inserter.
func WithInsertStrategy(s InsertStrategy) UpsertOption {
	return func(e *UpsertEngine) { e.inserter = s }
}

// WithUpsertLogger sets the logger used for chunk-level diagnostics.
func WithUpsertLogger(l *slog.Logger) UpsertOption {
	return func(e *UpsertEngine) { e.logger = l }
}

// NewUpsertEngine creates an engine writing through store in chunks of chunkSize.
func NewUpsertEngine(store ProductStore, chunkSize int, opts ...UpsertOption) *UpsertEngine {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	e := &UpsertEngine{
		store:     store,
		inserter:  BatchThenRowInserter{Store: store},
		chunkSize: chunkSize,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Upsert persists rows. The returned error is non-nil only when the
// existing-product lookup fails, in which case nothing has been written.
func (e *UpsertEngine) Upsert(ctx context.Context, rows []ValidatedRow) (UpsertResult, error) {
	var result UpsertResult
	if len(rows) == 0 {
		return result, nil
	}

	existing, err := e.store.ProductsBySKU(ctx, collectSKUs(rows))
	if err != nil {
		return result, fmt.Errorf("lookup existing products: %w", err)
	}

	slugs := NewSlugAllocator(e.store)
	slugs.now = e.now

	for start := 0; start < len(rows); start += e.chunkSize {
		end := min(start+e.chunkSize, len(rows))
		e.upsertChunk(ctx, rows[start:end], existing, slugs, &result)
	}

	return result, nil
}

func (e *UpsertEngine) upsertChunk(
	ctx context.Context,
	chunk []ValidatedRow,
	existing map[string]ExistingProduct,
	slugs *SlugAllocator,
	result *UpsertResult,
) {
	now := e.now()

	var inserts []ProductRecord
	for _, row := range chunk {
		rec := toProductRecord(row, now)

		if row.SKU.Valid {
			if prod, ok := existing[row.SKU.String]; ok {
				rec.Slug = prod.Slug
				if err := e.store.UpdateProduct(ctx, prod.ID, rec); err != nil {
					result.Issues = append(result.Issues, RowIssue{
						SourceRow: row.SourceRow,
						Code:      IssueDBUpdate,
						Detail:    fmt.Sprintf("Error al actualizar producto con SKU %q: %v", row.SKU.String, err),
					})
					continue
				}
				result.Updated++
				continue
			}
		}

		slug, err := slugs.Allocate(ctx, row.Name)
		if err != nil {
			result.Issues = append(result.Issues, insertIssue(row.SourceRow, err))
			continue
		}
		rec.Slug = slug
		inserts = append(inserts, rec)
	}

	if len(inserts) == 0 {
		return
	}

	err := e.inserter.AttemptBatch(ctx, inserts)
	if err == nil {
		result.Created += len(inserts)
		return
	}
	e.logger.Warn("batch insert failed, retrying row by row",
		"rows", len(inserts),
		"first_row", inserts[0].SourceRow,
		"error", err,
	)

	created, issues := e.inserter.AttemptRowFallback(ctx, inserts)
	result.Created += created
	result.Issues = append(result.Issues, issues...)
}

func toProductRecord(row ValidatedRow, now time.Time) ProductRecord {
	return ProductRecord{
		SourceRow:   row.SourceRow,
		Name:        row.Name,
		Description: row.Description,
		Price:       row.Price,
		CategoryID:  row.CategoryID,
		SKU:         row.SKU,
		Barcode:     row.Barcode,
		TaxCode:     row.TaxCode,
		IsAvailable: row.IsAvailable,
		IsFeatured:  row.IsFeatured,
		IsSeasonal:  row.IsSeasonal,
		IsVisible:   true,
		UpdatedAt:   now,
	}
}

func insertIssue(sourceRow int, err error) RowIssue {
	return RowIssue{
		SourceRow: sourceRow,
		Code:      IssueDBInsert,
		Detail:    fmt.Sprintf("Error al insertar producto: %v", err),
	}
}

// collectSKUs returns the distinct non-null SKUs in rows.
func collectSKUs(rows []ValidatedRow) []string {
	seen := make(map[string]struct{}, len(rows))
	skus := make([]string, 0, len(rows))
	for _, r := range rows {
		if !r.SKU.Valid {
			continue
		}
		if _, ok := seen[r.SKU.String]; ok {
			continue
		}
		seen[r.SKU.String] = struct{}{}
		skus = append(skus, r.SKU.String)
	}
	return skus
}
