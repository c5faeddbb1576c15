// Package store implements the import pipeline's persistence ports on
// PostgreSQL through the sqlc query layer.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/catalog/internal/core"
	db "github.com/JonMunkholm/catalog/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Pool is the subset of *pgxpool.Pool the store needs.
type Pool interface {
	db.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// Postgres serves the catalog and audit ports from one connection pool.
type Postgres struct {
	pool Pool
	q    *db.Queries
}

var (
	_ core.CatalogStore  = (*Postgres)(nil)
	_ core.AuditStore    = (*Postgres)(nil)
	_ core.BatchReader   = (*Postgres)(nil)
	_ core.StagingPurger = (*Postgres)(nil)
)

// New creates a store backed by pool.
func New(pool Pool) *Postgres {
	return &Postgres{pool: pool, q: db.New(pool)}
}

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// ----------------------------------------------------------------------------
// Catalog
// ----------------------------------------------------------------------------

// ActiveMappingRules loads the active rules of version, highest priority first.
func (p *Postgres) ActiveMappingRules(ctx context.Context, version string) ([]core.MappingRule, error) {
	rows, err := p.q.ListActiveMappingRules(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("list mapping rules %s: %w", version, err)
	}

	rules := make([]core.MappingRule, len(rows))
	for i, r := range rows {
		rules[i] = core.MappingRule{
			Department:      r.DepartamentoRaw,
			Category:        r.CategoriaRaw,
			CuratedCategory: r.CuratedCategory,
			Priority:        int(r.Priority),
		}
	}
	return rules, nil
}

// CategoryIDsByName maps active category names to their ids.
func (p *Postgres) CategoryIDsByName(ctx context.Context) (map[string]string, error) {
	rows, err := p.q.ListActiveCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Name] = core.PgUUIDToString(r.ID)
	}
	return out, nil
}

// ExistingSKUs returns the subset of skus already in the catalog.
func (p *Postgres) ExistingSKUs(ctx context.Context, skus []string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	if len(skus) == 0 {
		return out, nil
	}

	rows, err := p.q.GetProductsBySKUs(ctx, skus)
	if err != nil {
		return nil, fmt.Errorf("lookup skus: %w", err)
	}
	for _, r := range rows {
		if r.Sku.Valid {
			out[r.Sku.String] = struct{}{}
		}
	}
	return out, nil
}

// ProductsBySKU returns the existing products among skus, keyed by SKU.
func (p *Postgres) ProductsBySKU(ctx context.Context, skus []string) (map[string]core.ExistingProduct, error) {
	out := make(map[string]core.ExistingProduct)
	if len(skus) == 0 {
		return out, nil
	}

	rows, err := p.q.GetProductsBySKUs(ctx, skus)
	if err != nil {
		return nil, fmt.Errorf("lookup products: %w", err)
	}
	for _, r := range rows {
		if !r.Sku.Valid {
			continue
		}
		out[r.Sku.String] = core.ExistingProduct{
			ID:       core.PgUUIDToString(r.ID),
			SKU:      r.Sku.String,
			Slug:     r.Slug,
			ImageURL: r.ImageUrl,
		}
	}
	return out, nil
}

// SlugExists reports whether any product already uses slug.
func (p *Postgres) SlugExists(ctx context.Context, slug string) (bool, error) {
	exists, err := p.q.SlugExists(ctx, slug)
	if err != nil {
		return false, fmt.Errorf("check slug %q: %w", slug, err)
	}
	return exists, nil
}

// InsertProducts inserts recs in one transaction. Any failure rolls back
// the whole chunk.
func (p *Postgres) InsertProducts(ctx context.Context, recs []core.ProductRecord) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q := p.q.WithTx(tx)
	for _, rec := range recs {
		if err := q.InsertProduct(ctx, insertParams(rec)); err != nil {
			return fmt.Errorf("insert row %d: %w", rec.SourceRow, describeConstraint(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// InsertProduct inserts a single record outside any chunk transaction.
func (p *Postgres) InsertProduct(ctx context.Context, rec core.ProductRecord) error {
	if err := p.q.InsertProduct(ctx, insertParams(rec)); err != nil {
		return describeConstraint(err)
	}
	return nil
}

// UpdateProduct overwrites the importable fields of product id. SKU, slug
// and image are left alone.
func (p *Postgres) UpdateProduct(ctx context.Context, id string, rec core.ProductRecord) error {
	n, err := p.q.UpdateProductFromImport(ctx, db.UpdateProductFromImportParams{
		ID:          core.ToPgUUID(id),
		CategoryID:  core.ToPgUUID(rec.CategoryID),
		Name:        rec.Name,
		Description: rec.Description,
		Price:       core.ToPgPrice(rec.Price),
		Barcode:     rec.Barcode,
		SatCode:     rec.TaxCode,
		IsAvailable: rec.IsAvailable,
		IsFeatured:  rec.IsFeatured,
		IsSeasonal:  rec.IsSeasonal,
		UpdatedAt:   toTimestamptz(rec.UpdatedAt),
	})
	if err != nil {
		return describeConstraint(err)
	}
	if n == 0 {
		return fmt.Errorf("product %s no longer exists", id)
	}
	return nil
}

func insertParams(rec core.ProductRecord) db.InsertProductParams {
	return db.InsertProductParams{
		CategoryID:  core.ToPgUUID(rec.CategoryID),
		Name:        rec.Name,
		Slug:        rec.Slug,
		Description: rec.Description,
		Price:       core.ToPgPrice(rec.Price),
		Sku:         rec.SKU,
		Barcode:     rec.Barcode,
		SatCode:     rec.TaxCode,
		IsAvailable: rec.IsAvailable,
		IsFeatured:  rec.IsFeatured,
		IsSeasonal:  rec.IsSeasonal,
		IsVisible:   rec.IsVisible,
		UpdatedAt:   toTimestamptz(rec.UpdatedAt),
	}
}

// describeConstraint names the violated unique index so the row issue says
// which column collided.
func describeConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("duplicate key violates %s: %w", pgErr.ConstraintName, err)
	}
	return err
}

// ----------------------------------------------------------------------------
// Audit
// ----------------------------------------------------------------------------

// InsertBatch records the summary row of one import.
func (p *Postgres) InsertBatch(ctx context.Context, b core.ImportBatch) error {
	id := core.ToPgUUID(b.ID)
	if !id.Valid {
		return fmt.Errorf("invalid batch id %q", b.ID)
	}

	err := p.q.InsertImportBatch(ctx, db.InsertImportBatchParams{
		ID:             id,
		SourceFilename: b.SourceFilename,
		SourceFileHash: b.SourceFileHash,
		MappingVersion: b.MappingVersion,
		Status:         string(b.Status),
		TotalRows:      int32(b.TotalRows),
		RowsCreated:    int32(b.RowsCreated),
		RowsUpdated:    int32(b.RowsUpdated),
		RowsSkipped:    int32(b.RowsSkipped),
		RowsErrored:    int32(b.RowsErrored),
		RequestedByIp:  core.ToPgText(b.RequestedByIP),
		ProcessedAt:    toTimestamptz(b.ProcessedAt),
	})
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// InsertRawRows copies rows into the staging table as JSON payloads.
func (p *Postgres) InsertRawRows(ctx context.Context, batchID string, rows []core.RawRow) error {
	if len(rows) == 0 {
		return nil
	}

	id := core.ToPgUUID(batchID)
	params := make([]db.InsertImportRawRowsParams, len(rows))
	for i, r := range rows {
		payload, err := json.Marshal(r.Payload())
		if err != nil {
			return fmt.Errorf("marshal row %d: %w", r.SourceRow, err)
		}
		params[i] = db.InsertImportRawRowsParams{
			BatchID:         id,
			SourceRowNumber: int32(r.SourceRow),
			Payload:         payload,
		}
	}

	if _, err := p.q.InsertImportRawRows(ctx, params); err != nil {
		return fmt.Errorf("copy raw rows: %w", err)
	}
	return nil
}

// InsertIssues copies issues into the issue table.
func (p *Postgres) InsertIssues(ctx context.Context, batchID string, issues []core.RowIssue) error {
	if len(issues) == 0 {
		return nil
	}

	id := core.ToPgUUID(batchID)
	params := make([]db.InsertImportIssuesParams, len(issues))
	for i, is := range issues {
		params[i] = db.InsertImportIssuesParams{
			BatchID:         id,
			SourceRowNumber: int32(is.SourceRow),
			IssueCode:       string(is.Code),
			IssueDetail:     is.Detail,
		}
	}

	if _, err := p.q.InsertImportIssues(ctx, params); err != nil {
		return fmt.Errorf("copy issues: %w", err)
	}
	return nil
}

// ListBatches returns a page of batches, newest first, and the total count.
func (p *Postgres) ListBatches(ctx context.Context, limit, offset int) ([]core.ImportBatch, int, error) {
	total, err := p.q.CountImportBatches(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count batches: %w", err)
	}

	rows, err := p.q.ListImportBatches(ctx, db.ListImportBatchesParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list batches: %w", err)
	}

	batches := make([]core.ImportBatch, len(rows))
	for i, r := range rows {
		batches[i] = batchFromRow(r)
	}
	return batches, int(total), nil
}

// GetBatch returns one batch or core.ErrBatchNotFound.
func (p *Postgres) GetBatch(ctx context.Context, id string) (*core.ImportBatch, error) {
	row, err := p.q.GetImportBatch(ctx, core.ToPgUUID(id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrBatchNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}

	b := batchFromRow(row)
	return &b, nil
}

// ListBatchIssues returns the issues of one batch ordered by source row.
func (p *Postgres) ListBatchIssues(ctx context.Context, id string) ([]core.RowIssue, error) {
	rows, err := p.q.ListImportIssues(ctx, core.ToPgUUID(id))
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}

	issues := make([]core.RowIssue, len(rows))
	for i, r := range rows {
		issues[i] = core.RowIssue{
			SourceRow: int(r.SourceRowNumber),
			Code:      core.IssueCode(r.IssueCode),
			Detail:    r.IssueDetail,
		}
	}
	return issues, nil
}

// PurgeRawRows deletes up to limit staging rows created before olderThan.
func (p *Postgres) PurgeRawRows(ctx context.Context, olderThan time.Time, limit int) (int64, error) {
	n, err := p.q.PurgeImportRawRows(ctx, db.PurgeImportRawRowsParams{
		CreatedAt: toTimestamptz(olderThan),
		Limit:     int32(limit),
	})
	if err != nil {
		return 0, fmt.Errorf("purge raw rows: %w", err)
	}
	return n, nil
}

func batchFromRow(r db.ImportBatch) core.ImportBatch {
	return core.ImportBatch{
		ID:             core.PgUUIDToString(r.ID),
		SourceFilename: r.SourceFilename,
		SourceFileHash: r.SourceFileHash,
		MappingVersion: r.MappingVersion,
		Status:         core.BatchStatus(r.Status),
		TotalRows:      int(r.TotalRows),
		RowsCreated:    int(r.RowsCreated),
		RowsUpdated:    int(r.RowsUpdated),
		RowsSkipped:    int(r.RowsSkipped),
		RowsErrored:    int(r.RowsErrored),
		RequestedByIP:  r.RequestedByIp.String,
		ProcessedAt:    r.ProcessedAt.Time,
	}
}

func toTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		t = time.Now()
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}
