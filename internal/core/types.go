// Package core provides the business logic for catalog product imports.
// This package has no transport dependencies and can be used by any frontend.
package core

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// IssueCode classifies why a row did not make it into the catalog.
type IssueCode string

const (
	IssueMissingField     IssueCode = "MISSING_FIELD"
	IssueInvalidPrice     IssueCode = "INVALID_PRICE"
	IssueDuplicateSKU     IssueCode = "DUPLICATE_SKU"
	IssueUnmappedCategory IssueCode = "UNMAPPED_CATEGORY"
	IssueDBInsert         IssueCode = "DB_INSERT_ERROR"
	IssueDBUpdate         IssueCode = "DB_UPDATE_ERROR"
)

// IsSkip reports whether the code counts as a functional skip rather than an error.
func (c IssueCode) IsSkip() bool {
	return c == IssueDuplicateSKU
}

// RowIssue is an append-only fact about one source row.
type RowIssue struct {
	SourceRow int       `json:"source_row"`
	Code      IssueCode `json:"code"`
	Detail    string    `json:"detail"`
}

// RawRow is one data line as read from the file, before any coercion.
type RawRow struct {
	SourceRow   int
	Name        string
	Description string
	Price       string
	Department  string
	Category    string
	SKU         string
	Barcode     string
	TaxCode     string
	Available   string
	Featured    string
	Seasonal    string
}

// Payload returns the original field values keyed by canonical column name.
func (r RawRow) Payload() map[string]string {
	return map[string]string{
		ColName:        r.Name,
		ColDescription: r.Description,
		ColPrice:       r.Price,
		ColDepartment:  r.Department,
		ColCategory:    r.Category,
		ColSKU:         r.SKU,
		ColBarcode:     r.Barcode,
		ColTaxCode:     r.TaxCode,
		ColAvailable:   r.Available,
		ColFeatured:    r.Featured,
		ColSeasonal:    r.Seasonal,
	}
}

// NormalizedRow is a RawRow after type coercion.
// Department and Category hold accent-stripped lowercase keys.
type NormalizedRow struct {
	SourceRow   int         `json:"source_row"`
	Name        string      `json:"name"`
	Description pgtype.Text `json:"description"`
	Price       float64     `json:"price"`
	Department  string      `json:"departamento"`
	Category    string      `json:"categoria"`
	SKU         pgtype.Text `json:"sku"`
	Barcode     pgtype.Text `json:"barcode"`
	TaxCode     pgtype.Text `json:"sat_code"`
	IsAvailable bool        `json:"is_available"`
	IsFeatured  bool        `json:"is_featured"`
	IsSeasonal  bool        `json:"is_seasonal"`
}

// ValidatedRow is a NormalizedRow whose category resolved to a catalog id.
// Only the validator constructs these.
type ValidatedRow struct {
	NormalizedRow
	CuratedCategory string `json:"curated_category"`
	CategoryID      string `json:"category_id"`
}

// ParseResult is the output of reading one source file.
type ParseResult struct {
	Rows   []NormalizedRow
	Issues []RowIssue
	Raw    []RawRow

	// MissingColumns lists required columns absent from the header.
	// Every row will then fail with MISSING_FIELD.
	MissingColumns []string
}

// TotalRows is the number of data rows seen, accepted or not.
func (p ParseResult) TotalRows() int {
	return len(p.Rows) + len(p.Issues)
}

// MappingRule maps a raw department/category pair to a curated category.
type MappingRule struct {
	Department      string `json:"departamento_raw"`
	Category        string `json:"categoria_raw"`
	CuratedCategory string `json:"curated_category"`
	Priority        int    `json:"priority"`
}

// ProductRecord is the column set written to the catalog for one row.
type ProductRecord struct {
	SourceRow   int
	Name        string
	Slug        string
	Description pgtype.Text
	Price       float64
	CategoryID  string
	SKU         pgtype.Text
	Barcode     pgtype.Text
	TaxCode     pgtype.Text
	IsAvailable bool
	IsFeatured  bool
	IsSeasonal  bool
	IsVisible   bool
	UpdatedAt   time.Time
}

// ExistingProduct is the subset of a catalog product needed to update it.
type ExistingProduct struct {
	ID       string
	SKU      string
	Slug     string
	ImageURL pgtype.Text
}

// BatchStatus is the final state recorded for an import run.
type BatchStatus string

const (
	BatchCompleted           BatchStatus = "completed"
	BatchCompletedWithErrors BatchStatus = "completed_with_errors"
)

// ImportBatch is the write-once summary record of one import run.
type ImportBatch struct {
	ID             string      `json:"id"`
	SourceFilename string      `json:"source_filename"`
	SourceFileHash string      `json:"source_file_hash"`
	MappingVersion string      `json:"mapping_version"`
	Status         BatchStatus `json:"status"`
	TotalRows      int         `json:"total_rows"`
	RowsCreated    int         `json:"rows_created"`
	RowsUpdated    int         `json:"rows_updated"`
	RowsSkipped    int         `json:"rows_skipped"`
	RowsErrored    int         `json:"rows_errored"`
	RequestedByIP  string      `json:"requested_by_ip,omitempty"`
	ProcessedAt    time.Time   `json:"processed_at"`
}

// Reconciles reports whether the row counts add up to the total.
func (b ImportBatch) Reconciles() bool {
	return b.RowsCreated+b.RowsUpdated+b.RowsSkipped+b.RowsErrored == b.TotalRows
}

// ImportRequest describes one file handed to the service.
type ImportRequest struct {
	FileName string
	Data     []byte

	// UpdateExisting routes rows with known SKUs to the update path
	// instead of skipping them. Nil uses the configured default.
	UpdateExisting *bool

	// MappingVersion overrides the configured rule-set version when set.
	MappingVersion string
}

// ImportSummary is returned to the caller after a run.
type ImportSummary struct {
	BatchID        string        `json:"batch_id"`
	FileName       string        `json:"file_name"`
	FileHash       string        `json:"file_hash"`
	MappingVersion string        `json:"mapping_version"`
	Status         BatchStatus   `json:"status"`
	TotalRows      int           `json:"total_rows"`
	Created        int           `json:"created"`
	Updated        int           `json:"updated"`
	Skipped        int           `json:"skipped"`
	Errored        int           `json:"errored"`
	Issues         []RowIssue    `json:"issues"`
	AuditDegraded  bool          `json:"audit_degraded,omitempty"`
	ArchiveKey     string        `json:"archive_key,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// PreviewResult is the dry-run view of a file: what would be written and why
// the rest would not.
type PreviewResult struct {
	FileName       string         `json:"file_name"`
	MappingVersion string         `json:"mapping_version"`
	TotalRows      int            `json:"total_rows"`
	MissingColumns []string       `json:"missing_columns,omitempty"`
	Rows           []ValidatedRow `json:"rows"`
	Issues         []RowIssue     `json:"issues"`
	Skipped        int            `json:"skipped"`
	Errored        int            `json:"errored"`
}
