package core

// service.go sequences an import run:
//
//	read file -> load rules, category ids, existing SKUs -> validate
//	-> upsert -> reconcile -> archive source -> record staging
//
// Structural failures (unreadable file, rule or catalog lookups failing
// before any write) abort the run with a single error. Everything after
// the first product write is best effort: row failures become issues and
// an audit failure only marks the summary as degraded.

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/google/uuid"
)

var (
	// ErrRulesUnavailable wraps failures loading mapping rules.
	ErrRulesUnavailable = errors.New("mapping rules unavailable")

	// ErrCatalogUnavailable wraps failures reading the catalog before any write.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrReconciliation means the final counts did not add up to the row total.
	ErrReconciliation = errors.New("reconciliation failed")

	// ErrBatchNotFound is returned by history lookups for unknown batch ids.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrNoFile is returned when a request carries no file.
	ErrNoFile = errors.New("no file provided")
)

// Options holds the tunables of the import pipeline.
type Options struct {
	// ChunkSize bounds product rows per insert round trip.
	ChunkSize int

	// RawChunkSize bounds staging rows per insert.
	RawChunkSize int

	// MappingVersion selects the active rule set.
	MappingVersion string

	// UpdateExisting sends rows with known SKUs to the update path
	// instead of skipping them as DUPLICATE_SKU.
	UpdateExisting bool

	// Read controls file size, type and encoding handling.
	Read ReadOptions

	// MaxConcurrent and AcquireTimeout configure the import limiter.
	MaxConcurrent  int
	AcquireTimeout time.Duration
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ChunkSize:      DefaultChunkSize,
		RawChunkSize:   DefaultRawChunkSize,
		MappingVersion: "v1",
		Read: ReadOptions{
			MaxFileSize:       10 << 20,
			AllowedExtensions: []string{".csv", ".xlsx"},
			FallbackCharset:   "windows-1252",
		},
		MaxConcurrent:  DefaultMaxConcurrentImports,
		AcquireTimeout: DefaultMaxWaitTime,
	}
}

// Service runs imports and serves their history.
type Service struct {
	catalog  CatalogStore
	rules    RuleSource
	recorder *StagingRecorder
	history  BatchReader
	purger   StagingPurger
	archiver SourceArchiver
	metrics  Recorder
	inserter InsertStrategy

	opts    Options
	limiter *ImportLimiter
	now     func() time.Time
	newID   func() string
}

// Option configures optional collaborators of a Service.
type Option func(*Service)

// WithRuleSource loads rules from src instead of the catalog store.
func WithRuleSource(src RuleSource) Option {
	return func(s *Service) { s.rules = src }
}

// WithArchiver stores every imported source file through a.
func WithArchiver(a SourceArchiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithRecorder reports pipeline measurements to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// WithInserter replaces the default batch-then-row insert strategy.
func WithInserter(i InsertStrategy) Option {
	return func(s *Service) { s.inserter = i }
}

// NewService creates a Service. If audit also implements BatchReader or
// StagingPurger, history and retention are enabled.
func NewService(catalog CatalogStore, audit AuditStore, opts Options, options ...Option) *Service {
	def := DefaultOptions()
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	if opts.RawChunkSize <= 0 {
		opts.RawChunkSize = def.RawChunkSize
	}
	if opts.MappingVersion == "" {
		opts.MappingVersion = def.MappingVersion
	}

	s := &Service{
		catalog:  catalog,
		rules:    catalog,
		recorder: NewStagingRecorder(audit, opts.RawChunkSize),
		opts:     opts,
		limiter:  NewImportLimiter(opts.MaxConcurrent, opts.AcquireTimeout),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	if r, ok := audit.(BatchReader); ok {
		s.history = r
	}
	if p, ok := audit.(StagingPurger); ok {
		s.purger = p
	}

	for _, o := range options {
		o(s)
	}
	return s
}

// Options returns the effective pipeline options.
func (s *Service) Options() Options {
	return s.opts
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// prepared is the validated state of a file before any write.
type prepared struct {
	version string
	parsed  ParseResult
	checked ValidationResult
}

// prepare reads the file and validates it against the catalog. It performs
// no writes, so any error here leaves the catalog untouched.
func (s *Service) prepare(ctx context.Context, req ImportRequest, updateExisting bool) (*prepared, error) {
	if req.FileName == "" && len(req.Data) == 0 {
		return nil, ErrNoFile
	}

	version := req.MappingVersion
	if version == "" {
		version = s.opts.MappingVersion
	}

	start := s.now()
	parsed, err := ParseSource(req.FileName, req.Data, s.opts.Read)
	if err != nil {
		return nil, err
	}
	s.observeStage("parse", start)

	start = s.now()
	rules, err := s.loadRules(ctx, version)
	if err != nil {
		return nil, err
	}

	categoryIDs, err := s.catalog.CategoryIDsByName(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load categories: %v", ErrCatalogUnavailable, err)
	}

	existing := map[string]struct{}{}
	if !updateExisting {
		existing, err = s.catalog.ExistingSKUs(ctx, rowSKUs(parsed.Rows))
		if err != nil {
			return nil, fmt.Errorf("%w: load existing SKUs: %v", ErrCatalogUnavailable, err)
		}
	}
	s.observeStage("load", start)

	checked := ValidateRows(ValidationInput{
		Rows:         parsed.Rows,
		ParseIssues:  parsed.Issues,
		Rules:        rules,
		ExistingSKUs: existing,
		CategoryIDs:  categoryIDs,
	})

	return &prepared{version: version, parsed: parsed, checked: checked}, nil
}

func (s *Service) loadRules(ctx context.Context, version string) ([]MappingRule, error) {
	rules, err := s.rules.ActiveMappingRules(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q: %v", ErrRulesUnavailable, version, err)
	}
	rules = NormalizeRules(rules)

	for _, r := range rules {
		if band := RuleBand(r); band != r.Priority {
			slog.Warn("mapping rule outside its priority band",
				"mapping_version", version,
				"departamento_raw", r.Department,
				"categoria_raw", r.Category,
				"priority", r.Priority,
				"expected", band,
			)
		}
	}
	if len(rules) == 0 {
		slog.Warn("no active mapping rules", "mapping_version", version)
	}
	return rules, nil
}

// Preview validates a file without writing anything.
func (s *Service) Preview(ctx context.Context, req ImportRequest) (*PreviewResult, error) {
	updateExisting := s.opts.UpdateExisting
	if req.UpdateExisting != nil {
		updateExisting = *req.UpdateExisting
	}

	p, err := s.prepare(ctx, req, updateExisting)
	if err != nil {
		return nil, err
	}

	skipped, errored := CountIssues(p.checked.Issues)
	return &PreviewResult{
		FileName:       req.FileName,
		MappingVersion: p.version,
		TotalRows:      p.parsed.TotalRows(),
		MissingColumns: p.parsed.MissingColumns,
		Rows:           p.checked.Rows,
		Issues:         p.checked.Issues,
		Skipped:        skipped,
		Errored:        errored,
	}, nil
}

// Import runs the full pipeline for one file.
//
// On ErrReconciliation the summary is still returned, and recorded, so the
// run can be diagnosed.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*ImportSummary, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	start := s.now()
	updateExisting := s.opts.UpdateExisting
	if req.UpdateExisting != nil {
		updateExisting = *req.UpdateExisting
	}

	p, err := s.prepare(ctx, req, updateExisting)
	if err != nil {
		logging.FromContext(ctx).Warn("import rejected", "file", req.FileName, "error", err)
		return nil, err
	}

	// Past this point products get written. A client disconnect or request
	// timeout must not leave written rows without their batch record.
	ctx = context.WithoutCancel(ctx)

	batchID := s.newID()
	log := logging.WithFields(ctx,
		"batch_id", batchID,
		"file", req.FileName,
		"mapping_version", p.version,
	)
	log.Info("import started",
		"total_rows", p.parsed.TotalRows(),
		"valid_rows", len(p.checked.Rows),
		"validation_issues", len(p.checked.Issues),
	)

	upsertStart := s.now()
	upsertOpts := []UpsertOption{WithUpsertLogger(log)}
	if s.inserter != nil {
		upsertOpts = append(upsertOpts, WithInsertStrategy(s.inserter))
	}
	engine := NewUpsertEngine(s.catalog, s.opts.ChunkSize, upsertOpts...)
	engine.now = s.now
	up, err := engine.Upsert(ctx, p.checked.Rows)
	if err != nil {
		log.Error("import aborted before writes", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	s.observeStage("upsert", upsertStart)

	issues := make([]RowIssue, 0, len(p.checked.Issues)+len(up.Issues))
	issues = append(issues, p.checked.Issues...)
	issues = append(issues, up.Issues...)
	skipped, errored := CountIssues(issues)

	hash := sha256.Sum256(req.Data)
	summary := &ImportSummary{
		BatchID:        batchID,
		FileName:       req.FileName,
		FileHash:       hex.EncodeToString(hash[:]),
		MappingVersion: p.version,
		Status:         BatchCompleted,
		TotalRows:      p.parsed.TotalRows(),
		Created:        up.Created,
		Updated:        up.Updated,
		Skipped:        skipped,
		Errored:        errored,
		Issues:         issues,
	}
	if errored > 0 {
		summary.Status = BatchCompletedWithErrors
	}

	batch := ImportBatch{
		ID:             batchID,
		SourceFilename: summary.FileName,
		SourceFileHash: summary.FileHash,
		MappingVersion: summary.MappingVersion,
		Status:         summary.Status,
		TotalRows:      summary.TotalRows,
		RowsCreated:    summary.Created,
		RowsUpdated:    summary.Updated,
		RowsSkipped:    summary.Skipped,
		RowsErrored:    summary.Errored,
		RequestedByIP:  GetIPAddressFromContext(ctx),
		ProcessedAt:    s.now(),
	}

	var reconcileErr error
	if !batch.Reconciles() {
		reconcileErr = fmt.Errorf("%w: created=%d updated=%d skipped=%d errored=%d total=%d",
			ErrReconciliation, batch.RowsCreated, batch.RowsUpdated, batch.RowsSkipped, batch.RowsErrored, batch.TotalRows)
		log.Error("import counts do not reconcile", "error", reconcileErr)
	}

	if s.archiver != nil {
		key, err := s.archiver.Archive(ctx, req.FileName, summary.FileHash, req.Data)
		if err != nil {
			log.Warn("source archive failed", "error", err)
		}
		summary.ArchiveKey = key
	}

	stagingStart := s.now()
	if err := s.recorder.Record(ctx, batch, p.parsed.Raw, issues); err != nil {
		summary.AuditDegraded = true
		log.Error("staging record failed; products were still written", "error", err)
	}
	s.observeStage("staging", stagingStart)

	summary.Duration = s.now().Sub(start)
	s.observeSummary(summary)

	log.Info("import completed",
		"status", summary.Status,
		"total_rows", summary.TotalRows,
		"created", summary.Created,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"errored", summary.Errored,
		"audit_degraded", summary.AuditDegraded,
		"duration_ms", summary.Duration.Milliseconds(),
	)

	return summary, reconcileErr
}

func (s *Service) observeStage(stage string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStageDuration(stage, s.now().Sub(start))
	}
}

func (s *Service) observeSummary(summary *ImportSummary) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveImport(summary)
	for _, is := range summary.Issues {
		s.metrics.ObserveIssue(is.Code)
	}
}

// rowSKUs returns the distinct non-null SKUs of parsed rows.
func rowSKUs(rows []NormalizedRow) []string {
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if !r.SKU.Valid {
			continue
		}
		if _, ok := seen[r.SKU.String]; ok {
			continue
		}
		seen[r.SKU.String] = struct{}{}
		out = append(out, r.SKU.String)
	}
	return out
}
