package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// fakeCatalog is an in-memory CatalogStore with slug and SKU uniqueness.
type fakeCatalog struct {
	mu sync.Mutex

	rules      []MappingRule
	categories map[string]string
	products   map[string]ExistingProduct // by SKU
	slugs      map[string]bool
	inserted   []ProductRecord
	updated    map[string]ProductRecord // by product id
	seq        int

	batchCalls    int
	rowCalls      int
	slugChecks    int
	rulesErr      error
	categoriesErr error
	existingErr   error
	lookupErr     error
	slugErr       error
	failRows      map[int]error    // InsertProduct failures by source row
	failUpdates   map[string]error // UpdateProduct failures by SKU
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		categories:  map[string]string{},
		products:    map[string]ExistingProduct{},
		slugs:       map[string]bool{},
		updated:     map[string]ProductRecord{},
		failRows:    map[int]error{},
		failUpdates: map[string]error{},
	}
}

func (f *fakeCatalog) ActiveMappingRules(_ context.Context, _ string) ([]MappingRule, error) {
	if f.rulesErr != nil {
		return nil, f.rulesErr
	}
	return f.rules, nil
}

func (f *fakeCatalog) CategoryIDsByName(_ context.Context) (map[string]string, error) {
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return f.categories, nil
}

func (f *fakeCatalog) ExistingSKUs(_ context.Context, skus []string) (map[string]struct{}, error) {
	if f.existingErr != nil {
		return nil, f.existingErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]struct{}{}
	for _, s := range skus {
		if _, ok := f.products[s]; ok {
			out[s] = struct{}{}
		}
	}
	return out, nil
}

func (f *fakeCatalog) ProductsBySKU(_ context.Context, skus []string) (map[string]ExistingProduct, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]ExistingProduct{}
	for _, s := range skus {
		if p, ok := f.products[s]; ok {
			out[s] = p
		}
	}
	return out, nil
}

func (f *fakeCatalog) SlugExists(_ context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slugChecks++
	if f.slugErr != nil {
		return false, f.slugErr
	}
	return f.slugs[slug], nil
}

func (f *fakeCatalog) InsertProducts(_ context.Context, recs []ProductRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	for _, r := range recs {
		if err := f.checkInsert(r); err != nil {
			return err
		}
	}
	for _, r := range recs {
		f.commit(r)
	}
	return nil
}

func (f *fakeCatalog) InsertProduct(_ context.Context, rec ProductRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rowCalls++
	if err := f.checkInsert(rec); err != nil {
		return err
	}
	f.commit(rec)
	return nil
}

func (f *fakeCatalog) UpdateProduct(_ context.Context, id string, rec ProductRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failUpdates[rec.SKU.String]; err != nil {
		return err
	}
	f.updated[id] = rec
	return nil
}

func (f *fakeCatalog) checkInsert(r ProductRecord) error {
	if err := f.failRows[r.SourceRow]; err != nil {
		return err
	}
	if f.slugs[r.Slug] {
		return fmt.Errorf(`duplicate key value violates unique constraint "products_slug_key"`)
	}
	if r.SKU.Valid {
		if _, ok := f.products[r.SKU.String]; ok {
			return fmt.Errorf(`duplicate key value violates unique constraint "products_sku_key"`)
		}
	}
	return nil
}

func (f *fakeCatalog) commit(r ProductRecord) {
	f.seq++
	id := fmt.Sprintf("prod-%d", f.seq)
	f.slugs[r.Slug] = true
	if r.SKU.Valid {
		f.products[r.SKU.String] = ExistingProduct{ID: id, SKU: r.SKU.String, Slug: r.Slug}
	}
	f.inserted = append(f.inserted, r)
}

// seedProduct adds an existing product to the catalog.
func (f *fakeCatalog) seedProduct(id, sku, slug string) {
	f.products[sku] = ExistingProduct{ID: id, SKU: sku, Slug: slug}
	f.slugs[slug] = true
}

// fakeAudit is an in-memory AuditStore, BatchReader and StagingPurger.
type fakeAudit struct {
	mu sync.Mutex

	batches []ImportBatch
	raw     map[string][]RawRow
	issues  map[string][]RowIssue

	rawCalls   int
	failBatch  error
	failRaw    error
	failIssues error

	purgeResults []int64
	purgeCalls   int
	purgeCutoff  time.Time
}

func newFakeAudit() *fakeAudit {
	return &fakeAudit{
		raw:    map[string][]RawRow{},
		issues: map[string][]RowIssue{},
	}
}

func (f *fakeAudit) InsertBatch(_ context.Context, b ImportBatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failBatch != nil {
		return f.failBatch
	}
	f.batches = append(f.batches, b)
	return nil
}

func (f *fakeAudit) InsertRawRows(_ context.Context, batchID string, rows []RawRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rawCalls++
	if f.failRaw != nil {
		return f.failRaw
	}
	f.raw[batchID] = append(f.raw[batchID], rows...)
	return nil
}

func (f *fakeAudit) InsertIssues(_ context.Context, batchID string, issues []RowIssue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIssues != nil {
		return f.failIssues
	}
	f.issues[batchID] = append(f.issues[batchID], issues...)
	return nil
}

func (f *fakeAudit) ListBatches(_ context.Context, limit, offset int) ([]ImportBatch, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sorted := append([]ImportBatch(nil), f.batches...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ProcessedAt.After(sorted[j].ProcessedAt)
	})
	if offset >= len(sorted) {
		return nil, len(sorted), nil
	}
	end := min(offset+limit, len(sorted))
	return sorted[offset:end], len(sorted), nil
}

func (f *fakeAudit) GetBatch(_ context.Context, id string) (*ImportBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.batches {
		if b.ID == id {
			b := b
			return &b, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, id)
}

func (f *fakeAudit) ListBatchIssues(_ context.Context, id string) ([]RowIssue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]RowIssue(nil), f.issues[id]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SourceRow < out[j].SourceRow })
	return out, nil
}

func (f *fakeAudit) PurgeRawRows(_ context.Context, olderThan time.Time, _ int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purgeCutoff = olderThan
	if f.purgeCalls >= len(f.purgeResults) {
		f.purgeCalls++
		return 0, nil
	}
	n := f.purgeResults[f.purgeCalls]
	f.purgeCalls++
	if n < 0 {
		return 0, errors.New("purge failed")
	}
	return n, nil
}

// auditOnly hides the optional interfaces of fakeAudit.
type auditOnly struct{ AuditStore }

// fakeRecorder captures Recorder calls.
type fakeRecorder struct {
	mu        sync.Mutex
	summaries []*ImportSummary
	issues    map[IssueCode]int
	stages    map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{issues: map[IssueCode]int{}, stages: map[string]int{}}
}

func (r *fakeRecorder) ObserveImport(s *ImportSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, s)
}

func (r *fakeRecorder) ObserveIssue(code IssueCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issues[code]++
}

func (r *fakeRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages[stage]++
}

// fakeArchiver records archived files.
type fakeArchiver struct {
	calls []string
	err   error
}

func (a *fakeArchiver) Archive(_ context.Context, fileName, hash string, _ []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	key := "imports/" + hash + "/" + fileName
	a.calls = append(a.calls, key)
	return key, nil
}

// validRow builds a ValidatedRow for upsert tests.
func validRow(sourceRow int, name, sku string) ValidatedRow {
	return ValidatedRow{
		NormalizedRow: NormalizedRow{
			SourceRow:   sourceRow,
			Name:        name,
			Price:       10,
			Department:  "decoracion",
			Category:    "velas",
			SKU:         ToPgText(sku),
			IsAvailable: true,
		},
		CuratedCategory: "Velas",
		CategoryID:      "cat-velas",
	}
}
