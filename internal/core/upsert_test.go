package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func rowsOf(n int) []ValidatedRow {
	rows := make([]ValidatedRow, n)
	for i := range rows {
		rows[i] = validRow(i+2, fmt.Sprintf("Producto %d", i+1), fmt.Sprintf("SKU-%03d", i+1))
	}
	return rows
}

func TestUpsert_AllNew(t *testing.T) {
	store := newFakeCatalog()
	engine := NewUpsertEngine(store, 50)

	got, err := engine.Upsert(context.Background(), rowsOf(3))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if got.Created != 3 || got.Updated != 0 || len(got.Issues) != 0 {
		t.Errorf("Upsert() = %+v, want 3 created", got)
	}
	if store.batchCalls != 1 {
		t.Errorf("batchCalls = %d, want 1", store.batchCalls)
	}
	if store.inserted[0].Slug != "producto-1" {
		t.Errorf("Slug = %q, want producto-1", store.inserted[0].Slug)
	}
	if !store.inserted[0].IsVisible {
		t.Error("inserted product should be visible")
	}
}

func TestUpsert_BatchFailureFallsBackToRows(t *testing.T) {
	store := newFakeCatalog()
	store.failRows[11] = errors.New("value too long for type character varying(64)")
	engine := NewUpsertEngine(store, 50)

	got, err := engine.Upsert(context.Background(), rowsOf(50))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if got.Created != 49 {
		t.Errorf("Created = %d, want 49", got.Created)
	}
	if len(got.Issues) != 1 {
		t.Fatalf("len(Issues) = %d, want 1", len(got.Issues))
	}
	is := got.Issues[0]
	if is.Code != IssueDBInsert || is.SourceRow != 11 {
		t.Errorf("issue = %+v, want DB_INSERT_ERROR on row 11", is)
	}
	if !strings.HasPrefix(is.Detail, "Error al insertar producto: ") {
		t.Errorf("Detail = %q", is.Detail)
	}
	if store.rowCalls != 50 {
		t.Errorf("rowCalls = %d, want 50", store.rowCalls)
	}
}

func TestUpsert_Chunking(t *testing.T) {
	store := newFakeCatalog()
	engine := NewUpsertEngine(store, 50)

	got, err := engine.Upsert(context.Background(), rowsOf(120))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if got.Created != 120 {
		t.Errorf("Created = %d, want 120", got.Created)
	}
	if store.batchCalls != 3 {
		t.Errorf("batchCalls = %d, want 3", store.batchCalls)
	}
}

func TestUpsert_FailureIsolatedToChunk(t *testing.T) {
	store := newFakeCatalog()
	store.failRows[5] = errors.New("boom")
	engine := NewUpsertEngine(store, 10)

	got, err := engine.Upsert(context.Background(), rowsOf(30))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if got.Created != 29 {
		t.Errorf("Created = %d, want 29", got.Created)
	}
	if store.rowCalls != 10 {
		t.Errorf("rowCalls = %d, want 10 (only the failing chunk)", store.rowCalls)
	}
}

func TestUpsert_UpdatesExisting(t *testing.T) {
	store := newFakeCatalog()
	store.seedProduct("prod-existing", "SKU-001", "vela-original")
	store.seedProduct("prod-broken", "SKU-002", "vela-rota")
	store.failUpdates["SKU-002"] = errors.New("deadlock detected")
	engine := NewUpsertEngine(store, 50)

	got, err := engine.Upsert(context.Background(), rowsOf(3))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if got.Updated != 1 || got.Created != 1 {
		t.Errorf("Updated/Created = %d/%d, want 1/1", got.Updated, got.Created)
	}
	if len(got.Issues) != 1 || got.Issues[0].Code != IssueDBUpdate {
		t.Fatalf("Issues = %+v, want one DB_UPDATE_ERROR", got.Issues)
	}
	if want := `Error al actualizar producto con SKU "SKU-002": deadlock detected`; got.Issues[0].Detail != want {
		t.Errorf("Detail = %q, want %q", got.Issues[0].Detail, want)
	}

	rec, ok := store.updated["prod-existing"]
	if !ok {
		t.Fatal("existing product was not updated")
	}
	if rec.Slug != "vela-original" {
		t.Errorf("updated Slug = %q, want the existing slug", rec.Slug)
	}
}

func TestUpsert_SameNameGetsDistinctSlugs(t *testing.T) {
	store := newFakeCatalog()
	rows := []ValidatedRow{
		validRow(2, "Vela", "V-1"),
		validRow(3, "Vela", "V-2"),
		validRow(4, "Vela", "V-3"),
	}

	if _, err := NewUpsertEngine(store, 50).Upsert(context.Background(), rows); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	want := []string{"vela", "vela-2", "vela-3"}
	for i, w := range want {
		if store.inserted[i].Slug != w {
			t.Errorf("inserted[%d].Slug = %q, want %q", i, store.inserted[i].Slug, w)
		}
	}
}

func TestUpsert_SlugErrorBecomesInsertIssue(t *testing.T) {
	store := newFakeCatalog()
	store.slugErr = errors.New("connection reset by peer")

	got, err := NewUpsertEngine(store, 50).Upsert(context.Background(), rowsOf(2))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if got.Created != 0 || len(got.Issues) != 2 {
		t.Errorf("Upsert() = %+v, want 2 DB_INSERT_ERROR issues", got)
	}
	if store.batchCalls != 0 {
		t.Errorf("batchCalls = %d, want 0", store.batchCalls)
	}
}

func TestUpsert_LookupFailureWritesNothing(t *testing.T) {
	store := newFakeCatalog()
	store.lookupErr = errors.New("connection refused")

	_, err := NewUpsertEngine(store, 50).Upsert(context.Background(), rowsOf(5))
	if !errors.Is(err, store.lookupErr) {
		t.Errorf("Upsert() error = %v, want wrapped lookup error", err)
	}
	if len(store.inserted) != 0 {
		t.Errorf("inserted %d products after failed lookup", len(store.inserted))
	}
}

func TestUpsert_Empty(t *testing.T) {
	got, err := NewUpsertEngine(newFakeCatalog(), 0).Upsert(context.Background(), nil)
	if err != nil {
		t.Fatalf("Upsert(nil) error = %v", err)
	}
	if got.Created != 0 || len(got.Issues) != 0 {
		t.Errorf("Upsert(nil) = %+v, want zero result", got)
	}
}
