package core

import (
	"context"
	"errors"
	"testing"
)

func rawRows(n int) []RawRow {
	rows := make([]RawRow, n)
	for i := range rows {
		rows[i] = RawRow{SourceRow: i + 2, Name: "Vela"}
	}
	return rows
}

func TestStagingRecorder_Record(t *testing.T) {
	audit := newFakeAudit()
	rec := NewStagingRecorder(audit, 200)

	batch := ImportBatch{ID: "b-1", TotalRows: 450}
	issues := []RowIssue{{SourceRow: 3, Code: IssueInvalidPrice}}

	if err := rec.Record(context.Background(), batch, rawRows(450), issues); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if len(audit.batches) != 1 || audit.batches[0].ID != "b-1" {
		t.Errorf("batches = %+v, want one b-1", audit.batches)
	}
	if got := len(audit.raw["b-1"]); got != 450 {
		t.Errorf("raw rows = %d, want 450", got)
	}
	if audit.rawCalls != 3 {
		t.Errorf("rawCalls = %d, want 3 chunks", audit.rawCalls)
	}
	if got := len(audit.issues["b-1"]); got != 1 {
		t.Errorf("issues = %d, want 1", got)
	}
}

func TestStagingRecorder_BatchFailureStops(t *testing.T) {
	audit := newFakeAudit()
	audit.failBatch = errors.New("connection refused")

	err := NewStagingRecorder(audit, 0).Record(context.Background(), ImportBatch{ID: "b-1"}, rawRows(5), nil)
	if !errors.Is(err, audit.failBatch) {
		t.Errorf("Record() error = %v, want wrapped batch error", err)
	}
	if audit.rawCalls != 0 {
		t.Errorf("rawCalls = %d, want 0 after batch failure", audit.rawCalls)
	}
}

func TestStagingRecorder_RawFailureContinues(t *testing.T) {
	audit := newFakeAudit()
	audit.failRaw = errors.New("disk full")
	issues := []RowIssue{{SourceRow: 2, Code: IssueMissingField}}

	err := NewStagingRecorder(audit, 2).Record(context.Background(), ImportBatch{ID: "b-1"}, rawRows(5), issues)
	if !errors.Is(err, audit.failRaw) {
		t.Errorf("Record() error = %v, want joined raw error", err)
	}
	if audit.rawCalls != 3 {
		t.Errorf("rawCalls = %d, want every chunk attempted", audit.rawCalls)
	}
	if len(audit.issues["b-1"]) != 1 {
		t.Error("issues should still be written after raw row failures")
	}
}
