package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "rules unavailable", err: fmt.Errorf("%w: version %q: boom", ErrRulesUnavailable, "v1"), wantCode: "IMP001"},
		{name: "import busy", err: ErrImportBusy, wantCode: "IMP002"},
		{name: "reconciliation", err: fmt.Errorf("%w: created=1", ErrReconciliation), wantCode: "IMP003"},
		{name: "batch not found", err: ErrBatchNotFound, wantCode: "IMP004"},
		{name: "catalog unavailable", err: fmt.Errorf("%w: load categories", ErrCatalogUnavailable), wantCode: "IMP005"},
		{name: "file too large", err: fmt.Errorf("%w: 12MB exceeds 10MB", ErrFileTooLarge), wantCode: "FILE001"},
		{name: "unsupported file type", err: fmt.Errorf("%w: .pdf", ErrUnsupportedFileType), wantCode: "FILE002"},
		{name: "encoding error", err: ErrInvalidEncoding, wantCode: "FILE003"},
		{name: "no file", err: ErrNoFile, wantCode: "FILE004"},
		{name: "empty file", err: ErrEmptyFile, wantCode: "FILE005"},
		{name: "invalid workbook", err: fmt.Errorf("%w: zip: not a valid zip file", ErrInvalidWorkbook), wantCode: "FILE006"},
		{name: "duplicate key", err: errors.New(`ERROR: duplicate key value violates unique constraint "products_slug_key"`), wantCode: "DB001"},
		{name: "foreign key", err: errors.New("violates foreign key constraint"), wantCode: "DB002"},
		{name: "connection refused", err: errors.New("dial tcp 127.0.0.1:5432: connection refused"), wantCode: "DB003"},
		{name: "deadline before generic timeout", err: errors.New("context deadline exceeded (timeout)"), wantCode: "REQ002"},
		{name: "generic timeout", err: errors.New("i/o timeout"), wantCode: "DB005"},
		{name: "rate limit", err: errors.New("rate limit exceeded"), wantCode: "RATE001"},
		{name: "unknown error returns default", err: errors.New("some random internal error"), wantCode: "ERR000"},
		{name: "case insensitive matching", err: errors.New("DUPLICATE KEY value violates"), wantCode: "DB001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Error("MapError() message is empty")
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrEmptyFile)

	expected := "El archivo está vacío (Código: FILE005). Sube un archivo con encabezado y al menos una fila"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "known error is user facing", err: ErrImportBusy, want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
