package core

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("nombre,precio")...),
			expected: "nombre,precio",
		},
		{
			name:     "file without BOM",
			input:    []byte("nombre,precio"),
			expected: "nombre,precio",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM at start",
			input:    []byte{0xEF, 0xBB, 'a', 'b', 'c'},
			expected: string([]byte{0xEF, 0xBB, 'a', 'b', 'c'}),
		},
		{
			name:     "shorter than BOM",
			input:    []byte("ab"),
			expected: "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewBOMSkippingReader(bytes.NewReader(tt.input))
			result, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestLoadSource(t *testing.T) {
	data, err := LoadSource(strings.NewReader("12345"), 5)
	if err != nil {
		t.Fatalf("LoadSource() at limit error = %v", err)
	}
	if string(data) != "12345" {
		t.Errorf("LoadSource() = %q", data)
	}

	if _, err := LoadSource(strings.NewReader("123456"), 5); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("LoadSource() over limit error = %v, want ErrFileTooLarge", err)
	}
}

func TestCheckExtension(t *testing.T) {
	allowed := []string{".csv", ".xlsx"}
	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{name: "csv", file: "inventario.csv", wantErr: false},
		{name: "uppercase", file: "INVENTARIO.CSV", wantErr: false},
		{name: "xlsx", file: "inventario.xlsx", wantErr: false},
		{name: "xls", file: "inventario.xls", wantErr: true},
		{name: "no extension", file: "inventario", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckExtension(tt.file, allowed)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckExtension(%q) error = %v, wantErr %v", tt.file, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedFileType) {
				t.Errorf("error %v does not wrap ErrUnsupportedFileType", err)
			}
		})
	}
}

func TestParseSource_Encodings(t *testing.T) {
	// "Decoración" in Windows-1252: ó is 0xF3.
	latin := []byte(testHeader + "\nVela,,10,Decoraci\xf3n,Velas,V-1,,,,,\n")
	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte(testHeader+"\nVela,,10,Decoración,Velas,V-1,,,,,\n")...)

	tests := []struct {
		name     string
		data     []byte
		fallback string
		wantErr  error
	}{
		{name: "utf-8 with BOM", data: bom, fallback: ""},
		{name: "windows-1252 fallback", data: latin, fallback: "windows-1252"},
		{name: "latin1 fallback", data: latin, fallback: "latin1"},
		{name: "no fallback", data: latin, fallback: "", wantErr: ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := ReadOptions{AllowedExtensions: []string{".csv"}, FallbackCharset: tt.fallback}
			got, err := ParseSource("inventario.csv", tt.data, opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseSource() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSource() error = %v", err)
			}
			if len(got.Rows) != 1 {
				t.Fatalf("len(Rows) = %d, want 1 (issues %+v)", len(got.Rows), got.Issues)
			}
			if got.Rows[0].Department != "decoracion" {
				t.Errorf("Department = %q, want decoracion", got.Rows[0].Department)
			}
			if got.Raw[0].Department != "Decoración" {
				t.Errorf("raw Department = %q, want Decoración", got.Raw[0].Department)
			}
		})
	}
}

func TestParseSource_Limits(t *testing.T) {
	opts := ReadOptions{MaxFileSize: 10, AllowedExtensions: []string{".csv"}}

	if _, err := ParseSource("a.csv", bytes.Repeat([]byte("x"), 11), opts); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("oversized error = %v, want ErrFileTooLarge", err)
	}
	if _, err := ParseSource("a.csv", nil, opts); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("empty error = %v, want ErrEmptyFile", err)
	}
	if _, err := ParseSource("a.txt", []byte("x"), opts); !errors.Is(err, ErrUnsupportedFileType) {
		t.Errorf("extension error = %v, want ErrUnsupportedFileType", err)
	}
}
