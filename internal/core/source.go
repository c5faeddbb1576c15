package core

// source.go loads an uploaded file and dispatches it to the right reader.
//
// Files arrive from the browser or the CLI as raw bytes. Before parsing:
//
//   - the extension must be on the allow-list
//   - the size must not exceed the configured limit
//   - a UTF-8 BOM (0xEF 0xBB 0xBF) added by Excel on Windows is dropped
//   - text that is not valid UTF-8 is decoded with the fallback charset,
//     since older point-of-sale exports are written in Windows-1252

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var (
	// ErrFileTooLarge is returned when a file exceeds ReadOptions.MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile is returned for zero-byte uploads.
	ErrEmptyFile = errors.New("empty file")

	// ErrUnsupportedFileType is returned for extensions outside the allow-list.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// ReadOptions controls how a source file is loaded.
type ReadOptions struct {
	MaxFileSize       int64
	AllowedExtensions []string

	// FallbackCharset names the encoding tried when the file is not UTF-8.
	// Empty disables the fallback.
	FallbackCharset string
}

// LoadSource reads r fully, failing with ErrFileTooLarge past maxSize bytes.
func LoadSource(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, maxSize)
	}
	return data, nil
}

// CheckExtension verifies that fileName has an allowed extension.
func CheckExtension(fileName string, allowed []string) error {
	if len(allowed) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, a := range allowed {
		if strings.EqualFold(ext, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedFileType, ext, strings.Join(allowed, ", "))
}

// ParseSource parses file data according to its extension.
func ParseSource(fileName string, data []byte, opts ReadOptions) (ParseResult, error) {
	if err := CheckExtension(fileName, opts.AllowedExtensions); err != nil {
		return ParseResult{}, err
	}
	if opts.MaxFileSize > 0 && int64(len(data)) > opts.MaxFileSize {
		return ParseResult{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(data), opts.MaxFileSize)
	}
	if len(data) == 0 {
		return ParseResult{}, ErrEmptyFile
	}

	if strings.EqualFold(filepath.Ext(fileName), ".xlsx") {
		return ParseXLSX(data)
	}

	text, err := decodeText(data, opts.FallbackCharset)
	if err != nil {
		return ParseResult{}, err
	}
	return ParseCSV(text)
}

// decodeText strips a BOM and returns data as UTF-8 text.
func decodeText(data []byte, fallback string) (string, error) {
	body, err := io.ReadAll(NewBOMSkippingReader(bytes.NewReader(data)))
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	if utf8.Valid(body) {
		return string(body), nil
	}

	enc := lookupCharset(fallback)
	if enc == nil {
		return "", ErrInvalidEncoding
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(body), enc.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return string(decoded), nil
}

// lookupCharset maps a configured charset name to its decoder.
func lookupCharset(name string) encoding.Encoding {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "windows-1252", "cp1252":
		return charmap.Windows1252
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15
	default:
		return nil
	}
}

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
// The UTF-8 BOM is 0xEF 0xBB 0xBF and is commonly added by Windows programs.
type BOMSkippingReader struct {
	reader     io.Reader
	bomChecked bool
	buf        [3]byte
	pending    []byte
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader. On the first read, it checks for and skips the BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.bomChecked {
		r.bomChecked = true

		n, err := io.ReadFull(r.reader, r.buf[:])
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return 0, err
		}
		if !(n == 3 && r.buf[0] == 0xEF && r.buf[1] == 0xBB && r.buf[2] == 0xBF) {
			r.pending = r.buf[:n]
		}
		if n < 3 && len(r.pending) == 0 {
			return 0, io.EOF
		}
	}

	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		return n, nil
	}

	return r.reader.Read(p)
}
