package core

// reader.go turns the text of a vendor inventory CSV into normalized rows.
//
// The reader is line oriented: blank lines are dropped, the first remaining
// line is the header, and each following line is one product. Quoted fields
// may contain commas and "" escapes but never line breaks, which is how the
// point-of-sale exports we receive are produced.
//
// Malformed rows never fail the read. Each rejection becomes a RowIssue on
// that row's source line; only an undecodable file is an error.

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Canonical column names, as they appear in the download template.
const (
	ColName        = "nombre"
	ColDescription = "descripcion"
	ColPrice       = "precio"
	ColDepartment  = "departamento"
	ColCategory    = "categoria"
	ColSKU         = "clave1"
	ColBarcode     = "clave2"
	ColTaxCode     = "codigo_sat"
	ColAvailable   = "disponible"
	ColFeatured    = "destacado"
	ColSeasonal    = "temporada"
)

// ErrInvalidEncoding is returned when the file is not decodable text.
var ErrInvalidEncoding = errors.New("encoding error: file is not valid UTF-8")

// Columns lists every column the reader understands, in template order.
var Columns = []string{
	ColName, ColDescription, ColPrice, ColDepartment, ColCategory,
	ColSKU, ColBarcode, ColTaxCode, ColAvailable, ColFeatured, ColSeasonal,
}

// RequiredColumns must be non-empty on every row.
var RequiredColumns = []string{ColName, ColPrice, ColDepartment, ColCategory, ColSKU}

// columnAliases maps normalized header spellings seen in the wild to
// canonical names. Keys are already passed through normalizeHeader.
var columnAliases = map[string]string{
	"name":             ColName,
	"producto":         ColName,
	"description":      ColDescription,
	"price":            ColPrice,
	"precio1":          ColPrice,
	"department":       ColDepartment,
	"depto":            ColDepartment,
	"category":         ColCategory,
	"sku":              ColSKU,
	"clave":            ColSKU,
	"barcode":          ColBarcode,
	"codigo_de_barras": ColBarcode,
	"sat_code":         ColTaxCode,
	"tax_code":         ColTaxCode,
	"available":        ColAvailable,
	"featured":         ColFeatured,
	"seasonal":         ColSeasonal,
}

var headerSeparators = regexp.MustCompile(`[\s\-]+`)

// normalizeHeader reduces a header cell to the form used for lookups:
// accent-free, lowercase, without the "*" required marker, words joined by "_".
func normalizeHeader(h string) string {
	key := NormalizeCategoryKey(CleanCell(h))
	key = strings.TrimSpace(strings.Trim(key, "*"))
	return headerSeparators.ReplaceAllString(key, "_")
}

// columnIndex maps canonical column names to their position in the header.
// The first occurrence of a column wins.
type columnIndex map[string]int

func buildColumnIndex(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if alias, ok := columnAliases[key]; ok {
			key = alias
		}
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// get returns the cell for col, or "" when the column or cell is absent.
func (c columnIndex) get(cells []string, col string) string {
	pos, ok := c[col]
	if !ok || pos >= len(cells) {
		return ""
	}
	return cells[pos]
}

// missing returns the required columns absent from the header.
func (c columnIndex) missing() []string {
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := c[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// ParseCSV reads CSV text into a ParseResult.
// Fewer than two non-blank lines yields an empty result and no error.
func ParseCSV(text string) (ParseResult, error) {
	if !utf8.ValidString(text) {
		return ParseResult{}, ErrInvalidEncoding
	}

	lines := splitLines(text)
	if len(lines) < 2 {
		return ParseResult{}, nil
	}

	records := make([]record, len(lines))
	for i, line := range lines {
		records[i] = record{line: i + 1, cells: splitCSVLine(line)}
	}
	return parseRecords(records), nil
}

// record is one source line split into cells.
type record struct {
	line  int
	cells []string
}

// parseRecords applies the row contract to a header plus data records.
// records[0] is the header.
func parseRecords(records []record) ParseResult {
	var result ParseResult
	if len(records) < 2 {
		return result
	}

	idx := buildColumnIndex(records[0].cells)
	result.MissingColumns = idx.missing()

	for _, rec := range records[1:] {
		raw := buildRawRow(idx, rec.cells, rec.line)
		result.Raw = append(result.Raw, raw)

		row, issue := normalizeRow(raw)
		if issue != nil {
			result.Issues = append(result.Issues, *issue)
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result
}

func buildRawRow(idx columnIndex, cells []string, sourceRow int) RawRow {
	return RawRow{
		SourceRow:   sourceRow,
		Name:        idx.get(cells, ColName),
		Description: idx.get(cells, ColDescription),
		Price:       idx.get(cells, ColPrice),
		Department:  idx.get(cells, ColDepartment),
		Category:    idx.get(cells, ColCategory),
		SKU:         idx.get(cells, ColSKU),
		Barcode:     idx.get(cells, ColBarcode),
		TaxCode:     idx.get(cells, ColTaxCode),
		Available:   idx.get(cells, ColAvailable),
		Featured:    idx.get(cells, ColFeatured),
		Seasonal:    idx.get(cells, ColSeasonal),
	}
}

// normalizeRow enforces required fields and price sanity, in that order.
// Spreadsheet artifacts are stripped here so the raw row keeps the cell
// text exactly as exported.
func normalizeRow(raw RawRow) (NormalizedRow, *RowIssue) {
	values := raw.Payload()
	for _, col := range []string{ColPrice, ColSKU, ColBarcode, ColTaxCode} {
		values[col] = CleanCell(values[col])
	}

	var missing []string
	for _, col := range RequiredColumns {
		if strings.TrimSpace(values[col]) == "" {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return NormalizedRow{}, &RowIssue{
			SourceRow: raw.SourceRow,
			Code:      IssueMissingField,
			Detail:    "Campos obligatorios vacíos: " + strings.Join(missing, ", "),
		}
	}

	// Prices are stored with two decimals, so positivity is judged on cents.
	price := math.Round(NormalizePrice(values[ColPrice])*100) / 100
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return NormalizedRow{}, &RowIssue{
			SourceRow: raw.SourceRow,
			Code:      IssueInvalidPrice,
			Detail:    fmt.Sprintf("Precio inválido: %q. Debe ser un número mayor a 0.", raw.Price),
		}
	}

	available := true
	if strings.TrimSpace(raw.Available) != "" {
		available = ParseBooleanField(raw.Available)
	}

	return NormalizedRow{
		SourceRow:   raw.SourceRow,
		Name:        strings.TrimSpace(raw.Name),
		Description: NullableString(raw.Description),
		Price:       price,
		Department:  NormalizeCategoryKey(raw.Department),
		Category:    NormalizeCategoryKey(raw.Category),
		SKU:         NullableString(values[ColSKU]),
		Barcode:     NullableString(values[ColBarcode]),
		TaxCode:     NullableString(values[ColTaxCode]),
		IsAvailable: available,
		IsFeatured:  ParseBooleanField(raw.Featured),
		IsSeasonal:  ParseBooleanField(raw.Seasonal),
	}, nil
}

// splitLines splits on \n or \r\n and drops whitespace-only lines.
func splitLines(text string) []string {
	parts := strings.Split(text, "\n")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSuffix(p, "\r")
		if strings.TrimSpace(p) == "" {
			continue
		}
		lines = append(lines, p)
	}
	return lines
}

// splitCSVLine splits one line on commas outside double quotes.
// Inside quotes, "" is a literal quote.
func splitCSVLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	return append(fields, current.String())
}
