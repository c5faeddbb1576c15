package core

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidWorkbook is returned when an .xlsx upload cannot be opened.
var ErrInvalidWorkbook = errors.New("invalid xlsx: workbook could not be read")

// productsSheet is the preferred sheet name; the first sheet is used otherwise.
const productsSheet = "Productos"

// ParseXLSX reads the product sheet of a workbook into a ParseResult.
// Source rows are sheet row numbers, so blank spreadsheet rows keep the
// numbering the user sees in Excel.
func ParseXLSX(data []byte) (ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return ParseResult{}, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ParseResult{}, fmt.Errorf("%w: no sheets", ErrInvalidWorkbook)
	}

	sheet := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, productsSheet) {
			sheet = name
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return ParseResult{}, fmt.Errorf("%w: read sheet %q: %v", ErrInvalidWorkbook, sheet, err)
	}

	records := make([]record, 0, len(rows))
	for i, cells := range rows {
		if isBlankRecord(cells) {
			continue
		}
		records = append(records, record{line: i + 1, cells: cells})
	}

	return parseRecords(records), nil
}

func isBlankRecord(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
