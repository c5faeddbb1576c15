package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

const testHeader = "nombre,descripcion,precio,departamento,categoria,clave1,clave2,codigo_sat,disponible,destacado,temporada"

// csvOf joins a header and rows into CSV text.
func csvOf(header string, rows ...string) string {
	return header + "\n" + strings.Join(rows, "\n") + "\n"
}

func TestParseCSV_ValidAndInvalidPrices(t *testing.T) {
	var rows []string
	for i := 1; i <= 30; i++ {
		rows = append(rows, fmt.Sprintf("Producto %d,,%d.50,Decoración,Velas,SKU-%03d,,,,,", i, i, i))
	}
	for i, price := range []string{"0", "-5", "$0.00", "-0.50", "0.004"} {
		rows = append(rows, fmt.Sprintf("Producto %d,,%s,Decoración,Velas,SKU-%03d,,,,,", 31+i, price, 31+i))
	}

	got, err := ParseCSV(csvOf(testHeader, rows...))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}

	if len(got.Rows) != 30 {
		t.Errorf("len(Rows) = %d, want 30", len(got.Rows))
	}
	if len(got.Issues) != 5 {
		t.Fatalf("len(Issues) = %d, want 5", len(got.Issues))
	}
	for _, is := range got.Issues {
		if is.Code != IssueInvalidPrice {
			t.Errorf("issue code = %s, want %s", is.Code, IssueInvalidPrice)
		}
	}
	if got.TotalRows() != 35 {
		t.Errorf("TotalRows() = %d, want 35", got.TotalRows())
	}
	if len(got.Raw) != 35 {
		t.Errorf("len(Raw) = %d, want 35", len(got.Raw))
	}

	first := got.Issues[0]
	if first.SourceRow != 32 {
		t.Errorf("first issue SourceRow = %d, want 32", first.SourceRow)
	}
	if want := `Precio inválido: "0". Debe ser un número mayor a 0.`; first.Detail != want {
		t.Errorf("Detail = %q, want %q", first.Detail, want)
	}
}

func TestParseCSV_RowNormalization(t *testing.T) {
	text := csvOf(testHeader,
		`"Molde, grande","Silicón ""premium""","$1,135.00", DECORACIÓN ,Repostería,="000123",7501234567890,52141500,no,si,1`,
	)

	got, err := ParseCSV(text)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(got.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1 (issues: %+v)", len(got.Rows), got.Issues)
	}

	row := got.Rows[0]
	if row.Name != "Molde, grande" {
		t.Errorf("Name = %q, want %q", row.Name, "Molde, grande")
	}
	if row.Description.String != `Silicón "premium"` {
		t.Errorf("Description = %q", row.Description.String)
	}
	if row.Price != 1135 {
		t.Errorf("Price = %v, want 1135", row.Price)
	}
	if row.Department != "decoracion" || row.Category != "reposteria" {
		t.Errorf("Department/Category = %q/%q, want decoracion/reposteria", row.Department, row.Category)
	}
	if row.SKU.String != "000123" {
		t.Errorf("SKU = %q, want 000123", row.SKU.String)
	}
	if row.IsAvailable {
		t.Error("IsAvailable = true, want false for \"no\"")
	}
	if !row.IsFeatured || !row.IsSeasonal {
		t.Errorf("IsFeatured/IsSeasonal = %v/%v, want true/true", row.IsFeatured, row.IsSeasonal)
	}
	if row.SourceRow != 2 {
		t.Errorf("SourceRow = %d, want 2", row.SourceRow)
	}
}

func TestParseCSV_AvailableDefaultsTrue(t *testing.T) {
	got, err := ParseCSV(csvOf(testHeader, "Vela,,10,Decoracion,Velas,V-1,,,,,"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(got.Rows) != 1 || !got.Rows[0].IsAvailable {
		t.Errorf("IsAvailable with empty cell should default to true, got %+v", got.Rows)
	}
	if got.Rows[0].Description.Valid {
		t.Error("empty description should be null")
	}
}

func TestParseCSV_MissingFields(t *testing.T) {
	got, err := ParseCSV(csvOf(testHeader, ",,10,,Velas,V-1,,,,,"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(got.Issues) != 1 {
		t.Fatalf("len(Issues) = %d, want 1", len(got.Issues))
	}
	is := got.Issues[0]
	if is.Code != IssueMissingField {
		t.Errorf("Code = %s, want %s", is.Code, IssueMissingField)
	}
	if want := "Campos obligatorios vacíos: nombre, departamento"; is.Detail != want {
		t.Errorf("Detail = %q, want %q", is.Detail, want)
	}
}

func TestParseCSV_MissingFieldBeforePrice(t *testing.T) {
	// A row with both problems reports only the missing field.
	got, err := ParseCSV(csvOf(testHeader, "Vela,,abc,Decoracion,Velas,,,,,,"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(got.Issues) != 1 || got.Issues[0].Code != IssueMissingField {
		t.Errorf("Issues = %+v, want one MISSING_FIELD", got.Issues)
	}
}

func TestParseCSV_BlankLinesAndShortInput(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantRows int
		wantLine int
	}{
		{name: "empty text", text: "", wantRows: 0},
		{name: "header only", text: testHeader + "\n", wantRows: 0},
		{name: "blank lines are skipped", text: testHeader + "\n\n   \r\nVela,,10,Deco,Velas,V-1,,,,,\n\n", wantRows: 1, wantLine: 2},
		{name: "crlf line endings", text: testHeader + "\r\nVela,,10,Deco,Velas,V-1,,,,,\r\n", wantRows: 1, wantLine: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCSV(tt.text)
			if err != nil {
				t.Fatalf("ParseCSV() error = %v", err)
			}
			if len(got.Rows) != tt.wantRows {
				t.Fatalf("len(Rows) = %d, want %d", len(got.Rows), tt.wantRows)
			}
			if tt.wantRows > 0 && got.Rows[0].SourceRow != tt.wantLine {
				t.Errorf("SourceRow = %d, want %d", got.Rows[0].SourceRow, tt.wantLine)
			}
		})
	}
}

func TestParseCSV_InvalidUTF8(t *testing.T) {
	_, err := ParseCSV(testHeader + "\nVela\xff,,10,Deco,Velas,V-1\n")
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("ParseCSV() error = %v, want ErrInvalidEncoding", err)
	}
}

func TestParseCSV_HeaderAliases(t *testing.T) {
	text := csvOf("Nombre *,Precio1,Depto,Categoría *,Clave,Código de barras",
		"Vela,25,Deco,Velas,V-1,7501",
	)

	got, err := ParseCSV(text)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(got.MissingColumns) != 0 {
		t.Errorf("MissingColumns = %v, want none", got.MissingColumns)
	}
	if len(got.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1 (issues %+v)", len(got.Rows), got.Issues)
	}
	if got.Rows[0].Barcode.String != "7501" {
		t.Errorf("Barcode = %q, want 7501", got.Rows[0].Barcode.String)
	}
}

func TestParseCSV_MissingColumns(t *testing.T) {
	got, err := ParseCSV(csvOf("nombre,precio", "Vela,10"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	want := []string{ColDepartment, ColCategory, ColSKU}
	if !reflect.DeepEqual(got.MissingColumns, want) {
		t.Errorf("MissingColumns = %v, want %v", got.MissingColumns, want)
	}
	if len(got.Issues) != 1 || got.Issues[0].Code != IssueMissingField {
		t.Errorf("Issues = %+v, want one MISSING_FIELD", got.Issues)
	}
}

func TestSplitCSVLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{name: "simple", line: "a,b,c", want: []string{"a", "b", "c"}},
		{name: "empty fields", line: "a,,c,", want: []string{"a", "", "c", ""}},
		{name: "quoted comma", line: `"a,b",c`, want: []string{"a,b", "c"}},
		{name: "escaped quote", line: `"say ""hi""",x`, want: []string{`say "hi"`, "x"}},
		{name: "single field", line: "solo", want: []string{"solo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitCSVLine(tt.line); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitCSVLine(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseCSV_PriceValues(t *testing.T) {
	tests := []struct {
		price     string
		wantIssue bool
		want      float64
	}{
		{price: "0", wantIssue: true},
		{price: "-5", wantIssue: true},
		{price: "$0.00", wantIssue: true},
		{price: "0.001", wantIssue: true},
		{price: "gratis", wantIssue: true},
		{price: "$1135.00", want: 1135},
		{price: "89.999", want: 90},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			got, err := ParseCSV(csvOf(testHeader, "Vela,,"+tt.price+",Decoración,Velas,V-1,,,,,"))
			if err != nil {
				t.Fatalf("ParseCSV() error = %v", err)
			}
			if tt.wantIssue {
				if len(got.Issues) != 1 || got.Issues[0].Code != IssueInvalidPrice {
					t.Errorf("issues = %+v, want one INVALID_PRICE", got.Issues)
				}
				return
			}
			if len(got.Rows) != 1 {
				t.Fatalf("len(Rows) = %d, want 1 (issues %+v)", len(got.Rows), got.Issues)
			}
			if got.Rows[0].Price != tt.want {
				t.Errorf("Price = %v, want %v", got.Rows[0].Price, tt.want)
			}
		})
	}
}

func TestParseCSV_RawKeepsCellText(t *testing.T) {
	got, err := ParseCSV(csvOf(testHeader, `Vela,,="120",Decoración,Velas,="00123",'750100,="A1",,,`))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(got.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1 (issues %+v)", len(got.Rows), got.Issues)
	}

	raw := got.Raw[0].Payload()
	for col, want := range map[string]string{ColPrice: `=120`, ColSKU: `=00123`, ColBarcode: `'750100`, ColTaxCode: `=A1`} {
		if raw[col] != want {
			t.Errorf("raw %s = %q, want %q", col, raw[col], want)
		}
	}

	row := got.Rows[0]
	if row.Price != 120 || row.SKU.String != "00123" || row.Barcode.String != "750100" || row.TaxCode.String != "A1" {
		t.Errorf("normalized row = %+v", row)
	}
}
