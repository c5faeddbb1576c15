package core

import (
	"testing"
)

func normalized(sourceRow int, dept, cat, sku string) NormalizedRow {
	return NormalizedRow{
		SourceRow:  sourceRow,
		Name:       "Producto",
		Price:      10,
		Department: dept,
		Category:   cat,
		SKU:        ToPgText(sku),
	}
}

func TestValidateRows(t *testing.T) {
	rules := []MappingRule{
		{Department: "decoracion", Category: "velas", CuratedCategory: "Velas", Priority: 30},
		{Department: "cocina", Category: Wildcard, CuratedCategory: "Cocina", Priority: 10},
	}
	categories := map[string]string{"Velas": "cat-velas"}

	parseIssue := RowIssue{SourceRow: 2, Code: IssueInvalidPrice, Detail: "bad"}
	in := ValidationInput{
		Rows: []NormalizedRow{
			normalized(3, "decoracion", "velas", "V-1"),   // ok
			normalized(4, "decoracion", "velas", "DUP-1"), // duplicate
			normalized(5, "fiestas", "globos", "G-1"),     // no rule
			normalized(6, "cocina", "moldes", "M-1"),      // rule to missing category
			normalized(7, "decoracion", "velas", ""),      // ok, no SKU
		},
		ParseIssues:  []RowIssue{parseIssue},
		Rules:        rules,
		ExistingSKUs: map[string]struct{}{"DUP-1": {}},
		CategoryIDs:  categories,
	}

	got := ValidateRows(in)

	if len(got.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(got.Rows))
	}
	if got.Rows[0].CategoryID != "cat-velas" || got.Rows[0].CuratedCategory != "Velas" {
		t.Errorf("Rows[0] = %+v, want category Velas/cat-velas", got.Rows[0])
	}

	wantIssues := []struct {
		row  int
		code IssueCode
	}{
		{2, IssueInvalidPrice},
		{4, IssueDuplicateSKU},
		{5, IssueUnmappedCategory},
		{6, IssueUnmappedCategory},
	}
	if len(got.Issues) != len(wantIssues) {
		t.Fatalf("len(Issues) = %d, want %d: %+v", len(got.Issues), len(wantIssues), got.Issues)
	}
	for i, w := range wantIssues {
		if got.Issues[i].SourceRow != w.row || got.Issues[i].Code != w.code {
			t.Errorf("Issues[%d] = %d/%s, want %d/%s", i, got.Issues[i].SourceRow, got.Issues[i].Code, w.row, w.code)
		}
	}

	if got.Issues[0] != parseIssue {
		t.Errorf("parse issue was altered: %+v", got.Issues[0])
	}
	if want := `Sin regla de mapeo para departamento="fiestas" + categoría="globos".`; got.Issues[2].Detail != want {
		t.Errorf("unmapped Detail = %q, want %q", got.Issues[2].Detail, want)
	}
	if want := `Categoría curada "Cocina" no existe en el catálogo. Créala primero.`; got.Issues[3].Detail != want {
		t.Errorf("missing category Detail = %q, want %q", got.Issues[3].Detail, want)
	}
}

func TestValidateRows_RowsAndIssuesDisjoint(t *testing.T) {
	in := ValidationInput{
		Rows: []NormalizedRow{
			normalized(2, "a", "b", "S-1"),
			normalized(3, "a", "b", "S-2"),
		},
		Rules:        []MappingRule{{Department: "a", Category: "b", CuratedCategory: "AB", Priority: 30}},
		ExistingSKUs: map[string]struct{}{"S-2": {}},
		CategoryIDs:  map[string]string{"AB": "cat-ab"},
	}
	got := ValidateRows(in)

	seen := map[int]bool{}
	for _, r := range got.Rows {
		seen[r.SourceRow] = true
	}
	for _, is := range got.Issues {
		if seen[is.SourceRow] {
			t.Errorf("source row %d is both accepted and rejected", is.SourceRow)
		}
	}
	if len(got.Rows)+len(got.Issues) != len(in.Rows) {
		t.Errorf("rows+issues = %d, want %d", len(got.Rows)+len(got.Issues), len(in.Rows))
	}
}

func TestCountIssues(t *testing.T) {
	issues := []RowIssue{
		{Code: IssueDuplicateSKU},
		{Code: IssueDuplicateSKU},
		{Code: IssueMissingField},
		{Code: IssueInvalidPrice},
		{Code: IssueUnmappedCategory},
		{Code: IssueDBInsert},
		{Code: IssueDBUpdate},
	}
	skipped, errored := CountIssues(issues)
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if errored != 5 {
		t.Errorf("errored = %d, want 5", errored)
	}
}
