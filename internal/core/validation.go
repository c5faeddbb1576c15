package core

// validation.go is the second pass over parsed rows.
//
// For each row, in order, the first failing check wins:
//  1. DUPLICATE_SKU when the SKU is already in the catalog (a skip, not an error)
//  2. UNMAPPED_CATEGORY when no mapping rule matches the pair
//  3. UNMAPPED_CATEGORY when the curated category does not exist in the catalog
//
// Rows surviving every check become ValidatedRows. Issues from the parse
// pass are forwarded first and untouched.

import "fmt"

// ValidationInput is everything the validator needs for one run.
type ValidationInput struct {
	Rows        []NormalizedRow
	ParseIssues []RowIssue
	Rules       []MappingRule

	// ExistingSKUs is the set of SKUs already present in the catalog.
	ExistingSKUs map[string]struct{}

	// CategoryIDs maps curated category name to catalog category id.
	CategoryIDs map[string]string
}

// ValidationResult holds rows eligible for persistence plus every issue so far.
// No source row appears in both lists.
type ValidationResult struct {
	Rows   []ValidatedRow
	Issues []RowIssue
}

// ValidateRows runs the duplicate, mapping and category checks.
func ValidateRows(in ValidationInput) ValidationResult {
	result := ValidationResult{
		Issues: make([]RowIssue, 0, len(in.ParseIssues)),
	}
	result.Issues = append(result.Issues, in.ParseIssues...)

	for _, row := range in.Rows {
		if issue := checkDuplicate(row, in.ExistingSKUs); issue != nil {
			result.Issues = append(result.Issues, *issue)
			continue
		}

		res := ResolveCategory(row.Department, row.Category, in.Rules)
		if !res.Matched {
			result.Issues = append(result.Issues, RowIssue{
				SourceRow: row.SourceRow,
				Code:      IssueUnmappedCategory,
				Detail: fmt.Sprintf("Sin regla de mapeo para departamento=%q + categoría=%q.",
					row.Department, row.Category),
			})
			continue
		}

		categoryID, ok := in.CategoryIDs[res.CuratedCategory]
		if !ok || categoryID == "" {
			result.Issues = append(result.Issues, RowIssue{
				SourceRow: row.SourceRow,
				Code:      IssueUnmappedCategory,
				Detail: fmt.Sprintf("Categoría curada %q no existe en el catálogo. Créala primero.",
					res.CuratedCategory),
			})
			continue
		}

		result.Rows = append(result.Rows, ValidatedRow{
			NormalizedRow:   row,
			CuratedCategory: res.CuratedCategory,
			CategoryID:      categoryID,
		})
	}

	return result
}

func checkDuplicate(row NormalizedRow, existing map[string]struct{}) *RowIssue {
	if !row.SKU.Valid {
		return nil
	}
	if _, ok := existing[row.SKU.String]; !ok {
		return nil
	}
	return &RowIssue{
		SourceRow: row.SourceRow,
		Code:      IssueDuplicateSKU,
		Detail:    fmt.Sprintf("SKU duplicado: %q ya existe en el catálogo y será omitido.", row.SKU.String),
	}
}

// CountIssues splits issues into skipped (duplicates) and errored.
func CountIssues(issues []RowIssue) (skipped, errored int) {
	for _, is := range issues {
		if is.Code.IsSkip() {
			skipped++
		} else {
			errored++
		}
	}
	return skipped, errored
}
