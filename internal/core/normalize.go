package core

// normalize.go holds the pure field normalizers applied to every raw row.
//
// Vendor exports are hand-edited spreadsheets, so the same department can
// arrive as "Decoración", "DECORACION" or " decoracion ". Everything that
// feeds the mapping rules goes through NormalizeCategoryKey so a single rule
// covers all spellings.

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// truthyTokens is the allow-list accepted by ParseBooleanField.
var truthyTokens = map[string]bool{
	"true": true,
	"1":    true,
	"si":   true,
	"sí":   true,
	"yes":  true,
}

// NormalizePrice parses a vendor price such as "$1,135.00".
// Returns NaN for empty or unparseable input; callers must never treat NaN as zero.
func NormalizePrice(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return math.NaN()
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if !numericRegex.MatchString(s) {
		return math.NaN()
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// NormalizeCategoryKey lowercases, trims and strips diacritics so that
// "Decoración" and "DECORACION" compare equal.
func NormalizeCategoryKey(raw string) string {
	return strings.TrimSpace(strings.ToLower(stripAccents(raw)))
}

// ParseBooleanField is total: anything outside the truthy allow-list,
// including the empty string, is false.
func ParseBooleanField(raw string) bool {
	return truthyTokens[strings.ToLower(strings.TrimSpace(raw))]
}

// NullableString trims raw and returns an invalid Text for blank input.
func NullableString(raw string) pgtype.Text {
	return ToPgText(raw)
}

// stripAccents decomposes s and drops combining marks.
func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
