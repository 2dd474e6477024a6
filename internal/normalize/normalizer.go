// Package normalize turns a header detection plus raw rows into rows keyed by
// the canonical field set. Absence is never fatal here: unmapped columns and
// unparseable cells produce warnings and missing values, and downstream
// consumers decide whether absence matters.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rpattn/rentroll/internal/domain"
)

// Resolve maps every data row onto the canonical field set. The output row
// count always equals the number of data rows; partial rows are retained with
// their missing fields flagged in warnings.
func Resolve(detection domain.HeaderDetection, rows [][]string) ([]domain.CanonicalRow, []string) {
	warnings := []string{}

	for _, field := range domain.CanonicalFields() {
		if _, ok := detection.Column(field); !ok {
			warnings = append(warnings, fmt.Sprintf("canonical field %s is not mapped to any column", field))
		}
	}

	if detection.DataStartRowIndex >= len(rows) {
		return []domain.CanonicalRow{}, warnings
	}

	dataRows := rows[detection.DataStartRowIndex:]
	out := make([]domain.CanonicalRow, 0, len(dataRows))

	for i, row := range dataRows {
		canonical := domain.CanonicalRow{}
		rowNumber := detection.DataStartRowIndex + i + 1 // 1-based, matches what users see

		for _, field := range domain.CanonicalFields() {
			col, ok := detection.Column(field)
			if !ok || col >= len(row) {
				continue
			}

			raw := strings.TrimSpace(row[col])
			if raw == "" {
				continue
			}

			if field.IsNumeric() {
				value, err := ParseNumeric(raw)
				if err != nil {
					warnings = append(warnings, fmt.Sprintf("row %d: field %s: %v", rowNumber, field, err))
					continue
				}
				canonical[field] = value
				continue
			}

			canonical[field] = raw
		}

		out = append(out, canonical)
	}

	return out, warnings
}

// ParseNumeric parses a cell that should hold a number, tolerating currency
// symbols, thousands separators, parenthesized negatives, and whitespace.
func ParseNumeric(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.TrimPrefix(cleaned, "€")
	cleaned = strings.TrimPrefix(cleaned, "£")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return 0, fmt.Errorf("unable to parse %q as number", raw)
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse %q as number", raw)
	}
	if negative {
		value = -value
	}
	return value, nil
}
