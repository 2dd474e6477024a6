package domain

import "fmt"

// CanonicalField names one of the fixed attributes every normalized rent roll
// row exposes. The set is closed and versioned: adding a field is a schema
// change, never a per-document decision.
type CanonicalField string

const (
	FieldUnitNumber      CanonicalField = "unit_number"
	FieldFloorPlan       CanonicalField = "floor_plan"
	FieldSquareFootage   CanonicalField = "square_footage"
	FieldCurrentRent     CanonicalField = "current_rent"
	FieldLeaseStart      CanonicalField = "lease_start"
	FieldLeaseEnd        CanonicalField = "lease_end"
	FieldOccupancyStatus CanonicalField = "occupancy_status"
	FieldMarketRent      CanonicalField = "market_rent"
	FieldTenantName      CanonicalField = "tenant_name"
)

// CanonicalFields returns the full field set in declaration order.
func CanonicalFields() []CanonicalField {
	return []CanonicalField{
		FieldUnitNumber,
		FieldFloorPlan,
		FieldSquareFootage,
		FieldCurrentRent,
		FieldLeaseStart,
		FieldLeaseEnd,
		FieldOccupancyStatus,
		FieldMarketRent,
		FieldTenantName,
	}
}

// IsNumeric reports whether the field carries a numeric value that must be
// parsed tolerantly (currency symbols, thousands separators).
func (f CanonicalField) IsNumeric() bool {
	switch f {
	case FieldSquareFootage, FieldCurrentRent, FieldMarketRent:
		return true
	}
	return false
}

// ColumnUnmapped marks a canonical field the inference engine could not place.
const ColumnUnmapped = -1

// HeaderDetection is the inference engine's answer for one sheet: where the
// header row sits, where data begins, and how raw columns map onto the
// canonical field set. Treated as immutable once produced.
type HeaderDetection struct {
	HeaderRowIndex    int                    `json:"header_row_index"`
	DataStartRowIndex int                    `json:"data_start_row_index"`
	Headers           map[int]string         `json:"headers"`
	ColumnMapping     map[CanonicalField]int `json:"column_mapping"`
	Confidence        float64                `json:"confidence"`
}

// Column resolves a canonical field to its raw column index. The second
// return is false when the field is unmapped.
func (d HeaderDetection) Column(field CanonicalField) (int, bool) {
	col, ok := d.ColumnMapping[field]
	if !ok || col == ColumnUnmapped {
		return ColumnUnmapped, false
	}
	return col, true
}

// Validate rejects detections that downstream extraction cannot trust:
// inverted row offsets or column references that point nowhere.
func (d HeaderDetection) Validate() error {
	if d.HeaderRowIndex < 0 {
		return fmt.Errorf("header row index %d is negative", d.HeaderRowIndex)
	}
	if d.DataStartRowIndex <= d.HeaderRowIndex {
		return fmt.Errorf("data start row %d must follow header row %d", d.DataStartRowIndex, d.HeaderRowIndex)
	}
	for field, col := range d.ColumnMapping {
		if col < ColumnUnmapped {
			return fmt.Errorf("field %s maps to invalid column %d", field, col)
		}
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("confidence %.3f outside [0,1]", d.Confidence)
	}
	return nil
}

// CanonicalRow holds the normalized values for one data row. Numeric fields
// carry float64, everything else string. A missing key means the source cell
// was absent, unmapped, or unparseable; warnings record which.
type CanonicalRow map[CanonicalField]any
