package models

import (
	"strconv"
	"strings"
)

// CandidateRow is one prospective master record submitted by the caller.
// Fields are keyed by the entity's column names (see service.DetailOrder);
// all values travel as strings the way they arrive from a spreadsheet.
type CandidateRow struct {
	Index  int               `json:"index"`
	Fields map[string]string `json:"fields"`
}

func NewCandidateRow(index int) CandidateRow {
	return CandidateRow{Index: index, Fields: make(map[string]string)}
}

// Get returns the trimmed value of a field, or "" when absent.
func (r CandidateRow) Get(name string) string {
	return strings.TrimSpace(r.Fields[name])
}

// Set overwrites a field value. Used by validation auto-mapping and by the
// HSN conditional-required rule, which clears non-applicable fields.
func (r CandidateRow) Set(name, value string) {
	r.Fields[name] = value
}

// Float parses a field as a decimal, returning 0 for blank or unparseable
// values. Thousand separators are tolerated.
func (r CandidateRow) Float(name string) float64 {
	s := r.Get(name)
	if s == "" || s == "-" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// RowStatus is the collapsed display status of a candidate row. The batch
// summary counters count every category a row matches independently.
type RowStatus string

const (
	RowValid          RowStatus = "Valid"
	RowMissingData    RowStatus = "MissingData"
	RowDuplicate      RowStatus = "Duplicate"
	RowMismatch       RowStatus = "Mismatch"
	RowInvalidContent RowStatus = "InvalidContent"
)

// CellValidation is one issue found on one cell of a candidate row.
type CellValidation struct {
	ColumnName string    `json:"column_name"`
	Message    string    `json:"message"`
	Status     RowStatus `json:"status"`
}

// RowValidationResult is the validation outcome for a single candidate row.
type RowValidationResult struct {
	Index  int              `json:"index"`
	Row    CandidateRow     `json:"row"`
	Status RowStatus        `json:"status"`
	Cells  []CellValidation `json:"cells"`
}

// HasStatus reports whether any cell issue of the given category was
// recorded, independent of the collapsed Status field.
func (r RowValidationResult) HasStatus(status RowStatus) bool {
	for _, c := range r.Cells {
		if c.Status == status {
			return true
		}
	}
	return false
}

// BatchValidationSummary aggregates per-category counts over a batch.
// A row is counted in every category it matches, so the non-valid counters
// may sum to more than TotalRows - ValidRows.
type BatchValidationSummary struct {
	TotalRows          int  `json:"total_rows"`
	ValidRows          int  `json:"valid_rows"`
	DuplicateRows      int  `json:"duplicate_rows"`
	MissingDataRows    int  `json:"missing_data_rows"`
	MismatchRows       int  `json:"mismatch_rows"`
	InvalidContentRows int  `json:"invalid_content_rows"`
	IsValid            bool `json:"is_valid"`
}
