package models

// BatchRequest carries a candidate batch plus the scope it belongs to.
type BatchRequest struct {
	GroupID    int                 `json:"group_id"`
	GroupName  string              `json:"group_name"`
	CompanyID  int                 `json:"company_id"`
	FiscalYear string              `json:"fiscal_year"`
	Rows       []map[string]string `json:"rows"`
}

func (r *BatchRequest) Scope() ImportScope {
	return ImportScope{
		GroupID:    r.GroupID,
		GroupName:  r.GroupName,
		CompanyID:  r.CompanyID,
		FiscalYear: r.FiscalYear,
	}
}

// CandidateRows converts the raw request rows, preserving order.
func (r *BatchRequest) CandidateRows() []CandidateRow {
	rows := make([]CandidateRow, 0, len(r.Rows))
	for i, raw := range r.Rows {
		row := NewCandidateRow(i)
		for field, value := range raw {
			row.Set(field, value)
		}
		rows = append(rows, row)
	}
	return rows
}

// ClearRequest authorizes a bulk clear of one scope.
type ClearRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Reason   string `json:"reason"`
}

// ValidateResponse is the payload returned by batch validation.
type ValidateResponse struct {
	Results []RowValidationResult  `json:"results"`
	Summary BatchValidationSummary `json:"summary"`
}
