package service

import (
	"fmt"
	"strconv"
	"strings"

	"masterdata-web/internal/models"
)

// ValidationService classifies candidate rows against the entity's rule
// tables. Validate is a pure function of its inputs and performs no I/O;
// the caller loads reference sets and existing rows first.
type ValidationService struct {
	dup *DuplicateDetector
}

func NewValidationService() *ValidationService {
	return &ValidationService{dup: NewDuplicateDetector()}
}

// Validate runs every check on every row. Checks never short-circuit each
// other: a row can be counted as both Duplicate and MissingData. Only the
// collapsed row status picks a single category for display, with Duplicate
// overriding an earlier MissingData.
func (s *ValidationService) Validate(
	kind models.EntityKind,
	scope models.ImportScope,
	rows []models.CandidateRow,
	existing []models.CandidateRow,
	refs *models.ReferenceSets,
) ([]models.RowValidationResult, models.BatchValidationSummary) {
	if refs == nil {
		refs = models.NewReferenceSets()
	}

	// Keys of already-persisted rows in this scope.
	existingKeys := make(map[string]bool, len(existing))
	for _, row := range existing {
		if key := s.dup.Key(row, kind, scope.GroupName); key != "" {
			existingKeys[key] = true
		}
	}

	// First occurrence of each key within the batch. Only later rows with
	// the same key are flagged, never the first.
	seenKeys := make(map[string]int, len(rows))

	results := make([]models.RowValidationResult, 0, len(rows))
	for i, row := range rows {
		result := models.RowValidationResult{
			Index:  i,
			Row:    row,
			Status: models.RowValid,
		}

		s.checkMissingData(kind, scope, row, &result)
		s.checkConditionalRequired(kind, row, &result)
		s.checkDuplicate(kind, scope, row, i, existingKeys, seenKeys, &result)
		s.checkLookups(kind, row, refs, &result)
		s.checkInvalidContent(kind, row, &result)

		results = append(results, result)
	}

	return results, summarize(results)
}

func (s *ValidationService) checkMissingData(kind models.EntityKind, scope models.ImportScope, row models.CandidateRow, result *models.RowValidationResult) {
	for _, field := range RequiredFields(kind, scope.GroupName) {
		value := row.Get(field.Name)
		missing := value == ""
		if !missing && field.Numeric && row.Float(field.Name) <= 0 {
			missing = true
		}
		if !missing {
			continue
		}
		result.Cells = append(result.Cells, models.CellValidation{
			ColumnName: field.Name,
			Message:    fmt.Sprintf("%s is required", field.Name),
			Status:     models.RowMissingData,
		})
		if result.Status == models.RowValid {
			result.Status = models.RowMissingData
		}
	}
}

func (s *ValidationService) checkConditionalRequired(kind models.EntityKind, row models.CandidateRow, result *models.RowValidationResult) {
	for _, cond := range ConditionalRequiredFields(kind) {
		if row.Get(cond.WhenField) == cond.WhenValue {
			if row.Get(cond.Field) == "" {
				result.Cells = append(result.Cells, models.CellValidation{
					ColumnName: cond.Field,
					Message:    fmt.Sprintf("%s is required when %s is %s", cond.Field, cond.WhenField, cond.WhenValue),
					Status:     models.RowMissingData,
				})
				if result.Status == models.RowValid {
					result.Status = models.RowMissingData
				}
			}
			continue
		}
		// Not applicable: clear the field instead of validating it.
		row.Set(cond.Field, "")
	}
}

func (s *ValidationService) checkDuplicate(
	kind models.EntityKind,
	scope models.ImportScope,
	row models.CandidateRow,
	index int,
	existingKeys map[string]bool,
	seenKeys map[string]int,
	result *models.RowValidationResult,
) {
	key := s.dup.Key(row, kind, scope.GroupName)
	if key == "" {
		return
	}

	keyFields := strings.Join(DuplicateKeyFieldNames(kind, scope.GroupName), " + ")

	duplicate := false
	message := ""
	if existingKeys[key] {
		duplicate = true
		message = fmt.Sprintf("Duplicate of an existing record (%s)", keyFields)
	} else if first, seen := seenKeys[key]; seen {
		duplicate = true
		message = fmt.Sprintf("Duplicate of row %d in this batch (%s)", first+1, keyFields)
	} else {
		seenKeys[key] = index
	}

	if duplicate {
		result.Cells = append(result.Cells, models.CellValidation{
			ColumnName: keyFields,
			Message:    message,
			Status:     models.RowDuplicate,
		})
		// Duplicate overrides a MissingData display status.
		result.Status = models.RowDuplicate
	}
}

func (s *ValidationService) checkLookups(kind models.EntityKind, row models.CandidateRow, refs *models.ReferenceSets, result *models.RowValidationResult) {
	for _, check := range LookupChecks(kind) {
		value := row.Get(check.Field)
		if value == "" {
			// Empty optional cross-references are never mismatches.
			continue
		}

		var (
			matched bool
			mapped  int64
			message string
		)
		switch check.Set {
		case RefUnits:
			matched = refs.HasUnit(value)
			message = fmt.Sprintf("%s '%s' is not a recognized unit", check.Field, value)
		case RefCategories:
			mapped, matched = refs.CategoryID(value)
			message = fmt.Sprintf("%s '%s' does not match any category", check.Field, value)
		case RefSubGroups:
			mapped, matched = refs.SubGroupID(value)
			message = fmt.Sprintf("%s '%s' does not match any sub group", check.Field, value)
		case RefCountryState:
			state := row.Get(check.PairField)
			matched = refs.HasCountryState(value, state)
			message = fmt.Sprintf("Country/State '%s/%s' is not a valid pair", value, state)
		case RefClients:
			matched = refs.HasClient(value)
			message = fmt.Sprintf("%s '%s' does not match any client", check.Field, value)
		}

		if matched {
			if check.MapTo != "" {
				row.Set(check.MapTo, strconv.FormatInt(mapped, 10))
			}
			continue
		}

		result.Cells = append(result.Cells, models.CellValidation{
			ColumnName: check.Field,
			Message:    message,
			Status:     models.RowMismatch,
		})
		if result.Status == models.RowValid {
			result.Status = models.RowMismatch
		}
	}
}

func (s *ValidationService) checkInvalidContent(kind models.EntityKind, row models.CandidateRow, result *models.RowValidationResult) {
	for _, field := range DetailOrder(kind) {
		if InvalidContentExcluded(kind, field) {
			continue
		}
		value := row.Get(field)
		if value == "" || !strings.ContainsAny(value, `'"`) {
			continue
		}
		result.Cells = append(result.Cells, models.CellValidation{
			ColumnName: field,
			Message:    fmt.Sprintf("%s contains invalid characters (quotes are not allowed)", field),
			Status:     models.RowInvalidContent,
		})
		if result.Status == models.RowValid {
			result.Status = models.RowInvalidContent
		}
	}
}

// summarize aggregates the batch summary. Every entity, HSN included, uses
// this one code path; a row increments every counter whose category it
// matches, and IsValid holds iff all non-valid counters are zero.
func summarize(results []models.RowValidationResult) models.BatchValidationSummary {
	summary := models.BatchValidationSummary{TotalRows: len(results)}
	for _, r := range results {
		if r.Status == models.RowValid {
			summary.ValidRows++
		}
		if r.HasStatus(models.RowDuplicate) {
			summary.DuplicateRows++
		}
		if r.HasStatus(models.RowMissingData) {
			summary.MissingDataRows++
		}
		if r.HasStatus(models.RowMismatch) {
			summary.MismatchRows++
		}
		if r.HasStatus(models.RowInvalidContent) {
			summary.InvalidContentRows++
		}
	}
	summary.IsValid = summary.DuplicateRows == 0 &&
		summary.MissingDataRows == 0 &&
		summary.MismatchRows == 0 &&
		summary.InvalidContentRows == 0
	return summary
}
