package service

import (
	"fmt"
	"strings"
	"time"

	"masterdata-web/internal/models"

	"github.com/xuri/excelize/v2"
)

type ExcelService struct{}

func NewExcelService() *ExcelService {
	return &ExcelService{}
}

// ParseRows reads the first sheet of an upload file and returns one
// candidate row per data row. Headers are matched by name against the
// entity's field list, so column order in the file does not matter.
func (s *ExcelService) ParseRows(filePath string, kind models.EntityKind) ([]models.CandidateRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must contain at least header row and one data row")
	}

	// Map column index -> field name using the header row. Unknown
	// headers are ignored rather than rejected.
	known := make(map[string]struct{})
	for _, field := range DetailOrder(kind) {
		known[strings.ToLower(field)] = struct{}{}
	}
	columns := make(map[int]string)
	for i, header := range rows[0] {
		name := normalizeHeader(header)
		if _, ok := known[strings.ToLower(name)]; ok {
			columns[i] = name
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no recognized columns for %s in header row", kind)
	}

	var parsed []models.CandidateRow
	for i := 1; i < len(rows); i++ {
		row := models.NewCandidateRow(len(parsed))
		empty := true
		for col, field := range columns {
			value := getCellValue(rows[i], col)
			if value != "" {
				empty = false
			}
			row.Set(field, value)
		}
		if empty {
			continue // skip blank trailing rows
		}
		parsed = append(parsed, row)
	}

	return parsed, nil
}

// GenerateTemplate writes an empty upload template for the entity: one
// header per field in storage order.
func (s *ExcelService) GenerateTemplate(kind models.EntityKind, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	name := string(kind)
	sheetName := strings.ToUpper(name[:1]) + name[1:] + " Data"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := DetailOrder(kind)
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	for i := range headers {
		colName := getColumnName(i)
		f.SetColWidth(sheetName, colName, colName, 18)
	}

	instructionsStartRow := 4
	instructions := []string{
		"Instructions:",
		"1. Do not modify the header row. Fill data starting from row 2.",
		"2. Apostrophes and double quotes are not allowed in data cells.",
		"3. Reference columns (units, categories, clients) must match existing values.",
	}
	for i, instruction := range instructions {
		cell := fmt.Sprintf("A%d", instructionsStartRow+i)
		f.SetCellValue(sheetName, cell, instruction)
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

// GenerateValidationReport writes one row per failed cell so the user can
// fix the upload file and try again.
func (s *ExcelService) GenerateValidationReport(kind models.EntityKind, results []models.RowValidationResult, summary models.BatchValidationSummary, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Validation Errors"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := []string{"Row Number", "Status", "Column", "Message"}
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFE6E6"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	row := 2
	for _, r := range results {
		if r.Status == models.RowValid {
			continue
		}
		for _, cellResult := range r.Cells {
			values := []interface{}{r.Index + 1, string(cellResult.Status), cellResult.ColumnName, cellResult.Message}
			for colIdx, value := range values {
				cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
				f.SetCellValue(sheetName, cell, value)
			}
			row++
		}
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 16)
	f.SetColWidth(sheetName, "C", "C", 22)
	f.SetColWidth(sheetName, "D", "D", 60)

	// Summary section below the error rows.
	summaryStartRow := row + 2
	summaryRows := [][]interface{}{
		{"Validation Summary", ""},
		{"Entity", string(kind)},
		{"Total Rows", summary.TotalRows},
		{"Valid Rows", summary.ValidRows},
		{"Duplicate Rows", summary.DuplicateRows},
		{"Missing Data Rows", summary.MissingDataRows},
		{"Mismatch Rows", summary.MismatchRows},
		{"Invalid Content Rows", summary.InvalidContentRows},
	}
	for i, pair := range summaryRows {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+i), pair[0])
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+i), pair[1])
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

// Helper functions
func getCellValue(row []string, index int) string {
	if index < len(row) {
		return strings.TrimSpace(row[index])
	}
	return ""
}

// normalizeHeader collapses a header cell like "Stock Unit" or
// "stock_unit" to the internal field name form "StockUnit".
func normalizeHeader(header string) string {
	header = strings.TrimSpace(header)
	if !strings.ContainsAny(header, " _-") {
		return header
	}
	parts := strings.FieldsFunc(header, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	})
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	formats := []string{
		"01/02/2006",            // MM/DD/YYYY (US format)
		"01-02-06",              // MM-DD-YY (Excel US format with dash)
		"01/02/2006 3:04:05 PM", // MM/DD/YYYY with time
		"01/02/06",              // MM/DD/YY (short year)
		"2006-01-02",            // YYYY-MM-DD (ISO standard)
		"2006/01/02",            // YYYY/MM/DD
		"02-01-2006",            // DD-MM-YYYY (European format)
		"02/01/2006",            // DD/MM/YYYY (European format)
		"Jan 02, 2006",          // Month DD, YYYY
		"02 Jan 2006",           // DD Month YYYY
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}
