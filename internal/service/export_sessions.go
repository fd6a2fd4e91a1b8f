package service

import (
	"fmt"

	"masterdata-web/internal/models"

	"github.com/xuri/excelize/v2"
)

// ExportSessions writes the upload session history to a workbook.
func (s *ExcelService) ExportSessions(sessions []models.UploadSession, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Upload Sessions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := []string{
		"Session Code", "User", "Entity", "Group", "Fiscal Year", "Filename",
		"Total Rows", "Processed", "Failed", "Status", "Error Message", "Created At",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	for rowIdx, session := range sessions {
		row := rowIdx + 2
		values := []interface{}{
			session.SessionCode,
			session.Username,
			string(session.EntityKind),
			session.GroupName,
			session.FiscalYear,
			session.Filename,
			session.TotalRows,
			session.ProcessedRows,
			session.FailedRows,
			session.Status,
			session.ErrorMessage,
			session.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIdx, value := range values {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 18)
	f.SetColWidth(sheetName, "B", "F", 20)
	f.SetColWidth(sheetName, "K", "K", 40)
	f.SetColWidth(sheetName, "L", "L", 20)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}
