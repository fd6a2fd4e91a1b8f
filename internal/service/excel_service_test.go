package service

import (
	"fmt"
	"path/filepath"
	"testing"

	"masterdata-web/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, headers []string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		require.NoError(t, f.SetCellValue(sheet, cell, header))
	}
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), rowIdx+2)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	path := filepath.Join(t.TempDir(), "upload.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParseRows_MatchesHeadersByName(t *testing.T) {
	svc := NewExcelService()

	path := writeWorkbook(t,
		[]string{"Name", "Group", "Type", "Ignored Column", "Stock Unit"},
		[][]interface{}{
			{"Roller Bearing 6204", "Bearings", "Roller", "x", "PCS"},
			{"Roller Bearing 6205", "Bearings", "Roller", "y", "PCS"},
		})

	rows, err := svc.ParseRows(path, models.EntitySparePart)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Roller Bearing 6204", rows[0].Get("Name"))
	assert.Equal(t, "PCS", rows[0].Get("StockUnit"), "spaced header maps to the field name")
	assert.Equal(t, "", rows[0].Get("Ignored Column"))
	assert.Equal(t, 1, rows[1].Index)
}

func TestParseRows_SkipsBlankRows(t *testing.T) {
	svc := NewExcelService()

	path := writeWorkbook(t,
		[]string{"Name", "Group", "Type"},
		[][]interface{}{
			{"Roller Bearing 6204", "Bearings", "Roller"},
			{"", "", ""},
			{"Roller Bearing 6205", "Bearings", "Roller"},
		})

	rows, err := svc.ParseRows(path, models.EntitySparePart)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Roller Bearing 6205", rows[1].Get("Name"))
}

func TestParseRows_RejectsUnrecognizedHeaders(t *testing.T) {
	svc := NewExcelService()

	path := writeWorkbook(t,
		[]string{"Completely", "Unrelated", "Headers"},
		[][]interface{}{{"a", "b", "c"}})

	_, err := svc.ParseRows(path, models.EntitySparePart)
	assert.Error(t, err)
}

func TestGenerateTemplateRoundTrip(t *testing.T) {
	svc := NewExcelService()

	path := filepath.Join(t.TempDir(), "template.xlsx")
	require.NoError(t, svc.GenerateTemplate(models.EntityHSN, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, DetailOrder(models.EntityHSN), rows[0][:len(DetailOrder(models.EntityHSN))])
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Name", "Name"},
		{"Stock Unit", "StockUnit"},
		{"stock_unit", "StockUnit"},
		{"HSNDisplayName", "HSNDisplayName"},
		{"manufacturer-item-code", "ManufacturerItemCode"},
		{"  Width  ", "Width"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeHeader(tc.in))
		})
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-01-15", "01/15/2024", "15 Jan 2024"} {
		got, err := parseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, "2024-01-15", got.Format("2006-01-02"))
	}

	_, err := parseDate("not a date")
	assert.Error(t, err)
}
