package service

import (
	"testing"

	"masterdata-web/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDuplicateKey_BlankComponentsYieldNoKey(t *testing.T) {
	d := NewDuplicateDetector()

	empty := models.NewCandidateRow(0)
	assert.Equal(t, "", d.Key(empty, models.EntityItem, "REEL"),
		"a row with no key material never collides")

	zeros := row(map[string]string{"Length": "0", "Width": "0", "Height": "0", "ManufacturerItemCode": ""})
	assert.Equal(t, "", d.Key(zeros, models.EntityTool, "DIES"))
}

func TestDuplicateKey_ToolDimensionsAndCode(t *testing.T) {
	d := NewDuplicateDetector()

	a := row(map[string]string{"Length": "10", "Width": "5", "Height": "2", "ManufacturerItemCode": "MC-9"})
	b := row(map[string]string{"Length": " 10 ", "Width": "5", "Height": "2", "ManufacturerItemCode": "mc-9"})
	c := row(map[string]string{"Length": "10", "Width": "5", "Height": "3", "ManufacturerItemCode": "MC-9"})

	assert.True(t, d.IsDuplicate(a, b, models.EntityTool, "DIES"))
	assert.False(t, d.IsDuplicate(a, c, models.EntityTool, "DIES"))
}

func TestDuplicateKey_LedgerBranchesUseDifferentKeys(t *testing.T) {
	d := NewDuplicateDetector()

	a := row(map[string]string{"Name": "R. Shah", "Address1": "B-2", "DepartmentName": "Press", "TaxId": "X1"})
	b := row(map[string]string{"Name": "R. Shah", "Address1": "B-2", "DepartmentName": "Press", "TaxId": "X2"})

	// Employee key ignores TaxId; the general key includes it.
	assert.True(t, d.IsDuplicate(a, b, models.EntityLedger, "EMPLOYEES"))
	assert.False(t, d.IsDuplicate(a, b, models.EntityLedger, "SUNDRY CREDITORS"))
}

func TestDuplicateKey_HSNIsDisplayNameOnly(t *testing.T) {
	d := NewDuplicateDetector()

	a := row(map[string]string{"DisplayName": "4804", "ProductCategory": "Raw Material"})
	b := row(map[string]string{"DisplayName": "4804", "ProductCategory": "Consumable"})

	assert.True(t, d.IsDuplicate(a, b, models.EntityHSN, "ANY GROUP"))
}
