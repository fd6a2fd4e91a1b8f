package service

import (
	"errors"
	"fmt"
	"testing"

	"masterdata-web/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB is the committed state shared across fake transactions.
type fakeDB struct {
	maxNo   int
	nextID  int64
	masters []models.MasterRecord
	details []models.DetailRecord

	failMasterNamed string // InsertMaster fails for this display name
	subGroups       map[string]int64
	categories      map[string]int64
	departments     map[string]int64
	clients         map[string]int64
	salesReps       map[string]int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		subGroups:   map[string]int64{},
		categories:  map[string]int64{},
		departments: map[string]int64{},
		clients:     map[string]int64{},
		salesReps:   map[string]int64{},
	}
}

func (db *fakeDB) store() ImportStore {
	return StoreFunc(func() (ImportTx, error) {
		return &fakeTx{db: db, seq: db.maxNo}, nil
	})
}

// fakeTx buffers writes until Commit; Rollback discards them, including
// the sequence advance.
type fakeTx struct {
	db      *fakeDB
	seq     int
	masters []models.MasterRecord
	details []models.DetailRecord
	done    bool
}

func (t *fakeTx) NextCode(kind models.EntityKind, scope models.ImportScope) (string, int, error) {
	t.seq++
	return fmt.Sprintf("PB%05d", t.seq), t.seq, nil
}

func (t *fakeTx) InsertMaster(m *models.MasterRecord) error {
	if t.db.failMasterNamed != "" && m.DisplayName == t.db.failMasterNamed {
		return errors.New("insert rejected")
	}
	t.db.nextID++
	m.ID = t.db.nextID
	t.masters = append(t.masters, *m)
	return nil
}

func (t *fakeTx) InsertDetail(d *models.DetailRecord) error {
	t.details = append(t.details, *d)
	return nil
}

func lookup(m map[string]int64, name string) (int64, bool, error) {
	id, ok := m[name]
	return id, ok, nil
}

func (t *fakeTx) ResolveSubGroup(groupID int, name string) (int64, bool, error) {
	return lookup(t.db.subGroups, name)
}
func (t *fakeTx) ResolveCategory(name, tag string) (int64, bool, error) {
	return lookup(t.db.categories, name)
}
func (t *fakeTx) ResolveDepartment(name string) (int64, bool, error) {
	return lookup(t.db.departments, name)
}
func (t *fakeTx) ResolveClient(name string) (int64, bool, error) {
	return lookup(t.db.clients, name)
}
func (t *fakeTx) ResolveSalesRep(name string) (int64, bool, error) {
	return lookup(t.db.salesReps, name)
}

func (t *fakeTx) DeleteDetails(kind models.EntityKind, scope models.ImportScope) (int64, error) {
	n := int64(len(t.db.details))
	t.db.details = nil
	return n, nil
}

func (t *fakeTx) DeleteMasters(kind models.EntityKind, scope models.ImportScope) (int64, error) {
	n := int64(len(t.db.masters))
	t.db.masters = nil
	return n, nil
}

func (t *fakeTx) Commit() error {
	t.done = true
	t.db.maxNo = t.seq
	t.db.masters = append(t.db.masters, t.masters...)
	t.db.details = append(t.db.details, t.details...)
	return nil
}

func (t *fakeTx) Rollback() error {
	t.done = true
	return nil
}

type fakeUsers struct {
	username string
	password string
	err      error
}

func (f *fakeUsers) VerifyClearCredentials(username, password string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return username == f.username && password == f.password, nil
}

type fakeAudit struct {
	entries []models.AuditLog
	err     error
}

func (f *fakeAudit) Append(entry *models.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func newImportService(db *fakeDB, users *fakeUsers, audit *fakeAudit) *ImportService {
	if users == nil {
		users = &fakeUsers{}
	}
	if audit == nil {
		audit = &fakeAudit{}
	}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewImportService(db.store(), users, audit, log)
}

func validResult(index int, fields map[string]string) models.RowValidationResult {
	r := models.NewCandidateRow(index)
	for k, v := range fields {
		r.Set(k, v)
	}
	return models.RowValidationResult{Index: index, Row: r, Status: models.RowValid}
}

func sparePartResult(index int, name string) models.RowValidationResult {
	return validResult(index, map[string]string{
		"Name": name, "Group": "Bearings", "Type": "Roller",
		"StockUnit": "PCS", "PurchaseRate": "120",
	})
}

func toolResult(index int, code string) models.RowValidationResult {
	return validResult(index, map[string]string{
		"Name": "Die " + code, "Length": "10", "Width": "5", "Height": "2",
		"ManufacturerItemCode": code, "StockUnit": "PCS",
	})
}

func TestImport_WholeBatchWritesMastersAndDetails(t *testing.T) {
	db := newFakeDB()
	svc := newImportService(db, nil, nil)
	scope := models.ImportScope{GroupID: 3, GroupName: "BEARING SPARES", CompanyID: 1, FiscalYear: "2025-26"}

	results := []models.RowValidationResult{
		sparePartResult(0, "Roller Bearing 6204"),
		sparePartResult(1, "Roller Bearing 6205"),
	}
	result := svc.Import(models.EntitySparePart, scope, results, "stores")

	require.True(t, result.Success, result.Message)
	assert.Equal(t, 2, result.ImportedRows)
	require.Len(t, db.masters, 2)
	assert.Equal(t, "PB00001", db.masters[0].Code)
	assert.Equal(t, "PB00002", db.masters[1].Code)
	assert.Equal(t, 1, db.masters[0].SeqNo)
	assert.Equal(t, 2, db.masters[1].SeqNo)
	assert.Equal(t, "Roller Bearing 6204", db.masters[0].DisplayName)
	assert.Equal(t, "stores", db.masters[0].CreatedBy)

	// Details carry only populated fields, sequenced from 1 in field order.
	var first []models.DetailRecord
	for _, d := range db.details {
		if d.MasterID == db.masters[0].ID {
			first = append(first, d)
		}
	}
	require.Len(t, first, 5)
	for i, d := range first {
		assert.Equal(t, i+1, d.SeqNo)
		assert.NotEmpty(t, d.FieldValue)
	}
	assert.Equal(t, "Name", first[0].FieldName)
	assert.Equal(t, "Group", first[1].FieldName)
}

func TestImport_WholeBatchRollsBackOnAnyFailure(t *testing.T) {
	db := newFakeDB()
	db.failMasterNamed = "Roller Bearing 6205"
	svc := newImportService(db, nil, nil)
	scope := models.ImportScope{GroupID: 3, GroupName: "BEARING SPARES", CompanyID: 1, FiscalYear: "2025-26"}

	results := []models.RowValidationResult{
		sparePartResult(0, "Roller Bearing 6204"),
		sparePartResult(1, "Roller Bearing 6205"),
		sparePartResult(2, "Roller Bearing 6206"),
	}
	result := svc.Import(models.EntitySparePart, scope, results, "stores")

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.ImportedRows)
	assert.Contains(t, result.Message, "row 2")
	assert.Empty(t, db.masters, "nothing committed after rollback")
	assert.Equal(t, 0, db.maxNo, "sequence advance rolled back")
}

func TestImport_PerRowContinuesPastFailuresWithContiguousSequence(t *testing.T) {
	db := newFakeDB()
	db.failMasterNamed = "Die D-2"
	svc := newImportService(db, nil, nil)
	scope := models.ImportScope{GroupID: 8, GroupName: "PUNCHING DIES", CompanyID: 1, FiscalYear: "2025-26"}

	results := []models.RowValidationResult{
		toolResult(0, "D-1"),
		toolResult(1, "D-2"),
		toolResult(2, "D-3"),
	}
	result := svc.Import(models.EntityTool, scope, results, "tooling")

	assert.False(t, result.Success)
	assert.Equal(t, 2, result.ImportedRows)
	assert.Equal(t, 1, result.ErrorRows)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "row 2")

	// The failed row's sequence increment was rolled back, so the third
	// row takes number 2, not 3.
	require.Len(t, db.masters, 2)
	assert.Equal(t, 1, db.masters[0].SeqNo)
	assert.Equal(t, 2, db.masters[1].SeqNo)
	assert.Equal(t, "PB00002", db.masters[1].Code)
}

func TestImport_PerRowSkipsInvalidRows(t *testing.T) {
	db := newFakeDB()
	svc := newImportService(db, nil, nil)
	scope := models.ImportScope{GroupID: 8, GroupName: "PUNCHING DIES", CompanyID: 1, FiscalYear: "2025-26"}

	dup := toolResult(1, "D-1")
	dup.Status = models.RowDuplicate
	dup.Cells = []models.CellValidation{{ColumnName: "ManufacturerItemCode", Status: models.RowDuplicate}}
	missing := toolResult(2, "D-9")
	missing.Status = models.RowMissingData
	missing.Cells = []models.CellValidation{{ColumnName: "Height", Status: models.RowMissingData}}

	results := []models.RowValidationResult{toolResult(0, "D-1"), dup, missing}
	result := svc.Import(models.EntityTool, scope, results, "tooling")

	assert.Equal(t, 1, result.ImportedRows)
	assert.Equal(t, 1, result.DuplicateRows)
	assert.Equal(t, 1, result.ErrorRows)
	require.Len(t, db.masters, 1)
}

func TestImport_ResolvesForeignKeys(t *testing.T) {
	db := newFakeDB()
	db.subGroups["Coated"] = 9
	db.categories["4804"] = 41
	svc := newImportService(db, nil, nil)
	scope := models.ImportScope{GroupID: 5, GroupName: "INK/ADDITIVES", CompanyID: 1, FiscalYear: "2025-26"}

	// Validation already mapped the HSN id onto the row; the sub group is
	// resolved by name. An unknown name stays NULL without failing.
	mapped := validResult(0, map[string]string{
		"Name": "Process Cyan", "SubGroupName": "Coated", "HSNID": "41",
	})
	unknown := validResult(1, map[string]string{
		"Name": "Process Magenta", "SubGroupName": "No Such Group", "HSNDisplayName": "9999",
	})
	result := svc.Import(models.EntityItem, scope, []models.RowValidationResult{mapped, unknown}, "stores")

	require.True(t, result.Success, result.Message)
	require.Len(t, db.masters, 2)

	assert.True(t, db.masters[0].SubGroupID.Valid)
	assert.EqualValues(t, 9, db.masters[0].SubGroupID.Int64)
	assert.True(t, db.masters[0].HSNID.Valid)
	assert.EqualValues(t, 41, db.masters[0].HSNID.Int64)

	assert.False(t, db.masters[1].SubGroupID.Valid)
	assert.False(t, db.masters[1].HSNID.Valid)
}

func TestImport_LedgerEmployeeDateOfBirthNormalized(t *testing.T) {
	db := newFakeDB()
	svc := newImportService(db, nil, nil)
	scope := models.ImportScope{GroupID: 4, GroupName: "EMPLOYEES", CompanyID: 1, FiscalYear: "2025-26"}

	r := validResult(0, map[string]string{
		"Name": "R. Shah", "Address1": "B-2 Staff Colony",
		"DepartmentName": "Press", "DateOfBirth": "02/01/1990",
	})
	result := svc.Import(models.EntityLedger, scope, []models.RowValidationResult{r}, "hr")
	require.True(t, result.Success, result.Message)

	var dob string
	for _, d := range db.details {
		if d.FieldName == "DateOfBirth" {
			dob = d.FieldValue
		}
	}
	assert.Equal(t, "1990-02-01", dob)
}

func TestImport_SynthesizesDescription(t *testing.T) {
	db := newFakeDB()
	svc := newImportService(db, nil, nil)
	scope := models.ImportScope{GroupID: 8, GroupName: "PUNCHING DIES", CompanyID: 1, FiscalYear: "2025-26"}

	result := svc.Import(models.EntityTool, scope, []models.RowValidationResult{toolResult(0, "D-1")}, "tooling")

	require.Equal(t, 1, result.ImportedRows)
	assert.Equal(t, "Length:10, Width:5, Height:2, ManufacturerItemCode:D-1", db.masters[0].Description)
}

func TestClearAll_RejectsBadCredentials(t *testing.T) {
	db := newFakeDB()
	users := &fakeUsers{username: "admin", password: "wipe-it"}
	svc := newImportService(db, users, nil)
	scope := models.ImportScope{GroupID: 3, CompanyID: 1, FiscalYear: "2025-26"}

	_, err := svc.ClearAll(models.EntitySparePart, scope, "admin", "guess", "cleanup")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClearAll_DeletesScopeAndWritesAudit(t *testing.T) {
	db := newFakeDB()
	db.masters = []models.MasterRecord{{ID: 1}, {ID: 2}}
	db.details = []models.DetailRecord{{ID: 1}, {ID: 2}, {ID: 3}}
	users := &fakeUsers{username: "admin", password: "wipe-it"}
	audit := &fakeAudit{}
	svc := newImportService(db, users, audit)
	scope := models.ImportScope{GroupID: 3, CompanyID: 1, FiscalYear: "2025-26"}

	deleted, err := svc.ClearAll(models.EntitySparePart, scope, "admin", "wipe-it", "fiscal year rollover")

	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)
	assert.Empty(t, db.masters)
	assert.Empty(t, db.details)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "admin", audit.entries[0].Username)
	assert.EqualValues(t, 2, audit.entries[0].RowCount)
	assert.Equal(t, "fiscal year rollover", audit.entries[0].Reason)
}

func TestClearAll_AuditFailureIsNotFatal(t *testing.T) {
	db := newFakeDB()
	db.masters = []models.MasterRecord{{ID: 1}}
	users := &fakeUsers{username: "admin", password: "wipe-it"}
	audit := &fakeAudit{err: errors.New("audit table gone")}
	svc := newImportService(db, users, audit)
	scope := models.ImportScope{GroupID: 3, CompanyID: 1, FiscalYear: "2025-26"}

	deleted, err := svc.ClearAll(models.EntitySparePart, scope, "admin", "wipe-it", "")

	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}
