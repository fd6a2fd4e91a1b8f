package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"masterdata-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type MasterRepository struct {
	db *sqlx.DB
}

func NewMasterRepository(db *sqlx.DB) *MasterRepository {
	return &MasterRepository{db: db}
}

// Begin opens a write transaction for the import service.
func (r *MasterRepository) Begin() (*MasterTx, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	return &MasterTx{tx: tx}, nil
}

func (r *MasterRepository) FindAll(kind models.EntityKind, scope models.ImportScope, limit, offset int, search string) ([]models.MasterRecord, int, error) {
	var records []models.MasterRecord
	var total int

	whereClause := "WHERE entity_kind = ? AND group_id = ? AND company_id = ? AND fiscal_year = ? AND is_deleted = 0"
	args := []interface{}{kind, scope.GroupID, scope.CompanyID, scope.FiscalYear}

	if search != "" {
		whereClause += " AND (code LIKE ? OR display_name LIKE ?)"
		searchPattern := "%" + search + "%"
		args = append(args, searchPattern, searchPattern)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM master_records %s", whereClause)
	err := r.db.Get(&total, countQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT *
		FROM master_records %s
		ORDER BY seq_no
		LIMIT ? OFFSET ?`, whereClause)
	args = append(args, limit, offset)
	err = r.db.Select(&records, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *MasterRepository) FindByID(kind models.EntityKind, id int64) (*models.MasterRecord, error) {
	var record models.MasterRecord
	query := "SELECT * FROM master_records WHERE entity_kind = ? AND id = ? LIMIT 1"
	err := r.db.Get(&record, query, kind, id)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *MasterRepository) FindDetails(masterID int64) ([]models.DetailRecord, error) {
	var details []models.DetailRecord
	query := "SELECT * FROM master_details WHERE master_id = ? ORDER BY seq_no"
	err := r.db.Select(&details, query, masterID)
	if err != nil {
		return nil, err
	}
	return details, nil
}

// ListExistingRows pivots the stored master and detail records of a scope
// back into candidate-row form so already-imported data can take part in
// duplicate detection against a new batch.
func (r *MasterRepository) ListExistingRows(kind models.EntityKind, scope models.ImportScope) ([]models.CandidateRow, error) {
	type pivot struct {
		MasterID   int64  `db:"master_id"`
		FieldName  string `db:"field_name"`
		FieldValue string `db:"field_value"`
	}
	var cells []pivot
	query := `
		SELECT d.master_id, d.field_name, d.field_value
		FROM master_details d
		JOIN master_records m ON m.id = d.master_id
		WHERE m.entity_kind = ? AND m.group_id = ? AND m.company_id = ? AND m.fiscal_year = ? AND m.is_deleted = 0
		ORDER BY d.master_id, d.seq_no`
	err := r.db.Select(&cells, query, kind, scope.GroupID, scope.CompanyID, scope.FiscalYear)
	if err != nil {
		return nil, err
	}

	var rows []models.CandidateRow
	var currentID int64
	for _, cell := range cells {
		if cell.MasterID != currentID {
			rows = append(rows, models.NewCandidateRow(len(rows)))
			currentID = cell.MasterID
		}
		rows[len(rows)-1].Set(cell.FieldName, cell.FieldValue)
	}
	return rows, nil
}

func (r *MasterRepository) SoftDelete(kind models.EntityKind, id int64) error {
	query := "UPDATE master_records SET is_deleted = 1, updated_at = NOW() WHERE entity_kind = ? AND id = ?"
	result, err := r.db.Exec(query, kind, id)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *MasterRepository) FindGroups(kind models.EntityKind) ([]models.EntityGroup, error) {
	var groups []models.EntityGroup
	query := "SELECT * FROM entity_groups WHERE entity_kind = ? ORDER BY name"
	err := r.db.Select(&groups, query, kind)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *MasterRepository) FindGroup(kind models.EntityKind, id int) (*models.EntityGroup, error) {
	var group models.EntityGroup
	query := "SELECT * FROM entity_groups WHERE entity_kind = ? AND id = ? LIMIT 1"
	err := r.db.Get(&group, query, kind, id)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// MasterTx is one import transaction over the master data tables.
type MasterTx struct {
	tx *sqlx.Tx
}

// NextCode locks the group row, increments its high-water number and
// returns the formatted code. The row lock serializes concurrent imports
// into the same group; a rollback releases both the lock and the
// increment.
func (t *MasterTx) NextCode(kind models.EntityKind, scope models.ImportScope) (string, int, error) {
	var group models.EntityGroup
	query := "SELECT * FROM entity_groups WHERE entity_kind = ? AND id = ? FOR UPDATE"
	err := t.tx.Get(&group, query, kind, scope.GroupID)
	if err != nil {
		return "", 0, fmt.Errorf("load group %d: %w", scope.GroupID, err)
	}

	next := group.MaxNo + 1
	_, err = t.tx.Exec("UPDATE entity_groups SET max_no = ? WHERE id = ?", next, group.ID)
	if err != nil {
		return "", 0, fmt.Errorf("advance group sequence: %w", err)
	}

	return formatCode(codePrefix(kind, &group), next), next, nil
}

// codePrefix picks the record code prefix for a group. Tool codes derive
// theirs from the first two letters of the group name instead of the
// stored prefix.
func codePrefix(kind models.EntityKind, group *models.EntityGroup) string {
	if kind != models.EntityTool {
		return group.CodePrefix
	}
	name := strings.ToUpper(group.Name)
	if len(name) >= 2 {
		return name[:2]
	}
	return name
}

func formatCode(prefix string, seq int) string {
	return fmt.Sprintf("%s%05d", prefix, seq)
}

func (t *MasterTx) InsertMaster(m *models.MasterRecord) error {
	query := `INSERT INTO master_records
	          (entity_kind, group_id, company_id, fiscal_year, code, seq_no, display_name, description,
	           sub_group_id, hsn_id, department_id, client_id, sales_rep_id, is_deleted, created_by)
	          VALUES (:entity_kind, :group_id, :company_id, :fiscal_year, :code, :seq_no, :display_name, :description,
	           :sub_group_id, :hsn_id, :department_id, :client_id, :sales_rep_id, :is_deleted, :created_by)`
	result, err := t.tx.NamedExec(query, m)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	m.ID = id
	return nil
}

func (t *MasterTx) InsertDetail(d *models.DetailRecord) error {
	query := `INSERT INTO master_details
	          (master_id, entity_kind, field_name, field_value, seq_no, group_id, company_id, fiscal_year)
	          VALUES (:master_id, :entity_kind, :field_name, :field_value, :seq_no, :group_id, :company_id, :fiscal_year)`
	result, err := t.tx.NamedExec(query, d)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	d.ID = id
	return nil
}

// Sub group and category names are matched case-insensitively; client,
// department and sales representative names are matched exactly. This
// mirrors how the reference sets are keyed during validation.

func (t *MasterTx) ResolveSubGroup(groupID int, name string) (int64, bool, error) {
	return t.resolveID("SELECT id FROM sub_groups WHERE group_id = ? AND LOWER(name) = LOWER(?) LIMIT 1", groupID, name)
}

func (t *MasterTx) ResolveCategory(name, tag string) (int64, bool, error) {
	return t.resolveID("SELECT id FROM categories WHERE tag = ? AND LOWER(display_name) = LOWER(?) LIMIT 1", tag, name)
}

func (t *MasterTx) ResolveDepartment(name string) (int64, bool, error) {
	return t.resolveID("SELECT id FROM departments WHERE name = ? LIMIT 1", name)
}

func (t *MasterTx) ResolveClient(name string) (int64, bool, error) {
	return t.resolveID("SELECT id FROM clients WHERE name = ? LIMIT 1", name)
}

func (t *MasterTx) ResolveSalesRep(name string) (int64, bool, error) {
	return t.resolveID("SELECT id FROM sales_reps WHERE name = ? LIMIT 1", name)
}

func (t *MasterTx) resolveID(query string, args ...interface{}) (int64, bool, error) {
	var id int64
	err := t.tx.Get(&id, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (t *MasterTx) DeleteDetails(kind models.EntityKind, scope models.ImportScope) (int64, error) {
	query := "DELETE FROM master_details WHERE entity_kind = ? AND group_id = ? AND company_id = ? AND fiscal_year = ?"
	result, err := t.tx.Exec(query, kind, scope.GroupID, scope.CompanyID, scope.FiscalYear)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (t *MasterTx) DeleteMasters(kind models.EntityKind, scope models.ImportScope) (int64, error) {
	query := "DELETE FROM master_records WHERE entity_kind = ? AND group_id = ? AND company_id = ? AND fiscal_year = ?"
	result, err := t.tx.Exec(query, kind, scope.GroupID, scope.CompanyID, scope.FiscalYear)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (t *MasterTx) Commit() error   { return t.tx.Commit() }
func (t *MasterTx) Rollback() error { return t.tx.Rollback() }
