package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"masterdata-web/internal/models"

	"github.com/sirupsen/logrus"
)

// ErrUnauthorized is returned by ClearAll when the supplied credentials do
// not match the stored user record.
var ErrUnauthorized = errors.New("invalid username or password")

// ImportTx is one persistence transaction of the import writer. The
// production implementation wraps *sqlx.Tx (repository.MasterRepository);
// tests substitute an in-memory fake.
type ImportTx interface {
	// NextCode reads and increments the group's sequence under lock and
	// returns the formatted code. Rolling back the transaction reverts the
	// increment, which keeps sequence numbers contiguous across failed rows.
	NextCode(kind models.EntityKind, scope models.ImportScope) (string, int, error)
	InsertMaster(m *models.MasterRecord) error
	InsertDetail(d *models.DetailRecord) error

	// Resolvers map human-readable names to ids with exact-match queries.
	// A missing name is not an error; the foreign key stays NULL.
	ResolveSubGroup(groupID int, name string) (int64, bool, error)
	ResolveCategory(name, tag string) (int64, bool, error)
	ResolveDepartment(name string) (int64, bool, error)
	ResolveClient(name string) (int64, bool, error)
	ResolveSalesRep(name string) (int64, bool, error)

	DeleteDetails(kind models.EntityKind, scope models.ImportScope) (int64, error)
	DeleteMasters(kind models.EntityKind, scope models.ImportScope) (int64, error)

	Commit() error
	Rollback() error
}

// ImportStore opens import transactions.
type ImportStore interface {
	Begin() (ImportTx, error)
}

// StoreFunc adapts a transaction-opening function to ImportStore, the way
// http.HandlerFunc adapts a function to http.Handler.
type StoreFunc func() (ImportTx, error)

func (f StoreFunc) Begin() (ImportTx, error) { return f() }

// CredentialChecker validates the bulk-clear credential pair.
type CredentialChecker interface {
	VerifyClearCredentials(username, password string) (bool, error)
}

// AuditSink records bulk-clear audit entries.
type AuditSink interface {
	Append(entry *models.AuditLog) error
}

// ImportService persists validated batches: one master record plus one
// detail record per populated field, per accepted row. Item, Ledger and
// SparePart batches are all-or-nothing; HSN and Tool commit row by row.
type ImportService struct {
	store ImportStore
	users CredentialChecker
	audit AuditSink
	log   *logrus.Logger
}

func NewImportService(store ImportStore, users CredentialChecker, audit AuditSink, log *logrus.Logger) *ImportService {
	return &ImportService{store: store, users: users, audit: audit, log: log}
}

// Import writes a batch that has already been validated. For whole-batch
// entities the caller must have rejected the batch when the summary was not
// valid; Import does not re-validate. Per-row entities import the valid
// rows individually even when the batch contains invalid ones.
func (s *ImportService) Import(
	kind models.EntityKind,
	scope models.ImportScope,
	results []models.RowValidationResult,
	username string,
) *models.ImportResult {
	if kind.PerRowTransaction() {
		return s.importPerRow(kind, scope, results, username)
	}
	return s.importBatch(kind, scope, results, username)
}

func (s *ImportService) importBatch(kind models.EntityKind, scope models.ImportScope, results []models.RowValidationResult, username string) *models.ImportResult {
	result := &models.ImportResult{TotalRows: len(results)}

	tx, err := s.store.Begin()
	if err != nil {
		result.Message = fmt.Sprintf("failed to start import: %v", err)
		return result
	}

	for _, r := range results {
		if err := s.importRow(tx, kind, scope, r.Row, username); err != nil {
			_ = tx.Rollback()
			result.ImportedRows = 0
			result.ErrorRows = len(results)
			result.Message = fmt.Sprintf("import rolled back: row %d: %v", r.Index+1, err)
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", r.Index+1, err))
			return result
		}
		result.ImportedRows++
	}

	if err := tx.Commit(); err != nil {
		result.ImportedRows = 0
		result.ErrorRows = len(results)
		result.Message = fmt.Sprintf("import commit failed: %v", err)
		return result
	}

	result.Success = true
	result.Message = fmt.Sprintf("%d rows imported", result.ImportedRows)
	return result
}

func (s *ImportService) importPerRow(kind models.EntityKind, scope models.ImportScope, results []models.RowValidationResult, username string) *models.ImportResult {
	result := &models.ImportResult{TotalRows: len(results)}

	for _, r := range results {
		if r.Status != models.RowValid {
			if r.HasStatus(models.RowDuplicate) {
				result.DuplicateRows++
			} else {
				result.ErrorRows++
				result.Errors = append(result.Errors, fmt.Sprintf("row %d skipped: %s", r.Index+1, r.Status))
			}
			continue
		}

		tx, err := s.store.Begin()
		if err != nil {
			result.ErrorRows++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", r.Index+1, err))
			continue
		}

		if err := s.importRow(tx, kind, scope, r.Row, username); err != nil {
			// Rollback reverts this row's sequence increment too, so the
			// next successful row does not skip a number.
			_ = tx.Rollback()
			result.ErrorRows++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", r.Index+1, err))
			s.log.WithError(err).WithFields(logrus.Fields{
				"entity": kind,
				"row":    r.Index + 1,
			}).Warn("row import failed, continuing")
			continue
		}

		if err := tx.Commit(); err != nil {
			result.ErrorRows++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", r.Index+1, err))
			continue
		}
		result.ImportedRows++
	}

	result.Success = result.ErrorRows == 0
	result.Message = fmt.Sprintf("%d of %d rows imported", result.ImportedRows, result.TotalRows)
	return result
}

// importRow resolves cross-references, generates the code and writes the
// master record plus its detail records inside the given transaction.
func (s *ImportService) importRow(tx ImportTx, kind models.EntityKind, scope models.ImportScope, row models.CandidateRow, username string) error {
	master := &models.MasterRecord{
		EntityKind:  kind,
		GroupID:     scope.GroupID,
		CompanyID:   scope.CompanyID,
		FiscalYear:  scope.FiscalYear,
		DisplayName: row.Get(DisplayNameField(kind)),
		CreatedBy:   username,
	}

	if err := s.resolveForeignKeys(tx, kind, scope, row, master); err != nil {
		return err
	}

	code, seq, err := tx.NextCode(kind, scope)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	master.Code = code
	master.SeqNo = seq
	master.Description = synthesizeDescription(kind, row)

	if err := tx.InsertMaster(master); err != nil {
		return fmt.Errorf("insert master: %w", err)
	}

	seqNo := 0
	for _, field := range DetailOrder(kind) {
		value := row.Get(field)
		if value == "" {
			continue
		}
		if kind == models.EntityLedger && field == "DateOfBirth" {
			value = formatDateOfBirth(value)
		}
		seqNo++
		detail := &models.DetailRecord{
			MasterID:   master.ID,
			EntityKind: kind,
			FieldName:  field,
			FieldValue: value,
			SeqNo:      seqNo,
			GroupID:    scope.GroupID,
			CompanyID:  scope.CompanyID,
			FiscalYear: scope.FiscalYear,
		}
		if err := tx.InsertDetail(detail); err != nil {
			return fmt.Errorf("insert detail %s: %w", field, err)
		}
	}

	return nil
}

// resolveForeignKeys maps the row's human-readable references onto the
// master record. Validation may already have mapped Item sub-group and HSN
// ids onto the row; those take precedence over a fresh lookup. Unresolved
// names are tolerated and the key stays NULL.
func (s *ImportService) resolveForeignKeys(tx ImportTx, kind models.EntityKind, scope models.ImportScope, row models.CandidateRow, master *models.MasterRecord) error {
	switch kind {
	case models.EntityItem:
		if id, ok := mappedID(row, "SubGroupID"); ok {
			master.SubGroupID = nullInt(id)
		} else if name := row.Get("SubGroupName"); name != "" {
			id, found, err := tx.ResolveSubGroup(scope.GroupID, name)
			if err != nil {
				return fmt.Errorf("resolve sub group: %w", err)
			}
			if found {
				master.SubGroupID = nullInt(id)
			}
		}
		if err := s.resolveHSN(tx, kind, row, master); err != nil {
			return err
		}

	case models.EntityTool, models.EntitySparePart:
		if err := s.resolveHSN(tx, kind, row, master); err != nil {
			return err
		}

	case models.EntityLedger:
		if name := row.Get("DepartmentName"); name != "" {
			id, found, err := tx.ResolveDepartment(name)
			if err != nil {
				return fmt.Errorf("resolve department: %w", err)
			}
			if found {
				master.DepartmentID = nullInt(id)
			}
		}
		if name := row.Get("ClientName"); name != "" {
			id, found, err := tx.ResolveClient(name)
			if err != nil {
				return fmt.Errorf("resolve client: %w", err)
			}
			if found {
				master.ClientID = nullInt(id)
			}
		}
		if name := row.Get("SalesRepName"); name != "" {
			id, found, err := tx.ResolveSalesRep(name)
			if err != nil {
				return fmt.Errorf("resolve sales representative: %w", err)
			}
			if found {
				master.SalesRepID = nullInt(id)
			}
		}
	}
	return nil
}

func (s *ImportService) resolveHSN(tx ImportTx, kind models.EntityKind, row models.CandidateRow, master *models.MasterRecord) error {
	if id, ok := mappedID(row, "HSNID"); ok {
		master.HSNID = nullInt(id)
		return nil
	}
	name := row.Get("HSNDisplayName")
	if name == "" {
		return nil
	}
	id, found, err := tx.ResolveCategory(name, CategoryTag(kind))
	if err != nil {
		return fmt.Errorf("resolve HSN: %w", err)
	}
	if found {
		master.HSNID = nullInt(id)
	}
	return nil
}

// ClearAll deletes every master and detail row in scope after checking the
// credential pair by exact equality. The audit write after a successful
// delete is best-effort and never fails the operation.
func (s *ImportService) ClearAll(kind models.EntityKind, scope models.ImportScope, username, password, reason string) (int64, error) {
	ok, err := s.users.VerifyClearCredentials(username, password)
	if err != nil {
		return 0, fmt.Errorf("verify credentials: %w", err)
	}
	if !ok {
		return 0, ErrUnauthorized
	}

	tx, err := s.store.Begin()
	if err != nil {
		return 0, fmt.Errorf("start clear: %w", err)
	}

	// Details first: they reference the masters.
	if _, err := tx.DeleteDetails(kind, scope); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete details: %w", err)
	}
	deleted, err := tx.DeleteMasters(kind, scope)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete masters: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit clear: %w", err)
	}

	entry := &models.AuditLog{
		Username:   username,
		EntityKind: kind,
		GroupID:    scope.GroupID,
		RowCount:   deleted,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
	if err := s.audit.Append(entry); err != nil {
		s.log.WithError(err).Warn("audit write failed after clear")
	}

	return deleted, nil
}

// synthesizeDescription builds the free-text description some entities
// carry: "Field:value, Field:value, ...".
func synthesizeDescription(kind models.EntityKind, row models.CandidateRow) string {
	fields := DescriptionFields(kind)
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if value := row.Get(field); value != "" {
			parts = append(parts, fmt.Sprintf("%s:%s", field, value))
		}
	}
	return strings.Join(parts, ", ")
}

// formatDateOfBirth normalizes a spreadsheet date to yyyy-MM-dd; values
// that cannot be parsed are stored as received.
func formatDateOfBirth(value string) string {
	t, err := parseDate(value)
	if err != nil {
		return value
	}
	return t.Format("2006-01-02")
}

func mappedID(row models.CandidateRow, field string) (int64, bool) {
	v := row.Get(field)
	if v == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func nullInt(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: true}
}
