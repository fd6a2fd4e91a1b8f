package models

import (
	"database/sql"
	"time"
)

// MasterRecord is the canonical persisted row for one business entity.
// Entity-specific attributes live in the attached DetailRecords; the master
// carries the generated code, the per-group sequence number and the foreign
// keys resolved at import time.
type MasterRecord struct {
	ID          int64      `db:"id" json:"id"`
	EntityKind  EntityKind `db:"entity_kind" json:"entity_kind"`
	GroupID     int        `db:"group_id" json:"group_id"`
	CompanyID   int        `db:"company_id" json:"company_id"`
	FiscalYear  string     `db:"fiscal_year" json:"fiscal_year"`
	Code        string     `db:"code" json:"code"`
	SeqNo       int        `db:"seq_no" json:"seq_no"`
	DisplayName string     `db:"display_name" json:"display_name"`
	Description string     `db:"description" json:"description"`

	// Cross-references resolved from human-readable names during import.
	// Unresolved names stay NULL rather than failing the row.
	SubGroupID   sql.NullInt64 `db:"sub_group_id" json:"sub_group_id"`
	HSNID        sql.NullInt64 `db:"hsn_id" json:"hsn_id"`
	DepartmentID sql.NullInt64 `db:"department_id" json:"department_id"`
	ClientID     sql.NullInt64 `db:"client_id" json:"client_id"`
	SalesRepID   sql.NullInt64 `db:"sales_rep_id" json:"sales_rep_id"`

	IsDeleted bool      `db:"is_deleted" json:"is_deleted"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DetailRecord is a key/value row attached to a MasterRecord. Values are
// always stored as text; SeqNo preserves the entity's field order.
type DetailRecord struct {
	ID         int64      `db:"id" json:"id"`
	MasterID   int64      `db:"master_id" json:"master_id"`
	EntityKind EntityKind `db:"entity_kind" json:"entity_kind"`
	FieldName  string     `db:"field_name" json:"field_name"`
	FieldValue string     `db:"field_value" json:"field_value"`
	SeqNo      int        `db:"seq_no" json:"seq_no"`
	GroupID    int        `db:"group_id" json:"group_id"`
	CompanyID  int        `db:"company_id" json:"company_id"`
	FiscalYear string     `db:"fiscal_year" json:"fiscal_year"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// EntityGroup is the classification a batch is imported under. MaxNo is the
// high-water sequence number the code generator increments.
type EntityGroup struct {
	ID         int        `db:"id" json:"id"`
	EntityKind EntityKind `db:"entity_kind" json:"entity_kind"`
	Name       string     `db:"name" json:"name"`
	CodePrefix string     `db:"code_prefix" json:"code_prefix"`
	MaxNo      int        `db:"max_no" json:"max_no"`
}

// ImportResult reports the outcome of an import call.
type ImportResult struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	TotalRows     int      `json:"total_rows"`
	ImportedRows  int      `json:"imported_rows"`
	DuplicateRows int      `json:"duplicate_rows"`
	ErrorRows     int      `json:"error_rows"`
	Errors        []string `json:"errors,omitempty"`
}

// AuditLog records one bulk-clear operation: who, when, which scope, how
// many rows, and why.
type AuditLog struct {
	ID         int64      `db:"id" json:"id"`
	Username   string     `db:"username" json:"username"`
	EntityKind EntityKind `db:"entity_kind" json:"entity_kind"`
	GroupID    int        `db:"group_id" json:"group_id"`
	RowCount   int64      `db:"row_count" json:"row_count"`
	Reason     string     `db:"reason" json:"reason"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
