package models

import "time"

// UploadSession tracks one uploaded workbook through background import.
type UploadSession struct {
	ID            int        `db:"id" json:"id"`
	SessionCode   string     `db:"session_code" json:"session_code"`
	UserID        int        `db:"user_id" json:"user_id"`
	Username      string     `db:"username" json:"username"`
	EntityKind    EntityKind `db:"entity_kind" json:"entity_kind"`
	GroupID       int        `db:"group_id" json:"group_id"`
	GroupName     string     `db:"group_name" json:"group_name"`
	CompanyID     int        `db:"company_id" json:"company_id"`
	FiscalYear    string     `db:"fiscal_year" json:"fiscal_year"`
	Filename      string     `db:"filename" json:"filename"`
	FilePath      string     `db:"file_path" json:"file_path"`
	TotalRows     int        `db:"total_rows" json:"total_rows"`
	ProcessedRows int        `db:"processed_rows" json:"processed_rows"`
	FailedRows    int        `db:"failed_rows" json:"failed_rows"`
	Status        string     `db:"status" json:"status"`
	ErrorMessage  string     `db:"error_message" json:"error_message"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Upload session statuses.
const (
	UploadStatusPending    = "pending"
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusFailed     = "failed"
)
