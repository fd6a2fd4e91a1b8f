package repository

import (
	"masterdata-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(entry *models.AuditLog) error {
	query := `INSERT INTO audit_logs (username, entity_kind, group_id, row_count, reason)
	          VALUES (:username, :entity_kind, :group_id, :row_count, :reason)`
	result, err := r.db.NamedExec(query, entry)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	entry.ID = id
	return nil
}

func (r *AuditRepository) Recent(limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	query := "SELECT * FROM audit_logs ORDER BY created_at DESC LIMIT ?"
	err := r.db.Select(&entries, query, limit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
