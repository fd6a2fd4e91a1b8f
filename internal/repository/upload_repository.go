package repository

import (
	"masterdata-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type UploadRepository struct {
	db *sqlx.DB
}

func NewUploadRepository(db *sqlx.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) CreateSession(session *models.UploadSession) error {
	query := `INSERT INTO upload_sessions (session_code, user_id, username, entity_kind, group_id,
	          group_name, company_id, fiscal_year, filename, file_path, total_rows, status)
	          VALUES (:session_code, :user_id, :username, :entity_kind, :group_id,
	          :group_name, :company_id, :fiscal_year, :filename, :file_path, :total_rows, :status)`
	result, err := r.db.NamedExec(query, session)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	session.ID = int(id)
	return nil
}

func (r *UploadRepository) GetSessionByID(id int) (*models.UploadSession, error) {
	var session models.UploadSession
	query := "SELECT * FROM upload_sessions WHERE id = ? LIMIT 1"
	err := r.db.Get(&session, query, id)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *UploadRepository) GetSessionByCode(code string) (*models.UploadSession, error) {
	var session models.UploadSession
	query := "SELECT * FROM upload_sessions WHERE session_code = ? LIMIT 1"
	err := r.db.Get(&session, query, code)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *UploadRepository) GetSessions(limit, offset int) ([]models.UploadSession, int, error) {
	var sessions []models.UploadSession
	var total int

	err := r.db.Get(&total, "SELECT COUNT(*) FROM upload_sessions")
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM upload_sessions ORDER BY created_at DESC LIMIT ? OFFSET ?"
	err = r.db.Select(&sessions, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *UploadRepository) UpdateSessionStatus(id int, status, errorMessage string) error {
	query := "UPDATE upload_sessions SET status = ?, error_message = ?, updated_at = NOW() WHERE id = ?"
	_, err := r.db.Exec(query, status, errorMessage, id)
	return err
}

func (r *UploadRepository) UpdateSessionProgress(id, totalRows, processedRows, failedRows int) error {
	query := `UPDATE upload_sessions SET total_rows = ?, processed_rows = ?, failed_rows = ?,
	          updated_at = NOW() WHERE id = ?`
	_, err := r.db.Exec(query, totalRows, processedRows, failedRows, id)
	return err
}
