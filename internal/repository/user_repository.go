package repository

import (
	"database/sql"
	"errors"

	"masterdata-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	query := "SELECT * FROM users WHERE username = ? LIMIT 1"
	err := r.db.Get(&user, query, username)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(id int) (*models.User, error) {
	var user models.User
	query := "SELECT * FROM users WHERE id = ? LIMIT 1"
	err := r.db.Get(&user, query, id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyClearCredentials checks the bulk-clear credential pair. The clear
// password is a separate column compared byte for byte, not a hash.
func (r *UserRepository) VerifyClearCredentials(username, password string) (bool, error) {
	user, err := r.FindByUsername(username)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !user.IsActive {
		return false, nil
	}
	return user.ClearPassword != "" && user.ClearPassword == password, nil
}

func (r *UserRepository) Create(user *models.User) error {
	query := `INSERT INTO users (name, username, email, password_hash, clear_password, role, is_active)
	          VALUES (:name, :username, :email, :password_hash, :clear_password, :role, :is_active)`
	result, err := r.db.NamedExec(query, user)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	user.ID = int(id)
	return nil
}
