package repository

import (
	"database/sql"
	"errors"
	"strings"

	"masterdata-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type LookupRepository struct {
	db *sqlx.DB
}

func NewLookupRepository(db *sqlx.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

func (r *LookupRepository) Units() ([]string, error) {
	var units []string
	query := "SELECT symbol FROM units ORDER BY symbol"
	err := r.db.Select(&units, query)
	if err != nil {
		return nil, err
	}
	return units, nil
}

func (r *LookupRepository) Categories(tag string) ([]models.NamedRef, error) {
	var refs []models.NamedRef
	query := "SELECT id, display_name AS name FROM categories WHERE tag = ? ORDER BY display_name"
	err := r.db.Select(&refs, query, tag)
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// SubGroups runs the stored per-group query. The query text is stored with
// '#' standing in for the single-quote character; a missing or empty
// template simply yields no sub groups.
func (r *LookupRepository) SubGroups(groupID int) ([]models.NamedRef, error) {
	var tmpl string
	err := r.db.Get(&tmpl, "SELECT query_text FROM subgroup_queries WHERE group_id = ? LIMIT 1", groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	query := expandSubGroupTemplate(tmpl)
	if query == "" {
		return nil, nil
	}

	var refs []models.NamedRef
	err = r.db.Select(&refs, query)
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// expandSubGroupTemplate turns a stored template into executable SQL. The
// storage format uses '#' for the single-quote character; a blank template
// expands to "".
func expandSubGroupTemplate(tmpl string) string {
	return strings.TrimSpace(strings.ReplaceAll(tmpl, "#", "'"))
}

func (r *LookupRepository) CountryStates() ([]models.CountryState, error) {
	var pairs []models.CountryState
	query := "SELECT country, state FROM country_states ORDER BY country, state"
	err := r.db.Select(&pairs, query)
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

func (r *LookupRepository) Clients() ([]models.NamedRef, error) {
	var refs []models.NamedRef
	query := "SELECT id, name FROM clients ORDER BY name"
	err := r.db.Select(&refs, query)
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func (r *LookupRepository) Departments() ([]models.NamedRef, error) {
	var refs []models.NamedRef
	query := "SELECT id, name FROM departments ORDER BY name"
	err := r.db.Select(&refs, query)
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func (r *LookupRepository) SalesReps() ([]models.NamedRef, error) {
	var refs []models.NamedRef
	query := "SELECT id, name FROM sales_reps ORDER BY name"
	err := r.db.Select(&refs, query)
	if err != nil {
		return nil, err
	}
	return refs, nil
}
