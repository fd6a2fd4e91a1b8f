package service

import (
	"errors"
	"testing"

	"masterdata-web/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookupSource struct {
	units       []string
	categories  []models.NamedRef
	subGroups   []models.NamedRef
	pairs       []models.CountryState
	clients     []models.NamedRef
	subGroupErr error
	unitsErr    error

	categoriesTag string
}

func (f *fakeLookupSource) Units() ([]string, error) {
	return f.units, f.unitsErr
}

func (f *fakeLookupSource) Categories(tag string) ([]models.NamedRef, error) {
	f.categoriesTag = tag
	return f.categories, nil
}

func (f *fakeLookupSource) SubGroups(groupID int) ([]models.NamedRef, error) {
	return f.subGroups, f.subGroupErr
}

func (f *fakeLookupSource) CountryStates() ([]models.CountryState, error) {
	return f.pairs, nil
}

func (f *fakeLookupSource) Clients() ([]models.NamedRef, error) {
	return f.clients, nil
}

func TestLoadReferenceSets_LoadsOnlyWhatTheEntityChecks(t *testing.T) {
	source := &fakeLookupSource{
		units:      []string{" KG ", "Pcs"},
		categories: []models.NamedRef{{ID: 41, Name: "4804"}},
		subGroups:  []models.NamedRef{{ID: 9, Name: "Coated"}},
		pairs:      []models.CountryState{{Country: "India", State: "Gujarat"}},
		clients:    []models.NamedRef{{ID: 3, Name: "Acme"}},
	}
	svc := NewLookupService(source)

	refs, err := svc.LoadReferenceSets(models.EntityItem, models.ImportScope{GroupID: 5})
	require.NoError(t, err)

	assert.True(t, refs.HasUnit("kg"), "unit keys are folded")
	assert.True(t, refs.HasUnit("PCS"))
	_, ok := refs.CategoryID("4804")
	assert.True(t, ok)
	id, ok := refs.SubGroupID("COATED")
	assert.True(t, ok)
	assert.EqualValues(t, 9, id)

	// Item checks no country/state or client sets, so they stay empty even
	// though the source has data.
	assert.False(t, refs.HasCountryState("India", "Gujarat"))
	assert.False(t, refs.HasClient("Acme"))
}

func TestLoadReferenceSets_ToolCategoriesAreTagged(t *testing.T) {
	source := &fakeLookupSource{units: []string{"PCS"}}
	svc := NewLookupService(source)

	_, err := svc.LoadReferenceSets(models.EntityTool, models.ImportScope{GroupID: 8})
	require.NoError(t, err)
	assert.Equal(t, "Tool", source.categoriesTag)
}

func TestLoadReferenceSets_SubGroupFailureMeansEmptySet(t *testing.T) {
	source := &fakeLookupSource{
		units:       []string{"KG"},
		categories:  []models.NamedRef{{ID: 41, Name: "4804"}},
		subGroupErr: errors.New("stored query is malformed"),
	}
	svc := NewLookupService(source)

	refs, err := svc.LoadReferenceSets(models.EntityItem, models.ImportScope{GroupID: 5})
	require.NoError(t, err, "a broken sub-group query is not fatal")
	_, ok := refs.SubGroupID("anything")
	assert.False(t, ok)
}

func TestLoadReferenceSets_OtherFailuresPropagate(t *testing.T) {
	source := &fakeLookupSource{unitsErr: errors.New("connection lost")}
	svc := NewLookupService(source)

	_, err := svc.LoadReferenceSets(models.EntityHSN, models.ImportScope{GroupID: 1})
	assert.Error(t, err)
}
