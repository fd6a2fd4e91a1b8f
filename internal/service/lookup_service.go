package service

import (
	"fmt"

	"masterdata-web/internal/models"
	"masterdata-web/internal/utils"
)

// LookupSource supplies the reference data that cross-reference checks run
// against. Implemented by repository.LookupRepository.
type LookupSource interface {
	Units() ([]string, error)
	Categories(tag string) ([]models.NamedRef, error)
	SubGroups(groupID int) ([]models.NamedRef, error)
	CountryStates() ([]models.CountryState, error)
	Clients() ([]models.NamedRef, error)
}

// LookupService loads the reference sets an entity's checks need. Sets are
// loaded fresh on every call so validation always sees the current
// database state.
type LookupService struct {
	source LookupSource
}

func NewLookupService(source LookupSource) *LookupService {
	return &LookupService{source: source}
}

// LoadReferenceSets loads only the sets the entity's lookup checks use.
func (s *LookupService) LoadReferenceSets(kind models.EntityKind, scope models.ImportScope) (*models.ReferenceSets, error) {
	refs := models.NewReferenceSets()

	needed := map[RefSet]bool{}
	for _, check := range LookupChecks(kind) {
		needed[check.Set] = true
	}

	if needed[RefUnits] {
		units, err := s.source.Units()
		if err != nil {
			return nil, fmt.Errorf("load units: %w", err)
		}
		for _, u := range units {
			refs.Units[models.FoldKey(u)] = struct{}{}
		}
	}

	if needed[RefCategories] {
		categories, err := s.source.Categories(CategoryTag(kind))
		if err != nil {
			return nil, fmt.Errorf("load categories: %w", err)
		}
		for _, c := range categories {
			refs.Categories[models.FoldKey(c.Name)] = c.ID
		}
	}

	if needed[RefSubGroups] {
		// Sub groups come from a stored per-group dynamic query; a missing
		// or broken template means "no valid values", never an error.
		subGroups, err := s.source.SubGroups(scope.GroupID)
		if err != nil {
			utils.GetLogger().WithError(err).WithField("group_id", scope.GroupID).
				Warn("sub group lookup failed, treating as empty")
		}
		for _, sg := range subGroups {
			refs.SubGroups[models.FoldKey(sg.Name)] = sg.ID
		}
	}

	if needed[RefCountryState] {
		pairs, err := s.source.CountryStates()
		if err != nil {
			return nil, fmt.Errorf("load country/state pairs: %w", err)
		}
		for _, p := range pairs {
			refs.CountryStates[models.PairKey(p.Country, p.State)] = struct{}{}
		}
	}

	if needed[RefClients] {
		clients, err := s.source.Clients()
		if err != nil {
			return nil, fmt.Errorf("load clients: %w", err)
		}
		for _, c := range clients {
			refs.Clients[c.Name] = c.ID
		}
	}

	return refs, nil
}
