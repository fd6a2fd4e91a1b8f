package models

import "strings"

// ReferenceSets holds the lookup data a validation or import call checks
// cross-reference fields against. Loaded fresh per call so it always
// reflects the current database state; never cached across calls.
//
// Case sensitivity is intentionally asymmetric: unit, category and
// sub-group lookups are case-insensitive on trimmed values, while
// country/state pairs and client names match ordinally. This mirrors the
// behavior of the reference tables they are loaded from.
type ReferenceSets struct {
	Units         map[string]struct{} // key: lower(trim(symbol))
	Categories    map[string]int64    // key: lower(trim(display name)) -> category id
	SubGroups     map[string]int64    // key: lower(trim(name)) -> sub-group id
	CountryStates map[string]struct{} // key: "Country|State", ordinal
	Clients       map[string]int64    // key: name, ordinal
}

// NamedRef is an id/display-name pair from a reference table.
type NamedRef struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CountryState is one valid country/state pair.
type CountryState struct {
	Country string `db:"country" json:"country"`
	State   string `db:"state" json:"state"`
}

func NewReferenceSets() *ReferenceSets {
	return &ReferenceSets{
		Units:         make(map[string]struct{}),
		Categories:    make(map[string]int64),
		SubGroups:     make(map[string]int64),
		CountryStates: make(map[string]struct{}),
		Clients:       make(map[string]int64),
	}
}

// FoldKey normalizes a value for the case-insensitive reference sets.
func FoldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// PairKey builds the ordinal country/state key.
func PairKey(country, state string) string {
	return country + "|" + state
}

// HasUnit reports whether a unit symbol is known (case-insensitive).
func (r *ReferenceSets) HasUnit(symbol string) bool {
	_, ok := r.Units[FoldKey(symbol)]
	return ok
}

// CategoryID resolves a category/HSN display name (case-insensitive).
func (r *ReferenceSets) CategoryID(name string) (int64, bool) {
	id, ok := r.Categories[FoldKey(name)]
	return id, ok
}

// SubGroupID resolves a sub-group name (case-insensitive).
func (r *ReferenceSets) SubGroupID(name string) (int64, bool) {
	id, ok := r.SubGroups[FoldKey(name)]
	return id, ok
}

// HasCountryState reports whether the exact country/state pair exists.
func (r *ReferenceSets) HasCountryState(country, state string) bool {
	_, ok := r.CountryStates[PairKey(country, state)]
	return ok
}

// HasClient reports whether the exact client name exists.
func (r *ReferenceSets) HasClient(name string) bool {
	_, ok := r.Clients[name]
	return ok
}
