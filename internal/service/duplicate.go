package service

import (
	"strings"

	"masterdata-web/internal/models"
)

// DuplicateDetector compares candidate rows on the composite key configured
// for an entity/group. All comparisons are whitespace-trimmed and
// case-insensitive (the selectors fold case themselves).
type DuplicateDetector struct{}

func NewDuplicateDetector() *DuplicateDetector {
	return &DuplicateDetector{}
}

// Key builds the joined composite key for a row. Rows whose key fields are
// all blank produce an empty key and never collide.
func (d *DuplicateDetector) Key(row models.CandidateRow, kind models.EntityKind, groupName string) string {
	selectors := DuplicateKey(kind, groupName)
	parts := make([]string, 0, len(selectors))
	empty := true
	for _, sel := range selectors {
		v := sel.Key(row)
		if v != "" && v != "0" {
			empty = false
		}
		parts = append(parts, v)
	}
	if empty {
		return ""
	}
	return strings.Join(parts, "\x1f")
}

// IsDuplicate reports whether two rows collide under the entity's key.
func (d *DuplicateDetector) IsDuplicate(a, b models.CandidateRow, kind models.EntityKind, groupName string) bool {
	ka := d.Key(a, kind, groupName)
	if ka == "" {
		return false
	}
	return ka == d.Key(b, kind, groupName)
}
