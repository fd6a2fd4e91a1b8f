package models

import (
	"fmt"
	"strings"
)

// EntityKind identifies one of the master data families handled by the
// validation and import engine.
type EntityKind string

const (
	EntityItem      EntityKind = "item"
	EntityLedger    EntityKind = "ledger"
	EntityTool      EntityKind = "tool"
	EntitySparePart EntityKind = "sparepart"
	EntityHSN       EntityKind = "hsn"
)

// AllEntityKinds lists every supported entity kind.
var AllEntityKinds = []EntityKind{
	EntityItem,
	EntityLedger,
	EntityTool,
	EntitySparePart,
	EntityHSN,
}

// ParseEntityKind converts a route/path segment into an EntityKind.
func ParseEntityKind(s string) (EntityKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "item", "items":
		return EntityItem, nil
	case "ledger", "ledgers":
		return EntityLedger, nil
	case "tool", "tools":
		return EntityTool, nil
	case "sparepart", "spareparts", "spare-part", "spare-parts":
		return EntitySparePart, nil
	case "hsn", "hsns":
		return EntityHSN, nil
	}
	return "", fmt.Errorf("unknown entity kind: %q", s)
}

// PerRowTransaction reports whether imports for this entity commit row by
// row instead of wrapping the whole batch in one transaction.
func (k EntityKind) PerRowTransaction() bool {
	return k == EntityHSN || k == EntityTool
}

// ImportScope carries the group/company/fiscal-year context a batch is
// validated and imported under.
type ImportScope struct {
	GroupID    int    `json:"group_id"`
	GroupName  string `json:"group_name"`
	CompanyID  int    `json:"company_id"`
	FiscalYear string `json:"fiscal_year"`
}
