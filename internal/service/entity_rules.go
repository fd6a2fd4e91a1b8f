package service

import (
	"strconv"
	"strings"

	"masterdata-web/internal/models"
)

// entity_rules.go is the single place the per-entity business rules live:
// field lists, required fields per group, duplicate keys, cross-reference
// checks, invalid-content exclusions, detail field order and description
// synthesis. One generic engine (validation_service.go, duplicate.go,
// import_service.go) consumes these tables; there is no per-entity code.

// RequiredField names a field the missing-data check enforces. Numeric
// fields count as missing when blank or <= 0.
type RequiredField struct {
	Name    string
	Numeric bool
}

// Item group classes. Group names coming from callers are free-form display
// names ("INK/ADDITIVES", "LAMINATION FILM"); classification is by keyword.
const (
	itemClassReel       = "REEL"
	itemClassInk        = "INK"
	itemClassVarnish    = "VARNISH"
	itemClassLamination = "LAMINATION"
	itemClassOther      = "OTHER"
	itemClassRoll       = "ROLL"
	itemClassPaper      = "PAPER"
)

// ItemGroupClass maps an item group display name to its rule class.
// Unrecognized groups fall back to the PAPER rules.
func ItemGroupClass(groupName string) string {
	name := strings.ToUpper(strings.TrimSpace(groupName))
	switch {
	case strings.Contains(name, "REEL"):
		return itemClassReel
	case strings.Contains(name, "INK"):
		return itemClassInk
	case strings.Contains(name, "VARNISH"):
		return itemClassVarnish
	case strings.Contains(name, "LAMINATION"):
		return itemClassLamination
	case strings.Contains(name, "OTHER"):
		return itemClassOther
	case strings.Contains(name, "ROLL"):
		return itemClassRoll
	default:
		return itemClassPaper
	}
}

// Ledger group branches.
const (
	ledgerClassGeneral   = "GENERAL"
	ledgerClassEmployee  = "EMPLOYEES"
	ledgerClassConsignee = "CONSIGNEE"
)

func LedgerGroupClass(groupName string) string {
	name := strings.ToUpper(strings.TrimSpace(groupName))
	switch {
	case strings.Contains(name, "EMPLOYEE"):
		return ledgerClassEmployee
	case strings.Contains(name, "CONSIGNEE"):
		return ledgerClassConsignee
	default:
		return ledgerClassGeneral
	}
}

var itemRequiredFields = map[string][]RequiredField{
	itemClassReel: {
		{Name: "Quality"}, {Name: "BreakingFactor", Numeric: true},
		{Name: "Width", Numeric: true}, {Name: "Weight", Numeric: true},
		{Name: "Manufacturer"}, {Name: "Finish"},
		{Name: "PurchaseUnit"}, {Name: "PurchaseRate", Numeric: true},
		{Name: "EstimationUnit"}, {Name: "EstimationRate", Numeric: true},
		{Name: "StockUnit"}, {Name: "HSNDisplayName"},
	},
	itemClassInk: {
		{Name: "SubGroupName"}, {Name: "Type"}, {Name: "Manufacturer"},
		{Name: "PurchaseUnit"}, {Name: "PurchaseRate", Numeric: true},
		{Name: "EstimationUnit"}, {Name: "EstimationRate", Numeric: true},
		{Name: "StockUnit"}, {Name: "HSNDisplayName"},
	},
	itemClassVarnish: {
		{Name: "Type"}, {Name: "Quality"}, {Name: "SubGroupName"},
		{Name: "PurchaseUnit"}, {Name: "PurchaseRate", Numeric: true},
		{Name: "EstimationUnit"}, {Name: "EstimationRate", Numeric: true},
		{Name: "StockUnit"}, {Name: "HSNDisplayName"},
	},
	itemClassLamination: {
		{Name: "Quality"}, {Name: "SubGroupName"},
		{Name: "PurchaseUnit"}, {Name: "PurchaseRate", Numeric: true},
		{Name: "EstimationUnit"}, {Name: "EstimationRate", Numeric: true},
		{Name: "StockUnit"}, {Name: "HSNDisplayName"},
	},
	itemClassOther: {
		{Name: "SubGroupName"}, {Name: "Quality"},
		{Name: "PurchaseUnit"}, {Name: "PurchaseRate", Numeric: true},
		{Name: "EstimationUnit"}, {Name: "EstimationRate", Numeric: true},
		{Name: "StockUnit"}, {Name: "HSNDisplayName"},
	},
	itemClassRoll: {
		{Name: "Type"}, {Name: "Quality"}, {Name: "Manufacturer"},
		{Name: "Weight", Numeric: true},
		{Name: "PurchaseUnit"}, {Name: "PurchaseRate", Numeric: true},
		{Name: "EstimationUnit"}, {Name: "EstimationRate", Numeric: true},
		{Name: "StockUnit"}, {Name: "HSNDisplayName"},
	},
	itemClassPaper: {
		{Name: "Quality"}, {Name: "Weight", Numeric: true},
		{Name: "Manufacturer"}, {Name: "Finish"},
		{Name: "Length", Numeric: true}, {Name: "Width", Numeric: true},
		{Name: "PurchaseRate", Numeric: true}, {Name: "StockUnit"},
		{Name: "PurchaseUnit"}, {Name: "EstimationRate", Numeric: true},
		{Name: "EstimationUnit"}, {Name: "PackingType"},
		{Name: "UnitsPerPack", Numeric: true},
	},
}

var ledgerRequiredFields = map[string][]RequiredField{
	ledgerClassGeneral: {
		{Name: "Name"}, {Name: "Address1"},
	},
	ledgerClassEmployee: {
		{Name: "Name"}, {Name: "Address1"}, {Name: "DepartmentName"},
		{Name: "DateOfBirth"},
	},
	ledgerClassConsignee: {
		{Name: "Name"}, {Name: "ClientName"}, {Name: "Address1"},
	},
}

// RequiredFields returns the missing-data check list for an entity/group.
func RequiredFields(kind models.EntityKind, groupName string) []RequiredField {
	switch kind {
	case models.EntityItem:
		return itemRequiredFields[ItemGroupClass(groupName)]
	case models.EntityLedger:
		return ledgerRequiredFields[LedgerGroupClass(groupName)]
	case models.EntityTool:
		return []RequiredField{
			{Name: "Name"},
			{Name: "Length", Numeric: true},
			{Name: "Width", Numeric: true},
			{Name: "Height", Numeric: true},
			{Name: "ManufacturerItemCode"},
		}
	case models.EntitySparePart:
		return []RequiredField{
			{Name: "Name"}, {Name: "Group"}, {Name: "Type"},
		}
	case models.EntityHSN:
		return []RequiredField{
			{Name: "DisplayName"}, {Name: "ProductCategory"},
			{Name: "TaxPercent", Numeric: true},
		}
	}
	return nil
}

// ConditionalRequired describes a field required only when another field
// holds a sentinel value; when not applicable the field is cleared instead
// of validated. Only HSN carries one.
type ConditionalRequired struct {
	Field     string
	WhenField string
	WhenValue string
}

func ConditionalRequiredFields(kind models.EntityKind) []ConditionalRequired {
	if kind == models.EntityHSN {
		return []ConditionalRequired{
			{Field: "SubCategory", WhenField: "ProductCategory", WhenValue: "Raw Material"},
		}
	}
	return nil
}

// KeySelector extracts one component of an entity's duplicate key from a
// row. Components are compared trimmed and case-insensitive.
type KeySelector struct {
	Name string
	Key  func(models.CandidateRow) string
}

func fieldKey(name string) KeySelector {
	return KeySelector{
		Name: name,
		Key: func(r models.CandidateRow) string {
			return strings.ToLower(r.Get(name))
		},
	}
}

// areaKey folds two dimensions into their product, so 20x30 and 30x20 paper
// reams of otherwise equal spec collide.
func areaKey(widthField, lengthField string) KeySelector {
	return KeySelector{
		Name: widthField + "x" + lengthField,
		Key: func(r models.CandidateRow) string {
			area := r.Float(widthField) * r.Float(lengthField)
			return strconv.FormatFloat(area, 'f', -1, 64)
		},
	}
}

// DuplicateKeyFieldNames lists the key component names for messages.
func DuplicateKeyFieldNames(kind models.EntityKind, groupName string) []string {
	selectors := DuplicateKey(kind, groupName)
	names := make([]string, len(selectors))
	for i, sel := range selectors {
		names[i] = sel.Name
	}
	return names
}

// DuplicateKey returns the ordered composite-key selectors for an
// entity/group combination.
func DuplicateKey(kind models.EntityKind, groupName string) []KeySelector {
	switch kind {
	case models.EntityLedger:
		switch LedgerGroupClass(groupName) {
		case ledgerClassEmployee:
			return []KeySelector{fieldKey("Name"), fieldKey("Address1"), fieldKey("DepartmentName")}
		case ledgerClassConsignee:
			return []KeySelector{fieldKey("Name"), fieldKey("ClientName"), fieldKey("Address1"), fieldKey("TaxId")}
		default:
			return []KeySelector{fieldKey("Name"), fieldKey("Address1"), fieldKey("TaxId")}
		}
	case models.EntityItem:
		switch ItemGroupClass(groupName) {
		case itemClassReel:
			return []KeySelector{
				fieldKey("GradeCode"), fieldKey("Quality"), fieldKey("Weight"),
				fieldKey("Manufacturer"), fieldKey("Finish"), fieldKey("Width"),
			}
		case itemClassInk:
			return []KeySelector{fieldKey("Type"), fieldKey("Colour"), fieldKey("ColourCode")}
		case itemClassVarnish:
			return []KeySelector{fieldKey("Type"), fieldKey("Quality")}
		case itemClassLamination:
			return []KeySelector{fieldKey("Quality"), fieldKey("Width"), fieldKey("Thickness")}
		default:
			return []KeySelector{
				fieldKey("Quality"), fieldKey("Weight"), fieldKey("Manufacturer"),
				fieldKey("Finish"), areaKey("Width", "Length"),
			}
		}
	case models.EntityTool:
		return []KeySelector{
			fieldKey("Length"), fieldKey("Width"), fieldKey("Height"),
			fieldKey("ManufacturerItemCode"),
		}
	case models.EntitySparePart:
		return []KeySelector{fieldKey("Name"), fieldKey("Group"), fieldKey("Type")}
	case models.EntityHSN:
		return []KeySelector{fieldKey("DisplayName")}
	}
	return nil
}

// RefSet identifies which reference set a cross-reference check uses.
type RefSet int

const (
	RefUnits RefSet = iota
	RefCategories
	RefSubGroups
	RefCountryState
	RefClients
)

// LookupCheck declares one cross-reference field. Checks only fire on
// non-empty values. MapTo, when set, names the row field that receives the
// resolved numeric id on a match (Item auto-mapping during validation).
type LookupCheck struct {
	Field     string
	PairField string // second field of a country/state pair
	Set       RefSet
	MapTo     string
}

var lookupChecks = map[models.EntityKind][]LookupCheck{
	models.EntityItem: {
		{Field: "PurchaseUnit", Set: RefUnits},
		{Field: "EstimationUnit", Set: RefUnits},
		{Field: "StockUnit", Set: RefUnits},
		{Field: "SubGroupName", Set: RefSubGroups, MapTo: "SubGroupID"},
		{Field: "HSNDisplayName", Set: RefCategories, MapTo: "HSNID"},
	},
	models.EntityLedger: {
		{Field: "Country", PairField: "State", Set: RefCountryState},
		{Field: "ClientName", Set: RefClients},
	},
	models.EntityTool: {
		{Field: "StockUnit", Set: RefUnits},
		{Field: "HSNDisplayName", Set: RefCategories},
	},
	models.EntitySparePart: {
		{Field: "StockUnit", Set: RefUnits},
		{Field: "HSNDisplayName", Set: RefCategories},
	},
	models.EntityHSN: {
		{Field: "Unit", Set: RefUnits},
	},
}

func LookupChecks(kind models.EntityKind) []LookupCheck {
	return lookupChecks[kind]
}

// CategoryTag filters the category reference set; Tool imports only see
// tool-tagged HSN codes.
func CategoryTag(kind models.EntityKind) string {
	if kind == models.EntityTool {
		return "Tool"
	}
	return ""
}

// DetailOrder is the full ordered field list per entity. It drives the
// invalid-content scan, the detail-record fan-out and the upload templates.
var detailOrder = map[models.EntityKind][]string{
	models.EntityItem: {
		"Name", "Quality", "GradeCode", "BreakingFactor", "Weight",
		"Manufacturer", "Finish", "Width", "Length", "Thickness",
		"Type", "Colour", "ColourCode", "SubGroupName", "HSNDisplayName",
		"PurchaseUnit", "PurchaseRate", "EstimationUnit", "EstimationRate",
		"StockUnit", "PackingType", "UnitsPerPack", "Narration", "Remarks",
	},
	models.EntityLedger: {
		"Name", "Address1", "Address2", "City", "State", "Country",
		"PinCode", "TaxId", "Email", "Phone", "DepartmentName",
		"ClientName", "SalesRepName", "DateOfBirth", "OpeningBalance",
		"Narration", "Remarks",
	},
	models.EntityTool: {
		"Name", "Length", "Width", "Height", "ManufacturerItemCode",
		"Manufacturer", "HSNDisplayName", "StockUnit", "PurchaseRate",
		"Remarks",
	},
	models.EntitySparePart: {
		"Name", "Group", "Type", "Manufacturer", "HSNDisplayName",
		"StockUnit", "PurchaseRate", "Remarks",
	},
	models.EntityHSN: {
		"DisplayName", "ProductCategory", "SubCategory", "TaxPercent",
		"Unit", "Remarks",
	},
}

func DetailOrder(kind models.EntityKind) []string {
	return detailOrder[kind]
}

// invalidContentExclusions are free-text fields skipped by the quote scan.
var invalidContentExclusions = map[models.EntityKind]map[string]bool{
	models.EntityItem:      {"Narration": true, "Remarks": true},
	models.EntityLedger:    {"Narration": true, "Remarks": true},
	models.EntityTool:      {"Remarks": true},
	models.EntitySparePart: {"Remarks": true},
	models.EntityHSN:       {"Remarks": true},
}

func InvalidContentExcluded(kind models.EntityKind, field string) bool {
	return invalidContentExclusions[kind][field]
}

// DescriptionFields lists the fields concatenated into the synthesized
// free-text description ("Field:value, Field:value, ...").
func DescriptionFields(kind models.EntityKind) []string {
	switch kind {
	case models.EntityItem:
		return []string{"Quality", "Weight", "Manufacturer", "Finish", "Width", "Length"}
	case models.EntityLedger:
		return []string{"Name", "Address1", "City", "State"}
	case models.EntityTool:
		return []string{"Length", "Width", "Height", "ManufacturerItemCode"}
	}
	return nil
}

// DisplayNameField names the field stored as the master record's display
// name.
func DisplayNameField(kind models.EntityKind) string {
	if kind == models.EntityHSN {
		return "DisplayName"
	}
	return "Name"
}
