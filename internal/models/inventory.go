// internal/models/inventory.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// CanonicalField is the engine's internal name for a recognized column.
type CanonicalField string

const (
	FieldProduct      CanonicalField = "Product"
	FieldSalePrice    CanonicalField = "SalePrice"
	FieldCost         CanonicalField = "Cost"
	FieldCurrentStock CanonicalField = "CurrentStock"
	FieldMinimumStock CanonicalField = "MinimumStock"
	FieldExpiryDate   CanonicalField = "ExpiryDate"
	FieldLocation     CanonicalField = "Location"
	FieldSalesperson  CanonicalField = "Salesperson"
	FieldTotal        CanonicalField = "Total"
)

// AllCanonicalFields returns every field in canonical order.
func AllCanonicalFields() []CanonicalField {
	return []CanonicalField{
		FieldProduct,
		FieldSalePrice,
		FieldCost,
		FieldCurrentStock,
		FieldMinimumStock,
		FieldExpiryDate,
		FieldLocation,
		FieldSalesperson,
		FieldTotal,
	}
}

// ParseCanonicalField accepts the exact field name, case-insensitively.
func ParseCanonicalField(s string) (CanonicalField, bool) {
	for _, f := range AllCanonicalFields() {
		if strings.EqualFold(string(f), strings.TrimSpace(s)) {
			return f, true
		}
	}
	return "", false
}

// IsNumeric reports whether values of the field are decimals.
func (f CanonicalField) IsNumeric() bool {
	switch f {
	case FieldSalePrice, FieldCost, FieldCurrentStock, FieldMinimumStock, FieldTotal:
		return true
	}
	return false
}

// InventoryRecord is one typed row. Nil pointers mean the value is unknown for this row.
type InventoryRecord struct {
	Row          int               `json:"row"`
	Product      string            `json:"product"`
	SalePrice    *float64          `json:"salePrice,omitempty"`
	Cost         *float64          `json:"cost,omitempty"`
	CurrentStock *float64          `json:"currentStock,omitempty"`
	MinimumStock *float64          `json:"minimumStock,omitempty"`
	Total        *float64          `json:"total,omitempty"`
	ExpiryDate   *time.Time        `json:"expiryDate,omitempty"`
	ExpiryRaw    string            `json:"expiryRaw,omitempty"`
	Location     string            `json:"location,omitempty"`
	Salesperson  string            `json:"salesperson,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// Number returns the numeric value stored under a numeric field.
func (r *InventoryRecord) Number(f CanonicalField) *float64 {
	switch f {
	case FieldSalePrice:
		return r.SalePrice
	case FieldCost:
		return r.Cost
	case FieldCurrentStock:
		return r.CurrentStock
	case FieldMinimumStock:
		return r.MinimumStock
	case FieldTotal:
		return r.Total
	}
	return nil
}

// Text returns the string value stored under a text field.
func (r *InventoryRecord) Text(f CanonicalField) string {
	switch f {
	case FieldProduct:
		return r.Product
	case FieldLocation:
		return r.Location
	case FieldSalesperson:
		return r.Salesperson
	case FieldExpiryDate:
		return r.ExpiryRaw
	}
	return ""
}

// InventoryDataset is an immutable collection of records plus the fields its source carried.
type InventoryDataset struct {
	Records     []InventoryRecord `json:"records"`
	Fields      []CanonicalField  `json:"fields"`
	Headers     []string          `json:"headers"`
	SkippedRows int               `json:"skippedRows"`
}

// Has reports whether the source dataset carried a column for f.
func (d *InventoryDataset) Has(f CanonicalField) bool {
	if d == nil {
		return false
	}
	for _, field := range d.Fields {
		if field == f {
			return true
		}
	}
	return false
}

func (d *InventoryDataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Role determines what an answer may disclose.
type Role string

const (
	RolePublic     Role = "public"
	RolePrivileged Role = "privileged"
)

var roleAliases = map[string]Role{
	"public":     RolePublic,
	"customer":   RolePublic,
	"cliente":    RolePublic,
	"privileged": RolePrivileged,
	"management": RolePrivileged,
	"gerencia":   RolePrivileged,
	"gerente":    RolePrivileged,
	"manager":    RolePrivileged,
	"admin":      RolePrivileged,
}

// ParseRole resolves a role name or alias. Empty input defaults to public.
func ParseRole(s string) (Role, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return RolePublic, nil
	}
	if role, ok := roleAliases[key]; ok {
		return role, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) IsPrivileged() bool {
	return r == RolePrivileged
}
