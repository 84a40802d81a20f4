package schema

import (
	"fmt"
	"sort"

	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/inventory/textnorm"
	"inventory-workers/internal/models"
)

// SynonymTable maps folded header aliases onto canonical fields.
type SynonymTable struct {
	byAlias map[string]models.CanonicalField
	entries map[models.CanonicalField][]string
}

// HeaderKey is the comparison form of a header: lower-cased, trimmed,
// diacritics removed and separators collapsed to single spaces.
func HeaderKey(h string) string {
	return textnorm.Words(h)
}

// NewSynonymTable validates that no alias is claimed by two fields.
// Every field's own name is registered as an alias of itself.
func NewSynonymTable(entries map[models.CanonicalField][]string) (*SynonymTable, error) {
	known := make(map[models.CanonicalField]bool)
	for _, f := range models.AllCanonicalFields() {
		known[f] = true
	}
	for f := range entries {
		if !known[f] {
			return nil, errors.NewValidationError(fmt.Sprintf("unknown canonical field %q in synonym table", f))
		}
	}

	t := &SynonymTable{
		byAlias: make(map[string]models.CanonicalField),
		entries: make(map[models.CanonicalField][]string),
	}
	for _, field := range models.AllCanonicalFields() {
		aliases := append([]string{string(field)}, entries[field]...)
		for _, alias := range aliases {
			key := HeaderKey(alias)
			if key == "" {
				continue
			}
			if owner, exists := t.byAlias[key]; exists {
				if owner != field {
					return nil, errors.NewValidationError(fmt.Sprintf("synonym %q claimed by both %s and %s", key, owner, field))
				}
				continue
			}
			t.byAlias[key] = field
			t.entries[field] = append(t.entries[field], key)
		}
	}
	return t, nil
}

// Lookup resolves a raw header.
func (t *SynonymTable) Lookup(header string) (models.CanonicalField, bool) {
	f, ok := t.byAlias[HeaderKey(header)]
	return f, ok
}

// Aliases returns the registered aliases of a field, sorted.
func (t *SynonymTable) Aliases(field models.CanonicalField) []string {
	out := append([]string(nil), t.entries[field]...)
	sort.Strings(out)
	return out
}

// Merge returns a new table holding the current aliases plus extra ones.
func (t *SynonymTable) Merge(extra map[models.CanonicalField][]string) (*SynonymTable, error) {
	combined := make(map[models.CanonicalField][]string, len(t.entries))
	for f, aliases := range t.entries {
		combined[f] = append(combined[f], aliases...)
	}
	for f, aliases := range extra {
		combined[f] = append(combined[f], aliases...)
	}
	return NewSynonymTable(combined)
}

// DefaultSynonyms covers the Spanish and English headers seen in merchant spreadsheets.
func DefaultSynonyms() map[models.CanonicalField][]string {
	return map[models.CanonicalField][]string{
		models.FieldProduct: {
			"producto", "descripcion", "nombre", "articulo", "item",
			"nombre del producto", "medicamento", "product", "name", "description",
		},
		models.FieldSalePrice: {
			"precio venta", "pvp", "precio", "venta", "precio_unitario", "precio_usd",
			"precio de venta", "precio unitario", "sale price", "price", "unit price",
		},
		models.FieldCost: {
			"costo", "coste", "precio costo", "costo unitario", "precio de costo",
			"cost", "unit cost",
		},
		models.FieldCurrentStock: {
			"stock", "existencia", "existencias", "cantidad", "stock actual",
			"inventario", "disponible", "qty", "quantity", "on hand",
		},
		models.FieldMinimumStock: {
			"stock minimo", "minimo", "stock_minimo", "punto de reorden",
			"min stock", "minimum stock", "reorder point",
		},
		models.FieldExpiryDate: {
			"vencimiento", "fecha vencimiento", "fecha de vencimiento", "fecha_vencimiento",
			"caducidad", "fecha de caducidad", "expiry", "expiry date", "expiration", "expiration date",
		},
		models.FieldLocation: {
			"ubicacion", "pasillo", "estante", "anaquel", "almacen", "location", "shelf",
		},
		models.FieldSalesperson: {
			"vendedor", "vendedora", "empleado", "cajero", "salesperson", "seller",
		},
		models.FieldTotal: {
			"total", "total venta", "monto", "importe", "amount",
		},
	}
}

// MustDefaultTable builds the default table; the built-in dictionary is known valid.
func MustDefaultTable() *SynonymTable {
	t, err := NewSynonymTable(DefaultSynonyms())
	if err != nil {
		panic(err)
	}
	return t
}
