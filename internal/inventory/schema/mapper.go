// Package schema maps arbitrarily named spreadsheet columns onto canonical
// inventory fields and types each row into an InventoryRecord.
package schema

import (
	"fmt"
	"strings"

	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/models"
)

// Mapping is the result of normalizing one header row.
type Mapping struct {
	Headers []string
	// Fields holds recognized headers only.
	Fields map[string]models.CanonicalField
	// Columns points each present field at its source column. When two headers
	// map to the same field the later column wins.
	Columns map[models.CanonicalField]int
	// Unmapped lists column indexes that matched no synonym, in order.
	Unmapped []int
	// Shadowed lists columns that matched a field but lost to a later column.
	Shadowed []int
	// ProductFallback is set by Build when Product came from the first unmapped column.
	ProductFallback bool
}

// MissingProduct reports that no header maps to Product.
func (m Mapping) MissingProduct() bool {
	_, ok := m.Columns[models.FieldProduct]
	return !ok
}

// Present returns the mapped fields in canonical order.
func (m Mapping) Present() []models.CanonicalField {
	var out []models.CanonicalField
	for _, f := range models.AllCanonicalFields() {
		if _, ok := m.Columns[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

type Mapper struct {
	synonyms *SynonymTable
	required []models.CanonicalField
}

type Option func(*Mapper)

// WithRequiredFields makes Build reject datasets lacking any of fields.
// Product is always required.
func WithRequiredFields(fields ...models.CanonicalField) Option {
	return func(m *Mapper) {
		for _, f := range fields {
			if f != models.FieldProduct {
				m.required = append(m.required, f)
			}
		}
	}
}

func NewMapper(synonyms *SynonymTable, opts ...Option) *Mapper {
	if synonyms == nil {
		synonyms = MustDefaultTable()
	}
	m := &Mapper{synonyms: synonyms}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lookup resolves a single header. Canonical names resolve to themselves.
func (m *Mapper) Lookup(header string) (models.CanonicalField, bool) {
	return m.synonyms.Lookup(header)
}

// Normalize tags each raw header with its canonical field. It never fails.
func (m *Mapper) Normalize(rawHeaders []string) Mapping {
	mapping := Mapping{
		Headers: append([]string(nil), rawHeaders...),
		Fields:  make(map[string]models.CanonicalField),
		Columns: make(map[models.CanonicalField]int),
	}
	for i, h := range rawHeaders {
		field, ok := m.synonyms.Lookup(h)
		if !ok {
			mapping.Unmapped = append(mapping.Unmapped, i)
			continue
		}
		if prev, taken := mapping.Columns[field]; taken {
			mapping.Shadowed = append(mapping.Shadowed, prev)
		}
		mapping.Fields[h] = field
		mapping.Columns[field] = i
	}
	return mapping
}

// Build normalizes headers and types every row. Rows with an empty Product cell
// are skipped; cells that fail to parse leave the field unknown for that row.
func (m *Mapper) Build(headers []string, rows [][]interface{}) (*models.InventoryDataset, Mapping, error) {
	mapping := m.Normalize(headers)
	if len(headers) == 0 {
		return nil, mapping, errors.NewSchemaError("dataset has no columns")
	}

	if mapping.MissingProduct() {
		if len(mapping.Unmapped) == 0 {
			return nil, mapping, errors.NewSchemaError(
				fmt.Sprintf("no product column among headers [%s]", strings.Join(headers, ", ")))
		}
		mapping.Columns[models.FieldProduct] = mapping.Unmapped[0]
		mapping.Fields[headers[mapping.Unmapped[0]]] = models.FieldProduct
		mapping.Unmapped = mapping.Unmapped[1:]
		mapping.ProductFallback = true
	}

	var missing []string
	for _, f := range m.required {
		if _, ok := mapping.Columns[f]; !ok {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return nil, mapping, errors.NewMissingRequiredFieldsError(missing...)
	}

	ds := &models.InventoryDataset{
		Fields:  mapping.Present(),
		Headers: append([]string(nil), headers...),
	}
	passthrough := append(append([]int(nil), mapping.Unmapped...), mapping.Shadowed...)

	for i, row := range rows {
		rec, ok := m.buildRecord(i, row, headers, mapping, passthrough)
		if !ok {
			ds.SkippedRows++
			continue
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, mapping, nil
}

func (m *Mapper) buildRecord(index int, row []interface{}, headers []string, mapping Mapping, passthrough []int) (models.InventoryRecord, bool) {
	cell := func(f models.CanonicalField) interface{} {
		col, ok := mapping.Columns[f]
		if !ok || col >= len(row) {
			return nil
		}
		return row[col]
	}

	rec := models.InventoryRecord{
		Row:     index,
		Product: CellString(cell(models.FieldProduct)),
	}
	if rec.Product == "" {
		return rec, false
	}

	rec.SalePrice = decimalPtr(cell(models.FieldSalePrice))
	rec.Cost = decimalPtr(cell(models.FieldCost))
	rec.CurrentStock = decimalPtr(cell(models.FieldCurrentStock))
	rec.MinimumStock = decimalPtr(cell(models.FieldMinimumStock))
	rec.Total = decimalPtr(cell(models.FieldTotal))

	if raw := cell(models.FieldExpiryDate); raw != nil {
		rec.ExpiryRaw = CellString(raw)
		if t, ok := ParseDate(raw); ok {
			rec.ExpiryDate = &t
		}
	}
	rec.Location = CellString(cell(models.FieldLocation))
	rec.Salesperson = CellString(cell(models.FieldSalesperson))

	for _, col := range passthrough {
		if col >= len(row) {
			continue
		}
		if v := CellString(row[col]); v != "" {
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[headers[col]] = v
		}
	}
	return rec, true
}

func decimalPtr(v interface{}) *float64 {
	f, ok := ParseDecimal(v)
	if !ok {
		return nil
	}
	return &f
}
