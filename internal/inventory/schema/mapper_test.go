package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/models"
)

func TestNormalize_CaseAndWhitespace(t *testing.T) {
	table, err := NewSynonymTable(map[models.CanonicalField][]string{
		models.FieldProduct: {"producto", "nombre"},
	})
	require.NoError(t, err)
	m := NewMapper(table)

	for _, h := range []string{"Nombre", "PRODUCTO ", "  producto", "Product"} {
		t.Run(h, func(t *testing.T) {
			mapping := m.Normalize([]string{h})
			assert.Equal(t, models.FieldProduct, mapping.Fields[h])
			assert.False(t, mapping.MissingProduct())
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	m := NewMapper(nil)
	headers := []string{"Descripción", "P.V.P", "Costo Unitario", "Existencias", "Stock Mínimo",
		"Fecha de Vencimiento", "Ubicación", "Vendedor", "Total", "Proveedor", "Lote"}

	for _, h := range headers {
		first, ok1 := m.Lookup(h)
		if !ok1 {
			continue
		}
		second, ok2 := m.Lookup(string(first))
		assert.True(t, ok2, h)
		assert.Equal(t, first, second, h)

		again, ok3 := m.Lookup(HeaderKey(h))
		assert.True(t, ok3, h)
		assert.Equal(t, first, again, h)
	}
}

func TestNormalize_UnmappedPreserved(t *testing.T) {
	m := NewMapper(nil)
	mapping := m.Normalize([]string{"Proveedor", "Producto", "Lote"})

	assert.Equal(t, []int{0, 2}, mapping.Unmapped)
	assert.Equal(t, 1, mapping.Columns[models.FieldProduct])
	_, ok := mapping.Fields["Proveedor"]
	assert.False(t, ok)
}

func TestNormalize_LastWriteWins(t *testing.T) {
	m := NewMapper(nil)
	mapping := m.Normalize([]string{"Precio", "Producto", "PVP"})

	assert.Equal(t, 2, mapping.Columns[models.FieldSalePrice])
	assert.Equal(t, []int{0}, mapping.Shadowed)
}

func TestNewSynonymTable_DuplicateAcrossFields(t *testing.T) {
	_, err := NewSynonymTable(map[models.CanonicalField][]string{
		models.FieldProduct:   {"item"},
		models.FieldSalePrice: {"ITEM "},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidationError))
}

func TestNewSynonymTable_UnknownField(t *testing.T) {
	_, err := NewSynonymTable(map[models.CanonicalField][]string{"Color": {"color"}})
	assert.Error(t, err)
}

func TestMerge_AddsAliases(t *testing.T) {
	merged, err := MustDefaultTable().Merge(map[models.CanonicalField][]string{
		models.FieldCost: {"valor compra"},
	})
	require.NoError(t, err)

	f, ok := merged.Lookup("Valor Compra")
	assert.True(t, ok)
	assert.Equal(t, models.FieldCost, f)
}

func TestBuild_TypesRows(t *testing.T) {
	m := NewMapper(nil)
	headers := []string{"Producto", "Precio Venta", "Costo", "Stock", "Stock Minimo", "Vencimiento", "Lote"}
	rows := [][]interface{}{
		{"Paracetamol 500mg", 2.0, "1,00", "10", 5.0, "2030-01-31", "L-1"},
		{"", 3.0, 1.0, 1, 1, "", ""},
		{"Amoxicilina", "Bs 1.234,50", "n/a", -4.0, nil, "pronto"},
	}

	ds, mapping, err := m.Build(headers, rows)
	require.NoError(t, err)
	assert.False(t, mapping.ProductFallback)
	require.Len(t, ds.Records, 2)
	assert.Equal(t, 1, ds.SkippedRows)

	first := ds.Records[0]
	assert.Equal(t, "Paracetamol 500mg", first.Product)
	assert.Equal(t, 2.0, *first.SalePrice)
	assert.Equal(t, 1.0, *first.Cost)
	assert.Equal(t, 10.0, *first.CurrentStock)
	assert.Equal(t, 5.0, *first.MinimumStock)
	require.NotNil(t, first.ExpiryDate)
	assert.Equal(t, time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC), *first.ExpiryDate)
	assert.Equal(t, "L-1", first.Extra["Lote"])

	second := ds.Records[1]
	assert.Equal(t, 2, second.Row)
	assert.InDelta(t, 1234.5, *second.SalePrice, 1e-9)
	assert.Nil(t, second.Cost)
	assert.Nil(t, second.CurrentStock)
	assert.Nil(t, second.MinimumStock)
	assert.Nil(t, second.ExpiryDate)
	assert.Equal(t, "pronto", second.ExpiryRaw)

	assert.Equal(t, []models.CanonicalField{
		models.FieldProduct, models.FieldSalePrice, models.FieldCost,
		models.FieldCurrentStock, models.FieldMinimumStock, models.FieldExpiryDate,
	}, ds.Fields)
}

func TestBuild_ProductFallback(t *testing.T) {
	m := NewMapper(nil)
	ds, mapping, err := m.Build([]string{"Precio", "Codigo Interno"}, [][]interface{}{{4.5, "ABC-1"}})
	require.NoError(t, err)
	assert.True(t, mapping.ProductFallback)
	assert.Equal(t, "ABC-1", ds.Records[0].Product)
}

func TestBuild_SchemaErrors(t *testing.T) {
	m := NewMapper(nil)
	tests := []struct {
		name    string
		headers []string
	}{
		{"no columns", nil},
		{"every column mapped elsewhere", []string{"Precio", "Costo", "Stock"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := m.Build(tt.headers, nil)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeSchemaError))
		})
	}
}

func TestBuild_RequiredFields(t *testing.T) {
	m := NewMapper(nil, WithRequiredFields(models.FieldProduct, models.FieldSalePrice))
	_, _, err := m.Build([]string{"Producto", "Costo"}, [][]interface{}{{"A", 1.0}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSchemaError))
	stdErr := err.(*errors.StandardError)
	assert.Contains(t, stdErr.Details, "SalePrice")
	assert.Equal(t, "Dataset is missing required columns", stdErr.Message)

	_, _, err = m.Build([]string{"Precio", "Costo"}, nil)
	require.Error(t, err)
	assert.Equal(t, "Dataset has no identifiable product column", err.(*errors.StandardError).Message)
}

func TestDetectDomain(t *testing.T) {
	m := NewMapper(nil)
	tests := []struct {
		name    string
		headers []string
		rows    [][]interface{}
		want    Domain
	}{
		{"expiry column", []string{"Producto", "Vencimiento"}, [][]interface{}{{"A", "2030-01-01"}}, DomainPharmacy},
		{"dosage in name", []string{"Producto"}, [][]interface{}{{"Ibuprofeno 400mg"}}, DomainPharmacy},
		{"salesperson", []string{"Producto", "Vendedor"}, [][]interface{}{{"A", "Ana"}}, DomainSales},
		{"plain", []string{"Producto", "Precio"}, [][]interface{}{{"Harina PAN", 1.2}}, DomainRetail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, _, err := m.Build(tt.headers, tt.rows)
			require.NoError(t, err)
			assert.Equal(t, tt.want, DetectDomain(ds))
		})
	}
}
