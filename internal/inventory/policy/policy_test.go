package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-workers/internal/inventory/analytics"
	"inventory-workers/internal/inventory/resolver"
	"inventory-workers/internal/models"
)

func f(v float64) *float64 { return &v }

func clock() func() time.Time {
	return func() time.Time { return time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC) }
}

func dataset(recs ...models.InventoryRecord) *models.InventoryDataset {
	ds := &models.InventoryDataset{Fields: []models.CanonicalField{
		models.FieldProduct, models.FieldSalePrice, models.FieldCost,
		models.FieldCurrentStock, models.FieldMinimumStock, models.FieldExpiryDate,
	}}
	for i, r := range recs {
		r.Row = i
		ds.Records = append(ds.Records, r)
	}
	return ds
}

func assemble(t *testing.T, role models.Role, rec models.InventoryRecord) Answer {
	t.Helper()
	ds := dataset(rec)
	snap := analytics.NewAnalyzer(analytics.WithClock(clock())).Analyze(ds.Records[0], ds, 40)
	match := &resolver.Match{Record: ds.Records[0], Index: 0, Score: 95.5}
	return NewEngine(nil).Assemble(role, match, &snap)
}

func paracetamol() models.InventoryRecord {
	return models.InventoryRecord{
		Product:      "Paracetamol 500mg",
		SalePrice:    f(2),
		Cost:         f(1),
		CurrentStock: f(10),
		MinimumStock: f(5),
	}
}

func TestAssemble_PublicSeesPriceOnly(t *testing.T) {
	ans := assemble(t, models.RolePublic, paracetamol())

	require.True(t, ans.Found)
	assert.Equal(t, "Paracetamol 500mg", ans.Product)
	assert.Equal(t, []analytics.Fact{
		analytics.FactProduct, analytics.FactSalePrice, analytics.FactConvertedPrice, analytics.FactAvailability,
	}, ans.Disclosed())

	v, _ := ans.Get(analytics.FactConvertedPrice)
	assert.Equal(t, 80.0, v)
	v, _ = ans.Get(analytics.FactAvailability)
	assert.Equal(t, true, v)

	for _, hidden := range []analytics.Fact{
		analytics.FactCost, analytics.FactMargin, analytics.FactTier,
		analytics.FactCurrentStock, analytics.FactLocation, analytics.FactReorder,
	} {
		assert.False(t, ans.Has(hidden), string(hidden))
	}
	assert.Empty(t, ans.Tags)
	assert.Empty(t, ans.Message)
}

func TestAssemble_PrivilegedSeesCostAndMargin(t *testing.T) {
	ans := assemble(t, models.RolePrivileged, paracetamol())

	cost, ok := ans.Get(analytics.FactCost)
	require.True(t, ok)
	assert.Equal(t, 1.0, cost)
	margin, ok := ans.Get(analytics.FactMargin)
	require.True(t, ok)
	assert.Equal(t, 50.0, margin)
	reorder, ok := ans.Get(analytics.FactReorder)
	require.True(t, ok)
	assert.Equal(t, false, reorder)

	assert.Contains(t, ans.Tags, TagParetoA)
	assert.NotContains(t, ans.Tags, TagReorder)
	assert.Contains(t, ans.Unavailable, analytics.FactExpiry)
	assert.NotContains(t, ans.Unavailable, analytics.FactLocation, "location is optional")

	disclosed := ans.Disclosed()
	assert.Equal(t, analytics.FactProduct, disclosed[0])
	assert.Equal(t, analytics.FactCost, disclosed[1])
}

func TestAssemble_ExpiredPublicGetsNeutralMessage(t *testing.T) {
	rec := paracetamol()
	expiry := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rec.ExpiryDate = &expiry

	ans := assemble(t, models.RolePublic, rec)
	assert.True(t, ans.Found)
	assert.Equal(t, ReasonTemporarilyUnavailable, ans.Message)
	assert.False(t, ans.Has(analytics.FactSalePrice))
	assert.False(t, ans.Has(analytics.FactConvertedPrice))
	assert.False(t, ans.Has(analytics.FactExpiry))
	assert.Empty(t, ans.Unavailable)
	assert.Empty(t, ans.Tags)

	priv := assemble(t, models.RolePrivileged, rec)
	assert.Empty(t, priv.Message)
	assert.Contains(t, priv.Tags, TagExpired)
	v, ok := priv.Get(analytics.FactExpiry)
	require.True(t, ok)
	assert.Equal(t, ExpiryStatus{Expired: true, Date: "2025-01-01"}, v)
}

func TestAssemble_ReorderTag(t *testing.T) {
	rec := paracetamol()
	rec.CurrentStock = f(3)
	ans := assemble(t, models.RolePrivileged, rec)
	assert.Contains(t, ans.Tags, TagReorder)
}

func TestAssemble_MissingPriceIsNotInvented(t *testing.T) {
	rec := paracetamol()
	rec.SalePrice = nil

	ans := assemble(t, models.RolePublic, rec)
	assert.False(t, ans.Has(analytics.FactConvertedPrice))
	assert.Contains(t, ans.Unavailable, analytics.FactSalePrice)
	assert.Contains(t, ans.Unavailable, analytics.FactConvertedPrice)

	priv := assemble(t, models.RolePrivileged, rec)
	assert.False(t, priv.Has(analytics.FactMargin))
	assert.Contains(t, priv.Unavailable, analytics.FactMargin)
}

func TestAssemble_NotFound(t *testing.T) {
	ans := NewEngine(nil).Assemble(models.RolePublic, nil, nil)
	assert.False(t, ans.Found)
	assert.Equal(t, ReasonNotFound, ans.Reason)
	assert.Empty(t, ans.Facts)
}

func TestAssemble_CustomTable(t *testing.T) {
	table := Table{
		models.RolePublic: {Rules: []Rule{
			{Fact: analytics.FactProduct, Disclosure: Show},
			{Fact: analytics.FactLocation, Disclosure: ShowIfAvailable},
		}},
	}
	rec := paracetamol()
	rec.Location = "Pasillo 3"
	ds := dataset(rec)
	snap := analytics.NewAnalyzer().Analyze(ds.Records[0], ds, 1)

	ans := NewEngine(table).Assemble(models.RolePublic, &resolver.Match{Record: ds.Records[0]}, &snap)
	assert.Equal(t, []analytics.Fact{analytics.FactProduct, analytics.FactLocation}, ans.Disclosed())

	// roles absent from the table only learn the product name
	ans = NewEngine(table).Assemble(models.RolePrivileged, &resolver.Match{Record: ds.Records[0]}, &snap)
	assert.Equal(t, []analytics.Fact{analytics.FactProduct}, ans.Disclosed())
}
