package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/models"
)

func pharmacyDataset() *models.InventoryDataset {
	ds := datasetOf(
		models.InventoryRecord{Product: "Amoxicilina", SalePrice: f(5), Cost: f(3), CurrentStock: f(4), MinimumStock: f(10), ExpiryDate: day(2025, 1, 1)},
		models.InventoryRecord{Product: "Ibuprofeno", SalePrice: f(2), Cost: f(1), CurrentStock: f(50), MinimumStock: f(10), ExpiryDate: day(2030, 1, 1)},
		models.InventoryRecord{Product: "Jarabe", SalePrice: f(7), Cost: f(2), CurrentStock: f(5), MinimumStock: f(5), ExpiryRaw: "pronto"},
		models.InventoryRecord{Product: "Gasas", SalePrice: f(1), CurrentStock: f(0), MinimumStock: f(2), ExpiryDate: day(2024, 12, 31)},
	)
	ds.Fields = append(ds.Fields, models.FieldExpiryDate)
	return ds
}

func TestExpiredLoss(t *testing.T) {
	a := NewAnalyzer(WithClock(fixedClock()))
	r := a.ExpiredLoss(pharmacyDataset(), 10)

	require.Len(t, r.Items, 1)
	assert.Equal(t, "Amoxicilina", r.Items[0].Product)
	assert.InDelta(t, 12.0, r.Total, 1e-9)
	assert.InDelta(t, 120.0, r.Converted, 1e-9)
	assert.Equal(t, 1, r.Incomplete, "Gasas is expired but has no cost")
}

func TestExpiredLoss_StrictPolicyCountsUnparseable(t *testing.T) {
	a := NewAnalyzer(WithClock(fixedClock()), WithExpiryPolicy(UnparseableExpired))
	r := a.ExpiredLoss(pharmacyDataset(), 1)

	require.Len(t, r.Items, 2)
	assert.InDelta(t, 12.0+10.0, r.Total, 1e-9)
}

func TestReplenishment(t *testing.T) {
	r := Replenishment(pharmacyDataset(), 2)

	require.Len(t, r.Items, 3)
	assert.Equal(t, "Amoxicilina", r.Items[0].Product)
	assert.InDelta(t, 6.0, r.Items[0].Needed, 1e-9)
	assert.InDelta(t, 18.0, *r.Items[0].Investment, 1e-9)
	assert.Equal(t, "Jarabe", r.Items[1].Product)
	assert.InDelta(t, 0.0, *r.Items[1].Investment, 1e-9)
	assert.Nil(t, r.Items[2].Investment)
	assert.InDelta(t, 18.0, r.Total, 1e-9)
	assert.InDelta(t, 36.0, r.Converted, 1e-9)
}

func TestTopPerformers(t *testing.T) {
	ds := &models.InventoryDataset{
		Fields: []models.CanonicalField{models.FieldProduct, models.FieldSalesperson, models.FieldTotal},
		Records: []models.InventoryRecord{
			{Product: "A", Salesperson: "Ana", Total: f(10)},
			{Product: "B", Salesperson: "Luis", Total: f(30)},
			{Product: "C", Salesperson: "Ana", Total: f(25)},
			{Product: "D", Salesperson: "Marta", Total: f(35)},
			{Product: "E", Salesperson: "", Total: f(99)},
			{Product: "F", Salesperson: "Luis", Total: nil},
		},
	}

	r := TopPerformers(ds, models.FieldSalesperson, models.FieldTotal, 0)
	require.Len(t, r.Ranking, 3)
	assert.Equal(t, "Ana", r.Ranking[0].Key, "ties keep first-seen order")
	assert.Equal(t, 35.0, r.Ranking[0].Value)
	assert.Equal(t, 2, r.Ranking[0].Rows)
	assert.Equal(t, "Marta", r.Ranking[1].Key)
	assert.Equal(t, "Luis", r.Ranking[2].Key)
	require.NotNil(t, r.Top)
	assert.Equal(t, "Ana", r.Top.Key)

	limited := TopPerformers(ds, models.FieldSalesperson, models.FieldTotal, 1)
	assert.Len(t, limited.Ranking, 1)
}

func TestSummarize(t *testing.T) {
	a := NewAnalyzer(WithClock(fixedClock()))
	ds := pharmacyDataset()

	s, err := a.Summarize(KindExpired, ds, 10, SummaryOptions{})
	require.NoError(t, err)
	require.NotNil(t, s.Expired)
	assert.Empty(t, s.Unavailable)

	s, err = a.Summarize(KindTopPerformer, ds, 10, SummaryOptions{})
	require.NoError(t, err)
	assert.Equal(t, []models.CanonicalField{models.FieldSalesperson, models.FieldTotal}, s.Unavailable)
	assert.Empty(t, s.TopPerformer.Ranking)

	s, err = a.Summarize(KindPareto, ds, 10, SummaryOptions{})
	require.NoError(t, err)
	require.NotNil(t, s.Pareto)
	assert.NotEmpty(t, s.Pareto.TierA)

	_, err = a.Summarize(KindTopPerformer, ds, 10, SummaryOptions{GroupBy: models.FieldCost})
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidationError))

	_, err = a.Summarize("forecast", ds, 10, SummaryOptions{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnsupportedReport))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("lowStock")
	require.NoError(t, err)
	assert.Equal(t, KindLowStock, k)

	_, err = ParseKind("LOWSTOCK")
	assert.Error(t, err)
}
