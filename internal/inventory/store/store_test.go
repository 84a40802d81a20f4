package store

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/inventory/schema"
	"inventory-workers/internal/models"
)

func dataset(products ...string) *models.InventoryDataset {
	ds := &models.InventoryDataset{Fields: []models.CanonicalField{models.FieldProduct}}
	for i, p := range products {
		ds.Records = append(ds.Records, models.InventoryRecord{Row: i, Product: p})
	}
	return ds
}

func TestStore_DefaultSnapshot(t *testing.T) {
	s := New(0)
	snap := s.Snapshot("")
	assert.Equal(t, DefaultSession, snap.Session)
	assert.Equal(t, DefaultRate, snap.Rate)
	assert.False(t, snap.IsLoaded())
	assert.False(t, s.IsLoaded("any"))
}

func TestStore_WithDefaultSession(t *testing.T) {
	s := New(0, WithDefaultSession("sucursal-1"))
	s.Load("", dataset("A"), schema.DomainRetail)

	assert.Equal(t, "sucursal-1", s.Snapshot("").Session)
	assert.True(t, s.IsLoaded("sucursal-1"))
	assert.False(t, s.IsLoaded(DefaultSession))

	assert.Equal(t, DefaultSession, New(0, WithDefaultSession("")).Snapshot("").Session)
}

func TestStore_LoadReplacesWholesale(t *testing.T) {
	s := New(40)
	first := s.Load("s1", dataset("A", "B"), schema.DomainRetail)
	second := s.Load("s1", dataset("C"), schema.DomainPharmacy)

	assert.Equal(t, 2, first.Dataset.Len())
	assert.Equal(t, 1, second.Dataset.Len())
	assert.Equal(t, schema.DomainPharmacy, s.Snapshot("s1").Domain)
	assert.Equal(t, 40.0, second.Rate)
	assert.Greater(t, second.Version, first.Version)
}

func TestStore_SetRate(t *testing.T) {
	s := New(40)
	s.Load("s1", dataset("A"), schema.DomainRetail)
	before := s.Snapshot("s1")

	snap, err := s.SetRate("s1", 36.5)
	require.NoError(t, err)
	assert.Equal(t, 36.5, snap.Rate)
	assert.Equal(t, 1, snap.Dataset.Len())

	assert.Equal(t, 40.0, before.Rate, "published snapshots are immutable")
}

func TestStore_SetRate_Rejects(t *testing.T) {
	s := New(40)
	for _, rate := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := s.SetRate("s1", rate)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeValidationError))
	}
	assert.Equal(t, 40.0, s.Snapshot("s1").Rate)
}

func TestStore_SessionsIsolated(t *testing.T) {
	s := New(40)
	s.Load("a", dataset("A"), schema.DomainRetail)
	_, err := s.SetRate("b", 10)
	require.NoError(t, err)

	assert.True(t, s.IsLoaded("a"))
	assert.False(t, s.IsLoaded("b"))
	assert.Equal(t, 40.0, s.Snapshot("a").Rate)
	assert.Equal(t, []string{"a", "b"}, s.Sessions())

	s.Drop("a")
	assert.False(t, s.IsLoaded("a"))
}

func TestStore_ConcurrentReadersSeeConsistentPairs(t *testing.T) {
	s := New(1)
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.Load("shared", dataset("P"), schema.DomainRetail)
			_, _ = s.SetRate("shared", float64(n))
		}(i)
		go func() {
			defer wg.Done()
			snap := s.Snapshot("shared")
			assert.Greater(t, snap.Rate, 0.0)
		}()
	}
	wg.Wait()
	assert.True(t, s.IsLoaded("shared"))
}
