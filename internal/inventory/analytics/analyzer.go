// Package analytics derives pricing, margin, Pareto, expiry and reorder facts
// from inventory records.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/models"
)

// Fact names a derived or raw value that an answer may disclose.
type Fact string

const (
	FactProduct        Fact = "product"
	FactSalePrice      Fact = "salePrice"
	FactConvertedPrice Fact = "convertedPrice"
	FactCost           Fact = "cost"
	FactMargin         Fact = "margin"
	FactStockValue     Fact = "stockValue"
	FactTier           Fact = "paretoTier"
	FactCurrentStock   Fact = "currentStock"
	FactMinimumStock   Fact = "minimumStock"
	FactAvailability   Fact = "availability"
	FactLocation       Fact = "location"
	FactExpiry         Fact = "expiry"
	FactReorder        Fact = "reorder"
)

// ExpiryPolicy decides how a present but unparseable expiry cell is read.
type ExpiryPolicy string

const (
	UnparseableNotExpired ExpiryPolicy = "not_expired"
	UnparseableExpired    ExpiryPolicy = "expired"
)

func ParseExpiryPolicy(s string) (ExpiryPolicy, error) {
	switch ExpiryPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnparseableNotExpired:
		return UnparseableNotExpired, nil
	case UnparseableExpired:
		return UnparseableExpired, nil
	}
	return "", errors.NewValidationError(fmt.Sprintf("unknown unparseable expiry policy %q", s))
}

type Tier string

const (
	TierA       Tier = "A"
	TierB       Tier = "B"
	TierUnknown Tier = ""
)

// ParetoPercentile is the stock-value percentile at or above which a record is tier A.
const ParetoPercentile = 0.80

// Snapshot holds the facts derived for one record. Nil pointers are unavailable
// and listed in Unavailable.
type Snapshot struct {
	Product         string     `json:"product"`
	Rate            float64    `json:"rate"`
	SalePrice       *float64   `json:"salePrice,omitempty"`
	Cost            *float64   `json:"cost,omitempty"`
	ConvertedPrice  *float64   `json:"convertedPrice,omitempty"`
	ConvertedCost   *float64   `json:"convertedCost,omitempty"`
	Margin          *float64   `json:"margin,omitempty"`
	StockValue      *float64   `json:"stockValue,omitempty"`
	Tier            Tier       `json:"paretoTier,omitempty"`
	ParetoThreshold *float64   `json:"paretoThreshold,omitempty"`
	CurrentStock    *float64   `json:"currentStock,omitempty"`
	MinimumStock    *float64   `json:"minimumStock,omitempty"`
	Available       *bool      `json:"available,omitempty"`
	Location        string     `json:"location,omitempty"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty"`
	Expired         bool       `json:"expired"`
	ExpiryKnown     bool       `json:"expiryKnown"`
	Reorder         *bool      `json:"reorder,omitempty"`
	Unavailable     []Fact     `json:"unavailable,omitempty"`
}

// IsUnavailable reports whether f could not be computed.
func (s *Snapshot) IsUnavailable(f Fact) bool {
	for _, u := range s.Unavailable {
		if u == f {
			return true
		}
	}
	return false
}

type Analyzer struct {
	now         func() time.Time
	unparseable ExpiryPolicy
}

type Option func(*Analyzer)

// WithClock injects the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

func WithExpiryPolicy(p ExpiryPolicy) Option {
	return func(a *Analyzer) { a.unparseable = p }
}

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{now: time.Now, unparseable: UnparseableNotExpired}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) ExpiryPolicy() ExpiryPolicy {
	return a.unparseable
}

// Analyze derives the snapshot for rec. The Pareto threshold is recomputed from
// ds on every call.
func (a *Analyzer) Analyze(rec models.InventoryRecord, ds *models.InventoryDataset, rate float64) Snapshot {
	snap := Snapshot{
		Product:      rec.Product,
		Rate:         rate,
		SalePrice:    rec.SalePrice,
		Cost:         rec.Cost,
		CurrentStock: rec.CurrentStock,
		MinimumStock: rec.MinimumStock,
		Location:     rec.Location,
	}
	missing := func(f Fact) { snap.Unavailable = append(snap.Unavailable, f) }

	if rec.SalePrice == nil {
		missing(FactSalePrice)
		missing(FactConvertedPrice)
	} else {
		snap.ConvertedPrice = ptr(*rec.SalePrice * rate)
	}

	if rec.Cost == nil {
		missing(FactCost)
	} else {
		snap.ConvertedCost = ptr(*rec.Cost * rate)
	}

	if m, ok := Margin(rec.SalePrice, rec.Cost); ok {
		snap.Margin = ptr(m)
	} else {
		missing(FactMargin)
	}

	if v, ok := stockValue(rec); ok {
		snap.StockValue = ptr(v)
		if threshold, ok := ParetoThreshold(ds); ok {
			snap.ParetoThreshold = ptr(threshold)
			snap.Tier = TierB
			if v >= threshold {
				snap.Tier = TierA
			}
		}
	} else {
		missing(FactStockValue)
	}
	if snap.Tier == TierUnknown {
		missing(FactTier)
	}

	if rec.CurrentStock == nil {
		missing(FactCurrentStock)
		missing(FactAvailability)
	} else {
		snap.Available = boolPtr(*rec.CurrentStock > 0)
	}
	if rec.MinimumStock == nil {
		missing(FactMinimumStock)
	}
	if rec.CurrentStock != nil && rec.MinimumStock != nil {
		snap.Reorder = boolPtr(*rec.CurrentStock <= *rec.MinimumStock)
	} else {
		missing(FactReorder)
	}

	if rec.Location == "" {
		missing(FactLocation)
	}

	snap.Expired, snap.ExpiryKnown = a.IsExpired(rec)
	snap.ExpiryDate = rec.ExpiryDate
	if !snap.ExpiryKnown {
		missing(FactExpiry)
	}
	return snap
}

// IsExpired compares the expiry date with today at day granularity. known is
// false when the record has no parseable date; expired then follows the
// configured policy for unparseable cells and is false for empty ones.
func (a *Analyzer) IsExpired(rec models.InventoryRecord) (expired, known bool) {
	if rec.ExpiryDate != nil {
		return dayBefore(*rec.ExpiryDate, a.now()), true
	}
	if rec.ExpiryRaw != "" {
		return a.unparseable == UnparseableExpired, false
	}
	return false, false
}

// dayBefore reports whether the calendar date of d precedes today's date.
func dayBefore(d, now time.Time) bool {
	y, m, dd := d.Date()
	expiry := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	ny, nm, nd := now.Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return expiry.Before(today)
}

// Margin is (sale-cost)/sale*100, defined only for a positive sale price and a known cost.
func Margin(sale, cost *float64) (float64, bool) {
	if sale == nil || cost == nil || *sale <= 0 {
		return 0, false
	}
	m := (*sale - *cost) / *sale * 100
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return 0, false
	}
	return m, true
}

func stockValue(rec models.InventoryRecord) (float64, bool) {
	if rec.CurrentStock == nil || rec.SalePrice == nil {
		return 0, false
	}
	return *rec.CurrentStock * *rec.SalePrice, true
}

// ParetoThreshold is the 80th percentile of stock value over every record that
// has both stock and price, using linear interpolation between closest ranks.
func ParetoThreshold(ds *models.InventoryDataset) (float64, bool) {
	if ds == nil {
		return 0, false
	}
	values := make([]float64, 0, len(ds.Records))
	for _, rec := range ds.Records {
		if v, ok := stockValue(rec); ok {
			values = append(values, v)
		}
	}
	return percentile(values, ParetoPercentile)
}

func percentile(values []float64, p float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo], true
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo)), true
}

// Round2 rounds a money or percentage value for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }
