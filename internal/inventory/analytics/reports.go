package analytics

import (
	"fmt"
	"sort"
	"time"

	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/models"
)

// Kind selects a dataset-wide summary.
type Kind string

const (
	KindExpired      Kind = "expired"
	KindLowStock     Kind = "lowStock"
	KindTopPerformer Kind = "topPerformer"
	KindPareto       Kind = "pareto"
)

func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindExpired, KindLowStock, KindTopPerformer, KindPareto} {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.NewUnsupportedReportError(s)
}

type LossItem struct {
	Row          int        `json:"row"`
	Product      string     `json:"product"`
	CurrentStock float64    `json:"currentStock"`
	Cost         float64    `json:"cost"`
	Loss         float64    `json:"loss"`
	ExpiryDate   *time.Time `json:"expiryDate,omitempty"`
	ExpiryRaw    string     `json:"expiryRaw,omitempty"`
}

// LossReport totals stock*cost over expired rows. Expired rows missing stock
// or cost are counted in Incomplete and excluded from Total.
type LossReport struct {
	Items      []LossItem `json:"items"`
	Total      float64    `json:"total"`
	Converted  float64    `json:"converted"`
	Incomplete int        `json:"incomplete"`
}

type ReplenishmentItem struct {
	Row          int      `json:"row"`
	Product      string   `json:"product"`
	CurrentStock float64  `json:"currentStock"`
	MinimumStock float64  `json:"minimumStock"`
	Needed       float64  `json:"needed"`
	Cost         *float64 `json:"cost,omitempty"`
	Investment   *float64 `json:"investment,omitempty"`
	Location     string   `json:"location,omitempty"`
}

// ReplenishmentReport totals (minimum-stock)*cost over rows at or below minimum.
type ReplenishmentReport struct {
	Items     []ReplenishmentItem `json:"items"`
	Total     float64             `json:"total"`
	Converted float64             `json:"converted"`
}

type PerformanceEntry struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Rows  int     `json:"rows"`
}

type PerformanceReport struct {
	GroupBy models.CanonicalField `json:"groupBy"`
	ValueBy models.CanonicalField `json:"valueBy"`
	Ranking []PerformanceEntry    `json:"ranking"`
	Top     *PerformanceEntry     `json:"top,omitempty"`
}

type ParetoItem struct {
	Row        int     `json:"row"`
	Product    string  `json:"product"`
	StockValue float64 `json:"stockValue"`
}

type ParetoReport struct {
	Threshold  float64      `json:"threshold"`
	TierA      []ParetoItem `json:"tierA"`
	TierAValue float64      `json:"tierAValue"`
	TotalValue float64      `json:"totalValue"`
	// Share is TierAValue over TotalValue, in percent.
	Share float64 `json:"share"`
}

// Summary wraps exactly one report plus the fields that were missing for it.
type Summary struct {
	Kind         Kind                    `json:"kind"`
	Rate         float64                 `json:"rate"`
	GeneratedAt  time.Time               `json:"generatedAt"`
	Expired      *LossReport             `json:"expired,omitempty"`
	LowStock     *ReplenishmentReport    `json:"lowStock,omitempty"`
	TopPerformer *PerformanceReport      `json:"topPerformer,omitempty"`
	Pareto       *ParetoReport           `json:"pareto,omitempty"`
	Unavailable  []models.CanonicalField `json:"unavailable,omitempty"`
}

type SummaryOptions struct {
	GroupBy models.CanonicalField
	ValueBy models.CanonicalField
	Limit   int
}

var groupableFields = map[models.CanonicalField]bool{
	models.FieldSalesperson: true,
	models.FieldProduct:     true,
	models.FieldLocation:    true,
}

// Summarize builds the report for kind. Missing columns are reported in
// Summary.Unavailable rather than as errors.
func (a *Analyzer) Summarize(kind Kind, ds *models.InventoryDataset, rate float64, opts SummaryOptions) (*Summary, error) {
	s := &Summary{Kind: kind, Rate: rate, GeneratedAt: a.now().UTC()}
	switch kind {
	case KindExpired:
		s.Unavailable = missingFields(ds, models.FieldExpiryDate, models.FieldCurrentStock, models.FieldCost)
		r := a.ExpiredLoss(ds, rate)
		s.Expired = &r
	case KindLowStock:
		s.Unavailable = missingFields(ds, models.FieldCurrentStock, models.FieldMinimumStock, models.FieldCost)
		r := Replenishment(ds, rate)
		s.LowStock = &r
	case KindTopPerformer:
		groupBy, valueBy := opts.GroupBy, opts.ValueBy
		if groupBy == "" {
			groupBy = models.FieldSalesperson
		}
		if valueBy == "" {
			valueBy = models.FieldTotal
		}
		if !groupableFields[groupBy] {
			return nil, errors.NewValidationError(fmt.Sprintf("cannot group by %s", groupBy))
		}
		if !valueBy.IsNumeric() {
			return nil, errors.NewValidationError(fmt.Sprintf("cannot sum %s", valueBy))
		}
		s.Unavailable = missingFields(ds, groupBy, valueBy)
		r := TopPerformers(ds, groupBy, valueBy, opts.Limit)
		s.TopPerformer = &r
	case KindPareto:
		s.Unavailable = missingFields(ds, models.FieldCurrentStock, models.FieldSalePrice)
		r := Pareto(ds)
		s.Pareto = &r
	default:
		return nil, errors.NewUnsupportedReportError(string(kind))
	}
	return s, nil
}

func missingFields(ds *models.InventoryDataset, fields ...models.CanonicalField) []models.CanonicalField {
	var out []models.CanonicalField
	for _, f := range fields {
		if !ds.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// ExpiredLoss sums stock*cost over rows the analyzer considers expired.
func (a *Analyzer) ExpiredLoss(ds *models.InventoryDataset, rate float64) LossReport {
	r := LossReport{Items: []LossItem{}}
	if ds == nil {
		return r
	}
	for _, rec := range ds.Records {
		expired, _ := a.IsExpired(rec)
		if !expired {
			continue
		}
		if rec.CurrentStock == nil || rec.Cost == nil {
			r.Incomplete++
			continue
		}
		loss := *rec.CurrentStock * *rec.Cost
		r.Items = append(r.Items, LossItem{
			Row:          rec.Row,
			Product:      rec.Product,
			CurrentStock: *rec.CurrentStock,
			Cost:         *rec.Cost,
			Loss:         loss,
			ExpiryDate:   rec.ExpiryDate,
			ExpiryRaw:    rec.ExpiryRaw,
		})
		r.Total += loss
	}
	r.Converted = r.Total * rate
	return r
}

// Replenishment lists rows with stock at or below minimum. Rows without a cost
// are listed but contribute nothing to Total.
func Replenishment(ds *models.InventoryDataset, rate float64) ReplenishmentReport {
	r := ReplenishmentReport{Items: []ReplenishmentItem{}}
	if ds == nil {
		return r
	}
	for _, rec := range ds.Records {
		if rec.CurrentStock == nil || rec.MinimumStock == nil || *rec.CurrentStock > *rec.MinimumStock {
			continue
		}
		item := ReplenishmentItem{
			Row:          rec.Row,
			Product:      rec.Product,
			CurrentStock: *rec.CurrentStock,
			MinimumStock: *rec.MinimumStock,
			Needed:       *rec.MinimumStock - *rec.CurrentStock,
			Cost:         rec.Cost,
			Location:     rec.Location,
		}
		if rec.Cost != nil {
			inv := item.Needed * *rec.Cost
			item.Investment = &inv
			r.Total += inv
		}
		r.Items = append(r.Items, item)
	}
	r.Converted = r.Total * rate
	return r
}

// TopPerformers sums valueBy per distinct groupBy value, highest first. Equal
// sums keep first-seen order. limit <= 0 keeps every group.
func TopPerformers(ds *models.InventoryDataset, groupBy, valueBy models.CanonicalField, limit int) PerformanceReport {
	r := PerformanceReport{GroupBy: groupBy, ValueBy: valueBy, Ranking: []PerformanceEntry{}}
	if ds == nil {
		return r
	}
	index := make(map[string]int)
	for _, rec := range ds.Records {
		key := rec.Text(groupBy)
		v := rec.Number(valueBy)
		if key == "" || v == nil {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(r.Ranking)
			index[key] = i
			r.Ranking = append(r.Ranking, PerformanceEntry{Key: key})
		}
		r.Ranking[i].Value += *v
		r.Ranking[i].Rows++
	}
	sort.SliceStable(r.Ranking, func(i, j int) bool { return r.Ranking[i].Value > r.Ranking[j].Value })
	if limit > 0 && len(r.Ranking) > limit {
		r.Ranking = r.Ranking[:limit]
	}
	if len(r.Ranking) > 0 {
		top := r.Ranking[0]
		r.Top = &top
	}
	return r
}

// Pareto lists the tier A records, highest stock value first.
func Pareto(ds *models.InventoryDataset) ParetoReport {
	r := ParetoReport{TierA: []ParetoItem{}}
	threshold, ok := ParetoThreshold(ds)
	if !ok {
		return r
	}
	r.Threshold = threshold
	for _, rec := range ds.Records {
		v, ok := stockValue(rec)
		if !ok {
			continue
		}
		r.TotalValue += v
		if v >= threshold {
			r.TierA = append(r.TierA, ParetoItem{Row: rec.Row, Product: rec.Product, StockValue: v})
			r.TierAValue += v
		}
	}
	sort.SliceStable(r.TierA, func(i, j int) bool { return r.TierA[i].StockValue > r.TierA[j].StockValue })
	if r.TotalValue > 0 {
		r.Share = r.TierAValue / r.TotalValue * 100
	}
	return r
}
