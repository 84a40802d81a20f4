// Package resolver matches a free-form search term against the product names
// of a dataset.
package resolver

import (
	"sort"

	"inventory-workers/internal/inventory/textnorm"
	"inventory-workers/internal/models"
)

const (
	// ThresholdInformal applies to lossy input such as voice or OCR text.
	ThresholdInformal = 60.0
	// ThresholdTyped applies to keyboard input.
	ThresholdTyped = 70.0
)

// Thresholds selects the acceptance threshold by input reliability.
type Thresholds struct {
	Typed    float64
	Informal float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Typed: ThresholdTyped, Informal: ThresholdInformal}
}

func (t Thresholds) For(informal bool) float64 {
	if informal {
		return t.Informal
	}
	return t.Typed
}

// Match is a scored candidate. Index is the record's position in the dataset.
type Match struct {
	Record models.InventoryRecord `json:"record"`
	Index  int                    `json:"index"`
	Score  float64                `json:"score"`
}

// Resolve returns the best-scoring record when its score is strictly greater
// than threshold. Ties keep the earliest record.
func Resolve(term string, ds *models.InventoryDataset, threshold float64) (*Match, bool) {
	needle := textnorm.Words(term)
	if needle == "" || ds.Len() == 0 {
		return nil, false
	}

	bestIdx, bestScore := -1, -1.0
	for i := range ds.Records {
		s := similarity(needle, textnorm.Words(ds.Records[i].Product))
		if s > bestScore {
			bestIdx, bestScore = i, s
		}
	}
	if bestIdx < 0 || bestScore <= threshold {
		return nil, false
	}
	return &Match{Record: ds.Records[bestIdx], Index: bestIdx, Score: bestScore}, true
}

// TopN ranks up to n candidates regardless of threshold, best first.
func TopN(term string, ds *models.InventoryDataset, n int) []Match {
	needle := textnorm.Words(term)
	if needle == "" || ds.Len() == 0 || n <= 0 {
		return nil
	}
	all := make([]Match, 0, ds.Len())
	for i := range ds.Records {
		all = append(all, Match{
			Record: ds.Records[i],
			Index:  i,
			Score:  similarity(needle, textnorm.Words(ds.Records[i].Product)),
		})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	if len(all) > n {
		all = all[:n]
	}
	return all
}
