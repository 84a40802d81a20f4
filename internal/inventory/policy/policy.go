// Package policy decides which facts an answer discloses for a given role.
// Disclosure is driven by a declarative table; the package never produces prose.
package policy

import (
	"inventory-workers/internal/inventory/analytics"
	"inventory-workers/internal/inventory/resolver"
	"inventory-workers/internal/models"
)

type Disclosure string

const (
	Show            Disclosure = "show"
	Hide            Disclosure = "hide"
	ShowIfAvailable Disclosure = "show_if_available"
)

// Rule discloses one fact. SuppressWhenExpired withholds the fact for expired
// records without reporting why.
type Rule struct {
	Fact                analytics.Fact `json:"fact"`
	Disclosure          Disclosure     `json:"disclosure"`
	SuppressWhenExpired bool           `json:"suppressWhenExpired,omitempty"`
}

type RolePolicy struct {
	Rules []Rule `json:"rules"`
	// Tags enables REORDER, EXPIRED and PARETO_A recommendations.
	Tags bool `json:"tags"`
}

// Table maps each role to its ordered rules.
type Table map[models.Role]RolePolicy

type Reason string

const (
	ReasonNotFound               Reason = "NOT_FOUND"
	ReasonTemporarilyUnavailable Reason = "TEMPORARILY_UNAVAILABLE"
)

type Tag string

const (
	TagReorder Tag = "REORDER"
	TagExpired Tag = "EXPIRED"
	TagParetoA Tag = "PARETO_A"
)

func DefaultTable() Table {
	return Table{
		models.RolePublic: {
			Rules: []Rule{
				{Fact: analytics.FactProduct, Disclosure: Show},
				{Fact: analytics.FactSalePrice, Disclosure: Show, SuppressWhenExpired: true},
				{Fact: analytics.FactConvertedPrice, Disclosure: Show, SuppressWhenExpired: true},
				{Fact: analytics.FactAvailability, Disclosure: ShowIfAvailable, SuppressWhenExpired: true},
				{Fact: analytics.FactCost, Disclosure: Hide},
				{Fact: analytics.FactMargin, Disclosure: Hide},
				{Fact: analytics.FactTier, Disclosure: Hide},
				{Fact: analytics.FactCurrentStock, Disclosure: Hide},
				{Fact: analytics.FactMinimumStock, Disclosure: Hide},
				{Fact: analytics.FactLocation, Disclosure: Hide},
				{Fact: analytics.FactExpiry, Disclosure: Hide},
				{Fact: analytics.FactReorder, Disclosure: Hide},
			},
		},
		models.RolePrivileged: {
			Rules: []Rule{
				{Fact: analytics.FactProduct, Disclosure: Show},
				{Fact: analytics.FactCost, Disclosure: Show},
				{Fact: analytics.FactSalePrice, Disclosure: Show},
				{Fact: analytics.FactConvertedPrice, Disclosure: Show},
				{Fact: analytics.FactMargin, Disclosure: Show},
				{Fact: analytics.FactTier, Disclosure: Show},
				{Fact: analytics.FactCurrentStock, Disclosure: Show},
				{Fact: analytics.FactMinimumStock, Disclosure: Show},
				{Fact: analytics.FactLocation, Disclosure: ShowIfAvailable},
				{Fact: analytics.FactExpiry, Disclosure: Show},
				{Fact: analytics.FactReorder, Disclosure: Show},
				{Fact: analytics.FactStockValue, Disclosure: ShowIfAvailable},
			},
			Tags: true,
		},
	}
}

type FactValue struct {
	Fact  analytics.Fact `json:"fact"`
	Value interface{}    `json:"value"`
}

// Answer is the structured result of a product question.
type Answer struct {
	Found   bool        `json:"found"`
	Reason  Reason      `json:"reason,omitempty"`
	Role    models.Role `json:"role"`
	Product string      `json:"product,omitempty"`
	Score   float64     `json:"score,omitempty"`
	Rate    float64     `json:"rate,omitempty"`
	// Facts are disclosed in rule order.
	Facts       []FactValue      `json:"facts,omitempty"`
	Message     Reason           `json:"message,omitempty"`
	Tags        []Tag            `json:"tags,omitempty"`
	Unavailable []analytics.Fact `json:"unavailable,omitempty"`
}

// Get returns a disclosed fact.
func (a *Answer) Get(f analytics.Fact) (interface{}, bool) {
	for _, fv := range a.Facts {
		if fv.Fact == f {
			return fv.Value, true
		}
	}
	return nil, false
}

func (a *Answer) Has(f analytics.Fact) bool {
	_, ok := a.Get(f)
	return ok
}

// Disclosed lists the facts in disclosure order.
func (a *Answer) Disclosed() []analytics.Fact {
	out := make([]analytics.Fact, 0, len(a.Facts))
	for _, fv := range a.Facts {
		out = append(out, fv.Fact)
	}
	return out
}

type Engine struct {
	table Table
}

func NewEngine(table Table) *Engine {
	if table == nil {
		table = DefaultTable()
	}
	return &Engine{table: table}
}

// NotFound is the answer for a question that matched no product.
func NotFound(role models.Role) Answer {
	return Answer{Found: false, Reason: ReasonNotFound, Role: role}
}

// Assemble applies the role's rules to a match and its snapshot. A nil match
// or snapshot yields NotFound. Roles missing from the table disclose nothing
// beyond the product name.
func (e *Engine) Assemble(role models.Role, match *resolver.Match, snap *analytics.Snapshot) Answer {
	if match == nil || snap == nil {
		return NotFound(role)
	}
	ans := Answer{
		Found:   true,
		Role:    role,
		Product: match.Record.Product,
		Score:   analytics.Round2(match.Score),
		Rate:    snap.Rate,
	}

	rp, ok := e.table[role]
	if !ok {
		rp = RolePolicy{Rules: []Rule{{Fact: analytics.FactProduct, Disclosure: Show}}}
	}

	suppressed := false
	for _, rule := range rp.Rules {
		if rule.Disclosure == Hide {
			continue
		}
		if rule.SuppressWhenExpired && snap.Expired {
			suppressed = true
			continue
		}
		v, ok := factValue(rule.Fact, snap)
		if !ok {
			if rule.Disclosure == Show {
				ans.Unavailable = append(ans.Unavailable, rule.Fact)
			}
			continue
		}
		ans.Facts = append(ans.Facts, FactValue{Fact: rule.Fact, Value: v})
	}
	if suppressed {
		ans.Message = ReasonTemporarilyUnavailable
	}

	if rp.Tags {
		if snap.Reorder != nil && *snap.Reorder {
			ans.Tags = append(ans.Tags, TagReorder)
		}
		if snap.Expired {
			ans.Tags = append(ans.Tags, TagExpired)
		}
		if snap.Tier == analytics.TierA {
			ans.Tags = append(ans.Tags, TagParetoA)
		}
	}
	return ans
}

// ExpiryStatus is the privileged view of a record's expiry.
type ExpiryStatus struct {
	Expired bool   `json:"expired"`
	Date    string `json:"date"`
}

func factValue(f analytics.Fact, s *analytics.Snapshot) (interface{}, bool) {
	money := func(p *float64) (interface{}, bool) {
		if p == nil {
			return nil, false
		}
		return analytics.Round2(*p), true
	}
	switch f {
	case analytics.FactProduct:
		return s.Product, s.Product != ""
	case analytics.FactSalePrice:
		return money(s.SalePrice)
	case analytics.FactConvertedPrice:
		return money(s.ConvertedPrice)
	case analytics.FactCost:
		return money(s.Cost)
	case analytics.FactMargin:
		return money(s.Margin)
	case analytics.FactStockValue:
		return money(s.StockValue)
	case analytics.FactTier:
		return string(s.Tier), s.Tier != analytics.TierUnknown
	case analytics.FactCurrentStock:
		if s.CurrentStock == nil {
			return nil, false
		}
		return *s.CurrentStock, true
	case analytics.FactMinimumStock:
		if s.MinimumStock == nil {
			return nil, false
		}
		return *s.MinimumStock, true
	case analytics.FactAvailability:
		if s.Available == nil {
			return nil, false
		}
		return *s.Available, true
	case analytics.FactLocation:
		return s.Location, s.Location != ""
	case analytics.FactExpiry:
		if !s.ExpiryKnown || s.ExpiryDate == nil {
			return nil, false
		}
		return ExpiryStatus{Expired: s.Expired, Date: s.ExpiryDate.Format("2006-01-02")}, true
	case analytics.FactReorder:
		if s.Reorder == nil {
			return nil, false
		}
		return *s.Reorder, true
	}
	return nil, false
}
