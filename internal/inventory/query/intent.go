package query

import (
	"strings"

	"inventory-workers/internal/inventory/textnorm"
)

// Intent is the closed set of commands a question can carry.
type Intent string

const (
	IntentPriceLookup        Intent = "price_lookup"
	IntentActivateManagement Intent = "activate_management"
	IntentExpiredReport      Intent = "expired_report"
	IntentLowStockReport     Intent = "low_stock_report"
	IntentTopPerformer       Intent = "top_performer"
	IntentParetoReport       Intent = "pareto_report"
)

// IsReport reports whether the intent asks for a dataset-wide summary.
func (i Intent) IsReport() bool {
	switch i {
	case IntentExpiredReport, IntentLowStockReport, IntentTopPerformer, IntentParetoReport:
		return true
	}
	return false
}

// IntentRule ties an intent to the keywords that trigger it. Rules are checked
// in order and the first match wins.
type IntentRule struct {
	Intent   Intent
	Keywords []string
}

func DefaultIntentRules() []IntentRule {
	return []IntentRule{
		{IntentActivateManagement, []string{"activar modo gerencia", "modo gerencia", "management mode", "activate management"}},
		{IntentExpiredReport, []string{"vencido", "vencidos", "vencidas", "caducado", "caducados", "expired", "perdida por vencimiento"}},
		{IntentLowStockReport, []string{"reponer", "reposicion", "reorden", "bajo stock", "stock bajo", "faltantes", "inversion", "low stock", "reorder", "restock"}},
		{IntentParetoReport, []string{"pareto", "80/20", "clase a", "tier a"}},
		{IntentTopPerformer, []string{"mejor vendedor", "vendedor", "vendedores", "quien vende mas", "mas vendido", "top seller", "top performer", "best seller"}},
	}
}

type compiledRule struct {
	intent   Intent
	keywords []string
}

type Classifier struct {
	rules []compiledRule
}

func NewClassifier(rules []IntentRule) *Classifier {
	if rules == nil {
		rules = DefaultIntentRules()
	}
	c := &Classifier{}
	for _, r := range rules {
		cr := compiledRule{intent: r.Intent}
		for _, kw := range r.Keywords {
			if k := keywordForm(kw); k != "" {
				cr.keywords = append(cr.keywords, k)
			}
		}
		c.rules = append(c.rules, cr)
	}
	return c
}

// Classify returns the first matching intent, or IntentPriceLookup.
func (c *Classifier) Classify(text string) Intent {
	padded := " " + keywordForm(text) + " "
	for _, r := range c.rules {
		for _, kw := range r.keywords {
			if strings.Contains(padded, " "+kw+" ") {
				return r.intent
			}
		}
	}
	return IntentPriceLookup
}

func keywordForm(s string) string {
	return strings.Join(textnorm.Tokens(s, func(r rune) bool { return r == '/' }), " ")
}
