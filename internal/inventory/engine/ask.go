package engine

import (
	"context"

	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/inventory/analytics"
	"inventory-workers/internal/inventory/query"
	"inventory-workers/internal/inventory/resolver"
)

var reportKinds = map[query.Intent]analytics.Kind{
	query.IntentExpiredReport:  analytics.KindExpired,
	query.IntentLowStockReport: analytics.KindLowStock,
	query.IntentTopPerformer:   analytics.KindTopPerformer,
	query.IntentParetoReport:   analytics.KindPareto,
}

type AskRequest struct {
	Session   string
	Text      string
	Role      string
	RateHint  *float64
	Source    query.Source
	Threshold *float64
}

// AskResult carries exactly one of Answer or Summary, or neither when the
// intent only needs acknowledging.
type AskResult struct {
	Intent       query.Intent       `json:"intent"`
	Answer       *QueryResult       `json:"answer,omitempty"`
	Summary      *analytics.Summary `json:"summary,omitempty"`
	Acknowledged bool               `json:"acknowledged,omitempty"`
}

// Ask classifies free text and dispatches it. Report intents from public
// callers are answered as price questions.
func (e *Engine) Ask(ctx context.Context, req AskRequest) (*AskResult, error) {
	role, err := ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	intent := e.classifier.Classify(req.Text)
	res := &AskResult{Intent: intent}

	if intent == query.IntentActivateManagement {
		res.Acknowledged = true
		e.logger.Info("Management mode requested", map[string]interface{}{
			"session": req.Session,
			"role":    role,
		})
		return res, nil
	}

	if kind, ok := reportKinds[intent]; ok && role.IsPrivileged() {
		summary, err := e.Summarize(ctx, SummaryRequest{
			Session: req.Session,
			Kind:    string(kind),
			Role:    string(role),
		})
		if err != nil {
			return nil, err
		}
		res.Summary = summary
		return res, nil
	}

	answer, err := e.Query(ctx, QueryRequest{
		Session:   req.Session,
		Text:      req.Text,
		Role:      string(role),
		RateHint:  req.RateHint,
		Source:    req.Source,
		Threshold: req.Threshold,
	})
	if err != nil {
		return nil, err
	}
	res.Intent = query.IntentPriceLookup
	res.Answer = answer
	return res, nil
}

// Suggest ranks the n closest products to text regardless of threshold.
func (e *Engine) Suggest(session, text string, n int) ([]string, error) {
	snap := e.store.Snapshot(session)
	if !snap.IsLoaded() {
		return nil, errors.NewNoDatasetLoadedError(snap.Session)
	}
	var out []string
	for _, m := range resolver.TopN(e.pre.Clean(text), snap.Dataset, n) {
		out = append(out, m.Record.Product)
	}
	return out, nil
}
