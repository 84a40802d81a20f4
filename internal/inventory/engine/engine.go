// Package engine wires schema mapping, per-session storage, query cleaning,
// product resolution, analytics and disclosure policy into the four
// operations the workers expose: Ingest, Query, SetRate and Summarize.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/common/logger"
	"inventory-workers/internal/common/metrics"
	"inventory-workers/internal/common/observability"
	"inventory-workers/internal/inventory/analytics"
	"inventory-workers/internal/inventory/policy"
	"inventory-workers/internal/inventory/query"
	"inventory-workers/internal/inventory/resolver"
	"inventory-workers/internal/inventory/schema"
	"inventory-workers/internal/inventory/store"
	"inventory-workers/internal/models"
)

// Config carries the tunables of the engine. Zero values fall back to defaults.
type Config struct {
	// DefaultSession names the session used when a request leaves it empty.
	DefaultSession string
	DefaultRate    float64
	Thresholds     resolver.Thresholds
	ExpiryPolicy   analytics.ExpiryPolicy
	RequiredFields []models.CanonicalField
	// Synonyms are merged over the built-in table.
	Synonyms      map[models.CanonicalField][]string
	FillerPhrases []string
	IntentRules   []query.IntentRule
	Policy        policy.Table
	// Suggestions is how many near misses a privileged NotFound carries.
	Suggestions int
}

func DefaultConfig() Config {
	return Config{
		DefaultRate:  store.DefaultRate,
		Thresholds:   resolver.DefaultThresholds(),
		ExpiryPolicy: analytics.UnparseableNotExpired,
		Suggestions:  3,
	}
}

type Engine struct {
	cfg        Config
	store      *store.Store
	mapper     *schema.Mapper
	pre        *query.Preprocessor
	classifier *query.Classifier
	analyzer   *analytics.Analyzer
	policy     *policy.Engine
	obs        *observability.Observability
	logger     logger.Logger
	now        func() time.Time
}

type Option func(*Engine)

// WithClock replaces the time source used for expiry checks and report stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithObservability(o *observability.Observability) Option {
	return func(e *Engine) { e.obs = o }
}

// WithStore shares a store between engines.
func WithStore(s *store.Store) Option {
	return func(e *Engine) { e.store = s }
}

func New(cfg Config, log logger.Logger, opts ...Option) (*Engine, error) {
	defaults := DefaultConfig()
	if cfg.DefaultRate <= 0 {
		cfg.DefaultRate = defaults.DefaultRate
	}
	if cfg.Thresholds.Typed <= 0 {
		cfg.Thresholds.Typed = defaults.Thresholds.Typed
	}
	if cfg.Thresholds.Informal <= 0 {
		cfg.Thresholds.Informal = defaults.Thresholds.Informal
	}
	if cfg.ExpiryPolicy == "" {
		cfg.ExpiryPolicy = defaults.ExpiryPolicy
	}
	if cfg.FillerPhrases == nil {
		cfg.FillerPhrases = query.DefaultFillerPhrases()
	}
	if cfg.Suggestions < 0 {
		cfg.Suggestions = 0
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	table := schema.MustDefaultTable()
	if len(cfg.Synonyms) > 0 {
		merged, err := table.Merge(cfg.Synonyms)
		if err != nil {
			return nil, err
		}
		table = merged
	}

	e := &Engine{
		cfg:        cfg,
		mapper:     schema.NewMapper(table, schema.WithRequiredFields(cfg.RequiredFields...)),
		pre:        query.NewPreprocessor(cfg.FillerPhrases),
		classifier: query.NewClassifier(cfg.IntentRules),
		policy:     policy.NewEngine(cfg.Policy),
		logger:     log.With(map[string]interface{}{"component": "inventory-engine"}),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = store.New(cfg.DefaultRate, store.WithDefaultSession(cfg.DefaultSession))
	}
	if e.obs == nil {
		e.obs = &observability.Observability{}
	}
	e.analyzer = analytics.NewAnalyzer(analytics.WithClock(e.now), analytics.WithExpiryPolicy(cfg.ExpiryPolicy))
	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Snapshot exposes the session's current dataset and rate.
func (e *Engine) Snapshot(session string) *store.Snapshot {
	return e.store.Snapshot(session)
}

// ParseRole validates a caller-supplied role.
func ParseRole(s string) (models.Role, error) {
	role, err := models.ParseRole(s)
	if err != nil {
		return "", errors.NewValidationError(err.Error())
	}
	return role, nil
}

type IngestResult struct {
	Success         bool                    `json:"success"`
	Session         string                  `json:"session"`
	CanonicalFields []models.CanonicalField `json:"canonicalFields"`
	RowCount        int                     `json:"rowCount"`
	SkippedRows     int                     `json:"skippedRows"`
	Domain          schema.Domain           `json:"domain"`
	Version         uint64                  `json:"version"`
	ProductFallback bool                    `json:"productFallback"`
	UnmappedHeaders []string                `json:"unmappedHeaders,omitempty"`
}

// Ingest maps the headers, types every row and replaces the session's dataset.
// On a schema error the previous dataset stays active.
func (e *Engine) Ingest(ctx context.Context, session string, headers []string, rows [][]interface{}) (*IngestResult, error) {
	ctx, span := e.obs.StartSpan(ctx, "inventory.ingest",
		attribute.String("session", session),
		attribute.Int("rows", len(rows)),
	)
	defer span.End()

	ds, mapping, err := e.mapper.Build(headers, rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "schema")
		metrics.InventoryIngests.WithLabelValues("schema_error", "").Inc()
		e.logger.Warn("Ingestion rejected", map[string]interface{}{
			"session": session,
			"headers": headers,
			"error":   err.Error(),
		})
		return nil, err
	}

	domain := schema.DetectDomain(ds)
	snap := e.store.Load(session, ds, domain)

	unmapped := make([]string, 0, len(mapping.Unmapped))
	for _, i := range mapping.Unmapped {
		unmapped = append(unmapped, headers[i])
	}

	metrics.InventoryIngests.WithLabelValues("success", string(domain)).Inc()
	metrics.InventoryRows.WithLabelValues(snap.Session).Set(float64(ds.Len()))
	span.SetAttributes(attribute.String("domain", string(domain)), attribute.Int64("version", int64(snap.Version)))

	fields := map[string]interface{}{
		"session":     snap.Session,
		"rows":        ds.Len(),
		"skippedRows": ds.SkippedRows,
		"domain":      domain,
		"version":     snap.Version,
	}
	if mapping.ProductFallback {
		fields["productColumn"] = headers[mapping.Columns[models.FieldProduct]]
		e.logger.Warn("No product header recognized, using first unmapped column", fields)
	} else {
		e.logger.Info("Dataset ingested", fields)
	}

	return &IngestResult{
		Success:         true,
		Session:         snap.Session,
		CanonicalFields: ds.Fields,
		RowCount:        ds.Len(),
		SkippedRows:     ds.SkippedRows,
		Domain:          domain,
		Version:         snap.Version,
		ProductFallback: mapping.ProductFallback,
		UnmappedHeaders: unmapped,
	}, nil
}

type QueryRequest struct {
	Session string
	Text    string
	Role    string
	// RateHint overrides the session rate for this answer. Privileged hints
	// are also stored on the session.
	RateHint *float64
	Source   query.Source
	// Threshold overrides the source-based acceptance threshold.
	Threshold *float64
}

// QueryResult is the disclosed answer plus what the engine searched for.
type QueryResult struct {
	policy.Answer
	Term        string   `json:"term"`
	Threshold   float64  `json:"threshold"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (e *Engine) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	ctx, span := e.obs.StartSpan(ctx, "inventory.query",
		attribute.String("session", req.Session),
		attribute.String("source", string(req.Source)),
	)
	defer span.End()

	role, err := ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	snap := e.store.Snapshot(req.Session)
	if !snap.IsLoaded() {
		return nil, errors.NewNoDatasetLoadedError(snap.Session)
	}

	rate := snap.Rate
	if req.RateHint != nil {
		if err := store.ValidateRate(*req.RateHint); err != nil {
			return nil, err
		}
		rate = *req.RateHint
		if role.IsPrivileged() {
			// the stored snapshot pairs the new rate with the dataset it was set against
			updated, err := e.store.SetRate(req.Session, rate)
			if err != nil {
				return nil, err
			}
			snap = updated
			metrics.ExchangeRate.WithLabelValues(snap.Session).Set(rate)
		}
	}

	threshold := e.cfg.Thresholds.For(req.Source.Informal())
	if req.Threshold != nil {
		if *req.Threshold < 0 || *req.Threshold >= 100 {
			return nil, errors.NewValidationError(fmt.Sprintf("threshold must be in [0,100), got %v", *req.Threshold))
		}
		threshold = *req.Threshold
	}

	term := e.pre.Clean(req.Text)
	result := &QueryResult{Term: term, Threshold: threshold}

	match, ok := resolver.Resolve(term, snap.Dataset, threshold)
	if !ok {
		result.Answer = policy.NotFound(role)
		if role.IsPrivileged() && e.cfg.Suggestions > 0 {
			for _, c := range resolver.TopN(term, snap.Dataset, e.cfg.Suggestions) {
				result.Suggestions = append(result.Suggestions, c.Record.Product)
			}
		}
		metrics.InventoryQueries.WithLabelValues(string(role), "not_found").Inc()
		e.obs.RecordQuery(ctx, string(role), false, 0)
		e.logger.Warn("No product matched", map[string]interface{}{
			"session":   snap.Session,
			"term":      term,
			"threshold": threshold,
		})
		return result, nil
	}

	facts := e.analyzer.Analyze(match.Record, snap.Dataset, rate)
	result.Answer = e.policy.Assemble(role, match, &facts)

	metrics.InventoryQueries.WithLabelValues(string(role), "found").Inc()
	metrics.InventoryMatchScore.Observe(match.Score)
	e.obs.RecordQuery(ctx, string(role), true, match.Score)
	span.SetAttributes(attribute.Float64("score", match.Score))

	e.logger.Info("Product question answered", map[string]interface{}{
		"session": snap.Session,
		"role":    role,
		"product": match.Record.Product,
		"score":   analytics.Round2(match.Score),
		"expired": facts.Expired,
	})
	return result, nil
}

// SetRate stores a new exchange rate for the session. Only privileged callers may set it.
func (e *Engine) SetRate(ctx context.Context, session, roleName string, value float64) (*store.Snapshot, error) {
	_, span := e.obs.StartSpan(ctx, "inventory.set_rate", attribute.String("session", session))
	defer span.End()

	role, err := ParseRole(roleName)
	if err != nil {
		return nil, err
	}
	if !role.IsPrivileged() {
		return nil, errors.NewRoleNotPermittedError(string(role), "setRate")
	}
	snap, err := e.store.SetRate(session, value)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	metrics.ExchangeRate.WithLabelValues(snap.Session).Set(value)
	e.logger.Info("Exchange rate updated", map[string]interface{}{
		"session": snap.Session,
		"rate":    value,
		"version": snap.Version,
	})
	return snap, nil
}

type SummaryRequest struct {
	Session string
	Kind    string
	Role    string
	GroupBy string
	ValueBy string
	Limit   int
}

// Summarize builds a dataset-wide report. Only privileged callers may request one.
func (e *Engine) Summarize(ctx context.Context, req SummaryRequest) (*analytics.Summary, error) {
	_, span := e.obs.StartSpan(ctx, "inventory.summarize",
		attribute.String("session", req.Session),
		attribute.String("kind", req.Kind),
	)
	defer span.End()

	role, err := ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if !role.IsPrivileged() {
		return nil, errors.NewRoleNotPermittedError(string(role), "summarize")
	}
	kind, err := analytics.ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}

	opts := analytics.SummaryOptions{Limit: req.Limit}
	if opts.GroupBy, err = optionalField("groupBy", req.GroupBy); err != nil {
		return nil, err
	}
	if opts.ValueBy, err = optionalField("valueBy", req.ValueBy); err != nil {
		return nil, err
	}

	snap := e.store.Snapshot(req.Session)
	if !snap.IsLoaded() {
		return nil, errors.NewNoDatasetLoadedError(snap.Session)
	}

	summary, err := e.analyzer.Summarize(kind, snap.Dataset, snap.Rate, opts)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	metrics.InventoryReports.WithLabelValues(string(kind)).Inc()

	fields := map[string]interface{}{
		"session": snap.Session,
		"kind":    kind,
	}
	if len(summary.Unavailable) > 0 {
		fields["unavailable"] = summary.Unavailable
		e.logger.Warn("Summary built on a partial schema", fields)
	} else {
		e.logger.Info("Summary built", fields)
	}
	return summary, nil
}

func optionalField(name, value string) (models.CanonicalField, error) {
	if value == "" {
		return "", nil
	}
	f, ok := models.ParseCanonicalField(value)
	if !ok {
		return "", errors.NewValidationError(fmt.Sprintf("unknown %s field %q", name, value))
	}
	return f, nil
}
