package fetchexchangerate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-workers/internal/common/database"
	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/common/logger"
	"inventory-workers/internal/inventory/engine"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

type fixture struct {
	handler *Handler
	engine  *engine.Engine
	redis   *miniredis.Miniredis
	calls   *int32
}

func setup(t *testing.T, status int, body string) *fixture {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, browserUA, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	eng, err := engine.New(engine.DefaultConfig(), logger.NewTestLogger(t))
	require.NoError(t, err)

	cfg := LoadConfig()
	cfg.ProviderURL = srv.URL
	cfg.UserAgent = browserUA
	cfg.CacheTTL = time.Minute

	rdb := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	h, err := NewHandler(cfg, eng, rdb, logger.NewTestLogger(t))
	require.NoError(t, err)
	return &fixture{handler: h, engine: eng, redis: mr, calls: &calls}
}

func TestExecute_FetchesOfficialRateAndCaches(t *testing.T) {
	f := setup(t, http.StatusOK, `{"oficial":{"padi":{"value":36.71}},"bcv":{"padi":{"value":36.5}}}`)

	out, err := f.handler.Execute(context.Background(), &Input{SessionID: "tienda"})
	require.NoError(t, err)
	assert.Equal(t, 36.71, out.Rate)
	assert.Equal(t, SourceProvider, out.Source)
	assert.Equal(t, 36.71, f.engine.Snapshot("tienda").Rate)

	cached, err := f.redis.Get(CacheKey)
	require.NoError(t, err)
	assert.Equal(t, "36.71", cached)
	assert.Equal(t, time.Minute, f.redis.TTL(CacheKey))
}

func TestExecute_CacheHitSkipsProvider(t *testing.T) {
	f := setup(t, http.StatusOK, `{"oficial":{"padi":{"value":40}}}`)
	require.NoError(t, f.redis.Set(CacheKey, "37.2"))

	out, err := f.handler.Execute(context.Background(), &Input{SessionID: "tienda"})
	require.NoError(t, err)
	assert.Equal(t, 37.2, out.Rate)
	assert.Equal(t, SourceCache, out.Source)
	assert.Equal(t, int32(0), atomic.LoadInt32(f.calls))
}

func TestExecute_RefreshBypassesCache(t *testing.T) {
	f := setup(t, http.StatusOK, `{"oficial":{"padi":{"value":40}}}`)
	require.NoError(t, f.redis.Set(CacheKey, "37.2"))

	out, err := f.handler.Execute(context.Background(), &Input{Refresh: true})
	require.NoError(t, err)
	assert.Equal(t, 40.0, out.Rate)
	assert.Equal(t, int32(1), atomic.LoadInt32(f.calls))
}

func TestExecute_FallsBackToBCV(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{"oficial missing", `{"bcv":{"padi":{"value":36.5}}}`, 36.5},
		{"oficial null", `{"oficial":{"padi":{"value":null}},"bcv":{"padi":{"value":"36,50"}}}`, 36.5},
		{"oficial zero", `{"oficial":{"padi":{"value":0}},"bcv":{"padi":{"value":35}}}`, 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, http.StatusOK, tt.body)
			out, err := f.handler.Execute(context.Background(), &Input{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Rate)
		})
	}
}

func TestExecute_ProviderFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"blocked", http.StatusForbidden, `{"error":"forbidden"}`},
		{"no usable rate", http.StatusOK, `{"paralelo":{"padi":{"value":50}}}`},
		{"not json", http.StatusOK, `<html></html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, tt.status, tt.body)
			_, err := f.handler.Execute(context.Background(), &Input{SessionID: "tienda"})
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeRateFetchFailed))
			assert.Equal(t, engine.DefaultConfig().DefaultRate, f.engine.Snapshot("tienda").Rate)
			assert.False(t, f.redis.Exists(CacheKey))
		})
	}
}

func TestExecute_WithoutCache(t *testing.T) {
	f := setup(t, http.StatusOK, `{"oficial":{"padi":{"value":36.71}}}`)
	f.handler.redis = nil

	_, err := f.handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	_, err = f.handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(f.calls))
}

func TestNewHandler_InvalidConfig(t *testing.T) {
	eng, err := engine.New(engine.DefaultConfig(), nil)
	require.NoError(t, err)

	_, err = NewHandler(&Config{ProviderTimeout: time.Second}, eng, nil, logger.NewNoOpLogger())
	assert.Error(t, err)
}
