package ingestinventory

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/common/logger"
	"inventory-workers/internal/common/validation"
	"inventory-workers/internal/inventory/engine"
	"inventory-workers/internal/models"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.New(engine.DefaultConfig(), logger.NewTestLogger(t))
	require.NoError(t, err)
	return e
}

func pharmacyInput(session string) *Input {
	return &Input{
		SessionID: session,
		Headers:   []string{"Producto", "Precio", "Costo", "Existencia", "Stock Minimo", "Vencimiento"},
		Rows: [][]interface{}{
			{"Amoxicilina 500mg", 3.5, 2.0, 12.0, 5.0, "2030-01-01"},
			{"Loratadina 10mg", "4,00", 1.5, 0.0, 2.0, "01/2024"},
		},
	}
}

func TestExecute_FirstUploadRecordsFingerprint(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	input := pharmacyInput("farmacia-1")
	fp := fingerprint(input.Headers, input.Rows)

	mock.ExpectGet("inventory:ingest:farmacia-1").RedisNil()
	mock.ExpectSet("inventory:ingest:farmacia-1", fp, time.Hour).SetVal("OK")

	h := NewHandler(LoadConfig(), newTestEngine(t), rdb, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.False(t, out.Duplicate)
	assert.Equal(t, 2, out.RowCount)
	assert.Equal(t, "pharmacy", string(out.Domain))
	assert.Contains(t, out.CanonicalFields, models.FieldExpiryDate)
	assert.Equal(t, fp, out.Fingerprint)
	assert.NotEmpty(t, out.IngestID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_IdenticalUploadIsSkipped(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	input := pharmacyInput("farmacia-1")
	fp := fingerprint(input.Headers, input.Rows)
	eng := newTestEngine(t)

	mock.ExpectGet("inventory:ingest:farmacia-1").RedisNil()
	mock.ExpectSet("inventory:ingest:farmacia-1", fp, time.Hour).SetVal("OK")
	mock.ExpectGet("inventory:ingest:farmacia-1").SetVal(fp)

	h := NewHandler(LoadConfig(), eng, rdb, logger.NewTestLogger(t))
	first, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	second, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Version, second.Version, "engine must not be called again")
	assert.Equal(t, first.RowCount, second.RowCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_FingerprintWithoutDatasetReingests(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	input := pharmacyInput("")
	fp := fingerprint(input.Headers, input.Rows)

	mock.ExpectGet("inventory:ingest:default").SetVal(fp)
	mock.ExpectSet("inventory:ingest:default", fp, time.Hour).SetVal("OK")

	h := NewHandler(LoadConfig(), newTestEngine(t), rdb, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.False(t, out.Duplicate)
	assert.Equal(t, uint64(1), out.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_SchemaErrorSkipsFingerprint(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	input := &Input{
		SessionID: "s1",
		Headers:   []string{"Precio", "Costo"},
		Rows:      [][]interface{}{{1.0, 0.5}},
	}
	mock.ExpectGet("inventory:ingest:s1").RedisNil()

	h := NewHandler(LoadConfig(), newTestEngine(t), rdb, logger.NewTestLogger(t))
	_, err := h.Execute(context.Background(), input)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSchemaError))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_RedisOutageDoesNotBlockIngest(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	input := pharmacyInput("s1")
	fp := fingerprint(input.Headers, input.Rows)

	mock.ExpectGet("inventory:ingest:s1").SetErr(stderrors.New("connection refused"))
	mock.ExpectSet("inventory:ingest:s1", fp, time.Hour).SetErr(stderrors.New("connection refused"))

	h := NewHandler(LoadConfig(), newTestEngine(t), rdb, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.True(t, out.Success)
}

func TestExecute_WithoutRedis(t *testing.T) {
	h := NewHandler(LoadConfig(), newTestEngine(t), nil, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), pharmacyInput("s1"))
	require.NoError(t, err)
	assert.Equal(t, 2, out.RowCount)
}

func TestFingerprint_StableAndSensitive(t *testing.T) {
	a := pharmacyInput("s1")
	b := pharmacyInput("s2")
	assert.Equal(t, fingerprint(a.Headers, a.Rows), fingerprint(b.Headers, b.Rows), "session is not part of the payload")

	b.Rows[0][1] = 3.6
	assert.NotEqual(t, fingerprint(a.Headers, a.Rows), fingerprint(b.Headers, b.Rows))
}

func TestInputSchema(t *testing.T) {
	tests := []struct {
		name      string
		variables map[string]interface{}
		valid     bool
	}{
		{
			name: "valid upload",
			variables: map[string]interface{}{
				"sessionId": "s1",
				"headers":   []interface{}{"Producto", "Precio"},
				"rows":      []interface{}{[]interface{}{"Gasas", 1.0}},
			},
			valid: true,
		},
		{
			name: "empty headers",
			variables: map[string]interface{}{
				"headers": []interface{}{},
				"rows":    []interface{}{},
			},
		},
		{
			name: "rows missing",
			variables: map[string]interface{}{
				"headers": []interface{}{"Producto"},
			},
		},
		{
			name: "unknown property",
			variables: map[string]interface{}{
				"headers": []interface{}{"Producto"},
				"rows":    []interface{}{},
				"sheet":   "Hoja1",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validation.ValidateInput(tt.variables, GetInputSchema())
			assert.Equal(t, tt.valid, result.Valid, result.GetErrorMessages())
		})
	}
}

func TestParseInput(t *testing.T) {
	h := &Handler{}
	job := func(vars string) entities.Job {
		return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Variables: vars}}
	}

	input, err := h.parseInput(job(`{"sessionId":"tienda","headers":["Producto","Precio"],"rows":[["Arroz","1,50"]]}`))
	require.NoError(t, err)
	require.NotNil(t, input)
	assert.Equal(t, []string{"Producto", "Precio"}, input.Headers)

	tests := []struct {
		name string
		vars string
	}{
		{"not json", `[`},
		{"missing rows", `{"headers":["Producto"]}`},
		{"headers not array", `{"headers":"Producto","rows":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.parseInput(job(tt.vars))
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
		})
	}
}
