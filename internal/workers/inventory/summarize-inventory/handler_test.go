package summarizeinventory

import (
	"context"
	"database/sql"
	stderrors "errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-workers/internal/common/database"
	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/common/logger"
	"inventory-workers/internal/inventory/analytics"
	"inventory-workers/internal/inventory/engine"
)

var today = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

const insertReport = "INSERT INTO inventory_reports (id, session_id, kind, payload, created_at) VALUES ($1, $2, $3, $4, $5)"

func setupHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	eng, err := engine.New(engine.DefaultConfig(), logger.NewTestLogger(t),
		engine.WithClock(func() time.Time { return today }))
	require.NoError(t, err)

	_, err = eng.Ingest(context.Background(), "farmacia",
		[]string{"Producto", "Costo", "Precio", "Existencia", "Stock Minimo", "Vencimiento"},
		[][]interface{}{
			{"Amoxicilina", 3.0, 5.0, 4.0, 10.0, "2025-01-01"},
			{"Ibuprofeno", 1.0, 2.0, 50.0, 10.0, "2030-01-01"},
		})
	require.NoError(t, err)

	return NewHandler(LoadConfig(), eng, database.NewReportArchive(db), logger.NewTestLogger(t)), mock, db
}

func TestExecute_ArchivesExpiredReport(t *testing.T) {
	h, mock, _ := setupHandler(t)

	mock.ExpectExec(regexp.QuoteMeta(insertReport)).
		WithArgs(sqlmock.AnyArg(), "farmacia", "expired", sqlmock.AnyArg(), today).
		WillReturnResult(sqlmock.NewResult(1, 1))

	out, err := h.Execute(context.Background(), &Input{SessionID: "farmacia", Role: "gerencia", Kind: "expired"})
	require.NoError(t, err)

	assert.True(t, out.Archived)
	assert.NotEmpty(t, out.ReportID)
	require.NotNil(t, out.Summary.Expired)
	require.Len(t, out.Summary.Expired.Items, 1)
	assert.Equal(t, "Amoxicilina", out.Summary.Expired.Items[0].Product)
	assert.InDelta(t, 12.0, out.Summary.Expired.Total, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_TopPerformerMissingColumnsIsNotAnError(t *testing.T) {
	h, mock, _ := setupHandler(t)
	mock.ExpectExec(regexp.QuoteMeta(insertReport)).WillReturnResult(sqlmock.NewResult(1, 1))

	out, err := h.Execute(context.Background(), &Input{SessionID: "farmacia", Role: "privileged", Kind: "topPerformer"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Summary.Unavailable)
	assert.Equal(t, analytics.KindTopPerformer, out.Summary.Kind)
}

func TestExecute_ArchiveFailureIsRetryable(t *testing.T) {
	h, mock, _ := setupHandler(t)
	mock.ExpectExec(regexp.QuoteMeta(insertReport)).WillReturnError(stderrors.New("connection reset by peer"))

	_, err := h.Execute(context.Background(), &Input{SessionID: "farmacia", Role: "privileged", Kind: "lowStock"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeReportArchiveFailed))
	stdErr, _ := errors.AsStandardError(err)
	assert.True(t, stdErr.Retryable)
}

func TestExecute_ArchiveDisabled(t *testing.T) {
	h, mock, _ := setupHandler(t)
	h.config.Archive = false

	out, err := h.Execute(context.Background(), &Input{SessionID: "farmacia", Role: "privileged", Kind: "pareto"})
	require.NoError(t, err)
	assert.False(t, out.Archived)
	require.NotNil(t, out.Summary.Pareto)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		code  errors.ErrorCode
	}{
		{"public caller", Input{SessionID: "farmacia", Role: "cliente", Kind: "expired"}, errors.ErrCodeRoleNotPermitted},
		{"unknown kind", Input{SessionID: "farmacia", Role: "privileged", Kind: "forecast"}, errors.ErrCodeUnsupportedReport},
		{"empty session", Input{SessionID: "otra", Role: "privileged", Kind: "expired"}, errors.ErrCodeNoDatasetLoaded},
		{"bad groupBy", Input{SessionID: "farmacia", Role: "privileged", Kind: "topPerformer", GroupBy: "Color"}, errors.ErrCodeValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock, _ := setupHandler(t)
			_, err := h.Execute(context.Background(), &tt.input)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), err.Error())
			assert.NoError(t, mock.ExpectationsWereMet(), "nothing is archived")
		})
	}
}
