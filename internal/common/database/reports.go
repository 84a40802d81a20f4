package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const createReportsTable = `CREATE TABLE IF NOT EXISTS inventory_reports (
	id UUID PRIMARY KEY,
	session_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

// ArchivedReport is one row of inventory_reports.
type ArchivedReport struct {
	ID        string
	SessionID string
	Kind      string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// ReportArchive stores generated summaries so exports can be rendered later.
type ReportArchive struct {
	db *sql.DB
}

func NewReportArchive(db *sql.DB) *ReportArchive {
	return &ReportArchive{db: db}
}

func (a *ReportArchive) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, createReportsTable); err != nil {
		return fmt.Errorf("create inventory_reports: %w", err)
	}
	return nil
}

func (a *ReportArchive) Save(ctx context.Context, r ArchivedReport) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO inventory_reports (id, session_id, kind, payload, created_at) VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.SessionID, r.Kind, []byte(r.Payload), r.CreatedAt,
	)
	return err
}

// Latest returns the newest report of kind for a session, or nil.
func (a *ReportArchive) Latest(ctx context.Context, sessionID, kind string) (*ArchivedReport, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT id, session_id, kind, payload, created_at FROM inventory_reports
		 WHERE session_id = $1 AND kind = $2 ORDER BY created_at DESC LIMIT 1`,
		sessionID, kind,
	)
	var r ArchivedReport
	var payload []byte
	if err := row.Scan(&r.ID, &r.SessionID, &r.Kind, &payload, &r.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	r.Payload = payload
	return &r, nil
}
