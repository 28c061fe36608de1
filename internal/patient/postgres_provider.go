package patient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProvider reads patient snapshots persisted by the portal's sync
// job. The chart is stored as an opaque JSON document; this provider only
// decodes, it never writes.
type PostgresProvider struct {
	pool *pgxpool.Pool
}

// NewPostgresProvider initializes a provider backed by pgxpool.
func NewPostgresProvider(pool *pgxpool.Pool) *PostgresProvider {
	if pool == nil {
		panic("patient: pgx pool required")
	}
	return &PostgresProvider{pool: pool}
}

// GetRecord fetches the latest snapshot scoped to the org.
func (p *PostgresProvider) GetRecord(ctx context.Context, orgID, patientID string) (*Record, error) {
	query := `
		SELECT record
		FROM patient_snapshots
		WHERE org_id = $1 AND patient_id = $2
	`
	var raw []byte
	if err := p.pool.QueryRow(ctx, query, orgID, patientID).Scan(&raw); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patient: select snapshot failed: %w", err)
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("patient: decode snapshot: %w", err)
	}
	record.OrgID = orgID
	record.ID = patientID
	return &record, nil
}
