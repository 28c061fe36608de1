package alerts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores alerts in the relational database.
type PostgresRepository struct {
	pool db
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(pool db) *PostgresRepository {
	if pool == nil {
		panic("alerts: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Insert writes a freshly raised alert.
func (r *PostgresRepository) Insert(ctx context.Context, alert Alert) error {
	metadata, err := json.Marshal(alert.Metadata)
	if err != nil {
		return fmt.Errorf("alerts: marshal metadata: %w", err)
	}
	query := `
		INSERT INTO alerts (
			id, org_id, rule_id, rule_name, patient_id, severity, category,
			message, recommendation, status, trigger_type, encounter_id,
			metadata, triggered_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
	`
	if _, err := r.pool.Exec(ctx, query,
		alert.ID,
		alert.OrgID,
		alert.RuleID,
		alert.RuleName,
		alert.PatientID,
		alert.Severity,
		alert.Category,
		alert.Message,
		alert.Recommendation,
		alert.Status,
		alert.Trigger,
		alert.EncounterID,
		metadata,
		alert.TriggeredAt,
	); err != nil {
		return fmt.Errorf("alerts: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches an alert scoped to the org.
func (r *PostgresRepository) GetByID(ctx context.Context, orgID, id string) (Alert, error) {
	query := `
		SELECT id, org_id, rule_id, rule_name, patient_id, severity, category,
		       message, recommendation, status, trigger_type, encounter_id,
		       metadata, triggered_at, acknowledged_by, acknowledged_at,
		       dismissed_by, dismissed_at, resolved_at, updated_at
		FROM alerts
		WHERE id = $1 AND org_id = $2
	`
	alert, err := scanAlert(r.pool.QueryRow(ctx, query, id, orgID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return Alert{}, ErrAlertNotFound
		}
		return Alert{}, fmt.Errorf("alerts: select failed: %w", err)
	}
	return alert, nil
}

// Update persists a lifecycle transition.
func (r *PostgresRepository) Update(ctx context.Context, alert Alert) error {
	query := `
		UPDATE alerts
		SET status = $3, acknowledged_by = $4, acknowledged_at = $5,
		    dismissed_by = $6, dismissed_at = $7, resolved_at = $8,
		    updated_at = $9
		WHERE id = $1 AND org_id = $2
	`
	ct, err := r.pool.Exec(ctx, query,
		alert.ID,
		alert.OrgID,
		alert.Status,
		nullable(alert.AcknowledgedBy),
		alert.AcknowledgedAt,
		nullable(alert.DismissedBy),
		alert.DismissedAt,
		alert.ResolvedAt,
		alert.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("alerts: update failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// ListByPatient returns all alerts for a patient in trigger order.
func (r *PostgresRepository) ListByPatient(ctx context.Context, orgID, patientID string) ([]Alert, error) {
	query := `
		SELECT id, org_id, rule_id, rule_name, patient_id, severity, category,
		       message, recommendation, status, trigger_type, encounter_id,
		       metadata, triggered_at, acknowledged_by, acknowledged_at,
		       dismissed_by, dismissed_at, resolved_at, updated_at
		FROM alerts
		WHERE org_id = $1 AND patient_id = $2
		ORDER BY triggered_at
	`
	rows, err := r.pool.Query(ctx, query, orgID, patientID)
	if err != nil {
		return nil, fmt.Errorf("alerts: list failed: %w", err)
	}
	defer rows.Close()

	var out []Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("alerts: scan failed: %w", err)
		}
		out = append(out, alert)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (Alert, error) {
	var (
		alert          Alert
		recommendation *string
		encounterID    *string
		metadata       []byte
		ackBy, disBy   *string
	)
	if err := row.Scan(
		&alert.ID,
		&alert.OrgID,
		&alert.RuleID,
		&alert.RuleName,
		&alert.PatientID,
		&alert.Severity,
		&alert.Category,
		&alert.Message,
		&recommendation,
		&alert.Status,
		&alert.Trigger,
		&encounterID,
		&metadata,
		&alert.TriggeredAt,
		&ackBy,
		&alert.AcknowledgedAt,
		&disBy,
		&alert.DismissedAt,
		&alert.ResolvedAt,
		&alert.UpdatedAt,
	); err != nil {
		return Alert{}, err
	}
	if recommendation != nil {
		alert.Recommendation = *recommendation
	}
	if encounterID != nil {
		alert.EncounterID = *encounterID
	}
	if ackBy != nil {
		alert.AcknowledgedBy = *ackBy
	}
	if disBy != nil {
		alert.DismissedBy = *disBy
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &alert.Metadata); err != nil {
			return Alert{}, err
		}
	}
	return alert, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
