package alerts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is an immutable record of a lifecycle transition, kept for
// clinical accountability.
type AuditEntry struct {
	ID         string    `json:"id"`
	OrgID      string    `json:"org_id"`
	AlertID    string    `json:"alert_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	Actor      string    `json:"actor"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuditStore appends lifecycle transitions to the alert_audit table.
type AuditStore struct {
	db *sql.DB
}

// NewAuditStore creates an audit store. A nil db disables auditing.
func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

// Record appends one transition row.
func (s *AuditStore) Record(ctx context.Context, orgID, alertID string, from, to Status, actor string) (*AuditEntry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	entry := &AuditEntry{
		ID:         uuid.NewString(),
		OrgID:      orgID,
		AlertID:    alertID,
		FromStatus: from,
		ToStatus:   to,
		Actor:      actor,
		CreatedAt:  time.Now().UTC(),
	}
	query := `
		INSERT INTO alert_audit (id, org_id, alert_id, from_status, to_status, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.OrgID,
		entry.AlertID,
		string(entry.FromStatus),
		string(entry.ToStatus),
		entry.Actor,
		entry.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("alerts: insert audit entry: %w", err)
	}
	return entry, nil
}

// ListByAlert returns the transition history for one alert, oldest first.
func (s *AuditStore) ListByAlert(ctx context.Context, orgID, alertID string) ([]AuditEntry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := `
		SELECT id, org_id, alert_id, from_status, to_status, actor, created_at
		FROM alert_audit
		WHERE org_id = $1 AND alert_id = $2
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, orgID, alertID)
	if err != nil {
		return nil, fmt.Errorf("alerts: query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var entry AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.OrgID,
			&entry.AlertID,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.Actor,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("alerts: scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
