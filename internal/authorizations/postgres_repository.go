package authorizations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores prior authorizations in the relational database.
type PostgresRepository struct {
	pool db
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(pool db) *PostgresRepository {
	if pool == nil {
		panic("authorizations: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Insert writes a newly approved authorization.
func (r *PostgresRepository) Insert(ctx context.Context, auth PriorAuthorization) error {
	query := `
		INSERT INTO prior_authorizations (
			id, org_id, patient_id, insurer_id, service_code,
			total_units, used_units, start_date, end_date, status,
			denial_reason, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
	`
	if _, err := r.pool.Exec(ctx, query,
		auth.ID,
		auth.OrgID,
		auth.PatientID,
		auth.InsurerID,
		auth.ServiceCode,
		auth.TotalUnits,
		auth.UsedUnits,
		auth.StartDate,
		auth.EndDate,
		auth.Status,
		nullableReason(auth.DenialReason),
		auth.CreatedAt,
	); err != nil {
		return fmt.Errorf("authorizations: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches an authorization scoped to the org.
func (r *PostgresRepository) GetByID(ctx context.Context, orgID, id string) (PriorAuthorization, error) {
	query := `
		SELECT id, org_id, patient_id, insurer_id, service_code,
		       total_units, used_units, start_date, end_date, status,
		       denial_reason, created_at, updated_at
		FROM prior_authorizations
		WHERE id = $1 AND org_id = $2
	`
	auth, err := scanAuthorization(r.pool.QueryRow(ctx, query, id, orgID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return PriorAuthorization{}, ErrAuthorizationNotFound
		}
		return PriorAuthorization{}, fmt.Errorf("authorizations: select failed: %w", err)
	}
	return auth, nil
}

// Update persists unit consumption and status changes.
func (r *PostgresRepository) Update(ctx context.Context, auth PriorAuthorization) error {
	query := `
		UPDATE prior_authorizations
		SET used_units = $3, status = $4, denial_reason = $5, updated_at = $6
		WHERE id = $1 AND org_id = $2
	`
	ct, err := r.pool.Exec(ctx, query,
		auth.ID,
		auth.OrgID,
		auth.UsedUnits,
		auth.Status,
		nullableReason(auth.DenialReason),
		auth.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("authorizations: update failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrAuthorizationNotFound
	}
	return nil
}

// ListByPatient returns the patient's authorizations, soonest expiring first.
func (r *PostgresRepository) ListByPatient(ctx context.Context, orgID, patientID string) ([]PriorAuthorization, error) {
	query := `
		SELECT id, org_id, patient_id, insurer_id, service_code,
		       total_units, used_units, start_date, end_date, status,
		       denial_reason, created_at, updated_at
		FROM prior_authorizations
		WHERE org_id = $1 AND patient_id = $2
		ORDER BY end_date
	`
	rows, err := r.pool.Query(ctx, query, orgID, patientID)
	if err != nil {
		return nil, fmt.Errorf("authorizations: list failed: %w", err)
	}
	defer rows.Close()

	var out []PriorAuthorization
	for rows.Next() {
		auth, err := scanAuthorization(rows)
		if err != nil {
			return nil, fmt.Errorf("authorizations: scan failed: %w", err)
		}
		out = append(out, auth)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuthorization(row rowScanner) (PriorAuthorization, error) {
	var (
		auth   PriorAuthorization
		reason *string
	)
	if err := row.Scan(
		&auth.ID,
		&auth.OrgID,
		&auth.PatientID,
		&auth.InsurerID,
		&auth.ServiceCode,
		&auth.TotalUnits,
		&auth.UsedUnits,
		&auth.StartDate,
		&auth.EndDate,
		&auth.Status,
		&reason,
		&auth.CreatedAt,
		&auth.UpdatedAt,
	); err != nil {
		return PriorAuthorization{}, err
	}
	if reason != nil {
		auth.DenialReason = *reason
	}
	return auth, nil
}

func nullableReason(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
