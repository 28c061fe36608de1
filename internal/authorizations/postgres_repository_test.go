package authorizations

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ts := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	auth := PriorAuthorization{
		ID:          "auth-1",
		OrgID:       "org1",
		PatientID:   "p1",
		InsurerID:   "ins-1",
		ServiceCode: "97110",
		TotalUnits:  12,
		StartDate:   ts,
		EndDate:     ts.AddDate(0, 6, 0),
		Status:      StatusActive,
		CreatedAt:   ts,
	}

	mock.ExpectExec("INSERT INTO prior_authorizations").
		WithArgs(
			auth.ID, auth.OrgID, auth.PatientID, auth.InsurerID, auth.ServiceCode,
			auth.TotalUnits, auth.UsedUnits, auth.StartDate, auth.EndDate,
			auth.Status, (*string)(nil), auth.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewPostgresRepository(mock)
	require.NoError(t, repo.Insert(context.Background(), auth))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE prior_authorizations").
		WithArgs("missing", "org1", 3, StatusActive, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPostgresRepository(mock)
	err = repo.Update(context.Background(), PriorAuthorization{
		ID:        "missing",
		OrgID:     "org1",
		UsedUnits: 3,
		Status:    StatusActive,
	})
	assert.ErrorIs(t, err, ErrAuthorizationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListByPatient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ts := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "org_id", "patient_id", "insurer_id", "service_code",
		"total_units", "used_units", "start_date", "end_date", "status",
		"denial_reason", "created_at", "updated_at",
	}).AddRow(
		"auth-1", "org1", "p1", "ins-1", "97110",
		12, 4, ts, ts.AddDate(0, 6, 0), "active",
		(*string)(nil), ts, ts,
	)

	mock.ExpectQuery("SELECT id, org_id, patient_id").
		WithArgs("org1", "p1").
		WillReturnRows(rows)

	repo := NewPostgresRepository(mock)
	list, err := repo.ListByPatient(context.Background(), "org1", "p1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 8, list[0].RemainingUnits())
	assert.Equal(t, StatusActive, list[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, org_id, patient_id").
		WithArgs("missing", "org1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "org_id", "patient_id", "insurer_id", "service_code",
			"total_units", "used_units", "start_date", "end_date", "status",
			"denial_reason", "created_at", "updated_at",
		}))

	repo := NewPostgresRepository(mock)
	_, err = repo.GetByID(context.Background(), "org1", "missing")
	assert.ErrorIs(t, err, ErrAuthorizationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
