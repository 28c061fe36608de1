package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oakpoint-health/clinic-core/internal/alerts"
	"github.com/oakpoint-health/clinic-core/internal/authorizations"
	"github.com/oakpoint-health/clinic-core/internal/events"
	"github.com/oakpoint-health/clinic-core/internal/patient"
)

// Stores bundles the persistence layer shared by the API server and the
// audit worker. When no database is configured the in-memory variants back
// local development.
type Stores struct {
	Alerts         alerts.Repository
	Authorizations authorizations.Repository
	Patients       patient.Provider
	Outbox         *events.OutboxStore
}

// BuildStores selects Postgres-backed stores when a pool is available and
// falls back to in-memory stores otherwise. The outbox requires Postgres and
// is nil without it.
func BuildStores(pool *pgxpool.Pool) *Stores {
	if pool == nil {
		return &Stores{
			Alerts:         alerts.NewInMemoryRepository(),
			Authorizations: authorizations.NewInMemoryRepository(),
			Patients:       patient.NewInMemoryProvider(),
		}
	}
	return &Stores{
		Alerts:         alerts.NewPostgresRepository(pool),
		Authorizations: authorizations.NewPostgresRepository(pool),
		Patients:       patient.NewPostgresProvider(pool),
		Outbox:         events.NewOutboxStore(pool),
	}
}
