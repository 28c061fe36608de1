package alerts

import (
	"context"
	"sort"
	"sync"
)

// Repository defines alert storage.
type Repository interface {
	Insert(ctx context.Context, alert Alert) error
	GetByID(ctx context.Context, orgID, id string) (Alert, error)
	Update(ctx context.Context, alert Alert) error
	ListByPatient(ctx context.Context, orgID, patientID string) ([]Alert, error)
}

// InMemoryRepository is a Repository stub used in tests and local
// development.
type InMemoryRepository struct {
	mu     sync.RWMutex
	alerts map[string]Alert
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{alerts: make(map[string]Alert)}
}

func (r *InMemoryRepository) Insert(_ context.Context, alert Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts[alert.ID] = alert
	return nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, orgID, id string) (Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	alert, ok := r.alerts[id]
	if !ok || alert.OrgID != orgID {
		return Alert{}, ErrAlertNotFound
	}
	return alert, nil
}

func (r *InMemoryRepository) Update(_ context.Context, alert Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.alerts[alert.ID]
	if !ok || existing.OrgID != alert.OrgID {
		return ErrAlertNotFound
	}
	r.alerts[alert.ID] = alert
	return nil
}

func (r *InMemoryRepository) ListByPatient(_ context.Context, orgID, patientID string) ([]Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Alert
	for _, alert := range r.alerts {
		if alert.OrgID == orgID && alert.PatientID == patientID {
			out = append(out, alert)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TriggeredAt.Before(out[j].TriggeredAt)
	})
	return out, nil
}
