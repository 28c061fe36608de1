package authorizations

import (
	"context"
	"sort"
	"sync"
)

// Repository defines prior-authorization storage.
type Repository interface {
	Insert(ctx context.Context, auth PriorAuthorization) error
	GetByID(ctx context.Context, orgID, id string) (PriorAuthorization, error)
	Update(ctx context.Context, auth PriorAuthorization) error
	ListByPatient(ctx context.Context, orgID, patientID string) ([]PriorAuthorization, error)
}

// InMemoryRepository is a Repository stub used in tests and local
// development.
type InMemoryRepository struct {
	mu    sync.RWMutex
	auths map[string]PriorAuthorization
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{auths: make(map[string]PriorAuthorization)}
}

func (r *InMemoryRepository) Insert(_ context.Context, auth PriorAuthorization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auths[auth.ID] = auth
	return nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, orgID, id string) (PriorAuthorization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	auth, ok := r.auths[id]
	if !ok || auth.OrgID != orgID {
		return PriorAuthorization{}, ErrAuthorizationNotFound
	}
	return auth, nil
}

func (r *InMemoryRepository) Update(_ context.Context, auth PriorAuthorization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.auths[auth.ID]
	if !ok || existing.OrgID != auth.OrgID {
		return ErrAuthorizationNotFound
	}
	r.auths[auth.ID] = auth
	return nil
}

func (r *InMemoryRepository) ListByPatient(_ context.Context, orgID, patientID string) ([]PriorAuthorization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []PriorAuthorization
	for _, auth := range r.auths {
		if auth.OrgID == orgID && auth.PatientID == patientID {
			out = append(out, auth)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EndDate.Before(out[j].EndDate)
	})
	return out, nil
}
