package patient

import (
	"context"
	"sync"
)

// Provider supplies read-only patient record snapshots. The engine is a
// consumer only; whatever system owns the chart implements this.
type Provider interface {
	GetRecord(ctx context.Context, orgID, patientID string) (*Record, error)
}

// InMemoryProvider is a stub Provider backed by a map, used in tests and
// local development.
type InMemoryProvider struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewInMemoryProvider creates an empty in-memory provider.
func NewInMemoryProvider() *InMemoryProvider {
	return &InMemoryProvider{records: make(map[string]*Record)}
}

// Put stores a snapshot. Later puts for the same patient replace the earlier one.
func (p *InMemoryProvider) Put(record *Record) {
	if record == nil || record.ID == "" {
		return
	}
	p.mu.Lock()
	p.records[record.OrgID+"/"+record.ID] = record
	p.mu.Unlock()
}

// GetRecord returns the stored snapshot scoped to the org.
func (p *InMemoryProvider) GetRecord(_ context.Context, orgID, patientID string) (*Record, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	record, ok := p.records[orgID+"/"+patientID]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return record, nil
}
