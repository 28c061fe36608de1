// Package alerts tracks the lifecycle of rule-generated clinical alerts:
// active → acknowledged/dismissed → resolved.
package alerts

import (
	"strings"
	"time"
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

// Manager applies lifecycle transitions. It never re-runs rules and never
// persists; callers store the returned alert under their own transaction.
type Manager struct{}

// NewManager creates a lifecycle manager.
func NewManager() *Manager {
	return &Manager{}
}

// Acknowledge moves an active alert to acknowledged, recording the actor
// and timestamp. Any other starting state is rejected and the input is
// returned unchanged.
func (m *Manager) Acknowledge(alert Alert, actor string) (Alert, error) {
	if strings.TrimSpace(actor) == "" {
		return alert, ErrMissingActor
	}
	if alert.Status != StatusActive {
		return alert, ErrInvalidTransition
	}
	now := nowFunc().UTC()
	alert.Status = StatusAcknowledged
	alert.AcknowledgedBy = actor
	alert.AcknowledgedAt = &now
	alert.UpdatedAt = now
	return alert, nil
}

// Dismiss moves an active alert to dismissed, recording the actor and
// timestamp.
func (m *Manager) Dismiss(alert Alert, actor string) (Alert, error) {
	if strings.TrimSpace(actor) == "" {
		return alert, ErrMissingActor
	}
	if alert.Status != StatusActive {
		return alert, ErrInvalidTransition
	}
	now := nowFunc().UTC()
	alert.Status = StatusDismissed
	alert.DismissedBy = actor
	alert.DismissedAt = &now
	alert.UpdatedAt = now
	return alert, nil
}

// Resolve marks an acknowledged or dismissed alert resolved once the
// underlying condition is closed by an external workflow.
func (m *Manager) Resolve(alert Alert) (Alert, error) {
	switch alert.Status {
	case StatusResolved:
		return alert, ErrAlreadyResolved
	case StatusAcknowledged, StatusDismissed:
	default:
		return alert, ErrInvalidTransition
	}
	now := nowFunc().UTC()
	alert.Status = StatusResolved
	alert.ResolvedAt = &now
	alert.UpdatedAt = now
	return alert, nil
}
