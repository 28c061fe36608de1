// Package authorizations tracks prior-authorization utilization: matching
// completed appointments to coverage, consuming units, and deriving
// expiration state.
package authorizations

import (
	"sort"
	"time"

	"github.com/oakpoint-health/clinic-core/internal/observability/metrics"
	"github.com/oakpoint-health/clinic-core/pkg/logging"
)

// Business constants for the utilization summary. Fixed, not configurable
// per authorization.
const (
	expiringSoonDays  = 30
	lowUnitsThreshold = 3
	defaultUnitCost   = 1
)

// Tracker consumes authorization units for completed appointments. It is
// pure over its inputs; the caller persists the returned authorization.
type Tracker struct {
	logger  *logging.Logger
	metrics *metrics.EngineMetrics
}

// NewTracker creates a tracker.
func NewTracker(logger *logging.Logger, m *metrics.EngineMetrics) *Tracker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Tracker{logger: logger.WithComponent("authorizations"), metrics: m}
}

// ApplyCompletedAppointment finds the authorization covering the completed
// appointment and consumes its units. Candidates must belong to the same
// patient, be active with units remaining, and have a window containing the
// scheduled time. When several match, the soonest-expiring one is consumed
// first; ties fall back to input order. No match is a normal outcome: the
// second return is false and nothing is mutated.
func (t *Tracker) ApplyCompletedAppointment(appt Appointment, auths []PriorAuthorization) (PriorAuthorization, bool) {
	cost := appt.UnitCost
	if cost <= 0 {
		cost = defaultUnitCost
	}

	var candidates []PriorAuthorization
	for _, a := range auths {
		if a.PatientID != appt.PatientID || a.Status != StatusActive {
			continue
		}
		if !a.WindowContains(appt.ScheduledAt) {
			continue
		}
		if a.RemainingUnits() <= 0 {
			// Exhausted coverage never absorbs another unit; the stored
			// status is stale and will be normalized on its next write.
			continue
		}
		candidates = append(candidates, a)
	}
	if len(candidates) == 0 {
		return PriorAuthorization{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].EndDate.Before(candidates[j].EndDate)
	})
	selected := candidates[0]

	if cost > selected.RemainingUnits() {
		t.logger.Warn("appointment cost exceeds remaining units, clamping",
			"authorization_id", selected.ID,
			"remaining", selected.RemainingUnits(),
			"cost", cost,
		)
		cost = selected.RemainingUnits()
	}
	selected.UsedUnits += cost
	selected.Status = deriveStatus(selected, appt.ScheduledAt)
	selected.UpdatedAt = time.Now().UTC()

	t.metrics.ObserveUnitsConsumed(cost)
	t.logger.Info("authorization units consumed",
		"authorization_id", selected.ID,
		"patient_id", appt.PatientID,
		"used_units", selected.UsedUnits,
		"total_units", selected.TotalUnits,
		"status", selected.Status,
	)
	return selected, true
}

// SelectBest picks the patient's active authorization with the most
// remaining units. Ties prefer the earlier end date, then input order.
func (t *Tracker) SelectBest(patientID string, auths []PriorAuthorization) (PriorAuthorization, bool) {
	var best PriorAuthorization
	found := false
	for _, a := range auths {
		if a.PatientID != patientID || a.Status != StatusActive {
			continue
		}
		if !found ||
			a.RemainingUnits() > best.RemainingUnits() ||
			(a.RemainingUnits() == best.RemainingUnits() && a.EndDate.Before(best.EndDate)) {
			best = a
			found = true
		}
	}
	return best, found
}

// Summarize computes the derived utilization view. Stored data violating
// the units invariant is clamped, never propagated as a negative remaining.
func Summarize(a PriorAuthorization, now time.Time) Summary {
	remaining := a.RemainingUnits()

	var percentUsed float64
	if a.TotalUnits > 0 {
		used := a.UsedUnits
		if used > a.TotalUnits {
			used = a.TotalUnits
		}
		percentUsed = float64(used) / float64(a.TotalUnits) * 100
	}

	days := daysUntil(a.EndDate, now)

	return Summary{
		AuthorizationID:     a.ID,
		Remaining:           remaining,
		PercentUsed:         percentUsed,
		DaysUntilExpiration: days,
		IsExpiringSoon:      days > 0 && days <= expiringSoonDays,
		IsLowUnits:          remaining > 0 && remaining <= lowUnitsThreshold,
	}
}

// deriveStatus recomputes the authorization status purely from units and
// dates. Pending and denied are staff-owned states and never derived.
func deriveStatus(a PriorAuthorization, now time.Time) Status {
	if a.Status != StatusActive {
		return a.Status
	}
	if a.UsedUnits >= a.TotalUnits || now.After(a.EndDate) {
		return StatusExpired
	}
	return StatusActive
}

// daysUntil returns the ceiling day count from now to end, negative when
// the date has passed.
func daysUntil(end, now time.Time) int {
	diff := end.Sub(now)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	// Integer division already truncates toward zero, which is the
	// ceiling for past dates: one hour past yields 0, not -1.
	return days
}
