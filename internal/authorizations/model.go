package authorizations

import "time"

// Status is the lifecycle state of a prior authorization.
type Status string

const (
	// StatusPending indicates the insurer has not yet decided.
	StatusPending Status = "pending"
	// StatusActive indicates units may be consumed inside the window.
	StatusActive Status = "active"
	// StatusExpired indicates the window closed or units ran out.
	StatusExpired Status = "expired"
	// StatusDenied indicates explicit insurer/staff denial.
	StatusDenied Status = "denied"
)

// PriorAuthorization tracks approved service units for a patient. Staff
// create it pending or active; only the Tracker increments UsedUnits; the
// denied state is set only by explicit staff action.
type PriorAuthorization struct {
	ID           string    `json:"id"`
	OrgID        string    `json:"org_id"`
	PatientID    string    `json:"patient_id"`
	InsurerID    string    `json:"insurer_id"`
	ServiceCode  string    `json:"service_code"`
	TotalUnits   int       `json:"total_units"`
	UsedUnits    int       `json:"used_units"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Status       Status    `json:"status"`
	DenialReason string    `json:"denial_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RemainingUnits returns total minus used, never negative even if stored
// data violates the invariant.
func (a *PriorAuthorization) RemainingUnits() int {
	remaining := a.TotalUnits - a.UsedUnits
	if remaining < 0 {
		return 0
	}
	return remaining
}

// WindowContains reports whether ts falls inside [StartDate, EndDate].
func (a *PriorAuthorization) WindowContains(ts time.Time) bool {
	return !ts.Before(a.StartDate) && !ts.After(a.EndDate)
}

// Appointment is the completion event consumed from the scheduling system.
type Appointment struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"org_id"`
	PatientID   string    `json:"patient_id"`
	ServiceCode string    `json:"service_code,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
	// UnitCost defaults to one unit per appointment when zero.
	UnitCost int `json:"unit_cost,omitempty"`
}

// Summary is the derived utilization view of one authorization.
type Summary struct {
	AuthorizationID     string  `json:"authorization_id"`
	Remaining           int     `json:"remaining"`
	PercentUsed         float64 `json:"percent_used"`
	DaysUntilExpiration int     `json:"days_until_expiration"`
	IsExpiringSoon      bool    `json:"is_expiring_soon"`
	IsLowUnits          bool    `json:"is_low_units"`
}
