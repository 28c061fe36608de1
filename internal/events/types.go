package events

import "time"

// AlertRaisedV1 announces that a clinical rule produced a new alert.
type AlertRaisedV1 struct {
	OrgID       string    `json:"org_id"`
	AlertID     string    `json:"alert_id"`
	RuleID      string    `json:"rule_id"`
	PatientID   string    `json:"patient_id"`
	Severity    string    `json:"severity"`
	Category    string    `json:"category"`
	Trigger     string    `json:"trigger"`
	EncounterID string    `json:"encounter_id,omitempty"`
	TriggeredAt time.Time `json:"triggered_at"`
}

func (AlertRaisedV1) EventType() string { return "alert.raised.v1" }

// AuthorizationUpdatedV1 announces unit consumption against a prior
// authorization.
type AuthorizationUpdatedV1 struct {
	OrgID           string    `json:"org_id"`
	AuthorizationID string    `json:"authorization_id"`
	PatientID       string    `json:"patient_id"`
	AppointmentID   string    `json:"appointment_id,omitempty"`
	UsedUnits       int       `json:"used_units"`
	RemainingUnits  int       `json:"remaining_units"`
	Status          string    `json:"status"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func (AuthorizationUpdatedV1) EventType() string { return "authorization.updated.v1" }

// AuthorizationExpiredV1 announces that an authorization left the active
// state, either by exhausting units or by its window closing.
type AuthorizationExpiredV1 struct {
	OrgID           string    `json:"org_id"`
	AuthorizationID string    `json:"authorization_id"`
	PatientID       string    `json:"patient_id"`
	Reason          string    `json:"reason"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func (AuthorizationExpiredV1) EventType() string { return "authorization.expired.v1" }

// AppointmentCompletedV1 is the inbound message from the scheduling system
// consumed by the audit worker.
type AppointmentCompletedV1 struct {
	EventID       string    `json:"event_id"`
	OrgID         string    `json:"org_id"`
	AppointmentID string    `json:"appointment_id"`
	PatientID     string    `json:"patient_id"`
	ServiceCode   string    `json:"service_code,omitempty"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	UnitCost      int       `json:"unit_cost,omitempty"`
}

func (AppointmentCompletedV1) EventType() string { return "appointment.completed.v1" }
