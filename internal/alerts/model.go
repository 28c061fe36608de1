package alerts

import "time"

// Status is the lifecycle state of a clinical alert.
type Status string

const (
	// StatusActive indicates the alert needs attention.
	StatusActive Status = "active"
	// StatusAcknowledged indicates staff accepted the alert.
	StatusAcknowledged Status = "acknowledged"
	// StatusDismissed indicates staff ruled the alert not actionable.
	StatusDismissed Status = "dismissed"
	// StatusResolved indicates the underlying condition was closed by an
	// external workflow.
	StatusResolved Status = "resolved"
)

// Alert is a rule-generated finding on a patient record. Created only by
// the rule evaluator; mutated only by the lifecycle Manager.
type Alert struct {
	ID             string            `json:"id"`
	OrgID          string            `json:"org_id"`
	RuleID         string            `json:"rule_id"`
	RuleName       string            `json:"rule_name"`
	PatientID      string            `json:"patient_id"`
	Severity       string            `json:"severity"`
	Category       string            `json:"category"`
	Message        string            `json:"message"`
	Recommendation string            `json:"recommendation,omitempty"`
	Status         Status            `json:"status"`
	Trigger        string            `json:"trigger"`
	EncounterID    string            `json:"encounter_id,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	TriggeredAt    time.Time         `json:"triggered_at"`
	AcknowledgedBy string            `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time        `json:"acknowledged_at,omitempty"`
	DismissedBy    string            `json:"dismissed_by,omitempty"`
	DismissedAt    *time.Time        `json:"dismissed_at,omitempty"`
	ResolvedAt     *time.Time        `json:"resolved_at,omitempty"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
