// Package rules implements the clinical rule catalog and evaluator. Rules
// are data: a pure predicate plus a pure message template over a read-only
// patient record and an explicit trigger context.
package rules

import (
	"time"

	"github.com/oakpoint-health/clinic-core/internal/patient"
)

// Trigger classifies the event that makes a rule eligible. It is supplied
// explicitly by the caller, never inferred from which payload fields happen
// to be populated.
type Trigger string

const (
	TriggerEncounterStart Trigger = "encounter-start"
	TriggerVitalsEntry    Trigger = "vitals-entry"
	TriggerLabResult      Trigger = "lab-result"
	TriggerManualCheck    Trigger = "manual-check"
)

// ParseTrigger validates a wire-format trigger value.
func ParseTrigger(s string) (Trigger, bool) {
	switch t := Trigger(s); t {
	case TriggerEncounterStart, TriggerVitalsEntry, TriggerLabResult, TriggerManualCheck:
		return t, true
	}
	return "", false
}

// Category groups rules by clinical concern.
type Category string

const (
	CategoryPreventiveCare   Category = "preventive-care"
	CategoryChronicDisease   Category = "chronic-disease"
	CategoryMedicationSafety Category = "medication-safety"
	CategoryQualityMeasure   Category = "quality-measure"
)

// Severity ranks the urgency of a finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Context carries the triggering event's payload into predicates and
// templates. Now anchors all date math so re-evaluation over identical
// inputs is deterministic.
type Context struct {
	Trigger     Trigger
	EncounterID string
	Vitals      *patient.VitalsSample
	Lab         *patient.LabResult
	Now         time.Time
}

// Rule is an immutable clinical rule definition. Condition and Message must
// be pure: they read patient state and context, never write, and return the
// same result for the same inputs.
type Rule struct {
	ID               string
	Name             string
	Category         Category
	Severity         Severity
	Trigger          Trigger
	Condition        func(record *patient.Record, ctx *Context) (bool, error)
	Message          func(record *patient.Record, ctx *Context) string
	Recommendation   string
	QualityMeasureID string
	Enabled          bool
}
