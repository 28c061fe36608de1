package patient

import "time"

// Record is a read-only snapshot of a patient's clinical chart. The engine
// never mutates it; list fields are ordered most recent first.
type Record struct {
	ID          string             `json:"id"`
	OrgID       string             `json:"org_id"`
	Name        string             `json:"name"`
	Age         int                `json:"age"`
	Conditions  []Condition        `json:"conditions,omitempty"`
	Vitals      []VitalsSample     `json:"vitals,omitempty"`
	Medications []ActiveMedication `json:"medications,omitempty"`
	Screenings  []Screening        `json:"screenings,omitempty"`
	Labs        []LabResult        `json:"labs,omitempty"`
	Allergies   []string           `json:"allergies,omitempty"`
}

// Condition is a diagnosed problem-list entry.
type Condition struct {
	Name   string `json:"name"`
	Status string `json:"status"` // active, resolved, chronic
}

// VitalsSample is a single vitals reading.
type VitalsSample struct {
	SystolicBP  int       `json:"systolic_bp"`
	DiastolicBP int       `json:"diastolic_bp"`
	HeartRate   int       `json:"heart_rate"`
	WeightKg    float64   `json:"weight_kg"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// ActiveMedication is a currently prescribed medication.
type ActiveMedication struct {
	MedicationID string    `json:"medication_id"`
	Name         string    `json:"name"`
	Dosage       string    `json:"dosage,omitempty"`
	StartedAt    time.Time `json:"started_at,omitempty"`
}

// Screening records the last time a preventive screening was performed.
type Screening struct {
	Type     string    `json:"type"`
	LastDate time.Time `json:"last_date"`
}

// LabResult is a single lab observation.
type LabResult struct {
	Code  string    `json:"code"`
	Value float64   `json:"value"`
	Date  time.Time `json:"date"`
}

// HasCondition reports whether the problem list carries the named condition
// in a non-resolved status. Matching is case-insensitive on the caller side;
// catalog rules pass already-normalized names.
func (r *Record) HasCondition(name string) bool {
	for _, c := range r.Conditions {
		if c.Name == name && c.Status != "resolved" {
			return true
		}
	}
	return false
}

// LatestVitals returns the most recent vitals sample, if any.
func (r *Record) LatestVitals() (VitalsSample, bool) {
	if len(r.Vitals) == 0 {
		return VitalsSample{}, false
	}
	return r.Vitals[0], true
}

// LastScreening returns the most recent screening of the given type.
func (r *Record) LastScreening(screeningType string) (Screening, bool) {
	for _, s := range r.Screenings {
		if s.Type == screeningType {
			return s, true
		}
	}
	return Screening{}, false
}

// LatestLab returns the most recent lab result for a code.
func (r *Record) LatestLab(code string) (LabResult, bool) {
	for _, l := range r.Labs {
		if l.Code == code {
			return l, true
		}
	}
	return LabResult{}, false
}

// ActiveMedicationIDs collects the catalog ids of all active medications.
func (r *Record) ActiveMedicationIDs() []string {
	ids := make([]string, 0, len(r.Medications))
	for _, m := range r.Medications {
		ids = append(ids, m.MedicationID)
	}
	return ids
}
