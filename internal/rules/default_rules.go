package rules

import (
	"fmt"
	"strings"

	"github.com/oakpoint-health/clinic-core/internal/medications"
	"github.com/oakpoint-health/clinic-core/internal/patient"
)

const (
	diabetesScreeningAge     = 45
	diabetesScreeningYears   = 3
	colorectalScreeningAge   = 50
	colorectalScreeningYears = 10
	stage2SystolicBP         = 140
	stage2DiastolicBP        = 90
	crisisSystolicBP         = 180
	crisisDiastolicBP        = 120
	a1cPoorControl           = 9.0
	a1cMonitoringMonths      = 6
)

// DefaultCatalog returns the built-in clinical rule set. Medication-safety
// rules close over the prescribing catalog and interaction matrix.
func DefaultCatalog(meds *medications.Catalog, matrix *medications.Matrix) *Catalog {
	return NewCatalog(
		Rule{
			ID:       "rule-diabetes-screening",
			Name:     "Diabetes screening overdue",
			Category: CategoryPreventiveCare,
			Severity: SeverityMedium,
			Trigger:  TriggerEncounterStart,
			Enabled:  true,
			Condition: func(r *patient.Record, ctx *Context) (bool, error) {
				if r.Age < diabetesScreeningAge {
					return false, nil
				}
				last, ok := r.LastScreening("diabetes")
				if !ok {
					return true, nil
				}
				return last.LastDate.Before(ctx.Now.AddDate(-diabetesScreeningYears, 0, 0)), nil
			},
			Message: func(r *patient.Record, _ *Context) string {
				return fmt.Sprintf("%s (age %d) is due for diabetes screening.", r.Name, r.Age)
			},
			Recommendation: "Order fasting glucose or HbA1c.",
		},
		Rule{
			ID:       "rule-colorectal-screening",
			Name:     "Colorectal screening overdue",
			Category: CategoryPreventiveCare,
			Severity: SeverityMedium,
			Trigger:  TriggerEncounterStart,
			Enabled:  true,
			Condition: func(r *patient.Record, ctx *Context) (bool, error) {
				if r.Age < colorectalScreeningAge {
					return false, nil
				}
				last, ok := r.LastScreening("colonoscopy")
				if !ok {
					return true, nil
				}
				return last.LastDate.Before(ctx.Now.AddDate(-colorectalScreeningYears, 0, 0)), nil
			},
			Message: func(r *patient.Record, _ *Context) string {
				return fmt.Sprintf("%s (age %d) has no colonoscopy within %d years.", r.Name, r.Age, colorectalScreeningYears)
			},
			Recommendation: "Discuss colorectal cancer screening options.",
		},
		Rule{
			ID:       "rule-hypertension-stage2",
			Name:     "Stage 2 hypertension reading",
			Category: CategoryChronicDisease,
			Severity: SeverityHigh,
			Trigger:  TriggerVitalsEntry,
			Enabled:  true,
			Condition: func(_ *patient.Record, ctx *Context) (bool, error) {
				v := ctx.Vitals
				if v == nil {
					return false, nil
				}
				if v.SystolicBP >= crisisSystolicBP || v.DiastolicBP >= crisisDiastolicBP {
					// The crisis rule owns this reading.
					return false, nil
				}
				return v.SystolicBP >= stage2SystolicBP || v.DiastolicBP >= stage2DiastolicBP, nil
			},
			Message: func(r *patient.Record, ctx *Context) string {
				return fmt.Sprintf("%s recorded %d/%d mmHg, in stage 2 hypertension range.",
					r.Name, ctx.Vitals.SystolicBP, ctx.Vitals.DiastolicBP)
			},
			Recommendation: "Confirm with repeat measurement; review antihypertensive therapy.",
		},
		Rule{
			ID:       "rule-hypertensive-crisis",
			Name:     "Hypertensive crisis reading",
			Category: CategoryChronicDisease,
			Severity: SeverityCritical,
			Trigger:  TriggerVitalsEntry,
			Enabled:  true,
			Condition: func(_ *patient.Record, ctx *Context) (bool, error) {
				v := ctx.Vitals
				if v == nil {
					return false, nil
				}
				return v.SystolicBP >= crisisSystolicBP || v.DiastolicBP >= crisisDiastolicBP, nil
			},
			Message: func(r *patient.Record, ctx *Context) string {
				return fmt.Sprintf("%s recorded %d/%d mmHg, in hypertensive crisis range.",
					r.Name, ctx.Vitals.SystolicBP, ctx.Vitals.DiastolicBP)
			},
			Recommendation: "Immediate clinical assessment required.",
		},
		Rule{
			ID:       "rule-a1c-control",
			Name:     "HbA1c above control target",
			Category: CategoryChronicDisease,
			Severity: SeverityHigh,
			Trigger:  TriggerLabResult,
			Enabled:  true,
			Condition: func(_ *patient.Record, ctx *Context) (bool, error) {
				lab := ctx.Lab
				if lab == nil || !strings.EqualFold(lab.Code, "a1c") {
					return false, nil
				}
				return lab.Value >= a1cPoorControl, nil
			},
			Message: func(r *patient.Record, ctx *Context) string {
				return fmt.Sprintf("%s has HbA1c %.1f%%, above the %.1f%% control threshold.",
					r.Name, ctx.Lab.Value, a1cPoorControl)
			},
			Recommendation: "Intensify glycemic management and schedule follow-up.",
		},
		Rule{
			ID:               "rule-a1c-monitoring",
			Name:             "Diabetic without recent HbA1c",
			Category:         CategoryQualityMeasure,
			Severity:         SeverityInfo,
			Trigger:          TriggerManualCheck,
			Enabled:          true,
			QualityMeasureID: "CMS122",
			Condition: func(r *patient.Record, ctx *Context) (bool, error) {
				if !r.HasCondition("diabetes") {
					return false, nil
				}
				lab, ok := r.LatestLab("a1c")
				if !ok {
					return true, nil
				}
				return lab.Date.Before(ctx.Now.AddDate(0, -a1cMonitoringMonths, 0)), nil
			},
			Message: func(r *patient.Record, _ *Context) string {
				return fmt.Sprintf("%s has diabetes on the problem list with no HbA1c in the last %d months.",
					r.Name, a1cMonitoringMonths)
			},
			Recommendation: "Order HbA1c to close the quality measure gap.",
		},
		Rule{
			ID:       "rule-active-interactions",
			Name:     "Severe interaction among active medications",
			Category: CategoryMedicationSafety,
			Severity: SeverityCritical,
			Trigger:  TriggerManualCheck,
			Enabled:  true,
			Condition: func(r *patient.Record, _ *Context) (bool, error) {
				if matrix == nil {
					return false, nil
				}
				_, found := severeActivePair(matrix, r.ActiveMedicationIDs())
				return found, nil
			},
			Message: func(r *patient.Record, _ *Context) string {
				in, _ := severeActivePair(matrix, r.ActiveMedicationIDs())
				return fmt.Sprintf("%s has a severe drug interaction on the active list: %s",
					r.Name, in.Description)
			},
			Recommendation: "Review the active medication list with the prescriber.",
		},
		Rule{
			ID:       "rule-allergy-conflict",
			Name:     "Active medication conflicts with a recorded allergy",
			Category: CategoryMedicationSafety,
			Severity: SeverityHigh,
			Trigger:  TriggerManualCheck,
			Enabled:  true,
			Condition: func(r *patient.Record, _ *Context) (bool, error) {
				if meds == nil {
					return false, nil
				}
				_, _, found := allergyConflict(meds, r)
				return found, nil
			},
			Message: func(r *patient.Record, _ *Context) string {
				med, allergy, _ := allergyConflict(meds, r)
				return fmt.Sprintf("%s takes %s, contraindicated with recorded allergy %q.",
					r.Name, med.GenericName, allergy)
			},
			Recommendation: "Verify the allergy record and reassess the prescription.",
		},
	)
}

// severeActivePair returns the first severe interaction among the patient's
// active medication pairs, in list order.
func severeActivePair(matrix *medications.Matrix, activeIDs []string) (medications.Interaction, bool) {
	for i := 0; i < len(activeIDs); i++ {
		for j := i + 1; j < len(activeIDs); j++ {
			if in, ok := matrix.Lookup(activeIDs[i], activeIDs[j]); ok && in.Severity == medications.SeveritySevere {
				return in, true
			}
		}
	}
	return medications.Interaction{}, false
}

// allergyConflict returns the first active medication whose contraindication
// tags match a recorded allergy, case-insensitively.
func allergyConflict(meds *medications.Catalog, r *patient.Record) (medications.Medication, string, bool) {
	for _, active := range r.Medications {
		med, ok := meds.GetByID(active.MedicationID)
		if !ok {
			continue
		}
		for _, tag := range med.Contraindications {
			for _, allergy := range r.Allergies {
				if strings.EqualFold(strings.TrimSpace(tag), strings.TrimSpace(allergy)) {
					return med, allergy, true
				}
			}
		}
	}
	return medications.Medication{}, "", false
}
