package medications

// DefaultMedications returns the built-in prescribing catalog. Ids are
// stable; the interaction matrix references them.
func DefaultMedications() []Medication {
	return []Medication{
		{
			ID: "med-001", Name: "Prinivil", GenericName: "lisinopril", DrugClass: "ACE inhibitor",
			CommonDosages: []string{"10mg daily", "20mg daily", "40mg daily"},
			InteractsWith: []string{"med-005"},
		},
		{
			ID: "med-002", Name: "Glucophage", GenericName: "metformin", DrugClass: "biguanide",
			CommonDosages:     []string{"500mg twice daily", "1000mg twice daily"},
			Contraindications: []string{"severe renal impairment"},
		},
		{
			ID: "med-003", Name: "Coumadin", GenericName: "warfarin", DrugClass: "anticoagulant",
			CommonDosages:     []string{"2mg daily", "5mg daily"},
			InteractsWith:     []string{"med-004", "med-005"},
			Contraindications: []string{"active bleeding", "pregnancy"},
		},
		{
			ID: "med-004", Name: "Bayer Aspirin", GenericName: "aspirin", DrugClass: "antiplatelet",
			CommonDosages: []string{"81mg daily", "325mg daily"},
			InteractsWith: []string{"med-003", "med-005"},
		},
		{
			ID: "med-005", Name: "Advil", GenericName: "ibuprofen", DrugClass: "NSAID",
			CommonDosages: []string{"200mg as needed", "400mg as needed"},
			InteractsWith: []string{"med-001", "med-003", "med-004"},
		},
		{
			ID: "med-006", Name: "Zocor", GenericName: "simvastatin", DrugClass: "statin",
			CommonDosages: []string{"20mg nightly", "40mg nightly"},
			InteractsWith: []string{"med-007"},
		},
		{
			ID: "med-007", Name: "Norvasc", GenericName: "amlodipine", DrugClass: "calcium channel blocker",
			CommonDosages: []string{"5mg daily", "10mg daily"},
			InteractsWith: []string{"med-006"},
		},
		{
			ID: "med-008", Name: "Synthroid", GenericName: "levothyroxine", DrugClass: "thyroid hormone",
			CommonDosages: []string{"50mcg daily", "100mcg daily"},
		},
		{
			ID: "med-009", Name: "Prilosec", GenericName: "omeprazole", DrugClass: "proton pump inhibitor",
			CommonDosages: []string{"20mg daily", "40mg daily"},
			InteractsWith: []string{"med-010"},
		},
		{
			ID: "med-010", Name: "Zoloft", GenericName: "sertraline", DrugClass: "SSRI",
			CommonDosages: []string{"50mg daily", "100mg daily"},
			InteractsWith: []string{"med-009"},
		},
	}
}

// DefaultInteractions returns the hand-curated interaction set for the
// built-in catalog.
func DefaultInteractions() []Interaction {
	return []Interaction{
		{
			MedicationA: "med-003", MedicationB: "med-004", Severity: SeveritySevere,
			Description:    "Warfarin with aspirin markedly increases bleeding risk.",
			Recommendation: "Avoid combination; if unavoidable, monitor INR closely.",
		},
		{
			MedicationA: "med-003", MedicationB: "med-005", Severity: SeveritySevere,
			Description:    "Warfarin with ibuprofen increases risk of GI bleeding.",
			Recommendation: "Use acetaminophen for analgesia instead.",
		},
		{
			MedicationA: "med-001", MedicationB: "med-005", Severity: SeverityModerate,
			Description:    "NSAIDs can blunt the antihypertensive effect of ACE inhibitors and stress renal function.",
			Recommendation: "Limit NSAID duration; monitor blood pressure and creatinine.",
		},
		{
			MedicationA: "med-006", MedicationB: "med-007", Severity: SeverityModerate,
			Description:    "Amlodipine raises simvastatin exposure and myopathy risk.",
			Recommendation: "Cap simvastatin at 20mg daily with amlodipine.",
		},
		{
			MedicationA: "med-004", MedicationB: "med-005", Severity: SeverityMinor,
			Description:    "Ibuprofen may reduce the antiplatelet effect of low-dose aspirin.",
			Recommendation: "Take aspirin at least 30 minutes before ibuprofen.",
		},
		{
			MedicationA: "med-009", MedicationB: "med-010", Severity: SeverityMinor,
			Description:    "Omeprazole can modestly raise sertraline levels.",
			Recommendation: "Watch for increased serotonergic side effects.",
		},
	}
}
