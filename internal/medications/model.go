package medications

// Medication is a catalog entry for a prescribable drug.
type Medication struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	GenericName       string   `json:"generic_name"`
	DrugClass         string   `json:"drug_class"`
	CommonDosages     []string `json:"common_dosages,omitempty"`
	InteractsWith     []string `json:"interacts_with,omitempty"`
	Contraindications []string `json:"contraindications,omitempty"`

	// Formulary fields, populated only for imported drugs.
	NDC          string `json:"ndc,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Tier         int    `json:"tier,omitempty"`
}

// Severity ranks a drug-drug interaction.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Rank returns the numeric ordering used to sort interaction results.
func (s Severity) Rank() int {
	switch s {
	case SeveritySevere:
		return 3
	case SeverityModerate:
		return 2
	case SeverityMinor:
		return 1
	default:
		return 0
	}
}

// Interaction describes a known drug-drug interaction between an unordered
// pair of medications.
type Interaction struct {
	MedicationA    string   `json:"medication_a"`
	MedicationB    string   `json:"medication_b"`
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
}
