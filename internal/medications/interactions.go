package medications

import "sort"

// Matrix is the curated pairwise interaction lookup. Each interaction is
// stored under both canonical keys ("A_B" and "B_A") so lookup succeeds
// regardless of argument order.
type Matrix struct {
	byKey map[string]Interaction
}

// NewMatrix indexes the hand-curated interaction set.
func NewMatrix(interactions []Interaction) *Matrix {
	m := &Matrix{byKey: make(map[string]Interaction, len(interactions)*2)}
	for _, in := range interactions {
		m.byKey[pairKey(in.MedicationA, in.MedicationB)] = in
		m.byKey[pairKey(in.MedicationB, in.MedicationA)] = in
	}
	return m
}

func pairKey(a, b string) string {
	return a + "_" + b
}

// Lookup returns the interaction for an unordered medication pair.
func (m *Matrix) Lookup(a, b string) (Interaction, bool) {
	if in, ok := m.byKey[pairKey(a, b)]; ok {
		return in, true
	}
	in, ok := m.byKey[pairKey(b, a)]
	return in, ok
}

// CheckInteractions evaluates a candidate medication against the patient's
// active list. At most one interaction is collected per pair. Results are
// sorted by descending severity rank; ties keep lookup order.
func (m *Matrix) CheckInteractions(candidateID string, activeIDs []string) []Interaction {
	var found []Interaction
	for _, activeID := range activeIDs {
		if activeID == candidateID {
			continue
		}
		if in, ok := m.Lookup(candidateID, activeID); ok {
			found = append(found, in)
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Severity.Rank() > found[j].Severity.Rank()
	})
	return found
}
