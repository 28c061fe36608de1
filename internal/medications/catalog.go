// Package medications holds the formulary catalog and the curated
// drug-drug interaction matrix used at prescribing time.
package medications

import (
	"fmt"
	"strings"
	"sync"
)

// Catalog owns the medication list. It is an explicit object so callers
// control its lifetime; nothing in this package is module-level state.
type Catalog struct {
	mu     sync.RWMutex
	meds   []Medication
	nextID int
}

// NewCatalog builds a catalog seeded with the given medications. Seed ids
// are kept as-is; newly imported drugs get sequential ids after the seed.
func NewCatalog(seed []Medication) *Catalog {
	c := &Catalog{
		meds:   append([]Medication(nil), seed...),
		nextID: len(seed) + 1,
	}
	return c
}

// GetByID returns the medication with the given id.
func (c *Catalog) GetByID(id string) (Medication, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.meds {
		if m.ID == id {
			return m, true
		}
	}
	return Medication{}, false
}

// Search performs a case-insensitive substring match over brand name,
// generic name, and drug class. Results keep natural catalog order.
func (c *Catalog) Search(query string) []Medication {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var matches []Medication
	for _, m := range c.meds {
		if strings.Contains(strings.ToLower(m.Name), q) ||
			strings.Contains(strings.ToLower(m.GenericName), q) ||
			strings.Contains(strings.ToLower(m.DrugClass), q) {
			matches = append(matches, m)
		}
	}
	return matches
}

// All returns a copy of the current catalog contents.
func (c *Catalog) All() []Medication {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Medication(nil), c.meds...)
}

// AddFormularyDrugs merges formulary-sourced drugs into the catalog. A drug
// already present under the same brand or generic name (case-insensitive)
// is skipped. Non-duplicates are appended with a freshly minted sequential
// id and an empty interaction list; formulary import never creates
// interaction edges. Returns the medications actually added.
func (c *Catalog) AddFormularyDrugs(drugs []Medication) []Medication {
	c.mu.Lock()
	defer c.mu.Unlock()

	known := make(map[string]struct{}, len(c.meds)*2)
	for _, m := range c.meds {
		if name := strings.ToLower(strings.TrimSpace(m.Name)); name != "" {
			known[name] = struct{}{}
		}
		if generic := strings.ToLower(strings.TrimSpace(m.GenericName)); generic != "" {
			known[generic] = struct{}{}
		}
	}

	var added []Medication
	for _, d := range drugs {
		name := strings.ToLower(strings.TrimSpace(d.Name))
		generic := strings.ToLower(strings.TrimSpace(d.GenericName))
		if name == "" && generic == "" {
			continue
		}
		if _, dup := known[name]; dup && name != "" {
			continue
		}
		if _, dup := known[generic]; dup && generic != "" {
			continue
		}

		d.ID = fmt.Sprintf("med-%03d", c.nextID)
		c.nextID++
		d.InteractsWith = nil
		c.meds = append(c.meds, d)
		added = append(added, d)

		if name != "" {
			known[name] = struct{}{}
		}
		if generic != "" {
			known[generic] = struct{}{}
		}
	}
	return added
}
