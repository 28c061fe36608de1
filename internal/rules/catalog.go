package rules

// Catalog is an ordered set of rules. Evaluation walks it in insertion
// order; adding a rule never requires evaluator changes.
type Catalog struct {
	rules []Rule
}

// NewCatalog builds a catalog from the given rules, keeping their order.
func NewCatalog(rules ...Rule) *Catalog {
	return &Catalog{rules: append([]Rule(nil), rules...)}
}

// Add appends rules to the catalog.
func (c *Catalog) Add(rules ...Rule) {
	c.rules = append(c.rules, rules...)
}

// Enabled returns the enabled rules in catalog order.
func (c *Catalog) Enabled() []Rule {
	out := make([]Rule, 0, len(c.rules))
	for _, r := range c.rules {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// Len reports the total number of rules, enabled or not.
func (c *Catalog) Len() int {
	return len(c.rules)
}
