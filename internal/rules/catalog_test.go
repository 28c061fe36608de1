package rules

import (
	"context"
	"testing"
	"time"

	"github.com/oakpoint-health/clinic-core/internal/observability/metrics"
	"github.com/oakpoint-health/clinic-core/internal/patient"
	"github.com/oakpoint-health/clinic-core/pkg/logging"
)

func TestCatalogAddRegistersCustomRule(t *testing.T) {
	catalog := NewCatalog()
	evaluator := NewEvaluator(catalog, logging.New("error"), metrics.NewEngineMetrics(nil))

	record := &patient.Record{ID: "p1", OrgID: "org-1", Name: "Noor Haddad", Age: 71}
	evalCtx := &Context{Trigger: TriggerEncounterStart, Now: time.Now().UTC()}

	if raised := evaluator.Evaluate(context.Background(), record, evalCtx); len(raised) != 0 {
		t.Fatalf("expected empty catalog to raise nothing, got %d", len(raised))
	}

	catalog.Add(Rule{
		ID:       "rule-fall-risk-review",
		Name:     "Fall risk review for seniors",
		Category: CategoryPreventiveCare,
		Severity: SeverityMedium,
		Trigger:  TriggerEncounterStart,
		Condition: func(record *patient.Record, _ *Context) (bool, error) {
			return record.Age >= 65, nil
		},
		Message: func(record *patient.Record, _ *Context) string {
			return "Review fall risk at encounter start"
		},
		Enabled: true,
	})

	if catalog.Len() != 1 {
		t.Fatalf("expected one registered rule, got %d", catalog.Len())
	}

	raised := evaluator.Evaluate(context.Background(), record, evalCtx)
	if len(raised) != 1 || raised[0].RuleID != "rule-fall-risk-review" {
		t.Fatalf("expected the registered rule to fire, got %+v", raised)
	}
}

func TestCatalogEnabledFiltersDisabledRules(t *testing.T) {
	catalog := NewCatalog(
		Rule{ID: "rule-a", Enabled: true},
		Rule{ID: "rule-b", Enabled: false},
	)
	catalog.Add(Rule{ID: "rule-c", Enabled: true})

	enabled := catalog.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "rule-a" || enabled[1].ID != "rule-c" {
		t.Fatalf("unexpected enabled set: %+v", enabled)
	}
	if catalog.Len() != 3 {
		t.Fatalf("expected three total rules, got %d", catalog.Len())
	}
}
