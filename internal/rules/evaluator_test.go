package rules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakpoint-health/clinic-core/internal/alerts"
	"github.com/oakpoint-health/clinic-core/internal/patient"
)

func testRule(id string, trigger Trigger, matched bool) Rule {
	return Rule{
		ID:       id,
		Name:     id,
		Category: CategoryChronicDisease,
		Severity: SeverityLow,
		Trigger:  trigger,
		Enabled:  true,
		Condition: func(*patient.Record, *Context) (bool, error) {
			return matched, nil
		},
		Message: func(*patient.Record, *Context) string { return "fired: " + id },
	}
}

func TestEvaluateMatchesTriggerAndPredicate(t *testing.T) {
	catalog := NewCatalog(
		testRule("vitals-match", TriggerVitalsEntry, true),
		testRule("vitals-nomatch", TriggerVitalsEntry, false),
		testRule("lab-match", TriggerLabResult, true),
	)
	e := NewEvaluator(catalog, nil, nil)
	record := &patient.Record{ID: "p1", OrgID: "org1"}

	got := e.Evaluate(context.Background(), record, &Context{Trigger: TriggerVitalsEntry})
	require.Len(t, got, 1)
	assert.Equal(t, "vitals-match", got[0].RuleID)
	assert.Equal(t, alerts.StatusActive, got[0].Status)
	assert.Equal(t, "p1", got[0].PatientID)
	assert.Equal(t, string(TriggerVitalsEntry), got[0].Trigger)
}

func TestEvaluateManualRulesAlwaysEligible(t *testing.T) {
	catalog := NewCatalog(
		testRule("manual-rule", TriggerManualCheck, true),
		testRule("lab-rule", TriggerLabResult, true),
	)
	e := NewEvaluator(catalog, nil, nil)
	record := &patient.Record{ID: "p1"}

	got := e.Evaluate(context.Background(), record, &Context{Trigger: TriggerVitalsEntry})
	require.Len(t, got, 1)
	assert.Equal(t, "manual-rule", got[0].RuleID)
}

func TestEvaluateManualAuditRunsFullCatalog(t *testing.T) {
	catalog := NewCatalog(
		testRule("encounter-rule", TriggerEncounterStart, true),
		testRule("vitals-rule", TriggerVitalsEntry, true),
		testRule("manual-rule", TriggerManualCheck, true),
	)
	e := NewEvaluator(catalog, nil, nil)
	record := &patient.Record{ID: "p1"}

	got := e.Evaluate(context.Background(), record, &Context{Trigger: TriggerManualCheck})
	require.Len(t, got, 3)
}

func TestEvaluateSkipsDisabledRules(t *testing.T) {
	disabled := testRule("disabled", TriggerManualCheck, true)
	disabled.Enabled = false
	catalog := NewCatalog(disabled, testRule("enabled", TriggerManualCheck, true))
	e := NewEvaluator(catalog, nil, nil)

	got := e.Evaluate(context.Background(), &patient.Record{ID: "p1"}, &Context{Trigger: TriggerManualCheck})
	require.Len(t, got, 1)
	assert.Equal(t, "enabled", got[0].RuleID)
}

func TestEvaluateIsolatesFailingRules(t *testing.T) {
	panicking := Rule{
		ID: "panics", Trigger: TriggerManualCheck, Enabled: true,
		Condition: func(*patient.Record, *Context) (bool, error) { panic("boom") },
		Message:   func(*patient.Record, *Context) string { return "" },
	}
	erroring := Rule{
		ID: "errors", Trigger: TriggerManualCheck, Enabled: true,
		Condition: func(*patient.Record, *Context) (bool, error) { return false, errors.New("bad data") },
		Message:   func(*patient.Record, *Context) string { return "" },
	}
	badTemplate := Rule{
		ID: "bad-template", Trigger: TriggerManualCheck, Enabled: true,
		Condition: func(*patient.Record, *Context) (bool, error) { return true, nil },
		Message:   func(*patient.Record, *Context) string { panic("template boom") },
	}
	catalog := NewCatalog(panicking, erroring, badTemplate, testRule("survivor", TriggerManualCheck, true))
	e := NewEvaluator(catalog, nil, nil)

	got := e.Evaluate(context.Background(), &patient.Record{ID: "p1"}, &Context{Trigger: TriggerManualCheck})
	require.Len(t, got, 1, "one bad rule must never abort the rest of the catalog")
	assert.Equal(t, "survivor", got[0].RuleID)
}

func TestEvaluatePreservesCatalogOrder(t *testing.T) {
	catalog := NewCatalog(
		testRule("first", TriggerManualCheck, true),
		testRule("second", TriggerManualCheck, true),
		testRule("third", TriggerManualCheck, true),
	)
	e := NewEvaluator(catalog, nil, nil)

	got := e.Evaluate(context.Background(), &patient.Record{ID: "p1"}, &Context{Trigger: TriggerManualCheck})
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].RuleID)
	assert.Equal(t, "second", got[1].RuleID)
	assert.Equal(t, "third", got[2].RuleID)
}

func TestEvaluateStampsContextTime(t *testing.T) {
	ts := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	catalog := NewCatalog(testRule("r", TriggerManualCheck, true))
	e := NewEvaluator(catalog, nil, nil)

	got := e.Evaluate(context.Background(), &patient.Record{ID: "p1"}, &Context{Trigger: TriggerManualCheck, Now: ts})
	require.Len(t, got, 1)
	assert.Equal(t, ts, got[0].TriggeredAt)
}

func TestEvaluateNilInputs(t *testing.T) {
	e := NewEvaluator(NewCatalog(), nil, nil)
	assert.Nil(t, e.Evaluate(context.Background(), nil, &Context{Trigger: TriggerManualCheck}))
	assert.Nil(t, e.Evaluate(context.Background(), &patient.Record{}, nil))
}

func TestEvaluateCarriesEncounterCorrelation(t *testing.T) {
	catalog := NewCatalog(testRule("r", TriggerEncounterStart, true))
	e := NewEvaluator(catalog, nil, nil)

	got := e.Evaluate(context.Background(), &patient.Record{ID: "p1"}, &Context{
		Trigger:     TriggerEncounterStart,
		EncounterID: "enc-42",
	})
	require.Len(t, got, 1)
	assert.Equal(t, "enc-42", got[0].EncounterID)
}
