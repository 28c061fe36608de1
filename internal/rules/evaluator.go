package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/oakpoint-health/clinic-core/internal/alerts"
	"github.com/oakpoint-health/clinic-core/internal/observability/metrics"
	"github.com/oakpoint-health/clinic-core/internal/patient"
	"github.com/oakpoint-health/clinic-core/pkg/logging"
)

var (
	nowFunc    = time.Now
	newAlertID = uuid.NewString
)

// Evaluator runs the enabled catalog against a patient record. It is
// stateless between calls and never mutates the record, persists, or
// notifies; it only constructs alerts.
type Evaluator struct {
	catalog *Catalog
	logger  *logging.Logger
	metrics *metrics.EngineMetrics
	tracer  trace.Tracer
}

// NewEvaluator creates an evaluator over the catalog.
func NewEvaluator(catalog *Catalog, logger *logging.Logger, m *metrics.EngineMetrics) *Evaluator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Evaluator{
		catalog: catalog,
		logger:  logger.WithComponent("rules"),
		metrics: m,
		tracer:  otel.Tracer("cliniccore.internal.rules.evaluator"),
	}
}

// Evaluate executes every eligible enabled rule and returns the raised
// alerts in catalog order. A failing rule is logged and skipped; it never
// aborts the rest of the catalog.
func (e *Evaluator) Evaluate(ctx context.Context, record *patient.Record, evalCtx *Context) []alerts.Alert {
	if record == nil || evalCtx == nil {
		return nil
	}
	_, span := e.tracer.Start(ctx, "rules.evaluate")
	defer span.End()

	start := nowFunc()
	if evalCtx.Now.IsZero() {
		normalized := *evalCtx
		normalized.Now = start.UTC()
		evalCtx = &normalized
	}

	var out []alerts.Alert
	for _, rule := range e.catalog.Enabled() {
		if !eligible(rule.Trigger, evalCtx.Trigger) {
			continue
		}

		matched, err := runCondition(rule, record, evalCtx)
		if err != nil {
			e.metrics.ObserveRuleFailure(rule.ID)
			e.logger.Error("rule evaluation failed, skipping",
				"error", err,
				"rule_id", rule.ID,
				"patient_id", record.ID,
			)
			continue
		}
		if !matched {
			continue
		}

		message, err := renderMessage(rule, record, evalCtx)
		if err != nil {
			e.metrics.ObserveRuleFailure(rule.ID)
			e.logger.Error("rule message rendering failed, skipping",
				"error", err,
				"rule_id", rule.ID,
				"patient_id", record.ID,
			)
			continue
		}

		alert := alerts.Alert{
			ID:             newAlertID(),
			OrgID:          record.OrgID,
			RuleID:         rule.ID,
			RuleName:       rule.Name,
			PatientID:      record.ID,
			Severity:       string(rule.Severity),
			Category:       string(rule.Category),
			Message:        message,
			Recommendation: rule.Recommendation,
			Status:         alerts.StatusActive,
			Trigger:        string(evalCtx.Trigger),
			EncounterID:    evalCtx.EncounterID,
			TriggeredAt:    evalCtx.Now,
			UpdatedAt:      evalCtx.Now,
		}
		if rule.QualityMeasureID != "" {
			alert.Metadata = map[string]string{"quality_measure_id": rule.QualityMeasureID}
		}
		out = append(out, alert)
		e.metrics.ObserveAlertRaised(string(rule.Severity), string(rule.Category))
	}

	e.metrics.ObserveEvaluation(string(evalCtx.Trigger), time.Since(start).Seconds())
	return out
}

// eligible applies the trigger gate: a rule runs when its trigger matches
// the event, when the rule is a manual-check rule, or when the event itself
// is a manual audit (which executes the full catalog).
func eligible(ruleTrigger, eventTrigger Trigger) bool {
	return ruleTrigger == eventTrigger ||
		ruleTrigger == TriggerManualCheck ||
		eventTrigger == TriggerManualCheck
}

func runCondition(rule Rule, record *patient.Record, ctx *Context) (matched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			matched = false
			err = fmt.Errorf("rules: condition panic: %v", r)
		}
	}()
	if rule.Condition == nil {
		return false, fmt.Errorf("rules: rule %s has no condition", rule.ID)
	}
	return rule.Condition(record, ctx)
}

func renderMessage(rule Rule, record *patient.Record, ctx *Context) (message string, err error) {
	defer func() {
		if r := recover(); r != nil {
			message = ""
			err = fmt.Errorf("rules: message panic: %v", r)
		}
	}()
	if rule.Message == nil {
		return "", fmt.Errorf("rules: rule %s has no message template", rule.ID)
	}
	return rule.Message(record, ctx), nil
}
