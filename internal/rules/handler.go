package rules

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oakpoint-health/clinic-core/internal/alerts"
	"github.com/oakpoint-health/clinic-core/internal/events"
	"github.com/oakpoint-health/clinic-core/internal/patient"
	"github.com/oakpoint-health/clinic-core/internal/tenancy"
	"github.com/oakpoint-health/clinic-core/pkg/logging"
)

type outboxAppender interface {
	AppendEvent(ctx context.Context, orgID, aggregate, correlationID string, evt events.CanonicalEvent, opts ...events.EnvelopeOption) (events.Envelope, error)
}

// Handler handles HTTP requests for rule evaluation.
type Handler struct {
	evaluator *Evaluator
	patients  patient.Provider
	alerts    alerts.Repository
	outbox    outboxAppender
	logger    *logging.Logger
}

// NewHandler creates a new evaluation handler. The outbox is optional; when
// nil, raised alerts are persisted without downstream events.
func NewHandler(evaluator *Evaluator, patients patient.Provider, alertRepo alerts.Repository, outbox outboxAppender, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		evaluator: evaluator,
		patients:  patients,
		alerts:    alertRepo,
		outbox:    outbox,
		logger:    logger.WithComponent("evaluate"),
	}
}

type evaluateRequest struct {
	Trigger     string                `json:"trigger"`
	EncounterID string                `json:"encounter_id,omitempty"`
	Vitals      *patient.VitalsSample `json:"vitals,omitempty"`
	Lab         *patient.LabResult    `json:"lab,omitempty"`
}

// Evaluate handles POST /patients/{patientID}/evaluate requests.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenancy.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing org context", http.StatusBadRequest)
		return
	}
	patientID := chi.URLParam(r, "patientID")
	if patientID == "" {
		http.Error(w, "missing patient id", http.StatusBadRequest)
		return
	}

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	trigger, ok := ParseTrigger(req.Trigger)
	if !ok {
		http.Error(w, "invalid trigger", http.StatusBadRequest)
		return
	}

	record, err := h.patients.GetRecord(r.Context(), orgID, patientID)
	if err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			http.Error(w, "patient not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load patient record", "error", err, "patient_id", patientID)
		http.Error(w, "failed to load patient record", http.StatusInternalServerError)
		return
	}

	raised := h.evaluator.Evaluate(r.Context(), record, &Context{
		Trigger:     trigger,
		EncounterID: req.EncounterID,
		Vitals:      req.Vitals,
		Lab:         req.Lab,
		Now:         time.Now().UTC(),
	})

	persisted := make([]alerts.Alert, 0, len(raised))
	for _, alert := range raised {
		alert.OrgID = orgID
		if err := h.alerts.Insert(r.Context(), alert); err != nil {
			h.logger.Error("failed to persist alert", "error", err, "rule_id", alert.RuleID)
			continue
		}
		persisted = append(persisted, alert)

		if h.outbox != nil {
			if _, err := h.outbox.AppendEvent(r.Context(), orgID, "patient:"+alert.PatientID, alert.EncounterID, events.AlertRaisedV1{
				OrgID:       orgID,
				AlertID:     alert.ID,
				RuleID:      alert.RuleID,
				PatientID:   alert.PatientID,
				Severity:    alert.Severity,
				Category:    alert.Category,
				Trigger:     alert.Trigger,
				EncounterID: alert.EncounterID,
				TriggeredAt: alert.TriggeredAt,
			}); err != nil {
				h.logger.Error("failed to enqueue alert.raised", "error", err, "alert_id", alert.ID)
			}
		}
	}

	h.logger.Info("evaluation completed",
		"patient_id", patientID,
		"trigger", trigger,
		"alerts_raised", len(persisted),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"alerts": persisted,
		"count":  len(persisted),
	})
}
