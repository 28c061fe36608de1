package alerts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oakpoint-health/clinic-core/internal/tenancy"
	"github.com/oakpoint-health/clinic-core/pkg/logging"
)

// Handler handles HTTP requests for alert lifecycle transitions.
type Handler struct {
	repo    Repository
	manager *Manager
	audit   *AuditStore
	logger  *logging.Logger
}

// NewHandler creates a new alerts handler.
func NewHandler(repo Repository, manager *Manager, audit *AuditStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:    repo,
		manager: manager,
		audit:   audit,
		logger:  logger.WithComponent("alerts"),
	}
}

type transitionRequest struct {
	Actor string `json:"actor"`
}

// ListByPatient handles GET /alerts?patient_id= requests.
func (h *Handler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenancy.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing org context", http.StatusBadRequest)
		return
	}
	patientID := r.URL.Query().Get("patient_id")
	if patientID == "" {
		http.Error(w, "missing patient_id", http.StatusBadRequest)
		return
	}

	list, err := h.repo.ListByPatient(r.Context(), orgID, patientID)
	if err != nil {
		h.logger.Error("failed to list alerts", "error", err, "patient_id", patientID)
		http.Error(w, "failed to list alerts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"alerts": list,
		"count":  len(list),
	})
}

// Acknowledge handles POST /alerts/{alertID}/acknowledge requests.
func (h *Handler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(alert Alert, actor string) (Alert, error) {
		return h.manager.Acknowledge(alert, actor)
	})
}

// Dismiss handles POST /alerts/{alertID}/dismiss requests.
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(alert Alert, actor string) (Alert, error) {
		return h.manager.Dismiss(alert, actor)
	})
}

// Resolve handles POST /alerts/{alertID}/resolve requests.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(alert Alert, _ string) (Alert, error) {
		return h.manager.Resolve(alert)
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, apply func(Alert, string) (Alert, error)) {
	orgID, ok := tenancy.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing org context", http.StatusBadRequest)
		return
	}
	alertID := chi.URLParam(r, "alertID")
	if alertID == "" {
		http.Error(w, "missing alert id", http.StatusBadRequest)
		return
	}

	var req transitionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // actor is optional for resolve
	}

	alert, err := h.repo.GetByID(r.Context(), orgID, alertID)
	if err != nil {
		if errors.Is(err, ErrAlertNotFound) {
			http.Error(w, "alert not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load alert", "error", err, "alert_id", alertID)
		http.Error(w, "failed to load alert", http.StatusInternalServerError)
		return
	}
	from := alert.Status

	updated, err := apply(alert, req.Actor)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrAlreadyResolved):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrMissingActor):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("transition failed", "error", err, "alert_id", alertID)
			http.Error(w, "transition failed", http.StatusInternalServerError)
		}
		return
	}

	if err := h.repo.Update(r.Context(), updated); err != nil {
		h.logger.Error("failed to persist alert", "error", err, "alert_id", alertID)
		http.Error(w, "failed to persist alert", http.StatusInternalServerError)
		return
	}

	if _, err := h.audit.Record(r.Context(), orgID, alertID, from, updated.Status, req.Actor); err != nil {
		// The transition already committed; audit failures are logged, not surfaced.
		h.logger.Error("failed to record audit entry", "error", err, "alert_id", alertID)
	}

	h.logger.Info("alert transition",
		"alert_id", alertID,
		"from", from,
		"to", updated.Status,
		"actor", req.Actor,
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}
