package authorizations

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oakpoint-health/clinic-core/internal/tenancy"
	"github.com/oakpoint-health/clinic-core/pkg/logging"
)

// Handler handles HTTP requests for prior authorizations.
type Handler struct {
	repo    Repository
	tracker *Tracker
	logger  *logging.Logger
}

// NewHandler creates a new authorizations handler.
func NewHandler(repo Repository, tracker *Tracker, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:    repo,
		tracker: tracker,
		logger:  logger.WithComponent("authorizations"),
	}
}

// ListByPatient handles GET /patients/{patientID}/authorizations requests.
// Each authorization is returned with its utilization summary attached.
func (h *Handler) ListByPatient(w http.ResponseWriter, r *http.Request) {
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

	list, err := h.repo.ListByPatient(r.Context(), orgID, patientID)
	if err != nil {
		h.logger.Error("failed to list authorizations", "error", err, "patient_id", patientID)
		http.Error(w, "failed to list authorizations", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	type entry struct {
		PriorAuthorization
		Summary Summary `json:"summary"`
	}
	entries := make([]entry, 0, len(list))
	for _, auth := range list {
		entries = append(entries, entry{PriorAuthorization: auth, Summary: Summarize(auth, now)})
	}

	best, hasBest := h.tracker.SelectBest(patientID, list)
	resp := map[string]any{
		"authorizations": entries,
		"count":          len(entries),
	}
	if hasBest {
		resp["best_authorization_id"] = best.ID
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Summary handles GET /authorizations/{authID}/summary requests.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenancy.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing org context", http.StatusBadRequest)
		return
	}
	authID := chi.URLParam(r, "authID")
	if authID == "" {
		http.Error(w, "missing authorization id", http.StatusBadRequest)
		return
	}

	auth, err := h.repo.GetByID(r.Context(), orgID, authID)
	if err != nil {
		if errors.Is(err, ErrAuthorizationNotFound) {
			http.Error(w, "authorization not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load authorization", "error", err, "authorization_id", authID)
		http.Error(w, "failed to load authorization", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Summarize(auth, time.Now().UTC()))
}

type createRequest struct {
	PatientID   string    `json:"patient_id"`
	InsurerID   string    `json:"insurer_id"`
	ServiceCode string    `json:"service_code"`
	TotalUnits  int       `json:"total_units"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Pending     bool      `json:"pending,omitempty"`
}

// Create handles POST /admin/authorizations requests.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenancy.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing org context", http.StatusBadRequest)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PatientID == "" {
		http.Error(w, "missing patient_id", http.StatusBadRequest)
		return
	}
	if req.TotalUnits <= 0 {
		http.Error(w, ErrInvalidUnits.Error(), http.StatusBadRequest)
		return
	}
	if !req.EndDate.After(req.StartDate) {
		http.Error(w, ErrInvalidWindow.Error(), http.StatusBadRequest)
		return
	}

	status := StatusActive
	if req.Pending {
		status = StatusPending
	}
	now := time.Now().UTC()
	auth := PriorAuthorization{
		ID:          uuid.NewString(),
		OrgID:       orgID,
		PatientID:   req.PatientID,
		InsurerID:   req.InsurerID,
		ServiceCode: req.ServiceCode,
		TotalUnits:  req.TotalUnits,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.repo.Insert(r.Context(), auth); err != nil {
		h.logger.Error("failed to create authorization", "error", err, "patient_id", req.PatientID)
		http.Error(w, "failed to create authorization", http.StatusInternalServerError)
		return
	}

	h.logger.Info("authorization created",
		"authorization_id", auth.ID,
		"patient_id", auth.PatientID,
		"total_units", auth.TotalUnits,
		"status", auth.Status,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(auth)
}

type denyRequest struct {
	Reason string `json:"reason"`
}

// Deny handles POST /admin/authorizations/{authID}/deny requests. Denial is
// terminal regardless of the prior state.
func (h *Handler) Deny(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenancy.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing org context", http.StatusBadRequest)
		return
	}
	authID := chi.URLParam(r, "authID")
	if authID == "" {
		http.Error(w, "missing authorization id", http.StatusBadRequest)
		return
	}

	var req denyRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	auth, err := h.repo.GetByID(r.Context(), orgID, authID)
	if err != nil {
		if errors.Is(err, ErrAuthorizationNotFound) {
			http.Error(w, "authorization not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load authorization", "error", err, "authorization_id", authID)
		http.Error(w, "failed to load authorization", http.StatusInternalServerError)
		return
	}
	if auth.Status == StatusDenied {
		http.Error(w, ErrAlreadyDenied.Error(), http.StatusConflict)
		return
	}

	auth.Status = StatusDenied
	auth.DenialReason = req.Reason
	auth.UpdatedAt = time.Now().UTC()

	if err := h.repo.Update(r.Context(), auth); err != nil {
		h.logger.Error("failed to deny authorization", "error", err, "authorization_id", authID)
		http.Error(w, "failed to deny authorization", http.StatusInternalServerError)
		return
	}

	h.logger.Info("authorization denied", "authorization_id", auth.ID, "reason", req.Reason)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(auth)
}
