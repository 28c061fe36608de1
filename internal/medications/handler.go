package medications

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/oakpoint-health/clinic-core/internal/observability/metrics"
	"github.com/oakpoint-health/clinic-core/pkg/logging"
)

// Handler handles HTTP requests for the medication catalog.
type Handler struct {
	catalog *Catalog
	matrix  *Matrix
	metrics *metrics.EngineMetrics
	logger  *logging.Logger
}

// NewHandler creates a new medications handler.
func NewHandler(catalog *Catalog, matrix *Matrix, m *metrics.EngineMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		catalog: catalog,
		matrix:  matrix,
		metrics: m,
		logger:  logger.WithComponent("medications"),
	}
}

// Search handles GET /medications/search?q= requests.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}

	results := h.catalog.Search(query)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"medications": results,
		"count":       len(results),
	})
}

type interactionsRequest struct {
	// CandidateID is the medication being considered for prescription.
	CandidateID string `json:"candidate_id"`
	// ActiveIDs is the patient's current medication list.
	ActiveIDs []string `json:"active_ids"`
}

// CheckInteractions handles POST /medications/interactions requests. The
// response is sorted most severe first.
func (h *Handler) CheckInteractions(w http.ResponseWriter, r *http.Request) {
	var req interactionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.CandidateID == "" {
		http.Error(w, "missing candidate_id", http.StatusBadRequest)
		return
	}
	if _, ok := h.catalog.GetByID(req.CandidateID); !ok {
		http.Error(w, "unknown candidate medication", http.StatusNotFound)
		return
	}

	found := h.matrix.CheckInteractions(req.CandidateID, req.ActiveIDs)
	result := "clear"
	if len(found) > 0 {
		result = string(found[0].Severity)
	}
	h.metrics.ObserveInteractionCheck(result)
	h.logger.Info("interaction check",
		"candidate_id", req.CandidateID,
		"active_count", len(req.ActiveIDs),
		"result", result,
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"interactions": found,
		"count":        len(found),
	})
}

type formularyRequest struct {
	Drugs []Medication `json:"drugs"`
}

// MergeFormulary handles POST /admin/medications/formulary requests. Drugs
// already present by brand or generic name are skipped.
func (h *Handler) MergeFormulary(w http.ResponseWriter, r *http.Request) {
	var req formularyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Drugs) == 0 {
		http.Error(w, "missing drugs", http.StatusBadRequest)
		return
	}

	added := h.catalog.AddFormularyDrugs(req.Drugs)
	h.logger.Info("formulary merged",
		"submitted", len(req.Drugs),
		"added", len(added),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"added":   added,
		"skipped": len(req.Drugs) - len(added),
	})
}
