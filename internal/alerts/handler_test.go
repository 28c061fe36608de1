package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oakpoint-health/clinic-core/internal/tenancy"
	"github.com/oakpoint-health/clinic-core/pkg/logging"
)

func newTestRouter(repo Repository) http.Handler {
	h := NewHandler(repo, NewManager(), NewAuditStore(nil), logging.Default())
	r := chi.NewRouter()
	r.Get("/alerts", h.ListByPatient)
	r.Post("/alerts/{alertID}/acknowledge", h.Acknowledge)
	r.Post("/alerts/{alertID}/dismiss", h.Dismiss)
	r.Post("/alerts/{alertID}/resolve", h.Resolve)
	return r
}

func withOrg(req *http.Request, orgID string) *http.Request {
	return req.WithContext(tenancy.WithOrgID(context.Background(), orgID))
}

func seedAlert(t *testing.T, repo Repository, status Status) Alert {
	t.Helper()
	alert := Alert{
		ID:          "a1",
		OrgID:       "org1",
		RuleID:      "r1",
		PatientID:   "p1",
		Severity:    "medium",
		Category:    "preventive-care",
		Message:     "screening overdue",
		Status:      status,
		Trigger:     "encounter-start",
		TriggeredAt: time.Now().UTC(),
	}
	if err := repo.Insert(context.Background(), alert); err != nil {
		t.Fatalf("seed alert: %v", err)
	}
	return alert
}

func TestAcknowledgeEndpoint(t *testing.T) {
	repo := NewInMemoryRepository()
	seedAlert(t, repo, StatusActive)
	router := newTestRouter(repo)

	body, _ := json.Marshal(transitionRequest{Actor: "dr.reyes"})
	req := withOrg(httptest.NewRequest(http.MethodPost, "/alerts/a1/acknowledge", bytes.NewReader(body)), "org1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got Alert
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != StatusAcknowledged {
		t.Fatalf("expected acknowledged, got %s", got.Status)
	}
	if got.AcknowledgedBy != "dr.reyes" {
		t.Fatalf("expected actor recorded, got %q", got.AcknowledgedBy)
	}
}

func TestAcknowledgeDismissedAlertReturnsConflict(t *testing.T) {
	repo := NewInMemoryRepository()
	seedAlert(t, repo, StatusDismissed)
	router := newTestRouter(repo)

	body, _ := json.Marshal(transitionRequest{Actor: "dr.reyes"})
	req := withOrg(httptest.NewRequest(http.MethodPost, "/alerts/a1/acknowledge", bytes.NewReader(body)), "org1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	stored, err := repo.GetByID(context.Background(), "org1", "a1")
	if err != nil {
		t.Fatalf("get alert: %v", err)
	}
	if stored.Status != StatusDismissed {
		t.Fatalf("status must be left unchanged, got %s", stored.Status)
	}
}

func TestTransitionMissingOrgContext(t *testing.T) {
	repo := NewInMemoryRepository()
	seedAlert(t, repo, StatusActive)
	router := newTestRouter(repo)

	body, _ := json.Marshal(transitionRequest{Actor: "dr.reyes"})
	req := httptest.NewRequest(http.MethodPost, "/alerts/a1/dismiss", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestTransitionUnknownAlert(t *testing.T) {
	repo := NewInMemoryRepository()
	router := newTestRouter(repo)

	body, _ := json.Marshal(transitionRequest{Actor: "dr.reyes"})
	req := withOrg(httptest.NewRequest(http.MethodPost, "/alerts/nope/acknowledge", bytes.NewReader(body)), "org1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestListByPatientEndpoint(t *testing.T) {
	repo := NewInMemoryRepository()
	seedAlert(t, repo, StatusActive)
	router := newTestRouter(repo)

	req := withOrg(httptest.NewRequest(http.MethodGet, "/alerts?patient_id=p1", nil), "org1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Alerts []Alert `json:"alerts"`
		Count  int     `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Alerts) != 1 {
		t.Fatalf("expected one alert, got %+v", resp)
	}
}
