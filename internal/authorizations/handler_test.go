package authorizations

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
	h := NewHandler(repo, newTestTracker(), logging.Default())
	r := chi.NewRouter()
	r.Get("/patients/{patientID}/authorizations", h.ListByPatient)
	r.Get("/authorizations/{authID}/summary", h.Summary)
	r.Post("/admin/authorizations", h.Create)
	r.Post("/admin/authorizations/{authID}/deny", h.Deny)
	return r
}

func withOrg(req *http.Request, orgID string) *http.Request {
	return req.WithContext(tenancy.WithOrgID(context.Background(), orgID))
}

func seedAuth(t *testing.T, repo Repository, auth PriorAuthorization) {
	t.Helper()
	if err := repo.Insert(context.Background(), auth); err != nil {
		t.Fatalf("seed authorization: %v", err)
	}
}

func TestListByPatientEndpoint(t *testing.T) {
	repo := NewInMemoryRepository()
	now := time.Now().UTC()
	seedAuth(t, repo, activeAuth("auth-1", 10, 2, now.AddDate(0, -1, 0), now.AddDate(0, 2, 0)))
	seedAuth(t, repo, activeAuth("auth-2", 10, 9, now.AddDate(0, -1, 0), now.AddDate(0, 1, 0)))
	router := newTestRouter(repo)

	req := withOrg(httptest.NewRequest(http.MethodGet, "/patients/pat-1/authorizations", nil), "org-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Authorizations []struct {
			ID      string  `json:"id"`
			Summary Summary `json:"summary"`
		} `json:"authorizations"`
		Count  int    `json:"count"`
		BestID string `json:"best_authorization_id"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("expected two authorizations, got %d", resp.Count)
	}
	if resp.BestID != "auth-1" {
		t.Fatalf("expected auth-1 as best, got %q", resp.BestID)
	}
	for _, a := range resp.Authorizations {
		if a.ID == "auth-2" && !a.Summary.IsLowUnits {
			t.Fatalf("auth-2 has one unit left, expected low-units flag")
		}
	}
}

func TestListByPatientWrongOrg(t *testing.T) {
	repo := NewInMemoryRepository()
	now := time.Now().UTC()
	seedAuth(t, repo, activeAuth("auth-1", 10, 2, now.AddDate(0, -1, 0), now.AddDate(0, 2, 0)))
	router := newTestRouter(repo)

	req := withOrg(httptest.NewRequest(http.MethodGet, "/patients/pat-1/authorizations", nil), "org-other")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 0 {
		t.Fatalf("org isolation broken, got %d authorizations", resp.Count)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	repo := NewInMemoryRepository()
	now := time.Now().UTC()
	seedAuth(t, repo, activeAuth("auth-1", 10, 8, now.AddDate(0, 0, -10), now.AddDate(0, 0, 10)))
	router := newTestRouter(repo)

	req := withOrg(httptest.NewRequest(http.MethodGet, "/authorizations/auth-1/summary", nil), "org-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var s Summary
	if err := json.NewDecoder(w.Body).Decode(&s); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if s.Remaining != 2 || !s.IsLowUnits || !s.IsExpiringSoon {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestSummaryUnknownAuthorization(t *testing.T) {
	router := newTestRouter(NewInMemoryRepository())

	req := withOrg(httptest.NewRequest(http.MethodGet, "/authorizations/nope/summary", nil), "org-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCreateEndpoint(t *testing.T) {
	repo := NewInMemoryRepository()
	router := newTestRouter(repo)

	now := time.Now().UTC()
	body, _ := json.Marshal(createRequest{
		PatientID:   "pat-9",
		InsurerID:   "ins-1",
		ServiceCode: "97110",
		TotalUnits:  12,
		StartDate:   now,
		EndDate:     now.AddDate(0, 6, 0),
	})
	req := withOrg(httptest.NewRequest(http.MethodPost, "/admin/authorizations", bytes.NewReader(body)), "org-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var got PriorAuthorization
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID == "" || got.Status != StatusActive || got.OrgID != "org-1" {
		t.Fatalf("unexpected authorization: %+v", got)
	}

	stored, err := repo.GetByID(context.Background(), "org-1", got.ID)
	if err != nil {
		t.Fatalf("created authorization not persisted: %v", err)
	}
	if stored.TotalUnits != 12 || stored.UsedUnits != 0 {
		t.Fatalf("unexpected stored units: %+v", stored)
	}
}

func TestCreateValidation(t *testing.T) {
	router := newTestRouter(NewInMemoryRepository())
	now := time.Now().UTC()

	tests := []struct {
		name string
		req  createRequest
	}{
		{"missing patient", createRequest{TotalUnits: 5, StartDate: now, EndDate: now.AddDate(0, 1, 0)}},
		{"zero units", createRequest{PatientID: "p", TotalUnits: 0, StartDate: now, EndDate: now.AddDate(0, 1, 0)}},
		{"inverted window", createRequest{PatientID: "p", TotalUnits: 5, StartDate: now, EndDate: now.AddDate(0, -1, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.req)
			req := withOrg(httptest.NewRequest(http.MethodPost, "/admin/authorizations", bytes.NewReader(body)), "org-1")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestDenyEndpoint(t *testing.T) {
	repo := NewInMemoryRepository()
	now := time.Now().UTC()
	seedAuth(t, repo, activeAuth("auth-1", 10, 2, now.AddDate(0, -1, 0), now.AddDate(0, 2, 0)))
	router := newTestRouter(repo)

	body, _ := json.Marshal(denyRequest{Reason: "not medically necessary"})
	req := withOrg(httptest.NewRequest(http.MethodPost, "/admin/authorizations/auth-1/deny", bytes.NewReader(body)), "org-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got PriorAuthorization
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != StatusDenied || got.DenialReason != "not medically necessary" {
		t.Fatalf("unexpected authorization: %+v", got)
	}

	// Denying again conflicts.
	req = withOrg(httptest.NewRequest(http.MethodPost, "/admin/authorizations/auth-1/deny", bytes.NewReader(body)), "org-1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}
