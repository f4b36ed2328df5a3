package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
	"github.com/Krushna2656/agentic-honeypot/internal/session"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

func sessionsTestServer(t *testing.T) (*session.Store, http.Handler) {
	t.Helper()
	store := session.NewStore()
	h := NewSessionsHandler(store, nil, nil, logger.New(logger.Config{Level: "error", Format: "json"}))

	r := chi.NewRouter()
	r.Get("/sessions/{id}", h.Get)
	r.Get("/sessions/{id}/evidence", h.GetEvidence)
	r.Get("/sessions/{id}/decisions/{turn}", h.GetDecision)
	r.Get("/clusters/{id}/sessions", h.ByCluster)
	return store, r
}

func TestSessionSnapshot(t *testing.T) {
	store, srv := sessionsTestServer(t)
	store.Do("s1", time.Now(), func(s *models.Session) {
		s.TurnCount = 3
		s.Evidence.Upsert(models.CategoryPaymentHandle, "scam@ybl", 0.92, 1)
	})

	req := httptest.NewRequest(http.MethodGet, "/sessions/s1", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var snap SessionSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if snap.ID != "s1" || snap.ConversationTurns != 3 {
		t.Errorf("snapshot = %+v", snap)
	}
	if len(snap.Evidence.PaymentHandles) != 1 {
		t.Errorf("evidence = %+v, want one handle", snap.Evidence.PaymentHandles)
	}
}

func TestSessionSnapshotNotFound(t *testing.T) {
	_, srv := sessionsTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/sessions/missing", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSessionEvidenceEndpoint(t *testing.T) {
	store, srv := sessionsTestServer(t)
	store.Do("s2", time.Now(), func(s *models.Session) {
		s.Evidence.Upsert(models.CategoryLink, "http://bit.ly/x", 0.88, 1)
	})

	req := httptest.NewRequest(http.MethodGet, "/sessions/s2/evidence", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var body struct {
		SessionID string              `json:"sessionId"`
		Evidence  *models.EvidenceSet `json:"evidence"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if body.SessionID != "s2" || len(body.Evidence.Links) != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestSessionDecisionWithoutCache(t *testing.T) {
	_, srv := sessionsTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/sessions/s1/decisions/1", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without a cache", w.Code)
	}
}

func TestSessionsByClusterWithoutDB(t *testing.T) {
	_, srv := sessionsTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/clusters/tc-abc/sessions", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without persistence", w.Code)
	}
}
