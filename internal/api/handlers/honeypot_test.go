package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Krushna2656/agentic-honeypot/internal/config"
	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
	"github.com/Krushna2656/agentic-honeypot/internal/domain/services"
	"github.com/Krushna2656/agentic-honeypot/internal/session"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

func testEngine(t *testing.T) *services.HoneypotEngine {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	cfg := config.DetectionConfig{DetectThreshold: 0.50, EngageThreshold: 0.80}

	extractor := services.NewSignalExtractor(log)
	classifier := services.NewStageClassifier(log)
	scorer := services.NewConfidenceScorer(log)
	aggregator := services.NewEvidenceAggregator(extractor, log)
	templates, err := services.NewTemplateBank(config.PersonaConfig{Name: "Rahul", Style: "polite"})
	if err != nil {
		t.Fatalf("failed to build templates: %v", err)
	}
	policy := services.NewReplyPolicy(templates, cfg, log)

	return services.NewHoneypotEngine(extractor, classifier, scorer, aggregator,
		policy, session.NewStore(), cfg, log)
}

func TestProcessRejectsInvalidBody(t *testing.T) {
	h := NewHoneypotHandler(testEngine(t), logger.New(logger.Config{Level: "error", Format: "json"}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/honeypot", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.Process(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestProcessRequiresSessionID(t *testing.T) {
	h := NewHoneypotHandler(testEngine(t), logger.New(logger.Config{Level: "error", Format: "json"}))

	body := `{"message":{"sender":"scammer","text":"hi"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/honeypot", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Process(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestProcessTurnResponse(t *testing.T) {
	h := NewHoneypotHandler(testEngine(t), logger.New(logger.Config{Level: "error", Format: "json"}))

	body := `{
		"sessionId": "sess-1",
		"message": {"sender": "scammer", "text": "Your account is suspended, verify at http://bit.ly/kyc-verify"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/honeypot", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Process(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var result models.TurnResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if result.SessionID != "sess-1" {
		t.Errorf("sessionId = %q", result.SessionID)
	}
	if !result.Detected {
		t.Errorf("detected = false, confidence %v", result.Confidence)
	}
	if result.ReplyText == "" {
		t.Error("replyText empty")
	}
}

func TestProcessHistoryAlias(t *testing.T) {
	h := NewHoneypotHandler(testEngine(t), logger.New(logger.Config{Level: "error", Format: "json"}))

	body := `{
		"sessionId": "sess-2",
		"message": {"sender": "scammer", "text": "ok"},
		"history": [{"sender": "scammer", "text": "pay scam@ybl"}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/honeypot", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Process(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var result models.TurnResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(result.Evidence.PaymentHandles) != 1 {
		t.Errorf("evidence = %+v, want handle from aliased history", result.Evidence.PaymentHandles)
	}
	if result.ConversationTurns != 2 {
		t.Errorf("conversationTurns = %d, want 2", result.ConversationTurns)
	}
}
