package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
	"github.com/Krushna2656/agentic-honeypot/internal/domain/services"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

// HoneypotHandler handles the turn-processing endpoint
type HoneypotHandler struct {
	engine *services.HoneypotEngine
	logger *logger.Logger
}

// NewHoneypotHandler creates a new honeypot handler
func NewHoneypotHandler(engine *services.HoneypotEngine, log *logger.Logger) *HoneypotHandler {
	return &HoneypotHandler{
		engine: engine,
		logger: log.WithComponent("honeypot-handler"),
	}
}

// TurnRequest is the request body for processing one turn
type TurnRequest struct {
	SessionID           string              `json:"sessionId"`
	Message             models.RawMessage   `json:"message"`
	ConversationHistory []models.RawMessage `json:"conversationHistory"`
	History             []models.RawMessage `json:"history"`
	Metadata            map[string]any      `json:"metadata,omitempty"`
}

// Process handles POST /api/v1/honeypot
func (h *HoneypotHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	if req.SessionID == "" {
		http.Error(w, `{"error":"sessionId is required"}`, http.StatusBadRequest)
		return
	}

	// "history" is an accepted alias for "conversationHistory"
	history := req.ConversationHistory
	if len(history) == 0 {
		history = req.History
	}

	msg := req.Message
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	result, err := h.engine.ProcessTurn(r.Context(), req.SessionID, msg, history)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", req.SessionID).Msg("failed to process turn")
		http.Error(w, `{"error":"failed to process turn"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
