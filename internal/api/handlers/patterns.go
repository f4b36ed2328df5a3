package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Krushna2656/agentic-honeypot/internal/domain/services"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

// PatternsHandler exposes the detection vocabulary for clients
type PatternsHandler struct {
	classifier *services.StageClassifier
	logger     *logger.Logger
}

// NewPatternsHandler creates a new patterns handler
func NewPatternsHandler(classifier *services.StageClassifier, log *logger.Logger) *PatternsHandler {
	return &PatternsHandler{
		classifier: classifier,
		logger:     log.WithComponent("patterns-handler"),
	}
}

// Get handles GET /api/v1/patterns
func (h *PatternsHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"stageKeywords": h.classifier.Vocabulary(),
		"categories": []string{
			"payment_handle", "bank_account", "routing_code",
			"link", "phone", "email",
		},
	})
}
