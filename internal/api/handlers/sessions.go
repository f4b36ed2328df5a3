package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
	"github.com/Krushna2656/agentic-honeypot/internal/infrastructure/cache"
	"github.com/Krushna2656/agentic-honeypot/internal/infrastructure/database/repository"
	"github.com/Krushna2656/agentic-honeypot/internal/session"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

// SessionsHandler exposes session snapshots, cached decisions and
// cluster correlation queries
type SessionsHandler struct {
	store  *session.Store
	cache  *cache.RedisCache
	repo   *repository.TurnRepository
	logger *logger.Logger
}

// NewSessionsHandler creates a new sessions handler. Cache and repo
// are optional; their endpoints report unavailable when absent.
func NewSessionsHandler(store *session.Store, c *cache.RedisCache, repo *repository.TurnRepository, log *logger.Logger) *SessionsHandler {
	return &SessionsHandler{
		store:  store,
		cache:  c,
		repo:   repo,
		logger: log.WithComponent("sessions-handler"),
	}
}

// SessionSnapshot is the read-only view of a session
type SessionSnapshot struct {
	ID                        string              `json:"id"`
	StartedAt                 time.Time           `json:"startedAt"`
	LastSeenAt                time.Time           `json:"lastSeenAt"`
	ConversationTurns         int                 `json:"conversationTurns"`
	EngagementDurationSeconds int64               `json:"engagementDurationSeconds"`
	ThreatClusterID           *string             `json:"threatClusterId"`
	Evidence                  *models.EvidenceSet `json:"evidence"`
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var snap SessionSnapshot
	found := h.store.View(id, func(s *models.Session) {
		snap = SessionSnapshot{
			ID:                        s.ID,
			StartedAt:                 s.StartedAt,
			LastSeenAt:                s.LastSeenAt,
			ConversationTurns:         s.TurnCount,
			EngagementDurationSeconds: int64(s.LastSeenAt.Sub(s.StartedAt).Seconds()),
			ThreatClusterID:           copyClusterID(s.ClusterID),
			// Copy while holding the lock; encoding happens after View
			Evidence: s.Evidence.Clone(),
		}
	})
	if !found {
		http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// GetEvidence handles GET /api/v1/sessions/{id}/evidence
func (h *SessionsHandler) GetEvidence(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var evidence *models.EvidenceSet
	var clusterID *string
	found := h.store.View(id, func(s *models.Session) {
		evidence = s.Evidence.Clone()
		clusterID = copyClusterID(s.ClusterID)
	})
	if !found {
		http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"sessionId":       id,
		"threatClusterId": clusterID,
		"evidence":        evidence,
	})
}

// GetDecision handles GET /api/v1/sessions/{id}/decisions/{turn},
// serving the cached decision for a processed turn
func (h *SessionsHandler) GetDecision(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		http.Error(w, `{"error":"decision cache not configured"}`, http.StatusServiceUnavailable)
		return
	}

	id := chi.URLParam(r, "id")
	turn, err := strconv.Atoi(chi.URLParam(r, "turn"))
	if err != nil || turn < 1 {
		http.Error(w, `{"error":"turn must be a positive integer"}`, http.StatusBadRequest)
		return
	}

	var decision models.TurnResult
	if err := h.cache.GetDecision(r.Context(), id, turn, &decision); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			http.Error(w, `{"error":"decision not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("session_id", id).Msg("failed to read cached decision")
		http.Error(w, `{"error":"failed to read cached decision"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(decision)
}

// ByCluster handles GET /api/v1/clusters/{id}/sessions, listing
// persisted sessions that share a threat cluster
func (h *SessionsHandler) ByCluster(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		http.Error(w, `{"error":"persistence not configured"}`, http.StatusServiceUnavailable)
		return
	}

	clusterID := chi.URLParam(r, "id")
	ids, err := h.repo.SessionsByCluster(r.Context(), clusterID)
	if err != nil {
		h.logger.Error().Err(err).Str("cluster_id", clusterID).Msg("failed to query sessions by cluster")
		http.Error(w, `{"error":"failed to query sessions"}`, http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"threatClusterId": clusterID,
		"sessions":        ids,
	})
}

func copyClusterID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
