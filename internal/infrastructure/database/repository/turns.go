package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

// TurnRepository persists sessions and turn decisions for reporting.
// The in-memory session store remains the source of truth; writes here
// are best-effort and never gate the request path.
type TurnRepository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewTurnRepository creates a new turn repository
func NewTurnRepository(pool *pgxpool.Pool, log *logger.Logger) *TurnRepository {
	return &TurnRepository{
		pool:   pool,
		logger: log.WithComponent("turn-repository"),
	}
}

// SaveTurn upserts the session row and appends the turn decision
func (r *TurnRepository) SaveTurn(ctx context.Context, sess *models.Session, result *models.TurnResult) error {
	evidence, err := json.Marshal(sess.Evidence)
	if err != nil {
		return fmt.Errorf("failed to marshal evidence: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO sessions (id, started_at, last_seen_at, turn_count, threat_cluster_id, evidence)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			last_seen_at = EXCLUDED.last_seen_at,
			turn_count = EXCLUDED.turn_count,
			threat_cluster_id = COALESCE(sessions.threat_cluster_id, EXCLUDED.threat_cluster_id),
			evidence = EXCLUDED.evidence`,
		sess.ID, sess.StartedAt, sess.LastSeenAt, sess.TurnCount, sess.ClusterID, evidence,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	var scamType *string
	if result.ScamType != nil {
		s := string(*result.ScamType)
		scamType = &s
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO turns (id, session_id, turn_index, detected, confidence, stage, scam_type, risk_level, agent_mode, reply_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.New().String(), sess.ID, result.ConversationTurns, result.Detected, result.Confidence,
		string(result.Stage), scamType, string(result.RiskTier), string(result.Mode), result.ReplyText,
	)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}

	return tx.Commit(ctx)
}

// SessionsByCluster returns session ids sharing a threat cluster
func (r *TurnRepository) SessionsByCluster(ctx context.Context, clusterID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM sessions WHERE threat_cluster_id = $1 ORDER BY last_seen_at DESC`,
		clusterID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions by cluster: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
