package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/Krushna2656/agentic-honeypot/internal/config"
	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
	"github.com/Krushna2656/agentic-honeypot/internal/session"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

// ClusterRegistry pins a session's cluster id across processes. The
// first writer wins; every caller gets the pinned value back.
type ClusterRegistry interface {
	PinClusterID(ctx context.Context, sessionID, clusterID string) (string, error)
}

// DecisionPublisher relays finished decisions to downstream consumers
type DecisionPublisher interface {
	PublishDecision(ctx context.Context, result *models.TurnResult)
}

// TurnRecorder persists sessions and turn decisions for reporting
type TurnRecorder interface {
	SaveTurn(ctx context.Context, sess *models.Session, result *models.TurnResult) error
}

// DecisionCache stores finished turn decisions for cross-replica lookup
type DecisionCache interface {
	CacheDecision(ctx context.Context, sessionID string, turn int, decision any) error
}

// HoneypotEngine orchestrates one conversation turn: extraction,
// classification, scoring, evidence aggregation, cluster pinning and
// reply policy. Pure computation happens outside the session lock;
// only session mutation is serialized.
type HoneypotEngine struct {
	extractor  *SignalExtractor
	classifier *StageClassifier
	scorer     *ConfidenceScorer
	aggregator *EvidenceAggregator
	policy     *ReplyPolicy
	store      *session.Store

	registry  ClusterRegistry
	publisher DecisionPublisher
	recorder  TurnRecorder
	cache     DecisionCache

	config config.DetectionConfig
	logger *logger.Logger
}

// EngineOption configures optional engine collaborators
type EngineOption func(*HoneypotEngine)

// WithClusterRegistry attaches a cross-process cluster-id registry
func WithClusterRegistry(r ClusterRegistry) EngineOption {
	return func(e *HoneypotEngine) { e.registry = r }
}

// WithPublisher attaches a decision event publisher
func WithPublisher(p DecisionPublisher) EngineOption {
	return func(e *HoneypotEngine) { e.publisher = p }
}

// WithRecorder attaches a persistence recorder
func WithRecorder(r TurnRecorder) EngineOption {
	return func(e *HoneypotEngine) { e.recorder = r }
}

// WithDecisionCache attaches a cross-replica decision cache
func WithDecisionCache(c DecisionCache) EngineOption {
	return func(e *HoneypotEngine) { e.cache = c }
}

// NewHoneypotEngine wires the core services together
func NewHoneypotEngine(
	extractor *SignalExtractor,
	classifier *StageClassifier,
	scorer *ConfidenceScorer,
	aggregator *EvidenceAggregator,
	policy *ReplyPolicy,
	store *session.Store,
	cfg config.DetectionConfig,
	log *logger.Logger,
	opts ...EngineOption,
) *HoneypotEngine {
	e := &HoneypotEngine{
		extractor:  extractor,
		classifier: classifier,
		scorer:     scorer,
		aggregator: aggregator,
		policy:     policy,
		store:      store,
		config:     cfg,
		logger:     log.WithComponent("honeypot-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessTurn handles one inbound message for a session and returns
// the full decision object. Malformed input is absorbed as a
// zero-signal turn; the call never fails for content reasons.
func (e *HoneypotEngine) ProcessTurn(
	ctx context.Context,
	sessionID string,
	msg models.RawMessage,
	history []models.RawMessage,
) (*models.TurnResult, error) {
	now := time.Now().UTC()
	var result *models.TurnResult
	var snapshot models.Session

	e.store.Do(sessionID, now, func(s *models.Session) {
		s.TurnCount++

		// A request carrying a longer history than we stored wins;
		// turn indices are positional so sourceTurn stays contiguous
		if len(history) > len(s.History) {
			s.History = append([]models.RawMessage(nil), history...)
		}

		turns := s.TurnCount
		if h := len(history) + 1; h > turns {
			turns = h
		}

		e.aggregator.Aggregate(s.Evidence, s.History, msg.Text)
		detection := e.detect(msg.Text, s.History, s.Evidence)

		if s.ClusterID == nil {
			s.ClusterID = e.pinCluster(ctx, sessionID, s.Evidence)
		}

		decision := e.policy.Decide(PolicyInput{
			SessionID: sessionID,
			Detection: detection,
			Evidence:  s.Evidence,
			TurnIndex: turns,
			LastReply: s.LastReplyText,
		})

		if decision.ReplyText != "" {
			s.LastReplyText = decision.ReplyText
		}
		s.History = append(s.History, msg)
		s.LastSeenAt = now

		// Copy everything that leaves the lock: the live evidence set
		// keeps mutating on later turns for this session
		evidence := s.Evidence.Clone()
		var clusterID *string
		if s.ClusterID != nil {
			id := *s.ClusterID
			clusterID = &id
		}

		result = &models.TurnResult{
			SessionID:                 sessionID,
			Detected:                  detection.Detected,
			Confidence:                detection.Confidence,
			Stage:                     detection.Stage,
			ScamType:                  detection.ScamType,
			RiskTier:                  decision.RiskTier,
			Action:                    decision.Action,
			Mode:                      decision.Mode,
			ReplyText:                 decision.ReplyText,
			ReplyGoal:                 decision.ReplyGoal,
			Evidence:                  evidence,
			ThreatClusterID:           clusterID,
			KeywordHits:               detection.KeywordHits,
			ConversationTurns:         turns,
			EngagementDurationSeconds: int64(now.Sub(s.StartedAt).Seconds()),
		}
		if decision.Mode != models.ModePassive {
			result.Persona = e.policy.templates.PersonaStyle()
		}

		snapshot = *s
		snapshot.Evidence = evidence
		snapshot.ClusterID = clusterID
		snapshot.History = append([]models.RawMessage(nil), s.History...)
	})

	e.logger.WithSession(sessionID).Info().
		Bool("detected", result.Detected).
		Float64("confidence", result.Confidence).
		Str("stage", string(result.Stage)).
		Str("mode", string(result.Mode)).
		Int("turns", result.ConversationTurns).
		Msg("Turn processed")

	if e.publisher != nil {
		e.publisher.PublishDecision(ctx, result)
	}
	if e.recorder != nil {
		if err := e.recorder.SaveTurn(ctx, &snapshot, result); err != nil {
			e.logger.Warn().Err(err).Str("session_id", sessionID).
				Msg("Failed to persist turn, continuing")
		}
	}
	if e.cache != nil {
		if err := e.cache.CacheDecision(ctx, sessionID, result.ConversationTurns, result); err != nil {
			e.logger.Warn().Err(err).Str("session_id", sessionID).
				Msg("Failed to cache decision, continuing")
		}
	}

	return result, nil
}

// detect classifies and scores the current message against the
// session's cumulative evidence
func (e *HoneypotEngine) detect(text string, history []models.RawMessage, ev *models.EvidenceSet) *models.DetectionResult {
	ind := e.extractor.Extract(text)
	otpCue := e.classifier.HasOTPCue(text)

	stage := e.classifier.Classify(text, StageSignals{
		HasLink:   len(ind.Links) > 0,
		HasHandle: len(ind.PaymentHandles) > 0,
		HasBank:   len(ind.BankAccounts) > 0 || len(ind.RoutingCodes) > 0,
		HasOTP:    otpCue,
	})
	hits := e.classifier.KeywordHits(text)

	otpInHistory := false
	keywordMessages := 0
	for _, msg := range history {
		if e.classifier.HasOTPCue(msg.Text) {
			otpInHistory = true
		}
		if e.classifier.HasAnyKeyword(msg.Text) {
			keywordMessages++
		}
	}

	score := e.scorer.Score(ScoreInput{
		Text:                   text,
		Stage:                  stage,
		KeywordHits:            hits,
		Indicators:             ind,
		OTPCue:                 otpCue,
		HistoryHadLink:         ev.Has(models.CategoryLink),
		HistoryHadHandle:       ev.Has(models.CategoryPaymentHandle),
		HistoryHadBank:         ev.Has(models.CategoryBankAccount) || ev.Has(models.CategoryRoutingCode),
		HistoryHadOTP:          otpInHistory,
		HistoryKeywordMessages: keywordMessages,
		Greeting:               e.classifier.IsGreeting(text),
	})

	conf := round2(score)
	detected := conf >= e.config.DetectThreshold

	res := &models.DetectionResult{
		Detected:    detected,
		Stage:       stage,
		Confidence:  conf,
		KeywordHits: hits,
		Indicators:  ind,
	}
	if !detected {
		res.Stage = models.StageBenign
		return res
	}

	st := scamType(stage, ev, otpCue || otpInHistory)
	res.ScamType = &st
	return res
}

// scamType assigns the fraud family from any-turn evidence, falling
// back to the stage-derived type
func scamType(stage models.Stage, ev *models.EvidenceSet, otpAnyTurn bool) models.ScamType {
	switch {
	case ev.Has(models.CategoryLink):
		return models.ScamTypePhishing
	case otpAnyTurn:
		return models.ScamTypeOTPFraud
	case ev.Has(models.CategoryPaymentHandle):
		return models.ScamTypeUPIFraud
	case ev.Has(models.CategoryBankAccount) || ev.Has(models.CategoryRoutingCode):
		return models.ScamTypeBankFraud
	}
	switch stage {
	case models.StageSocialEngineering:
		return models.ScamTypeSocialEngineering
	case models.StageRewardLure:
		return models.ScamTypeRewardLure
	case models.StageUrgency:
		return models.ScamTypeUrgency
	default:
		return models.ScamTypeGeneric
	}
}

// pinCluster computes the cluster id and, when a registry is
// configured, reconciles it so replicas agree on the pinned value
func (e *HoneypotEngine) pinCluster(ctx context.Context, sessionID string, ev *models.EvidenceSet) *string {
	id := e.aggregator.ClusterID(ev)
	if id == nil {
		return nil
	}
	if e.registry != nil {
		pinned, err := e.registry.PinClusterID(ctx, sessionID, *id)
		if err != nil {
			e.logger.Warn().Err(err).Str("session_id", sessionID).
				Msg("Cluster registry unavailable, using local pin")
		} else if pinned != "" {
			id = &pinned
		}
	}
	e.logger.WithSession(sessionID).Debug().
		Str("cluster_id", strings.TrimSpace(*id)).
		Msg("Threat cluster pinned")
	return id
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
