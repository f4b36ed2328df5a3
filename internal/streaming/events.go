package streaming

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
)

// EventType represents the type of decision event
type EventType string

const (
	EventTypeScamDetected   EventType = "scam_detected"
	EventTypeIntelExtracted EventType = "intel_extracted"
	EventTypeTurnProcessed  EventType = "turn_processed"
)

// DecisionEvent is the wire form of a processed turn relayed to
// downstream reporting consumers
type DecisionEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	SessionID       string                `json:"sessionId"`
	Stage           models.Stage          `json:"stage"`
	ScamType        *models.ScamType      `json:"scamType,omitempty"`
	Confidence      float64               `json:"confidence"`
	RiskLevel       models.RiskTier       `json:"riskLevel"`
	AgentMode       models.EngagementMode `json:"agentMode"`
	ThreatClusterID *string               `json:"threatClusterId,omitempty"`

	Evidence *models.EvidenceSet `json:"evidence,omitempty"`
}

// NewDecisionEvent builds the event for a finished turn. Detected
// turns with evidence are intel extractions, detected turns without
// are detections, everything else is a plain turn record.
func NewDecisionEvent(result *models.TurnResult) *DecisionEvent {
	eventType := EventTypeTurnProcessed
	if result.Detected {
		eventType = EventTypeScamDetected
		if result.Evidence != nil && result.Evidence.HasStrong() {
			eventType = EventTypeIntelExtracted
		}
	}

	return &DecisionEvent{
		ID:              uuid.New().String(),
		Type:            eventType,
		Timestamp:       time.Now().UTC(),
		SessionID:       result.SessionID,
		Stage:           result.Stage,
		ScamType:        result.ScamType,
		Confidence:      result.Confidence,
		RiskLevel:       result.RiskTier,
		AgentMode:       result.Mode,
		ThreatClusterID: result.ThreatClusterID,
		Evidence:        result.Evidence,
	}
}

// Subject returns the NATS subject for this event,
// honeypot.<event>.<risk>
func (e *DecisionEvent) Subject() string {
	return "honeypot." + string(e.Type) + "." + strings.ToLower(string(e.RiskLevel))
}
