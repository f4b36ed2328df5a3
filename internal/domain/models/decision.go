package models

// RiskTier buckets the confidence score for downstream consumers
type RiskTier string

const (
	RiskLow    RiskTier = "LOW"
	RiskMedium RiskTier = "MEDIUM"
	RiskHigh   RiskTier = "HIGH"
)

// Action is what the caller should do with the conversation
type Action string

const (
	ActionAllow   Action = "ALLOW"
	ActionMonitor Action = "MONITOR"
	ActionEngage  Action = "ENGAGE"
)

// EngagementMode is the honeypot agent's operating mode for this turn
type EngagementMode string

const (
	ModePassive      EngagementMode = "PASSIVE"
	ModeSoftEngage   EngagementMode = "SOFT_ENGAGEMENT"
	ModeIntelExtract EngagementMode = "INTELLIGENCE_EXTRACTION"
)

// AgentDecision is the reply-policy output for a single turn
type AgentDecision struct {
	RiskTier  RiskTier       `json:"riskTier"`
	Action    Action         `json:"action"`
	Mode      EngagementMode `json:"engagementMode"`
	ReplyText string         `json:"replyText"`
	ReplyGoal string         `json:"replyGoal"`
}

// TurnResult is the complete decision object returned by ProcessTurn
type TurnResult struct {
	SessionID  string  `json:"sessionId"`
	Detected   bool    `json:"scamDetected"`
	Confidence float64 `json:"confidenceScore"`

	Stage    Stage     `json:"stage"`
	ScamType *ScamType `json:"scamType"`

	RiskTier RiskTier       `json:"riskLevel"`
	Action   Action         `json:"action"`
	Mode     EngagementMode `json:"agentMode"`

	ReplyText string `json:"replyText"`
	ReplyGoal string `json:"replyGoal"`
	Persona   string `json:"persona,omitempty"`

	Evidence        *EvidenceSet `json:"evidence"`
	ThreatClusterID *string      `json:"threatClusterId"`
	KeywordHits     []string     `json:"keywordHits"`

	ConversationTurns         int   `json:"conversationTurns"`
	EngagementDurationSeconds int64 `json:"engagementDurationSeconds"`
}
