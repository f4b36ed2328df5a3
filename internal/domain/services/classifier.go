package services

import (
	"strings"

	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

// Keyword vocabulary per stage. Matching is lowercase substring for
// phrases and whole-token for the compound "update" rule below.
var stageKeywords = map[models.Stage][]string{
	models.StageRecon: {"hello", "hi", "are you there"},
	models.StageSocialEngineering: {
		"kyc", "verify", "update", "account", "suspended",
		"blocked", "limited", "security", "aapka account", "blocked hai",
		"verification", "customer care", "support team",
	},
	models.StageUrgency: {
		"urgent", "immediately", "turant", "asap", "today",
		"within 1 hour", "right now",
	},
	models.StagePaymentRequest: {
		"send money", "pay", "transfer", "refund", "processing fee", "charge",
		"upi", "scan", "qr", "collect request", "request money",
	},
	models.StageOTPFraud: {"otp", "one time password", "share otp", "send otp"},
	models.StageRewardLure: {
		"win", "lottery", "prize", "cashback", "reward", "congratulations", "gift",
	},
}

// keywordOrder fixes the iteration order so keyword hits are stable
var keywordOrder = []models.Stage{
	models.StageRecon,
	models.StageSocialEngineering,
	models.StageUrgency,
	models.StagePaymentRequest,
	models.StageOTPFraud,
	models.StageRewardLure,
}

// Triggers that make the ambiguous word "update" count as a
// social-engineering cue. Alone it is too common to be a signal.
var updateTriggers = []string{"kyc", "verify", "suspended", "blocked", "login", "link"}

// StageSignals are the extractor-derived booleans feeding stage rules
type StageSignals struct {
	HasLink   bool
	HasHandle bool
	HasBank   bool
	HasOTP    bool
}

// stageRule is one (predicate, outcome) entry of the ordered rule list
type stageRule struct {
	stage models.Stage
	match func(text string, sig StageSignals) bool
}

// StageClassifier assigns a scam stage to the current message. Rules
// are evaluated in fixed priority order; first match wins. The stage
// is never latched from prior turns.
type StageClassifier struct {
	rules  []stageRule
	logger *logger.Logger
}

// NewStageClassifier creates a new stage classifier
func NewStageClassifier(log *logger.Logger) *StageClassifier {
	c := &StageClassifier{logger: log.WithComponent("stage-classifier")}
	c.rules = []stageRule{
		{models.StagePhishing, func(_ string, sig StageSignals) bool {
			return sig.HasLink
		}},
		{models.StageOTPFraud, func(text string, sig StageSignals) bool {
			return sig.HasOTP || containsAnyPhrase(text, stageKeywords[models.StageOTPFraud])
		}},
		{models.StagePaymentRequest, func(text string, sig StageSignals) bool {
			return sig.HasHandle || sig.HasBank ||
				containsAnyPhrase(text, stageKeywords[models.StagePaymentRequest])
		}},
		{models.StageUrgency, func(text string, _ StageSignals) bool {
			return containsAnyPhrase(text, stageKeywords[models.StageUrgency])
		}},
		{models.StageSocialEngineering, func(text string, _ StageSignals) bool {
			return hasSocialEngineeringCue(text)
		}},
		{models.StageRewardLure, func(text string, _ StageSignals) bool {
			return containsAnyPhrase(text, stageKeywords[models.StageRewardLure])
		}},
		{models.StageRecon, func(text string, _ StageSignals) bool {
			return containsAnyPhrase(text, stageKeywords[models.StageRecon])
		}},
	}
	return c
}

// Classify returns the stage of the current message
func (c *StageClassifier) Classify(text string, sig StageSignals) models.Stage {
	text = strings.ToLower(text)
	for _, r := range c.rules {
		if r.match(text, sig) {
			return r.stage
		}
	}
	return models.StageUnknown
}

// KeywordHits returns the unique tracked keywords found in text, in
// vocabulary order. The ambiguous "update" keyword only counts when a
// strong trigger co-occurs.
func (c *StageClassifier) KeywordHits(text string) []string {
	text = strings.ToLower(text)
	var hits []string
	for _, stage := range keywordOrder {
		for _, kw := range stageKeywords[stage] {
			if kw == "update" && !hasUpdateTrigger(text) {
				continue
			}
			if strings.Contains(text, kw) {
				hits = append(hits, kw)
			}
		}
	}
	return dedupe(hits)
}

// HasOTPCue reports whether the text carries an OTP signal
func (c *StageClassifier) HasOTPCue(text string) bool {
	text = strings.ToLower(text)
	return strings.Contains(text, "otp") || strings.Contains(text, "one time password")
}

// HasAnyKeyword reports whether any tracked keyword appears in text.
// Used for the history-repetition boost.
func (c *StageClassifier) HasAnyKeyword(text string) bool {
	text = strings.ToLower(text)
	for _, keywords := range stageKeywords {
		if containsAnyPhrase(text, keywords) {
			return true
		}
	}
	return false
}

// IsGreeting reports whether the text contains a greeting cue
func (c *StageClassifier) IsGreeting(text string) bool {
	return containsAnyPhrase(strings.ToLower(text), stageKeywords[models.StageRecon])
}

// Vocabulary returns a copy of the tracked keyword lists per stage
func (c *StageClassifier) Vocabulary() map[string][]string {
	out := make(map[string][]string, len(stageKeywords))
	for stage, keywords := range stageKeywords {
		out[string(stage)] = append([]string(nil), keywords...)
	}
	return out
}

func hasSocialEngineeringCue(text string) bool {
	for _, kw := range stageKeywords[models.StageSocialEngineering] {
		if kw == "update" {
			if strings.Contains(text, "update") && hasUpdateTrigger(text) {
				return true
			}
			continue
		}
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func hasUpdateTrigger(text string) bool {
	return containsAnyPhrase(text, updateTriggers)
}
