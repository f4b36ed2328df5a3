package services

import (
	"net/url"
	"strings"

	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

// Scoring weights. Additive, applied in fixed order, then clamped.
const (
	keywordWeight     = 0.08
	linkWeight        = 0.40
	urlRiskCap        = 0.45
	handleWeight      = 0.38
	bankWeight        = 0.40
	otpWeight         = 0.60
	historyLinkBoost  = 0.10
	historyOtherBoost = 0.10
	historyOTPBoost   = 0.12
	repetitionWeight  = 0.08
	repetitionCap     = 0.32
	benignBankGuard   = 0.30
	greetingGuard     = 0.25
)

var stageBonus = map[models.Stage]float64{
	models.StageSocialEngineering: 0.15,
	models.StageUrgency:           0.15,
	models.StageRewardLure:        0.18,
	models.StagePaymentRequest:    0.20,
	models.StagePhishing:          0.20,
	models.StageOTPFraud:          0.22,
}

var urlShorteners = map[string]bool{
	"bit.ly": true, "tinyurl.com": true, "t.co": true, "goo.gl": true,
	"ow.ly": true, "is.gd": true, "buff.ly": true, "adf.ly": true,
	"j.mp": true, "rb.gy": true, "cutt.ly": true, "short.io": true,
	"rebrand.ly": true, "tiny.cc": true, "shorturl.at": true,
}

var suspiciousPathWords = []string{
	"login", "signin", "verify", "secure", "account", "update",
	"confirm", "wallet", "password", "kyc",
}

var benignBankingWords = []string{
	"balance", "statement", "branch", "atm", "pin reset", "reset my pin",
	"passbook", "cheque", "chequebook", "mini statement",
}

// ScoreInput carries everything the scorer needs for one message.
// History flags describe signals seen on prior turns only.
type ScoreInput struct {
	Text        string
	Stage       models.Stage
	KeywordHits []string
	Indicators  *models.IndicatorSet
	OTPCue      bool

	HistoryHadLink   bool
	HistoryHadHandle bool
	HistoryHadBank   bool
	HistoryHadOTP    bool

	// Prior messages containing any tracked keyword
	HistoryKeywordMessages int

	Greeting bool
}

// ConfidenceScorer turns signals into a confidence score in [0,1].
// Evaluation order is fixed: keyword hits, strong-signal bonuses,
// stage bonus, cumulative boosters, history repetition, benign guard,
// clamp. The guard never fires when a strong signal exists anywhere,
// so guard and boosters are mutually exclusive.
type ConfidenceScorer struct {
	logger *logger.Logger
}

// NewConfidenceScorer creates a new confidence scorer
func NewConfidenceScorer(log *logger.Logger) *ConfidenceScorer {
	return &ConfidenceScorer{
		logger: log.WithComponent("confidence-scorer"),
	}
}

// Score computes the confidence score for the current message
func (s *ConfidenceScorer) Score(in ScoreInput) float64 {
	ind := in.Indicators
	if ind == nil {
		ind = &models.IndicatorSet{}
	}

	score := float64(len(in.KeywordHits)) * keywordWeight

	hasLink := len(ind.Links) > 0
	hasHandle := len(ind.PaymentHandles) > 0
	hasBank := len(ind.BankAccounts) > 0 || len(ind.RoutingCodes) > 0

	if hasLink {
		score += linkWeight + urlRiskBonus(ind.Links)
	}
	if hasHandle {
		score += handleWeight
	}
	if hasBank {
		score += bankWeight
	}
	if in.OTPCue {
		score += otpWeight
	}

	score += stageBonus[in.Stage]

	// Cumulative boosters: strong signals from earlier turns keep the
	// score from collapsing on an evidence-free message
	if in.HistoryHadLink && !hasLink {
		score += historyLinkBoost
	}
	if in.HistoryHadHandle && !hasHandle {
		score += historyOtherBoost
	}
	if in.HistoryHadBank && !hasBank {
		score += historyOtherBoost
	}
	if in.HistoryHadOTP && !in.OTPCue {
		score += historyOTPBoost
	}

	boost := float64(in.HistoryKeywordMessages) * repetitionWeight
	if boost > repetitionCap {
		boost = repetitionCap
	}
	score += boost

	if !s.hasStrongSignal(in, hasLink, hasHandle, hasBank) {
		text := strings.ToLower(in.Text)
		switch {
		case containsAnyPhrase(text, benignBankingWords) && len(in.KeywordHits) <= 3:
			score -= benignBankGuard
		case in.Greeting && len(in.KeywordHits) <= 1:
			score -= greetingGuard
		}
	}

	return clamp(score, 0, 1)
}

// hasStrongSignal reports whether a strong signal exists in the
// current message or anywhere in history
func (s *ConfidenceScorer) hasStrongSignal(in ScoreInput, hasLink, hasHandle, hasBank bool) bool {
	return hasLink || hasHandle || hasBank || in.OTPCue ||
		in.HistoryHadLink || in.HistoryHadHandle || in.HistoryHadBank || in.HistoryHadOTP
}

// urlRiskBonus scores links for shortener domains and
// phishing-suggestive path keywords, capped at urlRiskCap
func urlRiskBonus(links []string) float64 {
	var bonus float64
	for _, raw := range links {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Host == "" {
			continue
		}
		if urlShorteners[strings.ToLower(parsed.Host)] {
			bonus += 0.30
		}
		pathLower := strings.ToLower(parsed.Path)
		for _, kw := range suspiciousPathWords {
			if strings.Contains(pathLower, kw) {
				bonus += 0.15
				break
			}
		}
		break
	}
	return clamp(bonus, 0, urlRiskCap)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
