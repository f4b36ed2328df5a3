package services

import (
	"math"
	"testing"

	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
)

func testScorer() *ConfidenceScorer {
	return NewConfidenceScorer(testLogger())
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreOTPMessage(t *testing.T) {
	s := testScorer()

	// one keyword hit + OTP bonus + OTP stage bonus
	score := s.Score(ScoreInput{
		Text:        "share the otp",
		Stage:       models.StageOTPFraud,
		KeywordHits: []string{"otp"},
		Indicators:  &models.IndicatorSet{},
		OTPCue:      true,
	})
	if !almostEqual(score, 0.90) {
		t.Errorf("score = %v, want 0.90", score)
	}
}

func TestScoreClampedToOne(t *testing.T) {
	s := testScorer()

	score := s.Score(ScoreInput{
		Text:  "pay at scam@ybl, otp needed, account 123456789012",
		Stage: models.StageOTPFraud,
		KeywordHits: []string{
			"otp", "pay", "account", "upi", "transfer", "urgent",
		},
		Indicators: &models.IndicatorSet{
			PaymentHandles: []string{"scam@ybl"},
			BankAccounts:   []string{"123456789012"},
		},
		OTPCue: true,
	})
	if score != 1.0 {
		t.Errorf("score = %v, want clamp to 1.0", score)
	}
}

func TestScoreBenignGuardGreeting(t *testing.T) {
	s := testScorer()

	score := s.Score(ScoreInput{
		Text:        "hi",
		Stage:       models.StageRecon,
		KeywordHits: []string{"hi"},
		Indicators:  &models.IndicatorSet{},
		Greeting:    true,
	})
	if score != 0 {
		t.Errorf("greeting-only score = %v, want 0 after guard and clamp", score)
	}
}

func TestScoreBenignGuardBankingVocabulary(t *testing.T) {
	s := testScorer()

	low := s.Score(ScoreInput{
		Text:        "what is my account balance at the branch",
		Stage:       models.StageSocialEngineering,
		KeywordHits: []string{"account"},
		Indicators:  &models.IndicatorSet{},
	})
	// 0.08 + 0.15 stage bonus - 0.30 guard, clamped
	if !almostEqual(low, 0.0) {
		t.Errorf("benign banking score = %v, want 0.0", low)
	}
}

func TestScoreGuardSuppressedByStrongSignal(t *testing.T) {
	s := testScorer()

	withLink := s.Score(ScoreInput{
		Text:        "check balance at http://bit.ly/verify",
		Stage:       models.StagePhishing,
		KeywordHits: []string{"verify"},
		Indicators:  &models.IndicatorSet{Links: []string{"http://bit.ly/verify"}},
	})
	// guard must not fire: 0.08 + 0.40 link + 0.45 url risk + 0.20 stage
	if withLink < 0.50 {
		t.Errorf("score = %v, strong signal must suppress the benign guard", withLink)
	}

	withHistory := s.Score(ScoreInput{
		Text:           "what is my balance",
		Stage:          models.StageUnknown,
		KeywordHits:    nil,
		Indicators:     &models.IndicatorSet{},
		HistoryHadLink: true,
	})
	// cumulative booster applies, guard does not
	if !almostEqual(withHistory, historyLinkBoost) {
		t.Errorf("score = %v, want booster %v with no guard", withHistory, historyLinkBoost)
	}
}

func TestScoreCumulativeBoosters(t *testing.T) {
	s := testScorer()

	score := s.Score(ScoreInput{
		Text:             "ok done",
		Stage:            models.StageUnknown,
		Indicators:       &models.IndicatorSet{},
		HistoryHadLink:   true,
		HistoryHadHandle: true,
		HistoryHadBank:   true,
		HistoryHadOTP:    true,
	})
	if !almostEqual(score, 0.10+0.10+0.10+0.12) {
		t.Errorf("score = %v, want sum of boosters 0.42", score)
	}
}

func TestScoreHistoryRepetitionCapped(t *testing.T) {
	s := testScorer()

	capped := s.Score(ScoreInput{
		Text:                   "ok",
		Stage:                  models.StageUnknown,
		Indicators:             &models.IndicatorSet{},
		HistoryHadLink:         true,
		HistoryKeywordMessages: 10,
	})
	uncapped := s.Score(ScoreInput{
		Text:                   "ok",
		Stage:                  models.StageUnknown,
		Indicators:             &models.IndicatorSet{},
		HistoryHadLink:         true,
		HistoryKeywordMessages: 2,
	})
	if !almostEqual(capped, historyLinkBoost+repetitionCap) {
		t.Errorf("capped score = %v, want %v", capped, historyLinkBoost+repetitionCap)
	}
	if !almostEqual(uncapped, historyLinkBoost+2*repetitionWeight) {
		t.Errorf("uncapped score = %v, want %v", uncapped, historyLinkBoost+2*repetitionWeight)
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := testScorer()

	in := ScoreInput{
		Text:        "verify your account at http://bit.ly/kyc",
		Stage:       models.StagePhishing,
		KeywordHits: []string{"verify", "account"},
		Indicators:  &models.IndicatorSet{Links: []string{"http://bit.ly/kyc"}},
	}
	first := s.Score(in)
	for i := 0; i < 10; i++ {
		if got := s.Score(in); got != first {
			t.Fatalf("score not deterministic: %v vs %v", got, first)
		}
	}
	if first < 0 || first > 1 {
		t.Fatalf("score %v outside [0,1]", first)
	}
}
