package services

import (
	"strings"
	"testing"

	"github.com/Krushna2656/agentic-honeypot/internal/config"
	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
)

func testPolicy(t *testing.T) *ReplyPolicy {
	t.Helper()
	templates, err := NewTemplateBank(config.PersonaConfig{
		Name:  "Rahul",
		Style: "non-technical, polite, slightly anxious, cooperative",
	})
	if err != nil {
		t.Fatalf("failed to build template bank: %v", err)
	}
	cfg := config.DetectionConfig{DetectThreshold: 0.50, EngageThreshold: 0.80}
	return NewReplyPolicy(templates, cfg, testLogger())
}

func detection(detected bool, conf float64, stage models.Stage) *models.DetectionResult {
	return &models.DetectionResult{
		Detected:   detected,
		Confidence: conf,
		Stage:      stage,
		Indicators: &models.IndicatorSet{},
	}
}

func TestModeTransitions(t *testing.T) {
	p := testPolicy(t)

	strongEv := models.NewEvidenceSet()
	strongEv.Upsert(models.CategoryPaymentHandle, "scam@ybl", 0.92, 1)

	tests := []struct {
		name string
		in   PolicyInput
		want models.EngagementMode
	}{
		{
			"high confidence engages",
			PolicyInput{SessionID: "s", Detection: detection(true, 0.85, models.StagePaymentRequest), Evidence: models.NewEvidenceSet(), TurnIndex: 1},
			models.ModeIntelExtract,
		},
		{
			"moderate without evidence monitors",
			PolicyInput{SessionID: "s", Detection: detection(true, 0.60, models.StageUrgency), Evidence: models.NewEvidenceSet(), TurnIndex: 1},
			models.ModeSoftEngage,
		},
		{
			"evidence lock keeps engaging",
			PolicyInput{SessionID: "s", Detection: detection(true, 0.55, models.StageUnknown), Evidence: strongEv, TurnIndex: 3},
			models.ModeIntelExtract,
		},
		{
			"below threshold is passive",
			PolicyInput{SessionID: "s", Detection: detection(false, 0.20, models.StageBenign), Evidence: models.NewEvidenceSet(), TurnIndex: 1},
			models.ModePassive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Decide(tt.in)
			if got.Mode != tt.want {
				t.Errorf("mode = %v, want %v", got.Mode, tt.want)
			}
			if got.ReplyText == "" {
				t.Error("reply must not be empty")
			}
		})
	}
}

func TestDecideDeterministic(t *testing.T) {
	p := testPolicy(t)

	in := PolicyInput{
		SessionID: "session-42",
		Detection: detection(true, 0.9, models.StagePaymentRequest),
		Evidence:  models.NewEvidenceSet(),
		TurnIndex: 2,
	}
	first := p.Decide(in)
	for i := 0; i < 20; i++ {
		if got := p.Decide(in); got.ReplyText != first.ReplyText {
			t.Fatalf("reply not deterministic: %q vs %q", got.ReplyText, first.ReplyText)
		}
	}
}

func TestNoRepeatAdvancesIndex(t *testing.T) {
	p := testPolicy(t)

	in := PolicyInput{
		SessionID: "session-7",
		Detection: detection(true, 0.9, models.StagePaymentRequest),
		Evidence:  models.NewEvidenceSet(),
		TurnIndex: 4,
	}
	first := p.Decide(in)

	in.LastReply = first.ReplyText
	second := p.Decide(in)
	if second.ReplyText == first.ReplyText {
		t.Errorf("repeated reply %q despite no-repeat rule", first.ReplyText)
	}
}

func TestOTPRepliesNeverRequestCode(t *testing.T) {
	p := testPolicy(t)

	for turn := 1; turn <= 8; turn++ {
		in := PolicyInput{
			SessionID: "otp-session",
			Detection: detection(true, 0.9, models.StageOTPFraud),
			Evidence:  models.NewEvidenceSet(),
			TurnIndex: turn,
		}
		got := p.Decide(in)
		reply := strings.ToLower(got.ReplyText)
		if strings.Contains(reply, "otp") {
			t.Errorf("turn %d reply %q mentions the OTP", turn, got.ReplyText)
		}
		for _, banned := range []string{"send me the", "share the code", "tell me the code", "what is the code"} {
			if strings.Contains(reply, banned) {
				t.Errorf("turn %d reply %q requests the code", turn, got.ReplyText)
			}
		}
	}
}

func TestOTPProgressionByTurn(t *testing.T) {
	p := testPolicy(t)

	replies := make(map[int]string)
	for turn := 1; turn <= 4; turn++ {
		in := PolicyInput{
			SessionID: "otp-prog",
			Detection: detection(true, 0.9, models.StageOTPFraud),
			Evidence:  models.NewEvidenceSet(),
			TurnIndex: turn,
		}
		replies[turn] = p.Decide(in).ReplyText
	}
	if replies[1] == replies[2] || replies[2] == replies[3] {
		t.Errorf("OTP progression did not advance: %v", replies)
	}
}

func TestBankLockRule(t *testing.T) {
	p := testPolicy(t)

	bankOnly := models.NewEvidenceSet()
	bankOnly.Upsert(models.CategoryBankAccount, "123456789012", 0.86, 1)

	got := p.Decide(PolicyInput{
		SessionID: "s",
		Detection: detection(true, 0.9, models.StagePaymentRequest),
		Evidence:  bankOnly,
		TurnIndex: 2,
	})
	if !strings.Contains(strings.ToLower(got.ReplyText), "ifsc") {
		t.Errorf("with bank known, reply should ask for IFSC, got %q", got.ReplyText)
	}

	both := models.NewEvidenceSet()
	both.Upsert(models.CategoryBankAccount, "123456789012", 0.86, 1)
	both.Upsert(models.CategoryRoutingCode, "HDFC0001234", 0.93, 2)

	got = p.Decide(PolicyInput{
		SessionID: "s",
		Detection: detection(true, 0.9, models.StagePaymentRequest),
		Evidence:  both,
		TurnIndex: 3,
	})
	reply := strings.ToLower(got.ReplyText)
	if !strings.Contains(reply, "name") {
		t.Errorf("with both known, reply should confirm beneficiary name, got %q", got.ReplyText)
	}
	if strings.Contains(reply, "upi id") {
		t.Errorf("bank lock must not regress to a handle ask, got %q", got.ReplyText)
	}
}

func TestPhishingLinkFlow(t *testing.T) {
	p := testPolicy(t)

	// No link captured yet: ask for it
	got := p.Decide(PolicyInput{
		SessionID: "s",
		Detection: detection(true, 0.9, models.StagePhishing),
		Evidence:  models.NewEvidenceSet(),
		TurnIndex: 1,
	})
	if !strings.Contains(strings.ToLower(got.ReplyText), "link") {
		t.Errorf("reply should ask for the link, got %q", got.ReplyText)
	}

	// Link captured: follow-up still centers on the exact link
	withLink := models.NewEvidenceSet()
	withLink.Upsert(models.CategoryLink, "http://bit.ly/verify", 0.88, 1)
	got = p.Decide(PolicyInput{
		SessionID: "s",
		Detection: detection(true, 0.9, models.StagePhishing),
		Evidence:  withLink,
		TurnIndex: 2,
	})
	if !strings.Contains(strings.ToLower(got.ReplyText), "link") {
		t.Errorf("phishing follow-up should reference the link, got %q", got.ReplyText)
	}
}

func TestHandleAskWhenPaymentIntent(t *testing.T) {
	p := testPolicy(t)

	ev := models.NewEvidenceSet()
	ev.HasPaymentIntent = true

	got := p.Decide(PolicyInput{
		SessionID: "s",
		Detection: detection(true, 0.9, models.StagePaymentRequest),
		Evidence:  ev,
		TurnIndex: 1,
	})
	if !strings.Contains(strings.ToLower(got.ReplyText), "upi") {
		t.Errorf("reply should ask for the UPI handle, got %q", got.ReplyText)
	}
}

func TestPassiveNeverProbes(t *testing.T) {
	p := testPolicy(t)

	for turn := 1; turn <= 6; turn++ {
		got := p.Decide(PolicyInput{
			SessionID: "quiet",
			Detection: detection(false, 0.1, models.StageBenign),
			Evidence:  models.NewEvidenceSet(),
			TurnIndex: turn,
		})
		reply := strings.ToLower(got.ReplyText)
		for _, probe := range []string{"upi", "ifsc", "account number", "link"} {
			if strings.Contains(reply, probe) {
				t.Errorf("passive reply %q probes for %q", got.ReplyText, probe)
			}
		}
	}
}
