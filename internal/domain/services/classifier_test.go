package services

import (
	"testing"

	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
)

func TestClassifyPriorityOrder(t *testing.T) {
	c := NewStageClassifier(testLogger())

	tests := []struct {
		name string
		text string
		sig  StageSignals
		want models.Stage
	}{
		{"link wins over everything", "urgent otp pay now", StageSignals{HasLink: true, HasOTP: true}, models.StagePhishing},
		{"otp cue", "share the otp please", StageSignals{HasOTP: true}, models.StageOTPFraud},
		{"otp keyword without signal", "one time password needed", StageSignals{}, models.StageOTPFraud},
		{"payment handle evidence", "details below", StageSignals{HasHandle: true}, models.StagePaymentRequest},
		{"bank evidence", "details below", StageSignals{HasBank: true}, models.StagePaymentRequest},
		{"payment keyword", "please send money now", StageSignals{}, models.StagePaymentRequest},
		{"urgency keyword", "do it immediately", StageSignals{}, models.StageUrgency},
		{"social engineering keyword", "kyc verification pending", StageSignals{}, models.StageSocialEngineering},
		{"reward lure", "you won a lottery", StageSignals{}, models.StageRewardLure},
		{"greeting only", "hello there", StageSignals{}, models.StageRecon},
		{"no signal", "the weather is nice", StageSignals{}, models.StageUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.text, tt.sig); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifyUpdateCompoundRule(t *testing.T) {
	c := NewStageClassifier(testLogger())

	if got := c.Classify("please update your details", StageSignals{}); got == models.StageSocialEngineering {
		t.Errorf("bare 'update' must not classify as social engineering, got %v", got)
	}
	if got := c.Classify("update kyc or lose access", StageSignals{}); got != models.StageSocialEngineering {
		t.Errorf("'update' with kyc trigger should be social engineering, got %v", got)
	}
}

func TestKeywordHits(t *testing.T) {
	c := NewStageClassifier(testLogger())

	hits := c.KeywordHits("Your account is suspended, verify now")
	want := map[string]bool{"account": true, "suspended": true, "verify": true}
	for _, h := range hits {
		if !want[h] {
			t.Errorf("unexpected keyword hit %q", h)
		}
		delete(want, h)
	}
	for missing := range want {
		t.Errorf("missing keyword hit %q", missing)
	}

	// Hits are unique even when a keyword repeats
	dup := c.KeywordHits("verify verify verify")
	if len(dup) != 1 {
		t.Errorf("expected one unique hit, got %v", dup)
	}
}

func TestKeywordHitsExcludesBareUpdate(t *testing.T) {
	c := NewStageClassifier(testLogger())

	for _, h := range c.KeywordHits("software update available") {
		if h == "update" {
			t.Error("bare 'update' must not count as a hit")
		}
	}

	found := false
	for _, h := range c.KeywordHits("update your kyc") {
		if h == "update" {
			found = true
		}
	}
	if !found {
		t.Error("'update' with trigger should count as a hit")
	}
}

func TestHasOTPCue(t *testing.T) {
	c := NewStageClassifier(testLogger())

	if !c.HasOTPCue("share your OTP") {
		t.Error("expected OTP cue")
	}
	if !c.HasOTPCue("the one time password is required") {
		t.Error("expected OTP cue from phrase")
	}
	if c.HasOTPCue("nothing suspicious here") {
		t.Error("unexpected OTP cue")
	}
}
