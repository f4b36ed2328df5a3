package services

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Krushna2656/agentic-honeypot/internal/config"
	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
)

// Template pool names
const (
	PoolPassive       = "passive"
	PoolSoftOpeners   = "soft_openers"
	PoolAskLink       = "ask_link"
	PoolAskHandle     = "ask_handle"
	PoolAskBank       = "ask_bank"
	PoolAskRouting    = "ask_routing"
	PoolAskAccount    = "ask_account"
	PoolBankConfirm   = "bank_confirm"
	PoolReceiverFlow  = "receiver_flow"
	PoolAskContact    = "ask_contact"
	PoolPhishingNext  = "phishing_next"
	PoolFollowups     = "followups"
	PoolOTPSender     = "otp_sender"
	PoolOTPContent    = "otp_content"
	PoolOTPPurpose    = "otp_purpose"
	PoolOTPFallback   = "otp_fallback"
	poolStagePrefix   = "stage_"
	PoolStageFallback = "stage_unknown"
)

// TemplateBank holds the persona's reply line pools. Pools are data,
// not logic: an external JSON file can override any pool by name. The
// persona never reveals detection, never accuses, asks one question
// per turn, and keeps replies short.
type TemplateBank struct {
	persona config.PersonaConfig
	pools   map[string][]string
}

// NewTemplateBank builds the bank from built-in defaults plus an
// optional override file
func NewTemplateBank(persona config.PersonaConfig) (*TemplateBank, error) {
	tb := &TemplateBank{
		persona: persona,
		pools:   defaultPools(),
	}

	if persona.TemplatesFile != "" {
		data, err := os.ReadFile(persona.TemplatesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read templates file: %w", err)
		}
		var overrides map[string][]string
		if err := json.Unmarshal(data, &overrides); err != nil {
			return nil, fmt.Errorf("failed to parse templates file: %w", err)
		}
		for name, lines := range overrides {
			if len(lines) > 0 {
				tb.pools[name] = lines
			}
		}
	}

	return tb, nil
}

// Lines returns the pool's reply lines, falling back to the generic
// stage pool for unknown names
func (tb *TemplateBank) Lines(pool string) []string {
	if lines, ok := tb.pools[pool]; ok && len(lines) > 0 {
		return lines
	}
	return tb.pools[PoolStageFallback]
}

// StagePool maps a stage to its rapport-building prompt pool
func (tb *TemplateBank) StagePool(stage models.Stage) string {
	switch stage {
	case models.StageRecon, models.StageSocialEngineering, models.StageUrgency,
		models.StagePaymentRequest, models.StagePhishing, models.StageOTPFraud,
		models.StageRewardLure:
		return poolStagePrefix + string(stage)
	default:
		return PoolStageFallback
	}
}

// PersonaStyle returns the persona description echoed in decisions
func (tb *TemplateBank) PersonaStyle() string {
	return tb.persona.Style
}

func defaultPools() map[string][]string {
	return map[string][]string{
		PoolPassive: {
			"Hi, how can I help you?",
			"Hello, what is this about?",
			"Sorry, who is this?",
		},
		PoolSoftOpeners: {
			"I'm a bit confused. Can you explain what I need to do?",
			"Okay... what exactly is the issue with my account?",
			"I don't understand this. What should I do step by step?",
		},
		PoolAskLink: {
			"Can you send the official verification link again? The page didn't open.",
			"Please share the exact link. I want to make sure I'm on the right site.",
			"The link isn't loading, send the correct URL once more.",
		},
		PoolAskHandle: {
			"Which exact UPI ID should I use? Please send it again.",
			"Can you share the UPI handle (like name@bank) so I don't type wrong?",
			"What's the UPI ID and receiver name? I want to confirm before paying.",
		},
		PoolAskBank: {
			"If UPI isn't working, can you share bank details (A/C + IFSC + name)?",
			"Please send the account number and IFSC, my app asks for those.",
			"Can you share beneficiary bank details so I can complete this?",
		},
		PoolAskRouting: {
			"IFSC code bhi bhej do please. App IFSC maang raha hai.",
			"Receiver bank ka IFSC kya hai? Without IFSC it's not allowing.",
		},
		PoolAskAccount: {
			"I have the IFSC, but which account number do I use? Please send it.",
			"The app wants the full account number too. Can you share it?",
		},
		PoolBankConfirm: {
			"Can you confirm the beneficiary name for that account once more?",
			"What name will show for this account? I want to be sure before sending.",
		},
		PoolReceiverFlow: {
			"Receiver name kya aayega? (UPI pe jo name show hota hai) I want to confirm.",
			"Can you send a collect request? I'm not able to type the UPI ID correctly.",
			"If this UPI fails, do you have another UPI ID I can try?",
		},
		PoolAskContact: {
			"Aapka support number kya hai? Call karke confirm karna hai.",
			"Official email ID bhej do, main wahi pe forward karke verify karunga.",
			"Is there a number or email I can reach you on if this fails?",
		},
		PoolPhishingNext: {
			"The page looks different from my bank site. Can you resend the exact link so I open the right one?",
			"I clicked but it's asking too many things. Send me the exact link once more?",
			"It didn't open properly on my phone. Please resend the same link.",
		},
		PoolFollowups: {
			"Okay, I noted that. What's the next step?",
			"Done. If it fails again, what should I do?",
			"Can you confirm the receiver name once more?",
		},
		PoolOTPSender: {
			"Before anything, who is sending me this code? Which company are you from?",
			"I got a message just now. Who exactly is it from?",
		},
		PoolOTPContent: {
			"What does the message say, apart from the number? Mine looks odd.",
			"Does your message mention the bank name? What should mine say?",
		},
		PoolOTPPurpose: {
			"Why is a code needed for this at all? What is it verifying?",
			"What happens after the code step? I want to understand first.",
		},
		PoolOTPFallback: {
			"Is there any way to do this without the code? Maybe at the branch?",
			"My message hasn't arrived yet. Is there another way to verify?",
			"Can you do it from your side and just confirm to me?",
			"If the code expires, what do I do then?",
		},
		poolStagePrefix + string(models.StageRecon): {
			"Hi, yes, what is this about?",
			"Hello. Which service are you calling from?",
		},
		poolStagePrefix + string(models.StageSocialEngineering): {
			"I'm worried now. What verification is needed?",
			"Why is my account suspended? I didn't do anything.",
		},
		poolStagePrefix + string(models.StageUrgency): {
			"Okay okay, I don't want it blocked. What do I do now?",
			"Please guide quickly. I'm not technical.",
		},
		poolStagePrefix + string(models.StagePaymentRequest): {
			"You're asking payment... I need exact details so I don't make a mistake.",
			"I can do it, but tell me the exact ID or link.",
		},
		poolStagePrefix + string(models.StagePhishing): {
			"I clicked but it looks different.",
			"The site is asking too many things.",
		},
		poolStagePrefix + string(models.StageOTPFraud): {
			"A code? But why is a code needed for this?",
			"I got a message, but I'm scared. What is it for?",
		},
		poolStagePrefix + string(models.StageRewardLure): {
			"Really? What do I need to do to claim it?",
			"Okay... what's the process for the reward?",
		},
		PoolStageFallback: {
			"Can you clarify what you need from me?",
			"What is this regarding? Please explain.",
		},
	}
}
