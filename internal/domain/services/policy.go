package services

import (
	"fmt"
	"hash/fnv"

	"github.com/Krushna2656/agentic-honeypot/internal/config"
	"github.com/Krushna2656/agentic-honeypot/internal/domain/models"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

// PolicyInput is everything the reply policy needs for one turn
type PolicyInput struct {
	SessionID string
	Detection *models.DetectionResult
	Evidence  *models.EvidenceSet
	TurnIndex int
	LastReply string
}

// engageRule is one entry of the ordered extraction decision list.
// First applicable rule wins.
type engageRule struct {
	applies func(in PolicyInput) bool
	pool    func(p *ReplyPolicy, in PolicyInput) string
	goal    string
}

// ReplyPolicy maps detection output and evidence gaps to a risk tier,
// an engagement mode, and a deterministically selected reply.
// Recomputed every turn; behavior depends only on confidence, stage,
// evidence gaps, turn index, and the previous reply.
type ReplyPolicy struct {
	templates *TemplateBank
	config    config.DetectionConfig
	rules     []engageRule
	logger    *logger.Logger
}

// NewReplyPolicy creates a new reply policy
func NewReplyPolicy(templates *TemplateBank, cfg config.DetectionConfig, log *logger.Logger) *ReplyPolicy {
	p := &ReplyPolicy{
		templates: templates,
		config:    cfg,
		logger:    log.WithComponent("reply-policy"),
	}
	p.rules = engageRules()
	return p
}

// Decide computes the agent decision for one turn
func (p *ReplyPolicy) Decide(in PolicyInput) models.AgentDecision {
	det := in.Detection
	conf := det.Confidence

	switch {
	case conf >= p.config.EngageThreshold:
		return p.engage(in)
	case det.Detected && in.Evidence.HasStrong():
		// Evidence lock: a session that already yielded evidence is
		// never downgraded because one message scored low
		return p.engage(in)
	case det.Detected:
		return p.monitor(in)
	default:
		return p.passive(in)
	}
}

func (p *ReplyPolicy) passive(in PolicyInput) models.AgentDecision {
	return models.AgentDecision{
		RiskTier:  models.RiskLow,
		Action:    models.ActionAllow,
		Mode:      models.ModePassive,
		ReplyText: p.pick(PoolPassive, in, models.ModePassive),
		ReplyGoal: "No scam indicators detected. Respond as a normal helper.",
	}
}

func (p *ReplyPolicy) monitor(in PolicyInput) models.AgentDecision {
	pool := p.templates.StagePool(in.Detection.Stage)
	// Soft engagement alternates between stage prompts and generic
	// openers so consecutive turns don't feel scripted
	if in.TurnIndex%2 == 0 {
		pool = PoolSoftOpeners
	}
	return models.AgentDecision{
		RiskTier:  models.RiskMedium,
		Action:    models.ActionMonitor,
		Mode:      models.ModeSoftEngage,
		ReplyText: p.pick(pool, in, models.ModeSoftEngage),
		ReplyGoal: "Keep the sender engaged and gather more signals without exposure.",
	}
}

func (p *ReplyPolicy) engage(in PolicyInput) models.AgentDecision {
	tier := models.RiskMedium
	if in.Detection.Confidence >= p.config.EngageThreshold {
		tier = models.RiskHigh
	}

	for _, r := range p.rules {
		if r.applies(in) {
			return models.AgentDecision{
				RiskTier:  tier,
				Action:    models.ActionEngage,
				Mode:      models.ModeIntelExtract,
				ReplyText: p.pick(r.pool(p, in), in, models.ModeIntelExtract),
				ReplyGoal: r.goal,
			}
		}
	}

	// Unreachable: the last rule always applies
	return models.AgentDecision{
		RiskTier:  tier,
		Action:    models.ActionEngage,
		Mode:      models.ModeIntelExtract,
		ReplyText: p.pick(PoolFollowups, in, models.ModeIntelExtract),
		ReplyGoal: "Keep the conversation alive for more evidence.",
	}
}

// engageRules is the ordered extraction decision list
func engageRules() []engageRule {
	return []engageRule{
		// OTP flows progress by turn and never request the code itself
		{
			applies: func(in PolicyInput) bool {
				return in.Detection.Stage == models.StageOTPFraud
			},
			pool: func(_ *ReplyPolicy, in PolicyInput) string {
				switch {
				case in.TurnIndex <= 1:
					return PoolOTPSender
				case in.TurnIndex == 2:
					return PoolOTPContent
				case in.TurnIndex == 3:
					return PoolOTPPurpose
				default:
					return PoolOTPFallback
				}
			},
			goal: "Identify the sender and pretext behind the OTP request without ever asking for the code.",
		},
		// Bank lock: once account-level evidence exists, complete it
		// rather than regressing to a payment-handle ask
		{
			applies: func(in PolicyInput) bool {
				return in.Evidence.Has(models.CategoryBankAccount) ||
					in.Evidence.Has(models.CategoryRoutingCode)
			},
			pool: func(_ *ReplyPolicy, in PolicyInput) string {
				hasAccount := in.Evidence.Has(models.CategoryBankAccount)
				hasRouting := in.Evidence.Has(models.CategoryRoutingCode)
				switch {
				case hasAccount && !hasRouting:
					return PoolAskRouting
				case hasRouting && !hasAccount:
					return PoolAskAccount
				default:
					return PoolBankConfirm
				}
			},
			goal: "Complete and confirm the bank account intelligence.",
		},
		{
			applies: func(in PolicyInput) bool {
				return in.Detection.Stage == models.StagePhishing
			},
			pool: func(_ *ReplyPolicy, in PolicyInput) string {
				if !in.Evidence.Has(models.CategoryLink) {
					return PoolAskLink
				}
				if in.Evidence.Has(models.CategoryPaymentHandle) {
					return PoolReceiverFlow
				}
				return PoolPhishingNext
			},
			goal: "Extract or confirm the phishing URL for reporting.",
		},
		{
			applies: func(in PolicyInput) bool {
				return !in.Evidence.Has(models.CategoryLink) &&
					(in.Detection.Stage == models.StageSocialEngineering ||
						in.Detection.Stage == models.StageUrgency)
			},
			pool: func(_ *ReplyPolicy, _ PolicyInput) string { return PoolAskLink },
			goal: "Extract the phishing URL for reporting.",
		},
		{
			applies: func(in PolicyInput) bool {
				return in.Evidence.Has(models.CategoryPaymentHandle)
			},
			pool: func(_ *ReplyPolicy, _ PolicyInput) string { return PoolReceiverFlow },
			goal: "Confirm the receiver identity behind the payment handle.",
		},
		{
			applies: func(in PolicyInput) bool {
				return (in.Evidence.HasPaymentIntent ||
					in.Detection.Stage == models.StagePaymentRequest) &&
					!in.Evidence.Has(models.CategoryPaymentHandle)
			},
			pool: func(_ *ReplyPolicy, _ PolicyInput) string { return PoolAskHandle },
			goal: "Extract the payment handle and receiver name.",
		},
		{
			applies: func(in PolicyInput) bool {
				return in.Evidence.HasQRIntent &&
					in.Evidence.Has(models.CategoryPaymentHandle)
			},
			pool: func(_ *ReplyPolicy, _ PolicyInput) string { return PoolReceiverFlow },
			goal: "Extend the conversation through the QR/collect flow.",
		},
		{
			applies: func(in PolicyInput) bool {
				return !in.Evidence.Has(models.CategoryBankAccount) &&
					!in.Evidence.Has(models.CategoryRoutingCode)
			},
			pool: func(_ *ReplyPolicy, _ PolicyInput) string { return PoolAskBank },
			goal: "Extract bank account details.",
		},
		{
			applies: func(in PolicyInput) bool {
				return !in.Evidence.Has(models.CategoryPhone) ||
					!in.Evidence.Has(models.CategoryEmail)
			},
			pool: func(_ *ReplyPolicy, _ PolicyInput) string { return PoolAskContact },
			goal: "Extract contact details for correlation.",
		},
		{
			applies: func(_ PolicyInput) bool { return true },
			pool:    func(_ *ReplyPolicy, _ PolicyInput) string { return PoolFollowups },
			goal:    "Keep the conversation alive for more evidence.",
		},
	}
}

// pick selects a line from a pool as a pure function of
// (sessionID, mode, stage, turnIndex). If the seeded choice equals the
// previous reply, the next line (wrap-around) is used instead.
func (p *ReplyPolicy) pick(pool string, in PolicyInput, mode models.EngagementMode) string {
	lines := p.templates.Lines(pool)
	if len(lines) == 0 {
		return ""
	}

	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%d", in.SessionID, mode, in.Detection.Stage, in.TurnIndex)
	idx := int(h.Sum64() % uint64(len(lines)))

	if lines[idx] == in.LastReply {
		idx = (idx + 1) % len(lines)
	}
	return lines[idx]
}
