package models

// Stage is the scam-technique category of the current message only.
// It is never latched from prior turns.
type Stage string

const (
	StagePhishing          Stage = "PHISHING"
	StageOTPFraud          Stage = "OTP_FRAUD"
	StagePaymentRequest    Stage = "PAYMENT_REQUEST"
	StageUrgency           Stage = "URGENCY"
	StageSocialEngineering Stage = "SOCIAL_ENGINEERING"
	StageRewardLure        Stage = "REWARD_LURE"
	StageRecon             Stage = "RECON"
	StageUnknown           Stage = "UNKNOWN"
	StageBenign            Stage = "BENIGN"
)

// NormalizeStage maps arbitrary input to a known stage
func NormalizeStage(s string) Stage {
	switch Stage(s) {
	case StagePhishing, StageOTPFraud, StagePaymentRequest, StageUrgency,
		StageSocialEngineering, StageRewardLure, StageRecon, StageBenign:
		return Stage(s)
	default:
		return StageUnknown
	}
}

// ScamType labels the overall fraud family once a session is detected
type ScamType string

const (
	ScamTypePhishing          ScamType = "PHISHING"
	ScamTypeOTPFraud          ScamType = "OTP_FRAUD"
	ScamTypeUPIFraud          ScamType = "UPI_FRAUD"
	ScamTypeBankFraud         ScamType = "BANK_FRAUD"
	ScamTypeSocialEngineering ScamType = "SOCIAL_ENGINEERING"
	ScamTypeRewardLure        ScamType = "REWARD_LURE"
	ScamTypeUrgency           ScamType = "URGENCY"
	ScamTypeGeneric           ScamType = "GENERIC_SCAM"
)

// DetectionResult is the per-message classification output. Stage
// reflects the current message; the confidence score is boosted by
// cumulative evidence but never regresses the stage.
type DetectionResult struct {
	Detected    bool          `json:"detected"`
	Stage       Stage         `json:"stage"`
	Confidence  float64       `json:"confidence"`
	ScamType    *ScamType     `json:"scamType"`
	KeywordHits []string      `json:"keywordHits"`
	Indicators  *IndicatorSet `json:"indicators"`
}
