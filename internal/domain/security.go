package domain

// RiskLevel enumerates guardrail outcomes for a suggested command.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// GuardrailAction describes how the remediation executor should react to a
// risk level before asking for confirmation.
type GuardrailAction string

const (
	ActionConfirm         GuardrailAction = "confirm"
	ActionExplicitConfirm GuardrailAction = "explicit_confirm"
	ActionBlock           GuardrailAction = "block"
)

// RiskAssessment aggregates security evaluation data for a command sequence.
type RiskAssessment struct {
	Level        RiskLevel
	Action       GuardrailAction
	Reasons      []string
	MatchedRules []string
}
