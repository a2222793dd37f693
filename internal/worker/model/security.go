package model

// RiskLevel 风险等级，由分数推导
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low Risk"
	RiskMedium RiskLevel = "Medium Risk"
	RiskHigh   RiskLevel = "High Risk"
)

// 分数阈值，分数越高风险越大
const (
	MediumRiskScore = 30.0
	HighRiskScore   = 70.0
	MaxRiskScore    = 100.0
)

// SecurityAnalysis 风险评估结果
type SecurityAnalysis struct {
	RiskScore   float64   `json:"risk_score"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Description string    `json:"description"`
}

// RiskLevelFromScore maps a 0-100 score onto the closed label set.
func RiskLevelFromScore(score float64) RiskLevel {
	switch {
	case score >= HighRiskScore:
		return RiskHigh
	case score >= MediumRiskScore:
		return RiskMedium
	default:
		return RiskLow
	}
}

// NewSecurityAnalysis clamps the score into [0, 100] and derives the level.
func NewSecurityAnalysis(score float64, description string) *SecurityAnalysis {
	if score < 0 {
		score = 0
	}
	if score > MaxRiskScore {
		score = MaxRiskScore
	}
	return &SecurityAnalysis{
		RiskScore:   score,
		RiskLevel:   RiskLevelFromScore(score),
		Description: description,
	}
}
