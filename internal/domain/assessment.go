package domain

import "encoding/json"

// RiskSeverity buckets a tenant's default probability.
type RiskSeverity string

const (
	RiskLow    RiskSeverity = "low"
	RiskMedium RiskSeverity = "medium"
	RiskHigh   RiskSeverity = "high"
)

// ActionPriority orders recommended actions for property managers.
type ActionPriority string

const (
	PriorityImmediate ActionPriority = "immediate"
	PriorityUrgent    ActionPriority = "urgent"
	PriorityNormal    ActionPriority = "normal"
	PriorityLow       ActionPriority = "low"
)

// TenantRiskAssessment is a per-tenant score produced by the upstream
// analysis step. The aggregator consumes it read-only.
type TenantRiskAssessment struct {
	TenantName         string       `json:"tenant_name"`
	UnitNumber         string       `json:"unit_number"`
	DefaultProbability float64      `json:"default_probability"`
	RiskSeverity       RiskSeverity `json:"risk_severity"`
	RiskFactors        []string     `json:"risk_factors"`
	ProtectiveFactors  []string     `json:"protective_factors"`
	Confidence         float64      `json:"confidence"`
}

// ActionRecommendation pairs a tenant with a suggested follow-up.
type ActionRecommendation struct {
	TenantName string         `json:"tenant_name"`
	UnitNumber string         `json:"unit_number"`
	Action     string         `json:"action"`
	Priority   ActionPriority `json:"priority"`
}

// assessmentPayload accepts both snake_case and camelCase keys. Upstream
// producers have shipped both shapes; the ambiguity is resolved here at the
// boundary so the rest of the system only ever sees the typed record.
type assessmentPayload struct {
	TenantName          string       `json:"tenant_name"`
	TenantNameCamel     string       `json:"tenantName"`
	UnitNumber          string       `json:"unit_number"`
	UnitNumberCamel     string       `json:"unitNumber"`
	DefaultProb         *float64     `json:"default_probability"`
	DefaultProbCamel    *float64     `json:"defaultProbability"`
	RiskSeverity        RiskSeverity `json:"risk_severity"`
	RiskSeverityCamel   RiskSeverity `json:"riskSeverity"`
	RiskFactors         []string     `json:"risk_factors"`
	RiskFactorsCamel    []string     `json:"riskFactors"`
	ProtectiveFacts     []string     `json:"protective_factors"`
	ProtectiveFactCamel []string     `json:"protectiveFactors"`
	Confidence          float64      `json:"confidence"`
}

// UnmarshalJSON normalizes the two naming conventions into one record.
func (a *TenantRiskAssessment) UnmarshalJSON(data []byte) error {
	var payload assessmentPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	a.TenantName = firstNonEmpty(payload.TenantName, payload.TenantNameCamel)
	a.UnitNumber = firstNonEmpty(payload.UnitNumber, payload.UnitNumberCamel)
	a.RiskSeverity = RiskSeverity(firstNonEmpty(string(payload.RiskSeverity), string(payload.RiskSeverityCamel)))
	a.Confidence = payload.Confidence

	switch {
	case payload.DefaultProb != nil:
		a.DefaultProbability = *payload.DefaultProb
	case payload.DefaultProbCamel != nil:
		a.DefaultProbability = *payload.DefaultProbCamel
	}

	a.RiskFactors = payload.RiskFactors
	if len(a.RiskFactors) == 0 {
		a.RiskFactors = payload.RiskFactorsCamel
	}
	a.ProtectiveFactors = payload.ProtectiveFacts
	if len(a.ProtectiveFactors) == 0 {
		a.ProtectiveFactors = payload.ProtectiveFactCamel
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// PortfolioSummary is derived from the current assessment list on every
// aggregation call, never stored. Bucket counts always sum to TotalAssessed.
type PortfolioSummary struct {
	AverageRisk     float64 `json:"average_risk"`
	HighRiskCount   int     `json:"high_risk_count"`
	MediumRiskCount int     `json:"medium_risk_count"`
	LowRiskCount    int     `json:"low_risk_count"`
	TotalAssessed   int     `json:"total_assessed"`
}
