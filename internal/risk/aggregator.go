// Package risk buckets per-tenant default probabilities into portfolio level
// statistics. Everything here is a pure function over its inputs, safe for
// concurrent callers.
package risk

import (
	"math"

	"github.com/rpattn/rentroll/internal/domain"
)

// Classification thresholds. These values are load-bearing for
// interoperability with the rest of the platform: high means probability of
// default >= 60, medium covers [30, 60), low is everything below 30.
const (
	highThreshold   = 60.0
	mediumThreshold = 30.0
)

// Classify recomputes the bucket from the numeric probability. The severity
// label already present on an assessment is ignored; it may come from a less
// precise upstream classifier.
func Classify(probability float64) domain.RiskSeverity {
	switch {
	case probability >= highThreshold:
		return domain.RiskHigh
	case probability >= mediumThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// Summarize reduces an assessment list to bucketed counts and the mean
// probability, rounded to one decimal place. An empty list is not an error:
// it yields the zero summary.
func Summarize(assessments []domain.TenantRiskAssessment) domain.PortfolioSummary {
	summary := domain.PortfolioSummary{TotalAssessed: len(assessments)}
	if len(assessments) == 0 {
		return summary
	}

	var total float64
	for _, a := range assessments {
		total += a.DefaultProbability
		switch Classify(a.DefaultProbability) {
		case domain.RiskHigh:
			summary.HighRiskCount++
		case domain.RiskMedium:
			summary.MediumRiskCount++
		default:
			summary.LowRiskCount++
		}
	}

	summary.AverageRisk = math.Round(total/float64(len(assessments))*10) / 10
	return summary
}

// RiskColorFor maps a probability onto the categorical color used by
// consumers of the summary. Presentation stops at the category name.
func RiskColorFor(probability float64) string {
	switch Classify(probability) {
	case domain.RiskHigh:
		return "red"
	case domain.RiskMedium:
		return "yellow"
	default:
		return "green"
	}
}

// PriorityColorFor maps an action priority onto its categorical color.
// Unknown priorities fall back to gray rather than failing.
func PriorityColorFor(priority domain.ActionPriority) string {
	switch priority {
	case domain.PriorityImmediate:
		return "red"
	case domain.PriorityUrgent:
		return "orange"
	case domain.PriorityNormal:
		return "blue"
	case domain.PriorityLow:
		return "green"
	default:
		return "gray"
	}
}
