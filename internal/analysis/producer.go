package analysis

import (
	"context"

	"github.com/rpattn/rentroll/internal/domain"
	"github.com/rpattn/rentroll/internal/repository"
)

// storedAssessmentProducer serves assessments already scored by the upstream
// analysis step, filtered to the units present in the processed document.
type storedAssessmentProducer struct {
	assessments repository.AssessmentRepository
}

// NewStoredAssessmentProducer adapts the assessment store into a producer for
// the pipeline.
func NewStoredAssessmentProducer(assessments repository.AssessmentRepository) AssessmentProducer {
	return &storedAssessmentProducer{assessments: assessments}
}

func (p *storedAssessmentProducer) Assess(ctx context.Context, rows []domain.CanonicalRow) ([]domain.TenantRiskAssessment, error) {
	stored, err := p.assessments.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	units := make(map[string]bool, len(rows))
	for _, row := range rows {
		if unit, ok := row[domain.FieldUnitNumber].(string); ok {
			units[unit] = true
		}
	}

	matched := make([]domain.TenantRiskAssessment, 0, len(stored))
	for _, a := range stored {
		if units[a.UnitNumber] {
			matched = append(matched, a)
		}
	}
	return matched, nil
}
