package repository

import (
	"context"

	"github.com/rpattn/rentroll/internal/domain"
)

// ProcessedFileRepository durably records metadata about analyzed documents.
// The pipeline only needs it to accept a record and answer listings; the
// storage schema beyond that is the collaborator's concern.
type ProcessedFileRepository interface {
	Record(ctx context.Context, record domain.ProcessedFileRecord) error
	List(ctx context.Context, limit int, offset int) ([]domain.ProcessedFileRecord, error)
}

// AssessmentRepository stores and retrieves tenant risk assessments produced
// by the upstream analysis step.
type AssessmentRepository interface {
	Record(ctx context.Context, assessment domain.TenantRiskAssessment) error
	List(ctx context.Context, limit int, offset int) ([]domain.TenantRiskAssessment, error)
}
