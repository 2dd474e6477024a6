package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rpattn/rentroll/internal/domain"
)

type assessmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssessmentRepository wires a repository backed by pgxpool.
func NewAssessmentRepository(pool *pgxpool.Pool) AssessmentRepository {
	return &assessmentRepository{pool: pool}
}

func (r *assessmentRepository) Record(ctx context.Context, assessment domain.TenantRiskAssessment) error {
	if r.pool == nil {
		return fmt.Errorf("assessment repository not initialized")
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO tenant_assessments (tenant_name, unit_number, default_probability, risk_severity, risk_factors, protective_factors, confidence)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		assessment.TenantName,
		assessment.UnitNumber,
		assessment.DefaultProbability,
		string(assessment.RiskSeverity),
		assessment.RiskFactors,
		assessment.ProtectiveFactors,
		assessment.Confidence,
	)
	if err != nil {
		return fmt.Errorf("failed to record assessment: %w", err)
	}

	return nil
}

func (r *assessmentRepository) List(ctx context.Context, limit int, offset int) ([]domain.TenantRiskAssessment, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("assessment repository not initialized")
	}

	if limit <= 0 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT tenant_name, unit_number, default_probability, risk_severity, risk_factors, protective_factors, confidence
		 FROM tenant_assessments
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	assessments := []domain.TenantRiskAssessment{}
	for rows.Next() {
		var (
			assessment domain.TenantRiskAssessment
			severity   string
		)
		if scanErr := rows.Scan(
			&assessment.TenantName,
			&assessment.UnitNumber,
			&assessment.DefaultProbability,
			&severity,
			&assessment.RiskFactors,
			&assessment.ProtectiveFactors,
			&assessment.Confidence,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", scanErr)
		}

		assessment.RiskSeverity = domain.RiskSeverity(severity)
		assessments = append(assessments, assessment)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate assessments: %w", rowsErr)
	}

	return assessments, nil
}
