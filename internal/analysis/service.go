// Package analysis composes the rent roll pipeline: fingerprint the sheet,
// consult the inference cache, invoke the external header-detection engine
// only on a miss, normalize the rows, and aggregate tenant risk.
package analysis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rpattn/rentroll/internal/domain"
	"github.com/rpattn/rentroll/internal/fingerprint"
	"github.com/rpattn/rentroll/internal/infercache"
	"github.com/rpattn/rentroll/internal/normalize"
	"github.com/rpattn/rentroll/internal/repository"
	"github.com/rpattn/rentroll/internal/risk"
	"github.com/rpattn/rentroll/internal/sheet"
)

// sampleLimit is how many leading rows are handed to the fingerprint and the
// inference engine.
const sampleLimit = 10

// Engine is the external header-detection collaborator. Its internals are
// opaque; any failure it reports is fatal for the document being processed.
type Engine interface {
	Infer(ctx context.Context, sampleRows [][]string) (domain.HeaderDetection, error)
}

// AssessmentProducer scores normalized rows. The pipeline never computes
// probabilities itself.
type AssessmentProducer interface {
	Assess(ctx context.Context, rows []domain.CanonicalRow) ([]domain.TenantRiskAssessment, error)
}

// Outcome is the single failure-signaling channel for the pipeline. Callers
// branch on Success and never inspect error types.
type Outcome struct {
	Success     bool                     `json:"success"`
	Fingerprint string                   `json:"fingerprint,omitempty"`
	CacheHit    bool                     `json:"cache_hit"`
	Rows        []domain.CanonicalRow    `json:"rows,omitempty"`
	Warnings    []string                 `json:"warnings"`
	Summary     *domain.PortfolioSummary `json:"summary,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

func failure(format string, args ...any) Outcome {
	return Outcome{Success: false, Warnings: []string{}, Error: fmt.Sprintf(format, args...)}
}

// Service orchestrates document processing. The cache and the producer are
// optional; a nil cache degrades to always invoking the engine, and a nil
// producer skips aggregation.
type Service struct {
	engine   Engine
	cache    *infercache.Cache[domain.HeaderDetection]
	producer AssessmentProducer
	files    repository.ProcessedFileRepository
	logger   *zap.Logger
}

// NewService wires the orchestrator. Only the engine is mandatory.
func NewService(
	engine Engine,
	cache *infercache.Cache[domain.HeaderDetection],
	producer AssessmentProducer,
	files repository.ProcessedFileRepository,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:   engine,
		cache:    cache,
		producer: producer,
		files:    files,
		logger:   logger.Named("analysis"),
	}
}

// Process runs one document through the pipeline. Identical re-submissions
// within the cache TTL never re-invoke the inference engine.
func (s *Service) Process(ctx context.Context, doc domain.Document) Outcome {
	rows, err := sheet.Parse(doc.FileName, doc.Payload)
	if err != nil {
		return failure("failed to parse %s: %v", doc.FileName, err)
	}
	if len(rows) == 0 {
		return failure("no rows found in %s", doc.FileName)
	}

	sample := sheet.Sample(rows, sampleLimit)
	key := fingerprint.Key(doc.FileName, doc.Size, sample)

	detection, cacheHit := s.cache.Get(key)
	if !cacheHit {
		detection, err = s.engine.Infer(ctx, sample)
		if err != nil {
			s.logger.Warn("header inference failed",
				zap.String("file", doc.FileName),
				zap.Error(err),
			)
			return failure("header inference failed for %s: %v", doc.FileName, err)
		}
		s.cache.Set(key, detection)
	}

	if err := detection.Validate(); err != nil {
		// A cached detection can only be invalid if the schema contract
		// changed underneath it; treat it like a fresh inference failure.
		return failure("unusable header detection for %s: %v", doc.FileName, err)
	}

	canonical, warnings := normalize.Resolve(detection, rows)

	outcome := Outcome{
		Success:     true,
		Fingerprint: key,
		CacheHit:    cacheHit,
		Rows:        canonical,
		Warnings:    warnings,
	}

	if s.producer != nil {
		assessments, err := s.producer.Assess(ctx, canonical)
		if err != nil {
			// The rows are already normalized and useful; a scoring outage
			// downgrades to a warning rather than discarding the document.
			outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("risk assessment unavailable: %v", err))
		} else {
			summary := risk.Summarize(assessments)
			outcome.Summary = &summary
		}
	}

	s.recordMetadata(ctx, doc, &outcome)

	s.logger.Info("document processed",
		zap.String("file", doc.FileName),
		zap.String("fingerprint", key),
		zap.Bool("cache_hit", cacheHit),
		zap.Int("rows", len(canonical)),
		zap.Int("warnings", len(outcome.Warnings)),
	)

	return outcome
}

// CacheStats exposes cache introspection to the HTTP layer.
func (s *Service) CacheStats() infercache.Stats {
	return s.cache.Stats()
}

// ClearCache drops every cached detection.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

func (s *Service) recordMetadata(ctx context.Context, doc domain.Document, outcome *Outcome) {
	if s.files == nil {
		return
	}

	record := domain.ProcessedFileRecord{
		DocumentID:   doc.ID,
		FileName:     doc.FileName,
		SizeBytes:    doc.Size,
		Fingerprint:  outcome.Fingerprint,
		RowCount:     len(outcome.Rows),
		WarningCount: len(outcome.Warnings),
		CacheHit:     outcome.CacheHit,
		CreatedAt:    time.Now(),
	}

	if err := s.files.Record(ctx, record); err != nil {
		s.logger.Warn("failed to persist processed file metadata",
			zap.String("file", doc.FileName),
			zap.Error(err),
		)
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("metadata not persisted: %v", err))
	}
}
