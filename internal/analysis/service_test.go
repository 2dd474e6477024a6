package analysis

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rpattn/rentroll/internal/domain"
	"github.com/rpattn/rentroll/internal/infercache"
	"github.com/rpattn/rentroll/internal/repository"
)

type stubEngine struct {
	detection domain.HeaderDetection
	err       error
	calls     int
}

func (s *stubEngine) Infer(ctx context.Context, sampleRows [][]string) (domain.HeaderDetection, error) {
	s.calls++
	if s.err != nil {
		return domain.HeaderDetection{}, s.err
	}
	return s.detection, nil
}

type stubProducer struct {
	assessments []domain.TenantRiskAssessment
	err         error
}

func (s *stubProducer) Assess(ctx context.Context, rows []domain.CanonicalRow) ([]domain.TenantRiskAssessment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.assessments, nil
}

type stubFileRepo struct {
	records []domain.ProcessedFileRecord
	err     error
}

func (s *stubFileRepo) Record(ctx context.Context, record domain.ProcessedFileRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

func (s *stubFileRepo) List(ctx context.Context, limit int, offset int) ([]domain.ProcessedFileRecord, error) {
	return s.records, nil
}

var _ repository.ProcessedFileRepository = (*stubFileRepo)(nil)

func twoColumnDetection() domain.HeaderDetection {
	return domain.HeaderDetection{
		HeaderRowIndex:    0,
		DataStartRowIndex: 1,
		Headers:           map[int]string{0: "Unit", 1: "Rent"},
		ColumnMapping: map[domain.CanonicalField]int{
			domain.FieldUnitNumber:  0,
			domain.FieldCurrentRent: 1,
		},
		Confidence: 0.9,
	}
}

func csvDocument() domain.Document {
	return domain.NewDocument("roll.csv", []byte("Unit,Rent\n101,1200\n102,1350\n"))
}

func TestProcessMissThenHit(t *testing.T) {
	engine := &stubEngine{detection: twoColumnDetection()}
	cache := infercache.New[domain.HeaderDetection](time.Hour, nil)
	service := NewService(engine, cache, nil, nil, nil)

	first := service.Process(context.Background(), csvDocument())
	if !first.Success {
		t.Fatalf("first process failed: %s", first.Error)
	}
	if first.CacheHit {
		t.Fatalf("first submission must miss the cache")
	}
	if engine.calls != 1 {
		t.Fatalf("expected 1 inference call, got %d", engine.calls)
	}
	if len(first.Rows) != 2 {
		t.Fatalf("expected 2 canonical rows, got %d", len(first.Rows))
	}
	if first.Rows[0][domain.FieldCurrentRent] != 1200.0 {
		t.Fatalf("unexpected rent value: %v", first.Rows[0][domain.FieldCurrentRent])
	}

	second := service.Process(context.Background(), csvDocument())
	if !second.Success {
		t.Fatalf("second process failed: %s", second.Error)
	}
	if !second.CacheHit {
		t.Fatalf("byte-identical re-submission must hit the cache")
	}
	if engine.calls != 1 {
		t.Fatalf("cache hit must not re-invoke the engine, calls=%d", engine.calls)
	}
	if second.Fingerprint != first.Fingerprint {
		t.Fatalf("fingerprints differ: %q vs %q", first.Fingerprint, second.Fingerprint)
	}
	if !reflect.DeepEqual(first.Rows, second.Rows) {
		t.Fatalf("cache hit must produce identical canonical rows")
	}
}

func TestProcessNilCacheDegradesToInference(t *testing.T) {
	engine := &stubEngine{detection: twoColumnDetection()}
	service := NewService(engine, nil, nil, nil, nil)

	for i := 0; i < 2; i++ {
		outcome := service.Process(context.Background(), csvDocument())
		if !outcome.Success {
			t.Fatalf("process failed: %s", outcome.Error)
		}
		if outcome.CacheHit {
			t.Fatalf("no cache means no hits")
		}
	}
	if engine.calls != 2 {
		t.Fatalf("expected inference on every call without a cache, got %d", engine.calls)
	}
}

func TestProcessEngineFailureIsFatal(t *testing.T) {
	engine := &stubEngine{err: errors.New("model timeout")}
	cache := infercache.New[domain.HeaderDetection](time.Hour, nil)
	service := NewService(engine, cache, nil, nil, nil)

	outcome := service.Process(context.Background(), csvDocument())
	if outcome.Success {
		t.Fatalf("expected failure when engine errors")
	}
	if outcome.Error == "" {
		t.Fatalf("failure must carry a human-readable reason")
	}
	if stats := cache.Stats(); stats.Size != 0 {
		t.Fatalf("no entry may be stored after a failed inference, size=%d", stats.Size)
	}
}

func TestProcessUnparseableDocumentIsFatal(t *testing.T) {
	engine := &stubEngine{detection: twoColumnDetection()}
	service := NewService(engine, nil, nil, nil, nil)

	outcome := service.Process(context.Background(), domain.NewDocument("roll.pdf", []byte("x")))
	if outcome.Success {
		t.Fatalf("expected failure for unsupported format")
	}
	if engine.calls != 0 {
		t.Fatalf("engine must not run for unparseable documents")
	}
}

func TestProcessAggregatesWhenProducerPresent(t *testing.T) {
	engine := &stubEngine{detection: twoColumnDetection()}
	producer := &stubProducer{assessments: []domain.TenantRiskAssessment{
		{TenantName: "Jane Roe", UnitNumber: "101", DefaultProbability: 65},
		{TenantName: "John Doe", UnitNumber: "102", DefaultProbability: 20},
	}}
	service := NewService(engine, infercache.New[domain.HeaderDetection](time.Hour, nil), producer, nil, nil)

	outcome := service.Process(context.Background(), csvDocument())
	if !outcome.Success {
		t.Fatalf("process failed: %s", outcome.Error)
	}
	if outcome.Summary == nil {
		t.Fatalf("expected portfolio summary")
	}
	if outcome.Summary.HighRiskCount != 1 || outcome.Summary.LowRiskCount != 1 || outcome.Summary.TotalAssessed != 2 {
		t.Fatalf("unexpected summary: %+v", outcome.Summary)
	}
}

func TestProcessProducerFailureDowngradesToWarning(t *testing.T) {
	engine := &stubEngine{detection: twoColumnDetection()}
	producer := &stubProducer{err: errors.New("scoring service down")}
	service := NewService(engine, nil, producer, nil, nil)

	outcome := service.Process(context.Background(), csvDocument())
	if !outcome.Success {
		t.Fatalf("scoring outage must not fail the document: %s", outcome.Error)
	}
	if outcome.Summary != nil {
		t.Fatalf("no summary expected when the producer fails")
	}
	if len(outcome.Warnings) == 0 {
		t.Fatalf("expected a warning about the scoring outage")
	}
}

func TestProcessRecordsMetadata(t *testing.T) {
	engine := &stubEngine{detection: twoColumnDetection()}
	files := &stubFileRepo{}
	service := NewService(engine, nil, nil, files, nil)

	doc := csvDocument()
	outcome := service.Process(context.Background(), doc)
	if !outcome.Success {
		t.Fatalf("process failed: %s", outcome.Error)
	}

	if len(files.records) != 1 {
		t.Fatalf("expected 1 metadata record, got %d", len(files.records))
	}
	record := files.records[0]
	if record.DocumentID != doc.ID || record.FileName != "roll.csv" || record.RowCount != 2 {
		t.Fatalf("unexpected metadata record: %+v", record)
	}
}

func TestProcessPersistenceFailureDowngradesToWarning(t *testing.T) {
	engine := &stubEngine{detection: twoColumnDetection()}
	files := &stubFileRepo{err: errors.New("database unreachable")}
	service := NewService(engine, nil, nil, files, nil)

	outcome := service.Process(context.Background(), csvDocument())
	if !outcome.Success {
		t.Fatalf("persistence outage must not fail the document: %s", outcome.Error)
	}
	if len(outcome.Warnings) == 0 {
		t.Fatalf("expected a warning about persistence")
	}
}

func TestProcessUnmappedFieldsWarnButSucceed(t *testing.T) {
	engine := &stubEngine{detection: twoColumnDetection()}
	service := NewService(engine, nil, nil, nil, nil)

	outcome := service.Process(context.Background(), csvDocument())
	if !outcome.Success {
		t.Fatalf("process failed: %s", outcome.Error)
	}
	// Seven of the nine canonical fields are unmapped in this detection.
	if len(outcome.Warnings) != 7 {
		t.Fatalf("expected 7 unmapped-field warnings, got %d: %v", len(outcome.Warnings), outcome.Warnings)
	}
}
