package tailor

import (
	"context"
	"log/slog"
	"testing"

	"resumetailor/internal/ai"
	"resumetailor/internal/errors"
	"resumetailor/internal/store"
	"resumetailor/internal/types"
)

var testLogger = errors.NewLogger(slog.LevelError)

// stubProvider scripts the AI backend for engine tests and counts calls.
type stubProvider struct {
	requirements *types.JobRequirements
	result       *types.TailorResult

	extractCalls int
	tailorCalls  int
}

func (p *stubProvider) ExtractRequirements(ctx context.Context, jobText string) (*types.JobRequirements, *ai.TokenUsage, error) {
	p.extractCalls++
	return p.requirements, nil, nil
}

func (p *stubProvider) Tailor(ctx context.Context, baseResume *types.ResumeJSON, requirements *types.JobRequirements) (*types.TailorResult, *ai.TokenUsage, error) {
	p.tailorCalls++
	return p.result, nil, nil
}

func (p *stubProvider) ParseFreeformResume(ctx context.Context, rawText string) (*types.ResumeJSON, *ai.TokenUsage, error) {
	return nil, nil, errors.NewInternalError(errors.CodeInternalError, "not scripted", nil)
}

func (p *stubProvider) GetModelInfo(ctx context.Context) *ai.ModelInfo {
	return &ai.ModelInfo{Name: "stub", Available: true}
}

func (p *stubProvider) Close() error { return nil }

func newStubEngine(t *testing.T, stub *stubProvider, records store.TailoredStore) *Engine {
	t.Helper()
	svc := &ai.Service{Provider: stub}
	return New(svc, svc, records, testLogger)
}

const jobText = "We are hiring a backend engineer with Go and Kubernetes experience."

func scriptedStub(t *testing.T, base *types.ResumeJSON) *stubProvider {
	t.Helper()
	tailored := tailoredCopy(t, base)
	tailored.Summary = "Backend engineer building Go services on Kubernetes."
	return &stubProvider{
		requirements: &types.JobRequirements{
			MustHaveSkills: []string{"Go", "Kubernetes"},
			Keywords:       []string{"Go", "Kubernetes"},
			RoleCategory:   "backend",
		},
		result: &types.TailorResult{TailoredResume: *tailored},
	}
}

func TestTailorRecomputesKeywordAccounting(t *testing.T) {
	base := baseResume()
	stub := scriptedStub(t, base)
	// The backend claims nonsense; the engine must override it.
	stub.result.KeywordDiff = types.ATSKeywordDiff{Added: []string{"COBOL"}}
	stub.result.GapReport = types.ATSGapReport{CoverageScore: -40}

	engine := newStubEngine(t, stub, nil)
	result, _, err := engine.Tailor(context.Background(), base, stub.requirements)
	if err != nil {
		t.Fatalf("Tailor failed: %v", err)
	}

	if len(result.KeywordDiff.Added) != 1 || result.KeywordDiff.Added[0] != "Kubernetes" {
		t.Errorf("Expected recomputed added keywords [Kubernetes], got %v", result.KeywordDiff.Added)
	}
	if result.GapReport.CoverageScore < 0 || result.GapReport.CoverageScore > 100 {
		t.Errorf("Expected coverage score in [0,100], got %d", result.GapReport.CoverageScore)
	}
}

func TestTailorRejectsInvalidOutput(t *testing.T) {
	base := baseResume()
	stub := scriptedStub(t, base)
	extra := stub.result.TailoredResume
	extra.Experience = append(extra.Experience, types.Experience{Company: "Fabricated Inc", Title: "CTO"})
	stub.result = &types.TailorResult{TailoredResume: extra}

	engine := newStubEngine(t, stub, nil)
	_, _, err := engine.Tailor(context.Background(), base, stub.requirements)

	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Type != errors.ErrorTypeTailoringInvalid {
		t.Fatalf("Expected tailoring-invalid error, got %v", err)
	}
}

func TestTailorForJobPersistsRecord(t *testing.T) {
	base := baseResume()
	stub := scriptedStub(t, base)
	records := store.NewMemoryStore()
	engine := newStubEngine(t, stub, records)

	record, cacheHit, err := engine.TailorForJob(context.Background(), "user-1", "job-1", base, jobText, false)
	if err != nil {
		t.Fatalf("TailorForJob failed: %v", err)
	}
	if cacheHit {
		t.Error("First invocation should not be a cache hit")
	}
	if record.ID == "" || record.CreatedAt == "" {
		t.Error("Expected record ID and timestamp to be set")
	}
	if record.UserID != "user-1" || record.JobID != "job-1" {
		t.Errorf("Record keyed incorrectly: %s/%s", record.UserID, record.JobID)
	}

	stored, err := records.Get(context.Background(), "user-1", "job-1")
	if err != nil {
		t.Fatalf("Expected record to be persisted: %v", err)
	}
	if stored.ID != record.ID {
		t.Errorf("Stored record ID %s does not match returned %s", stored.ID, record.ID)
	}
}

func TestTailorForJobReturnsCachedRecord(t *testing.T) {
	base := baseResume()
	stub := scriptedStub(t, base)
	records := store.NewMemoryStore()
	engine := newStubEngine(t, stub, records)
	ctx := context.Background()

	first, _, err := engine.TailorForJob(ctx, "user-1", "job-1", base, jobText, false)
	if err != nil {
		t.Fatalf("TailorForJob failed: %v", err)
	}

	second, cacheHit, err := engine.TailorForJob(ctx, "user-1", "job-1", base, jobText, false)
	if err != nil {
		t.Fatalf("Second TailorForJob failed: %v", err)
	}
	if !cacheHit {
		t.Error("Second invocation should be a cache hit")
	}
	if second.ID != first.ID {
		t.Errorf("Cache hit returned a different record: %s vs %s", second.ID, first.ID)
	}
	if stub.extractCalls != 1 || stub.tailorCalls != 1 {
		t.Errorf("Cache hit must not reach the backend, got %d extract / %d tailor calls",
			stub.extractCalls, stub.tailorCalls)
	}
}

func TestTailorForJobForceRegenerates(t *testing.T) {
	base := baseResume()
	stub := scriptedStub(t, base)
	records := store.NewMemoryStore()
	engine := newStubEngine(t, stub, records)
	ctx := context.Background()

	first, _, err := engine.TailorForJob(ctx, "user-1", "job-1", base, jobText, false)
	if err != nil {
		t.Fatalf("TailorForJob failed: %v", err)
	}

	second, cacheHit, err := engine.TailorForJob(ctx, "user-1", "job-1", base, jobText, true)
	if err != nil {
		t.Fatalf("Forced TailorForJob failed: %v", err)
	}
	if cacheHit {
		t.Error("Forced regeneration must not report a cache hit")
	}
	if second.ID == first.ID {
		t.Error("Forced regeneration should produce a new record")
	}
	if stub.tailorCalls != 2 {
		t.Errorf("Expected 2 tailor calls after force, got %d", stub.tailorCalls)
	}

	stored, err := records.Get(ctx, "user-1", "job-1")
	if err != nil {
		t.Fatalf("Expected regenerated record in store: %v", err)
	}
	if stored.ID != second.ID {
		t.Error("Store should hold only the regenerated record")
	}
}

func TestTailorForJobRejectionLeavesNothingBehind(t *testing.T) {
	base := baseResume()
	stub := scriptedStub(t, base)
	invalid := stub.result.TailoredResume
	invalid.Experience = append(invalid.Experience, types.Experience{Company: "Fabricated Inc", Title: "CTO"})
	stub.result = &types.TailorResult{TailoredResume: invalid}

	records := store.NewMemoryStore()
	engine := newStubEngine(t, stub, records)

	_, _, err := engine.TailorForJob(context.Background(), "user-1", "job-1", base, jobText, false)
	if err == nil {
		t.Fatal("Expected tailoring to be rejected")
	}

	_, err = records.Get(context.Background(), "user-1", "job-1")
	if !store.NotFound(err) {
		t.Errorf("Rejected tailoring must not persist a record, got %v", err)
	}
}
