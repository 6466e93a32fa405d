package tailor

import (
	"context"
	"time"

	"resumetailor/internal/ai"
	"resumetailor/internal/errors"
	"resumetailor/internal/store"
	"resumetailor/internal/types"

	"github.com/google/uuid"
)

// Engine orchestrates requirements extraction and resume tailoring, enforces
// the non-fabrication and structural-parity checks on backend output, and
// derives the keyword diff and gap report from the texts themselves rather
// than trusting the backend's own accounting.
type Engine struct {
	extractor *ai.Service
	tailorer  *ai.Service
	records   store.TailoredStore
	logger    *errors.Logger
}

// New creates a tailoring engine. The two AI services carry their own
// per-operation configuration; records may be nil for callers that never use
// the cached lifecycle (the CLI).
func New(extractor, tailorer *ai.Service, records store.TailoredStore, logger *errors.Logger) *Engine {
	return &Engine{
		extractor: extractor,
		tailorer:  tailorer,
		records:   records,
		logger:    logger,
	}
}

// ExtractRequirements runs the requirements extractor on raw job text.
func (e *Engine) ExtractRequirements(ctx context.Context, jobText string) (*types.JobRequirements, *ai.TokenUsage, error) {
	return e.extractor.Provider.ExtractRequirements(ctx, jobText)
}

// Tailor produces a tailored variant of base for the given requirements.
// Backend output that changes factual identifiers or grows any section is
// rejected; the keyword diff and gap report in the returned result are
// recomputed locally from the two resume texts.
func (e *Engine) Tailor(ctx context.Context, base *types.ResumeJSON, req *types.JobRequirements) (*types.TailorResult, *ai.TokenUsage, error) {
	result, usage, err := e.tailorer.Provider.Tailor(ctx, base, req)
	if err != nil {
		return nil, usage, err
	}

	if err := validateTailoredResume(base, &result.TailoredResume); err != nil {
		e.logger.LogError(err, "Tailoring output rejected")
		return nil, usage, err
	}

	result.KeywordDiff = DeriveKeywordDiff(base, &result.TailoredResume, req)
	if len(result.KeywordDiff.Removed) > 0 {
		// A dropped keyword signals over-aggressive rewriting. Flag it, but
		// the result is still usable.
		e.logger.Warn("Tailoring removed requirement keywords from the resume",
			"removed_keywords", result.KeywordDiff.Removed)
	}

	result.GapReport = DeriveGapReport(&result.TailoredResume, req)

	e.logger.Info("Tailoring completed",
		"keywords_added", len(result.KeywordDiff.Added),
		"keywords_emphasized", len(result.KeywordDiff.Emphasized),
		"coverage_score", result.GapReport.CoverageScore)

	return result, usage, nil
}

// TailorForJob runs the cached lifecycle for one (user, job) pair: return the
// stored artifact unless force is set; under force, delete the prior artifact
// and regenerate. The returned bool reports a cache hit. The record persists
// only after extraction, tailoring, and all output checks succeed.
func (e *Engine) TailorForJob(ctx context.Context, userID, jobID string, base *types.ResumeJSON, jobText string, force bool) (*types.TailoredResume, bool, error) {
	if !force {
		record, err := e.records.Get(ctx, userID, jobID)
		if err == nil {
			e.logger.Debug("Returning cached tailored resume",
				"user_id", userID, "job_id", jobID, "record_id", record.ID)
			return record, true, nil
		}
		if !store.NotFound(err) {
			return nil, false, err
		}
	} else {
		if err := e.records.Delete(ctx, userID, jobID); err != nil {
			return nil, false, err
		}
		e.logger.Debug("Force regenerate: removed prior tailored resume",
			"user_id", userID, "job_id", jobID)
	}

	req, _, err := e.ExtractRequirements(ctx, jobText)
	if err != nil {
		return nil, false, err
	}

	result, _, err := e.Tailor(ctx, base, req)
	if err != nil {
		return nil, false, err
	}

	record := &types.TailoredResume{
		ID:                 uuid.NewString(),
		UserID:             userID,
		JobID:              jobID,
		OriginalResumeJSON: *base,
		TailoredResumeJSON: result.TailoredResume,
		ATSKeywordDiff:     result.KeywordDiff,
		ATSGapReport:       result.GapReport,
		CreatedAt:          time.Now().UTC().Format(time.RFC3339),
	}

	if err := e.records.Put(ctx, record); err != nil {
		return nil, false, err
	}

	e.logger.Info("Persisted tailored resume",
		"user_id", userID, "job_id", jobID, "record_id", record.ID)

	return record, false, nil
}
