package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"resumetailor/internal/ai"
	"resumetailor/internal/common"
	"resumetailor/internal/diff"
	"resumetailor/internal/errors"
	"resumetailor/internal/observability"
	"resumetailor/internal/profile"
	"resumetailor/internal/tailor"
	"resumetailor/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// resolveJobText returns the job posting text from the request, fetching it
// when a URL was supplied instead of pasted text.
func (s *Server) resolveJobText(ctx context.Context, jobText, jobURL string) (string, error) {
	text := strings.TrimSpace(jobText)
	if text == "" && jobURL != "" {
		fetched, err := s.Fetcher.Fetch(ctx, jobURL)
		if err != nil {
			return "", err
		}
		text = fetched
	}
	return text, common.ValidateJobText(text, s.AppConfig.App.MinJobTextLength)
}

// resolveBaseResume returns the resume snapshot to tailor, projecting the
// profile when no snapshot was supplied directly.
func resolveBaseResume(req *TailorRequest) (*types.ResumeJSON, error) {
	if req.Resume != nil {
		return req.Resume, nil
	}
	if req.Profile != nil {
		resume := profile.ToResume(req.Profile)
		return &resume, nil
	}
	return nil, fmt.Errorf("either resume or profile is required")
}

// writeAppError maps an AppError to an HTTP status
func writeAppError(w http.ResponseWriter, err error, fallback string) {
	if appErr, ok := errors.AsAppError(err); ok {
		status := http.StatusInternalServerError
		switch appErr.Type {
		case errors.ErrorTypeValidation, errors.ErrorTypeSchema:
			status = http.StatusBadRequest
		case errors.ErrorTypeTailoringInvalid:
			status = http.StatusUnprocessableEntity
		case errors.ErrorTypeNotFound:
			status = http.StatusNotFound
		case errors.ErrorTypeUpstream:
			status = http.StatusBadGateway
		}
		writeErrorResponse(w, fallback, appErr.Error(), status)
		return
	}
	writeErrorResponse(w, fallback, err.Error(), http.StatusInternalServerError)
}

// newTailorEngine builds the tailoring engine from the process-wide AI
// services. Sharing the services keeps one genai client and one circuit
// breaker per operation across requests, so repeated upstream failures can
// actually trip the breaker.
func (s *Server) newTailorEngine() (*tailor.Engine, error) {
	extractService, err := ai.Default(s.AppConfig, "extract", s.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create extract service: %w", err)
	}

	tailorService, err := ai.Default(s.AppConfig, "tailor", s.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create tailor service: %w", err)
	}

	return tailor.New(extractService, tailorService, s.Store, s.Logger), nil
}

// createTailorHandler wraps the tailor handler with observability
func (s *Server) createTailorHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumetailor.api")
		ctx, span := tracer.Start(ctx, "api.tailor")
		defer span.End()

		var req TailorRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.JobID) == "" {
			err := fmt.Errorf("missing identity fields")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing identity fields", "userId and jobId fields are required", http.StatusBadRequest)
			return
		}

		baseResume, err := resolveBaseResume(&req)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing base resume", err.Error(), http.StatusBadRequest)
			return
		}

		jobText, err := s.resolveJobText(ctx, req.JobText, req.JobURL)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "job_text"))
			writeAppError(w, err, "Invalid job posting")
			return
		}

		span.SetAttributes(
			attribute.String("user.id", req.UserID),
			attribute.String("job.id", req.JobID),
			attribute.Int("request.job_length", len(jobText)),
			attribute.Bool("request.force", req.ForceRegenerate),
			attribute.String("operation", "tailor"),
		)

		engine, err := s.newTailorEngine()
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		record, cacheHit, err := engine.TailorForJob(ctx, req.UserID, req.JobID, baseResume, jobText, req.ForceRegenerate)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "tailoring"))
			if appErr, ok := errors.AsAppError(err); ok && appErr.Type == errors.ErrorTypeTailoringInvalid {
				metrics.RecordBusinessMetric(ctx, "tailoring_rejected", false, om,
					attribute.String("code", appErr.Code))
			}
			metrics.RecordBusinessMetric(ctx, "resume_tailored", false, om,
				attribute.String("error", err.Error()))
			writeAppError(w, err, "Failed to tailor resume")
			return
		}

		if cacheHit {
			metrics.RecordBusinessMetric(ctx, "tailor_cache_hit", true, om)
		}
		metrics.RecordBusinessMetric(ctx, "resume_tailored", true, om,
			attribute.Bool("cache_hit", cacheHit),
			attribute.Int("gap.coverage_score", record.ATSGapReport.CoverageScore))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Bool("cache_hit", cacheHit),
			attribute.Int("gap.coverage_score", record.ATSGapReport.CoverageScore),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(record); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createRequirementsHandler wraps the requirements extraction handler with observability
func (s *Server) createRequirementsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumetailor.api")
		ctx, span := tracer.Start(ctx, "api.requirements")
		defer span.End()

		var req RequirementsRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		jobText, err := s.resolveJobText(ctx, req.JobText, req.JobURL)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "job_text"))
			writeAppError(w, err, "Invalid job posting")
			return
		}

		span.SetAttributes(
			attribute.Int("request.job_length", len(jobText)),
			attribute.String("operation", "extract"),
		)

		aiService, err := ai.Default(s.AppConfig, "extract", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var result *types.JobRequirements
		err = metrics.TrackAIOperationWithTokens(ctx, "extract", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.Provider.ExtractRequirements(ctx, jobText)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "requirements_extracted", false, om)
			writeAppError(w, err, "Failed to extract job requirements")
			return
		}

		metrics.RecordBusinessMetric(ctx, "requirements_extracted", true, om,
			attribute.Int("must_have_count", len(result.MustHaveSkills)),
			attribute.Int("keyword_count", len(result.Keywords)),
			attribute.String("role_category", result.RoleCategory))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("must_have_count", len(result.MustHaveSkills)),
			attribute.Int("keyword_count", len(result.Keywords)),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createDiffHandler wraps the diff handler with observability. Diffing is a
// pure computation, no AI tracking involved.
func (s *Server) createDiffHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumetailor.api")
		ctx, span := tracer.Start(ctx, "api.diff")
		defer span.End()

		var req DiffRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if req.Original == nil || req.Tailored == nil {
			err := fmt.Errorf("missing resume pair")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume pair", "original and tailored fields are required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(attribute.String("operation", "diff"))

		report := diff.Compare(req.Original, req.Tailored)

		metrics := om.GetMetrics()
		metrics.RecordBusinessMetric(ctx, "diff_computed", true, om,
			attribute.Int("total_changes", report.TotalChanges))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("total_changes", report.TotalChanges),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createParseHandler wraps the freeform resume parse handler with observability
func (s *Server) createParseHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumetailor.api")
		ctx, span := tracer.Start(ctx, "api.parse")
		defer span.End()

		var req ParseRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("operation", "parse"),
		)

		aiService, err := ai.Default(s.AppConfig, "parse", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var result *types.ResumeJSON
		err = metrics.TrackAIOperationWithTokens(ctx, "parse", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.Provider.ParseFreeformResume(ctx, req.ResumeText)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "resume_parsed", false, om)
			writeAppError(w, err, "Failed to parse resume text")
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_parsed", true, om,
			attribute.Int("experience_count", len(result.Experience)),
			attribute.Int("education_count", len(result.Education)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("experience_count", len(result.Experience)),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Check if this request was rate limited by examining the response
			// We'll wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
