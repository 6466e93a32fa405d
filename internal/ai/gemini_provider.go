package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"resumetailor/internal/config"
	apperrors "resumetailor/internal/errors"
	"resumetailor/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	httpClient     *http.Client
	config         *config.OperationAIConfig
	circuitBreaker *AICircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *apperrors.Logger
}

// Ensure GeminiProvider implements AIProvider
var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *apperrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, apperrors.NewUpstreamError(apperrors.CodeAIServiceError,
			"Failed to create Gemini client", err)
	}

	circuitBreaker := NewAICircuitBreaker(operationType, cfg, logger)
	modelBreaker := NewModelCircuitBreaker(operationType, cfg, logger)

	return &GeminiProvider{
		client: client,
		httpClient: &http.Client{
			Timeout: *cfg.Timeout,
		},
		config:         cfg,
		circuitBreaker: circuitBreaker,
		modelBreaker:   modelBreaker,
		logger:         logger,
	}, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

const modelCheckTimeout = 10 * time.Second

// executeWithRetry executes an AI operation with retry logic and exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= *g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", *g.config.MaxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on certain errors (auth, invalid input, etc.)
		if !g.isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", *g.config.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, *g.config.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func (g *GeminiProvider) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true
		}
		// Other network errors (e.g., connection refused) are retryable too
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// executeAIOperation is a generic helper to run AI operations with common tracing,
// circuit breaker, boundary validation, and parsing logic. The validate hook runs
// against the raw response text before unmarshalling, so a malformed shape is
// rejected at the boundary and never partially accepted.
func executeAIOperation[Out any](
	g *GeminiProvider,
	ctx context.Context,
	operationName string,
	userPrompt string,
	systemPrompt string,
	genaiConfig *genai.GenerateContentConfig,
	validate func([]byte) error,
	spanAttributes ...attribute.KeyValue,
) (Out, *TokenUsage, error) {
	var output Out
	tracer := otel.Tracer("resumetailor.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, operationName, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, apperrors.NewUpstreamError(apperrors.CodeAIServiceError, "Failed to generate content for "+operationName, err)
	}

	raw := []byte(result.Text())

	if validate != nil {
		if err := validate(raw); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.Bool("success", false))
			return output, nil, err
		}
	}

	if err := json.Unmarshal(raw, &output); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, apperrors.NewSchemaError(apperrors.CodeAIResponseInvalid, "Failed to parse AI response for "+operationName, err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return output, tokenUsage, nil
}

// ExtractRequirements implements AIProvider for job requirements extraction
func (g *GeminiProvider) ExtractRequirements(ctx context.Context, jobText string) (*types.JobRequirements, *TokenUsage, error) {
	systemPrompt := g.getSystemPrompt("extract")
	userPrompt := fmt.Sprintf(g.getUserPrompt("extract"), jobText)
	genaiConfig := g.buildRequirementsSchema()

	output, tokenUsage, err := executeAIOperation[types.JobRequirements](
		g,
		ctx,
		"extract_requirements",
		userPrompt,
		systemPrompt,
		genaiConfig,
		types.ValidateRequirements,
		attribute.Int("input.job_length", len(jobText)),
	)
	if err != nil {
		return nil, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.must_have_count", len(output.MustHaveSkills)),
			attribute.Int("output.keyword_count", len(output.Keywords)),
			attribute.String("output.role_category", output.RoleCategory),
		)
	}

	return &output, tokenUsage, nil
}

// Tailor implements AIProvider for resume tailoring. The returned result has
// passed schema validation for both the outer shape and the embedded resume;
// the non-fabrication and parity checks belong to the tailoring engine.
func (g *GeminiProvider) Tailor(ctx context.Context, baseResume *types.ResumeJSON, requirements *types.JobRequirements) (*types.TailorResult, *TokenUsage, error) {
	baseJSON, err := json.MarshalIndent(baseResume, "", "  ")
	if err != nil {
		return nil, nil, apperrors.NewInternalError(apperrors.CodeInternalError, "Failed to encode base resume", err)
	}
	reqJSON, err := json.MarshalIndent(requirements, "", "  ")
	if err != nil {
		return nil, nil, apperrors.NewInternalError(apperrors.CodeInternalError, "Failed to encode job requirements", err)
	}

	systemPrompt := g.getSystemPrompt("tailor")
	userPrompt := fmt.Sprintf(g.getUserPrompt("tailor"), baseJSON, reqJSON)
	genaiConfig := g.buildTailorSchema()

	validate := func(raw []byte) error {
		if err := types.ValidateTailorResult(raw); err != nil {
			return err
		}
		var envelope struct {
			TailoredResume json.RawMessage `json:"tailoredResume"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return apperrors.NewSchemaError(apperrors.CodeAIResponseInvalid, "Failed to parse tailor response", err)
		}
		return types.ValidateResume(envelope.TailoredResume)
	}

	output, tokenUsage, err := executeAIOperation[types.TailorResult](
		g,
		ctx,
		"tailor_resume",
		userPrompt,
		systemPrompt,
		genaiConfig,
		validate,
		attribute.Int("input.resume_bytes", len(baseJSON)),
		attribute.Int("input.requirements_bytes", len(reqJSON)),
	)
	if err != nil {
		return nil, nil, err
	}

	output.TailoredResume.Normalize()

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.keywords_added", len(output.KeywordDiff.Added)),
			attribute.Int("output.coverage_score", output.GapReport.CoverageScore),
		)
	}

	return &output, tokenUsage, nil
}

// ParseFreeformResume implements AIProvider for freeform resume parsing
func (g *GeminiProvider) ParseFreeformResume(ctx context.Context, rawText string) (*types.ResumeJSON, *TokenUsage, error) {
	systemPrompt := g.getSystemPrompt("parse")
	userPrompt := fmt.Sprintf(g.getUserPrompt("parse"), rawText)
	genaiConfig := g.buildResumeSchemaConfig()

	output, tokenUsage, err := executeAIOperation[types.ResumeJSON](
		g,
		ctx,
		"parse_resume",
		userPrompt,
		systemPrompt,
		genaiConfig,
		types.ValidateResume,
		attribute.Int("input.text_length", len(rawText)),
	)
	if err != nil {
		return nil, nil, err
	}

	output.Normalize()

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.experience_count", len(output.Experience)),
			attribute.Int("output.education_count", len(output.Education)),
		)
	}

	return &output, tokenUsage, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	aiHealthy := g.circuitBreaker.IsHealthy()
	modelHealthy := g.modelBreaker.IsModelHealthy()
	stats["overall_healthy"] = aiHealthy && modelHealthy

	return stats
}

// Close implements AIProvider interface
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// resumeSchema returns the genai response schema for the canonical resume shape.
// It mirrors the JSON Schema the validation layer checks against.
func resumeSchema() *genai.Schema {
	stringArray := func() *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"header": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":     {Type: genai.TypeString},
					"email":    {Type: genai.TypeString},
					"phone":    {Type: genai.TypeString},
					"location": {Type: genai.TypeString},
					"links": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"type": {Type: genai.TypeString},
								"url":  {Type: genai.TypeString},
							},
							Required: []string{"type", "url"},
						},
					},
				},
				Required: []string{"name", "email", "phone", "location", "links"},
			},
			"summary": {Type: genai.TypeString},
			"education": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"institution": {Type: genai.TypeString},
						"degree":      {Type: genai.TypeString},
						"field":       {Type: genai.TypeString},
						"location":    {Type: genai.TypeString},
						"start":       {Type: genai.TypeString},
						"end":         {Type: genai.TypeString},
						"gpa":         {Type: genai.TypeString},
						"honors":      {Type: genai.TypeString},
						"coursework":  stringArray(),
					},
					Required: []string{"institution", "degree"},
				},
			},
			"experience": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"company":      {Type: genai.TypeString},
						"title":        {Type: genai.TypeString},
						"location":     {Type: genai.TypeString},
						"start":        {Type: genai.TypeString},
						"end":          {Type: genai.TypeString},
						"bullets":      stringArray(),
						"technologies": stringArray(),
					},
					Required: []string{"company", "title", "location", "start", "end", "bullets", "technologies"},
				},
			},
			"projects": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":         {Type: genai.TypeString},
						"description":  {Type: genai.TypeString},
						"technologies": stringArray(),
						"url":          {Type: genai.TypeString},
						"date":         {Type: genai.TypeString},
						"achievement":  {Type: genai.TypeString},
					},
					Required: []string{"name", "description", "technologies"},
				},
			},
			"activities": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"organization": {Type: genai.TypeString},
						"role":         {Type: genai.TypeString},
						"start":        {Type: genai.TypeString},
						"end":          {Type: genai.TypeString},
						"bullets":      stringArray(),
					},
					Required: []string{"organization", "role", "bullets"},
				},
			},
			"skills": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"groups": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"name":  {Type: genai.TypeString},
								"items": stringArray(),
							},
							Required: []string{"name", "items"},
						},
					},
				},
				Required: []string{"groups"},
			},
			"languages": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":        {Type: genai.TypeString},
						"proficiency": {Type: genai.TypeString},
					},
					Required: []string{"name", "proficiency"},
				},
			},
			"certifications": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":   {Type: genai.TypeString},
						"issuer": {Type: genai.TypeString},
						"date":   {Type: genai.TypeString},
						"expiry": {Type: genai.TypeString},
						"url":    {Type: genai.TypeString},
					},
					Required: []string{"name", "issuer"},
				},
			},
		},
		Required: []string{"header", "education", "experience", "projects", "activities", "skills", "languages", "certifications"},
	}
}

// buildRequirementsSchema creates the schema for extraction requests
func (g *GeminiProvider) buildRequirementsSchema() *genai.GenerateContentConfig {
	stringArray := func() *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
	}

	genaiConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"mustHaveSkills":   stringArray(),
				"preferredSkills":  stringArray(),
				"responsibilities": stringArray(),
				"keywords":         stringArray(),
				"roleCategory":     {Type: genai.TypeString},
				"seniorityLevel":   {Type: genai.TypeString},
				"hardRequirements": stringArray(),
				"softRequirements": stringArray(),
			},
			Required: []string{"mustHaveSkills", "preferredSkills", "responsibilities", "keywords", "roleCategory", "hardRequirements", "softRequirements"},
		},
	}

	if *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}

	return genaiConfig
}

// buildTailorSchema creates the schema for tailor requests
func (g *GeminiProvider) buildTailorSchema() *genai.GenerateContentConfig {
	stringArray := func() *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
	}

	genaiConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"tailoredResume": resumeSchema(),
				"keywordDiff": {
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"added":      stringArray(),
						"removed":    stringArray(),
						"emphasized": stringArray(),
					},
					Required: []string{"added", "removed", "emphasized"},
				},
				"gapReport": {
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"missingKeywords": stringArray(),
						"matchedSkills":   stringArray(),
						"missingSkills":   stringArray(),
						"coverageScore":   {Type: genai.TypeInteger},
						"suggestions":     stringArray(),
					},
					Required: []string{"missingKeywords", "matchedSkills", "missingSkills", "coverageScore", "suggestions"},
				},
			},
			Required: []string{"tailoredResume", "keywordDiff", "gapReport"},
		},
	}

	if *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}

	return genaiConfig
}

// buildResumeSchemaConfig creates the schema for parse requests
func (g *GeminiProvider) buildResumeSchemaConfig() *genai.GenerateContentConfig {
	genaiConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   resumeSchema(),
	}

	if *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}

	return genaiConfig
}

// getSystemPrompt returns the appropriate system prompt
func (g *GeminiProvider) getSystemPrompt(promptType string) string {
	loadedPrompts, configPrompts := g.getPrompts(promptType)
	var configSystemPrompts *config.SystemPrompts
	if configPrompts != nil {
		configSystemPrompts = &configPrompts.SystemPrompts
	} else {
		configSystemPrompts = &config.SystemPrompts{}
	}

	switch promptType {
	case "tailor":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.Tailor,
			configSystemPrompts.Tailor,
			DefaultSystemPrompts.Tailor,
		)
	case "extract":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.Extract,
			configSystemPrompts.Extract,
			DefaultSystemPrompts.Extract,
		)
	case "parse":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.Parse,
			configSystemPrompts.Parse,
			DefaultSystemPrompts.Parse,
		)
	default:
		return ""
	}
}

// getUserPrompt returns the appropriate user prompt template
func (g *GeminiProvider) getUserPrompt(promptType string) string {
	loadedPrompts, configPrompts := g.getPrompts(promptType)
	var configUserPrompts *config.UserPrompts
	if configPrompts != nil {
		configUserPrompts = &configPrompts.UserPrompts
	} else {
		configUserPrompts = &config.UserPrompts{}
	}

	switch promptType {
	case "tailor":
		return resolvePrompt(
			loadedPrompts.UserPrompts.Tailor,
			configUserPrompts.Tailor,
			DefaultUserPrompts.Tailor,
		)
	case "extract":
		return resolvePrompt(
			loadedPrompts.UserPrompts.Extract,
			configUserPrompts.Extract,
			DefaultUserPrompts.Extract,
		)
	case "parse":
		return resolvePrompt(
			loadedPrompts.UserPrompts.Parse,
			configUserPrompts.Parse,
			DefaultUserPrompts.Parse,
		)
	default:
		return ""
	}
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// getPrompts returns the appropriate prompts for the operation, prioritizing loaded content over config
func (g *GeminiProvider) getPrompts(operationType string) (config.OperationLoadedPrompts, *config.PromptConfig) {
	loadedPrompts := config.GetPromptsForOperation(operationType)
	configPrompts := &g.config.CustomPrompts
	return loadedPrompts, configPrompts
}

// resolvePrompt selects the correct prompt string based on priority:
// a prompt loaded from a file, then a prompt from configuration, then the
// hardcoded default.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
