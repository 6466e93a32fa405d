package ai

import (
	"context"

	"resumetailor/internal/types"
)

// AIProvider interface for different AI implementations.
// All methods return token usage information - callers can ignore it if not needed.
// Every returned value has already passed shape validation; a response that
// fails validation is surfaced as an error, never partially accepted.
type AIProvider interface {
	ExtractRequirements(ctx context.Context, jobText string) (*types.JobRequirements, *TokenUsage, error)
	Tailor(ctx context.Context, baseResume *types.ResumeJSON, requirements *types.JobRequirements) (*types.TailorResult, *TokenUsage, error)
	ParseFreeformResume(ctx context.Context, rawText string) (*types.ResumeJSON, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}
