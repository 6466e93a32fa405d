package ai

import (
	"context"
	"fmt"
	"sync"

	"resumetailor/internal/config"
	"resumetailor/internal/errors"
)

// Service handles AI operations for resume processing
type Service struct {
	Provider AIProvider // Exported for access from server package
	config   *config.OperationAIConfig
	logger   *errors.Logger
}

// NewService creates a new AI service instance with configuration for a specific operation
func NewService(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) (*Service, error) {
	var provider AIProvider
	var err error

	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries,
		"use_system_prompts", *cfg.UseSystemPrompts)

	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, operationType, logger)
	default:
		return nil, errors.NewConfigError(errors.CodeConfigValidation,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewUpstreamError(errors.CodeAIServiceError,
			"Failed to create AI provider", err)
	}

	return &Service{
		Provider: provider,
		config:   cfg,
		logger:   logger,
	}, nil
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) any {
	return s.Provider.GetModelInfo(ctx)
}

var (
	defaultMu       sync.Mutex
	defaultServices = make(map[string]*Service)
)

// Default returns the process-wide service for an operation, creating it
// lazily on first use. The handle is read-only after construction; repeated
// calls with the same operation return the same instance.
func Default(cfg *config.Config, operationType string, logger *errors.Logger) (*Service, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if svc, ok := defaultServices[operationType]; ok {
		return svc, nil
	}

	var opCfg config.OperationAIConfig
	switch operationType {
	case "tailor":
		opCfg = cfg.GetTailorConfig()
	case "extract":
		opCfg = cfg.GetExtractConfig()
	case "parse":
		opCfg = cfg.GetParseConfig()
	default:
		return nil, errors.NewConfigError(errors.CodeConfigValidation,
			fmt.Sprintf("Unknown AI operation: %s", operationType), nil)
	}

	svc, err := NewService(&opCfg, operationType, logger)
	if err != nil {
		return nil, err
	}
	defaultServices[operationType] = svc
	return svc, nil
}
