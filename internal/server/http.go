package server

import (
	"fmt"
	"time"

	"resumetailor/internal/config"
	"resumetailor/internal/errors"
	"resumetailor/internal/jobfetch"
	"resumetailor/internal/store"
	"resumetailor/internal/types"
)

// TailorRequest is the request body for the tailor endpoint. Callers provide
// either a profile or a resume snapshot, and either job text or a job URL.
type TailorRequest struct {
	UserID          string             `json:"userId"`
	JobID           string             `json:"jobId"`
	Profile         *types.UserProfile `json:"profile,omitempty"`
	Resume          *types.ResumeJSON  `json:"resume,omitempty"`
	JobText         string             `json:"jobText,omitempty"`
	JobURL          string             `json:"jobUrl,omitempty"`
	ForceRegenerate bool               `json:"forceRegenerate,omitempty"`
}

// RequirementsRequest is the request body for the requirements endpoint
type RequirementsRequest struct {
	JobText string `json:"jobText,omitempty"`
	JobURL  string `json:"jobUrl,omitempty"`
}

// DiffRequest is the request body for the diff endpoint
type DiffRequest struct {
	Original *types.ResumeJSON `json:"original"`
	Tailored *types.ResumeJSON `json:"tailored"`
}

// ParseRequest is the request body for the parse endpoint
type ParseRequest struct {
	ResumeText string `json:"resumeText"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Certificate management
	CertificateManager *CertificateManager

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Tailored resume persistence
	Store store.TailoredStore

	// Job posting retrieval
	Fetcher *jobfetch.Fetcher

	// Logger
	Logger *errors.Logger
}

// ServerConfig holds configuration for creating a Server instance
// (Refactored to reduce long parameter list in NewServer)
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *errors.Logger) (*Server, error) {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	tailoredStore, err := store.New(appCfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create tailored resume store: %w", err)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Store:          tailoredStore,
		Fetcher:        jobfetch.New(appCfg.JobFetch, logger),
		Logger:         logger,
	}, nil
}
