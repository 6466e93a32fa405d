package store

import (
	"context"
	"fmt"

	"resumetailor/internal/config"
	"resumetailor/internal/errors"
	"resumetailor/internal/types"
)

// TailoredStore persists tailored resumes keyed by (userID, jobID). At most
// one record exists per key; Put replaces any existing record.
type TailoredStore interface {
	// Get returns the stored record, or a not-found AppError when no record
	// exists for the key.
	Get(ctx context.Context, userID, jobID string) (*types.TailoredResume, error)

	// Put stores the record under (record.UserID, record.JobID), replacing
	// any existing record for that key.
	Put(ctx context.Context, record *types.TailoredResume) error

	// Delete removes the record for the key. Deleting a missing record is
	// not an error.
	Delete(ctx context.Context, userID, jobID string) error

	// Close releases any underlying resources.
	Close() error
}

// New creates a TailoredStore from configuration. Supported backends are
// "memory" and "redis".
func New(cfg config.StoreConfig, logger *errors.Logger) (TailoredStore, error) {
	switch cfg.Backend {
	case "memory":
		logger.Info("Initializing in-memory tailored resume store")
		return NewMemoryStore(), nil
	case "redis":
		logger.Info("Initializing Redis tailored resume store",
			"addr", cfg.Addr,
			"db", cfg.DB,
			"key_prefix", cfg.KeyPrefix)
		return NewRedisStore(cfg), nil
	default:
		return nil, errors.NewConfigError(errors.CodeConfigValidation,
			fmt.Sprintf("Unsupported store backend: %s", cfg.Backend), nil)
	}
}

// NotFound reports whether err is the not-found error returned by Get.
func NotFound(err error) bool {
	appErr, ok := errors.AsAppError(err)
	return ok && appErr.Type == errors.ErrorTypeNotFound
}

func notFoundError(userID, jobID string) *errors.AppError {
	return errors.NewNotFoundError(errors.CodeTailoredNotFound,
		fmt.Sprintf("No tailored resume found for user %s and job %s", userID, jobID), nil)
}
