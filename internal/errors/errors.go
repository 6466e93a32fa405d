package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "validation"
	ErrorTypeSchema           ErrorType = "schema_validation"
	ErrorTypeTailoringInvalid ErrorType = "tailoring_output_invalid"
	ErrorTypeUpstream         ErrorType = "upstream_unavailable"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeConfig           ErrorType = "config"
	ErrorTypeIO               ErrorType = "io"
	ErrorTypeInternal         ErrorType = "internal"
)

// AppError represents an application error with context
type AppError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]any
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// AsAppError returns the *AppError in err's chain, if any.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// newAppError creates a new AppError
func newAppError(errorType ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NewValidationError creates a validation error for caller-supplied input
func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

// NewSchemaError creates a schema validation error for malformed data shapes
func NewSchemaError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeSchema, code, message, cause)
}

// NewTailoringInvalidError creates an error for tailoring output that violates
// the non-fabrication or structural-parity checks
func NewTailoringInvalidError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeTailoringInvalid, code, message, cause)
}

// NewUpstreamError creates an error for an unreachable or failing AI backend
func NewUpstreamError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeUpstream, code, message, cause)
}

// NewNotFoundError creates an error for a missing resume, job, or profile
func NewNotFoundError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeNotFound, code, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

// NewIOError creates an IO error
func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

// NewInternalError creates an internal error
func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// Common error codes
const (
	// Validation errors
	CodeInvalidInput    = "INVALID_INPUT"
	CodeJobTextTooShort = "JOB_TEXT_TOO_SHORT"
	CodeMissingField    = "MISSING_FIELD"
	CodeInvalidFormat   = "INVALID_FORMAT"
	CodeFileTooLarge    = "FILE_TOO_LARGE"

	// Schema errors
	CodeResumeSchemaInvalid       = "RESUME_SCHEMA_INVALID"
	CodeRequirementsSchemaInvalid = "REQUIREMENTS_SCHEMA_INVALID"
	CodeTailorResultSchemaInvalid = "TAILOR_RESULT_SCHEMA_INVALID"

	// Tailoring output errors
	CodeStructuralParity = "STRUCTURAL_PARITY_VIOLATION"
	CodeFabricatedFacts  = "FABRICATED_FACTS"

	// Upstream errors
	CodeAIServiceError    = "AI_SERVICE_ERROR"
	CodeAITimeout         = "AI_TIMEOUT"
	CodeAIResponseInvalid = "AI_RESPONSE_INVALID"
	CodeJobFetchFailed    = "JOB_FETCH_FAILED"

	// Not found errors
	CodeResumeNotFound   = "RESUME_NOT_FOUND"
	CodeProfileNotFound  = "PROFILE_NOT_FOUND"
	CodeTailoredNotFound = "TAILORED_NOT_FOUND"

	// Config errors
	CodeConfigLoad       = "CONFIG_LOAD_ERROR"
	CodeConfigValidation = "CONFIG_VALIDATION_ERROR"
	CodeMissingAPIKey    = "MISSING_API_KEY"

	// IO errors
	CodeFileRead   = "FILE_READ_ERROR"
	CodeFileWrite  = "FILE_WRITE_ERROR"
	CodeStoreError = "STORE_ERROR"

	// Internal errors
	CodeInternalError = "INTERNAL_ERROR"
)

// Logger provides structured logging for errors
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a new structured logger
func NewLogger(level slog.Level) *Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return &Logger{
		logger: slog.New(handler),
	}
}

// LogError logs an error with appropriate level and context
func (l *Logger) LogError(err error, msg string, args ...any) {
	if appErr, ok := err.(*AppError); ok {
		logArgs := []any{
			"error_type", string(appErr.Type),
			"error_code", appErr.Code,
			"error_message", appErr.Message,
		}

		if appErr.Cause != nil {
			logArgs = append(logArgs, "cause", appErr.Cause.Error())
		}

		for k, v := range appErr.Context {
			logArgs = append(logArgs, k, v)
		}

		logArgs = append(logArgs, args...)
		l.logger.Error(msg, logArgs...)
	} else {
		args = append(args, "error", err.Error())
		l.logger.Error(msg, args...)
	}
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// New creates a logger from a string level
func New(level string) (*Logger, error) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	return NewLogger(slogLevel), nil
}
