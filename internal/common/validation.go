package common

import (
	"fmt"
	"slices"
	"strings"

	"resumetailor/internal/errors"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// GetSupportedFormats returns the list of supported formats
func GetSupportedFormats(supportedFormats []string) []string {
	return supportedFormats
}

// ValidateJobText rejects job postings too short to extract requirements
// from. The same check applies to pasted text and fetched pages.
func ValidateJobText(jobText string, minLength int) error {
	trimmed := strings.TrimSpace(jobText)
	if len(trimmed) < minLength {
		return errors.NewValidationError(errors.CodeJobTextTooShort,
			fmt.Sprintf("Job posting text must be at least %d characters, got %d", minLength, len(trimmed)), nil)
	}
	return nil
}
