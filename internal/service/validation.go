package service

import (
	"strings"

	apperrors "github.com/spec-kit/mechanic-shop/pkg/util/errorutil"
)

// fieldErrors collects per-field validation messages.
type fieldErrors map[string]any

func (f fieldErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		f[field] = "is required"
	}
}

func (f fieldErrors) email(field, value string) {
	if _, set := f[field]; set {
		return
	}
	if !strings.Contains(value, "@") {
		f[field] = "must be a valid email address"
	}
}

func (f fieldErrors) nonNegative(field string, value float64) {
	if value < 0 {
		f[field] = "must not be negative"
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewValidationError("validation failed", map[string]any(f))
}

// notFound turns a missing row into a NotFound error for resource and maps
// every other failure.
func notFound(err error, resource string) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound(resource, nil)
	}
	return apperrors.MapError(err)
}

// conflictOnDuplicate reports unique violations with message.
func conflictOnDuplicate(err error, message string) error {
	if apperrors.IsUniqueViolation(err) {
		return apperrors.NewConflict(message, nil)
	}
	return apperrors.MapError(err)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
