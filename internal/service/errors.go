package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"veganbite/internal/domain"
	"veganbite/internal/repository"
)

var (
	ErrUnauthorized      = errors.New("authentication required")
	ErrForbidden         = errors.New("insufficient permissions")
	ErrDuplicateReview   = errors.New("you have already reviewed this product")
	ErrInvalidTransition = domain.ErrInvalidTransition
)

// ValidationError carries field-level messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(fields domain.FieldErrors) error {
	if fields.Empty() {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func fieldError(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// DuplicateReviewError reports the review the customer already wrote.
type DuplicateReviewError struct {
	ExistingID int64
}

func (e *DuplicateReviewError) Error() string {
	return fmt.Sprintf("%s (review %d)", ErrDuplicateReview, e.ExistingID)
}

func (e *DuplicateReviewError) Is(target error) bool {
	return target == ErrDuplicateReview
}

// IsNotFound reports whether err is any of the repository not-found errors.
func IsNotFound(err error) bool {
	for _, target := range []error{
		repository.ErrCategoryNotFound,
		repository.ErrProductNotFound,
		repository.ErrReviewNotFound,
		repository.ErrCustomerNotFound,
		repository.ErrAdminNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
