package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness rule rejected the write.
	ErrAlreadyExists = errors.New("already exists")
	// ErrForbidden indicates the entity exists but belongs to someone else.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState indicates an illegal status transition.
	ErrInvalidState = errors.New("invalid state")
	// ErrInsufficientStock indicates a product cannot cover the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrPriceMismatch indicates client supplied totals disagree with current prices.
	ErrPriceMismatch = errors.New("price mismatch")
	// ErrCustomizationMismatch indicates a customization was made for a different product.
	ErrCustomizationMismatch = errors.New("customization does not match product")
)

// ValidationError reports a malformed or missing request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsClientError reports whether err is caused by the request rather than by storage.
func IsClientError(err error) bool {
	if IsValidation(err) {
		return true
	}
	for _, target := range []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrForbidden,
		ErrInvalidState,
		ErrInsufficientStock,
		ErrPriceMismatch,
		ErrCustomizationMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
