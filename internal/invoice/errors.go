package invoice

import (
	"errors"
	"fmt"
)

// Common invoice errors
var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyItems is returned when an invoice is requested without line items.
	ErrEmptyItems = errors.New("invoice must contain at least one item")

	// ErrLimitExceeded is returned when an amount is above a configured maximum.
	ErrLimitExceeded = errors.New("amount exceeds configured limit")

	// ErrReferenceNumber is returned when the identifier collaborator cannot
	// produce an invoice number.
	ErrReferenceNumber = errors.New("failed to generate reference number")
)

// InvoiceError wraps errors with the invoice operation that failed.
type InvoiceError struct {
	// Op is the operation that failed (e.g., "CreateInvoice").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *InvoiceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("invoice: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("invoice: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *InvoiceError) Unwrap() error {
	return e.Err
}

// NewInvoiceError creates a new InvoiceError with the specified operation and underlying error.
func NewInvoiceError(op string, err error, details string) *InvoiceError {
	return &InvoiceError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapInvoiceError wraps err as an InvoiceError unless it is nil or a
// ValidationError, which callers are expected to inspect directly.
func WrapInvoiceError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return err
	}

	return NewInvoiceError(op, err, details)
}

// ValidationError reports malformed or out-of-policy input, naming the
// offending field.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string

	// Err optionally classifies the failure (ErrEmptyItems, ErrLimitExceeded).
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap returns the classifying error, if any.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewLimitError creates a ValidationError for an amount above limit.
func NewLimitError(field string, value, limit float64) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("exceeds maximum allowed amount of %.2f", limit),
		Err:     ErrLimitExceeded,
	}
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
