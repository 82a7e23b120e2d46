package receipt

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocationMismatch matches every *AllocationMismatchError via errors.Is.
	ErrAllocationMismatch = errors.New("payment does not belong to invoice")

	// ErrReceiptNumber is returned when no receipt number could be generated.
	ErrReceiptNumber = errors.New("failed to generate receipt number")
)

// AllocationMismatchError is returned when a payment is allocated against an
// invoice other than the one it was made for. It is deliberately not a
// validation error: the inputs are individually well-formed but inconsistent.
type AllocationMismatchError struct {
	PaymentID        string
	PaymentInvoiceID string
	InvoiceID        string
}

// Error implements the error interface.
func (e *AllocationMismatchError) Error() string {
	return fmt.Sprintf("receipt: payment %s belongs to invoice %q, not %q",
		e.PaymentID, e.PaymentInvoiceID, e.InvoiceID)
}

// Is makes every AllocationMismatchError match ErrAllocationMismatch.
func (e *AllocationMismatchError) Is(target error) bool {
	return target == ErrAllocationMismatch
}
