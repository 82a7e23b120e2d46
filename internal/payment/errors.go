package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrInvoiceCancelled is returned when a payment targets a cancelled invoice.
	ErrInvoiceCancelled = errors.New("cannot apply payment to a cancelled invoice")

	// ErrReferenceNumber is returned when no payment reference could be generated.
	ErrReferenceNumber = errors.New("failed to generate payment reference")
)

// PaymentError reports a payment-processing rule violation.
type PaymentError struct {
	// Op is the operation that failed (e.g., "ProcessPayment").
	Op string

	// InvoiceID is the invoice the payment targeted.
	InvoiceID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment: %s failed for invoice %s: %v", e.Op, e.InvoiceID, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new PaymentError.
func NewPaymentError(op, invoiceID string, err error) *PaymentError {
	return &PaymentError{
		Op:        op,
		InvoiceID: invoiceID,
		Err:       err,
	}
}
