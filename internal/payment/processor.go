// Package payment applies payments to invoices.
//
// ProcessPayment never returns an error and never mutates its input: every
// attempt yields a Result carrying a Payment record (COMPLETED or FAILED)
// and the invoice to thread forward, which is a fresh copy on success and
// the untouched original on failure.
package payment

import (
	"context"
	"fmt"
	"time"

	"invoicing/internal/idgen"
	"invoicing/internal/invoice"
	"invoicing/internal/logger"
	"invoicing/internal/money"
	"invoicing/pkg/models"
)

// Limits bounds a single payment amount. Both ends are inclusive; a zero
// limit disables that end of the check.
type Limits struct {
	MinAmount float64
	MaxAmount float64
}

// Result is the outcome of a payment attempt.
type Result struct {
	Success bool
	Payment models.Payment
	Invoice models.Invoice

	// Err is set when Success is false.
	Err error
}

// Message returns the failure text, or "" for a successful result.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

func succeeded(p models.Payment, inv models.Invoice) Result {
	return Result{Success: true, Payment: p, Invoice: inv}
}

func failed(p models.Payment, original models.Invoice, err error) Result {
	return Result{Success: false, Payment: p, Invoice: original, Err: err}
}

// AmountCheck is the advisory outcome of ValidatePaymentAmount.
type AmountCheck struct {
	Valid   bool
	Message string
}

// Processor applies payments within configured limits.
type Processor struct {
	limits Limits
	ids    idgen.Generator
}

// NewProcessor creates a payment processor.
func NewProcessor(limits Limits, ids idgen.Generator) *Processor {
	return &Processor{
		limits: limits,
		ids:    ids,
	}
}

// ProcessPayment validates and applies amount to inv. The amount is rounded
// to cents first; the rounded value is what gets recorded and subtracted.
func (p *Processor) ProcessPayment(ctx context.Context, inv models.Invoice, amount float64, method models.PaymentMethod, date time.Time) Result {
	const op = "ProcessPayment"

	amount = money.RoundCurrency(amount)

	log := logger.WithInvoice("payment", inv.ID, inv.InvoiceNumber).With().
		Float64("amount", amount).
		Str("method", method.String()).
		Logger()

	validationErr := p.validate(inv, amount, method, date)
	if validationErr == nil && inv.Status == models.InvoiceStatusCancelled {
		validationErr = NewPaymentError(op, inv.ID, ErrInvoiceCancelled)
	}

	reference, refErr := p.ids.GeneratePaymentNumber(ctx, paymentDate(date))
	record := models.Payment{
		ID:              p.ids.GenerateID(),
		InvoiceID:       inv.ID,
		PaymentMethod:   method,
		Amount:          amount,
		PaymentDate:     date,
		ReferenceNumber: reference,
		Status:          models.PaymentStatusFailed,
	}

	if validationErr != nil {
		log.Warn().Err(validationErr).Msg("Payment rejected")
		return failed(record, inv, validationErr)
	}
	if refErr != nil {
		err := NewPaymentError(op, inv.ID, fmt.Errorf("%w: %v", ErrReferenceNumber, refErr))
		log.Error().Err(err).Msg("Payment reference unavailable")
		return failed(record, inv, err)
	}

	record.Status = models.PaymentStatusCompleted

	updated := inv.Clone()
	updated.OutstandingAmount = money.Sub(inv.OutstandingAmount, amount)
	updated.Status = DeriveStatus(updated.OutstandingAmount, updated.TotalAmount)

	log.Info().
		Str("reference", record.ReferenceNumber).
		Float64("outstanding", updated.OutstandingAmount).
		Str("status", updated.Status.String()).
		Msg("Payment applied")

	if updated.Status == models.InvoiceStatusOverpaid {
		log.Warn().
			Float64("overpaid_by", -updated.OutstandingAmount).
			Msg("Invoice overpaid")
	}

	return succeeded(record, updated)
}

// ValidatePaymentAmount reports whether amount is acceptable for inv without
// applying it. Amounts above the outstanding balance remain valid but carry
// an overpayment message.
func (p *Processor) ValidatePaymentAmount(inv models.Invoice, amount float64) AmountCheck {
	amount = money.RoundCurrency(amount)
	if err := p.validateAmount(amount); err != nil {
		return AmountCheck{Valid: false, Message: "Payment amount " + err.Message}
	}

	if amount > inv.OutstandingAmount {
		overpayment := money.Sub(amount, inv.OutstandingAmount)
		return AmountCheck{
			Valid:   true,
			Message: fmt.Sprintf("Payment exceeds outstanding amount by %s", money.Format(overpayment)),
		}
	}

	return AmountCheck{Valid: true}
}

// Limits returns the limits the processor enforces.
func (p *Processor) Limits() Limits {
	return p.limits
}

func (p *Processor) validate(inv models.Invoice, amount float64, method models.PaymentMethod, date time.Time) error {
	if err := p.validateAmount(amount); err != nil {
		return err
	}
	if !method.IsValid() {
		return invoice.NewValidationError("paymentMethod", method, "must be one of CASH, BANK_TRANSFER, CREDIT_CARD, DEBIT_CARD, CHECK")
	}
	if date.IsZero() {
		return invoice.NewValidationError("paymentDate", date, "must be a valid date")
	}
	if inv.ID == "" {
		return invoice.NewValidationError("invoiceId", inv.ID, "must not be empty")
	}
	return nil
}

func (p *Processor) validateAmount(amount float64) *invoice.ValidationError {
	if !money.IsFinite(amount) || amount <= 0 {
		return invoice.NewValidationError("amount", amount, "must be a positive number")
	}
	if p.limits.MinAmount > 0 && amount < p.limits.MinAmount {
		return invoice.NewValidationError("amount", amount, fmt.Sprintf("must be at least %.2f", p.limits.MinAmount))
	}
	if p.limits.MaxAmount > 0 && amount > p.limits.MaxAmount {
		return invoice.NewLimitError("amount", amount, p.limits.MaxAmount)
	}
	return nil
}

// paymentDate substitutes today for a missing date so that failed attempts
// still receive a well-formed reference number.
func paymentDate(date time.Time) time.Time {
	if date.IsZero() {
		return time.Now()
	}
	return date
}

// CalculateTotalPaid sums the amounts of completed payments.
func CalculateTotalPaid(payments []models.Payment) float64 {
	amounts := make([]float64, 0, len(payments))
	for _, p := range payments {
		if p.Status == models.PaymentStatusCompleted {
			amounts = append(amounts, p.Amount)
		}
	}
	return money.SumRounded(amounts...)
}
