// Package invoice turns raw line items into priced invoices.
//
// Totaling is a pure calculation (CalculateInvoiceTotal). Service wraps it
// with identifier assignment: every item and the invoice receive an opaque
// id, and the invoice receives a date-stamped number such as
// INV-20250115-0001.
//
// Amount rules:
//   - line subtotal = quantity * unit price, rounded to cents
//   - tax amount = line subtotal * tax rate, rounded to cents
//   - line total = line subtotal + tax amount
//   - subtotal, total tax = sums of the rounded per-line values
//   - total amount = subtotal + total tax
//
// Line subtotals are checked against Limits.MaxLineItemAmount and the total
// against Limits.MaxInvoiceAmount.
package invoice

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"invoicing/internal/idgen"
	"invoicing/internal/logger"
	"invoicing/pkg/models"
)

// Service creates invoices.
type Service struct {
	limits Limits
	ids    idgen.Generator
	log    zerolog.Logger
}

// NewService creates an invoice service enforcing limits and numbering with ids.
func NewService(limits Limits, ids idgen.Generator) *Service {
	return &Service{
		limits: limits,
		ids:    ids,
		log:    logger.WithComponent("invoice"),
	}
}

// CreateInvoice prices items and returns a new PENDING invoice whose
// outstanding amount equals its total.
func (s *Service) CreateInvoice(ctx context.Context, items []models.LineItemInput, taxRate float64, date time.Time) (models.Invoice, error) {
	const op = "CreateInvoice"

	if date.IsZero() {
		return models.Invoice{}, NewValidationError("invoiceDate", date, "must be a valid date")
	}

	totals, err := CalculateInvoiceTotal(items, taxRate, s.limits)
	if err != nil {
		s.log.Warn().
			Err(err).
			Int("items", len(items)).
			Float64("tax_rate", taxRate).
			Msg("Invoice rejected")
		return models.Invoice{}, err
	}

	number, err := s.ids.GenerateInvoiceNumber(ctx, date)
	if err != nil {
		return models.Invoice{}, NewInvoiceError(op, ErrReferenceNumber, err.Error())
	}

	for i := range totals.Items {
		totals.Items[i].ID = s.ids.GenerateID()
	}

	inv := models.Invoice{
		ID:                s.ids.GenerateID(),
		InvoiceNumber:     number,
		InvoiceDate:       date,
		Items:             totals.Items,
		Subtotal:          totals.Subtotal,
		TotalTax:          totals.TotalTax,
		TotalAmount:       totals.TotalAmount,
		OutstandingAmount: totals.TotalAmount,
		Status:            models.InvoiceStatusPending,
	}

	s.log.Info().
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Int("items", len(inv.Items)).
		Float64("subtotal", inv.Subtotal).
		Float64("total_tax", inv.TotalTax).
		Float64("total_amount", inv.TotalAmount).
		Msg("Invoice created")

	return inv, nil
}

// Cancel returns a cancelled copy of inv. Cancellation is absorbing: the
// payment processor refuses further payments on the result.
func (s *Service) Cancel(inv models.Invoice) models.Invoice {
	cancelled := inv.Clone()
	cancelled.Status = models.InvoiceStatusCancelled

	s.log.Info().
		Str("invoice_id", inv.ID).
		Str("previous_status", inv.Status.String()).
		Msg("Invoice cancelled")

	return cancelled
}

// Limits returns the limits the service enforces.
func (s *Service) Limits() Limits {
	return s.limits
}
