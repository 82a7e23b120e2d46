// Package receipt builds receipts for completed payments and renders them
// as plain text.
package receipt

import (
	"context"

	"github.com/rs/zerolog"
	"invoicing/internal/idgen"
	"invoicing/internal/invoice"
	"invoicing/internal/logger"
	"invoicing/internal/money"
	"invoicing/pkg/models"
)

// Generator creates receipts.
type Generator struct {
	ids idgen.Generator
	log zerolog.Logger
}

// NewGenerator creates a receipt generator numbering with ids.
func NewGenerator(ids idgen.Generator) *Generator {
	return &Generator{
		ids: ids,
		log: logger.WithComponent("receipt"),
	}
}

// GenerateReceipt builds the receipt for p against inv, which must be the
// invoice as returned by the payment processor for that payment: its
// outstanding amount becomes the receipt's remaining balance.
func (g *Generator) GenerateReceipt(ctx context.Context, p models.Payment, inv models.Invoice) (models.Receipt, error) {
	const op = "GenerateReceipt"

	if p.InvoiceID != inv.ID {
		err := &AllocationMismatchError{
			PaymentID:        p.ID,
			PaymentInvoiceID: p.InvoiceID,
			InvoiceID:        inv.ID,
		}
		g.log.Error().Err(err).Msg("Receipt requested for foreign invoice")
		return models.Receipt{}, err
	}
	if p.Status != models.PaymentStatusCompleted {
		return models.Receipt{}, invoice.NewValidationError("paymentStatus", p.Status, "receipts are only issued for completed payments")
	}
	if !money.IsFinite(p.Amount) || p.Amount <= 0 {
		return models.Receipt{}, invoice.NewValidationError("amount", p.Amount, "must be a positive number")
	}

	number, err := g.ids.GenerateReceiptNumber(ctx, p.PaymentDate)
	if err != nil {
		return models.Receipt{}, invoice.NewInvoiceError(op, ErrReceiptNumber, err.Error())
	}

	items := Allocate(p.Amount, inv)

	r := models.Receipt{
		ID:               g.ids.GenerateID(),
		PaymentID:        p.ID,
		InvoiceID:        inv.ID,
		ReceiptNumber:    number,
		ReceiptDate:      p.PaymentDate,
		TotalPaid:        p.Amount,
		RemainingBalance: inv.OutstandingAmount,
		PaymentMethod:    p.PaymentMethod,
		PaymentReference: p.ReferenceNumber,
		Items:            items,
	}

	g.log.Info().
		Str("receipt_number", r.ReceiptNumber).
		Str("invoice_id", inv.ID).
		Str("payment_reference", p.ReferenceNumber).
		Float64("total_paid", r.TotalPaid).
		Float64("allocated", TotalAllocated(items)).
		Float64("remaining_balance", r.RemainingBalance).
		Msg("Receipt generated")

	return r, nil
}
