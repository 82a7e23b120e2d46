package settlement

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"invoicing/internal/logger"
	"invoicing/internal/sheets"
	"invoicing/pkg/models"
	"invoicing/pkg/services"
)

// Settler applies payment rows to invoices.
type Settler struct {
	engine *services.Engine
	log    zerolog.Logger
}

// NewSettler creates a settler applying payments through engine.
func NewSettler(engine *services.Engine) *Settler {
	return &Settler{
		engine: engine,
		log:    logger.WithComponent("settlement"),
	}
}

// Apply applies rows to the invoices they name, matched by invoice number.
// Rows are applied in date order; rows on the same date keep sheet order.
// Each invoice is threaded through its payments so every attempt sees the
// outstanding amount left by the previous one. Neither argument is modified.
//
// Apply stops early only when ctx is cancelled, returning the partial report.
func (s *Settler) Apply(ctx context.Context, invoices []models.Invoice, rows []PaymentRow) (Report, error) {
	const op = "Apply"

	report := Report{updated: make(map[string]bool)}

	byNumber := make(map[string]models.Invoice, len(invoices))
	for _, inv := range invoices {
		if _, dup := byNumber[inv.InvoiceNumber]; dup {
			return Report{}, fmt.Errorf("%s: duplicate invoice number %s", op, inv.InvoiceNumber)
		}
		byNumber[inv.InvoiceNumber] = inv.Clone()
	}

	ordered := make([]PaymentRow, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	finish := func() Report {
		report.Invoices = make([]models.Invoice, len(invoices))
		for i, inv := range invoices {
			report.Invoices[i] = byNumber[inv.InvoiceNumber]
		}
		return report
	}

	for _, row := range ordered {
		if err := ctx.Err(); err != nil {
			return finish(), fmt.Errorf("%s: %w", op, err)
		}

		inv, ok := byNumber[row.InvoiceNumber]
		if !ok {
			s.log.Warn().
				Int("row", row.Row).
				Str("invoice_number", row.InvoiceNumber).
				Msg("No invoice for payment row")
			report.Unmatched = append(report.Unmatched, row)
			continue
		}

		entry := s.applyRow(ctx, inv, row)
		if entry.Payment.Status == models.PaymentStatusCompleted {
			byNumber[row.InvoiceNumber] = entry.Invoice
			report.updated[row.InvoiceNumber] = true
		}
		if entry.Receipt != nil {
			report.Receipts = append(report.Receipts, *entry.Receipt)
		}
		report.Entries = append(report.Entries, entry)
	}

	s.log.Info().
		Int("rows", len(rows)).
		Int("applied", report.Applied()).
		Int("failed", report.Failed()).
		Int("unmatched", len(report.Unmatched)).
		Msg("Settlement completed")

	return finish(), nil
}

func (s *Settler) applyRow(ctx context.Context, inv models.Invoice, row PaymentRow) sheets.LedgerEntry {
	outcome := s.engine.Pay(ctx, inv, row.Amount, row.Method, row.Date)

	log := logger.WithInvoice("settlement", inv.ID, inv.InvoiceNumber).With().
		Int("row", row.Row).
		Logger()

	switch {
	case !outcome.Success:
		log.Warn().
			Err(outcome.Failure()).
			Msg("Payment rejected")
	case outcome.ReceiptErr != nil:
		log.Error().
			Err(outcome.ReceiptErr).
			Str("payment_reference", outcome.Payment.ReferenceNumber).
			Msg("Payment applied but receipt generation failed")
	}

	return outcome.LedgerEntry()
}
