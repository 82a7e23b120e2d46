package sheets

import (
	"context"
	"fmt"

	"invoicing/internal/booking"
	"invoicing/internal/money"
	"invoicing/pkg/models"
)

// LedgerHeaders are the column titles of the payment ledger worksheet.
var LedgerHeaders = []string{
	"Receipt number", "Payment reference", "Invoice number", "Date", "Method",
	"Amount", "Payment status", "Remaining balance", "Invoice status",
	"Debit account", "Credit account", "Booking text", "Error",
}

const ledgerDateLayout = "2006-01-02"

// LedgerEntry is one payment attempt as recorded in the ledger. Receipt is
// nil for failed payments.
type LedgerEntry struct {
	Invoice models.Invoice
	Payment models.Payment
	Receipt *models.Receipt
	Err     error
}

// ToRow converts the entry to sheet cell values in LedgerHeaders order.
func (e LedgerEntry) ToRow() []interface{} {
	var receiptNumber, remaining string
	if e.Receipt != nil {
		receiptNumber = e.Receipt.ReceiptNumber
		remaining = money.Format(e.Receipt.RemainingBalance)
	} else {
		remaining = money.Format(e.Invoice.OutstandingAmount)
	}

	var date string
	if !e.Payment.PaymentDate.IsZero() {
		date = e.Payment.PaymentDate.Format(ledgerDateLayout)
	}

	var debit, credit, text string
	if posting, err := booking.ForPayment(e.Payment, e.Invoice); err == nil {
		debit, credit, text = posting.DebitAccount, posting.CreditAccount, posting.BookingText
	}

	var errMsg string
	if e.Err != nil {
		errMsg = e.Err.Error()
	}

	return []interface{}{
		receiptNumber,
		e.Payment.ReferenceNumber,
		e.Invoice.InvoiceNumber,
		date,
		e.Payment.PaymentMethod.String(),
		money.Format(e.Payment.Amount),
		string(e.Payment.Status),
		remaining,
		e.Invoice.Status.String(),
		debit,
		credit,
		text,
		errMsg,
	}
}

// WriteLedger appends one row per entry to sheetName.
func (s *Service) WriteLedger(ctx context.Context, entries []LedgerEntry, sheetName string) error {
	const op = "WriteLedger"

	s.log.Info().
		Str("sheet", sheetName).
		Int("entries", len(entries)).
		Msg("Writing payment ledger to Google Sheet")

	values := make([][]interface{}, len(entries))
	for i, entry := range entries {
		values[i] = entry.ToRow()
	}

	if err := s.AppendRows(ctx, sheetName, LedgerHeaders, values); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
