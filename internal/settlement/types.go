package settlement

import (
	"fmt"
	"time"

	"invoicing/internal/sheets"
	"invoicing/pkg/models"
)

// PaymentRow is one payment read from the payments sheet.
type PaymentRow struct {
	Row           int                  // 1-based sheet row
	Date          time.Time            // Datum - column A
	InvoiceNumber string               // Rechnungsnr - column B
	Method        models.PaymentMethod // Methode - column C
	Amount        float64              // Betrag - column D
	Note          string               // Verwendungszweck - column E
}

// RowError reports a sheet row that could not be parsed.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Report is the outcome of applying a set of payment rows.
type Report struct {
	// Invoices holds every input invoice in input order, with payments applied.
	Invoices []models.Invoice
	// Entries holds one ledger entry per attempted payment, in application order.
	Entries []sheets.LedgerEntry
	// Receipts holds the receipts of completed payments.
	Receipts []models.Receipt
	// Unmatched holds rows naming an invoice number not in the input set.
	Unmatched []PaymentRow

	updated map[string]bool
}

// Applied returns the number of completed payments.
func (r Report) Applied() int {
	return len(r.Receipts)
}

// Failed returns the number of payment attempts that were rejected.
func (r Report) Failed() int {
	n := 0
	for _, e := range r.Entries {
		if e.Payment.Status == models.PaymentStatusFailed {
			n++
		}
	}
	return n
}

// Updated returns the invoices that had at least one payment applied.
func (r Report) Updated() []models.Invoice {
	var out []models.Invoice
	for _, inv := range r.Invoices {
		if r.updated[inv.InvoiceNumber] {
			out = append(out, inv)
		}
	}
	return out
}
