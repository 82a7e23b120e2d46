// Package services wires the invoicing components behind a single entry point.
package services

import (
	"context"
	"time"

	"invoicing/internal/idgen"
	"invoicing/internal/invoice"
	"invoicing/internal/payment"
	"invoicing/internal/receipt"
	"invoicing/internal/sheets"
	"invoicing/pkg/models"
)

// Engine creates invoices, applies payments and issues receipts from one
// shared identifier generator.
type Engine struct {
	Invoices *invoice.Service
	Payments *payment.Processor
	Receipts *receipt.Generator
}

// NewEngine creates an engine enforcing the given limits.
func NewEngine(invoiceLimits invoice.Limits, paymentLimits payment.Limits, ids idgen.Generator) *Engine {
	return &Engine{
		Invoices: invoice.NewService(invoiceLimits, ids),
		Payments: payment.NewProcessor(paymentLimits, ids),
		Receipts: receipt.NewGenerator(ids),
	}
}

// PaymentOutcome is a payment attempt together with its receipt.
type PaymentOutcome struct {
	payment.Result

	// Receipt is set when the payment completed and the receipt was issued.
	Receipt *models.Receipt
	// ReceiptErr is set when the payment completed but no receipt could be issued.
	ReceiptErr error
}

// Failure returns the error that stopped the attempt, if any.
func (o PaymentOutcome) Failure() error {
	if o.Result.Err != nil {
		return o.Result.Err
	}
	return o.ReceiptErr
}

// LedgerEntry converts the outcome to a ledger row.
func (o PaymentOutcome) LedgerEntry() sheets.LedgerEntry {
	return sheets.LedgerEntry{
		Invoice: o.Invoice,
		Payment: o.Payment,
		Receipt: o.Receipt,
		Err:     o.Failure(),
	}
}

// Pay applies amount to inv and, when the payment completes, issues its
// receipt. The invoice to thread forward is o.Invoice in every case.
func (e *Engine) Pay(ctx context.Context, inv models.Invoice, amount float64, method models.PaymentMethod, date time.Time) PaymentOutcome {
	outcome := PaymentOutcome{Result: e.Payments.ProcessPayment(ctx, inv, amount, method, date)}
	if !outcome.Success {
		return outcome
	}

	r, err := e.Receipts.GenerateReceipt(ctx, outcome.Payment, outcome.Invoice)
	if err != nil {
		outcome.ReceiptErr = err
		return outcome
	}
	outcome.Receipt = &r
	return outcome
}
