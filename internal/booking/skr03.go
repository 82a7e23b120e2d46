// Package booking derives SKR03 double-entry postings for applied payments.
package booking

import (
	"errors"
	"fmt"
	"time"

	"invoicing/pkg/models"
)

// ErrNotBookable is returned for payments that did not complete.
var ErrNotBookable = errors.New("only completed payments can be booked")

// SKR03 accounts used for payment postings.
const (
	AccountCash        = "1000" // Kasse
	AccountChecks      = "1330" // Schecks
	AccountCardTransit = "1360" // Geldtransit
	AccountBank        = "1200" // Bank
	AccountReceivables = "1400" // Forderungen aus Lieferungen und Leistungen
)

var accountNames = map[string]string{
	AccountCash:        "Kasse",
	AccountChecks:      "Schecks",
	AccountCardTransit: "Geldtransit",
	AccountBank:        "Bank",
	AccountReceivables: "Forderungen aus Lieferungen und Leistungen",
}

// maxBookingText is the DATEV limit for Buchungstext.
const maxBookingText = 60

// Posting is the booking of one payment: the money account is debited and
// the customer receivable credited.
type Posting struct {
	DebitAccount      string    `json:"debit_account"`
	DebitAccountName  string    `json:"debit_account_name"`
	CreditAccount     string    `json:"credit_account"`
	CreditAccountName string    `json:"credit_account_name"`
	Amount            float64   `json:"amount"`
	BookingDate       time.Time `json:"booking_date"`
	DocumentNumber    string    `json:"document_number"`   // Belegnummer
	AccountingPeriod  string    `json:"accounting_period"` // MMYYYY
	BookingText       string    `json:"booking_text"`
}

// DebitAccountFor returns the SKR03 account receiving a payment made with method.
func DebitAccountFor(method models.PaymentMethod) string {
	switch method {
	case models.PaymentMethodCash:
		return AccountCash
	case models.PaymentMethodCheck:
		return AccountChecks
	case models.PaymentMethodCreditCard, models.PaymentMethodDebitCard:
		return AccountCardTransit
	default:
		return AccountBank
	}
}

// AccountName returns the SKR03 name of account, or "" if unknown.
func AccountName(account string) string {
	return accountNames[account]
}

// ForPayment books p against inv. An overpayment is booked in full, leaving
// a credit balance on the receivables account.
func ForPayment(p models.Payment, inv models.Invoice) (Posting, error) {
	if p.Status != models.PaymentStatusCompleted {
		return Posting{}, fmt.Errorf("%w: payment %s is %s", ErrNotBookable, p.ReferenceNumber, p.Status)
	}

	debit := DebitAccountFor(p.PaymentMethod)

	return Posting{
		DebitAccount:      debit,
		DebitAccountName:  AccountName(debit),
		CreditAccount:     AccountReceivables,
		CreditAccountName: AccountName(AccountReceivables),
		Amount:            p.Amount,
		BookingDate:       p.PaymentDate,
		DocumentNumber:    p.ReferenceNumber,
		AccountingPeriod:  p.PaymentDate.Format("012006"),
		BookingText:       bookingText(inv.InvoiceNumber, p.ReferenceNumber),
	}, nil
}

func bookingText(invoiceNumber, reference string) string {
	text := fmt.Sprintf("Zahlungseingang %s %s", invoiceNumber, reference)
	if runes := []rune(text); len(runes) > maxBookingText {
		text = string(runes[:maxBookingText])
	}
	return text
}
