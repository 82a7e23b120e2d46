package models

import "time"

// ReceiptItem is the share of a payment attributed to one invoice line.
type ReceiptItem struct {
	Description     string  `json:"description"`
	AmountAllocated float64 `json:"amount_allocated"`
}

// Receipt is derived once per completed payment and is read-only.
type Receipt struct {
	ID               string        `json:"id"`
	PaymentID        string        `json:"payment_id"`
	InvoiceID        string        `json:"invoice_id"`
	ReceiptNumber    string        `json:"receipt_number"`
	ReceiptDate      time.Time     `json:"receipt_date"`      // Payment date
	TotalPaid        float64       `json:"total_paid"`        // Raw payment amount
	RemainingBalance float64       `json:"remaining_balance"` // Invoice outstanding after the payment
	PaymentMethod    PaymentMethod `json:"payment_method"`
	PaymentReference string        `json:"payment_reference"`
	Items            []ReceiptItem `json:"items"`
}
