package models

import "time"

// InvoiceStatus is the settlement state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending       InvoiceStatus = "PENDING"        // No payment applied yet
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID" // 0 < outstanding < total
	InvoiceStatusPaid          InvoiceStatus = "PAID"           // outstanding == 0
	InvoiceStatusOverpaid      InvoiceStatus = "OVERPAID"       // outstanding < 0
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"      // Set externally, never derived
)

// IsValid checks if the status is a known InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPartiallyPaid, InvoiceStatusPaid,
		InvoiceStatusOverpaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsSettled reports whether no further payment is required.
func (s InvoiceStatus) IsSettled() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusOverpaid || s == InvoiceStatusCancelled
}

// LineItemInput is a raw line item as supplied by the caller before pricing.
type LineItemInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// InvoiceItem is a priced line item. Immutable once produced by totaling.
type InvoiceItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"` // quantity*unit price plus tax
	TaxRate     float64 `json:"tax_rate"`
	TaxAmount   float64 `json:"tax_amount"`
}

type Invoice struct {
	// Identifiers
	ID            string `json:"id"`             // Opaque unique id
	InvoiceNumber string `json:"invoice_number"` // INV-YYYYMMDD-NNNN

	InvoiceDate time.Time `json:"invoice_date"`

	// Items are ordered; the last item absorbs allocation rounding slack.
	Items []InvoiceItem `json:"items"`

	// Amounts, each rounded to two decimals
	Subtotal          float64 `json:"subtotal"`
	TotalTax          float64 `json:"total_tax"`
	TotalAmount       float64 `json:"total_amount"`
	OutstandingAmount float64 `json:"outstanding_amount"` // May go negative on overpayment

	Status InvoiceStatus `json:"status"`
}

// Clone returns a copy of the invoice that shares no item storage with the original.
func (i Invoice) Clone() Invoice {
	clone := i
	if i.Items != nil {
		clone.Items = make([]InvoiceItem, len(i.Items))
		copy(clone.Items, i.Items)
	}
	return clone
}
