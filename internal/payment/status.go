package payment

import "invoicing/pkg/models"

// DeriveStatus maps an outstanding amount to an invoice status. CANCELLED is
// never derived; it is assigned externally and checked before any payment.
func DeriveStatus(outstanding, total float64) models.InvoiceStatus {
	switch {
	case outstanding < 0:
		return models.InvoiceStatusOverpaid
	case outstanding == 0:
		return models.InvoiceStatusPaid
	case outstanding < total:
		return models.InvoiceStatusPartiallyPaid
	default:
		return models.InvoiceStatusPending
	}
}
