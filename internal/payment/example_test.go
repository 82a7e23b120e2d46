package payment_test

import (
	"context"
	"fmt"
	"time"

	"invoicing/internal/idgen"
	"invoicing/internal/invoice"
	"invoicing/internal/payment"
	"invoicing/pkg/models"
)

// Example threads an invoice through two payments and a rejected attempt.
func Example() {
	ctx := context.Background()
	ids := idgen.NewMemoryGenerator()
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	inv, err := invoice.NewService(invoice.Limits{}, ids).CreateInvoice(ctx, []models.LineItemInput{
		{Description: "Tuition", Quantity: 1, UnitPrice: 1000},
	}, 0, date)
	if err != nil {
		fmt.Println(err)
		return
	}

	processor := payment.NewProcessor(payment.Limits{MinAmount: 0.01, MaxAmount: 10000}, ids)

	for _, amount := range []float64{300, -50, 750} {
		result := processor.ProcessPayment(ctx, inv, amount, models.PaymentMethodCash, date)
		if !result.Success {
			fmt.Printf("%s %s\n", result.Payment.ReferenceNumber, result.Payment.Status)
			continue
		}
		inv = result.Invoice
		fmt.Printf("%s %s outstanding=%.2f %s\n",
			result.Payment.ReferenceNumber, result.Payment.Status, inv.OutstandingAmount, inv.Status)
	}

	// Output:
	// PAY-20250115-0001 COMPLETED outstanding=700.00 PARTIALLY_PAID
	// PAY-20250115-0002 FAILED
	// PAY-20250115-0003 COMPLETED outstanding=-50.00 OVERPAID
}
