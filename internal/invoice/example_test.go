package invoice_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoicing/internal/idgen"
	"invoicing/internal/invoice"
	"invoicing/pkg/models"
)

// ExampleCalculateInvoiceTotal prices two line items at 7% tax.
func ExampleCalculateInvoiceTotal() {
	totals, err := invoice.CalculateInvoiceTotal([]models.LineItemInput{
		{Description: "Monthly Fee", Quantity: 1, UnitPrice: 500.00},
		{Description: "Activity Fee", Quantity: 2, UnitPrice: 25.50},
	}, 0.07, invoice.Limits{})
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, item := range totals.Items {
		fmt.Printf("%-12s %8.2f (tax %.2f)\n", item.Description, item.LineTotal, item.TaxAmount)
	}
	fmt.Printf("subtotal %.2f, tax %.2f, total %.2f\n", totals.Subtotal, totals.TotalTax, totals.TotalAmount)

	// Output:
	// Monthly Fee    535.00 (tax 35.00)
	// Activity Fee    54.57 (tax 3.57)
	// subtotal 551.00, tax 38.57, total 589.57
}

// ExampleService_CreateInvoice shows numbering and the initial invoice state.
func ExampleService_CreateInvoice() {
	svc := invoice.NewService(invoice.Limits{MaxLineItemAmount: 100000, MaxInvoiceAmount: 1000000}, idgen.NewMemoryGenerator())

	inv, err := svc.CreateInvoice(context.Background(), []models.LineItemInput{
		{Description: "Consulting", Quantity: 10, UnitPrice: 100},
	}, 0, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(inv.InvoiceNumber, inv.Status, inv.OutstandingAmount)

	// Output:
	// INV-20250115-0001 PENDING 1000
}

// Example_validation demonstrates inspecting a rejected line item.
func Example_validation() {
	_, err := invoice.CalculateInvoiceTotal([]models.LineItemInput{
		{Description: "Widget", Quantity: 0, UnitPrice: 9.99},
	}, 0.07, invoice.Limits{})

	var validationErr *invoice.ValidationError
	if errors.As(err, &validationErr) {
		fmt.Println("rejected field:", validationErr.Field)
	}

	// Output:
	// rejected field: items[0].quantity
}
