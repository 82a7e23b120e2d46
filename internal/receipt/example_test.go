package receipt_test

import (
	"context"
	"fmt"
	"os"
	"time"

	"invoicing/internal/idgen"
	"invoicing/internal/invoice"
	"invoicing/internal/payment"
	"invoicing/internal/receipt"
	"invoicing/pkg/models"
)

func ExampleAllocate() {
	inv := models.Invoice{
		ID:          "inv-1",
		TotalAmount: 300,
		Items: []models.InvoiceItem{
			{Description: "Books", LineTotal: 100},
			{Description: "Uniform", LineTotal: 200},
		},
	}

	for _, item := range receipt.Allocate(150, inv) {
		fmt.Printf("%s %.2f\n", item.Description, item.AmountAllocated)
	}

	// Output:
	// Books 50.00
	// Uniform 100.00
}

func ExampleRender() {
	ctx := context.Background()
	ids := idgen.NewMemoryGenerator()
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	inv, err := invoice.NewService(invoice.Limits{}, ids).CreateInvoice(ctx, []models.LineItemInput{
		{Description: "Books", Quantity: 1, UnitPrice: 100},
		{Description: "Uniform", Quantity: 1, UnitPrice: 200},
	}, 0, date)
	if err != nil {
		fmt.Println(err)
		return
	}

	result := payment.NewProcessor(payment.Limits{}, ids).ProcessPayment(ctx, inv, 150, models.PaymentMethodCash, date)
	r, err := receipt.NewGenerator(ids).GenerateReceipt(ctx, result.Payment, result.Invoice)
	if err != nil {
		fmt.Println(err)
		return
	}

	_ = receipt.Render(os.Stdout, r)

	// Output:
	// ==================================================
	//                      RECEIPT
	// ==================================================
	// Receipt number:     RCP-20250115-0001
	// Date:               2025-01-15
	// Payment reference:  PAY-20250115-0001
	// Payment method:     CASH
	// --------------------------------------------------
	// Books                                        50.00
	// Uniform                                     100.00
	// --------------------------------------------------
	// Total paid                                  150.00
	// Remaining balance                           150.00
	// ==================================================
}
