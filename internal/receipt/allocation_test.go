package receipt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"invoicing/internal/invoice"
	"invoicing/pkg/models"
)

func pricedInvoice(t *testing.T, taxRate float64, items ...models.LineItemInput) models.Invoice {
	t.Helper()
	totals, err := invoice.CalculateInvoiceTotal(items, taxRate, invoice.Limits{})
	require.NoError(t, err)
	return models.Invoice{
		ID:                "inv-1",
		InvoiceNumber:     "INV-20250101-0001",
		Items:             totals.Items,
		Subtotal:          totals.Subtotal,
		TotalTax:          totals.TotalTax,
		TotalAmount:       totals.TotalAmount,
		OutstandingAmount: totals.TotalAmount,
		Status:            models.InvoiceStatusPending,
	}
}

func amounts(items []models.ReceiptItem) []float64 {
	out := make([]float64, len(items))
	for i, item := range items {
		out[i] = item.AmountAllocated
	}
	return out
}

func TestAllocate_ProportionalSplit(t *testing.T) {
	inv := pricedInvoice(t, 0,
		models.LineItemInput{Description: "Books", Quantity: 1, UnitPrice: 100},
		models.LineItemInput{Description: "Uniform", Quantity: 1, UnitPrice: 200},
	)

	items := Allocate(150, inv)

	assert.Equal(t, []float64{50, 100}, amounts(items))
	assert.Equal(t, "Books", items[0].Description)
	assert.Equal(t, "Uniform", items[1].Description)
	assert.Equal(t, 150.0, TotalAllocated(items))
}

func TestAllocate_LastItemAbsorbsRemainder(t *testing.T) {
	inv := pricedInvoice(t, 0,
		models.LineItemInput{Description: "A", Quantity: 1, UnitPrice: 100},
		models.LineItemInput{Description: "B", Quantity: 1, UnitPrice: 100},
		models.LineItemInput{Description: "C", Quantity: 1, UnitPrice: 100},
	)

	items := Allocate(100, inv)

	assert.Equal(t, []float64{33.33, 33.33, 33.34}, amounts(items))
}

func TestAllocate_ExactForAwkwardPrices(t *testing.T) {
	inv := pricedInvoice(t, 0.07,
		models.LineItemInput{Description: "Thirds", Quantity: 3, UnitPrice: 33.33},
		models.LineItemInput{Description: "Sevenths", Quantity: 7, UnitPrice: 14.29},
		models.LineItemInput{Description: "Penny", Quantity: 1, UnitPrice: 0.01},
	)
	require.Less(t, 200.0, inv.TotalAmount)

	for _, amount := range []float64{0.01, 0.07, 1, 13.13, 33.33, 99.99, 100.03, 150.5, 199.99} {
		t.Run(fmt.Sprintf("%.2f", amount), func(t *testing.T) {
			items := Allocate(amount, inv)
			require.Len(t, items, 3)
			assert.Equal(t, amount, TotalAllocated(items))
		})
	}
}

func TestAllocate_RemainderCanGoNegative(t *testing.T) {
	inv := pricedInvoice(t, 0,
		models.LineItemInput{Description: "Workbook", Quantity: 1, UnitPrice: 1},
		models.LineItemInput{Description: "Pencils", Quantity: 1, UnitPrice: 1},
		models.LineItemInput{Description: "Sample", Quantity: 1, UnitPrice: 0},
	)

	items := Allocate(0.01, inv)

	assert.Equal(t, []float64{0.01, 0.01, -0.01}, amounts(items))
	assert.Equal(t, 0.01, TotalAllocated(items))
}

func TestAllocate_FullPayment(t *testing.T) {
	inv := pricedInvoice(t, 0.07,
		models.LineItemInput{Description: "Monthly Fee", Quantity: 1, UnitPrice: 500},
		models.LineItemInput{Description: "Activity Fee", Quantity: 2, UnitPrice: 25.50},
	)

	items := Allocate(589.57, inv)

	assert.Equal(t, []float64{535.00, 54.57}, amounts(items))
	assert.Equal(t, 589.57, TotalAllocated(items))
}

func TestAllocate_OverpaymentAllocatesLineTotalsVerbatim(t *testing.T) {
	inv := pricedInvoice(t, 0,
		models.LineItemInput{Description: "A", Quantity: 1, UnitPrice: 400},
		models.LineItemInput{Description: "B", Quantity: 1, UnitPrice: 600},
	)

	items := Allocate(1200, inv)

	assert.Equal(t, []float64{400, 600}, amounts(items))
	assert.Equal(t, 1000.0, TotalAllocated(items))
}

func TestAllocate_SingleItem(t *testing.T) {
	inv := pricedInvoice(t, 0.19, models.LineItemInput{Description: "Only", Quantity: 3, UnitPrice: 9.99})

	items := Allocate(10, inv)

	assert.Equal(t, []float64{10}, amounts(items))
}

func TestAllocate_NoItems(t *testing.T) {
	items := Allocate(10, models.Invoice{ID: "empty"})
	assert.Empty(t, items)
}

func TestAllocate_DoesNotMutateInvoice(t *testing.T) {
	inv := pricedInvoice(t, 0,
		models.LineItemInput{Description: "A", Quantity: 1, UnitPrice: 100},
		models.LineItemInput{Description: "B", Quantity: 1, UnitPrice: 200},
	)
	snapshot := inv.Clone()

	_ = Allocate(150, inv)

	assert.Equal(t, snapshot, inv)
}
