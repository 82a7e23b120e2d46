package invoice

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"invoicing/internal/money"
	"invoicing/pkg/models"
)

func schoolFeeItems() []models.LineItemInput {
	return []models.LineItemInput{
		{Description: "Monthly Fee", Quantity: 1, UnitPrice: 500.00},
		{Description: "Activity Fee", Quantity: 2, UnitPrice: 25.50},
	}
}

func TestCalculateInvoiceTotal_Scenario(t *testing.T) {
	totals, err := CalculateInvoiceTotal(schoolFeeItems(), 0.07, Limits{})
	require.NoError(t, err)

	assert.Equal(t, 551.00, totals.Subtotal)
	assert.Equal(t, 38.57, totals.TotalTax)
	assert.Equal(t, 589.57, totals.TotalAmount)

	require.Len(t, totals.Items, 2)
	assert.Equal(t, 535.00, totals.Items[0].LineTotal)
	assert.Equal(t, 35.00, totals.Items[0].TaxAmount)
	assert.Equal(t, 54.57, totals.Items[1].LineTotal)
	assert.Equal(t, 3.57, totals.Items[1].TaxAmount)
	assert.Equal(t, 0.07, totals.Items[1].TaxRate)
	assert.Empty(t, totals.Items[0].ID)
}

func TestCalculateInvoiceTotal_IsPure(t *testing.T) {
	items := schoolFeeItems()

	first, err := CalculateInvoiceTotal(items, 0.07, Limits{})
	require.NoError(t, err)
	second, err := CalculateInvoiceTotal(items, 0.07, Limits{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, schoolFeeItems(), items)
}

func TestCalculateInvoiceTotal_Conservation(t *testing.T) {
	cases := [][]models.LineItemInput{
		{{Description: "A", Quantity: 3, UnitPrice: 33.33}},
		{{Description: "A", Quantity: 7, UnitPrice: 14.29}, {Description: "B", Quantity: 1, UnitPrice: 0.01}},
		{{Description: "A", Quantity: 0.5, UnitPrice: 19.99}, {Description: "B", Quantity: 1.25, UnitPrice: 3.33}},
		{{Description: "A", Quantity: 13, UnitPrice: 7.77}, {Description: "B", Quantity: 2, UnitPrice: 0.99}, {Description: "C", Quantity: 1, UnitPrice: 1234.56}},
	}
	rates := []float64{0, 0.05, 0.07, 0.19, 0.255, 1}

	for _, items := range cases {
		for _, rate := range rates {
			totals, err := CalculateInvoiceTotal(items, rate, Limits{})
			require.NoError(t, err)

			assert.Equal(t, totals.TotalAmount, money.Add(totals.Subtotal, totals.TotalTax))

			lineTotals := make([]float64, 0, len(totals.Items))
			for _, item := range totals.Items {
				lineTotals = append(lineTotals, item.LineTotal)
			}
			assert.Equal(t, totals.TotalAmount, money.SumRounded(lineTotals...))
		}
	}
}

func TestCalculateInvoiceTotal_ZeroUnitPrice(t *testing.T) {
	totals, err := CalculateInvoiceTotal([]models.LineItemInput{
		{Description: "Complimentary", Quantity: 4, UnitPrice: 0},
	}, 0.07, Limits{})
	require.NoError(t, err)

	assert.Equal(t, 0.0, totals.Items[0].LineTotal)
	assert.Equal(t, 0.0, totals.Items[0].TaxAmount)
	assert.Equal(t, 0.0, totals.TotalAmount)
}

func TestCalculateInvoiceTotal_Validation(t *testing.T) {
	tests := []struct {
		name    string
		items   []models.LineItemInput
		taxRate float64
		limits  Limits
		field   string
		target  error
	}{
		{
			name:   "no items",
			items:  nil,
			field:  "items",
			target: ErrEmptyItems,
		},
		{
			name:  "blank description",
			items: []models.LineItemInput{{Description: "   ", Quantity: 1, UnitPrice: 1}},
			field: "items[0].description",
		},
		{
			name:  "zero quantity",
			items: []models.LineItemInput{{Description: "A", Quantity: 0, UnitPrice: 1}},
			field: "items[0].quantity",
		},
		{
			name:  "negative quantity",
			items: []models.LineItemInput{{Description: "A", Quantity: -1, UnitPrice: 1}},
			field: "items[0].quantity",
		},
		{
			name:  "infinite quantity",
			items: []models.LineItemInput{{Description: "A", Quantity: math.Inf(1), UnitPrice: 1}},
			field: "items[0].quantity",
		},
		{
			name:  "negative unit price",
			items: []models.LineItemInput{{Description: "A", Quantity: 1, UnitPrice: 1}, {Description: "B", Quantity: 1, UnitPrice: -0.01}},
			field: "items[1].unitPrice",
		},
		{
			name:  "NaN unit price",
			items: []models.LineItemInput{{Description: "A", Quantity: 1, UnitPrice: math.NaN()}},
			field: "items[0].unitPrice",
		},
		{
			name:    "tax rate above one",
			items:   schoolFeeItems(),
			taxRate: 1.5,
			field:   "taxRate",
		},
		{
			name:    "negative tax rate",
			items:   schoolFeeItems(),
			taxRate: -0.1,
			field:   "taxRate",
		},
		{
			name:   "line item limit",
			items:  []models.LineItemInput{{Description: "A", Quantity: 2, UnitPrice: 600}},
			limits: Limits{MaxLineItemAmount: 1000},
			field:  "items[0].lineSubtotal",
			target: ErrLimitExceeded,
		},
		{
			name:    "invoice limit",
			items:   schoolFeeItems(),
			taxRate: 0.07,
			limits:  Limits{MaxLineItemAmount: 1000, MaxInvoiceAmount: 500},
			field:   "totalAmount",
			target:  ErrLimitExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateInvoiceTotal(tt.items, tt.taxRate, tt.limits)
			require.Error(t, err)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.field, validationErr.Field)
			assert.True(t, IsValidationError(err))
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestCalculateInvoiceTotal_LimitBoundaryIsInclusive(t *testing.T) {
	totals, err := CalculateInvoiceTotal([]models.LineItemInput{
		{Description: "A", Quantity: 1, UnitPrice: 1000},
	}, 0, Limits{MaxLineItemAmount: 1000, MaxInvoiceAmount: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, totals.TotalAmount)
}

func TestValidationError_Message(t *testing.T) {
	err := NewValidationError("items[0].quantity", 0.0, "must be a positive finite number")
	assert.Equal(t, "validation error for field 'items[0].quantity': must be a positive finite number (value: 0)", err.Error())
}
