package invoice

import (
	"fmt"
	"strings"

	"invoicing/internal/money"
	"invoicing/pkg/models"
)

// Limits bounds invoice amounts. A zero limit disables the check.
type Limits struct {
	MaxLineItemAmount float64
	MaxInvoiceAmount  float64
}

// Totals is the result of pricing a set of line items.
type Totals struct {
	Items       []models.InvoiceItem
	Subtotal    float64
	TotalTax    float64
	TotalAmount float64
}

// CalculateInvoiceTotal prices raw line items at taxRate and aggregates the
// invoice totals. It is pure: item ids are left empty for the caller to assign.
//
// Each line subtotal, tax amount and line total is rounded on its own; the
// aggregates are sums of those rounded values, so Subtotal+TotalTax always
// equals TotalAmount to the cent.
func CalculateInvoiceTotal(items []models.LineItemInput, taxRate float64, limits Limits) (Totals, error) {
	if len(items) == 0 {
		return Totals{}, &ValidationError{
			Field:   "items",
			Value:   0,
			Message: "at least one item is required",
			Err:     ErrEmptyItems,
		}
	}
	if err := ValidateTaxRate(taxRate); err != nil {
		return Totals{}, err
	}

	priced := make([]models.InvoiceItem, 0, len(items))
	lineSubtotals := make([]float64, 0, len(items))
	taxAmounts := make([]float64, 0, len(items))

	for i, input := range items {
		item, lineSubtotal, err := priceItem(i, input, taxRate, limits)
		if err != nil {
			return Totals{}, err
		}
		priced = append(priced, item)
		lineSubtotals = append(lineSubtotals, lineSubtotal)
		taxAmounts = append(taxAmounts, item.TaxAmount)
	}

	subtotal := money.SumRounded(lineSubtotals...)
	totalTax := money.SumRounded(taxAmounts...)
	totalAmount := money.Add(subtotal, totalTax)

	if !money.IsFinite(totalAmount) {
		return Totals{}, NewValidationError("totalAmount", totalAmount, "must be a finite number")
	}
	if limits.MaxInvoiceAmount > 0 && totalAmount > limits.MaxInvoiceAmount {
		return Totals{}, NewLimitError("totalAmount", totalAmount, limits.MaxInvoiceAmount)
	}

	return Totals{
		Items:       priced,
		Subtotal:    subtotal,
		TotalTax:    totalTax,
		TotalAmount: totalAmount,
	}, nil
}

func priceItem(index int, input models.LineItemInput, taxRate float64, limits Limits) (models.InvoiceItem, float64, error) {
	field := func(name string) string {
		return fmt.Sprintf("items[%d].%s", index, name)
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return models.InvoiceItem{}, 0, NewValidationError(field("description"), input.Description, "must not be empty")
	}
	if !money.IsFinite(input.Quantity) || input.Quantity <= 0 {
		return models.InvoiceItem{}, 0, NewValidationError(field("quantity"), input.Quantity, "must be a positive finite number")
	}
	if !money.IsFinite(input.UnitPrice) || input.UnitPrice < 0 {
		return models.InvoiceItem{}, 0, NewValidationError(field("unitPrice"), input.UnitPrice, "must be a non-negative finite number")
	}

	lineSubtotal := money.Mul(input.Quantity, input.UnitPrice)
	if !money.IsFinite(lineSubtotal) {
		return models.InvoiceItem{}, 0, NewValidationError(field("lineSubtotal"), lineSubtotal, "must be a finite number")
	}
	if limits.MaxLineItemAmount > 0 && lineSubtotal > limits.MaxLineItemAmount {
		return models.InvoiceItem{}, 0, NewLimitError(field("lineSubtotal"), lineSubtotal, limits.MaxLineItemAmount)
	}

	taxAmount := money.TaxAmount(lineSubtotal, taxRate)

	return models.InvoiceItem{
		Description: description,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		LineTotal:   money.Add(lineSubtotal, taxAmount),
		TaxRate:     taxRate,
		TaxAmount:   taxAmount,
	}, lineSubtotal, nil
}

// ValidateTaxRate checks that rate is a finite fraction in [0,1].
func ValidateTaxRate(rate float64) error {
	if !money.IsFinite(rate) || rate < 0 || rate > 1 {
		return NewValidationError("taxRate", rate, "must be between 0 and 1")
	}
	return nil
}
