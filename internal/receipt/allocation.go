package receipt

import (
	"invoicing/internal/money"
	"invoicing/pkg/models"
)

// Allocate distributes amount across the invoice's line items.
//
// When amount covers the invoice total, every item is allocated its full
// line total. An overpayment is therefore not spread out: the allocations
// sum to the invoice total, which is less than amount.
//
// Otherwise each item except the last receives its proportional share
// lineTotal*amount/total, rounded to cents, and the last item receives
// whatever remains. The allocations then sum to amount exactly, with the
// last item absorbing all rounding slack. That slack is not clamped: when
// the earlier shares round up past amount, the last item's allocation is
// negative (1.00, 1.00, 0.00 paid with 0.01 allocates 0.01, 0.01, -0.01).
func Allocate(amount float64, inv models.Invoice) []models.ReceiptItem {
	allocations := make([]models.ReceiptItem, len(inv.Items))
	if len(inv.Items) == 0 {
		return allocations
	}

	if amount >= inv.TotalAmount {
		for i, item := range inv.Items {
			allocations[i] = models.ReceiptItem{
				Description:     item.Description,
				AmountAllocated: item.LineTotal,
			}
		}
		return allocations
	}

	last := len(inv.Items) - 1
	allocated := make([]float64, 0, last)

	for i, item := range inv.Items[:last] {
		share := money.Proportion(item.LineTotal, amount, inv.TotalAmount)
		allocated = append(allocated, share)
		allocations[i] = models.ReceiptItem{
			Description:     item.Description,
			AmountAllocated: share,
		}
	}

	allocations[last] = models.ReceiptItem{
		Description:     inv.Items[last].Description,
		AmountAllocated: money.Sub(amount, money.SumRounded(allocated...)),
	}

	return allocations
}

// TotalAllocated sums the allocated amounts of items.
func TotalAllocated(items []models.ReceiptItem) float64 {
	amounts := make([]float64, len(items))
	for i, item := range items {
		amounts[i] = item.AmountAllocated
	}
	return money.SumRounded(amounts...)
}
