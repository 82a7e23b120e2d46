package receipt

import (
	"fmt"
	"io"
	"strings"

	"invoicing/internal/money"
	"invoicing/pkg/models"
)

const (
	lineWidth   = 50
	amountWidth = 14
	dateLayout  = "2006-01-02"
)

// Render writes a plain-text receipt to w.
func Render(w io.Writer, r models.Receipt) error {
	var b strings.Builder

	header(&b, "RECEIPT")
	field(&b, "Receipt number", r.ReceiptNumber)
	field(&b, "Date", r.ReceiptDate.Format(dateLayout))
	field(&b, "Payment reference", r.PaymentReference)
	field(&b, "Payment method", r.PaymentMethod.String())
	b.WriteString(strings.Repeat("-", lineWidth) + "\n")

	for _, item := range r.Items {
		amountLine(&b, item.Description, item.AmountAllocated)
	}

	b.WriteString(strings.Repeat("-", lineWidth) + "\n")
	amountLine(&b, "Total paid", r.TotalPaid)
	amountLine(&b, "Remaining balance", r.RemainingBalance)
	b.WriteString(strings.Repeat("=", lineWidth) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderInvoice writes a plain-text invoice summary to w.
func RenderInvoice(w io.Writer, inv models.Invoice) error {
	var b strings.Builder

	header(&b, "INVOICE")
	field(&b, "Invoice number", inv.InvoiceNumber)
	field(&b, "Date", inv.InvoiceDate.Format(dateLayout))
	field(&b, "Status", inv.Status.String())
	b.WriteString(strings.Repeat("-", lineWidth) + "\n")

	for _, item := range inv.Items {
		label := fmt.Sprintf("%s (%s x %s)", item.Description,
			trimAmount(item.Quantity), money.Format(item.UnitPrice))
		amountLine(&b, label, item.LineTotal)
	}

	b.WriteString(strings.Repeat("-", lineWidth) + "\n")
	amountLine(&b, "Subtotal", inv.Subtotal)
	amountLine(&b, "Tax", inv.TotalTax)
	amountLine(&b, "Total", inv.TotalAmount)
	amountLine(&b, "Outstanding", inv.OutstandingAmount)
	b.WriteString(strings.Repeat("=", lineWidth) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func header(b *strings.Builder, title string) {
	b.WriteString(strings.Repeat("=", lineWidth) + "\n")
	fmt.Fprintf(b, "%*s\n", (lineWidth+len(title))/2, title)
	b.WriteString(strings.Repeat("=", lineWidth) + "\n")
}

func field(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%-20s%s\n", label+":", value)
}

// amountLine writes label and a right-aligned amount, truncating labels that
// would collide with the amount column.
func amountLine(b *strings.Builder, label string, amount float64) {
	maxLabel := lineWidth - amountWidth
	if runes := []rune(label); len(runes) > maxLabel {
		label = string(runes[:maxLabel-3]) + "..."
	}
	fmt.Fprintf(b, "%-*s%*s\n", maxLabel, label, amountWidth, money.Format(amount))
}

func trimAmount(x float64) string {
	s := fmt.Sprintf("%.4f", x)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
