package settlement

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"invoicing/internal/idgen"
	"invoicing/internal/invoice"
	"invoicing/internal/payment"
	"invoicing/pkg/models"
	"invoicing/pkg/services"
)

func setupSettlement(t *testing.T) (*Settler, []models.Invoice) {
	t.Helper()
	ctx := context.Background()
	engine := services.NewEngine(invoice.Limits{}, payment.Limits{MinAmount: 0.01, MaxAmount: 10000}, idgen.NewMemoryGenerator())

	var invoices []models.Invoice
	for _, items := range [][]models.LineItemInput{
		{{Description: "Books", Quantity: 1, UnitPrice: 100}, {Description: "Uniform", Quantity: 1, UnitPrice: 200}},
		{{Description: "Tuition", Quantity: 1, UnitPrice: 1000}},
		{{Description: "Trip", Quantity: 1, UnitPrice: 80}},
	} {
		inv, err := engine.Invoices.CreateInvoice(ctx, items, 0, date(2025, 1, 15))
		require.NoError(t, err)
		invoices = append(invoices, inv)
	}

	return NewSettler(engine), invoices
}

func TestSettler_Apply(t *testing.T) {
	settler, invoices := setupSettlement(t)
	snapshot := []models.Invoice{invoices[0].Clone(), invoices[1].Clone(), invoices[2].Clone()}

	rows := []PaymentRow{
		{Row: 2, Date: date(2025, 2, 1), InvoiceNumber: "INV-20250115-0001", Method: models.PaymentMethodCash, Amount: 150},
		{Row: 3, Date: date(2025, 1, 20), InvoiceNumber: "INV-20250115-0001", Method: models.PaymentMethodCash, Amount: 100},
		{Row: 4, Date: date(2025, 1, 20), InvoiceNumber: "INV-20991231-9999", Method: models.PaymentMethodCash, Amount: 5},
		{Row: 5, Date: date(2025, 1, 25), InvoiceNumber: "INV-20250115-0003", Method: "BITCOIN", Amount: 50},
		{Row: 6, Date: date(2025, 1, 25), InvoiceNumber: "INV-20250115-0002", Method: models.PaymentMethodBankTransfer, Amount: 1000},
	}

	report, err := settler.Apply(context.Background(), invoices, rows)
	require.NoError(t, err)

	assert.Equal(t, snapshot, invoices)

	require.Len(t, report.Invoices, 3)
	assert.Equal(t, 50.0, report.Invoices[0].OutstandingAmount)
	assert.Equal(t, models.InvoiceStatusPartiallyPaid, report.Invoices[0].Status)
	assert.Equal(t, 0.0, report.Invoices[1].OutstandingAmount)
	assert.Equal(t, models.InvoiceStatusPaid, report.Invoices[1].Status)
	assert.Equal(t, invoices[2], report.Invoices[2])

	assert.Equal(t, 3, report.Applied())
	assert.Equal(t, 1, report.Failed())
	require.Len(t, report.Unmatched, 1)
	assert.Equal(t, 4, report.Unmatched[0].Row)

	require.Len(t, report.Entries, 4)
	assert.Equal(t, "PAY-20250120-0001", report.Entries[0].Payment.ReferenceNumber)
	assert.Equal(t, 200.0, report.Entries[0].Invoice.OutstandingAmount)
	assert.Equal(t, models.PaymentStatusFailed, report.Entries[1].Payment.Status)
	assert.Nil(t, report.Entries[1].Receipt)
	assert.Error(t, report.Entries[1].Err)
	assert.Equal(t, "INV-20250115-0002", report.Entries[2].Invoice.InvoiceNumber)
	require.NotNil(t, report.Entries[3].Receipt)
	assert.Equal(t, "RCP-20250201-0003", report.Entries[3].Receipt.ReceiptNumber)
	assert.Equal(t, 50.0, report.Entries[3].Receipt.RemainingBalance)
	assert.Equal(t, []models.ReceiptItem{
		{Description: "Books", AmountAllocated: 50},
		{Description: "Uniform", AmountAllocated: 100},
	}, report.Entries[3].Receipt.Items)

	updated := report.Updated()
	require.Len(t, updated, 2)
	assert.Equal(t, "INV-20250115-0001", updated[0].InvoiceNumber)
	assert.Equal(t, "INV-20250115-0002", updated[1].InvoiceNumber)
}

func TestSettler_Apply_CancelledInvoiceRejectsPayments(t *testing.T) {
	settler, invoices := setupSettlement(t)
	invoices[2] = invoice.NewService(invoice.Limits{}, idgen.NewMemoryGenerator()).Cancel(invoices[2])

	report, err := settler.Apply(context.Background(), invoices, []PaymentRow{
		{Row: 2, Date: date(2025, 1, 20), InvoiceNumber: "INV-20250115-0003", Method: models.PaymentMethodCash, Amount: 80},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed())
	assert.ErrorIs(t, report.Entries[0].Err, payment.ErrInvoiceCancelled)
	assert.Equal(t, models.InvoiceStatusCancelled, report.Invoices[2].Status)
	assert.Empty(t, report.Updated())
}

func TestSettler_Apply_LogsRejectedRowWithInvoice(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() { log.Logger = previous })
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	settler, invoices := setupSettlement(t)
	_, err := settler.Apply(context.Background(), invoices, []PaymentRow{
		{Row: 7, Date: date(2025, 1, 20), InvoiceNumber: "INV-20250115-0003", Method: "BITCOIN", Amount: 10},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"component":"settlement"`)
	assert.Contains(t, out, `"invoice_number":"INV-20250115-0003"`)
	assert.Contains(t, out, `"row":7`)
	assert.Contains(t, out, "Payment rejected")
}

func TestSettler_Apply_DuplicateInvoiceNumbers(t *testing.T) {
	settler, invoices := setupSettlement(t)

	_, err := settler.Apply(context.Background(), append(invoices, invoices[0]), nil)
	assert.ErrorContains(t, err, "duplicate invoice number INV-20250115-0001")
}

func TestSettler_Apply_Cancelled(t *testing.T) {
	settler, invoices := setupSettlement(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := settler.Apply(ctx, invoices, []PaymentRow{
		{Row: 2, Date: date(2025, 1, 20), InvoiceNumber: "INV-20250115-0001", Method: models.PaymentMethodCash, Amount: 80},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, invoices, report.Invoices)
	assert.Empty(t, report.Entries)
}
