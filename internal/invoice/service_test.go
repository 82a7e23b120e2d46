package invoice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"invoicing/internal/idgen"
	"invoicing/pkg/models"
)

type failingGenerator struct {
	idgen.Generator
}

func (failingGenerator) GenerateInvoiceNumber(context.Context, time.Time) (string, error) {
	return "", errors.New("sequence unavailable")
}

func TestService_CreateInvoice(t *testing.T) {
	ctx := context.Background()
	svc := NewService(Limits{MaxLineItemAmount: 10000, MaxInvoiceAmount: 50000}, idgen.NewMemoryGenerator())
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	inv, err := svc.CreateInvoice(ctx, schoolFeeItems(), 0.07, date)
	require.NoError(t, err)

	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, "INV-20250115-0001", inv.InvoiceNumber)
	assert.Equal(t, date, inv.InvoiceDate)
	assert.Equal(t, models.InvoiceStatusPending, inv.Status)
	assert.Equal(t, 589.57, inv.TotalAmount)
	assert.Equal(t, inv.TotalAmount, inv.OutstandingAmount)

	require.Len(t, inv.Items, 2)
	assert.NotEmpty(t, inv.Items[0].ID)
	assert.NotEqual(t, inv.Items[0].ID, inv.Items[1].ID)
	assert.NotEqual(t, inv.ID, inv.Items[0].ID)

	next, err := svc.CreateInvoice(ctx, schoolFeeItems(), 0.07, date)
	require.NoError(t, err)
	assert.Equal(t, "INV-20250115-0002", next.InvoiceNumber)
}

func TestService_CreateInvoice_ValidationPropagates(t *testing.T) {
	svc := NewService(Limits{}, idgen.NewMemoryGenerator())

	_, err := svc.CreateInvoice(context.Background(), nil, 0.07, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyItems)

	_, err = svc.CreateInvoice(context.Background(), schoolFeeItems(), 0.07, time.Time{})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestService_CreateInvoice_NumberingFailure(t *testing.T) {
	svc := NewService(Limits{}, failingGenerator{Generator: idgen.NewMemoryGenerator()})

	_, err := svc.CreateInvoice(context.Background(), schoolFeeItems(), 0.07, time.Now())
	require.Error(t, err)

	var invoiceErr *InvoiceError
	require.True(t, errors.As(err, &invoiceErr))
	assert.Equal(t, "CreateInvoice", invoiceErr.Op)
	assert.ErrorIs(t, err, ErrReferenceNumber)
	assert.False(t, IsValidationError(err))
}

func TestService_Cancel(t *testing.T) {
	svc := NewService(Limits{}, idgen.NewMemoryGenerator())
	inv, err := svc.CreateInvoice(context.Background(), schoolFeeItems(), 0.07, time.Now())
	require.NoError(t, err)

	cancelled := svc.Cancel(inv)

	assert.Equal(t, models.InvoiceStatusCancelled, cancelled.Status)
	assert.Equal(t, models.InvoiceStatusPending, inv.Status)
	assert.Equal(t, inv.OutstandingAmount, cancelled.OutstandingAmount)
}

func TestWrapInvoiceError(t *testing.T) {
	assert.Nil(t, WrapInvoiceError("op", nil, ""))

	validation := NewValidationError("taxRate", 2.0, "must be between 0 and 1")
	assert.Same(t, validation, WrapInvoiceError("op", validation, "details"))

	wrapped := WrapInvoiceError("op", errors.New("boom"), "details")
	assert.EqualError(t, wrapped, "invoice: op failed: details: boom")
}
