// Package idgen generates opaque identifiers and human-readable reference
// numbers of the form PREFIX-YYYYMMDD-NNNN.
package idgen

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Generator supplies ids and reference numbers to the invoicing services.
type Generator interface {
	GenerateID() string
	GenerateInvoiceNumber(ctx context.Context, date time.Time) (string, error)
	GenerateReceiptNumber(ctx context.Context, date time.Time) (string, error)
	GeneratePaymentNumber(ctx context.Context, date time.Time) (string, error)
}

// SequenceGenerator implements Generator with random UUIDs and a Sequence.
type SequenceGenerator struct {
	seq Sequence
}

// NewGenerator creates a generator numbering from seq.
func NewGenerator(seq Sequence) *SequenceGenerator {
	return &SequenceGenerator{seq: seq}
}

// NewMemoryGenerator is shorthand for a generator over a fresh MemorySequence.
func NewMemoryGenerator() *SequenceGenerator {
	return NewGenerator(NewMemorySequence())
}

// GenerateID returns a random UUID string.
func (g *SequenceGenerator) GenerateID() string {
	return uuid.NewString()
}

func (g *SequenceGenerator) GenerateInvoiceNumber(ctx context.Context, date time.Time) (string, error) {
	return g.number(ctx, KindInvoice, date)
}

func (g *SequenceGenerator) GenerateReceiptNumber(ctx context.Context, date time.Time) (string, error) {
	return g.number(ctx, KindReceipt, date)
}

func (g *SequenceGenerator) GeneratePaymentNumber(ctx context.Context, date time.Time) (string, error) {
	return g.number(ctx, KindPayment, date)
}

// Reset restarts every counter at 1.
func (g *SequenceGenerator) Reset(ctx context.Context) error {
	return g.seq.Reset(ctx)
}

func (g *SequenceGenerator) number(ctx context.Context, kind Kind, date time.Time) (string, error) {
	n, err := g.seq.Next(ctx, kind)
	if err != nil {
		return "", err
	}
	return FormatNumber(kind, date, n), nil
}

// FormatNumber renders a reference number, e.g. INV-20250115-0001.
func FormatNumber(kind Kind, date time.Time, n int64) string {
	return fmt.Sprintf("%s-%s-%04d", kind.Prefix(), date.Format("20060102"), n)
}

var _ Generator = (*SequenceGenerator)(nil)
