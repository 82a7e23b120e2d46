package idgen

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Kind scopes a reference-number counter.
type Kind string

const (
	KindInvoice Kind = "invoice"
	KindReceipt Kind = "receipt"
	KindPayment Kind = "payment"
)

// Kinds lists every counter kind.
var Kinds = []Kind{KindInvoice, KindReceipt, KindPayment}

// Prefix returns the reference-number prefix for the kind.
func (k Kind) Prefix() string {
	switch k {
	case KindInvoice:
		return "INV"
	case KindReceipt:
		return "RCP"
	case KindPayment:
		return "PAY"
	}
	return "REF"
}

// Sequence hands out monotonically increasing numbers per kind, starting at 1.
type Sequence interface {
	Next(ctx context.Context, kind Kind) (int64, error)
	Reset(ctx context.Context) error
}

// MemorySequence keeps counters in process memory. Numbers are unique only
// within one process.
type MemorySequence struct {
	mu       sync.Mutex
	counters map[Kind]int64
}

// NewMemorySequence creates an empty in-memory sequence.
func NewMemorySequence() *MemorySequence {
	return &MemorySequence{counters: make(map[Kind]int64)}
}

// Next implements Sequence.
func (s *MemorySequence) Next(_ context.Context, kind Kind) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[kind]++
	return s.counters[kind], nil
}

// Reset implements Sequence.
func (s *MemorySequence) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters = make(map[Kind]int64)
	return nil
}

// RedisSequence backs counters with Redis INCR so that several processes
// share one numbering space.
type RedisSequence struct {
	client    redis.UniversalClient
	keyPrefix string
}

// DefaultKeyPrefix namespaces the counter keys.
const DefaultKeyPrefix = "invoicing:"

// NewRedisSequence creates a sequence on top of an existing client.
func NewRedisSequence(client redis.UniversalClient, keyPrefix string) *RedisSequence {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisSequence{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Key returns the Redis key holding the counter for kind.
func (s *RedisSequence) Key(kind Kind) string {
	return s.keyPrefix + "seq:" + string(kind)
}

// Next implements Sequence.
func (s *RedisSequence) Next(ctx context.Context, kind Kind) (int64, error) {
	const op = "RedisSequence.Next"

	n, err := s.client.Incr(ctx, s.Key(kind)).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to increment %s counter: %w", op, kind, err)
	}
	return n, nil
}

// Reset implements Sequence.
func (s *RedisSequence) Reset(ctx context.Context) error {
	const op = "RedisSequence.Reset"

	keys := make([]string, 0, len(Kinds))
	for _, kind := range Kinds {
		keys = append(keys, s.Key(kind))
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%s: failed to delete counters: %w", op, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisSequence) Close() error {
	return s.client.Close()
}

var (
	_ Sequence = (*MemorySequence)(nil)
	_ Sequence = (*RedisSequence)(nil)
)
