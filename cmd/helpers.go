package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"invoicing/internal/config"
	"invoicing/internal/idgen"
	"invoicing/internal/invoice"
	"invoicing/internal/payment"
	"invoicing/internal/receipt"
	"invoicing/pkg/services"
)

const dateLayout = "2006-01-02"

// newEngine builds the engine on the configured sequence backend. The
// returned function releases the backend.
func newEngine(ctx context.Context, log zerolog.Logger) (*services.Engine, *idgen.SequenceGenerator, func(), error) {
	seq, closeSeq, err := newSequence(ctx, log)
	if err != nil {
		return nil, nil, nil, err
	}
	ids := idgen.NewGenerator(seq)
	return services.NewEngine(cfg.InvoiceLimits(), cfg.PaymentLimits(), ids), ids, closeSeq, nil
}

func newSequence(ctx context.Context, log zerolog.Logger) (idgen.Sequence, func(), error) {
	if cfg.SequenceBackend != config.SequenceRedis {
		log.Debug().Msg("Using in-memory reference sequence")
		return idgen.NewMemorySequence(), func() {}, nil
	}

	client := redis.NewClient(cfg.RedisOptions())
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		log.Error().
			Err(err).
			Str("addr", cfg.RedisAddr).
			Msg("Redis sequence backend unavailable")
		return nil, nil, fmt.Errorf("redis sequence backend unavailable at %s: %w", cfg.RedisAddr, err)
	}

	log.Debug().
		Str("addr", cfg.RedisAddr).
		Str("key_prefix", cfg.RedisKeyPrefix).
		Msg("Using Redis reference sequence")

	seq := idgen.NewRedisSequence(client, cfg.RedisKeyPrefix)
	return seq, func() {
		if err := seq.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}, nil
}

// createContext creates a context with timeout and signal handling
func createContext(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// parseDate parses a YYYY-MM-DD flag value. An empty value means today.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		y, m, d := time.Now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", value, err)
	}
	return date, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return nil
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty.
func writeJSON(v interface{}, path string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON output")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if path == "" {
		if _, err := os.Stdout.Write(append(jsonData, '\n')); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(path, append(jsonData, '\n'), 0644); err != nil {
		log.Error().
			Err(err).
			Str("output_file", path).
			Msg("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}

	log.Info().
		Str("output_file", path).
		Int("bytes", len(jsonData)).
		Msg("Output written to file")

	return nil
}

// handleEngineError provides user-friendly messages for engine failures
func handleEngineError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Operation failed")

	var validationErr *invoice.ValidationError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("operation timed out. Try increasing --timeout")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("operation was canceled")
	case errors.Is(err, invoice.ErrEmptyItems):
		return fmt.Errorf("an invoice needs at least one line item")
	case errors.Is(err, invoice.ErrLimitExceeded):
		return fmt.Errorf("amount limit exceeded (see MAX_* settings): %w", err)
	case errors.As(err, &validationErr):
		return fmt.Errorf("invalid %s: %s", validationErr.Field, validationErr.Message)
	case errors.Is(err, payment.ErrInvoiceCancelled):
		return fmt.Errorf("the invoice is cancelled and accepts no payments")
	case errors.Is(err, receipt.ErrAllocationMismatch):
		return fmt.Errorf("payment and invoice do not belong together: %w", err)
	case errors.Is(err, invoice.ErrReferenceNumber),
		errors.Is(err, payment.ErrReferenceNumber),
		errors.Is(err, receipt.ErrReceiptNumber):
		return fmt.Errorf("reference number sequence unavailable. Check SEQUENCE_BACKEND and REDIS_ADDR: %w", err)
	default:
		return err
	}
}
