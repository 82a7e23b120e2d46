package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"invoicing/internal/invoice"
	"invoicing/internal/logger"
	"invoicing/internal/payment"
)

// Sequence backends.
const (
	SequenceMemory = "memory"
	SequenceRedis  = "redis"
)

type Config struct {
	// Payment and invoice limits
	MinPaymentAmount  float64 `validate:"gt=0"`
	MaxPaymentAmount  float64 `validate:"gt=0,gtefield=MinPaymentAmount"`
	MaxLineItemAmount float64 `validate:"gt=0"`
	MaxInvoiceAmount  float64 `validate:"gt=0,gtefield=MaxLineItemAmount"`
	DefaultTaxRate    float64 `validate:"gte=0,lte=1"`

	// Reference number sequence
	SequenceBackend string `validate:"oneof=memory redis"`
	RedisAddr       string `validate:"required_if=SequenceBackend redis"`
	RedisPassword   string
	RedisDB         int `validate:"gte=0"`
	RedisKeyPrefix  string

	// Google Sheets Configuration
	GoogleSheetURL  string
	LedgerWorksheet string `validate:"required"`

	// Batch processing
	BatchWorkers int `validate:"gte=1,lte=64"`

	// Logging Configuration
	LogLevel      string `validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFormat     string `validate:"oneof=json console"`
	LogTimeFormat string
	LogOutput     string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Load() (*Config, error) {
	p := &envParser{}

	config := &Config{
		MinPaymentAmount:  p.float("MIN_PAYMENT_AMOUNT", 0.01),
		MaxPaymentAmount:  p.float("MAX_PAYMENT_AMOUNT", 1000000),
		MaxLineItemAmount: p.float("MAX_LINE_ITEM_AMOUNT", 100000),
		MaxInvoiceAmount:  p.float("MAX_INVOICE_AMOUNT", 1000000),
		DefaultTaxRate:    p.float("DEFAULT_TAX_RATE", 0.07),
		SequenceBackend:   getEnv("SEQUENCE_BACKEND", SequenceMemory),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           p.int("REDIS_DB", 0),
		RedisKeyPrefix:    getEnv("REDIS_KEY_PREFIX", "invoicing:"),
		GoogleSheetURL:    getEnv("GOOGLE_SHEET_URL", ""),
		LedgerWorksheet:   getEnv("LEDGER_WORKSHEET", "Payments"),
		BatchWorkers:      p.int("BATCH_WORKERS", 12),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:     getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:         getEnv("LOG_OUTPUT", "stderr"),
	}
	if p.err != nil {
		return nil, fmt.Errorf("config parsing failed: %w", p.err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	return validate.Struct(c)
}

// InvoiceLimits returns the limits enforced when totaling invoices.
func (c *Config) InvoiceLimits() invoice.Limits {
	return invoice.Limits{
		MaxLineItemAmount: c.MaxLineItemAmount,
		MaxInvoiceAmount:  c.MaxInvoiceAmount,
	}
}

// PaymentLimits returns the limits enforced on payment amounts.
func (c *Config) PaymentLimits() payment.Limits {
	return payment.Limits{
		MinAmount: c.MinPaymentAmount,
		MaxAmount: c.MaxPaymentAmount,
	}
}

// RedisOptions returns client options for the redis sequence backend.
func (c *Config) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envParser reads typed values and keeps the first parse error.
type envParser struct {
	err error
}

func (p *envParser) float(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		p.fail(key, value, err)
		return defaultValue
	}
	return f
}

func (p *envParser) int(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, value, err)
		return defaultValue
	}
	return n
}

func (p *envParser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%s=%q: %w", key, value, err)
	}
}
