package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONFile(t *testing.T) {
	previousLevel := zerolog.GlobalLevel()
	previous := log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(previousLevel)
		log.Logger = previous
	})

	path := filepath.Join(t.TempDir(), "invoicing.log")
	require.NoError(t, Setup(LogConfig{Level: "debug", Format: "json", Output: path}))

	invoiceLog := WithInvoice("test", "inv-1", "INV-20250101-0001")
	invoiceLog.Info().Msg("invoice created")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, string(data), `"invoice_number":"INV-20250101-0001"`)
	assert.Contains(t, string(data), `"message":"invoice created"`)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestWithFields(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() { log.Logger = previous })

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	fieldsLog := WithFields(map[string]interface{}{"component": "batch", "total": 3})
	fieldsLog.Info().Msg("done")

	assert.Contains(t, buf.String(), `"component":"batch"`)
	assert.Contains(t, buf.String(), `"total":3`)
}

func TestSetup_InvalidLevel(t *testing.T) {
	err := Setup(LogConfig{Level: "loud", Format: "json", Output: "stderr"})
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "stderr", cfg.Output)
}
