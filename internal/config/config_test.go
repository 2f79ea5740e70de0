package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the loader reads so tests see defaults
// regardless of the host environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SERVER_HOST", "SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
		"SERVER_IDLE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT", "SERVER_REQUEST_TIMEOUT",
		"IMPORT_TARGET_SHEET", "IMPORT_HEADER_ROW", "IMPORT_COST_HEADER",
		"IMPORT_EXTENSIONS", "IMPORT_MAX_FILE_SIZE", "IMPORT_QUANTITY_MIN",
		"IMPORT_QUANTITY_MAX", "IMPORT_YEAR_MIN", "IMPORT_YEAR_MAX",
		"IMPORT_REFERENCE_FILE", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "Hoja_Cargue", cfg.Import.TargetSheet)
	assert.Equal(t, 5, cfg.Import.HeaderRow)
	assert.Equal(t, "VALOR", cfg.Import.CostHeader)
	assert.Equal(t, []string{".xlsx"}, cfg.Import.Extensions)
	assert.Equal(t, int64(10485760), cfg.Import.MaxFileSize)
	assert.Equal(t, 1, cfg.Import.QuantityMin)
	assert.Equal(t, 1000, cfg.Import.QuantityMax)
	assert.Equal(t, 2000, cfg.Import.YearMin)
	assert.Equal(t, 2100, cfg.Import.YearMax)
	assert.Empty(t, cfg.Import.ReferenceFile)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("IMPORT_COST_HEADER", "VALOR/COSTO")
	t.Setenv("IMPORT_HEADER_ROW", "0")
	t.Setenv("IMPORT_EXTENSIONS", ".xlsx, .xlsm")
	t.Setenv("IMPORT_QUANTITY_MAX", "5000")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "VALOR/COSTO", cfg.Import.CostHeader)
	assert.Equal(t, 0, cfg.Import.HeaderRow)
	assert.Equal(t, []string{".xlsx", ".xlsm"}, cfg.Import.Extensions)
	assert.Equal(t, 5000, cfg.Import.QuantityMax)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		errIn string
	}{
		{"bad int", map[string]string{"SERVER_PORT": "not-a-number"}, "invalid value for SERVER_PORT"},
		{"bad duration", map[string]string{"SERVER_READ_TIMEOUT": "fast"}, "invalid value for SERVER_READ_TIMEOUT"},
		{"port out of range", map[string]string{"SERVER_PORT": "70000"}, "SERVER_PORT"},
		{"quantity bounds flipped", map[string]string{"IMPORT_QUANTITY_MIN": "500", "IMPORT_QUANTITY_MAX": "5"}, "IMPORT_QUANTITY_MIN"},
		{"year bounds flipped", map[string]string{"IMPORT_YEAR_MIN": "2100", "IMPORT_YEAR_MAX": "2000"}, "IMPORT_YEAR_MIN"},
		{"extension without dot", map[string]string{"IMPORT_EXTENSIONS": "xlsx"}, "must start with a dot"},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errIn)
		})
	}
}

func TestAddr(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 9090}
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())

	cfg = ServerConfig{Port: 8080}
	assert.Equal(t, ":8080", cfg.Addr())
}
