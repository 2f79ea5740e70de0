// Package config provides centralized configuration management. Settings
// load from environment variables with defaults and are validated on
// startup so misconfiguration fails fast.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Import  ImportConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout per request (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// ImportConfig holds the spreadsheet import settings. Defaults mirror the
// consumables upload template.
type ImportConfig struct {
	// TargetSheet is the fallback sheet when the first one is unusable
	TargetSheet string `env:"IMPORT_TARGET_SHEET" default:"Hoja_Cargue"`

	// HeaderRow is the 0-based header row offset in the template
	HeaderRow int `env:"IMPORT_HEADER_ROW" default:"5"`

	// CostHeader selects the cost column title variant
	// ("VALOR" or "VALOR/COSTO" depending on template version)
	CostHeader string `env:"IMPORT_COST_HEADER" default:"VALOR"`

	// Extensions lists the accepted file extensions
	Extensions []string `env:"IMPORT_EXTENSIONS" default:".xlsx"`

	// MaxFileSize is the largest accepted upload in bytes (default: 10MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"10485760"`

	// QuantityMin/QuantityMax bound the quantity columns (inclusive)
	QuantityMin int `env:"IMPORT_QUANTITY_MIN" default:"1"`
	QuantityMax int `env:"IMPORT_QUANTITY_MAX" default:"1000"`

	// YearMin/YearMax bound purchase-date years (inclusive)
	YearMin int `env:"IMPORT_YEAR_MIN" default:"2000"`
	YearMax int `env:"IMPORT_YEAR_MAX" default:"2100"`

	// ReferenceFile optionally points at a YAML overlay for the
	// category/manufacturer/supplier reference sets
	ReferenceFile string `env:"IMPORT_REFERENCE_FILE"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
