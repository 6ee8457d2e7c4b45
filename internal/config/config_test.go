package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8501, cfg.Server.Port)
	assert.Equal(t, SourceKindXLSX, cfg.Source.Kind)
	assert.Equal(t, "supermarkt_sales.xlsx", cfg.Source.File)
	assert.Equal(t, "Sales", cfg.Source.Sheet)
	assert.False(t, cfg.Source.SkipInvalidRows)
	assert.Equal(t, "localhost:8501", cfg.Address())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("SOURCE_KIND", "SHEETS")
	t.Setenv("SOURCE_SPREADSHEET_ID", "sheet-123")
	t.Setenv("SOURCE_SKIP_INVALID_ROWS", "true")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, SourceKindSheets, cfg.Source.Kind)
	assert.Equal(t, "sheet-123", cfg.Source.SpreadsheetID)
	assert.True(t, cfg.Source.SkipInvalidRows)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "port out of range", env: map[string]string{"SERVER_PORT": "70000"}},
		{name: "unknown source kind", env: map[string]string{"SOURCE_KIND": "csv"}},
		{name: "sheets without spreadsheet id", env: map[string]string{"SOURCE_KIND": "sheets"}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "trace"}},
		{name: "bad log format", env: map[string]string{"LOG_FORMAT": "xml"}},
		{name: "negative rps", env: map[string]string{"SECURITY_RATE_LIMIT_RPS": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
