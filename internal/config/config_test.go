package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/etc/aquaperf/credentials.json")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "sheet-123")
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequired(t)

		cfg, err := Load(missingEnvFile(t))
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "aquaperf", cfg.MongoDB.DBName)
		assert.Equal(t, "0 2 * * *", cfg.Reporting.CronSchedule)
		assert.Equal(t, 10*time.Minute, cfg.Reporting.BatchTimeout)
		assert.Equal(t, 15*time.Minute, cfg.Redis.ReportTTL)
		assert.Empty(t, cfg.Redis.URL)
		assert.InDelta(t, 0.05, cfg.Engine.JuvenileMassKg, 1e-9)
		assert.Equal(t, 30, cfg.Engine.RecentWindowDays)
		assert.Equal(t, 8, cfg.Engine.FetchConcurrency)
	})

	t.Run("engine overrides", func(t *testing.T) {
		setRequired(t)
		t.Setenv("ENGINE_FEED_UNIT_PRICE", "1.75")
		t.Setenv("ENGINE_RECENT_WINDOW_DAYS", "14")
		t.Setenv("REPORT_CACHE_TTL", "1h")

		cfg, err := Load(missingEnvFile(t))
		require.NoError(t, err)

		assert.InDelta(t, 1.75, cfg.Engine.FeedUnitPrice, 1e-9)
		assert.Equal(t, 14, cfg.Engine.RecentWindowDays)
		assert.Equal(t, time.Hour, cfg.Redis.ReportTTL)
	})

	t.Run("reads the env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("GOOGLE_SHEETS_CREDENTIALS_PATH=/from/file.json\nGOOGLE_SHEET_DATABASE_ID=from-file\n"), 0o600))
		t.Cleanup(func() {
			_ = os.Unsetenv("GOOGLE_SHEETS_CREDENTIALS_PATH")
			_ = os.Unsetenv("GOOGLE_SHEET_DATABASE_ID")
		})

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "from-file", cfg.Sheets.SpreadsheetID)
	})

	t.Run("invalid number", func(t *testing.T) {
		setRequired(t)
		t.Setenv("ENGINE_TARGET_FCR", "fast")

		_, err := Load(missingEnvFile(t))
		assert.ErrorContains(t, err, "ENGINE_TARGET_FCR")
	})

	t.Run("missing spreadsheet", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/etc/aquaperf/credentials.json")
		t.Setenv("GOOGLE_SHEET_DATABASE_ID", "")

		_, err := Load(missingEnvFile(t))
		assert.ErrorContains(t, err, "GOOGLE_SHEET_DATABASE_ID")
	})

	t.Run("whatsapp needs a recipient", func(t *testing.T) {
		setRequired(t)
		t.Setenv("WHATSAPP_TOKEN", "token")
		t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "12345")
		t.Setenv("WHATSAPP_ALERT_RECIPIENT", "")

		_, err := Load(missingEnvFile(t))
		assert.ErrorContains(t, err, "WHATSAPP_ALERT_RECIPIENT")
	})
}

func TestEngineValidate(t *testing.T) {
	valid := EngineConfig{TargetFCR: 1.8, TargetMassKg: 1, JuvenileMassKg: 0.05, RecentWindowDays: 30, FetchConcurrency: 4}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.RecentWindowDays = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.FeedUnitPrice = -1
	assert.Error(t, bad.Validate())
}
