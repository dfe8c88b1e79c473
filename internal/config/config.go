package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Sheets    SheetsConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Reporting ReportingConfig
	Engine    EngineConfig
	WhatsApp  WhatsAppConfig
	AI        AIConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// SheetsConfig contains configuration required to read raw records from Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig holds settings for the report cache. An empty URL disables caching.
type RedisConfig struct {
	URL       string
	ReportTTL time.Duration
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
	BatchTimeout time.Duration
}

// EngineConfig holds the farm constants fed to the scoring and alerting engine.
type EngineConfig struct {
	TargetFCR        float64
	TargetMassKg     float64
	JuvenileMassKg   float64
	FeedUnitPrice    float64
	SalePricePerKg   float64
	RecentWindowDays int
	HistorySize      int
	FetchConcurrency int
}

// WhatsAppConfig contains credentials for alert notifications via the Meta
// WhatsApp Cloud API. Notifications are disabled when AccessToken is empty.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	NotifyTo      string
}

// AIConfig holds settings for LLM providers.
type AIConfig struct {
	AnthropicKey string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	p := &parser{}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "aquaperf"),
		},
		Redis: RedisConfig{
			URL:       os.Getenv("REDIS_URL"),
			ReportTTL: p.durationValue("REPORT_CACHE_TTL", 15*time.Minute),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 2 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Africa/Conakry"),
			BatchTimeout: p.durationValue("BATCH_TIMEOUT", 10*time.Minute),
		},
		Engine: EngineConfig{
			TargetFCR:        p.floatValue("ENGINE_TARGET_FCR", 1.8),
			TargetMassKg:     p.floatValue("ENGINE_TARGET_MASS_KG", 1.0),
			JuvenileMassKg:   p.floatValue("ENGINE_JUVENILE_MASS_KG", 0.05),
			FeedUnitPrice:    p.floatValue("ENGINE_FEED_UNIT_PRICE", 1.2),
			SalePricePerKg:   p.floatValue("ENGINE_SALE_PRICE_PER_KG", 6.0),
			RecentWindowDays: p.intValue("ENGINE_RECENT_WINDOW_DAYS", 30),
			HistorySize:      p.intValue("ENGINE_HISTORY_SIZE", 14),
			FetchConcurrency: p.intValue("ENGINE_FETCH_CONCURRENCY", 8),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			NotifyTo:      os.Getenv("WHATSAPP_ALERT_RECIPIENT"),
		},
		AI: AIConfig{
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
	}

	if p.err != nil {
		return nil, p.err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
	}

	if c.Sheets.SpreadsheetID == "" {
		return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if err := c.Engine.Validate(); err != nil {
		return err
	}

	if c.WhatsApp.AccessToken != "" {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided when WHATSAPP_TOKEN is set")
		case c.WhatsApp.NotifyTo == "":
			return errors.New("WHATSAPP_ALERT_RECIPIENT must be provided when WHATSAPP_TOKEN is set")
		}
	}

	return nil
}

// Validate checks that engine constants are usable.
func (e EngineConfig) Validate() error {
	switch {
	case e.TargetFCR <= 0:
		return errors.New("ENGINE_TARGET_FCR must be positive")
	case e.TargetMassKg <= 0:
		return errors.New("ENGINE_TARGET_MASS_KG must be positive")
	case e.JuvenileMassKg < 0:
		return errors.New("ENGINE_JUVENILE_MASS_KG must not be negative")
	case e.FeedUnitPrice < 0:
		return errors.New("ENGINE_FEED_UNIT_PRICE must not be negative")
	case e.SalePricePerKg < 0:
		return errors.New("ENGINE_SALE_PRICE_PER_KG must not be negative")
	case e.RecentWindowDays <= 0:
		return errors.New("ENGINE_RECENT_WINDOW_DAYS must be positive")
	case e.FetchConcurrency <= 0:
		return errors.New("ENGINE_FETCH_CONCURRENCY must be positive")
	case e.HistorySize < 0:
		return errors.New("ENGINE_HISTORY_SIZE must not be negative")
	}
	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parser reads typed values and keeps the first parse error.
type parser struct {
	err error
}

func (p *parser) floatValue(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return v
}

func (p *parser) intValue(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return v
}

func (p *parser) durationValue(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return v
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}
