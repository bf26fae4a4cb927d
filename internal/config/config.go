package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendSheets = "sheets"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	AdminSecret  string
	ExportSecret string

	StoreBackend             string
	SpreadsheetID            string
	GoogleServiceAccountJSON string
	SQLitePath               string

	CacheTTL  time.Duration
	CacheSize int

	TelegramToken string

	HTTPAddr      string
	BasePublicURL string

	LogLevel  string
	LogFormat string
}

func FromEnv() (Config, error) {
	var c Config
	c.AdminSecret = env("ADMIN_SECRET")
	c.ExportSecret = env("EXPORT_SECRET")
	if c.ExportSecret == "" {
		c.ExportSecret = c.AdminSecret
	}

	c.StoreBackend = strings.ToLower(env("STORE_BACKEND"))
	if c.StoreBackend == "" {
		c.StoreBackend = BackendSheets
	}
	c.SpreadsheetID = env("GOOGLE_SHEETS_SPREADSHEET_ID")
	c.GoogleServiceAccountJSON = env("GOOGLE_SERVICE_ACCOUNT_JSON")
	c.SQLitePath = env("SQLITE_PATH")
	if c.SQLitePath == "" {
		c.SQLitePath = "sportsreg.db"
	}

	c.CacheTTL = 30 * time.Second
	if raw := env("CACHE_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return c, fmt.Errorf("CACHE_TTL %q is not a valid duration", raw)
		}
		c.CacheTTL = d
	}
	c.CacheSize = 32
	if raw := env("CACHE_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c, fmt.Errorf("CACHE_SIZE %q is not a positive integer", raw)
		}
		c.CacheSize = n
	}

	c.TelegramToken = env("TELEGRAM_BOT_TOKEN")

	c.HTTPAddr = env("HTTP_ADDR")
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	c.BasePublicURL = strings.TrimRight(env("BASE_PUBLIC_URL"), "/")

	c.LogLevel = strings.ToLower(env("LOG_LEVEL"))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.LogFormat = strings.ToLower(env("LOG_FORMAT"))
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}

	if c.AdminSecret == "" {
		return c, fmt.Errorf("ADMIN_SECRET is empty")
	}
	switch c.StoreBackend {
	case BackendSheets:
		if c.SpreadsheetID == "" {
			return c, fmt.Errorf("GOOGLE_SHEETS_SPREADSHEET_ID is empty")
		}
		if c.GoogleServiceAccountJSON == "" {
			return c, fmt.Errorf("GOOGLE_SERVICE_ACCOUNT_JSON is empty")
		}
	case BackendSQLite, BackendMemory:
	default:
		return c, fmt.Errorf("STORE_BACKEND %q is not one of sheets, sqlite, memory", c.StoreBackend)
	}

	return c, nil
}

// RequireTelegram is checked by the bot command only.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is empty")
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
