package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"ADMIN_SECRET", "EXPORT_SECRET", "STORE_BACKEND", "GOOGLE_SHEETS_SPREADSHEET_ID",
		"GOOGLE_SERVICE_ACCOUNT_JSON", "SQLITE_PATH", "CACHE_TTL", "CACHE_SIZE",
		"TELEGRAM_BOT_TOKEN", "HTTP_ADDR", "BASE_PUBLIC_URL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_SECRET", " s3cret ")
	t.Setenv("STORE_BACKEND", "memory")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", c.AdminSecret)
	assert.Equal(t, "s3cret", c.ExportSecret)
	assert.Equal(t, BackendMemory, c.StoreBackend)
	assert.Equal(t, "sportsreg.db", c.SQLitePath)
	assert.Equal(t, 30*time.Second, c.CacheTTL)
	assert.Equal(t, 32, c.CacheSize)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Error(t, c.RequireTelegram())
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_SECRET", "a")
	t.Setenv("EXPORT_SECRET", "e")
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("CACHE_TTL", "0")
	t.Setenv("CACHE_SIZE", "8")
	t.Setenv("BASE_PUBLIC_URL", "https://example.org/")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "e", c.ExportSecret)
	assert.Equal(t, BackendSQLite, c.StoreBackend)
	assert.Equal(t, "/tmp/x.db", c.SQLitePath)
	assert.Zero(t, c.CacheTTL)
	assert.Equal(t, 8, c.CacheSize)
	assert.Equal(t, "https://example.org", c.BasePublicURL)
	assert.NoError(t, c.RequireTelegram())
}

func TestFromEnvErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"ADMIN_SECRET is empty":                 {"STORE_BACKEND": "memory"},
		"GOOGLE_SHEETS_SPREADSHEET_ID is empty": {"ADMIN_SECRET": "a"},
		"GOOGLE_SERVICE_ACCOUNT_JSON is empty":  {"ADMIN_SECRET": "a", "GOOGLE_SHEETS_SPREADSHEET_ID": "sid"},
		`STORE_BACKEND "mongo"`:                 {"ADMIN_SECRET": "a", "STORE_BACKEND": "mongo"},
		`CACHE_TTL "soon"`:                      {"ADMIN_SECRET": "a", "STORE_BACKEND": "memory", "CACHE_TTL": "soon"},
		`CACHE_SIZE "-1"`:                       {"ADMIN_SECRET": "a", "STORE_BACKEND": "memory", "CACHE_SIZE": "-1"},
	}
	for want, vars := range cases {
		t.Run(want, func(t *testing.T) {
			clearEnv(t)
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), want)
		})
	}
}
