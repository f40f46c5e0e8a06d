package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("STORAGE_USE_SSL", "false")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_FROM_NAME", "Acme Certs")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "1000")
	t.Setenv("BROWSER_PAGE_LOAD_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Storage.UseSSL)
	assert.True(t, cfg.SMTP.Secure, "port 465 implies implicit TLS")
	assert.Equal(t, "Acme Certs", cfg.IssuerName)
	assert.Equal(t, time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 5*time.Second, cfg.Browser.PageLoadTimeout)
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"STORAGE_BUCKET", "SMTP_FROM_NAME", "SMTP_PORT", "SMTP_SECURE", "PORT", "STORAGE_ENDPOINT", "DB_HOST"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "certificates", cfg.Storage.Bucket)
	assert.Equal(t, "Your Company", cfg.IssuerName)
	assert.Equal(t, "", cfg.SMTP.FromName)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.SMTP.Secure)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 60, cfg.RateLimit.Max)
	assert.False(t, cfg.Storage.Enabled())
	assert.False(t, cfg.Database.Enabled())
	assert.True(t, cfg.Browser.Headless)
}

func TestAppConfig_Location(t *testing.T) {
	cfg := &AppConfig{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.Timezone = "UTC"
	assert.Equal(t, "UTC", cfg.Location().String())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	os.Setenv(key, "1500ms")
	assert.Equal(t, 1500*time.Millisecond, getEnvDuration(key, time.Second))

	os.Setenv(key, "-1s")
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))

	os.Setenv(key, "soon")
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))

	os.Unsetenv(key)
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))
}
