package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL settings for the certificate metadata store.
// The store is optional: an empty Host disables persistence.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// Enabled reports whether a database host was configured.
func (c DatabaseConfig) Enabled() bool { return c.Host != "" }

// StorageConfig holds S3-compatible object storage settings (Supabase S3, MinIO, AWS).
type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool
	PublicBaseURL string
	UploadTimeout time.Duration
}

// Enabled reports whether enough settings are present to build a storage client.
func (c StorageConfig) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != ""
}

// SMTPConfig holds mail transport settings.
type SMTPConfig struct {
	Host        string
	Port        int
	Secure      bool
	User        string
	Password    string
	FromName    string
	FromEmail   string
	SendTimeout time.Duration
}

// BrowserConfig controls the headless browser used for document conversion.
type BrowserConfig struct {
	Headless        bool
	Bin             string
	NoSandbox       bool
	PageLoadTimeout time.Duration
	ConvertTimeout  time.Duration
}

// RateLimitConfig controls the per-client request limiter.
type RateLimitConfig struct {
	Window time.Duration
	Max    int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost    string
	Port       string
	Env        string
	Timezone   string
	BaseURL    string
	IssuerName string
	StagingDir string
	Database   DatabaseConfig
	Storage    StorageConfig
	SMTP       SMTPConfig
	Browser    BrowserConfig
	RateLimit  RateLimitConfig
}

// IsProduction reports whether the service runs with production settings.
func (c *AppConfig) IsProduction() bool { return c.Env == "production" }

// Location returns the configured log timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	smtpPort := getEnvInt("SMTP_PORT", 587)
	fromName := getEnv("SMTP_FROM_NAME", "")

	issuer := fromName
	if issuer == "" {
		issuer = "Your Company"
	}

	return &AppConfig{
		AppHost:    getEnv("APP_HOST", "localhost:3000"),
		Port:       getEnv("PORT", "3000"),
		Env:        getEnv("APP_ENV", "development"),
		Timezone:   getEnv("APP_TIMEZONE", "UTC"),
		BaseURL:    getEnv("BASE_URL", ""),
		IssuerName: issuer,
		StagingDir: getEnv("STAGING_DIR", ""),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Endpoint:      getEnv("STORAGE_ENDPOINT", ""),
			AccessKey:     getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:     getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:        getEnv("STORAGE_BUCKET", "certificates"),
			Region:        getEnv("STORAGE_REGION", ""),
			UseSSL:        getEnvBool("STORAGE_USE_SSL", true),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_URL", ""),
			UploadTimeout: getEnvDuration("STORAGE_UPLOAD_TIMEOUT", 30*time.Second),
		},
		SMTP: SMTPConfig{
			Host: getEnv("SMTP_HOST", ""),
			Port: smtpPort,
			// port 465 always means implicit TLS
			Secure:      getEnvBool("SMTP_SECURE", false) || smtpPort == 465,
			User:        getEnv("SMTP_USER", ""),
			Password:    getEnv("SMTP_PASS", ""),
			FromName:    fromName,
			FromEmail:   getEnv("SMTP_FROM_EMAIL", ""),
			SendTimeout: getEnvDuration("SMTP_SEND_TIMEOUT", 30*time.Second),
		},
		Browser: BrowserConfig{
			Headless:        getEnvBool("BROWSER_HEADLESS", true),
			Bin:             getEnv("ROD_BROWSER_BIN", ""),
			NoSandbox:       getEnvBool("BROWSER_NO_SANDBOX", true),
			PageLoadTimeout: getEnvDuration("BROWSER_PAGE_LOAD_TIMEOUT", 30*time.Second),
			ConvertTimeout:  getEnvDuration("BROWSER_CONVERT_TIMEOUT", 60*time.Second),
		},
		RateLimit: RateLimitConfig{
			Window: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MS", 60000)) * time.Millisecond,
			Max:    getEnvInt("RATE_LIMIT_MAX", 60),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}
