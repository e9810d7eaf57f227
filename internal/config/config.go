package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Gemini API (text generation + vision verification)
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string
	GeminiTimeout time.Duration

	// Storage for verification photos.
	// "local" writes under UploadDir, "s3" uses an S3-compatible bucket.
	StorageDriver string
	UploadDir     string
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3Endpoint    string // Optional: for S3-compatible services (MinIO, R2, etc.)

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName: envString("APP_NAME", "Questline"),
		AppEnv:  envString("APP_ENV", "development"),
		Port:    envString("PORT", "8090"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envRequired("DB_CONNECTION"),

		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// Absence of the API key fails fast at startup rather than on the
		// first journey request.
		GeminiAPIKey:  envRequired("GEMINI_API_KEY"),
		GeminiBaseURL: envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1"),
		GeminiModel:   envString("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTimeout: envDuration("GEMINI_TIMEOUT", 60*time.Second),

		StorageDriver: envString("STORAGE_DRIVER", "local"),
		UploadDir:     envString("UPLOAD_DIR", "./data/uploads"),
		S3Region:      envString("S3_REGION", ""),
		S3Bucket:      envString("S3_BUCKET", ""),
		S3AccessKey:   envString("S3_ACCESS_KEY", ""),
		S3SecretKey:   envString("S3_SECRET_KEY", ""),
		S3Endpoint:    envString("S3_ENDPOINT", ""),

		SentryDSN: envString("SENTRY_DSN", ""),
	}

	if cfg.StorageDriver == "s3" {
		cfg.S3Region = envRequired("S3_REGION")
		cfg.S3Bucket = envRequired("S3_BUCKET")
	}

	return cfg
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// Secrets and credentials are excluded; safe to place in request contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName: c.AppName,
		AppEnv:  c.AppEnv,
		Port:    c.Port,

		StorageDriver: c.StorageDriver,
		S3Endpoint:    c.S3Endpoint,
	}
}
