package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Storage drivers
const (
	StorageDriverDisk = "disk"
	StorageDriverGCS  = "gcs"
)

// OAuth state store kinds
const (
	StateStoreMemory = "memory"
	StateStoreRedis  = "redis"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// Google OAuth configuration
	GoogleOAuth GoogleOAuthConfig

	// Frontend the OAuth callback redirects to
	Frontend FrontendConfig

	// CORS configuration
	CORS CORSConfig

	// Admin bootstrap
	Admin AdminConfig

	// Object storage for tour images
	Storage StorageConfig

	// OAuth state persistence
	OAuthState OAuthStateConfig

	// Redis connection, used by the redis OAuth state store
	Redis RedisConfig

	Log     LogConfig
	Metrics MetricsConfig
	Tracing TracingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConns       int32
	MinConns       int32
	MaxLifetime    time.Duration
	ConnTimeout    time.Duration
	QueryTimeout   time.Duration
	SimpleProtocol bool
	AutoMigrate    bool
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
	Issuer         string
}

// GoogleOAuthConfig holds Google OAuth configuration
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// FrontendConfig holds where the browser lands after sign-in
type FrontendConfig struct {
	CallbackURL string
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

// AdminConfig holds the admin bootstrap settings
type AdminConfig struct {
	// Email signing in with Google is always promoted to ADMIN.
	Email string
	// BootstrapSecretHash is a bcrypt hash guarding the claim-admin endpoint.
	// Empty disables the endpoint.
	BootstrapSecretHash string
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Driver             string
	DiskDir            string
	PublicBaseURL      string
	GCSBucket          string
	GCSCredentialsFile string
	MaxUploadBytes     int64
}

// OAuthStateConfig holds OAuth CSRF state settings
type OAuthStateConfig struct {
	Store string
	TTL   time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string
	Env   string
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

// TracingConfig holds OpenTelemetry settings. Spans are exported only when
// OTLPEndpoint is set.
type TracingConfig struct {
	OTLPEndpoint string
	Insecure     bool
	SampleRatio  float64
	Version      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file
	if err := godotenv.Load("../.env"); err != nil {
		// Try loading from current directory if not found in parent
		if err := godotenv.Load(".env"); err != nil {
			log.Warn().Err(err).Msg(".env file not found")
		}
	}

	config := FromEnv()

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FromEnv builds a configuration from the process environment without
// reading .env files or validating.
func FromEnv() *Config {
	port := getEnv("SERVER_PORT", "8080")
	return &Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", ""),
			Name:           getEnv("DB_NAME", "postgres"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConns:       getInt32Env("DB_MAX_CONNS", 5),
			MinConns:       getInt32Env("DB_MIN_CONNS", 0),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", time.Hour),
			ConnTimeout:    getDurationEnv("DB_CONN_TIMEOUT", 10*time.Second),
			QueryTimeout:   getDurationEnv("DB_QUERY_TIMEOUT", 30*time.Second),
			SimpleProtocol: getBoolEnv("DB_SIMPLE_PROTOCOL", false),
			AutoMigrate:    getBoolEnv("DB_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			Secret:         getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL: getDurationEnv("JWT_ACCESS_TTL", 7*24*time.Hour), // 7 days
			Issuer:         getEnv("JWT_ISSUER", "gotours"),
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:"+port+"/api/auth/google/callback"),
		},
		Frontend: FrontendConfig{
			CallbackURL: getEnv("FRONTEND_CALLBACK_URL", "http://localhost:3000/auth/callback"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   getStringSliceEnv("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getStringSliceEnv("CORS_ALLOWED_HEADERS", []string{"*"}),
			AllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		},
		Admin: AdminConfig{
			Email:               strings.ToLower(strings.TrimSpace(getEnv("ADMIN_EMAIL", ""))),
			BootstrapSecretHash: getEnv("ADMIN_BOOTSTRAP_SECRET_HASH", ""),
		},
		Storage: StorageConfig{
			Driver:             strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverDisk)),
			DiskDir:            getEnv("STORAGE_DISK_DIR", "./uploads"),
			PublicBaseURL:      strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE_URL", "http://localhost:"+port+"/uploads"), "/"),
			GCSBucket:          getEnv("STORAGE_GCS_BUCKET", "tour-images"),
			GCSCredentialsFile: getEnv("STORAGE_GCS_CREDENTIALS_FILE", ""),
			MaxUploadBytes:     getInt64Env("STORAGE_MAX_UPLOAD_BYTES", 5<<20),
		},
		OAuthState: OAuthStateConfig{
			Store: strings.ToLower(getEnv("OAUTH_STATE_STORE", StateStoreMemory)),
			TTL:   getDurationEnv("OAUTH_STATE_TTL", 10*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       int(getInt32Env("REDIS_DB", 0)),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			Env:   getEnv("APP_ENV", "development"),
		},
		Metrics: MetricsConfig{
			Enabled:   getBoolEnv("METRICS_ENABLED", true),
			Namespace: getEnv("METRICS_NAMESPACE", "gotours"),
		},
		Tracing: TracingConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:     getBoolEnv("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRatio:  getFloatEnv("TRACING_SAMPLE_RATIO", 1),
			Version:      getEnv("APP_VERSION", "dev"),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Check required database configuration
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}

	if c.IsProduction() && c.JWT.Secret == "your-secret-key-change-in-production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}

	switch c.Storage.Driver {
	case StorageDriverDisk:
		if c.Storage.DiskDir == "" {
			return fmt.Errorf("STORAGE_DISK_DIR is required for the disk driver")
		}
	case StorageDriverGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("STORAGE_GCS_BUCKET is required for the gcs driver")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATIO must be between 0 and 1")
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("STORAGE_MAX_UPLOAD_BYTES must be positive")
	}

	switch c.OAuthState.Store {
	case StateStoreMemory:
	case StateStoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required when OAUTH_STATE_STORE=redis")
		}
	default:
		return fmt.Errorf("unsupported OAUTH_STATE_STORE %q", c.OAuthState.Store)
	}

	// Check required Google OAuth configuration
	if !c.IsGoogleOAuthConfigured() {
		log.Warn().Msg("Google OAuth credentials not configured. Google login will not work.")
	}
	if c.Admin.BootstrapSecretHash == "" {
		log.Info().Msg("ADMIN_BOOTSTRAP_SECRET_HASH not set, claim-admin endpoint disabled")
	}

	return nil
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&connect_timeout=%d",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
		int(c.Database.ConnTimeout.Seconds()),
	)
}

// IsGoogleOAuthConfigured checks if Google OAuth is properly configured
func (c *Config) IsGoogleOAuthConfigured() bool {
	return c.GoogleOAuth.ClientID != "" && c.GoogleOAuth.ClientSecret != ""
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Log.Env, "production")
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt32Env(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intValue)
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := []string{}
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}
