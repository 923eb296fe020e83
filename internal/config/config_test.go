package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DB_PASSWORD", "secret")

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int32(5), cfg.Database.MaxConns)
	assert.Equal(t, 30*time.Second, cfg.Database.QueryTimeout)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, StorageDriverDisk, cfg.Storage.Driver)
	assert.Equal(t, "http://localhost:8080/uploads", cfg.Storage.PublicBaseURL)
	assert.Equal(t, StateStoreMemory, cfg.OAuthState.Store)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.IsGoogleOAuthConfigured())
	assert.Empty(t, cfg.Tracing.OTLPEndpoint)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_MAX_CONNS", "12")
	t.Setenv("DB_SIMPLE_PROTOCOL", "true")
	t.Setenv("JWT_ACCESS_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("ADMIN_EMAIL", "  Boss@Example.com ")
	t.Setenv("STORAGE_DRIVER", "GCS")
	t.Setenv("STORAGE_PUBLIC_BASE_URL", "https://cdn.example/")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "shh")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("TRACING_SAMPLE_RATIO", "0.25")

	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, int32(12), cfg.Database.MaxConns)
	assert.True(t, cfg.Database.SimpleProtocol)
	assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "boss@example.com", cfg.Admin.Email)
	assert.Equal(t, StorageDriverGCS, cfg.Storage.Driver)
	assert.Equal(t, "https://cdn.example", cfg.Storage.PublicBaseURL)
	assert.Equal(t, "http://localhost:9090/api/auth/google/callback", cfg.GoogleOAuth.RedirectURL)
	assert.True(t, cfg.IsGoogleOAuthConfigured())
	assert.Equal(t, 0, cfg.Redis.DB, "unparsable values fall back to the default")
	assert.Equal(t, "collector:4317", cfg.Tracing.OTLPEndpoint)
	assert.Equal(t, 0.25, cfg.Tracing.SampleRatio)
}

func TestValidate(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	valid := FromEnv

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing db password", func(c *Config) { c.Database.Password = "" }, "DB_PASSWORD"},
		{"default jwt secret in production", func(c *Config) { c.Log.Env = "production" }, "JWT_SECRET"},
		{"unknown storage driver", func(c *Config) { c.Storage.Driver = "s3" }, "STORAGE_DRIVER"},
		{"gcs without bucket", func(c *Config) {
			c.Storage.Driver = StorageDriverGCS
			c.Storage.GCSBucket = ""
		}, "STORAGE_GCS_BUCKET"},
		{"zero upload limit", func(c *Config) { c.Storage.MaxUploadBytes = 0 }, "STORAGE_MAX_UPLOAD_BYTES"},
		{"redis state store without address", func(c *Config) { c.OAuthState.Store = StateStoreRedis }, "REDIS_ADDR"},
		{"unknown state store", func(c *Config) { c.OAuthState.Store = "etcd" }, "OAUTH_STATE_STORE"},
		{"sample ratio above one", func(c *Config) { c.Tracing.SampleRatio = 1.5 }, "TRACING_SAMPLE_RATIO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("production with a real secret", func(t *testing.T) {
		cfg := valid()
		cfg.Log.Env = "Production"
		cfg.JWT.Secret = "a-long-random-secret"
		assert.True(t, cfg.IsProduction())
		assert.NoError(t, cfg.Validate())
	})
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host:        "db.internal",
		Port:        "6543",
		User:        "tours",
		Password:    "pw",
		Name:        "postgres",
		SSLMode:     "require",
		ConnTimeout: 10 * time.Second,
	}}
	assert.Equal(t, "postgres://tours:pw@db.internal:6543/postgres?sslmode=require&connect_timeout=10", cfg.GetDSN())
}
