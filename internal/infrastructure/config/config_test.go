package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "salon-crm", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "salon_crm", cfg.Database.StorePrefix)
	assert.True(t, cfg.Database.CreateIfMissing)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, time.Hour, cfg.Auth.PruneInterval)
	assert.Equal(t, 30*time.Second, cfg.Database.OpenTimeout)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, InsecureDefaultJWTSecret, cfg.JWT.Secret)
	assert.NotEmpty(t, cfg.Warnings)
	assert.True(t, cfg.Tenant.EnforceStatus)
	assert.Equal(t, time.Minute, cfg.Tenant.StatusCacheTTL)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
	assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "Authorization")
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Telemetry.LogsEnabled)
	assert.Equal(t, "http://localhost:4040", cfg.Telemetry.ProfilingServer)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SALON_APP_NAME", "glow")
	t.Setenv("SALON_DATABASE_DRIVER", "SQLite")
	t.Setenv("SALON_DATABASE_STORE_PREFIX", "Glow")
	t.Setenv("SALON_JWT_EXPIRATION", "2h")
	t.Setenv("SALON_HTTP_CORS_ALLOW_ORIGINS", "http://a.example,http://b.example")
	t.Setenv("SALON_TENANT_ENFORCE_STATUS", "false")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "glow", cfg.App.Name)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "glow", cfg.Database.StorePrefix)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.HTTP.CORSAllowOrigins)
	assert.False(t, cfg.Tenant.EnforceStatus)
}

func TestLoad_Aliases(t *testing.T) {
	t.Run("plain names", func(t *testing.T) {
		t.Setenv("MONGODB_URI", "postgres://legacy:5432/")
		t.Setenv("JWT_SECRET", "from-plain-env")
		t.Setenv("PORT", "9090")

		cfg, err := load(viper.New())
		require.NoError(t, err)
		assert.Equal(t, "postgres://legacy:5432/", cfg.Database.URI)
		assert.Equal(t, "from-plain-env", cfg.JWT.Secret)
		assert.Equal(t, "9090", cfg.App.Port)
		assert.Empty(t, cfg.Warnings)
	})

	t.Run("DATABASE_URL wins over MONGODB_URI", func(t *testing.T) {
		t.Setenv("MONGODB_URI", "postgres://legacy:5432/")
		t.Setenv("DATABASE_URL", "postgres://primary:5432/")

		cfg, err := load(viper.New())
		require.NoError(t, err)
		assert.Equal(t, "postgres://primary:5432/", cfg.Database.URI)
	})

	t.Run("prefixed name wins", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("SALON_APP_PORT", "7070")

		cfg, err := load(viper.New())
		require.NoError(t, err)
		assert.Equal(t, "7070", cfg.App.Port)
	})
}

func TestLoad_Validation(t *testing.T) {
	strong := "0123456789abcdef0123456789abcdef"

	tests := []struct {
		name   string
		env    map[string]string
		errMsg string
	}{
		{"unknown driver", map[string]string{"SALON_DATABASE_DRIVER": "mongo"}, "database.driver"},
		{"idle above open", map[string]string{"SALON_DATABASE_MAX_IDLE_CONNS": "50"}, "max_idle_conns"},
		{"sampling ratio", map[string]string{"SALON_TELEMETRY_SAMPLING_RATIO": "1.5"}, "sampling_ratio"},
		{"profiling without server", map[string]string{"SALON_TELEMETRY_PROFILING_ENABLED": "true", "SALON_TELEMETRY_PROFILING_SERVER": " "}, "profiling_server"},
		{"production default secret", map[string]string{"APP_ENV": "production"}, "jwt.secret must be set"},
		{"production short secret", map[string]string{"APP_ENV": "production", "JWT_SECRET": "short"}, "at least 32"},
		{"production sqlite", map[string]string{"APP_ENV": "production", "JWT_SECRET": strong, "SALON_DATABASE_DRIVER": "sqlite"}, "sqlite"},
		{"production wildcard cors", map[string]string{"APP_ENV": "production", "JWT_SECRET": strong, "SALON_HTTP_CORS_ALLOW_ORIGINS": "*"}, "cors_allow_origins"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := load(viper.New())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("production passes with strong secret", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", strong)
		t.Setenv("SALON_HTTP_CORS_ALLOW_ORIGINS", "https://app.example")

		cfg, err := load(viper.New())
		require.NoError(t, err)
		assert.True(t, cfg.App.IsProduction())
	})
}
