package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cr3t",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "catalog-api", cfg.JWT.Issuer)
	assert.Equal(t, 2, cfg.JWT.ExpiryHours)
	assert.True(t, cfg.Lockout.Enabled)
	assert.Equal(t, 5, cfg.Lockout.MaxFailedAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Lockout.Duration)
	assert.Equal(t, 6, cfg.PasswordPolicy().MinLength)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":           "s3cr3t",
		"ENV":                  "production",
		"STORE_DRIVER":         "mongo",
		"CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example",
		"LOCKOUT_DURATION":     "5m",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Lockout.Duration)
	assert.Equal(t, "s3cr3t", cfg.JWTSettings().Secret)
}

func TestLoad_RejectsMissingOrBlankSecret(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.Error(t, err)

	_, err = load(context.Background(), envconfig.MapLookuper(map[string]string{"JWT_SECRET": "   "}))
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{"JWT_SECRET": "s3cr3t"}))
	require.NoError(t, err)

	cfg.JWT.ExpiryHours = 0
	assert.ErrorContains(t, cfg.Validate(), "JWT_EXPIRY_HOURS")

	cfg.JWT.ExpiryHours = 2
	cfg.StoreDriver = "sqlite"
	assert.ErrorContains(t, cfg.Validate(), "STORE_DRIVER")
	cfg.StoreDriver = DriverPostgres

	cfg.JWT.Issuer = ""
	assert.ErrorContains(t, cfg.Validate(), "JWT_ISSUER")
	cfg.JWT.Issuer = "catalog-api"

	cfg.JWT.Audience = "  "
	assert.ErrorContains(t, cfg.Validate(), "JWT_AUDIENCE")
	cfg.JWT.Audience = "https://localhost"

	assert.NoError(t, cfg.Validate())
}

func TestLoad_RejectsBlankIssuerOrAudience(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":   "s3cr3t",
		"JWT_ISSUER":   "",
		"JWT_AUDIENCE": "",
	}))
	require.Error(t, err)
	assert.ErrorContains(t, err, "JWT_ISSUER")
	assert.ErrorContains(t, err, "JWT_AUDIENCE")
}
