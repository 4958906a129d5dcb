package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":         "postgres://localhost:5432/duka",
		"REDIS_URL":            "redis://localhost:6379/0",
		"PORT":                 "",
		"CURRENCY_CODE":        "",
		"PRICING_TAX_RATE_BPS": "",
		"CART_TTL":             "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "TZS", cfg.Currency)
	require.Equal(t, 1800, cfg.TaxRateBps)
	require.Equal(t, 168*time.Hour, cfg.CartTTL)
	require.Equal(t, 5*time.Minute, cfg.SettingsCacheTTL)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379/0",
	})
	require.Error(t, err)
}

func TestLoadParsesOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":         "postgres://localhost:5432/duka",
		"REDIS_URL":            "redis://localhost:6379/0",
		"PRICING_TAX_RATE_BPS": "2000",
		"CART_TTL":             "48h",
		"RATE_LIMIT_MAX":       "30",
		"CORS_ALLOWED_ORIGINS": "https://till.example.com, https://admin.example.com",
	})
	require.NoError(t, err)
	require.Equal(t, 2000, cfg.TaxRateBps)
	require.Equal(t, 48*time.Hour, cfg.CartTTL)
	require.Equal(t, 30, cfg.RateLimitMax)
	require.Equal(t, []string{"https://till.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadClampsNegativeTaxRate(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":         "postgres://localhost:5432/duka",
		"REDIS_URL":            "redis://localhost:6379/0",
		"PRICING_TAX_RATE_BPS": "-50",
	})
	require.NoError(t, err)
	require.Zero(t, cfg.TaxRateBps)
}
