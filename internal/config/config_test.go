package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("PAYPAL_RECEIVER_EMAIL", "seller@example.com")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, []string{"127.0.0.1", "localhost"}, cfg.AllowedHosts)
	assert.Equal(t, "100", cfg.ShippingCost.String())
	assert.Equal(t, "USD", cfg.PayPal.CurrencyCode)
	assert.True(t, cfg.PayPal.Test)
	assert.True(t, cfg.PayPal.TrustReturn)
	assert.Equal(t, "console", cfg.Email.Backend)
	assert.Equal(t, 587, cfg.Email.Port)
	assert.Equal(t, "https://www.sandbox.paypal.com/cgi-bin/webscr", cfg.PayPalActionURL())
}

func TestLoad_FromEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("SHIPPING_COST", "4.50")
	t.Setenv("ALLOWED_HOSTS", "shop.example.com, api.example.com")
	t.Setenv("PAYPAL_TEST", "false")
	t.Setenv("DATABASE_HOST", "db")
	t.Setenv("DATABASE_PORT", "6543")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4.5", cfg.ShippingCost.String())
	assert.Len(t, cfg.AllowedHosts, 2)
	assert.Equal(t, "https://www.paypal.com/cgi-bin/webscr", cfg.PayPalActionURL())
	assert.Equal(t, "postgres://bookstore:bookstore@db:6543/bookstore?sslmode=disable", cfg.Postgres.DSN())
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("PAYPAL_RECEIVER_EMAIL", "seller@example.com")
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_NegativeShipping(t *testing.T) {
	setRequired(t)
	t.Setenv("SHIPPING_COST", "-1")

	_, err := Load()
	require.Error(t, err)
}
