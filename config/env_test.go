package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("SOME_UNSET_KEY", "")
	assert.Equal(t, "fallback", getEnv("SOME_UNSET_KEY", "fallback"))

	t.Setenv("SOME_SET_KEY", "value")
	assert.Equal(t, "value", getEnv("SOME_SET_KEY", "fallback"))
}

func TestDBConfigDSN(t *testing.T) {
	dsn := DBConfig{
		Host:     "db.local",
		Port:     "5433",
		User:     "billing",
		Password: "secret",
		Name:     "distributor",
		SSLMode:  "disable",
	}.DSN()

	assert.Equal(t, "host=db.local user=billing password=secret dbname=distributor port=5433 sslmode=disable", dsn)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "invoices", cfg.Documents.Dir)
	assert.True(t, cfg.Billing.AllowNegativeStock)
}

func TestLoadConfigStockPolicyOverride(t *testing.T) {
	t.Setenv("BILLING_ALLOW_NEGATIVE_STOCK", "false")
	cfg := LoadConfig()
	assert.False(t, cfg.Billing.AllowNegativeStock)
}
