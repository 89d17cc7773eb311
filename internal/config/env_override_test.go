package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("BMXSHOP_API_URL overrides base URL", func(t *testing.T) {
		t.Setenv("BMXSHOP_API_URL", "https://env.example.com")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "https://env.example.com", cfg.API.BaseURL)
	})

	t.Run("BMXSHOP_API_TIMEOUT parses durations", func(t *testing.T) {
		t.Setenv("BMXSHOP_API_TIMEOUT", "45s")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, 45*time.Second, cfg.API.Timeout)
	})

	t.Run("invalid BMXSHOP_API_TIMEOUT is ignored", func(t *testing.T) {
		t.Setenv("BMXSHOP_API_TIMEOUT", "soon")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	})

	t.Run("BMXSHOP_STATE_DIR overrides storage dir", func(t *testing.T) {
		t.Setenv("BMXSHOP_STATE_DIR", "/tmp/bmx-test")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/tmp/bmx-test", cfg.Storage.Dir)
	})

	t.Run("BMXSHOP_STRIPE_KEY sets provider when unset", func(t *testing.T) {
		t.Setenv("BMXSHOP_STRIPE_KEY", "pk_test_123")

		cfg := Default()
		cfg.Payment.Provider = ""
		cfg.applyEnvOverrides()

		assert.Equal(t, "pk_test_123", cfg.Payment.PublishableKey)
		assert.Equal(t, "stripe", cfg.Payment.Provider)
	})

	t.Run("BMXSHOP_STRIPE_KEY does not override existing provider", func(t *testing.T) {
		t.Setenv("BMXSHOP_STRIPE_KEY", "pk_test_123")

		cfg := Default()
		cfg.Payment.Provider = "static"
		cfg.applyEnvOverrides()

		assert.Equal(t, "static", cfg.Payment.Provider)
	})
}
