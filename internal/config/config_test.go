package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to set env vars and clean up after
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if old == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, old)
		}
	})
}

func TestLoad_WithValidConfig(t *testing.T) {
	setEnv(t, "GATEWAY_KEY_ID", "rzp_test_key")
	setEnv(t, "GATEWAY_KEY_SECRET", "supersecret")
	setEnv(t, "PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DefaultGatewayBaseURL, cfg.GatewayBaseURL)
	assert.Equal(t, int64(DefaultRegistrationFee), cfg.RegistrationFee)
	assert.Equal(t, DefaultCurrency, cfg.Currency)
}

func TestLoad_MissingGatewayKey(t *testing.T) {
	setEnv(t, "GATEWAY_KEY_ID", "")
	setEnv(t, "GATEWAY_KEY_SECRET", "supersecret")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "GATEWAY_KEY_ID is required")
}

func TestLoad_MissingGatewaySecret(t *testing.T) {
	setEnv(t, "GATEWAY_KEY_ID", "rzp_test_key")
	setEnv(t, "GATEWAY_KEY_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "GATEWAY_KEY_SECRET is required")
}

func TestLoad_WebhookSecretOptional(t *testing.T) {
	setEnv(t, "GATEWAY_KEY_ID", "rzp_test_key")
	setEnv(t, "GATEWAY_KEY_SECRET", "supersecret")
	setEnv(t, "WEBHOOK_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.WebhookSecret)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name: "valid",
			config: Config{
				GatewayBaseURL:   "https://gateway.test",
				GatewayKeyID:     "key",
				GatewayKeySecret: "secret",
				RegistrationFee:  100,
				Currency:         "INR",
			},
		},
		{
			name: "zero fee",
			config: Config{
				GatewayBaseURL:   "https://gateway.test",
				GatewayKeyID:     "key",
				GatewayKeySecret: "secret",
				RegistrationFee:  0,
				Currency:         "INR",
			},
			wantErr: "REGISTRATION_FEE",
		},
		{
			name: "missing currency",
			config: Config{
				GatewayBaseURL:   "https://gateway.test",
				GatewayKeyID:     "key",
				GatewayKeySecret: "secret",
				RegistrationFee:  100,
			},
			wantErr: "CURRENCY",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	setEnv(t, "REGPAY_TEST_STR", "value")
	assert.Equal(t, "value", getEnv("REGPAY_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", getEnv("REGPAY_TEST_STR_MISSING", "fallback"))

	setEnv(t, "REGPAY_TEST_INT", "42")
	assert.Equal(t, int64(42), getEnvInt64("REGPAY_TEST_INT", 7))
	setEnv(t, "REGPAY_TEST_INT_BAD", "not-a-number")
	assert.Equal(t, int64(7), getEnvInt64("REGPAY_TEST_INT_BAD", 7))
}
