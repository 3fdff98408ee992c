package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWithPath("nonexistent.env")
	require.NoError(t, err)

	assert.Equal(t, "fair-ticket", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "fairticket.facts", cfg.Kafka.FactsTopic)

	assert.Equal(t, uint64(31337), cfg.Verifier.ChainID)
	assert.Equal(t, "0x5fbdb2315678afecb367f032d93f642f64180aa3", cfg.Verifier.Address)
	assert.Equal(t, time.Minute, cfg.Verifier.ChallengeTTL)
	assert.Equal(t, 10*time.Minute, cfg.Verifier.LockoutDuration)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("VERIFIER_CHAIN_ID", "1")
	t.Setenv("VERIFIER_LOCKOUT_DURATION", "5m")
	t.Setenv("VERIFIER_ADMIN_ADDRESS", "0xAAAA000000000000000000000000000000000001")

	cfg, err := LoadWithPath("nonexistent.env")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, uint64(1), cfg.Verifier.ChainID)
	assert.Equal(t, 5*time.Minute, cfg.Verifier.LockoutDuration)
	assert.Equal(t, "0xaaaa000000000000000000000000000000000001", cfg.Verifier.AdminAddress)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg, err := LoadWithPath("nonexistent.env")
	require.NoError(t, err)

	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())
	cfg.Server.Port = 8080

	cfg.JWT.Secret = ""
	assert.Error(t, cfg.Validate())
	cfg.JWT.Secret = "secret"

	cfg.Verifier.ChallengeTTL = 0
	assert.Error(t, cfg.Validate())
	cfg.Verifier.ChallengeTTL = time.Minute

	cfg.Verifier.Address = "0x1234"
	assert.Error(t, cfg.Validate())
	cfg.Verifier.Address = "0x5fbdb2315678afecb367f032d93f642f64180aa3"

	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	cfg, err := LoadWithPath("nonexistent.env")
	require.NoError(t, err)

	cfg.App.Environment = "production"
	assert.Error(t, cfg.Validate())

	cfg.JWT.Secret = "a-real-secret"
	assert.NoError(t, cfg.Validate())
}
