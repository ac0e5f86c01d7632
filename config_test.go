package photoflow_test

import (
	"os"
	"path/filepath"
	"testing"

	photoflow "github.com/SajalTalukder/photoflow-backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := photoflow.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, photoflow.EnvDevelopment, cfg.Environment)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 24, cfg.Auth.TokenExpiration)
	assert.Equal(t, 1, cfg.Auth.CookieExpiration)
	assert.Equal(t, "photoflow", cfg.Auth.Issuer)
	assert.NotEmpty(t, cfg.Persistence.DSN)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	raw := `
environment: production
port: 8080
auth:
  token_expiration: 12
  cookie_expiration: 7
persistence:
  dsn: "file:test.db"
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := photoflow.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, photoflow.EnvProduction, cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 12, cfg.Auth.TokenExpiration)
	assert.Equal(t, 7, cfg.Auth.CookieExpiration)
	assert.Equal(t, "file:test.db", cfg.Persistence.DSN)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: 8080\n"), 0o600))

	t.Setenv("PORT", "9090")

	cfg, err := photoflow.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
}

func TestLoadConfigRejectsBadEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "staging")

	_, err := photoflow.LoadConfig("")
	assert.Error(t, err)
}

func TestValidateSecrets(t *testing.T) {
	cfg, err := photoflow.LoadConfig("")
	require.NoError(t, err)

	assert.Error(t, cfg.ValidateSecrets())

	// Auth alone is not enough: the mailer section gets validated too.
	cfg.Auth.SigningKey = "0123456789abcdef0123456789abcdef"
	assert.Error(t, cfg.ValidateSecrets())

	cfg.Mailer.APIKey = "xkeysib-test"
	cfg.Mailer.SenderEmail = "noreply@photoflow.test"

	assert.Nil(t, cfg.ValidateSecrets())
}

func TestValidateSecretsRejectsShortSigningKey(t *testing.T) {
	cfg, err := photoflow.LoadConfig("")
	require.NoError(t, err)

	cfg.Auth.SigningKey = "too-short"
	cfg.Mailer.APIKey = "xkeysib-test"
	cfg.Mailer.SenderEmail = "noreply@photoflow.test"

	assert.Error(t, cfg.ValidateSecrets())
}
