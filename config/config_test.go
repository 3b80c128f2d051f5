package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/brackets?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "postgres://localhost/brackets?sslmode=disable", cfg.DatabaseURL)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/brackets")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
}

func TestLoadValidatesPort(t *testing.T) {
	testCases := []struct {
		name string
		port string
		ok   bool
	}{
		{name: "custom port", port: "9000", ok: true},
		{name: "not a number", port: "http", ok: false},
		{name: "zero", port: "0", ok: false},
		{name: "too large", port: "70000", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv("SERVER_PORT", tc.port)

			cfg, err := Load()
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, 9000, cfg.ServerPort)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
