package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APP_PORT", "")
	t.Setenv("AUTH_SIGNING_KEY", "")
	t.Setenv("APP_ENV", "")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.NotEmpty(t, cfg.Auth.SigningKey)
}

func TestNewConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "postgres_without_password",
			env:     map[string]string{"STORE_DRIVER": "postgres", "DB_PASSWORD": ""},
			wantErr: "DB_PASSWORD is required",
		},
		{
			name:    "unknown_driver",
			env:     map[string]string{"STORE_DRIVER": "redis"},
			wantErr: `unknown STORE_DRIVER "redis"`,
		},
		{
			name:    "production_without_key",
			env:     map[string]string{"STORE_DRIVER": "memory", "APP_ENV": "production", "AUTH_SIGNING_KEY": ""},
			wantErr: "AUTH_SIGNING_KEY is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := NewConfig()
			require.Error(t, err)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestGetEnvAsDuration_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("DB_MAX_CONN_LIFETIME", "soon")
	assert.Equal(t, time.Minute, getEnvAsDuration("DB_MAX_CONN_LIFETIME", time.Minute))
}
