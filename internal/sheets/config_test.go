package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Run("oauth credentials", func(t *testing.T) {
		t.Setenv("COFRE_SHEETS_CLIENT_ID", "id")
		t.Setenv("COFRE_SHEETS_CLIENT_SECRET", "secret")
		t.Setenv("COFRE_SHEETS_REFRESH_TOKEN", "token")
		t.Setenv("COFRE_SHEETS_SERVICE_ACCOUNT_PATH", "")
		t.Setenv("COFRE_SHEETS_SPREADSHEET_NAME", "")

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromEnv())
		assert.Equal(t, "id", cfg.ClientID)
		assert.Equal(t, "Cofre Report", cfg.SpreadsheetName, "name falls back to the default")
	})

	t.Run("service account", func(t *testing.T) {
		t.Setenv("COFRE_SHEETS_CLIENT_ID", "")
		t.Setenv("COFRE_SHEETS_CLIENT_SECRET", "")
		t.Setenv("COFRE_SHEETS_REFRESH_TOKEN", "")
		t.Setenv("COFRE_SHEETS_SERVICE_ACCOUNT_PATH", "/tmp/sa.json")

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromEnv())
		assert.Equal(t, "/tmp/sa.json", cfg.ServiceAccountPath)
	})

	t.Run("missing auth", func(t *testing.T) {
		t.Setenv("COFRE_SHEETS_CLIENT_ID", "")
		t.Setenv("COFRE_SHEETS_CLIENT_SECRET", "")
		t.Setenv("COFRE_SHEETS_REFRESH_TOKEN", "")
		t.Setenv("COFRE_SHEETS_SERVICE_ACCOUNT_PATH", "")

		cfg := DefaultConfig()
		assert.Error(t, cfg.LoadFromEnv())
	})
}

func TestConfigValidate(t *testing.T) {
	base := DefaultConfig()
	base.ServiceAccountPath = "/tmp/sa.json"

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "service account ok", mutate: func(*Config) {}},
		{
			name: "no auth",
			mutate: func(c *Config) {
				c.ServiceAccountPath = ""
			},
			wantErr: true,
		},
		{
			name: "both auth methods",
			mutate: func(c *Config) {
				c.ClientID = "id"
				c.ClientSecret = "secret"
				c.RefreshToken = "token"
			},
			wantErr: true,
		},
		{
			name: "zero batch size",
			mutate: func(c *Config) {
				c.BatchSize = 0
			},
			wantErr: true,
		},
		{
			name: "negative retry delay",
			mutate: func(c *Config) {
				c.RetryDelay = -1
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
