package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/baydesk/internal/geometry"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("BAYDESK_CONFIG", path)
	return path
}

func TestLoadDefaults(t *testing.T) {
	writeConfig(t, "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.API.Environment)
	assert.Equal(t, "http://localhost:8787/api", cfg.API.BaseURL)
	assert.Equal(t, SourceRemote, cfg.Catalog.Source)
	assert.Equal(t, 20, cfg.UI.PageSize)
	assert.Equal(t, DefaultDialogs(), cfg.UI.Dialogs)
	assert.Equal(t, "BAYDESK_TOKEN", cfg.API.TokenEnv)
}

func TestBaseURLPrecedence(t *testing.T) {
	t.Run("environment table", func(t *testing.T) {
		writeConfig(t, `
[api]
environment = "staging"
`)
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "https://staging.baydesk.internal/api", cfg.API.BaseURL)
	})

	t.Run("explicit override wins", func(t *testing.T) {
		writeConfig(t, `
[api]
environment = "production"
base_url = "https://override.example.com/api/"
`)
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "https://override.example.com/api", cfg.API.BaseURL)
	})

	t.Run("env var override", func(t *testing.T) {
		writeConfig(t, "")
		t.Setenv("BAYDESK_API_BASE_URL", "http://127.0.0.1:9000/api")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:9000/api", cfg.API.BaseURL)
	})

	t.Run("custom environment", func(t *testing.T) {
		writeConfig(t, `
[api]
environment = "qa"

[api.environments]
qa = "https://qa.example.com/api"
`)
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "https://qa.example.com/api", cfg.API.BaseURL)
	})
}

func TestResolveBaseURLErrors(t *testing.T) {
	envs := map[string]string{"development": "http://localhost:8787/api", "broken": "/relative/api"}

	_, err := APIConfig{Environment: "nowhere", Environments: envs}.ResolveBaseURL()
	require.ErrorContains(t, err, `"nowhere"`)
	require.ErrorContains(t, err, "development")

	_, err = APIConfig{Environment: "broken", Environments: envs}.ResolveBaseURL()
	require.ErrorContains(t, err, "absolute")

	_, err = APIConfig{BaseURL: "ftp://files.example.com"}.ResolveBaseURL()
	require.Error(t, err)
}

func TestLoadRejectsInvalidDialogBounds(t *testing.T) {
	writeConfig(t, `
[ui.dialogs.model_browser]
min_width = 500
max_width = 400
`)
	_, err := Load()
	require.ErrorIs(t, err, geometry.ErrInvalidBounds)
	require.ErrorContains(t, err, "model_browser")
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	writeConfig(t, `
[catalog]
source = "carrier-pigeon"
`)
	_, err := Load()
	require.ErrorContains(t, err, "catalog.source")

	writeConfig(t, "")
	t.Setenv("BAYDESK_CATALOG_SOURCE", "LOCAL")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, cfg.Catalog.Source)
}

func TestLoadRawSkipsAPIResolution(t *testing.T) {
	writeConfig(t, `
[api]
environment = "nowhere"
keyring_account = "shop-2"
`)
	_, err := Load()
	require.ErrorContains(t, err, `"nowhere"`)

	cfg, err := LoadRaw()
	require.NoError(t, err)
	assert.Equal(t, "shop-2", cfg.API.KeyringAccount)
	assert.Empty(t, cfg.API.BaseURL)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BAYDESK_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))
	_, err := Load()
	require.Error(t, err)
}

func TestSaveOmitsTokens(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := Load()
	require.NoError(t, err)
	cfg.API.Token = "super-secret"
	cfg.Catalog.Source = SourceLocal
	require.NoError(t, Save(cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "super-secret")

	again, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, again.Catalog.Source)
}
