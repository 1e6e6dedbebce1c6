package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DOSSIER_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("DOSSIER_API_BASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8787", cfg.API.BaseURL)
	require.Equal(t, 5, cfg.API.PollSeconds)
	require.Equal(t, "en", cfg.UI.Locale)
	require.Equal(t, "02/01/2006", cfg.UI.DateFormat)
	require.Equal(t, filepath.Join(cfg.UI.DataDir, "cache.db"), cfg.CachePath(),
		"cache defaults under the data dir")
}

func TestCachePathPrefersExplicitSetting(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	cfg.UI.DataDir = filepath.Join("/var", "lib", "dossier")
	require.Equal(t, filepath.Join("/var", "lib", "dossier", "cache.db"), cfg.CachePath())

	cfg.Cache.Path = "/elsewhere/dossier.db"
	require.Equal(t, "/elsewhere/dossier.db", cfg.CachePath())
}

func TestLoadReadsFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base_url = "https://dossier.example.com"
poll_seconds = 9

[ui]
locale = "fr"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("DOSSIER_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://dossier.example.com", cfg.API.BaseURL)
	require.Equal(t, 9, cfg.API.PollSeconds)
	require.Equal(t, "fr", cfg.UI.Locale)

	// env beats file
	t.Setenv("DOSSIER_API_POLL_SECONDS", "2")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, 2, cfg.API.PollSeconds)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("DOSSIER_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.API.BaseURL = "https://other.example.com"
	cfg.UI.Locale = "fr"
	require.NoError(t, Save(cfg))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://other.example.com", got.API.BaseURL)
	require.Equal(t, "fr", got.UI.Locale)
}

func TestResolveTokenPrefersEnv(t *testing.T) {
	t.Setenv("DOSSIER_API_TOKEN", "env-token")

	cfg := Config{}
	cfg.API.Token = "file-token"
	cfg.API.TokenEnv = "DOSSIER_API_TOKEN"
	require.Equal(t, "env-token", ResolveToken(cfg))

	t.Setenv("DOSSIER_API_TOKEN", "")
	require.Equal(t, "file-token", ResolveToken(cfg))
}
