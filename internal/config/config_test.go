package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateHome points the loader at an empty temp home and clears every
// environment variable the loader reads.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"TMDB_API_KEY", "GITHUB_TOKEN", "GITHUB_REPO", "GITHUB_RELEASE_TAG", "REELDEAL_DATA_DIR"} {
		t.Setenv(key, "")
	}
	return home
}

func TestLoadConfigDefaults(t *testing.T) {
	home := isolateHome(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Empty(t, cfg.TMDB.APIKey)
	assert.Empty(t, cfg.GitHub.Token)
	assert.Equal(t, DefaultReleaseTag, cfg.GitHub.ReleaseTag)
	assert.Equal(t, filepath.Join(home, ".reeldeal", "data"), cfg.Data.Dir)
	assert.Equal(t, DefaultMaxFeatures, cfg.Data.MaxFeatures)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	isolateHome(t)
	t.Setenv("TMDB_API_KEY", "env-key")
	t.Setenv("GITHUB_TOKEN", "env-token")
	t.Setenv("GITHUB_REPO", "octo/movies")
	t.Setenv("GITHUB_RELEASE_TAG", "v2.0.0")
	t.Setenv("REELDEAL_DATA_DIR", "/tmp/reeldeal-data")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.TMDB.APIKey)
	assert.Equal(t, "env-token", cfg.GitHub.Token)
	assert.Equal(t, "octo/movies", cfg.GitHub.Repo)
	assert.Equal(t, "v2.0.0", cfg.GitHub.ReleaseTag)
	assert.Equal(t, "/tmp/reeldeal-data", cfg.Data.Dir)
}

func TestLoadConfigFromFile(t *testing.T) {
	home := isolateHome(t)
	content := `
[tmdb]
api_key = "file-key"

[github]
token = "file-token"
repo = "octo/archive"

[data]
max_features = 2500
`
	require.NoError(t, os.WriteFile(filepath.Join(home, ".reeldeal.toml"), []byte(content), 0644))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.TMDB.APIKey)
	assert.Equal(t, "file-token", cfg.GitHub.Token)
	assert.Equal(t, "octo/archive", cfg.GitHub.Repo)
	assert.Equal(t, 2500, cfg.Data.MaxFeatures)
	assert.Equal(t, DefaultReleaseTag, cfg.GitHub.ReleaseTag, "defaults still fill unset fields")
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	home := isolateHome(t)
	t.Setenv("TMDB_API_KEY", "env-key")
	t.Setenv("GITHUB_RELEASE_TAG", "v9.0.0")
	require.NoError(t, os.WriteFile(filepath.Join(home, ".reeldeal.toml"), []byte(`
[tmdb]
api_key = "file-key"

[github]
token = "file-token"
release_tag = "v1.2.3"
`), 0644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.TMDB.APIKey, "a set environment variable beats the file")
	assert.Equal(t, "v9.0.0", cfg.GitHub.ReleaseTag)
	assert.Equal(t, "file-token", cfg.GitHub.Token, "fields the environment leaves unset keep the file value")
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	home := isolateHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".reeldeal.toml"), []byte("not [valid toml"), 0644))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	isolateHome(t)

	want := &Config{}
	want.TMDB.APIKey = "saved-key"
	want.GitHub.Repo = "octo/movies"
	want.GitHub.ReleaseTag = "v3.1.0"
	want.Data.MaxFeatures = 1000
	require.NoError(t, SaveConfig(want))

	got, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "saved-key", got.TMDB.APIKey)
	assert.Equal(t, "octo/movies", got.GitHub.Repo)
	assert.Equal(t, "v3.1.0", got.GitHub.ReleaseTag)
	assert.Equal(t, 1000, got.Data.MaxFeatures)
}
