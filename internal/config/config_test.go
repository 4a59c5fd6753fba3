package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, "file", cfg.Store)
	assert.Equal(t, 0, cfg.Profile.AgeMin)
	assert.Equal(t, 18, cfg.Profile.AgeMax)
	assert.Equal(t, filepath.Join(cfg.DataDir, "kinmatch.log"), cfg.Log.File)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
api_url: https://kin.example/api
data_dir: `+dir+`
store: sqlite
log:
  level: debug
  file: "-"
profile:
  age_min: 2
  age_max: 12
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://kin.example/api", cfg.APIURL)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "-", cfg.Log.File)
	assert.Equal(t, 2, cfg.Profile.AgeMin)
	assert.Equal(t, 12, cfg.Profile.AgeMax)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "api_url: https://file.example\nstore: file\n")
	t.Setenv("KINMATCH_API_URL", "https://env.example")
	t.Setenv("KINMATCH_STORE", "sqlite")
	t.Setenv("KINMATCH_PROFILE_AGE_MAX", "10")
	t.Setenv("KINMATCH_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example", cfg.APIURL)
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, 10, cfg.Profile.AgeMax)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name, body string
	}{
		{"bad store", "store: redis\n"},
		{"inverted ages", "profile:\n  age_min: 10\n  age_max: 5\n"},
		{"bad yaml", "store: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data"), expandHome("~/data"))
	assert.Equal(t, "/abs", expandHome("/abs"))
}
