package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Backend.URL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 2, cfg.Backend.MaxRetries)
	assert.Equal(t, "https://www.omdbapi.com/", cfg.OMDb.URL)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.False(t, cfg.IsAuthenticated())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	yaml := `backend:
  url: https://lists.example.com
  timeout: 3s
  max_retries: 0
omdb:
  api_key: abc123
session:
  token: tok
  username: ana
cache:
  path: ""
browser:
  command: firefox
  args: ["--new-tab"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600))

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "https://lists.example.com", cfg.Backend.URL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 0, cfg.Backend.MaxRetries)
	assert.Equal(t, "abc123", cfg.OMDb.APIKey)
	assert.Equal(t, 15*time.Second, cfg.OMDb.Timeout)
	assert.Empty(t, cfg.Cache.Path)
	assert.Equal(t, "firefox", cfg.Browser.Command)
	assert.Equal(t, []string{"--new-tab"}, cfg.Browser.Args)
	assert.True(t, cfg.IsAuthenticated())
	assert.Equal(t, "ana", cfg.Session.Username)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CINELIST_BACKEND_URL", "http://env:9000")
	t.Setenv("CINELIST_OMDB_API_KEY", "fromenv")

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, "http://env:9000", cfg.Backend.URL)
	assert.Equal(t, "fromenv", cfg.OMDb.APIKey)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: [unclosed"), 0600))

	_, err := NewLoader(dir).Load()
	assert.Error(t, err)
}

func TestSessionRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	l := NewLoader(dir)
	cfg, err := l.Load()
	require.NoError(t, err)
	cfg.OMDb.APIKey = "k"
	require.NoError(t, l.Save(cfg))
	require.NoError(t, l.SaveSession("tok", "ana"))

	info, err := os.Stat(l.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cfg, err = NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", cfg.Session.Token)
	assert.Equal(t, "ana", cfg.Session.Username)
	assert.Equal(t, "k", cfg.OMDb.APIKey, "saving the session keeps other settings")

	require.NoError(t, l.ClearSession())
	cfg, err = NewLoader(dir).Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsAuthenticated())
	assert.Equal(t, "k", cfg.OMDb.APIKey)
}
