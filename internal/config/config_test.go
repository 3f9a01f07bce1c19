package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altinukshini/urlgrep/internal/model"
)

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := NewStore(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, Default(dir), cfg)
	assert.Equal(t, filepath.Join(dir, "urlgrep.log"), cfg.Log.Path)
}

func TestSaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	want := Default(dir)
	want.Root = "http://build.local/logs/"
	want.Extensions = "txt, log"
	want.Pattern = `ERROR \d+`
	want.Login = "ci"
	want.Secret = "hunter2"
	want.BasicAuth = true
	want.Log.Level = "debug"

	require.NoError(t, store.Save(want))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	cfg := Default(dir)
	cfg.Login = "file-user"
	cfg.Secret = "from-file"
	require.NoError(t, store.Save(cfg))

	t.Setenv("URLGREP_SECRET", "from-env")
	t.Setenv("URLGREP_LOG_LEVEL", "warn")

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "file-user", got.Login)
	assert.Equal(t, "from-env", got.Secret)
	assert.Equal(t, "warn", got.Log.Level)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("root: [unclosed"), 0o600))

	_, err := NewStore(dir).Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "url root", mutate: func(c *Config) { c.Root = "https://example.com/" }},
		{name: "file root", mutate: func(c *Config) { c.Root = "./testdata" }},
		{name: "empty pattern is fine", mutate: func(c *Config) { c.Root = "http://x/"; c.Pattern = "" }},
		{name: "missing root", mutate: func(c *Config) {}, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Root = "http://x/"; c.Log.Encoding = "xml" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRequestFromForm(t *testing.T) {
	cfg := Config{Root: " http://x/idx ", Extensions: ".txt,log", Pattern: "a+", Login: "u", Secret: "p"}
	req := cfg.Request()

	assert.Equal(t, "http://x/idx", req.Root)
	assert.Equal(t, []string{"txt", "log"}, req.Extensions)
	assert.Equal(t, model.AuthCredential, req.Auth.Mode)

	cfg.BasicAuth = true
	assert.Equal(t, model.AuthBasic, cfg.Request().Auth.Mode)

	cfg.Login = ""
	assert.Equal(t, model.AuthNone, cfg.Request().Auth.Mode)
}
