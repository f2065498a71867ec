package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chasedut/chatter/internal/env"
	"github.com/stretchr/testify/require"
)

func testEnv(t *testing.T, extra map[string]string) env.Env {
	t.Helper()
	m := map[string]string{
		"XDG_CONFIG_HOME": filepath.Join(t.TempDir(), "config"),
		"XDG_DATA_HOME":   filepath.Join(t.TempDir(), "data"),
	}
	for k, v := range extra {
		m[k] = v
	}
	return env.NewFromMap(m)
}

func TestLoadDefaults(t *testing.T) {
	e := testEnv(t, nil)
	cfg, err := load(t.TempDir(), false, e)
	require.NoError(t, err)

	require.Equal(t, defaultServerURL, cfg.Server.URL)
	require.Equal(t, defaultRequestTimeout, cfg.Server.RequestTimeout)
	require.Equal(t, defaultWordWrap, cfg.Options.WordWrap)
	require.Equal(t, defaultModelType, cfg.Options.DefaultModel)
	require.Equal(t, filepath.Join(e.Get("XDG_DATA_HOME"), "chatter"), cfg.Options.DataDirectory)
	require.False(t, cfg.Options.Debug)
}

func TestLoadMergesGlobalAndLocal(t *testing.T) {
	e := testEnv(t, nil)
	global := filepath.Join(e.Get("XDG_CONFIG_HOME"), "chatter", "chatter.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(global), 0o755))
	require.NoError(t, os.WriteFile(global, []byte(`{"server":{"url":"http://global:1","token":"abc"},"options":{"word_wrap":60}}`), 0o600))

	wd := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(wd, "chatter.json"), []byte(`{"server":{"url":"http://local:2/"}}`), 0o600))

	cfg, err := load(wd, true, e)
	require.NoError(t, err)
	require.Equal(t, "http://local:2", cfg.Server.URL)
	require.Equal(t, "abc", cfg.Server.Token)
	require.Equal(t, 60, cfg.Options.WordWrap)
	require.True(t, cfg.Options.Debug)
	require.Equal(t, wd, cfg.WorkingDir())
}

func TestLoadEnvOverrides(t *testing.T) {
	e := testEnv(t, map[string]string{
		"CHATTER_SERVER_URL": "https://chat.example.com/",
		"CHATTER_TOKEN":      "tok",
		"CHATTER_DATA_DIR":   "/tmp/chatter-data",
	})
	cfg, err := load(t.TempDir(), false, e)
	require.NoError(t, err)
	require.Equal(t, "https://chat.example.com", cfg.Server.URL)
	require.Equal(t, "tok", cfg.Server.Token)
	require.Equal(t, "/tmp/chatter-data", cfg.Options.DataDirectory)
}

func TestLoadRejectsBadURL(t *testing.T) {
	e := testEnv(t, map[string]string{"CHATTER_SERVER_URL": "localhost:5000"})
	_, err := load(t.TempDir(), false, e)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "invalid server url"))
}

func TestSetConfigField(t *testing.T) {
	e := testEnv(t, nil)
	cfg, err := load(t.TempDir(), false, e)
	require.NoError(t, err)

	require.NoError(t, cfg.SetConfigField("server.url", "http://set:9"))
	require.NoError(t, cfg.SetConfigField("options.word_wrap", 42))

	data, err := os.ReadFile(cfg.GlobalConfigPath())
	require.NoError(t, err)
	var got Config
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, "http://set:9", got.Server.URL)
	require.Equal(t, 42, got.Options.WordWrap)

	reloaded, err := load(t.TempDir(), false, e)
	require.NoError(t, err)
	require.Equal(t, "http://set:9", reloaded.Server.URL)
}

func TestSetServerURL(t *testing.T) {
	cfg, err := load(t.TempDir(), false, testEnv(t, nil))
	require.NoError(t, err)

	require.NoError(t, cfg.SetServerURL("https://chat.example.com/"))
	require.Equal(t, "https://chat.example.com", cfg.Server.URL)

	require.Error(t, cfg.SetServerURL("chat.example.com"))
	require.Equal(t, "https://chat.example.com", cfg.Server.URL)
}
