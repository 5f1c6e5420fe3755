package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonguwon/jwt-login/pkg/chaterr"
)

func TestLoad(t *testing.T) {
	t.Run("missing file means defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8001", cfg.API.BaseURL)
		assert.Equal(t, "ws://localhost:8001/connect", cfg.Live.ConnectURL)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chat.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://chat.example.com
  token: file-token
live:
  connect_url: wss://chat.example.com/connect
logging:
  level: debug
`), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://chat.example.com", cfg.API.BaseURL)
		assert.Equal(t, "file-token", cfg.API.Token)
		assert.Equal(t, "wss://chat.example.com/connect", cfg.Live.ConnectURL)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chat.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api:\n  token: file-token\n"), 0o644))
		t.Setenv("CHAT_TOKEN", "env-token")
		t.Setenv("CHAT_API_URL", "https://env.example.com")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "env-token", cfg.API.Token)
		assert.Equal(t, "https://env.example.com", cfg.API.BaseURL)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chat.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api: ["), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.API.Token = "tok"
	assert.NoError(t, cfg.Validate())

	cfg.API.Token = ""
	assert.ErrorIs(t, cfg.Validate(), chaterr.ErrValidation)

	cfg = Default()
	cfg.API.Token = "tok"
	cfg.Live.ConnectURL = ""
	assert.ErrorIs(t, cfg.Validate(), chaterr.ErrValidation)
}
