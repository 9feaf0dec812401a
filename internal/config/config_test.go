package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	raw := "server:\n  port: 9090\nclient:\n  dir: /srv/client\nlogging:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, ":9090", cfg.Server.Addr())
	require.Equal(t, "/srv/client", cfg.Client.Dir)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadWithoutPathUsesDefaults(t *testing.T) {
	t.Setenv(envConfigPath, "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr())
	require.Empty(t, cfg.Client.Dir)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestAddrEnvFallback(t *testing.T) {
	t.Setenv(envPort, "7070")
	require.Equal(t, ":7070", ServerConfig{}.Addr())

	t.Setenv(envPort, "not-a-port")
	require.Equal(t, ":8080", ServerConfig{}.Addr())

	require.Equal(t, ":6060", ServerConfig{Port: 6060}.Addr())
}
