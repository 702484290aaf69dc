package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "coraldesk-siteingest/0.1", cfg.Crawler.UserAgent)
	require.Equal(t, 100, cfg.Crawler.MaxPagesDefault)
	require.Equal(t, 3, cfg.Crawler.MaxDepthDefault)
	require.Equal(t, 5, cfg.Crawler.FetchTimeoutSeconds)
	require.Equal(t, 10, cfg.Crawler.ExtractTimeoutSeconds)
	require.Equal(t, 2000, cfg.Chunk.MinSize)
	require.Equal(t, 5000, cfg.Chunk.MaxSize)
	require.Equal(t, 200, cfg.Chunk.Overlap)
	require.Equal(t, "noop", cfg.Database.Provider)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9000
crawler:
  user_agent: "custom-bot/1.0"
database:
  provider: postgres
  dsn: "postgres://user:pass@db:5432/kb"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "custom-bot/1.0", cfg.Crawler.UserAgent)
	require.Equal(t, "postgres", cfg.Database.Provider)
}

func TestValidateFailures(t *testing.T) {
	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	t.Run("postgres without dsn", func(t *testing.T) {
		cfg := base()
		cfg.Database.Provider = "postgres"
		require.Error(t, cfg.Validate())
	})

	t.Run("gcs without bucket", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Provider = "gcs"
		require.Error(t, cfg.Validate())
	})

	t.Run("pubsub without topic", func(t *testing.T) {
		cfg := base()
		cfg.Queue.Provider = "pubsub"
		cfg.Queue.ProjectID = "proj"
		require.Error(t, cfg.Validate())
	})

	t.Run("overlap too large", func(t *testing.T) {
		cfg := base()
		cfg.Chunk.Overlap = cfg.Chunk.MinSize
		require.Error(t, cfg.Validate())
	})

	t.Run("max below min", func(t *testing.T) {
		cfg := base()
		cfg.Chunk.MaxSize = cfg.Chunk.MinSize - 1
		require.Error(t, cfg.Validate())
	})
}
