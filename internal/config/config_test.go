package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.Path)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, "0 0 3 * * *", cfg.Backup.Cron)
	assert.Equal(t, 7, cfg.Backup.Keep)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  backend: sqlite
server:
  addr: 127.0.0.1:9000
  cors_origins: [http://localhost:5173]
backup:
  keep: 3
log:
  level: debug
`), 0644))

	t.Setenv("VAULT_ADDR", "127.0.0.1:9100")
	t.Setenv("VAULT_BACKUP_KEEP", "10")
	t.Setenv("VAULT_LOG_PRETTY", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "data/vault.db", cfg.Storage.Path)
	assert.Equal(t, "127.0.0.1:9100", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 10, cfg.Backup.Keep)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [\n"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cfg := valid()
	cfg.Storage.Backend = "s3"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Backup.Cron = "every day"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Backup.Keep = -1
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Log.Level = "trace"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Storage.Backend = BackendMemory
	cfg.Storage.Path = ""
	assert.NoError(t, cfg.Validate())
}
