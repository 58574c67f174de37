package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	LoadDefault()

	assert.Equal(t, 3000, Http().Port)
	assert.Equal(t, "0.0.0.0:3000", Http().Addr())
	assert.Equal(t, StorageDriverFile, Storage().Driver)
	assert.Equal(t, "users.json", Storage().Path)
	assert.Equal(t, "info", Logger().Level)
}

func TestLoadFromFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "userstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
common:
  http:
    port: 8081
  storage:
    path: data/users.json
`), 0o644))

	require.NoError(t, LoadFromFile(path))

	assert.Equal(t, 8081, Http().Port)
	assert.Equal(t, "0.0.0.0", Http().Host)
	assert.Equal(t, "data/users.json", Storage().Path)
	assert.Equal(t, StorageDriverFile, Storage().Driver)
	assert.Equal(t, "json", Logger().Format)
}

func TestLoadFromFileErrors(t *testing.T) {
	err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("common: [unclosed"), 0o644))
	assert.Error(t, LoadFromFile(path))
}

func TestLoadFromFileDoesNotLeakIntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "userstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("common:\n  http:\n    port: 9999\n"), 0o644))
	require.NoError(t, LoadFromFile(path))

	LoadDefault()
	assert.Equal(t, 3000, Http().Port)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("USERSTORE_HTTP_PORT", "4000")
	t.Setenv("USERSTORE_STORAGE_PATH", "/tmp/people.json")
	t.Setenv("USERSTORE_STORAGE_DRIVER", StorageDriverPostgres)
	t.Setenv("USERSTORE_LOG_LEVEL", "debug")
	t.Setenv("USERSTORE_DB_NAME", "people")
	t.Setenv("USERSTORE_DB_PORT", "not-a-number")

	LoadDefault()
	ApplyEnvOverrides()

	assert.Equal(t, 4000, Http().Port)
	assert.Equal(t, "/tmp/people.json", Storage().Path)
	assert.Equal(t, StorageDriverPostgres, Storage().Driver)
	assert.Equal(t, "debug", Logger().Level)
	assert.Equal(t, "people", Postgres().Database)
	assert.Equal(t, 5432, Postgres().Port)
}

func TestLoadUsesConfigFileEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("common:\n  storage:\n    path: custom.json\n"), 0o644))
	t.Setenv("USERSTORE_CONFIG_FILE", path)

	Load()
	assert.Equal(t, "custom.json", Storage().Path)
}

func TestPostgresDSN(t *testing.T) {
	cfg := postgresConfig{
		User:     "app",
		Password: "p@ss",
		Host:     "db",
		Port:     5433,
		Database: "users",
	}
	assert.Equal(t, "postgres://app:p%40ss@db:5433/users?sslmode=disable", cfg.DSN())
}

func TestGettersPanicBeforeLoad(t *testing.T) {
	saved := _loaded
	t.Cleanup(func() { _loaded = saved })

	_loaded = nil
	assert.Panics(t, func() { Http() })
	assert.Panics(t, func() { Storage() })
}
