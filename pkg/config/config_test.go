package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/equipment-ledger/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "stock-ledger", cfg.App.Name)
	assert.Equal(t, config.StoreDriverPostgres, cfg.Ledger.StoreDriver)
	assert.Equal(t, 2*time.Second, cfg.Ledger.LockTimeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.True(t, cfg.DB.AutoMigrate)
}

func TestLoad_EnvVars(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("LEDGER_LOCK_TIMEOUT_MS", "150")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_AUTO_MIGRATE", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoreDriverMemory, cfg.Ledger.StoreDriver)
	assert.Equal(t, 150*time.Millisecond, cfg.Ledger.LockTimeout)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.False(t, cfg.DB.AutoMigrate)
}

func TestLoad_DriverInvalido(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORE_DRIVER", "redis")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "ledger", Password: "p@ss:word", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://ledger:p%40ss%3Aword@db:5432/stock?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}

// chdir replicates testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
