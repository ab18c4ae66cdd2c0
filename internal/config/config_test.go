package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://localhost/messenger?sslmode=disable")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8083", cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, BusAMQP, cfg.EventBus)
	assert.Equal(t, "audit.messenger", cfg.AuditRoutingKey)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.DebugRoutes)
}

func TestLoadRequiresDSNForPostgres(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")

	_, err := Load()

	assert.ErrorContains(t, err, "DatabaseDSN")
}

func TestLoadRejectsUnknownDrivers(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORAGE_DRIVER", StorageBadger)
	t.Setenv("EVENT_BUS", "kafka")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("STORAGE_DRIVER=badger\nBADGER_PATH=/tmp/messenger\nEVENT_BUS=nats\n"), 0o600))
	t.Cleanup(func() {
		for _, key := range []string{"STORAGE_DRIVER", "BADGER_PATH", "EVENT_BUS"} {
			_ = os.Unsetenv(key)
		}
	})

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, StorageBadger, cfg.StorageDriver)
	assert.Equal(t, "/tmp/messenger", cfg.BadgerPath)
	assert.Equal(t, BusNATS, cfg.EventBus)
	assert.Equal(t, "MESSENGER", cfg.NATSStream)
}
