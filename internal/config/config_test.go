package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.True(t, cfg.Database.WALMode)
	assert.Equal(t, 5, cfg.Database.BusyTimeout)
	assert.Equal(t, DefaultScheme, cfg.Provider.Scheme)
	assert.Equal(t, DefaultAuthority, cfg.Provider.Authority)
	assert.True(t, cfg.Tasks.Enabled)
	assert.Equal(t, 2, cfg.Tasks.Workers)
	assert.Equal(t, 10*time.Second, cfg.Tasks.RetryDelay)
	assert.False(t, cfg.Seed.OnStart)
	assert.Empty(t, cfg.Seed.ResetSchedule)
	assert.Equal(t, 2, cfg.Global.ShutdownTimeoutInSeconds)
}

func TestNewConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/tmp/other.db")
	t.Setenv("PROVIDER_AUTHORITY", "com.example.library")
	t.Setenv("TASK_WORKERS", "4")
	t.Setenv("SEED_RESET_SCHEDULE", "*/15 * * * *")

	cfg := NewConfig()

	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, "com.example.library", cfg.Provider.Authority)
	assert.Equal(t, 4, cfg.Tasks.Workers)
	assert.Equal(t, "*/15 * * * *", cfg.Seed.ResetSchedule)
}

func TestNewConfig_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookprovider.yaml")
	content := "database_path: ./from-file.db\nseed_on_start: true\naudit_dir: ./journal\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("BOOKPROVIDER_CONFIG", path)

	cfg := NewConfig()

	assert.Equal(t, "./from-file.db", cfg.Database.Path)
	assert.True(t, cfg.Seed.OnStart)
	assert.Equal(t, "./journal", cfg.Audit.Dir)
}

func TestNewConfig_EnvironmentBeatsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookprovider.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database_path: ./from-file.db\n"), 0644))
	t.Setenv("BOOKPROVIDER_CONFIG", path)
	t.Setenv("DATABASE_PATH", "./from-env.db")

	cfg := NewConfig()

	assert.Equal(t, "./from-env.db", cfg.Database.Path)
}
