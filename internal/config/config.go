package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Database
		Provider
		Tasks
		Seed
		Audit
		Global
	}

	Database struct {
		Path        string
		WALMode     bool
		BusyTimeout int    // Seconds to wait for a lock before failing
		LogLevel    string // silent, error, warn, info
	}
	Provider struct {
		Scheme    string
		Authority string
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Seed struct {
		OnStart       bool
		ResetSchedule string // Cron format, empty disables periodic reseeding
	}
	Audit struct {
		Dir string // Change journal directory, empty disables journaling
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

// NewConfig reads configuration from the environment and, when BOOKPROVIDER_CONFIG
// points at a file, from that file. Environment variables win over the file.
func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_wal", true)
	v.SetDefault("database_busy_timeout", 5)
	v.SetDefault("database_log_level", "warn")

	v.SetDefault("provider_scheme", DefaultScheme)
	v.SetDefault("provider_authority", DefaultAuthority)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "10s")
	v.SetDefault("task_timeout", "1m")
	v.SetDefault("task_release_after", "5m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("seed_on_start", false)
	v.SetDefault("seed_reset_schedule", "")
	v.SetDefault("audit_dir", "")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	if path := v.GetString("BOOKPROVIDER_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			log.Printf("WARNING: could not read config file %s: %v", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Database: Database{
			Path:        v.GetString("DATABASE_PATH"),
			WALMode:     v.GetBool("DATABASE_WAL"),
			BusyTimeout: v.GetInt("DATABASE_BUSY_TIMEOUT"),
			LogLevel:    v.GetString("DATABASE_LOG_LEVEL"),
		},
		Provider: Provider{
			Scheme:    v.GetString("PROVIDER_SCHEME"),
			Authority: v.GetString("PROVIDER_AUTHORITY"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Seed: Seed{
			OnStart:       v.GetBool("SEED_ON_START"),
			ResetSchedule: v.GetString("SEED_RESET_SCHEDULE"),
		},
		Audit: Audit{
			Dir: v.GetString("AUDIT_DIR"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
