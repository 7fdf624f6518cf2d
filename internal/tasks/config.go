package tasks

import (
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookprovider/internal/config"
)

// Config holds the task queue settings.
type Config struct {
	Workers           int
	MaxRetries        int // attempts per reseed task; change delivery runs once
	RetryDelay        time.Duration
	TaskTimeout       time.Duration
	ReleaseAfter      time.Duration // stuck tasks go back to the queue after this
	CleanupInterval   time.Duration
	RetentionDuration time.Duration // how long finished tasks are kept
}

// DefaultConfig returns the settings used when the environment sets none.
func DefaultConfig() Config {
	return Config{
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        10 * time.Second,
		TaskTimeout:       time.Minute,
		ReleaseAfter:      5 * time.Minute,
		CleanupInterval:   time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}

// ConfigFrom maps the application's task settings onto a queue Config.
func ConfigFrom(cfg config.Tasks) Config {
	return Config{
		Workers:           cfg.Workers,
		MaxRetries:        cfg.MaxRetries,
		RetryDelay:        cfg.RetryDelay,
		TaskTimeout:       cfg.TaskTimeout,
		ReleaseAfter:      cfg.ReleaseAfter,
		CleanupInterval:   cfg.CleanupInterval,
		RetentionDuration: cfg.RetentionDuration,
	}.withDefaults()
}

// withDefaults fills zero and negative fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = d.TaskTimeout
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = d.ReleaseAfter
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	if c.RetentionDuration <= 0 {
		c.RetentionDuration = d.RetentionDuration
	}
	return c
}

// apply overrides the timeout, backoff and retention period of q with the
// configured values. MaxAttempts is only replaced when retry is set.
func (c Config) apply(q backlite.Queue, retry bool) backlite.Queue {
	c = c.withDefaults()
	qc := q.Config()
	qc.Timeout = c.TaskTimeout
	qc.Backoff = c.RetryDelay
	if retry {
		qc.MaxAttempts = c.MaxRetries
	}
	if qc.Retention != nil {
		qc.Retention.Duration = c.RetentionDuration
	}
	return q
}
