package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookprovider/internal/config"
)

type seederFunc func(ctx context.Context) error

func (f seederFunc) Seed(ctx context.Context) error {
	return f(ctx)
}

func TestReseedTaskConfig(t *testing.T) {
	cfg := ReseedTask{}.Config()

	assert.Equal(t, "reseed_provider", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.NotNil(t, cfg.Retention)
}

func TestNewReseedQueue_UsesConfig(t *testing.T) {
	cfg := ConfigFrom(config.Tasks{
		MaxRetries:        5,
		RetryDelay:        2 * time.Second,
		TaskTimeout:       3 * time.Minute,
		RetentionDuration: 48 * time.Hour,
	})

	qc := NewReseedQueue(nil, cfg).Config()

	assert.Equal(t, "reseed_provider", qc.Name)
	assert.Equal(t, 5, qc.MaxAttempts)
	assert.Equal(t, 2*time.Second, qc.Backoff)
	assert.Equal(t, 3*time.Minute, qc.Timeout)
	require.NotNil(t, qc.Retention)
	assert.Equal(t, 48*time.Hour, qc.Retention.Duration)
	assert.False(t, qc.Retention.OnlyFailed)
}

func TestNewReseedQueue_ZeroConfigUsesDefaults(t *testing.T) {
	qc := NewReseedQueue(nil, Config{}).Config()

	assert.Equal(t, 3, qc.MaxAttempts)
	assert.Equal(t, 10*time.Second, qc.Backoff)
	assert.Equal(t, time.Minute, qc.Timeout)
	assert.Equal(t, 24*time.Hour, qc.Retention.Duration)
}

func TestReseedProcessor(t *testing.T) {
	calls := 0
	process := ReseedProcessor(seederFunc(func(context.Context) error {
		calls++
		return nil
	}))

	assert.NoError(t, process(context.Background(), ReseedTask{Reason: "test"}))
	assert.Equal(t, 1, calls)
}

func TestReseedProcessor_Errors(t *testing.T) {
	assert.Error(t, ReseedProcessor(nil)(context.Background(), ReseedTask{}))

	failing := ReseedProcessor(seederFunc(func(context.Context) error {
		return errors.New("locked")
	}))
	assert.ErrorContains(t, failing(context.Background(), ReseedTask{}), "locked")
}
