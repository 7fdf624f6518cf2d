package tasks

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookprovider/internal/config"
)

func setupTestClient(t *testing.T) (*Client, func()) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(filepath.Join(t.TempDir(), "book_provider.db"), cfg)
	require.NoError(t, err)

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		client.Stop(ctx)
		client.Close()
	}
	return client, cleanup
}

// echoTask hands its value back through the registered processor.
type echoTask struct {
	Value string `json:"value"`
}

func (echoTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "echo",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestNewClient_CreatesQueueBesideStore(t *testing.T) {
	dir := t.TempDir()

	client, err := NewClient(filepath.Join(dir, "book_provider.db"), Config{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "book_provider-tasks.db"), client.Path())
	assert.FileExists(t, client.Path())
	assert.Equal(t, DefaultConfig(), client.config, "zero config falls back to defaults")

	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close(), "closing twice is safe")
}

func TestClient_StopBeforeStart(t *testing.T) {
	client, cleanup := setupTestClient(t)
	defer cleanup()

	assert.True(t, client.Stop(context.Background()))
}

func TestClient_StartStop(t *testing.T) {
	client, cleanup := setupTestClient(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	assert.Eventually(t, func() bool {
		client.mu.RLock()
		defer client.mu.RUnlock()
		return client.started
	}, time.Second, 10*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestClient_Enqueue(t *testing.T) {
	client, cleanup := setupTestClient(t)
	defer cleanup()

	executed := make(chan string, 1)
	client.Register(backlite.NewQueue(func(ctx context.Context, task echoTask) error {
		executed <- task.Value
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.Enqueue(context.Background(), echoTask{Value: "book"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case val := <-executed:
		assert.Equal(t, "book", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestTasksDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "book_provider-tasks.db"), TasksDBPath(filepath.Join("data", "book_provider.db")))
	assert.Equal(t, filepath.Join("data", "store-tasks"), TasksDBPath(filepath.Join("data", "store")))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.RetryDelay)
	assert.Equal(t, time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 5*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.Tasks{
		Enabled:      true,
		Workers:      4,
		ReleaseAfter: 30 * time.Second,
	})

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 30*time.Second, cfg.ReleaseAfter)

	// unset fields fall back to defaults
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}
