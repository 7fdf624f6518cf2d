package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// Seeder restores the provider's sample data.
type Seeder interface {
	Seed(ctx context.Context) error
}

// ReseedTask wipes the book and user tables and restores the sample rows.
type ReseedTask struct {
	Reason string `json:"reason"`
}

// Config returns the queue configuration for reseed tasks.
func (t ReseedTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reseed_provider",
		MaxAttempts: 3,
		Backoff:     10 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReseedProcessor creates a processor function for ReseedTask.
func ReseedProcessor(seeder Seeder) backlite.QueueProcessor[ReseedTask] {
	return func(ctx context.Context, task ReseedTask) error {
		if seeder == nil {
			return fmt.Errorf("seeder not configured")
		}

		if err := seeder.Seed(ctx); err != nil {
			return fmt.Errorf("reseed provider: %w", err)
		}

		log.Printf("[TASK] Reseeded provider data (%s)", task.Reason)
		return nil
	}
}

// NewReseedQueue creates a backlite queue for reseed tasks with the attempts,
// backoff, timeout and retention of cfg.
func NewReseedQueue(seeder Seeder, cfg Config) backlite.Queue {
	return cfg.apply(backlite.NewQueue(ReseedProcessor(seeder)), true)
}
