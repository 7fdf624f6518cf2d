package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookprovider/internal/entities"
	"github.com/mrlokans/bookprovider/internal/provider"
)

// ChangeSink receives delivered change notifications, e.g. a notify.Bus.
type ChangeSink interface {
	Publish(changed provider.ResourceID) int
}

// ChangeJournal records delivered change notifications, e.g. an audit.Auditor.
type ChangeJournal interface {
	RecordChange(event entities.ChangeEvent) (string, error)
}

// ChangeTask carries one provider change notification to subscribers.
type ChangeTask struct {
	EventID   string    `json:"event_id"`
	URI       string    `json:"uri"`
	ChangedAt time.Time `json:"changed_at"`
}

// Config returns the queue configuration for change delivery tasks. Delivery is
// best-effort, so a failed task is not retried.
func (t ChangeTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "deliver_change",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   time.Hour,
			OnlyFailed: true,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ChangeProcessor creates a processor function for ChangeTask. Either collaborator
// may be nil.
func ChangeProcessor(sink ChangeSink, journal ChangeJournal) backlite.QueueProcessor[ChangeTask] {
	return func(ctx context.Context, task ChangeTask) error {
		id, err := provider.ParseResourceID(task.URI)
		if err != nil {
			return fmt.Errorf("deliver change %s: %w", task.EventID, err)
		}

		delivered := 0
		if sink != nil {
			delivered = sink.Publish(id)
		}

		if journal != nil {
			event := entities.ChangeEvent{ID: task.EventID, URI: task.URI, CreatedAt: task.ChangedAt}
			if _, err := journal.RecordChange(event); err != nil {
				return fmt.Errorf("journal change %s: %w", task.EventID, err)
			}
		}

		log.Printf("[TASK] Delivered change of %s to %d subscribers", task.URI, delivered)
		return nil
	}
}

// NewChangeQueue creates a backlite queue for change delivery tasks, timed and
// retained per cfg. Deliveries are never retried.
func NewChangeQueue(sink ChangeSink, journal ChangeJournal, cfg Config) backlite.Queue {
	return cfg.apply(backlite.NewQueue(ChangeProcessor(sink, journal)), false)
}

// ChangeNotifier implements provider.ChangeNotifier by enqueueing a ChangeTask.
// The provider only waits for the task row to be written, never for subscribers.
type ChangeNotifier struct {
	client *Client

	// Fallback is told about changes that could not be enqueued. Optional.
	Fallback provider.ChangeNotifier
}

func NewChangeNotifier(client *Client) *ChangeNotifier {
	return &ChangeNotifier{client: client}
}

func (n *ChangeNotifier) NotifyChange(id provider.ResourceID) {
	task := ChangeTask{
		EventID:   uuid.NewString(),
		URI:       id.String(),
		ChangedAt: time.Now().UTC(),
	}
	if _, err := n.client.Enqueue(context.Background(), task); err != nil {
		log.Printf("[TASK ERROR] Failed to enqueue change of %s: %v", id, err)
		if n.Fallback != nil {
			n.Fallback.NotifyChange(id)
		}
	}
}
