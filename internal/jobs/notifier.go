package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-tix/internal/events"
)

// Enqueuer is the subset of *asynq.Client used to schedule tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// CatalogNotifier turns catalog-affecting domain events into invalidation tasks.
type CatalogNotifier struct {
	Client Enqueuer
}

// Notify implements events.Notifier.
func (n CatalogNotifier) Notify(ctx context.Context, ev events.DomainEvent) error {
	if n.Client == nil || !isCatalogTopic(ev.Topic) {
		return nil
	}
	var payload events.CatalogPayload
	if len(ev.Payload) > 0 {
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return fmt.Errorf("jobs: decode %s payload: %w", ev.Topic, err)
		}
	}
	task, err := NewCatalogInvalidateTask(payload.Slug)
	if err != nil {
		return err
	}
	_, err = n.Client.EnqueueContext(ctx, task)
	return err
}

func isCatalogTopic(topic string) bool {
	for _, t := range events.CatalogTopics() {
		if t == topic {
			return true
		}
	}
	return false
}
