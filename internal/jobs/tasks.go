// Package jobs defines the background tasks run by the worker: catalog cache
// invalidation and the periodic offer-expiry sweep.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeCatalogInvalidate = "catalog:invalidate"
	TypeOffersExpire      = "offers:expire"
)

// InvalidatePayload names the event whose cached views must be dropped.
type InvalidatePayload struct {
	Slug string `json:"slug"`
}

// NewCatalogInvalidateTask builds an invalidation task for slug.
func NewCatalogInvalidateTask(slug string) (*asynq.Task, error) {
	payload, err := json.Marshal(InvalidatePayload{Slug: slug})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCatalogInvalidate, payload, asynq.MaxRetry(5), asynq.Timeout(30*time.Second)), nil
}

// NewOffersExpireTask builds the expiry sweep task. At most one is queued at a time.
func NewOffersExpireTask() *asynq.Task {
	return asynq.NewTask(TypeOffersExpire, nil, asynq.MaxRetry(1), asynq.Unique(time.Minute))
}
