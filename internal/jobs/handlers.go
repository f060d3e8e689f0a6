package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tix/internal/obs"
)

// CacheInvalidator drops cached catalog views.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, slug string) error
}

// OfferExpirer marks past-due offers as expired, returning counts per event slug.
type OfferExpirer interface {
	ExpireOffers(ctx context.Context, now time.Time) (map[string]int64, error)
}

// Locker serialises the sweep across worker instances.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Handlers processes worker tasks.
type Handlers struct {
	Catalog CacheInvalidator
	Offers  OfferExpirer
	Locker  Locker
	Metrics *obs.DomainMetrics
	Logger  zerolog.Logger
	Now     func() time.Time
}

// Register binds every task type to mux.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeCatalogInvalidate, h.HandleCatalogInvalidate)
	mux.HandleFunc(TypeOffersExpire, h.HandleOffersExpire)
}

// HandleCatalogInvalidate drops the cached list and event detail.
func (h *Handlers) HandleCatalogInvalidate(ctx context.Context, t *asynq.Task) error {
	var p InvalidatePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	if err := h.Catalog.Invalidate(ctx, p.Slug); err != nil {
		return err
	}
	h.Logger.Debug().Str("slug", p.Slug).Msg("catalog_invalidated")
	return nil
}

// HandleOffersExpire expires past-due offers and invalidates affected events.
func (h *Handlers) HandleOffersExpire(ctx context.Context, _ *asynq.Task) error {
	sweep := func(ctx context.Context) error {
		now := time.Now
		if h.Now != nil {
			now = h.Now
		}
		bySlug, err := h.Offers.ExpireOffers(ctx, now().UTC())
		if err != nil {
			return err
		}
		var total int64
		for slug, n := range bySlug {
			total += n
			if err := h.Catalog.Invalidate(ctx, slug); err != nil {
				h.Logger.Warn().Err(err).Str("slug", slug).Msg("invalidate after expiry")
			}
		}
		h.Metrics.Expired(total)
		if total > 0 {
			h.Logger.Info().Int64("offers", total).Int("events", len(bySlug)).Msg("offers_expired")
		}
		return nil
	}
	if h.Locker == nil {
		return sweep(ctx)
	}
	return h.Locker.WithLock(ctx, "lock:offers:expire", time.Minute, sweep)
}
