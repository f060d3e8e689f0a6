package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/noah-isme/backend-tix/internal/offer"
	"github.com/noah-isme/backend-tix/internal/pricing"
)

type eventReader interface {
	ListEvents(ctx context.Context) ([]offer.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (offer.Event, error)
}

// Service serves the public event catalog through a read-through cache.
type Service struct {
	store     eventReader
	cache     *Cache
	formatter pricing.Formatter
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store     eventReader
	Cache     *Cache
	Formatter pricing.Formatter
}

// EventSummary is an events-list entry.
type EventSummary struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Venue           string    `json:"venue"`
	City            string    `json:"city"`
	Date            time.Time `json:"date"`
	CoverImage      string    `json:"coverImage,omitempty"`
	MinPrice        *int64    `json:"minPrice"`
	MinPriceDisplay *string   `json:"minPriceDisplay"`
	AvailableCount  int       `json:"availableCount"`
}

// NewService constructs a catalog service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	return &Service{store: cfg.Store, cache: cfg.Cache, formatter: cfg.Formatter}, nil
}

// ListEvents returns every event with its cheapest available offer.
func (s *Service) ListEvents(ctx context.Context) ([]EventSummary, error) {
	var cached []EventSummary
	if ok, err := s.cache.GetJSON(ctx, keyEventList, &cached); err == nil && ok {
		return cached, nil
	}
	rows, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]EventSummary, 0, len(rows))
	for _, ev := range rows {
		out = append(out, s.summarise(ev))
	}
	_ = s.cache.SetJSON(ctx, keyEventList, out)
	return out, nil
}

// EventBySlug returns the event with its available offers only.
func (s *Service) EventBySlug(ctx context.Context, slug string) (offer.Event, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return offer.Event{}, offer.ErrEventNotFound
	}
	var cached offer.Event
	if ok, err := s.cache.GetJSON(ctx, eventKey(slug), &cached); err == nil && ok {
		return cached, nil
	}
	ev, err := s.store.GetEventBySlug(ctx, slug)
	if err != nil {
		return offer.Event{}, err
	}
	ev.Offers = ev.AvailableOffers()
	_ = s.cache.SetJSON(ctx, eventKey(slug), ev)
	return ev, nil
}

// Invalidate drops the cached list and, when slug is set, that event.
func (s *Service) Invalidate(ctx context.Context, slug string) error {
	keys := []string{keyEventList}
	if slug = strings.TrimSpace(slug); slug != "" {
		keys = append(keys, eventKey(slug))
	}
	return s.cache.Delete(ctx, keys...)
}

func (s *Service) summarise(ev offer.Event) EventSummary {
	available := ev.AvailableOffers()
	sum := EventSummary{
		ID:             ev.ID,
		Slug:           ev.Slug,
		Title:          ev.Title,
		Venue:          ev.Venue,
		City:           ev.City,
		Date:           ev.Date,
		CoverImage:     ev.CoverImage,
		AvailableCount: len(available),
	}
	if lowest, ok := offer.MinPrice(available); ok {
		display := s.formatter.Format(lowest)
		sum.MinPrice = &lowest
		sum.MinPriceDisplay = &display
	}
	return sum
}
