// Package listing admits admin-submitted events and offers: composition
// validation, normalisation to the offer model, and the admin endpoints.
package listing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tix/internal/events"
	"github.com/noah-isme/backend-tix/internal/obs"
	"github.com/noah-isme/backend-tix/internal/offer"
	"github.com/noah-isme/backend-tix/internal/pricing"
)

// EventStore persists events atomically with their offers and variants.
type EventStore interface {
	CreateEvent(ctx context.Context, ev offer.Event) (offer.Event, error)
	DeleteEvent(ctx context.Context, id string) (offer.Event, error)
}

// Emitter publishes domain events.
type Emitter interface {
	Emit(ctx context.Context, topic string, aggregateID uuid.UUID, payload any) (events.DomainEvent, error)
}

// Service implements admin event creation and deletion.
type Service struct {
	Store                 EventStore
	Validator             *Validator
	Events                Emitter
	DefaultDeliveryMethod string
	Metrics               *obs.DomainMetrics
	Logger                zerolog.Logger
}

// Create validates in, stores the event with all listings in one transaction
// and announces it. Nothing is stored when any listing is invalid.
func (s *Service) Create(ctx context.Context, in EventInput) (offer.Event, error) {
	if s.Validator == nil {
		s.Validator = NewValidator()
	}
	if err := s.Validator.ValidateEvent(in); err != nil {
		s.Metrics.Validation("rejected")
		return offer.Event{}, err
	}
	ev, err := s.toEvent(in)
	if err != nil {
		s.Metrics.Validation("rejected")
		return offer.Event{}, err
	}
	s.Metrics.Validation("accepted")
	created, err := s.Store.CreateEvent(ctx, ev)
	if err != nil {
		return offer.Event{}, err
	}
	s.emit(ctx, events.TopicEventCreated, created)
	return created, nil
}

// Delete removes an event with its offers and variants.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return offer.ErrEventNotFound
	}
	deleted, err := s.Store.DeleteEvent(ctx, id)
	if err != nil {
		return err
	}
	s.emit(ctx, events.TopicEventDeleted, deleted)
	return nil
}

func (s *Service) emit(ctx context.Context, topic string, ev offer.Event) {
	if s.Events == nil {
		return
	}
	id, err := uuid.Parse(ev.ID)
	if err != nil {
		return
	}
	if _, err := s.Events.Emit(ctx, topic, id, events.CatalogPayload{EventID: ev.ID, Slug: ev.Slug}); err != nil {
		s.Logger.Warn().Err(err).Str("topic", topic).Str("event_id", ev.ID).Msg("emit domain event")
	}
}

// toEvent converts validated input to the offer model. Amounts are rounded to
// cents here, once, so every later computation is exact.
func (s *Service) toEvent(in EventInput) (offer.Event, error) {
	eventSlug := slug.Make(strings.TrimSpace(in.Slug))
	if eventSlug == "" {
		eventSlug = slug.Make(in.Title)
	}
	ev := offer.Event{
		Slug:        eventSlug,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Venue:       strings.TrimSpace(in.Venue),
		City:        strings.TrimSpace(in.City),
		Date:        in.Date.UTC(),
		CoverImage:  strings.TrimSpace(in.CoverImage),
		Offers:      make([]offer.Offer, 0, len(in.Listings)),
	}
	var violations []Violation
	for i, l := range in.Listings {
		l.normalise()
		o, vs := s.toOffer(l, fmt.Sprintf("listings[%d]", i))
		violations = append(violations, vs...)
		ev.Offers = append(ev.Offers, o)
	}
	if len(violations) > 0 {
		return offer.Event{}, &CompositionError{Violations: violations}
	}
	return ev, nil
}

func (s *Service) toOffer(l ListingInput, prefix string) (offer.Offer, []Violation) {
	var violations []Violation
	amount := func(field string, v *float64) pricing.Money {
		if v == nil {
			return 0
		}
		m, err := pricing.FromMajor(*v)
		if err != nil {
			violations = append(violations, Violation{Field: field, Message: field + " is out of range"})
		}
		return m
	}

	delivery := l.DeliveryMethod
	if delivery == "" {
		delivery = s.DefaultDeliveryMethod
	}
	purchasable := true
	if l.IsPurchasable != nil {
		purchasable = *l.IsPurchasable
	}
	var expires *time.Time
	if l.ExpiresAt != nil {
		t := l.ExpiresAt.UTC()
		expires = &t
	}
	o := offer.Offer{
		TicketType:          l.TicketType,
		Description:         strings.TrimSpace(l.Description),
		DeliveryMethod:      delivery,
		ServiceFeePerTicket: amount(prefix+".serviceFeePerTicket", l.ServiceFeePerTicket),
		IsPurchasable:       purchasable,
		ExpiresAt:           expires,
		Status:              offer.StatusAvailable,
		PaymentLink:         l.PaymentLink,
		Variants:            make([]offer.Variant, 0, len(l.Items)),
	}
	for j, it := range l.Items {
		o.Variants = append(o.Variants, offer.SyntheticVariant(
			strings.TrimSpace(it.Row),
			strings.TrimSpace(it.SeatNumber),
			amount(fmt.Sprintf("%s.items[%d].basePrice", prefix, j), it.BasePrice),
			it.Quantity,
		))
	}
	return o, violations
}
