package selection

import (
	"context"
	"errors"
	"time"

	"github.com/noah-isme/backend-tix/internal/obs"
	"github.com/noah-isme/backend-tix/internal/offer"
	"github.com/noah-isme/backend-tix/internal/pricing"
)

// EventSource loads an event with its offers by slug.
type EventSource interface {
	EventBySlug(ctx context.Context, slug string) (offer.Event, error)
}

// Service assembles offer boards for selection sessions.
type Service struct {
	Events    EventSource
	Sessions  *Store
	Formatter pricing.Formatter
	Metrics   *obs.DomainMetrics
	Now       func() time.Time
}

// Resolved is a session together with the offers it was synced against.
type Resolved struct {
	Session Session
	Event   offer.Event
	Offers  []offer.Offer
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Board opens (or resumes) a session on the event and returns the ranked offers.
func (s *Service) Board(ctx context.Context, slug, sessionID string) (Board, error) {
	ev, err := s.Events.EventBySlug(ctx, slug)
	if err != nil {
		return Board{}, err
	}
	offers := ev.AvailableOffers()
	sess, err := s.Sessions.Open(ctx, sessionID, ev.Slug, offers)
	if err != nil {
		return Board{}, err
	}
	return s.render(ev, offers, sess), nil
}

// Resolve loads a session and syncs it against the current offers of its event.
func (s *Service) Resolve(ctx context.Context, sessionID string) (Resolved, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return Resolved{}, err
	}
	ev, err := s.Events.EventBySlug(ctx, sess.EventSlug)
	if err != nil {
		return Resolved{}, err
	}
	offers := ev.AvailableOffers()
	if sess.State.Fingerprint != offer.Fingerprint(offers) {
		sess, err = s.Sessions.Update(ctx, sessionID, func(cur *Session) error {
			cur.State.Sync(offers)
			return nil
		})
		if err != nil {
			return Resolved{}, err
		}
	}
	return Resolved{Session: sess, Event: ev, Offers: offers}, nil
}

// Toggle flips one variant's inclusion and returns the re-ranked board.
func (s *Service) Toggle(ctx context.Context, sessionID, offerID, variantID string) (Board, error) {
	res, err := s.Resolve(ctx, sessionID)
	if err != nil {
		s.Metrics.Toggle(toggleResult(err))
		return Board{}, err
	}
	sess, err := s.Sessions.Update(ctx, sessionID, func(cur *Session) error {
		cur.State.Sync(res.Offers)
		_, err := cur.State.Toggle(offerID, variantID)
		return err
	})
	s.Metrics.Toggle(toggleResult(err))
	if err != nil {
		return Board{}, err
	}
	return s.render(res.Event, res.Offers, sess), nil
}

func toggleResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnknownVariant):
		return "unknown_variant"
	case errors.Is(err, ErrSessionNotFound):
		return "unknown_session"
	default:
		return "error"
	}
}
