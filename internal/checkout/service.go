package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tix/internal/lock"
	"github.com/noah-isme/backend-tix/internal/obs"
	"github.com/noah-isme/backend-tix/internal/offer"
	"github.com/noah-isme/backend-tix/internal/selection"
)

// ErrInProgress is returned while a submission for the same session and offer
// is still in flight.
var ErrInProgress = errors.New("checkout: submission in progress")

// SessionResolver loads a selection session with its current offers.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (selection.Resolved, error)
}

// Guard acquires a non-blocking in-flight marker.
type Guard interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// Service performs guarded checkout submissions.
type Service struct {
	Sessions    SessionResolver
	Builder     Builder
	Guard       Guard
	GuardTTL    time.Duration
	SubmitDelay time.Duration
	Metrics     *obs.DomainMetrics
	Logger      zerolog.Logger
}

// Submit builds the handoff for one offer of the session. While it waits out
// the submit delay, repeated submissions for the same pair return
// ErrInProgress; toggles on the session are unaffected.
func (s *Service) Submit(ctx context.Context, sessionID, offerID string) (Payload, error) {
	p, err := s.submit(ctx, sessionID, offerID)
	s.Metrics.Checkout(string(s.Builder.Mode), result(err))
	return p, err
}

func (s *Service) submit(ctx context.Context, sessionID, offerID string) (Payload, error) {
	if s.Guard != nil {
		release, err := s.Guard.TryLock(ctx, "checkout:guard:"+sessionID+":"+offerID, s.GuardTTL)
		if errors.Is(err, lock.ErrHeld) {
			return Payload{}, ErrInProgress
		}
		if err != nil {
			return Payload{}, err
		}
		defer release()
	}

	res, err := s.Sessions.Resolve(ctx, sessionID)
	if err != nil {
		return Payload{}, err
	}
	o, err := offer.FindOffer(res.Offers, offerID)
	if err != nil {
		return Payload{}, err
	}
	p, err := s.Builder.Build(res.Event.Slug, o, res.Session.State)
	if err != nil {
		return Payload{}, err
	}

	if s.SubmitDelay > 0 {
		timer := time.NewTimer(s.SubmitDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Payload{}, ctx.Err()
		case <-timer.C:
		}
	}
	s.Logger.Info().
		Str("session_id", sessionID).
		Str("offer_id", offerID).
		Int("quantity", p.Quantity).
		Str("destination", p.Destination.Kind).
		Strs("warnings", warningStrings(p.Warnings)).
		Msg("checkout_handoff")
	return p, nil
}

func warningStrings(ws []Warning) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = string(w)
	}
	return out
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoSelection):
		return "no_selection"
	case errors.Is(err, ErrNoPaymentTarget):
		return "no_payment_target"
	case errors.Is(err, ErrInProgress):
		return "in_progress"
	default:
		return "error"
	}
}
