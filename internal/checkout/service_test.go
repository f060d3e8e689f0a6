package checkout_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tix/internal/checkout"
	"github.com/noah-isme/backend-tix/internal/lock"
	"github.com/noah-isme/backend-tix/internal/offer"
	"github.com/noah-isme/backend-tix/internal/pricing"
	"github.com/noah-isme/backend-tix/internal/selection"
)

type fakeResolver struct {
	resolved selection.Resolved
}

func (f fakeResolver) Resolve(_ context.Context, id string) (selection.Resolved, error) {
	if id != f.resolved.Session.ID {
		return selection.Resolved{}, selection.ErrSessionNotFound
	}
	return f.resolved, nil
}

func newCheckoutService(t *testing.T, delay time.Duration, excluded ...string) (*checkout.Service, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	offers := []offer.Offer{{
		ID: "o-1", IsPurchasable: true, PaymentLink: "https://pay.example/o-1",
		Status:   offer.StatusAvailable,
		Variants: []offer.Variant{{ID: "v-1", BasePrice: 2500}, {ID: "v-2", BasePrice: 2500}},
	}}
	state := selection.Seed(offers)
	for _, id := range excluded {
		_, err := state.Toggle("o-1", id)
		require.NoError(t, err)
	}
	return &checkout.Service{
		Sessions: fakeResolver{resolved: selection.Resolved{
			Session: selection.Session{ID: "s-1", EventSlug: "ev", State: state},
			Event:   offer.Event{Slug: "ev"},
			Offers:  offers,
		}},
		Builder:     checkout.Builder{Mode: checkout.ModePaymentLink},
		Guard:       lock.Locker{R: client},
		GuardTTL:    time.Second,
		SubmitDelay: delay,
		Logger:      zerolog.Nop(),
	}, mr
}

func TestSubmitReturnsPayload(t *testing.T) {
	svc, _ := newCheckoutService(t, 0)
	p, err := svc.Submit(context.Background(), "s-1", "o-1")
	require.NoError(t, err)
	require.Equal(t, 2, p.Quantity)
	require.Equal(t, "https://pay.example/o-1", p.PaymentReference)

	_, err = svc.Submit(context.Background(), "s-1", "o-1")
	require.NoError(t, err, "guard must be released after a submission resolves")
}

func TestSubmitIsInertWhileInFlight(t *testing.T) {
	svc, mr := newCheckoutService(t, 300*time.Millisecond)
	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), "s-1", "o-1")
		done <- err
	}()

	require.Eventually(t, func() bool {
		return mr.Exists("checkout:guard:s-1:o-1")
	}, time.Second, time.Millisecond)
	_, err := svc.Submit(context.Background(), "s-1", "o-1")
	require.ErrorIs(t, err, checkout.ErrInProgress)
	require.NoError(t, <-done)
}

type singleEvent struct {
	ev offer.Event
}

func (s singleEvent) EventBySlug(_ context.Context, slug string) (offer.Event, error) {
	if slug != s.ev.Slug {
		return offer.Event{}, offer.ErrEventNotFound
	}
	return s.ev, nil
}

func TestToggleAcceptedWhileSubmitInFlight(t *testing.T) {
	svc, mr := newCheckoutService(t, 300*time.Millisecond)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	formatter, err := pricing.NewFormatter("EUR", "it-IT")
	require.NoError(t, err)

	sessions := &selection.Service{
		Events: singleEvent{ev: offer.Event{Slug: "ev", Offers: []offer.Offer{{
			ID: "o-1", IsPurchasable: true, PaymentLink: "https://pay.example/o-1",
			Status:   offer.StatusAvailable,
			Variants: []offer.Variant{{ID: "v-1", BasePrice: 2500}, {ID: "v-2", BasePrice: 2500}},
		}}}},
		Sessions:  selection.NewStore(client, time.Minute),
		Formatter: formatter,
	}
	svc.Sessions = sessions

	ctx := context.Background()
	board, err := sessions.Board(ctx, "ev", "")
	require.NoError(t, err)
	require.Equal(t, 2, board.Offers[0].SelectedQuantity)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, board.SessionID, "o-1")
		done <- err
	}()
	require.Eventually(t, func() bool {
		return mr.Exists("checkout:guard:" + board.SessionID + ":o-1")
	}, time.Second, time.Millisecond)

	toggled, err := sessions.Toggle(ctx, board.SessionID, "o-1", "v-2")
	require.NoError(t, err)
	require.Equal(t, 1, toggled.Offers[0].SelectedQuantity)
	require.NoError(t, <-done)
}

func TestCheckoutHandlerErrors(t *testing.T) {
	svc, _ := newCheckoutService(t, 0, "v-1", "v-2")
	router := chi.NewRouter()
	router.Post("/api/v1/selections/{session}/offers/{offerID}/checkout", (&checkout.Handler{Svc: svc}).Checkout)

	cases := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/v1/selections/s-1/offers/o-1/checkout", http.StatusConflict, "NO_SELECTION"},
		{"/api/v1/selections/s-1/offers/o-9/checkout", http.StatusNotFound, "OFFER_NOT_FOUND"},
		{"/api/v1/selections/nope/offers/o-1/checkout", http.StatusNotFound, "SESSION_NOT_FOUND"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tc.path, nil))
		require.Equal(t, tc.status, rec.Code, tc.path)
		require.Contains(t, rec.Body.String(), tc.code, tc.path)
	}
}
