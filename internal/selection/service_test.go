package selection_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tix/internal/offer"
	"github.com/noah-isme/backend-tix/internal/pricing"
	"github.com/noah-isme/backend-tix/internal/selection"
)

type fakeEvents struct {
	events map[string]offer.Event
}

func (f *fakeEvents) EventBySlug(_ context.Context, slug string) (offer.Event, error) {
	ev, ok := f.events[slug]
	if !ok {
		return offer.Event{}, offer.ErrEventNotFound
	}
	return ev, nil
}

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func concertEvent() offer.Event {
	expires := now.Add(26 * time.Hour)
	return offer.Event{
		ID: "e-1", Slug: "vasco-san-siro", Title: "Vasco", Venue: "San Siro", City: "Milano",
		Offers: []offer.Offer{
			{
				ID: "mid", TicketType: "Prato", Status: offer.StatusAvailable, IsPurchasable: true,
				Variants: []offer.Variant{{ID: "m-1", OfferID: "mid", BasePrice: 10000}},
			},
			{
				ID: "pair", TicketType: "Tribuna", Status: offer.StatusAvailable, IsPurchasable: false,
				ServiceFeePerTicket: 500, ExpiresAt: &expires,
				Variants: []offer.Variant{
					{ID: "p-1", OfferID: "pair", BasePrice: 5000, Row: "F", SeatNumber: "10"},
					{ID: "p-2", OfferID: "pair", BasePrice: 7000, Row: "F", SeatNumber: "11"},
				},
			},
			{
				ID: "gone", TicketType: "VIP", Status: offer.StatusExpired,
				Variants: []offer.Variant{{ID: "g-1", OfferID: "gone", BasePrice: 1}},
			},
		},
	}
}

func newService(t *testing.T) (*selection.Service, *fakeEvents) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	formatter, err := pricing.NewFormatter("EUR", "it-IT")
	require.NoError(t, err)

	events := &fakeEvents{events: map[string]offer.Event{"vasco-san-siro": concertEvent()}}
	return &selection.Service{
		Events:    events,
		Sessions:  selection.NewStore(client, time.Minute),
		Formatter: formatter,
		Now:       func() time.Time { return now },
	}, events
}

func offerIDs(b selection.Board) []string {
	ids := make([]string, 0, len(b.Offers))
	for _, o := range b.Offers {
		ids = append(ids, o.ID)
	}
	return ids
}

func TestBoardRanksAvailableOffers(t *testing.T) {
	svc, _ := newService(t)
	board, err := svc.Board(context.Background(), "vasco-san-siro", "")
	require.NoError(t, err)

	require.NotEmpty(t, board.SessionID)
	require.Equal(t, "EUR", board.Currency)
	require.Equal(t, []string{"mid", "pair"}, offerIDs(board))

	pair := board.Offers[1]
	require.Equal(t, int64(13000), pair.FixedTotal)
	require.Equal(t, int64(1000), pair.FeeTotal)
	require.True(t, pair.NotPurchasable)
	require.False(t, pair.Expired)
	require.NotNil(t, pair.TimeRemaining)
	require.Equal(t, "1 days, 2:00 hours", *pair.TimeRemaining)
	require.Nil(t, board.Offers[0].TimeRemaining)
	require.Contains(t, pair.Display.FixedTotal, "130")
}

func TestToggleReordersBoard(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	board, err := svc.Board(ctx, "vasco-san-siro", "")
	require.NoError(t, err)

	board, err = svc.Toggle(ctx, board.SessionID, "pair", "p-2")
	require.NoError(t, err)
	require.Equal(t, []string{"pair", "mid"}, offerIDs(board))
	require.Equal(t, int64(5500), board.Offers[0].FixedTotal)
	require.False(t, board.Offers[0].Variants[1].Included)

	resumed, err := svc.Board(ctx, "vasco-san-siro", board.SessionID)
	require.NoError(t, err)
	require.Equal(t, board.SessionID, resumed.SessionID)
	require.Equal(t, []string{"pair", "mid"}, offerIDs(resumed))
}

func TestBoardReseedsWhenOffersChange(t *testing.T) {
	svc, events := newService(t)
	ctx := context.Background()
	board, err := svc.Board(ctx, "vasco-san-siro", "")
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, board.SessionID, "pair", "p-2")
	require.NoError(t, err)

	ev := concertEvent()
	ev.Offers[1].Variants = append(ev.Offers[1].Variants, offer.Variant{ID: "p-3", OfferID: "pair", BasePrice: 100})
	events.events[ev.Slug] = ev

	board, err = svc.Board(ctx, "vasco-san-siro", board.SessionID)
	require.NoError(t, err)
	for _, v := range board.Offers[1].Variants {
		require.True(t, v.Included, "variant %s should be re-seeded", v.ID)
	}
}

func TestBoardOnAnotherEventStartsFreshSession(t *testing.T) {
	svc, events := newService(t)
	ctx := context.Background()
	events.events["jazz-night"] = offer.Event{
		ID: "e-2", Slug: "jazz-night", Title: "Jazz",
		Offers: []offer.Offer{{
			ID: "solo", TicketType: "Platea", Status: offer.StatusAvailable, IsPurchasable: true,
			Variants: []offer.Variant{{ID: "s-1", OfferID: "solo", BasePrice: 3000}},
		}},
	}

	board, err := svc.Board(ctx, "vasco-san-siro", "")
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, board.SessionID, "pair", "p-2")
	require.NoError(t, err)

	other, err := svc.Board(ctx, "jazz-night", board.SessionID)
	require.NoError(t, err)
	require.NotEqual(t, board.SessionID, other.SessionID)
	require.Equal(t, []string{"solo"}, offerIDs(other))
	require.Equal(t, int64(3000), other.Offers[0].FixedTotal)

	sess, err := svc.Sessions.Get(ctx, other.SessionID)
	require.NoError(t, err)
	require.Equal(t, "jazz-night", sess.EventSlug)
	require.Equal(t, map[string]map[string]selection.Inclusion{
		"solo": {"s-1": selection.Included},
	}, sess.State.Offers)

	prev, err := svc.Sessions.Get(ctx, board.SessionID)
	require.NoError(t, err)
	require.Equal(t, "vasco-san-siro", prev.EventSlug)
	require.False(t, prev.State.Included("pair", "p-2"))
}

func TestToggleUnknownVariantIsNotFound(t *testing.T) {
	svc, _ := newService(t)
	board, err := svc.Board(context.Background(), "vasco-san-siro", "")
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Post("/api/v1/selections/{session}/offers/{offerID}/variants/{variantID}/toggle", selection.NewHandler(svc).Toggle)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/selections/"+board.SessionID+"/offers/pair/variants/g-1/toggle", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "VARIANT_NOT_FOUND")

	req = httptest.NewRequest(http.MethodPost, "/api/v1/selections/missing/offers/pair/variants/p-1/toggle", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "SESSION_NOT_FOUND")
}

func TestBoardHandler(t *testing.T) {
	svc, _ := newService(t)
	router := chi.NewRouter()
	router.Get("/api/v1/events/{slug}/offers", selection.NewHandler(svc).Board)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events/vasco-san-siro/offers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data selection.Board `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Offers, 2)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events/unknown/offers", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
