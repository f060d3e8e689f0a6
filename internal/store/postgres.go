// Package store persists events, offers, variants and domain events in
// Postgres through pgx.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-tix/internal/events"
	"github.com/noah-isme/backend-tix/internal/offer"
)

// ErrStoreUnavailable indicates the pool is not configured.
var ErrStoreUnavailable = errors.New("store: unavailable")

const uniqueViolation = "23505"

// Store is the pgx-backed persistence layer.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, now: time.Now}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return ErrStoreUnavailable
	}
	return s.pool.Ping(ctx)
}

const eventColumns = `id, slug, title, description, venue, city, event_date, cover_image, created_at`

const offerColumns = `o.id, o.event_id, o.ticket_type, o.description, o.delivery_method, o.service_fee_cents,
o.is_purchasable, o.expires_at, o.status, o.payment_link`

const variantColumns = `v.id, v.offer_id, v.row_label, v.seat_number, v.base_price_cents, v.quantity`

// CreateEvent inserts the event, its offers and their variants in one
// transaction. Identifiers are assigned here and returned on ev.
func (s *Store) CreateEvent(ctx context.Context, ev offer.Event) (offer.Event, error) {
	if s == nil || s.pool == nil {
		return offer.Event{}, ErrStoreUnavailable
	}
	eventID := uuid.New()
	ev.ID = eventID.String()
	ev.CreatedAt = s.now().UTC()

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO events (`+eventColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			eventID, ev.Slug, ev.Title, ev.Description, ev.Venue, ev.City, ev.Date, ev.CoverImage, ev.CreatedAt)
		if err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for i := range ev.Offers {
			o := &ev.Offers[i]
			offerID := uuid.New()
			o.ID, o.EventID = offerID.String(), ev.ID
			batch.Queue(`INSERT INTO offers (id, event_id, position, ticket_type, description, delivery_method,
service_fee_cents, is_purchasable, expires_at, status, payment_link)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				offerID, eventID, i, o.TicketType, o.Description, o.DeliveryMethod,
				o.ServiceFeePerTicket, o.IsPurchasable, o.ExpiresAt, string(o.Status), o.PaymentLink)
			for j := range o.Variants {
				v := &o.Variants[j]
				variantID := uuid.New()
				v.ID, v.OfferID = variantID.String(), o.ID
				batch.Queue(`INSERT INTO offer_variants (id, offer_id, position, row_label, seat_number, base_price_cents, quantity)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
					variantID, offerID, j, v.Row, v.SeatNumber, v.BasePrice, v.Qty())
			}
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "events_slug_key" {
			return offer.Event{}, offer.ErrSlugTaken
		}
		return offer.Event{}, err
	}
	return ev, nil
}

// DeleteEvent removes an event; offers and variants cascade.
func (s *Store) DeleteEvent(ctx context.Context, id string) (offer.Event, error) {
	if s == nil || s.pool == nil {
		return offer.Event{}, ErrStoreUnavailable
	}
	eventID, err := uuid.Parse(id)
	if err != nil {
		return offer.Event{}, offer.ErrEventNotFound
	}
	row := s.pool.QueryRow(ctx, `DELETE FROM events WHERE id = $1 RETURNING `+eventColumns, eventID)
	ev, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return offer.Event{}, offer.ErrEventNotFound
	}
	return ev, err
}

// GetEventBySlug loads an event with all of its offers, in admin order.
func (s *Store) GetEventBySlug(ctx context.Context, slug string) (offer.Event, error) {
	if s == nil || s.pool == nil {
		return offer.Event{}, ErrStoreUnavailable
	}
	ev, err := scanEvent(s.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE slug = $1`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return offer.Event{}, offer.ErrEventNotFound
	}
	if err != nil {
		return offer.Event{}, err
	}
	offers, err := s.loadOffers(ctx, `WHERE o.event_id = $1`, uuid.MustParse(ev.ID))
	if err != nil {
		return offer.Event{}, err
	}
	ev.Offers = offers[ev.ID]
	return ev, nil
}

// ListEvents loads every event by date with its available offers.
func (s *Store) ListEvents(ctx context.Context) ([]offer.Event, error) {
	if s == nil || s.pool == nil {
		return nil, ErrStoreUnavailable
	}
	rows, err := s.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY event_date, created_at`)
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (offer.Event, error) {
		return scanEvent(row)
	})
	if err != nil {
		return nil, err
	}
	offers, err := s.loadOffers(ctx, `WHERE o.status = $1`, string(offer.StatusAvailable))
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Offers = offers[list[i].ID]
	}
	return list, nil
}

// loadOffers returns offers matching where (over alias o) with their
// variants, grouped by event id and ordered by position.
func (s *Store) loadOffers(ctx context.Context, where string, arg any) (map[string][]offer.Offer, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+offerColumns+` FROM offers o `+where+` ORDER BY o.event_id, o.position`, arg)
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (offer.Offer, error) {
		var (
			o           offer.Offer
			id, eventID uuid.UUID
			status      string
		)
		err := row.Scan(&id, &eventID, &o.TicketType, &o.Description, &o.DeliveryMethod, &o.ServiceFeePerTicket,
			&o.IsPurchasable, &o.ExpiresAt, &status, &o.PaymentLink)
		o.ID, o.EventID, o.Status = id.String(), eventID.String(), offer.Status(status)
		o.Variants = []offer.Variant{}
		return o, err
	})
	if err != nil {
		return nil, err
	}

	vrows, err := s.pool.Query(ctx, `SELECT `+variantColumns+` FROM offer_variants v
JOIN offers o ON o.id = v.offer_id `+where+` ORDER BY v.offer_id, v.position`, arg)
	if err != nil {
		return nil, err
	}
	variants, err := pgx.CollectRows(vrows, func(row pgx.CollectableRow) (offer.Variant, error) {
		var (
			v           offer.Variant
			id, offerID uuid.UUID
		)
		err := row.Scan(&id, &offerID, &v.Row, &v.SeatNumber, &v.BasePrice, &v.Quantity)
		v.ID, v.OfferID = id.String(), offerID.String()
		return v, err
	})
	if err != nil {
		return nil, err
	}
	byOffer := make(map[string][]offer.Variant, len(list))
	for _, v := range variants {
		byOffer[v.OfferID] = append(byOffer[v.OfferID], v)
	}

	out := make(map[string][]offer.Offer)
	for _, o := range list {
		if vs, ok := byOffer[o.ID]; ok {
			o.Variants = vs
		}
		out[o.EventID] = append(out[o.EventID], o)
	}
	return out, nil
}

// ExpireOffers marks available offers whose expiry has passed as expired and
// returns the number of affected offers per event slug.
func (s *Store) ExpireOffers(ctx context.Context, now time.Time) (map[string]int64, error) {
	if s == nil || s.pool == nil {
		return nil, ErrStoreUnavailable
	}
	rows, err := s.pool.Query(ctx, `WITH expired AS (
    UPDATE offers SET status = $1
    WHERE status = $2 AND expires_at IS NOT NULL AND expires_at <= $3
    RETURNING event_id
)
SELECT e.slug, count(*) FROM expired x JOIN events e ON e.id = x.event_id GROUP BY e.slug`,
		string(offer.StatusExpired), string(offer.StatusAvailable), now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var (
			slug  string
			count int64
		)
		if err := rows.Scan(&slug, &count); err != nil {
			return nil, err
		}
		out[slug] = count
	}
	return out, rows.Err()
}

// InsertDomainEvent implements events.EventStore.
func (s *Store) InsertDomainEvent(ctx context.Context, ev events.DomainEvent) (events.DomainEvent, error) {
	if s == nil || s.pool == nil {
		return events.DomainEvent{}, ErrStoreUnavailable
	}
	ev.ID = uuid.New()
	err := s.pool.QueryRow(ctx, `INSERT INTO domain_events (id, topic, aggregate_id, payload)
VALUES ($1, $2, $3, $4) RETURNING occurred_at`, ev.ID, ev.Topic, ev.AggregateID, []byte(ev.Payload)).Scan(&ev.OccurredAt)
	if err != nil {
		return events.DomainEvent{}, err
	}
	return ev, nil
}

func scanEvent(row pgx.Row) (offer.Event, error) {
	var (
		ev offer.Event
		id uuid.UUID
	)
	if err := row.Scan(&id, &ev.Slug, &ev.Title, &ev.Description, &ev.Venue, &ev.City, &ev.Date, &ev.CoverImage, &ev.CreatedAt); err != nil {
		return offer.Event{}, err
	}
	ev.ID = id.String()
	ev.Offers = []offer.Offer{}
	return ev, nil
}
