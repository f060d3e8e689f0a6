package selection

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-tix/internal/offer"
)

var (
	// ErrSessionNotFound is returned when a session id is unknown or expired.
	ErrSessionNotFound = errors.New("selection: session not found")
	// ErrConcurrentUpdate is returned when optimistic retries are exhausted.
	ErrConcurrentUpdate = errors.New("selection: concurrent update")
)

const maxTxRetries = 5

// Session is one shopper's selection on one event's offers.
type Session struct {
	ID        string    `json:"id"`
	EventSlug string    `json:"eventSlug"`
	State     State     `json:"state"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists sessions as JSON in Redis with a sliding TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewStore constructs a session store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{client: client, ttl: ttl, now: time.Now}
}

func (s *Store) key(id string) string {
	return "selection:" + id
}

// Get loads a session.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, ErrSessionNotFound
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Open returns the session for id synced to offers, or starts a fresh one
// when id is empty, unknown, or belongs to another event.
func (s *Store) Open(ctx context.Context, id, eventSlug string, offers []offer.Offer) (Session, error) {
	if id != "" {
		sess, err := s.Update(ctx, id, func(sess *Session) error {
			if sess.EventSlug != eventSlug {
				return ErrSessionNotFound
			}
			sess.State.Sync(offers)
			return nil
		})
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, ErrSessionNotFound) {
			return Session{}, err
		}
	}
	sess := Session{
		ID:        uuid.NewString(),
		EventSlug: eventSlug,
		State:     Seed(offers),
		UpdatedAt: s.now().UTC(),
	}
	if err := s.save(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *Store) save(ctx context.Context, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(sess.ID), data, s.ttl).Err()
}

// Update applies fn to the stored session under an optimistic WATCH
// transaction and refreshes its TTL.
func (s *Store) Update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	if id == "" {
		return Session{}, ErrSessionNotFound
	}
	key := s.key(id)
	var out Session
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			return err
		}
		if err := fn(&sess); err != nil {
			return err
		}
		sess.UpdatedAt = s.now().UTC()
		payload, err := json.Marshal(sess)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		if err == nil {
			out = sess
		}
		return err
	}
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return Session{}, err
		}
		return out, nil
	}
	return Session{}, ErrConcurrentUpdate
}
