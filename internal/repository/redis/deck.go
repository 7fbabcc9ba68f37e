package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	savedDecksPrefix = "savedDecks:"
	maxTxRetries     = 5
)

// stringGetter is the read side shared by *redis.Client and *redis.Tx
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// DeckStore keeps the decks of an anonymous session as one JSON array
type DeckStore struct {
	client *Client
	ttl    time.Duration
}

// NewDeckStore creates a deck store; ttl of zero keeps decks forever
func NewDeckStore(client *Client, ttl time.Duration) *DeckStore {
	return &DeckStore{client: client, ttl: ttl}
}

func (s *DeckStore) key(ownerID string) string {
	return savedDecksPrefix + ownerID
}

// Save appends a copy of the deck under a fresh ID
func (s *DeckStore) Save(ctx context.Context, deck *domain.Deck, ownerID string) (*domain.Deck, error) {
	stored := deck.Stamped(ownerID, time.Now().UTC())

	err := s.update(ctx, ownerID, func(decks []domain.Deck) ([]domain.Deck, bool) {
		return append(decks, *stored), true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save deck: %w", err)
	}

	return stored, nil
}

// List returns summaries in insertion order
func (s *DeckStore) List(ctx context.Context, ownerID string) ([]domain.DeckSummary, error) {
	decks, err := s.load(ctx, s.client.rdb, s.key(ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}

	out := make([]domain.DeckSummary, len(decks))
	for i, d := range decks {
		out[i] = d.Summary()
	}
	return out, nil
}

// Get retrieves one deck of the session
func (s *DeckStore) Get(ctx context.Context, id, ownerID string) (*domain.Deck, error) {
	decks, err := s.load(ctx, s.client.rdb, s.key(ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	for i := range decks {
		if decks[i].ID == id {
			return &decks[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// Delete removes a deck; deleting a missing deck is not an error
func (s *DeckStore) Delete(ctx context.Context, id, ownerID string) error {
	err := s.update(ctx, ownerID, func(decks []domain.Deck) ([]domain.Deck, bool) {
		for i := range decks {
			if decks[i].ID == id {
				return append(decks[:i], decks[i+1:]...), true
			}
		}
		return decks, false
	})
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	return nil
}

func (s *DeckStore) load(ctx context.Context, r stringGetter, key string) ([]domain.Deck, error) {
	data, err := r.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.Deck{}, nil
	}
	if err != nil {
		return nil, err
	}

	var decks []domain.Deck
	if err := json.Unmarshal(data, &decks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decks: %w", err)
	}
	return decks, nil
}

// update runs fn inside an optimistic WATCH transaction on the session key
func (s *DeckStore) update(ctx context.Context, ownerID string, fn func([]domain.Deck) ([]domain.Deck, bool)) error {
	key := s.key(ownerID)

	txf := func(tx *redis.Tx) error {
		decks, err := s.load(ctx, tx, key)
		if err != nil {
			return err
		}

		next, changed := fn(decks)
		if !changed {
			return nil
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal decks: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("gave up after %d concurrent modifications", maxTxRetries)
}
