// Package pebble records promoted messages in an embedded Pebble database.
package pebble

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/VTGare/Starlight/ctxzap"
	"github.com/VTGare/Starlight/store"
	"github.com/cockroachdb/pebble"
)

const promotionPrefix = "promotion/"

type Store struct {
	db *pebble.DB
}

var _ store.PromotionStore = (*Store)(nil)

// Open opens (or creates) a Pebble database at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble at %v: %w", path, err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Promotion(ctx context.Context, messageID string) (*store.Promotion, error) {
	log := ctxzap.Extract(ctx)

	value, closer, err := s.db.Get(promotionKey(messageID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, store.ErrPromotionNotFound
		}

		log.With("message_id", messageID, "error", err).
			Error("failed to get a promotion")
		return nil, store.ErrInternal
	}
	defer closer.Close()

	var p store.Promotion
	if err := json.Unmarshal(value, &p); err != nil {
		log.With("message_id", messageID, "error", err).
			Error("failed to decode a promotion")
		return nil, fmt.Errorf("%w: promotion %v: %v", store.ErrStorageCorrupt, messageID, err)
	}

	return &p, nil
}

func (s *Store) CreatePromotion(ctx context.Context, p *store.Promotion) error {
	log := ctxzap.Extract(ctx)

	if p.Original == nil {
		return fmt.Errorf("promotion without original message")
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal promotion: %w", err)
	}

	if err := s.db.Set(promotionKey(p.Original.MessageID), data, pebble.Sync); err != nil {
		log.With("message_id", p.Original.MessageID, "error", err).
			Error("failed to insert a promotion")
		return store.ErrInternal
	}

	return nil
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

func promotionKey(messageID string) []byte {
	return []byte(promotionPrefix + messageID)
}
