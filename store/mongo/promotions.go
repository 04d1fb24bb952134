package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/VTGare/Starlight/ctxzap"
	"github.com/VTGare/Starlight/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type promotionStore struct {
	col *mongo.Collection
}

func (ps *promotionStore) Promotion(ctx context.Context, messageID string) (*store.Promotion, error) {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	res := ps.col.FindOne(ctx, bson.M{"original.message_id": messageID})

	var promotion store.Promotion
	err := res.Decode(&promotion)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			log.With("message_id", messageID, "error", err).
				Error("failed to decode a promotion")
		}

		return nil, handlePromotionError(err)
	}

	return &promotion, nil
}

func (ps *promotionStore) CreatePromotion(ctx context.Context, p *store.Promotion) error {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	_, err := ps.col.InsertOne(ctx, p)
	if err = handleInsertError(err); err != nil {
		log.With("promotion", p, "error", err).
			Error("failed to insert a promotion")
		return err
	}

	return nil
}

// handleInsertError treats a duplicate key as success: the unique index on
// original.message_id already holds the promotion.
func handleInsertError(err error) error {
	if err == nil || mongo.IsDuplicateKeyError(err) {
		return nil
	}

	return handlePromotionError(err)
}

func handlePromotionError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrPromotionNotFound
	default:
		return store.ErrInternal
	}
}
