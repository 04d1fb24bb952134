package store

import (
	"context"
	"time"
)

// PromotionStore persists the set of promoted messages so the showcase
// channel's scan window is not the only record of past promotions.
type PromotionStore interface {
	// Promotion returns ErrPromotionNotFound if messageID was never promoted.
	Promotion(ctx context.Context, messageID string) (*Promotion, error)
	// CreatePromotion records a promotion. Recording the same original
	// message twice is not an error.
	CreatePromotion(ctx context.Context, p *Promotion) error
	Close(ctx context.Context) error
}

type Promotion struct {
	GuildID   string           `bson:"guild_id" json:"guild_id"`
	AuthorID  string           `bson:"author_id" json:"author_id"`
	Stars     int              `bson:"stars" json:"stars"`
	Original  *MessageMetadata `bson:"original" json:"original"`
	Showcase  *MessageMetadata `bson:"showcase" json:"showcase"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
}

type MessageMetadata struct {
	ChannelID string `bson:"channel_id" json:"channel_id"`
	MessageID string `bson:"message_id" json:"message_id"`
}
