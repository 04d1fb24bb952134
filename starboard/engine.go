// Package starboard decides which starred messages get promoted to the
// showcase channel and credits their authors on the leaderboard.
package starboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/VTGare/Starlight/ctxzap"
	"github.com/VTGare/Starlight/metrics"
	"github.com/VTGare/Starlight/store"
	"github.com/diamondburned/arikawa/v3/discord"
)

const (
	DefaultThreshold = 5
	DefaultEmoji     = "⭐"
)

type Outcome int

const (
	OutcomePromoted Outcome = iota
	OutcomeSkippedBelowThreshold
	OutcomeSkippedAlreadyPromoted
	OutcomeSkippedUnreadable
	// OutcomeFailed means the dedupe check or the publish failed; nothing
	// was credited.
	OutcomeFailed
)

func (o Outcome) String() string {
	return [...]string{
		"promoted",
		"skipped_below_threshold",
		"skipped_already_promoted",
		"skipped_unreadable",
		"failed",
	}[o]
}

// Engine is the single entry point for promotion decisions. Live reaction
// events and the startup sweep both go through Consider, which holds one lock
// from the dedupe check to the leaderboard increment.
type Engine struct {
	client Client
	board  store.LeaderboardStore
	index  *DedupeIndex

	showcase  discord.ChannelID
	threshold int
	emoji     string
	window    uint
	ledger    store.PromotionStore
	metrics   *metrics.Manager

	mu sync.Mutex
}

type Option func(*Engine)

func WithThreshold(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.threshold = n
		}
	}
}

func WithEmoji(emoji string) Option {
	return func(e *Engine) {
		if emoji != "" {
			e.emoji = emoji
		}
	}
}

// WithWindow sets how many showcase posts the dedupe scan looks at.
func WithWindow(n uint) Option {
	return func(e *Engine) {
		e.window = n
	}
}

// WithLedger persists promoted message IDs next to the showcase scan.
func WithLedger(ledger store.PromotionStore) Option {
	return func(e *Engine) {
		e.ledger = ledger
	}
}

func WithMetrics(m *metrics.Manager) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func NewEngine(client Client, board store.LeaderboardStore, showcase discord.ChannelID, opts ...Option) *Engine {
	e := &Engine{
		client:    client,
		board:     board,
		showcase:  showcase,
		threshold: DefaultThreshold,
		emoji:     DefaultEmoji,
		window:    DefaultWindow,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.index = NewDedupeIndex(client, e.ledger, e.window)
	return e
}

func (e *Engine) Showcase() discord.ChannelID { return e.showcase }
func (e *Engine) Threshold() int              { return e.threshold }
func (e *Engine) Emoji() string               { return e.emoji }

// ConsiderReaction fetches the reacted message and runs Consider on it.
func (e *Engine) ConsiderReaction(ctx context.Context, guildID discord.GuildID, channelID discord.ChannelID, messageID discord.MessageID) (Outcome, error) {
	msg, err := e.client.Message(ctx, channelID, messageID)
	if err != nil {
		e.metrics.RecordDecision(OutcomeSkippedUnreadable.String(), 0)
		return OutcomeSkippedUnreadable, fmt.Errorf("fetch message %v: %w", messageID, err)
	}

	// Messages fetched over REST carry no guild ID.
	if !msg.GuildID.IsValid() {
		msg.GuildID = guildID
	}

	return e.Consider(ctx, FromMessage(msg, e.emoji))
}

// Consider promotes msg if it has reached the threshold and was not promoted
// before. The author is credited only after the post was published.
func (e *Engine) Consider(ctx context.Context, msg *StarredMessage) (Outcome, error) {
	log := ctxzap.Extract(ctx).With(
		"guild_id", msg.GuildID,
		"channel_id", msg.ChannelID,
		"message_id", msg.ID,
		"stars", msg.Stars,
	)

	if msg.Stars < e.threshold {
		e.metrics.RecordDecision(OutcomeSkippedBelowThreshold.String(), 0)
		return OutcomeSkippedBelowThreshold, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	outcome, err := e.promote(ctx, msg)
	e.metrics.RecordDecision(outcome.String(), time.Since(start))

	if err != nil {
		log.With("outcome", outcome, "error", err).Error("promotion failed")
	} else {
		log.With("outcome", outcome).Debug("considered a message")
	}

	return outcome, err
}

// promote runs with e.mu held.
func (e *Engine) promote(ctx context.Context, msg *StarredMessage) (Outcome, error) {
	log := ctxzap.Extract(ctx).With("message_id", msg.ID)

	promoted, err := e.index.AlreadyPromoted(ctx, e.showcase, msg.ID)
	if err != nil {
		return OutcomeFailed, err
	}

	if promoted {
		return OutcomeSkippedAlreadyPromoted, nil
	}

	e.resolveAuthor(ctx, msg)

	sent, err := e.client.Publish(ctx, e.showcase, Render(msg, e.emoji))
	if err != nil {
		return OutcomeFailed, fmt.Errorf("publish: %w", err)
	}

	log.With("showcase_message_id", sent.ID, "author_id", msg.Author.ID).
		Info("promoted a message")

	promotion := &store.Promotion{
		GuildID:  msg.GuildID.String(),
		AuthorID: msg.Author.ID.String(),
		Stars:    msg.Stars,
		Original: &store.MessageMetadata{
			ChannelID: msg.ChannelID.String(),
			MessageID: msg.ID.String(),
		},
		Showcase: &store.MessageMetadata{
			ChannelID: e.showcase.String(),
			MessageID: sent.ID.String(),
		},
		CreatedAt: time.Now(),
	}

	// The post exists, so the ledger failing must not block the credit.
	if err := e.index.Record(ctx, msg.ID, promotion); err != nil {
		log.With("error", err).Warn("failed to record promotion in ledger")
	}

	stars, err := e.board.Increment(ctx, msg.Author.ID.String(), e.threshold)
	if err != nil {
		return OutcomePromoted, fmt.Errorf("credit author %v: %w", msg.Author.ID, err)
	}

	e.metrics.RecordLeaderboardUpdate("promotion")
	log.With("author_id", msg.Author.ID, "total", stars).Info("credited author")

	return OutcomePromoted, nil
}

func (e *Engine) resolveAuthor(ctx context.Context, msg *StarredMessage) {
	if msg.AuthorName != "" {
		return
	}

	msg.AuthorName = msg.Author.Username
	if !msg.GuildID.IsValid() {
		return
	}

	member, err := e.client.Member(ctx, msg.GuildID, msg.Author.ID)
	if err != nil {
		ctxzap.Extract(ctx).With("author_id", msg.Author.ID, "error", err).
			Debug("failed to resolve author's display name")
		return
	}

	if member.Nick != "" {
		msg.AuthorName = member.Nick
	}
}
