package starboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/VTGare/Starlight/ctxzap"
	"github.com/VTGare/Starlight/store"
	"github.com/diamondburned/arikawa/v3/discord"
)

// DefaultWindow is how many recent showcase posts are scanned for a marker.
const DefaultWindow = 100

// DedupeIndex answers whether a source message was already promoted. It
// checks, in order, promotions made by this process, the persisted ledger
// when one is configured, and the most recent window posts of the showcase
// channel. The scan is bounded: a promotion older than the window and absent
// from the ledger is not found.
type DedupeIndex struct {
	history HistoryReader
	ledger  store.PromotionStore
	window  uint

	mu   sync.Mutex
	seen map[discord.MessageID]struct{}
}

// NewDedupeIndex creates an index. ledger may be nil.
func NewDedupeIndex(history HistoryReader, ledger store.PromotionStore, window uint) *DedupeIndex {
	if window == 0 {
		window = DefaultWindow
	}

	return &DedupeIndex{
		history: history,
		ledger:  ledger,
		window:  window,
		seen:    make(map[discord.MessageID]struct{}),
	}
}

func (d *DedupeIndex) AlreadyPromoted(ctx context.Context, showcase discord.ChannelID, messageID discord.MessageID) (bool, error) {
	log := ctxzap.Extract(ctx).With("message_id", messageID)

	d.mu.Lock()
	_, ok := d.seen[messageID]
	d.mu.Unlock()
	if ok {
		return true, nil
	}

	if d.ledger != nil {
		_, err := d.ledger.Promotion(ctx, messageID.String())
		switch {
		case err == nil:
			d.remember(messageID)
			return true, nil
		case !errors.Is(err, store.ErrPromotionNotFound):
			log.With("error", err).Warn("promotion ledger lookup failed, scanning showcase channel")
		}
	}

	posts, err := d.history.History(ctx, showcase, d.window)
	if err != nil {
		return false, fmt.Errorf("scan showcase channel: %w", err)
	}

	for i := range posts {
		if HasMarker(&posts[i], messageID) {
			d.remember(messageID)
			return true, nil
		}
	}

	return false, nil
}

// Record marks p's original message as promoted in memory and in the ledger.
// The in-memory mark is kept even if the ledger write fails.
func (d *DedupeIndex) Record(ctx context.Context, messageID discord.MessageID, p *store.Promotion) error {
	d.remember(messageID)

	if d.ledger == nil {
		return nil
	}

	if err := d.ledger.CreatePromotion(ctx, p); err != nil {
		return fmt.Errorf("record promotion: %w", err)
	}

	return nil
}

func (d *DedupeIndex) remember(messageID discord.MessageID) {
	d.mu.Lock()
	d.seen[messageID] = struct{}{}
	d.mu.Unlock()
}
