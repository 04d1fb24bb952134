package starboard

import (
	"context"
	"errors"
	"sync"

	"github.com/VTGare/Starlight/ctxzap"
	"github.com/VTGare/Starlight/metrics"
	"github.com/diamondburned/arikawa/v3/discord"
	"golang.org/x/sync/errgroup"
)

// DefaultSweepLimit is how many recent messages per channel the backfill reads.
const DefaultSweepLimit = 100

// Sweeper replays the engine over recent history once at startup, catching
// stars that accumulated while the bot was offline.
type Sweeper struct {
	engine   *Engine
	channels ChannelLister
	limit    uint
	workers  int
	metrics  *metrics.Manager
}

type SweepOption func(*Sweeper)

func WithSweepLimit(n uint) SweepOption {
	return func(s *Sweeper) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithWorkers sweeps up to n channels at once. Decisions still serialize on
// the engine's lock.
func WithWorkers(n int) SweepOption {
	return func(s *Sweeper) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithSweepMetrics(m *metrics.Manager) SweepOption {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

func NewSweeper(engine *Engine, channels ChannelLister, opts ...SweepOption) *Sweeper {
	s := &Sweeper{
		engine:   engine,
		channels: channels,
		limit:    DefaultSweepLimit,
		workers:  1,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type SweepReport struct {
	Channels int
	Failed   int
	Messages int
	Promoted int
}

// Sweep visits every text channel of every guild. A channel that cannot be
// listed or read is logged and skipped; it never aborts the sweep.
func (s *Sweeper) Sweep(ctx context.Context, guilds []discord.GuildID) SweepReport {
	log := ctxzap.Extract(ctx)

	var (
		mu     sync.Mutex
		report SweepReport
		g      errgroup.Group
	)

	g.SetLimit(s.workers)

	for _, guildID := range guilds {
		channels, err := s.channels.TextChannels(ctx, guildID)
		if err != nil {
			log.With("guild_id", guildID, "error", err).Error("failed to list channels")
			continue
		}

		for _, ch := range channels {
			if ch.ID == s.engine.Showcase() {
				continue
			}

			if ctx.Err() != nil {
				break
			}

			guildID, ch := guildID, ch
			g.Go(func() error {
				messages, promoted, err := s.sweepChannel(ctx, guildID, ch)

				mu.Lock()
				defer mu.Unlock()

				report.Channels++
				report.Messages += messages
				report.Promoted += promoted
				if err != nil {
					report.Failed++
				}

				return nil
			})
		}
	}

	g.Wait()

	log.With(
		"channels", report.Channels,
		"failed", report.Failed,
		"messages", report.Messages,
		"promoted", report.Promoted,
	).Info("finished backfill sweep")

	return report
}

func (s *Sweeper) sweepChannel(ctx context.Context, guildID discord.GuildID, ch discord.Channel) (int, int, error) {
	log := ctxzap.Extract(ctx).With("guild_id", guildID, "channel_id", ch.ID, "channel", ch.Name)

	history, err := s.engine.client.History(ctx, ch.ID, s.limit)
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			log.With("error", err).Warn("missing permissions to read channel")
			s.metrics.RecordSweepChannel("denied")
		} else {
			log.With("error", err).Error("failed to read channel history")
			s.metrics.RecordSweepChannel("failed")
		}

		return 0, 0, err
	}

	var considered, promoted int
	for i := range history {
		if ctx.Err() != nil {
			break
		}

		msg := &history[i]
		if FindReaction(msg, s.engine.Emoji()) == nil {
			continue
		}

		sm := FromMessage(msg, s.engine.Emoji())
		if !sm.GuildID.IsValid() {
			sm.GuildID = guildID
		}

		considered++
		outcome, err := s.engine.Consider(ctx, sm)
		if err != nil {
			// Already logged by the engine.
			continue
		}

		if outcome == OutcomePromoted {
			promoted++
		}
	}

	s.metrics.RecordSweepChannel("ok")
	return considered, promoted, nil
}
