package bot

import (
	"context"

	"github.com/VTGare/Starlight/ctxzap"
	"github.com/VTGare/Starlight/starboard"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
)

// onReactionAdd runs every added star reaction through the engine.
func (b *Bot) onReactionAdd(ctx context.Context) func(*gateway.MessageReactionAddEvent) {
	return func(ev *gateway.MessageReactionAddEvent) {
		if ev.Emoji.Name != b.Engine.Emoji() {
			return
		}

		if ev.ChannelID == b.Engine.Showcase() {
			return
		}

		log := ctxzap.Extract(ctx).With(
			"guild_id", ev.GuildID,
			"channel_id", ev.ChannelID,
			"message_id", ev.MessageID,
			"user_id", ev.UserID,
		)

		outcome, err := b.Engine.ConsiderReaction(ctxzap.ToContext(ctx, log), ev.GuildID, ev.ChannelID, ev.MessageID)
		switch {
		case outcome == starboard.OutcomeSkippedUnreadable:
			log.With("error", err).Warn("failed to fetch reacted message")
		case err != nil:
			// Logged by the engine.
		default:
			log.With("outcome", outcome).Debug("handled a reaction")
		}
	}
}

// onReady starts the backfill sweep the first time the session is ready.
// Reconnects do not trigger another sweep.
func (b *Bot) onReady(ctx context.Context) func(*gateway.ReadyEvent) {
	return func(ev *gateway.ReadyEvent) {
		b.Log.With("user", ev.User.Tag(), "guilds", len(ev.Guilds)).Info("connected to the gateway")

		b.sweepOnce.Do(func() {
			go b.sweep(ctx, ev)
		})
	}
}

func (b *Bot) sweep(ctx context.Context, ev *gateway.ReadyEvent) {
	guilds := make([]discord.GuildID, 0, len(ev.Guilds))
	for _, g := range ev.Guilds {
		guilds = append(guilds, g.ID)
	}

	b.Log.With("guilds", len(guilds)).Info("starting backfill sweep")
	b.Sweeper.Sweep(ctx, guilds)
}
