package middlewares

import (
	"context"
	"time"

	"github.com/VTGare/Starlight/ctxzap"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
	"go.uber.org/zap"
)

// CommandLog logs every command and hands a logger scoped to it down the
// context.
func CommandLog(logger *zap.SugaredLogger) cmdroute.Middleware {
	return func(next cmdroute.InteractionHandler) cmdroute.InteractionHandler {
		mw := func(ctx context.Context, ie *discord.InteractionEvent) *api.InteractionResponse {
			if ie.Data.InteractionType() != discord.CommandInteractionType {
				return next.HandleInteraction(ctx, ie)
			}

			cmd := ie.Data.(*discord.CommandInteraction)

			log := logger.With(
				"sender", ie.SenderID(),
				"guild_id", ie.GuildID,
				"channel_id", ie.ChannelID,
				"command", cmd.Name,
			)

			log.With("options", cmd.Options).Info("executing a command")

			start := time.Now()
			resp := next.HandleInteraction(ctxzap.ToContext(ctx, log), ie)
			log.With("took", time.Since(start)).Debug("executed a command")

			return resp
		}

		return cmdroute.InteractionHandlerFunc(mw)
	}
}

// Recover turns a panicking command into an error response.
func Recover(logger *zap.SugaredLogger) cmdroute.Middleware {
	return func(next cmdroute.InteractionHandler) cmdroute.InteractionHandler {
		mw := func(ctx context.Context, ie *discord.InteractionEvent) (resp *api.InteractionResponse) {
			defer func() {
				if r := recover(); r != nil {
					logger.With("panic", r, "sender", ie.SenderID()).Error("command panicked")

					resp = &api.InteractionResponse{
						Type: api.MessageInteractionWithSource,
						Data: &api.InteractionResponseData{
							Content: option.NewNullableString("Something went wrong."),
							Flags:   discord.EphemeralMessage,
						},
					}
				}
			}()

			return next.HandleInteraction(ctx, ie)
		}

		return cmdroute.InteractionHandlerFunc(mw)
	}
}
