package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/VTGare/Starlight/arikawautils/embeds"
	"github.com/VTGare/Starlight/bot"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
)

// RegisterCommands adds every slash command to the bot.
func RegisterCommands(b *bot.Bot) {
	b.AddCommand(ping)
	b.AddCommand(help)
	b.AddCommand(leaderboard)
	b.AddCommand(addStars)
	b.AddCommand(removeStars)
}

func ping(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:        "ping",
		Description: "Get the bot's response time",
		Type:        discord.ChatInputCommand,
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		latency := b.State.Gateway().Latency().Round(time.Millisecond).String()

		eb := embeds.NewBuilder()
		eb.Title("🏓 Pong!").AddField("Latency", latency)

		return &api.InteractionResponseData{
			Embeds: &[]discord.Embed{
				eb.Build(),
			},
		}
	}
}

func help(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:        "help",
		Description: "Know about the Hall of Fame bot",
		Type:        discord.ChatInputCommand,
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		return &api.InteractionResponseData{
			Content: option.NewNullableString(helpText(b.Engine.Emoji(), b.Engine.Threshold(), b.Engine.Showcase())),
		}
	}
}

func helpText(emoji string, threshold int, showcase discord.ChannelID) string {
	return fmt.Sprintf(
		"React to a message with %v! If it gets %v, it enters the Hall of Fame! "+
			"Check out the %v channel and use /leaderboard to check the current leaderboard.",
		emoji, threshold, showcase.Mention(),
	)
}
