package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/VTGare/Starlight/arikawautils/embeds"
	"github.com/VTGare/Starlight/bot"
	"github.com/VTGare/Starlight/ctxzap"
	"github.com/VTGare/Starlight/metrics"
	"github.com/VTGare/Starlight/store"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
	"github.com/dustin/go-humanize"
)

const (
	leaderboardSize = 10
	// maxLookups bounds member lookups per leaderboard so a board full of
	// departed authors still answers in time.
	maxLookups = 3 * leaderboardSize
)

var medals = []string{"🥇", "🥈", "🥉"}

const (
	emptyLeaderboard = "No stars given yet!"
	notPermitted     = "You do not have permission to use this command."
)

var errNonPositiveAmount = errors.New("amount must be positive")

func leaderboard(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:        "leaderboard",
		Description: "Show the Hall of Fame leaderboard",
		Type:        discord.ChatInputCommand,
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		log := ctxzap.Extract(ctx)

		entries, err := b.Leaderboard.Entries(ctx)
		if err != nil {
			log.With("error", err).Error("failed to list leaderboard entries")
			return errorResponse("Failed to load the leaderboard. Please try again later.")
		}

		b.Metrics.SetLeaderboardEntries(len(entries))

		guildID := data.Event.GuildID
		embed, ok := renderLeaderboard(entries, b.Engine.Emoji(), func(authorID string) (string, bool) {
			return memberName(ctx, authorID, func(userID discord.UserID) (string, bool, error) {
				if !guildID.IsValid() {
					return "", false, nil
				}

				return b.DisplayName(ctx, guildID, userID)
			})
		})
		if !ok {
			return &api.InteractionResponseData{
				Content: option.NewNullableString(emptyLeaderboard),
				Flags:   discord.EphemeralMessage,
			}
		}

		return &api.InteractionResponseData{
			Embeds: &[]discord.Embed{embed},
		}
	}
}

func addStars(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	return adjustCommand(b, "addstars", "Add stars to a user's count", "add stars to", 1)
}

func removeStars(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	return adjustCommand(b, "removestars", "Remove stars from a user's count", "remove stars from", -1)
}

// adjustCommand builds an admin-only command that moves a user's count by
// sign times the given amount.
func adjustCommand(b *bot.Bot, name, description, verb string, sign int) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:                     name,
		Description:              description,
		Type:                     discord.ChatInputCommand,
		DefaultMemberPermissions: discord.NewPermissions(discord.PermissionAdministrator),
		Options: discord.CommandOptions{
			discord.NewUserOption("user", "User to "+verb, true),
			discord.NewIntegerOption("amount", "Number of stars", true),
		},
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		log := ctxzap.Extract(ctx).With("command", name)

		admin, err := b.IsAdmin(data.Event.ChannelID, data.Event.SenderID())
		if err != nil {
			log.With("error", err).Warn("failed to resolve sender permissions")
		}

		if !admin {
			return &api.InteractionResponseData{
				Content: option.NewNullableString(notPermitted),
				Flags:   discord.EphemeralMessage,
			}
		}

		userID, err := data.Options.Find("user").SnowflakeValue()
		if err != nil {
			return errorResponse("Invalid user.")
		}

		amount, err := data.Options.Find("amount").IntValue()
		if err != nil {
			return errorResponse("Invalid amount.")
		}

		total, err := adjust(ctx, b.Leaderboard, b.Metrics, userID.String(), int(amount), sign)
		if err != nil {
			if errors.Is(err, errNonPositiveAmount) {
				return errorResponse("Amount must be a positive number.")
			}

			log.With("user_id", userID, "error", err).Error("failed to adjust stars")
			return errorResponse("Failed to update the leaderboard. Please try again later.")
		}

		log.With("user_id", userID, "delta", sign*int(amount), "total", total).Info("adjusted stars")

		mention := discord.UserID(userID).Mention()
		var content string
		if sign > 0 {
			content = fmt.Sprintf("Added %v%v to %v.", humanize.Comma(amount), b.Engine.Emoji(), mention)
		} else {
			content = fmt.Sprintf("Removed %v%v from %v.", humanize.Comma(amount), b.Engine.Emoji(), mention)
		}

		return &api.InteractionResponseData{
			Content: option.NewNullableString(content),
		}
	}
}

// adjust applies a manual adjustment of sign times amount. The store clamps
// the result at zero.
func adjust(ctx context.Context, board store.LeaderboardStore, m *metrics.Manager, authorID string, amount, sign int) (int, error) {
	if amount <= 0 {
		return 0, errNonPositiveAmount
	}

	total, err := board.Increment(ctx, authorID, sign*amount)
	if err != nil {
		return 0, err
	}

	m.RecordLeaderboardUpdate("admin")
	return total, nil
}

// renderLeaderboard ranks the top authors still resolvable by name. It
// returns false when there is nothing to show.
func renderLeaderboard(entries []*store.LeaderboardEntry, emoji string, name func(authorID string) (string, bool)) (discord.Embed, bool) {
	eb := embeds.NewBuilder()
	eb.Title("🏆 Hall of Fame Leaderboard").
		Description("Top users based on stars received.").
		Color(embeds.ColorGold).
		Footer("look at all these cool people", "")

	rank := 0
	for i, entry := range entries {
		if rank == leaderboardSize || i == maxLookups {
			break
		}

		display, ok := name(entry.AuthorID)
		if !ok {
			continue
		}

		var badge string
		if rank < len(medals) {
			badge = medals[rank]
		} else {
			badge = fmt.Sprintf("`#%v`", rank+1)
		}

		eb.AddField(badge+" "+display, humanize.Comma(int64(entry.Stars))+" "+emoji)
		rank++
	}

	return eb.Build(), rank > 0
}

// memberName resolves an author id to a display name with lookup. It
// reports false only for authors that are no longer members; a failed lookup
// falls back to a mention so the author keeps their rank.
func memberName(ctx context.Context, authorID string, lookup func(discord.UserID) (string, bool, error)) (string, bool) {
	sf, err := discord.ParseSnowflake(authorID)
	if err != nil {
		return "", false
	}

	userID := discord.UserID(sf)
	name, ok, err := lookup(userID)
	if err != nil {
		ctxzap.Extract(ctx).With("user_id", userID, "error", err).
			Warn("failed to resolve a leaderboard member")

		return userID.Mention(), true
	}

	return name, ok
}

func errorResponse(message string) *api.InteractionResponseData {
	eb := embeds.NewBuilder().ErrorTemplate(message)

	return &api.InteractionResponseData{
		Embeds: &[]discord.Embed{eb.Build()},
		Flags:  discord.EphemeralMessage,
	}
}
