package starboard

import (
	"context"

	"github.com/diamondburned/arikawa/v3/discord"
)

// HistoryReader lists the most recent messages of a channel, newest first.
type HistoryReader interface {
	History(ctx context.Context, channelID discord.ChannelID, limit uint) ([]discord.Message, error)
}

// Client is the part of the chat platform the engine talks to. Errors are
// expected to wrap ErrPermissionDenied or ErrTransient.
type Client interface {
	HistoryReader
	Message(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID) (*discord.Message, error)
	Member(ctx context.Context, guildID discord.GuildID, userID discord.UserID) (*discord.Member, error)
	// Publish posts to channelID, uploading post.Attachments alongside the embed.
	Publish(ctx context.Context, channelID discord.ChannelID, post *Post) (*discord.Message, error)
}

// ChannelLister lists the text channels of a guild.
type ChannelLister interface {
	TextChannels(ctx context.Context, guildID discord.GuildID) ([]discord.Channel, error)
}
