package starboard

import (
	"fmt"

	"github.com/VTGare/Starlight/slices"
	"github.com/diamondburned/arikawa/v3/discord"
)

// StarredMessage is a source message reduced to what a promotion needs.
type StarredMessage struct {
	ID        discord.MessageID
	ChannelID discord.ChannelID
	GuildID   discord.GuildID
	Timestamp discord.Timestamp

	Author discord.User
	// AuthorName is the guild display name, resolved lazily when empty.
	AuthorName string

	Content     string
	Attachments []discord.Attachment
	Embed       *EmbedRef

	Stars int
}

// EmbedRef is the visual part of the source message's first embed.
type EmbedRef struct {
	ThumbnailURL string
	URL          string
}

// FromMessage builds a StarredMessage, counting reactions that use emoji.
func FromMessage(msg *discord.Message, emoji string) *StarredMessage {
	sm := &StarredMessage{
		ID:          msg.ID,
		ChannelID:   msg.ChannelID,
		GuildID:     msg.GuildID,
		Timestamp:   msg.Timestamp,
		Author:      msg.Author,
		Content:     msg.Content,
		Attachments: msg.Attachments,
	}

	if react := FindReaction(msg, emoji); react != nil {
		sm.Stars = react.Count
	}

	if len(msg.Embeds) != 0 {
		embed := msg.Embeds[0]
		ref := &EmbedRef{URL: string(embed.URL)}
		if embed.Thumbnail != nil {
			ref.ThumbnailURL = string(embed.Thumbnail.URL)
		}

		if ref.URL != "" || ref.ThumbnailURL != "" {
			sm.Embed = ref
		}
	}

	return sm
}

// FindReaction returns the message's reaction with the given emoji name, or nil.
func FindReaction(msg *discord.Message, emoji string) *discord.Reaction {
	react, ok := slices.Find(msg.Reactions, func(r discord.Reaction) bool {
		return r.Emoji.Name == emoji
	})
	if !ok {
		return nil
	}

	return &react
}

// JumpURL links to the source message.
func (sm *StarredMessage) JumpURL() string {
	return fmt.Sprintf("https://discord.com/channels/%v/%v/%v", sm.GuildID, sm.ChannelID, sm.ID)
}
