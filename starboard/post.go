package starboard

import (
	"fmt"

	"github.com/VTGare/Starlight/arikawautils/embeds"
	"github.com/diamondburned/arikawa/v3/discord"
)

// Post is a rendered promotion, ready to publish.
type Post struct {
	Embed discord.Embed
	// Attachments are re-uploaded next to the embed.
	Attachments []discord.Attachment
}

// Render builds the promotion post for msg. The visual part is chosen in
// order: embed thumbnail, embed link, re-uploaded attachments, nothing.
func Render(msg *StarredMessage, emoji string) *Post {
	var (
		eb   = embeds.NewBuilder()
		post = &Post{}
	)

	eb.Color(embeds.ColorGold)
	eb.Description(msg.Content)
	eb.Footer(Footer(emoji, msg.Stars, msg.ID), "")

	name := msg.AuthorName
	if name == "" {
		name = msg.Author.Username
	}

	url := ""
	if msg.GuildID.IsValid() {
		url = msg.JumpURL()
		eb.AddField("Original message", fmt.Sprintf("[Click here](%v)", url), true)
	}
	eb.Author(name, string(msg.Author.AvatarURL()), url)

	if msg.Timestamp.IsValid() {
		eb.Timestamp(msg.Timestamp.Time())
	}

	switch {
	case msg.Embed != nil && msg.Embed.ThumbnailURL != "":
		eb.Image(msg.Embed.ThumbnailURL)
	case msg.Embed != nil && msg.Embed.URL != "":
		eb.Image(msg.Embed.URL)
	case len(msg.Attachments) != 0:
		post.Attachments = msg.Attachments
	}

	post.Embed = eb.Build()
	return post
}
