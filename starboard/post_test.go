package starboard_test

import (
	"testing"

	"github.com/VTGare/Starlight/starboard"
	"github.com/diamondburned/arikawa/v3/discord"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRender(t *testing.T) {
	Convey("Given a starred message", t, func() {
		msg := starred(42, generalID, 5)
		msg.GuildID = guildID

		Convey("When it carries an embed with a thumbnail and a link", func() {
			msg.Embeds = []discord.Embed{{
				URL:       "https://example.com/page",
				Thumbnail: &discord.EmbedThumbnail{URL: "https://example.com/thumb.png"},
			}}
			msg.Attachments = []discord.Attachment{{Filename: "a.png", URL: "https://cdn/a.png"}}
			post := starboard.Render(starboard.FromMessage(&msg, "⭐"), "⭐")

			Convey("Then the thumbnail becomes the image", func() {
				So(post.Embed.Image, ShouldNotBeNil)
				So(post.Embed.Image.URL, ShouldEqual, "https://example.com/thumb.png")
				So(post.Attachments, ShouldBeEmpty)
			})
		})

		Convey("When it carries a link embed without a thumbnail", func() {
			msg.Embeds = []discord.Embed{{URL: "https://example.com/cat.gif"}}
			post := starboard.Render(starboard.FromMessage(&msg, "⭐"), "⭐")

			Convey("Then the link becomes the image", func() {
				So(post.Embed.Image, ShouldNotBeNil)
				So(post.Embed.Image.URL, ShouldEqual, "https://example.com/cat.gif")
			})
		})

		Convey("When it carries an embed with neither and some attachments", func() {
			msg.Embeds = []discord.Embed{{Title: "just text"}}
			msg.Attachments = []discord.Attachment{
				{Filename: "a.png", URL: "https://cdn/a.png"},
				{Filename: "b.mp4", URL: "https://cdn/b.mp4"},
			}
			post := starboard.Render(starboard.FromMessage(&msg, "⭐"), "⭐")

			Convey("Then every attachment is re-uploaded", func() {
				So(post.Embed.Image, ShouldBeNil)
				So(post.Attachments, ShouldHaveLength, 2)
			})
		})

		Convey("When it is plain text", func() {
			post := starboard.Render(starboard.FromMessage(&msg, "⭐"), "⭐")

			Convey("Then the post is text only", func() {
				So(post.Embed.Image, ShouldBeNil)
				So(post.Attachments, ShouldBeEmpty)
				So(post.Embed.Description, ShouldEqual, "message 42")
			})

			Convey("Then the author and footer are filled", func() {
				So(post.Embed.Author.Name, ShouldEqual, "alice")
				So(post.Embed.Footer.Text, ShouldEqual, "⭐ 5 | Message ID: 42")
				So(post.Embed.Color, ShouldEqual, discord.Color(0xf1c40f))
			})
		})
	})
}

func TestMarker(t *testing.T) {
	Convey("Given promotion footers", t, func() {
		Convey("Then the marker is the trailing token", func() {
			So(starboard.MarkerID(starboard.Footer("⭐", 1234, 987654321)), ShouldEqual, "987654321")
			So(starboard.Footer("⭐", 1234, 987654321), ShouldEqual, "⭐ 1,234 | Message ID: 987654321")
			So(starboard.MarkerID(""), ShouldEqual, "")
			So(starboard.MarkerID("  "), ShouldEqual, "")
		})

		Convey("When a post's marker only ends with the ID's digits", func() {
			post := discord.Message{Embeds: []discord.Embed{
				{Footer: &discord.EmbedFooter{Text: "⭐ 5 | Message ID: 9123"}},
			}}

			Convey("Then it does not match", func() {
				So(starboard.HasMarker(&post, 123), ShouldBeFalse)
				So(starboard.HasMarker(&post, 9123), ShouldBeTrue)
			})
		})

		Convey("When the marker is on a later embed", func() {
			post := discord.Message{Embeds: []discord.Embed{
				{Title: "no footer"},
				{Footer: &discord.EmbedFooter{Text: "⭐ 5 | Message ID: 77"}},
			}}

			Convey("Then it still matches", func() {
				So(starboard.HasMarker(&post, 77), ShouldBeTrue)
			})
		})
	})
}

func TestFromMessage(t *testing.T) {
	Convey("Given a message with several reactions", t, func() {
		msg := starred(50, generalID, 7)

		Convey("Then only the star emoji is counted", func() {
			So(starboard.FromMessage(&msg, "⭐").Stars, ShouldEqual, 7)
			So(starboard.FromMessage(&msg, "🔥").Stars, ShouldEqual, 2)
			So(starboard.FromMessage(&msg, "🌟").Stars, ShouldEqual, 0)
		})

		Convey("When the message has no reactions", func() {
			bare := starred(51, generalID, 0)

			Convey("Then FindReaction returns nil", func() {
				So(starboard.FindReaction(&bare, "⭐"), ShouldBeNil)
			})
		})
	})
}
