package starboard

import (
	"fmt"
	"strings"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/dustin/go-humanize"
)

// Footer renders a promotion footer. Its last whitespace-separated token is
// the source message ID, which is what MarkerID reads back.
func Footer(emoji string, stars int, messageID discord.MessageID) string {
	return fmt.Sprintf("%v %v | Message ID: %v", emoji, humanize.Comma(int64(stars)), messageID)
}

// MarkerID returns the trailing token of a footer.
func MarkerID(footer string) string {
	fields := strings.Fields(footer)
	if len(fields) == 0 {
		return ""
	}

	return fields[len(fields)-1]
}

// HasMarker reports whether any embed of msg carries a footer marker equal
// to messageID.
func HasMarker(msg *discord.Message, messageID discord.MessageID) bool {
	want := messageID.String()
	for _, embed := range msg.Embeds {
		if embed.Footer == nil {
			continue
		}

		if MarkerID(embed.Footer.Text) == want {
			return true
		}
	}

	return false
}
