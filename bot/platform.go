package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/VTGare/Starlight/ctxzap"
	"github.com/VTGare/Starlight/starboard"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/diamondburned/arikawa/v3/utils/httputil"
	"github.com/diamondburned/arikawa/v3/utils/sendpart"
)

// uploadLimit is the most bytes re-uploaded with a single showcase post.
// Attachments that do not fit in what is left are linked instead.
const uploadLimit = 8 << 20

// platform implements starboard.Client and starboard.ChannelLister on top of
// an arikawa state.
type platform struct {
	state       *state.State
	http        *http.Client
	uploadLimit int64
}

var (
	_ starboard.Client        = (*platform)(nil)
	_ starboard.ChannelLister = (*platform)(nil)
)

func newPlatform(s *state.State) *platform {
	return &platform{
		state:       s,
		http:        &http.Client{Timeout: 30 * time.Second},
		uploadLimit: uploadLimit,
	}
}

func (p *platform) Message(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID) (*discord.Message, error) {
	msg, err := p.state.WithContext(ctx).Message(channelID, messageID)
	if err != nil {
		return nil, classify(err)
	}

	return msg, nil
}

func (p *platform) History(ctx context.Context, channelID discord.ChannelID, limit uint) ([]discord.Message, error) {
	msgs, err := p.state.WithContext(ctx).Messages(channelID, limit)
	if err != nil {
		return nil, classify(err)
	}

	return msgs, nil
}

func (p *platform) Member(ctx context.Context, guildID discord.GuildID, userID discord.UserID) (*discord.Member, error) {
	member, err := p.state.WithContext(ctx).Member(guildID, userID)
	if err != nil {
		return nil, classify(err)
	}

	return member, nil
}

func (p *platform) TextChannels(ctx context.Context, guildID discord.GuildID) ([]discord.Channel, error) {
	channels, err := p.state.WithContext(ctx).Channels(guildID)
	if err != nil {
		return nil, classify(err)
	}

	return textChannels(channels), nil
}

// textChannels keeps the channels whose history can hold starred messages.
func textChannels(channels []discord.Channel) []discord.Channel {
	text := make([]discord.Channel, 0, len(channels))
	for _, ch := range channels {
		switch ch.Type {
		case discord.GuildText, discord.GuildAnnouncement:
			text = append(text, ch)
		}
	}

	return text
}

func (p *platform) Publish(ctx context.Context, channelID discord.ChannelID, post *starboard.Post) (*discord.Message, error) {
	embed, files := p.attach(ctx, post)

	msg, err := p.state.WithContext(ctx).SendMessageComplex(channelID, api.SendMessageData{
		Embeds: []discord.Embed{embed},
		Files:  files,
	})
	if err != nil {
		return nil, classify(err)
	}

	return msg, nil
}

// attach downloads the post's attachments while they fit in the upload
// limit. The rest are added to the embed as links.
func (p *platform) attach(ctx context.Context, post *starboard.Post) (discord.Embed, []sendpart.File) {
	log := ctxzap.Extract(ctx)

	var (
		embed  = post.Embed
		files  = make([]sendpart.File, 0, len(post.Attachments))
		budget = p.uploadLimit
	)

	// Copy so linking never appends into the caller's backing array.
	embed.Fields = append([]discord.EmbedField(nil), post.Embed.Fields...)

	for _, a := range post.Attachments {
		file, size, err := p.download(ctx, a, budget)
		if err != nil {
			log.With("url", a.URL, "error", err).Warn("failed to re-upload an attachment, linking it")
		}

		if file == nil {
			embed.Fields = append(embed.Fields, discord.EmbedField{
				Name:   "Attachment",
				Value:  fmt.Sprintf("[%v](%v)", a.Filename, a.URL),
				Inline: true,
			})
			continue
		}

		budget -= size
		files = append(files, *file)
	}

	return embed, files
}

// download fetches an attachment for re-upload along with its size. It
// returns a nil file without an error when the attachment is bigger than
// budget.
func (p *platform) download(ctx context.Context, a discord.Attachment, budget int64) (*sendpart.File, int64, error) {
	if budget <= 0 || a.Size > uint64(budget) {
		return nil, 0, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(a.URL), nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("http get: unexpected status %v", resp.Status)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, budget+1)); err != nil {
		return nil, 0, fmt.Errorf("io copy: %w", err)
	}

	// The reported size can be wrong; what was actually read counts.
	if int64(buf.Len()) > budget {
		return nil, 0, nil
	}

	return &sendpart.File{Name: a.Filename, Reader: &buf}, int64(buf.Len()), nil
}

// isNotFound reports whether the platform answered 404.
func isNotFound(err error) bool {
	var httpErr *httputil.HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound
}

// classify maps arikawa errors onto the starboard error taxonomy.
func classify(err error) error {
	var httpErr *httputil.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == http.StatusForbidden {
		return fmt.Errorf("%w: %w", starboard.ErrPermissionDenied, err)
	}

	return fmt.Errorf("%w: %w", starboard.ErrTransient, err)
}
