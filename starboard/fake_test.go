package starboard_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/VTGare/Starlight/starboard"
	"github.com/VTGare/Starlight/store"
	"github.com/VTGare/Starlight/store/file"
	"github.com/diamondburned/arikawa/v3/discord"
)

const (
	guildID    discord.GuildID   = 1
	showcaseID discord.ChannelID = 2
	generalID  discord.ChannelID = 3
	memesID    discord.ChannelID = 4
	secretID   discord.ChannelID = 5
	aliceID    discord.UserID    = 100
)

// fakeClient is an in-memory chat platform.
type fakeClient struct {
	mu sync.Mutex

	messages   map[discord.MessageID]discord.Message
	history    map[discord.ChannelID][]discord.Message
	channels   map[discord.GuildID][]discord.Channel
	members    map[discord.UserID]discord.Member
	historyErr map[discord.ChannelID]error
	messageErr error
	publishErr error
	// hidePosts keeps published posts out of History, like a showcase
	// channel whose new post is not visible yet.
	hidePosts bool

	published []*starboard.Post
	nextID    discord.MessageID
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		messages:   make(map[discord.MessageID]discord.Message),
		history:    make(map[discord.ChannelID][]discord.Message),
		channels:   make(map[discord.GuildID][]discord.Channel),
		members:    make(map[discord.UserID]discord.Member),
		historyErr: make(map[discord.ChannelID]error),
		nextID:     900000,
	}
}

// add stores msg as the newest message of its channel.
func (c *fakeClient) add(msg discord.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages[msg.ID] = msg
	c.history[msg.ChannelID] = append([]discord.Message{msg}, c.history[msg.ChannelID]...)
}

func (c *fakeClient) History(_ context.Context, channelID discord.ChannelID, limit uint) ([]discord.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.historyErr[channelID]; err != nil {
		return nil, err
	}

	msgs := c.history[channelID]
	if uint(len(msgs)) > limit {
		msgs = msgs[:limit]
	}

	return append([]discord.Message(nil), msgs...), nil
}

func (c *fakeClient) Message(_ context.Context, _ discord.ChannelID, messageID discord.MessageID) (*discord.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.messageErr != nil {
		return nil, c.messageErr
	}

	msg, ok := c.messages[messageID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown message", starboard.ErrTransient)
	}

	msg.GuildID = 0
	return &msg, nil
}

func (c *fakeClient) Member(_ context.Context, _ discord.GuildID, userID discord.UserID) (*discord.Member, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	member, ok := c.members[userID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown member", starboard.ErrTransient)
	}

	return &member, nil
}

func (c *fakeClient) Publish(_ context.Context, channelID discord.ChannelID, post *starboard.Post) (*discord.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.publishErr != nil {
		return nil, c.publishErr
	}

	c.nextID++
	msg := discord.Message{
		ID:        c.nextID,
		ChannelID: channelID,
		Author:    discord.User{ID: 1, Username: "starlight", Bot: true},
		Embeds:    []discord.Embed{post.Embed},
	}

	c.published = append(c.published, post)
	if !c.hidePosts {
		c.history[channelID] = append([]discord.Message{msg}, c.history[channelID]...)
	}

	return &msg, nil
}

func (c *fakeClient) TextChannels(_ context.Context, guildID discord.GuildID) ([]discord.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.channels[guildID], nil
}

func (c *fakeClient) publishedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.published)
}

// fakeLedger is an in-memory store.PromotionStore.
type fakeLedger struct {
	mu         sync.Mutex
	promotions map[string]*store.Promotion
	err        error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{promotions: make(map[string]*store.Promotion)}
}

func (l *fakeLedger) Promotion(_ context.Context, messageID string) (*store.Promotion, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return nil, l.err
	}

	p, ok := l.promotions[messageID]
	if !ok {
		return nil, store.ErrPromotionNotFound
	}

	return p, nil
}

func (l *fakeLedger) CreatePromotion(_ context.Context, p *store.Promotion) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return l.err
	}

	l.promotions[p.Original.MessageID] = p
	return nil
}

func (l *fakeLedger) Close(context.Context) error { return nil }

func starred(id discord.MessageID, channelID discord.ChannelID, stars int) discord.Message {
	msg := discord.Message{
		ID:        id,
		ChannelID: channelID,
		Author:    discord.User{ID: aliceID, Username: "alice"},
		Content:   fmt.Sprintf("message %d", id),
	}

	if stars > 0 {
		msg.Reactions = []discord.Reaction{
			{Count: 2, Emoji: discord.Emoji{Name: "🔥"}},
			{Count: stars, Emoji: discord.Emoji{Name: "⭐"}},
		}
	}

	return msg
}

func openBoard(t *testing.T) *file.Leaderboard {
	lb, err := file.Open(filepath.Join(t.TempDir(), "leaderboard.json"))
	if err != nil {
		t.Fatalf("open leaderboard: %v", err)
	}

	return lb
}
