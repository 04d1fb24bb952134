package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/VTGare/Starlight/config"
	"github.com/VTGare/Starlight/metrics"
	"github.com/VTGare/Starlight/starboard"
	"github.com/VTGare/Starlight/store"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/state"
	"go.uber.org/zap"
)

type Bot struct {
	Config      *config.Config
	State       *state.State
	Leaderboard store.LeaderboardStore
	Engine      *starboard.Engine
	Sweeper     *starboard.Sweeper
	Metrics     *metrics.Manager
	Log         *zap.SugaredLogger

	router    *cmdroute.Router
	commands  []api.CreateCommandData
	sweepOnce sync.Once
}

// New wires the starboard engine to a Discord session. ledger may be nil.
func New(log *zap.SugaredLogger, cfg *config.Config, board store.LeaderboardStore, ledger store.PromotionStore, m *metrics.Manager) *Bot {
	var (
		r = cmdroute.NewRouter()
		s = state.New("Bot " + cfg.Bot.Token)
		p = newPlatform(s)
	)

	s.AddIntents(gateway.IntentGuilds |
		gateway.IntentGuildMembers |
		gateway.IntentGuildMessages |
		gateway.IntentGuildMessageReactions |
		gateway.IntentMessageContent,
	)

	opts := []starboard.Option{
		starboard.WithThreshold(cfg.Starboard.Threshold),
		starboard.WithEmoji(cfg.Starboard.Emoji),
		starboard.WithWindow(cfg.Starboard.Window),
		starboard.WithMetrics(m),
	}

	if ledger != nil {
		opts = append(opts, starboard.WithLedger(ledger))
	}

	engine := starboard.NewEngine(p, board, cfg.ShowcaseChannelID(), opts...)
	sweeper := starboard.NewSweeper(engine, p,
		starboard.WithSweepLimit(cfg.Sweep.Limit),
		starboard.WithWorkers(cfg.Sweep.Workers),
		starboard.WithSweepMetrics(m),
	)

	return &Bot{
		Config:      cfg,
		State:       s,
		Leaderboard: board,
		Engine:      engine,
		Sweeper:     sweeper,
		Metrics:     m,
		Log:         log,

		router:   r,
		commands: make([]api.CreateCommandData, 0),
	}
}

func (b *Bot) AddCommand(f func(b *Bot) (command api.CreateCommandData, handler cmdroute.CommandHandlerFunc)) {
	cmd, handler := f(b)

	b.commands = append(b.commands, cmd)
	b.router.AddFunc(cmd.Name, handler)
}

func (b *Bot) AddMiddleware(mw cmdroute.Middleware) {
	b.router.Use(mw)
}

func (b *Bot) Start(ctx context.Context) error {
	b.State.AddInteractionHandler(b.router)
	b.State.AddHandler(b.onReady(ctx))
	b.State.AddHandler(b.onReactionAdd(ctx))

	if err := cmdroute.OverwriteCommands(b.State, b.commands); err != nil {
		return fmt.Errorf("failed to overwrite commands: %w", err)
	}

	if guildID := b.Config.GuildID(); guildID.IsValid() {
		app, err := b.State.CurrentApplication()
		if err != nil {
			return fmt.Errorf("failed to get current application: %w", err)
		}

		if _, err := b.State.BulkOverwriteGuildCommands(app.ID, guildID, b.commands); err != nil {
			return fmt.Errorf("failed to overwrite guild commands: %w", err)
		}
	}

	if err := b.State.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	return nil
}

// IsAdmin reports whether the user holds the Administrator permission in the
// given channel.
func (b *Bot) IsAdmin(channelID discord.ChannelID, userID discord.UserID) (bool, error) {
	perms, err := b.State.Permissions(channelID, userID)
	if err != nil {
		return false, err
	}

	return perms.Has(discord.PermissionAdministrator), nil
}

// DisplayName resolves a user's name in the guild, preferring the nickname.
// It reports false without an error when the user is not a member.
func (b *Bot) DisplayName(ctx context.Context, guildID discord.GuildID, userID discord.UserID) (string, bool, error) {
	member, err := b.State.WithContext(ctx).Member(guildID, userID)
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}

		return "", false, err
	}

	if member.Nick != "" {
		return member.Nick, true, nil
	}

	return member.User.Username, true, nil
}
