// Package config holds the bot's typed configuration and the layered loader
// that fills it from files, the environment and a .env file.
package config

import (
	"fmt"

	"github.com/diamondburned/arikawa/v3/discord"
)

// Ledger backends.
const (
	LedgerNone   = "none"
	LedgerPebble = "pebble"
	LedgerMongo  = "mongo"
)

type Config struct {
	Bot         BotConfig         `koanf:"bot"`
	Starboard   StarboardConfig   `koanf:"starboard"`
	Sweep       SweepConfig       `koanf:"sweep"`
	Leaderboard LeaderboardConfig `koanf:"leaderboard"`
	Ledger      LedgerConfig      `koanf:"ledger"`
	Metrics     MetricsConfig     `koanf:"metrics"`
	Dev         DevConfig         `koanf:"dev"`
}

type BotConfig struct {
	Token string `koanf:"token"`
	// Guild is optional. Commands are additionally registered to it so they
	// show up without waiting for global propagation.
	Guild string `koanf:"guild"`
}

type StarboardConfig struct {
	Channel   string `koanf:"channel"`
	Threshold int    `koanf:"threshold"`
	Emoji     string `koanf:"emoji"`
	Window    uint   `koanf:"window"`
}

type SweepConfig struct {
	Limit   uint `koanf:"limit"`
	Workers int  `koanf:"workers"`
}

type LeaderboardConfig struct {
	Path string `koanf:"path"`
}

type LedgerConfig struct {
	Backend string             `koanf:"backend"`
	Pebble  PebbleLedgerConfig `koanf:"pebble"`
	Mongo   MongoLedgerConfig  `koanf:"mongo"`
}

type PebbleLedgerConfig struct {
	Path string `koanf:"path"`
}

type MongoLedgerConfig struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

type DevConfig struct {
	Mode bool `koanf:"mode"`
}

// Default returns the configuration used for every key no source sets.
func Default() *Config {
	return &Config{
		Starboard: StarboardConfig{
			Threshold: 5,
			Emoji:     "⭐",
			Window:    100,
		},
		Sweep: SweepConfig{
			Limit:   100,
			Workers: 1,
		},
		Leaderboard: LeaderboardConfig{
			Path: "leaderboard.json",
		},
		Ledger: LedgerConfig{
			Backend: LedgerNone,
			Pebble:  PebbleLedgerConfig{Path: "promotions.db"},
			Mongo:   MongoLedgerConfig{Database: "starlight"},
		},
	}
}

// Validate reports missing required options as ErrConfigMissing and
// malformed ones as ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("%w: bot.token", ErrConfigMissing)
	}

	if c.Starboard.Channel == "" {
		return fmt.Errorf("%w: starboard.channel", ErrConfigMissing)
	}

	if _, err := discord.ParseSnowflake(c.Starboard.Channel); err != nil {
		return fmt.Errorf("%w: starboard.channel %q is not a snowflake", ErrInvalidConfig, c.Starboard.Channel)
	}

	if c.Bot.Guild != "" {
		if _, err := discord.ParseSnowflake(c.Bot.Guild); err != nil {
			return fmt.Errorf("%w: bot.guild %q is not a snowflake", ErrInvalidConfig, c.Bot.Guild)
		}
	}

	if c.Starboard.Threshold < 1 {
		return fmt.Errorf("%w: starboard.threshold must be at least 1", ErrInvalidConfig)
	}

	if c.Starboard.Emoji == "" {
		return fmt.Errorf("%w: starboard.emoji", ErrConfigMissing)
	}

	if c.Starboard.Window == 0 || c.Sweep.Limit == 0 {
		return fmt.Errorf("%w: starboard.window and sweep.limit must be positive", ErrInvalidConfig)
	}

	if c.Sweep.Workers < 1 {
		return fmt.Errorf("%w: sweep.workers must be at least 1", ErrInvalidConfig)
	}

	if c.Leaderboard.Path == "" {
		return fmt.Errorf("%w: leaderboard.path", ErrConfigMissing)
	}

	switch c.Ledger.Backend {
	case LedgerNone:
	case LedgerPebble:
		if c.Ledger.Pebble.Path == "" {
			return fmt.Errorf("%w: ledger.pebble.path", ErrConfigMissing)
		}
	case LedgerMongo:
		if c.Ledger.Mongo.URI == "" {
			return fmt.Errorf("%w: ledger.mongo.uri", ErrConfigMissing)
		}
	default:
		return fmt.Errorf("%w: unknown ledger.backend %q", ErrInvalidConfig, c.Ledger.Backend)
	}

	return nil
}

// ShowcaseChannelID is the channel promoted messages are posted to. Only
// meaningful after Validate succeeded.
func (c *Config) ShowcaseChannelID() discord.ChannelID {
	sf, _ := discord.ParseSnowflake(c.Starboard.Channel)
	return discord.ChannelID(sf)
}

// GuildID returns the configured guild or a null ID.
func (c *Config) GuildID() discord.GuildID {
	if c.Bot.Guild == "" {
		return discord.NullGuildID
	}

	sf, _ := discord.ParseSnowflake(c.Bot.Guild)
	return discord.GuildID(sf)
}
