// Package discord is the chat-platform layer: slash commands that
// manage subscriptions, guild lifecycle upkeep, and the delivery
// adapter the dispatch loop hands rendered messages to.
package discord

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"inthound/internal/riot"
	"inthound/internal/storage"
	"inthound/pkg/logx"
)

// ChampionResolver maps champion IDs to display names for the patch a
// match was played on. Lookups are best-effort: a failure only drops
// the champion name from the rendered line.
type ChampionResolver interface {
	ChampionName(ctx context.Context, gameVersion string, championID int64) (string, error)
}

type Bot struct {
	session   *discordgo.Session
	store     storage.Store
	riot      *riot.Client
	champions ChampionResolver
	log       logx.Logger

	leaderboardQueues []int64
	leaderboardSize   int

	registered []*discordgo.ApplicationCommand
}

func New(token string, store storage.Store, riotClient *riot.Client, champions ChampionResolver, leaderboardQueues []int64, leaderboardSize int, log logx.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	if log.IsZero() {
		log = logx.Nop()
	}
	if leaderboardSize <= 0 {
		leaderboardSize = defaultLeaderboardSize
	}
	if len(leaderboardQueues) == 0 {
		// Draft, ranked solo, ranked flex.
		leaderboardQueues = []int64{400, 420, 440}
	}

	b := &Bot{
		session:           session,
		store:             store,
		riot:              riotClient,
		champions:         champions,
		log:               log,
		leaderboardQueues: leaderboardQueues,
		leaderboardSize:   leaderboardSize,
	}

	session.AddHandler(b.handleReady)
	session.AddHandler(b.handleGuildCreate)
	session.AddHandler(b.handleGuildDelete)
	session.AddHandler(b.handleChannelDelete)
	session.AddHandler(b.handleInteraction)
	return b, nil
}

// Start opens the gateway connection and registers slash commands.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord: open session: %w", err)
	}
	registered, err := b.session.ApplicationCommandBulkOverwrite(
		b.session.State.User.ID, "", commandDefinitions())
	if err != nil {
		return fmt.Errorf("discord: register commands: %w", err)
	}
	b.registered = registered
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// Send implements the delivery contract used by the dispatch loop.
func (b *Bot) Send(ctx context.Context, channelID int64, text string) error {
	_, err := b.session.ChannelMessageSend(strconv.FormatInt(channelID, 10), text,
		discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: send to channel %d: %w", channelID, err)
	}
	return nil
}

func (b *Bot) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("connected to discord",
		logx.String("user", r.User.Username), logx.Int("guilds", len(r.Guilds)))
}

func (b *Bot) handleGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	guildID, err := parseSnowflake(g.ID)
	if err != nil {
		b.log.Error("bad guild id", logx.String("id", g.ID), logx.Err(err))
		return
	}
	if err := b.store.InsertGuild(context.Background(), guildID); err != nil {
		b.log.Error("guild insert failed", logx.Int64("guild", guildID), logx.Err(err))
		return
	}
	b.log.Info("guild registered", logx.Int64("guild", guildID))
}

func (b *Bot) handleGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Unavailable {
		return // outage, not a removal
	}
	guildID, err := parseSnowflake(g.ID)
	if err != nil {
		b.log.Error("bad guild id", logx.String("id", g.ID), logx.Err(err))
		return
	}
	if err := b.store.DeleteGuild(context.Background(), guildID); err != nil {
		b.log.Error("guild delete failed", logx.Int64("guild", guildID), logx.Err(err))
		return
	}
	b.log.Info("guild removed", logx.Int64("guild", guildID))
}

func (b *Bot) handleChannelDelete(_ *discordgo.Session, c *discordgo.ChannelDelete) {
	channelID, err := parseSnowflake(c.ID)
	if err != nil {
		return
	}
	n, err := b.store.ClearChannel(context.Background(), channelID)
	if err != nil {
		b.log.Error("channel cleanup failed", logx.Int64("channel", channelID), logx.Err(err))
		return
	}
	if n > 0 {
		b.log.Info("notification channel unset after deletion",
			logx.Int64("channel", channelID), logx.Int64("guilds", n))
	}
}

func parseSnowflake(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}
