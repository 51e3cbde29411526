package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"inthound/internal/riot"
	"inthound/internal/storage"
	"inthound/pkg/logx"
)

const defaultLeaderboardSize = 10

const commandTimeout = 10 * time.Second

func commandDefinitions() []*discordgo.ApplicationCommand {
	nameTagOptions := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "name",
			Description: "Player name",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "tag",
			Description: "Player tag",
			Required:    true,
		},
	}

	return []*discordgo.ApplicationCommand{
		{Name: "follow", Description: "Subscribe this server to a player", Options: nameTagOptions},
		{Name: "unfollow", Description: "Unsubscribe this server from a player", Options: nameTagOptions},
		{Name: "list", Description: "List the players this server follows"},
		{Name: "here", Description: "Send notifications to this channel"},
		{Name: "unhere", Description: "Stop sending notifications to this server"},
		{
			Name:        "leaderboard",
			Description: "Show the deadliest followed performances",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "Leaderboard size to view",
					MaxValue:    20,
				},
			},
		},
		{Name: "stats", Description: "Show a player's tracked statistics", Options: nameTagOptions},
		{Name: "about", Description: "About this bot"},
	}
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" {
		b.reply(s, i, "Commands only work inside a server.")
		return
	}
	guildID, err := parseSnowflake(i.GuildID)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	data := i.ApplicationCommandData()
	var text string
	switch data.Name {
	case "follow":
		text, err = b.follow(ctx, guildID, optionString(data, "name"), optionString(data, "tag"))
	case "unfollow":
		text, err = b.unfollow(ctx, guildID, optionString(data, "name"), optionString(data, "tag"))
	case "list":
		text, err = b.list(ctx, guildID)
	case "here":
		text, err = b.here(ctx, guildID, i.ChannelID)
	case "unhere":
		text, err = b.unhere(ctx, guildID)
	case "leaderboard":
		text, err = b.leaderboard(ctx, guildID, int(optionInt(data, "count")))
	case "stats":
		text, err = b.stats(ctx, optionString(data, "name"), optionString(data, "tag"))
	case "about":
		text = "I watch followed players' matches and report the noteworthy deaths."
	default:
		return
	}
	if err != nil {
		b.log.Error("command failed",
			logx.String("command", data.Name), logx.Int64("guild", guildID), logx.Err(err))
		text = "Something went wrong, try again later."
	}
	b.reply(s, i, text)
}

func (b *Bot) follow(ctx context.Context, guildID int64, name, tag string) (string, error) {
	// Always re-query the provider so the PUUID matches whoever holds
	// this name and tag right now.
	account, err := b.riot.GetAccountByRiotID(ctx, name, tag)
	if err != nil {
		if isNotFound(err) {
			return fmt.Sprintf("No player exists with name **%s#%s**.", name, tag), nil
		}
		return "", err
	}

	follows, err := b.store.GetGuildFollows(ctx, guildID)
	if err != nil {
		return "", err
	}
	for _, f := range follows {
		if f.PUUID == account.PUUID {
			return fmt.Sprintf("Already following **%s#%s**.", account.GameName, account.TagLine), nil
		}
	}

	err = b.store.UpsertPlayer(ctx, storage.Player{
		PUUID:    account.PUUID,
		GameName: account.GameName,
		Tag:      account.TagLine,
	})
	if err != nil {
		return "", err
	}
	if err := b.store.InsertFollow(ctx, guildID, account.PUUID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Followed **%s#%s**.", account.GameName, account.TagLine), nil
}

func (b *Bot) unfollow(ctx context.Context, guildID int64, name, tag string) (string, error) {
	player, err := b.store.GetPlayerByName(ctx, name, tag)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Sprintf("Not following **%s#%s**.", name, tag), nil
	}
	if err != nil {
		return "", err
	}
	if err := b.store.DeleteFollow(ctx, guildID, player.PUUID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Unfollowed **%s#%s**.", player.GameName, player.Tag), nil
}

func (b *Bot) list(ctx context.Context, guildID int64) (string, error) {
	follows, err := b.store.GetGuildFollows(ctx, guildID)
	if err != nil {
		return "", err
	}
	if len(follows) == 0 {
		return "No followed players.", nil
	}

	var sb strings.Builder
	sb.WriteString("**FOLLOWED PLAYERS**\n")
	for i, f := range follows {
		player, err := b.store.GetPlayer(ctx, f.PUUID)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "**%d)** %s#%s\n", i+1, player.GameName, player.Tag)
	}
	return sb.String(), nil
}

func (b *Bot) here(ctx context.Context, guildID int64, channelID string) (string, error) {
	id, err := parseSnowflake(channelID)
	if err != nil {
		return "", err
	}
	if err := b.store.SetGuildChannel(ctx, guildID, &id); err != nil {
		return "", err
	}
	return "Notifications will be sent to this channel.", nil
}

func (b *Bot) unhere(ctx context.Context, guildID int64) (string, error) {
	if err := b.store.SetGuildChannel(ctx, guildID, nil); err != nil {
		return "", err
	}
	return "Notifications disabled for this server.", nil
}

func (b *Bot) leaderboard(ctx context.Context, guildID int64, count int) (string, error) {
	requested := count
	if count <= 0 {
		count = b.leaderboardSize
	}
	entries, err := b.store.Leaderboard(ctx, guildID, b.leaderboardQueues, count)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "No leaderboard matches yet.", nil
	}

	var sb strings.Builder
	sb.WriteString("**DEATH LEADERBOARD**\n")
	for i, entry := range entries {
		player, err := b.store.GetPlayer(ctx, entry.PUUID)
		if err != nil {
			return "", err
		}
		line := fmt.Sprintf("%d/%d/%d - %s#%s",
			entry.Kills, entry.Deaths, entry.Assists, player.GameName, player.Tag)
		if champion := b.championFor(ctx, entry); champion != "" {
			line += " (" + champion + ")"
		}
		fmt.Fprintf(&sb, "**%d)** %s\n", i+1, line)
	}
	if requested > 0 && len(entries) < requested {
		fmt.Fprintf(&sb, "*Not enough matches played to fill a leaderboard of %d yet.*\n", requested)
	}
	return sb.String(), nil
}

// championFor resolves the champion played in a leaderboard entry, or
// "" when the lookup is unavailable or fails.
func (b *Bot) championFor(ctx context.Context, entry storage.PlayerMatch) string {
	if b.champions == nil {
		return ""
	}
	match, err := b.store.GetMatch(ctx, entry.MatchID)
	if err != nil {
		b.log.Debug("match lookup for champion name failed",
			logx.String("match", entry.MatchID), logx.Err(err))
		return ""
	}
	name, err := b.champions.ChampionName(ctx, match.GameVersion, entry.ChampionID)
	if err != nil {
		b.log.Debug("champion name lookup failed",
			logx.Int64("champion", entry.ChampionID), logx.Err(err))
		return ""
	}
	return name
}

func (b *Bot) stats(ctx context.Context, name, tag string) (string, error) {
	st, err := b.store.GetPlayerStats(ctx, name, tag)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Sprintf("No tracked matches for **%s#%s**.", name, tag), nil
	}
	if err != nil {
		return "", err
	}

	hours := float64(st.TotalDuration) / 3600
	deadMinutes := float64(st.TotalTimeDead) / 60
	return fmt.Sprintf(
		"**%s#%s**\nMatches: %d\nK/D/A: %d/%d/%d\nTime played: %.1fh\nTime spent dead: %.0fm",
		st.GameName, st.Tag, st.NumMatches, st.Kills, st.Deaths, st.Assists, hours, deadMinutes), nil
}

func (b *Bot) reply(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: text},
	})
	if err != nil {
		b.log.Error("interaction reply failed", logx.Err(err))
	}
}

func optionString(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, opt := range data.Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func optionInt(data discordgo.ApplicationCommandInteractionData, name string) int64 {
	for _, opt := range data.Options {
		if opt.Name == name {
			return opt.IntValue()
		}
	}
	return 0
}

func isNotFound(err error) bool {
	var apiErr *riot.APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
