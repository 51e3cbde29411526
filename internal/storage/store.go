// Package storage persists tracked players, matches, per-player match
// stats and guild subscriptions. Both processes share the same database
// file; the store serializes conflicting writes itself.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups whose subject does not exist.
var ErrNotFound = errors.New("not found")

// Player is a tracked player. Created on first successful account
// lookup; only the display name and tag change on re-lookup.
type Player struct {
	PUUID      string
	GameName   string
	Tag        string
	CreateTime time.Time
}

// Match is one persisted match. Immutable once inserted.
type Match struct {
	ID            string
	StartTime     time.Time
	Duration      int64 // seconds
	QueueID       int64
	GameVersion   string
	GameMode      string
	WinningTeamID int64
	Surrender     bool
}

// PlayerMatch is one tracked player's stat line in one match.
type PlayerMatch struct {
	PUUID             string
	MatchID           string
	Kills             int64
	Deaths            int64
	Assists           int64
	ChampionID        int64
	Position          *string
	LongestTimeLiving int64
	TimeDead          int64
	TeamID            int64
}

// Guild is a chat destination. ChannelID stays nil until an operator
// runs the here command.
type Guild struct {
	ID        int64
	ChannelID *int64
}

// Follow subscribes a guild to a player's notifications.
type Follow struct {
	GuildID int64
	PUUID   string
}

// PlayerAggregateStats is the career summary behind the stats command.
type PlayerAggregateStats struct {
	GameName      string
	Tag           string
	NumMatches    int64
	Kills         int64
	Deaths        int64
	Assists       int64
	TotalDuration int64
	TotalTimeDead int64
}

// Store is the persistence API shared by the collector and the bot.
//
// Lookups return ErrNotFound (wrapped) when the subject is absent.
// Match and player-match inserts are idempotent: re-inserting an
// existing key is success, not an error.
type Store interface {
	UpsertPlayer(ctx context.Context, p Player) error
	GetPlayer(ctx context.Context, puuid string) (*Player, error)
	GetPlayerByName(ctx context.Context, name, tag string) (*Player, error)
	GetPlayers(ctx context.Context) ([]Player, error)

	InsertMatch(ctx context.Context, m Match) error
	GetMatch(ctx context.Context, matchID string) (*Match, error)
	GetMatchesByID(ctx context.Context, matchIDs []string) ([]Match, error)
	GetLatestPlayerMatch(ctx context.Context, puuid string) (*Match, error)

	InsertPlayerMatch(ctx context.Context, pm PlayerMatch) error
	GetPlayerMatch(ctx context.Context, puuid, matchID string) (*PlayerMatch, error)
	GetPlayerStats(ctx context.Context, name, tag string) (*PlayerAggregateStats, error)

	InsertGuild(ctx context.Context, guildID int64) error
	DeleteGuild(ctx context.Context, guildID int64) error
	SetGuildChannel(ctx context.Context, guildID int64, channelID *int64) error
	ClearChannel(ctx context.Context, channelID int64) (int64, error)

	InsertFollow(ctx context.Context, guildID int64, puuid string) error
	DeleteFollow(ctx context.Context, guildID int64, puuid string) error
	GetGuildFollows(ctx context.Context, guildID int64) ([]Follow, error)
	GetFollowingGuilds(ctx context.Context, puuid string) ([]Guild, error)

	// Leaderboard returns up to size stat lines for players followed by
	// the guild, restricted to the allowed queue IDs, ordered by deaths
	// descending. Fewer rows than size means the bound was not filled.
	Leaderboard(ctx context.Context, guildID int64, queueIDs []int64, size int) ([]PlayerMatch, error)

	Close() error
}
