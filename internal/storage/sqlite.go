package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"inthound/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

const timeFormat = time.RFC3339Nano

// Config configures the SQLite store.
type Config struct {
	Path        string
	BusyTimeout time.Duration // 0 means default
}

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

// Open initializes the SQLite store and applies migrations.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	_, _ = db.Exec("PRAGMA foreign_keys = ON")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ---- players ----

func (s *sqliteStore) UpsertPlayer(ctx context.Context, p Player) error {
	if p.CreateTime.IsZero() {
		p.CreateTime = time.Now().UTC()
	}
	// Re-lookups only refresh the display name and tag; the creation
	// timestamp from the first insert is kept.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO player(puuid, game_name, tag, create_time) VALUES(?,?,?,?)
		 ON CONFLICT(puuid) DO UPDATE SET game_name=excluded.game_name, tag=excluded.tag`,
		p.PUUID, p.GameName, p.Tag, p.CreateTime.UTC().Format(timeFormat),
	)
	return err
}

func (s *sqliteStore) GetPlayer(ctx context.Context, puuid string) (*Player, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT puuid, game_name, tag, create_time FROM player WHERE puuid = ?`, puuid)
	return scanPlayer(row)
}

func (s *sqliteStore) GetPlayerByName(ctx context.Context, name, tag string) (*Player, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT puuid, game_name, tag, create_time FROM player WHERE game_name = ? AND tag = ?`,
		name, tag)
	return scanPlayer(row)
}

func (s *sqliteStore) GetPlayers(ctx context.Context) ([]Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT puuid, game_name, tag, create_time FROM player`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		var createTime string
		if err := rows.Scan(&p.PUUID, &p.GameName, &p.Tag, &createTime); err != nil {
			return nil, err
		}
		if p.CreateTime, err = parseTime(createTime); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// ---- matches ----

func (s *sqliteStore) InsertMatch(ctx context.Context, m Match) error {
	// A previous cycle may have raced or duplicated this ID; conflict on
	// the primary key is success, not an error.
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO "match"
		 (id, start_time, duration, queue_id, game_version, game_mode, winning_team_id, surrender)
		 VALUES(?,?,?,?,?,?,?,?)`,
		m.ID, m.StartTime.UTC().Format(timeFormat), m.Duration, m.QueueID,
		m.GameVersion, m.GameMode, m.WinningTeamID, boolToInt(m.Surrender),
	)
	return err
}

func (s *sqliteStore) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, start_time, duration, queue_id, game_version, game_mode, winning_team_id, surrender
		 FROM "match" WHERE id = ?`, matchID)
	return scanMatch(row)
}

func (s *sqliteStore) GetMatchesByID(ctx context.Context, matchIDs []string) ([]Match, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}
	args := make([]any, len(matchIDs))
	for i, id := range matchIDs {
		args[i] = id
	}
	query := fmt.Sprintf(
		`SELECT id, start_time, duration, queue_id, game_version, game_mode, winning_team_id, surrender
		 FROM "match" WHERE id IN (%s)`, placeholders(len(matchIDs)))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMatches(rows)
}

func (s *sqliteStore) GetLatestPlayerMatch(ctx context.Context, puuid string) (*Match, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT m.id, m.start_time, m.duration, m.queue_id, m.game_version, m.game_mode, m.winning_team_id, m.surrender
		 FROM "match" m INNER JOIN player_match pm ON m.id = pm.match_id
		 WHERE pm.puuid = ? ORDER BY m.start_time DESC LIMIT 1`, puuid)
	return scanMatch(row)
}

// ---- player matches ----

func (s *sqliteStore) InsertPlayerMatch(ctx context.Context, pm PlayerMatch) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO player_match
		 (puuid, match_id, kills, deaths, assists, champion_id, position, longest_time_living, time_dead, team_id)
		 VALUES(?,?,?,?,?,?,?,?,?,?)`,
		pm.PUUID, pm.MatchID, pm.Kills, pm.Deaths, pm.Assists, pm.ChampionID,
		nullStrPtr(pm.Position), pm.LongestTimeLiving, pm.TimeDead, pm.TeamID,
	)
	return err
}

func (s *sqliteStore) GetPlayerMatch(ctx context.Context, puuid, matchID string) (*PlayerMatch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT puuid, match_id, kills, deaths, assists, champion_id, position, longest_time_living, time_dead, team_id
		 FROM player_match WHERE puuid = ? AND match_id = ?`, puuid, matchID)

	pm, err := scanPlayerMatch(row.Scan)
	if err != nil {
		return nil, err
	}
	return pm, nil
}

func (s *sqliteStore) GetPlayerStats(ctx context.Context, name, tag string) (*PlayerAggregateStats, error) {
	var st PlayerAggregateStats
	err := s.db.QueryRowContext(ctx,
		`SELECT p.game_name, p.tag, COUNT(*),
		        SUM(pm.kills), SUM(pm.deaths), SUM(pm.assists),
		        SUM(m.duration), SUM(pm.time_dead)
		 FROM player_match pm
		 INNER JOIN player p ON pm.puuid = p.puuid
		 INNER JOIN "match" m ON pm.match_id = m.id
		 WHERE p.game_name = ? AND p.tag = ?
		 HAVING COUNT(*) > 0`, name, tag,
	).Scan(&st.GameName, &st.Tag, &st.NumMatches, &st.Kills, &st.Deaths,
		&st.Assists, &st.TotalDuration, &st.TotalTimeDead)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player stats %s#%s: %w", name, tag, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ---- guilds ----

func (s *sqliteStore) InsertGuild(ctx context.Context, guildID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO guild(id) VALUES(?)`, guildID)
	return err
}

func (s *sqliteStore) DeleteGuild(ctx context.Context, guildID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM guild WHERE id = ?`, guildID)
	return err
}

func (s *sqliteStore) SetGuildChannel(ctx context.Context, guildID int64, channelID *int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE guild SET channel_id = ? WHERE id = ?`, nullInt64Ptr(channelID), guildID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("guild %d: %w", guildID, ErrNotFound)
	}
	return nil
}

func (s *sqliteStore) ClearChannel(ctx context.Context, channelID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE guild SET channel_id = NULL WHERE channel_id = ?`, channelID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---- follows ----

func (s *sqliteStore) InsertFollow(ctx context.Context, guildID int64, puuid string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO guild_follow(guild_id, puuid) VALUES(?,?)`, guildID, puuid)
	return err
}

func (s *sqliteStore) DeleteFollow(ctx context.Context, guildID int64, puuid string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM guild_follow WHERE guild_id = ? AND puuid = ?`, guildID, puuid)
	return err
}

func (s *sqliteStore) GetGuildFollows(ctx context.Context, guildID int64) ([]Follow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT guild_id, puuid FROM guild_follow WHERE guild_id = ?`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var follows []Follow
	for rows.Next() {
		var f Follow
		if err := rows.Scan(&f.GuildID, &f.PUUID); err != nil {
			return nil, err
		}
		follows = append(follows, f)
	}
	return follows, rows.Err()
}

func (s *sqliteStore) GetFollowingGuilds(ctx context.Context, puuid string) ([]Guild, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.channel_id FROM guild_follow gf
		 INNER JOIN guild g ON g.id = gf.guild_id
		 WHERE gf.puuid = ?`, puuid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guilds []Guild
	for rows.Next() {
		var g Guild
		var channelID sql.NullInt64
		if err := rows.Scan(&g.ID, &channelID); err != nil {
			return nil, err
		}
		if channelID.Valid {
			v := channelID.Int64
			g.ChannelID = &v
		}
		guilds = append(guilds, g)
	}
	return guilds, rows.Err()
}

func (s *sqliteStore) Leaderboard(ctx context.Context, guildID int64, queueIDs []int64, size int) ([]PlayerMatch, error) {
	if len(queueIDs) == 0 || size <= 0 {
		return nil, nil
	}
	args := []any{guildID}
	for _, q := range queueIDs {
		args = append(args, q)
	}
	args = append(args, size)

	query := fmt.Sprintf(
		`SELECT pm.puuid, pm.match_id, pm.kills, pm.deaths, pm.assists, pm.champion_id,
		        pm.position, pm.longest_time_living, pm.time_dead, pm.team_id
		 FROM player_match pm
		 INNER JOIN guild_follow gf ON gf.puuid = pm.puuid
		 INNER JOIN "match" m ON pm.match_id = m.id
		 WHERE gf.guild_id = ? AND m.queue_id IN (%s)
		 ORDER BY pm.deaths DESC LIMIT ?`, placeholders(len(queueIDs)))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []PlayerMatch
	for rows.Next() {
		pm, err := scanPlayerMatch(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *pm)
	}
	return entries, rows.Err()
}

// ---- scan helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*Player, error) {
	var p Player
	var createTime string
	err := row.Scan(&p.PUUID, &p.GameName, &p.Tag, &createTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if p.CreateTime, err = parseTime(createTime); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanMatch(row rowScanner) (*Match, error) {
	var m Match
	var startTime string
	var surrender int64
	err := row.Scan(&m.ID, &startTime, &m.Duration, &m.QueueID,
		&m.GameVersion, &m.GameMode, &m.WinningTeamID, &surrender)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if m.StartTime, err = parseTime(startTime); err != nil {
		return nil, err
	}
	m.Surrender = surrender != 0
	return &m, nil
}

func scanMatches(rows *sql.Rows) ([]Match, error) {
	var matches []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func scanPlayerMatch(scan func(dest ...any) error) (*PlayerMatch, error) {
	var pm PlayerMatch
	var position sql.NullString
	err := scan(&pm.PUUID, &pm.MatchID, &pm.Kills, &pm.Deaths, &pm.Assists,
		&pm.ChampionID, &position, &pm.LongestTimeLiving, &pm.TimeDead, &pm.TeamID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player match: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if position.Valid {
		v := position.String
		pm.Position = &v
	}
	return &pm, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func nullStrPtr(v *string) any {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return *v
}

func nullInt64Ptr(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
