package riot

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Match is a full match payload from the match-v5 API.
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameStartTimestamp int64         `json:"gameStartTimestamp"` // unix ms
	GameDuration       int64         `json:"gameDuration"`       // seconds
	GameVersion        string        `json:"gameVersion"`
	GameMode           string        `json:"gameMode"`
	QueueID            int64         `json:"queueId"`
	Participants       []Participant `json:"participants"`
}

type Participant struct {
	PUUID                  string `json:"puuid"`
	RiotIDGameName         string `json:"riotIdGameName"`
	Kills                  int64  `json:"kills"`
	Deaths                 int64  `json:"deaths"`
	Assists                int64  `json:"assists"`
	ChampionID             int64  `json:"championId"`
	TeamPosition           string `json:"teamPosition"`
	TeamID                 int64  `json:"teamId"`
	Win                    bool   `json:"win"`
	LongestTimeSpentLiving int64  `json:"longestTimeSpentLiving"`
	TotalTimeSpentDead     int64  `json:"totalTimeSpentDead"`
	GameEndedInSurrender   bool   `json:"gameEndedInSurrender"`
}

// MatchIDsQuery selects which match IDs to list for a player.
// A nil StartTime means "first-ever fetch" and is always capped to the
// single most recent match, so the backlog of a newly tracked player is
// not ingested wholesale.
type MatchIDsQuery struct {
	PUUID     string
	StartTime *int64 // unix seconds, inclusive lower bound
	Count     *int   // nil means provider maximum
}

// GetMatchIDs lists match IDs for a player, newest first.
func (c *Client) GetMatchIDs(ctx context.Context, q MatchIDsQuery) ([]string, error) {
	count := MaxMatchIDs
	if q.Count != nil {
		count = *q.Count
	}
	if count > MaxMatchIDs {
		count = MaxMatchIDs
	}
	if q.StartTime == nil && count > 1 {
		count = 1
	}

	params := url.Values{}
	params.Set("count", strconv.Itoa(count))
	if q.StartTime != nil {
		params.Set("startTime", strconv.FormatInt(*q.StartTime, 10))
	}
	endpoint := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?%s",
		c.baseURL, url.PathEscape(q.PUUID), params.Encode())

	var matchIDs []string
	if err := c.get(ctx, endpoint, &matchIDs); err != nil {
		return nil, fmt.Errorf("get match ids: %w", err)
	}
	return matchIDs, nil
}

// GetMatchIDsOldestFirst lists match IDs ordered oldest first, so
// downstream insertion follows the order the matches were played.
func (c *Client) GetMatchIDsOldestFirst(ctx context.Context, q MatchIDsQuery) ([]string, error) {
	ids, err := c.GetMatchIDs(ctx, q)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids, nil
}

// GetMatch fetches full match detail.
func (c *Client) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	endpoint := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.baseURL, url.PathEscape(matchID))

	var match Match
	if err := c.get(ctx, endpoint, &match); err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	return &match, nil
}

// Participant returns the stat line for a PUUID, or nil if absent.
func (m *Match) Participant(puuid string) *Participant {
	for i := range m.Info.Participants {
		if m.Info.Participants[i].PUUID == puuid {
			return &m.Info.Participants[i]
		}
	}
	return nil
}

// WinningTeam derives the winning side from the participants' win flags.
// A payload with no winner is malformed and must be rejected whole.
func (m *Match) WinningTeam() (int64, error) {
	for i := range m.Info.Participants {
		if m.Info.Participants[i].Win {
			return m.Info.Participants[i].TeamID, nil
		}
	}
	return 0, &MissingDataError{Field: "winner"}
}

// Surrender reports whether the match ended in a surrender.
func (m *Match) Surrender() (bool, error) {
	if len(m.Info.Participants) == 0 {
		return false, &MissingDataError{Field: "participants"}
	}
	return m.Info.Participants[0].GameEndedInSurrender, nil
}
