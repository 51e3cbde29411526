package intake

import (
	"context"
	"errors"
	"time"

	"inthound/internal/ipc"
	"inthound/internal/riot"
	"inthound/internal/storage"
	"inthound/pkg/logx"
)

// QueryPublisher is the collector-side end of the notification channel.
type QueryPublisher interface {
	Publish(q ipc.MatchQuery) error
}

// MatchDataHandler persists full match payloads and fans out one
// notification query per tracked participant.
type MatchDataHandler struct {
	store storage.Store
	pub   QueryPublisher
	log   logx.Logger
}

func NewMatchDataHandler(store storage.Store, pub QueryPublisher, log logx.Logger) *MatchDataHandler {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &MatchDataHandler{store: store, pub: pub, log: log}
}

// Start consumes match payloads until ctx is canceled.
func (h *MatchDataHandler) Start(ctx context.Context, in <-chan *riot.Match) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-in:
			if err := h.handle(ctx, m); err != nil {
				h.log.Error("match rejected",
					logx.String("match", m.Metadata.MatchID), logx.Err(err))
			}
		}
	}
}

func (h *MatchDataHandler) handle(ctx context.Context, m *riot.Match) error {
	// Derive before persisting: a malformed payload is rejected whole,
	// never partially stored.
	winningTeam, err := m.WinningTeam()
	if err != nil {
		return err
	}
	surrender, err := m.Surrender()
	if err != nil {
		return err
	}

	record := storage.Match{
		ID:            m.Metadata.MatchID,
		StartTime:     time.UnixMilli(m.Info.GameStartTimestamp).UTC(),
		Duration:      m.Info.GameDuration,
		QueueID:       m.Info.QueueID,
		GameVersion:   m.Info.GameVersion,
		GameMode:      m.Info.GameMode,
		WinningTeamID: winningTeam,
		Surrender:     surrender,
	}
	if err := h.store.InsertMatch(ctx, record); err != nil {
		return err
	}

	for _, puuid := range m.Metadata.Participants {
		_, err := h.store.GetPlayer(ctx, puuid)
		if errors.Is(err, storage.ErrNotFound) {
			continue // not tracked: no stats row, no notification
		}
		if err != nil {
			h.log.Error("player lookup failed",
				logx.String("puuid", puuid), logx.Err(err))
			continue
		}

		stats := m.Participant(puuid)
		if stats == nil {
			h.log.Error("participant missing from stat lines",
				logx.String("puuid", puuid), logx.String("match", m.Metadata.MatchID))
			continue
		}

		pm := storage.PlayerMatch{
			PUUID:             puuid,
			MatchID:           m.Metadata.MatchID,
			Kills:             stats.Kills,
			Deaths:            stats.Deaths,
			Assists:           stats.Assists,
			ChampionID:        stats.ChampionID,
			LongestTimeLiving: stats.LongestTimeSpentLiving,
			TimeDead:          stats.TotalTimeSpentDead,
			TeamID:            stats.TeamID,
		}
		if stats.TeamPosition != "" {
			pos := stats.TeamPosition
			pm.Position = &pos
		}
		if err := h.store.InsertPlayerMatch(ctx, pm); err != nil {
			h.log.Error("player match insert failed",
				logx.String("puuid", puuid), logx.String("match", m.Metadata.MatchID), logx.Err(err))
			continue
		}

		// Fire-and-forget: a lost publish only loses this notification;
		// the persisted row stays queryable.
		if err := h.pub.Publish(ipc.MatchQuery{PUUID: puuid, MatchID: m.Metadata.MatchID}); err != nil {
			h.log.Error("notification publish failed",
				logx.String("puuid", puuid), logx.String("match", m.Metadata.MatchID), logx.Err(err))
		}
	}
	return nil
}
