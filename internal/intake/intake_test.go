package intake

import (
	"context"
	"errors"
	"fmt"

	"inthound/internal/ipc"
	"inthound/internal/storage"
)

// fakeStore implements the storage surface the intake handlers touch.
// Unused Store methods panic through the embedded nil interface.
type fakeStore struct {
	storage.Store

	players       map[string]storage.Player
	matches       map[string]storage.Match
	playerMatches map[string]storage.PlayerMatch

	matchLookupErr error
	insertMatchErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		players:       make(map[string]storage.Player),
		matches:       make(map[string]storage.Match),
		playerMatches: make(map[string]storage.PlayerMatch),
	}
}

func (s *fakeStore) UpsertPlayer(_ context.Context, p storage.Player) error {
	s.players[p.PUUID] = p
	return nil
}

func (s *fakeStore) GetPlayer(_ context.Context, puuid string) (*storage.Player, error) {
	p, ok := s.players[puuid]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", puuid, storage.ErrNotFound)
	}
	return &p, nil
}

func (s *fakeStore) GetMatchesByID(_ context.Context, matchIDs []string) ([]storage.Match, error) {
	if s.matchLookupErr != nil {
		return nil, s.matchLookupErr
	}
	var out []storage.Match
	for _, id := range matchIDs {
		if m, ok := s.matches[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeStore) InsertMatch(_ context.Context, m storage.Match) error {
	if s.insertMatchErr != nil {
		return s.insertMatchErr
	}
	if _, ok := s.matches[m.ID]; ok {
		return nil // idempotent, first insert wins
	}
	s.matches[m.ID] = m
	return nil
}

func (s *fakeStore) InsertPlayerMatch(_ context.Context, pm storage.PlayerMatch) error {
	key := pm.PUUID + "/" + pm.MatchID
	if _, ok := s.playerMatches[key]; ok {
		return nil
	}
	s.playerMatches[key] = pm
	return nil
}

type fakeSink struct {
	pushed []string
}

func (s *fakeSink) Push(matchIDs ...string) {
	s.pushed = append(s.pushed, matchIDs...)
}

type fakePublisher struct {
	published []ipc.MatchQuery
	err       error
}

func (p *fakePublisher) Publish(q ipc.MatchQuery) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, q)
	return nil
}

var errStoreDown = errors.New("store down")

func storedMatch(id string) storage.Match {
	return storage.Match{ID: id, WinningTeamID: 100}
}
