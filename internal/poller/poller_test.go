package poller

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"inthound/internal/riot"
	"inthound/internal/storage"
	"inthound/pkg/logx"
)

type fakeStore struct {
	storage.Store

	players       []storage.Player
	playersErr    error
	latestMatches map[string]storage.Match
}

func (s *fakeStore) GetPlayers(_ context.Context) ([]storage.Player, error) {
	if s.playersErr != nil {
		return nil, s.playersErr
	}
	return s.players, nil
}

func (s *fakeStore) GetLatestPlayerMatch(_ context.Context, puuid string) (*storage.Match, error) {
	m, ok := s.latestMatches[puuid]
	if !ok {
		return nil, fmt.Errorf("latest match for %s: %w", puuid, storage.ErrNotFound)
	}
	return &m, nil
}

type querySink struct {
	queries []riot.MatchIDsQuery
}

func (s *querySink) Push(queries ...riot.MatchIDsQuery) {
	s.queries = append(s.queries, queries...)
}

type accountSink struct {
	puuids []string
}

func (s *accountSink) Push(puuids ...string) {
	s.puuids = append(s.puuids, puuids...)
}

func TestQueryForFirstFetchIsCapped(t *testing.T) {
	store := &fakeStore{latestMatches: map[string]storage.Match{}}
	p := New(store, &querySink{}, nil, DefaultInterval, DefaultAccountRefreshInterval, logx.Nop())

	q, err := p.queryFor(context.Background(), storage.Player{PUUID: "p1"})
	if err != nil {
		t.Fatalf("queryFor: %v", err)
	}
	if q.StartTime != nil {
		t.Fatal("first fetch carried a lower bound")
	}
	if q.Count == nil || *q.Count != 1 {
		t.Fatalf("first fetch count = %v, want 1", q.Count)
	}
}

func TestQueryForResumesAfterLatestMatch(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{latestMatches: map[string]storage.Match{
		"p1": {ID: "NA1_1", StartTime: start, Duration: 1800},
	}}
	p := New(store, &querySink{}, nil, DefaultInterval, DefaultAccountRefreshInterval, logx.Nop())

	q, err := p.queryFor(context.Background(), storage.Player{PUUID: "p1"})
	if err != nil {
		t.Fatalf("queryFor: %v", err)
	}
	if q.Count != nil {
		t.Fatal("resumed fetch should not be capped")
	}
	want := start.Add(1800 * time.Second).Unix()
	if q.StartTime == nil || *q.StartTime != want {
		t.Fatalf("StartTime = %v, want %d", q.StartTime, want)
	}
}

func TestSweepPushesOneQueryPerPlayer(t *testing.T) {
	store := &fakeStore{
		players: []storage.Player{{PUUID: "p1"}, {PUUID: "p2"}},
		latestMatches: map[string]storage.Match{
			"p1": {ID: "NA1_1", StartTime: time.Now().UTC(), Duration: 1200},
		},
	}
	sink := &querySink{}
	p := New(store, sink, nil, DefaultInterval, DefaultAccountRefreshInterval, logx.Nop())

	p.sweep(context.Background())

	if len(sink.queries) != 2 {
		t.Fatalf("pushed %d queries, want 2", len(sink.queries))
	}
	if sink.queries[0].PUUID != "p1" || sink.queries[1].PUUID != "p2" {
		t.Fatalf("queries = %+v", sink.queries)
	}
	if sink.queries[0].StartTime == nil {
		t.Fatal("tracked player with history should resume from the last match")
	}
	if sink.queries[1].Count == nil {
		t.Fatal("new player should get a capped first fetch")
	}
}

func TestSweepSkipsOnListingError(t *testing.T) {
	store := &fakeStore{playersErr: errors.New("db closed")}
	sink := &querySink{}
	p := New(store, sink, nil, DefaultInterval, DefaultAccountRefreshInterval, logx.Nop())

	p.sweep(context.Background())

	if len(sink.queries) != 0 {
		t.Fatalf("pushed %d queries despite listing failure", len(sink.queries))
	}
}

func TestRefreshAccountsEnqueuesAllPlayers(t *testing.T) {
	store := &fakeStore{players: []storage.Player{{PUUID: "p1"}, {PUUID: "p2"}}}
	accounts := &accountSink{}
	p := New(store, &querySink{}, accounts, DefaultInterval, DefaultAccountRefreshInterval, logx.Nop())

	p.refreshAccounts(context.Background())

	if len(accounts.puuids) != 2 {
		t.Fatalf("enqueued %d accounts, want 2", len(accounts.puuids))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	store := &fakeStore{}
	p := New(store, &querySink{}, nil, time.Hour, time.Hour, logx.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
