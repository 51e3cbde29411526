package intake

import (
	"context"
	"testing"
	"time"

	"inthound/internal/riot"
	"inthound/pkg/logx"
)

func TestAccountHandlerUpsertsPlayer(t *testing.T) {
	store := newFakeStore()
	h := NewAccountHandler(store, logx.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan *riot.Account)
	done := make(chan struct{})
	go func() {
		h.Start(ctx, in)
		close(done)
	}()

	select {
	case in <- &riot.Account{PUUID: "p1", GameName: "Renamed", TagLine: "NA1"}:
	case <-time.After(time.Second):
		t.Fatal("handler never consumed the account")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not exit on cancel")
	}

	p, ok := store.players["p1"]
	if !ok {
		t.Fatal("player not upserted")
	}
	if p.GameName != "Renamed" || p.Tag != "NA1" {
		t.Fatalf("player = %+v", p)
	}
}
