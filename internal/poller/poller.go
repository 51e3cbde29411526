// Package poller schedules the periodic sweep that re-lists every
// tracked player against the provider. It is the only scheduled
// trigger in the pipeline; every other stage reacts to its input.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"inthound/internal/riot"
	"inthound/internal/storage"
	"inthound/pkg/logx"
)

// DefaultInterval sits inside the 10-60s sweep window the provider's
// rate budget comfortably sustains for a small roster.
const DefaultInterval = 30 * time.Second

// DefaultAccountRefreshInterval paces the re-lookup of display names.
const DefaultAccountRefreshInterval = 24 * time.Hour

// QuerySink receives one match-ID listing request per tracked player,
// typically the match-ID request worker.
type QuerySink interface {
	Push(queries ...riot.MatchIDsQuery)
}

// AccountSink receives PUUIDs whose display name/tag should be
// re-looked-up, typically the account request worker.
type AccountSink interface {
	Push(puuids ...string)
}

type Poller struct {
	store           storage.Store
	out             QuerySink
	accounts        AccountSink
	interval        time.Duration
	refreshInterval time.Duration
	log             logx.Logger
}

func New(store storage.Store, out QuerySink, accounts AccountSink, interval, refreshInterval time.Duration, log logx.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if refreshInterval <= 0 {
		refreshInterval = DefaultAccountRefreshInterval
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Poller{
		store:           store,
		out:             out,
		accounts:        accounts,
		interval:        interval,
		refreshInterval: refreshInterval,
		log:             log,
	}
}

// Run installs the sweeps on a cron schedule and blocks until ctx is
// canceled.
func (p *Poller) Run(ctx context.Context) error {
	c := cron.New()
	spec := fmt.Sprintf("@every %s", p.interval)
	if _, err := c.AddFunc(spec, func() { p.sweep(ctx) }); err != nil {
		return fmt.Errorf("poller: schedule %q: %w", spec, err)
	}
	if p.accounts != nil {
		refreshSpec := fmt.Sprintf("@every %s", p.refreshInterval)
		if _, err := c.AddFunc(refreshSpec, func() { p.refreshAccounts(ctx) }); err != nil {
			return fmt.Errorf("poller: schedule %q: %w", refreshSpec, err)
		}
	}

	p.log.Info("poller started", logx.Duration("interval", p.interval))
	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}

// refreshAccounts re-enqueues every tracked player for account lookup
// so renamed players keep readable notifications.
func (p *Poller) refreshAccounts(ctx context.Context) {
	players, err := p.store.GetPlayers(ctx)
	if err != nil {
		p.log.Error("player listing failed; skipping account refresh", logx.Err(err))
		return
	}
	for _, player := range players {
		p.accounts.Push(player.PUUID)
	}
	p.log.Debug("account refresh enqueued", logx.Int("players", len(players)))
}

// sweep pushes a fresh match-ID request per tracked player. Players are
// the loop's driving set: starting from guilds or follows would send
// duplicate requests for players followed in several places.
func (p *Poller) sweep(ctx context.Context) {
	players, err := p.store.GetPlayers(ctx)
	if err != nil {
		p.log.Error("player listing failed; skipping sweep", logx.Err(err))
		return
	}

	for _, player := range players {
		query, err := p.queryFor(ctx, player)
		if err != nil {
			p.log.Error("sweep query failed",
				logx.String("puuid", player.PUUID), logx.Err(err))
			continue
		}
		p.out.Push(query)
	}
	p.log.Debug("sweep enqueued", logx.Int("players", len(players)))
}

func (p *Poller) queryFor(ctx context.Context, player storage.Player) (riot.MatchIDsQuery, error) {
	latest, err := p.store.GetLatestPlayerMatch(ctx, player.PUUID)
	if errors.Is(err, storage.ErrNotFound) {
		// First-ever fetch: no lower bound, capped to the single most
		// recent match so a new player's backlog is not ingested whole.
		one := 1
		return riot.MatchIDsQuery{PUUID: player.PUUID, Count: &one}, nil
	}
	if err != nil {
		return riot.MatchIDsQuery{}, err
	}

	// Query from the end of the last stored match.
	since := latest.StartTime.Add(time.Duration(latest.Duration) * time.Second).Unix()
	return riot.MatchIDsQuery{PUUID: player.PUUID, StartTime: &since}, nil
}
