package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"inthound/internal/config"
	"inthound/internal/intake"
	"inthound/internal/ipc"
	"inthound/internal/poller"
	"inthound/internal/queue"
	"inthound/internal/riot"
	"inthound/internal/storage"
	"inthound/pkg/logx"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./collector.yaml", "path to config yaml")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfgPath); err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string) error {
	cfg, err := config.LoadCollector(cfgPath)
	if err != nil {
		return err
	}

	log, closeLog := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	defer closeLog()

	busyTimeout, err := config.ParseDurationOrDefault("database.busy_timeout", cfg.Database.BusyTimeout, 0)
	if err != nil {
		return err
	}
	store, err := storage.Open(storage.Config{Path: cfg.Database.Path, BusyTimeout: busyTimeout}, log)
	if err != nil {
		return err
	}
	defer store.Close()

	var riotOpts []riot.Option
	if cfg.Riot.BaseURL != "" {
		riotOpts = append(riotOpts, riot.WithBaseURL(cfg.Riot.BaseURL))
	}
	if cfg.Riot.RatePerSec > 0 {
		burst := cfg.Riot.Burst
		if burst <= 0 {
			burst = 1
		}
		riotOpts = append(riotOpts, riot.WithRateLimit(cfg.Riot.RatePerSec, burst))
	}
	client := riot.NewClient(cfg.Riot.APIKey, riotOpts...)

	ipcURL := cfg.IPC.URL
	if ipcURL == "" {
		ipcURL = ipc.DefaultURL
	}
	subject := cfg.IPC.Subject
	if subject == "" {
		subject = ipc.MatchQuerySubject
	}
	pub, err := ipc.NewPublisher(ipcURL, subject)
	if err != nil {
		return err
	}
	defer pub.Close()

	// Request workers, each wrapping one provider endpoint.
	accountWorker := queue.NewWorker("account", client.GetAccountByPUUID, log)
	matchIDWorker := queue.NewWorker("match-ids", client.GetMatchIDsOldestFirst, log)
	matchWorker := queue.NewWorker("match-data", client.GetMatch, log)

	accounts := make(chan *riot.Account)
	matchIDs := make(chan []string)
	matches := make(chan *riot.Match)

	accountHandler := intake.NewAccountHandler(store, log)
	matchIDHandler := intake.NewMatchIDHandler(store, matchWorker, cfg.CacheSize, log)
	matchDataHandler := intake.NewMatchDataHandler(store, pub, log)

	pollInterval, err := config.ParseDurationOrDefault("poll_interval", cfg.PollInterval, poller.DefaultInterval)
	if err != nil {
		return err
	}
	refreshInterval, err := config.ParseDurationOrDefault("account_refresh_interval",
		cfg.AccountRefreshInterval, poller.DefaultAccountRefreshInterval)
	if err != nil {
		return err
	}
	sweeper := poller.New(store, matchIDWorker, accountWorker, pollInterval, refreshInterval, log)

	log.Info("collector started",
		logx.String("db", cfg.Database.Path), logx.String("ipc", ipcURL))

	var wg sync.WaitGroup
	start := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}
	start(func() { accountWorker.Start(ctx, accounts) })
	start(func() { matchIDWorker.Start(ctx, matchIDs) })
	start(func() { matchWorker.Start(ctx, matches) })
	start(func() { accountHandler.Start(ctx, accounts) })
	start(func() { matchIDHandler.Start(ctx, matchIDs) })
	start(func() { matchDataHandler.Start(ctx, matches) })

	err = sweeper.Run(ctx)
	wg.Wait()
	log.Info("collector stopped")
	return err
}
