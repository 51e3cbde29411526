package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"inthound/internal/config"
	"inthound/internal/discord"
	"inthound/internal/evaluator"
	"inthound/internal/ipc"
	"inthound/internal/notify"
	"inthound/internal/riot"
	"inthound/internal/storage"
	"inthound/pkg/logx"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./bot.yaml", "path to config yaml")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfgPath); err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string) error {
	cfg, err := config.LoadBot(cfgPath)
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

	evalCfg, err := cfg.Evaluator.Build()
	if err != nil {
		return err
	}
	eval, err := evaluator.New(evalCfg)
	if err != nil {
		return err
	}

	templates := notify.DefaultTemplates()
	if cfg.TemplatesPath != "" {
		templates, err = notify.LoadTemplates(cfg.TemplatesPath)
		if err != nil {
			return err
		}
	}
	messages, err := notify.NewMessageBuilder(templates)
	if err != nil {
		return err
	}

	ipcURL := cfg.IPC.URL
	if ipcURL == "" {
		ipcURL = ipc.DefaultURL
	}
	subject := cfg.IPC.Subject
	if subject == "" {
		subject = ipc.MatchQuerySubject
	}
	sub, err := ipc.NewSubscriber(ipcURL, subject)
	if err != nil {
		return err
	}
	defer sub.Close()

	bot, err := discord.New(cfg.Discord.Token, store, client, riot.NewDataDragon(),
		cfg.Leaderboard.QueueIDs, cfg.Leaderboard.Size, log)
	if err != nil {
		return err
	}
	if err := bot.Start(); err != nil {
		return err
	}
	defer bot.Close()

	dispatcher := notify.NewDispatcher(store, sub, eval, messages, bot, log)

	log.Info("bot started",
		logx.String("db", cfg.Database.Path), logx.String("ipc", ipcURL))
	dispatcher.Start(ctx)
	log.Info("bot stopped")
	return nil
}
