// Package notify consumes notification queries and delivers rendered
// messages to every subscribed destination.
package notify

import (
	"context"
	"fmt"

	"inthound/internal/evaluator"
	"inthound/internal/ipc"
	"inthound/internal/storage"
	"inthound/pkg/logx"
)

// Receiver is the bot-side end of the notification channel.
type Receiver interface {
	Recv(ctx context.Context) (ipc.MatchQuery, error)
}

// Sender delivers one rendered message to a chat channel.
// Fire-and-forget: failures are logged here, never retried.
type Sender interface {
	Send(ctx context.Context, channelID int64, text string) error
}

// Dispatcher is the notification loop: receive a query, re-hydrate the
// full records from storage, evaluate, and fan out to subscribers.
type Dispatcher struct {
	store    storage.Store
	receiver Receiver
	eval     *evaluator.Evaluator
	messages *MessageBuilder
	sender   Sender
	log      logx.Logger
}

func NewDispatcher(store storage.Store, receiver Receiver, eval *evaluator.Evaluator, messages *MessageBuilder, sender Sender, log logx.Logger) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Dispatcher{
		store:    store,
		receiver: receiver,
		eval:     eval,
		messages: messages,
		sender:   sender,
		log:      log,
	}
}

// Start runs until ctx is canceled. Per-query failures are logged and
// never terminate the loop.
func (d *Dispatcher) Start(ctx context.Context) {
	d.log.Info("notification dispatch started")
	for {
		if err := d.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			d.log.Error("notification dropped", logx.Err(err))
		}
	}
}

func (d *Dispatcher) runOnce(ctx context.Context) error {
	query, err := d.receiver.Recv(ctx)
	if err != nil {
		return err
	}
	d.log.Debug("received match query",
		logx.String("puuid", query.PUUID), logx.String("match", query.MatchID))

	// The query carries no payload, so a missing row cannot be retried
	// or reconstructed; drop it.
	pm, err := d.store.GetPlayerMatch(ctx, query.PUUID, query.MatchID)
	if err != nil {
		return fmt.Errorf("player match (%s, %s): %w", query.PUUID, query.MatchID, err)
	}
	match, err := d.store.GetMatch(ctx, query.MatchID)
	if err != nil {
		return fmt.Errorf("match %s: %w", query.MatchID, err)
	}

	level := d.eval.Evaluate(pm, match)
	if level == evaluator.LevelNone {
		return nil
	}
	d.log.Debug("match evaluated as noteworthy",
		logx.String("puuid", pm.PUUID), logx.String("match", pm.MatchID),
		logx.String("level", level.String()))

	player, err := d.store.GetPlayer(ctx, pm.PUUID)
	if err != nil {
		return fmt.Errorf("player %s: %w", pm.PUUID, err)
	}

	guilds, err := d.store.GetFollowingGuilds(ctx, pm.PUUID)
	if err != nil {
		return fmt.Errorf("followers of %s: %w", pm.PUUID, err)
	}

	text := d.messages.Build(pm, player, level)
	for _, guild := range guilds {
		if guild.ChannelID == nil {
			// Operator has not run the here command yet.
			d.log.Debug("guild has no notification channel", logx.Int64("guild", guild.ID))
			continue
		}
		if err := d.sender.Send(ctx, *guild.ChannelID, text); err != nil {
			d.log.Error("message delivery failed",
				logx.Int64("guild", guild.ID), logx.Int64("channel", *guild.ChannelID), logx.Err(err))
		}
	}
	return nil
}
