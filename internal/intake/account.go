package intake

import (
	"context"

	"inthound/internal/riot"
	"inthound/internal/storage"
	"inthound/pkg/logx"
)

// AccountHandler persists account lookup results as tracked players.
type AccountHandler struct {
	store storage.Store
	log   logx.Logger
}

func NewAccountHandler(store storage.Store, log logx.Logger) *AccountHandler {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &AccountHandler{store: store, log: log}
}

// Start consumes account payloads until ctx is canceled.
func (h *AccountHandler) Start(ctx context.Context, in <-chan *riot.Account) {
	for {
		select {
		case <-ctx.Done():
			return
		case acct := <-in:
			err := h.store.UpsertPlayer(ctx, storage.Player{
				PUUID:    acct.PUUID,
				GameName: acct.GameName,
				Tag:      acct.TagLine,
			})
			if err != nil {
				h.log.Error("player upsert failed",
					logx.String("puuid", acct.PUUID), logx.Err(err))
				continue
			}
			h.log.Info("tracked player updated",
				logx.String("name", acct.GameName), logx.String("tag", acct.TagLine))
		}
	}
}
