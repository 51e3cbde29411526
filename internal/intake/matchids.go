// Package intake turns raw provider responses into durable records.
// Each handler consumes one channel and runs for process lifetime.
package intake

import (
	"context"

	"inthound/internal/storage"
	"inthound/pkg/logx"
)

// DefaultCacheSize bounds the match-ID recency cache.
const DefaultCacheSize = 100

// MatchSink receives match IDs that survived dedup, typically the
// match-detail request worker.
type MatchSink interface {
	Push(matchIDs ...string)
}

// MatchIDHandler filters freshly listed match IDs against storage and a
// bounded recency cache, forwarding only unseen IDs for detail fetch.
// It never writes to storage.
type MatchIDHandler struct {
	store storage.Store
	out   MatchSink
	cache *recencyCache
	log   logx.Logger
}

func NewMatchIDHandler(store storage.Store, out MatchSink, cacheSize int, log logx.Logger) *MatchIDHandler {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &MatchIDHandler{
		store: store,
		out:   out,
		cache: newRecencyCache(cacheSize),
		log:   log,
	}
}

// Start consumes batches of candidate match IDs until ctx is canceled.
func (h *MatchIDHandler) Start(ctx context.Context, in <-chan []string) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-in:
			h.handle(ctx, batch)
		}
	}
}

func (h *MatchIDHandler) handle(ctx context.Context, batch []string) {
	if len(batch) == 0 {
		return
	}

	known, err := h.store.GetMatchesByID(ctx, batch)
	if err != nil {
		// Non-fatal: the provider re-lists recent matches each sweep, so
		// this batch is re-discovered on the next cycle.
		h.log.Error("match lookup failed; dropping batch",
			logx.Int("batch", len(batch)), logx.Err(err))
		return
	}
	stored := make(map[string]struct{}, len(known))
	for _, m := range known {
		stored[m.ID] = struct{}{}
	}

	fresh := batch[:0]
	for _, id := range batch {
		if _, ok := stored[id]; ok {
			continue
		}
		if h.cache.Contains(id) {
			continue
		}
		fresh = append(fresh, id)
	}
	for _, id := range fresh {
		h.cache.Push(id)
	}

	h.log.Debug("match ids deduplicated",
		logx.Int("received", len(batch)), logx.Int("fresh", len(fresh)))
	if len(fresh) > 0 {
		h.out.Push(fresh...)
	}
}
