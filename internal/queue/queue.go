// Package queue implements the request workers that drain pending
// provider calls. One parameterized worker covers all three request
// kinds (account lookup, match-ID listing, match-detail fetch); the
// provider call is injected as a function value.
package queue

import (
	"context"
	"sync"

	"inthound/pkg/logx"
)

// Fetch issues one provider call for a request.
type Fetch[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Worker holds a FIFO of pending requests and continuously drains it
// against the provider.
//
// Push is safe to call concurrently with a running Start. The lock is
// held only around queue mutation; the provider call happens outside it
// so pushes are never blocked by an in-flight request. Failed requests
// are logged and dropped; the next scheduled sweep re-discovers them.
type Worker[Req, Resp any] struct {
	name  string
	fetch Fetch[Req, Resp]
	log   logx.Logger

	mu    sync.Mutex
	queue []Req
	wake  chan struct{}
}

func NewWorker[Req, Resp any](name string, fetch Fetch[Req, Resp], log logx.Logger) *Worker[Req, Resp] {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Worker[Req, Resp]{
		name:  name,
		fetch: fetch,
		log:   log.With(logx.String("worker", name)),
		wake:  make(chan struct{}, 1),
	}
}

// Push appends requests to the queue and wakes the drain loop.
func (w *Worker[Req, Resp]) Push(reqs ...Req) {
	if len(reqs) == 0 {
		return
	}
	w.mu.Lock()
	w.queue = append(w.queue, reqs...)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Len reports the number of pending requests.
func (w *Worker[Req, Resp]) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

func (w *Worker[Req, Resp]) pop() (Req, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		var zero Req
		return zero, false
	}
	req := w.queue[0]
	w.queue = w.queue[1:]
	return req, true
}

// Start drains the queue until ctx is canceled, forwarding each
// successful response to out. An empty queue idles until pushed to.
func (w *Worker[Req, Resp]) Start(ctx context.Context, out chan<- Resp) {
	w.log.Debug("request worker started")
	for {
		req, ok := w.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-w.wake:
			}
			continue
		}

		resp, err := w.fetch(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error("provider request failed; dropping", logx.Err(err))
			continue
		}

		select {
		case <-ctx.Done():
			return
		case out <- resp:
		}
	}
}
