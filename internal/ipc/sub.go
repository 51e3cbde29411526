package ipc

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// queueGroup makes concurrent subscribers load-balance instead of each
// receiving every message.
const queueGroup = "inthound-notify"

// Subscriber is the bot-side end of the channel.
type Subscriber struct {
	conn *nats.Conn
	sub  *nats.Subscription
}

func NewSubscriber(url, subject string) (*Subscriber, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("ipc: connect subscriber: %w", err)
	}
	sub, err := conn.QueueSubscribeSync(subject, queueGroup)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ipc: subscribe: %w", err)
	}
	return &Subscriber{conn: conn, sub: sub}, nil
}

// Recv blocks until the next query arrives or ctx is canceled.
func (s *Subscriber) Recv(ctx context.Context) (MatchQuery, error) {
	msg, err := s.sub.NextMsgWithContext(ctx)
	if err != nil {
		return MatchQuery{}, fmt.Errorf("ipc: recv: %w", err)
	}
	return UnmarshalMatchQuery(msg.Data)
}

func (s *Subscriber) Close() {
	_ = s.sub.Unsubscribe()
	s.conn.Close()
}
