package ipc

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher is the collector-side end of the channel.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to the endpoint. Connection failure here is a
// bootstrap error and fatal to the caller; publish failures later are not.
func NewPublisher(url, subject string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("ipc: connect publisher: %w", err)
	}
	return &Publisher{conn: conn, subject: subject}, nil
}

// Publish serializes the query and hands it to the outbound socket.
// Fire-and-forget: no acknowledgment is awaited.
func (p *Publisher) Publish(q MatchQuery) error {
	data, err := q.Marshal()
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("ipc: publish: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.conn.Close()
}
