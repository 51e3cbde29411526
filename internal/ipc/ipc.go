// Package ipc carries notification queries from the collector process
// to the bot process. Transport is core NATS in a push/pull shape: the
// collector publishes to a well-known subject, the bot consumes through
// a queue subscription, so multiple consumers load-balance rather than
// broadcast. There is no acknowledgment and no persistence; messages in
// flight across a restart are lost, and the consumer re-derives all
// state from storage by key, so a lost message only delays delivery
// until that match is queried directly.
package ipc

import (
	"encoding/binary"
	"fmt"
)

// DefaultURL is the well-known local endpoint shared by both processes.
const DefaultURL = "nats://127.0.0.1:4222"

// MatchQuerySubject is the subject carrying match queries.
const MatchQuerySubject = "inthound.match"

// matchQueryVersion is the codec version byte.
const matchQueryVersion = 1

// MatchQuery identifies the (player, match) pair the bot should
// evaluate. It deliberately carries no stat values: storage stays the
// single source of truth across the process boundary.
type MatchQuery struct {
	PUUID   string
	MatchID string
}

// Marshal encodes the query to the compact wire form: a version byte
// followed by two length-prefixed strings (uint16 big endian).
func (q MatchQuery) Marshal() ([]byte, error) {
	if len(q.PUUID) > 0xFFFF || len(q.MatchID) > 0xFFFF {
		return nil, fmt.Errorf("ipc: field too long (puuid=%d, match=%d)", len(q.PUUID), len(q.MatchID))
	}
	buf := make([]byte, 0, 1+2+len(q.PUUID)+2+len(q.MatchID))
	buf = append(buf, matchQueryVersion)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(q.PUUID)))
	buf = append(buf, q.PUUID...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(q.MatchID)))
	buf = append(buf, q.MatchID...)
	return buf, nil
}

// UnmarshalMatchQuery decodes the wire form produced by Marshal.
func UnmarshalMatchQuery(data []byte) (MatchQuery, error) {
	var q MatchQuery
	if len(data) < 1 {
		return q, fmt.Errorf("ipc: empty payload")
	}
	if data[0] != matchQueryVersion {
		return q, fmt.Errorf("ipc: unknown codec version %d", data[0])
	}
	rest := data[1:]

	puuid, rest, err := readString(rest)
	if err != nil {
		return q, fmt.Errorf("ipc: puuid: %w", err)
	}
	matchID, rest, err := readString(rest)
	if err != nil {
		return q, fmt.Errorf("ipc: match id: %w", err)
	}
	if len(rest) != 0 {
		return q, fmt.Errorf("ipc: %d trailing bytes", len(rest))
	}
	q.PUUID = puuid
	q.MatchID = matchID
	return q, nil
}

func readString(data []byte) (string, []byte, error) {
	if len(data) < 2 {
		return "", nil, fmt.Errorf("truncated length prefix")
	}
	n := int(binary.BigEndian.Uint16(data))
	data = data[2:]
	if len(data) < n {
		return "", nil, fmt.Errorf("truncated value (want %d bytes, have %d)", n, len(data))
	}
	return string(data[:n]), data[n:], nil
}
