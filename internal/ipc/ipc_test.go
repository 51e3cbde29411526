package ipc

import (
	"strings"
	"testing"
)

func TestMatchQueryRoundTrip(t *testing.T) {
	cases := []MatchQuery{
		{PUUID: "abc-123", MatchID: "NA1_4567"},
		{PUUID: "", MatchID: ""},
		{PUUID: strings.Repeat("p", 0xFFFF), MatchID: "NA1_1"},
	}
	for _, q := range cases {
		data, err := q.Marshal()
		if err != nil {
			t.Fatalf("Marshal(%+v): %v", q, err)
		}
		got, err := UnmarshalMatchQuery(data)
		if err != nil {
			t.Fatalf("Unmarshal(%+v): %v", q, err)
		}
		if got != q {
			t.Fatalf("round trip = %+v, want %+v", got, q)
		}
	}
}

func TestMarshalRejectsOversizedFields(t *testing.T) {
	q := MatchQuery{PUUID: strings.Repeat("p", 0x10000)}
	if _, err := q.Marshal(); err == nil {
		t.Fatal("Marshal accepted oversized field")
	}
}

func TestUnmarshalRejectsMalformed(t *testing.T) {
	valid, err := MatchQuery{PUUID: "p", MatchID: "m"}.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unknown version", append([]byte{99}, valid[1:]...)},
		{"truncated length prefix", valid[:2]},
		{"truncated value", valid[:len(valid)-1]},
		{"trailing bytes", append(append([]byte{}, valid...), 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := UnmarshalMatchQuery(tc.data); err == nil {
				t.Fatal("UnmarshalMatchQuery accepted malformed payload")
			}
		})
	}
}
