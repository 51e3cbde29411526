package riot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestDataDragon(t *testing.T) (*DataDragon, *int) {
	t.Helper()
	requests := new(int)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests++
		switch r.URL.Path {
		case "/api/versions.json":
			_, _ = w.Write([]byte(`["14.3.1", "14.2.1", "14.1.1"]`))
		case "/cdn/14.3.1/data/en_US/champion.json":
			_, _ = w.Write([]byte(`{"data": {
				"Aatrox": {"key": "266", "name": "Aatrox"},
				"Soraka": {"key": "16", "name": "Soraka"}
			}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return NewDataDragon(WithDataDragonBaseURL(srv.URL)), requests
}

func TestChampionName(t *testing.T) {
	d, _ := newTestDataDragon(t)

	name, err := d.ChampionName(context.Background(), "14.3.558.1234", 16)
	if err != nil {
		t.Fatalf("ChampionName: %v", err)
	}
	if name != "Soraka" {
		t.Fatalf("name = %q, want Soraka", name)
	}
}

func TestChampionNameCachesLookups(t *testing.T) {
	d, requests := newTestDataDragon(t)
	ctx := context.Background()

	if _, err := d.ChampionName(ctx, "14.3.558.1234", 266); err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	after := *requests
	if after != 2 {
		t.Fatalf("first lookup made %d requests, want 2 (versions + champions)", after)
	}

	if _, err := d.ChampionName(ctx, "14.3.558.1234", 16); err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if *requests != after {
		t.Fatalf("cached lookup hit the CDN (%d requests)", *requests)
	}
}

func TestChampionNameUnknownID(t *testing.T) {
	d, _ := newTestDataDragon(t)

	if _, err := d.ChampionName(context.Background(), "14.3.558.1234", 9999); err == nil {
		t.Fatal("ChampionName accepted unknown champion ID")
	}
}

func TestChampionNameNoMatchingVersion(t *testing.T) {
	d, _ := newTestDataDragon(t)

	if _, err := d.ChampionName(context.Background(), "13.9.100.1", 266); err == nil {
		t.Fatal("ChampionName accepted version with no CDN match")
	}
}

func TestChampionNameMalformedVersion(t *testing.T) {
	d, _ := newTestDataDragon(t)

	if _, err := d.ChampionName(context.Background(), "garbage", 266); err == nil {
		t.Fatal("ChampionName accepted malformed game version")
	}
}
