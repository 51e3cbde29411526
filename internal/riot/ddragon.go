package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultDataDragonBaseURL is the static-data CDN host. It is unkeyed
// and not rate limited like the live API.
const DefaultDataDragonBaseURL = "https://ddragon.leagueoflegends.com"

// DataDragon resolves champion IDs to display names via the static-data
// CDN. Version listings and per-version champion maps are fetched once
// and cached for the process lifetime; the data for a released patch
// never changes.
type DataDragon struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.Mutex
	versions  []string
	champions map[string]map[int64]string
}

type DataDragonOption func(*DataDragon)

// WithDataDragonBaseURL overrides the CDN host (tests).
func WithDataDragonBaseURL(url string) DataDragonOption {
	return func(d *DataDragon) { d.baseURL = url }
}

func NewDataDragon(opts ...DataDragonOption) *DataDragon {
	d := &DataDragon{
		baseURL: DefaultDataDragonBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		champions: make(map[string]map[int64]string),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ChampionName resolves a champion ID to its display name for the patch
// a match was played on. gameVersion is the match payload's full
// version string (e.g. "14.3.558.1234").
func (d *DataDragon) ChampionName(ctx context.Context, gameVersion string, championID int64) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	version, err := d.resolveVersion(ctx, gameVersion)
	if err != nil {
		return "", err
	}
	champions, err := d.championMap(ctx, version)
	if err != nil {
		return "", err
	}
	name, ok := champions[championID]
	if !ok {
		return "", fmt.Errorf("ddragon: no champion with id %d in version %s", championID, version)
	}
	return name, nil
}

// resolveVersion maps a match's full game version to the CDN's version
// string by matching on the major.minor prefix. Callers hold d.mu.
func (d *DataDragon) resolveVersion(ctx context.Context, gameVersion string) (string, error) {
	parts := strings.SplitN(gameVersion, ".", 3)
	if len(parts) < 2 {
		return "", fmt.Errorf("ddragon: malformed game version %q", gameVersion)
	}
	prefix := parts[0] + "." + parts[1] + "."

	if d.versions == nil {
		var versions []string
		if err := d.getJSON(ctx, d.baseURL+"/api/versions.json", &versions); err != nil {
			return "", err
		}
		d.versions = versions
	}
	for _, v := range d.versions {
		if strings.HasPrefix(v, prefix) {
			return v, nil
		}
	}
	return "", fmt.Errorf("ddragon: no version matching %q", gameVersion)
}

// championMap loads the ID-to-name map for one CDN version. Callers
// hold d.mu.
func (d *DataDragon) championMap(ctx context.Context, version string) (map[int64]string, error) {
	if m, ok := d.champions[version]; ok {
		return m, nil
	}

	var payload struct {
		Data map[string]struct {
			Key  string `json:"key"`
			Name string `json:"name"`
		} `json:"data"`
	}
	url := fmt.Sprintf("%s/cdn/%s/data/en_US/champion.json", d.baseURL, version)
	if err := d.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	m := make(map[int64]string, len(payload.Data))
	for _, champion := range payload.Data {
		id, err := strconv.ParseInt(champion.Key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ddragon: champion key %q: %w", champion.Key, err)
		}
		m[id] = champion.Name
	}
	d.champions[version] = m
	return m, nil
}

func (d *DataDragon) getJSON(ctx context.Context, url string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("ddragon: create request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ddragon: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ddragon: %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("ddragon: decode response: %w", err)
	}
	return nil
}
