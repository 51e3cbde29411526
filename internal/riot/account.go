package riot

import (
	"context"
	"fmt"
	"net/url"
)

// Account is a Riot account from the account-v1 API.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// GetAccountByRiotID looks up an account by game name and tag line.
func (c *Client) GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*Account, error) {
	endpoint := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.baseURL, url.PathEscape(gameName), url.PathEscape(tagLine))

	var account Account
	if err := c.get(ctx, endpoint, &account); err != nil {
		return nil, fmt.Errorf("get account by riot id: %w", err)
	}
	return &account, nil
}

// GetAccountByPUUID looks up an account by its stable identifier. Used
// to refresh display names and tags for already-tracked players.
func (c *Client) GetAccountByPUUID(ctx context.Context, puuid string) (*Account, error) {
	endpoint := fmt.Sprintf("%s/riot/account/v1/accounts/by-puuid/%s",
		c.baseURL, url.PathEscape(puuid))

	var account Account
	if err := c.get(ctx, endpoint, &account); err != nil {
		return nil, fmt.Errorf("get account by puuid: %w", err)
	}
	return &account, nil
}
