package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gridworks-mx/availability-sync/internal/models"
)

// Client fetches the upstream capacity feeds.
type Client struct {
	sivURL     string
	cenaceURL  string
	httpClient *http.Client
}

func NewClient(sivURL, cenaceURL string, timeout time.Duration) *Client {
	return &Client{
		sivURL:    sivURL,
		cenaceURL: cenaceURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchSIV retrieves the SIV availability series for one day and market.
func (c *Client) FetchSIV(ctx context.Context, day, market string) (*models.SIVResponse, error) {
	var payload models.SIVResponse
	if err := c.getJSON(ctx, c.sivURL, day, market, &payload); err != nil {
		return nil, fmt.Errorf("siv fetch: %w", err)
	}
	return &payload, nil
}

// FetchCENACE retrieves the CENACE program records for one day and market.
func (c *Client) FetchCENACE(ctx context.Context, day, market string) (*models.CENACEResponse, error) {
	var payload models.CENACEResponse
	if err := c.getJSON(ctx, c.cenaceURL, day, market, &payload); err != nil {
		return nil, fmt.Errorf("cenace fetch: %w", err)
	}
	return &payload, nil
}

func (c *Client) getJSON(ctx context.Context, base, day, market string, out any) error {
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("invalid feed url: %w", err)
	}
	q := u.Query()
	q.Set("fecha", day)
	q.Set("mercado", market)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
