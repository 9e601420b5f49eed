// Package address is a client for the Kirimin geographic-hierarchy API:
// province -> regency -> district -> village, each level keyed by parent id.
package address

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Region is one entry at any level of the address hierarchy.
type Region struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Client fetches the cascading address lists.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds an address client with a bounded per-call timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Provinces lists all provinces.
func (c *Client) Provinces(ctx context.Context) ([]Region, error) {
	return c.fetch(ctx, c.baseURL+"/province")
}

// Regencies lists the regencies/cities within a province.
func (c *Client) Regencies(ctx context.Context, provinceID int) ([]Region, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/city/%d", c.baseURL, provinceID))
}

// Districts lists the districts within a regency.
func (c *Client) Districts(ctx context.Context, regencyID int) ([]Region, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/sub_district/%d", c.baseURL, regencyID))
}

// Villages lists the villages within a district.
func (c *Client) Villages(ctx context.Context, districtID int) ([]Region, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/village/%d", c.baseURL, districtID))
}

// apiItem is the upstream wire format; the API names the display field "value".
type apiItem struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
}

func (c *Client) fetch(ctx context.Context, url string) ([]Region, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("address lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("address lookup returned %d", resp.StatusCode)
	}

	var payload struct {
		Data []apiItem `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode address response: %w", err)
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("address response missing data array")
	}

	regions := make([]Region, len(payload.Data))
	for i, item := range payload.Data {
		regions[i] = Region{ID: item.ID, Name: item.Value}
	}
	return regions, nil
}
