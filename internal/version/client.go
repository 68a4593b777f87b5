package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrBadStatus is returned when the version endpoint answers with a non-200 status.
var ErrBadStatus = errors.New("unexpected status from version endpoint")

// Client fetches the minimum-version document.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Fetch GETs the endpoint and decodes {android, ios}.
func (c *Client) Fetch(ctx context.Context) (*Versions, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrBadStatus, resp.StatusCode, string(body))
	}

	var v Versions
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode versions: %w", err)
	}
	return &v, nil
}

// Minimum returns the minimum version for platform.
func (c *Client) Minimum(ctx context.Context, platform string) (string, error) {
	v, err := c.Fetch(ctx)
	if err != nil {
		return "", err
	}
	return v.For(platform), nil
}
