package clerk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production Clerk Backend API root.
const DefaultBaseURL = "https://api.clerk.com/v1"

// Client fetches authoritative user records from the Clerk Backend API.
type Client struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewClient returns a Client authenticated with the given secret key.
// An empty baseURL selects the production API.
func NewClient(secretKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

// GetUser returns the provider's current view of the user as a decoded JSON
// object. The raw shape is preserved so callers can store it verbatim.
func (c *Client) GetUser(ctx context.Context, userID string) (map[string]any, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	endpoint := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch user: unexpected status %d", resp.StatusCode)
	}

	var record map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return record, nil
}
