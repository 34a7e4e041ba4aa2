package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the platform API used when no override is configured.
const DefaultBaseURL = "https://api.clusterkit.dev"

// Client talks to the platform API: authentication state, cluster listing,
// and project lookups.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a platform API client. An empty baseURL falls back to
// DefaultBaseURL.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetToken replaces the token used for authenticated calls (after login).
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// CheckOnline reports whether the given endpoint answers its status route.
// Failures degrade to false; they never propagate.
func (c *Client) CheckOnline(ctx context.Context, endpoint string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(endpoint, "/")+"/status", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// RequiresAuth reports whether the endpoint rejects unauthenticated status
// requests. Unreachable endpoints report false; the caller decides how to
// proceed.
func (c *Client) RequiresAuth(ctx context.Context, endpoint string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(endpoint, "/")+"/status", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden
}

// IsAuthenticated reports whether the configured token is valid. Failures
// degrade to false.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	if c.token == "" {
		return false
	}
	return c.get(ctx, "/auth/me", nil) == nil
}

// Login validates the given token against the API and keeps it for
// subsequent calls.
func (c *Client) Login(ctx context.Context, token string) error {
	previous := c.token
	c.token = token
	if err := c.get(ctx, "/auth/me", nil); err != nil {
		c.token = previous
		return fmt.Errorf("login failed: %w", err)
	}
	return nil
}

// ListClusters fetches the clusters visible to the current user (shared
// clusters are always included).
func (c *Client) ListClusters(ctx context.Context) ([]Cluster, error) {
	var out struct {
		Clusters []Cluster `json:"clusters"`
	}
	if err := c.get(ctx, "/clusters", &out); err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", err)
	}
	return out.Clusters, nil
}

// ProjectExists reports whether a project with the exact (service, stage,
// workspace) triple already exists.
func (c *Client) ProjectExists(ctx context.Context, service, stage, workspace string) (bool, error) {
	q := url.Values{}
	q.Set("service", service)
	q.Set("stage", stage)
	if workspace != "" {
		q.Set("workspace", workspace)
	}
	var out struct {
		Exists bool `json:"exists"`
	}
	if err := c.get(ctx, "/projects/exists?"+q.Encode(), &out); err != nil {
		return false, fmt.Errorf("failed to check project name: %w", err)
	}
	return out.Exists, nil
}

// EndpointFor computes the API endpoint a deployed (service, stage) pair is
// served from on the given cluster.
func (c *Client) EndpointFor(cl Cluster, service, stage, workspace string) string {
	base := strings.TrimSuffix(cl.BaseURL, "/")
	if cl.Shared && workspace != "" {
		return fmt.Sprintf("%s/%s/%s/%s", base, workspace, service, stage)
	}
	return fmt.Sprintf("%s/%s/%s", base, service, stage)
}
