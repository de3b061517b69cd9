package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/workoutmap/internal/models"
	"github.com/claude/workoutmap/internal/store"
)

// HTTPClient implements DataSource by calling the WorkoutMap REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the workout log lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// statusError is a non-200 API response.
type statusError struct {
	path   string
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("httpclient: %s returned %d: %s", e.path, e.status, e.body)
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{path: path, status: resp.StatusCode, body: body}
	}

	return body, nil
}

func (c *HTTPClient) ListWorkouts(ctx context.Context, kind models.Kind) ([]models.Record, error) {
	params := url.Values{}
	if kind != "" {
		params.Set("kind", string(kind))
	}

	body, err := c.get(ctx, "/api/v1/workouts", params)
	if err != nil {
		return nil, err
	}

	var records []models.Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return records, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, id string) (*models.Record, error) {
	body, err := c.get(ctx, "/api/v1/workouts/"+url.PathEscape(id), nil)
	if se, ok := err.(*statusError); ok && se.status == http.StatusNotFound {
		return nil, &store.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}

	var rec models.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return &rec, nil
}
