package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

var ErrInvalidAPIKey = errors.New("invalid gateway api key")

// activityPageSize is large enough that a normal date range fits in one
// page; multi-page responses are rejected rather than paginated.
const activityPageSize = 20000

// Client talks to a LiteLLM gateway over HTTP. All calls share one circuit
// breaker so a flapping gateway fails fast instead of burning the full
// client timeout on every request.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

func New(baseURL, apiKey string) *Client {
	settings := gobreaker.Settings{
		Name:        "litellm-gateway",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// FetchTeams returns the gateway's team list.
func (c *Client) FetchTeams(ctx context.Context) ([]Team, error) {
	var teams []Team
	_, err := c.breaker.Execute(func() (interface{}, error) {
		_, err := c.getJSON(ctx, "/team/list", &teams)
		return nil, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch teams: %w", err)
	}
	return teams, nil
}

// FetchDailyActivity returns per-day spend data for the given teams and date
// range. The gateway expects the start date as YYYY.MM.DD and the end date
// in RFC 3339; callers format dates before reaching this layer.
func (c *Client) FetchDailyActivity(ctx context.Context, teamIDs []string, startDate, endDate string) (*ActivityResponse, error) {
	q := url.Values{}
	q.Set("team_ids", strings.Join(teamIDs, ","))
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)
	q.Set("page_size", fmt.Sprintf("%d", activityPageSize))

	var resp ActivityResponse
	_, err := c.breaker.Execute(func() (interface{}, error) {
		_, err := c.getJSON(ctx, "/team/daily/activity?"+q.Encode(), &resp)
		return nil, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch team daily activity: %w", err)
	}

	if resp.Metadata != nil && resp.Metadata.TotalPages > 1 {
		return nil, fmt.Errorf("fetch team daily activity: %d pages of results found, pagination not supported", resp.Metadata.TotalPages)
	}
	return &resp, nil
}

// FetchModelInfo returns the gateway's model deployments. Depending on the
// deployment the endpoint lives at /model/info or /v1/model/info.
func (c *Client) FetchModelInfo(ctx context.Context) (*ModelInfoResponse, error) {
	var resp ModelInfoResponse
	_, err := c.breaker.Execute(func() (interface{}, error) {
		status, err := c.getJSON(ctx, "/model/info", &resp)
		if status == http.StatusNotFound {
			_, err = c.getJSON(ctx, "/v1/model/info", &resp)
		}
		return nil, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch model info: %w", err)
	}
	return &resp, nil
}

// getJSON performs an authenticated GET and decodes the body into out. The
// HTTP status is returned even on error so callers can branch on it.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return resp.StatusCode, ErrInvalidAPIKey
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("gateway error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode gateway response: %w", err)
	}
	return resp.StatusCode, nil
}
