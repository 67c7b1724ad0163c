package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oxgrid/tictactoe/internal/api/apierr"
	"github.com/oxgrid/tictactoe/internal/api/request"
	"github.com/oxgrid/tictactoe/internal/api/response"
	"github.com/oxgrid/tictactoe/internal/model"
)

// Client is an HTTP client for the API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError is a failed API response
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Is lets errors.Is match API failures against the model's sentinel errors
func (e *APIError) Is(target error) bool {
	switch target {
	case model.ErrPlayerNotFound:
		return e.Code == apierr.CodePlayerNotFound
	case model.ErrPlayerNameTaken:
		return e.Code == apierr.CodeNameTaken
	case model.ErrInvalidResult:
		return e.Code == apierr.CodeInvalidResult
	}
	return false
}

// Do performs an HTTP request
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Check for error responses
	if resp.StatusCode >= 400 {
		var errResp apierr.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return &APIError{Status: resp.StatusCode, Code: errResp.Code, Message: errResp.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, http.MethodPost, path, body, result)
}

// Health checks the server and its storage
func (c *Client) Health(ctx context.Context) (*response.HealthResponse, error) {
	var out response.HealthResponse
	if err := c.Get(ctx, "/api/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePlayer registers a player
func (c *Client) CreatePlayer(ctx context.Context, name string) (*response.Player, error) {
	var out response.PlayerResponse
	if err := c.Post(ctx, "/api/players", request.CreatePlayerRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out.Player, nil
}

// GetPlayer fetches a player by id
func (c *Client) GetPlayer(ctx context.Context, id string) (*response.Player, error) {
	var out response.PlayerResponse
	if err := c.Get(ctx, "/api/players/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out.Player, nil
}

// GetPlayerByName fetches a player by exact name
func (c *Client) GetPlayerByName(ctx context.Context, name string) (*response.Player, error) {
	var out response.PlayerResponse
	if err := c.Get(ctx, "/api/players/name/"+url.PathEscape(name), &out); err != nil {
		return nil, err
	}
	return &out.Player, nil
}

// ListPlayers fetches every player, newest first
func (c *Client) ListPlayers(ctx context.Context) ([]response.Player, error) {
	var out response.PlayersResponse
	if err := c.Get(ctx, "/api/players", &out); err != nil {
		return nil, err
	}
	return out.Players, nil
}

// RecordResult reports one finished game for a player
func (c *Client) RecordResult(ctx context.Context, id string, result model.GameResult) (*response.StatsResponse, error) {
	var out response.StatsResponse
	path := "/api/players/" + url.PathEscape(id) + "/stats"
	if err := c.Post(ctx, path, request.UpdateStatsRequest{Result: string(result)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Leaderboard fetches the ranked players; limit 0 uses the server default
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]response.LeaderboardEntry, error) {
	path := "/api/leaderboard"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out response.LeaderboardResponse
	if err := c.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Leaderboard, nil
}

// ReportResult records a finished game; it lets a game session report through the API
func (c *Client) ReportResult(ctx context.Context, id model.PlayerID, result model.GameResult) (*model.Player, error) {
	out, err := c.RecordResult(ctx, string(id), result)
	if err != nil {
		return nil, err
	}
	return out.Player.ToModel(), nil
}
