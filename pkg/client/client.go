package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/naveenspark/kinmatch/pkg/domain"
)

// TokenSource yields the bearer token for the next request. An empty token
// sends the request unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Client is the kinmatch API client.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// New creates a new API client. tokens may be nil for unauthenticated use.
func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- Profiles ---

// GetMyProfile returns the caller's profile. A 404 means the caller has none yet.
func (c *Client) GetMyProfile(ctx context.Context) (*domain.Profile, error) {
	var p domain.Profile
	if err := c.get(ctx, "/profiles/me", &p); err != nil {
		return nil, fmt.Errorf("client.GetMyProfile: %w", err)
	}
	return &p, nil
}

// GetProfile fetches a single profile by ID.
func (c *Client) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	var p domain.Profile
	if err := c.get(ctx, "/profiles/"+url.PathEscape(id), &p); err != nil {
		return nil, fmt.Errorf("client.GetProfile: %w", err)
	}
	return &p, nil
}

// ListProfiles returns the browse listing narrowed by filters.
func (c *Client) ListProfiles(ctx context.Context, filters domain.ProfileFilters) ([]domain.Profile, error) {
	path := "/profiles"
	if q := filters.Query(); len(q) > 0 {
		path += "?" + q.Encode()
	}
	var profiles []domain.Profile
	if err := c.get(ctx, path, &profiles); err != nil {
		return nil, fmt.Errorf("client.ListProfiles: %w", err)
	}
	return profiles, nil
}

// CreateProfile creates the caller's profile.
func (c *Client) CreateProfile(ctx context.Context, fields domain.ProfileFields) (*domain.Profile, error) {
	var created domain.Profile
	if err := c.post(ctx, "/profiles", fields, &created); err != nil {
		return nil, fmt.Errorf("client.CreateProfile: %w", err)
	}
	return &created, nil
}

// UpdateProfile replaces the writable fields of profile id.
func (c *Client) UpdateProfile(ctx context.Context, id string, fields domain.ProfileFields) (*domain.Profile, error) {
	var updated domain.Profile
	if err := c.Request(ctx, http.MethodPut, "/profiles/"+url.PathEscape(id), fields, &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateProfile: %w", err)
	}
	return &updated, nil
}

// --- Match requests ---

type messageBody struct {
	Message string `json:"message"`
}

// SendRequest sends a match request with an opening message to profile id.
func (c *Client) SendRequest(ctx context.Context, id, message string) error {
	if err := c.post(ctx, "/matches/request/"+url.PathEscape(id), messageBody{Message: message}, nil); err != nil {
		return fmt.Errorf("client.SendRequest: %w", err)
	}
	return nil
}

// CancelRequest withdraws the caller's request to profile id.
func (c *Client) CancelRequest(ctx context.Context, id string) error {
	if err := c.Request(ctx, http.MethodDelete, "/matches/request/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.CancelRequest: %w", err)
	}
	return nil
}

// AcceptRequest accepts the pending request from profile id, replying with message.
func (c *Client) AcceptRequest(ctx context.Context, id, message string) error {
	if err := c.post(ctx, "/matches/accept/"+url.PathEscape(id), messageBody{Message: message}, nil); err != nil {
		return fmt.Errorf("client.AcceptRequest: %w", err)
	}
	return nil
}

// RejectRequest declines the pending request from profile id.
func (c *Client) RejectRequest(ctx context.Context, id string) error {
	if err := c.post(ctx, "/matches/reject/"+url.PathEscape(id), struct{}{}, nil); err != nil {
		return fmt.Errorf("client.RejectRequest: %w", err)
	}
	return nil
}

// ListMatches returns the caller's accepted matches.
func (c *Client) ListMatches(ctx context.Context) ([]domain.Match, error) {
	var resp struct {
		Matches []domain.Match `json:"matches"`
	}
	if err := c.get(ctx, "/matches", &resp); err != nil {
		return nil, fmt.Errorf("client.ListMatches: %w", err)
	}
	return resp.Matches, nil
}

// ListPending returns incoming requests awaiting the caller.
func (c *Client) ListPending(ctx context.Context) ([]domain.MatchRequest, error) {
	var resp struct {
		PendingRequests []domain.MatchRequest `json:"pendingRequests"`
	}
	if err := c.get(ctx, "/matches/pending", &resp); err != nil {
		return nil, fmt.Errorf("client.ListPending: %w", err)
	}
	return resp.PendingRequests, nil
}

// ListSent returns the caller's outgoing requests.
func (c *Client) ListSent(ctx context.Context) ([]domain.MatchRequest, error) {
	var resp struct {
		SentRequests []domain.MatchRequest `json:"sentRequests"`
	}
	if err := c.get(ctx, "/matches/sent", &resp); err != nil {
		return nil, fmt.Errorf("client.ListSent: %w", err)
	}
	return resp.SentRequests, nil
}

// MatchStatus probes the status between the caller and profile id.
func (c *Client) MatchStatus(ctx context.Context, id string) (domain.MatchStatus, error) {
	var resp struct {
		Status domain.MatchStatus `json:"status"`
	}
	if err := c.get(ctx, "/matches/status/"+url.PathEscape(id), &resp); err != nil {
		return "", fmt.Errorf("client.MatchStatus: %w", err)
	}
	return resp.Status, nil
}

// MatchStats returns the dashboard counters.
func (c *Client) MatchStats(ctx context.Context) (*domain.MatchStats, error) {
	var stats domain.MatchStats
	if err := c.get(ctx, "/matches/stats", &stats); err != nil {
		return nil, fmt.Errorf("client.MatchStats: %w", err)
	}
	return &stats, nil
}

// --- Conversations ---

// GetMatch loads one match with its peer profile and message thread.
func (c *Client) GetMatch(ctx context.Context, matchID string) (*domain.Match, error) {
	var m domain.Match
	if err := c.get(ctx, "/matches/"+url.PathEscape(matchID), &m); err != nil {
		return nil, fmt.Errorf("client.GetMatch: %w", err)
	}
	return &m, nil
}

// SendMessage posts a message to a match's thread and returns the stored message.
func (c *Client) SendMessage(ctx context.Context, matchID, content string) (*domain.Message, error) {
	var msg domain.Message
	body := struct {
		Content string `json:"content"`
	}{Content: content}
	if err := c.post(ctx, "/matches/message/"+url.PathEscape(matchID), body, &msg); err != nil {
		return nil, fmt.Errorf("client.SendMessage: %w", err)
	}
	return &msg, nil
}

// Request performs one JSON exchange against the API. body and out may be nil.
// Network failures come back as *TransportError and non-2xx responses as
// *HTTPError; nothing is retried.
func (c *Client) Request(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("api request failed")
		return &TransportError{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Str("request_id", requestID).
		Msg("api request")

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Error != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
			}
			if apiErr.Message != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.Request(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.Request(ctx, http.MethodPost, path, body, out)
}
