// Package client provides an HTTP client for the circlemap server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raphaelgruber/circlemap/internal/api"
	"github.com/raphaelgruber/circlemap/internal/metrics"
	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/service"
)

// ErrNotFound matches APIErrors with status 404.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match 404 replies.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client talks to the circlemap HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new client.
// If baseURL is empty, uses CIRCLEMAP_SERVER_URL env var or defaults to localhost:8484.
// Timeout can be configured via CIRCLEMAP_CLIENT_TIMEOUT env var (default 2m).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("CIRCLEMAP_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8484"
	}

	timeout := 2 * time.Minute
	if t := os.Getenv("CIRCLEMAP_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends body as JSON (nil for none) and decodes the reply into result
// (nil to discard).
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var r io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		r = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, contentType, r, result)
}

func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

func decodeError(status int, body []byte) error {
	var er api.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return &APIError{StatusCode: status, Message: er.Error}
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}

// =============================================================================
// TYPES
// =============================================================================

// Job is the wire form of a background enrichment job.
type Job struct {
	ID          string                `json:"id"`
	Type        string                `json:"type"`
	Status      service.JobStatus     `json:"status"`
	Name        string                `json:"name,omitempty"`
	ProfileIDs  []string              `json:"profileIds"`
	Progress    int                   `json:"progress"`
	Total       int                   `json:"total"`
	Result      *service.EnrichResult `json:"result,omitempty"`
	Error       string                `json:"error,omitempty"`
	StartedAt   time.Time             `json:"startedAt"`
	CompletedAt *time.Time            `json:"completedAt,omitempty"`
}

// Done reports whether the job reached a final state.
func (j Job) Done() bool {
	return j.Status.Done()
}

// Analysis is the wire form of an analyzed transcript.
type Analysis struct {
	Stats       models.TranscriptStats    `json:"stats"`
	Profiles    []models.Profile          `json:"profiles"`
	Edges       []models.RelationshipEdge `json:"edges"`
	Roles       models.NetworkRoles       `json:"roles"`
	Suggestions []models.Suggestion       `json:"suggestions"`
}

// =============================================================================
// ANALYSIS AND MATCHING
// =============================================================================

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// Stats returns the server's metrics snapshot.
func (c *Client) Stats(ctx context.Context) (*metrics.Snapshot, error) {
	var snap metrics.Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Analyze uploads a chat export. The server keeps the result as its roster.
func (c *Client) Analyze(ctx context.Context, text string) (*Analysis, error) {
	var a Analysis
	if err := c.do(ctx, http.MethodPost, "/api/analyze", api.AnalyzeRequest{Text: text}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Profiles lists the profiles of the loaded roster.
func (c *Client) Profiles(ctx context.Context) ([]models.Profile, error) {
	var out []models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profiles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Normalize returns the deep profile for a roster member or ad-hoc input.
func (c *Client) Normalize(ctx context.Context, req api.NormalizeRequest) (*models.DeepProfile, error) {
	var d models.DeepProfile
	if err := c.do(ctx, http.MethodPost, "/api/normalize", req, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Serendipity scores a pair, or the whole roster when A and B are empty.
func (c *Client) Serendipity(ctx context.Context, req api.SerendipityRequest) ([]models.MatchResult, error) {
	var out []models.MatchResult
	if err := c.do(ctx, http.MethodPost, "/api/serendipity", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Opportunities ranks the roster for a user context.
func (c *Client) Opportunities(ctx context.Context, req api.OpportunitiesRequest) ([]models.Opportunity, error) {
	var out []models.Opportunity
	if err := c.do(ctx, http.MethodPost, "/api/opportunities", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CrossConnections suggests introductions between known contacts.
func (c *Client) CrossConnections(ctx context.Context) ([]models.CrossConnection, error) {
	var out []models.CrossConnection
	if err := c.do(ctx, http.MethodGet, "/api/cross-connections", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// =============================================================================
// ENRICHMENT JOBS
// =============================================================================

// Enrich starts an enrichment job. Empty profileIDs enriches everyone.
func (c *Client) Enrich(ctx context.Context, name string, profileIDs []string) (*Job, error) {
	var job Job
	err := c.do(ctx, http.MethodPost, "/api/enrich", api.EnrichRequest{Name: name, ProfileIDs: profileIDs}, &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs returns all jobs, newest first.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	var out []Job
	if err := c.do(ctx, http.MethodGet, "/api/jobs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetJob returns a single job.
func (c *Client) GetJob(ctx context.Context, id string) (*Job, error) {
	var job Job
	if err := c.do(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// WaitJob polls until the job is done, calling onUpdate (may be nil) after
// every poll.
func (c *Client) WaitJob(ctx context.Context, id string, interval time.Duration, onUpdate func(Job)) (*Job, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job, err := c.GetJob(ctx, id)
		if err != nil {
			return nil, err
		}
		if onUpdate != nil {
			onUpdate(*job)
		}
		if job.Done() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// StreamJob follows a job over the websocket stream and calls onUpdate for
// every snapshot. It returns the last snapshot once the server closes the
// stream. Return an error from onUpdate to stop early.
func (c *Client) StreamJob(ctx context.Context, id string, onUpdate func(Job) error) (*Job, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/jobs/" + url.PathEscape(id) + "/stream"

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			return nil, decodeError(resp.StatusCode, body)
		}
		return nil, fmt.Errorf("websocket connect: %w", err)
	}

	var mu sync.Mutex
	closed := false
	closeConn := func() {
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			conn.Close()
		}
	}
	defer closeConn()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			closeConn()
		case <-done:
		}
	}()

	var last *Job
	for {
		var job Job
		if err := conn.ReadJSON(&job); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) && last != nil {
				return last, nil
			}
			return nil, fmt.Errorf("read message: %w", err)
		}
		last = &job
		if onUpdate != nil {
			if err := onUpdate(job); err != nil {
				return last, err
			}
		}
	}
}

// =============================================================================
// OVERLAYS AND USER CONTEXT
// =============================================================================

// ListOverlays returns the ids that have an overlay.
func (c *Client) ListOverlays(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/api/overlays", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOverlay returns the overlay stored for id.
func (c *Client) GetOverlay(ctx context.Context, id string) (*models.Overlay, error) {
	var res api.OverlayResponse
	if err := c.do(ctx, http.MethodGet, "/api/overlays/"+url.PathEscape(id), nil, &res); err != nil {
		return nil, err
	}
	return &res.Overlay, nil
}

// PutOverlay stores a JSON or YAML overlay document for id. An empty source
// lets the server default to "manual".
func (c *Client) PutOverlay(ctx context.Context, id, source string, doc []byte) (*models.Overlay, error) {
	path := "/api/overlays/" + url.PathEscape(id)
	if source != "" {
		path += "?source=" + url.QueryEscape(source)
	}

	contentType := "application/yaml"
	if t := bytes.TrimSpace(doc); len(t) > 0 && t[0] == '{' {
		contentType = "application/json"
	}

	var res api.OverlayResponse
	if err := c.send(ctx, http.MethodPut, path, contentType, bytes.NewReader(doc), &res); err != nil {
		return nil, err
	}
	return &res.Overlay, nil
}

// DeleteOverlay removes the overlay for id.
func (c *Client) DeleteOverlay(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/overlays/"+url.PathEscape(id), nil, nil)
}

// GetContext returns the user context stored under name.
func (c *Client) GetContext(ctx context.Context, name string) (*models.UserContext, error) {
	var uc models.UserContext
	if err := c.do(ctx, http.MethodGet, "/api/context/"+url.PathEscape(name), nil, &uc); err != nil {
		return nil, err
	}
	return &uc, nil
}

// PutContext stores uc under name.
func (c *Client) PutContext(ctx context.Context, name string, uc models.UserContext) error {
	return c.do(ctx, http.MethodPut, "/api/context/"+url.PathEscape(name), uc, nil)
}
