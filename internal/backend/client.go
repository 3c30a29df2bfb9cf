// Package backend wraps the similarity-search HTTP API. It owns timeout
// policy and error normalization; every call is a single attempt with no
// retry, matching the manual re-trigger model of the UI.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// MinAbstractChars is the minimum abstract length the backend accepts. The
// client enforces it before issuing any network call.
const MinAbstractChars = 50

// MaxPaperIndex bounds the 1-based paper index accepted by /api/summary.
const MaxPaperIndex = 5

const (
	defaultBaseURL        = "http://localhost:8000"
	defaultSearchTimeout  = 90 * time.Second
	defaultSummaryTimeout = 90 * time.Second
	defaultProbeTimeout   = 5 * time.Second
)

// Config describes how to build a backend client.
type Config struct {
	BaseURL        string
	SearchTimeout  time.Duration
	SummaryTimeout time.Duration
	HTTPClient     *http.Client
}

// Client talks to the similarity-search backend.
type Client struct {
	baseURL        string
	searchTimeout  time.Duration
	summaryTimeout time.Duration
	http           *http.Client
}

// New builds a Client, filling unset fields with defaults. The HTTP client
// carries no timeout of its own; ceilings come from per-call contexts so the
// search and summary limits can differ.
func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	searchTimeout := cfg.SearchTimeout
	if searchTimeout <= 0 {
		searchTimeout = defaultSearchTimeout
	}
	summaryTimeout := cfg.SummaryTimeout
	if summaryTimeout <= 0 {
		summaryTimeout = defaultSummaryTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:        base,
		searchTimeout:  searchTimeout,
		summaryTimeout: summaryTimeout,
		http:           httpClient,
	}
}

// BaseURL reports the backend endpoint the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// SearchTimeout reports the configured search ceiling.
func (c *Client) SearchTimeout() time.Duration { return c.searchTimeout }

type searchRequest struct {
	Mode     string `json:"mode"`
	Abstract string `json:"abstract"`
}

type summaryRequest struct {
	Mode       string `json:"mode"`
	PaperIndex int    `json:"paper_index"`
	SessionID  string `json:"session_id"`
}

type summaryResponse struct {
	Paper   PaperMatch   `json:"paper"`
	Summary PaperSummary `json:"summary"`
}

// Search submits an abstract for similarity search. Input constraints are
// checked before any network traffic: mode must be arxiv or local and the
// abstract must carry at least MinAbstractChars characters.
func (c *Client) Search(ctx context.Context, mode Mode, abstract string) (*SearchResult, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrValidation, string(mode))
	}
	if utf8.RuneCountInString(strings.TrimSpace(abstract)) < MinAbstractChars {
		return nil, fmt.Errorf("%w: abstract needs at least %d characters", ErrValidation, MinAbstractChars)
	}

	ctx, cancel := context.WithTimeout(ctx, c.searchTimeout)
	defer cancel()

	var result SearchResult
	err := c.postJSON(ctx, "/api/search", searchRequest{Mode: string(mode), Abstract: abstract}, &result)
	if err != nil {
		return nil, err
	}
	if len(result.Papers) > MaxPaperIndex {
		result.Papers = result.Papers[:MaxPaperIndex]
	}
	return &result, nil
}

// Summarize requests the long-form analysis of one paper from a prior search.
// paperIndex is 1-based, matching the rank field of PaperMatch.
func (c *Client) Summarize(ctx context.Context, mode Mode, sessionID string, paperIndex int) (*PaperSummary, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrValidation, string(mode))
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: missing session id; run a search first", ErrValidation)
	}
	if paperIndex < 1 || paperIndex > MaxPaperIndex {
		return nil, fmt.Errorf("%w: paper index %d out of range 1..%d", ErrValidation, paperIndex, MaxPaperIndex)
	}

	ctx, cancel := context.WithTimeout(ctx, c.summaryTimeout)
	defer cancel()

	var decoded summaryResponse
	err := c.postJSON(ctx, "/api/summary", summaryRequest{
		Mode:       string(mode),
		PaperIndex: paperIndex,
		SessionID:  sessionID,
	}, &decoded)
	if err != nil {
		return nil, err
	}
	return &decoded.Summary, nil
}

// Health probes /api/health with a short ceiling. Used at startup only.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
	defer cancel()

	var health Health
	if err := c.getJSON(ctx, "/api/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// FetchConfig retrieves mode availability and corpus readiness. The UI uses
// it to label modes and warn when the local database holds no papers.
func (c *Client) FetchConfig(ctx context.Context) (*BackendConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
	defer cancel()

	var cfg BackendConfig
	if err := c.getJSON(ctx, "/api/config", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeServerError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// classifyTransport folds the many shapes of net/http failure into the two
// classes the UI distinguishes: timeout versus unreachable.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

// decodeServerError extracts the backend's {"detail": ...} explanation when
// one is present. The body read is capped; error payloads are small.
func decodeServerError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	serverErr := &ServerError{StatusCode: resp.StatusCode, Status: resp.Status}
	var parsed struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Detail != "" {
		serverErr.Detail = parsed.Detail
	}
	return serverErr
}
