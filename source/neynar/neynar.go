package neynar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"farcaster-analyzer/config"
	"farcaster-analyzer/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	EndpointTrending   = "v2/farcaster/feed/trending"
	EndpointUserBulk   = "v2/farcaster/user/bulk"
	EndpointCastSearch = "v2/farcaster/cast/search"
	EndpointCast       = "v2/farcaster/cast"
)

// maxErrorBody caps how much of a failed response body is kept on APIError.
const maxErrorBody = 500

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("neynar returned status %d: %s", e.StatusCode, e.Body)
}

// Recorder receives one observation per upstream request.
type Recorder interface {
	ObserveRequest(endpoint, status string, elapsed time.Duration)
}

// Client talks to the Neynar v2 REST API.
type Client struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	executor failsafe.Executor[*http.Response]
	logger   *utils.Logger
	recorder Recorder

	requests atomic.Int64
	failures atomic.Int64
}

type Option func(*Client)

// WithHTTPClient swaps the underlying transport (tests use httptest clients).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithoutRetries disables the retry executor.
func WithoutRetries() Option {
	return func(c *Client) { c.executor = nil }
}

// New creates a ready-to-use Neynar client.
func New(cfg *config.Config, logger *utils.Logger, opts ...Option) *Client {
	retry := &utils.RetryConfig{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Logger:     logger,
	}

	c := &Client{
		baseURL:  cfg.NeynarBaseURL,
		apiKey:   cfg.NeynarAPIKey,
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		executor: retry.HTTPExecutor("neynar"),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET against endpoint and returns the decoded JSON body.
// A JSON null body decodes to an empty object so callers can always navigate it.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (any, error) {
	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	c.logger.Debug("[neynar] GET %s", target)

	body, err := c.do(ctx, endpoint, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	})
	if err != nil {
		return nil, err
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		c.failures.Add(1)
		return nil, fmt.Errorf("neynar: decode %s: %w", endpoint, err)
	}
	if result == nil {
		result = map[string]any{}
	}
	return result, nil
}

// Trending fetches the trending feed for the given window ("1h" … "7d").
func (c *Client) Trending(ctx context.Context, limit int, window string) (any, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if window != "" {
		params.Set("time_window", window)
	}
	return c.Get(ctx, EndpointTrending, params)
}

// SearchCasts runs a full-text cast search.
func (c *Client) SearchCasts(ctx context.Context, query string, limit int) (any, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	return c.Get(ctx, EndpointCastSearch, params)
}

// BulkUsers looks users up by fid.
func (c *Client) BulkUsers(ctx context.Context, fids []int64) (any, error) {
	ids := make([]string, 0, len(fids))
	for _, fid := range fids {
		ids = append(ids, strconv.FormatInt(fid, 10))
	}
	params := url.Values{}
	params.Set("fids", strings.Join(ids, ","))
	return c.Get(ctx, EndpointUserBulk, params)
}

type publishRequest struct {
	SignerUUID string `json:"signer_uuid"`
	Text       string `json:"text"`
	Idem       string `json:"idem"`
}

type publishResponse struct {
	Success bool `json:"success"`
	Cast    struct {
		Hash string `json:"hash"`
	} `json:"cast"`
}

// Publish posts text as a new cast and returns its hash. The idempotency key
// keeps retried POSTs from producing duplicate casts.
func (c *Client) Publish(ctx context.Context, signerUUID, text string) (string, error) {
	payload, err := json.Marshal(publishRequest{
		SignerUUID: signerUUID,
		Text:       text,
		Idem:       uuid.NewString()[:16],
	})
	if err != nil {
		return "", fmt.Errorf("neynar: encode cast: %w", err)
	}

	target := c.baseURL + "/" + EndpointCast
	body, err := c.do(ctx, EndpointCast, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", err
	}

	var resp publishResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("neynar: decode cast response: %w", err)
	}
	if resp.Cast.Hash == "" {
		return "", fmt.Errorf("neynar: cast response carried no hash")
	}
	return resp.Cast.Hash, nil
}

// Stats returns how many requests were issued and how many failed.
func (c *Client) Stats() (requests, failures int64) {
	return c.requests.Load(), c.failures.Load()
}

func (c *Client) do(ctx context.Context, endpoint string, build func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	c.requests.Add(1)
	start := time.Now()

	resp, err := c.send(ctx, build)
	if err != nil {
		c.failures.Add(1)
		c.observe(endpoint, "error", start)
		return nil, fmt.Errorf("neynar: request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.failures.Add(1)
		c.observe(endpoint, "error", start)
		return nil, fmt.Errorf("neynar: read %s: %w", endpoint, err)
	}

	c.observe(endpoint, strconv.Itoa(resp.StatusCode), start)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.failures.Add(1)
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	attempt := func() (*http.Response, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("Accept", "application/json")
		return c.client.Do(req)
	}

	if c.executor == nil {
		return attempt()
	}

	resp, err := c.executor.WithContext(ctx).Get(func() (*http.Response, error) {
		resp, err := attempt()
		if utils.ShouldRetryHTTP(resp, err) && resp != nil && resp.Body != nil {
			// The body is dropped before the next attempt; keep a readable
			// copy in case this turns out to be the final one.
			buf, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if readErr == nil {
				resp.Body = io.NopCloser(bytes.NewReader(buf))
			}
		}
		return resp, err
	})
	if err != nil && resp != nil && resp.StatusCode != 0 {
		// Retries exhausted on a retryable status: surface the status itself.
		return resp, nil
	}
	return resp, err
}

func (c *Client) observe(endpoint, status string, start time.Time) {
	if c.recorder != nil {
		c.recorder.ObserveRequest(endpoint, status, time.Since(start))
	}
}
