// Package notion provides a client for the Notion database query API
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/mhollowell/tradedeck/internal/common"
	"github.com/mhollowell/tradedeck/internal/models"
)

const (
	DefaultBaseURL   = "https://api.notion.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 3 // requests per second, Notion's documented average
	DefaultPageSize  = 100

	// APIVersion is the Notion-Version header value the client pins.
	APIVersion = "2022-06-28"
)

// Client queries a Notion database over REST.
type Client struct {
	baseURL    string
	token      string
	databaseID string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit. Non-positive values fall back to the
// default; a zero limiter would reject every request.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			requestsPerSecond = DefaultRateLimit
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Notion client for a single database.
func NewClient(token, databaseID string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		databaseID: databaseID,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a Notion API error
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Notion API error: %s (status: %d, code: %s, endpoint: %s)", e.Message, e.StatusCode, e.Code, e.Endpoint)
}

// QueryDatabase retrieves all pages of the configured database, following
// next_cursor until has_more is false.
func (c *Client) QueryDatabase(ctx context.Context) ([]models.NotionPage, error) {
	var pages []models.NotionPage
	cursor := ""

	for {
		resp, err := c.queryPage(ctx, cursor)
		if err != nil {
			return nil, err
		}

		pages = append(pages, resp.Results...)

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	c.logger.Debug().Int("pages", len(pages)).Str("database", c.databaseID).Msg("Notion database queried")
	return pages, nil
}

// queryPage performs a single rate-limited query request.
func (c *Client) queryPage(ctx context.Context, cursor string) (*models.NotionQueryResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	path := fmt.Sprintf("/v1/databases/%s/query", c.databaseID)

	body, err := json.Marshal(models.NotionQueryRequest{
		StartCursor: cursor,
		PageSize:    DefaultPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", APIVersion)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("url", path).Str("cursor", cursor).Msg("Notion API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp, path)
	}

	var result models.NotionQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// apiError builds an APIError from a non-200 response body.
func (c *Client) apiError(resp *http.Response, endpoint string) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		Endpoint:   endpoint,
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var body models.NotionErrorResponse
		if json.Unmarshal(data, &body) == nil && body.Message != "" {
			apiErr.Code = body.Code
			apiErr.Message = body.Message
		}
	}

	return apiErr
}
