// Package grader implements the grading-status API client.
// This package handles all communication with the remote grading platform:
// request construction, response schema validation, and the translation of
// homework status codes into human-readable verdict messages.
package grader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	logx "hwbot/pkg/logx"
)

// DefaultEndpoint is the production homework-status endpoint.
const DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"

type ClientConfig struct {
	// Endpoint is the homework-status URL. Defaults to DefaultEndpoint.
	Endpoint string

	// Token is the OAuth token sent with every request.
	Token string

	// Timeout bounds one full request/response round trip.
	Timeout time.Duration

	Logger logx.Logger
}

// Client fetches homework statuses for the token's user.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	log      logx.Logger
}

func NewClient(cfg ClientConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	log := cfg.Logger
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		endpoint: endpoint,
		token:    cfg.Token,
		http:     &http.Client{Timeout: timeout},
		log:      log,
	}
}

// Endpoint returns the configured homework-status URL.
func (c *Client) Endpoint() string { return c.endpoint }

// HomeworkStatuses requests status updates newer than fromDate (epoch seconds)
// and returns the decoded JSON body. The caller validates the shape via
// Validate; this method only guarantees the body was syntactically JSON.
func (c *Client) HomeworkStatuses(ctx context.Context, fromDate int64) (any, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, &RequestError{Endpoint: c.endpoint, Err: fmt.Errorf("parse endpoint: %w", err)}
	}
	q := u.Query()
	q.Set("from_date", strconv.FormatInt(fromDate, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &RequestError{Endpoint: c.endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "OAuth "+c.token)
	req.Header.Set("Accept", "application/json")

	c.log.Debug("grading api request", logx.Int64("from_date", fromDate))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Endpoint: c.endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{Endpoint: c.endpoint, StatusCode: resp.StatusCode}
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &RequestError{Endpoint: c.endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode body: %w", err)}
	}
	return decoded, nil
}
