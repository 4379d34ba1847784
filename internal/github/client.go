package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Client is the raw GitHub transport. Gateway builds typed operations on
// top of it.
type Client interface {
	// GraphQL posts a query document and decodes the "data" member into out.
	// A response carrying an "errors" array yields a *GraphQLError, after
	// decoding whatever partial data was returned.
	GraphQL(ctx context.Context, op, query string, vars map[string]any, out any) error

	// REST issues a request against a path relative to BaseURL (or an
	// absolute URL taken from a Link header) and decodes the JSON body into
	// out. It returns the rel="next" URL when the response is paginated.
	REST(ctx context.Context, op, method, path string, body, out any) (next string, err error)
}

type httpClient struct {
	cfg      Config
	token    string
	http     *http.Client
	observer Observer
}

// NewClient creates a Client authenticating with a bearer token.
func NewClient(cfg Config, token string, observer Observer) Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &httpClient{
		cfg:   cfg,
		token: token,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

type response struct {
	status int
	header http.Header
	body   []byte
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage     `json:"data"`
	Errors []GraphQLErrorEntry `json:"errors"`
}

func (c *httpClient) GraphQL(ctx context.Context, op, query string, vars map[string]any, out any) error {
	resp, err := c.send(ctx, op, http.MethodPost, c.cfg.GraphQLURL, graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return err
	}

	var gr graphqlResponse
	if err := json.Unmarshal(resp.body, &gr); err != nil {
		return fmt.Errorf("%s: decoding graphql response: %w", op, err)
	}

	hasData := len(gr.Data) > 0 && string(gr.Data) != "null"
	if out != nil && hasData {
		if err := json.Unmarshal(gr.Data, out); err != nil {
			return fmt.Errorf("%s: decoding graphql data: %w", op, err)
		}
	}

	if len(gr.Errors) > 0 {
		gqlErr := &GraphQLError{Errors: gr.Errors}
		if gqlErr.hasType("RATE_LIMITED") {
			return &RateLimitError{Message: gr.Errors[0].Message}
		}
		return gqlErr
	}
	return nil
}

func (c *httpClient) REST(ctx context.Context, op, method, path string, body, out any) (string, error) {
	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = c.cfg.BaseURL + path
	}

	resp, err := c.send(ctx, op, method, url, body)
	if err != nil {
		return "", err
	}

	if out != nil && len(bytes.TrimSpace(resp.body)) > 0 {
		if err := json.Unmarshal(resp.body, out); err != nil {
			return "", fmt.Errorf("%s: decoding response: %w", op, err)
		}
	}
	return nextLink(resp.header.Get("Link")), nil
}

// send performs one logical call with retries on 5xx and connection
// failures, and reports a single CallEvent for it.
func (c *httpClient) send(ctx context.Context, op, method, url string, payload any) (*response, error) {
	parent := ctx
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	var data []byte
	if payload != nil {
		var err error
		if data, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("%s: marshaling request: %w", op, err)
		}
	}

	var (
		resp    *response
		lastErr error
	)
	attempts := 1 + c.cfg.MaxRetries
	for i := 0; i < attempts; i++ {
		resp, lastErr = c.roundTrip(ctx, method, url, data)
		if lastErr == nil {
			lastErr = statusError(method, url, resp)
		}
		if lastErr == nil || !retryable(lastErr) || ctx.Err() != nil {
			break
		}
	}

	event := CallEvent{
		Operation:     op,
		Method:        method,
		LatencyMs:     time.Since(start).Milliseconds(),
		Success:       lastErr == nil,
		RateRemaining: -1,
	}
	if resp != nil {
		event.StatusCode = resp.status
		if n, err := strconv.Atoi(resp.header.Get("X-RateLimit-Remaining")); err == nil {
			event.RateRemaining = n
		}
	}

	if lastErr == nil {
		c.observer.OnCallComplete(event)
		return resp, nil
	}

	switch {
	case parent.Err() != nil:
		lastErr = parent.Err()
	case ctx.Err() != nil:
		lastErr = ErrTimeout
	case isConnectionError(lastErr):
		lastErr = fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	case retryable(lastErr) && attempts > 1:
		lastErr = fmt.Errorf("%w: %w", ErrRetryExhausted, lastErr)
	}
	event.ErrorCode = errorCode(lastErr)
	c.observer.OnCallComplete(event)
	return nil, fmt.Errorf("%s: %w", op, lastErr)
}

func (c *httpClient) roundTrip(ctx context.Context, method, url string, data []byte) (*response, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return &response{status: httpResp.StatusCode, header: httpResp.Header, body: respBody}, nil
}

// statusError maps a non-2xx response onto the package error types.
func statusError(method, url string, resp *response) error {
	if resp.status >= 200 && resp.status < 300 {
		return nil
	}
	msg := apiMessage(resp.body)

	switch {
	case resp.status == http.StatusTooManyRequests,
		resp.status == http.StatusForbidden && resp.header.Get("X-RateLimit-Remaining") == "0",
		resp.status == http.StatusForbidden && strings.Contains(strings.ToLower(msg), "rate limit"):
		return rateLimitFromHeaders(resp.header, msg)
	case resp.status == http.StatusUnauthorized:
		return &AuthError{StatusCode: resp.status, Message: msg}
	}
	return &StatusError{Method: method, Path: trimHost(url), StatusCode: resp.status, Message: msg}
}

func rateLimitFromHeaders(h http.Header, msg string) *RateLimitError {
	rl := &RateLimitError{Message: msg}
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			rl.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			rl.ResetAt = time.Unix(epoch, 0)
		}
	}
	return rl
}

func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

func trimHost(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		rest := url[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			return rest[j:]
		}
	}
	return url
}

var linkNext = regexp.MustCompile(`<([^>]+)>\s*;\s*rel="next"`)

func nextLink(header string) string {
	if m := linkNext.FindStringSubmatch(header); m != nil {
		return m[1]
	}
	return ""
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case IsRateLimit(err):
		return "RATE_LIMITED"
	case IsAuthError(err):
		return "AUTH"
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrRetryExhausted):
		return "RETRY_EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}
