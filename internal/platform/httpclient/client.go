package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"route-finder-service/internal/domain"
	"strings"
	"time"
)

// Upper bound on response bodies read from providers.
const maxBodyBytes = 16 << 20

// StatusError is returned for non-2xx provider replies.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

type Options struct {
	Timeout time.Duration
	// MaxAttempts bounds the retry loop for 429/5xx and network errors.
	// Values below 1 mean a single attempt.
	MaxAttempts int
	UserAgent   string
	// Header is added to every request (e.g. provider Authorization).
	Header    http.Header
	Transport http.RoundTripper
}

// Client is a small JSON-over-HTTP helper shared by provider adapters.
// Every failure it returns is a *domain.NetworkError.
// The client is safe for concurrent use.
type Client struct {
	session     *http.Client
	maxAttempts int
	backoff     time.Duration
	userAgent   string
	header      http.Header
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	return &Client{
		session:     &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
		maxAttempts: opts.MaxAttempts,
		backoff:     200 * time.Millisecond,
		userAgent:   opts.UserAgent,
		header:      opts.Header.Clone(),
	}
}

// HTTPClient exposes the underlying client for SDKs that bring their own request layer.
func (c *Client) HTTPClient() *http.Client { return c.session }

func (c *Client) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429/5xx responses)
// using exponential backoff while respecting context cancellation.
func (c *Client) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	backoff := c.backoff

	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *StatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == c.maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

// Fetch performs method on url and returns the response body.
// payload, when non-nil, is sent as a JSON body.
func (c *Client) Fetch(ctx context.Context, op, method, url string, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, &domain.NetworkError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
	}

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		var r io.Reader
		if body != nil {
			r = bytes.NewReader(body)
		}
		return c.newRequest(ctx, method, url, r)
	})
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	return b, nil
}

// FetchJSON is Fetch followed by decoding the body into out.
// A body that does not decode is reported as a network error.
func (c *Client) FetchJSON(ctx context.Context, op, method, url string, payload, out any) error {
	b, err := c.Fetch(ctx, op, method, url, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// StatusCode returns the provider status carried by err, or 0.
func StatusCode(err error) int {
	var he *StatusError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}
