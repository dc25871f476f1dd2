// Package upstream is the HTTP plumbing shared by the Nominatim and OSRM
// adapters: request construction, status handling and metrics.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mappy/internal/domain"
	"mappy/internal/platform/metrics"
)

// StatusError is returned for upstream responses with status >= 400.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// Client issues exactly one attempt per request. Retrying is left to the user.
type Client struct {
	session   *http.Client
	service   string
	userAgent string
}

func New(service, userAgent string, timeout time.Duration, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{session: hc, service: service, userAgent: userAgent}
}

func (c *Client) NewRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
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

// Do sends req once. Network failures and error statuses come back as a
// *domain.TransportError so callers can tell "retry" apart from "not found".
func (c *Client) Do(req *http.Request, op string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.session.Do(req)
	metrics.UpstreamLatency.WithLabelValues(c.service).Observe(time.Since(start).Seconds())

	if err != nil {
		c.Record("error")
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		c.Record("error")
		return nil, &domain.TransportError{
			Op: op,
			Err: &StatusError{
				Code: resp.StatusCode,
				Body: strings.TrimSpace(string(b)),
			},
		}
	}
	return resp, nil
}

// Record counts one finished upstream call.
func (c *Client) Record(outcome string) {
	metrics.UpstreamRequests.WithLabelValues(c.service, outcome).Inc()
}

// Decode failures mean the upstream answered with something we cannot use;
// they are treated as transport errors.
func (c *Client) DecodeError(op string, err error) error {
	c.Record("error")
	return &domain.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
}

// IsStatus reports whether err carries an upstream status error with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
