// Package donationapi talks to the external donation service. It owns no
// donation state; every call is forwarded as-is and the body handed back.
package donationapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"donationhub/internal/metrics"
	"donationhub/internal/model"
)

const maxResponseBytes = 4 << 20

// ErrInvalidResponse is returned when the upstream body is not the JSON shape expected.
var ErrInvalidResponse = errors.New("invalid response from donation service")

// StatusError is returned for a non-2xx upstream reply.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("donation service responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("donation service responded with status %d: %s", e.StatusCode, e.Body)
}

// Client forwards donation operations to the upstream API.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     logrus.FieldLogger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New builds a client for baseURL. Each request is bounded by timeout.
func New(baseURL string, timeout time.Duration, log logrus.FieldLogger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "donation-api",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		// 4xx replies mean the upstream is alive.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateDonation forwards POST /donations and returns the upstream body.
func (c *Client) CreateDonation(ctx context.Context, d model.NewDonation) (json.RawMessage, error) {
	return c.do(ctx, "create", http.MethodPost, d)
}

// ListDonations forwards GET /donations. The upstream may answer with a JSON
// array or with a JSON string that itself encodes an array; both come back as
// the array.
func (c *Client) ListDonations(ctx context.Context) (json.RawMessage, error) {
	body, err := c.do(ctx, "list", http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return normalizeList(body)
}

// UpdateStatus forwards PUT /donations with the new status.
func (c *Client) UpdateStatus(ctx context.Context, u model.DonationStatusUpdate) (json.RawMessage, error) {
	return c.do(ctx, "update", http.MethodPut, u)
}

func (c *Client) do(ctx context.Context, op, method string, payload any) (body json.RawMessage, err error) {
	start := time.Now()
	defer func() {
		metrics.UpstreamRequest(op, err, time.Since(start))
	}()

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.roundTrip(ctx, method, payload)
	})
	if err != nil {
		c.log.WithFields(logrus.Fields{"op": op, "method": method}).WithError(err).Warn("donation service call failed")
		return nil, err
	}
	return out.(json.RawMessage), nil
}

func (c *Client) roundTrip(ctx context.Context, method string, payload any) (json.RawMessage, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/donations", reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call donation service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(data) {
		return nil, ErrInvalidResponse
	}
	return json.RawMessage(data), nil
}

func normalizeList(body json.RawMessage) (json.RawMessage, error) {
	if len(body) > 0 && body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		body = json.RawMessage(strings.TrimSpace(inner))
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil || items == nil {
		return nil, fmt.Errorf("%w: expected an array of donations", ErrInvalidResponse)
	}
	return body, nil
}
