// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/vrcxtracker/internal/logging"
	"github.com/tomtom215/vrcxtracker/internal/metrics"
)

const (
	breakerName      = "discord-webhook"
	maxErrorBodySize = 4096
	defaultTimeout   = 10 * time.Second
	defaultRateLimit = time.Second
)

// Config configures a Client.
type Config struct {
	WebhookURL string
	Username   string
	AvatarURL  string
	Timeout    time.Duration
	// RateLimit is the minimum spacing between requests.
	RateLimit time.Duration
	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client executes and edits messages through one Discord webhook.
//
// Requests are spaced by a token bucket and pass through a circuit breaker
// that opens when the webhook keeps failing with 5xx, 429 or transport
// errors. Client errors such as 404 do not count against the breaker.
type Client struct {
	base      *url.URL
	username  string
	avatarURL string
	http      *http.Client
	limiter   *rate.Limiter
	cb        *gobreaker.CircuitBreaker[*Message]

	mu         sync.Mutex
	retryAfter time.Time
}

// NewClient validates cfg and returns a client. An empty WebhookURL yields
// ErrDisabled.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.WebhookURL) == "" {
		return nil, ErrDisabled
	}
	base, err := url.Parse(cfg.WebhookURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhookURL, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWebhookURL, logging.RedactWebhookURL(cfg.WebhookURL))
	}
	base.Path = strings.TrimSuffix(base.Path, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	spacing := cfg.RateLimit
	if spacing <= 0 {
		spacing = defaultRateLimit
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	c := &Client{
		base:      base,
		username:  cfg.Username,
		avatarURL: cfg.AvatarURL,
		http:      httpClient,
		limiter:   rate.NewLimiter(rate.Every(spacing), 1),
	}
	c.cb = gobreaker.NewCircuitBreaker[*Message](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isOutage(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Discord circuit breaker state change")
			metrics.RecordBreakerTransition(name, from.String(), to.String())
		},
	})
	return c, nil
}

// Send posts a new message and returns its id.
func (c *Client) Send(ctx context.Context, embeds ...Embed) (string, error) {
	endpoint := c.endpoint("", true)
	payload := WebhookPayload{
		Username:        c.username,
		AvatarURL:       c.avatarURL,
		Embeds:          embeds,
		AllowedMentions: &AllowedMentions{Parse: []string{}},
	}
	msg, err := c.execute(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return "", err
	}
	if msg == nil || msg.ID == "" {
		return "", errors.New("discord response did not include a message id")
	}
	return msg.ID, nil
}

// Edit replaces the embeds of a message previously sent by this webhook.
// It returns ErrMessageNotFound when Discord answers 404.
func (c *Client) Edit(ctx context.Context, messageID string, embeds ...Embed) error {
	if messageID == "" {
		return ErrMessageNotFound
	}
	endpoint := c.endpoint("/messages/"+url.PathEscape(messageID), false)
	payload := WebhookPayload{
		Embeds:          embeds,
		AllowedMentions: &AllowedMentions{Parse: []string{}},
	}
	_, err := c.execute(ctx, http.MethodPatch, endpoint, payload)
	return err
}

// BreakerState returns the circuit breaker state name.
func (c *Client) BreakerState() string {
	return c.cb.State().String()
}

func (c *Client) endpoint(suffix string, wait bool) string {
	u := *c.base
	u.Path = c.base.Path + suffix
	q := u.Query()
	if wait {
		q.Set("wait", "true")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) execute(ctx context.Context, method, endpoint string, payload WebhookPayload) (*Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal discord payload: %w", err)
	}

	if err := c.waitTurn(ctx); err != nil {
		return nil, err
	}

	msg, err := c.cb.Execute(func() (*Message, error) {
		return c.do(ctx, method, endpoint, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("discord webhook unavailable: %w", err)
	}
	return msg, err
}

// waitTurn blocks for the rate limiter and any Retry-After window.
func (c *Client) waitTurn(ctx context.Context) error {
	c.mu.Lock()
	until := c.retryAfter
	c.mu.Unlock()

	if d := time.Until(until); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("discord rate limiter: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (*Message, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordWebhook(method, 0, time.Since(start))
		return nil, fmt.Errorf("discord %s: %w", method, err)
	}
	defer resp.Body.Close()
	metrics.RecordWebhook(method, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, ErrMessageNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError(method, resp)
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var msg Message
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode discord response: %w", err)
	}
	return &msg, nil
}

func (c *Client) statusError(method string, resp *http.Response) error {
	serr := &StatusError{Method: method, StatusCode: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	var apiErr apiError
	if len(raw) > 0 && json.Unmarshal(raw, &apiErr) == nil {
		serr.Code = apiErr.Code
		serr.Message = apiErr.Message
		if apiErr.RetryAfter > 0 {
			serr.RetryAfter = time.Duration(apiErr.RetryAfter * float64(time.Second))
		}
	}
	if serr.RetryAfter == 0 {
		if secs, err := strconv.ParseFloat(resp.Header.Get("Retry-After"), 64); err == nil && secs > 0 {
			serr.RetryAfter = time.Duration(secs * float64(time.Second))
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests && serr.RetryAfter > 0 {
		c.mu.Lock()
		c.retryAfter = time.Now().Add(serr.RetryAfter)
		c.mu.Unlock()
		logging.Warn().Dur("retry_after", serr.RetryAfter).Msg("Discord rate limited the webhook")
	}
	return serr
}

// isOutage reports whether err indicates the webhook itself is unhealthy.
func isOutage(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var serr *StatusError
	if errors.As(err, &serr) {
		return serr.Temporary()
	}
	if errors.Is(err, ErrMessageNotFound) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF)
}
