// Package github is a small GitHub REST v3 client covering code search and
// release listing, with request pacing and retry on rate limits
package github

import (
	"context"
	"io"
	"net/http"
	"time"

	"ecotrack/internal/platform/backoff"
	perr "ecotrack/internal/platform/errors"
	"ecotrack/internal/platform/logger"

	"golang.org/x/time/rate"
)

const (
	baseURLDefault = "https://api.github.com"
	defaultTimeout = 30 * time.Second
	defaultUA      = "ecotrack"
	defaultRPS     = 0.5
	defaultBurst   = 2
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Token is sent as a bearer token. Empty means anonymous, which code
	// search rejects
	Token string

	// RPS and Burst pace outgoing requests
	RPS   float64
	Burst int

	Retry backoff.Policy
}

// Client is a minimal GitHub REST client
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
	now     func() time.Time
	sleep   func(context.Context, time.Duration) error
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.RPS <= 0 {
		o.RPS = defaultRPS
	}
	if o.Burst <= 0 {
		o.Burst = defaultBurst
	}
	o.Retry = o.Retry.WithDefaults()
	return &Client{
		http:    &http.Client{Timeout: o.Timeout},
		opts:    o,
		limiter: rate.NewLimiter(rate.Limit(o.RPS), o.Burst),
		log:     *logger.Named("github"),
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do issues a GET with auth headers, pacing, retries and rate limit handling.
// The caller closes the body of a returned response
func (c *Client) Do(ctx context.Context, path string) (*http.Response, error) {
	url := c.opts.BaseURL + path
	attempts := 0
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "github new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		if c.opts.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.opts.Token)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)
		attempts++

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !c.opts.Retry.Retries(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "github GET %s failed", path)
			}
			if err := c.wait(ctx, c.opts.Retry.Delay(attempts-1), attempts, "github transport error retrying"); err != nil {
				return nil, err
			}
			continue
		}

		rem, reset, retryAfter := parseRateHeaders(resp.Header)
		c.log.Debug().
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Int("rate_remaining", rem).
			Time("rate_reset", reset).
			Int("retry_after_s", retryAfter).
			Msg("github http response")

		switch {
		case resp.StatusCode == http.StatusOK:
			return resp, nil
		case resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode == http.StatusForbidden && (rem == 0 || retryAfter > 0)):
			_ = drainAndClose(resp.Body)
			if !c.opts.Retry.Retries(attempts) {
				return nil, &StatusError{Status: resp.StatusCode, Err: perr.Newf(perr.ErrorCodeTooManyRequests, "github rate limited on %s", path)}
			}
			wait := computeWait(rem, reset, retryAfter, c.now())
			if wait <= 0 {
				wait = c.opts.Retry.Delay(attempts - 1)
			}
			if err := c.wait(ctx, wait, attempts, "github rate limited backing off"); err != nil {
				return nil, err
			}
		case resp.StatusCode >= 500:
			_ = drainAndClose(resp.Body)
			if !c.opts.Retry.Retries(attempts) {
				return nil, &StatusError{Status: resp.StatusCode, Err: perr.Newf(perr.ErrorCodeUnavailable, "github status %d on %s", resp.StatusCode, path)}
			}
			if err := c.wait(ctx, c.opts.Retry.Delay(attempts-1), attempts, "github transient error retrying"); err != nil {
				return nil, err
			}
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			code := perr.ErrorCodeContract
			switch resp.StatusCode {
			case http.StatusNotFound:
				code = perr.ErrorCodeNotFound
			case http.StatusUnauthorized:
				code = perr.ErrorCodeUnauthorized
			case http.StatusForbidden:
				code = perr.ErrorCodeForbidden
			}
			return nil, &StatusError{
				Status: resp.StatusCode,
				Body:   string(body),
				Err:    perr.Newf(code, "github unexpected status %d on %s", resp.StatusCode, path),
			}
		}
	}
}

func (c *Client) wait(ctx context.Context, d time.Duration, attempt int, msg string) error {
	c.log.Warn().Dur("retry_in", d).Int("attempt", attempt).Msg(msg)
	return c.sleep(ctx, d)
}
