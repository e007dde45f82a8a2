package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"soloq-tracker/internal/constants"

	jsoniter "github.com/json-iterator/go"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ClientOptions struct {
	Timeout              time.Duration
	MaxRateLimitAttempts int
	DefaultRetryAfter    time.Duration
	MaxRetryAfter        time.Duration
	MaxTransientRetries  int
	TransientBackoff     time.Duration
}

func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:              constants.ExternalAPITimeout,
		MaxRateLimitAttempts: constants.MaxRateLimitAttempts,
		DefaultRetryAfter:    constants.DefaultRetryAfter,
		MaxRetryAfter:        constants.MaxRetryAfter,
		MaxTransientRetries:  constants.MaxTransientRetries,
		TransientBackoff:     constants.TransientBackoff,
	}
}

// Client issues single upstream calls with bounded retries. It is shared
// across requests only as a connection pool.
type Client struct {
	client      *fasthttp.Client
	opts        ClientOptions
	logger      zerolog.Logger
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	AppLimit    string    `json:"app_limit"`
	AppCount    string    `json:"app_count"`
	MethodCount string    `json:"method_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

func NewClient(logger zerolog.Logger, opts ClientOptions) *Client {
	return &Client{
		opts:   opts,
		logger: logger,
		client: &fasthttp.Client{
			MaxConnsPerHost:     constants.UpstreamMaxConnsPerHost,
			ReadTimeout:         opts.Timeout,
			WriteTimeout:        opts.Timeout,
			MaxIdleConnDuration: constants.UpstreamIdleConnTTL,
		},
	}
}

func (c *Client) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *Client) updateRateLimit(resp *fasthttp.Response) {
	appLimit := string(resp.Header.Peek("X-App-Rate-Limit"))
	if appLimit == "" {
		return
	}

	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	c.rateLimit.AppLimit = appLimit
	c.rateLimit.AppCount = string(resp.Header.Peek("X-App-Rate-Limit-Count"))
	c.rateLimit.MethodCount = string(resp.Header.Peek("X-Method-Rate-Limit-Count"))
	c.rateLimit.UpdatedAt = time.Now()
}

// GetJSON performs a GET and decodes a 2xx body into out.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	body, err := c.Do(ctx, Request{Method: fasthttp.MethodGet, URL: url, Headers: headers})
	if err != nil {
		return err
	}
	return decode(url, body, out)
}

// PostJSON marshals payload, POSTs it and decodes a 2xx body into out.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request for %s: %w", url, err)
	}

	merged := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		merged[k] = v
	}

	body, err := c.Do(ctx, Request{Method: fasthttp.MethodPost, URL: url, Headers: merged, Body: raw})
	if err != nil {
		return err
	}
	return decode(url, body, out)
}

func decode(url string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

// Do runs the request until it succeeds, hits a non-retryable status, or
// exhausts the 429 / transient ceilings.
func (c *Client) Do(ctx context.Context, r Request) ([]byte, error) {
	callID, err := gonanoid.New(10)
	if err != nil {
		callID = "unknown"
	}
	log := c.logger.With().Str("call_id", callID).Str("method", r.Method).Str("url", r.URL).Logger()

	var (
		result         []byte
		rateLimited    int
		transient      int
		attempts       int
		nextWait       time.Duration
		lastRetryAfter time.Duration
	)

	backoff := retry.BackoffFunc(func() (time.Duration, bool) {
		return nextWait, false
	})

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		start := time.Now()
		status, body, retryAfter, doErr := c.once(ctx, r)

		if doErr != nil {
			transient++
			log.Warn().Err(doErr).Int("attempt", attempts).Msg("upstream transport failure")
			if transient > c.opts.MaxTransientRetries {
				return &TransportError{Attempts: attempts, URL: r.URL, Err: doErr}
			}
			nextWait = c.opts.TransientBackoff
			return retry.RetryableError(doErr)
		}

		log.Debug().
			Int("status", status).
			Int("attempt", attempts).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("upstream call completed")

		switch {
		case status == fasthttp.StatusTooManyRequests:
			rateLimited++
			lastRetryAfter = c.retryAfter(retryAfter)
			if rateLimited >= c.opts.MaxRateLimitAttempts {
				return &RateLimitError{Attempts: rateLimited, RetryAfter: lastRetryAfter, URL: r.URL}
			}
			log.Warn().Dur("retry_after", lastRetryAfter).Int("attempt", rateLimited).Msg("rate limited, backing off")
			nextWait = lastRetryAfter
			return retry.RetryableError(fmt.Errorf("rate limited on %s", r.URL))
		case status < 200 || status >= 300:
			return &StatusError{StatusCode: status, Body: abbreviate(body), URL: r.URL}
		}

		result = body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) once(ctx context.Context, r Request) (int, []byte, string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.URL)
	req.Header.SetMethod(r.Method)
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	if len(r.Body) > 0 {
		req.SetBody(r.Body)
	}

	deadline := time.Now().Add(c.opts.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, "", err
	}

	c.updateRateLimit(resp)

	// resp is released on return, so the body must be copied out
	body := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), body, string(resp.Header.Peek("Retry-After")), nil
}

func (c *Client) retryAfter(header string) time.Duration {
	wait := c.opts.DefaultRetryAfter
	if header != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs >= 0 {
			wait = time.Duration(secs) * time.Second
		}
	}
	if wait > c.opts.MaxRetryAfter {
		wait = c.opts.MaxRetryAfter
	}
	return wait
}

func abbreviate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > constants.MaxErrorBodyBytes {
		return s[:constants.MaxErrorBodyBytes] + "..."
	}
	return s
}
