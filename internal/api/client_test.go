package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"soloq-tracker/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() ClientOptions {
	opts := DefaultClientOptions()
	opts.Timeout = 2 * time.Second
	opts.TransientBackoff = 10 * time.Millisecond
	return opts
}

func newTestClient() *Client {
	return NewClient(logger.Nop(), testOptions())
}

func TestDoRateLimitCeiling(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient().Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, 3, rateErr.Attempts)
	assert.Equal(t, time.Duration(0), rateErr.RetryAfter)
	assert.EqualValues(t, 3, hits.Load())
}

func TestDoRecoversAfterRateLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"puuid":"abc"}`))
	}))
	defer srv.Close()

	var out AccountDTO
	err := newTestClient().GetJSON(context.Background(), srv.URL, nil, &out)

	require.NoError(t, err)
	assert.Equal(t, "abc", out.PUUID)
	assert.EqualValues(t, 2, hits.Load())
}

func TestDoDoesNotRetryOtherStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "not found", status: http.StatusNotFound},
		{name: "forbidden", status: http.StatusForbidden},
		{name: "server error", status: http.StatusInternalServerError},
		{name: "service unavailable", status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte("nope"))
			}))
			defer srv.Close()

			_, err := newTestClient().Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, "nope", statusErr.Body)
			assert.Equal(t, tt.status == http.StatusNotFound, IsNotFound(err))
			assert.EqualValues(t, 1, hits.Load())
		})
	}
}

func TestDoTransportFailureCeiling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient().Do(context.Background(), Request{Method: http.MethodGet, URL: url})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 3, transportErr.Attempts)
	assert.NotNil(t, errors.Unwrap(transportErr))
}

func TestDoHonoursCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newTestClient().Do(ctx, Request{Method: http.MethodGet, URL: srv.URL})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRetryAfterParsing(t *testing.T) {
	c := newTestClient()

	assert.Equal(t, time.Second, c.retryAfter(""))
	assert.Equal(t, time.Second, c.retryAfter("soon"))
	assert.Equal(t, 3*time.Second, c.retryAfter(" 3 "))
	assert.Equal(t, 10*time.Second, c.retryAfter("120"), "capped at the maximum wait")
}

func TestRateLimitHeadersAreTracked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-App-Rate-Limit", "20:1,100:120")
		w.Header().Set("X-App-Rate-Limit-Count", "1:1,7:120")
		w.Header().Set("X-Method-Rate-Limit-Count", "1:10")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient()
	assert.True(t, c.GetRateLimitInfo().UpdatedAt.IsZero())

	require.NoError(t, c.GetJSON(context.Background(), srv.URL, nil, &struct{}{}))

	info := c.GetRateLimitInfo()
	assert.Equal(t, "20:1,100:120", info.AppLimit)
	assert.Equal(t, "1:1,7:120", info.AppCount)
	assert.Equal(t, "1:10", info.MethodCount)
	assert.False(t, info.UpdatedAt.IsZero())
}

func TestPostJSONSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"game_name":"Faker"}`, string(body))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	payload := map[string]string{"game_name": "Faker"}
	err := newTestClient().PostJSON(context.Background(), srv.URL, map[string]string{"X-Test": "yes"}, payload, &out)

	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestGetJSONReportsDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	var out AccountDTO
	err := newTestClient().GetJSON(context.Background(), srv.URL, nil, &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}
