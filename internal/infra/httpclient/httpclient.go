// Package httpclient builds the shared outbound HTTP client handle that is
// passed explicitly to the stages wired to it rather than reached through a
// package-level default. One *http.Client backs all endpoints built from it;
// per-endpoint behaviour is supplied by the caller's own
// retry.Config/circuitbreaker.Config, not by the transport. Not every
// outbound call goes through it: the feed collector, the readability body
// fetcher and the webhook notifiers each build their own *http.Client.
package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"newsdigest/internal/observability/metrics"
	"newsdigest/internal/resilience/circuitbreaker"
	"newsdigest/internal/resilience/retry"
)

// Client is the process-wide outbound HTTP handle. It is constructed once
// at start-up and passed into the stages wired to it (in cmd/worker, the
// image prober).
type Client struct {
	http *http.Client
}

// New builds the shared client with the connection limits and timeouts the
// pipeline's bounded worker pools (8-32 per stage, 64 global) rely on to
// avoid descriptor exhaustion.
func New() *Client {
	return &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        64,
				MaxIdleConnsPerHost: 16,
				MaxConnsPerHost:     16,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Endpoint binds the shared client to one named endpoint's retry and
// circuit-breaker profile. Callers of the shared client obtain one of these
// rather than touching its *http.Client directly.
type Endpoint struct {
	name    string
	client  *http.Client
	retry   retry.Config
	breaker *circuitbreaker.CircuitBreaker
}

// NewEndpoint constructs an Endpoint bound to the shared client.
func (c *Client) NewEndpoint(name string, r retry.Config, b circuitbreaker.Config) *Endpoint {
	return &Endpoint{
		name:    name,
		client:  c.http,
		retry:   r,
		breaker: circuitbreaker.New(b),
	}
}

// Do executes req through the endpoint's retry and circuit-breaker wrapping,
// recording outcome counters for the endpoint.
func (e *Endpoint) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var resp *http.Response
	err := retry.WithBackoff(ctx, e.retry, func() error {
		v, cbErr := e.breaker.Execute(func() (interface{}, error) {
			r, doErr := e.client.Do(req)
			if doErr != nil {
				return nil, doErr
			}
			if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests || r.StatusCode == http.StatusRequestTimeout {
				_ = r.Body.Close()
				return nil, &retry.HTTPError{StatusCode: r.StatusCode, Message: fmt.Sprintf("%s returned %d", e.name, r.StatusCode)}
			}
			return r, nil
		})
		if cbErr != nil {
			metrics.RecordOutboundCall(e.name, "error")
			return cbErr
		}
		resp = v.(*http.Response)
		return nil
	})
	if err != nil {
		slog.Warn("outbound call failed", slog.String("endpoint", e.name), slog.Any("error", err))
		metrics.RecordOutboundCall(e.name, "failure")
		return nil, err
	}
	metrics.RecordOutboundCall(e.name, "success")
	return resp, nil
}
