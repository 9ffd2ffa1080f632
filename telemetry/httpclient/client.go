package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client is an instrumented HTTP client that wraps http.Client with OpenTelemetry tracing.
type Client struct {
	client *http.Client
}

// New creates a new instrumented HTTP client with OpenTelemetry tracing.
// The base parameter can be nil, in which case http.DefaultTransport is used.
func New(base http.RoundTripper, timeout time.Duration) *Client {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Client{
		client: &http.Client{
			Transport: otelhttp.NewTransport(base),
			Timeout:   timeout,
		},
	}
}

// DefaultClient returns a shared instrumented HTTP client.
func DefaultClient() *Client {
	return &Client{
		client: otelhttp.DefaultClient,
	}
}

// Do sends an HTTP request and returns an HTTP response, using the instrumented client.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

// Post issues a POST request to the specified URL.
func (c *Client) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(req)
}
