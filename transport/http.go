package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrClosed indicates a send on a closed transport.
var ErrClosed = errors.New("transport: closed")

// ClientDo provides the interface for custom HTTP client implementations.
type ClientDo interface {
	Do(*http.Request) (*http.Response, error)
}

// ClientDoFunc provides a helper to wrap a function as an HTTP client for
// round tripping requests.
type ClientDoFunc func(*http.Request) (*http.Response, error)

// Do invokes the underlying func, returning the result.
func (fn ClientDoFunc) Do(r *http.Request) (*http.Response, error) {
	return fn(r)
}

// HTTP posts encoded messages to a fixed endpoint. Standard client
// implementation is http.Client.
type HTTP struct {
	client ClientDo
	url    string
}

// NewHTTP returns an HTTP transport posting to url through client.
func NewHTTP(client ClientDo, url string) *HTTP {
	return &HTTP{client: client, url: url}
}

// Send posts message as one application/msgpack request body. Any
// non-2xx response is an error; the response body is drained and
// discarded either way so the underlying connection can be reused.
func (t *HTTP) Send(ctx context.Context, message []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(message))
	if err != nil {
		return fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/msgpack")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("transport: send: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("transport: endpoint returned %s", resp.Status)
	}
	return nil
}

// Close is a no-op; connection pooling is owned by the HTTP client.
func (t *HTTP) Close() error {
	return nil
}
