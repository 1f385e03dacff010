package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"inventree-connect/core/reconcile"
)

// maxResponseSize caps the bytes read from any remote response (10MB).
const maxResponseSize = 10 << 20

// TokenSource hands out the current bearer token of one system.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// invalidator is implemented by token sources that can drop a rejected token.
type invalidator interface {
	Invalidate()
}

// StatusError is a non-success HTTP answer. It unwraps to reconcile.ErrNotFound
// for 404 and to reconcile.ErrRequestFailed otherwise.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return reconcile.ErrNotFound
	}
	return reconcile.ErrRequestFailed
}

// NewHTTPClient returns a client whose every request is bounded by timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
		},
	}
}

// NewRequest builds a request with an optional JSON body.
func NewRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, url, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, url, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Do sends req and returns the body of a 2xx response.
// Transport failures and unreadable bodies wrap reconcile.ErrNoData; other
// statuses return a *StatusError. A 401 drops the token of tokens, if any.
func Do(client *http.Client, req *http.Request, tokens TokenSource) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", reconcile.ErrNoData, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %w", reconcile.ErrNoData, req.Method, req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			if inv, ok := tokens.(invalidator); ok {
				inv.Invalidate()
			}
		}
		return nil, &StatusError{
			Method: req.Method,
			Path:   req.URL.Path,
			Code:   resp.StatusCode,
			Body:   truncateBody(body),
		}
	}
	return body, nil
}

// Decode unmarshals a response body, wrapping failures in reconcile.ErrInvalidResponse.
func Decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", reconcile.ErrInvalidResponse, err)
	}
	return nil
}

func truncateBody(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
