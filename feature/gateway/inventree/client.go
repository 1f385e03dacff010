package inventree

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"inventree-connect/feature/gateway"
)

// Object is the part of any created record the caller needs.
type Object struct {
	PK int `json:"pk"`
}

// Client talks to the InvenTree REST API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  gateway.TokenSource
}

// NewClient creates a client authenticating through tokens.
func NewClient(cfg Config, tokens gateway.TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    gateway.NewHTTPClient(cfg.Timeout()),
		tokens:  tokens,
	}
}

// endpoint joins path segments below /api/ with the trailing slash InvenTree expects.
func (c *Client) endpoint(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.Trim(s, "/"); s != "" {
			parts = append(parts, s)
		}
	}
	return c.baseURL + "/api/" + strings.Join(parts, "/") + "/"
}

// Create posts body to resource and returns the created record.
func (c *Client) Create(ctx context.Context, resource string, body any) (*Object, error) {
	resp, err := c.do(ctx, http.MethodPost, c.endpoint(resource), nil, body)
	if err != nil {
		return nil, err
	}
	var obj Object
	if err := gateway.Decode(resp, &obj); err != nil {
		return nil, fmt.Errorf("create %s: %w", resource, err)
	}
	return &obj, nil
}

// Get fetches path with query and returns the raw body.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	resp, err := c.do(ctx, http.MethodGet, c.endpoint(path), query, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp), nil
}

// Action posts body to the verb endpoint of one record, e.g. order/so/12/issue/.
func (c *Client) Action(ctx context.Context, resource, id, verb string, body any) error {
	if body == nil {
		body = map[string]any{}
	}
	_, err := c.do(ctx, http.MethodPost, c.endpoint(resource, id, verb), nil, body)
	return err
}

// Delete removes one record.
func (c *Client) Delete(ctx context.Context, resource, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.endpoint(resource, id), nil, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, u string, q url.Values, body any) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := gateway.NewRequest(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+token)
	return gateway.Do(c.http, req, c.tokens)
}

// DecodeList decodes a list endpoint body, either a bare array or a paginated
// {"count": n, "results": [...]} envelope.
func DecodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := strings.TrimSpace(string(raw))
	var out []T
	if strings.HasPrefix(trimmed, "[") {
		if err := gateway.Decode(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var page struct {
		Results []T `json:"results"`
	}
	if err := gateway.Decode(raw, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}
