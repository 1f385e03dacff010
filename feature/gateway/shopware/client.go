package shopware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"inventree-connect/feature/gateway"
)

// ListOptions selects one page of a listing.
type ListOptions struct {
	Page  int
	Limit int
	// Query carries extra parameters such as sort and associations.
	Query url.Values
}

// Page is one listing page. Total is informational; paging ends on a short page.
type Page struct {
	Items []json.RawMessage `json:"data"`
	Total int               `json:"total"`
}

// Client talks to the Shopware Admin API.
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

// Associations builds the query that embeds the named associations.
func Associations(names ...string) url.Values {
	q := url.Values{}
	for _, n := range names {
		q.Add("associations["+n+"][]", "")
	}
	return q
}

// List fetches one page of resource.
func (c *Client) List(ctx context.Context, resource string, opts ListOptions) (*Page, error) {
	q := url.Values{}
	for k, vs := range opts.Query {
		q[k] = append([]string(nil), vs...)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	body, err := c.do(ctx, http.MethodGet, "/api/"+resource, q)
	if err != nil {
		return nil, err
	}
	var page Page
	if err := gateway.Decode(body, &page); err != nil {
		return nil, fmt.Errorf("list %s: %w", resource, err)
	}
	return &page, nil
}

// Get fetches one entity of resource by id with the given associations embedded.
func (c *Client) Get(ctx context.Context, resource, id string, associations ...string) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/"+resource+"/"+url.PathEscape(id), Associations(associations...))
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := gateway.Decode(body, &envelope); err != nil {
		return nil, fmt.Errorf("get %s %s: %w", resource, id, err)
	}
	return envelope.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := gateway.NewRequest(ctx, method, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return gateway.Do(c.http, req, c.tokens)
}
