package inventree

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"inventree-connect/core/auth"
	"inventree-connect/feature/gateway"
)

// tokenLifetime applies when the token endpoint reports no expiry.
const tokenLifetime = 24 * time.Hour

// Authenticator obtains API tokens with basic authentication.
type Authenticator struct {
	url      string
	user     string
	password string
	http     *http.Client
	now      func() time.Time
}

// NewAuthenticator creates an authenticator for cfg.
func NewAuthenticator(cfg Config) *Authenticator {
	return &Authenticator{
		url:      strings.TrimRight(cfg.URL, "/"),
		user:     cfg.User,
		password: cfg.Password,
		http:     gateway.NewHTTPClient(cfg.Timeout()),
		now:      time.Now,
	}
}

// Name implements auth.Authenticator.
func (a *Authenticator) Name() string { return "inventree" }

// Authenticate implements auth.Authenticator.
func (a *Authenticator) Authenticate(ctx context.Context) (auth.Token, error) {
	req, err := gateway.NewRequest(ctx, http.MethodGet, a.url+"/api/user/token/", nil)
	if err != nil {
		return auth.Token{}, err
	}
	req.SetBasicAuth(a.user, a.password)

	resp, err := gateway.Do(a.http, req, nil)
	if err != nil {
		return auth.Token{}, err
	}
	var out struct {
		Token  string `json:"token"`
		Expiry string `json:"expiry"`
	}
	if err := gateway.Decode(resp, &out); err != nil {
		return auth.Token{}, err
	}
	if out.Token == "" {
		return auth.Token{}, fmt.Errorf("inventree token response without token")
	}

	expires := a.now().Add(tokenLifetime)
	if out.Expiry != "" {
		day, err := time.ParseInLocation("2006-01-02", out.Expiry, time.Local)
		if err != nil {
			return auth.Token{}, fmt.Errorf("inventree token expiry %q: %w", out.Expiry, err)
		}
		expires = day
	}
	return auth.Token{Value: out.Token, ExpiresAt: expires}, nil
}
