package shopware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"inventree-connect/core/auth"
	"inventree-connect/feature/gateway"
)

// Authenticator obtains Admin API tokens with the client credentials grant.
type Authenticator struct {
	url       string
	accessKey string
	secretKey string
	http      *http.Client
	now       func() time.Time
}

// NewAuthenticator creates an authenticator for cfg.
func NewAuthenticator(cfg Config) *Authenticator {
	return &Authenticator{
		url:       strings.TrimRight(cfg.URL, "/"),
		accessKey: cfg.AccessKey,
		secretKey: cfg.SecretKey,
		http:      gateway.NewHTTPClient(cfg.Timeout()),
		now:       time.Now,
	}
}

// Name implements auth.Authenticator.
func (a *Authenticator) Name() string { return "shopware" }

// Authenticate implements auth.Authenticator.
func (a *Authenticator) Authenticate(ctx context.Context) (auth.Token, error) {
	body := map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     a.accessKey,
		"client_secret": a.secretKey,
	}
	req, err := gateway.NewRequest(ctx, http.MethodPost, a.url+"/api/oauth/token", body)
	if err != nil {
		return auth.Token{}, err
	}
	resp, err := gateway.Do(a.http, req, nil)
	if err != nil {
		return auth.Token{}, err
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := gateway.Decode(resp, &out); err != nil {
		return auth.Token{}, err
	}
	if out.AccessToken == "" {
		return auth.Token{}, fmt.Errorf("shopware token response without access_token")
	}
	return auth.Token{
		Value:     out.AccessToken,
		ExpiresAt: a.now().Add(time.Duration(out.ExpiresIn) * time.Second),
	}, nil
}
