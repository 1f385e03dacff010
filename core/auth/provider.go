package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrAuthFailed wraps every failed token request.
var ErrAuthFailed = errors.New("authentication failed")

// Token is a bearer credential and its expiry. A zero ExpiresAt never expires.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

func (t Token) validAt(now time.Time, skew time.Duration) bool {
	if t.Value == "" {
		return false
	}
	return t.ExpiresAt.IsZero() || now.Add(skew).Before(t.ExpiresAt)
}

// Authenticator obtains a fresh token from a remote system.
type Authenticator interface {
	Name() string
	Authenticate(ctx context.Context) (Token, error)
}

// Provider caches the token of one Authenticator and renews it on demand.
// Concurrent callers share a single in-flight renewal.
type Provider struct {
	authn  Authenticator
	logger *zap.Logger
	skew   time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	token Token
	group singleflight.Group
}

// Option configures a Provider.
type Option func(*Provider)

// WithSkew renews tokens d before their expiry.
func WithSkew(d time.Duration) Option {
	return func(p *Provider) { p.skew = d }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// NewProvider creates a provider for authn.
func NewProvider(authn Authenticator, logger *zap.Logger, opts ...Option) *Provider {
	p := &Provider{
		authn:  authn,
		logger: logger.Named("auth").With(zap.String("system", authn.Name())),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the authenticated system name.
func (p *Provider) Name() string {
	return p.authn.Name()
}

// Token returns a valid token, authenticating first when the cached one is missing or expired.
func (p *Provider) Token(ctx context.Context) (string, error) {
	if t, ok := p.current(); ok {
		return t.Value, nil
	}
	t, err := p.refresh(ctx)
	if err != nil {
		return "", err
	}
	return t.Value, nil
}

// Valid reports whether the cached token is usable now.
func (p *Provider) Valid() bool {
	_, ok := p.current()
	return ok
}

// Invalidate drops the cached token so the next call re-authenticates.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.token = Token{}
	p.mu.Unlock()
}

func (p *Provider) current() (Token, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token, p.token.validAt(p.now(), p.skew)
}

func (p *Provider) refresh(ctx context.Context) (Token, error) {
	v, err, _ := p.group.Do(p.authn.Name(), func() (any, error) {
		if t, ok := p.current(); ok {
			return t, nil
		}
		t, err := p.authn.Authenticate(ctx)
		if err != nil {
			return Token{}, fmt.Errorf("%w: %s: %w", ErrAuthFailed, p.authn.Name(), err)
		}
		p.mu.Lock()
		p.token = t
		p.mu.Unlock()
		p.logger.Debug("Token renewed", zap.Time("expires_at", t.ExpiresAt))
		return t, nil
	})
	if err != nil {
		return Token{}, err
	}
	return v.(Token), nil
}

// Run keeps every provider's token fresh until ctx is cancelled.
// Renewal failures are logged and retried on the next tick.
func Run(ctx context.Context, interval time.Duration, providers ...*Provider) {
	renew := func() {
		for _, p := range providers {
			if p.Valid() {
				continue
			}
			if _, err := p.refresh(ctx); err != nil && ctx.Err() == nil {
				p.logger.Warn("Token renewal failed", zap.Error(err))
			}
		}
	}

	renew()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			renew()
		}
	}
}
