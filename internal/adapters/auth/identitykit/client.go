package identitykit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alaraguvercin/kolay-hatirla/internal/platform/httpclient"
	"github.com/alaraguvercin/kolay-hatirla/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("identitykit client not configured")
	ErrUnauthorized  = errors.New("identitykit unauthorized")
	ErrUpstream      = errors.New("identitykit upstream error")
)

// Config for the identity provider client.
// BaseURL and APIKey come from env vars in the service that instantiates it.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the external email/password identity provider
// (identity-toolkit REST surface). All account and credential state lives
// on the provider side.
type Client struct {
	apiKey string
	http   *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiKey: strings.TrimSpace(cfg.APIKey),
		http:   hc,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

type sessionResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (auth.Session, error) {
	return c.credentialCall(ctx, "/v1/accounts:signUp", email, password)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (auth.Session, error) {
	return c.credentialCall(ctx, "/v1/accounts:signInWithPassword", email, password)
}

func (c *Client) credentialCall(ctx context.Context, path, email, password string) (auth.Session, error) {
	if !c.IsConfigured() {
		return auth.Session{}, ErrNotConfigured
	}

	req := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}

	var out sessionResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, path+"?key="+c.apiKey, nil, req, &out); err != nil {
		return auth.Session{}, asProviderError(err)
	}

	if strings.TrimSpace(out.LocalID) == "" {
		return auth.Session{}, fmt.Errorf("%w: response missing localId", ErrUpstream)
	}

	return auth.Session{
		UserID:       out.LocalID,
		Email:        strings.TrimSpace(out.Email),
		Name:         strings.TrimSpace(out.DisplayName),
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		ExpiresInSec: parseSeconds(out.ExpiresIn),
	}, nil
}

// SetDisplayName updates the profile right after sign-up.
func (c *Client) SetDisplayName(ctx context.Context, idToken, name string) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	req := map[string]any{
		"idToken":           idToken,
		"displayName":       strings.TrimSpace(name),
		"returnSecureToken": false,
	}

	if err := c.http.DoJSON(ctx, http.MethodPost, "/v1/accounts:update?key="+c.apiKey, nil, req, nil); err != nil {
		return asProviderError(err)
	}
	return nil
}

// Lookup resolves an ID token into account claims on the provider side.
func (c *Client) Lookup(ctx context.Context, idToken string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	req := map[string]any{
		"idToken": idToken,
	}

	var out struct {
		Users []struct {
			LocalID     string `json:"localId"`
			Email       string `json:"email"`
			DisplayName string `json:"displayName"`
			Disabled    bool   `json:"disabled"`
		} `json:"users"`
	}

	if err := c.http.DoJSON(ctx, http.MethodPost, "/v1/accounts:lookup?key="+c.apiKey, nil, req, &out); err != nil {
		return auth.Claims{}, asProviderError(err)
	}

	if len(out.Users) == 0 || strings.TrimSpace(out.Users[0].LocalID) == "" {
		return auth.Claims{}, ErrUnauthorized
	}
	if out.Users[0].Disabled {
		return auth.Claims{}, &ProviderError{Code: CodeUserDisabled}
	}

	return auth.Claims{
		UserID: out.Users[0].LocalID,
		Email:  strings.TrimSpace(out.Users[0].Email),
		Name:   strings.TrimSpace(out.Users[0].DisplayName),
	}, nil
}

func parseSeconds(s string) int64 {
	var n int64
	for _, r := range strings.TrimSpace(s) {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int64(r-'0')
	}
	return n
}
