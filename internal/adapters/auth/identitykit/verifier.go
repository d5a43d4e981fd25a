package identitykit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alaraguvercin/kolay-hatirla/internal/ports/auth"
)

var (
	ErrTokenEmpty   = errors.New("token is empty")
	ErrTokenExpired = errors.New("token is expired")
)

// Verifier implements auth.AuthVerifier against the identity provider.
// ID tokens are JWTs; expiry is checked locally before the remote lookup so
// obviously-stale tokens never cost a network round trip. The lookup call is
// what actually authenticates the token.
type Verifier struct {
	client *Client
	now    func() time.Time
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{
		client: client,
		now:    time.Now,
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	if expired, err := v.locallyExpired(token); err == nil && expired {
		return auth.Claims{}, ErrTokenExpired
	}

	claims, err := v.client.Lookup(ctx, token)
	if err != nil {
		return auth.Claims{}, err
	}

	claims.UserID = strings.TrimSpace(claims.UserID)
	if claims.UserID == "" {
		return auth.Claims{}, errors.New("identitykit claims missing user id")
	}

	return claims, nil
}

// locallyExpired reads exp from the unverified token payload. A token that
// fails to parse is passed through to the provider, which rejects it anyway.
func (v *Verifier) locallyExpired(token string) (bool, error) {
	parser := jwt.NewParser()

	var claims jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return false, err
	}
	if claims.ExpiresAt == nil {
		return false, nil
	}
	return claims.ExpiresAt.Time.Before(v.now()), nil
}
