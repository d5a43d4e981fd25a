package auth

import "context"

// AuthVerifier verifies a token and returns claims or an error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// Provider is the external identity provider surface the app consumes.
// Registration, credentials, and session issuance all live on the provider
// side; this service never stores passwords.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (Session, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SetDisplayName(ctx context.Context, idToken, name string) error
	Lookup(ctx context.Context, idToken string) (Claims, error)
}
