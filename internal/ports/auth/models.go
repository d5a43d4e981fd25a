package auth

// Claims is the identity information extracted from a verified token.
type Claims struct {
	UserID string
	Email  string
	Name   string
}

// Session is what the identity provider hands back after sign-in/sign-up.
type Session struct {
	UserID       string
	Email        string
	Name         string
	IDToken      string
	RefreshToken string
	ExpiresInSec int64
}
