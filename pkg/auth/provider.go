package auth

import "context"

// Identity is what a successful sign-up or sign-in returns.
type Identity struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName,omitempty"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    string `json:"expiresIn,omitempty"`
	// NewUser is only meaningful for federated sign-in.
	NewUser bool `json:"isNewUser,omitempty"`
}

// Provider runs the password and Google flows against an identity backend.
// Failures the user can act on come back as *Error.
type Provider interface {
	SignUp(ctx context.Context, email, password, displayName string) (Identity, error)
	SignIn(ctx context.Context, email, password string) (Identity, error)
	// SignInWithGoogle exchanges a Google ID token for a session.
	SignInWithGoogle(ctx context.Context, googleIDToken string) (Identity, error)
	SendPasswordReset(ctx context.Context, email string) error
}

// Verifier resolves a bearer token to a uid.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}
