package auth

import (
	"context"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
)

// TokenVerifier is the part of the Admin SDK auth client used here.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

type firebaseVerifier struct{ client TokenVerifier }

// NewFirebaseVerifier checks Firebase ID tokens with the Admin SDK.
func NewFirebaseVerifier(client TokenVerifier) Verifier {
	return &firebaseVerifier{client: client}
}

func (v *firebaseVerifier) Verify(ctx context.Context, token string) (string, error) {
	tok, err := v.client.VerifyIDToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return "", &Error{Code: "auth/invalid-credential", Detail: err.Error()}
	}
	return tok.UID, nil
}
