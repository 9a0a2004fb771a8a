package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const devTokenPrefix = "dev:"

type devAccount struct {
	uid, password, name string
}

// Dev is an in-memory identity backend for local runs and tests. Its ID
// tokens are "dev:<uid>" and verify as such.
type Dev struct {
	mu       sync.Mutex
	accounts map[string]devAccount
}

func NewDev() *Dev { return &Dev{accounts: map[string]devAccount{}} }

func (d *Dev) identity(email string, a devAccount, isNew bool) Identity {
	return Identity{
		UID: a.uid, Email: email, DisplayName: a.name,
		IDToken: devTokenPrefix + a.uid, ExpiresIn: "3600", NewUser: isNew,
	}
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}

func (d *Dev) SignUp(_ context.Context, email, password, displayName string) (Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validEmail(email) {
		return Identity{}, &Error{Code: "auth/invalid-email"}
	}
	if len(password) < 6 {
		return Identity{}, &Error{Code: "auth/weak-password"}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.accounts[email]; ok {
		return Identity{}, &Error{Code: "auth/email-already-in-use"}
	}
	a := devAccount{uid: uuid.NewString(), password: password, name: displayName}
	d.accounts[email] = a
	return d.identity(email, a, true), nil
}

func (d *Dev) SignIn(_ context.Context, email, password string) (Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.accounts[email]
	if !ok {
		return Identity{}, &Error{Code: "auth/user-not-found"}
	}
	if a.password != password {
		return Identity{}, &Error{Code: "auth/wrong-password"}
	}
	return d.identity(email, a, false), nil
}

// SignInWithGoogle treats the token as "<email>" or "<email>|<display name>".
func (d *Dev) SignInWithGoogle(_ context.Context, token string) (Identity, error) {
	email, name, _ := strings.Cut(token, "|")
	email = strings.ToLower(strings.TrimSpace(email))
	if !validEmail(email) {
		return Identity{}, &Error{Code: "auth/invalid-credential"}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if a, ok := d.accounts[email]; ok {
		if a.password != "" {
			return Identity{}, &Error{Code: "auth/account-exists-with-different-credential"}
		}
		return d.identity(email, a, false), nil
	}
	a := devAccount{uid: uuid.NewString(), name: strings.TrimSpace(name)}
	d.accounts[email] = a
	return d.identity(email, a, true), nil
}

func (d *Dev) SendPasswordReset(_ context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validEmail(email) {
		return &Error{Code: "auth/invalid-email"}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.accounts[email]; !ok {
		return &Error{Code: "auth/user-not-found"}
	}
	return nil
}

func (d *Dev) Verify(_ context.Context, token string) (string, error) {
	uid, ok := strings.CutPrefix(strings.TrimSpace(token), devTokenPrefix)
	if !ok || uid == "" {
		return "", &Error{Code: "auth/invalid-credential"}
	}
	return uid, nil
}
