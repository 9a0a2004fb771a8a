package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultEndpoint = "https://identitytoolkit.googleapis.com/v1"

// identityToolkit speaks the Firebase Auth REST API. The Admin SDK has no
// password sign-in, so these calls go over plain HTTP with the web API key.
type identityToolkit struct {
	endpoint string
	key      string
	http     *http.Client
}

func NewIdentityToolkit(endpoint, apiKey string) Provider {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &identityToolkit{
		endpoint: strings.TrimRight(endpoint, "/"),
		key:      apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

type restIdentity struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	FullName     string `json:"fullName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	IsNewUser    bool   `json:"isNewUser"`
}

func (r restIdentity) identity() Identity {
	name := r.DisplayName
	if name == "" {
		name = r.FullName
	}
	return Identity{
		UID: r.LocalID, Email: r.Email, DisplayName: name,
		IDToken: r.IDToken, RefreshToken: r.RefreshToken, ExpiresIn: r.ExpiresIn,
		NewUser: r.IsNewUser,
	}
}

func (c *identityToolkit) call(ctx context.Context, method string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	u := c.endpoint + "/accounts:" + method + "?key=" + url.QueryEscape(c.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity toolkit %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error.Message == "" {
			return fmt.Errorf("identity toolkit %s: http %d", method, resp.StatusCode)
		}
		return FromREST(e.Error.Message)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *identityToolkit) SignUp(ctx context.Context, email, password, displayName string) (Identity, error) {
	var out restIdentity
	err := c.call(ctx, "signUp", map[string]any{
		"email": email, "password": password, "returnSecureToken": true,
	}, &out)
	if err != nil {
		return Identity{}, err
	}
	if displayName != "" {
		// the account exists already; a failed rename is not worth failing sign-up
		if err := c.call(ctx, "update", map[string]any{
			"idToken": out.IDToken, "displayName": displayName,
		}, nil); err == nil {
			out.DisplayName = displayName
		}
	}
	return out.identity(), nil
}

func (c *identityToolkit) SignIn(ctx context.Context, email, password string) (Identity, error) {
	var out restIdentity
	err := c.call(ctx, "signInWithPassword", map[string]any{
		"email": email, "password": password, "returnSecureToken": true,
	}, &out)
	return out.identity(), err
}

func (c *identityToolkit) SignInWithGoogle(ctx context.Context, googleIDToken string) (Identity, error) {
	var out restIdentity
	err := c.call(ctx, "signInWithIdp", map[string]any{
		"postBody":            "id_token=" + url.QueryEscape(googleIDToken) + "&providerId=google.com",
		"requestUri":          "http://localhost",
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}, &out)
	return out.identity(), err
}

func (c *identityToolkit) SendPasswordReset(ctx context.Context, email string) error {
	return c.call(ctx, "sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET", "email": email,
	}, nil)
}
