package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// MESSAGES
// =============================================================================

func TestMessage_PerFlow(t *testing.T) {
	tests := []struct {
		flow Flow
		code string
		want string
	}{
		{FlowLogin, "auth/invalid-credential", "Credenciales incorrectas. Por favor, verifica tu correo y contraseña."},
		{FlowLogin, "auth/wrong-password", "Contraseña incorrecta."},
		{FlowLogin, "auth/too-many-requests", "Demasiados intentos fallidos. Por favor, inténtalo más tarde."},
		{FlowReset, "auth/too-many-requests", "Demasiados intentos. Por favor, inténtalo más tarde."},
		{FlowReset, "auth/user-not-found", "No existe una cuenta con este correo electrónico."},
		{FlowRegister, "auth/email-already-in-use", "Este correo electrónico ya está en uso por otra cuenta."},
		{FlowRegister, "auth/weak-password", "La contraseña es demasiado débil."},
		{FlowGoogle, "auth/popup-closed-by-user", "Has cerrado la ventana de inicio de sesión."},
		{FlowGoogle, "auth/account-exists-with-different-credential", "Ya existe una cuenta con el mismo correo pero con diferente método de inicio de sesión."},
	}
	for _, tt := range tests {
		t.Run(string(tt.flow)+"/"+tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.flow, tt.code))
		})
	}
}

func TestMessage_UnknownCodeFallsBack(t *testing.T) {
	assert.Equal(t, "Ocurrió un error al iniciar sesión", Message(FlowLogin, "auth/weak-password"))
	assert.Equal(t, "Ocurrió un error durante el registro", Message(FlowRegister, ""))
	assert.Equal(t, "Error al iniciar sesión con Google", Message(FlowGoogle, "auth/network-request-failed"))
	assert.Equal(t, "Ocurrió un error al enviar el correo", Message(FlowReset, "auth/internal-error"))
}

func TestFromREST(t *testing.T) {
	e := FromREST("WEAK_PASSWORD : Password should be at least 6 characters")
	assert.Equal(t, "auth/weak-password", e.Code)
	assert.Equal(t, "Password should be at least 6 characters", e.Detail)

	assert.Equal(t, "auth/user-not-found", FromREST("EMAIL_NOT_FOUND").Code)
	assert.Equal(t, "auth/operation-not-allowed", FromREST("OPERATION_NOT_ALLOWED").Code)

	var err error = FromREST("EMAIL_EXISTS")
	assert.Equal(t, "auth/email-already-in-use", Code(err))
	assert.Equal(t, "", Code(errors.New("plain")))
}

// =============================================================================
// IDENTITY TOOLKIT
// =============================================================================

func toolkitServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k1", r.URL.Query().Get("key"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/accounts:signUp":
			if body["email"] == "taken@waira.pe" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":400,"message":"EMAIL_EXISTS"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"localId":"uid-1","email":"ana@waira.pe","idToken":"tok","refreshToken":"ref","expiresIn":"3600"}`))
		case "/v1/accounts:update":
			assert.Equal(t, "tok", body["idToken"])
			_, _ = w.Write([]byte(`{}`))
		case "/v1/accounts:signInWithPassword":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"INVALID_LOGIN_CREDENTIALS"}}`))
		case "/v1/accounts:signInWithIdp":
			assert.Contains(t, body["postBody"], "providerId=google.com")
			_, _ = w.Write([]byte(`{"localId":"g-1","email":"g@waira.pe","fullName":"Rosa Quispe","idToken":"t","isNewUser":true}`))
		case "/v1/accounts:sendOobCode":
			assert.Equal(t, "PASSWORD_RESET", body["requestType"])
			_, _ = w.Write([]byte(`{"email":"ana@waira.pe"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestIdentityToolkit(t *testing.T) {
	srv := toolkitServer(t)
	defer srv.Close()
	p := NewIdentityToolkit(srv.URL+"/v1", "k1")
	ctx := context.Background()

	id, err := p.SignUp(ctx, "ana@waira.pe", "secreto", "Ana Mamani")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", id.UID)
	assert.Equal(t, "Ana Mamani", id.DisplayName)

	_, err = p.SignUp(ctx, "taken@waira.pe", "secreto", "")
	assert.Equal(t, "auth/email-already-in-use", Code(err))

	_, err = p.SignIn(ctx, "ana@waira.pe", "mal")
	assert.Equal(t, "auth/invalid-credential", Code(err))

	g, err := p.SignInWithGoogle(ctx, "google-token")
	require.NoError(t, err)
	assert.True(t, g.NewUser)
	assert.Equal(t, "Rosa Quispe", g.DisplayName)

	assert.NoError(t, p.SendPasswordReset(ctx, "ana@waira.pe"))
}

// =============================================================================
// DEV PROVIDER + VERIFIERS
// =============================================================================

func TestDevProvider(t *testing.T) {
	d := NewDev()
	ctx := context.Background()

	_, err := d.SignUp(ctx, "no-at-sign", "secreto", "")
	assert.Equal(t, "auth/invalid-email", Code(err))
	_, err = d.SignUp(ctx, "ana@waira.pe", "123", "")
	assert.Equal(t, "auth/weak-password", Code(err))

	id, err := d.SignUp(ctx, "Ana@Waira.pe", "secreto", "Ana")
	require.NoError(t, err)
	_, err = d.SignUp(ctx, "ana@waira.pe", "secreto", "")
	assert.Equal(t, "auth/email-already-in-use", Code(err))

	_, err = d.SignIn(ctx, "ana@waira.pe", "otro")
	assert.Equal(t, "auth/wrong-password", Code(err))
	_, err = d.SignIn(ctx, "pedro@waira.pe", "x")
	assert.Equal(t, "auth/user-not-found", Code(err))

	in, err := d.SignIn(ctx, "ana@waira.pe", "secreto")
	require.NoError(t, err)
	uid, err := d.Verify(ctx, in.IDToken)
	require.NoError(t, err)
	assert.Equal(t, id.UID, uid)

	_, err = d.SignInWithGoogle(ctx, "ana@waira.pe")
	assert.Equal(t, "auth/account-exists-with-different-credential", Code(err))

	g, err := d.SignInWithGoogle(ctx, "rosa@waira.pe|Rosa Quispe")
	require.NoError(t, err)
	assert.True(t, g.NewUser)
	g, err = d.SignInWithGoogle(ctx, "rosa@waira.pe")
	require.NoError(t, err)
	assert.False(t, g.NewUser)

	assert.NoError(t, d.SendPasswordReset(ctx, "ana@waira.pe"))
	assert.Equal(t, "auth/user-not-found", Code(d.SendPasswordReset(ctx, "x@y.pe")))

	_, err = d.Verify(ctx, "Bearer nonsense")
	assert.Error(t, err)
}

type fakeAdmin struct{ uid string }

func (f fakeAdmin) VerifyIDToken(_ context.Context, tok string) (*fbauth.Token, error) {
	if tok != "good" {
		return nil, errors.New("ID token has invalid signature")
	}
	return &fbauth.Token{UID: f.uid}, nil
}

func TestFirebaseVerifier(t *testing.T) {
	v := NewFirebaseVerifier(fakeAdmin{uid: "u1"})
	uid, err := v.Verify(context.Background(), " good ")
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)

	_, err = v.Verify(context.Background(), "bad")
	assert.Equal(t, "auth/invalid-credential", Code(err))
}
