package controllerImp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waira/database"
	"waira/entities"
	"waira/pkg/auth"
	docrepo "waira/pkg/document/repository"
	docImp "waira/pkg/document/repositoryImp"
	"waira/pkg/farm/grid"
)

type countingFarm struct{ owners []string }

func (f *countingFarm) InitializeGrid(_ context.Context, owner string, rows, cols int) ([]entities.Cell, error) {
	f.owners = append(f.owners, owner)
	return grid.NewEmpty(owner, rows, cols), nil
}

func (f *countingFarm) Layout() grid.Layout { return grid.DefaultLayout() }

type fixture struct {
	e     *echo.Echo
	store docrepo.Store
	farm  *countingFarm
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	store := docImp.NewSQLite(db)
	farm := &countingFarm{}
	h := NewAuthController(auth.NewDev(), store, farm, "America/Lima", nil)

	e := echo.New()
	e.POST("/auth/register", h.Register)
	e.POST("/auth/login", h.Login)
	e.POST("/auth/google", h.Google)
	e.POST("/auth/password-reset", h.PasswordReset)
	e.GET("/whoami", h.WhoAmI, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("uid", c.QueryParam("as"))
			return next(c)
		}
	})
	return fixture{e: e, store: store, farm: farm}
}

func (f fixture) post(t *testing.T, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

const anaSignup = `{"nombre":"Ana","apellido":"Mamani","email":"ana@waira.pe","password":"secreto","confirmPassword":"secreto"}`

func TestRegister_CreatesAccountAndGrid(t *testing.T) {
	f := newFixture(t)

	code, body := f.post(t, "/auth/register", anaSignup)
	require.Equal(t, http.StatusCreated, code)
	uid := body["uid"].(string)

	snap, err := f.store.Get(context.Background(), UsersCollection, uid)
	require.NoError(t, err)
	var u entities.User
	require.NoError(t, snap.Decode(&u))
	assert.Equal(t, "agricultor", u.Kind)
	assert.Equal(t, entities.UserSettings{AlertsEnabled: true, DarkTheme: false, Language: "es"}, u.Settings)
	assert.Equal(t, "America/Lima", u.Metadata.TimeZone)
	assert.Equal(t, []string{uid}, f.farm.owners)

	code, body = f.post(t, "/auth/register", anaSignup)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Este correo electrónico ya está en uso por otra cuenta.", body["error"])
	assert.Equal(t, "auth/email-already-in-use", body["code"])
}

func TestRegister_LocalChecks(t *testing.T) {
	f := newFixture(t)
	_, body := f.post(t, "/auth/register", `{"email":"a@b.pe","password":"secreto","confirmPassword":"otro"}`)
	assert.Equal(t, "Las contraseñas no coinciden", body["error"])

	_, body = f.post(t, "/auth/register", `{"email":"a@b.pe","password":"123","confirmPassword":"123"}`)
	assert.Equal(t, "La contraseña debe tener al menos 6 caracteres", body["error"])
	assert.Empty(t, f.farm.owners)
}

func TestLoginAndReset_Messages(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/auth/register", anaSignup)

	code, body := f.post(t, "/auth/login", `{"email":"ana@waira.pe","password":"secreto"}`)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["idToken"])

	_, body = f.post(t, "/auth/login", `{"email":"ana@waira.pe","password":"nope"}`)
	assert.Equal(t, "Contraseña incorrecta.", body["error"])

	_, body = f.post(t, "/auth/login", `{"email":"nadie@waira.pe","password":"nope"}`)
	assert.Equal(t, "No existe una cuenta con este correo electrónico.", body["error"])

	code, _ = f.post(t, "/auth/password-reset", `{"email":"ana@waira.pe"}`)
	assert.Equal(t, http.StatusOK, code)

	_, body = f.post(t, "/auth/password-reset", `{"email":"mal-correo"}`)
	assert.Equal(t, "Correo electrónico inválido.", body["error"])
}

func TestGoogle_FirstSignInSetsUpOnce(t *testing.T) {
	f := newFixture(t)

	code, body := f.post(t, "/auth/google", `{"idToken":"rosa@waira.pe|Rosa Quispe Huamán"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["isNewUser"])
	uid := body["uid"].(string)

	snap, err := f.store.Get(context.Background(), UsersCollection, uid)
	require.NoError(t, err)
	var u entities.User
	require.NoError(t, snap.Decode(&u))
	assert.Equal(t, "Rosa", u.Name)
	assert.Equal(t, "Quispe", u.Surname)
	assert.Equal(t, "google", u.RegisteredWith)

	_, body = f.post(t, "/auth/google", `{"idToken":"rosa@waira.pe"}`)
	assert.Nil(t, body["isNewUser"], "omitted when false")
	assert.Len(t, f.farm.owners, 1)

	f.post(t, "/auth/register", anaSignup)
	_, body = f.post(t, "/auth/google", `{"idToken":"ana@waira.pe"}`)
	assert.Equal(t, "Ya existe una cuenta con el mismo correo pero con diferente método de inicio de sesión.", body["error"])
}

func TestWhoAmI(t *testing.T) {
	f := newFixture(t)
	_, body := f.post(t, "/auth/register", anaSignup)
	uid := body["uid"].(string)

	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami?as="+uid, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"nombre":"Ana"`)

	rec = httptest.NewRecorder()
	f.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami?as=ghost", nil))
	assert.NotContains(t, rec.Body.String(), "usuario")
}
