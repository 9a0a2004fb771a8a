package controllerImp

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"waira/entities"
	"waira/pkg/auth"
	"waira/pkg/auth/controller"
	docrepo "waira/pkg/document/repository"
	"waira/pkg/farm/grid"
	"waira/pkg/middleware"
)

// UsersCollection holds one account record per uid.
const UsersCollection = "usuarios"

// FarmInitializer creates the empty grid a new account starts with.
type FarmInitializer interface {
	InitializeGrid(ctx context.Context, owner string, rows, cols int) ([]entities.Cell, error)
	Layout() grid.Layout
}

type authCtrl struct {
	provider auth.Provider
	store    docrepo.Store
	farm     FarmInitializer
	tz       string
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthController(p auth.Provider, store docrepo.Store, farm FarmInitializer, tz string, log *zap.Logger) controller.AuthController {
	if log == nil {
		log = zap.NewNop()
	}
	return &authCtrl{provider: p, store: store, farm: farm, tz: tz, log: log, now: time.Now}
}

type registerReq struct {
	Name            string `json:"nombre"`
	Surname         string `json:"apellido"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *authCtrl) authError(c echo.Context, flow auth.Flow, err error) error {
	if code := auth.Code(err); code != "" {
		status := http.StatusBadRequest
		if code == "auth/too-many-requests" {
			status = http.StatusTooManyRequests
		}
		return c.JSON(status, echo.Map{"error": auth.Message(flow, code), "code": code})
	}
	h.log.Error("auth provider", zap.String("flow", string(flow)), zap.Error(err))
	return c.JSON(http.StatusBadGateway, echo.Map{"error": auth.Message(flow, "")})
}

// setupAccount writes usuarios/{uid} and the empty farm grid.
func (h *authCtrl) setupAccount(ctx context.Context, u entities.User) error {
	if err := h.store.Set(ctx, UsersCollection, u.ID, u); err != nil {
		return err
	}
	l := h.farm.Layout()
	_, err := h.farm.InitializeGrid(ctx, u.ID, l.Rows, l.Cols)
	return err
}

func (h *authCtrl) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	if req.Password != req.ConfirmPassword {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Las contraseñas no coinciden"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "La contraseña debe tener al menos 6 caracteres"})
	}
	ctx := c.Request().Context()
	display := strings.TrimSpace(req.Name + " " + req.Surname)
	id, err := h.provider.SignUp(ctx, req.Email, req.Password, display)
	if err != nil {
		return h.authError(c, auth.FlowRegister, err)
	}
	u := entities.NewFarmerAccount(id.UID, req.Name, req.Surname, id.Email, h.tz, h.now())
	if err := h.setupAccount(ctx, u); err != nil {
		h.log.Error("register: account setup", zap.String("uid", id.UID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo guardar tu perfil de usuario."})
	}
	h.log.Info("account registered", zap.String("uid", id.UID))
	return c.JSON(http.StatusCreated, id)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *authCtrl) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	id, err := h.provider.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.authError(c, auth.FlowLogin, err)
	}
	return c.JSON(http.StatusOK, id)
}

// Google signs in with a Google ID token and sets up the account the first
// time that uid is seen.
func (h *authCtrl) Google(c echo.Context) error {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := c.Bind(&req); err != nil || req.IDToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "idToken es obligatorio"})
	}
	ctx := c.Request().Context()
	id, err := h.provider.SignInWithGoogle(ctx, req.IDToken)
	if err != nil {
		return h.authError(c, auth.FlowGoogle, err)
	}
	_, err = h.store.Get(ctx, UsersCollection, id.UID)
	switch {
	case errors.Is(err, docrepo.ErrNotFound):
		name, surname := splitDisplayName(id.DisplayName)
		u := entities.NewFarmerAccount(id.UID, name, surname, id.Email, h.tz, h.now())
		u.RegisteredWith = "google"
		if err := h.setupAccount(ctx, u); err != nil {
			h.log.Error("google: account setup", zap.String("uid", id.UID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo guardar tu perfil de usuario."})
		}
		id.NewUser = true
	case err != nil:
		h.log.Error("google: account lookup", zap.String("uid", id.UID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": auth.Message(auth.FlowGoogle, "")})
	default:
		id.NewUser = false
	}
	return c.JSON(http.StatusOK, id)
}

// splitDisplayName keeps the first two words as name and surname.
func splitDisplayName(s string) (string, string) {
	parts := strings.Fields(s)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[1]
	}
}

func (h *authCtrl) PasswordReset(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	if err := h.provider.SendPasswordReset(c.Request().Context(), req.Email); err != nil {
		return h.authError(c, auth.FlowReset, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"enviado": true})
}

func (h *authCtrl) WhoAmI(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	resp := echo.Map{"uid": uid}
	snap, err := h.store.Get(c.Request().Context(), UsersCollection, uid)
	if err == nil {
		var u entities.User
		if err := snap.Decode(&u); err == nil {
			resp["usuario"] = u
		}
	} else if !errors.Is(err, docrepo.ErrNotFound) {
		h.log.Warn("whoami", zap.String("uid", uid), zap.Error(err))
	}
	return c.JSON(http.StatusOK, resp)
}

// DevLogin pins a uid in the dev cookie. Only routed when AUTH_MODE=dev.
func (h *authCtrl) DevLogin(c echo.Context) error {
	uid := c.QueryParam("uid")
	if uid == "" {
		uid = middleware.DevDefaultUID
	}
	c.SetCookie(&http.Cookie{Name: middleware.DevCookie, Value: uid, Path: "/"})
	return c.JSON(http.StatusOK, map[string]string{"uid": uid})
}
