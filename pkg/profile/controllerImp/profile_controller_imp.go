package controllerImp

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"waira/entities"
	"waira/pkg/notify"
	"waira/pkg/profile/repository"
)

type ProfileCtrl struct {
	repo     repository.ProfileRepository
	notifier notify.Notifier
	log      *zap.Logger
}

func New(repo repository.ProfileRepository, n notify.Notifier, log *zap.Logger) *ProfileCtrl {
	if n == nil {
		n = notify.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileCtrl{repo: repo, notifier: n, log: log}
}

// Get answers with an empty profile when the farmer has not filled one in.
func (h *ProfileCtrl) Get(c echo.Context) error {
	uid := c.Get("uid").(string)
	p, err := h.repo.Get(c.Request().Context(), uid)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusOK, &entities.Profile{UID: uid})
	}
	if err != nil {
		h.log.Error("profile get", zap.String("uid", uid), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo cargar tu perfil."})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProfileCtrl) Put(c echo.Context) error {
	uid := c.Get("uid").(string)
	ctx := c.Request().Context()
	var p entities.Profile
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	if strings.TrimSpace(p.Name) == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":  "Datos inválidos.",
			"campos": entities.ValidationErrors{{Field: "nombre", Message: "es obligatorio"}},
		})
	}
	p.UID = uid
	p.UpdatedAt = time.Now().UTC()
	if p.PushToken == "" {
		if prev, err := h.repo.Get(ctx, uid); err == nil {
			p.PushToken = prev.PushToken
		}
	}
	if err := h.repo.Save(ctx, &p); err != nil {
		h.log.Error("profile save", zap.String("uid", uid), zap.Error(err))
		h.send(c, uid, notify.Notification{Title: "Error", Body: "No se pudo guardar tu perfil de usuario.", Level: notify.Failure})
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo guardar tu perfil de usuario."})
	}
	h.send(c, uid, notify.Notification{
		Title: "Perfil actualizado",
		Body:  "Tu perfil de agricultor ha sido actualizado correctamente.",
		Level: notify.Success,
	})
	return c.JSON(http.StatusOK, &p)
}

func (h *ProfileCtrl) send(c echo.Context, uid string, n notify.Notification) {
	if err := h.notifier.Notify(c.Request().Context(), uid, n); err != nil {
		h.log.Warn("notify", zap.String("uid", uid), zap.Error(err))
	}
}
