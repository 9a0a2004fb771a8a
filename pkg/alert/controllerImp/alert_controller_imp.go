package controllerImp

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"waira/entities"
	"waira/pkg/alert"
	"waira/pkg/alert/service"
)

type AlertCtrl struct {
	s   service.AlertService
	log *zap.Logger
}

func New(s service.AlertService, log *zap.Logger) *AlertCtrl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AlertCtrl{s: s, log: log}
}

func (h *AlertCtrl) List(c echo.Context) error {
	uid := c.Get("uid").(string)
	f := alert.Filter{
		Tab:      c.QueryParam("categoria"),
		Severity: c.QueryParam("severidad"),
		Location: c.QueryParam("ubicacion"),
		Search:   c.QueryParam("q"),
	}
	out, err := h.s.List(c.Request().Context(), uid, f)
	if err != nil {
		h.log.Error("alerts list", zap.String("uid", uid), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudieron cargar las alertas."})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AlertCtrl) Create(c echo.Context) error {
	var a entities.Alert
	if err := c.Bind(&a); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	a.ID = 0
	a.FromWeb = false
	err := h.s.Create(c.Request().Context(), &a)
	var verrs entities.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Datos inválidos.", "campos": verrs})
	case err != nil:
		h.log.Error("alert create", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo guardar la alerta."})
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *AlertCtrl) IngestURL(c echo.Context) error {
	uid := c.Get("uid").(string)
	var body struct {
		URL string `json:"url"`
	}
	if err := c.Bind(&body); err != nil || body.URL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "url required"})
	}
	a, err := h.s.IngestURL(c.Request().Context(), uid, body.URL)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, echo.Map{"guardada": true, "alerta": a})
	case errors.Is(err, service.ErrNotRelevant):
		return c.JSON(http.StatusOK, echo.Map{"guardada": false, "alerta": a})
	case errors.Is(err, service.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": "Esta fuente ya fue registrada."})
	case errors.Is(err, alert.ErrDomainNotAllowed):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "domain not allowed"})
	}
	h.log.Warn("alert ingest", zap.String("url", body.URL), zap.Error(err))
	return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
}
