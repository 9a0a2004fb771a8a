package controllerImp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"waira/entities"
	"waira/pkg/farm/export"
	"waira/pkg/farm/grid"
	"waira/pkg/farm/service"
	"waira/pkg/farm/serviceImp"
)

type FarmCtrl struct {
	svc *serviceImp.FarmSvc
	log *zap.Logger
}

func New(svc *serviceImp.FarmSvc, log *zap.Logger) *FarmCtrl {
	if log == nil {
		log = zap.NewNop()
	}
	return &FarmCtrl{svc: svc, log: log}
}

type farmResp struct {
	Layout grid.Layout       `json:"layout"`
	Rows   [][]entities.Cell `json:"filas"`
	Stats  grid.Stats        `json:"estadisticas"`
}

func render(g *grid.Grid) farmResp {
	return farmResp{Layout: g.Layout, Rows: g.Rows(), Stats: g.Stats()}
}

func (h *FarmCtrl) Load(c echo.Context) error {
	uid := c.Get("uid").(string)
	g, err := h.svc.LoadFarm(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, err, "No se pudo cargar la granja virtual.")
	}
	return c.JSON(http.StatusOK, render(g))
}

type initReq struct {
	Rows int `json:"filas"`
	Cols int `json:"columnas"`
}

func (h *FarmCtrl) Init(c echo.Context) error {
	uid := c.Get("uid").(string)
	layout := h.svc.Layout()
	req := initReq{Rows: layout.Rows, Cols: layout.Cols}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	if req.Rows <= 0 || req.Cols <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "filas y columnas deben ser positivas"})
	}
	cells, err := h.svc.InitializeGrid(c.Request().Context(), uid, req.Rows, req.Cols)
	if err != nil {
		return h.fail(c, err, "No se pudo crear la granja virtual.")
	}
	return c.JSON(http.StatusCreated, cells)
}

func (h *FarmCtrl) Stats(c echo.Context) error {
	uid := c.Get("uid").(string)
	st, err := h.svc.Stats(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, err, "No se pudo cargar la granja virtual.")
	}
	return c.JSON(http.StatusOK, st)
}

func (h *FarmCtrl) Export(c echo.Context) error {
	uid := c.Get("uid").(string)
	g, err := h.svc.Grid(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, err, "No se pudo cargar la granja virtual.")
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="granja.xlsx"`)
	res.WriteHeader(http.StatusOK)
	return export.Write(res, g)
}

func (h *FarmCtrl) ListCells(c echo.Context) error {
	uid := c.Get("uid").(string)
	t := entities.CellType(c.QueryParam("tipo"))
	if t != "" && !t.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tipo desconocido"})
	}
	cells, err := h.svc.CellsByType(c.Request().Context(), uid, t)
	if err != nil {
		return h.fail(c, err, "No se pudo cargar la granja virtual.")
	}
	return c.JSON(http.StatusOK, cells)
}

func (h *FarmCtrl) CellAt(c echo.Context) error {
	uid := c.Get("uid").(string)
	row, err1 := strconv.Atoi(c.QueryParam("fila"))
	col, err2 := strconv.Atoi(c.QueryParam("columna"))
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "fila y columna son obligatorias"})
	}
	cell, err := h.svc.CellAt(c.Request().Context(), uid, row, col)
	if err != nil {
		return h.fail(c, err, "No se pudo cargar la granja virtual.")
	}
	return c.JSON(http.StatusOK, cell)
}

func (h *FarmCtrl) GetCell(c echo.Context) error {
	uid := c.Get("uid").(string)
	cell, err := h.svc.Cell(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return h.fail(c, err, "No se pudo cargar la granja virtual.")
	}
	return c.JSON(http.StatusOK, cell)
}

type updateReq struct {
	Type entities.CellType `json:"tipo"`
	Data json.RawMessage   `json:"datos"`
}

func (h *FarmCtrl) UpdateCell(c echo.Context) error {
	uid := c.Get("uid").(string)
	var req updateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	if req.Type == entities.CellEmpty {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "use DELETE para vaciar una celda"})
	}
	e, err := entities.DecodeEntity(req.Type, req.Data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	cell, err := h.svc.UpdateCell(c.Request().Context(), uid, c.Param("id"), e)
	if err != nil {
		return h.fail(c, err, "No se pudo actualizar el elemento.")
	}
	return c.JSON(http.StatusOK, cell)
}

func (h *FarmCtrl) DeleteCell(c echo.Context) error {
	uid := c.Get("uid").(string)
	confirmed := c.QueryParam("confirm") == "true"
	cell, err := h.svc.ClearCell(c.Request().Context(), uid, c.Param("id"), confirmed)
	if err != nil {
		return h.fail(c, err, "No se pudo eliminar el elemento.")
	}
	return c.JSON(http.StatusOK, cell)
}

// fail maps service errors to status codes; anything unexpected is logged
// and answered with the generic message.
func (h *FarmCtrl) fail(c echo.Context, err error, generic string) error {
	var verrs entities.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCellNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Celda no encontrada."})
	case errors.Is(err, service.ErrReservedCell):
		return c.JSON(http.StatusConflict, echo.Map{"error": "La celda central superior es tu perfil de agricultor."})
	case errors.Is(err, service.ErrConfirmationRequired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Confirma la eliminación con confirm=true."})
	case errors.As(err, &verrs):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Datos inválidos.", "campos": verrs})
	}
	h.log.Error("farm request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": generic})
}
