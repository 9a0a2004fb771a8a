package controllerImp

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"waira/entities"
	"waira/pkg/climate"
	"waira/pkg/draft"
	farmsvc "waira/pkg/farm/service"
	"waira/pkg/metrics"
)

// CellWriter is the slice of the farm service a wizard needs.
type CellWriter interface {
	Cell(ctx context.Context, owner, cellID string) (entities.Cell, error)
	UpdateCell(ctx context.Context, owner, cellID string, e entities.Entity) (entities.Cell, error)
}

type DraftCtrl struct {
	drafts  *draft.Registry
	cells   CellWriter
	metrics *metrics.Metrics
	log     *zap.Logger
}

func New(drafts *draft.Registry, cells CellWriter, m *metrics.Metrics, log *zap.Logger) *DraftCtrl {
	if log == nil {
		log = zap.NewNop()
	}
	return &DraftCtrl{drafts: drafts, cells: cells, metrics: m, log: log}
}

type draftView struct {
	*draft.Draft
	TotalSteps int                 `json:"totalPasos"`
	Risk       *climate.Assessment `json:"riesgo,omitempty"`
}

func (h *DraftCtrl) view(d *draft.Draft) draftView {
	v := draftView{Draft: d, TotalSteps: d.TotalSteps()}
	if a, ok := d.Risk(); ok {
		v.Risk = &a
	}
	return v
}

type openReq struct {
	CellID string            `json:"celdaId"`
	Kind   entities.CellType `json:"tipo"`
}

// Open starts a wizard on a cell. Editing a cell of the same kind starts
// from its current payload.
func (h *DraftCtrl) Open(c echo.Context) error {
	uid := c.Get("uid").(string)
	var req openReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	cell, err := h.cells.Cell(c.Request().Context(), uid, req.CellID)
	if err != nil {
		return h.fail(c, err)
	}
	var d *draft.Draft
	if cell.Entity != nil && cell.Type == req.Kind {
		d, err = draft.FromEntity(uid, cell.ID, cell.Entity)
	} else {
		d, err = draft.New(uid, cell.ID, req.Kind)
	}
	if err != nil {
		return h.fail(c, err)
	}
	h.drafts.Put(d)
	return c.JSON(http.StatusCreated, h.view(d))
}

func (h *DraftCtrl) Get(c echo.Context) error {
	uid := c.Get("uid").(string)
	d, err := h.drafts.Get(uid, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, h.view(d))
}

type patchReq struct {
	Fields map[string]any            `json:"campos"`
	Nested map[string]map[string]any `json:"anidados"`
}

func (h *DraftCtrl) Patch(c echo.Context) error {
	uid := c.Get("uid").(string)
	d, err := h.drafts.Get(uid, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	var req patchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	for k, v := range req.Fields {
		if err := d.Set(k, v); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
	}
	for parent, kv := range req.Nested {
		for k, v := range kv {
			if err := d.SetNested(parent, k, v); err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
		}
	}
	h.drafts.Put(d)
	return c.JSON(http.StatusOK, h.view(d))
}

// Next advances the wizard; past the last step the entity is written to
// the cell and the draft is closed.
func (h *DraftCtrl) Next(c echo.Context) error {
	uid := c.Get("uid").(string)
	d, err := h.drafts.Get(uid, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	var saved entities.Cell
	save := func(ctx context.Context, cellID string, e entities.Entity) error {
		cell, err := h.cells.UpdateCell(ctx, uid, cellID, e)
		saved = cell
		return err
	}
	e, err := d.Next(c.Request().Context(), save)
	if err != nil {
		return h.fail(c, err)
	}
	if e == nil {
		h.drafts.Put(d)
		return c.JSON(http.StatusOK, h.view(d))
	}
	if a, ok := d.Risk(); ok {
		h.metrics.RiskEvaluated(string(a.Level))
	}
	h.drafts.Delete(uid, d.ID)
	return c.JSON(http.StatusOK, echo.Map{"completado": true, "celda": saved})
}

func (h *DraftCtrl) Prev(c echo.Context) error {
	uid := c.Get("uid").(string)
	d, err := h.drafts.Get(uid, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if d.Prev() {
		h.drafts.Put(d)
	}
	return c.JSON(http.StatusOK, h.view(d))
}

func (h *DraftCtrl) AddItem(c echo.Context) error {
	uid := c.Get("uid").(string)
	d, err := h.drafts.Get(uid, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	var it entities.InventoryItem
	if err := c.Bind(&it); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	if it.Name == "" || it.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre y cantidad son obligatorios"})
	}
	if err := d.AddItem(it); err != nil {
		return h.fail(c, err)
	}
	h.drafts.Put(d)
	return c.JSON(http.StatusOK, h.view(d))
}

func (h *DraftCtrl) RemoveItem(c echo.Context) error {
	uid := c.Get("uid").(string)
	d, err := h.drafts.Get(uid, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "índice inválido"})
	}
	if _, err := d.RemoveItem(idx); err != nil {
		return h.fail(c, err)
	}
	h.drafts.Put(d)
	return c.JSON(http.StatusOK, h.view(d))
}

func (h *DraftCtrl) fail(c echo.Context, err error) error {
	var verrs entities.ValidationErrors
	switch {
	case errors.Is(err, draft.ErrNotFound), errors.Is(err, farmsvc.ErrCellNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, draft.ErrUnknownKind):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, draft.ErrItemIndex):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, draft.ErrNotWarehouse), errors.Is(err, farmsvc.ErrReservedCell):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.As(err, &verrs):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Datos inválidos.", "campos": verrs})
	}
	h.log.Error("draft request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo actualizar el elemento."})
}
