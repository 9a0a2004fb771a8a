package controllerImp

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"waira/pkg/climate"
	"waira/pkg/metrics"
)

type RiskCtrl struct {
	table   climate.Table
	metrics *metrics.Metrics
}

func New(table climate.Table, m *metrics.Metrics) *RiskCtrl {
	return &RiskCtrl{table: table, metrics: m}
}

// Evaluate scores the posted crop answers. Nothing is required: a partial
// form scores on what it has, and an unknown or missing tipo takes the
// default base. Answers nested under ubicacion or movilidad are read too.
func (h *RiskCtrl) Evaluate(c echo.Context) error {
	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	in := climate.InputFromFields(fields)
	in.CropType = strings.TrimSpace(in.CropType)
	a := h.table.Assess(in)
	h.metrics.RiskEvaluated(string(a.Level))
	return c.JSON(http.StatusOK, a)
}
