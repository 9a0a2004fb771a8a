package controllerImp

import (
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
	docImp "waira/pkg/document/repositoryImp"
	"waira/pkg/farm/grid"
	"waira/pkg/farm/repositoryImp"
	"waira/pkg/farm/serviceImp"
	"waira/pkg/notify"
)

func newEcho(t *testing.T) *echo.Echo {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "farm.db"))
	require.NoError(t, err)
	svc := serviceImp.New(repositoryImp.New(docImp.NewSQLite(db)), grid.DefaultLayout(), notify.Nop{}, nil, nil)
	h := New(svc, nil)

	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("uid", c.Request().Header.Get("X-Test-Uid"))
			return next(c)
		}
	})
	e.GET("/farm", h.Load)
	e.GET("/farm/stats", h.Stats)
	e.GET("/farm/export", h.Export)
	e.GET("/farm/cells", h.ListCells)
	e.GET("/farm/cells/at", h.CellAt)
	e.GET("/farm/cells/:id", h.GetCell)
	e.PUT("/farm/cells/:id", h.UpdateCell)
	e.DELETE("/farm/cells/:id", h.DeleteCell)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("X-Test-Uid", "u1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func cellAt(t *testing.T, e *echo.Echo, row, col string) entities.Cell {
	t.Helper()
	rec := do(e, http.MethodGet, "/farm/cells/at?fila="+row+"&columna="+col, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var c entities.Cell
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	return c
}

func TestFarmHTTP_LoadUpdateDelete(t *testing.T) {
	e := newEcho(t)

	rec := do(e, http.MethodGet, "/farm", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var farm struct {
		Rows  [][]json.RawMessage `json:"filas"`
		Stats grid.Stats          `json:"estadisticas"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &farm))
	assert.Len(t, farm.Rows, 5)
	assert.Equal(t, 25, farm.Stats.Empty)

	target := cellAt(t, e, "2", "3")

	rec = do(e, http.MethodPut, "/farm/cells/"+target.ID,
		`{"tipo":"reservorio","datos":{"nombre":"Qocha alta","tipo":"natural","capacidad":12000,"nivel_actual":70}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/farm/stats", "")
	var st grid.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 1, st.Reservoirs)
	assert.Equal(t, 12000.0, st.WaterCapacity)

	rec = do(e, http.MethodGet, "/farm/cells?tipo=reservorio", "")
	var list []entities.Cell
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "natural", list[0].Subtype)

	rec = do(e, http.MethodDelete, "/farm/cells/"+target.ID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodDelete, "/farm/cells/"+target.ID+"?confirm=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, cellAt(t, e, "2", "3").Empty())
}

func TestFarmHTTP_Errors(t *testing.T) {
	e := newEcho(t)
	require.Equal(t, http.StatusOK, do(e, http.MethodGet, "/farm", "").Code)

	owner := cellAt(t, e, "0", "2")
	rec := do(e, http.MethodPut, "/farm/cells/"+owner.ID, `{"tipo":"cultivo","datos":{"nombre":"Papa","tipo":"papa"}}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	other := cellAt(t, e, "1", "0")
	rec = do(e, http.MethodPut, "/farm/cells/"+other.ID, `{"tipo":"cultivo","datos":{"tipo":"papa"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"campo":"nombre"`)

	rec = do(e, http.MethodPut, "/farm/cells/"+other.ID, `{"tipo":"granero","datos":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/farm/cells/nope", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/farm/cells/at?fila=x", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/farm/cells?tipo=granero", "").Code)
}

func TestFarmHTTP_Export(t *testing.T) {
	e := newEcho(t)
	require.Equal(t, http.StatusOK, do(e, http.MethodGet, "/farm", "").Code)

	rec := do(e, http.MethodGet, "/farm/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "granja.xlsx")
	assert.True(t, rec.Body.Len() > 0)
}
