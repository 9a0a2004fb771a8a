package controllerImp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waira/database"
	docrepo "waira/pkg/document/repository"
	docImp "waira/pkg/document/repositoryImp"
)

type brokenStore struct{ docrepo.Store }

func (brokenStore) Get(context.Context, string, string) (docrepo.Snapshot, error) {
	return docrepo.Snapshot{}, errors.New("unavailable")
}

func get(t *testing.T, h *HealthCtrl) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	require.NoError(t, h.Health(c))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealth(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)

	code, body := get(t, NewHealthCtrl(db, docImp.NewSQLite(db)))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["status"].(map[string]any)["ok"])

	code, body = get(t, NewHealthCtrl(db, brokenStore{}))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	docs := body["checks"].(map[string]any)["documents"].(map[string]any)
	assert.Equal(t, "unavailable", docs["err"])
}
