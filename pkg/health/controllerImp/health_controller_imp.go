package controllerImp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	docrepo "waira/pkg/document/repository"
)

var appStart = time.Now()

// pingCollection is never written; a not-found answer proves the store is reachable.
const pingCollection = "_salud"

type HealthCtrl struct {
	db    *gorm.DB
	store docrepo.Store
}

func NewHealthCtrl(db *gorm.DB, store docrepo.Store) *HealthCtrl {
	return &HealthCtrl{db: db, store: store}
}

type check struct {
	OK  bool   `json:"ok"`
	Err string `json:"err,omitempty"`
}

func (h *HealthCtrl) database(ctx context.Context) check {
	if h.db == nil {
		return check{Err: "gorm db is nil"}
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return check{Err: "db.DB(): " + err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return check{Err: "ping: " + err.Error()}
	}
	return check{OK: true}
}

func (h *HealthCtrl) documents(ctx context.Context) check {
	if h.store == nil {
		return check{Err: "document store is nil"}
	}
	_, err := h.store.Get(ctx, pingCollection, "ping")
	if err != nil && !errors.Is(err, docrepo.ErrNotFound) {
		return check{Err: err.Error()}
	}
	return check{OK: true}
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	db := h.database(ctx)
	docs := h.documents(ctx)

	allOK := db.OK && docs.OK
	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}

	resp := map[string]any{
		"status":     map[string]any{"ok": allOK},
		"uptime_sec": int(time.Since(appStart).Seconds()),
		"checks": map[string]any{
			"database":  db,
			"documents": docs,
		},
		"time": time.Now().Format(time.RFC3339),
	}

	return c.JSON(status, resp)
}
