package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waira/pkg/farm/grid"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"PORT", "TZ", "STORE_BACKEND", "AUTH_MODE", "NOTIFIER", "GRID_ROWS", "GRID_COLS", "OWNER_ROW", "OWNER_COL", "ALERTS_ALLOWED_DOMAINS", "FARM_CACHE_MAX_AGE"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "America/Lima", cfg.Timezone)
	assert.Equal(t, StoreSQLite, cfg.StoreBackend)
	assert.Equal(t, AuthDev, cfg.AuthMode)
	assert.Equal(t, grid.DefaultLayout(), cfg.Layout)
	assert.False(t, cfg.UsesFirebase())
	assert.Contains(t, cfg.AlertsAllowedDomains, "www.senamhi.gob.pe")
	assert.Equal(t, 30*time.Second, cfg.FarmCacheMaxAge)
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GRID_ROWS", "3")
	t.Setenv("GRID_COLS", "4")
	t.Setenv("OWNER_ROW", "1")
	t.Setenv("OWNER_COL", "1")
	t.Setenv("ALERTS_ALLOWED_DOMAINS", " a.pe , b.pe,")
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("FARM_CACHE_MAX_AGE", "2m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, grid.Layout{Rows: 3, Cols: 4, OwnerRow: 1, OwnerCol: 1}, cfg.Layout)
	assert.Equal(t, []string{"a.pe", "b.pe"}, cfg.AlertsAllowedDomains)
	assert.Equal(t, StoreSQLite, cfg.StoreBackend)
	assert.Equal(t, 2*time.Minute, cfg.FarmCacheMaxAge)
}

func TestValidate(t *testing.T) {
	base := AppConfig{StoreBackend: StoreSQLite, AuthMode: AuthDev, Notifier: NotifierLog, Layout: grid.DefaultLayout()}
	require.NoError(t, base.Validate())

	c := base
	c.Layout.OwnerCol = 9
	assert.ErrorContains(t, c.Validate(), "outside the grid")

	c = base
	c.AuthMode = AuthFirebase
	err := c.Validate()
	assert.ErrorContains(t, err, "FIREBASE_API_KEY")
	assert.ErrorContains(t, err, "FIREBASE_PROJECT_ID")

	c = base
	c.StoreBackend = "mongo"
	assert.ErrorContains(t, c.Validate(), "STORE_BACKEND")
}
