package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"waira/pkg/farm/grid"
)

const (
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"

	AuthDev      = "dev"
	AuthFirebase = "firebase"

	NotifierLog = "log"
	NotifierFCM = "fcm"
)

type AppConfig struct {
	Port     string
	Timezone string
	DBPath   string
	LogLevel string

	StoreBackend string
	AuthMode     string
	Notifier     string

	FirebaseProjectID   string
	FirebaseCredentials string
	FirebaseAPIKey      string

	Layout grid.Layout

	// FarmCacheMaxAge bounds how long a cached grid is served before it is
	// re-read. Writers outside this process never invalidate the cache.
	FarmCacheMaxAge time.Duration

	AlertsAllowedDomains []string
	AlertsMaxBytes       int64
}

// UsesFirebase reports whether any component needs the Firebase app.
func (c AppConfig) UsesFirebase() bool {
	return c.StoreBackend == StoreFirestore || c.AuthMode == AuthFirebase || c.Notifier == NotifierFCM
}

func get(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if n, err := strconv.Atoi(get(k, "")); err == nil {
		return n
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(get(k, "")); err == nil {
		return d
	}
	return def
}

func getList(k, def string) []string {
	var out []string
	for _, s := range strings.Split(get(k, def), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Load reads .env when present, then the environment. It does not log;
// the logger depends on LOG_LEVEL, so callers log the result with Log.
func Load() (AppConfig, error) {
	envErr := godotenv.Load()

	d := grid.DefaultLayout()
	cfg := AppConfig{
		Port:     get("PORT", "8080"),
		Timezone: get("TZ", "America/Lima"),
		DBPath:   get("DB_PATH", "waira.db"),
		LogLevel: get("LOG_LEVEL", "info"),

		StoreBackend: strings.ToLower(get("STORE_BACKEND", StoreSQLite)),
		AuthMode:     strings.ToLower(get("AUTH_MODE", AuthDev)),
		Notifier:     strings.ToLower(get("NOTIFIER", NotifierLog)),

		FirebaseProjectID:   get("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentials: get("FIREBASE_CREDENTIALS", ""),
		FirebaseAPIKey:      get("FIREBASE_API_KEY", ""),

		Layout: grid.Layout{
			Rows:     getInt("GRID_ROWS", d.Rows),
			Cols:     getInt("GRID_COLS", d.Cols),
			OwnerRow: getInt("OWNER_ROW", d.OwnerRow),
			OwnerCol: getInt("OWNER_COL", d.OwnerCol),
		},

		FarmCacheMaxAge: getDuration("FARM_CACHE_MAX_AGE", 30*time.Second),

		AlertsAllowedDomains: getList("ALERTS_ALLOWED_DOMAINS", "www.senamhi.gob.pe,www.gob.pe,www.midagri.gob.pe"),
		AlertsMaxBytes:       int64(getInt("ALERTS_MAX_BYTES", 1_500_000)),
	}
	if envErr != nil && !os.IsNotExist(envErr) {
		return cfg, envErr
	}
	return cfg, cfg.Validate()
}

// Log writes the effective configuration. Secrets are reported as set/unset.
func (c AppConfig) Log(l *zap.Logger) {
	l.Info("[cfg]",
		zap.String("port", c.Port),
		zap.String("tz", c.Timezone),
		zap.String("db_path", c.DBPath),
		zap.String("store", c.StoreBackend),
		zap.String("auth", c.AuthMode),
		zap.String("notifier", c.Notifier),
		zap.String("firebase_project", c.FirebaseProjectID),
		zap.Bool("firebase_api_key", c.FirebaseAPIKey != ""),
		zap.Int("rows", c.Layout.Rows),
		zap.Int("cols", c.Layout.Cols),
		zap.Duration("farm_cache_max_age", c.FarmCacheMaxAge),
		zap.Strings("alert_domains", c.AlertsAllowedDomains),
	)
}
