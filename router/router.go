package router

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	alertCtrl "waira/pkg/alert/controller"
	authCtrl "waira/pkg/auth/controller"
	riskCtrl "waira/pkg/climate/controller"
	draftCtrl "waira/pkg/draft/controller"
	farmCtrl "waira/pkg/farm/controller"
	"waira/pkg/logger"
	"waira/pkg/metrics"
	"waira/pkg/middleware"
	profileCtrl "waira/pkg/profile/controller"
)

// Controllers is every handler group the API serves.
type Controllers struct {
	Health  interface{ Health(echo.Context) error }
	Auth    authCtrl.AuthController
	Farm    farmCtrl.FarmController
	Profile profileCtrl.ProfileController
	Draft   draftCtrl.DraftController
	Risk    riskCtrl.RiskController
	Alert   alertCtrl.AlertController
}

// PublicPaths are served without a signed-in user.
var PublicPaths = []string{"/health", "/metrics", "/auth/"}

// New registers middleware and routes on e. With a nil verifier requests
// run as the dev cookie user and /devlogin is routed; otherwise every path
// outside PublicPaths needs a verified bearer token.
func New(e *echo.Echo, log *zap.Logger, m *metrics.Metrics, verifier middleware.TokenVerifier, h Controllers) *echo.Echo {
	e.Use(echoMiddleware.Recover())
	e.Use(m.Middleware())
	e.Use(logger.RequestLogger(log))
	if verifier == nil {
		e.Use(middleware.DevLogin())
		e.GET("/devlogin", h.Auth.DevLogin)
	} else {
		e.Use(middleware.Bearer(verifier, middleware.PublicPaths(PublicPaths...)))
	}

	e.GET("/health", h.Health.Health)
	e.GET("/metrics", m.Handler())

	a := e.Group("/auth")
	a.POST("/register", h.Auth.Register)
	a.POST("/login", h.Auth.Login)
	a.POST("/google", h.Auth.Google)
	a.POST("/password-reset", h.Auth.PasswordReset)
	e.GET("/whoami", h.Auth.WhoAmI)

	f := e.Group("/farm")
	f.GET("", h.Farm.Load)
	f.POST("/init", h.Farm.Init)
	f.GET("/stats", h.Farm.Stats)
	f.GET("/export", h.Farm.Export)
	f.GET("/cells", h.Farm.ListCells)
	f.GET("/cells/at", h.Farm.CellAt)
	f.GET("/cells/:id", h.Farm.GetCell)
	f.PUT("/cells/:id", h.Farm.UpdateCell)
	f.DELETE("/cells/:id", h.Farm.DeleteCell)

	e.GET("/profile", h.Profile.Get)
	e.PUT("/profile", h.Profile.Put)

	d := e.Group("/drafts")
	d.POST("", h.Draft.Open)
	d.GET("/:id", h.Draft.Get)
	d.PATCH("/:id", h.Draft.Patch)
	d.POST("/:id/next", h.Draft.Next)
	d.POST("/:id/prev", h.Draft.Prev)
	d.POST("/:id/items", h.Draft.AddItem)
	d.DELETE("/:id/items/:idx", h.Draft.RemoveItem)

	e.POST("/risk/evaluate", h.Risk.Evaluate)

	al := e.Group("/alerts")
	al.GET("", h.Alert.List)
	al.POST("", h.Alert.Create)
	al.POST("/ingest/url", h.Alert.IngestURL)
	return e
}
