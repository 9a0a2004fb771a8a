package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"waira/pkg/middleware"
	"waira/router"

	alertCtrlImp "waira/pkg/alert/controllerImp"
	authCtrlImp "waira/pkg/auth/controllerImp"
	riskCtrlImp "waira/pkg/climate/controllerImp"
	draftCtrlImp "waira/pkg/draft/controllerImp"
	farmCtrlImp "waira/pkg/farm/controllerImp"
	healthCtrlImp "waira/pkg/health/controllerImp"
	profileCtrlImp "waira/pkg/profile/controllerImp"
)

// Echo builds the HTTP API on top of the app's services.
func (a *App) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	var verifier middleware.TokenVerifier
	if a.Verifier != nil {
		verifier = a.Verifier
	}

	return router.New(e, a.Log, a.Metrics, verifier, router.Controllers{
		Health:  healthCtrlImp.NewHealthCtrl(a.DB, a.Store),
		Auth:    authCtrlImp.NewAuthController(a.Auth, a.Store, a.Farm, a.Cfg.Timezone, a.Log),
		Farm:    farmCtrlImp.New(a.Farm, a.Log),
		Profile: profileCtrlImp.New(a.Profiles, a.Notifier, a.Log),
		Draft:   draftCtrlImp.New(a.Drafts, a.Farm, a.Metrics, a.Log),
		Risk:    riskCtrlImp.New(a.Risk, a.Metrics),
		Alert:   alertCtrlImp.New(a.Alerts, a.Log),
	})
}

// Serve listens on the configured port until ctx ends, then drains
// in-flight requests.
func (a *App) Serve(ctx context.Context) error {
	e := a.Echo()
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("listening", zap.String("port", a.Cfg.Port))
		errCh <- e.Start(":" + a.Cfg.Port)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Log.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}
