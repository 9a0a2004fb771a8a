package app

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"waira/config"
	"waira/database"
	"waira/pkg/alert"
	"waira/pkg/auth"
	"waira/pkg/climate"
	"waira/pkg/draft"
	"waira/pkg/logger"
	"waira/pkg/metrics"
	"waira/pkg/notify"

	alertRepoImp "waira/pkg/alert/repositoryImp"
	alertSvcImp "waira/pkg/alert/serviceImp"
	docrepo "waira/pkg/document/repository"
	docImp "waira/pkg/document/repositoryImp"
	farmRepoImp "waira/pkg/farm/repositoryImp"
	farmSvcImp "waira/pkg/farm/serviceImp"
	profileRepoImp "waira/pkg/profile/repositoryImp"
)

// App holds everything built once at startup. Nothing in the packages below
// it creates clients on its own.
type App struct {
	Cfg     config.AppConfig
	Log     *zap.Logger
	DB      *gorm.DB
	Store   docrepo.Store
	Metrics *metrics.Metrics

	Auth     auth.Provider
	Verifier auth.Verifier // nil in dev mode
	Notifier notify.Notifier

	Farm     *farmSvcImp.FarmSvc
	Profiles *profileRepoImp.ProfileRepo
	Alerts   *alertSvcImp.AlertSvc
	Drafts   *draft.Registry
	Risk     climate.Table

	closers []func() error
}

// New wires the application from cfg. On error everything opened so far is
// closed again.
func New(ctx context.Context, cfg config.AppConfig) (a *App, err error) {
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a = &App{Cfg: cfg, Log: log, Metrics: metrics.New(), Drafts: draft.NewRegistry(), Risk: climate.DefaultTable()}
	defer func() {
		if err != nil {
			_ = a.Close()
			a = nil
		}
	}()
	cfg.Log(log)

	// alerts always live in sqlite, so the database opens even with firestore
	a.DB, err = database.Open(cfg.DBPath)
	if err != nil {
		return a, err
	}
	a.closers = append(a.closers, func() error {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	var fb *firebase.App
	if cfg.UsesFirebase() {
		if fb, err = newFirebase(ctx, cfg); err != nil {
			return a, err
		}
	}

	if err = a.initStore(ctx, fb); err != nil {
		return a, err
	}
	a.Profiles = profileRepoImp.New(a.Store)

	if err = a.initAuth(ctx, fb); err != nil {
		return a, err
	}
	if err = a.initNotifier(ctx, fb); err != nil {
		return a, err
	}

	a.Farm = farmSvcImp.New(farmRepoImp.New(a.Store), cfg.Layout, a.Notifier, a.Metrics, log)
	a.Farm.SetCacheMaxAge(cfg.FarmCacheMaxAge)
	a.Alerts = alertSvcImp.New(
		alertRepoImp.New(a.DB),
		a.Profiles,
		alert.NewFetcher(cfg.AlertsAllowedDomains, cfg.AlertsMaxBytes),
		a.Metrics,
		log,
	)
	return a, nil
}

func (a *App) initStore(ctx context.Context, fb *firebase.App) error {
	if a.Cfg.StoreBackend != config.StoreFirestore {
		a.Store = docImp.NewSQLite(a.DB)
		return nil
	}
	client, err := fb.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("firestore client: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	a.Store = docImp.NewFirestore(client)
	return nil
}

func (a *App) initAuth(ctx context.Context, fb *firebase.App) error {
	if a.Cfg.AuthMode != config.AuthFirebase {
		a.Auth = auth.NewDev()
		return nil
	}
	client, err := fb.Auth(ctx)
	if err != nil {
		return fmt.Errorf("firebase auth client: %w", err)
	}
	a.Auth = auth.NewIdentityToolkit(auth.DefaultEndpoint, a.Cfg.FirebaseAPIKey)
	a.Verifier = auth.NewFirebaseVerifier(client)
	return nil
}

func (a *App) initNotifier(ctx context.Context, fb *firebase.App) error {
	logN := notify.NewLog(a.Log, a.Metrics)
	if a.Cfg.Notifier != config.NotifierFCM {
		a.Notifier = logN
		return nil
	}
	client, err := fb.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("error getting messaging client: %w", err)
	}
	a.Notifier = notify.Multi(logN, notify.NewFCM(client, a.Profiles.PushToken, a.Log, a.Metrics))
	return nil
}

// Close releases clients in reverse order and flushes the logger.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	return errors.Join(errs...)
}
