package serviceImp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"waira/entities"
	"waira/pkg/alert"
	"waira/pkg/alert/repository"
	"waira/pkg/alert/service"
	"waira/pkg/metrics"
	profilerepo "waira/pkg/profile/repository"
)

type PageFetcher interface {
	Fetch(ctx context.Context, url string) (alert.Page, error)
}

type AlertSvc struct {
	repo     repository.AlertRepository
	profiles profilerepo.ProfileRepository
	fetcher  PageFetcher
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

func New(r repository.AlertRepository, p profilerepo.ProfileRepository, f PageFetcher, m *metrics.Metrics, log *zap.Logger) *AlertSvc {
	if log == nil {
		log = zap.NewNop()
	}
	return &AlertSvc{repo: r, profiles: p, fetcher: f, metrics: m, log: log, now: time.Now}
}

var _ service.AlertService = (*AlertSvc)(nil)

func (s *AlertSvc) match(ctx context.Context, uid string) (alert.Match, error) {
	p, err := s.profiles.Get(ctx, uid)
	if errors.Is(err, profilerepo.ErrNotFound) {
		return alert.Match{}, nil
	}
	if err != nil {
		return alert.Match{}, err
	}
	return alert.MatchFromProfile(p), nil
}

func (s *AlertSvc) List(ctx context.Context, uid string, f alert.Filter) ([]entities.Alert, error) {
	m, err := s.match(ctx, uid)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.ListActive(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alert.Rank(all, m, f), nil
}

func (s *AlertSvc) Create(ctx context.Context, a *entities.Alert) error {
	if strings.TrimSpace(a.Title) == "" {
		return entities.ValidationErrors{{Field: "titulo", Message: "es obligatorio"}}
	}
	if a.Severity == "" {
		a.Severity = entities.SeverityInfo
	}
	if a.Location == "" {
		a.Location = "Nacional"
	}
	a.Active = true
	if err := s.repo.Create(ctx, a); err != nil {
		s.metrics.AlertIngested("manual", "error")
		return fmt.Errorf("create alert: %w", err)
	}
	s.metrics.AlertIngested("manual", "ok")
	return nil
}

func (s *AlertSvc) IngestURL(ctx context.Context, uid, url string) (*entities.Alert, error) {
	if s.fetcher == nil {
		return nil, alert.ErrDomainNotAllowed
	}
	dup, err := s.repo.ExistsBySourceURL(ctx, url)
	if err != nil {
		return nil, err
	}
	if dup {
		s.metrics.AlertIngested("web", "duplicate")
		return nil, service.ErrDuplicate
	}
	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.metrics.AlertIngested("web", "fetch_error")
		return nil, err
	}
	a := alert.FromPage(page, s.now())

	m, err := s.match(ctx, uid)
	if err != nil {
		return nil, err
	}
	a.Relevance = alert.Relevance(a, m)
	if m.Configured() && a.Relevance <= alert.PersonalThreshold {
		s.metrics.AlertIngested("web", "not_relevant")
		return &a, service.ErrNotRelevant
	}
	if err := s.repo.Create(ctx, &a); err != nil {
		s.metrics.AlertIngested("web", "error")
		return nil, fmt.Errorf("store web alert: %w", err)
	}
	s.metrics.AlertIngested("web", "ok")
	s.log.Info("web alert stored", zap.String("url", url), zap.Int("relevance", a.Relevance))
	return &a, nil
}
