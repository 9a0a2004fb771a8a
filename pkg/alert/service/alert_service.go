package service

import (
	"context"
	"errors"

	"waira/entities"
	"waira/pkg/alert"
)

var (
	ErrDuplicate   = errors.New("alert: source already ingested")
	ErrNotRelevant = errors.New("alert: not relevant to this profile")
)

type AlertService interface {
	// List ranks active alerts for uid's profile and applies f.
	List(ctx context.Context, uid string, f alert.Filter) ([]entities.Alert, error)
	Create(ctx context.Context, a *entities.Alert) error
	// IngestURL fetches a notice and stores it as a web alert. A configured
	// profile only keeps alerts above the personal threshold.
	IngestURL(ctx context.Context, uid, url string) (*entities.Alert, error)
}
