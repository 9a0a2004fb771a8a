package repository

import (
	"context"
	"time"

	"waira/entities"
)

type AlertRepository interface {
	Create(ctx context.Context, a *entities.Alert) error
	// ListActive returns active alerts that have not expired at now.
	ListActive(ctx context.Context, now time.Time) ([]entities.Alert, error)
	ExistsBySourceURL(ctx context.Context, url string) (bool, error)
}
