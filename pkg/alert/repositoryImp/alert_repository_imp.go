package repositoryImp

import (
	"context"
	"time"

	"gorm.io/gorm"

	"waira/entities"
	"waira/pkg/alert/repository"
)

type repo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.AlertRepository { return &repo{db} }

func (r *repo) Create(ctx context.Context, a *entities.Alert) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repo) ListActive(ctx context.Context, now time.Time) ([]entities.Alert, error) {
	var out []entities.Alert
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *repo) ExistsBySourceURL(ctx context.Context, url string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entities.Alert{}).Where("source_url = ?", url).Count(&n).Error
	return n > 0, err
}
