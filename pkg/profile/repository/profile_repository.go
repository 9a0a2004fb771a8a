package repository

import (
	"context"
	"errors"

	"waira/entities"
)

var ErrNotFound = errors.New("profile not found")

type ProfileRepository interface {
	Get(ctx context.Context, uid string) (*entities.Profile, error)
	Save(ctx context.Context, p *entities.Profile) error
	// PushToken is the device token stored on the profile, "" when unset.
	PushToken(ctx context.Context, uid string) (string, error)
}
