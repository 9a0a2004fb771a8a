package repositoryImp

import (
	"context"
	"errors"
	"fmt"

	"waira/entities"
	docrepo "waira/pkg/document/repository"
	"waira/pkg/profile/repository"
)

const Collection = "perfiles"

type ProfileRepo struct{ store docrepo.Store }

func New(store docrepo.Store) *ProfileRepo { return &ProfileRepo{store: store} }

func (r *ProfileRepo) Get(ctx context.Context, uid string) (*entities.Profile, error) {
	snap, err := r.store.Get(ctx, Collection, uid)
	if errors.Is(err, docrepo.ErrNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", uid, err)
	}
	var p entities.Profile
	if err := snap.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", uid, err)
	}
	p.UID = uid
	return &p, nil
}

func (r *ProfileRepo) Save(ctx context.Context, p *entities.Profile) error {
	if err := r.store.Set(ctx, Collection, p.UID, p); err != nil {
		return fmt.Errorf("save profile %s: %w", p.UID, err)
	}
	return nil
}

func (r *ProfileRepo) PushToken(ctx context.Context, uid string) (string, error) {
	p, err := r.Get(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return p.PushToken, nil
}
