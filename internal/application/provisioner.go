package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/sportsin/sportsin/internal/domain/entity"
	"github.com/sportsin/sportsin/internal/domain/repository"
	"github.com/sportsin/sportsin/pkg/helpers"
)

// Provisioner creates exactly one profile row (plus its default stats
// sibling) for a newly verified identity. The existence pre-check is an
// optimization only; the store's uniqueness constraint is the real
// guarantee, so a lost race is treated as success.
type Provisioner struct {
	Profiles repository.ProfileStore
	Stats    repository.StatsStore
	Indexer  ProfileIndexer
	Logger   *logrus.Logger
}

func NewProvisioner(profiles repository.ProfileStore, stats repository.StatsStore, indexer ProfileIndexer, logger *logrus.Logger) *Provisioner {
	return &Provisioner{Profiles: profiles, Stats: stats, Indexer: indexer, Logger: logger}
}

// Ensure returns the profile for id, creating it from the identity's carried
// sign-up metadata when absent. It returns (nil, nil) when there is nothing
// to build from: no existing row and no metadata.
func (p *Provisioner) Ensure(ctx context.Context, id *entity.Identity) (*entity.Profile, error) {
	existing, err := p.Profiles.Get(ctx, id.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	meta := id.Metadata
	if meta.IsZero() {
		return nil, nil
	}

	prof := &entity.Profile{
		ID:        id.ID,
		Username:  meta.Username,
		Email:     id.Email,
		AvatarURL: helpers.DefaultAvatarURL(meta.Username),
		Sport:     meta.Sport,
		UserType:  meta.UserType,
	}
	created, err := p.Profiles.Insert(ctx, prof)
	if errors.Is(err, repository.ErrConflict) {
		// Lost a concurrent provisioning race; the row exists now.
		return p.Profiles.Get(ctx, id.ID)
	}
	if err != nil {
		return nil, err
	}

	if sErr := p.Stats.EnsureDefault(ctx, id.ID); sErr != nil && p.Logger != nil {
		p.Logger.WithError(sErr).WithField("user_id", id.ID).Warn("default stats provisioning failed")
	}
	if p.Indexer != nil {
		if iErr := p.Indexer.Index(ctx, created); iErr != nil && p.Logger != nil {
			p.Logger.WithError(iErr).WithField("user_id", id.ID).Warn("profile index failed")
		}
	}
	return created, nil
}
