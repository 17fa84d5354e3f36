package localstore

import (
	"context"
	"time"

	"github.com/sportsin/sportsin/internal/domain/entity"
	"github.com/sportsin/sportsin/internal/domain/repository"
)

// Profile- and stats-store methods over the in-memory maps. Mutations to
// the signed-in user's row are written through to the KV snapshot.

func (s *Store) Get(_ context.Context, id string) (*entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) Insert(_ context.Context, p *entity.Profile) (*entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[p.ID]; ok {
		return nil, repository.ErrConflict
	}
	for _, existing := range s.profiles {
		if existing.Username == p.Username {
			return nil, repository.ErrConflict
		}
	}

	cp := *p
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.profiles[cp.ID] = &cp
	s.byEmail[cp.Email] = cp.ID
	delete(s.pending, cp.ID)
	if s.currentID == cp.ID {
		s.persistSnapshot(&cp)
	}
	out := cp
	return &out, nil
}

func (s *Store) Update(_ context.Context, id string, changes entity.ProfileChanges) (*entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&p.Username, changes.Username)
	apply(&p.FullName, changes.FullName)
	apply(&p.AvatarURL, changes.AvatarURL)
	apply(&p.Bio, changes.Bio)
	apply(&p.Location, changes.Location)
	apply(&p.Website, changes.Website)

	if s.currentID == id {
		s.persistSnapshot(p)
	}
	cp := *p
	return &cp, nil
}

func (s *Store) EnsureDefault(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stats[userID]; !ok {
		s.stats[userID] = &entity.PlayerStats{UserID: userID, CreatedAt: time.Now().UTC()}
	}
	return nil
}

func (s *Store) GetStats(ctx context.Context, userID string) (*entity.PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stats[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

// Stats exposes the stats rows under the StatsStore interface; a view type
// is needed because Get is already taken by the profile methods.
func (s *Store) Stats() repository.StatsStore { return statsView{s} }

type statsView struct{ s *Store }

func (v statsView) EnsureDefault(ctx context.Context, userID string) error {
	return v.s.EnsureDefault(ctx, userID)
}

func (v statsView) Get(ctx context.Context, userID string) (*entity.PlayerStats, error) {
	return v.s.GetStats(ctx, userID)
}

var (
	_ repository.ProfileStore = (*Store)(nil)
	_ repository.StatsStore   = statsView{}
)
