package localstore

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sportsin/sportsin/internal/domain/entity"
	"github.com/sportsin/sportsin/internal/domain/repository"
)

// Store is the local mock-mode backend: every capability interface served
// from in-memory maps, with the current-user snapshot and liked-post set
// persisted through a KV file the way the browser build used localStorage.
type Store struct {
	kv     *KV
	logger *logrus.Logger

	mu        sync.Mutex
	profiles  map[string]*entity.Profile
	byEmail   map[string]string // email -> profile id
	stats     map[string]*entity.PlayerStats
	pending   map[string]*pendingAccount // account id -> pending sign-up
	tokens    map[string]string          // verify token -> account id
	currentID string
	changes   chan repository.AuthChange
}

type pendingAccount struct {
	id       string
	email    string
	password string
	meta     entity.SignUpMetadata
	verified bool
}

// Open loads (or creates) the local store at path and seeds the demo
// profiles. A previously persisted current-user snapshot restores the
// session.
func Open(path string, logger *logrus.Logger) *Store {
	s := &Store{
		kv:       OpenKV(path),
		logger:   logger,
		profiles: map[string]*entity.Profile{},
		byEmail:  map[string]string{},
		stats:    map[string]*entity.PlayerStats{},
		pending:  map[string]*pendingAccount{},
		tokens:   map[string]string{},
		changes:  make(chan repository.AuthChange, 8),
	}
	for _, p := range DemoProfiles() {
		prof := p
		s.profiles[prof.ID] = &prof
		s.byEmail[prof.Email] = prof.ID
		s.stats[prof.ID] = &entity.PlayerStats{UserID: prof.ID, CreatedAt: prof.CreatedAt}
	}

	// A persisted snapshot overrides the seed row: it carries any profile
	// edits made in earlier runs.
	var snap profileSnapshot
	if ok, err := s.kv.Get(KeyCurrentUser, &snap); err == nil && ok {
		prof := snap.toEntity()
		s.profiles[prof.ID] = prof
		s.byEmail[prof.Email] = prof.ID
		s.currentID = prof.ID
	}
	return s
}

func (s *Store) persistSnapshot(p *entity.Profile) {
	if err := s.kv.Set(KeyCurrentUser, snapshotFrom(p)); err != nil && s.logger != nil {
		s.logger.WithError(err).Warn("local state write failed")
	}
}

// profileSnapshot is the JSON shape persisted under the current-user key,
// kept compatible with the browser build's localStorage records.
type profileSnapshot struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	FullName       string `json:"full_name,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	Sport          string `json:"sport"`
	UserType       string `json:"user_type"`
	Bio            string `json:"bio,omitempty"`
	Location       string `json:"location,omitempty"`
	Website        string `json:"website,omitempty"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
	PostsCount     int    `json:"posts_count"`
	CreatedAt      string `json:"created_at"`
}

func snapshotFrom(p *entity.Profile) profileSnapshot {
	return profileSnapshot{
		ID:             p.ID,
		Username:       p.Username,
		Email:          p.Email,
		FullName:       p.FullName,
		AvatarURL:      p.AvatarURL,
		Sport:          string(p.Sport),
		UserType:       string(p.UserType),
		Bio:            p.Bio,
		Location:       p.Location,
		Website:        p.Website,
		FollowersCount: p.FollowersCount,
		FollowingCount: p.FollowingCount,
		PostsCount:     p.PostsCount,
		CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (snap profileSnapshot) toEntity() *entity.Profile {
	created, _ := time.Parse(time.RFC3339, snap.CreatedAt)
	return &entity.Profile{
		ID:             snap.ID,
		Username:       snap.Username,
		Email:          snap.Email,
		FullName:       snap.FullName,
		AvatarURL:      snap.AvatarURL,
		Sport:          entity.Sport(snap.Sport),
		UserType:       entity.UserType(snap.UserType),
		Bio:            snap.Bio,
		Location:       snap.Location,
		Website:        snap.Website,
		FollowersCount: snap.FollowersCount,
		FollowingCount: snap.FollowingCount,
		PostsCount:     snap.PostsCount,
		CreatedAt:      created,
	}
}
