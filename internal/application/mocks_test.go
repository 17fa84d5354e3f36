package application

import (
	"context"
	"sync"

	"github.com/sportsin/sportsin/internal/domain/entity"
	"github.com/sportsin/sportsin/internal/domain/repository"
)

type fakeCreds struct {
	mu sync.Mutex

	identity   *entity.Identity
	current    *entity.Identity
	currentErr error
	signInErr  error
	signUpErr  error
	resendErr  error
	signOutErr error

	signInCalls  int
	signUpCalls  int
	resendCalls  int
	signOutCalls int

	changes chan repository.AuthChange
}

func (f *fakeCreds) CurrentIdentity(context.Context) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, f.currentErr
}

func (f *fakeCreds) SignInWithPassword(context.Context, string, string) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signInCalls++
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.identity, nil
}

func (f *fakeCreds) SignUp(context.Context, string, string, entity.SignUpMetadata) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUpCalls++
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.identity, nil
}

func (f *fakeCreds) ResendVerification(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resendCalls++
	return f.resendErr
}

func (f *fakeCreds) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCalls++
	return f.signOutErr
}

func (f *fakeCreds) AuthChanges() <-chan repository.AuthChange {
	return f.changes
}

func (f *fakeCreds) counts() (signIn, signUp, resend, signOut int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signInCalls, f.signUpCalls, f.resendCalls, f.signOutCalls
}

// memProfiles is an in-memory profile store. When gateGet is set, Get
// signals getEntered and then blocks until gateGet is closed, which lets
// tests interleave a state change with an in-flight fetch.
type memProfiles struct {
	mu          sync.Mutex
	rows        map[string]*entity.Profile
	insertCalls int
	updateCalls int
	getErr      error

	gateGet    chan struct{}
	getEntered chan struct{}
}

func newMemProfiles() *memProfiles {
	return &memProfiles{rows: map[string]*entity.Profile{}}
}

func (s *memProfiles) Get(_ context.Context, id string) (*entity.Profile, error) {
	if s.getEntered != nil {
		s.getEntered <- struct{}{}
	}
	if s.gateGet != nil {
		<-s.gateGet
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	p, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memProfiles) Insert(_ context.Context, p *entity.Profile) (*entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if _, ok := s.rows[p.ID]; ok {
		return nil, repository.ErrConflict
	}
	cp := *p
	s.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *memProfiles) Update(_ context.Context, id string, changes entity.ProfileChanges) (*entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	p, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if changes.Username != nil {
		p.Username = *changes.Username
	}
	if changes.FullName != nil {
		p.FullName = *changes.FullName
	}
	if changes.AvatarURL != nil {
		p.AvatarURL = *changes.AvatarURL
	}
	if changes.Bio != nil {
		p.Bio = *changes.Bio
	}
	if changes.Location != nil {
		p.Location = *changes.Location
	}
	if changes.Website != nil {
		p.Website = *changes.Website
	}
	cp := *p
	return &cp, nil
}

func (s *memProfiles) put(p *entity.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.rows[cp.ID] = &cp
}

type memStats struct {
	mu   sync.Mutex
	rows map[string]*entity.PlayerStats
}

func newMemStats() *memStats {
	return &memStats{rows: map[string]*entity.PlayerStats{}}
}

func (s *memStats) EnsureDefault(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[userID]; !ok {
		s.rows[userID] = &entity.PlayerStats{UserID: userID}
	}
	return nil
}

func (s *memStats) Get(_ context.Context, userID string) (*entity.PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.rows[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

var (
	_ repository.CredentialStore = (*fakeCreds)(nil)
	_ repository.ProfileStore    = (*memProfiles)(nil)
	_ repository.StatsStore      = (*memStats)(nil)
)
