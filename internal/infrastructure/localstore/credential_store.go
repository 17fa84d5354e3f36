package localstore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/google/uuid"

	"github.com/sportsin/sportsin/internal/domain/entity"
	"github.com/sportsin/sportsin/internal/domain/repository"
)

// Credential-store methods. Passwords are not checked for the seeded demo
// profiles, matching the browser build's mock authentication; pending
// sign-ups do get a password check once verified.

func (s *Store) CurrentIdentity(_ context.Context) (*entity.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentID == "" {
		return nil, nil
	}
	if p, ok := s.profiles[s.currentID]; ok {
		return identityForProfile(p), nil
	}
	// Verified but not yet provisioned: the profile row appears once the
	// session manager runs the provisioner.
	if acc, ok := s.pending[s.currentID]; ok && acc.verified {
		return &entity.Identity{ID: acc.id, Email: acc.email, EmailVerified: true, Metadata: acc.meta}, nil
	}
	return nil, nil
}

func (s *Store) SignInWithPassword(_ context.Context, email, password string) (*entity.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byEmail[email]; ok {
		if p, exists := s.profiles[id]; exists {
			s.currentID = id
			s.persistSnapshot(p)
			s.emit(repository.AuthChange{Kind: repository.SignedIn, Identity: identityForProfile(p)})
			return identityForProfile(p), nil
		}
	}

	for _, acc := range s.pending {
		if acc.email == email && acc.password == password {
			id := &entity.Identity{ID: acc.id, Email: acc.email, EmailVerified: acc.verified, Metadata: acc.meta}
			if acc.verified {
				// Verified but not yet provisioned; signing in triggers it.
				s.currentID = acc.id
				s.emit(repository.AuthChange{Kind: repository.SignedIn, Identity: id})
			}
			// Unverified: the session manager rejects this identity.
			return id, nil
		}
	}
	return nil, errors.New("invalid email or password")
}

func (s *Store) SignUp(_ context.Context, email, password string, meta entity.SignUpMetadata) (*entity.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return nil, repository.ErrUserAlreadyExists
	}
	for _, p := range s.profiles {
		if p.Username == meta.Username {
			return nil, repository.ErrUserAlreadyExists
		}
	}
	for _, acc := range s.pending {
		if acc.email == email {
			return nil, repository.ErrUserAlreadyExists
		}
	}

	acc := &pendingAccount{id: "user-" + uuid.NewString(), email: email, password: password, meta: meta}
	s.pending[acc.id] = acc
	tok := localToken()
	s.tokens[tok] = acc.id
	if s.logger != nil {
		// Mock mode has no mail transport; surface the link in the log.
		s.logger.WithField("email", email).Infof("verification link: /verify-email?token=%s", tok)
	}
	return &entity.Identity{ID: acc.id, Email: email, Metadata: meta}, nil
}

func (s *Store) ResendVerification(_ context.Context, email string) error {
	if s.logger != nil {
		s.logger.WithField("email", email).Info("verification email resent")
	}
	return nil
}

// VerifyEmail marks a pending sign-up verified and signs it in; the emitted
// SignedIn change carries the sign-up metadata that drives provisioning.
func (s *Store) VerifyEmail(_ context.Context, token string) (*entity.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accID, ok := s.tokens[token]
	if !ok {
		return nil, errors.New("invalid or expired token")
	}
	acc := s.pending[accID]
	if acc == nil {
		return nil, errors.New("invalid or expired token")
	}
	delete(s.tokens, token)
	acc.verified = true
	s.byEmail[acc.email] = acc.id
	s.currentID = acc.id

	id := &entity.Identity{ID: acc.id, Email: acc.email, EmailVerified: true, Metadata: acc.meta}
	s.emit(repository.AuthChange{Kind: repository.SignedIn, Identity: id})
	return id, nil
}

func (s *Store) SignOut(_ context.Context) error {
	s.mu.Lock()
	s.currentID = ""
	err := s.kv.Delete(KeyCurrentUser)
	s.mu.Unlock()
	s.emit(repository.AuthChange{Kind: repository.SignedOut})
	return err
}

func (s *Store) AuthChanges() <-chan repository.AuthChange {
	return s.changes
}

func (s *Store) emit(ev repository.AuthChange) {
	select {
	case s.changes <- ev:
	default:
	}
}

func identityForProfile(p *entity.Profile) *entity.Identity {
	return &entity.Identity{
		ID:            p.ID,
		Email:         p.Email,
		EmailVerified: true,
		Metadata: entity.SignUpMetadata{
			Username: p.Username,
			Sport:    p.Sport,
			UserType: p.UserType,
		},
	}
}

func localToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

var (
	_ repository.CredentialStore = (*Store)(nil)
	_ repository.EmailVerifier   = (*Store)(nil)
)
