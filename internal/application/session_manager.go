package application

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sportsin/sportsin/internal/domain/entity"
	"github.com/sportsin/sportsin/internal/domain/repository"
)

var (
	ErrInvalidCredentials          = errors.New("invalid credentials")
	ErrEmailNotVerified            = errors.New("email not verified")
	ErrSignUpFailed                = errors.New("sign up failed")
	ErrNotSignedIn                 = errors.New("not signed in")
	ErrStore                       = errors.New("store error")
	ErrVerificationResendExhausted = errors.New("verification resend attempts exhausted")
)

const (
	maxVerificationResends = 3
	defaultResolveTimeout  = 10 * time.Second
)

// Session is the process-wide (identity, profile, loading) triple. Identity
// present with a nil Profile is a valid but inconsistent state surfaced as
// "no profile found" rather than an error.
type Session struct {
	Identity *entity.Identity
	Profile  *entity.Profile
	Loading  bool
}

type SignUpInput struct {
	Email    string
	Password string
	Username string
	Sport    entity.Sport
	UserType entity.UserType
}

// SignUpResult is the soft outcome of a sign-up attempt. UserExists is
// reported as data instead of an error so registered emails are not leaked
// while the user is still steered toward the verification flow.
type SignUpResult struct {
	NeedsVerification bool `json:"needs_verification"`
	UserExists        bool `json:"user_exists"`
}

// Manager is the single source of truth for "who is signed in and with what
// profile". All session mutations go through it; everything else observes.
type Manager struct {
	creds          repository.CredentialStore
	profiles       repository.ProfileStore
	prov           *Provisioner
	indexer        ProfileIndexer
	logger         *logrus.Logger
	resolveTimeout time.Duration

	mu        sync.Mutex
	session   Session
	epoch     uint64
	resends   map[string]int
	observers map[int]func(Session)
	nextObs   int
}

func NewManager(creds repository.CredentialStore, profiles repository.ProfileStore, prov *Provisioner, indexer ProfileIndexer, logger *logrus.Logger, resolveTimeout time.Duration) *Manager {
	if resolveTimeout <= 0 {
		resolveTimeout = defaultResolveTimeout
	}
	return &Manager{
		creds:          creds,
		profiles:       profiles,
		prov:           prov,
		indexer:        indexer,
		logger:         logger,
		resolveTimeout: resolveTimeout,
		session:        Session{Loading: true},
		resends:        map[string]int{},
		observers:      map[int]func(Session){},
	}
}

// Start resolves any existing session and then watches credential-store
// auth changes until ctx is cancelled. The restoration call is bounded by
// the resolve timeout so a stalled store settles to signed-out instead of
// leaving the application loading forever.
func (m *Manager) Start(ctx context.Context) {
	m.setLoading()

	rctx, cancel := context.WithTimeout(ctx, m.resolveTimeout)
	id, err := m.creds.CurrentIdentity(rctx)
	cancel()
	switch {
	case err != nil:
		if m.logger != nil {
			m.logger.WithError(err).Warn("session restoration failed")
		}
		m.reset()
	case id == nil:
		m.reset()
	default:
		m.handleSignedIn(ctx, id)
	}

	go m.watchAuthChanges(ctx)
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Subscribe registers an observer notified synchronously on every session
// change. The returned func unregisters it.
func (m *Manager) Subscribe(fn func(Session)) func() {
	m.mu.Lock()
	key := m.nextObs
	m.nextObs++
	m.observers[key] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.observers, key)
		m.mu.Unlock()
	}
}

// SignIn delegates the credential check to the store and completes only
// after the profile fetch has settled. An unverified identity is never
// treated as signed in, even though the store accepted the password.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	m.setLoading()

	id, err := m.creds.SignInWithPassword(ctx, email, password)
	if err != nil {
		m.settle()
		return ErrInvalidCredentials
	}
	if !id.EmailVerified {
		if soErr := m.creds.SignOut(ctx); soErr != nil && m.logger != nil {
			m.logger.WithError(soErr).Warn("sign-out of unverified identity failed")
		}
		m.reset()
		return ErrEmailNotVerified
	}

	m.handleSignedIn(ctx, id)
	return nil
}

// SignUp validates its input before any store call, then applies the
// sign-up decision table.
func (m *Manager) SignUp(ctx context.Context, in SignUpInput) (SignUpResult, error) {
	if err := in.validate(); err != nil {
		return SignUpResult{}, err
	}

	meta := entity.SignUpMetadata{Username: in.Username, Sport: in.Sport, UserType: in.UserType}
	id, err := m.creds.SignUp(ctx, in.Email, in.Password, meta)
	if errors.Is(err, repository.ErrUserAlreadyExists) {
		return SignUpResult{NeedsVerification: true, UserExists: true}, nil
	}
	if err != nil {
		return SignUpResult{}, fmt.Errorf("%w: %v", ErrSignUpFailed, err)
	}

	if !id.EmailVerified {
		return SignUpResult{NeedsVerification: true}, nil
	}

	// Pre-verified edge case: provision synchronously and complete sign-in.
	if m.prov != nil {
		if _, pErr := m.prov.Ensure(ctx, id); pErr != nil && m.logger != nil {
			m.logger.WithError(pErr).WithField("user_id", id.ID).Warn("profile provisioning failed")
		}
	}
	m.handleSignedIn(ctx, id)
	return SignUpResult{}, nil
}

// ResendVerification re-sends the verification email, capped at three
// attempts per address. The fourth attempt fails without reaching the store.
func (m *Manager) ResendVerification(ctx context.Context, email string) error {
	m.mu.Lock()
	exhausted := m.resends[email] >= maxVerificationResends
	m.mu.Unlock()
	if exhausted {
		return ErrVerificationResendExhausted
	}

	if err := m.creds.ResendVerification(ctx, email); err != nil {
		return err
	}

	m.mu.Lock()
	m.resends[email]++
	m.mu.Unlock()
	return nil
}

// SignOut is fail-open: session state is cleared even when the delegated
// call errors, so the user is never stuck signed in.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.creds.SignOut(ctx); err != nil && m.logger != nil {
		m.logger.WithError(err).Warn("remote sign-out failed")
	}
	m.reset()
	return nil
}

// UpdateProfile sends a partial update keyed by the current identity and
// publishes the row the store returns; there is no optimistic local merge.
func (m *Manager) UpdateProfile(ctx context.Context, changes entity.ProfileChanges) (*entity.Profile, error) {
	m.mu.Lock()
	id := m.session.Identity
	m.mu.Unlock()
	if id == nil {
		return nil, ErrNotSignedIn
	}

	p, err := m.profiles.Update(ctx, id.ID, changes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	m.mu.Lock()
	if m.session.Identity != nil && m.session.Identity.ID == id.ID {
		m.session.Profile = p
	}
	m.mu.Unlock()
	m.notify()

	if m.indexer != nil {
		if iErr := m.indexer.Index(ctx, p); iErr != nil && m.logger != nil {
			m.logger.WithError(iErr).WithField("user_id", p.ID).Warn("profile index failed")
		}
	}
	return p, nil
}

func (in SignUpInput) validate() error {
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: invalid email address", ErrSignUpFailed)
	}
	if len(in.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrSignUpFailed)
	}
	if len(in.Username) < 3 {
		return fmt.Errorf("%w: username must be at least 3 characters", ErrSignUpFailed)
	}
	if !in.Sport.Valid() {
		return fmt.Errorf("%w: unknown sport %q", ErrSignUpFailed, in.Sport)
	}
	if !in.UserType.Valid() {
		return fmt.Errorf("%w: unknown user type %q", ErrSignUpFailed, in.UserType)
	}
	return nil
}

// handleSignedIn publishes the identity, provisions a profile when the
// identity still carries sign-up metadata, and fetches the profile row.
func (m *Manager) handleSignedIn(ctx context.Context, id *entity.Identity) {
	m.mu.Lock()
	m.epoch++
	epoch := m.epoch
	m.session.Identity = id
	m.session.Loading = true
	m.mu.Unlock()
	m.notify()

	if m.prov != nil && !id.Metadata.IsZero() {
		if _, err := m.prov.Ensure(ctx, id); err != nil && m.logger != nil {
			m.logger.WithError(err).WithField("user_id", id.ID).Warn("profile provisioning failed")
		}
	}
	m.fetchProfile(ctx, id, epoch)
}

// fetchProfile resolves the profile row for id. The epoch guard ensures a
// late-arriving fetch cannot resurrect a profile after a sign-out (or any
// later transition) has superseded it. Errors here are swallowed: this runs
// during passive restoration where throwing would break startup.
func (m *Manager) fetchProfile(ctx context.Context, id *entity.Identity, epoch uint64) {
	p, err := m.profiles.Get(ctx, id.ID)

	m.mu.Lock()
	if m.epoch != epoch || m.session.Identity == nil || m.session.Identity.ID != id.ID {
		m.mu.Unlock()
		return
	}
	switch {
	case err == nil:
		m.session.Profile = p
	default:
		m.session.Profile = nil
	}
	m.session.Loading = false
	m.mu.Unlock()
	m.notify()

	if err != nil && m.logger != nil {
		if errors.Is(err, repository.ErrNotFound) {
			m.logger.WithField("user_id", id.ID).Warn("no profile row for identity")
		} else {
			m.logger.WithError(err).WithField("user_id", id.ID).Warn("profile fetch failed")
		}
	}
}

func (m *Manager) watchAuthChanges(ctx context.Context) {
	ch := m.creds.AuthChanges()
	if ch == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			switch ev.Kind {
			case repository.SignedIn:
				if ev.Identity != nil {
					m.handleSignedIn(ctx, ev.Identity)
				}
			case repository.SignedOut:
				m.reset()
			}
		}
	}
}

func (m *Manager) setLoading() {
	m.mu.Lock()
	m.session.Loading = true
	m.mu.Unlock()
	m.notify()
}

// settle clears the loading flag without touching identity or profile.
func (m *Manager) settle() {
	m.mu.Lock()
	m.session.Loading = false
	m.mu.Unlock()
	m.notify()
}

// reset returns the session to empty and supersedes any in-flight fetch.
func (m *Manager) reset() {
	m.mu.Lock()
	m.epoch++
	m.session = Session{}
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) notify() {
	m.mu.Lock()
	snap := m.session
	obs := make([]func(Session), 0, len(m.observers))
	for _, fn := range m.observers {
		obs = append(obs, fn)
	}
	m.mu.Unlock()
	for _, fn := range obs {
		fn(snap)
	}
}
