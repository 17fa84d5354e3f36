package repository

import (
	"context"
	"errors"

	"github.com/sportsin/sportsin/internal/domain/entity"
)

var (
	// ErrNotFound is returned by profile reads when no row matches the id.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by inserts that hit a uniqueness constraint.
	ErrConflict = errors.New("already exists")
	// ErrUserAlreadyExists is returned by SignUp when the email is already
	// registered with the credential store.
	ErrUserAlreadyExists = errors.New("user already registered")
)

// ChangeKind is the kind of an auth-state notification.
type ChangeKind string

const (
	SignedIn  ChangeKind = "SIGNED_IN"
	SignedOut ChangeKind = "SIGNED_OUT"
)

// AuthChange is a credential-store state-change notification.
// Identity is set for SignedIn and nil for SignedOut.
type AuthChange struct {
	Kind     ChangeKind
	Identity *entity.Identity
}

// CredentialStore owns password verification, email-verification tokens and
// session tokens. Two implementations exist: the postgres/redis-backed one in
// infrastructure/backend and the in-memory one in infrastructure/localstore.
type CredentialStore interface {
	// CurrentIdentity resolves an existing session. It returns (nil, nil)
	// when no session is present.
	CurrentIdentity(ctx context.Context) (*entity.Identity, error)
	SignInWithPassword(ctx context.Context, email, password string) (*entity.Identity, error)
	SignUp(ctx context.Context, email, password string, meta entity.SignUpMetadata) (*entity.Identity, error)
	ResendVerification(ctx context.Context, email string) error
	SignOut(ctx context.Context) error

	// AuthChanges streams sign-in/sign-out notifications for the lifetime of
	// the store. The channel is never closed by callers.
	AuthChanges() <-chan AuthChange
}

// EmailVerifier completes an email-verification link. Marking the account
// verified establishes a session, so implementations emit a SignedIn change.
type EmailVerifier interface {
	VerifyEmail(ctx context.Context, token string) (*entity.Identity, error)
}

// ProfileStore is the row-oriented profile table keyed by identity id.
type ProfileStore interface {
	Get(ctx context.Context, id string) (*entity.Profile, error)
	Insert(ctx context.Context, p *entity.Profile) (*entity.Profile, error)
	Update(ctx context.Context, id string, changes entity.ProfileChanges) (*entity.Profile, error)
}

// StatsStore provisions and reads the per-user performance statistics row.
type StatsStore interface {
	// EnsureDefault inserts the default stats row for userID if missing.
	EnsureDefault(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (*entity.PlayerStats, error)
}
