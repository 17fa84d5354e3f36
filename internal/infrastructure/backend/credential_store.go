package backend

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sportsin/sportsin/internal/domain/entity"
	"github.com/sportsin/sportsin/internal/domain/repository"
	"github.com/sportsin/sportsin/pkg/helpers"
	"github.com/sportsin/sportsin/pkg/mailer"
	tpl "github.com/sportsin/sportsin/pkg/mailer/templates"
)

const verifyTokenTTL = 24 * time.Hour

// Deps are the shared collaborators behind every CredentialStore instance.
// One instance is constructed per browser session; the instance owns only
// its session token and change channel.
type Deps struct {
	Pool            *pgxpool.Pool
	Redis           *redis.Client
	JWT             *helpers.JWTManager
	Publisher       *helpers.RabbitPublisher
	Logger          *logrus.Logger
	VerifyEmailURL  string
	MailSendEnabled bool
}

// CredentialStore is the postgres/redis-backed credential service: bcrypt
// passwords in the accounts table, verification tokens and restorable
// session records in redis, verification mail through the email queue.
type CredentialStore struct {
	deps Deps

	mu      sync.Mutex
	token   string
	changes chan repository.AuthChange
}

func New(deps Deps) *CredentialStore {
	return &CredentialStore{
		deps:    deps,
		changes: make(chan repository.AuthChange, 8),
	}
}

type account struct {
	id           string
	email        string
	passwordHash string
	verified     bool
	username     string
	sport        string
	userType     string
}

func (s *CredentialStore) CurrentIdentity(ctx context.Context) (*entity.Identity, error) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return nil, nil
	}

	claims, err := s.deps.JWT.ParseSessionToken(token)
	if err != nil {
		// Expired or tampered token: treat as signed out.
		s.clearToken()
		return nil, nil
	}

	data, err := s.deps.Redis.HGetAll(ctx, helpers.KeySession(claims.UserID)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || data["sid"] != claims.SessionID {
		s.clearToken()
		return nil, nil
	}

	acc, err := s.getAccountByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return identityFrom(acc), nil
}

func (s *CredentialStore) SignInWithPassword(ctx context.Context, email, password string) (*entity.Identity, error) {
	acc, err := s.getAccountByEmail(ctx, email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}
	if !helpers.CheckPassword(acc.passwordHash, password) {
		return nil, errors.New("invalid email or password")
	}

	id := identityFrom(acc)
	if acc.verified {
		// Unverified accounts never get a session; the session manager
		// additionally enforces this as policy.
		if err := s.establishSession(ctx, acc); err != nil {
			return nil, err
		}
		s.emit(repository.AuthChange{Kind: repository.SignedIn, Identity: id})
	}
	return id, nil
}

func (s *CredentialStore) SignUp(ctx context.Context, email, password string, meta entity.SignUpMetadata) (*entity.Identity, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var accID string
	err = s.deps.Pool.QueryRow(ctx, `
		INSERT INTO accounts (email, password_hash, username, sport, user_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, email, hash, meta.Username, string(meta.Sport), string(meta.UserType)).Scan(&accID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, repository.ErrUserAlreadyExists
		}
		return nil, err
	}

	acc := &account{id: accID, email: email, username: meta.Username, sport: string(meta.Sport), userType: string(meta.UserType)}
	s.issueVerification(ctx, acc)
	return identityFrom(acc), nil
}

func (s *CredentialStore) ResendVerification(ctx context.Context, email string) error {
	acc, err := s.getAccountByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the email is registered.
		if s.deps.Logger != nil {
			s.deps.Logger.WithField("email", email).Debug("resend requested for unknown email")
		}
		return nil
	}
	if acc.verified {
		return nil
	}
	s.issueVerification(ctx, acc)
	return nil
}

// VerifyEmail completes a verification link: the account is marked verified,
// a session is established, and a SignedIn change is emitted so the session
// manager provisions the profile.
func (s *CredentialStore) VerifyEmail(ctx context.Context, token string) (*entity.Identity, error) {
	accID, err := s.deps.Redis.Get(ctx, helpers.KeyVerifyToken(token)).Result()
	if err != nil || accID == "" {
		return nil, errors.New("invalid or expired token")
	}

	if _, err := s.deps.Pool.Exec(ctx, `UPDATE accounts SET verified = true WHERE id = $1`, accID); err != nil {
		return nil, err
	}
	s.deps.Redis.Del(ctx, helpers.KeyVerifyToken(token))

	acc, err := s.getAccountByID(ctx, accID)
	if err != nil {
		return nil, err
	}
	if err := s.establishSession(ctx, acc); err != nil {
		return nil, err
	}

	id := identityFrom(acc)
	s.emit(repository.AuthChange{Kind: repository.SignedIn, Identity: id})
	s.enqueueEmail(ctx, acc.email, tpl.Welcome, map[string]any{
		"Username": acc.username,
		"Sport":    acc.sport,
	})
	return id, nil
}

func (s *CredentialStore) SignOut(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.token = ""
	s.mu.Unlock()

	defer s.emit(repository.AuthChange{Kind: repository.SignedOut})

	if token == "" {
		return nil
	}
	claims, err := s.deps.JWT.ParseSessionToken(token)
	if err != nil {
		return nil
	}
	return s.deps.Redis.Del(ctx, helpers.KeySession(claims.UserID)).Err()
}

func (s *CredentialStore) AuthChanges() <-chan repository.AuthChange {
	return s.changes
}

// SessionToken returns the current session token for cookie persistence.
func (s *CredentialStore) SessionToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetSessionToken restores a token read back from the browser's cookie.
func (s *CredentialStore) SetSessionToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *CredentialStore) clearToken() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

func (s *CredentialStore) establishSession(ctx context.Context, acc *account) error {
	sid := uuid.NewString()
	token, exp, err := s.deps.JWT.GenerateSessionToken(acc.id, sid)
	if err != nil {
		return err
	}

	key := helpers.KeySession(acc.id)
	pipe := s.deps.Redis.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    acc.id,
		"email":      acc.email,
		"sid":        sid,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.ExpireAt(ctx, key, exp)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *CredentialStore) issueVerification(ctx context.Context, acc *account) {
	tok, err := genToken(32)
	if err != nil {
		if s.deps.Logger != nil {
			s.deps.Logger.WithError(err).Error("verification token generation failed")
		}
		return
	}
	if err := s.deps.Redis.Set(ctx, helpers.KeyVerifyToken(tok), acc.id, verifyTokenTTL).Err(); err != nil {
		if s.deps.Logger != nil {
			s.deps.Logger.WithError(err).WithField("account_id", acc.id).Warn("verification token store failed")
		}
		return
	}

	s.enqueueEmail(ctx, acc.email, tpl.VerifyEmail, map[string]any{
		"Username":  acc.username,
		"VerifyURL": s.deps.VerifyEmailURL + "?token=" + tok,
		"ExpiresIn": "24 hours",
	})
}

func (s *CredentialStore) enqueueEmail(ctx context.Context, to, template string, data map[string]any) {
	if s.deps.Publisher == nil || !s.deps.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{To: to, Template: template, Data: data}
	if err := s.deps.Publisher.PublishJSON(ctx, job); err != nil && s.deps.Logger != nil {
		s.deps.Logger.WithError(err).WithField("template", template).Warn("email enqueue failed")
	}
}

func (s *CredentialStore) emit(ev repository.AuthChange) {
	select {
	case s.changes <- ev:
	default:
		if s.deps.Logger != nil {
			s.deps.Logger.WithField("kind", ev.Kind).Warn("auth change dropped: channel full")
		}
	}
}

func (s *CredentialStore) getAccountByID(ctx context.Context, id string) (*account, error) {
	return s.scanAccount(s.deps.Pool.QueryRow(ctx, `
		SELECT id, email, password_hash, verified, username, sport, user_type
		FROM accounts
		WHERE id = $1
	`, id))
}

func (s *CredentialStore) getAccountByEmail(ctx context.Context, email string) (*account, error) {
	return s.scanAccount(s.deps.Pool.QueryRow(ctx, `
		SELECT id, email, password_hash, verified, username, sport, user_type
		FROM accounts
		WHERE email = $1
	`, email))
}

func (s *CredentialStore) scanAccount(row pgx.Row) (*account, error) {
	acc := &account{}
	err := row.Scan(&acc.id, &acc.email, &acc.passwordHash, &acc.verified, &acc.username, &acc.sport, &acc.userType)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account: %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func identityFrom(acc *account) *entity.Identity {
	return &entity.Identity{
		ID:            acc.id,
		Email:         acc.email,
		EmailVerified: acc.verified,
		Metadata: entity.SignUpMetadata{
			Username: acc.username,
			Sport:    entity.Sport(acc.sport),
			UserType: entity.UserType(acc.userType),
		},
	}
}

func genToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

var (
	_ repository.CredentialStore = (*CredentialStore)(nil)
	_ repository.EmailVerifier   = (*CredentialStore)(nil)
)
