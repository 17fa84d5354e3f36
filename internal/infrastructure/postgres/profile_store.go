package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sportsin/sportsin/internal/domain/entity"
	"github.com/sportsin/sportsin/internal/domain/repository"
)

const profileColumns = `id, username, email, full_name, avatar_url, sport, user_type,
	bio, location, website, followers_count, following_count, posts_count, created_at`

// ProfileStore is the row-oriented profile table backed by Postgres.
type ProfileStore struct {
	pool *pgxpool.Pool
}

func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

func (s *ProfileStore) Get(ctx context.Context, id string) (*entity.Profile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE id = $1
	`, id)
	return scanProfile(row)
}

func (s *ProfileStore) Insert(ctx context.Context, p *entity.Profile) (*entity.Profile, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO profiles (id, username, email, full_name, avatar_url, sport, user_type, bio, location, website)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+profileColumns+`
	`, p.ID, p.Username, p.Email, p.FullName, p.AvatarURL, p.Sport, p.UserType, p.Bio, p.Location, p.Website)

	created, err := scanProfile(row)
	if isUniqueViolation(err) {
		return nil, repository.ErrConflict
	}
	return created, err
}

func (s *ProfileStore) Update(ctx context.Context, id string, changes entity.ProfileChanges) (*entity.Profile, error) {
	set := make([]string, 0, 6)
	args := make([]any, 0, 7)
	add := func(col string, v *string) {
		if v != nil {
			args = append(args, *v)
			set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	add("username", changes.Username)
	add("full_name", changes.FullName)
	add("avatar_url", changes.AvatarURL)
	add("bio", changes.Bio)
	add("location", changes.Location)
	add("website", changes.Website)

	if len(set) == 0 {
		return s.Get(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE profiles SET %s
		WHERE id = $%d
		RETURNING `+profileColumns,
		joinSet(set), len(args))

	updated, err := scanProfile(s.pool.QueryRow(ctx, query, args...))
	if isUniqueViolation(err) {
		return nil, repository.ErrConflict
	}
	return updated, err
}

func scanProfile(row pgx.Row) (*entity.Profile, error) {
	p := &entity.Profile{}
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.FullName, &p.AvatarURL, &p.Sport, &p.UserType,
		&p.Bio, &p.Location, &p.Website, &p.FollowersCount, &p.FollowingCount, &p.PostsCount, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func joinSet(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

var _ repository.ProfileStore = (*ProfileStore)(nil)
