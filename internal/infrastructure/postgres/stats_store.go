package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sportsin/sportsin/internal/domain/entity"
	"github.com/sportsin/sportsin/internal/domain/repository"
)

// StatsStore holds the per-user performance statistics rows.
type StatsStore struct {
	pool *pgxpool.Pool
}

func NewStatsStore(pool *pgxpool.Pool) *StatsStore {
	return &StatsStore{pool: pool}
}

// EnsureDefault inserts the default stats row if one does not exist yet.
// ON CONFLICT makes double provisioning harmless.
func (s *StatsStore) EnsureDefault(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO player_stats (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

func (s *StatsStore) Get(ctx context.Context, userID string) (*entity.PlayerStats, error) {
	st := &entity.PlayerStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, matches_played, wins, losses, created_at
		FROM player_stats
		WHERE user_id = $1
	`, userID).Scan(&st.UserID, &st.MatchesPlayed, &st.Wins, &st.Losses, &st.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

var _ repository.StatsStore = (*StatsStore)(nil)
