package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
)

// ResetTokenRepository keeps every issued token; rows are never deleted.
type ResetTokenRepository struct {
	pool *pgxpool.Pool
}

func NewResetTokenRepository(pool *pgxpool.Pool) *ResetTokenRepository {
	return &ResetTokenRepository{pool: pool}
}

func (r *ResetTokenRepository) Insert(ctx context.Context, t entity.ResetToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO password_reset_tokens (token_hash, user_id, email, source, created_at, expires_at, used)
		VALUES ($1, $2, $3, $4, $5, $6, false)
	`, t.TokenHash, t.UserID, t.Email, string(t.Source), t.CreatedAt, t.ExpiresAt)
	return err
}

func (r *ResetTokenRepository) Find(ctx context.Context, tokenHash string) (*entity.ResetToken, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT token_hash, user_id, email, source, created_at, expires_at, used, used_at
		FROM password_reset_tokens
		WHERE token_hash = $1
	`, tokenHash)
	return scanResetToken(row)
}

// MarkUsed is a single conditional UPDATE, so concurrent redemptions of one
// token cannot both match.
func (r *ResetTokenRepository) MarkUsed(ctx context.Context, tokenHash string, now time.Time) (*entity.ResetToken, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE password_reset_tokens
		SET used = true, used_at = $2
		WHERE token_hash = $1 AND used = false AND expires_at >= $2
		RETURNING token_hash, user_id, email, source, created_at, expires_at, used, used_at
	`, tokenHash, now)
	return scanResetToken(row)
}

func scanResetToken(row pgx.Row) (*entity.ResetToken, error) {
	t := &entity.ResetToken{}
	var source string
	if err := row.Scan(&t.TokenHash, &t.UserID, &t.Email, &source, &t.CreatedAt, &t.ExpiresAt, &t.Used, &t.UsedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidOrExpiredToken
		}
		return nil, err
	}
	t.Source = entity.Source(source)
	return t, nil
}

var _ repository.ResetTokenRepository = (*ResetTokenRepository)(nil)
