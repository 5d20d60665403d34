package repository

import (
	"context"
	"time"

	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
)

// ResetTokenRepository persists reset tokens by digest. MarkUsed must flip the
// used flag only for a token that is unused and unexpired at now, atomically,
// and return domain.ErrInvalidOrExpiredToken otherwise.
type ResetTokenRepository interface {
	Insert(ctx context.Context, t entity.ResetToken) error
	Find(ctx context.Context, tokenHash string) (*entity.ResetToken, error)
	MarkUsed(ctx context.Context, tokenHash string, now time.Time) (*entity.ResetToken, error)
}
