// Package memory provides process-local repositories used when PostgreSQL is
// not configured and in tests.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
)

var errTokenExists = errors.New("reset token already exists")

type ResetTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]entity.ResetToken
}

func NewResetTokenRepository() *ResetTokenRepository {
	return &ResetTokenRepository{tokens: make(map[string]entity.ResetToken)}
}

func (r *ResetTokenRepository) Insert(_ context.Context, t entity.ResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[t.TokenHash]; ok {
		return errTokenExists
	}
	r.tokens[t.TokenHash] = t
	return nil
}

func (r *ResetTokenRepository) Find(_ context.Context, tokenHash string) (*entity.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenHash]
	if !ok {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	return &t, nil
}

// MarkUsed checks and flips the used flag in one critical section.
func (r *ResetTokenRepository) MarkUsed(_ context.Context, tokenHash string, now time.Time) (*entity.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenHash]
	if !ok || !t.Usable(now) {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	usedAt := now
	t.Used = true
	t.UsedAt = &usedAt
	r.tokens[tokenHash] = t
	return &t, nil
}

var _ repository.ResetTokenRepository = (*ResetTokenRepository)(nil)
