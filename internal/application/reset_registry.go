package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
)

const (
	DefaultResetTokenTTL = time.Hour
	resetTokenBytes      = 32
)

// ResetTokenRegistry issues single-use password reset tokens. Only the
// SHA-256 of a token is stored.
type ResetTokenRegistry struct {
	repo repository.ResetTokenRepository
	ttl  time.Duration
	now  func() time.Time
}

func NewResetTokenRegistry(repo repository.ResetTokenRepository, ttl time.Duration, now func() time.Time) *ResetTokenRegistry {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &ResetTokenRegistry{repo: repo, ttl: ttl, now: now}
}

// HashResetToken is the lookup key a token is persisted under.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (r *ResetTokenRegistry) Issue(ctx context.Context, userID, email string, source entity.Source) (entity.IssuedToken, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return entity.IssuedToken{}, fmt.Errorf("generate reset token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	now := r.now().UTC()
	rec := entity.ResetToken{
		TokenHash: HashResetToken(token),
		UserID:    userID,
		Email:     entity.NormalizeEmail(email),
		Source:    source,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}
	if err := r.repo.Insert(ctx, rec); err != nil {
		return entity.IssuedToken{}, fmt.Errorf("store reset token: %w", err)
	}
	return entity.IssuedToken{Token: token, ExpiresAt: rec.ExpiresAt}, nil
}

// Verify reports what token grants without consuming it. Unknown, used and
// expired tokens are indistinguishable.
func (r *ResetTokenRegistry) Verify(ctx context.Context, token string) (entity.TokenClaims, error) {
	if token == "" {
		return entity.TokenClaims{}, domain.ErrInvalidOrExpiredToken
	}
	rec, err := r.repo.Find(ctx, HashResetToken(token))
	if err != nil {
		return entity.TokenClaims{}, tokenErr(err)
	}
	if !rec.Usable(r.now()) {
		return entity.TokenClaims{}, domain.ErrInvalidOrExpiredToken
	}
	return claimsOf(rec), nil
}

// Consume verifies and marks the token used atomically; only the first call
// for a token can succeed.
func (r *ResetTokenRegistry) Consume(ctx context.Context, token string) (entity.TokenClaims, error) {
	if token == "" {
		return entity.TokenClaims{}, domain.ErrInvalidOrExpiredToken
	}
	rec, err := r.repo.MarkUsed(ctx, HashResetToken(token), r.now().UTC())
	if err != nil {
		return entity.TokenClaims{}, tokenErr(err)
	}
	return claimsOf(rec), nil
}

func tokenErr(err error) error {
	if errors.Is(err, domain.ErrInvalidOrExpiredToken) {
		return domain.ErrInvalidOrExpiredToken
	}
	return fmt.Errorf("reset token lookup: %w", err)
}

func claimsOf(t *entity.ResetToken) entity.TokenClaims {
	return entity.TokenClaims{UserID: t.UserID, Email: t.Email, Source: t.Source}
}
