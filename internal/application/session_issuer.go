package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
	"github.com/oksasatya/aquatech-dashboard/pkg/helpers"
)

const (
	DefaultSessionTTL  = 24 * time.Hour
	DefaultRememberTTL = 30 * 24 * time.Hour
)

type SessionIssuer struct {
	store       repository.SessionStore
	tokens      *helpers.SessionTokens
	ttl         time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

func NewSessionIssuer(store repository.SessionStore, tokens *helpers.SessionTokens, ttl, rememberTTL time.Duration) *SessionIssuer {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if rememberTTL <= 0 {
		rememberTTL = DefaultRememberTTL
	}
	return &SessionIssuer{store: store, tokens: tokens, ttl: ttl, rememberTTL: rememberTTL, now: time.Now}
}

// Issue stores a new session for user and returns it with its signed cookie
// token. Without remember the session ends with the browser and ttl is only
// the server-side cap.
func (s *SessionIssuer) Issue(ctx context.Context, user *entity.AuthenticatedUser, remember bool) (entity.SessionRecord, string, error) {
	now := s.now().UTC()
	ttl := s.ttl
	if remember {
		ttl = s.rememberTTL
	}
	rec := entity.SessionRecord{
		ID:           uuid.NewString(),
		UserID:       user.UserID,
		Email:        user.Email,
		FullName:     user.FullName,
		Role:         user.Role,
		AuthProvider: user.AuthProvider,
		Source:       user.Source,
		IssuedAt:     now,
		ExpiresAt:    now.Add(ttl),
		Persistent:   remember,
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return entity.SessionRecord{}, "", fmt.Errorf("save session: %w", err)
	}
	token, err := s.tokens.Sign(rec.ID, rec.IssuedAt, rec.ExpiresAt)
	if err != nil {
		_ = s.store.Delete(ctx, rec.ID)
		return entity.SessionRecord{}, "", fmt.Errorf("sign session: %w", err)
	}
	return rec, token, nil
}

// Lookup resolves a cookie token to its live session.
func (s *SessionIssuer) Lookup(ctx context.Context, token string) (*entity.SessionRecord, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	return s.store.Get(ctx, claims.SessionID)
}

// SessionID extracts the id from a token whose signature is valid, even if the
// session itself is gone.
func (s *SessionIssuer) SessionID(token string) string {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return ""
	}
	return claims.SessionID
}

// Destroy is idempotent.
func (s *SessionIssuer) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.store.Delete(ctx, sessionID)
}
