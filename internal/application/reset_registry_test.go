package application

import (
	"context"
	"encoding/base64"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/infrastructure/memory"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newRegistry() (*ResetTokenRegistry, *memory.ResetTokenRepository, *testClock) {
	clock := &testClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	repo := memory.NewResetTokenRepository()
	return NewResetTokenRegistry(repo, time.Hour, clock.Now), repo, clock
}

func TestResetTokenRegistry_SingleUse(t *testing.T) {
	reg, _, _ := newRegistry()
	ctx := context.Background()

	tok, err := reg.Issue(ctx, "user_1", "A@X.com", entity.SourceLocal)
	require.NoError(t, err)

	claims, err := reg.Verify(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, entity.TokenClaims{UserID: "user_1", Email: "a@x.com", Source: entity.SourceLocal}, claims)

	claims, err = reg.Consume(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.UserID)

	_, err = reg.Consume(ctx, tok.Token)
	require.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
	_, err = reg.Verify(ctx, tok.Token)
	require.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
}

func TestResetTokenRegistry_Expiry(t *testing.T) {
	reg, _, clock := newRegistry()
	ctx := context.Background()

	tok, err := reg.Issue(ctx, "uid-1", "m@x.com", entity.SourceManaged)
	require.NoError(t, err)
	assert.True(t, tok.ExpiresAt.Equal(clock.Now().Add(time.Hour)))

	clock.Advance(time.Hour)
	_, err = reg.Verify(ctx, tok.Token)
	require.NoError(t, err, "still valid at expires_at")

	clock.Advance(time.Second)
	_, err = reg.Verify(ctx, tok.Token)
	require.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
	_, err = reg.Consume(ctx, tok.Token)
	require.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
}

func TestResetTokenRegistry_IndistinguishableFailures(t *testing.T) {
	reg, _, clock := newRegistry()
	ctx := context.Background()

	used, err := reg.Issue(ctx, "u1", "a@x.com", entity.SourceLocal)
	require.NoError(t, err)
	_, err = reg.Consume(ctx, used.Token)
	require.NoError(t, err)

	expired, err := reg.Issue(ctx, "u2", "b@x.com", entity.SourceLocal)
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)

	_, errUsed := reg.Verify(ctx, used.Token)
	_, errExpired := reg.Verify(ctx, expired.Token)
	_, errUnknown := reg.Verify(ctx, "never-issued")
	_, errEmpty := reg.Verify(ctx, "")
	for _, err := range []error{errUsed, errExpired, errUnknown, errEmpty} {
		assert.Equal(t, domain.ErrInvalidOrExpiredToken, err)
	}
}

func TestResetTokenRegistry_StoresOnlyDigest(t *testing.T) {
	reg, repo, _ := newRegistry()
	ctx := context.Background()

	tok, err := reg.Issue(ctx, "u1", "a@x.com", entity.SourceLocal)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(tok.Token)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	_, err = repo.Find(ctx, tok.Token)
	require.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
	rec, err := repo.Find(ctx, HashResetToken(tok.Token))
	require.NoError(t, err)
	assert.False(t, rec.Used)
	assert.NotEqual(t, tok.Token, rec.TokenHash)

	other, err := reg.Issue(ctx, "u1", "a@x.com", entity.SourceLocal)
	require.NoError(t, err)
	assert.NotEqual(t, tok.Token, other.Token)
}

func TestResetTokenRegistry_ConcurrentConsume(t *testing.T) {
	reg, _, _ := newRegistry()
	ctx := context.Background()

	tok, err := reg.Issue(ctx, "u1", "a@x.com", entity.SourceLocal)
	require.NoError(t, err)

	const n = 16
	var wins, losses atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := reg.Consume(ctx, tok.Token); err == nil {
				wins.Add(1)
			} else if err == domain.ErrInvalidOrExpiredToken {
				losses.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
	assert.EqualValues(t, n-1, losses.Load())
}
