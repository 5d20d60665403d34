package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/pkg/helpers"
)

func newTestStore(t *testing.T) (*CredentialStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fallback_users.json")
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s, err := NewCredentialStore(path, helpers.NewPasswordHasher(bcrypt.MinCost), WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	return s, path
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id1, err := s.Create(ctx, "a@x.com", "Passw0rd", "Alice")
	require.NoError(t, err)
	id2, err := s.Create(ctx, "b@x.com", "Passw0rd", "Bob")
	require.NoError(t, err)

	assert.Equal(t, "user_1", id1)
	assert.Equal(t, "user_2", id2)
}

func TestCreateDuplicateAnyCasing(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "a@x.com", "Passw0rd", "Alice")
	require.NoError(t, err)

	for _, email := range []string{"a@x.com", "A@X.COM", "  a@X.com "} {
		_, err := s.Create(ctx, email, "Other123", "Impostor")
		require.ErrorIs(t, err, domain.ErrDuplicateAccount, email)
	}
	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAuthenticate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.Create(ctx, "a@x.com", "Passw0rd", "Alice")
	require.NoError(t, err)

	sum, err := s.Authenticate(ctx, "A@x.com", "Passw0rd")
	require.NoError(t, err)
	assert.Equal(t, entity.AccountSummary{UserID: "user_1", Email: "a@x.com", FullName: "Alice"}, sum)

	_, wrongPwd := s.Authenticate(ctx, "a@x.com", "passw0rd")
	_, unknown := s.Authenticate(ctx, "nobody@x.com", "Passw0rd")
	require.ErrorIs(t, wrongPwd, domain.ErrInvalidCredentials)
	require.ErrorIs(t, unknown, domain.ErrInvalidCredentials)
	assert.Equal(t, wrongPwd.Error(), unknown.Error())
}

func TestPersistedDocumentIsFlatMapping(t *testing.T) {
	s, path := newTestStore(t)
	_, err := s.Create(context.Background(), "Mixed@Case.com", "Passw0rd", "Mixed")
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))

	rec, ok := doc["mixed@case.com"]
	require.True(t, ok)
	assert.Equal(t, "mixed@case.com", rec["email"])
	assert.Equal(t, "Mixed", rec["full_name"])
	assert.Equal(t, "user_1", rec["user_id"])
	assert.Equal(t, "2026-01-02T03:04:05Z", rec["created_at"])
	assert.NotEqual(t, "Passw0rd", rec["password_hash"])

	reopened, err := NewCredentialStore(path, helpers.NewPasswordHasher(bcrypt.MinCost))
	require.NoError(t, err)
	_, err = reopened.Authenticate(context.Background(), "mixed@case.com", "Passw0rd")
	require.NoError(t, err)
}

func TestCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := NewCredentialStore(path, helpers.NewPasswordHasher(bcrypt.MinCost))
	require.Error(t, err)
}

func TestUpdatePassword(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	id, err := s.Create(ctx, "a@x.com", "Passw0rd", "Alice")
	require.NoError(t, err)

	require.NoError(t, s.UpdatePassword(ctx, id, "N3wPassword"))
	_, err = s.Authenticate(ctx, "a@x.com", "Passw0rd")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = s.Authenticate(ctx, "a@x.com", "N3wPassword")
	require.NoError(t, err)

	require.ErrorIs(t, s.UpdatePassword(ctx, "user_99", "N3wPassword"), domain.ErrAccountNotFound)
}

func TestFindByEmail(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.Create(ctx, "a@x.com", "Passw0rd", "Alice")
	require.NoError(t, err)

	sum, err := s.FindByEmail(ctx, "A@X.com")
	require.NoError(t, err)
	assert.Equal(t, "user_1", sum.UserID)

	_, err = s.FindByEmail(ctx, "b@x.com")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestConcurrentSignupSameEmail(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	before, err := s.Count()
	require.NoError(t, err)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Create(ctx, "race@x.com", "Passw0rd", "Racer")
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrDuplicateAccount):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)

	after, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}
