// Package filestore keeps fallback accounts in a single flat JSON document
// keyed by normalized email.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
	"github.com/oksasatya/aquatech-dashboard/pkg/helpers"
)

// CredentialStore serializes every read-modify-write of the document behind
// one mutex and replaces the file atomically with a rename.
type CredentialStore struct {
	path   string
	hasher *helpers.PasswordHasher
	now    func() time.Time

	mu sync.Mutex
}

type Option func(*CredentialStore)

// WithClock overrides the clock used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *CredentialStore) { s.now = now }
}

// NewCredentialStore opens the document at path. A missing file is an empty
// store; an unparsable one is an error.
func NewCredentialStore(path string, hasher *helpers.PasswordHasher, opts ...Option) (*CredentialStore, error) {
	if path == "" {
		return nil, errors.New("filestore: empty path")
	}
	s := &CredentialStore{path: path, hasher: hasher, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CredentialStore) Create(ctx context.Context, email, password, fullName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := entity.NormalizeEmail(email)
	// Hash before taking the lock; bcrypt is deliberately slow.
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load()
	if err != nil {
		return "", err
	}
	if _, ok := accounts[key]; ok {
		return "", domain.ErrDuplicateAccount
	}
	acc := entity.Account{
		Email:        key,
		PasswordHash: hash,
		FullName:     fullName,
		CreatedAt:    s.now().UTC(),
		UserID:       fmt.Sprintf("user_%d", len(accounts)+1),
	}
	accounts[key] = acc
	if err := s.save(accounts); err != nil {
		return "", err
	}
	return acc.UserID, nil
}

func (s *CredentialStore) Authenticate(ctx context.Context, email, password string) (entity.AccountSummary, error) {
	if err := ctx.Err(); err != nil {
		return entity.AccountSummary{}, err
	}
	acc, ok, err := s.get(entity.NormalizeEmail(email))
	if err != nil {
		return entity.AccountSummary{}, err
	}
	if !ok {
		s.hasher.CompareDummy(password)
		return entity.AccountSummary{}, domain.ErrInvalidCredentials
	}
	if !s.hasher.Compare(acc.PasswordHash, password) {
		return entity.AccountSummary{}, domain.ErrInvalidCredentials
	}
	return acc.Summary(), nil
}

func (s *CredentialStore) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load()
	if err != nil {
		return err
	}
	for key, acc := range accounts {
		if acc.UserID != userID {
			continue
		}
		acc.PasswordHash = hash
		accounts[key] = acc
		return s.save(accounts)
	}
	return domain.ErrAccountNotFound
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (entity.AccountSummary, error) {
	if err := ctx.Err(); err != nil {
		return entity.AccountSummary{}, err
	}
	acc, ok, err := s.get(entity.NormalizeEmail(email))
	if err != nil {
		return entity.AccountSummary{}, err
	}
	if !ok {
		return entity.AccountSummary{}, domain.ErrAccountNotFound
	}
	return acc.Summary(), nil
}

// Count returns the number of stored accounts.
func (s *CredentialStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts, err := s.load()
	if err != nil {
		return 0, err
	}
	return len(accounts), nil
}

func (s *CredentialStore) get(key string) (entity.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts, err := s.load()
	if err != nil {
		return entity.Account{}, false, err
	}
	acc, ok := accounts[key]
	return acc, ok, nil
}

// load must be called with mu held (or before the store is shared).
func (s *CredentialStore) load() (map[string]entity.Account, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]entity.Account{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	accounts := map[string]entity.Account{}
	if len(b) == 0 {
		return accounts, nil
	}
	if err := json.Unmarshal(b, &accounts); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return accounts, nil
}

// save must be called with mu held.
func (s *CredentialStore) save(accounts map[string]entity.Account) error {
	b, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

var _ repository.CredentialStore = (*CredentialStore)(nil)
