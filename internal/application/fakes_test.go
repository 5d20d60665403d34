package application

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/infrastructure/filestore"
	"github.com/oksasatya/aquatech-dashboard/internal/infrastructure/memory"
	"github.com/oksasatya/aquatech-dashboard/pkg/helpers"
)

type managedAccount struct {
	id       entity.ManagedIdentity
	password string
}

// fakeBackend is a scripted managed identity backend.
type fakeBackend struct {
	mu sync.Mutex

	unreachable       bool
	verifyUnreachable bool
	accounts          map[string]*managedAccount
	assertions        map[string]*entity.ManagedIdentity
	assertionErrs     map[string]error
	resetLink         string
	verifyCalls       int
	updated           map[string]entity.AccountUpdate
	deleted           []string
	nextID            int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		accounts:      map[string]*managedAccount{},
		assertions:    map[string]*entity.ManagedIdentity{},
		assertionErrs: map[string]error{},
		updated:       map[string]entity.AccountUpdate{},
	}
}

func (b *fakeBackend) add(email, password string, provider entity.AuthProvider) entity.ManagedIdentity {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := entity.ManagedIdentity{
		UID:          fmt.Sprintf("uid-%d", b.nextID),
		Email:        email,
		DisplayName:  "Managed " + email,
		AuthProvider: provider,
	}
	b.accounts[email] = &managedAccount{id: id, password: password}
	return id
}

func (b *fakeBackend) setUnreachable(v bool) {
	b.mu.Lock()
	b.unreachable = v
	b.mu.Unlock()
}

func (b *fakeBackend) down() error {
	if b.unreachable {
		return fmt.Errorf("%w: fake outage", domain.ErrBackendUnreachable)
	}
	return nil
}

func (b *fakeBackend) CreateAccount(_ context.Context, in entity.NewAccount) (*entity.ManagedIdentity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.down(); err != nil {
		return nil, err
	}
	if _, ok := b.accounts[in.Email]; ok {
		return nil, domain.Rejected(domain.ErrDuplicateAccount, "EMAIL_EXISTS")
	}
	b.nextID++
	id := entity.ManagedIdentity{
		UID:          fmt.Sprintf("uid-%d", b.nextID),
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		AuthProvider: entity.ProviderEmailPassword,
	}
	b.accounts[in.Email] = &managedAccount{id: id, password: in.Password}
	out := id
	return &out, nil
}

func (b *fakeBackend) VerifyPassword(_ context.Context, email, password string) (*entity.ManagedIdentity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.verifyCalls++
	if err := b.down(); err != nil {
		return nil, err
	}
	if b.verifyUnreachable {
		return nil, fmt.Errorf("%w: dropped mid-attempt", domain.ErrBackendUnreachable)
	}
	acc, ok := b.accounts[email]
	if !ok {
		return nil, domain.Rejected(domain.ErrAccountNotFound, "EMAIL_NOT_FOUND")
	}
	if acc.password != password {
		return nil, domain.Rejected(domain.ErrInvalidCredentials, "INVALID_PASSWORD")
	}
	out := acc.id
	return &out, nil
}

func (b *fakeBackend) VerifyAssertion(_ context.Context, assertion string) (*entity.ManagedIdentity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.down(); err != nil {
		return nil, err
	}
	if err, ok := b.assertionErrs[assertion]; ok {
		return nil, err
	}
	id, ok := b.assertions[assertion]
	if !ok {
		return nil, domain.Rejected(nil, "INVALID_ID_TOKEN")
	}
	out := *id
	return &out, nil
}

func (b *fakeBackend) IssueResetLink(_ context.Context, email string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.down(); err != nil {
		return "", err
	}
	return b.resetLink + "&email=" + email, nil
}

func (b *fakeBackend) UpdateAccount(_ context.Context, uid string, in entity.AccountUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.down(); err != nil {
		return err
	}
	for _, acc := range b.accounts {
		if acc.id.UID == uid {
			if in.Password != "" {
				acc.password = in.Password
			}
			b.updated[uid] = in
			return nil
		}
	}
	return domain.Rejected(domain.ErrAccountNotFound, "USER_NOT_FOUND")
}

func (b *fakeBackend) DeleteAccount(_ context.Context, uid string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.down(); err != nil {
		return err
	}
	for email, acc := range b.accounts {
		if acc.id.UID == uid {
			delete(b.accounts, email)
			b.deleted = append(b.deleted, uid)
			return nil
		}
	}
	return domain.Rejected(domain.ErrAccountNotFound, "USER_NOT_FOUND")
}

func (b *fakeBackend) Lookup(_ context.Context, email string) (*entity.ManagedIdentity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.down(); err != nil {
		return nil, err
	}
	acc, ok := b.accounts[email]
	if !ok {
		return nil, domain.Rejected(domain.ErrAccountNotFound, "EMAIL_NOT_FOUND")
	}
	out := acc.id
	return &out, nil
}

type captureSink struct {
	mu      sync.Mutex
	entries []entity.ActivityLogEntry
}

func (s *captureSink) Append(_ context.Context, e entity.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *captureSink) all() []entity.ActivityLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.ActivityLogEntry(nil), s.entries...)
}

func (s *captureSink) ofType(typ entity.ActivityType) []entity.ActivityLogEntry {
	var out []entity.ActivityLogEntry
	for _, e := range s.all() {
		if e.ActivityType == typ {
			out = append(out, e)
		}
	}
	return out
}

type captureNotifier struct {
	mu      sync.Mutex
	notices []entity.ResetNotice
}

func (n *captureNotifier) NotifyReset(_ context.Context, notice entity.ResetNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

type harness struct {
	backend  *fakeBackend
	profiles *memory.ProfileRepository
	local    *filestore.CredentialStore
	sink     *captureSink
	notifier *captureNotifier
	audit    *ActivityAudit
	tokens   *ResetTokenRegistry
	resolver *AuthResolver
	accounts *AccountService
	now      time.Time
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		backend:  newFakeBackend(),
		profiles: memory.NewProfileRepository(),
		sink:     &captureSink{},
		notifier: &captureNotifier{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	h.backend.resetLink = "https://provider.example/action?mode=resetPassword"

	var err error
	h.local, err = filestore.NewCredentialStore(filepath.Join(t.TempDir(), "fallback_users.json"), helpers.NewPasswordHasher(4))
	require.NoError(t, err)

	logger := quietLogger()
	h.audit = NewActivityAudit(64, logger, h.sink)
	t.Cleanup(h.audit.Close)

	clock := func() time.Time { return h.now }
	h.tokens = NewResetTokenRegistry(memory.NewResetTokenRepository(), time.Hour, clock)
	h.resolver = NewAuthResolver(h.backend, h.profiles, h.local, DefaultDemoAccount(), h.audit, logger)
	h.resolver.now = clock
	h.accounts = NewAccountService(h.backend, h.profiles, h.local, h.tokens, h.notifier, h.audit, logger, AccountConfig{
		ResetURL: "https://aquatech.example/reset-password",
	})
	h.accounts.now = clock
	return h
}

// flushAudit drains the dispatcher so the sink can be inspected.
func (h *harness) flushAudit() {
	h.audit.Close()
}
