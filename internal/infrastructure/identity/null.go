package identity

import (
	"context"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
)

// NullBackend stands in when no managed backend is configured. Every call
// reports the backend as unreachable so resolution falls through to the local
// store.
type NullBackend struct{}

func (NullBackend) CreateAccount(context.Context, entity.NewAccount) (*entity.ManagedIdentity, error) {
	return nil, domain.ErrBackendUnreachable
}

func (NullBackend) VerifyPassword(context.Context, string, string) (*entity.ManagedIdentity, error) {
	return nil, domain.ErrBackendUnreachable
}

func (NullBackend) VerifyAssertion(context.Context, string) (*entity.ManagedIdentity, error) {
	return nil, domain.ErrBackendUnreachable
}

func (NullBackend) IssueResetLink(context.Context, string) (string, error) {
	return "", domain.ErrBackendUnreachable
}

func (NullBackend) UpdateAccount(context.Context, string, entity.AccountUpdate) error {
	return domain.ErrBackendUnreachable
}

func (NullBackend) DeleteAccount(context.Context, string) error {
	return domain.ErrBackendUnreachable
}

func (NullBackend) Lookup(context.Context, string) (*entity.ManagedIdentity, error) {
	return nil, domain.ErrBackendUnreachable
}

var _ repository.IdentityProvider = NullBackend{}
