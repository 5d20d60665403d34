package repository

import (
	"context"

	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
)

// IdentityProvider is the managed identity backend. Every method may fail
// with domain.ErrBackendUnreachable (availability fault, safe to fall back) or
// domain.ErrBackendRejected (semantic failure, terminal for the attempt).
type IdentityProvider interface {
	CreateAccount(ctx context.Context, in entity.NewAccount) (*entity.ManagedIdentity, error)
	VerifyPassword(ctx context.Context, email, password string) (*entity.ManagedIdentity, error)
	// VerifyAssertion validates a third-party sign-in token and fails with
	// domain.ErrWrongProvider when it was minted for another provider.
	VerifyAssertion(ctx context.Context, assertion string) (*entity.ManagedIdentity, error)
	IssueResetLink(ctx context.Context, email string) (string, error)
	UpdateAccount(ctx context.Context, uid string, in entity.AccountUpdate) error
	DeleteAccount(ctx context.Context, uid string) error
	Lookup(ctx context.Context, email string) (*entity.ManagedIdentity, error)
}
