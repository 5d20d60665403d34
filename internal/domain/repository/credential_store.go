package repository

import (
	"context"

	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
)

// CredentialStore persists locally managed accounts keyed by normalized email.
//
// Authenticate must return domain.ErrInvalidCredentials for both an unknown
// email and a wrong password so callers cannot enumerate accounts.
type CredentialStore interface {
	Create(ctx context.Context, email, password, fullName string) (string, error)
	Authenticate(ctx context.Context, email, password string) (entity.AccountSummary, error)
	UpdatePassword(ctx context.Context, userID, newPassword string) error
	FindByEmail(ctx context.Context, email string) (entity.AccountSummary, error)
}
