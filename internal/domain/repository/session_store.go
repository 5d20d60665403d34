package repository

import (
	"context"

	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
)

// SessionStore is the server-side session collaborator. Delete is idempotent
// and Get returns domain.ErrSessionNotFound for unknown or expired ids.
type SessionStore interface {
	Save(ctx context.Context, s entity.SessionRecord) error
	Get(ctx context.Context, id string) (*entity.SessionRecord, error)
	Delete(ctx context.Context, id string) error
}
