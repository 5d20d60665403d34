package repository

import (
	"context"
	"time"

	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
)

// ProfileRefresh holds mutable display fields refreshed on sign-in. Empty
// values keep the stored field.
type ProfileRefresh struct {
	Email       string
	DisplayName string
	PhotoURL    string
}

// ProfileRepository stores profiles for managed identities keyed by uid.
// GetByUID returns domain.ErrAccountNotFound when no profile exists and Create
// returns domain.ErrDuplicateAccount when one already does.
type ProfileRepository interface {
	GetByUID(ctx context.Context, uid string) (*entity.Profile, error)
	Create(ctx context.Context, p *entity.Profile) error
	RecordLogin(ctx context.Context, uid string, refresh ProfileRefresh, at time.Time) error
	Delete(ctx context.Context, uid string) error
}
