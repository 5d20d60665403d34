package repository

import (
	"context"

	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
)

// ResetNotifier delivers reset links out of band. It does not send email
// itself.
type ResetNotifier interface {
	NotifyReset(ctx context.Context, n entity.ResetNotice) error
}
