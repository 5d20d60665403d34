package repository

import (
	"context"

	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
)

// ActivityRepository appends audit entries.
type ActivityRepository interface {
	Append(ctx context.Context, e entity.ActivityLogEntry) error
}
