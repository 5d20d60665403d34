package repository

import (
	"context"

	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
)

// TelemetryReader is the read-only water-quality feed shown on the dashboard.
type TelemetryReader interface {
	Latest(ctx context.Context) (entity.SensorReading, error)
	// History returns one reading per hour for the last hours, oldest first.
	History(ctx context.Context, hours int) ([]entity.SensorReading, error)
	// RecentAlerts returns at most n alerts, newest first.
	RecentAlerts(ctx context.Context, n int) ([]entity.Alert, error)
}
