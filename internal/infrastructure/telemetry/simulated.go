// Package telemetry provides a simulated sensor feed for deployments without
// a live data source.
package telemetry

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
)

// Simulated draws readings uniformly from the healthy ranges of each sensor.
type Simulated struct {
	now func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*Simulated)

func WithClock(now func() time.Time) Option {
	return func(s *Simulated) { s.now = now }
}

// WithSeed makes the feed deterministic.
func WithSeed(seed int64) Option {
	return func(s *Simulated) { s.rnd = rand.New(rand.NewSource(seed)) }
}

func NewSimulated(opts ...Option) *Simulated {
	s := &Simulated{now: time.Now, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Simulated) Latest(_ context.Context) (entity.SensorReading, error) {
	return s.reading(s.now()), nil
}

func (s *Simulated) History(_ context.Context, hours int) ([]entity.SensorReading, error) {
	if hours <= 0 {
		return []entity.SensorReading{}, nil
	}
	now := s.now()
	out := make([]entity.SensorReading, hours)
	for i := 0; i < hours; i++ {
		// index 0 is the oldest hour
		out[i] = s.reading(now.Add(-time.Duration(hours-1-i) * time.Hour))
	}
	return out, nil
}

func (s *Simulated) RecentAlerts(_ context.Context, n int) ([]entity.Alert, error) {
	now := s.now()
	all := []entity.Alert{
		{Timestamp: now.Add(-10 * time.Minute), Type: entity.AlertWarning, Message: "Ammonia level approaching lower threshold"},
		{Timestamp: now.Add(-2 * time.Hour), Type: entity.AlertInfo, Message: "Temperature sensor calibration completed"},
		{Timestamp: now.Add(-4 * time.Hour), Type: entity.AlertSuccess, Message: "Water quality parameters optimal"},
	}
	if n < 0 {
		n = 0
	}
	if n < len(all) {
		all = all[:n]
	}
	return all, nil
}

func (s *Simulated) reading(at time.Time) entity.SensorReading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entity.SensorReading{
		Timestamp:       at,
		Temperature:     round(s.uniform(20, 30), 1),
		DissolvedOxygen: round(s.uniform(4, 12), 2),
		Ammonia:         round(s.uniform(0, 5), 3),
	}
}

func (s *Simulated) uniform(lo, hi float64) float64 {
	return lo + s.rnd.Float64()*(hi-lo)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

var _ repository.TelemetryReader = (*Simulated)(nil)
