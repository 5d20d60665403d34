package entity

import "time"

// SensorReading is one water-quality sample.
type SensorReading struct {
	Timestamp       time.Time `json:"timestamp"`
	Temperature     float64   `json:"temperature"`
	DissolvedOxygen float64   `json:"dissolved_oxygen"`
	Ammonia         float64   `json:"ammonia"`
}

type AlertType string

const (
	AlertWarning AlertType = "warning"
	AlertInfo    AlertType = "info"
	AlertSuccess AlertType = "success"
)

type Alert struct {
	Timestamp time.Time `json:"timestamp"`
	Type      AlertType `json:"type"`
	Message   string    `json:"message"`
}
