package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
	"github.com/oksasatya/aquatech-dashboard/pkg/response"
)

const (
	defaultHistoryHours = 24
	maxHistoryHours     = 168
	defaultAlertLimit   = 10
	maxAlertLimit       = 50
)

type TelemetryHandler struct {
	Reader repository.TelemetryReader
	Logger *logrus.Logger
	now    func() time.Time
}

func NewTelemetryHandler(reader repository.TelemetryReader, logger *logrus.Logger) *TelemetryHandler {
	return &TelemetryHandler{Reader: reader, Logger: logger, now: time.Now}
}

// SensorData GET /api/sensor-data
func (h *TelemetryHandler) SensorData(c *gin.Context) {
	r, err := h.Reader.Latest(c.Request.Context())
	if err != nil {
		h.unavailable(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, r, "latest reading", nil)
	c.JSON(resp.Status, resp)
}

// History GET /api/sensor-data/history?hours=
func (h *TelemetryHandler) History(c *gin.Context) {
	hours, ok := queryInt(c, "hours", defaultHistoryHours, 1, maxHistoryHours)
	if !ok {
		return
	}
	readings, err := h.Reader.History(c.Request.Context(), hours)
	if err != nil {
		h.unavailable(c, err)
		return
	}
	resp := response.Success(c, http.StatusOK, readings, "history", gin.H{"hours": hours, "count": len(readings)})
	c.JSON(resp.Status, resp)
}

type alertView struct {
	entity.Alert
	Ago string `json:"time"`
}

// Alerts GET /api/alerts?limit=
func (h *TelemetryHandler) Alerts(c *gin.Context) {
	limit, ok := queryInt(c, "limit", defaultAlertLimit, 1, maxAlertLimit)
	if !ok {
		return
	}
	alerts, err := h.Reader.RecentAlerts(c.Request.Context(), limit)
	if err != nil {
		h.unavailable(c, err)
		return
	}
	now := h.now()
	out := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertView{Alert: a, Ago: ago(now, a.Timestamp)})
	}
	resp := response.Success(c, http.StatusOK, out, "alerts", nil)
	c.JSON(resp.Status, resp)
}

func (h *TelemetryHandler) unavailable(c *gin.Context, err error) {
	h.Logger.WithError(err).Warn("telemetry read failed")
	resp := response.Error[any](c, http.StatusServiceUnavailable, "Sensor data is temporarily unavailable", nil)
	c.JSON(resp.Status, resp)
}

// queryInt reads an integer query parameter and clamps it to [lo, hi]. It
// writes a 400 and returns false when the value is not a number.
func queryInt(c *gin.Context, key string, def, lo, hi int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid query parameter", map[string]string{key: "must be an integer"})
		c.JSON(resp.Status, resp)
		return 0, false
	}
	return min(max(n, lo), hi), true
}

// ago renders the age of t the way the dashboard shows it.
func ago(now, t time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d/(24*time.Hour)))
	case d > time.Hour:
		return fmt.Sprintf("%d hours ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%d min ago", int(d/time.Minute))
	}
}
