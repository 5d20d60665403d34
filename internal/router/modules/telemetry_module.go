package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/aquatech-dashboard/internal/application"
	handlers "github.com/oksasatya/aquatech-dashboard/internal/interface/http"
	"github.com/oksasatya/aquatech-dashboard/internal/interface/middleware"
	"github.com/oksasatya/aquatech-dashboard/pkg/helpers"
)

// TelemetryModule serves the dashboard feed. Every route needs a session.
type TelemetryModule struct {
	Handler  *handlers.TelemetryHandler
	Sessions *application.SessionIssuer
	Cookies  *helpers.Manager
	RDB      *redis.Client
}

func NewTelemetryModule(h *handlers.TelemetryHandler, sessions *application.SessionIssuer, cookies *helpers.Manager, rdb *redis.Client) *TelemetryModule {
	return &TelemetryModule{Handler: h, Sessions: sessions, Cookies: cookies, RDB: rdb}
}

func (m *TelemetryModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/")
	g.Use(middleware.RequireSession(m.Sessions, m.Cookies))
	g.Use(middleware.RateLimit(m.RDB, 300, time.Minute, middleware.KeyByUserID(), nil))
	{
		g.GET("/sensor-data", m.Handler.SensorData)
		g.GET("/sensor-data/history", m.Handler.History)
		g.GET("/alerts", m.Handler.Alerts)
	}
}
