package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/aquatech-dashboard/internal/interface/http"
	"github.com/oksasatya/aquatech-dashboard/internal/interface/middleware"
)

// DebugModule serves /api/health and, when Metrics is set, expvar at
// /api/debug/vars. Private addresses bypass the limiter.
type DebugModule struct {
	Health  *handlers.HealthHandler
	RDB     *redis.Client
	Metrics bool
}

func NewDebugModule(health *handlers.HealthHandler, rdb *redis.Client, metrics bool) *DebugModule {
	return &DebugModule{Health: health, RDB: rdb, Metrics: metrics}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/health", rl, m.Health.Health)
	if m.Metrics {
		rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	}
}
